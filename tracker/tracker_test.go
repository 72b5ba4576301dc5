package tracker

import (
	"math"
	"testing"
)

// testConfig returns a tracker config with small thresholds convenient for
// hand constructed frame sequences
func testConfig() Config {
	return Config{
		DistanceThreshold: 50,
		MovementThreshold: 10,
		MaxDisappeared:    2,
		ParkedThreshold:   3,
	}
}

// boxAt builds a 10x10 detection box centered on the given pixel coordinates
func boxAt(x, y float64) Box {
	return NewBox(x-5, y-5, x+5, y+5)
}

// detAt builds a detection of the given class centered on x,y
func detAt(x, y float64, class VehicleClass) Detection {
	return NewDetection(boxAt(x, y), class, 0.9)
}

func TestNewTrackerDefaults(t *testing.T) {

	trk := NewTracker(Config{DistanceThreshold: 50})

	if trk.cfg.RediscoveryMultiplier != DefaultRediscoveryMultiplier {
		t.Errorf("expected rediscovery multiplier %v, got %v",
			DefaultRediscoveryMultiplier, trk.cfg.RediscoveryMultiplier)
	}
}

func TestMovingVehicleCountedOnce(t *testing.T) {

	trk := NewTracker(testConfig())

	// frame sequence of one car driving left to right
	frames := [][]Detection{
		{detAt(10, 50, Car)},
		{detAt(40, 50, Car)},
		{detAt(70, 50, Car)},
		{detAt(100, 50, Car)},
	}

	for _, frame := range frames {
		trk.Update(frame)
	}

	if got := trk.TotalCount(); got != 1 {
		t.Errorf("expected total count 1, got %d", got)
	}

	counts := trk.Counts()

	if counts[Car] != 1 {
		t.Errorf("expected 1 car counted, got %d", counts[Car])
	}

	if len(counts) != 1 {
		t.Errorf("expected counts for car class only, got %v", counts)
	}
}

func TestCountRequiresConfirmedMovement(t *testing.T) {

	trk := NewTracker(testConfig())

	// registration alone must not count
	trk.Update([]Detection{detAt(100, 100, Truck)})

	if got := trk.TotalCount(); got != 0 {
		t.Errorf("expected no count after registration, got %d", got)
	}

	// sub-threshold jitter must not count either
	trk.Update([]Detection{detAt(103, 100, Truck)})

	if got := trk.TotalCount(); got != 0 {
		t.Errorf("expected no count after jitter, got %d", got)
	}

	// a movement at the threshold or above counts exactly once
	trk.Update([]Detection{detAt(120, 100, Truck)})
	trk.Update([]Detection{detAt(140, 100, Truck)})

	if got := trk.Counts()[Truck]; got != 1 {
		t.Errorf("expected 1 truck counted, got %d", got)
	}
}

func TestParkedVehicleNeverCounted(t *testing.T) {

	trk := NewTracker(testConfig())

	// car sits in the same spot for many frames
	for i := 0; i < 10; i++ {
		trk.Update([]Detection{detAt(200, 200, Car)})
	}

	if got := trk.TotalCount(); got != 0 {
		t.Errorf("expected parked car to remain uncounted, got %d", got)
	}

	if counts := trk.Counts(); len(counts) != 0 {
		t.Errorf("expected empty counts map, got %v", counts)
	}

	objs := trk.Snapshot()

	if len(objs) != 1 {
		t.Fatalf("expected 1 tracked object, got %d", len(objs))
	}

	if !objs[0].IsParked {
		t.Errorf("expected object to be flagged as parked")
	}

	if !trk.IsParkedNear(Point{X: 210, Y: 205}, DefaultParkedRadius) {
		t.Errorf("expected IsParkedNear to report parked state")
	}
}

func TestParkedVehicleCountedWhenItDeparts(t *testing.T) {

	trk := NewTracker(testConfig())

	for i := 0; i < 6; i++ {
		trk.Update([]Detection{detAt(200, 200, Bus)})
	}

	// bus pulls out
	trk.Update([]Detection{detAt(240, 200, Bus)})

	if got := trk.Counts()[Bus]; got != 1 {
		t.Errorf("expected departing bus to be counted, got %d", got)
	}

	objs := trk.Snapshot()

	if objs[0].IsParked {
		t.Errorf("expected parked flag cleared after movement")
	}

	if objs[0].StationaryFrames != 0 {
		t.Errorf("expected stationary frames reset, got %d",
			objs[0].StationaryFrames)
	}
}

func TestParkedFlagTiming(t *testing.T) {

	trk := NewTracker(testConfig())

	// registration frame then stationary matches, the flag must only be
	// set once stationary frames exceed the threshold
	trk.Update([]Detection{detAt(50, 50, Car)})

	for i := 1; i <= 3; i++ {
		trk.Update([]Detection{detAt(50, 50, Car)})

		if trk.Snapshot()[0].IsParked {
			t.Fatalf("object flagged parked after %d stationary frames", i)
		}
	}

	trk.Update([]Detection{detAt(50, 50, Car)})

	if !trk.Snapshot()[0].IsParked {
		t.Errorf("expected object flagged parked after threshold exceeded")
	}
}

func TestEvictionAndMonotonicIDs(t *testing.T) {

	trk := NewTracker(testConfig())

	ids := trk.Update([]Detection{detAt(10, 10, Car)})

	if len(ids) != 1 || ids[0] != 0 {
		t.Fatalf("expected new id 0, got %v", ids)
	}

	// object vanishes, after maxDisappeared is exceeded it is evicted
	for i := 0; i < 3; i++ {
		trk.Update(nil)
	}

	if got := len(trk.Snapshot()); got != 0 {
		t.Fatalf("expected object evicted, still tracking %d", got)
	}

	// a later arrival must receive a fresh id, never a recycled one
	ids = trk.Update([]Detection{detAt(300, 300, Car)})

	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("expected new id 1, got %v", ids)
	}
}

func TestRediscoveryKeepsIdentity(t *testing.T) {

	trk := NewTracker(testConfig())

	trk.Update([]Detection{detAt(100, 100, Car)})
	trk.Update([]Detection{detAt(130, 100, Car)})

	if got := trk.TotalCount(); got != 1 {
		t.Fatalf("expected car counted before occlusion, got %d", got)
	}

	// occluded for one frame
	trk.Update(nil)

	if got := trk.Snapshot()[0].Disappeared; got != 1 {
		t.Fatalf("expected disappeared counter 1, got %d", got)
	}

	// reappears beyond the match threshold but inside the widened
	// rediscovery limit (60 < 50*1.5)
	ids := trk.Update([]Detection{detAt(190, 100, Car)})

	if len(ids) != 0 {
		t.Errorf("expected no new registration on rediscovery, got %v", ids)
	}

	objs := trk.Snapshot()

	if len(objs) != 1 {
		t.Fatalf("expected 1 tracked object, got %d", len(objs))
	}

	if objs[0].ID != 0 {
		t.Errorf("expected rediscovered object to keep id 0, got %d",
			objs[0].ID)
	}

	if objs[0].Disappeared != 0 {
		t.Errorf("expected disappeared counter reset, got %d",
			objs[0].Disappeared)
	}

	// identity survived, so the vehicle is still only counted once
	trk.Update([]Detection{detAt(220, 100, Car)})

	if got := trk.TotalCount(); got != 1 {
		t.Errorf("expected single count after rediscovery, got %d", got)
	}
}

func TestRediscoveryDoesNotCount(t *testing.T) {

	trk := NewTracker(testConfig())

	// vehicle registered but never moved before occlusion
	trk.Update([]Detection{detAt(100, 100, Car)})
	trk.Update(nil)

	// the rediscovery jump itself is not treated as movement
	trk.Update([]Detection{detAt(160, 100, Car)})

	if got := trk.TotalCount(); got != 0 {
		t.Errorf("expected rediscovery jump to remain uncounted, got %d", got)
	}

	if trk.Snapshot()[0].HasMoved {
		t.Errorf("expected HasMoved false after rediscovery")
	}
}

func TestReappearanceOutsideLimitIsNewObject(t *testing.T) {

	trk := NewTracker(testConfig())

	trk.Update([]Detection{detAt(100, 100, Car)})
	trk.Update(nil)

	// 100 px away exceeds the 75 px rediscovery limit
	ids := trk.Update([]Detection{detAt(200, 100, Car)})

	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("expected fresh registration with id 1, got %v", ids)
	}

	if got := len(trk.Snapshot()); got != 2 {
		t.Errorf("expected both objects tracked, got %d", got)
	}
}

func TestGreedyClosestPairFirst(t *testing.T) {

	trk := NewTracker(testConfig())

	// two objects, id 0 at x=0 and id 1 at x=50
	trk.Update([]Detection{detAt(0, 0, Car), detAt(50, 0, Car)})

	// detection at x=48 is closest overall and must bind to id 1, leaving
	// the x=10 detection for id 0 even though id 0 is older
	trk.Update([]Detection{detAt(10, 0, Car), detAt(48, 0, Car)})

	objs := trk.Snapshot()

	if len(objs) != 2 {
		t.Fatalf("expected 2 tracked objects, got %d", len(objs))
	}

	if objs[0].Centroid.X != 10 {
		t.Errorf("expected id 0 at x=10, got x=%d", objs[0].Centroid.X)
	}

	if objs[1].Centroid.X != 48 {
		t.Errorf("expected id 1 at x=48, got x=%d", objs[1].Centroid.X)
	}
}

func TestTwoVehiclesCountedIndependently(t *testing.T) {

	trk := NewTracker(testConfig())

	frames := [][]Detection{
		{detAt(10, 20, Car), detAt(10, 200, Truck)},
		{detAt(40, 20, Car), detAt(40, 200, Truck)},
		{detAt(70, 20, Car), detAt(70, 200, Truck)},
	}

	for _, frame := range frames {
		trk.Update(frame)
	}

	counts := trk.Counts()

	if counts[Car] != 1 || counts[Truck] != 1 {
		t.Errorf("expected 1 car and 1 truck, got %v", counts)
	}

	if got := trk.TotalCount(); got != 2 {
		t.Errorf("expected total count 2, got %d", got)
	}
}

func TestMoreObjectsThanDetections(t *testing.T) {

	trk := NewTracker(testConfig())

	trk.Update([]Detection{detAt(0, 0, Car), detAt(100, 0, Car)})

	// only the second object is seen this frame
	trk.Update([]Detection{detAt(105, 0, Car)})

	objs := trk.Snapshot()

	if objs[0].Disappeared != 1 {
		t.Errorf("expected unmatched object aged, got disappeared %d",
			objs[0].Disappeared)
	}

	if objs[1].Disappeared != 0 {
		t.Errorf("expected matched object not aged, got disappeared %d",
			objs[1].Disappeared)
	}
}

func TestNonFiniteDetectionNeverMatches(t *testing.T) {

	trk := NewTracker(testConfig())

	trk.Update([]Detection{detAt(100, 100, Car)})

	// a malformed box cannot land within any distance threshold, the
	// existing object ages as if unmatched
	nan := math.NaN()
	trk.Update([]Detection{NewDetection(NewBox(nan, nan, nan, nan), Car, 0.9)})

	objs := trk.Snapshot()

	if objs[0].Disappeared != 1 {
		t.Errorf("expected original object aged, got disappeared %d",
			objs[0].Disappeared)
	}
}

func TestReset(t *testing.T) {

	trk := NewTracker(testConfig())

	trk.Update([]Detection{detAt(10, 10, Car)})
	trk.Update([]Detection{detAt(40, 10, Car)})

	trk.Reset()

	if got := trk.TotalCount(); got != 0 {
		t.Errorf("expected counts cleared after reset, got %d", got)
	}

	if got := len(trk.Snapshot()); got != 0 {
		t.Errorf("expected no tracked objects after reset, got %d", got)
	}

	// id assignment restarts for the new session
	ids := trk.Update([]Detection{detAt(10, 10, Car)})

	if len(ids) != 1 || ids[0] != 0 {
		t.Errorf("expected id assignment restarted at 0, got %v", ids)
	}
}

func TestIsParkedNearNoObjectInRadius(t *testing.T) {

	trk := NewTracker(testConfig())

	for i := 0; i < 6; i++ {
		trk.Update([]Detection{detAt(500, 500, Car)})
	}

	if trk.IsParkedNear(Point{X: 10, Y: 10}, DefaultParkedRadius) {
		t.Errorf("expected false when no object within radius")
	}
}
