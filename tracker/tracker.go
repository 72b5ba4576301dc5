// Package tracker implements the centroid based multi-object vehicle
// tracker and counter.  It consumes one frame of detections at a time,
// maintains cross frame vehicle identity, counts each vehicle once after
// it has shown confirmed movement and flags vehicles that remain
// stationary as parked.
package tracker

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultRediscoveryMultiplier widens the distance threshold when
	// attempting to re-bind a reappearing detection to a recently lost
	// object
	DefaultRediscoveryMultiplier = 1.5

	// DefaultParkedRadius is the lookup radius in pixels used by the
	// presentation layer when querying the parked state at a detection
	// centroid
	DefaultParkedRadius = 50.0
)

// Config defines the tuning thresholds of the tracker.  Values are
// expected to be pre-scaled by the caller for frame skipping and source
// resolution
type Config struct {
	// DistanceThreshold is the maximum centroid distance in pixels for a
	// detection to match an existing tracked object
	DistanceThreshold float64
	// MovementThreshold is the minimum centroid movement in pixels
	// between matched frames for an object to be considered moving
	MovementThreshold float64
	// MaxDisappeared is the number of consecutive unmatched frames after
	// which a tracked object is evicted
	MaxDisappeared int
	// ParkedThreshold is the number of consecutive stationary frames
	// after which an object is flagged as parked
	ParkedThreshold int
	// RediscoveryMultiplier scales the distance threshold for the
	// rediscovery scan.  A zero value selects
	// DefaultRediscoveryMultiplier
	RediscoveryMultiplier float64
}

// Tracker follows vehicles across frames and maintains per class counts.
// A single goroutine is expected to drive Update and Reset, the snapshot
// methods may be called concurrently from other goroutines
type Tracker struct {
	cfg Config
	// objects maps object id to tracked state
	objects map[int]*TrackedObject
	// ids holds object ids in registration order.  Matching rows and the
	// rediscovery scan iterate in this order
	ids []int
	// nextID only ever increments so evicted ids are never reused
	nextID int
	counts map[VehicleClass]int
	sync.RWMutex
}

// NewTracker initializes and returns a new Tracker
func NewTracker(cfg Config) *Tracker {
	if cfg.RediscoveryMultiplier == 0 {
		cfg.RediscoveryMultiplier = DefaultRediscoveryMultiplier
	}

	return &Tracker{
		cfg:     cfg,
		objects: make(map[int]*TrackedObject),
		counts:  make(map[VehicleClass]int),
	}
}

// Reset clears all tracked objects and counts and restarts id assignment
func (t *Tracker) Reset() {
	t.Lock()
	defer t.Unlock()

	t.objects = make(map[int]*TrackedObject)
	t.ids = nil
	t.nextID = 0
	t.counts = make(map[VehicleClass]int)
}

// Update advances the tracker by one frame of detections and returns the
// ids of objects registered as genuinely new in this call.  Rediscovered
// ids are not included
func (t *Tracker) Update(detections []Detection) []int {
	t.Lock()
	defer t.Unlock()

	if len(detections) == 0 {
		// no detections, age every object and evict stale ones
		for _, id := range t.snapshotIDs() {
			t.ageObject(id)
		}
		return nil
	}

	centroids := make([]Point, len(detections))
	for i, det := range detections {
		centroids[i] = det.Box.Centroid()
	}

	if len(t.ids) == 0 {
		return t.registerAll(detections, centroids)
	}

	return t.matchAndUpdate(detections, centroids)
}

// Counts returns a snapshot of the per class vehicle counts.  Classes
// that have not been counted yet are absent from the map
func (t *Tracker) Counts() map[VehicleClass]int {
	t.RLock()
	defer t.RUnlock()

	counts := make(map[VehicleClass]int, len(t.counts))
	for class, n := range t.counts {
		counts[class] = n
	}

	return counts
}

// TotalCount returns the total number of vehicles counted across all
// classes
func (t *Tracker) TotalCount() int {
	t.RLock()
	defer t.RUnlock()

	total := 0
	for _, n := range t.counts {
		total += n
	}

	return total
}

// IsParkedNear reports the parked state of the first tracked object found
// within radius of the given point.  It returns false when no object is
// within radius
func (t *Tracker) IsParkedNear(p Point, radius float64) bool {
	t.RLock()
	defer t.RUnlock()

	for _, id := range t.ids {
		obj := t.objects[id]
		if Distance(obj.Centroid, p) < radius {
			return obj.IsParked
		}
	}

	return false
}

// Snapshot returns a copy of all tracked objects in registration order
// for use by the presentation layer
func (t *Tracker) Snapshot() []TrackedObject {
	t.RLock()
	defer t.RUnlock()

	objects := make([]TrackedObject, 0, len(t.ids))
	for _, id := range t.ids {
		objects = append(objects, *t.objects[id])
	}

	return objects
}

// snapshotIDs returns a copy of the current id order so callers can
// iterate while evictions mutate the live slice
func (t *Tracker) snapshotIDs() []int {
	ids := make([]int, len(t.ids))
	copy(ids, t.ids)
	return ids
}

// registerAll registers every detection as a brand new tracked object.
// Registration never increments a count, counting is deferred until
// movement is confirmed
func (t *Tracker) registerAll(detections []Detection, centroids []Point) []int {
	newIDs := make([]int, 0, len(detections))

	for i, det := range detections {
		newIDs = append(newIDs, t.register(det.Class, centroids[i]))
	}

	return newIDs
}

// register creates a tracked object for a first sighting and returns its id
func (t *Tracker) register(class VehicleClass, centroid Point) int {
	obj := &TrackedObject{
		ID:       t.nextID,
		Centroid: centroid,
		Class:    class,
	}

	t.objects[obj.ID] = obj
	t.ids = append(t.ids, obj.ID)
	t.nextID++

	return obj.ID
}

// ageObject increments the disappeared counter of the given object and
// evicts it once the counter exceeds the maximum
func (t *Tracker) ageObject(id int) {
	obj := t.objects[id]
	obj.Disappeared++

	if obj.Disappeared > t.cfg.MaxDisappeared {
		t.evict(id)
	}
}

// evict removes an object from tracked state.  Its id is never reused
func (t *Tracker) evict(id int) {
	delete(t.objects, id)

	for i, oid := range t.ids {
		if oid == id {
			t.ids = append(t.ids[:i], t.ids[i+1:]...)
			break
		}
	}
}

// matchAndUpdate associates the frame's detections with tracked objects
// using a greedy nearest-neighbour scan over the full distance matrix.
// This is deliberately not an optimal assignment, ties and cascading
// suboptimal matches are accepted
func (t *Tracker) matchAndUpdate(detections []Detection, centroids []Point) []int {
	// order of rows is fixed before any eviction or registration below
	ids := t.snapshotIDs()
	rows := len(ids)
	cols := len(centroids)

	dist := mat.NewDense(rows, cols, nil)

	for i, id := range ids {
		obj := t.objects[id]
		for j, c := range centroids {
			dist.Set(i, j, Distance(obj.Centroid, c))
		}
	}

	matchedRows := make(map[int]bool)
	matchedCols := make(map[int]bool)

	pairs := rows
	if cols < pairs {
		pairs = cols
	}

	for k := 0; k < pairs; k++ {
		i, j, d := argmin(dist)

		// a NaN distance compares false here so a malformed detection is
		// simply never matched
		if !(d < t.cfg.DistanceThreshold) {
			break
		}

		t.applyMatch(t.objects[ids[i]], centroids[j])
		matchedRows[i] = true
		matchedCols[j] = true

		// mask the matched row and column from further consideration
		for jj := 0; jj < cols; jj++ {
			dist.Set(i, jj, math.Inf(1))
		}
		for ii := 0; ii < rows; ii++ {
			dist.Set(ii, j, math.Inf(1))
		}
	}

	// age objects that went unmatched this frame
	for i, id := range ids {
		if !matchedRows[i] {
			t.ageObject(id)
		}
	}

	// unmatched detections are either rediscovered lost objects or brand
	// new registrations
	var newIDs []int

	for j, c := range centroids {
		if matchedCols[j] {
			continue
		}

		if t.rediscover(c) {
			continue
		}

		newIDs = append(newIDs, t.register(detections[j].Class, c))
	}

	return newIDs
}

// applyMatch updates a tracked object with its matched centroid and runs
// the parked/counting state machine for the frame
func (t *Tracker) applyMatch(obj *TrackedObject, centroid Point) {
	movement := Distance(obj.Centroid, centroid)

	obj.Centroid = centroid
	obj.Disappeared = 0
	obj.TotalMovement += movement

	if movement < t.cfg.MovementThreshold {
		obj.StationaryFrames++
	} else {
		obj.StationaryFrames = 0
		obj.IsParked = false

		if !obj.HasMoved {
			obj.HasMoved = true

			// confirmed movement is the only path that increments a
			// count, so vehicles already parked at session start are
			// never counted
			if !obj.Counted {
				t.counts[obj.Class]++
				obj.Counted = true
			}
		}
	}

	if obj.StationaryFrames > t.cfg.ParkedThreshold {
		obj.IsParked = true
	}
}

// rediscover scans lost objects in registration order and re-binds the
// detection to the first one within the widened distance threshold.
// First candidate wins, candidates are not compared against each other
func (t *Tracker) rediscover(centroid Point) bool {
	limit := t.cfg.DistanceThreshold * t.cfg.RediscoveryMultiplier

	for _, id := range t.ids {
		obj := t.objects[id]

		if obj.Disappeared == 0 {
			continue
		}

		if Distance(obj.Centroid, centroid) < limit {
			obj.Centroid = centroid
			obj.Disappeared = 0
			return true
		}
	}

	return false
}

// argmin returns the row, column and value of the smallest entry in the
// matrix
func argmin(m *mat.Dense) (int, int, float64) {
	rows, cols := m.Dims()

	minI, minJ := 0, 0
	minV := math.Inf(1)

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := m.At(i, j); v < minV {
				minV = v
				minI, minJ = i, j
			}
		}
	}

	return minI, minJ, minV
}
