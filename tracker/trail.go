package tracker

import "sync"

// Track represents a track history
type Track struct {
	points []Point
}

// Trail is the struct to keep a history of Track results used for drawing
// a trail
type Trail struct {
	// size is the maximum number of most recent points to keep in history
	size int
	// history of tracked points
	history map[int]*Track
	sync.Mutex
}

// NewTrail returns a new trail history track instance.  Size is the number
// of most recent trails to keep and specifies the maximum length of the trail
// to maintain
func NewTrail(size int) *Trail {
	return &Trail{
		size:    size,
		history: make(map[int]*Track),
	}
}

// Reset clears all history
func (t *Trail) Reset() {
	t.Lock()
	defer t.Unlock()

	t.history = make(map[int]*Track)
}

// Add a tracked object's centroid to the history
func (t *Trail) Add(obj TrackedObject) {
	t.Lock()
	defer t.Unlock()

	// init map if no history exists yet for track id
	if _, exists := t.history[obj.ID]; !exists {
		t.history[obj.ID] = &Track{}
	}

	track := t.history[obj.ID]

	track.points = append(track.points, obj.Centroid)

	// check if history is exceeded and drop oldest point
	if len(track.points) > t.size {
		track.points = track.points[1:]
	}
}

// GetPoints gets the point history for a specific track id
func (t *Trail) GetPoints(id int) []Point {
	t.Lock()
	defer t.Unlock()

	if _, exists := t.history[id]; exists {
		return t.history[id].points
	}

	// no history yet
	return nil
}
