package trafficcam

import (
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/roadsight/go-trafficcam/detect"
	"github.com/roadsight/go-trafficcam/store"
	"github.com/roadsight/go-trafficcam/tracker"
)

// pauseInterval is how long the frame loop sleeps between checks while the
// session is paused
const pauseInterval = 100 * time.Millisecond

// FrameSource supplies frames to a monitoring session
type FrameSource interface {
	// Read grabs the next frame into dest, returning false at end of
	// stream
	Read(dest *gocv.Mat) bool
	// IsLive reports whether the source is a live camera
	IsLive() bool
	// Desc describes the source for logs and session records
	Desc() string
}

// Stats are the frame counters of a running session
type Stats struct {
	// FramesRead is the total number of frames read from the source
	FramesRead int
	// FramesProcessed is the number of frames run through detection and
	// tracking after frame skipping
	FramesProcessed int
	// StartedAt is when the session frame loop began
	StartedAt time.Time
}

// SessionConfig holds the optional collaborators of a monitoring session
type SessionConfig struct {
	// SkipFrames processes every Nth frame, minimum 1
	SkipFrames int
	// Zone optionally restricts counting to a polygon region of the frame
	Zone *detect.Zone
	// OnFrame is called after each processed frame with the frame and the
	// vehicle detections of that frame.  The frame is only valid for the
	// duration of the call
	OnFrame func(frame gocv.Mat, dets []tracker.Detection)
}

// Session drives one monitoring run: it reads frames from the source,
// detects vehicles, feeds the tracker and exposes the running counts.
// Run executes on the calling goroutine, the control and snapshot methods
// may be called from others
type Session struct {
	src  FrameSource
	det  detect.Detector
	trk  *tracker.Tracker
	zone *detect.Zone
	skip int

	onFrame func(gocv.Mat, []tracker.Detection)

	mu     sync.Mutex
	paused bool
	stats  Stats

	stop     chan struct{}
	stopOnce sync.Once
}

// NewSession creates a monitoring session over the given source, detector
// and tracker
func NewSession(src FrameSource, det detect.Detector, trk *tracker.Tracker,
	cfg SessionConfig) *Session {

	skip := cfg.SkipFrames

	if skip < 1 {
		skip = 1
	}

	return &Session{
		src:     src,
		det:     det,
		trk:     trk,
		zone:    cfg.Zone,
		skip:    skip,
		onFrame: cfg.OnFrame,
		stop:    make(chan struct{}),
	}
}

// Run executes the frame loop until the source ends or Stop is called.
// It blocks the calling goroutine and returns a detector error if one
// occurs
func (s *Session) Run() error {

	s.mu.Lock()
	s.stats.StartedAt = time.Now()
	s.mu.Unlock()

	frame := gocv.NewMat()
	defer frame.Close()

	for {
		select {
		case <-s.stop:
			return nil
		default:
		}

		if s.isPaused() {
			time.Sleep(pauseInterval)
			continue
		}

		if !s.src.Read(&frame) {
			// end of stream
			return nil
		}

		s.mu.Lock()
		s.stats.FramesRead++
		read := s.stats.FramesRead
		s.mu.Unlock()

		if read%s.skip != 0 {
			continue
		}

		results, err := s.det.Detect(frame)

		if err != nil {
			return fmt.Errorf("error detecting frame %d: %w", read, err)
		}

		if s.zone != nil {
			results = s.zone.Filter(results)
		}

		dets := tracker.ResultsToDetections(results)
		s.trk.Update(dets)

		s.mu.Lock()
		s.stats.FramesProcessed++
		s.mu.Unlock()

		if s.onFrame != nil {
			s.onFrame(frame, dets)
		}
	}
}

// Stop ends the frame loop.  It is safe to call more than once and from
// any goroutine
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

// Pause suspends frame processing without ending the session
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.paused = true
}

// Resume continues frame processing after a pause
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.paused = false
}

func (s *Session) isPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.paused
}

// Stats returns a snapshot of the session frame counters
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stats
}

// Tracker returns the session's tracker for count and object snapshots
func (s *Session) Tracker() *tracker.Tracker {
	return s.trk
}

// Summary builds the persistable record of the session so far
func (s *Session) Summary() store.Session {

	s.mu.Lock()
	started := s.stats.StartedAt
	s.mu.Unlock()

	counts := s.trk.Counts()

	return store.Session{
		Timestamp:   time.Now(),
		Source:      s.src.Desc(),
		Duration:    time.Since(started),
		Cars:        counts[tracker.Car],
		Motorcycles: counts[tracker.Motorcycle],
		Buses:       counts[tracker.Bus],
		Trucks:      counts[tracker.Truck],
	}
}
