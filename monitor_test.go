package trafficcam

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/roadsight/go-trafficcam/detect"
	"github.com/roadsight/go-trafficcam/tracker"
)

// stubSource yields a fixed number of frames then reports end of stream
type stubSource struct {
	frames int
	read   int
	live   bool
}

func (s *stubSource) Read(dest *gocv.Mat) bool {
	if !s.live && s.read >= s.frames {
		return false
	}

	s.read++
	return true
}

func (s *stubSource) IsLive() bool { return s.live }

func (s *stubSource) Desc() string { return "stub" }

// stubDetector reports one car moving 40 px to the right on every call
type stubDetector struct {
	calls int
}

func (d *stubDetector) Detect(img gocv.Mat) ([]detect.Result, error) {

	x := float64(10 + d.calls*40)
	d.calls++

	return []detect.Result{
		{
			Class:       2,
			Box:         detect.BoxRect{Left: x, Top: 50, Right: x + 30, Bottom: 80},
			Probability: 0.9,
		},
	}, nil
}

func (d *stubDetector) Close() error { return nil }

func testTracker() *tracker.Tracker {
	return tracker.NewTracker(tracker.Config{
		DistanceThreshold: 100,
		MovementThreshold: 10,
		MaxDisappeared:    5,
		ParkedThreshold:   10,
	})
}

func TestSessionRunToEndOfStream(t *testing.T) {

	src := &stubSource{frames: 8}
	det := &stubDetector{}
	trk := testTracker()

	var frameCalls int

	sess := NewSession(src, det, trk, SessionConfig{
		SkipFrames: 2,
		OnFrame: func(frame gocv.Mat, dets []tracker.Detection) {
			frameCalls++
			assert.Len(t, dets, 1)
		},
	})

	require.NoError(t, sess.Run())

	stats := sess.Stats()
	assert.Equal(t, 8, stats.FramesRead)
	assert.Equal(t, 4, stats.FramesProcessed)
	assert.Equal(t, 4, frameCalls)

	// the car moved well over the movement threshold between processed
	// frames so it is counted exactly once
	assert.Equal(t, 1, trk.TotalCount())

	summary := sess.Summary()
	assert.Equal(t, "stub", summary.Source)
	assert.Equal(t, 1, summary.Cars)
	assert.Equal(t, 1, summary.Total())
}

func TestSessionStop(t *testing.T) {

	src := &stubSource{live: true}
	sess := NewSession(src, &stubDetector{}, testTracker(), SessionConfig{})

	done := make(chan error, 1)

	go func() {
		done <- sess.Run()
	}()

	// let the loop spin before stopping it
	time.Sleep(50 * time.Millisecond)
	sess.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop")
	}

	// Stop is idempotent
	sess.Stop()
}

func TestSessionPauseResume(t *testing.T) {

	src := &stubSource{live: true}
	sess := NewSession(src, &stubDetector{}, testTracker(), SessionConfig{})

	sess.Pause()

	done := make(chan error, 1)

	go func() {
		done <- sess.Run()
	}()

	// while paused no frames are read
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, 0, sess.Stats().FramesRead)

	sess.Resume()
	time.Sleep(250 * time.Millisecond)

	assert.Greater(t, sess.Stats().FramesRead, 0)

	sess.Stop()
	require.NoError(t, <-done)
}

func TestSessionSkipFloor(t *testing.T) {

	src := &stubSource{frames: 3}
	sess := NewSession(src, &stubDetector{}, testTracker(), SessionConfig{
		SkipFrames: 0,
	})

	require.NoError(t, sess.Run())

	stats := sess.Stats()
	assert.Equal(t, 3, stats.FramesRead)
	assert.Equal(t, 3, stats.FramesProcessed)
}
