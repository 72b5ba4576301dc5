// Package video wraps gocv video capture for file and live camera sources
package video

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Source is a frame source backed by a video file or camera device
type Source struct {
	cap *gocv.VideoCapture
	// desc identifies the source in logs and session records
	desc string
	// live is true for camera sources which have no natural end of stream
	live bool
}

// OpenFile opens a video file as a frame source
func OpenFile(path string) (*Source, error) {

	cap, err := gocv.VideoCaptureFile(path)

	if err != nil {
		return nil, fmt.Errorf("error opening video file %s: %w", path, err)
	}

	return &Source{
		cap:  cap,
		desc: path,
	}, nil
}

// OpenCamera opens a camera device as a frame source.  A zero width or
// height leaves the device's default capture resolution in place
func OpenCamera(device int, width, height int) (*Source, error) {

	cap, err := gocv.VideoCaptureDevice(device)

	if err != nil {
		return nil, fmt.Errorf("error opening camera device %d: %w", device, err)
	}

	// keep the driver buffer short so frames are as close to realtime as
	// possible
	cap.Set(gocv.VideoCaptureBufferSize, 1)

	if width > 0 && height > 0 {
		cap.Set(gocv.VideoCaptureFrameWidth, float64(width))
		cap.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}

	return &Source{
		cap:  cap,
		desc: fmt.Sprintf("camera:%d", device),
		live: true,
	}, nil
}

// Read grabs the next frame into dest.  It returns false at end of stream
// or on a device read failure
func (s *Source) Read(dest *gocv.Mat) bool {
	return s.cap.Read(dest)
}

// FPS returns the frame rate reported by the source
func (s *Source) FPS() float64 {
	return s.cap.Get(gocv.VideoCaptureFPS)
}

// Width returns the frame width in pixels
func (s *Source) Width() int {
	return int(s.cap.Get(gocv.VideoCaptureFrameWidth))
}

// Height returns the frame height in pixels
func (s *Source) Height() int {
	return int(s.cap.Get(gocv.VideoCaptureFrameHeight))
}

// IsLive reports whether the source is a live camera
func (s *Source) IsLive() bool {
	return s.live
}

// Desc returns a human readable description of the source
func (s *Source) Desc() string {
	return s.desc
}

// Close releases the underlying capture device
func (s *Source) Close() error {
	return s.cap.Close()
}
