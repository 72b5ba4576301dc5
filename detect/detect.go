// Package detect provides vehicle detection on video frames using OpenCV's
// DNN module via gocv
package detect

import (
	"gocv.io/x/gocv"
)

// BoxRect are the dimensions of the bounding box of a detected object in
// source frame coordinates
type BoxRect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// Result defines the attributes of a single object detected
type Result struct {
	// Class is the line number in the labels file the Model was trained on
	// defining the Class of the detected object
	Class int
	// Box are the bounding box dimensions of the object location
	Box BoxRect
	// Probability is the confidence score of the object detected
	Probability float32
	// ID is a unique ID assigned to the detection result
	ID int64
}

// Detector runs object detection on a single frame
type Detector interface {
	// Detect runs inference on the given frame and returns the detected
	// objects
	Detect(img gocv.Mat) ([]Result, error)
	// Close releases resources held by the detector
	Close() error
}
