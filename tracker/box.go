package tracker

import (
	"math"
)

// Point represents an x,y pixel coordinate
type Point struct {
	X, Y int
}

// Box represents a bounding box in x1,y1,x2,y2 (top left, bottom right)
// format
type Box struct {
	X1, Y1, X2, Y2 float64
}

// NewBox creates a new Box with the given corner coordinates
func NewBox(x1, y1, x2, y2 float64) Box {
	return Box{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Centroid returns the center point of the box truncated to integer
// pixel coordinates
func (b Box) Centroid() Point {
	return Point{
		X: int((b.X1 + b.X2) / 2),
		Y: int((b.Y1 + b.Y2) / 2),
	}
}

// Width returns the width of the box
func (b Box) Width() float64 {
	return b.X2 - b.X1
}

// Height returns the height of the box
func (b Box) Height() float64 {
	return b.Y2 - b.Y1
}

// IsFinite reports whether all box coordinates are finite numbers
func (b Box) IsFinite() bool {
	for _, v := range []float64{b.X1, b.Y1, b.X2, b.Y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

// Distance calculates the Euclidean distance between two points
func Distance(p1, p2 Point) float64 {
	dx := float64(p1.X - p2.X)
	dy := float64(p1.Y - p2.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
