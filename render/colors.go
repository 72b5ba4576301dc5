// Package render draws detection boxes, trails and count overlays on video
// frames
package render

import (
	"image/color"

	"github.com/roadsight/go-trafficcam/tracker"
)

var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 50, A: 255}

	// ParkedColor is the grey used for vehicles flagged as parked
	ParkedColor = color.RGBA{R: 128, G: 128, B: 128, A: 255}

	// ZoneColor outlines the counting zone polygon
	ZoneColor = color.RGBA{R: 255, G: 255, B: 0, A: 255}

	// classColors are the box colors per vehicle class
	classColors = map[tracker.VehicleClass]color.RGBA{
		tracker.Car:        {R: 0, G: 255, B: 0, A: 255},
		tracker.Motorcycle: {R: 0, G: 0, B: 255, A: 255},
		tracker.Bus:        {R: 255, G: 0, B: 0, A: 255},
		tracker.Truck:      {R: 255, G: 255, B: 0, A: 255},
	}
)

// ClassColor returns the box color for the given vehicle class
func ClassColor(class tracker.VehicleClass) color.RGBA {

	if clr, ok := classColors[class]; ok {
		return clr
	}

	return White
}
