package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/roadsight/go-trafficcam/tracker"
)

// boxLabel holds the pre calculated rendering details of a box label
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// VehicleBoxes renders the bounding boxes around detected vehicles.  Moving
// vehicles are drawn in their class color with a class and confidence
// label, vehicles the tracker reports as parked are drawn thin and grey
// with a PARKED label
func VehicleBoxes(img *gocv.Mat, dets []tracker.Detection, trk *tracker.Tracker,
	font Font, lineThickness int) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0)

	for _, det := range dets {

		boxLeft := int(det.Box.X1)
		boxTop := int(det.Box.Y1)
		boxRight := int(det.Box.X2)
		boxBottom := int(det.Box.Y2)

		useClr := ClassColor(det.Class)
		useThickness := lineThickness
		text := fmt.Sprintf("%s %.2f", det.Class, det.Confidence)

		// parked vehicles are drawn de-emphasized
		if trk.IsParkedNear(det.Box.Centroid(), tracker.DefaultParkedRadius) {
			useClr = ParkedColor
			useThickness = 1
			text = fmt.Sprintf("%s PARKED", det.Class)
		}

		// draw rectangle around detected object
		rect := image.Rect(boxLeft, boxTop, boxRight, boxBottom)
		gocv.Rectangle(img, rect, useClr, useThickness)

		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

		// Calculate the alignment of text label
		var centerX int

		switch font.Alignment {
		case Center:
			centerX = (boxLeft + boxRight) / 2

		case Right:
			centerX = boxRight - (textSize.X / 2) - font.RightPad + (useThickness / 2)

		case Left:
			fallthrough
		default:
			centerX = boxLeft + (textSize.X / 2) + font.LeftPad - (useThickness / 2)
		}

		// Adjust the label position so the text is centered horizontally
		labelPosition := image.Pt(centerX-textSize.X/2, boxTop-font.BottomPad)

		// create box for placing text on
		bRect := image.Rect(centerX-textSize.X/2-font.LeftPad,
			boxTop-textSize.Y-font.TopPad-font.BottomPad,
			centerX+textSize.X/2+font.RightPad, boxTop)

		// record label rendering details
		nextLabel := boxLabel{
			rect:    bRect,
			clr:     useClr,
			text:    text,
			textPos: labelPosition,
		}
		boxLabels = append(boxLabels, nextLabel)
	}

	// draw all precalculated box labels so they are the top most layer on
	// the image and don't get overlapped by neighbouring boxes
	for _, box := range boxLabels {
		// draw box text gets written on
		gocv.Rectangle(img, box.rect, box.clr, -1)

		// Draw the label over box
		gocv.PutTextWithParams(img, box.text, box.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}

// ZoneOutline draws the counting zone polygon on the frame
func ZoneOutline(img *gocv.Mat, points []image.Point, thickness int) {

	if len(points) < 3 {
		return
	}

	for i := range points {
		next := points[(i+1)%len(points)]
		gocv.Line(img, points[i], next, ZoneColor, thickness)
	}
}
