package detect

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// padColor is the grey used for letterbox padding, matching the value the
// YOLO family of models is trained with
var padColor = color.RGBA{R: 114, G: 114, B: 114, A: 255}

// Resizer handles letterbox scaling of source frames to the square model
// input and maps detected boxes back into source frame coordinates
type Resizer struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// inputSize is the width and height of the square model input
	inputSize int
	// scratch is a Mat used during the resize process
	scratch gocv.Mat
	// letterbox parameters used in scaling
	xPad  int
	yPad  int
	scale float32
	// resize dimensions
	resizeW int
	resizeH int
}

// NewResizer returns a resizer for scaling images of the given source
// dimensions to the model input size
func NewResizer(srcWidth, srcHeight, inputSize int) *Resizer {

	r := &Resizer{
		srcWidth:  srcWidth,
		srcHeight: srcHeight,
		inputSize: inputSize,
		scratch:   gocv.NewMat(),
	}

	// precalculate scaling dimensions
	scaleW := float32(inputSize) / float32(srcWidth)
	scaleH := float32(inputSize) / float32(srcHeight)

	r.scale = scaleH
	r.resizeW = inputSize
	r.resizeH = inputSize

	if scaleW < scaleH {
		r.scale = scaleW
		r.resizeH = int(float32(srcHeight) * r.scale)
	} else {
		r.resizeW = int(float32(srcWidth) * r.scale)
	}

	r.xPad = (inputSize - r.resizeW) / 2
	r.yPad = (inputSize - r.resizeH) / 2

	return r
}

// Close frees memory allocated during the resize process
func (r *Resizer) Close() error {
	return r.scratch.Close()
}

// LetterBox resizes the source image into dest whilst maintaining image
// aspect, padding the remainder with grey
func (r *Resizer) LetterBox(src gocv.Mat, dest *gocv.Mat) {

	gocv.Resize(src, &r.scratch, image.Pt(r.resizeW, r.resizeH),
		0, 0, gocv.InterpolationArea)

	gocv.CopyMakeBorder(r.scratch, dest,
		r.yPad, r.inputSize-r.resizeH-r.yPad,
		r.xPad, r.inputSize-r.resizeW-r.xPad,
		gocv.BorderConstant, padColor)
}

// MapBack converts a box in model input coordinates back to source frame
// coordinates, clamped to the frame bounds
func (r *Resizer) MapBack(left, top, right, bottom float32) BoxRect {

	l := (left - float32(r.xPad)) / r.scale
	t := (top - float32(r.yPad)) / r.scale
	rt := (right - float32(r.xPad)) / r.scale
	b := (bottom - float32(r.yPad)) / r.scale

	return BoxRect{
		Left:   float64(clampF(l, 0, float32(r.srcWidth-1))),
		Top:    float64(clampF(t, 0, float32(r.srcHeight-1))),
		Right:  float64(clampF(rt, 0, float32(r.srcWidth-1))),
		Bottom: float64(clampF(b, 0, float32(r.srcHeight-1))),
	}
}

// SrcWidth returns the width of the source image
func (r *Resizer) SrcWidth() int {
	return r.srcWidth
}

// SrcHeight returns the height of the source image
func (r *Resizer) SrcHeight() int {
	return r.srcHeight
}
