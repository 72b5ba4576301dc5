package detect

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// DefaultInputSize is the width and height of the square input tensor the
// standard YOLOv8 models are exported with
const DefaultInputSize = 640

// YOLOv8 runs a YOLOv8 ONNX model through OpenCV's DNN module
type YOLOv8 struct {
	net gocv.Net
	// confThreshold is the minimum class score for a detection to be kept
	confThreshold float32
	// nmsThreshold is the IoU threshold used during non-maximum suppression
	nmsThreshold float32
	inputSize    int
	// resizer is lazily created for the source frame dimensions and
	// recreated if they change
	resizer *Resizer
	// square holds the letterboxed model input frame
	square gocv.Mat
	idGen  int64
}

// NewYOLOv8 loads the YOLOv8 ONNX model at the given path
func NewYOLOv8(modelFile string, confThreshold, nmsThreshold float32) (*YOLOv8, error) {

	net := gocv.ReadNetFromONNX(modelFile)

	if net.Empty() {
		return nil, fmt.Errorf("error loading model file %s", modelFile)
	}

	return &YOLOv8{
		net:           net,
		confThreshold: confThreshold,
		nmsThreshold:  nmsThreshold,
		inputSize:     DefaultInputSize,
		square:        gocv.NewMat(),
	}, nil
}

// Close releases the network and working Mats
func (y *YOLOv8) Close() error {

	if y.resizer != nil {
		y.resizer.Close()
	}

	y.square.Close()

	return y.net.Close()
}

// Detect runs inference on the given BGR frame and returns all detected
// objects in source frame coordinates
func (y *YOLOv8) Detect(img gocv.Mat) ([]Result, error) {

	if img.Empty() {
		return nil, errors.New("empty input frame")
	}

	if y.resizer == nil || y.resizer.SrcWidth() != img.Cols() ||
		y.resizer.SrcHeight() != img.Rows() {

		if y.resizer != nil {
			y.resizer.Close()
		}

		y.resizer = NewResizer(img.Cols(), img.Rows(), y.inputSize)
	}

	y.resizer.LetterBox(img, &y.square)

	blob := gocv.BlobFromImage(y.square, 1.0/255.0,
		image.Pt(y.inputSize, y.inputSize), gocv.NewScalar(0, 0, 0, 0),
		true, false)
	defer blob.Close()

	y.net.SetInput(blob, "")

	output := y.net.Forward("")
	defer output.Close()

	return y.decode(output), nil
}

// decode parses the model output tensor of shape [1, 4+classes, anchors]
// where the first four rows are the box center x, center y, width and height
// in model input coordinates, followed by one score row per class
func (y *YOLOv8) decode(output gocv.Mat) []Result {

	sizes := output.Size()

	if len(sizes) != 3 {
		return nil
	}

	rows := sizes[1]
	anchors := sizes[2]
	numClasses := rows - 4

	data := output.Reshape(1, rows)
	defer data.Close()

	var boxes []float32
	var scores []float32
	var classIds []int

	classSet := make(map[int]bool)
	validCount := 0

	for a := 0; a < anchors; a++ {

		bestScore := float32(0)
		bestClass := -1

		for c := 0; c < numClasses; c++ {
			if s := data.GetFloatAt(4+c, a); s > bestScore {
				bestScore = s
				bestClass = c
			}
		}

		if bestScore < y.confThreshold {
			continue
		}

		cx := data.GetFloatAt(0, a)
		cy := data.GetFloatAt(1, a)
		w := data.GetFloatAt(2, a)
		h := data.GetFloatAt(3, a)

		// store as left, top, width, height
		boxes = append(boxes, cx-w/2, cy-h/2, w, h)
		scores = append(scores, bestScore)
		classIds = append(classIds, bestClass)
		classSet[bestClass] = true
		validCount++
	}

	if validCount == 0 {
		return nil
	}

	order := make([]int, validCount)
	for i := range order {
		order[i] = i
	}

	sortScores := make([]float32, validCount)
	copy(sortScores, scores)
	quickSortIndiceInverse(sortScores, 0, validCount-1, order)

	for classId := range classSet {
		nms(validCount, boxes, classIds, order, classId, y.nmsThreshold)
	}

	var results []Result

	for i := 0; i < validCount; i++ {

		n := order[i]

		if n == -1 {
			continue
		}

		left := boxes[n*4+0]
		top := boxes[n*4+1]
		right := left + boxes[n*4+2]
		bottom := top + boxes[n*4+3]

		y.idGen++

		results = append(results, Result{
			Class:       classIds[n],
			Box:         y.resizer.MapBack(left, top, right, bottom),
			Probability: scores[n],
			ID:          y.idGen,
		})
	}

	return results
}
