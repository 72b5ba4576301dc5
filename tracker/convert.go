package tracker

import "github.com/roadsight/go-trafficcam/detect"

// cocoVehicleClasses maps COCO dataset class ids to vehicle classes.
// Detections of any other class are discarded
var cocoVehicleClasses = map[int]VehicleClass{
	2: Car,
	3: Motorcycle,
	5: Bus,
	7: Truck,
}

// ResultsToDetections takes detector results and converts them into tracker
// detections.  Non-vehicle classes and results with non-finite box
// coordinates are dropped
func ResultsToDetections(results []detect.Result) []Detection {

	var dets []Detection

	for _, res := range results {

		class, ok := cocoVehicleClasses[res.Class]

		if !ok {
			continue
		}

		box := NewBox(res.Box.Left, res.Box.Top, res.Box.Right, res.Box.Bottom)

		if !box.IsFinite() {
			continue
		}

		dets = append(dets, NewDetection(box, class, float64(res.Probability)))
	}

	return dets
}
