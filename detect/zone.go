package detect

import (
	"errors"
	"image"
	"math"

	clipper "github.com/ctessum/go.clipper"
)

// DefaultZoneOverlap is the minimum ratio of a detection box's area that
// must fall inside the zone polygon for the detection to be kept
const DefaultZoneOverlap = 0.5

// Zone restricts detections to a polygon region of the frame, such as the
// carriageway in view of a roadside camera
type Zone struct {
	polygon clipper.Path
	// minOverlap is the minimum inside-area ratio for a box to be kept
	minOverlap float64
}

// NewZone creates a zone from the given polygon vertices in frame
// coordinates.  A minOverlap of zero selects DefaultZoneOverlap
func NewZone(points []image.Point, minOverlap float64) (*Zone, error) {

	if len(points) < 3 {
		return nil, errors.New("zone polygon requires at least 3 points")
	}

	if minOverlap == 0 {
		minOverlap = DefaultZoneOverlap
	}

	var polygon clipper.Path

	for _, pt := range points {
		polygon = append(polygon, &clipper.IntPoint{
			X: clipper.CInt(pt.X),
			Y: clipper.CInt(pt.Y),
		})
	}

	return &Zone{
		polygon:    polygon,
		minOverlap: minOverlap,
	}, nil
}

// Contains reports whether enough of the given box area lies inside the
// zone polygon
func (z *Zone) Contains(box BoxRect) bool {

	boxArea := (box.Right - box.Left) * (box.Bottom - box.Top)

	if boxArea <= 0 {
		return false
	}

	boxPath := clipper.Path{
		&clipper.IntPoint{X: clipper.CInt(box.Left), Y: clipper.CInt(box.Top)},
		&clipper.IntPoint{X: clipper.CInt(box.Right), Y: clipper.CInt(box.Top)},
		&clipper.IntPoint{X: clipper.CInt(box.Right), Y: clipper.CInt(box.Bottom)},
		&clipper.IntPoint{X: clipper.CInt(box.Left), Y: clipper.CInt(box.Bottom)},
	}

	c := clipper.NewClipper(clipper.IoNone)
	c.AddPath(boxPath, clipper.PtSubject, true)
	c.AddPath(z.polygon, clipper.PtClip, true)

	solution, ok := c.Execute1(clipper.CtIntersection,
		clipper.PftEvenOdd, clipper.PftEvenOdd)

	if !ok {
		return false
	}

	var inside float64

	for _, path := range solution {
		inside += math.Abs(clipper.Area(path))
	}

	return inside/boxArea >= z.minOverlap
}

// Filter returns the subset of results whose boxes satisfy the zone
// overlap requirement
func (z *Zone) Filter(results []Result) []Result {

	var kept []Result

	for _, res := range results {
		if z.Contains(res.Box) {
			kept = append(kept, res)
		}
	}

	return kept
}
