package trafficcam

import (
	"github.com/roadsight/go-trafficcam/tracker"
)

// Default tuning values, calibrated for 1280 px wide footage of a two lane
// road viewed from the kerbside
const (
	// DefaultConfidence is the minimum detector score for a detection to
	// be considered
	DefaultConfidence = 0.35
	// DefaultDistanceThreshold is the base centroid match distance in
	// pixels
	DefaultDistanceThreshold = 150.0
	// DefaultMovementThreshold is the base per frame movement in pixels
	// below which an object is considered stationary
	DefaultMovementThreshold = 15.0
	// DefaultMaxDisappeared is the base number of consecutive unseen
	// frames before a tracked object is dropped
	DefaultMaxDisappeared = 45
	// DefaultParkedThreshold is the number of stationary frames after
	// which a vehicle is treated as parked
	DefaultParkedThreshold = 200
	// DefaultSkipFrames processes every Nth frame of the source
	DefaultSkipFrames = 2
	// ReferenceWidth is the source width the base thresholds are
	// calibrated against
	ReferenceWidth = 1280
)

// Clamp bounds for resolution scaled thresholds
const (
	minDistanceThreshold = 50.0
	minMovementThreshold = 5.0
	maxConfidence        = 0.6
)

// Params holds the base tuning values of a monitoring session.  Derived
// tracker thresholds are produced by TrackerConfig
type Params struct {
	// Confidence is the minimum detector score
	Confidence float64
	// DistanceThreshold is the base centroid match distance in pixels
	DistanceThreshold float64
	// MovementThreshold is the base stationary movement cutoff in pixels
	MovementThreshold float64
	// MaxDisappeared is the base unseen frame limit
	MaxDisappeared int
	// ParkedThreshold is the stationary frame limit before a vehicle is
	// flagged parked
	ParkedThreshold int
	// SkipFrames processes every Nth frame, minimum 1
	SkipFrames int
}

// DefaultParams returns the default tuning values
func DefaultParams() Params {
	return Params{
		Confidence:        DefaultConfidence,
		DistanceThreshold: DefaultDistanceThreshold,
		MovementThreshold: DefaultMovementThreshold,
		MaxDisappeared:    DefaultMaxDisappeared,
		ParkedThreshold:   DefaultParkedThreshold,
		SkipFrames:        DefaultSkipFrames,
	}
}

// skip returns the frame skip rate with a floor of 1
func (p Params) skip() int {
	if p.SkipFrames < 1 {
		return 1
	}

	return p.SkipFrames
}

// widthFactor returns the threshold scale factor for the given source
// width.  Sources at or above the reference width are unscaled, narrower
// sources scale down proportionally with a floor of 0.5
func (p Params) widthFactor(srcWidth int) float64 {

	if srcWidth <= 0 || srcWidth >= ReferenceWidth {
		return 1.0
	}

	factor := float64(srcWidth) / float64(ReferenceWidth)

	if factor < 0.5 {
		factor = 0.5
	}

	return factor
}

// TrackerConfig derives the tracker thresholds for a source of the given
// width in pixels.
//
// When frames are skipped the tracker sees fewer observations of each
// vehicle, so the unseen frame limit shrinks by the skip rate while the
// match distance grows to cover the larger per observation movement.
// Narrower sources shrink the pixel thresholds proportionally, clamped to
// minimum usable values
func (p Params) TrackerConfig(srcWidth int) tracker.Config {

	skip := p.skip()

	maxDisappeared := p.MaxDisappeared / skip

	if maxDisappeared < 1 {
		maxDisappeared = 1
	}

	distance := p.DistanceThreshold * (1 + float64(skip-1)*0.2)
	movement := p.MovementThreshold

	factor := p.widthFactor(srcWidth)
	distance *= factor
	movement *= factor

	if distance < minDistanceThreshold {
		distance = minDistanceThreshold
	}

	if movement < minMovementThreshold {
		movement = minMovementThreshold
	}

	return tracker.Config{
		DistanceThreshold: distance,
		MovementThreshold: movement,
		MaxDisappeared:    maxDisappeared,
		ParkedThreshold:   p.ParkedThreshold,
	}
}

// ConfidenceFor returns the detector confidence floor for a source of the
// given width.  Narrow sources produce noisier detections so the floor is
// raised, capped at a maximum
func (p Params) ConfidenceFor(srcWidth int) float64 {

	factor := p.widthFactor(srcWidth)

	conf := p.Confidence + (1-factor)*0.25

	if conf > maxConfidence {
		conf = maxConfidence
	}

	return conf
}
