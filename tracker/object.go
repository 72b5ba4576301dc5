package tracker

// VehicleClass is the type of vehicle a detection or tracked object
// belongs to
type VehicleClass int

const (
	Car VehicleClass = iota
	Motorcycle
	Bus
	Truck
)

// classNames are the display names for each vehicle class
var classNames = map[VehicleClass]string{
	Car:        "car",
	Motorcycle: "motorcycle",
	Bus:        "bus",
	Truck:      "truck",
}

// String returns the display name of the vehicle class
func (c VehicleClass) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}

	return "unknown"
}

// Classes returns all vehicle classes in a fixed order
func Classes() []VehicleClass {
	return []VehicleClass{Car, Motorcycle, Bus, Truck}
}

// Detection represents a single vehicle candidate reported by the object
// detector for one frame
type Detection struct {
	// Box is the bounding box of the detected vehicle
	Box Box
	// Class is the type of vehicle detected
	Class VehicleClass
	// Confidence is the detector score of the detection.  It is carried
	// for rendering only, the tracker does not threshold on it
	Confidence float64
}

// NewDetection is a constructor function for the Detection struct
func NewDetection(box Box, class VehicleClass, confidence float64) Detection {
	return Detection{
		Box:        box,
		Class:      class,
		Confidence: confidence,
	}
}

// TrackedObject represents one physical vehicle followed across frames
type TrackedObject struct {
	// ID is the unique id assigned at registration, never reused within
	// a session
	ID int
	// Centroid is the last known pixel position of the vehicle
	Centroid Point
	// Class is the vehicle class fixed at registration
	Class VehicleClass
	// Disappeared counts consecutive frames since the last successful match
	Disappeared int
	// Counted is true once this vehicle has contributed to the aggregate
	// count
	Counted bool
	// StationaryFrames counts consecutive matched frames with movement
	// below the movement threshold
	StationaryFrames int
	// IsParked is true while the vehicle has been stationary for longer
	// than the parked threshold
	IsParked bool
	// TotalMovement is the cumulative distance travelled across all
	// matched frames, kept for diagnostics
	TotalMovement float64
	// HasMoved is true once the vehicle has exhibited at least one frame
	// of movement at or above the movement threshold
	HasMoved bool
}
