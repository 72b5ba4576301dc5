// Package store persists completed monitoring session results to CSV files
// and a sqlite history database
package store

import "time"

// Session holds the aggregate results of one completed monitoring session
type Session struct {
	// Timestamp is when the session ended
	Timestamp time.Time
	// Source describes the video source that was monitored
	Source string
	// Duration is the wall clock processing time of the session
	Duration time.Duration
	// per class vehicle counts
	Cars        int
	Motorcycles int
	Buses       int
	Trucks      int
}

// Total returns the total number of vehicles counted in the session
func (s Session) Total() int {
	return s.Cars + s.Motorcycles + s.Buses + s.Trucks
}
