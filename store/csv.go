package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// timestampLayout is the format used for session timestamps in CSV records
const timestampLayout = "2006-01-02 15:04:05"

// csvHeader is the column layout of the session CSV file
var csvHeader = []string{
	"Timestamp", "Source", "Processing Time",
	"Cars", "Motorcycles", "Buses", "Trucks", "Total",
}

// AppendCSV appends a session record to the CSV file at path, writing the
// header first when the file is new
func AppendCSV(path string, session Session) error {

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)

	if err != nil {
		return fmt.Errorf("error opening csv file %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()

	if err != nil {
		return fmt.Errorf("error stating csv file: %w", err)
	}

	w := csv.NewWriter(f)

	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("error writing csv header: %w", err)
		}
	}

	record := []string{
		session.Timestamp.Format(timestampLayout),
		session.Source,
		fmt.Sprintf("%.1f", session.Duration.Seconds()),
		strconv.Itoa(session.Cars),
		strconv.Itoa(session.Motorcycles),
		strconv.Itoa(session.Buses),
		strconv.Itoa(session.Trucks),
		strconv.Itoa(session.Total()),
	}

	if err := w.Write(record); err != nil {
		return fmt.Errorf("error writing csv record: %w", err)
	}

	w.Flush()

	return w.Error()
}

// ReadCSV loads all session records from the CSV file at path
func ReadCSV(path string) ([]Session, error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, fmt.Errorf("error opening csv file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)

	rows, err := r.ReadAll()

	if err != nil {
		return nil, fmt.Errorf("error reading csv file: %w", err)
	}

	var sessions []Session

	for i, row := range rows {

		// skip header row
		if i == 0 {
			continue
		}

		if len(row) != len(csvHeader) {
			return nil, fmt.Errorf("malformed csv record on line %d", i+1)
		}

		ts, err := time.Parse(timestampLayout, row[0])

		if err != nil {
			return nil, fmt.Errorf("error parsing timestamp on line %d: %w",
				i+1, err)
		}

		secs, err := strconv.ParseFloat(row[2], 64)

		if err != nil {
			return nil, fmt.Errorf("error parsing duration on line %d: %w",
				i+1, err)
		}

		counts := make([]int, 4)

		for j := 0; j < 4; j++ {
			counts[j], err = strconv.Atoi(row[3+j])

			if err != nil {
				return nil, fmt.Errorf("error parsing count on line %d: %w",
					i+1, err)
			}
		}

		sessions = append(sessions, Session{
			Timestamp:   ts,
			Source:      row[1],
			Duration:    time.Duration(secs * float64(time.Second)),
			Cars:        counts[0],
			Motorcycles: counts[1],
			Buses:       counts[2],
			Trucks:      counts[3],
		})
	}

	return sessions, nil
}
