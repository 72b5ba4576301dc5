package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sessionsSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	source TEXT NOT NULL,
	duration_secs REAL NOT NULL,
	cars INTEGER NOT NULL,
	motorcycles INTEGER NOT NULL,
	buses INTEGER NOT NULL,
	trucks INTEGER NOT NULL,
	total INTEGER NOT NULL
);
`

// DB is the sqlite backed session history store
type DB struct {
	db *sql.DB
}

// OpenDB opens the sqlite database at path, creating the schema when it
// does not exist yet
func OpenDB(path string) (*DB, error) {

	db, err := sql.Open("sqlite", path)

	if err != nil {
		return nil, fmt.Errorf("error opening database %s: %w", path, err)
	}

	if _, err := db.Exec(sessionsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the underlying database
func (d *DB) Close() error {
	return d.db.Close()
}

// RecordSession appends a completed session to the history
func (d *DB) RecordSession(session Session) error {

	_, err := d.db.Exec(
		`INSERT INTO sessions
			(timestamp, source, duration_secs, cars, motorcycles, buses,
			trucks, total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.Timestamp.Format(time.RFC3339),
		session.Source,
		session.Duration.Seconds(),
		session.Cars,
		session.Motorcycles,
		session.Buses,
		session.Trucks,
		session.Total(),
	)

	if err != nil {
		return fmt.Errorf("error inserting session: %w", err)
	}

	return nil
}

// Sessions returns all recorded sessions in chronological order
func (d *DB) Sessions() ([]Session, error) {

	rows, err := d.db.Query(
		`SELECT timestamp, source, duration_secs, cars, motorcycles,
			buses, trucks
		FROM sessions ORDER BY id`)

	if err != nil {
		return nil, fmt.Errorf("error querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session

	for rows.Next() {

		var s Session
		var ts string
		var secs float64

		err := rows.Scan(&ts, &s.Source, &secs, &s.Cars, &s.Motorcycles,
			&s.Buses, &s.Trucks)

		if err != nil {
			return nil, fmt.Errorf("error scanning session row: %w", err)
		}

		s.Timestamp, err = time.Parse(time.RFC3339, ts)

		if err != nil {
			return nil, fmt.Errorf("error parsing session timestamp: %w", err)
		}

		s.Duration = time.Duration(secs * float64(time.Second))

		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}

	return sessions, nil
}
