package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() Session {
	return Session{
		Timestamp:   time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC),
		Source:      "traffic.mp4",
		Duration:    92 * time.Second,
		Cars:        12,
		Motorcycles: 3,
		Buses:       1,
		Trucks:      4,
	}
}

func TestSessionTotal(t *testing.T) {
	assert.Equal(t, 20, testSession().Total())
}

func TestCSVAppendAndRead(t *testing.T) {

	path := filepath.Join(t.TempDir(), "traffic_data.csv")

	first := testSession()
	second := testSession()
	second.Source = "camera:0"
	second.Cars = 7

	require.NoError(t, AppendCSV(path, first))
	require.NoError(t, AppendCSV(path, second))

	sessions, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	assert.Equal(t, "traffic.mp4", sessions[0].Source)
	assert.Equal(t, 12, sessions[0].Cars)
	assert.Equal(t, 20, sessions[0].Total())
	assert.Equal(t, 92*time.Second, sessions[0].Duration)

	assert.Equal(t, "camera:0", sessions[1].Source)
	assert.Equal(t, 7, sessions[1].Cars)
}

func TestReadCSVMissingFile(t *testing.T) {

	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestSQLiteRecordAndQuery(t *testing.T) {

	path := filepath.Join(t.TempDir(), "history.db")

	db, err := OpenDB(path)
	require.NoError(t, err)
	defer db.Close()

	first := testSession()
	second := testSession()
	second.Source = "camera:0"
	second.Buses = 9

	require.NoError(t, db.RecordSession(first))
	require.NoError(t, db.RecordSession(second))

	sessions, err := db.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	assert.Equal(t, "traffic.mp4", sessions[0].Source)
	assert.Equal(t, 1, sessions[0].Buses)
	assert.True(t, sessions[0].Timestamp.Equal(first.Timestamp))

	assert.Equal(t, "camera:0", sessions[1].Source)
	assert.Equal(t, 9, sessions[1].Buses)
	assert.Equal(t, 28, sessions[1].Total())
}

func TestSQLiteEmptyHistory(t *testing.T) {

	db, err := OpenDB(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer db.Close()

	sessions, err := db.Sessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
