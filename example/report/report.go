package main

import (
	"flag"
	"log"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/roadsight/go-trafficcam/store"
)

// buildChart creates a bar chart of per class vehicle counts across the
// recorded sessions
func buildChart(sessions []store.Session) *charts.Bar {

	labels := make([]string, 0, len(sessions))
	cars := make([]opts.BarData, 0, len(sessions))
	motorcycles := make([]opts.BarData, 0, len(sessions))
	buses := make([]opts.BarData, 0, len(sessions))
	trucks := make([]opts.BarData, 0, len(sessions))

	for _, s := range sessions {
		labels = append(labels, s.Timestamp.Format("2006-01-02 15:04"))
		cars = append(cars, opts.BarData{Value: s.Cars})
		motorcycles = append(motorcycles, opts.BarData{Value: s.Motorcycles})
		buses = append(buses, opts.BarData{Value: s.Buses})
		trucks = append(trucks, opts.BarData{Value: s.Trucks})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Vehicle counts per session",
			Subtitle: "go-trafficcam session history",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	bar.SetXAxis(labels).
		AddSeries("cars", cars).
		AddSeries("motorcycles", motorcycles).
		AddSeries("buses", buses).
		AddSeries("trucks", trucks)

	return bar
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	dbFile := flag.String("d", "traffic_history.db", "Sqlite database file with session history")
	outFile := flag.String("o", "traffic_report.html", "HTML file to write the report to")

	flag.Parse()

	db, err := store.OpenDB(*dbFile)

	if err != nil {
		log.Fatalf("Error opening history database: %v", err)
	}

	defer db.Close()

	sessions, err := db.Sessions()

	if err != nil {
		log.Fatalf("Error loading sessions: %v", err)
	}

	if len(sessions) == 0 {
		log.Fatalf("No sessions recorded in %s", *dbFile)
	}

	f, err := os.Create(*outFile)

	if err != nil {
		log.Fatalf("Error creating report file: %v", err)
	}

	defer f.Close()

	if err := buildChart(sessions).Render(f); err != nil {
		log.Fatalf("Error rendering report: %v", err)
	}

	log.Printf("Wrote report for %d sessions to %s", len(sessions), *outFile)
}
