package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"gocv.io/x/gocv"

	"github.com/roadsight/go-trafficcam"
	"github.com/roadsight/go-trafficcam/detect"
	"github.com/roadsight/go-trafficcam/render"
	"github.com/roadsight/go-trafficcam/store"
	"github.com/roadsight/go-trafficcam/tracker"
	"github.com/roadsight/go-trafficcam/video"
)

var (
	// FPS is the frame rate to stream annotated frames at
	FPS         = int64(30)
	FPSinterval = time.Duration(float64(time.Second) / float64(FPS))
)

// nmsThreshold is the IoU threshold for detector non-maximum suppression
const nmsThreshold = 0.45

// trailLength is the number of historic centroids drawn per vehicle
const trailLength = 30

// Counter wires the monitoring session to an MJPEG stream of annotated
// frames
type Counter struct {
	trk   *tracker.Tracker
	trail *tracker.Trail
	font  render.Font
	// panel is optional and only set when a TTF font file is supplied
	panel      *render.Panel
	zonePoints []image.Point

	mu sync.Mutex
	// lastFrame is the most recent annotated frame encoded as JPEG
	lastFrame []byte
}

// NewCounter returns a Counter rendering with the given optional TTF font
// and counting zone
func NewCounter(trk *tracker.Tracker, fontFile string,
	zonePoints []image.Point) (*Counter, error) {

	c := &Counter{
		trk:        trk,
		trail:      tracker.NewTrail(trailLength),
		font:       render.DefaultFont(),
		zonePoints: zonePoints,
	}

	if fontFile != "" {
		panel, err := render.NewPanel(fontFile, render.DefaultPanelFontSize)

		if err != nil {
			return nil, fmt.Errorf("error loading panel font: %w", err)
		}

		c.panel = panel
	}

	return c, nil
}

// ProcessFrame annotates a processed frame and stores it for streaming.
// It is called by the session for every processed frame
func (c *Counter) ProcessFrame(frame gocv.Mat, dets []tracker.Detection) {

	resImg := gocv.NewMat()
	defer resImg.Close()

	// copy the source image and annotate the copy
	frame.CopyTo(&resImg)

	objects := c.trk.Snapshot()

	for _, obj := range objects {
		c.trail.Add(obj)
	}

	render.ZoneOutline(&resImg, c.zonePoints, 2)
	render.Trail(&resImg, objects, c.trail, render.DefaultTrailStyle())
	render.VehicleBoxes(&resImg, dets, c.trk, c.font, 2)

	if c.panel != nil {
		err := c.panel.DrawStats(&resImg, c.trk.Counts(), c.trk.TotalCount())

		if err != nil {
			log.Printf("Error drawing stats panel: %v", err)
		}
	}

	// encode the image to JPEG format
	buf, err := gocv.IMEncode(".jpg", resImg)

	if err != nil {
		log.Printf("Error encoding frame: %v", err)
		return
	}

	defer buf.Close()

	encoded := make([]byte, len(buf.GetBytes()))
	copy(encoded, buf.GetBytes())

	c.mu.Lock()
	c.lastFrame = encoded
	c.mu.Unlock()
}

// Stream is the HTTP handler function used to stream video frames to browser
func (c *Counter) Stream(w http.ResponseWriter, r *http.Request) {

	log.Printf("New client connection established")

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")

	ticker := time.NewTicker(FPSinterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Printf("Client disconnected")
			return

		case <-ticker.C:

			c.mu.Lock()
			frame := c.lastFrame
			c.mu.Unlock()

			if frame == nil {
				continue
			}

			// write the image to the response writer
			w.Write([]byte("--frame\r\n"))
			w.Write([]byte("Content-Type: image/jpeg\r\n\r\n"))
			w.Write(frame)
			w.Write([]byte("\r\n"))

			// flush the buffer
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}

// parseZone parses a comma delimited list of x,y pairs into polygon points,
// eg: "100,0,1180,0,1280,720,0,720"
func parseZone(s string) ([]image.Point, error) {

	fields := strings.Split(s, ",")

	if len(fields)%2 != 0 || len(fields) < 6 {
		return nil, fmt.Errorf("zone requires at least 3 x,y pairs")
	}

	var points []image.Point

	for i := 0; i < len(fields); i += 2 {

		x, err := strconv.Atoi(strings.TrimSpace(fields[i]))

		if err != nil {
			return nil, fmt.Errorf("invalid zone coordinate %q", fields[i])
		}

		y, err := strconv.Atoi(strings.TrimSpace(fields[i+1]))

		if err != nil {
			return nil, fmt.Errorf("invalid zone coordinate %q", fields[i+1])
		}

		points = append(points, image.Pt(x, y))
	}

	return points, nil
}

// persist writes the session results to the CSV log and sqlite history
func persist(summary store.Session, csvFile, dbFile string) {

	if csvFile != "" {
		if err := store.AppendCSV(csvFile, summary); err != nil {
			log.Printf("Error writing CSV: %v", err)
		}
	}

	if dbFile != "" {

		db, err := store.OpenDB(dbFile)

		if err != nil {
			log.Printf("Error opening history database: %v", err)
			return
		}

		defer db.Close()

		if err := db.RecordSession(summary); err != nil {
			log.Printf("Error recording session: %v", err)
		}
	}
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	modelFile := flag.String("m", "../data/yolov8n-640-640.onnx", "YOLOv8 ONNX model file")
	vidFile := flag.String("v", "../data/traffic.mp4", "Video file to run vehicle counting on")
	camera := flag.Int("c", -1, "Camera device id to use instead of a video file")
	httpAddr := flag.String("a", "localhost:8080", "HTTP Address to run server on, format address:port")
	csvFile := flag.String("o", "traffic_data.csv", "CSV file to append session results to")
	dbFile := flag.String("d", "traffic_history.db", "Sqlite database file for session history")
	fontFile := flag.String("f", "", "Optional TTF font for the stats panel")
	zoneSpec := flag.String("z", "", "Optional counting zone polygon as comma delimited x,y pairs")
	skipFrames := flag.Int("s", trafficcam.DefaultSkipFrames, "Process every Nth frame")

	flag.Parse()

	var src *video.Source
	var err error

	if *camera >= 0 {
		src, err = video.OpenCamera(*camera, 0, 0)
	} else {
		src, err = video.OpenFile(*vidFile)
	}

	if err != nil {
		log.Fatalf("Error opening video source: %v", err)
	}

	defer src.Close()

	srcWidth := src.Width()
	log.Printf("Source %s, %dx%d @ %.1f FPS", src.Desc(), srcWidth,
		src.Height(), src.FPS())

	params := trafficcam.DefaultParams()
	params.SkipFrames = *skipFrames

	trkCfg := params.TrackerConfig(srcWidth)
	trk := tracker.NewTracker(trkCfg)

	log.Printf("Tracker thresholds: distance=%.1f movement=%.1f maxDisappeared=%d",
		trkCfg.DistanceThreshold, trkCfg.MovementThreshold, trkCfg.MaxDisappeared)

	det, err := detect.NewYOLOv8(*modelFile,
		float32(params.ConfidenceFor(srcWidth)), nmsThreshold)

	if err != nil {
		log.Fatalf("Error loading model: %v", err)
	}

	defer det.Close()

	var zone *detect.Zone
	var zonePoints []image.Point

	if *zoneSpec != "" {

		zonePoints, err = parseZone(*zoneSpec)

		if err != nil {
			log.Fatalf("Error parsing zone: %v", err)
		}

		zone, err = detect.NewZone(zonePoints, 0)

		if err != nil {
			log.Fatalf("Error creating zone: %v", err)
		}
	}

	counter, err := NewCounter(trk, *fontFile, zonePoints)

	if err != nil {
		log.Fatalf("Error creating counter: %v", err)
	}

	sess := trafficcam.NewSession(src, det, trk, trafficcam.SessionConfig{
		SkipFrames: *skipFrames,
		Zone:       zone,
		OnFrame:    counter.ProcessFrame,
	})

	done := make(chan error, 1)

	go func() {
		done <- sess.Run()
	}()

	http.HandleFunc("/stream", counter.Stream)

	go func() {
		log.Printf("Open browser and view video at http://%s/stream", *httpAddr)
		log.Fatal(http.ListenAndServe(*httpAddr, nil))
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-done:
		if err != nil {
			log.Printf("Session ended with error: %v", err)
		} else {
			log.Printf("End of video reached")
		}

	case <-sig:
		log.Printf("Interrupt received, stopping session")
		sess.Stop()
		<-done
	}

	summary := sess.Summary()
	stats := sess.Stats()

	log.Printf("Processed %d of %d frames in %.1fs", stats.FramesProcessed,
		stats.FramesRead, summary.Duration.Seconds())
	log.Printf("Counts: cars=%d motorcycles=%d buses=%d trucks=%d total=%d",
		summary.Cars, summary.Motorcycles, summary.Buses, summary.Trucks,
		summary.Total())

	persist(summary, *csvFile, *dbFile)
}
