package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/roadsight/go-trafficcam/tracker"
)

const (
	// DefaultPanelFontSize is the TTF point size used for panel text
	DefaultPanelFontSize = 18.0
	// panel layout in pixels
	panelMargin      = 10
	panelPadding     = 8
	panelWidth       = 210
	panelLineSpacing = 1.4
)

// Panel renders the per class and total vehicle counts onto the top left
// corner of a frame using a TTF font face
type Panel struct {
	fontFace font.Face
	fontSize float64
}

// NewPanel loads the TTF font at the given path and sets up a new font face
func NewPanel(fontPath string, size float64) (*Panel, error) {

	if size <= 0 {
		size = DefaultPanelFontSize
	}

	// load font data
	fontBytes, err := os.ReadFile(fontPath)

	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	// parse the font
	f, err := opentype.Parse(fontBytes)

	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	// create a type face
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create type face: %w", err)
	}

	return &Panel{
		fontFace: face,
		fontSize: size,
	}, nil
}

// Close releases the font face
func (p *Panel) Close() error {
	return p.fontFace.Close()
}

// DrawStats writes the count summary onto the frame
func (p *Panel) DrawStats(img *gocv.Mat, counts map[tracker.VehicleClass]int,
	total int) error {

	lines := make([]string, 0, 5)

	for _, class := range tracker.Classes() {
		lines = append(lines, fmt.Sprintf("%s: %d", class, counts[class]))
	}

	lines = append(lines, fmt.Sprintf("total: %d", total))

	lineHeight := int(p.fontSize * panelLineSpacing)
	panelHeight := len(lines)*lineHeight + 2*panelPadding

	// dark backing box so the text stays readable over the video
	gocv.Rectangle(img,
		image.Rect(panelMargin, panelMargin,
			panelMargin+panelWidth, panelMargin+panelHeight),
		Black, -1)

	// render the text into a transparent overlay
	rgba := image.NewRGBA(image.Rect(0, 0, img.Cols(), img.Rows()))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 0}),
		image.Point{}, draw.Src)

	for i, line := range lines {

		y := panelMargin + panelPadding + (i+1)*lineHeight - lineHeight/4

		dr := &font.Drawer{
			Dst:  rgba,
			Src:  image.NewUniform(White),
			Face: p.fontFace,
			Dot: fixed.Point26_6{
				X: fixed.Int26_6((panelMargin + panelPadding) * 64),
				Y: fixed.Int26_6(y * 64),
			},
		}
		dr.DrawString(line)
	}

	// convert image.RGBA to gocv.Mat and blend onto the frame
	overlay, err := gocv.NewMatFromBytes(rgba.Bounds().Dy(), rgba.Bounds().Dx(),
		gocv.MatTypeCV8UC4, rgba.Pix)

	if overlay.Empty() || err != nil {
		return fmt.Errorf("error creating Mat from RGBA")
	}

	defer overlay.Close()

	gocv.CvtColor(overlay, &overlay, gocv.ColorRGBAToBGR)
	gocv.AddWeighted(*img, 1.0, overlay, 1.0, 0, img)

	return nil
}
