package reporting

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Continuity-Map/pkg/errors"
)

// MaxCharts bounds the number of images embedded in a document.
const MaxCharts = 3

// chartWorkers is the number of charts rasterized at once.
const chartWorkers = 2

// ChartType selects how a ChartSpec is drawn.
type ChartType string

const (
	ChartBar           ChartType = "bar"
	ChartHorizontalBar ChartType = "barh"
	ChartPie           ChartType = "pie"
)

// ChartSpec describes one chart derived from a Report.
type ChartSpec struct {
	ID    string
	Type  ChartType
	Title string
	Data  []Count
}

// Chart is a rendered chart image.
type Chart struct {
	Spec ChartSpec
	PNG  []byte
}

// ChartRenderer turns a spec into PNG bytes.
type ChartRenderer interface {
	RenderChart(ctx context.Context, spec ChartSpec) ([]byte, error)
}

// ChartSpecs derives the document charts from r.  Charts whose data is empty
// are omitted, so a report may carry zero to MaxCharts charts.
func ChartSpecs(r *Report) []ChartSpec {
	specs := make([]ChartSpec, 0, MaxCharts)
	if by := r.ByFacility(); len(by) > 0 {
		specs = append(specs, ChartSpec{ID: "sedes", Type: ChartBar, Title: "Sedes Afectadas", Data: by})
	}
	if by := r.ByCriticality(); len(by) > 0 {
		specs = append(specs, ChartSpec{ID: "criticidad", Type: ChartPie, Title: "Distribución por Criticidad", Data: by})
	}
	if by := r.BySubprocess(DefaultTopN); len(by) > 0 {
		specs = append(specs, ChartSpec{ID: "subprocesos", Type: ChartHorizontalBar, Title: "Top 5 Subprocesos Afectados", Data: by})
	}
	return specs
}

// RenderCharts renders specs concurrently.  A chart that fails is logged and
// skipped; the rest keep their original order.
func RenderCharts(ctx context.Context, renderer ChartRenderer, specs []ChartSpec, logger logging.Logger) []Chart {
	if len(specs) > MaxCharts {
		specs = specs[:MaxCharts]
	}
	results := make([][]byte, len(specs))

	// errgroup bounds the parallel renders and propagates cancellation of
	// ctx; a failed chart returns nil so it never cancels its siblings.
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(chartWorkers)
	for i := range specs {
		i := i
		g.Go(func() error {
			img, err := renderer.RenderChart(gCtx, specs[i])
			if err != nil {
				logger.Warn("chart render failed, skipping", logging.String("chart", specs[i].ID), logging.Err(err))
				return nil
			}
			results[i] = img
			return nil
		})
	}
	_ = g.Wait()

	charts := make([]Chart, 0, len(specs))
	for i, img := range results {
		if img != nil {
			charts = append(charts, Chart{Spec: specs[i], PNG: img})
		}
	}
	return charts
}

// ─────────────────────────────────────────────────────────────────────────────
// PNG renderer
// ─────────────────────────────────────────────────────────────────────────────

var (
	chartBackground = color.RGBA{255, 255, 255, 255}
	chartInk        = color.RGBA{33, 37, 41, 255}
	chartAxis       = color.RGBA{173, 181, 189, 255}
	chartPalette    = []color.RGBA{
		{13, 110, 253, 255},
		{220, 53, 69, 255},
		{255, 193, 7, 255},
		{25, 135, 84, 255},
		{111, 66, 193, 255},
		{253, 126, 20, 255},
		{32, 201, 151, 255},
	}
)

const (
	glyphWidth  = 7
	glyphHeight = 13
)

// PNGChartRenderer draws charts with the standard bitmap font.
type PNGChartRenderer struct {
	Width  int
	Height int
}

// NewPNGChartRenderer returns a renderer producing width x height images.
func NewPNGChartRenderer(width, height int) *PNGChartRenderer {
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 480
	}
	return &PNGChartRenderer{Width: width, Height: height}
}

// RenderChart implements ChartRenderer.
func (p *PNGChartRenderer) RenderChart(ctx context.Context, spec ChartSpec) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRender, "chart rendering cancelled")
	}
	if len(spec.Data) == 0 {
		return nil, errors.New(errors.ErrCodeRender, "chart has no data").WithDetail(spec.ID)
	}

	img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: chartBackground}, image.Point{}, draw.Src)
	drawString(img, 20, 28, StripAccents(spec.Title), chartInk)

	plot := image.Rect(20, 50, p.Width-20, p.Height-20)
	switch spec.Type {
	case ChartBar:
		drawVerticalBars(img, plot, spec.Data)
	case ChartHorizontalBar:
		drawHorizontalBars(img, plot, spec.Data)
	case ChartPie:
		drawPie(img, plot, spec.Data)
	default:
		return nil, errors.New(errors.ErrCodeRender, fmt.Sprintf("unsupported chart type %q", spec.Type))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRender, "encode chart png")
	}
	return buf.Bytes(), nil
}

// drawString draws text with its baseline at (x, y).
func drawString(img *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r.Intersect(img.Bounds()), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func maxCount(data []Count) int {
	m := 0
	for _, d := range data {
		if d.Count > m {
			m = d.Count
		}
	}
	return m
}

func fitLabel(s string, px int) string {
	return Truncate(StripAccents(s), px/glyphWidth)
}

func drawVerticalBars(img *image.RGBA, plot image.Rectangle, data []Count) {
	labelBand := 2 * glyphHeight
	base := plot.Max.Y - labelBand
	fillRect(img, image.Rect(plot.Min.X, base, plot.Max.X, base+1), chartAxis)

	slot := plot.Dx() / len(data)
	top := maxCount(data)
	usable := base - plot.Min.Y - glyphHeight
	for i, d := range data {
		h := int(math.Round(float64(usable) * float64(d.Count) / float64(top)))
		x0 := plot.Min.X + i*slot + slot/6
		x1 := plot.Min.X + (i+1)*slot - slot/6
		fillRect(img, image.Rect(x0, base-h, x1, base), chartPalette[i%len(chartPalette)])
		drawString(img, x0, base-h-3, fmt.Sprint(d.Count), chartInk)
		drawString(img, plot.Min.X+i*slot+2, base+glyphHeight+2, fitLabel(d.Value, slot-4), chartInk)
	}
}

func drawHorizontalBars(img *image.RGBA, plot image.Rectangle, data []Count) {
	labelWidth := plot.Dx() / 3
	axisX := plot.Min.X + labelWidth
	fillRect(img, image.Rect(axisX, plot.Min.Y, axisX+1, plot.Max.Y), chartAxis)

	slot := plot.Dy() / len(data)
	top := maxCount(data)
	usable := plot.Max.X - axisX - 6*glyphWidth
	for i, d := range data {
		w := int(math.Round(float64(usable) * float64(d.Count) / float64(top)))
		y0 := plot.Min.Y + i*slot + slot/6
		y1 := plot.Min.Y + (i+1)*slot - slot/6
		fillRect(img, image.Rect(axisX+1, y0, axisX+1+w, y1), chartPalette[i%len(chartPalette)])
		mid := (y0+y1)/2 + glyphHeight/3
		drawString(img, plot.Min.X, mid, fitLabel(d.Value, labelWidth-8), chartInk)
		drawString(img, axisX+w+6, mid, fmt.Sprint(d.Count), chartInk)
	}
}

func drawPie(img *image.RGBA, plot image.Rectangle, data []Count) {
	total := 0
	for _, d := range data {
		total += d.Count
	}
	legendWidth := plot.Dx() / 3
	pieArea := image.Rect(plot.Min.X, plot.Min.Y, plot.Max.X-legendWidth, plot.Max.Y)
	radius := math.Min(float64(pieArea.Dx()), float64(pieArea.Dy())) / 2
	cx := float64(pieArea.Min.X) + float64(pieArea.Dx())/2
	cy := float64(pieArea.Min.Y) + float64(pieArea.Dy())/2

	// cumulative slice boundaries, clockwise from 12 o'clock
	bounds := make([]float64, len(data))
	acc := 0.0
	for i, d := range data {
		acc += float64(d.Count) / float64(total)
		bounds[i] = acc
	}

	for y := int(cy - radius); y <= int(cy+radius); y++ {
		for x := int(cx - radius); x <= int(cx+radius); x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			frac := math.Atan2(dx, -dy) / (2 * math.Pi)
			if frac < 0 {
				frac++
			}
			for i, b := range bounds {
				if frac <= b || i == len(bounds)-1 {
					img.Set(x, y, chartPalette[i%len(chartPalette)])
					break
				}
			}
		}
	}

	lx := plot.Max.X - legendWidth + 10
	for i, d := range data {
		ly := plot.Min.Y + i*(glyphHeight+8)
		fillRect(img, image.Rect(lx, ly, lx+glyphHeight, ly+glyphHeight), chartPalette[i%len(chartPalette)])
		pct := 100 * float64(d.Count) / float64(total)
		label := fmt.Sprintf("%s %.1f%%", StripAccents(d.Value), pct)
		drawString(img, lx+glyphHeight+6, ly+glyphHeight-2, Truncate(label, (legendWidth-glyphHeight-16)/glyphWidth), chartInk)
	}
}

//Personal.AI order the ending
