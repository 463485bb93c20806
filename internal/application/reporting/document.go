package reporting

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/turtacn/Continuity-Map/internal/config"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Continuity-Map/pkg/errors"
)

// Section headings of the emergency document.
const (
	SectionEvent      = "Información del Evento"
	SectionSummary    = "Resumen de la Emergencia"
	SectionFacilities = "Sedes Afectadas"
	sectionEmployees  = "Colaboradores Afectados (primeros %d)"
)

// Column truncation limits of the employee table, in runes.
const (
	NameLimit       = 25
	SiteLimit       = 20
	SubprocessLimit = 20
)

// EmergencyLocation is the geocoded place of the event, when known.
type EmergencyLocation struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DocumentRequest carries the operator-supplied event details.
type DocumentRequest struct {
	EventType   string             `json:"event_type"`
	Description string             `json:"description"`
	Location    *EmergencyLocation `json:"location,omitempty"`
}

// DocumentOptions configures layout and rendering.
type DocumentOptions struct {
	Title         string
	MaxTableRows  int
	EventTypes    []string
	TimeZone      *time.Location
	RenderTimeout time.Duration
	// Compress toggles PDF stream compression.  Tests disable it to inspect text.
	Compress bool
	Now      func() time.Time
}

func (o *DocumentOptions) applyDefaults() {
	if o.Title == "" {
		o.Title = "REPORTE DE EMERGENCIA"
	}
	if o.MaxTableRows <= 0 {
		o.MaxTableRows = 50
	}
	if o.TimeZone == nil {
		o.TimeZone = time.Local
	}
	if o.RenderTimeout <= 0 {
		o.RenderTimeout = 10 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// DocumentOptionsFromConfig maps the report section of the configuration.
// Compression is always on outside tests.
func DocumentOptionsFromConfig(cfg config.ReportConfig) (DocumentOptions, error) {
	opts := DocumentOptions{
		Title:         cfg.Title,
		MaxTableRows:  cfg.MaxTableRows,
		EventTypes:    cfg.EventTypes,
		RenderTimeout: cfg.RenderTimeout,
		Compress:      true,
	}
	if cfg.TimeZone != "" {
		loc, err := time.LoadLocation(cfg.TimeZone)
		if err != nil {
			return opts, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid report time zone").WithDetail(cfg.TimeZone)
		}
		opts.TimeZone = loc
	}
	return opts, nil
}

// KeyValue is one labelled line of the document.
type KeyValue struct {
	Label string
	Value string
}

// Layout is the fixed-structure content of a document, prior to PDF
// encoding.  Optional sections are nil when they have nothing to show.
type Layout struct {
	Title         string
	Timestamp     string
	GeneratedAt   time.Time
	Event         []KeyValue
	Summary       []KeyValue
	Charts        []Chart
	Facilities    []string
	EmployeeTitle string
	Employees     [][]string
}

// Sections lists the headings present in the layout, in document order.
func (l *Layout) Sections() []string {
	out := []string{SectionEvent, SectionSummary}
	for _, c := range l.Charts {
		out = append(out, c.Spec.Title)
	}
	if l.Facilities != nil {
		out = append(out, SectionFacilities)
	}
	if l.Employees != nil {
		out = append(out, l.EmployeeTitle)
	}
	return out
}

// BuildLayout assembles the document content for r.  Text is kept verbatim
// here except for the employee table, which is truncated per column.
func BuildLayout(r *Report, req DocumentRequest, opts DocumentOptions, charts []Chart) (*Layout, error) {
	opts.applyDefaults()
	if r == nil {
		return nil, errors.New(errors.ErrCodeReportMissing, "no report to render")
	}
	if len(opts.EventTypes) > 0 && !slices.Contains(opts.EventTypes, req.EventType) {
		return nil, errors.New(errors.ErrCodeEventTypeInvalid, "unknown event type").WithDetail(req.EventType)
	}

	now := opts.Now().In(opts.TimeZone)
	l := &Layout{
		Title:       opts.Title,
		GeneratedAt: now,
		Timestamp:   "Fecha: " + now.Format("2006-01-02 15:04"),
		Event: []KeyValue{
			{Label: "Tipo de evento", Value: req.EventType},
			{Label: "Descripción", Value: strings.TrimSpace(req.Description)},
		},
		Summary: []KeyValue{
			{Label: "Total colaboradores afectados", Value: fmt.Sprint(r.TotalEmployees())},
			{Label: "Total sedes afectadas", Value: fmt.Sprint(r.TotalFacilities())},
		},
	}
	if req.Location != nil && req.Location.Address != "" {
		l.Summary = append(l.Summary, KeyValue{Label: "Ubicación", Value: req.Location.Address})
	}
	if len(charts) > MaxCharts {
		charts = charts[:MaxCharts]
	}
	l.Charts = charts

	if r.TotalFacilities() > 0 {
		l.Facilities = make([]string, 0, r.TotalFacilities())
		for _, f := range r.facilities {
			l.Facilities = append(l.Facilities, fmt.Sprintf("- %s: %s", f.Name, f.Address))
		}
	}

	if r.TotalEmployees() > 0 {
		l.EmployeeTitle = fmt.Sprintf(sectionEmployees, opts.MaxTableRows)
		n := min(opts.MaxTableRows, r.TotalEmployees())
		l.Employees = make([][]string, 0, n)
		for _, e := range r.employees[:n] {
			l.Employees = append(l.Employees, []string{
				PDFText(e.Name, NameLimit),
				PDFText(e.AssignedSite, SiteLimit),
				PDFText(e.Subprocess, SubprocessLimit),
				PDFText(string(e.Criticality), 0),
			})
		}
	}
	return l, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// PDF encoding
// ─────────────────────────────────────────────────────────────────────────────

var employeeColumns = []struct {
	title string
	width float64
}{
	{"Nombre", 60},
	{"Sede", 50},
	{"Subproceso", 50},
	{"Criticidad", 30},
}

// RenderPDF encodes l with the fixed document layout.
func RenderPDF(l *Layout, compress bool) (out []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, errors.New(errors.ErrCodeRender, "pdf renderer panicked").WithDetail(fmt.Sprint(rec))
		}
	}()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetCreator("Continuity-Map", false)
	pdf.SetTitle(PDFText(l.Title, 0), false)
	pdf.SetCreationDate(l.GeneratedAt)
	pdf.SetAutoPageBreak(true, 15)

	heading := func(text string) {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 10, PDFText(text, 0), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
	}
	line := func(kv KeyValue) {
		pdf.MultiCell(0, 8, PDFText(kv.Label+": "+kv.Value, 0), "", "L", false)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, PDFText(l.Title, 0), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 10, l.Timestamp, "", 1, "C", false, 0, "")
	pdf.Ln(10)

	heading(SectionEvent)
	for _, kv := range l.Event {
		line(kv)
	}
	pdf.Ln(5)

	heading(SectionSummary)
	for _, kv := range l.Summary {
		line(kv)
	}

	for _, c := range l.Charts {
		pdf.AddPage()
		heading(c.Spec.Title)
		name := "chart_" + c.Spec.ID
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(c.PNG))
		pdf.ImageOptions(name, 10, 30, 190, 0, false, opts, 0, "")
	}

	if l.Facilities != nil {
		pdf.AddPage()
		heading(SectionFacilities)
		for _, f := range l.Facilities {
			pdf.MultiCell(0, 8, PDFText(f, 0), "", "L", false)
		}
	}

	if l.Employees != nil {
		pdf.Ln(10)
		heading(l.EmployeeTitle)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(200, 220, 255)
		for _, col := range employeeColumns {
			pdf.CellFormat(col.width, 10, col.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
		for _, row := range l.Employees {
			for i, col := range employeeColumns {
				pdf.CellFormat(col.width, 10, row[i], "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRender, "layout pdf")
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRender, "encode pdf")
	}
	return buf.Bytes(), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// DocumentRenderer
// ─────────────────────────────────────────────────────────────────────────────

// Document is a rendered report document.
type Document struct {
	FileName string
	PDF      []byte
	Layout   *Layout
}

// DocumentRenderer renders charts and the PDF under a deadline.
type DocumentRenderer struct {
	opts   DocumentOptions
	charts ChartRenderer
	logger logging.Logger
}

// NewDocumentRenderer builds a renderer.  A nil chart renderer produces
// documents without charts.
func NewDocumentRenderer(opts DocumentOptions, charts ChartRenderer, logger logging.Logger) *DocumentRenderer {
	opts.applyDefaults()
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &DocumentRenderer{opts: opts, charts: charts, logger: logger}
}

// EventTypes returns the selectable event types.
func (d *DocumentRenderer) EventTypes() []string {
	return append([]string(nil), d.opts.EventTypes...)
}

// Render produces the document for r.  It fails with ErrCodeRender when the
// deadline passes or the encoder fails; it never hangs past RenderTimeout.
func (d *DocumentRenderer) Render(ctx context.Context, r *Report, req DocumentRequest) (*Document, error) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.RenderTimeout)
	defer cancel()

	var charts []Chart
	if d.charts != nil && r != nil {
		charts = RenderCharts(ctx, d.charts, ChartSpecs(r), d.logger)
	}

	layout, err := BuildLayout(r, req, d.opts, charts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRender, "document rendering timed out")
	}

	type result struct {
		pdf []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		pdf, err := RenderPDF(layout, d.opts.Compress)
		done <- result{pdf: pdf, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), errors.ErrCodeRender, "document rendering timed out")
	case res := <-done:
		if res.err != nil {
			d.logger.Error("document rendering failed", logging.ReportID(r.ID()), logging.Err(res.err))
			return nil, res.err
		}
		return &Document{FileName: DocumentFileName(layout.GeneratedAt), PDF: res.pdf, Layout: layout}, nil
	}
}

//Personal.AI order the ending
