package reporting_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Continuity-Map/internal/application/reporting"
	"github.com/turtacn/Continuity-Map/internal/config"
	"github.com/turtacn/Continuity-Map/internal/testutil"
	"github.com/turtacn/Continuity-Map/pkg/errors"
)

var eventTypes = []string{"Inundación", "Sismo", "Otro"}

func documentOptions() reporting.DocumentOptions {
	return reporting.DocumentOptions{
		Title:        "REPORTE DE EMERGENCIA - COLMÉDICA",
		MaxTableRows: 50,
		EventTypes:   eventTypes,
		TimeZone:     time.UTC,
		Now:          func() time.Time { return fixedNow },
	}
}

func TestBuildLayout_Scenario(t *testing.T) {
	r := scenarioReport(t)
	req := reporting.DocumentRequest{
		EventType:   "Sismo",
		Description: "  Sismo de magnitud 5.2  ",
		Location:    &reporting.EmergencyLocation{Address: "Calle 100, Bogotá"},
	}

	l, err := reporting.BuildLayout(r, req, documentOptions(), nil)
	require.NoError(t, err)

	assert.Equal(t, "Fecha: 2024-03-05 14:07", l.Timestamp)
	assert.Equal(t, []reporting.KeyValue{
		{Label: "Tipo de evento", Value: "Sismo"},
		{Label: "Descripción", Value: "Sismo de magnitud 5.2"},
	}, l.Event)
	assert.Equal(t, []reporting.KeyValue{
		{Label: "Total colaboradores afectados", Value: "2"},
		{Label: "Total sedes afectadas", Value: "1"},
		{Label: "Ubicación", Value: "Calle 100, Bogotá"},
	}, l.Summary)
	assert.Equal(t, []string{"- Sede Calle 100: Calle 100 # 11B-67"}, l.Facilities)
	assert.Equal(t, [][]string{
		{"Ana Perez", "Sede Norte", "Facturacion", "Alta"},
		{"Luis Gomez", "Sede Norte", "Facturacion", "Media"},
	}, l.Employees)
	assert.Equal(t, []string{
		reporting.SectionEvent,
		reporting.SectionSummary,
		reporting.SectionFacilities,
		"Colaboradores Afectados (primeros 50)",
	}, l.Sections())
}

func TestBuildLayout_OmitsFacilitiesWhenNoneAffected(t *testing.T) {
	r := buildReport(t, scenarioEmployees(), testutil.RectangleFeature(-74.1, 4.6, -74.0, 4.7), nil)
	require.Equal(t, 0, r.TotalFacilities())

	l, err := reporting.BuildLayout(r, reporting.DocumentRequest{EventType: "Otro"}, documentOptions(), nil)
	require.NoError(t, err)
	assert.Nil(t, l.Facilities)
	assert.NotContains(t, l.Sections(), reporting.SectionFacilities)
	assert.Len(t, l.Summary, 2, "no location line without a geocoded address")
}

func TestBuildLayout_TruncatesTableColumns(t *testing.T) {
	csv := testutil.EmployeesCSV(testutil.EmployeeRow(
		"Maria Fernanda Rodriguez Castañeda",
		"Sede Administrativa Principal",
		"Bogotá",
		"Gestión de Talento Humano",
		"Alta", "4.65", "-74.05"))
	r := buildReport(t, csv, testutil.RectangleFeature(-74.1, 4.6, -74.0, 4.7), nil)

	l, err := reporting.BuildLayout(r, reporting.DocumentRequest{EventType: "Otro"}, documentOptions(), nil)
	require.NoError(t, err)
	require.Len(t, l.Employees, 1)
	row := l.Employees[0]
	assert.Equal(t, "Maria Fernanda Rodriguez ", row[0])
	assert.Len(t, []rune(row[0]), reporting.NameLimit)
	assert.Equal(t, "Sede Administrativa ", row[1])
	assert.Equal(t, "Gestion de Talento H", row[2])
}

func TestBuildLayout_CapsTableRows(t *testing.T) {
	r := buildReport(t, testutil.EmployeesCSV(testutil.GeneratedEmployees(120)...),
		testutil.RectangleFeature(-75, 4, -73, 5), nil)
	require.Equal(t, 120, r.TotalEmployees())

	l, err := reporting.BuildLayout(r, reporting.DocumentRequest{EventType: "Otro"}, documentOptions(), nil)
	require.NoError(t, err)
	assert.Len(t, l.Employees, 50)
}

func TestBuildLayout_Errors(t *testing.T) {
	_, err := reporting.BuildLayout(nil, reporting.DocumentRequest{EventType: "Otro"}, documentOptions(), nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeReportMissing))

	_, err = reporting.BuildLayout(scenarioReport(t), reporting.DocumentRequest{EventType: "Huracán"}, documentOptions(), nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEventTypeInvalid))
}

func TestRenderPDF_ContainsStrippedText(t *testing.T) {
	l, err := reporting.BuildLayout(scenarioReport(t), reporting.DocumentRequest{EventType: "Inundación", Description: "Desbordamiento del río"}, documentOptions(), nil)
	require.NoError(t, err)

	pdf, err := reporting.RenderPDF(l, false)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))

	text := string(pdf)
	assert.Contains(t, text, "REPORTE DE EMERGENCIA - COLMEDICA")
	assert.Contains(t, text, "Informacion del Evento")
	assert.Contains(t, text, "Tipo de evento: Inundacion")
	assert.Contains(t, text, "Desbordamiento del rio")
	assert.Contains(t, text, "Sedes Afectadas")
	assert.Contains(t, text, "Ana Perez")
	assert.NotContains(t, text, "Pérez")
}

func TestRenderPDF_OmitsFacilitySection(t *testing.T) {
	r := buildReport(t, scenarioEmployees(), testutil.RectangleFeature(-74.1, 4.6, -74.0, 4.7), nil)
	l, err := reporting.BuildLayout(r, reporting.DocumentRequest{EventType: "Otro"}, documentOptions(), nil)
	require.NoError(t, err)

	pdf, err := reporting.RenderPDF(l, false)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(pdf), "Sedes Afectadas"))
	assert.Contains(t, string(pdf), "Colaboradores Afectados")
}

func TestDocumentRenderer_Render(t *testing.T) {
	opts := documentOptions()
	opts.Compress = true
	d := reporting.NewDocumentRenderer(opts, reporting.NewPNGChartRenderer(400, 240), testutil.NewMockLogger())

	doc, err := d.Render(context.Background(), scenarioReport(t), reporting.DocumentRequest{EventType: "Sismo"})
	require.NoError(t, err)
	assert.Equal(t, "reporte_emergencia_20240305_1407.pdf", doc.FileName)
	assert.True(t, bytes.HasPrefix(doc.PDF, []byte("%PDF-")))
	require.Len(t, doc.Layout.Charts, 3)
	assert.Equal(t, "sedes", doc.Layout.Charts[0].Spec.ID)
	assert.Equal(t, eventTypes, d.EventTypes())
}

type blockingChartRenderer struct{}

func (blockingChartRenderer) RenderChart(ctx context.Context, _ reporting.ChartSpec) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestDocumentRenderer_TimeoutFailsInsteadOfHanging(t *testing.T) {
	opts := documentOptions()
	opts.RenderTimeout = 20 * time.Millisecond
	logger := testutil.NewMockLogger()
	d := reporting.NewDocumentRenderer(opts, blockingChartRenderer{}, logger)

	// charts are skipped once the deadline passes; the document itself then
	// cannot start because the context is already done
	_, err := d.Render(context.Background(), scenarioReport(t), reporting.DocumentRequest{EventType: "Sismo"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRender))
	assert.True(t, logger.HasMessage("warn", "chart render failed, skipping"))
}

func TestDocumentOptionsFromConfig(t *testing.T) {
	opts, err := reporting.DocumentOptionsFromConfig(config.ReportConfig{
		Title:         "REPORTE",
		MaxTableRows:  10,
		EventTypes:    eventTypes,
		RenderTimeout: time.Second,
		TimeZone:      "America/Bogota",
	})
	require.NoError(t, err)
	assert.Equal(t, "REPORTE", opts.Title)
	assert.Equal(t, 10, opts.MaxTableRows)
	assert.True(t, opts.Compress)
	require.NotNil(t, opts.TimeZone)
	assert.Equal(t, "America/Bogota", opts.TimeZone.String())

	_, err = reporting.DocumentOptionsFromConfig(config.ReportConfig{TimeZone: "Mars/Olympus"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

//Personal.AI order the ending
