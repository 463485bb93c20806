package reporting_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Continuity-Map/internal/application/reporting"
	"github.com/turtacn/Continuity-Map/internal/domain/facility"
	"github.com/turtacn/Continuity-Map/internal/domain/personnel"
	"github.com/turtacn/Continuity-Map/internal/domain/zone"
	"github.com/turtacn/Continuity-Map/internal/testutil"
	"github.com/turtacn/Continuity-Map/pkg/errors"
)

var fixedNow = time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)

// scenarioEmployees has two rows inside the rectangle [-74.1,-74.0] x [4.6,4.7].
func scenarioEmployees() []byte {
	return testutil.EmployeesCSV(
		testutil.EmployeeRow("Ana Pérez", "Sede Norte", "Bogotá", "Facturación", "Alta", "4.65", "-74.05"),
		testutil.EmployeeRow("Luis Gómez", "Sede Norte", "Bogotá", "Facturación", "Media", "4.68", "-74.02"),
		testutil.EmployeeRow("Marta Ruiz", "Sede Sur", "Soacha", "Cartera", "Baja", "4.55", "-74.20"),
		testutil.EmployeeRow("Pedro Díaz", "Sede Sur", "Chía", "Cartera", "Alta", "4.86", "-74.03"),
		testutil.EmployeeRow("Sofía León", "Sede Centro", "Bogotá", "Auditoría", "Crítica", "4.75", "-74.08"),
	)
}

func scenarioFacilities() []facility.FixedLocation {
	return []facility.FixedLocation{
		{Name: "Sede Calle 100", Address: "Calle 100 # 11B-67", Latitude: 4.686, Longitude: -74.043},
		{Name: "Sede Chía", Address: "Km 2 vía Chía", Latitude: 4.861, Longitude: -74.032},
	}
}

func buildReport(t *testing.T, csvData, feature []byte, facilities []facility.FixedLocation) *reporting.Report {
	t.Helper()
	table, err := personnel.ReadCSV(bytes.NewReader(csvData))
	require.NoError(t, err)
	ds, err := personnel.Validate(table, personnel.ValidateOptions{MaxRecords: -1})
	require.NoError(t, err)
	z, err := zone.Parse(feature)
	require.NoError(t, err)
	sets, err := zone.ComputeAffected(z, ds.Records, facilities)
	require.NoError(t, err)
	r, err := reporting.BuildReport(sets, z, reporting.WithClock(func() time.Time { return fixedNow }), reporting.WithID("rep-1"))
	require.NoError(t, err)
	return r
}

func scenarioReport(t *testing.T) *reporting.Report {
	return buildReport(t, scenarioEmployees(), testutil.RectangleFeature(-74.1, 4.6, -74.0, 4.7), scenarioFacilities())
}

func TestBuildReport_Scenario(t *testing.T) {
	r := scenarioReport(t)

	assert.Equal(t, "rep-1", r.ID())
	assert.Equal(t, fixedNow, r.GeneratedAt())
	assert.Equal(t, 2, r.TotalEmployees())
	assert.Equal(t, 1, r.TotalFacilities())
	assert.Equal(t, []string{"Sede Calle 100"}, r.FacilityNames())

	emps := r.AffectedEmployees()
	require.Len(t, emps, 2)
	assert.Equal(t, "Ana Pérez", emps[0].Name)
	assert.Equal(t, "Luis Gómez", emps[1].Name)
	assert.Equal(t, zone.KindRectangle, r.Zone().Kind())
}

func TestBuildReport_NilZone(t *testing.T) {
	_, err := reporting.BuildReport(&zone.AffectedSets{}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNoZone))
}

func TestBuildReport_EmptyZoneIsStillAReport(t *testing.T) {
	r := buildReport(t, scenarioEmployees(), testutil.RectangleFeature(10, 10, 11, 11), scenarioFacilities())
	assert.Equal(t, 0, r.TotalEmployees())
	assert.Equal(t, 0, r.TotalFacilities())
	assert.Empty(t, r.FacilityNames())
}

func TestReport_AccessorsReturnCopies(t *testing.T) {
	r := scenarioReport(t)

	emps := r.AffectedEmployees()
	emps[0].Name = "changed"
	facs := r.AffectedFacilities()
	facs[0].Name = "changed"

	assert.Equal(t, "Ana Pérez", r.AffectedEmployees()[0].Name)
	assert.Equal(t, "Sede Calle 100", r.AffectedFacilities()[0].Name)
}

func TestReport_IsDeterministic(t *testing.T) {
	a, err := json.Marshal(scenarioReport(t))
	require.NoError(t, err)
	b, err := json.Marshal(scenarioReport(t))
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestReport_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(scenarioReport(t))
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "rep-1", got["id"])
	assert.EqualValues(t, 2, got["total_colaboradores"])
	assert.EqualValues(t, 1, got["total_sedes"])
	assert.Contains(t, got, "zona")
	assert.Contains(t, got, "breakdowns")
	assert.Len(t, got["colaboradores_afectados"], 2)
}

func TestReport_Breakdowns(t *testing.T) {
	r := buildReport(t, scenarioEmployees(), testutil.RectangleFeature(-74.3, 4.4, -73.9, 4.9), scenarioFacilities())
	require.Equal(t, 5, r.TotalEmployees())

	b := r.Breakdowns(reporting.DefaultTopN)
	assert.Equal(t, []reporting.Count{
		{Value: "Crítica", Count: 1},
		{Value: "Alta", Count: 2},
		{Value: "Media", Count: 1},
		{Value: "Baja", Count: 1},
	}, b.ByCriticality)
	assert.Equal(t, []reporting.Count{
		{Value: "Facturación", Count: 2},
		{Value: "Cartera", Count: 2},
		{Value: "Auditoría", Count: 1},
	}, b.BySubprocess)
	assert.Equal(t, []reporting.Count{
		{Value: "Bogotá", Count: 3},
		{Value: "Soacha", Count: 1},
		{Value: "Chía", Count: 1},
	}, b.ByCity)
	assert.Equal(t, []reporting.Count{
		{Value: "Sede Calle 100", Count: 1},
		{Value: "Sede Chía", Count: 1},
	}, b.ByFacility)

	total := 0
	for _, c := range b.ByCriticality {
		total += c.Count
	}
	assert.Equal(t, r.TotalEmployees(), total)
}

func TestReport_BreakdownsAreBounded(t *testing.T) {
	r := buildReport(t, testutil.EmployeesCSV(testutil.GeneratedEmployees(40)...),
		testutil.RectangleFeature(-75, 4, -73, 5), nil)

	assert.Len(t, r.ByAssignedSite(3), 3)
	assert.Len(t, r.ByAssignedSite(0), 7)
	assert.Len(t, r.BySubprocess(reporting.DefaultTopN), 5)
}

func TestDatasetOverview(t *testing.T) {
	rows := testutil.GeneratedEmployees(30)
	rows = append(rows, testutil.EmployeeRow("Sin coordenadas", "Sede 1", "Bogotá", "X", "Alta", "", ""))
	table, err := personnel.ReadCSV(bytes.NewReader(testutil.EmployeesCSV(rows...)))
	require.NoError(t, err)
	ds, err := personnel.Validate(table, personnel.ValidateOptions{MaxRecords: 10, Seed: func() *int64 { v := int64(7); return &v }()})
	require.NoError(t, err)

	ov := reporting.DatasetOverview(ds)
	assert.Equal(t, 10, ov.TotalRecords)
	assert.True(t, ov.Sampled)
	assert.Equal(t, "Mostrando muestra de 10 de 30", ov.SampleNotice)
	assert.Equal(t, 1, ov.Dropped)
	assert.LessOrEqual(t, len(ov.TopCities), reporting.DefaultTopN)
	assert.LessOrEqual(t, len(ov.TopSites), reporting.DefaultTopN)
	assert.LessOrEqual(t, ov.Cities, 3)
}

func TestDatasetOverview_Nil(t *testing.T) {
	ov := reporting.DatasetOverview(nil)
	assert.Zero(t, ov.TotalRecords)
	assert.NotNil(t, ov.TopCities)
}
