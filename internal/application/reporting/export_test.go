package reporting_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Continuity-Map/internal/application/reporting"
	"github.com/turtacn/Continuity-Map/internal/domain/personnel"
	"github.com/turtacn/Continuity-Map/pkg/errors"
)

func TestExportCSV_Scenario(t *testing.T) {
	data, err := reporting.ExportCSV(scenarioReport(t))
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, personnel.RequiredColumns, rows[0])
	assert.Equal(t, []string{"Ana Pérez", "Calle 1 # 2-3", "Sede Norte", "3000000000", "Bogotá", "Facturación", "Alta", "4.65", "-74.05"}, rows[1])
	assert.Equal(t, "Luis Gómez", rows[2][0])
}

func TestExportCSV_RoundTripsThroughValidator(t *testing.T) {
	r := scenarioReport(t)
	data, err := reporting.ExportCSV(r)
	require.NoError(t, err)

	table, err := personnel.ReadCSV(bytes.NewReader(data))
	require.NoError(t, err)
	ds, err := personnel.Validate(table, personnel.ValidateOptions{MaxRecords: -1})
	require.NoError(t, err)
	require.Len(t, ds.Records, r.TotalEmployees())
	for i, rec := range r.AffectedEmployees() {
		assert.Equal(t, rec.Name, ds.Records[i].Name)
		assert.Equal(t, rec.Latitude, ds.Records[i].Latitude)
		assert.Equal(t, rec.Longitude, ds.Records[i].Longitude)
	}
}

func TestExportCSV_NoReport(t *testing.T) {
	_, err := reporting.ExportCSV(nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeReportMissing))
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "colaboradores_afectados.csv", reporting.CSVFileName)
	assert.Equal(t, "reporte_emergencia_20241231_0905.pdf",
		reporting.DocumentFileName(time.Date(2024, 12, 31, 9, 5, 0, 0, time.UTC)))
}
