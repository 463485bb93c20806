package personnel_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Continuity-Map/internal/domain/personnel"
	"github.com/turtacn/Continuity-Map/internal/testutil"
	"github.com/turtacn/Continuity-Map/pkg/errors"
)

func readTable(t *testing.T, data []byte) *personnel.RawTable {
	t.Helper()
	table, err := personnel.ReadCSV(bytes.NewReader(data))
	require.NoError(t, err)
	return table
}

func seed(v int64) *int64 { return &v }

func TestReadCSV_SemicolonAndBOM(t *testing.T) {
	data := "\xef\xbb\xbfNombre;Dirección;Sede asignada;Teléfono;Ciudad;Subproceso;Criticidad;Latitud;Longitud\n" +
		"Ana;Cl 1;Norte;300;Bogotá;Nómina;Alta;4.65;-74.05\n"

	table := readTable(t, []byte(data))
	assert.Equal(t, "Nombre", table.Header[0])
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Ana", table.Rows[0][0])
	assert.Empty(t, table.MissingColumns())
}

func TestReadCSV_EmptyInput(t *testing.T) {
	_, err := personnel.ReadCSV(strings.NewReader("  \n"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyInput))
}

func TestValidate_SchemaError(t *testing.T) {
	data := testutil.TableCSV([]string{"Nombre", "Latitud"}, []string{"Ana", "4.6"})

	ds, err := personnel.Validate(readTable(t, data), personnel.ValidateOptions{})
	require.Error(t, err)
	assert.Nil(t, ds)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSchema))
	assert.Contains(t, err.Error(), "Longitud")
	assert.Contains(t, err.Error(), "Sede asignada")
}

func TestValidate_DropsBadCoordinates(t *testing.T) {
	rows := [][]string{
		testutil.EmployeeRow("ok", "Norte", "Bogotá", "Nómina", "Alta", "4.65", "-74.05"),
		testutil.EmployeeRow("missing", "Norte", "Bogotá", "Nómina", "Alta", "", "-74.05"),
		testutil.EmployeeRow("garbage", "Norte", "Bogotá", "Nómina", "Alta", "4,65", "-74.05"),
		testutil.EmployeeRow("nan", "Norte", "Bogotá", "Nómina", "Alta", "NaN", "-74.05"),
		testutil.EmployeeRow("lat range", "Norte", "Bogotá", "Nómina", "Alta", "90.5", "-74.05"),
		testutil.EmployeeRow("lon range", "Norte", "Bogotá", "Nómina", "Alta", "4.6", "-180.01"),
		testutil.EmployeeRow("edge", "Sur", "Chía", "Caja", "Baja", "-90", "180"),
	}

	ds, err := personnel.Validate(readTable(t, testutil.EmployeesCSV(rows...)), personnel.ValidateOptions{})
	require.NoError(t, err)

	require.Len(t, ds.Records, 2)
	assert.Equal(t, "ok", ds.Records[0].Name)
	assert.Equal(t, 1, ds.Records[0].Row)
	assert.Equal(t, "edge", ds.Records[1].Name, "range bounds are inclusive")
	assert.Equal(t, 7, ds.InputRows)
	assert.Equal(t, 5, ds.Dropped())
	assert.Equal(t, 1, ds.Drops[personnel.DropMissing])
	assert.Equal(t, 2, ds.Drops[personnel.DropUnparseable])
	assert.Equal(t, 2, ds.Drops[personnel.DropOutOfRange])
	assert.False(t, ds.Sampled)
	assert.Empty(t, ds.SampleNotice())
}

func TestValidate_PreservesAttributes(t *testing.T) {
	row := testutil.EmployeeRow(" Ana Pérez ", "Sede Norte", "Bogotá", "Nómina", "Alta", " 4.65 ", "-74.05")
	ds, err := personnel.Validate(readTable(t, testutil.EmployeesCSV(row)), personnel.ValidateOptions{})
	require.NoError(t, err)

	require.Len(t, ds.Records, 1)
	r := ds.Records[0]
	assert.Equal(t, "Ana Pérez", r.Name)
	assert.Equal(t, "Sede Norte", r.AssignedSite)
	assert.Equal(t, personnel.Criticality("Alta"), r.Criticality)
	assert.InDelta(t, 4.65, r.Latitude, 1e-12)
	assert.InDelta(t, -74.05, r.Longitude, 1e-12)
}

func TestValidate_RowCountPreservedWithoutCap(t *testing.T) {
	rows := testutil.GeneratedEmployees(250)
	rows[10][7] = "x"
	rows[20][8] = "500"

	ds, err := personnel.Validate(readTable(t, testutil.EmployeesCSV(rows...)), personnel.ValidateOptions{MaxRecords: -1})
	require.NoError(t, err)
	assert.Len(t, ds.Records, 248)
	assert.Equal(t, ds.InputRows-ds.Dropped(), len(ds.Records))
}

func TestValidate_CapReturnsExactlyMax(t *testing.T) {
	rows := testutil.GeneratedEmployees(3500)

	ds, err := personnel.Validate(readTable(t, testutil.EmployeesCSV(rows...)), personnel.ValidateOptions{Seed: seed(7)})
	require.NoError(t, err)
	assert.Len(t, ds.Records, personnel.DefaultMaxRecords)
	assert.True(t, ds.Sampled)
	assert.Equal(t, 3500, ds.TotalClean)
	assert.Equal(t, "Mostrando muestra de 3000 de 3500", ds.SampleNotice())

	// sampled rows keep source order and are distinct
	for i := 1; i < len(ds.Records); i++ {
		assert.Less(t, ds.Records[i-1].Row, ds.Records[i].Row)
	}
}

func TestValidate_SeedIsReproducible(t *testing.T) {
	data := testutil.EmployeesCSV(testutil.GeneratedEmployees(400)...)
	opts := personnel.ValidateOptions{MaxRecords: 50, Seed: seed(42)}

	a, err := personnel.Validate(readTable(t, data), opts)
	require.NoError(t, err)
	b, err := personnel.Validate(readTable(t, data), opts)
	require.NoError(t, err)
	assert.Equal(t, a.Records, b.Records)

	c, err := personnel.Validate(readTable(t, data), personnel.ValidateOptions{MaxRecords: 50, Seed: seed(43)})
	require.NoError(t, err)
	assert.NotEqual(t, a.Records, c.Records)
}

func TestValidate_NilTable(t *testing.T) {
	_, err := personnel.Validate(nil, personnel.ValidateOptions{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyInput))
}

func TestCriticality_Rank(t *testing.T) {
	assert.Less(t, personnel.Criticality("Alta").Rank(), personnel.Criticality("Media").Rank())
	assert.Less(t, personnel.Criticality("media").Rank(), personnel.Criticality("Baja").Rank())
	assert.Less(t, personnel.Criticality("Baja").Rank(), personnel.Criticality("Desconocida").Rank())
}

//Personal.AI order the ending
