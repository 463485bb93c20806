package testutil

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// EmployeeHeader is the column set of a personnel upload.
var EmployeeHeader = []string{
	"Nombre", "Dirección", "Sede asignada", "Teléfono", "Ciudad",
	"Subproceso", "Criticidad", "Latitud", "Longitud",
}

// EmployeeRow builds one upload row with the given identity and coordinates.
func EmployeeRow(name, site, city, subprocess, criticality, lat, lon string) []string {
	return []string{name, "Calle 1 # 2-3", site, "3000000000", city, subprocess, criticality, lat, lon}
}

// EmployeesCSV encodes rows under EmployeeHeader.
func EmployeesCSV(rows ...[]string) []byte {
	return TableCSV(EmployeeHeader, rows...)
}

// TableCSV encodes an arbitrary header and rows.
func TableCSV(header []string, rows ...[]string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(header)
	for _, r := range rows {
		_ = w.Write(r)
	}
	w.Flush()
	return buf.Bytes()
}

// GeneratedEmployees returns n rows spread over a small grid around Bogotá.
func GeneratedEmployees(n int) [][]string {
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		lat := 4.6 + float64(i%100)*0.001
		lon := -74.1 + float64(i/100%100)*0.001
		rows = append(rows, EmployeeRow(
			fmt.Sprintf("Empleado %04d", i),
			fmt.Sprintf("Sede %d", i%7),
			[]string{"Bogotá", "Chía", "Soacha"}[i%3],
			fmt.Sprintf("Subproceso %d", i%5),
			[]string{"Alta", "Media", "Baja"}[i%3],
			fmt.Sprintf("%.5f", lat),
			fmt.Sprintf("%.5f", lon),
		))
	}
	return rows
}

// RectangleFeature returns a GeoJSON Feature for the axis-aligned rectangle
// spanning [minLon,maxLon] x [minLat,maxLat].
func RectangleFeature(minLon, minLat, maxLon, maxLat float64) []byte {
	return []byte(fmt.Sprintf(`{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[%g,%g],[%g,%g],[%g,%g],[%g,%g],[%g,%g]]]}}`,
		minLon, minLat, maxLon, minLat, maxLon, maxLat, minLon, maxLat, minLon, minLat))
}

//Personal.AI order the ending
