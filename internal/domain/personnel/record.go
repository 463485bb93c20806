// Package personnel holds the employee point records uploaded by an operator,
// the validator that turns a raw table into a clean dataset, and the filter
// engine applied before spatial containment.
package personnel

import (
	"strings"
)

// Column names of a personnel upload.  Matching is done after NFC
// normalisation and whitespace trimming of the header row.
const (
	ColumnName         = "Nombre"
	ColumnAddress      = "Dirección"
	ColumnAssignedSite = "Sede asignada"
	ColumnPhone        = "Teléfono"
	ColumnCity         = "Ciudad"
	ColumnSubprocess   = "Subproceso"
	ColumnCriticality  = "Criticidad"
	ColumnLatitude     = "Latitud"
	ColumnLongitude    = "Longitud"
)

// RequiredColumns lists every column a valid upload must carry, in export order.
var RequiredColumns = []string{
	ColumnName, ColumnAddress, ColumnAssignedSite, ColumnPhone, ColumnCity,
	ColumnSubprocess, ColumnCriticality, ColumnLatitude, ColumnLongitude,
}

// PointRecord is one employee with a validated coordinate.  Latitude is in
// [-90, 90] and Longitude in [-180, 180] for every record that leaves Validate.
type PointRecord struct {
	Row          int         `json:"row"`
	Name         string      `json:"name"`
	Address      string      `json:"address"`
	AssignedSite string      `json:"assigned_site"`
	Phone        string      `json:"phone"`
	City         string      `json:"city"`
	Subprocess   string      `json:"subprocess"`
	Criticality  Criticality `json:"criticality"`
	Latitude     float64     `json:"latitude"`
	Longitude    float64     `json:"longitude"`
}

// FieldValue returns the record's value for a filterable field.
func (r PointRecord) FieldValue(f Field) string {
	switch f {
	case FieldCity:
		return r.City
	case FieldCriticality:
		return string(r.Criticality)
	case FieldSubprocess:
		return r.Subprocess
	default:
		return ""
	}
}

// Columns renders the record in RequiredColumns order with coordinates
// formatted by format.
func (r PointRecord) Columns(format func(float64) string) []string {
	return []string{
		r.Name, r.Address, r.AssignedSite, r.Phone, r.City,
		r.Subprocess, string(r.Criticality), format(r.Latitude), format(r.Longitude),
	}
}

// Criticality is the business criticality label of an employee.  Labels are
// kept verbatim; Rank orders the known ones.
type Criticality string

// Rank orders criticality labels from most to least critical.  Unknown labels
// rank after all known ones.
func (c Criticality) Rank() int {
	switch strings.ToLower(strings.TrimSpace(string(c))) {
	case "crítica", "critica", "critical":
		return 0
	case "alta", "high":
		return 1
	case "media", "medium":
		return 2
	case "baja", "low":
		return 3
	default:
		return 4
	}
}

//Personal.AI order the ending
