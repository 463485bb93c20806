// Package reporting aggregates the result of a zone containment run into an
// immutable Report and renders it as CSV, chart images and a PDF document.
package reporting

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/Continuity-Map/internal/domain/facility"
	"github.com/turtacn/Continuity-Map/internal/domain/personnel"
	"github.com/turtacn/Continuity-Map/internal/domain/zone"
	"github.com/turtacn/Continuity-Map/pkg/errors"
)

// Report is the immutable summary of one drawn zone.  Accessors return
// copies; a new draw always produces a new Report.
type Report struct {
	id          string
	generatedAt time.Time
	zone        *zone.Zone
	employees   []personnel.PointRecord
	facilities  []facility.FixedLocation
}

// BuildOption customises BuildReport.
type BuildOption func(*Report)

// WithClock fixes the generation timestamp.
func WithClock(now func() time.Time) BuildOption {
	return func(r *Report) { r.generatedAt = now() }
}

// WithID fixes the report identifier.
func WithID(id string) BuildOption {
	return func(r *Report) { r.id = id }
}

// BuildReport aggregates sets into a Report referencing z.
func BuildReport(sets *zone.AffectedSets, z *zone.Zone, opts ...BuildOption) (*Report, error) {
	if z == nil {
		return nil, errors.New(errors.ErrCodeNoZone, "no zone drawn")
	}
	if sets == nil {
		return nil, errors.Internal("containment result is missing")
	}
	r := &Report{
		id:          uuid.NewString(),
		generatedAt: time.Now(),
		zone:        z,
		employees:   append(make([]personnel.PointRecord, 0, len(sets.Employees)), sets.Employees...),
		facilities:  append(make([]facility.FixedLocation, 0, len(sets.Facilities)), sets.Facilities...),
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// ID returns the report identifier.
func (r *Report) ID() string { return r.id }

// GeneratedAt returns the generation timestamp.
func (r *Report) GeneratedAt() time.Time { return r.generatedAt }

// Zone returns the zone the report was computed for.
func (r *Report) Zone() *zone.Zone { return r.zone }

// TotalEmployees is the number of affected employees.
func (r *Report) TotalEmployees() int { return len(r.employees) }

// TotalFacilities is the number of affected facilities.
func (r *Report) TotalFacilities() int { return len(r.facilities) }

// AffectedEmployees returns a copy of the affected employees in input order.
func (r *Report) AffectedEmployees() []personnel.PointRecord {
	return append([]personnel.PointRecord(nil), r.employees...)
}

// AffectedFacilities returns a copy of the affected facilities in input order.
func (r *Report) AffectedFacilities() []facility.FixedLocation {
	return append([]facility.FixedLocation(nil), r.facilities...)
}

// FacilityNames returns the names of the affected facilities.
func (r *Report) FacilityNames() []string {
	out := make([]string, len(r.facilities))
	for i, f := range r.facilities {
		out[i] = f.Name
	}
	return out
}

// reportJSON is the wire form of a Report.
type reportJSON struct {
	ID                 string                   `json:"id"`
	GeneratedAt        time.Time                `json:"generated_at"`
	TotalEmployees     int                      `json:"total_colaboradores"`
	TotalFacilities    int                      `json:"total_sedes"`
	AffectedEmployees  []personnel.PointRecord  `json:"colaboradores_afectados"`
	AffectedFacilities []facility.FixedLocation `json:"sedes_afectadas"`
	Zone               *zone.Zone               `json:"zona"`
	Breakdowns         Breakdowns               `json:"breakdowns"`
}

// MarshalJSON renders the report and its breakdowns.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(reportJSON{
		ID:                 r.id,
		GeneratedAt:        r.generatedAt,
		TotalEmployees:     r.TotalEmployees(),
		TotalFacilities:    r.TotalFacilities(),
		AffectedEmployees:  r.employees,
		AffectedFacilities: r.facilities,
		Zone:               r.zone,
		Breakdowns:         r.Breakdowns(DefaultTopN),
	})
}

//Personal.AI order the ending
