package zone

import (
	"github.com/turtacn/Continuity-Map/internal/domain/facility"
	"github.com/turtacn/Continuity-Map/internal/domain/personnel"
)

// AffectedSets is the result of testing one zone against a personnel dataset
// and the facility set.  Both slices keep input order.
type AffectedSets struct {
	Employees  []personnel.PointRecord
	Facilities []facility.FixedLocation
}

// EmployeeCount returns the number of affected employees.
func (a *AffectedSets) EmployeeCount() int { return len(a.Employees) }

// FacilityCount returns the number of affected facilities.
func (a *AffectedSets) FacilityCount() int { return len(a.Facilities) }

// ComputeAffected returns the records and facilities inside z.  A nil zone
// yields ErrCodeNoZone.  The function is pure: identical inputs always give
// identical outputs.
func ComputeAffected(z *Zone, records []personnel.PointRecord, facilities []facility.FixedLocation) (*AffectedSets, error) {
	if z == nil {
		return nil, errNoZone()
	}
	out := &AffectedSets{
		Employees:  make([]personnel.PointRecord, 0),
		Facilities: make([]facility.FixedLocation, 0),
	}
	for _, r := range records {
		if z.Contains(r.Longitude, r.Latitude) {
			out.Employees = append(out.Employees, r)
		}
	}
	for _, f := range facilities {
		if z.Contains(f.Longitude, f.Latitude) {
			out.Facilities = append(out.Facilities, f)
		}
	}
	return out, nil
}

//Personal.AI order the ending
