package reporting

import (
	"sort"

	"github.com/turtacn/Continuity-Map/internal/domain/personnel"
)

// DefaultTopN bounds the ranked breakdowns.
const DefaultTopN = 5

// Count is one row of a value-count breakdown.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Breakdowns groups the read-side projections of a Report.
type Breakdowns struct {
	ByCriticality  []Count `json:"by_criticality"`
	BySubprocess   []Count `json:"by_subprocess"`
	ByAssignedSite []Count `json:"by_assigned_site"`
	ByCity         []Count `json:"by_city"`
	ByFacility     []Count `json:"by_facility"`
}

// Breakdowns computes every projection, bounding ranked ones to topN.
func (r *Report) Breakdowns(topN int) Breakdowns {
	return Breakdowns{
		ByCriticality:  r.ByCriticality(),
		BySubprocess:   r.BySubprocess(topN),
		ByAssignedSite: r.ByAssignedSite(topN),
		ByCity:         r.ByCity(topN),
		ByFacility:     r.ByFacility(),
	}
}

// ByCriticality counts affected employees per criticality label, most
// critical first.
func (r *Report) ByCriticality() []Count {
	counts := valueCounts(r.employees, func(p personnel.PointRecord) string { return string(p.Criticality) }, 0)
	sort.SliceStable(counts, func(i, j int) bool {
		ri, rj := personnel.Criticality(counts[i].Value).Rank(), personnel.Criticality(counts[j].Value).Rank()
		if ri != rj {
			return ri < rj
		}
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// BySubprocess returns the topN subprocesses by affected headcount.
func (r *Report) BySubprocess(topN int) []Count {
	return valueCounts(r.employees, func(p personnel.PointRecord) string { return p.Subprocess }, topN)
}

// ByAssignedSite returns the topN assigned sites by affected headcount.
func (r *Report) ByAssignedSite(topN int) []Count {
	return valueCounts(r.employees, func(p personnel.PointRecord) string { return p.AssignedSite }, topN)
}

// ByCity returns the topN cities by affected headcount.
func (r *Report) ByCity(topN int) []Count {
	return valueCounts(r.employees, func(p personnel.PointRecord) string { return p.City }, topN)
}

// ByFacility counts affected facilities by name.
func (r *Report) ByFacility() []Count {
	counts := make([]Count, 0, len(r.facilities))
	idx := make(map[string]int, len(r.facilities))
	for _, f := range r.facilities {
		if i, ok := idx[f.Name]; ok {
			counts[i].Count++
			continue
		}
		idx[f.Name] = len(counts)
		counts = append(counts, Count{Value: f.Name, Count: 1})
	}
	sortCounts(counts)
	return counts
}

// valueCounts tallies key over records, ordered by descending count with ties
// kept in first-appearance order.  Empty keys are skipped.  topN <= 0 keeps
// every value.
func valueCounts(records []personnel.PointRecord, key func(personnel.PointRecord) string, topN int) []Count {
	counts := make([]Count, 0)
	idx := make(map[string]int)
	for _, rec := range records {
		k := key(rec)
		if k == "" {
			continue
		}
		if i, ok := idx[k]; ok {
			counts[i].Count++
			continue
		}
		idx[k] = len(counts)
		counts = append(counts, Count{Value: k, Count: 1})
	}
	sortCounts(counts)
	if topN > 0 && len(counts) > topN {
		counts = counts[:topN]
	}
	return counts
}

func sortCounts(counts []Count) {
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
}

//Personal.AI order the ending
