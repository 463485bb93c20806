package reporting

import (
	"github.com/turtacn/Continuity-Map/internal/domain/personnel"
)

// Overview summarises a whole dataset before any zone is drawn.
type Overview struct {
	TotalRecords  int     `json:"total_records"`
	AssignedSites int     `json:"assigned_sites"`
	Cities        int     `json:"cities"`
	TopCities     []Count `json:"top_cities"`
	TopSites      []Count `json:"top_sites"`
	Sampled       bool    `json:"sampled"`
	SampleNotice  string  `json:"sample_notice,omitempty"`
	Dropped       int     `json:"dropped"`
}

// DatasetOverview computes the general dashboard for ds.
func DatasetOverview(ds *personnel.CleanDataset) Overview {
	if ds == nil {
		return Overview{TopCities: []Count{}, TopSites: []Count{}}
	}
	cities := valueCounts(ds.Records, func(p personnel.PointRecord) string { return p.City }, 0)
	sites := valueCounts(ds.Records, func(p personnel.PointRecord) string { return p.AssignedSite }, 0)

	top := func(c []Count) []Count {
		if len(c) > DefaultTopN {
			return c[:DefaultTopN]
		}
		return c
	}
	return Overview{
		TotalRecords:  len(ds.Records),
		AssignedSites: len(sites),
		Cities:        len(cities),
		TopCities:     top(cities),
		TopSites:      top(sites),
		Sampled:       ds.Sampled,
		SampleNotice:  ds.SampleNotice(),
		Dropped:       ds.Dropped(),
	}
}

//Personal.AI order the ending
