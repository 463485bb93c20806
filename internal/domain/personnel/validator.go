package personnel

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/turtacn/Continuity-Map/pkg/errors"
)

// DefaultMaxRecords caps the number of records kept after validation.
const DefaultMaxRecords = 3000

// DropReason classifies a row removed by Validate.
type DropReason string

const (
	DropMissing     DropReason = "missing_coordinates"
	DropUnparseable DropReason = "unparseable_coordinates"
	DropOutOfRange  DropReason = "out_of_range"
)

// ValidateOptions controls the size cap.
type ValidateOptions struct {
	// MaxRecords caps the output; zero means DefaultMaxRecords, negative disables the cap.
	MaxRecords int
	// Seed makes sampling reproducible.  Nil seeds from the runtime source.
	Seed *int64
}

// CleanDataset is the typed result of Validate.
type CleanDataset struct {
	Records []PointRecord `json:"records"`

	// InputRows is the number of data rows in the upload.
	InputRows int `json:"input_rows"`
	// TotalClean is the number of valid rows before sampling.
	TotalClean int `json:"total_clean"`
	// Sampled is true when Records is a uniform sample of TotalClean rows.
	Sampled bool `json:"sampled"`
	// Drops counts removed rows by reason.
	Drops map[DropReason]int `json:"drops"`
}

// Dropped returns the total number of rows removed for data-quality reasons.
func (d *CleanDataset) Dropped() int {
	n := 0
	for _, c := range d.Drops {
		n += c
	}
	return n
}

// SampleNotice is the operator-facing message shown when the dataset was
// sampled; it is empty otherwise.
func (d *CleanDataset) SampleNotice() string {
	if !d.Sampled {
		return ""
	}
	return fmt.Sprintf("Mostrando muestra de %d de %d", len(d.Records), d.TotalClean)
}

// Validate checks the schema of table, drops rows whose coordinates are
// missing, unparseable or out of range, and caps the result.  A missing
// required column yields an ErrCodeSchema error and no partial result.
func Validate(table *RawTable, opts ValidateOptions) (*CleanDataset, error) {
	if table == nil {
		return nil, errors.New(errors.ErrCodeEmptyInput, "no table to validate")
	}
	if missing := table.MissingColumns(); len(missing) > 0 {
		return nil, errors.New(errors.ErrCodeSchema, "missing required columns").
			WithDetail(strings.Join(missing, ", "))
	}

	idx := table.columnIndex()
	col := func(row []string, name string) string {
		i := idx[norm.NFC.String(name)]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := &CleanDataset{
		InputRows: len(table.Rows),
		Drops:     make(map[DropReason]int),
	}
	records := make([]PointRecord, 0, len(table.Rows))
	for i, row := range table.Rows {
		lat, reason := parseCoordinate(col(row, ColumnLatitude), 90)
		if reason == "" {
			var lonReason DropReason
			var lon float64
			lon, lonReason = parseCoordinate(col(row, ColumnLongitude), 180)
			if lonReason == "" {
				records = append(records, PointRecord{
					Row:          i + 1,
					Name:         col(row, ColumnName),
					Address:      col(row, ColumnAddress),
					AssignedSite: col(row, ColumnAssignedSite),
					Phone:        col(row, ColumnPhone),
					City:         col(row, ColumnCity),
					Subprocess:   col(row, ColumnSubprocess),
					Criticality:  Criticality(col(row, ColumnCriticality)),
					Latitude:     lat,
					Longitude:    lon,
				})
				continue
			}
			reason = lonReason
		}
		out.Drops[reason]++
	}

	out.TotalClean = len(records)
	limit := opts.MaxRecords
	if limit == 0 {
		limit = DefaultMaxRecords
	}
	if limit > 0 && len(records) > limit {
		records = sample(records, limit, opts.Seed)
		out.Sampled = true
	}
	out.Records = records
	return out, nil
}

// parseCoordinate parses s and checks |v| <= bound.  Bounds are inclusive.
func parseCoordinate(s string, bound float64) (float64, DropReason) {
	if s == "" {
		return 0, DropMissing
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, DropUnparseable
	}
	if v < -bound || v > bound {
		return 0, DropOutOfRange
	}
	return v, ""
}

// sample picks exactly k records uniformly without replacement and returns
// them in source order.
func sample(records []PointRecord, k int, seed *int64) []PointRecord {
	var rng *rand.Rand
	if seed != nil {
		rng = rand.New(rand.NewPCG(uint64(*seed), uint64(*seed)^0x9e3779b97f4a7c15))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	n := len(records)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.IntN(n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	chosen := perm[:k]
	slices.Sort(chosen)

	out := make([]PointRecord, k)
	for i, p := range chosen {
		out[i] = records[p]
	}
	return out
}

//Personal.AI order the ending
