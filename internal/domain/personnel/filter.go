package personnel

import (
	"slices"
	"strings"

	"github.com/turtacn/Continuity-Map/pkg/errors"
)

// Field is one of the fixed filterable attributes of a PointRecord.
type Field string

const (
	FieldCity        Field = "city"
	FieldCriticality Field = "criticality"
	FieldSubprocess  Field = "subprocess"
)

// Fields lists the filterable fields in display order.
var Fields = []Field{FieldCity, FieldCriticality, FieldSubprocess}

// All is the canonical "no restriction" sentinel.
const All = ""

// IsAll reports whether v means "no restriction".  The UI labels "Todas" and
// "Todos" are accepted as synonyms of the empty sentinel.
func IsAll(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "todas", "todos", "all":
		return true
	}
	return false
}

// Criteria restricts a dataset by AND-composing one optional equality
// predicate per field.
type Criteria struct {
	City        string `json:"city,omitempty"`
	Criticality string `json:"criticality,omitempty"`
	Subprocess  string `json:"subprocess,omitempty"`
}

// Value returns the criterion for field f.
func (c Criteria) Value(f Field) string {
	switch f {
	case FieldCity:
		return c.City
	case FieldCriticality:
		return c.Criticality
	case FieldSubprocess:
		return c.Subprocess
	}
	return All
}

// Normalize maps every sentinel synonym to All.
func (c Criteria) Normalize() Criteria {
	norm := func(v string) string {
		if IsAll(v) {
			return All
		}
		return strings.TrimSpace(v)
	}
	return Criteria{City: norm(c.City), Criticality: norm(c.Criticality), Subprocess: norm(c.Subprocess)}
}

// IsEmpty reports whether no field is restricted.
func (c Criteria) IsEmpty() bool {
	n := c.Normalize()
	return n.City == All && n.Criticality == All && n.Subprocess == All
}

// Match reports whether r satisfies every restricted field.
func (c Criteria) Match(r PointRecord) bool {
	n := c.Normalize()
	for _, f := range Fields {
		if v := n.Value(f); v != All && r.FieldValue(f) != v {
			return false
		}
	}
	return true
}

// Validate rejects criteria values that do not occur in the dataset's domain.
func (c Criteria) Validate(domain DomainValues) error {
	n := c.Normalize()
	for _, f := range Fields {
		v := n.Value(f)
		if v == All {
			continue
		}
		if _, found := slices.BinarySearch(domain[f], v); !found {
			return errors.New(errors.ErrCodeFilterInvalid, "filter value not present in dataset").
				WithDetail(string(f) + "=" + v)
		}
	}
	return nil
}

// Filter returns the records matching c in their original order.  The input
// is never modified and the result never aliases it.
func Filter(records []PointRecord, c Criteria) []PointRecord {
	out := make([]PointRecord, 0, len(records))
	for _, r := range records {
		if c.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// DomainValues holds the sorted distinct non-empty values of each field.
type DomainValues map[Field][]string

// Domain discovers the filter domain of a dataset.
func Domain(records []PointRecord) DomainValues {
	sets := make(map[Field]map[string]struct{}, len(Fields))
	for _, f := range Fields {
		sets[f] = make(map[string]struct{})
	}
	for _, r := range records {
		for _, f := range Fields {
			if v := r.FieldValue(f); v != "" {
				sets[f][v] = struct{}{}
			}
		}
	}
	out := make(DomainValues, len(Fields))
	for f, set := range sets {
		vals := make([]string, 0, len(set))
		for v := range set {
			vals = append(vals, v)
		}
		slices.Sort(vals)
		out[f] = vals
	}
	return out
}

//Personal.AI order the ending
