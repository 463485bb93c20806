// Package zone parses operator-drawn GeoJSON shapes and answers spatial
// containment for personnel records and fixed facilities.
//
// Shapes and query points are rounded to five decimal places (about 1.1 m)
// before testing.  Points are built as (x=longitude, y=latitude).  A point on
// the outer boundary of a shape is inside it.
package zone

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/turtacn/Continuity-Map/pkg/errors"
)

const (
	// RoundingFactor rounds coordinates to five decimals.
	RoundingFactor = 100000
	// CircleSegments is the vertex count of the polygon approximating a circle.
	CircleSegments = 64
)

// Kind labels the shape the operator drew.
type Kind string

const (
	KindPolygon      Kind = "polygon"
	KindRectangle    Kind = "rectangle"
	KindCircle       Kind = "circle"
	KindMultiPolygon Kind = "multipolygon"
)

// Zone is a validated, rounded drawn geometry.  It is immutable.
type Zone struct {
	kind   Kind
	shape  orb.Geometry // orb.Polygon or orb.MultiPolygon
	bound  orb.Bound
	center orb.Point
	radius float64
}

// Kind returns the drawn shape kind.
func (z *Zone) Kind() Kind { return z.kind }

// Bound returns the bounding box of the rounded shape.
func (z *Zone) Bound() orb.Bound { return z.bound }

// Geometry returns a copy of the rounded shape.
func (z *Zone) Geometry() orb.Geometry { return orb.Clone(z.shape) }

// Circle returns the center and radius in metres for circle zones.
func (z *Zone) Circle() (orb.Point, float64, bool) {
	return z.center, z.radius, z.kind == KindCircle
}

// Contains reports whether the point (lon, lat) lies inside or on the
// boundary of the zone after rounding.
func (z *Zone) Contains(lon, lat float64) bool {
	p := RoundPoint(orb.Point{lon, lat})
	if !z.bound.Contains(p) {
		return false
	}
	switch s := z.shape.(type) {
	case orb.Polygon:
		return planar.PolygonContains(s, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(s, p)
	}
	return false
}

// MarshalJSON renders the zone as its kind plus a GeoJSON geometry.
func (z *Zone) MarshalJSON() ([]byte, error) {
	type circle struct {
		Center  [2]float64 `json:"center"`
		RadiusM float64    `json:"radius_m"`
	}
	out := struct {
		Kind     Kind              `json:"kind"`
		Geometry *geojson.Geometry `json:"geometry"`
		Circle   *circle           `json:"circle,omitempty"`
	}{Kind: z.kind, Geometry: geojson.NewGeometry(z.shape)}
	if z.kind == KindCircle {
		out.Circle = &circle{Center: z.center, RadiusM: z.radius}
	}
	return json.Marshal(out)
}

// RoundPoint rounds p to five decimals.
func RoundPoint(p orb.Point) orb.Point {
	return orb.Point{roundCoord(p[0]), roundCoord(p[1])}
}

func roundCoord(v float64) float64 {
	return math.Round(v*RoundingFactor) / RoundingFactor
}

// ─────────────────────────────────────────────────────────────────────────────
// Parsing
// ─────────────────────────────────────────────────────────────────────────────

func errNoZone() error {
	return errors.New(errors.ErrCodeNoZone, "no zone drawn")
}

func errGeometry(msg string, cause error) error {
	e := errors.New(errors.ErrCodeGeometry, msg)
	if cause != nil {
		return e.WithCause(cause)
	}
	return e
}

// Parse decodes a drawn shape.  It accepts a GeoJSON Feature (the shape a
// draw control emits), a FeatureCollection (the last feature wins) or a bare
// geometry.  Circles arrive as a Point Feature with a "radius" property in
// metres and are approximated by a CircleSegments-gon.
//
// Empty input, null geometry and empty collections yield ErrCodeNoZone; any
// other defect yields ErrCodeGeometry.
func Parse(raw []byte) (*Zone, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte("{}")) {
		return nil, errNoZone()
	}

	var head struct {
		Type     string          `json:"type"`
		Geometry json.RawMessage `json:"geometry"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, errGeometry("zone is not valid JSON", err)
	}

	switch head.Type {
	case "":
		return nil, errNoZone()
	case "Feature":
		if g := bytes.TrimSpace(head.Geometry); len(g) == 0 || bytes.Equal(g, []byte("null")) {
			return nil, errNoZone()
		}
		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			return nil, errGeometry("invalid GeoJSON feature", err)
		}
		if f.Geometry == nil {
			return nil, errNoZone()
		}
		return FromGeometry(f.Geometry, f.Properties)
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(raw)
		if err != nil {
			return nil, errGeometry("invalid GeoJSON feature collection", err)
		}
		if len(fc.Features) == 0 {
			return nil, errNoZone()
		}
		last := fc.Features[len(fc.Features)-1]
		if last.Geometry == nil {
			return nil, errNoZone()
		}
		return FromGeometry(last.Geometry, last.Properties)
	case "Polygon", "MultiPolygon", "Point", "MultiPoint", "LineString", "MultiLineString", "GeometryCollection":
		g, err := geojson.UnmarshalGeometry(raw)
		if err != nil {
			return nil, errGeometry("invalid GeoJSON geometry", err)
		}
		if g.Geometry() == nil {
			return nil, errNoZone()
		}
		return FromGeometry(g.Geometry(), nil)
	default:
		return nil, errGeometry(fmt.Sprintf("unsupported GeoJSON type %q", head.Type), nil)
	}
}

// FromGeometry validates g, rounds it and builds a Zone.  props supplies the
// circle radius for Point geometries.
func FromGeometry(g orb.Geometry, props geojson.Properties) (*Zone, error) {
	switch s := g.(type) {
	case orb.Polygon:
		if err := validatePolygon(s); err != nil {
			return nil, err
		}
		rounded := orb.Round(orb.Clone(s), RoundingFactor).(orb.Polygon)
		if planar.Area(rounded) == 0 {
			return nil, errGeometry("polygon has zero area", nil)
		}
		kind := KindPolygon
		if isRectangle(rounded) {
			kind = KindRectangle
		}
		return &Zone{kind: kind, shape: rounded, bound: rounded.Bound()}, nil

	case orb.MultiPolygon:
		if len(s) == 0 {
			return nil, errNoZone()
		}
		for _, p := range s {
			if err := validatePolygon(p); err != nil {
				return nil, err
			}
		}
		rounded := orb.Round(orb.Clone(s), RoundingFactor).(orb.MultiPolygon)
		if planar.Area(rounded) == 0 {
			return nil, errGeometry("multipolygon has zero area", nil)
		}
		return &Zone{kind: KindMultiPolygon, shape: rounded, bound: rounded.Bound()}, nil

	case orb.Point:
		radius, ok := circleRadius(props)
		if !ok {
			return nil, errGeometry("point zone requires a positive radius property", nil)
		}
		if err := validatePoint(s); err != nil {
			return nil, err
		}
		poly := circlePolygon(s, radius)
		return &Zone{
			kind:   KindCircle,
			shape:  poly,
			bound:  poly.Bound(),
			center: RoundPoint(s),
			radius: radius,
		}, nil

	case nil:
		return nil, errNoZone()
	}
	return nil, errGeometry(fmt.Sprintf("unsupported zone geometry %q", g.GeoJSONType()), nil)
}

func circleRadius(props geojson.Properties) (float64, bool) {
	if props == nil {
		return 0, false
	}
	r, ok := props["radius"].(float64)
	if !ok || math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return 0, false
	}
	return r, true
}

// circlePolygon approximates a geodesic circle with CircleSegments vertices.
func circlePolygon(center orb.Point, radius float64) orb.Polygon {
	ring := make(orb.Ring, 0, CircleSegments+1)
	for i := 0; i < CircleSegments; i++ {
		bearing := 360.0 * float64(i) / CircleSegments
		ring = append(ring, RoundPoint(geo.PointAtBearingAndDistance(center, bearing, radius)))
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

func validatePolygon(p orb.Polygon) error {
	if len(p) == 0 {
		return errGeometry("polygon has no rings", nil)
	}
	for i, r := range p {
		if len(r) < 4 {
			return errGeometry(fmt.Sprintf("ring %d has %d points; at least 4 required", i, len(r)), nil)
		}
		if !r.Closed() {
			return errGeometry(fmt.Sprintf("ring %d is not closed", i), nil)
		}
		for _, pt := range r {
			if err := validatePoint(pt); err != nil {
				return err
			}
		}
	}
	return nil
}

func validatePoint(p orb.Point) error {
	lon, lat := p[0], p[1]
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return errGeometry("coordinate is not finite", nil)
	}
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return errGeometry(fmt.Sprintf("coordinate (%g, %g) is outside lon/lat range", lon, lat), nil)
	}
	return nil
}

// isRectangle reports whether p is a single axis-aligned four-corner ring.
func isRectangle(p orb.Polygon) bool {
	if len(p) != 1 || len(p[0]) != 5 {
		return false
	}
	b := p[0].Bound()
	for _, pt := range p[0] {
		onX := pt[0] == b.Min[0] || pt[0] == b.Max[0]
		onY := pt[1] == b.Min[1] || pt[1] == b.Max[1]
		if !onX || !onY {
			return false
		}
	}
	return true
}

//Personal.AI order the ending
