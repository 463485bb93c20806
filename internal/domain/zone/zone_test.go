package zone

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Continuity-Map/internal/testutil"
	"github.com/turtacn/Continuity-Map/pkg/errors"
)

func TestParse_RectangleFeature(t *testing.T) {
	z, err := Parse(testutil.RectangleFeature(-74.2, 4.5, -74.0, 4.8))
	require.NoError(t, err)

	assert.Equal(t, KindRectangle, z.Kind())
	assert.Equal(t, orb.Point{-74.2, 4.5}, z.Bound().Min)
	assert.Equal(t, orb.Point{-74.0, 4.8}, z.Bound().Max)
}

func TestParse_BareGeometryPolygon(t *testing.T) {
	raw := `{"type":"Polygon","coordinates":[[[0,0],[4,0],[2,3],[0,0]]]}`
	z, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, KindPolygon, z.Kind())
	assert.True(t, z.Contains(2, 1))
	assert.False(t, z.Contains(3.9, 2.9))
}

func TestParse_MultiPolygon(t *testing.T) {
	raw := `{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,1],[0,0]]],[[[5,5],[6,5],[6,6],[5,6],[5,5]]]]}`
	z, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, KindMultiPolygon, z.Kind())
	assert.True(t, z.Contains(0.5, 0.5))
	assert.True(t, z.Contains(5.5, 5.5))
	assert.False(t, z.Contains(3, 3))
}

func TestParse_FeatureCollectionUsesLastFeature(t *testing.T) {
	raw := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
		{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[10,10],[11,10],[11,11],[10,11],[10,10]]]}}
	]}`
	z, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.True(t, z.Contains(10.5, 10.5))
	assert.False(t, z.Contains(0.5, 0.5))
}

func TestParse_Circle(t *testing.T) {
	raw := `{"type":"Feature","properties":{"radius":1000},"geometry":{"type":"Point","coordinates":[-74.05,4.65]}}`
	z, err := Parse([]byte(raw))
	require.NoError(t, err)

	center, radius, ok := z.Circle()
	require.True(t, ok)
	assert.Equal(t, KindCircle, z.Kind())
	assert.Equal(t, orb.Point{-74.05, 4.65}, center)
	assert.Equal(t, 1000.0, radius)

	assert.True(t, z.Contains(-74.05, 4.65))
	// ~550 m north: inside; ~1.6 km north: outside.
	assert.True(t, z.Contains(-74.05, 4.655))
	assert.False(t, z.Contains(-74.05, 4.665))

	poly := z.Geometry().(orb.Polygon)
	assert.Len(t, poly[0], CircleSegments+1)
	assert.True(t, poly[0].Closed())
}

func TestParse_NoZone(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"null",
		"{}",
		`{"type":"Feature","properties":{},"geometry":null}`,
		`{"type":"FeatureCollection","features":[]}`,
	} {
		_, err := Parse([]byte(raw))
		require.Error(t, err, raw)
		assert.True(t, errors.IsCode(err, errors.ErrCodeNoZone), raw)
	}
}

func TestParse_GeometryErrors(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"type":`,
		"unknown type":    `{"type":"Banana","coordinates":[]}`,
		"line string":     `{"type":"LineString","coordinates":[[0,0],[1,1]]}`,
		"too few points":  `{"type":"Polygon","coordinates":[[[0,0],[1,0],[0,0]]]}`,
		"open ring":       `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1]]]}`,
		"out of range":    `{"type":"Polygon","coordinates":[[[0,0],[200,0],[1,1],[0,0]]]}`,
		"zero area":       `{"type":"Polygon","coordinates":[[[0,0],[1,1],[2,2],[0,0]]]}`,
		"point no radius": `{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[0,0]}}`,
		"negative radius": `{"type":"Feature","properties":{"radius":-5},"geometry":{"type":"Point","coordinates":[0,0]}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeGeometry), err.Error())
		})
	}
}

func TestParse_RoundsShapeToFiveDecimals(t *testing.T) {
	raw := testutil.RectangleFeature(-74.1234567, 4.1234549, -74.0000001, 4.9999996)
	z, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, orb.Point{-74.12346, 4.12345}, z.Bound().Min)
	assert.Equal(t, orb.Point{-74.0, 5.0}, z.Bound().Max)
}

func TestZone_MarshalJSON(t *testing.T) {
	z, err := Parse(testutil.RectangleFeature(0, 0, 1, 1))
	require.NoError(t, err)

	data, err := json.Marshal(z)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "rectangle", decoded["kind"])
	geom := decoded["geometry"].(map[string]interface{})
	assert.Equal(t, "Polygon", geom["type"])
	assert.NotContains(t, decoded, "circle")
}

func TestZone_GeometryIsACopy(t *testing.T) {
	z, err := Parse(testutil.RectangleFeature(0, 0, 1, 1))
	require.NoError(t, err)

	g := z.Geometry().(orb.Polygon)
	g[0][0] = orb.Point{50, 50}

	assert.Equal(t, orb.Point{0, 0}, z.Geometry().(orb.Polygon)[0][0])
}

//Personal.AI order the ending
