package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/statsreport/internal/geo"
	"github.com/banshee-data/statsreport/internal/stats"
)

func TestStatsDocument_CumulativeIsMerge(t *testing.T) {
	data := StatsDocument(t,
		Image{Path: "a.json", Width: 2, Height: 1, Values: []float64{1, 3}},
		Image{Path: "b.json", Width: 1, Height: 1, Values: []float64{5}},
	)

	var doc struct {
		ImageStats []struct {
			Path  string            `json:"path"`
			Stats stats.Accumulator `json:"stats"`
		} `json:"image_stats"`
		Cumulative stats.Accumulator `json:"cumulative"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	require.Len(t, doc.ImageStats, 2)
	assert.Equal(t, "a.json", doc.ImageStats[0].Path)
	assert.Equal(t, stats.Accumulator{Count: 3, Sum: 9, Sum2: 35, Min: 1, Max: 5}, doc.Cumulative)
}

func TestDMS_RoundTripsThroughParser(t *testing.T) {
	for _, tc := range []struct {
		deg      float64
		pos, neg byte
	}{
		{40.446111, 'N', 'S'},
		{-33.859972, 'N', 'S'},
		{-79.982222, 'E', 'W'},
		{151.211111, 'E', 'W'},
	} {
		s := DMS(tc.deg, tc.pos, tc.neg)
		got, err := geo.ParseDegrees(s)
		require.NoError(t, err, s)
		assert.InDelta(t, tc.deg, got, 1e-6, s)
	}
}

func TestSeedMetadata(t *testing.T) {
	mfs := SeedMetadata(map[string][2]string{
		"img/a.json": {`1 2 3 N`, `4 5 6 W`},
	})

	data, err := mfs.ReadFile("img/a.json")
	require.NoError(t, err)
	md, err := geo.DecodeMetadata(data)
	require.NoError(t, err)
	p, err := geo.Resolve(md)
	require.NoError(t, err)
	assert.Greater(t, p.Latitude, 0.0)
	assert.Less(t, p.Longitude, 0.0)
}
