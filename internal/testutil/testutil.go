// Package testutil provides shared test helpers and fixtures for the report
// packages: statistics documents and exiftool metadata.
package testutil

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/banshee-data/statsreport/internal/fsutil"
	"github.com/banshee-data/statsreport/internal/stats"
)

// Accumulate folds values into a fresh accumulator.
func Accumulate(values ...float64) stats.Accumulator {
	acc := stats.Empty()
	for _, v := range values {
		acc.Add(v)
	}
	return acc
}

// Image is one entry of a statistics document fixture.
type Image struct {
	Path   string
	Width  int
	Height int
	Values []float64
}

type imageJSON struct {
	Path   string            `json:"path"`
	Width  int               `json:"width"`
	Height int               `json:"height"`
	Stats  stats.Accumulator `json:"stats"`
}

// StatsDocument renders the upstream statistics JSON for images. The
// cumulative accumulator is the merge of every image's values.
func StatsDocument(t *testing.T, images ...Image) []byte {
	t.Helper()

	doc := struct {
		ImageStats []imageJSON       `json:"image_stats"`
		Cumulative stats.Accumulator `json:"cumulative"`
	}{
		ImageStats: make([]imageJSON, 0, len(images)),
		Cumulative: stats.Empty(),
	}
	for _, img := range images {
		acc := Accumulate(img.Values...)
		doc.ImageStats = append(doc.ImageStats, imageJSON{
			Path:   img.Path,
			Width:  img.Width,
			Height: img.Height,
			Stats:  acc,
		})
		doc.Cumulative.Merge(acc)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal stats document: %v", err)
	}
	return data
}

// ExifDocument renders an exiftool -json style metadata array for one image.
func ExifDocument(source, lat, lon string) []byte {
	doc := []map[string]string{{
		"SourceFile":   source,
		"GPSLatitude":  lat,
		"GPSLongitude": lon,
	}}
	data, _ := json.Marshal(doc)
	return data
}

// SeedMetadata writes an exiftool document per path into a memory filesystem.
// positions maps path to a [lat, lon] pair of sexagesimal strings.
func SeedMetadata(positions map[string][2]string) *fsutil.MemoryFileSystem {
	mfs := fsutil.NewMemoryFileSystem()
	for path, pos := range positions {
		mfs.WriteFile(path, ExifDocument(path, pos[0], pos[1]))
	}
	return mfs
}

// DMS formats decimal degrees as an exiftool sexagesimal string with a
// trailing hemisphere letter chosen from pos/neg.
func DMS(deg float64, pos, neg byte) string {
	hemi := pos
	if deg < 0 {
		hemi = neg
		deg = -deg
	}
	d := int(deg)
	rem := (deg - float64(d)) * 60
	m := int(rem)
	s := (rem - float64(m)) * 60
	return fmt.Sprintf(`%d deg %d' %.4f" %c`, d, m, s, hemi)
}
