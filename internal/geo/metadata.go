package geo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/statsreport/internal/fsutil"
	"github.com/banshee-data/statsreport/internal/security"
)

// Exiftool field names carrying the sexagesimal position.
const (
	LatitudeField  = "GPSLatitude"
	LongitudeField = "GPSLongitude"
)

// ErrMissingField is returned when a metadata document lacks a position field.
var ErrMissingField = errors.New("missing metadata field")

// Point is a geodetic position in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ProjectedPoint is a planar position in the units of the target CRS.
type ProjectedPoint struct {
	Easting  float64 `json:"easting"`
	Northing float64 `json:"northing"`
}

// Metadata is one image's metadata document, keyed by field name.
type Metadata map[string]json.RawMessage

// DecodeMetadata parses a metadata document. exiftool -json writes a
// one-element array; a bare object is accepted too. For arrays the first
// element is used.
func DecodeMetadata(data []byte) (Metadata, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var docs []Metadata
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, fmt.Errorf("decode metadata array: %w", err)
		}
		if len(docs) == 0 {
			return nil, fmt.Errorf("decode metadata array: index 0 out of range, array is empty")
		}
		if docs[0] == nil {
			return nil, fmt.Errorf("decode metadata array: first element is not an object")
		}
		return docs[0], nil
	}

	var doc Metadata
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("decode metadata: document is not an object")
	}
	return doc, nil
}

// Resolve reads the latitude and longitude fields from md.
func Resolve(md Metadata) (Point, error) {
	lat, err := md.angle(LatitudeField)
	if err != nil {
		return Point{}, err
	}
	lon, err := md.angle(LongitudeField)
	if err != nil {
		return Point{}, err
	}
	return Point{Latitude: lat, Longitude: lon}, nil
}

func (md Metadata) angle(field string) (float64, error) {
	raw, ok := md[field]
	if !ok {
		return 0, fmt.Errorf("%s: %w", field, ErrMissingField)
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, fmt.Errorf("%s: expected sexagesimal string, got %s", field, raw)
	}
	deg, err := ParseDegrees(text)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return deg, nil
}

// MetadataStore loads per-image metadata documents from a filesystem.
type MetadataStore struct {
	FS fsutil.FileSystem
	// Dir is joined to relative record paths, which must then stay inside
	// it. Empty means use the path as-is.
	Dir string
}

// NewMetadataStore returns a store reading from the OS filesystem.
func NewMetadataStore(dir string) *MetadataStore {
	return &MetadataStore{FS: fsutil.OSFileSystem{}, Dir: dir}
}

// Load reads and decodes the metadata document for the record at path.
func (s *MetadataStore) Load(path string) (Metadata, error) {
	name := path
	if s.Dir != "" && !filepath.IsAbs(path) {
		name = filepath.Join(s.Dir, path)
		if err := security.ValidatePathWithinDirectory(name, s.Dir); err != nil {
			return nil, err
		}
	}
	data, err := s.FS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	md, err := DecodeMetadata(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return md, nil
}
