package report

import (
	"github.com/banshee-data/statsreport/internal/geo"
	"github.com/banshee-data/statsreport/internal/stats"
)

// CumulativePath is the path value of the whole-dataset row.
const CumulativePath = "cumulative"

// Column names a report column.
type Column string

const (
	ColPath      Column = "path"
	ColWidth     Column = "width"
	ColHeight    Column = "height"
	ColMin       Column = "min"
	ColMax       Column = "max"
	ColMean      Column = "mean"
	ColStdDev    Column = "std_dev"
	ColLatitude  Column = "latitude"
	ColLongitude Column = "longitude"
	ColEasting   Column = "easting"
	ColNorthing  Column = "northing"
)

var (
	baseColumns      = []Column{ColPath, ColWidth, ColHeight, ColMin, ColMax, ColMean, ColStdDev}
	geoColumns       = []Column{ColLatitude, ColLongitude}
	projectedColumns = []Column{ColEasting, ColNorthing}
)

// Columns returns the ordered column set for cfg.
func Columns(cfg Config) []Column {
	cols := append([]Column(nil), baseColumns...)
	if cfg.IncludeGeo {
		cols = append(cols, geoColumns...)
		if cfg.TargetCRS != nil {
			cols = append(cols, projectedColumns...)
		}
	}
	return cols
}

// ImageSize is the pixel size of a source image.
type ImageSize struct {
	Width  int
	Height int
}

// Row is one line of the report. Nil pointers are absent values: Image is
// nil on the cumulative row, Geo and Projected are nil when not requested
// and always nil on the cumulative row.
type Row struct {
	Path      string
	Image     *ImageSize
	Stats     stats.NormalizedStats
	Geo       *geo.Point
	Projected *geo.ProjectedPoint
}

// IsCumulative reports whether r is the whole-dataset row.
func (r Row) IsCumulative() bool {
	return r.Image == nil && r.Path == CumulativePath
}

// Value returns the typed cell value for col, or false when the row has no
// value for it.
func (r Row) Value(col Column) (any, bool) {
	switch col {
	case ColPath:
		return r.Path, true
	case ColWidth:
		if r.Image == nil {
			return nil, false
		}
		return r.Image.Width, true
	case ColHeight:
		if r.Image == nil {
			return nil, false
		}
		return r.Image.Height, true
	case ColMin:
		return r.Stats.Min, true
	case ColMax:
		return r.Stats.Max, true
	case ColMean:
		return r.Stats.Mean, true
	case ColStdDev:
		return r.Stats.StdDev, true
	case ColLatitude:
		if r.Geo == nil {
			return nil, false
		}
		return r.Geo.Latitude, true
	case ColLongitude:
		if r.Geo == nil {
			return nil, false
		}
		return r.Geo.Longitude, true
	case ColEasting:
		if r.Projected == nil {
			return nil, false
		}
		return r.Projected.Easting, true
	case ColNorthing:
		if r.Projected == nil {
			return nil, false
		}
		return r.Projected.Northing, true
	}
	return nil, false
}

// Report is an assembled table: one row per image in input order followed by
// the cumulative row.
type Report struct {
	Config  Config
	Columns []Column
	Rows    []Row
}

// Images returns the per-image rows, excluding the trailing cumulative row.
func (r *Report) Images() []Row {
	if len(r.Rows) == 0 {
		return nil
	}
	return r.Rows[:len(r.Rows)-1]
}

// Cumulative returns the whole-dataset row.
func (r *Report) Cumulative() Row {
	if len(r.Rows) == 0 {
		return Row{}
	}
	return r.Rows[len(r.Rows)-1]
}
