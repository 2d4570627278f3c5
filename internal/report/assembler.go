// Package report assembles per-image statistics into a flat table, optionally
// enriched with geolocation, and writes it as CSV or XLSX.
package report

import (
	"fmt"

	"github.com/banshee-data/statsreport/internal/geo"
	"github.com/banshee-data/statsreport/internal/monitoring"
	"github.com/banshee-data/statsreport/internal/stats"
)

// MetadataSource loads the metadata document for a record path.
type MetadataSource interface {
	Load(path string) (geo.Metadata, error)
}

// Projector converts geodetic degrees to planar coordinates.
type Projector interface {
	Transform(lat, lon float64) (easting, northing float64, err error)
	Close() error
}

// ProjectorFactory builds a Projector from WGS84 to targetEPSG.
type ProjectorFactory func(targetEPSG int) (Projector, error)

// Assembler builds reports for one configuration.
type Assembler struct {
	cfg          Config
	columns      []Column
	metadata     MetadataSource
	newProjector ProjectorFactory
}

// NewAssembler validates cfg and its collaborators. metadata is required when
// geolocation is enabled and newProjector when a target CRS is set.
func NewAssembler(cfg Config, metadata MetadataSource, newProjector ProjectorFactory) (*Assembler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.IncludeGeo && metadata == nil {
		return nil, fmt.Errorf("%w: geolocation enabled without a metadata source", ErrConfiguration)
	}
	if cfg.Projected() && newProjector == nil {
		return nil, fmt.Errorf("%w: target CRS set without a projector", ErrConfiguration)
	}
	return &Assembler{
		cfg:          cfg,
		columns:      Columns(cfg),
		metadata:     metadata,
		newProjector: newProjector,
	}, nil
}

// Columns returns the column set this assembler produces.
func (a *Assembler) Columns() []Column {
	return append([]Column(nil), a.columns...)
}

// Assemble normalises every record in input order, resolves geolocation when
// configured, and appends the cumulative row last. The first failing record
// aborts the run.
func (a *Assembler) Assemble(records []ImageRecord, cumulative stats.Accumulator) (*Report, error) {
	var proj Projector
	if a.cfg.Projected() {
		p, err := a.newProjector(*a.cfg.TargetCRS)
		if err != nil {
			return nil, fmt.Errorf("%w: projection to EPSG:%d: %v", ErrConfiguration, *a.cfg.TargetCRS, err)
		}
		defer p.Close()
		proj = p
	}

	rows := make([]Row, 0, len(records)+1)
	for i, rec := range records {
		row, err := a.imageRow(rec, proj)
		if err != nil {
			return nil, fmt.Errorf("image_stats[%d] %q: %w", i, rec.Path, err)
		}
		rows = append(rows, row)
	}

	total, err := stats.Normalize(cumulative)
	if err != nil {
		return nil, fmt.Errorf("%w: cumulative: %w", ErrStructuralInput, err)
	}
	rows = append(rows, Row{Path: CumulativePath, Stats: total})

	monitoring.Logf("assembled %d image rows plus cumulative, columns=%v", len(records), a.columns)
	return &Report{Config: a.cfg, Columns: a.Columns(), Rows: rows}, nil
}

func (a *Assembler) imageRow(rec ImageRecord, proj Projector) (Row, error) {
	norm, err := stats.Normalize(rec.Stats)
	if err != nil {
		return Row{}, fmt.Errorf("%w: stats: %w", ErrStructuralInput, err)
	}
	row := Row{
		Path:  rec.Path,
		Image: &ImageSize{Width: rec.Width, Height: rec.Height},
		Stats: norm,
	}
	if !a.cfg.IncludeGeo {
		return row, nil
	}

	md, err := a.metadata.Load(rec.Path)
	if err != nil {
		return Row{}, fmt.Errorf("%w: %w", ErrStructuralInput, err)
	}
	pt, err := geo.Resolve(md)
	if err != nil {
		return Row{}, fmt.Errorf("%w: %w", ErrStructuralInput, err)
	}
	row.Geo = &pt

	if proj != nil {
		e, n, err := proj.Transform(pt.Latitude, pt.Longitude)
		if err != nil {
			return Row{}, fmt.Errorf("project: %w", err)
		}
		row.Projected = &geo.ProjectedPoint{Easting: e, Northing: n}
	}
	monitoring.Debugf("%s: lat=%.6f lon=%.6f", rec.Path, pt.Latitude, pt.Longitude)
	return row, nil
}
