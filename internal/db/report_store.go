package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/statsreport/internal/report"
)

// ReportRun is one exported report.
type ReportRun struct {
	RunID      string
	CreatedAt  time.Time
	IncludeGeo bool
	TargetCRS  *int
	Columns    []string
	ImageCount int
}

// StoredRow is a report row as read back from the database. Nullable
// columns are pointers.
type StoredRow struct {
	RowIndex     int
	Path         string
	IsCumulative bool
	Width        *int
	Height       *int
	PixelCount   uint64
	Min          float64
	Max          float64
	Mean         float64
	StdDev       float64
	Latitude     *float64
	Longitude    *float64
	Easting      *float64
	Northing     *float64
}

// SaveReport stores rep under a new run id in a single transaction and
// returns the id.
func (db *DB) SaveReport(ctx context.Context, rep *report.Report) (string, error) {
	runID := uuid.NewString()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var targetCRS sql.NullInt64
	if rep.Config.TargetCRS != nil {
		targetCRS = sql.NullInt64{Int64: int64(*rep.Config.TargetCRS), Valid: true}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO report_runs (run_id, created_at, include_geo, target_crs, columns, image_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, db.Clock.Now().UTC(), rep.Config.IncludeGeo, targetCRS,
		strings.Join(report.Header(rep.Columns), ","), len(rep.Images()),
	); err != nil {
		return "", fmt.Errorf("insert report run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO report_rows (
			run_id, row_index, path, is_cumulative, width, height, pixel_count,
			min, max, mean, std_dev, latitude, longitude, easting, northing
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare row insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rep.Rows {
		var width, height sql.NullInt64
		if row.Image != nil {
			width = sql.NullInt64{Int64: int64(row.Image.Width), Valid: true}
			height = sql.NullInt64{Int64: int64(row.Image.Height), Valid: true}
		}
		var lat, lon, east, north sql.NullFloat64
		if row.Geo != nil {
			lat = sql.NullFloat64{Float64: row.Geo.Latitude, Valid: true}
			lon = sql.NullFloat64{Float64: row.Geo.Longitude, Valid: true}
		}
		if row.Projected != nil {
			east = sql.NullFloat64{Float64: row.Projected.Easting, Valid: true}
			north = sql.NullFloat64{Float64: row.Projected.Northing, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			runID, i, row.Path, row.IsCumulative(), width, height, int64(row.Stats.Count),
			row.Stats.Min, row.Stats.Max, row.Stats.Mean, row.Stats.StdDev,
			lat, lon, east, north,
		); err != nil {
			return "", fmt.Errorf("insert row %d (%s): %w", i, row.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit report: %w", err)
	}
	return runID, nil
}

// GetReportRun loads the run header for runID.
func (db *DB) GetReportRun(ctx context.Context, runID string) (*ReportRun, error) {
	var (
		run       ReportRun
		targetCRS sql.NullInt64
		columns   string
	)
	err := db.QueryRowContext(ctx,
		`SELECT run_id, created_at, include_geo, target_crs, columns, image_count
		 FROM report_runs WHERE run_id = ?`, runID,
	).Scan(&run.RunID, &run.CreatedAt, &run.IncludeGeo, &targetCRS, &columns, &run.ImageCount)
	if err != nil {
		return nil, fmt.Errorf("get report run %s: %w", runID, err)
	}
	if targetCRS.Valid {
		v := int(targetCRS.Int64)
		run.TargetCRS = &v
	}
	run.Columns = strings.Split(columns, ",")
	return &run, nil
}

// ReportRows loads the rows of runID in report order.
func (db *DB) ReportRows(ctx context.Context, runID string) ([]StoredRow, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT row_index, path, is_cumulative, width, height, pixel_count,
		        min, max, mean, std_dev, latitude, longitude, easting, northing
		 FROM report_rows WHERE run_id = ? ORDER BY row_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query report rows: %w", err)
	}
	defer rows.Close()

	var out []StoredRow
	for rows.Next() {
		var (
			r                     StoredRow
			width, height         sql.NullInt64
			pixels                int64
			lat, lon, east, north sql.NullFloat64
		)
		if err := rows.Scan(&r.RowIndex, &r.Path, &r.IsCumulative, &width, &height, &pixels,
			&r.Min, &r.Max, &r.Mean, &r.StdDev, &lat, &lon, &east, &north); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		r.PixelCount = uint64(pixels)
		r.Width = nullInt(width)
		r.Height = nullInt(height)
		r.Latitude = nullFloat(lat)
		r.Longitude = nullFloat(lon)
		r.Easting = nullFloat(east)
		r.Northing = nullFloat(north)
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
