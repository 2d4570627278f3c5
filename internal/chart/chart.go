// Package chart renders a report as a PNG: per-image mean with ±std_dev
// error bars against the cumulative mean.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	_ "gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/statsreport/internal/report"
)

// Default canvas size.
const (
	DefaultWidth  = 14 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

// ErrNoImages is returned for a report with only the cumulative row.
var ErrNoImages = errors.New("report has no image rows to plot")

type meanPoints struct {
	plotter.XYs
	plotter.YErrors
}

// Build lays out the plot for rep without rendering it.
func Build(rep *report.Report) (*plot.Plot, error) {
	images := rep.Images()
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	pts := meanPoints{
		XYs:     make(plotter.XYs, len(images)),
		YErrors: make(plotter.YErrors, len(images)),
	}
	names := make([]string, len(images))
	for i, row := range images {
		pts.XYs[i] = plotter.XY{X: float64(i), Y: row.Stats.Mean}
		pts.YErrors[i].Low = row.Stats.StdDev
		pts.YErrors[i].High = row.Stats.StdDev
		names[i] = filepath.Base(row.Path)
	}

	p := plot.New()
	p.Title.Text = "Per-image mean ± std_dev"
	p.Y.Label.Text = "intensity"
	p.NominalX(names...)

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("mean points: %w", err)
	}
	scatter.GlyphStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}

	bars, err := plotter.NewYErrorBars(pts)
	if err != nil {
		return nil, fmt.Errorf("std_dev bars: %w", err)
	}
	bars.Color = scatter.GlyphStyle.Color
	bars.LineStyle.Width = vg.Points(1)

	cumMean := rep.Cumulative().Stats.Mean
	overall := plotter.NewFunction(func(float64) float64 { return cumMean })
	overall.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	overall.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	overall.Width = vg.Points(1)

	p.Add(plotter.NewGrid(), bars, scatter, overall)
	p.Legend.Add("mean", scatter)
	p.Legend.Add("cumulative mean", overall)
	p.Legend.Top = true
	return p, nil
}

// WritePNG renders rep as a PNG of the given size.
func WritePNG(w io.Writer, rep *report.Report, width, height vg.Length) error {
	p, err := Build(rep)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}
