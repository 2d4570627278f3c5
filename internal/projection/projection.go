// Package projection converts geodetic coordinates to a planar coordinate
// reference system using PROJ.
package projection

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pebbe/proj/v5"
)

// ErrClosed is returned by Transform after Close.
var ErrClosed = errors.New("projection: transformer closed")

// WGS84 is the EPSG code of the geodetic system image metadata is recorded in.
const WGS84 = 4326

// Transformer converts (latitude, longitude) in the source CRS to
// (easting, northing) in the target CRS. Axis order follows the EPSG
// authority definitions, so EPSG:4326 input is latitude first.
//
// A PROJ context must not be used concurrently; Transform serialises calls.
type Transformer struct {
	mu     sync.Mutex
	ctx    *proj.Context
	pj     *proj.PJ
	source int
	target int
}

// New builds a transformer between two EPSG codes.
func New(sourceEPSG, targetEPSG int) (*Transformer, error) {
	if sourceEPSG <= 0 || targetEPSG <= 0 {
		return nil, fmt.Errorf("invalid EPSG pair %d -> %d", sourceEPSG, targetEPSG)
	}
	ctx := proj.NewContext()
	pj, err := ctx.CreateCRS2CRS(epsg(sourceEPSG), epsg(targetEPSG))
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("create transform %s -> %s: %w", epsg(sourceEPSG), epsg(targetEPSG), err)
	}
	return &Transformer{ctx: ctx, pj: pj, source: sourceEPSG, target: targetEPSG}, nil
}

// FromWGS84 builds a transformer from WGS84 degrees to targetEPSG.
func FromWGS84(targetEPSG int) (*Transformer, error) {
	return New(WGS84, targetEPSG)
}

// Transform projects a single position.
func (t *Transformer) Transform(lat, lon float64) (easting, northing float64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pj == nil {
		return 0, 0, fmt.Errorf("transform to %s: %w", epsg(t.target), ErrClosed)
	}
	x, y, _, _, err := t.pj.Trans(proj.Fwd, lat, lon, 0, 0)
	if err != nil {
		return 0, 0, fmt.Errorf("transform (%f, %f) to %s: %w", lat, lon, epsg(t.target), err)
	}
	return x, y, nil
}

// String describes the transform, e.g. "EPSG:4326 -> EPSG:32617".
func (t *Transformer) String() string {
	return epsg(t.source) + " -> " + epsg(t.target)
}

// Close releases the PROJ objects.
func (t *Transformer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pj != nil {
		t.pj.Close()
		t.pj = nil
	}
	if t.ctx != nil {
		t.ctx.Close()
		t.ctx = nil
	}
	return nil
}

func epsg(code int) string {
	return fmt.Sprintf("EPSG:%d", code)
}
