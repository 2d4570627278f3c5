package report

import (
	"errors"
	"fmt"
)

// ErrConfiguration marks a report configuration rejected before any record
// is processed.
var ErrConfiguration = errors.New("invalid report configuration")

// Config selects the optional report columns.
type Config struct {
	// IncludeGeo resolves each image's position and adds latitude/longitude.
	IncludeGeo bool
	// TargetCRS, when set, projects positions to this EPSG code and adds
	// easting/northing. Requires IncludeGeo.
	TargetCRS *int
}

// Validate rejects combinations that would otherwise be silently ignored.
func (c Config) Validate() error {
	if c.TargetCRS != nil {
		if !c.IncludeGeo {
			return fmt.Errorf("%w: target CRS EPSG:%d requires geolocation to be enabled", ErrConfiguration, *c.TargetCRS)
		}
		if *c.TargetCRS <= 0 {
			return fmt.Errorf("%w: target CRS must be a positive EPSG code, got %d", ErrConfiguration, *c.TargetCRS)
		}
	}
	return nil
}

// Projected reports whether rows carry easting/northing.
func (c Config) Projected() bool {
	return c.IncludeGeo && c.TargetCRS != nil
}
