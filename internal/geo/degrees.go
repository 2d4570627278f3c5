// Package geo resolves image geolocation from exiftool-style metadata.
//
// Angles arrive as sexagesimal strings such as `40 deg 26' 46.00" N` or
// `40°26'46"N` and are converted to signed decimal degrees.
package geo

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrMalformedAngle is returned when a sexagesimal string does not carry
// degree, minute and second components.
var ErrMalformedAngle = errors.New("malformed sexagesimal angle")

// separators matches every run of characters that cannot be part of a number.
var separators = regexp.MustCompile(`[^0-9.]+`)

// ParseDegrees converts a degrees/minutes/seconds string to decimal degrees.
//
// The numeric components are read in D, M, S order; anything after the third
// is ignored. The result is negated when the final character of text is 'S'
// or 'W'. The hemisphere letter must be the literal last character: trailing
// whitespace or punctuation leaves the sign positive.
func ParseDegrees(text string) (float64, error) {
	var comps []float64
	for _, frag := range separators.Split(text, -1) {
		if frag == "" {
			continue
		}
		v, err := strconv.ParseFloat(frag, 64)
		if err != nil {
			return 0, fmt.Errorf("%w %q: component %q: %v", ErrMalformedAngle, text, frag, err)
		}
		comps = append(comps, v)
	}
	if len(comps) < 3 {
		return 0, fmt.Errorf("%w %q: index %d out of range, need degrees, minutes and seconds",
			ErrMalformedAngle, text, len(comps))
	}

	deg := comps[0] + comps[1]/60 + comps[2]/3600
	switch text[len(text)-1] {
	case 'S', 'W':
		deg = -deg
	}
	return deg, nil
}
