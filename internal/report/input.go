package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/banshee-data/statsreport/internal/stats"
)

// ErrStructuralInput marks malformed or missing input: undecodable JSON,
// missing fields, empty accumulators, bad metadata. It is never retried.
var ErrStructuralInput = errors.New("structural input error")

// ImageRecord is the upstream statistics for one image.
type ImageRecord struct {
	Path   string
	Width  int
	Height int
	Stats  stats.Accumulator
}

// Input is the statistics document produced by the upstream stage.
type Input struct {
	Images     []ImageRecord
	Cumulative stats.Accumulator
}

// The wire types use pointers so absent fields can be told apart from zeros.
type wireAccumulator struct {
	Count *uint64  `json:"count" validate:"required"`
	Sum   *float64 `json:"sum" validate:"required"`
	Sum2  *float64 `json:"sum_2" validate:"required"`
	Min   *float64 `json:"min" validate:"required"`
	Max   *float64 `json:"max" validate:"required"`
}

type wireImage struct {
	Path   *string          `json:"path" validate:"required"`
	Width  *int             `json:"width" validate:"required"`
	Height *int             `json:"height" validate:"required"`
	Stats  *wireAccumulator `json:"stats" validate:"required"`
}

type wireInput struct {
	ImageStats []*wireImage     `json:"image_stats" validate:"required,dive,required"`
	Cumulative *wireAccumulator `json:"cumulative" validate:"required"`
}

var inputValidator = newInputValidator()

func newInputValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeInput reads and checks the statistics document. Every failure wraps
// ErrStructuralInput and names the offending field.
func DecodeInput(r io.Reader) (*Input, error) {
	var w wireInput
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: decode statistics document: %v", ErrStructuralInput, err)
	}
	if err := inputValidator.Struct(&w); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStructuralInput, describeValidation(err))
	}

	in := &Input{
		Images:     make([]ImageRecord, len(w.ImageStats)),
		Cumulative: w.Cumulative.accumulator(),
	}
	for i, img := range w.ImageStats {
		in.Images[i] = ImageRecord{
			Path:   *img.Path,
			Width:  *img.Width,
			Height: *img.Height,
			Stats:  img.Stats.accumulator(),
		}
	}
	return in, nil
}

func (w *wireAccumulator) accumulator() stats.Accumulator {
	return stats.Accumulator{
		Count: *w.Count,
		Sum:   *w.Sum,
		Sum2:  *w.Sum2,
		Min:   *w.Min,
		Max:   *w.Max,
	}
}

// describeValidation turns validator errors into "image_stats[0].stats.sum_2: missing".
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		msgs = append(msgs, ns+": missing")
	}
	return strings.Join(msgs, "; ")
}
