// Package snr estimates the signal-to-noise ratio of volumetric images.
//
// The foreground signal is the median intensity of the prepared foreground
// mask. The noise is either the dispersion of the foreground around that
// median (no background mask) or the Rayleigh-corrected standard deviation
// of a separate background region, as found in magnitude MRI data.
//
// Degenerate inputs such as empty masks or constant regions are not errors:
// the result is NaN or ±Inf and callers must check it with math.IsNaN and
// math.IsInf.
package snr

import (
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"mrisnr/pkg/mask"
	"mrisnr/pkg/volume"
)

// RayleighCorrection converts the standard deviation of Rayleigh distributed
// magnitude noise into the standard deviation of the underlying Gaussian.
var RayleighCorrection = math.Sqrt(2.0 / (4.0 - math.Pi))

// Params controls mask preparation.
type Params struct {
	// Erode applies a 3D morphological opening to both masks.
	Erode bool

	// ForegroundLabel selects the foreground in a categorical mask.
	ForegroundLabel mask.Label

	// Logger receives a summary of every estimate. Nil disables logging.
	Logger *log.Logger
}

// DefaultParams returns erosion enabled and foreground label 1.
func DefaultParams() Params {
	return Params{
		Erode:           true,
		ForegroundLabel: mask.Code(1),
	}
}

// Background is an optional noise-only region.
type Background struct {
	mask    mask.Mask
	present bool
}

// NoBackground estimates the noise from the foreground itself.
func NoBackground() Background {
	return Background{}
}

// WithBackground estimates the noise from a separate region. The mask is
// always prepared with label 1.
func WithBackground(m mask.Mask) Background {
	return Background{mask: m, present: true}
}

// Present reports whether a background mask was supplied.
func (b Background) Present() bool {
	return b.present
}

// Report holds the intermediate statistics of an estimate.
type Report struct {
	SNR                float64
	ForegroundMedian   float64
	BackgroundStdDev   float64
	ForegroundVoxels   int
	BackgroundVoxels   int
	SeparateBackground bool
}

// Estimate returns the SNR of img. See EstimateReport.
func Estimate(img *volume.Volume[float64], fg mask.Mask, bg Background, params Params) (float64, error) {
	r, err := EstimateReport(img, fg, bg, params)
	if err != nil {
		return 0, err
	}
	return r.SNR, nil
}

// EstimateReport prepares the masks, computes the foreground median and the
// noise standard deviation, and returns their ratio with the statistics.
//
// Without a background the noise is sqrt(sum((x-median)^2)/(n-1)) over the
// foreground. With a background it is RayleighCorrection times the sample
// standard deviation (n-1 denominator) of the background voxels.
func EstimateReport(img *volume.Volume[float64], fg mask.Mask, bg Background, params Params) (Report, error) {
	if err := volume.CheckShapes(img.Shape, fg.Shape()); err != nil {
		return Report{}, fmt.Errorf("foreground mask: %w", err)
	}
	if bg.present {
		if err := volume.CheckShapes(img.Shape, bg.mask.Shape()); err != nil {
			return Report{}, fmt.Errorf("background mask: %w", err)
		}
	}

	// Step 1: foreground mask
	fgMask, err := mask.Prepare(fg, params.ForegroundLabel, params.Erode)
	if err != nil {
		return Report{}, fmt.Errorf("failed to prepare foreground mask: %w", err)
	}
	fgValues, err := fgMask.Select(img)
	if err != nil {
		return Report{}, err
	}

	// Step 2: foreground signal
	r := Report{
		ForegroundMedian: median(fgValues),
		ForegroundVoxels: len(fgValues),
	}

	// Step 3: noise
	if bg.present {
		bgMask, err := mask.Prepare(bg.mask, mask.Code(1), params.Erode)
		if err != nil {
			return Report{}, fmt.Errorf("failed to prepare background mask: %w", err)
		}
		bgValues, err := bgMask.Select(img)
		if err != nil {
			return Report{}, err
		}
		r.SeparateBackground = true
		r.BackgroundVoxels = len(bgValues)
		r.BackgroundStdDev = RayleighCorrection * sampleStdDev(bgValues)
	} else {
		r.BackgroundVoxels = len(fgValues)
		r.BackgroundStdDev = deviationAbout(fgValues, r.ForegroundMedian)
	}

	r.SNR = r.ForegroundMedian / r.BackgroundStdDev

	if params.Logger != nil {
		params.Logger.Printf("[SNR] fg=%d voxels median=%.4f bg=%d voxels std=%.4f separate=%v snr=%.4f",
			r.ForegroundVoxels, r.ForegroundMedian, r.BackgroundVoxels, r.BackgroundStdDev,
			r.SeparateBackground, r.SNR)
	}
	return r, nil
}

// sampleStdDev is the Bessel-corrected standard deviation, NaN for fewer
// than two values.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	return stat.StdDev(values, nil)
}

// deviationAbout is the Bessel-corrected root mean square deviation of
// values around a fixed center.
func deviationAbout(values []float64, center float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	diff := make([]float64, len(values))
	copy(diff, values)
	floats.AddConst(-center, diff)
	return math.Sqrt(floats.Dot(diff, diff) / float64(len(values)-1))
}
