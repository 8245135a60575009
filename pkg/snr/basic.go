package snr

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"mrisnr/pkg/mask"
	"mrisnr/pkg/volume"
)

// Basic is the unprepared estimate: the mean of img where smask > 0 divided
// by the population standard deviation of img where the background mask is
// > 0, or where smask > 0 again when no background is given. No labels,
// thresholds or erosion are applied.
func Basic(img *volume.Volume[float64], smask mask.Mask, bg Background) (float64, error) {
	fgValues, err := mask.Positive(img, smask)
	if err != nil {
		return 0, fmt.Errorf("foreground mask: %w", err)
	}

	bgValues := fgValues
	if bg.present {
		bgValues, err = mask.Positive(img, bg.mask)
		if err != nil {
			return 0, fmt.Errorf("background mask: %w", err)
		}
	}

	return mean(fgValues) / popStdDev(bgValues), nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return floats.Sum(values) / float64(len(values))
}

func popStdDev(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	_, std := stat.PopMeanStdDev(values, nil)
	return std
}
