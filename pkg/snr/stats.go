package snr

import (
	"math"
	"sort"
)

// median calculates the median value of a slice of float64 values. An even
// count averages the two middle values; an empty slice yields NaN.
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}

	// Sort a copy to leave the caller's order intact
	valuesCopy := make([]float64, n)
	copy(valuesCopy, values)
	sort.Float64s(valuesCopy)

	if n%2 == 0 {
		return (valuesCopy[n/2-1] + valuesCopy[n/2]) / 2
	}
	return valuesCopy[n/2]
}
