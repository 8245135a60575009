package mask

import (
	"fmt"

	"mrisnr/pkg/morphology"
	"mrisnr/pkg/volume"
)

const (
	// ProbabilityThreshold is the membership a probabilistic voxel must
	// exceed to be selected.
	ProbabilityThreshold = 0.95

	// OpeningConnectivity is the connectivity of the 3x3x3 structuring
	// element used to clean prepared masks.
	OpeningConnectivity = 2
)

// Prepare reduces m to a binary mask isolating the region of interest.
//
// Categorical masks select the voxels equal to the resolved label.
// Probabilistic masks ignore the label and are thresholded in two steps:
// values above ProbabilityThreshold are set to 1, then every value below 1
// is set to 0. When erode is true the result is opened with the
// connectivity-2 structuring element to strip boundary voxels and isolated
// noise. The input is never modified.
func Prepare(m Mask, label Label, erode bool) (Binary, error) {
	var (
		out *volume.Volume[uint8]
		err error
	)
	if m.categorical() {
		out, err = selectLabel(m, label)
	} else {
		out = threshold(m)
	}
	if err != nil {
		return Binary{}, err
	}

	if erode {
		s, err := morphology.GenerateBinaryStructure(OpeningConnectivity)
		if err != nil {
			return Binary{}, err
		}
		out, err = morphology.Open(out, s, 1)
		if err != nil {
			return Binary{}, fmt.Errorf("failed to open mask: %w", err)
		}
	}
	return NewBinary(out), nil
}

// selectLabel marks the voxels equal to the resolved label code.
func selectLabel(m Mask, label Label) (*volume.Volume[uint8], error) {
	code, err := label.Resolve()
	if err != nil {
		return nil, err
	}

	target := float64(code)
	out := volume.New[uint8](m.Shape())
	for i := range out.Data {
		if m.Value(i) == target {
			out.Data[i] = 1
		}
	}
	return out, nil
}

// threshold binarises a probability mask. The two assignments run in order
// on a working copy so that values exactly at 1.0 keep their selection.
func threshold(m Mask) *volume.Volume[uint8] {
	n := m.Shape().Len()
	work := make([]float64, n)
	for i := range work {
		work[i] = m.Value(i)
	}

	for i, v := range work {
		if v > ProbabilityThreshold {
			work[i] = 1
		}
	}
	for i, v := range work {
		if v < 1 {
			work[i] = 0
		}
	}

	out := volume.New[uint8](m.Shape())
	for i, v := range work {
		// NaN survives both assignments and is left unselected
		if v == 1 {
			out.Data[i] = 1
		}
	}
	return out
}
