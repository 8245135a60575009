// Package mask turns segmentation volumes into binary regions of interest.
//
// A Mask is either categorical (integer labels such as a tissue
// segmentation, or an already binary mask) or probabilistic (partial volume
// estimates in [0,1]). Prepare reduces both kinds to a Binary mask and can
// clean the result with a 3D morphological opening.
package mask

import (
	"mrisnr/pkg/volume"
)

// Mask is a region definition with the same shape as the image it applies
// to. The set of implementations is closed: Labels, Probabilities and Binary.
type Mask interface {
	// Shape returns the dimensions of the mask
	Shape() volume.Shape

	// Value returns the voxel at flat index i as a float64
	Value(i int) float64

	// categorical reports whether voxel values are integer labels
	categorical() bool
}

// Labels is an integer-labelled mask, for example a tissue segmentation.
type Labels struct {
	*volume.Volume[int]
}

// NewLabels wraps a label volume.
func NewLabels(v *volume.Volume[int]) Labels {
	return Labels{Volume: v}
}

func (m Labels) Shape() volume.Shape { return m.Volume.Shape }
func (m Labels) Value(i int) float64 { return float64(m.Data[i]) }
func (m Labels) categorical() bool   { return true }

// Probabilities is a real-valued mask holding membership probabilities.
type Probabilities struct {
	*volume.Volume[float64]
}

// NewProbabilities wraps a probability volume.
func NewProbabilities(v *volume.Volume[float64]) Probabilities {
	return Probabilities{Volume: v}
}

func (m Probabilities) Shape() volume.Shape { return m.Volume.Shape }
func (m Probabilities) Value(i int) float64 { return m.Data[i] }
func (m Probabilities) categorical() bool   { return false }

// Binary is a 0/1 mask. It is integer typed, so preparing it again with
// label 1 selects exactly its set voxels.
type Binary struct {
	*volume.Volume[uint8]
}

// NewBinary wraps a byte volume. Non-zero values other than 1 are kept as
// is; use Prepare to normalise them.
func NewBinary(v *volume.Volume[uint8]) Binary {
	return Binary{Volume: v}
}

func (m Binary) Shape() volume.Shape { return m.Volume.Shape }
func (m Binary) Value(i int) float64 { return float64(m.Data[i]) }
func (m Binary) categorical() bool   { return true }

// Count returns the number of non-zero voxels.
func (m Binary) Count() int {
	n := 0
	for _, d := range m.Data {
		if d != 0 {
			n++
		}
	}
	return n
}

// Select returns the image values under the non-zero voxels of m, in index
// order. The image and the mask must share a shape.
func (m Binary) Select(img *volume.Volume[float64]) ([]float64, error) {
	if err := volume.CheckShapes(img.Shape, m.Shape()); err != nil {
		return nil, err
	}
	values := make([]float64, 0, m.Count())
	for i, d := range m.Data {
		if d != 0 {
			values = append(values, img.Data[i])
		}
	}
	return values, nil
}

// Positive returns the image values where any mask has a value > 0. This is
// the unprepared selection used by callers that want raw masks.
func Positive(img *volume.Volume[float64], m Mask) ([]float64, error) {
	if err := volume.CheckShapes(img.Shape, m.Shape()); err != nil {
		return nil, err
	}
	var values []float64
	for i := 0; i < img.Len(); i++ {
		if m.Value(i) > 0 {
			values = append(values, img.Data[i])
		}
	}
	return values, nil
}
