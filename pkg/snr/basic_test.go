package snr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mrisnr/pkg/mask"
	"mrisnr/pkg/volume"
)

func TestBasic(t *testing.T) {
	shape := volume.Shape{Width: 4, Height: 1, Depth: 1}
	img, err := volume.FromData(shape, []float64{10, 20, 30, 50})
	require.NoError(t, err)
	// Partial memberships count: Basic selects anything above zero
	smask, err := volume.FromData(shape, []float64{1, 0.3, 0, 0})
	require.NoError(t, err)
	nmask, err := volume.FromData(shape, []int{0, 0, 1, 2})
	require.NoError(t, err)

	got, err := Basic(img, mask.NewProbabilities(smask), WithBackground(mask.NewLabels(nmask)))
	require.NoError(t, err)
	// mean 15, population std of {30, 50} is 10
	assert.InDelta(t, 1.5, got, 1e-12)

	got, err = Basic(img, mask.NewProbabilities(smask), NoBackground())
	require.NoError(t, err)
	// population std of {10, 20} is 5
	assert.InDelta(t, 3.0, got, 1e-12)
}

func TestBasicEmptyMask(t *testing.T) {
	shape := volume.Shape{Width: 3, Height: 3, Depth: 3}
	img := volume.New[float64](shape)
	empty := mask.NewLabels(volume.New[int](shape))

	got, err := Basic(img, empty, NoBackground())
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got))
}

func TestBasicShapeMismatch(t *testing.T) {
	img := volume.New[float64](volume.Shape{Width: 3, Height: 3, Depth: 3})
	smask := mask.NewLabels(volume.New[int](volume.Shape{Width: 3, Height: 3, Depth: 3}))
	bad := mask.NewLabels(volume.New[int](volume.Shape{Width: 1, Height: 3, Depth: 3}))

	_, err := Basic(img, bad, NoBackground())
	assert.ErrorIs(t, err, volume.ErrShapeMismatch)

	_, err = Basic(img, smask, WithBackground(bad))
	assert.ErrorIs(t, err, volume.ErrShapeMismatch)
}
