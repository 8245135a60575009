package morphology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mrisnr/pkg/volume"
)

func countSet(v *volume.Volume[uint8]) int {
	n := 0
	for _, d := range v.Data {
		if d != 0 {
			n++
		}
	}
	return n
}

func mustStructure(t testing.TB, connectivity int) Structure {
	s, err := GenerateBinaryStructure(connectivity)
	require.NoError(t, err)
	return s
}

func TestGenerateBinaryStructure(t *testing.T) {
	assert.Equal(t, 7, mustStructure(t, 1).Size())
	assert.Equal(t, 19, mustStructure(t, 2).Size())
	assert.Equal(t, 27, mustStructure(t, 3).Size())

	s := mustStructure(t, 2)
	assert.True(t, s[1][1][1], "centre must be a member")
	assert.False(t, s[0][0][0], "corners are excluded at connectivity 2")
	assert.True(t, s[0][0][1], "edge neighbours are included at connectivity 2")

	for _, c := range []int{0, 4, -1} {
		_, err := GenerateBinaryStructure(c)
		assert.ErrorIs(t, err, ErrInvalidStructure)
	}
}

func TestErodeBox(t *testing.T) {
	v := volume.New[uint8](volume.Shape{Width: 7, Height: 7, Depth: 7})
	v.Fill(1, 1, 1, 6, 6, 6, 1)

	out, err := Erode(v, mustStructure(t, 2), 1)
	require.NoError(t, err)

	// A 5^3 box shrinks to its 3^3 core
	assert.Equal(t, 27, countSet(out))
	assert.Equal(t, uint8(1), out.At(2, 2, 2))
	assert.Equal(t, uint8(0), out.At(1, 3, 3))
}

func TestErodeTreatsOutsideAsUnset(t *testing.T) {
	v := volume.New[uint8](volume.Shape{Width: 4, Height: 4, Depth: 4})
	v.Fill(0, 0, 0, 4, 4, 4, 1)

	out, err := Erode(v, mustStructure(t, 1), 1)
	require.NoError(t, err)
	assert.Equal(t, 8, countSet(out))
}

func TestDilateSingleVoxel(t *testing.T) {
	v := volume.New[uint8](volume.Shape{Width: 5, Height: 5, Depth: 5})
	v.Set(2, 2, 2, 1)

	out, err := Dilate(v, mustStructure(t, 2), 1)
	require.NoError(t, err)
	assert.Equal(t, 19, countSet(out))

	out, err = Dilate(v, mustStructure(t, 1), 2)
	require.NoError(t, err)
	// Two passes of the 6-neighbourhood reach the L1 ball of radius 2
	assert.Equal(t, 25, countSet(out))
}

func TestOpenRemovesBoxCorners(t *testing.T) {
	v := volume.New[uint8](volume.Shape{Width: 12, Height: 12, Depth: 12})
	v.Fill(2, 2, 2, 10, 10, 10, 1)

	out, err := Open(v, mustStructure(t, 2), 1)
	require.NoError(t, err)

	assert.Equal(t, 8*8*8-8, countSet(out))
	assert.Equal(t, uint8(0), out.At(2, 2, 2))
	assert.Equal(t, uint8(0), out.At(9, 9, 9))
	assert.Equal(t, uint8(1), out.At(2, 2, 5), "edge voxels survive")
	assert.Equal(t, uint8(1), out.At(2, 5, 5), "face voxels survive")
}

func TestOpenRemovesIsolatedVoxels(t *testing.T) {
	v := volume.New[uint8](volume.Shape{Width: 10, Height: 10, Depth: 10})
	v.Fill(4, 4, 4, 8, 8, 8, 1)
	v.Set(0, 9, 0, 1)
	v.Set(1, 1, 1, 1)

	out, err := Open(v, mustStructure(t, 2), 1)
	require.NoError(t, err)

	assert.Equal(t, uint8(0), out.At(0, 9, 0))
	assert.Equal(t, uint8(0), out.At(1, 1, 1))
	assert.Equal(t, uint8(1), out.At(5, 5, 5))
}

func TestOpenIsIdempotent(t *testing.T) {
	v := volume.New[uint8](volume.Shape{Width: 9, Height: 9, Depth: 9})
	v.Fill(1, 1, 1, 7, 5, 8, 1)
	v.Fill(3, 3, 3, 8, 8, 5, 1)
	v.Set(8, 0, 8, 1)

	s := mustStructure(t, 2)
	once, err := Open(v, s, 1)
	require.NoError(t, err)
	twice, err := Open(once, s, 1)
	require.NoError(t, err)

	assert.Equal(t, once.Data, twice.Data)
}

func TestCloseFillsHole(t *testing.T) {
	v := volume.New[uint8](volume.Shape{Width: 9, Height: 9, Depth: 9})
	v.Fill(2, 2, 2, 7, 7, 7, 1)
	v.Set(4, 4, 4, 0)

	out, err := Close(v, mustStructure(t, 2), 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), out.At(4, 4, 4))
}

func TestFilterDoesNotModifyInput(t *testing.T) {
	v := volume.New[uint8](volume.Shape{Width: 6, Height: 6, Depth: 6})
	v.Fill(1, 1, 1, 5, 5, 5, 1)
	before := v.Clone()

	_, err := Open(v, mustStructure(t, 2), 1)
	require.NoError(t, err)
	assert.Equal(t, before.Data, v.Data)
}

func TestFilterRejectsZeroIterations(t *testing.T) {
	v := volume.New[uint8](volume.Shape{Width: 2, Height: 2, Depth: 2})
	_, err := Erode(v, mustStructure(t, 1), 0)
	assert.Error(t, err)
}

func BenchmarkOpen(b *testing.B) {
	v := volume.New[uint8](volume.Shape{Width: 64, Height: 64, Depth: 64})
	v.Fill(8, 8, 8, 56, 56, 56, 1)
	s := mustStructure(b, 2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Open(v, s, 1); err != nil {
			b.Fatal(err)
		}
	}
}
