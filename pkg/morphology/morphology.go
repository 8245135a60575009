// Package morphology implements binary mathematical morphology on 3D volumes.
//
// A voxel is "set" when its value is non-zero. Voxels outside the volume are
// treated as unset, so erosion shrinks regions that touch the border while
// dilation never grows past it.
package morphology

import (
	"errors"
	"fmt"

	"mrisnr/pkg/volume"
)

// ErrInvalidStructure is returned for connectivities outside 1..3.
var ErrInvalidStructure = errors.New("invalid structuring element")

// Structure is a 3x3x3 structuring element indexed as [dz+1][dy+1][dx+1].
type Structure [3][3][3]bool

type offset struct {
	dx, dy, dz int
}

// GenerateBinaryStructure returns the 3x3x3 element whose members are the
// offsets with |dx|+|dy|+|dz| <= connectivity. Connectivity 1 gives the
// 6-neighbourhood, 2 the 18-neighbourhood and 3 the full cube.
func GenerateBinaryStructure(connectivity int) (Structure, error) {
	var s Structure
	if connectivity < 1 || connectivity > 3 {
		return s, fmt.Errorf("%w: connectivity %d (must be 1, 2 or 3)", ErrInvalidStructure, connectivity)
	}

	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if abs(dx)+abs(dy)+abs(dz) <= connectivity {
					s[dz+1][dy+1][dx+1] = true
				}
			}
		}
	}
	return s, nil
}

// Size returns the number of members of the element.
func (s Structure) Size() int {
	return len(s.offsets())
}

func (s Structure) offsets() []offset {
	var offs []offset
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if s[dz+1][dy+1][dx+1] {
					offs = append(offs, offset{dx, dy, dz})
				}
			}
		}
	}
	return offs
}

// process computes the output value of one voxel.
type process func(v *volume.Volume[uint8], x, y, z int, offs []offset) uint8

// erode sets a voxel only when every member of the element lands on a set
// voxel inside the volume.
func erode(v *volume.Volume[uint8], x, y, z int, offs []offset) uint8 {
	for _, o := range offs {
		nx, ny, nz := x+o.dx, y+o.dy, z+o.dz
		if !v.Shape.Contains(nx, ny, nz) || v.Data[v.Shape.Index(nx, ny, nz)] == 0 {
			return 0
		}
	}
	return 1
}

// dilate sets a voxel when any member of the element lands on a set voxel.
func dilate(v *volume.Volume[uint8], x, y, z int, offs []offset) uint8 {
	for _, o := range offs {
		nx, ny, nz := x+o.dx, y+o.dy, z+o.dz
		if v.Shape.Contains(nx, ny, nz) && v.Data[v.Shape.Index(nx, ny, nz)] != 0 {
			return 1
		}
	}
	return 0
}

// filter applies process to every voxel, repeated iterations times. The
// input is left untouched; each pass writes into a fresh volume.
func filter(in *volume.Volume[uint8], s Structure, iterations int, fn process) (*volume.Volume[uint8], error) {
	if iterations < 1 {
		return nil, fmt.Errorf("iterations must be at least 1, got %d", iterations)
	}

	offs := s.offsets()
	shape := in.Shape
	cur := in
	for n := 0; n < iterations; n++ {
		out := volume.New[uint8](shape)
		for z := 0; z < shape.Depth; z++ {
			for y := 0; y < shape.Height; y++ {
				for x := 0; x < shape.Width; x++ {
					out.Data[shape.Index(x, y, z)] = fn(cur, x, y, z, offs)
				}
			}
		}
		cur = out
	}
	return cur, nil
}

// Erode applies binary erosion.
func Erode(in *volume.Volume[uint8], s Structure, iterations int) (*volume.Volume[uint8], error) {
	return filter(in, s, iterations, erode)
}

// Dilate applies binary dilation.
func Dilate(in *volume.Volume[uint8], s Structure, iterations int) (*volume.Volume[uint8], error) {
	return filter(in, s, iterations, dilate)
}

// Open applies an opening, which is an erosion followed by a dilation with
// the same element. Opening removes isolated voxels and thin protrusions.
func Open(in *volume.Volume[uint8], s Structure, iterations int) (*volume.Volume[uint8], error) {
	eroded, err := Erode(in, s, iterations)
	if err != nil {
		return nil, err
	}
	return Dilate(eroded, s, iterations)
}

// Close applies a closing, which is a dilation followed by an erosion.
// Closing fills small holes and narrow gaps.
func Close(in *volume.Volume[uint8], s Structure, iterations int) (*volume.Volume[uint8], error) {
	dilated, err := Dilate(in, s, iterations)
	if err != nil {
		return nil, err
	}
	return Erode(dilated, s, iterations)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
