// Package volume provides the dense 3-D array type shared by images and masks.
package volume

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

// ErrShapeMismatch is returned when two volumes that must line up voxel for
// voxel have different dimensions, or when data does not fill a shape.
var ErrShapeMismatch = errors.New("volume shape mismatch")

// Voxel is the set of element types a Volume can hold.
type Voxel interface {
	constraints.Integer | constraints.Float
}

// Shape holds the dimensions of a volume in voxels
type Shape struct {
	// Width is the extent along x (the fastest varying axis)
	Width int

	// Height is the extent along y
	Height int

	// Depth is the extent along z (the slice axis)
	Depth int
}

// Len returns the number of voxels in the shape.
func (s Shape) Len() int {
	return s.Width * s.Height * s.Depth
}

// Index converts voxel coordinates to the flat row-major offset.
func (s Shape) Index(x, y, z int) int {
	return z*s.Width*s.Height + y*s.Width + x
}

// Contains reports whether the coordinates fall inside the shape.
func (s Shape) Contains(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < s.Width && y < s.Height && z < s.Depth
}

// Valid reports whether every dimension is positive.
func (s Shape) Valid() bool {
	return s.Width > 0 && s.Height > 0 && s.Depth > 0
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.Width, s.Height, s.Depth)
}

// Volume is a 3D array stored as a 1D slice in row-major order:
// x varies fastest, then y, then z.
type Volume[T Voxel] struct {
	Shape Shape
	Data  []T
}

// New allocates a zero-filled volume of the given shape.
func New[T Voxel](shape Shape) *Volume[T] {
	return &Volume[T]{
		Shape: shape,
		Data:  make([]T, shape.Len()),
	}
}

// FromData wraps existing data without copying it. The data length must
// match the shape.
func FromData[T Voxel](shape Shape, data []T) (*Volume[T], error) {
	if len(data) != shape.Len() {
		return nil, fmt.Errorf("%w: %d values for shape %s", ErrShapeMismatch, len(data), shape)
	}
	return &Volume[T]{Shape: shape, Data: data}, nil
}

// Len returns the number of voxels.
func (v *Volume[T]) Len() int {
	return len(v.Data)
}

// At returns the voxel at (x, y, z).
func (v *Volume[T]) At(x, y, z int) T {
	return v.Data[v.Shape.Index(x, y, z)]
}

// Set stores a value at (x, y, z).
func (v *Volume[T]) Set(x, y, z int, value T) {
	v.Data[v.Shape.Index(x, y, z)] = value
}

// Clone returns a deep copy of the volume.
func (v *Volume[T]) Clone() *Volume[T] {
	data := make([]T, len(v.Data))
	copy(data, v.Data)
	return &Volume[T]{Shape: v.Shape, Data: data}
}

// Fill sets every voxel of the box [x0,x1) x [y0,y1) x [z0,z1) to value.
// The box is clipped to the volume.
func (v *Volume[T]) Fill(x0, y0, z0, x1, y1, z1 int, value T) {
	x0, y0, z0 = max(x0, 0), max(y0, 0), max(z0, 0)
	x1, y1, z1 = min(x1, v.Shape.Width), min(y1, v.Shape.Height), min(z1, v.Shape.Depth)
	for z := z0; z < z1; z++ {
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				v.Data[v.Shape.Index(x, y, z)] = value
			}
		}
	}
}

// CheckShapes returns ErrShapeMismatch when the shapes differ.
func CheckShapes(a, b Shape) error {
	if a != b {
		return fmt.Errorf("%w: %s vs %s", ErrShapeMismatch, a, b)
	}
	return nil
}
