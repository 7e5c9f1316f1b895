// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package tensor provides dense float32 tensors for the charseq model.
//
// The model works exclusively in float32, so the package keeps a single
// concrete Tensor type backed by a flat row-major slice instead of a
// dtype-erased representation. Shapes of any rank are supported; the
// sequence code uses rank 1 through 3.
package tensor

import (
	"fmt"
	"math/rand"
)

// Tensor is a dense float32 tensor with row-major layout.
type Tensor struct {
	data   []float32
	shape  Shape
	stride []int
}

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &Tensor{
		data:   make([]float32, shape.NumElements()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
	}, nil
}

// Zeros creates a zero-filled tensor and panics on an invalid shape.
// Use New when the shape comes from untrusted input.
func Zeros(shape Shape) *Tensor {
	t, err := New(shape)
	if err != nil {
		panic(err)
	}
	return t
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	t, err := New(shape)
	if err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	copy(t.data, data)
	return t, nil
}

// Uniform creates a tensor with elements drawn uniformly from [low, high).
// The caller supplies the random source so initialization is reproducible.
func Uniform(shape Shape, low, high float32, rng *rand.Rand) *Tensor {
	t := Zeros(shape)
	span := high - low
	for i := range t.data {
		t.data[i] = low + span*rng.Float32()
	}
	return t
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Data returns the underlying flat slice. Mutating it mutates the tensor.
func (t *Tensor) Data() []float32 {
	return t.data
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	c := Zeros(t.shape)
	copy(c.data, t.data)
	return c
}

// Zero sets every element to zero in place.
func (t *Tensor) Zero() {
	for i := range t.data {
		t.data[i] = 0
	}
}

// flatIndex converts a multi-dimensional index to a flat offset.
func (t *Tensor) flatIndex(idx ...int) int {
	if len(idx) != len(t.shape) {
		panic(fmt.Sprintf("tensor: %d indices for shape %v", len(idx), t.shape))
	}
	offset := 0
	for i, ix := range idx {
		if ix < 0 || ix >= t.shape[i] {
			panic(fmt.Sprintf("tensor: index %d out of range for dimension %d of shape %v", ix, i, t.shape))
		}
		offset += ix * t.stride[i]
	}
	return offset
}

// At returns the element at the given multi-dimensional index.
func (t *Tensor) At(idx ...int) float32 {
	return t.data[t.flatIndex(idx...)]
}

// Set stores v at the given multi-dimensional index.
func (t *Tensor) Set(v float32, idx ...int) {
	t.data[t.flatIndex(idx...)] = v
}

// Row returns the i-th row of a 2D tensor as a subslice of the
// underlying data. The returned slice aliases the tensor.
func (t *Tensor) Row(i int) []float32 {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("tensor: Row requires a 2D tensor, got shape %v", t.shape))
	}
	if i < 0 || i >= t.shape[0] {
		panic(fmt.Sprintf("tensor: row %d out of range for shape %v", i, t.shape))
	}
	start := i * t.stride[0]
	return t.data[start : start+t.shape[1]]
}

// Index returns the sub-tensor at position i along the first dimension.
// The result shares memory with t (a view, not a copy).
func (t *Tensor) Index(i int) *Tensor {
	if len(t.shape) < 1 {
		panic("tensor: Index requires at least one dimension")
	}
	if i < 0 || i >= t.shape[0] {
		panic(fmt.Sprintf("tensor: index %d out of range for shape %v", i, t.shape))
	}
	sub := t.shape[1:].Clone()
	start := i * t.stride[0]
	return &Tensor{
		data:   t.data[start : start+sub.NumElements()],
		shape:  sub,
		stride: sub.ComputeStrides(),
	}
}

// Reshape returns a tensor with the same data and a new shape.
// The new shape must describe the same number of elements.
// The result shares memory with t.
func (t *Tensor) Reshape(dims ...int) (*Tensor, error) {
	shape := Shape(dims)
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != len(t.data) {
		return nil, fmt.Errorf("cannot reshape %v into %v", t.shape, shape)
	}
	return &Tensor{
		data:   t.data,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
	}, nil
}

// Argmax returns the index of the first maximal element of v.
// Ties resolve to the lowest index.
func Argmax(v []float32) int {
	if len(v) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
