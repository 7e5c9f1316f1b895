// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package tensor

import "fmt"

// MatMul performs 2D matrix multiplication: [m, k] @ [k, n] = [m, n].
func (t *Tensor) MatMul(other *Tensor) (*Tensor, error) {
	if len(t.shape) != 2 || len(other.shape) != 2 {
		return nil, fmt.Errorf("matmul requires 2D tensors, got %v and %v", t.shape, other.shape)
	}
	m, k := t.shape[0], t.shape[1]
	k2, n := other.shape[0], other.shape[1]
	if k != k2 {
		return nil, fmt.Errorf("matmul shape mismatch: %v @ %v", t.shape, other.shape)
	}

	out := Zeros(Shape{m, n})
	for i := 0; i < m; i++ {
		row := t.data[i*k : (i+1)*k]
		outRow := out.data[i*n : (i+1)*n]
		for p, a := range row {
			if a == 0 {
				continue
			}
			bRow := other.data[p*n : (p+1)*n]
			for j, b := range bRow {
				outRow[j] += a * b
			}
		}
	}
	return out, nil
}

// Transpose returns the transpose of a 2D tensor.
func (t *Tensor) Transpose() (*Tensor, error) {
	if len(t.shape) != 2 {
		return nil, fmt.Errorf("transpose requires a 2D tensor, got %v", t.shape)
	}
	rows, cols := t.shape[0], t.shape[1]
	out := Zeros(Shape{cols, rows})
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.data[j*rows+i] = t.data[i*cols+j]
		}
	}
	return out, nil
}

// Add performs element-wise addition. Shapes must match.
func (t *Tensor) Add(other *Tensor) (*Tensor, error) {
	if !t.shape.Equal(other.shape) {
		return nil, fmt.Errorf("add shape mismatch: %v vs %v", t.shape, other.shape)
	}
	out := t.Clone()
	for i, v := range other.data {
		out.data[i] += v
	}
	return out, nil
}

// Mul performs element-wise multiplication. Shapes must match.
func (t *Tensor) Mul(other *Tensor) (*Tensor, error) {
	if !t.shape.Equal(other.shape) {
		return nil, fmt.Errorf("mul shape mismatch: %v vs %v", t.shape, other.shape)
	}
	out := t.Clone()
	for i, v := range other.data {
		out.data[i] *= v
	}
	return out, nil
}

// Scale multiplies every element by s and returns a new tensor.
func (t *Tensor) Scale(s float32) *Tensor {
	out := t.Clone()
	for i := range out.data {
		out.data[i] *= s
	}
	return out
}

// AddScaled accumulates s*other into t in place. Shapes must match.
// Used by the optimizers for parameter updates.
func (t *Tensor) AddScaled(other *Tensor, s float32) error {
	if !t.shape.Equal(other.shape) {
		return fmt.Errorf("addscaled shape mismatch: %v vs %v", t.shape, other.shape)
	}
	for i, v := range other.data {
		t.data[i] += s * v
	}
	return nil
}
