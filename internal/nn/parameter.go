// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package nn implements the neural network layers of the charseq model:
// trainable parameters, a fully connected layer, an LSTM cell, and the
// categorical cross-entropy loss.
//
// Backward passes are explicit per-layer functions that accumulate into
// parameter gradients. Backpropagation through time over the encoder
// and decoder recurrences threads state gradients across steps, which
// is why each layer exposes its backward pass directly instead of going
// through a recorded-operation tape.
package nn

import (
	"github.com/charseq-ml/charseq/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// The gradient tensor has the same shape as the parameter and is
// accumulated into by backward passes; ZeroGrad clears it between
// training iterations.
type Parameter struct {
	name   string
	tensor *tensor.Tensor
	grad   *tensor.Tensor
}

// NewParameter creates a new trainable parameter.
// The parameter tensor should be initialized before creating the Parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
		grad:   tensor.Zeros(t.Shape()),
	}
}

// Name returns the parameter name (e.g., "encoder.wx").
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// Grad returns the accumulated gradient tensor.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// ZeroGrad clears the accumulated gradient.
//
// Call before each backward pass to avoid carrying gradients over from
// the previous iteration.
func (p *Parameter) ZeroGrad() {
	p.grad.Zero()
}
