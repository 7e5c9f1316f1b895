// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package optim

import (
	"math"

	"github.com/charseq-ml/charseq/internal/nn"
)

// RMSprop implements the RMSprop optimizer, the default for training
// the translation model.
//
// RMSprop divides the learning rate by a running average of recent
// gradient magnitudes:
//
//	s = rho * s + (1-rho) * gradient²
//	param = param - lr * gradient / (sqrt(s) + eps)
//
// Reference: Tieleman & Hinton, "Lecture 6.5 - rmsprop" (2012).
type RMSprop struct {
	params []*nn.Parameter
	lr     float32
	rho    float32
	eps    float32
	sq     map[*nn.Parameter][]float32 // Running squared-gradient averages
}

// RMSpropConfig holds configuration for the RMSprop optimizer.
type RMSpropConfig struct {
	LR  float32 // Learning rate (default: 0.001)
	Rho float32 // Decay rate for the squared-gradient average (default: 0.9)
	Eps float32 // Term for numerical stability (default: 1e-7)
}

// NewRMSprop creates a new RMSprop optimizer.
func NewRMSprop(params []*nn.Parameter, config RMSpropConfig) *RMSprop {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Rho == 0 {
		config.Rho = 0.9
	}
	if config.Eps == 0 {
		config.Eps = 1e-7
	}
	return &RMSprop{
		params: params,
		lr:     config.LR,
		rho:    config.Rho,
		eps:    config.Eps,
		sq:     make(map[*nn.Parameter][]float32),
	}
}

// Step applies one RMSprop update to all parameters.
func (r *RMSprop) Step() {
	for _, p := range r.params {
		data := p.Tensor().Data()
		grad := p.Grad().Data()

		s, ok := r.sq[p]
		if !ok {
			s = make([]float32, len(data))
			r.sq[p] = s
		}
		for i := range data {
			g := grad[i]
			s[i] = r.rho*s[i] + (1-r.rho)*g*g
			data[i] -= r.lr * g / (float32(math.Sqrt(float64(s[i]))) + r.eps)
		}
	}
}

// ZeroGrad clears all parameter gradients.
func (r *RMSprop) ZeroGrad() {
	for _, p := range r.params {
		p.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (r *RMSprop) LR() float32 {
	return r.lr
}
