// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/charseq-ml/charseq/internal/nn"
)

// SGD implements Stochastic Gradient Descent with optional momentum.
//
// Update rule:
//
//	v = momentum * v - lr * gradient
//	param = param + v
//
// With momentum 0 this reduces to plain gradient descent.
type SGD struct {
	params   []*nn.Parameter
	lr       float32
	momentum float32
	velocity map[*nn.Parameter][]float32
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float32 // Learning rate (default: 0.01)
	Momentum float32 // Momentum factor (default: 0, disabled)
}

// NewSGD creates a new SGD optimizer.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		params:   params,
		lr:       config.LR,
		momentum: config.Momentum,
		velocity: make(map[*nn.Parameter][]float32),
	}
}

// Step applies one SGD update to all parameters.
func (s *SGD) Step() {
	for _, p := range s.params {
		data := p.Tensor().Data()
		grad := p.Grad().Data()

		if s.momentum == 0 {
			for i := range data {
				data[i] -= s.lr * grad[i]
			}
			continue
		}

		v, ok := s.velocity[p]
		if !ok {
			v = make([]float32, len(data))
			s.velocity[p] = v
		}
		for i := range data {
			v[i] = s.momentum*v[i] - s.lr*grad[i]
			data[i] += v[i]
		}
	}
}

// ZeroGrad clears all parameter gradients.
func (s *SGD) ZeroGrad() {
	for _, p := range s.params {
		p.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (s *SGD) LR() float32 {
	return s.lr
}
