// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"
	"math/rand"

	"github.com/charseq-ml/charseq/internal/tensor"
)

// Linear implements a fully connected (dense) layer over vectors.
//
// Performs the transformation: y = W @ x + b
// where:
//   - x is the input vector with length inFeatures
//   - W is the weight matrix with shape [outFeatures, inFeatures]
//   - b is the bias vector with length outFeatures
//
// The model applies it per timestep to project a decoder hidden state
// onto target-alphabet logits.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [outFeatures, inFeatures]
	bias        *Parameter // [outFeatures]
}

// NewLinear creates a new Linear layer with Xavier-initialized weights
// and zero biases. The name prefixes the parameter names.
func NewLinear(name string, inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	weight := NewParameter(name+".weight", Xavier(inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures}, rng))
	bias := NewParameter(name+".bias", tensor.Zeros(tensor.Shape{outFeatures}))
	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
	}
}

// Forward computes y = W @ x + b.
func (l *Linear) Forward(x []float32) []float32 {
	if len(x) != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, len(x)))
	}

	w := l.weight.Tensor().Data()
	b := l.bias.Tensor().Data()

	y := make([]float32, l.outFeatures)
	for r := 0; r < l.outFeatures; r++ {
		row := w[r*l.inFeatures : (r+1)*l.inFeatures]
		sum := b[r]
		for c, xc := range x {
			sum += row[c] * xc
		}
		y[r] = sum
	}
	return y
}

// Backward accumulates parameter gradients for one forward application
// and returns the gradient with respect to the input.
//
// x must be the input that produced the output whose gradient is dout.
func (l *Linear) Backward(x, dout []float32) []float32 {
	if len(x) != l.inFeatures || len(dout) != l.outFeatures {
		panic(fmt.Sprintf("Linear.Backward: got input %d, output grad %d for layer %dx%d",
			len(x), len(dout), l.inFeatures, l.outFeatures))
	}

	w := l.weight.Tensor().Data()
	gw := l.weight.Grad().Data()
	gb := l.bias.Grad().Data()

	dx := make([]float32, l.inFeatures)
	for r, dr := range dout {
		gb[r] += dr
		row := w[r*l.inFeatures : (r+1)*l.inFeatures]
		grow := gw[r*l.inFeatures : (r+1)*l.inFeatures]
		for c, xc := range x {
			grow[c] += dr * xc
			dx[c] += dr * row[c]
		}
	}
	return dx
}

// Parameters returns the trainable parameters of this layer.
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}
