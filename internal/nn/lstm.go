// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/charseq-ml/charseq/internal/tensor"
)

// LSTMCell is a single-layer LSTM step function.
//
// The four gates are packed along the first weight dimension in the
// order input, forget, cell write, output:
//
//	z = Wx @ x + Wh @ hPrev + b               (4*hidden values)
//	i = sigmoid(z[0:H])   f = sigmoid(z[H:2H])
//	g = tanh(z[2H:3H])    o = sigmoid(z[3H:4H])
//	c = f*cPrev + i*g
//	h = o * tanh(c)
//
// Step is the only forward entry point: the training composition calls
// it once per teacher-forced position and the inference composition
// calls it once per generated character, so both run over the same
// parameter objects.
type LSTMCell struct {
	inputSize  int
	hiddenSize int
	wx         *Parameter // [4*hidden, input]
	wh         *Parameter // [4*hidden, hidden]
	bias       *Parameter // [4*hidden]
}

// StepCache holds the intermediate values of one Step, needed by
// StepBackward.
type StepCache struct {
	x, hPrev, cPrev []float32
	i, f, g, o, c   []float32
}

// NewLSTMCell creates an LSTM cell with Xavier-initialized weights and
// zero biases. The name prefixes the parameter names.
func NewLSTMCell(name string, inputSize, hiddenSize int, rng *rand.Rand) *LSTMCell {
	return &LSTMCell{
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
		wx:         NewParameter(name+".wx", Xavier(inputSize, hiddenSize, tensor.Shape{4 * hiddenSize, inputSize}, rng)),
		wh:         NewParameter(name+".wh", Xavier(hiddenSize, hiddenSize, tensor.Shape{4 * hiddenSize, hiddenSize}, rng)),
		bias:       NewParameter(name+".bias", tensor.Zeros(tensor.Shape{4 * hiddenSize})),
	}
}

// ZeroState returns fresh all-zero hidden and cell vectors.
func (l *LSTMCell) ZeroState() (h, c []float32) {
	return make([]float32, l.hiddenSize), make([]float32, l.hiddenSize)
}

// Step advances the recurrence by one position.
//
// It never mutates hPrev or cPrev; the returned vectors are freshly
// allocated, so states can be passed by value between steps.
func (l *LSTMCell) Step(x, hPrev, cPrev []float32) (h, c []float32, cache *StepCache) {
	if len(x) != l.inputSize || len(hPrev) != l.hiddenSize || len(cPrev) != l.hiddenSize {
		panic(fmt.Sprintf("LSTMCell.Step: got input %d, state %d/%d for cell %dx%d",
			len(x), len(hPrev), len(cPrev), l.inputSize, l.hiddenSize))
	}

	H := l.hiddenSize
	z := make([]float32, 4*H)
	copy(z, l.bias.Tensor().Data())
	matVecAccum(z, l.wx.Tensor().Data(), x)
	matVecAccum(z, l.wh.Tensor().Data(), hPrev)

	i := make([]float32, H)
	f := make([]float32, H)
	g := make([]float32, H)
	o := make([]float32, H)
	for k := 0; k < H; k++ {
		i[k] = sigmoid(z[k])
		f[k] = sigmoid(z[H+k])
		g[k] = tanh(z[2*H+k])
		o[k] = sigmoid(z[3*H+k])
	}

	c = make([]float32, H)
	h = make([]float32, H)
	for k := 0; k < H; k++ {
		c[k] = f[k]*cPrev[k] + i[k]*g[k]
		h[k] = o[k] * tanh(c[k])
	}

	cache = &StepCache{
		x: x, hPrev: hPrev, cPrev: cPrev,
		i: i, f: f, g: g, o: o, c: c,
	}
	return h, c, cache
}

// StepBackward backpropagates one step.
//
// dh and dc are the loss gradients flowing into this step's hidden and
// cell outputs (dc may be nil when no later step exists). Parameter
// gradients are accumulated; the returned vectors are the gradients for
// the step's input and incoming state.
func (l *LSTMCell) StepBackward(cache *StepCache, dh, dc []float32) (dx, dhPrev, dcPrev []float32) {
	H := l.hiddenSize
	if dc == nil {
		dc = make([]float32, H)
	}

	dz := make([]float32, 4*H)
	dcPrev = make([]float32, H)
	for k := 0; k < H; k++ {
		tc := tanh(cache.c[k])

		do := dh[k] * tc
		dck := dc[k] + dh[k]*cache.o[k]*(1-tc*tc)

		di := dck * cache.g[k]
		df := dck * cache.cPrev[k]
		dg := dck * cache.i[k]

		dz[k] = di * cache.i[k] * (1 - cache.i[k])
		dz[H+k] = df * cache.f[k] * (1 - cache.f[k])
		dz[2*H+k] = dg * (1 - cache.g[k]*cache.g[k])
		dz[3*H+k] = do * cache.o[k] * (1 - cache.o[k])

		dcPrev[k] = dck * cache.f[k]
	}

	// Accumulate weight gradients: gW[r,c] += dz[r] * input[c].
	outerAccum(l.wx.Grad().Data(), dz, cache.x)
	outerAccum(l.wh.Grad().Data(), dz, cache.hPrev)
	gb := l.bias.Grad().Data()
	for r, v := range dz {
		gb[r] += v
	}

	dx = matTVec(l.wx.Tensor().Data(), dz, l.inputSize)
	dhPrev = matTVec(l.wh.Tensor().Data(), dz, l.hiddenSize)
	return dx, dhPrev, dcPrev
}

// Parameters returns the trainable parameters of this cell.
func (l *LSTMCell) Parameters() []*Parameter {
	return []*Parameter{l.wx, l.wh, l.bias}
}

// InputSize returns the expected input vector length.
func (l *LSTMCell) InputSize() int {
	return l.inputSize
}

// HiddenSize returns the latent dimension.
func (l *LSTMCell) HiddenSize() int {
	return l.hiddenSize
}

// matVecAccum accumulates W @ x into out, where W is row-major
// [len(out), len(x)].
func matVecAccum(out, w, x []float32) {
	n := len(x)
	for r := range out {
		row := w[r*n : (r+1)*n]
		sum := out[r]
		for c, xc := range x {
			sum += row[c] * xc
		}
		out[r] = sum
	}
}

// matTVec computes W^T @ v, where W is row-major [len(v), cols].
func matTVec(w, v []float32, cols int) []float32 {
	out := make([]float32, cols)
	for r, vr := range v {
		if vr == 0 {
			continue
		}
		row := w[r*cols : (r+1)*cols]
		for c, wc := range row {
			out[c] += vr * wc
		}
	}
	return out
}

// outerAccum accumulates the outer product v ⊗ x into the row-major
// matrix gradient gw of shape [len(v), len(x)].
func outerAccum(gw, v, x []float32) {
	n := len(x)
	for r, vr := range v {
		if vr == 0 {
			continue
		}
		row := gw[r*n : (r+1)*n]
		for c, xc := range x {
			row[c] += vr * xc
		}
	}
}

func sigmoid(x float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(x))))
}

func tanh(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}
