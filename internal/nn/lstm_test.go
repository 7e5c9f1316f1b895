// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLSTMStepShapes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cell := NewLSTMCell("enc", 5, 3, rng)

	h0, c0 := cell.ZeroState()
	x := []float32{1, 0, 0, 0, 0}

	h, c, cache := cell.Step(x, h0, c0)
	assert.Len(t, h, 3)
	assert.Len(t, c, 3)
	require.NotNil(t, cache)
}

func TestLSTMStepDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cell := NewLSTMCell("enc", 4, 3, rng)

	h0, c0 := cell.ZeroState()
	x := []float32{0, 1, 0, 0}

	h1, c1, _ := cell.Step(x, h0, c0)
	h2, c2, _ := cell.Step(x, h0, c0)
	assert.Equal(t, h1, h2)
	assert.Equal(t, c1, c2)
}

func TestLSTMStepDoesNotMutateState(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cell := NewLSTMCell("enc", 2, 3, rng)

	hPrev := []float32{0.1, -0.2, 0.3}
	cPrev := []float32{0.4, 0.5, -0.6}
	hCopy := append([]float32(nil), hPrev...)
	cCopy := append([]float32(nil), cPrev...)

	h, c, _ := cell.Step([]float32{1, 0}, hPrev, cPrev)

	assert.Equal(t, hCopy, hPrev)
	assert.Equal(t, cCopy, cPrev)
	assert.NotSame(t, &hPrev[0], &h[0])
	assert.NotSame(t, &cPrev[0], &c[0])
}

// stepLoss runs one step and returns sum(h) + sum(c), the scalar used by
// the gradient checks below.
func stepLoss(cell *LSTMCell, x, hPrev, cPrev []float32) float32 {
	h, c, _ := cell.Step(x, hPrev, cPrev)
	sum := float32(0)
	for k := range h {
		sum += h[k] + c[k]
	}
	return sum
}

// Central-difference gradient check of StepBackward against Step.
func TestLSTMGradientCheck(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cell := NewLSTMCell("enc", 3, 2, rng)

	x := []float32{0.5, -0.3, 0.8}
	hPrev := []float32{0.1, -0.2}
	cPrev := []float32{0.3, 0.4}

	_, _, cache := cell.Step(x, hPrev, cPrev)
	ones := []float32{1, 1}
	dx, dhPrev, dcPrev := cell.StepBackward(cache, ones, ones)

	const eps = 1e-2
	const tol = 1e-2

	numeric := func(v []float32, i int) float32 {
		orig := v[i]
		v[i] = orig + eps
		plus := stepLoss(cell, x, hPrev, cPrev)
		v[i] = orig - eps
		minus := stepLoss(cell, x, hPrev, cPrev)
		v[i] = orig
		return (plus - minus) / (2 * eps)
	}

	for i := range x {
		assert.InDelta(t, numeric(x, i), dx[i], tol, "dx[%d]", i)
	}
	for i := range hPrev {
		assert.InDelta(t, numeric(hPrev, i), dhPrev[i], tol, "dhPrev[%d]", i)
	}
	for i := range cPrev {
		assert.InDelta(t, numeric(cPrev, i), dcPrev[i], tol, "dcPrev[%d]", i)
	}

	for _, p := range cell.Parameters() {
		data := p.Tensor().Data()
		grad := p.Grad().Data()
		for _, i := range []int{0, len(data) / 2, len(data) - 1} {
			assert.InDelta(t, numeric(data, i), grad[i], tol, "%s[%d]", p.Name(), i)
		}
	}
}

func TestLSTMBackwardAccumulates(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	cell := NewLSTMCell("enc", 2, 2, rng)

	h0, c0 := cell.ZeroState()
	_, _, cache := cell.Step([]float32{1, 0}, h0, c0)

	dh := []float32{1, 1}
	cell.StepBackward(cache, dh, nil)
	first := append([]float32(nil), cell.wx.Grad().Data()...)

	cell.StepBackward(cache, dh, nil)
	for i, v := range cell.wx.Grad().Data() {
		assert.InDelta(t, 2*first[i], v, 1e-6)
	}

	cell.wx.ZeroGrad()
	for _, v := range cell.wx.Grad().Data() {
		assert.Zero(t, v)
	}
}

func TestLSTMParameters(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cell := NewLSTMCell("dec", 4, 6, rng)

	params := cell.Parameters()
	require.Len(t, params, 3)
	assert.Equal(t, "dec.wx", params[0].Name())
	assert.Equal(t, "dec.wh", params[1].Name())
	assert.Equal(t, "dec.bias", params[2].Name())
	assert.Equal(t, 4, cell.InputSize())
	assert.Equal(t, 6, cell.HiddenSize())
}
