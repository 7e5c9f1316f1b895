// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charseq-ml/charseq/internal/tensor"
)

func TestSoftmax(t *testing.T) {
	probs := Softmax([]float32{1, 2, 3})

	sum := float32(0)
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1.0, float64(sum), 1e-6)
	assert.Greater(t, probs[2], probs[1])
	assert.Greater(t, probs[1], probs[0])

	// Uniform logits give a uniform distribution.
	probs = Softmax([]float32{5, 5, 5, 5})
	for _, p := range probs {
		assert.InDelta(t, 0.25, float64(p), 1e-6)
	}

	// Large logits must not overflow.
	probs = Softmax([]float32{1000, 1000})
	assert.InDelta(t, 0.5, float64(probs[0]), 1e-6)
}

func TestSoftmaxCrossEntropyHandComputed(t *testing.T) {
	// One position, uniform logits over 4 classes: loss = ln(4).
	logits, err := tensor.FromSlice([]float32{0, 0, 0, 0}, tensor.Shape{1, 1, 4})
	require.NoError(t, err)
	targets, err := tensor.FromSlice([]float32{0, 1, 0, 0}, tensor.Shape{1, 1, 4})
	require.NoError(t, err)

	loss, grad, err := SoftmaxCrossEntropy(logits, targets)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(4), float64(loss), 1e-5)

	// Gradient is softmax - onehot = [0.25, -0.75, 0.25, 0.25].
	want := []float32{0.25, -0.75, 0.25, 0.25}
	for k, w := range want {
		assert.InDelta(t, float64(w), float64(grad.At(0, 0, k)), 1e-5)
	}
}

func TestSoftmaxCrossEntropyPadding(t *testing.T) {
	// Second position is an all-zero padding row: zero loss and zero
	// gradient there, and the mean is taken over both positions.
	logits, err := tensor.FromSlice([]float32{0, 0, 1, 2}, tensor.Shape{1, 2, 2})
	require.NoError(t, err)
	targets, err := tensor.FromSlice([]float32{1, 0, 0, 0}, tensor.Shape{1, 2, 2})
	require.NoError(t, err)

	loss, grad, err := SoftmaxCrossEntropy(logits, targets)
	require.NoError(t, err)

	assert.InDelta(t, math.Log(2)/2, float64(loss), 1e-5)
	assert.Zero(t, grad.At(0, 1, 0))
	assert.Zero(t, grad.At(0, 1, 1))
	assert.InDelta(t, (0.5-1)/2, float64(grad.At(0, 0, 0)), 1e-5)
}

func TestSoftmaxCrossEntropyShapeMismatch(t *testing.T) {
	logits := tensor.Zeros(tensor.Shape{1, 2, 3})
	targets := tensor.Zeros(tensor.Shape{1, 2, 4})
	_, _, err := SoftmaxCrossEntropy(logits, targets)
	assert.Error(t, err)

	_, _, err = SoftmaxCrossEntropy(tensor.Zeros(tensor.Shape{2, 3}), tensor.Zeros(tensor.Shape{2, 3}))
	assert.Error(t, err)
}

// The analytic gradient matches a central-difference estimate.
func TestSoftmaxCrossEntropyGradientCheck(t *testing.T) {
	logits, err := tensor.FromSlice([]float32{0.5, -1, 2, 0.1, 0.2, 0.3}, tensor.Shape{1, 2, 3})
	require.NoError(t, err)
	targets, err := tensor.FromSlice([]float32{0, 0, 1, 1, 0, 0}, tensor.Shape{1, 2, 3})
	require.NoError(t, err)

	_, grad, err := SoftmaxCrossEntropy(logits, targets)
	require.NoError(t, err)

	const eps = 1e-2
	data := logits.Data()
	for i := range data {
		orig := data[i]
		data[i] = orig + eps
		plus, _, err := SoftmaxCrossEntropy(logits, targets)
		require.NoError(t, err)
		data[i] = orig - eps
		minus, _, err := SoftmaxCrossEntropy(logits, targets)
		require.NoError(t, err)
		data[i] = orig

		numeric := (plus - minus) / (2 * eps)
		assert.InDelta(t, float64(numeric), float64(grad.Data()[i]), 1e-3, "logit %d", i)
	}
}
