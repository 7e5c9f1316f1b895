// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"
	"math"

	"github.com/charseq-ml/charseq/internal/tensor"
)

// Softmax returns the softmax of logits, computed with the max-shift
// for numerical stability.
func Softmax(logits []float32) []float32 {
	out := make([]float32, len(logits))
	if len(logits) == 0 {
		return out
	}

	maxVal := logits[0]
	for _, v := range logits[1:] {
		if v > maxVal {
			maxVal = v
		}
	}

	sum := float64(0)
	for k, v := range logits {
		e := math.Exp(float64(v - maxVal))
		out[k] = float32(e)
		sum += e
	}
	inv := float32(1 / sum)
	for k := range out {
		out[k] *= inv
	}
	return out
}

// SoftmaxCrossEntropy computes the categorical cross-entropy between
// per-position logits and one-hot targets, and its gradient with
// respect to the logits.
//
// logits and targets have shape (batch, seqLen, vocab). All-zero target
// rows are padding: they contribute zero loss and zero gradient, which
// falls out of the general one-hot formulation
//
//	loss_t   = -sum_k y_k * log(softmax(z)_k)
//	dlogit_t = softmax(z) * sum_k(y_k) - y
//
// The loss and gradient are averaged over every position, padded or not,
// matching the training objective the tensors were built for.
func SoftmaxCrossEntropy(logits, targets *tensor.Tensor) (float32, *tensor.Tensor, error) {
	shape := logits.Shape()
	if len(shape) != 3 {
		return 0, nil, fmt.Errorf("loss: expected 3D logits, got %v", shape)
	}
	if !shape.Equal(targets.Shape()) {
		return 0, nil, fmt.Errorf("loss: logits %v vs targets %v", shape, targets.Shape())
	}

	batch, seqLen, vocab := shape[0], shape[1], shape[2]
	positions := batch * seqLen
	if positions == 0 {
		return 0, tensor.Zeros(shape), nil
	}

	ld := logits.Data()
	td := targets.Data()
	grad := tensor.Zeros(shape)
	gd := grad.Data()

	totalLoss := float64(0)
	scale := 1 / float32(positions)

	for pos := 0; pos < positions; pos++ {
		off := pos * vocab
		probs := Softmax(ld[off : off+vocab])

		ySum := float32(0)
		for k := 0; k < vocab; k++ {
			y := td[off+k]
			if y > 0 {
				totalLoss -= float64(y) * math.Log(math.Max(float64(probs[k]), 1e-12))
				ySum += y
			}
		}
		if ySum == 0 {
			continue // padding position
		}
		for k := 0; k < vocab; k++ {
			gd[off+k] = (probs[k]*ySum - td[off+k]) * scale
		}
	}

	return float32(totalLoss) * scale, grad, nil
}
