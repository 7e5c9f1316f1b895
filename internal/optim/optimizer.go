// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package optim implements optimization algorithms for training the model.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - RMSprop: Root Mean Square Propagation
//   - Adam: Adaptive Moment Estimation
//
// Optimizers read the gradients the backward passes accumulated into
// the parameters and update the parameter tensors in place:
//
//	optimizer := optim.NewRMSprop(model.Parameters(), optim.RMSpropConfig{LR: 0.001})
//
//	for epoch := range epochs {
//	    optimizer.ZeroGrad()
//	    logits, cache, _ := model.Forward(encInput, decInput)
//	    loss, dlogits, _ := nn.SoftmaxCrossEntropy(logits, targets)
//	    model.Backward(cache, dlogits)
//	    optimizer.Step()
//	}
package optim

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies the accumulated gradients to all parameters.
	Step()

	// ZeroGrad clears all parameter gradients.
	// Call before each backward pass to prevent gradient accumulation
	// across iterations.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float32
}
