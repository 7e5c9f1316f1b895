// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package seq2seq implements the character-level encoder-decoder model.
//
// The model is two LSTM cells and a projection layer. The encoder
// consumes the full source sequence and keeps only its final (hidden,
// cell) state; its per-step outputs are discarded. The decoder consumes
// the target sequence seeded with that state and the projection maps
// each decoder hidden state to target-alphabet logits.
//
// Training and inference are two compositions over the SAME parameter
// objects: Forward runs both recurrences over full teacher-forced
// sequences, while Encode and Step expose the single-step protocol the
// autoregressive decoder drives. There is no weight duplication; a
// parameter update through one composition is immediately visible to
// the other.
package seq2seq

import (
	"fmt"
	"math/rand"

	"github.com/charseq-ml/charseq/internal/nn"
	"github.com/charseq-ml/charseq/internal/tensor"
)

// Config describes the model dimensions.
type Config struct {
	SourceAlphabetSize int
	TargetAlphabetSize int
	LatentDim          int
	Seed               int64 // Weight initialization seed
}

// State is the decoder's recurrent memory: a (hidden, cell) pair of the
// latent dimension.
//
// States are passed by value from one decode step to the next. Step
// never writes into an incoming state; it returns a fresh one.
type State struct {
	Hidden []float32
	Cell   []float32
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	return State{
		Hidden: append([]float32(nil), s.Hidden...),
		Cell:   append([]float32(nil), s.Cell...),
	}
}

// Model is the trainable sequence-to-sequence model.
type Model struct {
	cfg     Config
	encoder *nn.LSTMCell
	decoder *nn.LSTMCell
	proj    *nn.Linear
}

// New creates a model with randomly initialized weights.
func New(cfg Config) (*Model, error) {
	if cfg.SourceAlphabetSize <= 0 || cfg.TargetAlphabetSize <= 0 {
		return nil, fmt.Errorf("seq2seq: alphabet sizes must be positive, got %d/%d",
			cfg.SourceAlphabetSize, cfg.TargetAlphabetSize)
	}
	if cfg.LatentDim <= 0 {
		return nil, fmt.Errorf("seq2seq: latent dimension must be positive, got %d", cfg.LatentDim)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	return &Model{
		cfg:     cfg,
		encoder: nn.NewLSTMCell("encoder", cfg.SourceAlphabetSize, cfg.LatentDim, rng),
		decoder: nn.NewLSTMCell("decoder", cfg.TargetAlphabetSize, cfg.LatentDim, rng),
		proj:    nn.NewLinear("projection", cfg.LatentDim, cfg.TargetAlphabetSize, rng),
	}, nil
}

// Config returns the model configuration.
func (m *Model) Config() Config {
	return m.cfg
}

// Parameters returns all trainable parameters.
func (m *Model) Parameters() []*nn.Parameter {
	params := m.encoder.Parameters()
	params = append(params, m.decoder.Parameters()...)
	params = append(params, m.proj.Parameters()...)
	return params
}

// sampleCache holds the forward intermediates of one batch sample.
type sampleCache struct {
	encSteps  []*nn.StepCache
	decSteps  []*nn.StepCache
	decHidden [][]float32 // projection inputs, one per decoder step
}

// Cache carries the intermediates Forward produced, for Backward.
type Cache struct {
	samples []sampleCache
}

// Forward runs the teacher-forced training composition.
//
// encInput has shape (n, srcLen, sourceAlphabet) and decInput
// (n, tgtLen, targetAlphabet). The result is per-position logits of the
// decoder input's shape, plus the cache Backward needs.
func (m *Model) Forward(encInput, decInput *tensor.Tensor) (*tensor.Tensor, *Cache, error) {
	encShape, decShape := encInput.Shape(), decInput.Shape()
	if len(encShape) != 3 || encShape[2] != m.cfg.SourceAlphabetSize {
		return nil, nil, fmt.Errorf("seq2seq: encoder input shape %v, want (n, len, %d)", encShape, m.cfg.SourceAlphabetSize)
	}
	if len(decShape) != 3 || decShape[2] != m.cfg.TargetAlphabetSize {
		return nil, nil, fmt.Errorf("seq2seq: decoder input shape %v, want (n, len, %d)", decShape, m.cfg.TargetAlphabetSize)
	}
	if encShape[0] != decShape[0] {
		return nil, nil, fmt.Errorf("seq2seq: batch size mismatch: %d vs %d", encShape[0], decShape[0])
	}

	n, srcLen, tgtLen := encShape[0], encShape[1], decShape[1]
	logits := tensor.Zeros(decShape)
	cache := &Cache{samples: make([]sampleCache, n)}

	for i := 0; i < n; i++ {
		sc := &cache.samples[i]
		encSeq := encInput.Index(i)
		decSeq := decInput.Index(i)

		h, c := m.encoder.ZeroState()
		sc.encSteps = make([]*nn.StepCache, srcLen)
		for t := 0; t < srcLen; t++ {
			var step *nn.StepCache
			h, c, step = m.encoder.Step(encSeq.Row(t), h, c)
			sc.encSteps[t] = step
		}

		sc.decSteps = make([]*nn.StepCache, tgtLen)
		sc.decHidden = make([][]float32, tgtLen)
		outSeq := logits.Index(i)
		for t := 0; t < tgtLen; t++ {
			var step *nn.StepCache
			h, c, step = m.decoder.Step(decSeq.Row(t), h, c)
			sc.decSteps[t] = step
			sc.decHidden[t] = h
			copy(outSeq.Row(t), m.proj.Forward(h))
		}
	}

	return logits, cache, nil
}

// Backward backpropagates the loss gradient through time, accumulating
// into the parameter gradients. dlogits must have the shape Forward's
// logits had, and cache must come from that Forward call.
func (m *Model) Backward(cache *Cache, dlogits *tensor.Tensor) error {
	shape := dlogits.Shape()
	if len(shape) != 3 || shape[0] != len(cache.samples) {
		return fmt.Errorf("seq2seq: gradient shape %v does not match cache of %d samples", shape, len(cache.samples))
	}

	for i := range cache.samples {
		sc := &cache.samples[i]
		gradSeq := dlogits.Index(i)

		// Decoder: walk steps in reverse, threading state gradients.
		var dh, dc []float32
		for t := len(sc.decSteps) - 1; t >= 0; t-- {
			dHidden := m.proj.Backward(sc.decHidden[t], gradSeq.Row(t))
			if dh != nil {
				for k, v := range dh {
					dHidden[k] += v
				}
			}
			_, dh, dc = m.decoder.StepBackward(sc.decSteps[t], dHidden, dc)
		}

		// The decoder's gradient for its initial state flows into the
		// encoder's final state.
		for t := len(sc.encSteps) - 1; t >= 0; t-- {
			if dh == nil {
				dh, dc = m.encoder.ZeroState()
			}
			_, dh, dc = m.encoder.StepBackward(sc.encSteps[t], dh, dc)
		}
	}
	return nil
}

// Encode runs the encoder over a single unpadded source sequence of
// shape (len, sourceAlphabet) and returns the state that seeds decoding.
// A zero-length sequence yields the all-zero initial state.
func (m *Model) Encode(src *tensor.Tensor) (State, error) {
	shape := src.Shape()
	if len(shape) != 2 || shape[1] != m.cfg.SourceAlphabetSize {
		return State{}, fmt.Errorf("seq2seq: source shape %v, want (len, %d)", shape, m.cfg.SourceAlphabetSize)
	}

	h, c := m.encoder.ZeroState()
	for t := 0; t < shape[0]; t++ {
		h, c, _ = m.encoder.Step(src.Row(t), h, c)
	}
	return State{Hidden: h, Cell: c}, nil
}

// Step advances the decoder by one character.
//
// input is a one-hot vector over the target alphabet. It returns the
// probability distribution for the next character and the updated
// state; st itself is left untouched.
func (m *Model) Step(input []float32, st State) ([]float32, State, error) {
	if len(input) != m.cfg.TargetAlphabetSize {
		return nil, State{}, fmt.Errorf("seq2seq: step input length %d, want %d", len(input), m.cfg.TargetAlphabetSize)
	}
	if len(st.Hidden) != m.cfg.LatentDim || len(st.Cell) != m.cfg.LatentDim {
		return nil, State{}, fmt.Errorf("seq2seq: state dimension %d/%d, want %d", len(st.Hidden), len(st.Cell), m.cfg.LatentDim)
	}

	h, c, _ := m.decoder.Step(input, st.Hidden, st.Cell)
	probs := nn.Softmax(m.proj.Forward(h))
	return probs, State{Hidden: h, Cell: c}, nil
}

// StateDict returns a map of parameter names to tensors.
// The tensors are the live parameters, not copies.
func (m *Model) StateDict() map[string]*tensor.Tensor {
	dict := make(map[string]*tensor.Tensor)
	for _, p := range m.Parameters() {
		dict[p.Name()] = p.Tensor()
	}
	return dict
}

// LoadStateDict copies parameter values from a state dictionary.
// Every model parameter must be present with a matching shape.
func (m *Model) LoadStateDict(dict map[string]*tensor.Tensor) error {
	for _, p := range m.Parameters() {
		src, ok := dict[p.Name()]
		if !ok {
			return fmt.Errorf("seq2seq: missing parameter %q in state dict", p.Name())
		}
		if !src.Shape().Equal(p.Tensor().Shape()) {
			return fmt.Errorf("seq2seq: parameter %q shape mismatch: expected %v, got %v",
				p.Name(), p.Tensor().Shape(), src.Shape())
		}
		copy(p.Tensor().Data(), src.Data())
	}
	return nil
}
