// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package decode implements greedy autoregressive decoding over a
// trained sequence model.
//
// Decoding is a three-phase loop. First the source sequence is run
// through the encoder once to obtain the initial (hidden, cell) state
// and the decoder input is set to the one-hot START marker. Then, one
// character per step: feed (input, state) to the decoder step function,
// take the argmax of the returned distribution, append that character,
// and replace input and state with the one-hot of the selection and the
// updated state. The loop finishes when the selected character is the
// STOP marker or the output has reached the configured maximum length.
//
// Decoding is purely mechanical: whatever character the model assigns
// maximum probability to is appended, START markers and non-printables
// included. Ties resolve to the lowest index. The trailing STOP marker
// stays in the output when it caused termination, so callers can tell a
// natural stop from a cap-triggered truncation by inspecting the last
// character (or Result.Reason).
package decode

import (
	"fmt"
	"strings"

	"github.com/charseq-ml/charseq/internal/corpus"
	"github.com/charseq-ml/charseq/internal/seq2seq"
	"github.com/charseq-ml/charseq/internal/tensor"
	"github.com/charseq-ml/charseq/internal/vectorize"
	"github.com/charseq-ml/charseq/internal/vocab"
)

// Stop reasons reported in Result and StepResult.
const (
	ReasonStop      = "stop"       // The model emitted the STOP marker
	ReasonMaxLength = "max_length" // The output reached the length cap
)

// Stepper is the model surface decoding needs: the encoder run and the
// single-step decoder. Both close over one shared parameter set; see
// seq2seq.Model, which satisfies this interface.
type Stepper interface {
	// Encode consumes a (len, sourceAlphabet) one-hot sequence and
	// returns the state that seeds decoding.
	Encode(src *tensor.Tensor) (seq2seq.State, error)

	// Step consumes a one-hot input and a state and returns the next
	// character distribution and the updated state.
	Step(input []float32, st seq2seq.State) ([]float32, seq2seq.State, error)
}

// Result is a completed decode.
type Result struct {
	// Text is the decoded string. It ends with the STOP marker when
	// Reason is ReasonStop.
	Text string

	// Reason is why decoding stopped: ReasonStop or ReasonMaxLength.
	Reason string
}

// StepResult is a single decoded character from the streaming API.
type StepResult struct {
	Char   rune
	Done   bool
	Reason string // Set when Done
}

// Decoder runs greedy decoding against a trained model.
type Decoder struct {
	model  Stepper
	src    *vocab.Alphabet
	tgt    *vocab.Alphabet
	maxLen int
}

// New creates a Decoder.
//
// maxLen caps the output length: decoding stops once maxLen characters
// have been accumulated, so the returned text never exceeds maxLen. The
// target alphabet must contain the START and STOP markers.
func New(model Stepper, src, tgt *vocab.Alphabet, maxLen int) (*Decoder, error) {
	if maxLen < 1 {
		return nil, fmt.Errorf("decode: maximum length must be at least 1, got %d", maxLen)
	}
	if !tgt.Contains(corpus.StartMarker) {
		return nil, fmt.Errorf("decode: target alphabet lacks the START marker")
	}
	if !tgt.Contains(corpus.StopMarker) {
		return nil, fmt.Errorf("decode: target alphabet lacks the STOP marker")
	}
	return &Decoder{model: model, src: src, tgt: tgt, maxLen: maxLen}, nil
}

// Decode translates a raw source text.
//
// Every character of text must be in the source alphabet; otherwise a
// vocab.UnknownCharError is returned.
func (d *Decoder) Decode(text string) (Result, error) {
	src, err := vectorize.Sequence(text, d.src)
	if err != nil {
		return Result{}, err
	}
	return d.DecodeTensor(src)
}

// DecodeTensor translates a pre-encoded (len, sourceAlphabet) one-hot
// source sequence.
func (d *Decoder) DecodeTensor(src *tensor.Tensor) (Result, error) {
	var out strings.Builder
	result, err := d.decode(src, func(step StepResult) bool {
		out.WriteRune(step.Char)
		return !step.Done
	})
	if err != nil {
		return Result{}, err
	}
	result.Text = out.String()
	return result, nil
}

// DecodeStream translates text and delivers one StepResult per decoded
// character on the returned channel. The channel is closed when
// decoding finishes. The sequence is finite and non-restartable; the
// consumer owns concatenation.
func (d *Decoder) DecodeStream(text string) (<-chan StepResult, error) {
	src, err := vectorize.Sequence(text, d.src)
	if err != nil {
		return nil, err
	}

	ch := make(chan StepResult, 1)
	go func() {
		defer close(ch)
		_, _ = d.decode(src, func(step StepResult) bool {
			ch <- step
			return !step.Done
		})
	}()
	return ch, nil
}

// decode is the core greedy loop. It calls emit once per selected
// character and stops early if emit returns false.
func (d *Decoder) decode(src *tensor.Tensor, emit func(StepResult) bool) (Result, error) {
	st, err := d.model.Encode(src)
	if err != nil {
		return Result{}, err
	}

	startIdx, _ := d.tgt.Index(corpus.StartMarker)
	input := d.oneHot(startIdx)

	length := 0
	for {
		probs, next, err := d.model.Step(input, st)
		if err != nil {
			return Result{}, err
		}

		idx := tensor.Argmax(probs)
		ch := d.tgt.Char(idx)
		length++

		reason := ""
		switch {
		case ch == corpus.StopMarker:
			reason = ReasonStop
		case length >= d.maxLen:
			reason = ReasonMaxLength
		}

		done := reason != ""
		cont := emit(StepResult{Char: ch, Done: done, Reason: reason})
		if done || !cont {
			return Result{Reason: reason}, nil
		}

		input = d.oneHot(idx)
		st = next
	}
}

func (d *Decoder) oneHot(idx int) []float32 {
	v := make([]float32, d.tgt.Len())
	v[idx] = 1
	return v
}
