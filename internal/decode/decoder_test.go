// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package decode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charseq-ml/charseq/internal/corpus"
	"github.com/charseq-ml/charseq/internal/seq2seq"
	"github.com/charseq-ml/charseq/internal/tensor"
	"github.com/charseq-ml/charseq/internal/vocab"
)

// scriptedModel is a Stepper that assigns maximum probability to a
// scripted series of character indices, repeating the last entry once
// the script is exhausted.
type scriptedModel struct {
	vocabSize int
	script    []int
	step      int
}

func (m *scriptedModel) Encode(src *tensor.Tensor) (seq2seq.State, error) {
	return seq2seq.State{Hidden: make([]float32, 2), Cell: make([]float32, 2)}, nil
}

func (m *scriptedModel) Step(input []float32, st seq2seq.State) ([]float32, seq2seq.State, error) {
	idx := m.script[min(m.step, len(m.script)-1)]
	m.step++

	probs := make([]float32, m.vocabSize)
	for k := range probs {
		probs[k] = 0.1 / float32(m.vocabSize)
	}
	probs[idx] = 0.9
	return probs, st, nil
}

// uniformModel returns the same probability for every character.
type uniformModel struct {
	vocabSize int
}

func (m *uniformModel) Encode(src *tensor.Tensor) (seq2seq.State, error) {
	return seq2seq.State{Hidden: make([]float32, 2), Cell: make([]float32, 2)}, nil
}

func (m *uniformModel) Step(input []float32, st seq2seq.State) ([]float32, seq2seq.State, error) {
	probs := make([]float32, m.vocabSize)
	for k := range probs {
		probs[k] = 1 / float32(m.vocabSize)
	}
	return probs, st, nil
}

func testAlphabets(t *testing.T) (*vocab.Alphabet, *vocab.Alphabet) {
	t.Helper()
	src, err := vocab.Build([]string{"Hi. Go."})
	require.NoError(t, err)
	tgt, err := vocab.Build([]string{corpus.Wrap("Va !")})
	require.NoError(t, err)
	return src, tgt
}

func mustIndex(t *testing.T, ab *vocab.Alphabet, ch rune) int {
	t.Helper()
	i, ok := ab.Index(ch)
	require.True(t, ok, "char %q not in alphabet", ch)
	return i
}

// A model that assigns maximum probability to STOP at the first step
// returns the string consisting of exactly one STOP character.
func TestDecodeImmediateStop(t *testing.T) {
	src, tgt := testAlphabets(t)
	model := &scriptedModel{vocabSize: tgt.Len(), script: []int{mustIndex(t, tgt, corpus.StopMarker)}}

	d, err := New(model, src, tgt, 50)
	require.NoError(t, err)

	res, err := d.Decode("Hi.")
	require.NoError(t, err)
	assert.Equal(t, string(corpus.StopMarker), res.Text)
	assert.Equal(t, ReasonStop, res.Reason)
}

func TestDecodeScriptedTranslation(t *testing.T) {
	src, tgt := testAlphabets(t)
	script := []int{
		mustIndex(t, tgt, 'V'),
		mustIndex(t, tgt, 'a'),
		mustIndex(t, tgt, ' '),
		mustIndex(t, tgt, '!'),
		mustIndex(t, tgt, corpus.StopMarker),
	}
	model := &scriptedModel{vocabSize: tgt.Len(), script: script}

	d, err := New(model, src, tgt, 50)
	require.NoError(t, err)

	res, err := d.Decode("Go.")
	require.NoError(t, err)
	assert.Equal(t, "Va !\n", res.Text)
	assert.Equal(t, ReasonStop, res.Reason)
	assert.True(t, strings.HasSuffix(res.Text, string(corpus.StopMarker)))
}

// A model that never emits STOP terminates at the length cap, and the
// output length equals exactly the cap.
func TestDecodeLengthCap(t *testing.T) {
	src, tgt := testAlphabets(t)
	model := &scriptedModel{vocabSize: tgt.Len(), script: []int{mustIndex(t, tgt, 'a')}}

	d, err := New(model, src, tgt, 5)
	require.NoError(t, err)

	res, err := d.Decode("Go.")
	require.NoError(t, err)
	assert.Equal(t, "aaaaa", res.Text)
	assert.Equal(t, ReasonMaxLength, res.Reason)
	assert.False(t, strings.HasSuffix(res.Text, string(corpus.StopMarker)))
}

// With a uniform distribution the argmax tie resolves to the lowest
// index, which here is the START marker. Decoding appends it anyway:
// the loop is mechanical and does not reject anomalous characters.
func TestDecodeTiesAndAnomalousCharacters(t *testing.T) {
	src, tgt := testAlphabets(t)
	model := &uniformModel{vocabSize: tgt.Len()}

	d, err := New(model, src, tgt, 3)
	require.NoError(t, err)

	res, err := d.Decode("Go.")
	require.NoError(t, err)
	assert.Equal(t, "\t\t\t", res.Text)
	assert.Equal(t, ReasonMaxLength, res.Reason)
}

func TestDecodeEmptySourceTerminates(t *testing.T) {
	src, tgt := testAlphabets(t)
	model := &uniformModel{vocabSize: tgt.Len()}

	d, err := New(model, src, tgt, 4)
	require.NoError(t, err)

	res, err := d.Decode("")
	require.NoError(t, err)
	assert.Len(t, []rune(res.Text), 4)
	assert.Equal(t, ReasonMaxLength, res.Reason)
}

func TestDecodeUnknownCharacter(t *testing.T) {
	src, tgt := testAlphabets(t)
	model := &uniformModel{vocabSize: tgt.Len()}

	d, err := New(model, src, tgt, 10)
	require.NoError(t, err)

	_, err = d.Decode("¿Qué?")
	require.Error(t, err)

	var uce *vocab.UnknownCharError
	assert.ErrorAs(t, err, &uce)
}

// Greedy argmax over frozen parameters is deterministic: decoding the
// same source twice yields identical output.
func TestDecodeIdempotentWithRealModel(t *testing.T) {
	src, tgt := testAlphabets(t)
	model, err := seq2seq.New(seq2seq.Config{
		SourceAlphabetSize: src.Len(),
		TargetAlphabetSize: tgt.Len(),
		LatentDim:          8,
		Seed:               123,
	})
	require.NoError(t, err)

	d, err := New(model, src, tgt, 12)
	require.NoError(t, err)

	first, err := d.Decode("Hi. Go.")
	require.NoError(t, err)
	second, err := d.Decode("Hi. Go.")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first.Text)
	assert.Contains(t, []string{ReasonStop, ReasonMaxLength}, first.Reason)
}

func TestDecodeStream(t *testing.T) {
	src, tgt := testAlphabets(t)
	script := []int{
		mustIndex(t, tgt, 'V'),
		mustIndex(t, tgt, 'a'),
		mustIndex(t, tgt, corpus.StopMarker),
	}
	model := &scriptedModel{vocabSize: tgt.Len(), script: script}

	d, err := New(model, src, tgt, 50)
	require.NoError(t, err)

	ch, err := d.DecodeStream("Go.")
	require.NoError(t, err)

	var out []rune
	var last StepResult
	for step := range ch {
		out = append(out, step.Char)
		last = step
	}
	assert.Equal(t, "Va\n", string(out))
	assert.True(t, last.Done)
	assert.Equal(t, ReasonStop, last.Reason)
}

func TestNewValidation(t *testing.T) {
	src, tgt := testAlphabets(t)
	model := &uniformModel{vocabSize: tgt.Len()}

	_, err := New(model, src, tgt, 0)
	assert.Error(t, err)

	noMarkers, err := vocab.Build([]string{"abc"})
	require.NoError(t, err)
	_, err = New(model, src, noMarkers, 10)
	assert.Error(t, err)
}
