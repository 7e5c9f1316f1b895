// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package vectorize converts sentence pairs into the one-hot tensors
// the sequence model trains on.
//
// For a batch of n pairs it produces three tensors:
//
//	EncoderInput  (n, maxSourceLen, sourceAlphabet)  one-hot source rows
//	DecoderInput  (n, maxTargetLen, targetAlphabet)  one-hot target rows, START first
//	DecoderTarget (n, maxTargetLen, targetAlphabet)  DecoderInput shifted left by one
//
// Positions beyond a sequence's actual length stay all-zero, and the
// shift means the START marker never appears as a target label. That is
// the teacher-forcing arrangement: given the characters so far, predict
// the next one.
package vectorize

import (
	"fmt"

	"github.com/charseq-ml/charseq/internal/corpus"
	"github.com/charseq-ml/charseq/internal/tensor"
	"github.com/charseq-ml/charseq/internal/vocab"
)

// Batch holds the training tensors for a set of sentence pairs.
type Batch struct {
	EncoderInput  *tensor.Tensor // (n, MaxSourceLen, source alphabet size)
	DecoderInput  *tensor.Tensor // (n, MaxTargetLen, target alphabet size)
	DecoderTarget *tensor.Tensor // (n, MaxTargetLen, target alphabet size)

	MaxSourceLen int
	MaxTargetLen int
}

// Len returns the number of pairs in the batch.
func (b *Batch) Len() int {
	return b.EncoderInput.Shape()[0]
}

// Build vectorizes pairs against the given alphabets.
//
// Maximum lengths are the longest source and (wrapped) target in the
// batch, measured in runes.
func Build(pairs []corpus.Pair, src, tgt *vocab.Alphabet) (*Batch, error) {
	if len(pairs) == 0 {
		return nil, corpus.ErrEmptyCorpus
	}

	maxSrc, maxTgt := 0, 0
	for _, p := range pairs {
		if n := len([]rune(p.Source)); n > maxSrc {
			maxSrc = n
		}
		if n := len([]rune(p.Target)); n > maxTgt {
			maxTgt = n
		}
	}

	n := len(pairs)
	encInput := tensor.Zeros(tensor.Shape{n, maxSrc, src.Len()})
	decInput := tensor.Zeros(tensor.Shape{n, maxTgt, tgt.Len()})
	decTarget := tensor.Zeros(tensor.Shape{n, maxTgt, tgt.Len()})

	for i, p := range pairs {
		for t, ch := range []rune(p.Source) {
			k, ok := src.Index(ch)
			if !ok {
				return nil, fmt.Errorf("vectorize: pair %d source: %w", i, &vocab.UnknownCharError{Char: ch})
			}
			encInput.Set(1, i, t, k)
		}
		for t, ch := range []rune(p.Target) {
			k, ok := tgt.Index(ch)
			if !ok {
				return nil, fmt.Errorf("vectorize: pair %d target: %w", i, &vocab.UnknownCharError{Char: ch})
			}
			decInput.Set(1, i, t, k)
			// decoder_target[t-1] = decoder_input[t]: one step ahead,
			// so the START marker is never a label.
			if t > 0 {
				decTarget.Set(1, i, t-1, k)
			}
		}
	}

	return &Batch{
		EncoderInput:  encInput,
		DecoderInput:  decInput,
		DecoderTarget: decTarget,
		MaxSourceLen:  maxSrc,
		MaxTargetLen:  maxTgt,
	}, nil
}

// Subset returns a new batch containing the pairs at the given indices,
// in order. Used for shuffled minibatching and validation splits.
func (b *Batch) Subset(indices []int) *Batch {
	n := len(indices)
	srcV := b.EncoderInput.Shape()[2]
	tgtV := b.DecoderInput.Shape()[2]

	out := &Batch{
		EncoderInput:  tensor.Zeros(tensor.Shape{n, b.MaxSourceLen, srcV}),
		DecoderInput:  tensor.Zeros(tensor.Shape{n, b.MaxTargetLen, tgtV}),
		DecoderTarget: tensor.Zeros(tensor.Shape{n, b.MaxTargetLen, tgtV}),
		MaxSourceLen:  b.MaxSourceLen,
		MaxTargetLen:  b.MaxTargetLen,
	}
	for j, i := range indices {
		copy(out.EncoderInput.Index(j).Data(), b.EncoderInput.Index(i).Data())
		copy(out.DecoderInput.Index(j).Data(), b.DecoderInput.Index(i).Data())
		copy(out.DecoderTarget.Index(j).Data(), b.DecoderTarget.Index(i).Data())
	}
	return out
}

// Sequence encodes a single text as a (len, alphabetSize) one-hot tensor
// with no padding. This is the decode entry point's encoding step.
func Sequence(text string, ab *vocab.Alphabet) (*tensor.Tensor, error) {
	runes := []rune(text)
	out := tensor.Zeros(tensor.Shape{len(runes), ab.Len()})
	for t, ch := range runes {
		k, ok := ab.Index(ch)
		if !ok {
			return nil, &vocab.UnknownCharError{Char: ch}
		}
		out.Set(1, t, k)
	}
	return out, nil
}

// Text decodes a (len, alphabetSize) one-hot tensor back into a string
// by taking the set bit of each row. All-zero padding rows end the text.
// A row with anything other than exactly one set bit (or all zeros) is
// an error.
func Text(t *tensor.Tensor, ab *vocab.Alphabet) (string, error) {
	shape := t.Shape()
	if len(shape) != 2 || shape[1] != ab.Len() {
		return "", fmt.Errorf("vectorize: expected shape (len, %d), got %v", ab.Len(), shape)
	}

	runes := make([]rune, 0, shape[0])
	for i := 0; i < shape[0]; i++ {
		row := t.Row(i)
		set := -1
		for k, v := range row {
			switch v {
			case 0:
			case 1:
				if set >= 0 {
					return "", fmt.Errorf("vectorize: row %d has multiple set bits", i)
				}
				set = k
			default:
				return "", fmt.Errorf("vectorize: row %d is not one-hot (value %v)", i, v)
			}
		}
		if set < 0 {
			break // padding
		}
		runes = append(runes, ab.Char(set))
	}
	return string(runes), nil
}
