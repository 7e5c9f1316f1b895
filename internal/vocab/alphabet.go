// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package vocab builds character alphabets for one side of a parallel
// corpus.
//
// An Alphabet is the ordered, deduplicated set of characters appearing
// in a collection of texts, with a bijective mapping between characters
// and dense zero-based indices. Characters are Unicode code points, not
// bytes. Sorting makes the index assignment reproducible across runs.
//
// Source and target alphabets are built independently and never merged.
package vocab

import (
	"errors"
	"fmt"
	"sort"
)

// ErrEmptyInput is returned when an alphabet is built from no texts.
var ErrEmptyInput = errors.New("vocab: empty input")

// UnknownCharError reports a character that is not part of an alphabet.
// There is no fallback/UNK token: encoding a text containing characters
// the alphabet has never seen is an error.
type UnknownCharError struct {
	Char rune
}

// Error implements the error interface.
func (e *UnknownCharError) Error() string {
	return fmt.Sprintf("vocab: unknown character %q", e.Char)
}

// Alphabet is an ordered character set with dense index mappings.
type Alphabet struct {
	chars []rune
	index map[rune]int
}

// Build scans texts and returns their alphabet: every distinct character,
// sorted, with contiguous indices starting at zero.
func Build(texts []string) (*Alphabet, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	seen := make(map[rune]struct{})
	for _, text := range texts {
		for _, ch := range text {
			seen[ch] = struct{}{}
		}
	}

	chars := make([]rune, 0, len(seen))
	for ch := range seen {
		chars = append(chars, ch)
	}
	sort.Slice(chars, func(i, j int) bool { return chars[i] < chars[j] })

	return fromSorted(chars), nil
}

// FromChars reconstructs an alphabet from its character string, as
// produced by String. Used when loading a model checkpoint.
func FromChars(s string) *Alphabet {
	chars := []rune(s)
	sort.Slice(chars, func(i, j int) bool { return chars[i] < chars[j] })
	return fromSorted(chars)
}

func fromSorted(chars []rune) *Alphabet {
	index := make(map[rune]int, len(chars))
	for i, ch := range chars {
		index[ch] = i
	}
	return &Alphabet{chars: chars, index: index}
}

// Len returns the alphabet size.
func (a *Alphabet) Len() int {
	return len(a.chars)
}

// Index returns the index of ch, or false if ch is not in the alphabet.
func (a *Alphabet) Index(ch rune) (int, bool) {
	i, ok := a.index[ch]
	return i, ok
}

// Contains reports whether ch is in the alphabet.
func (a *Alphabet) Contains(ch rune) bool {
	_, ok := a.index[ch]
	return ok
}

// Char returns the character at index i.
func (a *Alphabet) Char(i int) rune {
	return a.chars[i]
}

// Chars returns a copy of the ordered character list.
func (a *Alphabet) Chars() []rune {
	out := make([]rune, len(a.chars))
	copy(out, a.chars)
	return out
}

// String returns the alphabet's characters concatenated in index order.
// FromChars inverts it.
func (a *Alphabet) String() string {
	return string(a.chars)
}

// OneHot returns the one-hot vector of ch over the alphabet.
func (a *Alphabet) OneHot(ch rune) ([]float32, error) {
	i, ok := a.index[ch]
	if !ok {
		return nil, &UnknownCharError{Char: ch}
	}
	v := make([]float32, len(a.chars))
	v[i] = 1
	return v, nil
}
