// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package vocab

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSortedAndDeduplicated(t *testing.T) {
	ab, err := Build([]string{"cba", "abc", "bb"})
	require.NoError(t, err)

	assert.Equal(t, 3, ab.Len())
	assert.Equal(t, []rune{'a', 'b', 'c'}, ab.Chars())

	// Indices are dense, zero-based, and bijective.
	for i, ch := range ab.Chars() {
		got, ok := ab.Index(ch)
		require.True(t, ok)
		assert.Equal(t, i, got)
		assert.Equal(t, ch, ab.Char(i))
	}
}

func TestBuildEmptyInput(t *testing.T) {
	_, err := Build(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestBuildHandlesMarkersAndUnicode(t *testing.T) {
	ab, err := Build([]string{"\tVa !\n", "\tété\n"})
	require.NoError(t, err)

	// Sorted by code point: '\t' < '\n' < ' ' < '!' < 'V' < 'a' < 't' < 'é'
	assert.Equal(t, []rune{'\t', '\n', ' ', '!', 'V', 'a', 't', 'é'}, ab.Chars())

	i, ok := ab.Index('é')
	require.True(t, ok)
	assert.Equal(t, ab.Len()-1, i)
}

func TestIndexUnknown(t *testing.T) {
	ab, err := Build([]string{"ab"})
	require.NoError(t, err)

	_, ok := ab.Index('z')
	assert.False(t, ok)
	assert.False(t, ab.Contains('z'))
}

func TestOneHot(t *testing.T) {
	ab, err := Build([]string{"abc"})
	require.NoError(t, err)

	v, err := ab.OneHot('b')
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, v)

	_, err = ab.OneHot('z')
	require.Error(t, err)
	var uce *UnknownCharError
	require.True(t, errors.As(err, &uce))
	assert.Equal(t, 'z', uce.Char)
}

func TestStringRoundTrip(t *testing.T) {
	ab, err := Build([]string{"hello world"})
	require.NoError(t, err)

	restored := FromChars(ab.String())
	assert.Equal(t, ab.Chars(), restored.Chars())
	assert.Equal(t, ab.Len(), restored.Len())
}
