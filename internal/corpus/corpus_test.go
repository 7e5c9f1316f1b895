// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package corpus

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	input := "Go.\tVa !\nHi.\tSalut !\nRun!\tCours !\n"

	pairs, err := Read(strings.NewReader(input), 0)
	require.NoError(t, err)
	require.Len(t, pairs, 3)

	assert.Equal(t, "Go.", pairs[0].Source)
	assert.Equal(t, "\tVa !\n", pairs[0].Target)
	assert.Equal(t, "\tSalut !\n", pairs[1].Target)
}

func TestReadSamplingCap(t *testing.T) {
	input := "a\tb\nc\td\ne\tf\n"

	pairs, err := Read(strings.NewReader(input), 2)
	require.NoError(t, err)
	assert.Len(t, pairs, 2)
	assert.Equal(t, "c", pairs[1].Source)
}

func TestReadIgnoresExtraColumns(t *testing.T) {
	// Tatoeba exports carry a third attribution column.
	input := "Go.\tVa !\tCC-BY 2.0 (France)\n"

	pairs, err := Read(strings.NewReader(input), 0)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "\tVa !\n", pairs[0].Target)
}

func TestReadIgnoresBlankLines(t *testing.T) {
	input := "Go.\tVa !\n\n"

	pairs, err := Read(strings.NewReader(input), 0)
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
}

func TestReadMalformedLine(t *testing.T) {
	input := "Go.\tVa !\nno separator here\n"

	_, err := Read(strings.NewReader(input), 0)
	require.Error(t, err)

	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 2, fe.Line)
	assert.Equal(t, "no separator here", fe.Text)
}

func TestReadEmpty(t *testing.T) {
	_, err := Read(strings.NewReader(""), 0)
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	_, err = Read(strings.NewReader("\n\n"), 0)
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestWrap(t *testing.T) {
	assert.Equal(t, "\tVa !\n", Wrap("Va !"))
	// Wrapping is mechanical: whatever the raw text contains is preserved.
	assert.Equal(t, "\tVa !\n\n", Wrap("Va !\n"))
}

func TestSourcesTargets(t *testing.T) {
	pairs := []Pair{{Source: "a", Target: "\tb\n"}, {Source: "c", Target: "\td\n"}}
	assert.Equal(t, []string{"a", "c"}, Sources(pairs))
	assert.Equal(t, []string{"\tb\n", "\td\n"}, Targets(pairs))
}
