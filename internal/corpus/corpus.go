// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package corpus reads parallel translation corpora.
//
// The expected file format is one sentence pair per line, tab-separated:
//
//	<source_text>\t<target_text>
//
// Lines may carry additional tab-separated columns (Tatoeba exports
// append attribution); only the first two fields are used. Blank lines
// are ignored, including the trailing blank line most exports end with.
package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Sequence delimiters for the target side. Training targets are wrapped
// as StartMarker + text + StopMarker; the decoder emits characters until
// it selects StopMarker.
const (
	StartMarker = '\t'
	StopMarker  = '\n'
)

// ErrEmptyCorpus is returned when a corpus contains no sentence pairs.
var ErrEmptyCorpus = errors.New("corpus: no sentence pairs")

// FormatError reports a corpus line that does not contain a tab separator.
type FormatError struct {
	Line int    // 1-based line number
	Text string // The offending line
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("corpus: line %d: missing tab separator in %q", e.Line, e.Text)
}

// Pair is a single sentence pair. Target is already wrapped with the
// START and STOP markers.
type Pair struct {
	Source string
	Target string
}

// Wrap surrounds a raw target text with the START and STOP markers.
func Wrap(target string) string {
	return string(StartMarker) + target + string(StopMarker)
}

// Load reads up to maxPairs sentence pairs from the file at path.
// maxPairs <= 0 means no cap.
func Load(path string, maxPairs int) ([]Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: open %s: %w", path, err)
	}
	defer f.Close()

	pairs, err := Read(f, maxPairs)
	if err != nil {
		return nil, fmt.Errorf("corpus: read %s: %w", path, err)
	}
	return pairs, nil
}

// Read reads up to maxPairs sentence pairs from r.
// maxPairs <= 0 means no cap.
func Read(r io.Reader, maxPairs int) ([]Pair, error) {
	var pairs []Pair
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, &FormatError{Line: lineNo, Text: line}
		}

		pairs = append(pairs, Pair{
			Source: fields[0],
			Target: Wrap(fields[1]),
		})
		if maxPairs > 0 && len(pairs) >= maxPairs {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	if len(pairs) == 0 {
		return nil, ErrEmptyCorpus
	}
	return pairs, nil
}

// Sources returns the source texts of pairs, in order.
func Sources(pairs []Pair) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.Source
	}
	return out
}

// Targets returns the (wrapped) target texts of pairs, in order.
func Targets(pairs []Pair) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.Target
	}
	return out
}
