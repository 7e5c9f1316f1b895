// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package seq2seq

import (
	"fmt"
	"strconv"

	"github.com/charseq-ml/charseq/internal/serialization"
	"github.com/charseq-ml/charseq/internal/vocab"
)

// Metadata keys a checkpoint stores alongside the weights. The
// alphabets travel with the model so a checkpoint is self-contained:
// loading one restores everything translation needs.
const (
	metaSourceAlphabet = "source_alphabet"
	metaTargetAlphabet = "target_alphabet"
	metaLatentDim      = "latent_dim"
	metaMaxSourceLen   = "max_source_len"
	metaMaxTargetLen   = "max_target_len"
)

const modelType = "Seq2Seq"

// Checkpoint bundles a trained model with the vocabulary and sequence
// bounds it was trained against.
type Checkpoint struct {
	Model          *Model
	SourceAlphabet *vocab.Alphabet
	TargetAlphabet *vocab.Alphabet
	MaxSourceLen   int
	MaxTargetLen   int
}

// SaveCheckpoint writes cp to path in .charseq format. extra metadata
// entries (epoch, loss, ...) are merged into the header.
func SaveCheckpoint(path string, cp *Checkpoint, extra map[string]string) error {
	metadata := map[string]string{
		metaSourceAlphabet: cp.SourceAlphabet.String(),
		metaTargetAlphabet: cp.TargetAlphabet.String(),
		metaLatentDim:      strconv.Itoa(cp.Model.Config().LatentDim),
		metaMaxSourceLen:   strconv.Itoa(cp.MaxSourceLen),
		metaMaxTargetLen:   strconv.Itoa(cp.MaxTargetLen),
	}
	for k, v := range extra {
		metadata[k] = v
	}
	return serialization.Save(path, modelType, cp.Model.StateDict(), metadata)
}

// LoadCheckpoint reads a checkpoint written by SaveCheckpoint.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	stateDict, header, err := serialization.Load(path)
	if err != nil {
		return nil, err
	}
	if header.ModelType != modelType {
		return nil, fmt.Errorf("seq2seq: unexpected model type %q", header.ModelType)
	}

	srcChars, ok := header.Metadata[metaSourceAlphabet]
	if !ok {
		return nil, fmt.Errorf("seq2seq: checkpoint missing %s metadata", metaSourceAlphabet)
	}
	tgtChars, ok := header.Metadata[metaTargetAlphabet]
	if !ok {
		return nil, fmt.Errorf("seq2seq: checkpoint missing %s metadata", metaTargetAlphabet)
	}

	latentDim, err := metaInt(header.Metadata, metaLatentDim)
	if err != nil {
		return nil, err
	}
	maxSrcLen, err := metaInt(header.Metadata, metaMaxSourceLen)
	if err != nil {
		return nil, err
	}
	maxTgtLen, err := metaInt(header.Metadata, metaMaxTargetLen)
	if err != nil {
		return nil, err
	}

	src := vocab.FromChars(srcChars)
	tgt := vocab.FromChars(tgtChars)

	model, err := New(Config{
		SourceAlphabetSize: src.Len(),
		TargetAlphabetSize: tgt.Len(),
		LatentDim:          latentDim,
	})
	if err != nil {
		return nil, err
	}
	if err := model.LoadStateDict(stateDict); err != nil {
		return nil, err
	}

	return &Checkpoint{
		Model:          model,
		SourceAlphabet: src,
		TargetAlphabet: tgt,
		MaxSourceLen:   maxSrcLen,
		MaxTargetLen:   maxTgtLen,
	}, nil
}

func metaInt(metadata map[string]string, key string) (int, error) {
	s, ok := metadata[key]
	if !ok {
		return 0, fmt.Errorf("seq2seq: checkpoint missing %s metadata", key)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("seq2seq: checkpoint metadata %s: %w", key, err)
	}
	return n, nil
}
