// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package translate is the public API of charseq: training a
// character-level translation model from a tab-separated corpus and
// running greedy autoregressive translation with it.
//
// Example:
//
//	pairs, _ := translate.LoadCorpus("fra.txt", 10000)
//	cfg := translate.DefaultTrainConfig()
//	cfg.Epochs = 50
//	model, _, _ := translate.Train(pairs, cfg)
//	res, _ := model.Translate("Go.")
//	fmt.Println(res.Text)
package translate

import (
	"io"

	"github.com/charseq-ml/charseq/internal/corpus"
	"github.com/charseq-ml/charseq/internal/decode"
	"github.com/charseq-ml/charseq/internal/seq2seq"
	"github.com/charseq-ml/charseq/internal/train"
)

// Pair is one source/target corpus entry. Target carries the START and
// STOP markers.
type Pair = corpus.Pair

// Result is a finished translation: the decoded text and why decoding
// stopped.
type Result = decode.Result

// StepResult is one decoded character from a streaming translation.
type StepResult = decode.StepResult

// TrainConfig holds the training hyperparameters.
type TrainConfig = train.Config

// Stop reasons reported in Result.Reason.
const (
	ReasonStop      = decode.ReasonStop
	ReasonMaxLength = decode.ReasonMaxLength
)

// LoadCorpus reads up to maxPairs tab-separated pairs from path and
// wraps each target with the START and STOP markers. maxPairs <= 0
// loads the whole file.
func LoadCorpus(path string, maxPairs int) ([]Pair, error) {
	return corpus.Load(path, maxPairs)
}

// ReadCorpus is LoadCorpus over an arbitrary reader.
func ReadCorpus(r io.Reader, maxPairs int) ([]Pair, error) {
	return corpus.Read(r, maxPairs)
}

func DefaultTrainConfig() TrainConfig {
	return train.DefaultConfig()
}

// LoadTrainConfig reads a YAML training config, applying it over the
// defaults.
func LoadTrainConfig(path string) (TrainConfig, error) {
	return train.LoadConfig(path)
}

// Translator runs inference with a trained model.
type Translator struct {
	cp  *seq2seq.Checkpoint
	dec *decode.Decoder
}

// Train fits a fresh model on pairs and returns a ready Translator for
// it. Progress is logged to w; pass nil to log to stdout. When
// cfg.CheckpointPath is set the trained model is also saved there.
func Train(pairs []Pair, cfg TrainConfig, w io.Writer) (*Translator, *train.History, error) {
	tr, err := train.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	if w != nil {
		tr.SetOutput(w)
	}
	cp, history, err := tr.Fit(pairs)
	if err != nil {
		return nil, nil, err
	}
	t, err := fromCheckpoint(cp)
	if err != nil {
		return nil, nil, err
	}
	return t, history, nil
}

// Load restores a Translator from a checkpoint file written by Train
// or Save.
func Load(path string) (*Translator, error) {
	cp, err := seq2seq.LoadCheckpoint(path)
	if err != nil {
		return nil, err
	}
	return fromCheckpoint(cp)
}

func fromCheckpoint(cp *seq2seq.Checkpoint) (*Translator, error) {
	dec, err := decode.New(cp.Model, cp.SourceAlphabet, cp.TargetAlphabet, cp.MaxTargetLen)
	if err != nil {
		return nil, err
	}
	return &Translator{cp: cp, dec: dec}, nil
}

// Translate greedily decodes a translation of text. Every character of
// text must be in the model's source alphabet.
func (t *Translator) Translate(text string) (Result, error) {
	return t.dec.Decode(text)
}

// Stream decodes text and delivers one StepResult per character. The
// channel is closed when decoding finishes.
func (t *Translator) Stream(text string) (<-chan StepResult, error) {
	return t.dec.DecodeStream(text)
}

// Save writes the model checkpoint to path.
func (t *Translator) Save(path string) error {
	return seq2seq.SaveCheckpoint(path, t.cp, nil)
}

// SourceAlphabet returns the model's source characters in index order.
func (t *Translator) SourceAlphabet() string {
	return t.cp.SourceAlphabet.String()
}

// TargetAlphabet returns the model's target characters in index order.
func (t *Translator) TargetAlphabet() string {
	return t.cp.TargetAlphabet.String()
}

// MaxTargetLen is the decoding length cap, taken from the longest
// wrapped target seen in training.
func (t *Translator) MaxTargetLen() int {
	return t.cp.MaxTargetLen
}
