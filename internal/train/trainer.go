// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package train runs the teacher-forced training loop for the
// character translator: corpus to one-hot batches, minibatch gradient
// descent, validation split and checkpointing.
package train

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/charseq-ml/charseq/internal/corpus"
	"github.com/charseq-ml/charseq/internal/decode"
	"github.com/charseq-ml/charseq/internal/nn"
	"github.com/charseq-ml/charseq/internal/optim"
	"github.com/charseq-ml/charseq/internal/seq2seq"
	"github.com/charseq-ml/charseq/internal/vectorize"
	"github.com/charseq-ml/charseq/internal/vocab"
)

// History records the per-epoch loss curve. ValLoss is empty when
// ValidationSplit is 0.
type History struct {
	TrainLoss []float64
	ValLoss   []float64
}

// Trainer drives training end to end: it builds the alphabets and
// tensors from the corpus, fits the model and saves a checkpoint.
type Trainer struct {
	cfg Config
	out io.Writer
}

func New(cfg Config) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Trainer{cfg: cfg, out: os.Stdout}, nil
}

// SetOutput redirects progress logging, mainly for tests.
func (t *Trainer) SetOutput(w io.Writer) {
	t.out = w
}

func (t *Trainer) logf(format string, args ...any) {
	fmt.Fprintf(t.out, format, args...)
}

// Fit trains a fresh model on the given pairs and returns the trained
// checkpoint together with the loss history. When CheckpointPath is
// set the checkpoint is also written to disk.
func (t *Trainer) Fit(pairs []corpus.Pair) (*seq2seq.Checkpoint, *History, error) {
	cfg := t.cfg

	if len(pairs) == 0 {
		return nil, nil, corpus.ErrEmptyCorpus
	}
	if cfg.MaxSamples > 0 && len(pairs) > cfg.MaxSamples {
		pairs = pairs[:cfg.MaxSamples]
	}

	srcAb, err := vocab.Build(corpus.Sources(pairs))
	if err != nil {
		return nil, nil, err
	}
	tgtAb, err := vocab.Build(corpus.Targets(pairs))
	if err != nil {
		return nil, nil, err
	}

	batch, err := vectorize.Build(pairs, srcAb, tgtAb)
	if err != nil {
		return nil, nil, err
	}

	model, err := seq2seq.New(seq2seq.Config{
		SourceAlphabetSize: srcAb.Len(),
		TargetAlphabetSize: tgtAb.Len(),
		LatentDim:          cfg.LatentDim,
		Seed:               cfg.Seed,
	})
	if err != nil {
		return nil, nil, err
	}
	opt := t.newOptimizer(model.Parameters())

	rng := rand.New(rand.NewSource(cfg.Seed))
	perm := rng.Perm(len(pairs))
	valN := int(float64(len(pairs)) * cfg.ValidationSplit)
	valIdx := perm[:valN]
	trainIdx := perm[valN:]

	t.logf("Corpus: %d pairs (train: %d, val: %d)\n", len(pairs), len(trainIdx), len(valIdx))
	t.logf("Alphabets: %d source chars, %d target chars\n", srcAb.Len(), tgtAb.Len())
	t.logf("Sequences: max source %d, max target %d\n", batch.MaxSourceLen, batch.MaxTargetLen)
	t.logf("Config: batch=%d, latent=%d, lr=%g, optimizer=%s, epochs=%d\n\n",
		cfg.BatchSize, cfg.LatentDim, cfg.LearningRate, cfg.Optimizer, cfg.Epochs)

	sampler, err := decode.New(model, srcAb, tgtAb, batch.MaxTargetLen)
	if err != nil {
		return nil, nil, err
	}

	history := &History{}
	totalStart := time.Now()
	smoothLoss := float64(0)

	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		epochStart := time.Now()
		rng.Shuffle(len(trainIdx), func(i, j int) {
			trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i]
		})

		epochLoss := float64(0)
		batches := 0
		for start := 0; start < len(trainIdx); start += cfg.BatchSize {
			end := min(start+cfg.BatchSize, len(trainIdx))
			mb := batch.Subset(trainIdx[start:end])

			opt.ZeroGrad()
			logits, cache, err := model.Forward(mb.EncoderInput, mb.DecoderInput)
			if err != nil {
				return nil, nil, fmt.Errorf("epoch %d forward: %w", epoch, err)
			}
			loss, dlogits, err := nn.SoftmaxCrossEntropy(logits, mb.DecoderTarget)
			if err != nil {
				return nil, nil, fmt.Errorf("epoch %d loss: %w", epoch, err)
			}
			if err := model.Backward(cache, dlogits); err != nil {
				return nil, nil, fmt.Errorf("epoch %d backward: %w", epoch, err)
			}
			opt.Step()

			lossVal := float64(loss)
			epochLoss += lossVal
			batches++
			if smoothLoss == 0 {
				smoothLoss = lossVal
			} else {
				smoothLoss = 0.95*smoothLoss + 0.05*lossVal
			}

			if cfg.LogEvery > 0 && batches%cfg.LogEvery == 0 {
				t.logf("epoch %3d batch %4d | loss %.4f (smooth %.4f)\n",
					epoch, batches, lossVal, smoothLoss)
			}
		}
		epochLoss /= float64(batches)
		history.TrainLoss = append(history.TrainLoss, epochLoss)

		line := fmt.Sprintf("epoch %3d | train loss %.4f", epoch, epochLoss)
		if len(valIdx) > 0 {
			valLoss, err := t.evaluate(model, batch, valIdx)
			if err != nil {
				return nil, nil, fmt.Errorf("epoch %d validation: %w", epoch, err)
			}
			history.ValLoss = append(history.ValLoss, valLoss)
			line += fmt.Sprintf(" | val loss %.4f", valLoss)
		}
		t.logf("%s | %v\n", line, time.Since(epochStart).Round(time.Millisecond))

		if cfg.SampleEvery > 0 && epoch%cfg.SampleEvery == 0 {
			src := pairs[trainIdx[0]].Source
			if res, err := sampler.Decode(src); err == nil {
				t.logf("         -> %q => %q (%s)\n", src, res.Text, res.Reason)
			}
		}
	}

	t.logf("\nTraining complete in %v\n", time.Since(totalStart).Round(time.Millisecond))

	cp := &seq2seq.Checkpoint{
		Model:          model,
		SourceAlphabet: srcAb,
		TargetAlphabet: tgtAb,
		MaxSourceLen:   batch.MaxSourceLen,
		MaxTargetLen:   batch.MaxTargetLen,
	}
	if cfg.CheckpointPath != "" {
		extra := map[string]string{
			"epochs":     strconv.Itoa(cfg.Epochs),
			"batch_size": strconv.Itoa(cfg.BatchSize),
			"optimizer":  cfg.Optimizer,
		}
		if err := seq2seq.SaveCheckpoint(cfg.CheckpointPath, cp, extra); err != nil {
			return nil, nil, err
		}
		t.logf("Checkpoint saved to %s\n", cfg.CheckpointPath)
	}
	return cp, history, nil
}

// evaluate runs forward-only passes over the validation subset and
// returns the mean loss across its minibatches.
func (t *Trainer) evaluate(model *seq2seq.Model, batch *vectorize.Batch, valIdx []int) (float64, error) {
	total := float64(0)
	batches := 0
	for start := 0; start < len(valIdx); start += t.cfg.BatchSize {
		end := min(start+t.cfg.BatchSize, len(valIdx))
		mb := batch.Subset(valIdx[start:end])

		logits, _, err := model.Forward(mb.EncoderInput, mb.DecoderInput)
		if err != nil {
			return 0, err
		}
		loss, _, err := nn.SoftmaxCrossEntropy(logits, mb.DecoderTarget)
		if err != nil {
			return 0, err
		}
		total += float64(loss)
		batches++
	}
	return total / float64(batches), nil
}

func (t *Trainer) newOptimizer(params []*nn.Parameter) optim.Optimizer {
	switch t.cfg.Optimizer {
	case "adam":
		return optim.NewAdam(params, optim.AdamConfig{LR: t.cfg.LearningRate})
	case "sgd":
		return optim.NewSGD(params, optim.SGDConfig{LR: t.cfg.LearningRate})
	default:
		return optim.NewRMSprop(params, optim.RMSpropConfig{LR: t.cfg.LearningRate})
	}
}
