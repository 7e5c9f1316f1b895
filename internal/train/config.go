// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package train

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds training hyperparameters. The zero value is not usable;
// start from DefaultConfig and override.
type Config struct {
	BatchSize       int     `yaml:"batch_size"`
	Epochs          int     `yaml:"epochs"`
	LatentDim       int     `yaml:"latent_dim"`
	LearningRate    float32 `yaml:"learning_rate"`
	Optimizer       string  `yaml:"optimizer"` // "rmsprop", "adam" or "sgd"
	ValidationSplit float64 `yaml:"validation_split"`
	MaxSamples      int     `yaml:"max_samples"` // 0 means the whole corpus
	Seed            int64   `yaml:"seed"`
	LogEvery        int     `yaml:"log_every"`    // batches between progress lines
	SampleEvery     int     `yaml:"sample_every"` // epochs between sample decodes, 0 disables
	CheckpointPath  string  `yaml:"checkpoint_path"`
}

func DefaultConfig() Config {
	return Config{
		BatchSize:       64,
		Epochs:          100,
		LatentDim:       256,
		LearningRate:    0.001,
		Optimizer:       "rmsprop",
		ValidationSplit: 0.2,
		MaxSamples:      10000,
		Seed:            1337,
		LogEvery:        20,
		SampleEvery:     10,
		CheckpointPath:  "s2s_model.cseq",
	}
}

// LoadConfig reads a YAML config file and applies it on top of the
// defaults, so partial files are fine.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be >= 1, got %d", c.BatchSize)
	}
	if c.Epochs < 1 {
		return fmt.Errorf("epochs must be >= 1, got %d", c.Epochs)
	}
	if c.LatentDim < 1 {
		return fmt.Errorf("latent_dim must be >= 1, got %d", c.LatentDim)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be > 0, got %g", c.LearningRate)
	}
	if c.ValidationSplit < 0 || c.ValidationSplit >= 1 {
		return fmt.Errorf("validation_split must be in [0, 1), got %g", c.ValidationSplit)
	}
	switch c.Optimizer {
	case "rmsprop", "adam", "sgd":
	default:
		return fmt.Errorf("unknown optimizer %q", c.Optimizer)
	}
	return nil
}
