// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package main provides the charseq CLI.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charseq-ml/charseq/translate"
)

const version = "v0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(os.Args[2:])
	case "translate":
		err = runTranslate(os.Args[2:])
	case "version":
		fmt.Printf("charseq %s\n", version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("charseq - character-level sequence-to-sequence translation")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  train      Train a model on a tab-separated corpus")
	fmt.Println("  translate  Translate text with a trained model")
	fmt.Println("  version    Show version")
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	corpusPath := fs.String("corpus", "", "path to the tab-separated corpus (required)")
	configPath := fs.String("config", "", "optional YAML training config")
	out := fs.String("out", "", "checkpoint output path (overrides config)")
	epochs := fs.Int("epochs", 0, "number of epochs (overrides config)")
	samples := fs.Int("samples", 0, "max corpus pairs to use (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *corpusPath == "" {
		fs.Usage()
		return fmt.Errorf("-corpus is required")
	}

	cfg := translate.DefaultTrainConfig()
	if *configPath != "" {
		var err error
		cfg, err = translate.LoadTrainConfig(*configPath)
		if err != nil {
			return err
		}
	}
	if *out != "" {
		cfg.CheckpointPath = *out
	}
	if *epochs > 0 {
		cfg.Epochs = *epochs
	}
	if *samples > 0 {
		cfg.MaxSamples = *samples
	}

	pairs, err := translate.LoadCorpus(*corpusPath, cfg.MaxSamples)
	if err != nil {
		return err
	}
	_, _, err = translate.Train(pairs, cfg, os.Stdout)
	return err
}

func runTranslate(args []string) error {
	fs := flag.NewFlagSet("translate", flag.ExitOnError)
	modelPath := fs.String("model", "", "path to a trained checkpoint (required)")
	text := fs.String("text", "", "text to translate; omit to read lines from stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *modelPath == "" {
		fs.Usage()
		return fmt.Errorf("-model is required")
	}

	tr, err := translate.Load(*modelPath)
	if err != nil {
		return err
	}

	if *text != "" {
		return translateOne(tr, *text)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := translateOne(tr, line); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
	}
	return scanner.Err()
}

func translateOne(tr *translate.Translator, text string) error {
	res, err := tr.Translate(text)
	if err != nil {
		return err
	}
	fmt.Println(strings.TrimRight(res.Text, "\n"))
	return nil
}
