// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package serialization

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/charseq-ml/charseq/internal/tensor"
)

const charseqVersion = "0.1.0"

// Save writes a state dictionary to path in .charseq format.
//
// The metadata map and modelType are stored verbatim in the header;
// Load returns them unchanged.
func Save(path, modelType string, stateDict map[string]*tensor.Tensor, metadata map[string]string) error {
	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		names = append(names, name)
	}
	sort.Strings(names)

	// Assemble the data section and tensor metadata.
	var data bytes.Buffer
	metas := make([]TensorMeta, 0, len(names))
	for _, name := range names {
		t := stateDict[name]
		size := int64(t.NumElements() * 4)
		metas = append(metas, TensorMeta{
			Name:   name,
			Shape:  []int(t.Shape()),
			Offset: int64(data.Len()),
			Size:   size,
		})
		if err := binary.Write(&data, binary.LittleEndian, t.Data()); err != nil {
			return fmt.Errorf("serialization: write tensor %q: %w", name, err)
		}
	}

	checksum := sha256.Sum256(data.Bytes())
	if metadata == nil {
		metadata = make(map[string]string)
	}
	header := Header{
		FormatVersion:  FormatVersion,
		CharseqVersion: charseqVersion,
		ModelType:      modelType,
		CreatedAt:      time.Now().UTC(),
		Tensors:        metas,
		Metadata:       metadata,
		Checksum:       hex.EncodeToString(checksum[:]),
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("serialization: marshal header: %w", err)
	}
	if len(headerJSON) > maxHeaderSize {
		return ErrHeaderTooLarge
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("serialization: create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(MagicBytes); err != nil {
		return fmt.Errorf("serialization: write magic: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return fmt.Errorf("serialization: write version: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(headerJSON))); err != nil {
		return fmt.Errorf("serialization: write header length: %w", err)
	}
	if _, err := f.Write(headerJSON); err != nil {
		return fmt.Errorf("serialization: write header: %w", err)
	}
	if _, err := f.Write(data.Bytes()); err != nil {
		return fmt.Errorf("serialization: write tensor data: %w", err)
	}
	return f.Close()
}
