// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package serialization

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/charseq-ml/charseq/internal/tensor"
)

// Load reads a .charseq file and returns its state dictionary and header.
func Load(path string) (map[string]*tensor.Tensor, *Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("serialization: open %s: %w", path, err)
	}
	defer f.Close()

	magic := make([]byte, len(MagicBytes))
	if _, err := io.ReadFull(f, magic); err != nil {
		return nil, nil, fmt.Errorf("serialization: read magic: %w", err)
	}
	if string(magic) != MagicBytes {
		return nil, nil, ErrInvalidMagic
	}

	var version uint32
	if err := binary.Read(f, binary.LittleEndian, &version); err != nil {
		return nil, nil, fmt.Errorf("serialization: read version: %w", err)
	}
	if version != FormatVersion {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	var headerLen uint32
	if err := binary.Read(f, binary.LittleEndian, &headerLen); err != nil {
		return nil, nil, fmt.Errorf("serialization: read header length: %w", err)
	}
	if headerLen > maxHeaderSize {
		return nil, nil, ErrHeaderTooLarge
	}

	headerJSON := make([]byte, headerLen)
	if _, err := io.ReadFull(f, headerJSON); err != nil {
		return nil, nil, fmt.Errorf("serialization: read header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, nil, fmt.Errorf("serialization: parse header: %w", err)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, fmt.Errorf("serialization: read tensor data: %w", err)
	}

	checksum := sha256.Sum256(data)
	if hex.EncodeToString(checksum[:]) != header.Checksum {
		return nil, nil, ErrChecksumMismatch
	}

	stateDict := make(map[string]*tensor.Tensor, len(header.Tensors))
	for _, meta := range header.Tensors {
		if meta.Offset < 0 || meta.Size < 0 || meta.Offset+meta.Size > int64(len(data)) {
			return nil, nil, fmt.Errorf("serialization: tensor %q extends beyond data section", meta.Name)
		}
		shape := tensor.Shape(meta.Shape)
		if int64(shape.NumElements()*4) != meta.Size {
			return nil, nil, fmt.Errorf("serialization: tensor %q shape %v does not match size %d",
				meta.Name, shape, meta.Size)
		}

		t, err := tensor.New(shape)
		if err != nil {
			return nil, nil, fmt.Errorf("serialization: tensor %q: %w", meta.Name, err)
		}
		raw := data[meta.Offset : meta.Offset+meta.Size]
		dst := t.Data()
		for i := range dst {
			bits := binary.LittleEndian.Uint32(raw[i*4:])
			dst[i] = math.Float32frombits(bits)
		}
		stateDict[meta.Name] = t
	}

	return stateDict, &header, nil
}
