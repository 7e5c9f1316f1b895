// Copyright 2026 The Charseq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package serialization persists model parameters to stable storage.
//
// The .charseq file layout is:
//
//	4 bytes   magic "CSEQ"
//	4 bytes   format version (uint32, little-endian)
//	4 bytes   header length (uint32, little-endian)
//	N bytes   JSON header (tensor metadata, checksum, custom metadata)
//	...       tensor data, float32 little-endian, in header order
//
// Tensors are written sorted by name so identical state dictionaries
// produce byte-identical files. The header stores a SHA-256 checksum of
// the data section; Load verifies it before returning.
package serialization

import (
	"errors"
	"time"
)

// Format constants.
const (
	MagicBytes    = "CSEQ"
	FormatVersion = 1

	// maxHeaderSize bounds the JSON header to keep a corrupted length
	// field from triggering a huge allocation.
	maxHeaderSize = 16 << 20
)

// Common errors.
var (
	ErrInvalidMagic       = errors.New("serialization: invalid magic bytes")
	ErrUnsupportedVersion = errors.New("serialization: unsupported format version")
	ErrChecksumMismatch   = errors.New("serialization: checksum mismatch: file may be corrupted")
	ErrHeaderTooLarge     = errors.New("serialization: header exceeds maximum size")
)

// Header is the JSON header of a .charseq file.
type Header struct {
	FormatVersion  int               `json:"format_version"`
	CharseqVersion string            `json:"charseq_version"`
	ModelType      string            `json:"model_type"`
	CreatedAt      time.Time         `json:"created_at"`
	Tensors        []TensorMeta      `json:"tensors"`
	Metadata       map[string]string `json:"metadata"`
	Checksum       string            `json:"checksum"` // SHA-256 of the data section, hex
}

// TensorMeta describes one tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"` // Bytes from the start of the data section
	Size   int64  `json:"size"`   // Bytes
}
