// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package codec implements the reversible content transforms applied to
// document bytes before they are written to the object store.
package codec

import (
	"sort"

	"github.com/zeebo/errs"
)

var (
	// Error is the default error class for codecs.
	Error = errs.Class("codec")

	// ErrCorruptArtifact is returned when stored bytes cannot be restored.
	ErrCorruptArtifact = errs.Class("corrupt artifact")
)

// Default is the name of the codec used for new uploads when none is configured.
const Default = GzipName

// Codec is a stateless, lossless transform between original and stored bytes.
//
// For every input x, Decompress(Compress(x)) must equal x byte for byte.
type Codec interface {
	// Name identifies the codec in document metadata.
	Name() string
	// Extension is appended to storage keys written with this codec.
	Extension() string
	// Compress transforms the original bytes into the stored form.
	Compress(data []byte) ([]byte, error)
	// Decompress restores the original bytes. Malformed input fails with ErrCorruptArtifact.
	Decompress(data []byte) ([]byte, error)
}

var registry = map[string]Codec{
	GzipName: Gzip{},
	ZstdName: Zstd{},
	XzName:   Xz{},
}

// ByName returns the codec registered under name.
func ByName(name string) (Codec, error) {
	codec, ok := registry[name]
	if !ok {
		return nil, Error.New("unknown codec %q", name)
	}
	return codec, nil
}

// Names returns the names of all available codecs.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// nonNil ensures a successful decompression never returns a nil slice.
func nonNil(data []byte) []byte {
	if data == nil {
		return []byte{}
	}
	return data
}
