// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package codec

import (
	"github.com/klauspost/compress/zstd"
)

// ZstdName is the name of the zstd codec.
const ZstdName = "zstd"

// the encoder and decoder are safe for concurrent EncodeAll and DecodeAll calls.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
)

// Zstd compresses content as zstd frames with content checksums.
type Zstd struct{}

// Name implements Codec.
func (Zstd) Name() string { return ZstdName }

// Extension implements Codec.
func (Zstd) Extension() string { return ".zst" }

// Compress implements Codec.
func (Zstd) Compress(data []byte) ([]byte, error) {
	return zstdEncoder.EncodeAll(data, nil), nil
}

// Decompress implements Codec.
func (Zstd) Decompress(data []byte) ([]byte, error) {
	out, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, ErrCorruptArtifact.Wrap(err)
	}
	return nonNil(out), nil
}
