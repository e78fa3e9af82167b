// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package codec

import (
	"bytes"
	"io/ioutil"

	"github.com/klauspost/compress/gzip"
	"github.com/zeebo/errs"
)

// GzipName is the name of the gzip codec.
const GzipName = "gzip"

// Gzip compresses content into the gzip container format.
//
// Level zero selects the default compression level.
type Gzip struct {
	Level int
}

// Name implements Codec.
func (Gzip) Name() string { return GzipName }

// Extension implements Codec.
func (Gzip) Extension() string { return ".gz" }

// Compress implements Codec.
func (codec Gzip) Compress(data []byte) ([]byte, error) {
	level := codec.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}

	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, Error.Wrap(errs.Combine(err, w.Close()))
	}
	if err := w.Close(); err != nil {
		return nil, Error.Wrap(err)
	}
	return buf.Bytes(), nil
}

// Decompress implements Codec.
func (Gzip) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, ErrCorruptArtifact.Wrap(err)
	}

	out, err := ioutil.ReadAll(r)
	if err != nil {
		// Close reports the same stored read error
		_ = r.Close()
		return nil, ErrCorruptArtifact.Wrap(err)
	}
	if err := r.Close(); err != nil {
		return nil, ErrCorruptArtifact.Wrap(err)
	}
	return nonNil(out), nil
}
