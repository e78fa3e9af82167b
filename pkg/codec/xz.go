// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package codec

import (
	"bytes"
	"io/ioutil"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/errs"
)

// XzName is the name of the xz codec.
const XzName = "xz"

// Xz compresses content with LZMA2 inside the xz container.
type Xz struct{}

// Name implements Codec.
func (Xz) Name() string { return XzName }

// Extension implements Codec.
func (Xz) Extension() string { return ".xz" }

// Compress implements Codec.
func (Xz) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
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
func (Xz) Decompress(data []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, ErrCorruptArtifact.Wrap(err)
	}
	out, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, ErrCorruptArtifact.Wrap(err)
	}
	return nonNil(out), nil
}
