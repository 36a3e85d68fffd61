// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/pond-foundation/pond/lib/metadata"
)

// blobHeaderSize is the fixed header preceding a blob payload: one
// compression tag byte and the big-endian uncompressed size.
const blobHeaderSize = 1 + 8

// BlobCodec stores opaque byte payloads ([]byte). The stored file is
// self-describing: a one-byte compression tag and the uncompressed
// size precede the (possibly compressed) payload, so a reader needs
// no out-of-band information to recover the bytes.
//
// The format has nowhere to embed metadata; user metadata lives only
// in the version manifest.
//
// Writer options:
//
//	"compression": "none" (default), "lz4", or "zstd".
//
// Reader options: none.
type BlobCodec struct{}

// Name returns "blob".
func (BlobCodec) Name() string { return "blob" }

// Kind returns [KindBlob].
func (BlobCodec) Kind() string { return KindBlob }

// Filename appends the ".bin" extension.
func (BlobCodec) Filename(basename string) string { return basename + ".bin" }

// New wraps a []byte payload.
func (c BlobCodec) New(data any, meta metadata.Section) (Artifact, error) {
	payload, ok := data.([]byte)
	if !ok {
		return nil, fmt.Errorf("blob codec: data is %T, want []byte", data)
	}
	return &blobArtifact{
		payload:     payload,
		meta:        meta,
		contentHash: ContentHash(payload),
	}, nil
}

// ReadBytes reads back a blob payload, decompressing as directed by
// the stored tag.
func (c BlobCodec) ReadBytes(r io.Reader, meta metadata.Section, opts Options) (Artifact, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("blob codec: %w", err)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("blob codec: reading payload: %w", err)
	}
	if len(raw) < blobHeaderSize {
		return nil, fmt.Errorf("blob codec: truncated header (%d bytes)", len(raw))
	}

	tag := compressionTag(raw[0])
	uncompressedSize := binary.BigEndian.Uint64(raw[1:blobHeaderSize])
	if uncompressedSize > math.MaxInt {
		return nil, fmt.Errorf("blob codec: corrupt header: uncompressed size %d", uncompressedSize)
	}
	payload, err := decompress(raw[blobHeaderSize:], tag, int(uncompressedSize))
	if err != nil {
		return nil, fmt.Errorf("blob codec: %w", err)
	}

	return &blobArtifact{payload: payload, meta: meta}, nil
}

type blobArtifact struct {
	payload []byte
	meta    metadata.Section

	// contentHash is set only on fresh artifacts; read-back
	// artifacts reuse the hash in the manifest.
	contentHash string
}

func (a *blobArtifact) Data() any { return a.payload }

func (a *blobArtifact) Metadata() metadata.Section { return a.meta }

func (a *blobArtifact) WriteBytes(w io.Writer, opts Options) error {
	if err := opts.validate("compression"); err != nil {
		return fmt.Errorf("blob codec: %w", err)
	}
	compressionName, err := opts.stringOption("compression", "none")
	if err != nil {
		return fmt.Errorf("blob codec: %w", err)
	}
	requestedTag, err := parseCompressionTag(compressionName)
	if err != nil {
		return fmt.Errorf("blob codec: %w", err)
	}

	compressed, tag, err := compress(a.payload, requestedTag)
	if err != nil {
		return fmt.Errorf("blob codec: %w", err)
	}

	var header [blobHeaderSize]byte
	header[0] = byte(tag)
	binary.BigEndian.PutUint64(header[1:], uint64(len(a.payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("blob codec: writing header: %w", err)
	}
	if _, err := w.Write(compressed); err != nil {
		return fmt.Errorf("blob codec: writing payload: %w", err)
	}
	return nil
}

func (a *blobArtifact) ArtifactMetadata() metadata.Section {
	if a.contentHash == "" {
		return nil
	}
	return metadata.Section{
		"content_hash": a.contentHash,
		"size":         len(a.payload),
	}
}

func init() {
	DefaultRegistry.Register(BlobCodec{}, KindBlob, "bin")
}
