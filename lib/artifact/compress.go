// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// compressionTag identifies the compression algorithm of a stored
// blob payload. The tag is the first byte of the blob file; the
// values are protocol constants, changing them breaks stored blobs.
type compressionTag uint8

const (
	// compressionNone stores the payload verbatim. The default, and
	// the right choice for already-compressed content.
	compressionNone compressionTag = 0

	// compressionLZ4 applies LZ4 block compression. Fast, modest
	// ratio; a good tradeoff for mixed binary content.
	compressionLZ4 compressionTag = 1

	// compressionZstd applies zstd at its default level. Better
	// ratios for text-like content at higher CPU cost.
	compressionZstd compressionTag = 2
)

func (tag compressionTag) String() string {
	switch tag {
	case compressionNone:
		return "none"
	case compressionLZ4:
		return "lz4"
	case compressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(tag))
	}
}

func parseCompressionTag(name string) (compressionTag, error) {
	switch name {
	case "none":
		return compressionNone, nil
	case "lz4":
		return compressionLZ4, nil
	case "zstd":
		return compressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (recognized: none, lz4, zstd)", name)
	}
}

// zstdEncoder and zstdDecoder are reused across calls to avoid
// repeated initialization. Both are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("artifact: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("artifact: zstd decoder initialization failed: " + err.Error())
	}
}

// compress applies the tagged algorithm to data. LZ4 falls back to
// the uncompressed payload when the block compressor reports the data
// incompressible, so callers must trust the returned tag, not the one
// they asked for.
func compress(data []byte, tag compressionTag) ([]byte, compressionTag, error) {
	switch tag {
	case compressionNone:
		return data, compressionNone, nil

	case compressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		destination := make([]byte, bound)
		written, err := lz4.CompressBlock(data, destination, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("lz4 compress: %w", err)
		}
		// CompressBlock returns 0 for incompressible data.
		if written == 0 || written >= len(data) {
			return data, compressionNone, nil
		}
		return destination[:written], compressionLZ4, nil

	case compressionZstd:
		compressed := zstdEncoder.EncodeAll(data, nil)
		if len(compressed) >= len(data) {
			return data, compressionNone, nil
		}
		return compressed, compressionZstd, nil

	default:
		return nil, 0, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

// decompress reverses compress. uncompressedSize must match the
// original payload length exactly.
func decompress(data []byte, tag compressionTag, uncompressedSize int) ([]byte, error) {
	switch tag {
	case compressionNone:
		if len(data) != uncompressedSize {
			return nil, fmt.Errorf("uncompressed payload: size %d does not match expected %d",
				len(data), uncompressedSize)
		}
		return data, nil

	case compressionLZ4:
		destination := make([]byte, uncompressedSize)
		read, err := lz4.UncompressBlock(data, destination)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if read != uncompressedSize {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, uncompressedSize)
		}
		return destination, nil

	case compressionZstd:
		result, err := zstdDecoder.DecodeAll(data, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(result) != uncompressedSize {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), uncompressedSize)
		}
		return result, nil

	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}
