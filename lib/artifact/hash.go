// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// contentDomainKey is the BLAKE3 key for content hashing. Keyed mode
// domain-separates pond content hashes from any other BLAKE3 use of
// the same bytes. The key is the ASCII domain name zero-padded to 32
// bytes, readable in hex dumps; BLAKE3 keyed mode treats it as an
// opaque value.
var contentDomainKey = [32]byte{
	'p', 'o', 'n', 'd', '.', 'a', 'r', 't', 'i', 'f', 'a', 'c', 't', '.',
	'c', 'o', 'n', 't', 'e', 'n', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// ContentHash computes the keyed BLAKE3 hash of an artifact's
// canonical data bytes, rendered as "blake3:<hex>". The hash is
// computed once when fresh data is wrapped into an artifact and is
// stored in the manifest; reading a version back reuses the stored
// hash rather than recomputing it.
func ContentHash(data []byte) string {
	hasher, err := blake3.NewKeyed(contentDomainKey[:])
	if err != nil {
		panic("artifact: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	return "blake3:" + hex.EncodeToString(hasher.Sum(nil))
}
