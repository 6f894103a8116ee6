// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hashing

import "crypto/sha256"

// HashLen is the number of bytes in a sha256 hash
const HashLen = sha256.Size

// ComputeHash256 returns the sha256 hash of [buf]
func ComputeHash256(buf []byte) []byte {
	h := sha256.Sum256(buf)
	return h[:]
}

// Checksum creates a checksum of [length] bytes from the sha256 hash of
// [bytes]
func Checksum(bytes []byte, length int) []byte {
	hash := ComputeHash256(bytes)
	return hash[len(hash)-length:]
}
