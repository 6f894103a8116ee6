// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cb58

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/mr-tron/base58/base58"

	"github.com/ava-labs/atlasgo/utils/hashing"
)

const checksumLen = 4

var (
	errEncodingOverFlow = errors.New("encoding overflow")
	errMissingChecksum  = errors.New("input string is smaller than the checksum size")
	errBadChecksum      = errors.New("invalid input checksum")
)

// Encode [bytes] to a string using cb58 format: base58 with a 4 byte
// checksum appended.
func Encode(b []byte) (string, error) {
	if len(b) > math.MaxInt32-checksumLen {
		return "", errEncodingOverFlow
	}
	checked := make([]byte, len(b)+checksumLen)
	copy(checked, b)
	copy(checked[len(b):], hashing.Checksum(b, checksumLen))
	return base58.Encode(checked), nil
}

// Decode [str] from cb58 format
func Decode(str string) ([]byte, error) {
	if len(str) == 0 {
		return nil, errMissingChecksum
	}
	decoded, err := base58.Decode(str)
	if err != nil {
		return nil, fmt.Errorf("unable to decode base58: %w", err)
	}
	if len(decoded) < checksumLen {
		return nil, errMissingChecksum
	}
	rawBytes := decoded[:len(decoded)-checksumLen]
	checksum := decoded[len(decoded)-checksumLen:]
	if !bytes.Equal(checksum, hashing.Checksum(rawBytes, checksumLen)) {
		return nil, errBadChecksum
	}
	return rawBytes, nil
}
