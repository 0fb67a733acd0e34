// Package idgen provides an injectable random-id source: production
// code draws peer_ids and other opaque identifiers from crypto/rand,
// while tests seed the source deterministically.
package idgen

import (
	"crypto/rand"
	"encoding/binary"
	"io"
)

// Source produces random bytes for identifier generation.
type Source interface {
	io.Reader
}

// Crypto is the production Source backed by crypto/rand.Reader.
var Crypto Source = rand.Reader

// Uint32 draws a uniformly random uint32 from src.
func Uint32(src Source) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(src, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// Uint64 draws a uniformly random uint64 from src.
func Uint64(src Source) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(src, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}
