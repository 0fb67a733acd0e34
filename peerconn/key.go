// Package peerconn holds per-remote-peer connection state: derived
// session keys, lossless send/receive windows, handshake flags, and
// timers.
package peerconn

import (
	"bytes"
	"crypto/sha256"

	"golang.org/x/crypto/hkdf"
)

// DeriveSharedKey derives the per-peer LOSSLESS/LOSSY secretbox key
// from a raw curve25519 ECDH secret, salted by the lexicographically
// ordered pair of session public keys so both sides compute the
// identical salt regardless of connection direction
// (HKDF-Extract-then-Expand over the raw shared secret).
func DeriveSharedKey(ecdhSecret []byte, selfSessionPub, peerSessionPub [32]byte) [32]byte {
	lo, hi := canonicalOrder(selfSessionPub[:], peerSessionPub[:])
	salt := sha256.New()
	salt.Write(lo)
	salt.Write(hi)

	prk := hkdf.Extract(sha256.New, ecdhSecret, salt.Sum(nil))

	out := hkdf.Expand(sha256.New, prk, []byte("groupchat-lossless-key"))
	var key [32]byte
	_, _ = out.Read(key[:])
	return key
}

func canonicalOrder(a, b []byte) (lo, hi []byte) {
	if bytes.Compare(a, b) <= 0 {
		return a, b
	}
	return b, a
}
