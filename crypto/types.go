// Package crypto defines the key-pair abstractions used throughout
// the group-chat core: an Ed25519 signing identity (chat id, founder
// key, moderator keys, topic setter) and an X25519 encryption identity
// (per-peer handshake/session keys). The KeyPair interface is
// narrowed to the two algorithms this protocol actually needs.
package crypto

import (
	"crypto"
	"errors"
)

// KeyType identifies the algorithm backing a KeyPair.
type KeyType string

const (
	KeyTypeEd25519 KeyType = "Ed25519"
	KeyTypeX25519  KeyType = "X25519"
)

// KeyPair is a cryptographic identity capable of signing (Ed25519) or
// key agreement (X25519). X25519 pairs return ErrSignNotSupported/
// ErrVerifyNotSupported from Sign/Verify.
type KeyPair interface {
	PublicKey() crypto.PublicKey
	PrivateKey() crypto.PrivateKey
	Type() KeyType
	Sign(message []byte) ([]byte, error)
	Verify(message, signature []byte) error
}

// Common sentinel errors.
var (
	ErrInvalidSignature   = errors.New("groupchat/crypto: invalid signature")
	ErrSignNotSupported   = errors.New("groupchat/crypto: key type does not support signing")
	ErrVerifyNotSupported = errors.New("groupchat/crypto: key type does not support verification")
	ErrInvalidKeyMaterial = errors.New("groupchat/crypto: invalid key material")
)

// Identity is the extended keypair held by every chat participant:
// an encryption (X25519) keypair and a signing (Ed25519) keypair. The
// two halves are independent keys, not a single Ed25519-derived
// X25519 pair, matching the wire layout (32 bytes encryption pubkey +
// 32 bytes signing pubkey).
type Identity struct {
	Encrypt KeyPair // X25519
	Sign    KeyPair // Ed25519
}

// EncryptPublicBytes returns the 32-byte raw X25519 public key.
func (id *Identity) EncryptPublicBytes() [32]byte {
	return asArray32(publicKeyBytes(id.Encrypt))
}

// SignPublicBytes returns the 32-byte raw Ed25519 public key.
func (id *Identity) SignPublicBytes() [32]byte {
	return asArray32(publicKeyBytes(id.Sign))
}

// publicKeyBytes extracts the raw bytes of a KeyPair's public key
// regardless of concrete type, via the RawPublicKey accessor every
// KeyPair implementation in this package provides.
func publicKeyBytes(kp KeyPair) []byte {
	type rawPublic interface{ RawPublicKey() []byte }
	if rp, ok := kp.(rawPublic); ok {
		return rp.RawPublicKey()
	}
	return nil
}

func asArray32(b []byte) [32]byte {
	var out [32]byte
	copy(out[:], b)
	return out
}
