package keys

import (
	stdcrypto "crypto"
	"crypto/ed25519"
	"crypto/rand"

	gcrypto "github.com/ingvar1995/toxcore/crypto"
)

// ed25519KeyPair implements crypto.KeyPair for Ed25519 signing
// identities: the chat id (founder signing key), moderator keys, and
// the topic setter key.
type ed25519KeyPair struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
}

// GenerateEd25519KeyPair generates a fresh Ed25519 signing identity.
func GenerateEd25519KeyPair() (gcrypto.KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &ed25519KeyPair{privateKey: priv, publicKey: pub}, nil
}

// Ed25519KeyPairFromSeed reconstructs a signing identity from a
// 32-byte seed, used when loading the founder's secret key from a
// persisted group layout.
func Ed25519KeyPairFromSeed(seed []byte) (gcrypto.KeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, gcrypto.ErrInvalidKeyMaterial
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &ed25519KeyPair{privateKey: priv, publicKey: priv.Public().(ed25519.PublicKey)}, nil
}

// Ed25519PublicKeyFromBytes wraps a bare 32-byte Ed25519 public key
// (as received over the wire) for verification-only use.
func Ed25519PublicKeyFromBytes(pub []byte) (gcrypto.KeyPair, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, gcrypto.ErrInvalidKeyMaterial
	}
	cp := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(cp, pub)
	return &ed25519KeyPair{publicKey: cp}, nil
}

func (kp *ed25519KeyPair) PublicKey() stdcrypto.PublicKey   { return kp.publicKey }
func (kp *ed25519KeyPair) PrivateKey() stdcrypto.PrivateKey { return kp.privateKey }
func (kp *ed25519KeyPair) Type() gcrypto.KeyType            { return gcrypto.KeyTypeEd25519 }

func (kp *ed25519KeyPair) RawPublicKey() []byte {
	return []byte(kp.publicKey)
}

func (kp *ed25519KeyPair) Sign(message []byte) ([]byte, error) {
	if kp.privateKey == nil {
		return nil, gcrypto.ErrSignNotSupported
	}
	return ed25519.Sign(kp.privateKey, message), nil
}

func (kp *ed25519KeyPair) Verify(message, signature []byte) error {
	if !ed25519.Verify(kp.publicKey, message, signature) {
		return gcrypto.ErrInvalidSignature
	}
	return nil
}
