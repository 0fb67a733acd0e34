package keys

import (
	stdcrypto "crypto"
	"crypto/ecdh"
	"crypto/rand"

	gcrypto "github.com/ingvar1995/toxcore/crypto"
)

// x25519KeyPair implements crypto.KeyPair for X25519 encryption
// identities: the long-term self encryption keypair and the
// per-session ephemeral keypairs PeerConnection generates at
// handshake time. Trimmed to the ECDH surface this protocol needs:
// no HPKE and no Ed25519-to-X25519 conversion, since the two
// keypairs are independent rather than derived from one another.
type x25519KeyPair struct {
	privateKey *ecdh.PrivateKey
	publicKey  *ecdh.PublicKey
}

// GenerateX25519KeyPair generates a fresh X25519 encryption identity.
func GenerateX25519KeyPair() (gcrypto.KeyPair, error) {
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &x25519KeyPair{privateKey: priv, publicKey: priv.PublicKey()}, nil
}

// X25519PublicKeyFromBytes wraps a bare 32-byte X25519 public key (as
// received over the wire) for shared-secret derivation only.
func X25519PublicKeyFromBytes(pub []byte) (gcrypto.KeyPair, error) {
	pk, err := ecdh.X25519().NewPublicKey(pub)
	if err != nil {
		return nil, gcrypto.ErrInvalidKeyMaterial
	}
	return &x25519KeyPair{publicKey: pk}, nil
}

func (kp *x25519KeyPair) PublicKey() stdcrypto.PublicKey   { return kp.publicKey }
func (kp *x25519KeyPair) PrivateKey() stdcrypto.PrivateKey { return kp.privateKey }
func (kp *x25519KeyPair) Type() gcrypto.KeyType            { return gcrypto.KeyTypeX25519 }

func (kp *x25519KeyPair) RawPublicKey() []byte {
	return kp.publicKey.Bytes()
}

// RawPrivateKey returns the 32-byte scalar, used by the codec to feed
// nacl/box directly.
func (kp *x25519KeyPair) RawPrivateKey() []byte {
	if kp.privateKey == nil {
		return nil
	}
	return kp.privateKey.Bytes()
}

func (kp *x25519KeyPair) Sign(message []byte) ([]byte, error) {
	return nil, gcrypto.ErrSignNotSupported
}

func (kp *x25519KeyPair) Verify(message, signature []byte) error {
	return gcrypto.ErrVerifyNotSupported
}

// DeriveSharedSecret computes the raw X25519 ECDH shared secret with
// peer. The codec/peerconn layer feeds this into HKDF rather than
// using it directly as a symmetric key.
func (kp *x25519KeyPair) DeriveSharedSecret(peer gcrypto.KeyPair) ([]byte, error) {
	peerPub, err := ecdh.X25519().NewPublicKey(peer.PublicKey().(*ecdh.PublicKey).Bytes())
	if err != nil {
		return nil, gcrypto.ErrInvalidKeyMaterial
	}
	return kp.privateKey.ECDH(peerPub)
}

// DeriveSharedSecretBytes is the same operation taking a raw 32-byte
// peer public key, for callers that only have wire bytes.
func (kp *x25519KeyPair) DeriveSharedSecretBytes(peerPub []byte) ([]byte, error) {
	pk, err := ecdh.X25519().NewPublicKey(peerPub)
	if err != nil {
		return nil, gcrypto.ErrInvalidKeyMaterial
	}
	return kp.privateKey.ECDH(pk)
}
