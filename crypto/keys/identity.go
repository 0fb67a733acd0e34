package keys

import gcrypto "github.com/ingvar1995/toxcore/crypto"

// NewIdentity generates a fresh self identity: an X25519 encryption
// keypair plus an independent Ed25519 signing keypair.
func NewIdentity() (*gcrypto.Identity, error) {
	enc, err := GenerateX25519KeyPair()
	if err != nil {
		return nil, err
	}
	sign, err := GenerateEd25519KeyPair()
	if err != nil {
		return nil, err
	}
	return &gcrypto.Identity{Encrypt: enc, Sign: sign}, nil
}

// IdentityFromPublicBytes wraps received public halves (as carried in
// a HANDSHAKE packet or persisted peer address) into a verify/derive
// only Identity.
func IdentityFromPublicBytes(encPub, signPub [32]byte) (*gcrypto.Identity, error) {
	enc, err := X25519PublicKeyFromBytes(encPub[:])
	if err != nil {
		return nil, err
	}
	sign, err := Ed25519PublicKeyFromBytes(signPub[:])
	if err != nil {
		return nil, err
	}
	return &gcrypto.Identity{Encrypt: enc, Sign: sign}, nil
}
