// Package state implements the four versioned, founder/moderator-
// authenticated replicated artifacts a chat carries — shared state,
// mod list, sanctions list + creds, and topic — plus the sync protocol
// that brings a rejoining or newly-handshaked peer up to date. Every
// artifact carries a monotonic 32-bit version; larger version wins.
package state

import (
	"github.com/ingvar1995/toxcore/codec"
	gcrypto "github.com/ingvar1995/toxcore/crypto"
	"github.com/ingvar1995/toxcore/internal/logger"
)

// SharedState is the founder-signed configuration root of a chat.
type SharedState struct {
	Fields    codec.SharedStateFields
	Signature [64]byte
}

// NewSharedState builds and signs version 1 of a shared state with founder as signer.
func NewSharedState(founder gcrypto.KeyPair, founderEnc, founderSign [32]byte, maxPeers uint32, name []byte, privacy byte, password []byte, modListHash [32]byte) (SharedState, error) {
	s := SharedState{Fields: codec.SharedStateFields{
		FounderEncryptPublicKey: founderEnc,
		FounderSignPublicKey:    founderSign,
		MaxPeers:                maxPeers,
		GroupName:               name,
		Privacy:                 privacy,
		Password:                password,
		ModListHash:             modListHash,
		Version:                 1,
	}}
	sig, err := founder.Sign(s.Fields.Pack())
	if err != nil {
		return SharedState{}, err
	}
	copy(s.Signature[:], sig)
	return s, nil
}

// Reissue bumps the version and re-signs after a founder-side mutation
// (new mod-list hash, password, privacy, or maxpeers change).
func (s SharedState) Reissue(founder gcrypto.KeyPair, mutate func(*codec.SharedStateFields)) (SharedState, error) {
	next := s.Fields
	mutate(&next)
	version, err := nextVersion(s.Fields.Version)
	if err != nil {
		return SharedState{}, err
	}
	next.Version = version
	sig, err := founder.Sign(next.Pack())
	if err != nil {
		return SharedState{}, err
	}
	out := SharedState{Fields: next}
	copy(out.Signature[:], sig)
	return out, nil
}

// Verify checks the detached signature under the founder's signing
// public key.
func (s SharedState) Verify(founderSign gcrypto.KeyPair) error {
	if err := founderSign.Verify(s.Fields.Pack(), s.Signature[:]); err != nil {
		return logger.Wrap(logger.CodeBadSignature, "state: shared state signature invalid", err)
	}
	return nil
}

// Pack encodes the shared state for the wire: fields followed by signature.
func (s SharedState) Pack() []byte {
	return append(s.Fields.Pack(), s.Signature[:]...)
}

// UnpackSharedState decodes a wire SharedState.
func UnpackSharedState(data []byte) (SharedState, error) {
	fields, err := codec.UnpackSharedStateFields(data)
	if err != nil {
		return SharedState{}, err
	}
	consumed := len(fields.Pack())
	if len(data) < consumed+64 {
		return SharedState{}, logger.New(logger.CodeShortBuffer, "state: shared state missing signature")
	}
	s := SharedState{Fields: fields}
	copy(s.Signature[:], data[consumed:consumed+64])
	return s, nil
}

// AcceptSharedState applies an incoming shared state against the
// cached copy, returning the value to keep and whether it changed:
// larger version wins, equal versions keep the cached copy.
func AcceptSharedState(cached, incoming SharedState, founderSign gcrypto.KeyPair) (SharedState, bool, error) {
	if err := incoming.Verify(founderSign); err != nil {
		return cached, false, err
	}
	if incoming.Fields.Version <= cached.Fields.Version {
		return cached, false, nil
	}
	return incoming, true, nil
}
