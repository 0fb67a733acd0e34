package state

import (
	"github.com/ingvar1995/toxcore/codec"
	gcrypto "github.com/ingvar1995/toxcore/crypto"
	"github.com/ingvar1995/toxcore/internal/logger"
)

// Topic is the mutable, mod/founder-signed chat topic.
type Topic struct {
	Fields    codec.TopicFields
	Signature [64]byte
}

// Set signs a new topic version, bumping the version unconditionally.
func Set(current Topic, text []byte, setter gcrypto.KeyPair, setterKey [32]byte) (Topic, error) {
	version, err := nextVersion(current.Fields.Version)
	if err != nil {
		return Topic{}, err
	}
	fields := codec.TopicFields{Topic: text, SetterKey: setterKey, Version: version}
	sig, err := setter.Sign(fields.Pack())
	if err != nil {
		return Topic{}, err
	}
	out := Topic{Fields: fields}
	copy(out.Signature[:], sig)
	return out, nil
}

// ReSign re-signs the current topic text under a new setter without
// changing its content, used when the peer who last set the topic is
// removed from the mod list. The version still advances even though
// the text is unchanged, matching every other state mutation.
func ReSign(current Topic, newSetter gcrypto.KeyPair, newSetterKey [32]byte) (Topic, error) {
	return Set(current, current.Fields.Topic, newSetter, newSetterKey)
}

// Verify checks the topic signature under the claimed setter, who must
// resolve via lookup to either the founder or a current moderator.
func Verify(t Topic, lookup IssuerLookup) error {
	signer, ok := lookup(t.Fields.SetterKey)
	if !ok {
		return logger.New(logger.CodeRoleInsufficient, "state: topic setter is not founder or moderator")
	}
	if err := signer.Verify(t.Fields.Pack(), t.Signature[:]); err != nil {
		return logger.Wrap(logger.CodeBadSignature, "state: topic signature invalid", err)
	}
	return nil
}

// AcceptTopic applies an incoming topic update against the cached
// copy, larger version wins.
func AcceptTopic(cached, incoming Topic, lookup IssuerLookup) (Topic, bool, error) {
	if err := Verify(incoming, lookup); err != nil {
		return cached, false, err
	}
	if incoming.Fields.Version <= cached.Fields.Version {
		return cached, false, nil
	}
	return incoming, true, nil
}
