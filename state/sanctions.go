package state

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/hashicorp/go-multierror"

	"github.com/ingvar1995/toxcore/codec"
	gcrypto "github.com/ingvar1995/toxcore/crypto"
	"github.com/ingvar1995/toxcore/internal/logger"
)

// IssuerLookup resolves a signing public key to a verification-only
// KeyPair if it currently belongs to the founder or mod list, the
// only issuers a sanction may be trusted from.
type IssuerLookup func(signPub [32]byte) (gcrypto.KeyPair, bool)

// Sanctions is the mutable list of observer/ban records plus its
// authenticating credentials.
type Sanctions struct {
	Entries []codec.Sanction
	Creds   codec.SanctionsCredsFields
	Sig     [64]byte
}

// checksum computes the running checksum over the packed entries.
func (s *Sanctions) checksum() uint32 {
	crc := crc32.NewIEEE()
	for _, e := range s.Entries {
		crc.Write(e.Pack())
	}
	return crc.Sum32()
}

// IsObserver reports whether encPub currently carries an observer sanction.
func (s *Sanctions) IsObserver(encPub [32]byte) bool {
	for _, e := range s.Entries {
		if e.Tag == codec.SanctionObserver && e.ObserverPublicKey == encPub {
			return true
		}
	}
	return false
}

// Add appends a new entry signed by editor and regenerates creds:
// version+1, new checksum, fresh signature.
func (s *Sanctions) Add(entry codec.Sanction, editor gcrypto.KeyPair, editorSignPub [32]byte) error {
	sig, err := editor.Sign(entry.SignedFields())
	if err != nil {
		return err
	}
	copy(entry.Signature[:], sig)
	s.Entries = append(s.Entries, entry)
	return s.resign(editor, editorSignPub)
}

// ReissueByIssuer re-signs every entry issued by issuer under editor,
// used when the moderator who issued sanctions is removed from the
// mod list: the sanctions survive, now vouched for by the remover.
// Returns the count re-signed.
func (s *Sanctions) ReissueByIssuer(issuer [32]byte, editor gcrypto.KeyPair, editorSignPub [32]byte) (int, error) {
	changed := 0
	for i := range s.Entries {
		if s.Entries[i].IssuerPublicKey != issuer {
			continue
		}
		s.Entries[i].IssuerPublicKey = editorSignPub
		sig, err := editor.Sign(s.Entries[i].SignedFields())
		if err != nil {
			return changed, err
		}
		copy(s.Entries[i].Signature[:], sig)
		changed++
	}
	if changed == 0 {
		return 0, nil
	}
	return changed, s.resign(editor, editorSignPub)
}

// RemoveObserver deletes the observer sanction naming encPub, if any,
// resigning creds under editor.
func (s *Sanctions) RemoveObserver(encPub [32]byte, editor gcrypto.KeyPair, editorSignPub [32]byte) (bool, error) {
	kept := s.Entries[:0]
	removed := false
	for _, e := range s.Entries {
		if e.Tag == codec.SanctionObserver && e.ObserverPublicKey == encPub {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	s.Entries = kept
	if !removed {
		return false, nil
	}
	return true, s.resign(editor, editorSignPub)
}

// RemoveBan deletes the ban sanction with the given ban id, if any,
// resigning creds under editor.
func (s *Sanctions) RemoveBan(banID uint32, editor gcrypto.KeyPair, editorSignPub [32]byte) (bool, error) {
	kept := s.Entries[:0]
	removed := false
	for _, e := range s.Entries {
		if e.Tag == codec.SanctionBan && e.BanID == banID {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	s.Entries = kept
	if !removed {
		return false, nil
	}
	return true, s.resign(editor, editorSignPub)
}

func (s *Sanctions) resign(editor gcrypto.KeyPair, editorSignPub [32]byte) error {
	version, err := nextVersion(s.Creds.Version)
	if err != nil {
		return err
	}
	creds := codec.SanctionsCredsFields{
		Version:   version,
		Checksum:  s.checksum(),
		SignerKey: editorSignPub,
	}
	sig, err := editor.Sign(creds.Pack())
	if err != nil {
		return err
	}
	s.Creds = creds
	copy(s.Sig[:], sig)
	return nil
}

// Validate verifies every entry's signature under its claimed issuer
// (which must resolve via lookup) and the creds signature over the
// checksum, aggregating every failure rather than stopping at the
// first so a sync handler can report all bad entries in one pass.
func Validate(entries []codec.Sanction, creds codec.SanctionsCredsFields, credsSig [64]byte, lookup IssuerLookup) error {
	var errs *multierror.Error

	crc := crc32.NewIEEE()
	for _, e := range entries {
		crc.Write(e.Pack())
		issuer, ok := lookup(e.IssuerPublicKey)
		if !ok {
			errs = multierror.Append(errs, logger.New(logger.CodeBadSignature, "state: sanction issuer not in mod list"))
			continue
		}
		if err := issuer.Verify(e.SignedFields(), e.Signature[:]); err != nil {
			errs = multierror.Append(errs, logger.Wrap(logger.CodeBadSignature, "state: sanction signature invalid", err))
		}
	}
	if crc.Sum32() != creds.Checksum {
		errs = multierror.Append(errs, logger.New(logger.CodeBadSignature, "state: sanctions checksum mismatch"))
	}
	signer, ok := lookup(creds.SignerKey)
	if !ok {
		errs = multierror.Append(errs, logger.New(logger.CodeBadSignature, "state: sanctions creds signer not in mod list"))
	} else if err := signer.Verify(creds.Pack(), credsSig[:]); err != nil {
		errs = multierror.Append(errs, logger.Wrap(logger.CodeBadSignature, "state: sanctions creds signature invalid", err))
	}
	return errs.ErrorOrNil()
}

// Pack encodes the full SANCTIONS_LIST wire body: [count(2) | entries... |
// creds(40) | sig(64)].
func (s Sanctions) Pack() []byte {
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, uint16(len(s.Entries)))
	for _, e := range s.Entries {
		out = append(out, e.Pack()...)
	}
	out = append(out, s.Creds.Pack()...)
	out = append(out, s.Sig[:]...)
	return out
}

// UnpackSanctions decodes a SANCTIONS_LIST wire body.
func UnpackSanctions(data []byte) (Sanctions, error) {
	if len(data) < 2 {
		return Sanctions{}, logger.New(logger.CodeShortBuffer, "state: sanctions list missing count")
	}
	count := int(binary.BigEndian.Uint16(data[:2]))
	off := 2
	var out Sanctions
	for i := 0; i < count; i++ {
		entry, n, err := codec.UnpackSanction(data[off:])
		if err != nil {
			return Sanctions{}, err
		}
		out.Entries = append(out.Entries, entry)
		off += n
	}
	creds, err := codec.UnpackSanctionsCredsFields(data[off:])
	if err != nil {
		return Sanctions{}, err
	}
	out.Creds = creds
	off += len(creds.Pack())
	if len(data) < off+64 {
		return Sanctions{}, logger.New(logger.CodeShortBuffer, "state: sanctions list missing signature")
	}
	copy(out.Sig[:], data[off:off+64])
	return out, nil
}

// AcceptIncoming applies the "ignore silently unless version is
// newer" rule: a validation failure is tolerated when the cached
// creds version is already >= the incoming one.
func AcceptIncoming(cachedVersion uint32, incoming Sanctions, lookup IssuerLookup) (Sanctions, bool, error) {
	if err := Validate(incoming.Entries, incoming.Creds, incoming.Sig, lookup); err != nil {
		if cachedVersion >= incoming.Creds.Version {
			return Sanctions{}, false, nil
		}
		return Sanctions{}, false, err
	}
	if incoming.Creds.Version <= cachedVersion {
		return Sanctions{}, false, nil
	}
	return incoming, true, nil
}
