package membership

// ModListLookup reports whether a signing public key currently appears
// in the chat's mod list.
type ModListLookup func(signPub [32]byte) bool

// ObserverLookup reports whether an encryption public key is currently
// listed as an observer in the sanctions list.
type ObserverLookup func(encPub [32]byte) bool

// ValidateRole computes the role a peer is entitled to given the
// current founder key, mod list, and sanctions list: Founder by
// enc-key match, else Moderator by signing-key membership, else
// Observer by sanctions listing, else User.
func ValidateRole(peer *Peer, founderEncPub [32]byte, isMod ModListLookup, isObserver ObserverLookup) Role {
	switch {
	case peer.EncryptPublicKey == founderEncPub:
		return RoleFounder
	case isMod != nil && isMod(peer.SignPublicKey):
		return RoleModerator
	case isObserver != nil && isObserver(peer.EncryptPublicKey):
		return RoleObserver
	default:
		return RoleUser
	}
}

// ClaimedRoleInvalid reports whether a role a peer announced about
// itself overstates what the current mod list and sanctions entitle
// it to; a claimed Founder or Moderator that does not validate gets
// the peer deleted. A peer under-claiming, as a fresh joiner does
// before it has synced the mod list, is not an offense; its role is
// simply corrected to the computed one.
func ClaimedRoleInvalid(claimed, computed Role) bool {
	return (claimed == RoleFounder || claimed == RoleModerator) && claimed != computed
}

// ReassignRole recomputes index's role after a mod-list or sanctions
// change and updates it in place, reporting whether it changed. The
// caller re-runs this for every peer (self included) whenever either
// list mutates.
func (t *Table) ReassignRole(index int, founderEncPub [32]byte, isMod ModListLookup, isObserver ObserverLookup) (changed bool) {
	if index < 0 || index >= len(t.peers) {
		return false
	}
	p := t.peers[index]
	want := ValidateRole(p, founderEncPub, isMod, isObserver)
	if want == p.Role {
		return false
	}
	p.Role = want
	return true
}
