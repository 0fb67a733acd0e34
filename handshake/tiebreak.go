package handshake

import "bytes"

// Role is which side of a simultaneous connect becomes the
// invite-requester after handshake completes.
type Role int

const (
	RoleRequester Role = iota + 1
	RoleSilent
)

// TieBreak implements the tie-break rule verbatim: the side with the
// lower shared-state version becomes the requester; on equality, the
// side with the lexicographically smaller signing public key does.
func TieBreak(localVersion, remoteVersion uint32, localPK, remotePK [32]byte) Role {
	switch {
	case localVersion < remoteVersion:
		return RoleRequester
	case localVersion > remoteVersion:
		return RoleSilent
	}
	if bytes.Compare(localPK[:], remotePK[:]) < 0 {
		return RoleRequester
	}
	return RoleSilent
}
