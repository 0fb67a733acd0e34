package membership

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRoleFounderByEncKey(t *testing.T) {
	founder := [32]byte{9}
	p := &Peer{EncryptPublicKey: founder}
	role := ValidateRole(p, founder, nil, nil)
	require.Equal(t, RoleFounder, role)
}

func TestValidateRoleModeratorBySignKey(t *testing.T) {
	p := &Peer{SignPublicKey: [32]byte{7}}
	isMod := func(k [32]byte) bool { return k == [32]byte{7} }
	require.Equal(t, RoleModerator, ValidateRole(p, [32]byte{1}, isMod, nil))
}

func TestValidateRoleObserverBySanctions(t *testing.T) {
	p := &Peer{EncryptPublicKey: [32]byte{3}}
	isObserver := func(k [32]byte) bool { return k == [32]byte{3} }
	require.Equal(t, RoleObserver, ValidateRole(p, [32]byte{1}, nil, isObserver))
}

func TestValidateRoleDefaultsToUser(t *testing.T) {
	p := &Peer{}
	require.Equal(t, RoleUser, ValidateRole(p, [32]byte{1}, nil, nil))
}

func TestClaimedRoleInvalid(t *testing.T) {
	require.True(t, ClaimedRoleInvalid(RoleModerator, RoleUser))
	require.True(t, ClaimedRoleInvalid(RoleFounder, RoleUser))
	require.False(t, ClaimedRoleInvalid(RoleUser, RoleModerator)) // under-claim is corrected, not punished
	require.False(t, ClaimedRoleInvalid(RoleInvalid, RoleUser))
	require.False(t, ClaimedRoleInvalid(RoleFounder, RoleFounder))
}

func TestReassignRolePromotesInPlace(t *testing.T) {
	tbl := NewTable(&Peer{EncryptPublicKey: [32]byte{1}})
	p, err := tbl.Add([32]byte{2}, [32]byte{7})
	require.NoError(t, err)
	p.Role = RoleUser

	isMod := func(k [32]byte) bool { return k == [32]byte{7} }
	require.True(t, tbl.ReassignRole(1, [32]byte{1}, isMod, nil))
	require.Equal(t, RoleModerator, tbl.Peers()[1].Role)
	require.Len(t, tbl.Peers(), 2)

	require.False(t, tbl.ReassignRole(1, [32]byte{1}, isMod, nil)) // already correct
}

func TestReassignRoleCorrectsSelf(t *testing.T) {
	tbl := NewTable(&Peer{EncryptPublicKey: [32]byte{1}})
	require.True(t, tbl.ReassignRole(0, [32]byte{1}, nil, nil))
	require.Equal(t, RoleFounder, tbl.Peers()[0].Role)
}
