package handshake

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTieBreakByVersion(t *testing.T) {
	a := [32]byte{1}
	b := [32]byte{2}
	require.Equal(t, RoleRequester, TieBreak(1, 2, a, b))
	require.Equal(t, RoleSilent, TieBreak(2, 1, a, b))
}

func TestTieBreakByPublicKeyOnEquality(t *testing.T) {
	lower := [32]byte{1}
	higher := [32]byte{2}
	require.Equal(t, RoleRequester, TieBreak(5, 5, lower, higher))
	require.Equal(t, RoleSilent, TieBreak(5, 5, higher, lower))
}
