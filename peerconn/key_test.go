package peerconn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveSharedKeySymmetric(t *testing.T) {
	secret := []byte("shared-ecdh-secret-bytes-32-long")
	a := [32]byte{1, 2, 3}
	b := [32]byte{4, 5, 6}

	k1 := DeriveSharedKey(secret, a, b)
	k2 := DeriveSharedKey(secret, b, a)
	require.Equal(t, k1, k2, "key must not depend on connection direction")
}

func TestDeriveSharedKeyDiffersByInput(t *testing.T) {
	secret := []byte("shared-ecdh-secret-bytes-32-long")
	a := [32]byte{1}
	b := [32]byte{2}
	c := [32]byte{3}

	k1 := DeriveSharedKey(secret, a, b)
	k2 := DeriveSharedKey(secret, a, c)
	require.NotEqual(t, k1, k2)
}
