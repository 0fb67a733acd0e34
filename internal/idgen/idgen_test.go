package idgen

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUint32ReadsBigEndian(t *testing.T) {
	src := bytes.NewReader([]byte{0x00, 0x00, 0x01, 0x02})
	id, err := Uint32(src)
	require.NoError(t, err)
	require.Equal(t, uint32(0x0102), id)
}

func TestUint64ShortSourceErrors(t *testing.T) {
	src := bytes.NewReader([]byte{1, 2, 3})
	_, err := Uint64(src)
	require.Error(t, err)
}

func TestCryptoSourceYieldsDistinctIDs(t *testing.T) {
	a, err := Uint64(Crypto)
	require.NoError(t, err)
	b, err := Uint64(Crypto)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
