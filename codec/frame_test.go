package codec

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/nacl/box"
)

func TestLosslessWrapUnwrapRoundTrip(t *testing.T) {
	var sender [32]byte
	sender[0] = 7
	key := [32]byte{1, 2, 3}

	datagram, err := WrapLossless(99, sender, key, KindTopic, 42, []byte("payload"))
	require.NoError(t, err)
	// ciphertext length (minus the secretbox overhead) is 8-byte aligned
	require.Zero(t, (len(datagram)-frameHeaderLen-16)%padAlign)

	frame, err := ParseFrame(datagram)
	require.NoError(t, err)
	require.Equal(t, PacketKindLossless, frame.Kind)
	require.Equal(t, uint32(99), frame.ChatIDHash)
	require.Equal(t, sender, frame.SenderPublicKey)

	kind, msgID, payload, err := UnwrapLossless(frame, key)
	require.NoError(t, err)
	require.Equal(t, KindTopic, kind)
	require.Equal(t, uint64(42), msgID)
	require.Equal(t, []byte("payload"), payload)
}

func TestLossyUnwrapWrongKeyFails(t *testing.T) {
	var sender [32]byte
	key := [32]byte{1}
	datagram, err := WrapLossy(5, sender, key, KindPing, []byte("ping"))
	require.NoError(t, err)

	frame, err := ParseFrame(datagram)
	require.NoError(t, err)
	_, _, err = UnwrapLossy(frame, [32]byte{2})
	require.Error(t, err)
}

func TestHandshakeWrapUnwrapRoundTrip(t *testing.T) {
	senderPub, senderPriv, err := box.GenerateKey(rand.Reader)
	require.NoError(t, err)
	recipPub, recipPriv, err := box.GenerateKey(rand.Reader)
	require.NoError(t, err)

	datagram, err := WrapHandshake(7, *senderPub, *recipPub, *senderPriv, []byte("hs payload"))
	require.NoError(t, err)

	frame, err := ParseFrame(datagram)
	require.NoError(t, err)
	require.Equal(t, PacketKindHandshake, frame.Kind)

	plain, err := UnwrapHandshake(frame, *recipPriv)
	require.NoError(t, err)
	require.Equal(t, []byte("hs payload"), plain)
}

func TestPaddingRoundTrip(t *testing.T) {
	for n := 1; n <= 3*padAlign; n++ {
		body := make([]byte, n)
		body[0] = byte(KindPing) // leading byte nonzero, as every inner kind is
		for i := 1; i < n; i++ {
			body[i] = byte(i)
		}
		padded := PadLossless(body)
		require.Zero(t, len(padded)%padAlign)
		stripped, err := StripPadding(padded)
		require.NoError(t, err)
		require.Equal(t, body, stripped)
	}
}

func TestStripPaddingAllZerosFails(t *testing.T) {
	_, err := StripPadding(make([]byte, padAlign))
	require.Error(t, err)
}

func TestJenkinsHashKnownProperties(t *testing.T) {
	a := JenkinsHash([]byte("chat-id-one"))
	b := JenkinsHash([]byte("chat-id-two"))
	require.NotEqual(t, a, b)
	require.Equal(t, a, JenkinsHash([]byte("chat-id-one")))
	require.Zero(t, JenkinsHash(nil))
}
