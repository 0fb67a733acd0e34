package groupchat

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gcrypto "github.com/ingvar1995/toxcore/crypto"
	"github.com/ingvar1995/toxcore/crypto/keys"
	"github.com/ingvar1995/toxcore/handshake"
	"github.com/ingvar1995/toxcore/internal/clock"
	"github.com/ingvar1995/toxcore/membership"
)

// fakeSocket is an in-memory transport.Socket double with no queued
// inbound traffic, sufficient for exercising Create without a real
// network.
type fakeSocket struct{}

func (fakeSocket) ReadFrom(b []byte) (int, net.Addr, error) {
	return 0, nil, net.UnknownNetworkError("no inbound")
}

func (fakeSocket) WriteTo(b []byte, addr net.Addr) (int, error) {
	return len(b), nil
}

func newTestIdentity(t *testing.T) *gcrypto.Identity {
	t.Helper()
	sign, err := keys.GenerateEd25519KeyPair()
	require.NoError(t, err)
	encrypt, err := keys.GenerateX25519KeyPair()
	require.NoError(t, err)
	return &gcrypto.Identity{Sign: sign, Encrypt: encrypt}
}

// TestCreateSelfJoin exercises the founder create-and-self-join path:
// shared_state.version == 1, mod_list empty, topic is a single space
// at version 1, self holds the Founder role, and peer_count == 1.
func TestCreateSelfJoin(t *testing.T) {
	sess := NewSession(clock.NewFake(time.Unix(1_700_000_000, 0)), nil, nil)
	self := newTestIdentity(t)

	chat, err := sess.Create(fakeSocket{}, PrivacyPublic, []byte("Test"), self, SelfInfo{
		Nick:   []byte("alice"),
		Status: membership.StatusNone,
	})
	require.NoError(t, err)

	assert.Equal(t, uint32(1), chat.SharedState.Current.Fields.Version)
	assert.Empty(t, chat.Mods.Keys())
	assert.Equal(t, []byte(" "), chat.Topic.Fields.Topic)
	assert.Equal(t, uint32(1), chat.Topic.Fields.Version)
	assert.Equal(t, membership.RoleFounder, chat.Peers.Peers()[0].Role)
	assert.Len(t, chat.Peers.Peers(), 1)
	assert.Equal(t, StateConnected, chat.State)

	_, ok := sess.ChatByHash(chat.ChatIDHash)
	assert.True(t, ok)
}

// TestJoinStartsConnecting exercises the joiner path: a fresh chat
// enters Connecting immediately and carries no peers beyond self
// until AddPeer is called.
func TestJoinStartsConnecting(t *testing.T) {
	sess := NewSession(clock.NewFake(time.Unix(1_700_000_000, 0)), nil, nil)
	self := newTestIdentity(t)
	var chatID [32]byte
	chatID[0] = 0xAB

	chat, err := sess.Join(fakeSocket{}, chatID, nil, self, SelfInfo{Nick: []byte("bob")}, handshake.JoinPublic)
	require.NoError(t, err)

	assert.Equal(t, StateConnecting, chat.State)
	assert.Len(t, chat.Peers.Peers(), 1)
}
