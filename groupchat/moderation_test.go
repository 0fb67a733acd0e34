package groupchat

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ingvar1995/toxcore/codec"
	gcrypto "github.com/ingvar1995/toxcore/crypto"
	"github.com/ingvar1995/toxcore/crypto/keys"
	"github.com/ingvar1995/toxcore/membership"
	"github.com/ingvar1995/toxcore/peerconn"
	"github.com/ingvar1995/toxcore/state"
)

// attachConfirmedPeer splices a fully-handshaked, confirmed peer into
// the chat, returning its table entry and the shared key its packets
// are encrypted under.
func attachConfirmedPeer(t *testing.T, chat *Chat, identity *gcrypto.Identity, nick []byte) (*membership.Peer, [32]byte) {
	t.Helper()
	p, err := chat.Peers.Add(identity.EncryptPublicBytes(), identity.SignPublicBytes())
	require.NoError(t, err)
	p.Nick = nick
	p.Role = membership.RoleUser

	sharedKey := [32]byte{42, 1, 9}
	conn := peerconn.New(time.Now(), identity.EncryptPublicBytes(), identity.SignPublicBytes(), 4, time.Second, time.Second)
	conn.SharedKey = sharedKey
	conn.Handshaked = true
	conn.Confirmed = true
	conn.RemoteAddr = &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 7002}
	chat.Conns[p.PeerID] = conn
	return p, sharedKey
}

// drainKinds flushes the chat's outbound queue and returns the inner
// kind of every lossless packet that hit the wire, decrypted under key.
func drainKinds(t *testing.T, chat *Chat, sink *memSocket, key [32]byte) []codec.InnerKind {
	t.Helper()
	chat.pumpTransport()
	sink.mu.Lock()
	defer sink.mu.Unlock()
	var kinds []codec.InnerKind
	for _, d := range sink.inbox {
		frame, err := codec.ParseFrame(d)
		require.NoError(t, err)
		if frame.Kind != codec.PacketKindLossless {
			continue
		}
		kind, _, _, err := codec.UnwrapLossless(frame, key)
		require.NoError(t, err)
		kinds = append(kinds, kind)
	}
	sink.inbox = nil
	return kinds
}

// TestFounderDemotesModerator walks the full demotion sequence: the
// SET_MOD notice, new mod list, and re-signed shared state go out
// first, then the sanctions the demoted key issued come back re-signed
// by the founder, and the topic it set is re-signed too — both with
// bumped versions.
func TestFounderDemotesModerator(t *testing.T) {
	founderSock, wire := newSocketPair()
	sess := NewSession(nil, nil, nil)
	founder := newTestIdentity(t)
	chat, err := sess.Create(founderSock, PrivacyPublic, []byte("Test"), founder, SelfInfo{Nick: []byte("alice")})
	require.NoError(t, err)

	mod := newTestIdentity(t)
	p, sharedKey := attachConfirmedPeer(t, chat, mod, []byte("mallory"))

	require.NoError(t, chat.AddModerator(p.PeerID))
	require.True(t, chat.Mods.Contains(mod.SignPublicBytes()))
	require.Equal(t, membership.RoleModerator, p.Role)
	require.Equal(t, uint32(2), chat.SharedState.Current.Fields.Version)
	require.Equal(t, chat.Mods.Hash(), chat.SharedState.Current.Fields.ModListHash)
	drainKinds(t, chat, wire, sharedKey) // discard the promotion traffic

	// the moderator sets the topic and issues an observer sanction
	topic, err := state.Set(chat.Topic, []byte("mod topic"), mod.Sign, mod.SignPublicBytes())
	require.NoError(t, err)
	chat.Topic = topic
	topicVersionBefore := chat.Topic.Fields.Version

	entry := codec.Sanction{Tag: codec.SanctionObserver, ObserverPublicKey: [32]byte{0xEE}, IssuerPublicKey: mod.SignPublicBytes()}
	require.NoError(t, chat.Sanctions.Add(entry, mod.Sign, mod.SignPublicBytes()))
	credsVersionBefore := chat.Sanctions.Creds.Version

	require.NoError(t, chat.RemoveModerator(p.PeerID))

	require.Empty(t, chat.Mods.Keys())
	require.Equal(t, membership.RoleUser, p.Role)
	require.Equal(t, uint32(3), chat.SharedState.Current.Fields.Version)
	require.Equal(t, chat.Mods.Hash(), chat.SharedState.Current.Fields.ModListHash)

	// the sanction survived, re-signed by the founder with fresh creds
	require.Len(t, chat.Sanctions.Entries, 1)
	require.Equal(t, founder.SignPublicBytes(), chat.Sanctions.Entries[0].IssuerPublicKey)
	require.Equal(t, credsVersionBefore+1, chat.Sanctions.Creds.Version)
	founderOnly := func(k [32]byte) (gcrypto.KeyPair, bool) {
		if k != founder.SignPublicBytes() {
			return nil, false
		}
		kp, err := keys.Ed25519PublicKeyFromBytes(k[:])
		if err != nil {
			return nil, false
		}
		return kp, true
	}
	require.NoError(t, state.Validate(chat.Sanctions.Entries, chat.Sanctions.Creds, chat.Sanctions.Sig, founderOnly))

	// the topic was re-signed under the founder, version bumped
	require.Equal(t, []byte("mod topic"), chat.Topic.Fields.Topic)
	require.Equal(t, founder.SignPublicBytes(), chat.Topic.Fields.SetterKey)
	require.Equal(t, topicVersionBefore+1, chat.Topic.Fields.Version)
	require.NoError(t, state.Verify(chat.Topic, founderOnly))

	kinds := drainKinds(t, chat, wire, sharedKey)
	require.Equal(t, []codec.InnerKind{
		codec.KindBroadcast, // SET_MOD(remove)
		codec.KindModList,
		codec.KindSharedState,
		codec.KindSanctionsList,
		codec.KindTopic,
	}, kinds)
}
