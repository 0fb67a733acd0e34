package codec

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRelayNodeRoundTrip(t *testing.T) {
	in := RelayNode{IP: net.ParseIP("203.0.113.7").To4(), Port: 33445, PublicKey: [32]byte{1, 2, 3}}
	out, n, err := UnpackRelayNode(in.Pack())
	require.NoError(t, err)
	require.Equal(t, len(in.Pack()), n)
	require.True(t, in.IP.Equal(out.IP))
	require.Equal(t, in.Port, out.Port)
	require.Equal(t, in.PublicKey, out.PublicKey)
}

func TestRelayNodeRoundTripIPv6(t *testing.T) {
	in := RelayNode{IP: net.ParseIP("2001:db8::1"), Port: 443, PublicKey: [32]byte{9}}
	out, _, err := UnpackRelayNode(in.Pack())
	require.NoError(t, err)
	require.True(t, in.IP.Equal(out.IP))
}

func TestPeerInfoRoundTrip(t *testing.T) {
	in := PeerInfo{Nick: []byte("alice"), Status: 1, Role: 2}
	out, n, err := UnpackPeerInfo(in.Pack())
	require.NoError(t, err)
	require.Equal(t, len(in.Pack()), n)
	require.Equal(t, in, out)
}

func TestSharedStateFieldsRoundTrip(t *testing.T) {
	in := SharedStateFields{
		FounderEncryptPublicKey: [32]byte{1},
		FounderSignPublicKey:    [32]byte{2},
		MaxPeers:                100,
		GroupName:               []byte("test group"),
		Privacy:                 0,
		Password:                []byte("hunter2"),
		ModListHash:             [32]byte{3},
		Version:                 7,
	}
	out, err := UnpackSharedStateFields(in.Pack())
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestModListRoundTrip(t *testing.T) {
	in := [][32]byte{{1}, {2}, {3}}
	out, err := UnpackModList(PackModList(in))
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestModListRoundTripEmpty(t *testing.T) {
	out, err := UnpackModList(PackModList(nil))
	require.NoError(t, err)
	require.Len(t, out, 0)
}

func TestSanctionObserverRoundTrip(t *testing.T) {
	in := Sanction{Tag: SanctionObserver, ObserverPublicKey: [32]byte{4}, IssuerPublicKey: [32]byte{5}, Signature: [64]byte{6}}
	out, n, err := UnpackSanction(in.Pack())
	require.NoError(t, err)
	require.Equal(t, len(in.Pack()), n)
	require.Equal(t, in, out)
}

func TestSanctionBanRoundTrip(t *testing.T) {
	in := Sanction{
		Tag:             SanctionBan,
		BanIP:           net.ParseIP("198.51.100.3").To4(),
		BanPort:         33445,
		BanID:           42,
		IssuerPublicKey: [32]byte{7},
		Signature:       [64]byte{8},
	}
	out, _, err := UnpackSanction(in.Pack())
	require.NoError(t, err)
	require.True(t, in.BanIP.Equal(out.BanIP))
	require.Equal(t, in.BanPort, out.BanPort)
	require.Equal(t, in.BanID, out.BanID)
	require.Equal(t, in.IssuerPublicKey, out.IssuerPublicKey)
	require.Equal(t, in.Signature, out.Signature)
}

func TestSanctionsCredsFieldsRoundTrip(t *testing.T) {
	in := SanctionsCredsFields{Version: 3, Checksum: 999, SignerKey: [32]byte{9}}
	out, err := UnpackSanctionsCredsFields(in.Pack())
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestTopicFieldsRoundTrip(t *testing.T) {
	in := TopicFields{Topic: []byte("welcome to the chat"), SetterKey: [32]byte{10}, Version: 5}
	out, err := UnpackTopicFields(in.Pack())
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestPeerAddressRoundTrip(t *testing.T) {
	in := PeerAddress{
		PublicKey: [32]byte{11},
		Relay:     RelayNode{IP: net.ParseIP("203.0.113.7").To4(), Port: 33445, PublicKey: [32]byte{12}},
	}
	out, n, err := UnpackPeerAddress(in.Pack())
	require.NoError(t, err)
	require.Equal(t, len(in.Pack()), n)
	require.Equal(t, in.PublicKey, out.PublicKey)
	require.True(t, in.Relay.IP.Equal(out.Relay.IP))
	require.Equal(t, in.Relay.Port, out.Relay.Port)
	require.Equal(t, in.Relay.PublicKey, out.Relay.PublicKey)
}

func TestAnnounceNodeRoundTrip(t *testing.T) {
	in := AnnounceNode{
		ChatID:        [32]byte{13},
		PeerPublicKey: [32]byte{14},
		Relay:         RelayNode{IP: net.ParseIP("203.0.113.7").To4(), Port: 33445, PublicKey: [32]byte{15}},
		UnixTimestamp: 1722400000,
	}
	out, n, err := UnpackAnnounceNode(in.Pack())
	require.NoError(t, err)
	require.Equal(t, len(in.Pack()), n)
	require.Equal(t, in.ChatID, out.ChatID)
	require.Equal(t, in.PeerPublicKey, out.PeerPublicKey)
	require.True(t, in.Relay.IP.Equal(out.Relay.IP))
	require.Equal(t, in.UnixTimestamp, out.UnixTimestamp)
}

func TestFriendInviteRoundTrip(t *testing.T) {
	in := FriendInvitePayload{
		Type:      FriendInviteConfirmation,
		ChatID:    [32]byte{1, 2},
		SenderKey: [32]byte{3, 4},
		Relays: []RelayNode{
			{IP: net.ParseIP("203.0.113.9").To4(), Port: 33445, PublicKey: [32]byte{5}},
		},
	}
	out, err := UnpackFriendInvite(in.Pack())
	require.NoError(t, err)
	require.Equal(t, in.Type, out.Type)
	require.Equal(t, in.ChatID, out.ChatID)
	require.Equal(t, in.SenderKey, out.SenderKey)
	require.Len(t, out.Relays, 1)
	require.True(t, in.Relays[0].IP.Equal(out.Relays[0].IP))
}

func TestBroadcastHeaderRoundTrip(t *testing.T) {
	in := BroadcastHeader{Type: BroadcastPlainMessage, ChatIDHash: 0xDEADBEEF, UnixTime: 1722400000}
	out, n, err := UnpackBroadcastHeader(in.Pack())
	require.NoError(t, err)
	require.Equal(t, len(in.Pack()), n)
	require.Equal(t, in, out)
}

func TestShortBufferErrors(t *testing.T) {
	_, _, err := UnpackRelayNode(nil)
	require.Error(t, err)
	_, _, err = UnpackPeerInfo(nil)
	require.Error(t, err)
	_, err = UnpackSharedStateFields(nil)
	require.Error(t, err)
	_, err = UnpackModList(nil)
	require.Error(t, err)
	_, _, err = UnpackSanction(nil)
	require.Error(t, err)
	_, err = UnpackSanctionsCredsFields(nil)
	require.Error(t, err)
	_, err = UnpackTopicFields(nil)
	require.Error(t, err)
	_, _, err = UnpackPeerAddress(nil)
	require.Error(t, err)
	_, _, err = UnpackAnnounceNode(nil)
	require.Error(t, err)
}
