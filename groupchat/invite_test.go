package groupchat

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ingvar1995/toxcore/codec"
	"github.com/ingvar1995/toxcore/internal/clock"
	"github.com/ingvar1995/toxcore/membership"
)

// TestFriendInviteDance walks all three steps of the friend-invite
// exchange: invite, accept, confirm — ending with the invitee holding
// a Connecting chat that has scheduled a handshake to the inviter.
func TestFriendInviteDance(t *testing.T) {
	inviterSess := NewSession(clock.NewFake(time.Unix(1_700_000_000, 0)), nil, nil)
	inviter := newTestIdentity(t)
	chat, err := inviterSess.Create(fakeSocket{}, PrivacyPrivate, []byte("club"), inviter, SelfInfo{Nick: []byte("alice")})
	require.NoError(t, err)

	var friendID [32]byte
	friendID[0] = 0x44

	inviteBytes, err := inviterSess.InviteFriend(chat.ChatIDHash, friendID)
	require.NoError(t, err)
	require.Len(t, chat.SavedInvites, 1)

	inviteeSess := NewSession(clock.NewFake(time.Unix(1_700_000_100, 0)), nil, nil)
	invitee := newTestIdentity(t)
	inviteeChat, acceptedBytes, err := inviteeSess.AcceptFriendInvite(fakeSocket{}, inviteBytes, []byte("pw"), invitee, SelfInfo{Nick: []byte("bob")})
	require.NoError(t, err)
	require.Equal(t, chat.ChatID, inviteeChat.ChatID)
	require.Equal(t, StateConnecting, inviteeChat.State)

	relays := []codec.RelayNode{{IP: net.IPv4(127, 0, 0, 1).To4(), Port: 33445, PublicKey: [32]byte{7}}}
	confirmationBytes, err := inviterSess.HandleInviteAccepted(friendID, acceptedBytes, relays)
	require.NoError(t, err)

	require.NoError(t, inviteeSess.HandleInviteConfirmation(confirmationBytes))
	require.Len(t, inviteeChat.Peers.Peers(), 2)
	_, ok := inviteeChat.ConnByEncryptKey(inviter.EncryptPublicBytes())
	require.True(t, ok)
}

// TestHandleInviteAcceptedRejectsUnknownFriend drops an accepted reply
// from a friend that was never invited.
func TestHandleInviteAcceptedRejectsUnknownFriend(t *testing.T) {
	sess := NewSession(clock.NewFake(time.Unix(1_700_000_000, 0)), nil, nil)
	inviter := newTestIdentity(t)
	chat, err := sess.Create(fakeSocket{}, PrivacyPrivate, []byte("club"), inviter, SelfInfo{Nick: []byte("alice")})
	require.NoError(t, err)

	stranger := newTestIdentity(t)
	accepted := codec.FriendInvitePayload{
		Type:      codec.FriendInviteAccepted,
		ChatID:    chat.ChatID,
		SenderKey: stranger.EncryptPublicBytes(),
	}.Pack()

	var neverInvited [32]byte
	neverInvited[0] = 0x99
	_, err = sess.HandleInviteAccepted(neverInvited, accepted, nil)
	require.Error(t, err)
}

func TestAccessorsAndSelfMutators(t *testing.T) {
	sess := NewSession(clock.NewFake(time.Unix(1_700_000_000, 0)), nil, nil)
	self := newTestIdentity(t)
	chat, err := sess.Create(fakeSocket{}, PrivacyPublic, []byte("Test"), self, SelfInfo{Nick: []byte("alice")})
	require.NoError(t, err)

	require.Equal(t, []byte("Test"), chat.GroupName())
	require.Empty(t, chat.Password())
	require.Equal(t, PrivacyPublic, chat.PrivacyState())
	require.Equal(t, []byte(" "), chat.TopicText())
	require.Equal(t, []byte("alice"), chat.SelfNick())
	require.Equal(t, membership.RoleFounder, chat.SelfRole())

	require.Zero(t, chat.SetSelfNick([]byte("alice2")))
	require.Equal(t, []byte("alice2"), chat.SelfNick())
	require.Equal(t, -2, chat.SetSelfNick(nil))

	require.Zero(t, chat.SetSelfStatus(membership.StatusAway))
	require.Equal(t, -3, chat.SetSelfStatus(membership.StatusInvalid))

	_, ok := chat.PeerNick(0xDEAD)
	require.False(t, ok)
}
