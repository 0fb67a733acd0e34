package groupchat

import (
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ingvar1995/toxcore/codec"
	"github.com/ingvar1995/toxcore/handshake"
	"github.com/ingvar1995/toxcore/membership"
)

// memSocket is one half of an in-memory datagram pair: writes land in
// the other half's inbox, reads drain our own. Safe for two sessions
// ticking concurrently.
type memSocket struct {
	addr *net.UDPAddr
	peer *memSocket

	mu    sync.Mutex
	inbox [][]byte
}

var errInboxEmpty = net.UnknownNetworkError("inbox empty")

func newSocketPair() (*memSocket, *memSocket) {
	a := &memSocket{addr: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 7001}}
	b := &memSocket{addr: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 7002}}
	a.peer, b.peer = b, a
	return a, b
}

func (s *memSocket) ReadFrom(b []byte) (int, net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.inbox) == 0 {
		return 0, nil, errInboxEmpty
	}
	d := s.inbox[0]
	s.inbox = s.inbox[1:]
	return copy(b, d), s.peer.addr, nil
}

func (s *memSocket) WriteTo(b []byte, _ net.Addr) (int, error) {
	cp := append([]byte(nil), b...)
	s.peer.mu.Lock()
	s.peer.inbox = append(s.peer.inbox, cp)
	s.peer.mu.Unlock()
	return len(b), nil
}

// TestTwoPartyJoinOverLoopback drives a full password-protected join
// between a founder and a joiner, each session ticking in its own
// goroutine: handshake, invite, sync, peer-info exchange, and finally
// a broadcast message landing at the joiner exactly once.
func TestTwoPartyJoinOverLoopback(t *testing.T) {
	founderSock, joinerSock := newSocketPair()

	peerJoined := make(chan uint32, 4)
	founderSess := NewSession(nil, nil, &Callbacks{
		OnPeerJoin: func(_ *Chat, id uint32) { peerJoined <- id },
	})
	founder := newTestIdentity(t)
	fChat, err := founderSess.Create(founderSock, PrivacyPublic, []byte("Test"), founder, SelfInfo{Nick: []byte("alice")})
	require.NoError(t, err)
	require.NoError(t, fChat.SetPassword([]byte("hunter2")))
	wantVersion := fChat.SharedState.Current.Fields.Version

	messages := make(chan []byte, 4)
	joinerSess := NewSession(nil, nil, &Callbacks{
		OnMessage: func(_ *Chat, _ uint32, _ bool, text []byte) {
			messages <- append([]byte(nil), text...)
		},
	})
	joiner := newTestIdentity(t)
	jChat, err := joinerSess.Join(joinerSock, fChat.ChatID, []byte("hunter2"), joiner, SelfInfo{Nick: []byte("bob")}, handshake.JoinPublic)
	require.NoError(t, err)
	require.NoError(t, jChat.AddPeer(founder.EncryptPublicBytes(), []codec.RelayNode{
		{IP: founderSock.addr.IP, Port: uint16(founderSock.addr.Port)},
	}))

	var g errgroup.Group
	g.Go(func() error {
		deadline := time.Now().Add(10 * time.Second)
		for time.Now().Before(deadline) {
			founderSess.Tick(time.Now())
			if len(fChat.Peers.Peers()) == 2 && fChat.hasConfirmedPeer() {
				return nil
			}
			time.Sleep(2 * time.Millisecond)
		}
		return errors.New("founder never confirmed the joiner")
	})
	g.Go(func() error {
		deadline := time.Now().Add(10 * time.Second)
		for time.Now().Before(deadline) {
			joinerSess.Tick(time.Now())
			if jChat.State == StateConnected && jChat.SharedState.Current.Fields.Version == wantVersion {
				return nil
			}
			time.Sleep(2 * time.Millisecond)
		}
		return errors.New("joiner never reached Connected with synced state")
	})
	require.NoError(t, g.Wait())

	select {
	case id := <-peerJoined:
		require.NotZero(t, id)
	default:
		t.Fatal("founder never saw a peer_join")
	}

	// the joiner's replica converged on the founder's signed state
	require.Equal(t, wantVersion, jChat.SharedState.Current.Fields.Version)
	require.Equal(t, []byte("Test"), jChat.SharedState.Current.Fields.GroupName)
	require.Equal(t, []byte("hunter2"), jChat.SharedState.Current.Fields.Password)
	require.Equal(t, []byte(" "), jChat.Topic.Fields.Topic)

	idx := fChat.Peers.ByEncryptKey(joiner.EncryptPublicBytes())
	require.Greater(t, idx, 0)
	require.Equal(t, []byte("bob"), fChat.Peers.Peers()[idx].Nick)
	require.Equal(t, membership.RoleUser, fChat.Peers.Peers()[idx].Role)

	// both sessions on the test goroutine now: broadcast and deliver
	require.Zero(t, fChat.SendMessage(false, []byte("hello group")))
	for i := 0; i < 10; i++ {
		founderSess.Tick(time.Now())
		joinerSess.Tick(time.Now())
	}
	select {
	case text := <-messages:
		require.Equal(t, []byte("hello group"), text)
	default:
		t.Fatal("joiner never received the broadcast message")
	}
	select {
	case <-messages:
		t.Fatal("broadcast delivered more than once")
	default:
	}

	// the read acks flowed back both ways: neither side is still
	// holding unacked lossless packets, so nothing retransmits
	fConn, ok := fChat.ConnByEncryptKey(joiner.EncryptPublicBytes())
	require.True(t, ok)
	require.False(t, fConn.SendWindow.Pending(), "joiner's acks must drain the founder's send window")
	jConn, ok := jChat.ConnByEncryptKey(founder.EncryptPublicBytes())
	require.True(t, ok)
	require.False(t, jConn.SendWindow.Pending(), "founder's acks must drain the joiner's send window")
}

// TestJoinWrongPasswordRejected exercises the reject path: a joiner
// presenting the wrong password is turned away with an
// INVITE_RESPONSE_REJECT carrying the bad-password sub-code, and its
// chat lands in Failed.
func TestJoinWrongPasswordRejected(t *testing.T) {
	founderSock, joinerSock := newSocketPair()

	founderSess := NewSession(nil, nil, nil)
	founder := newTestIdentity(t)
	fChat, err := founderSess.Create(founderSock, PrivacyPublic, []byte("Test"), founder, SelfInfo{Nick: []byte("alice")})
	require.NoError(t, err)
	require.NoError(t, fChat.SetPassword([]byte("hunter2")))

	rejected := make(chan codec.InviteRejectReason, 1)
	joinerSess := NewSession(nil, nil, &Callbacks{
		OnRejected: func(_ *Chat, r codec.InviteRejectReason) { rejected <- r },
	})
	joiner := newTestIdentity(t)
	jChat, err := joinerSess.Join(joinerSock, fChat.ChatID, []byte("wrong"), joiner, SelfInfo{Nick: []byte("mallory")}, handshake.JoinPublic)
	require.NoError(t, err)
	require.NoError(t, jChat.AddPeer(founder.EncryptPublicBytes(), []codec.RelayNode{
		{IP: founderSock.addr.IP, Port: uint16(founderSock.addr.Port)},
	}))

	for i := 0; i < 20; i++ {
		joinerSess.Tick(time.Now())
		founderSess.Tick(time.Now())
	}

	select {
	case r := <-rejected:
		require.Equal(t, codec.RejectBadPassword, r)
	default:
		t.Fatal("joiner never saw the rejection")
	}
	require.Equal(t, StateFailed, jChat.State)
}
