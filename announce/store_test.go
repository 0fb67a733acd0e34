package announce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ingvar1995/toxcore/codec"
	"github.com/ingvar1995/toxcore/internal/clock"
)

func node(chatID, peerPK [32]byte) codec.AnnounceNode {
	return codec.AnnounceNode{ChatID: chatID, PeerPublicKey: peerPK}
}

func TestAddAndGetAnnouncesExcludesCaller(t *testing.T) {
	s := NewStore(nil)
	chat := [32]byte{1}
	s.AddAnnounce(node(chat, [32]byte{2}))
	s.AddAnnounce(node(chat, [32]byte{3}))

	got := s.GetAnnounces(chat, 10, [32]byte{2})
	require.Len(t, got, 1)
	require.Equal(t, [32]byte{3}, got[0].PeerPublicKey)
}

func TestAddAnnounceOverwritesOldestWhenFull(t *testing.T) {
	s := NewStore(nil)
	chat := [32]byte{1}
	for i := 0; i < capacityPerChat+3; i++ {
		var pk [32]byte
		pk[0] = byte(i)
		s.AddAnnounce(node(chat, pk))
	}
	require.Equal(t, capacityPerChat, s.Len(chat))

	var earliest [32]byte
	earliest[0] = 0
	got := s.GetAnnounces(chat, capacityPerChat, [32]byte{})
	for _, n := range got {
		require.NotEqual(t, earliest, n.PeerPublicKey)
	}
}

func TestGetAnnouncesDistinctPeerKeys(t *testing.T) {
	s := NewStore(nil)
	chat := [32]byte{1}
	s.AddAnnounce(node(chat, [32]byte{9}))
	s.AddAnnounce(node(chat, [32]byte{9}))
	got := s.GetAnnounces(chat, 10, [32]byte{})
	require.Len(t, got, 1)
}

func TestCleanupGCARemovesBucket(t *testing.T) {
	s := NewStore(nil)
	chat := [32]byte{1}
	s.AddAnnounce(node(chat, [32]byte{2}))
	s.CleanupGCA(chat)
	require.Equal(t, 0, s.Len(chat))
}

func TestPruneRemovesStaleBuckets(t *testing.T) {
	clk := clock.NewFake(time.Now())
	s := NewStore(clk)
	chat := [32]byte{1}
	s.AddAnnounce(node(chat, [32]byte{2}))

	clk.Advance(staleTimeout + time.Minute)
	s.Prune()
	require.Equal(t, 0, s.Len(chat))
}
