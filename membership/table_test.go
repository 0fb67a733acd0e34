package membership

import (
	"bytes"
	"testing"

	"github.com/ingvar1995/toxcore/internal/logger"
	"github.com/stretchr/testify/require"
)

func TestTableAddRejectsDuplicate(t *testing.T) {
	tbl := NewTable(&Peer{Nick: []byte("self")})
	enc := [32]byte{1}
	sign := [32]byte{2}
	_, err := tbl.Add(enc, sign)
	require.NoError(t, err)
	_, err = tbl.Add(enc, sign)
	require.Error(t, err)
	require.True(t, logger.Is(err, logger.CodePeerDuplicate))
}

func TestTableUpdateRejectsEmptyNick(t *testing.T) {
	tbl := NewTable(&Peer{Nick: []byte("self")})
	tbl.Add([32]byte{1}, [32]byte{2})
	err := tbl.Update(1, nil, StatusNone, RoleUser)
	require.Error(t, err)
}

func TestTableUpdateDuplicateNickDeletesOffender(t *testing.T) {
	tbl := NewTable(&Peer{Nick: []byte("self")})
	tbl.Add([32]byte{1}, [32]byte{2})
	tbl.Add([32]byte{3}, [32]byte{4})
	require.NoError(t, tbl.Update(1, []byte("alice"), StatusNone, RoleUser))

	err := tbl.Update(2, []byte("alice"), StatusNone, RoleUser)
	require.Error(t, err)
	require.True(t, logger.Is(err, logger.CodeDuplicateNick))
	require.Len(t, tbl.Peers(), 2) // offender removed
}

func TestTableDeleteCompacts(t *testing.T) {
	tbl := NewTable(&Peer{Nick: []byte("self")})
	tbl.Add([32]byte{1}, [32]byte{1})
	tbl.Add([32]byte{2}, [32]byte{2})
	tbl.Add([32]byte{3}, [32]byte{3})
	require.Len(t, tbl.Peers(), 4)
	tbl.Delete(1)
	require.Len(t, tbl.Peers(), 3)
}

func TestConfirmedRingWraps(t *testing.T) {
	tbl := NewTable(&Peer{})
	for i := 0; i < confirmedRingCap+3; i++ {
		var pk [32]byte
		pk[0] = byte(i)
		tbl.RecordConfirmed(pk)
	}
	var earliest [32]byte
	earliest[0] = 0
	require.False(t, tbl.WasConfirmed(earliest)) // evicted by wraparound

	var recent [32]byte
	recent[0] = byte(confirmedRingCap + 2)
	require.True(t, tbl.WasConfirmed(recent))
}

func TestSetIgnoreTogglesFlagOnly(t *testing.T) {
	tbl := NewTable(&Peer{Nick: []byte("self")})
	tbl.Add([32]byte{1}, [32]byte{2})

	require.NoError(t, tbl.SetIgnore(1, true))
	require.True(t, tbl.Peers()[1].Ignore)
	require.Equal(t, RoleInvalid, tbl.Peers()[1].Role, "ignore must not touch role")

	require.NoError(t, tbl.SetIgnore(1, false))
	require.False(t, tbl.Peers()[1].Ignore)

	err := tbl.SetIgnore(5, true)
	require.Error(t, err)
	require.True(t, logger.Is(err, logger.CodePeerUnknown))
}

// TestPeerIDRejectionSampling seeds a deterministic id source that
// repeats an id already in use: allocation must skip past the
// collision rather than hand out a duplicate.
func TestPeerIDRejectionSampling(t *testing.T) {
	tbl := NewTable(&Peer{})
	tbl.SetIDSource(bytes.NewReader([]byte{
		0, 0, 0, 7, // first peer gets 7
		0, 0, 0, 7, // collision, must be re-drawn
		0, 0, 0, 9,
	}))

	p1, err := tbl.Add([32]byte{1}, [32]byte{1})
	require.NoError(t, err)
	require.Equal(t, uint32(7), p1.PeerID)

	p2, err := tbl.Add([32]byte{2}, [32]byte{2})
	require.NoError(t, err)
	require.Equal(t, uint32(9), p2.PeerID)
}

func TestPeerIDsAreUnique(t *testing.T) {
	tbl := NewTable(&Peer{})
	seen := map[uint32]bool{}
	for i := 0; i < 20; i++ {
		var pk [32]byte
		pk[0] = byte(i + 1) // self holds the all-zero key
		p, err := tbl.Add(pk, pk)
		require.NoError(t, err)
		require.False(t, seen[p.PeerID])
		seen[p.PeerID] = true
	}
}
