package peerconn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSendWindowStoreAndAck(t *testing.T) {
	w := NewSendWindow(time.Second)
	now := time.Now()
	id := w.Store(now, []byte("hello"))
	require.Equal(t, uint64(1), id)
	require.True(t, w.Pending())
	require.True(t, w.Ack(id))
	require.False(t, w.Pending())
}

func TestSendWindowDueRetransmits(t *testing.T) {
	w := NewSendWindow(10 * time.Millisecond)
	now := time.Now()
	w.Store(now, []byte("pkt"))
	due := w.DueRetransmits(now)
	require.Empty(t, due)
	due = w.DueRetransmits(now.Add(20 * time.Millisecond))
	require.Len(t, due, 1)
}

func TestRecvWindowInOrder(t *testing.T) {
	w := NewRecvWindow()
	ack, deliver := w.Receive(1, 9, []byte("a"))
	require.Equal(t, AckDecision{ReadID: 1}, ack)
	require.Len(t, deliver, 1)
	require.Equal(t, uint64(1), deliver[0].MessageID)
	require.Equal(t, byte(9), deliver[0].Kind)
}

func TestRecvWindowDuplicate(t *testing.T) {
	w := NewRecvWindow()
	w.Receive(1, 9, []byte("a"))
	ack, deliver := w.Receive(1, 9, []byte("a"))
	require.Empty(t, deliver)
	require.Equal(t, uint64(1), ack.ReadID)
}

// TestRecvWindowGapThenFill delivers ids 3, 1, 2: the gap is
// request-acked, then each in-order ingestion is read-acked by the id
// that arrived (not the drained cursor), and the buffered id 3 drains
// behind 2 without a duplicate delivery.
func TestRecvWindowGapThenFill(t *testing.T) {
	w := NewRecvWindow()
	ack, deliver := w.Receive(3, 7, []byte("c"))
	require.Empty(t, deliver)
	require.Equal(t, AckDecision{RequestID: 1}, ack)

	ack, deliver = w.Receive(1, 7, []byte("a"))
	require.Equal(t, AckDecision{ReadID: 1}, ack)
	require.Len(t, deliver, 1)

	ack, deliver = w.Receive(2, 7, []byte("b"))
	require.Equal(t, AckDecision{ReadID: 2}, ack)
	require.Len(t, deliver, 2)
	require.Equal(t, uint64(2), deliver[0].MessageID)
	require.Equal(t, uint64(3), deliver[1].MessageID)
	require.Equal(t, byte(7), deliver[1].Kind)
}

func TestRecvWindowOutsideWindowDropped(t *testing.T) {
	w := NewRecvWindow()
	ack, deliver := w.Receive(200, 1, []byte("far"))
	require.Empty(t, deliver)
	require.Equal(t, AckDecision{}, ack)
}
