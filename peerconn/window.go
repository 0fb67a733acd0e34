package peerconn

import (
	"time"

	"github.com/ingvar1995/toxcore/internal/metrics"
)

// windowSize is the number of slots in the lossless send/receive
// circular windows, indexed by the low 6 bits of message_id.
const windowSize = 64

// sendSlot is one entry in the lossless send window: the raw
// already-encrypted datagram plus its retry bookkeeping.
type sendSlot struct {
	occupied  bool
	messageID uint64
	datagram  []byte
	createdAt time.Time
	lastTryAt time.Time
}

// SendWindow is the sender-side 64-slot circular buffer of unacked
// lossless packets. The window does not advance past the
// earliest unacked slot.
type SendWindow struct {
	slots         [windowSize]sendSlot
	nextMessageID uint64 // starts at 1
	retryAfter    time.Duration
}

// NewSendWindow constructs a SendWindow with the given retransmit
// interval.
func NewSendWindow(retryAfter time.Duration) *SendWindow {
	return &SendWindow{nextMessageID: 1, retryAfter: retryAfter}
}

// NextID returns the message id Store will assign on its next call,
// so a caller can build the plaintext (which carries the id) before
// the datagram is encrypted and stored.
func (w *SendWindow) NextID() uint64 { return w.nextMessageID }

// Store assigns the next message id to datagram, places it in the
// window, and returns the assigned id.
func (w *SendWindow) Store(now time.Time, datagram []byte) uint64 {
	id := w.nextMessageID
	w.nextMessageID++
	idx := id % windowSize
	w.slots[idx] = sendSlot{occupied: true, messageID: id, datagram: datagram, createdAt: now, lastTryAt: now}
	return id
}

// Ack removes the slot holding messageID, if still present and
// matching. Returns true if a slot was cleared.
func (w *SendWindow) Ack(messageID uint64) bool {
	idx := messageID % windowSize
	slot := &w.slots[idx]
	if slot.occupied && slot.messageID == messageID {
		*slot = sendSlot{}
		return true
	}
	return false
}

// RequestResend forces an immediate retry of the slot holding
// messageID, if it is still present.
func (w *SendWindow) RequestResend(now time.Time, messageID uint64) ([]byte, bool) {
	idx := messageID % windowSize
	slot := &w.slots[idx]
	if slot.occupied && slot.messageID == messageID {
		slot.lastTryAt = now
		metrics.LosslessRetransmits.Inc()
		return slot.datagram, true
	}
	return nil, false
}

// DueRetransmits returns the datagrams of every occupied slot whose
// last send attempt is older than retryAfter, updating their
// lastTryAt as a side effect.
func (w *SendWindow) DueRetransmits(now time.Time) [][]byte {
	var due [][]byte
	for i := range w.slots {
		slot := &w.slots[i]
		if !slot.occupied {
			continue
		}
		if now.Sub(slot.lastTryAt) >= w.retryAfter {
			slot.lastTryAt = now
			metrics.LosslessRetransmits.Inc()
			due = append(due, slot.datagram)
		}
	}
	return due
}

// Pending reports whether any slot is still awaiting an ack.
func (w *SendWindow) Pending() bool {
	for i := range w.slots {
		if w.slots[i].occupied {
			return true
		}
	}
	return false
}

// recvSlot buffers an out-of-order arrival until the gap ahead of it closes.
type recvSlot struct {
	occupied bool
	kind     byte
	payload  []byte
}

// RecvWindow is the receiver-side 64-slot circular buffer plus the
// recv_message_id cursor for the next expected id. The inner
// kind byte travels alongside each buffered payload so out-of-order
// arrivals can still be dispatched correctly once their gap fills.
type RecvWindow struct {
	slots  [windowSize]recvSlot
	nextID uint64 // recv_message_id, starts at 0
}

// NewRecvWindow constructs an empty RecvWindow.
func NewRecvWindow() *RecvWindow {
	return &RecvWindow{}
}

// AckDecision is the (read_id, request_id) pair to send back for an
// inbound lossless packet. At most one field is nonzero.
type AckDecision struct {
	ReadID    uint64
	RequestID uint64
}

// Deliverable is a payload that has become ready for in-order
// delivery to the application handler, tagged with its inner kind.
type Deliverable struct {
	MessageID uint64
	Kind      byte
	Payload   []byte
}

// Receive processes one inbound lossless payload for messageID,
// returning the ack to send and the (possibly multiple, now
// contiguous) payloads ready for in-order delivery. kind is the
// packet's InnerKind (as a byte, to keep this package free of a codec
// import), threaded through so buffered gap-fill entries keep it.
func (w *RecvWindow) Receive(messageID uint64, kind byte, payload []byte) (AckDecision, []Deliverable) {
	switch {
	case messageID <= w.nextID:
		metrics.LosslessDuplicates.Inc()
		return AckDecision{ReadID: messageID}, nil

	case messageID == w.nextID+1:
		w.nextID = messageID
		out := []Deliverable{{MessageID: messageID, Kind: kind, Payload: payload}}
		out = append(out, w.drainContiguous()...)
		// the read ack names the packet that arrived, not the cursor
		// after any gap-fill drain
		return AckDecision{ReadID: messageID}, out

	case messageID-w.nextID > windowSize:
		return AckDecision{}, nil // outside window, drop

	default:
		idx := messageID % windowSize
		w.slots[idx] = recvSlot{occupied: true, kind: kind, payload: payload}
		metrics.LosslessGaps.Inc()
		return AckDecision{RequestID: w.nextID + 1}, nil
	}
}

func (w *RecvWindow) drainContiguous() []Deliverable {
	var out []Deliverable
	for {
		idx := (w.nextID + 1) % windowSize
		slot := &w.slots[idx]
		if !slot.occupied {
			break
		}
		w.nextID++
		out = append(out, Deliverable{MessageID: w.nextID, Kind: slot.kind, Payload: slot.payload})
		*slot = recvSlot{}
	}
	return out
}

// NextExpected returns the message id the window expects next: one
// past the recv_message_id cursor.
func (w *RecvWindow) NextExpected() uint64 { return w.nextID + 1 }
