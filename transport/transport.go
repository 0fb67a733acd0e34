package transport

import (
	"net"
	"time"

	"github.com/ingvar1995/toxcore/codec"
	"github.com/ingvar1995/toxcore/internal/clock"
	"github.com/ingvar1995/toxcore/internal/logger"
	"github.com/ingvar1995/toxcore/internal/metrics"
	"github.com/ingvar1995/toxcore/peerconn"
)

// Socket is the minimal UDP I/O surface Transport needs, so tests can
// substitute an in-memory double instead of a real net.PacketConn.
type Socket interface {
	ReadFrom(b []byte) (n int, addr net.Addr, err error)
	WriteTo(b []byte, addr net.Addr) (n int, err error)
}

// PeerLookup resolves a peer's connection state and address given its
// encryption public key, returning ok=false if the peer is unknown to
// the chat (e.g. a stray packet from a since-departed peer).
type PeerLookup func(senderEncPub [32]byte) (conn *peerconn.Conn, addr net.Addr, ok bool)

// Transport owns one chat's inbound/outbound packet pump: decoding
// frames, handing inner payloads to the Dispatcher, and driving
// lossless retransmission.
type Transport struct {
	sock       Socket
	chatIDHash uint32
	selfEncPub [32]byte
	lookup     PeerLookup
	dispatch   *Dispatcher
	log        logger.Logger
	clock      clock.Clock

	outbox     [][]byte // queued raw datagrams awaiting send, paired with addrs via outboxAddr
	outboxAddr []net.Addr

	handshake HandshakeHandler
}

// HandshakeHandler receives a parsed (still asymmetrically-encrypted)
// HANDSHAKE frame and its source address. HANDSHAKE packets use
// per-peer long-term keys rather than the per-connection shared key,
// so Transport hands the raw frame off instead of decrypting it
// itself.
type HandshakeHandler func(frame *codec.Frame, addr net.Addr)

// SetHandshakeHandler registers the callback invoked for every
// inbound HANDSHAKE-kind frame. Nil (the default) drops them.
func (t *Transport) SetHandshakeHandler(h HandshakeHandler) { t.handshake = h }

// New constructs a Transport for one chat.
func New(sock Socket, chatIDHash uint32, selfEncPub [32]byte, lookup PeerLookup, dispatch *Dispatcher, log logger.Logger, clk clock.Clock) *Transport {
	if log == nil {
		log = logger.Get()
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &Transport{sock: sock, chatIDHash: chatIDHash, selfEncPub: selfEncPub, lookup: lookup, dispatch: dispatch, log: log, clock: clk}
}

// Enqueue schedules a raw, already-framed datagram for delivery to
// addr on the next Tick's outbound flush.
func (t *Transport) Enqueue(datagram []byte, addr net.Addr) {
	t.outbox = append(t.outbox, datagram)
	t.outboxAddr = append(t.outboxAddr, addr)
}

// Tick drains every inbound datagram currently available, then
// flushes the queued outbound datagrams. Datagrams queued after Tick
// returns (RetransmitPeer, Enqueue) go out on the next Tick's flush.
// Processing inbound before outbound lets acks advance send windows
// before new packets are queued on top of them.
func (t *Transport) Tick(readBuf []byte) {
	t.drainInbound(readBuf)
	t.flushOutbound()
}

// InjectDatagram feeds a datagram that arrived outside the socket —
// through a TCP relay — into the same inbound pipeline Tick drains.
// addr may be nil for relay-only peers with no direct address.
func (t *Transport) InjectDatagram(data []byte, addr net.Addr) {
	t.handleDatagram(data, addr)
}

func (t *Transport) drainInbound(buf []byte) {
	for {
		n, addr, err := t.sock.ReadFrom(buf)
		if err != nil || n == 0 {
			return
		}
		t.handleDatagram(buf[:n], addr)
	}
}

func (t *Transport) handleDatagram(data []byte, addr net.Addr) {
	frame, err := codec.ParseFrame(data)
	if err != nil {
		t.log.Debug("transport: dropping unparseable frame", logger.Err(err))
		return
	}
	if frame.ChatIDHash != t.chatIDHash {
		return
	}
	if frame.Kind == codec.PacketKindHandshake {
		if t.handshake != nil {
			t.handshake(frame, addr)
		}
		return
	}
	conn, _, ok := t.lookup(frame.SenderPublicKey)
	if !ok {
		t.log.Debug("transport: dropping frame from unknown peer")
		return
	}

	switch frame.Kind {
	case codec.PacketKindLossy:
		kind, payload, err := codec.UnwrapLossy(frame, conn.SharedKey)
		if err != nil {
			t.log.Debug("transport: lossy decrypt failed", logger.Err(err))
			return
		}
		// acks ride the lossy channel and never reach the dispatcher
		if kind == codec.KindMessageAck {
			t.handleAck(conn, payload, addr)
			return
		}
		metrics.LossyReceived.WithLabelValues(kind.String()).Inc()
		t.dispatch.Dispatch(kind, frame.SenderPublicKey, payload)

	case codec.PacketKindLossless:
		kind, msgID, payload, err := codec.UnwrapLossless(frame, conn.SharedKey)
		if err != nil {
			t.log.Debug("transport: lossless decrypt failed", logger.Err(err))
			return
		}
		ack, deliverables := conn.RecvWindow.Receive(msgID, byte(kind), payload)
		t.sendAck(conn, addr, ack)
		for _, d := range deliverables {
			innerKind := codec.InnerKind(d.Kind)
			metrics.LosslessReceived.WithLabelValues(innerKind.String()).Inc()
			t.dispatch.Dispatch(innerKind, frame.SenderPublicKey, d.Payload)
		}

	default:
		t.log.Debug("transport: unknown outer packet kind")
	}
}

func (t *Transport) handleAck(conn *peerconn.Conn, payload []byte, addr net.Addr) {
	readID, requestID, err := unpackAck(payload)
	if err != nil {
		t.log.Debug("transport: malformed ack", logger.Err(err))
		return
	}
	if readID != 0 {
		conn.SendWindow.Ack(readID)
	}
	if requestID != 0 {
		if datagram, ok := conn.SendWindow.RequestResend(t.clock.Now(), requestID); ok {
			t.Enqueue(datagram, addr)
		}
	}
}

func (t *Transport) sendAck(conn *peerconn.Conn, addr net.Addr, ack peerconn.AckDecision) {
	if ack.ReadID == 0 && ack.RequestID == 0 {
		return
	}
	payload := packAck(ack.ReadID, ack.RequestID)
	datagram, err := codec.WrapLossy(t.chatIDHash, t.selfEncPub, conn.SharedKey, codec.KindMessageAck, payload)
	if err != nil {
		t.log.Warn("transport: failed to wrap ack", logger.Err(err))
		return
	}
	t.Enqueue(datagram, addr)
}

// RetransmitPeer queues conn's due lossless retransmits for addr; they
// are written on the next outbound flush. The chat's per-tick loop
// invokes this once per confirmed peer, after Tick.
func (t *Transport) RetransmitPeer(now time.Time, conn *peerconn.Conn, addr net.Addr) {
	for _, datagram := range conn.SendWindow.DueRetransmits(now) {
		t.Enqueue(datagram, addr)
	}
}

func (t *Transport) flushOutbound() {
	for i, datagram := range t.outbox {
		addr := t.outboxAddr[i]
		if addr == nil {
			continue
		}
		if _, err := t.sock.WriteTo(datagram, addr); err != nil {
			t.log.Warn("transport: write failed", logger.Err(err))
		}
	}
	t.outbox = t.outbox[:0]
	t.outboxAddr = t.outboxAddr[:0]
}
