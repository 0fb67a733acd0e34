package relay

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/ratelimit"

	"github.com/ingvar1995/toxcore/internal/logger"
)

// relayForwardRate caps how many datagrams per second one relay
// forwards, the way a production TCP relay sheds abusive clients.
const relayForwardRate = 512

// relayEnvelope is the wire format exchanged over the websocket
// loopback: the addressee's public key plus the raw group-chat
// datagram to deliver.
type relayEnvelope struct {
	To   [32]byte `json:"to"`
	Data []byte   `json:"data"`
}

// WebsocketLoopback is a Conn test double for the OOB handshake path:
// a single in-process websocket server that fans inbound envelopes
// out to whichever client registered for that public key. It exists
// so handshake/relay tests can exercise the OOB path without a real
// TCP-relay server.
type WebsocketLoopback struct {
	upgrader websocket.Upgrader
	pace     ratelimit.Limiter

	mu       sync.Mutex
	clients  map[[32]byte]*websocket.Conn
	receiver Receiver
	log      logger.Logger
}

// NewWebsocketLoopback constructs an unstarted loopback relay.
func NewWebsocketLoopback(log logger.Logger) *WebsocketLoopback {
	if log == nil {
		log = logger.Get()
	}
	return &WebsocketLoopback{
		pace:    ratelimit.New(relayForwardRate),
		clients: make(map[[32]byte]*websocket.Conn),
		log:     log,
	}
}

// Handler returns the http.Handler to mount as the relay's websocket
// endpoint. A connecting client is registered under the To key of each
// envelope it sends; no query parameter is read.
func (r *WebsocketLoopback) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := r.upgrader.Upgrade(w, req, nil)
		if err != nil {
			r.log.Warn("relay: websocket upgrade failed", logger.Err(err))
			return
		}
		go r.serveClient(conn)
	})
}

func (r *WebsocketLoopback) serveClient(conn *websocket.Conn) {
	defer conn.Close()
	for {
		var env relayEnvelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		// pacing happens on the relay's own goroutine; the cooperative
		// tick loop never blocks on it
		r.pace.Take()
		r.mu.Lock()
		r.clients[env.To] = conn
		recv := r.receiver
		r.mu.Unlock()
		if recv != nil {
			recv(env.Data)
		}
	}
}

// SetReceiver registers the callback invoked for every datagram
// relayed to this node.
func (r *WebsocketLoopback) SetReceiver(recv Receiver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receiver = recv
}

// SendTo relays datagram to the client most recently seen announcing
// relayPubKey.
func (r *WebsocketLoopback) SendTo(ctx context.Context, relayPubKey [32]byte, datagram []byte) error {
	r.mu.Lock()
	conn, ok := r.clients[relayPubKey]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("relay: no registered client for public key")
	}
	return conn.WriteJSON(relayEnvelope{To: relayPubKey, Data: datagram})
}

// Close tears down every tracked client connection.
func (r *WebsocketLoopback) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for pk, conn := range r.clients {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.clients, pk)
	}
	return firstErr
}
