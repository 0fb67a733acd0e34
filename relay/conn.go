// Package relay provides the TCP-relay transport used for the
// out-of-band handshake path: reaching a peer through a relay that
// knows only the peer's public key, not its direct address.
package relay

import "context"

// Conn is a bidirectional relay connection: raw group-chat datagrams
// go in one side and come out the other, addressed by relay public
// key rather than IP.
type Conn interface {
	// SendTo relays datagram to the peer identified by relayPubKey.
	SendTo(ctx context.Context, relayPubKey [32]byte, datagram []byte) error
	// Close releases the underlying connection.
	Close() error
}

// Receiver is invoked for every datagram a Conn relays to this node.
type Receiver func(datagram []byte)
