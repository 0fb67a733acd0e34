package groupchat

import (
	"context"

	"github.com/ingvar1995/toxcore/codec"
	"github.com/ingvar1995/toxcore/handshake"
	"github.com/ingvar1995/toxcore/internal/logger"
)

// chatEvents bridges completed handshake steps into membership and
// sync, implementing handshake.Events.
type chatEvents struct {
	c *Chat
}

func (e chatEvents) localVersion() uint32 { return e.c.SharedState.Current.Fields.Version }

// wonTieBreak applies the simultaneous-connect rule: the side with the
// lower shared-state version becomes the invite-requester, ties broken
// by the smaller signing key. Only the invite path needs the symmetry
// broken; the loser stays silent and waits.
func (e chatEvents) wonTieBreak(msg handshake.Message) bool {
	localPK := e.c.SelfIdentity.SignPublicBytes()
	return handshake.TieBreak(e.localVersion(), msg.SelfSharedStateVersion, localPK, msg.SelfSigningPublicKey) == handshake.RoleRequester
}

// sendInviteRequest sends the invite follow-up carrying our nick and
// the join password.
func (e chatEvents) sendInviteRequest(peerEncPub [32]byte) error {
	conn, ok := e.c.ConnByEncryptKey(peerEncPub)
	if !ok {
		return logger.New(logger.CodePeerUnknown, "groupchat: handshake event for unknown peer")
	}
	self := e.c.Peers.Peers()[0]
	payload := codec.InvitePayload{Nick: self.Nick, Password: e.c.JoinPassword}.Pack()
	return e.c.sendLossless(conn, AddrOf(conn), codec.KindInviteRequest, payload)
}

// sendPeerInfoExchange sends our own packed peer info plus a request
// for the remote's.
func (e chatEvents) sendPeerInfoExchange(peerEncPub [32]byte) error {
	conn, ok := e.c.ConnByEncryptKey(peerEncPub)
	if !ok {
		return logger.New(logger.CodePeerUnknown, "groupchat: handshake event for unknown peer")
	}
	addr := AddrOf(conn)
	self := e.c.Peers.Peers()[0]
	info := codec.PeerInfo{Nick: self.Nick, Status: byte(self.Status), Role: byte(self.Role)}
	if err := e.c.sendLossless(conn, addr, codec.KindPeerInfoResponse, info.Pack()); err != nil {
		return err
	}
	return e.c.sendLossless(conn, addr, codec.KindPeerInfoRequest, nil)
}

// OnRequest fires on the responder side once a RESPONSE has been sent
// back and the shared key is established. The responder only acts on
// the invite path, and only when a simultaneous connect made it the
// tie-break winner; for a peer-info exchange it simply answers the
// initiator's inbound requests as they arrive.
func (e chatEvents) OnRequest(ctx context.Context, peerEncPub [32]byte, msg handshake.Message) error {
	if msg.RequestType == handshake.RequestInviteRequest && e.wonTieBreak(msg) {
		return e.sendInviteRequest(peerEncPub)
	}
	return nil
}

// OnResponse fires on the initiator side once its own shared key is
// established, just before the HS_RESPONSE_ACK is sent. The initiator
// always drives the peer-info exchange it asked for; the invite path
// stays subject to the tie-break so simultaneous connects produce
// exactly one invite-requester.
func (e chatEvents) OnResponse(ctx context.Context, peerEncPub [32]byte, msg handshake.Message) error {
	switch msg.RequestType {
	case handshake.RequestInviteRequest:
		if !e.wonTieBreak(msg) {
			return nil
		}
		return e.sendInviteRequest(peerEncPub)
	case handshake.RequestPeerInfoExchange:
		return e.sendPeerInfoExchange(peerEncPub)
	default:
		return logger.New(logger.CodeMalformed, "groupchat: unknown handshake request type")
	}
}

// OnResponseAck fires when the HS_RESPONSE_ACK lossless packet
// arrives, completing step 3 of the handshake for this side
// (peerconn.Conn.Handshaked is set by the driver itself). Confirmed
// is promoted separately, once the peer-info exchange completes; see
// handlePeerInfoResponse and handleInviteResponse.
func (e chatEvents) OnResponseAck(ctx context.Context, peerEncPub [32]byte) error {
	if _, ok := e.c.ConnByEncryptKey(peerEncPub); !ok {
		return logger.New(logger.CodePeerUnknown, "groupchat: response ack for unknown peer")
	}
	return nil
}
