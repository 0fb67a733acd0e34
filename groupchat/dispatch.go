package groupchat

import (
	"context"
	"net"

	"github.com/ingvar1995/toxcore/codec"
	gcrypto "github.com/ingvar1995/toxcore/crypto"
	"github.com/ingvar1995/toxcore/crypto/keys"
	"github.com/ingvar1995/toxcore/handshake"
	"github.com/ingvar1995/toxcore/internal/logger"
	"github.com/ingvar1995/toxcore/internal/metrics"
	"github.com/ingvar1995/toxcore/membership"
	"github.com/ingvar1995/toxcore/peerconn"
	"github.com/ingvar1995/toxcore/state"
)

// registerHandlers binds every InnerKind this chat understands to
// its handling method. KindMessageAck is handled by Transport itself
// and never reaches the dispatcher.
func (c *Chat) registerHandlers() {
	c.Dispatch.Register(codec.KindPing, c.handlePing)
	c.Dispatch.Register(codec.KindInviteRequest, c.handleInviteRequest)
	c.Dispatch.Register(codec.KindInviteResponse, c.handleInviteResponse)
	c.Dispatch.Register(codec.KindInviteResponseReject, c.handleInviteResponseReject)
	c.Dispatch.Register(codec.KindSyncRequest, c.handleSyncRequest)
	c.Dispatch.Register(codec.KindSyncResponse, c.handleSyncResponse)
	c.Dispatch.Register(codec.KindTopic, c.handleTopic)
	c.Dispatch.Register(codec.KindSharedState, c.handleSharedState)
	c.Dispatch.Register(codec.KindModList, c.handleModList)
	c.Dispatch.Register(codec.KindSanctionsList, c.handleSanctionsList)
	c.Dispatch.Register(codec.KindHSResponseAck, c.handleHSResponseAck)
	c.Dispatch.Register(codec.KindPeerInfoRequest, c.handlePeerInfoRequest)
	c.Dispatch.Register(codec.KindPeerInfoResponse, c.handlePeerInfoResponse)
	c.Dispatch.Register(codec.KindPeerAnnounce, c.handlePeerAnnounce)
	c.Dispatch.Register(codec.KindTCPRelays, c.handleTCPRelays)
	c.Dispatch.Register(codec.KindIPPort, c.handleIPPort)
	c.Dispatch.Register(codec.KindCustomPacket, c.handleCustomPacket)
	c.Dispatch.Register(codec.KindBroadcast, c.handleBroadcast)
}

// handleHandshakeFrame is the transport.HandshakeHandler for this
// chat: it decrypts the asymmetric HANDSHAKE envelope, creates a peer
// table entry and Conn for a brand-new REQUEST (subject to the
// per-chat rate limiter), and hands the decoded payload to the
// handshake driver.
func (c *Chat) handleHandshakeFrame(frame *codec.Frame, addr net.Addr) {
	var selfPriv [32]byte
	if rp, ok := c.SelfIdentity.Encrypt.(rawPrivateKey); ok {
		copy(selfPriv[:], rp.RawPrivateKey())
	}
	payload, err := codec.UnwrapHandshake(frame, selfPriv)
	if err != nil {
		c.log.Debug("groupchat: handshake decrypt failed", logger.Err(err))
		return
	}
	if len(payload) < 1 {
		return
	}

	conn, ok := c.ConnByEncryptKey(frame.SenderPublicKey)
	if !ok {
		if handshake.Phase(payload[0]) != handshake.PhaseRequest {
			c.log.Debug("groupchat: handshake step from unknown peer")
			return
		}
		if !c.RateLimiter.Admit() {
			return
		}
		msg, err := handshake.Unpack(payload)
		if err != nil {
			return
		}
		peer, err := c.Peers.Add(frame.SenderPublicKey, msg.SelfSigningPublicKey)
		if err != nil {
			c.log.Debug("groupchat: failed to add handshaking peer", logger.Err(err))
			return
		}
		conn = peerconn.New(c.clock.Now(), frame.SenderPublicKey, msg.SelfSigningPublicKey, c.cfg.RelayRingCap, c.cfg.LosslessRetryInterval, c.cfg.HandshakeTimeout)
		conn.RemoteAddr = addrToUDP(addr)
		c.Conns[peer.PeerID] = conn
		metrics.PeerChurn.WithLabelValues("added").Inc()
	}

	handle := func() error {
		return c.withHandshakeAddr(addr, func() error {
			return c.Handshake.HandleInbound(context.Background(), c.clock.Now(), conn, frame.SenderPublicKey, payload)
		})
	}
	if addr == nil && c.relayConn != nil {
		// relayed inbound: the reply goes back out-of-band through the
		// relay node the handshake itself declares
		if msg, err := handshake.Unpack(payload); err == nil {
			_ = c.withRelayPK(msg.Relay.PublicKey, handle)
			return
		}
	}
	_ = handle()
}

type rawPrivateKey interface{ RawPrivateKey() []byte }

func addrToUDP(addr net.Addr) *net.UDPAddr {
	if u, ok := addr.(*net.UDPAddr); ok {
		return u
	}
	return nil
}

func relayToUDPAddr(r codec.RelayNode) *net.UDPAddr {
	return &net.UDPAddr{IP: r.IP, Port: int(r.Port)}
}

// connectToPeer adds a peer discovered via sync/announce and initiates
// a handshake REQUEST to it: addressed directly when the relay record
// carries an IP, or out-of-band through the chat's TCP relay when the
// record names only a relay public key.
func (c *Chat) connectToPeer(encPub [32]byte, relays []codec.RelayNode, reqType handshake.RequestType) error {
	if _, ok := c.ConnByEncryptKey(encPub); ok {
		return nil
	}
	peer, err := c.Peers.Add(encPub, [32]byte{})
	if err != nil {
		return err
	}
	conn := peerconn.New(c.clock.Now(), encPub, [32]byte{}, c.cfg.RelayRingCap, c.cfg.LosslessRetryInterval, c.cfg.HandshakeTimeout)
	var addr net.Addr
	var relayNode codec.RelayNode
	if len(relays) > 0 {
		relayNode = relays[0]
		if len(relayNode.IP) > 0 {
			u := relayToUDPAddr(relayNode)
			conn.RemoteAddr = u
			addr = u
		}
	}
	c.Conns[peer.PeerID] = conn
	metrics.PeerChurn.WithLabelValues("added").Inc()
	initiate := func() error {
		return c.Handshake.InitiateRequest(conn, encPub, reqType, c.JoinType, c.SharedState.Current.Fields.Version, relayNode)
	}
	if addr == nil && c.relayConn != nil && relayNode.PublicKey != ([32]byte{}) {
		return c.withRelayPK(relayNode.PublicKey, initiate)
	}
	return c.withHandshakeAddr(addr, initiate)
}

// issuerLookup resolves a signing public key to a verify-only KeyPair
// if it is the founder or a current moderator, implementing
// state.IssuerLookup.
func (c *Chat) issuerLookup(signPub [32]byte) (gcrypto.KeyPair, bool) {
	if signPub != c.SharedState.Current.Fields.FounderSignPublicKey && !c.Mods.Contains(signPub) {
		return nil, false
	}
	kp, err := keys.Ed25519PublicKeyFromBytes(signPub[:])
	if err != nil {
		return nil, false
	}
	return kp, true
}

// founderKeyPair is the verify-only signing key every SHARED_STATE
// packet must check out under: the chat id itself is the founder's
// public signing key, so a fresh joiner with no cached state
// can still verify its first sync.
func (c *Chat) founderKeyPair() (gcrypto.KeyPair, error) {
	return keys.Ed25519PublicKeyFromBytes(c.ChatID[:])
}

// isConnectedSignKey reports whether signPub belongs to a peer
// currently present in the peer table, for the mod-list prune policy.
func (c *Chat) isConnectedSignKey(signPub [32]byte) bool {
	for _, p := range c.Peers.Peers() {
		if p.SignPublicKey == signPub {
			return true
		}
	}
	return false
}

// handleBadPeer drops a peer that sent malformed, unsignable, or
// inconsistent data; if it was the group's only other member, the
// chat transitions to Disconnected so the next Tick attempts a fresh
// sync elsewhere.
func (c *Chat) handleBadPeer(sender [32]byte, reason string) error {
	c.log.Warn("groupchat: dropping bad peer", logger.String("reason", reason))
	idx := c.Peers.ByEncryptKey(sender)
	if idx > 0 {
		delete(c.Conns, c.Peers.Peers()[idx].PeerID)
		c.Peers.Delete(idx)
		metrics.PeerChurn.WithLabelValues("bad_peer").Inc()
	}
	if len(c.Peers.Peers()) == 1 {
		c.State = StateDisconnected
	}
	return nil
}

// revalidateRoles recomputes every peer's role, self included, each
// time the mod list or sanctions list changes.
func (c *Chat) revalidateRoles() {
	founderEnc := c.SharedState.Current.Fields.FounderEncryptPublicKey
	for i := range c.Peers.Peers() {
		c.Peers.ReassignRole(i, founderEnc, c.Mods.Contains, c.Sanctions.IsObserver)
	}
}

func (c *Chat) handlePing(sender [32]byte, payload []byte) error {
	ping, err := codec.UnpackPingFields(payload)
	if err != nil {
		return err
	}
	conn, ok := c.ConnByEncryptKey(sender)
	if !ok {
		return logger.New(logger.CodePeerUnknown, "groupchat: ping from unknown peer")
	}
	conn.LastReceivedPing = c.clock.Now()

	behind := ping.NumConfirmedPeers > uint32(len(c.Peers.Peers())) ||
		ping.SharedStateVersion > c.SharedState.Current.Fields.Version ||
		ping.SanctionsCredsVersion > c.Sanctions.Creds.Version ||
		ping.TopicVersion > c.Topic.Fields.Version

	if !behind {
		conn.PendingStateSync = false
		return nil
	}
	if conn.PendingStateSync {
		metrics.PingsBehind.Inc()
		return c.sendSyncRequest(conn)
	}
	conn.PendingStateSync = true
	return nil
}

func (c *Chat) sendSyncRequest(conn *peerconn.Conn) error {
	req := state.SyncRequest{NumPeersKnown: uint32(len(c.Peers.Peers())), Password: c.JoinPassword}
	metrics.SyncRequestsSent.Inc()
	conn.PendingStateSync = false
	return c.sendLossless(conn, AddrOf(conn), codec.KindSyncRequest, req.Pack())
}

func (c *Chat) handleSyncRequest(sender [32]byte, payload []byte) error {
	req, err := state.UnpackSyncRequest(payload)
	if err != nil {
		return err
	}
	conn, ok := c.ConnByEncryptKey(sender)
	if !ok {
		return logger.New(logger.CodePeerUnknown, "groupchat: sync request from unknown peer")
	}
	pw := c.SharedState.Current.Fields.Password
	if len(pw) > 0 && string(pw) != string(req.Password) {
		return logger.New(logger.CodeInvalidPassword, "groupchat: sync request bad password")
	}
	addr := AddrOf(conn)

	if err := c.sendLossless(conn, addr, codec.KindSharedState, c.SharedState.Current.Pack()); err != nil {
		return err
	}
	if err := c.sendLossless(conn, addr, codec.KindModList, c.Mods.Pack()); err != nil {
		return err
	}
	if err := c.sendLossless(conn, addr, codec.KindSanctionsList, c.Sanctions.Pack()); err != nil {
		return err
	}
	if err := c.sendLossless(conn, addr, codec.KindTopic, append(c.Topic.Fields.Pack(), c.Topic.Signature[:]...)); err != nil {
		return err
	}

	var newPeers []state.NewPeerEntry
	for i, p := range c.Peers.Peers() {
		if i == 0 || p.EncryptPublicKey == sender {
			continue
		}
		pc, ok := c.Conns[p.PeerID]
		if !ok || !pc.Confirmed {
			continue
		}
		newPeers = append(newPeers, state.NewPeerEntry{EncryptPublicKey: p.EncryptPublicKey, Relays: pc.Relays})
	}
	body := state.BuildSyncResponse(newPeers)
	metrics.SyncRequestsHandled.Inc()
	if err := c.sendLossless(conn, addr, codec.KindSyncResponse, body.Pack()); err != nil {
		return err
	}

	announce := codec.AnnounceNode{ChatID: c.ChatID, PeerPublicKey: sender, UnixTimestamp: c.clock.Now().Unix()}.Pack()
	for _, p := range c.Peers.Peers()[1:] {
		if p.EncryptPublicKey == sender {
			continue
		}
		if pc, ok := c.Conns[p.PeerID]; ok && pc.Confirmed {
			if err := c.sendLossless(pc, AddrOf(pc), codec.KindPeerAnnounce, announce); err != nil {
				c.log.Warn("groupchat: peer announce send failed")
			}
		}
	}
	return nil
}

func (c *Chat) handleSyncResponse(sender [32]byte, payload []byte) error {
	body, err := state.DecodeSyncResponse(payload)
	if err != nil {
		return err
	}
	for _, entry := range body.Peers {
		if err := c.connectToPeer(entry.EncryptPublicKey, entry.Relays, handshake.RequestPeerInfoExchange); err != nil {
			c.log.Warn("groupchat: failed to connect to synced peer", logger.Err(err))
		}
	}
	// exchange peer info with the responder itself, so its nick and
	// role land on our side of the table too
	conn, ok := c.ConnByEncryptKey(sender)
	if !ok {
		return nil
	}
	addr := AddrOf(conn)
	self := c.Peers.Peers()[0]
	info := codec.PeerInfo{Nick: self.Nick, Status: byte(self.Status), Role: byte(self.Role)}
	if err := c.sendLossless(conn, addr, codec.KindPeerInfoResponse, info.Pack()); err != nil {
		return err
	}
	return c.sendLossless(conn, addr, codec.KindPeerInfoRequest, nil)
}

func (c *Chat) handleTopic(sender [32]byte, payload []byte) error {
	fields, err := codec.UnpackTopicFields(payload)
	if err != nil {
		return err
	}
	if len(payload) < len(fields.Pack())+64 {
		return logger.New(logger.CodeShortBuffer, "groupchat: topic missing signature")
	}
	incoming := state.Topic{Fields: fields}
	copy(incoming.Signature[:], payload[len(fields.Pack()):])

	accepted, changed, err := state.AcceptTopic(c.Topic, incoming, c.issuerLookup)
	if err != nil {
		return c.handleBadPeer(sender, "bad topic signature")
	}
	if !changed {
		return nil
	}
	c.Topic = accepted
	setterIdx := c.peerIndexBySignKey(fields.SetterKey)
	var setterID uint32
	if setterIdx >= 0 {
		setterID = c.Peers.Peers()[setterIdx].PeerID
	}
	c.callbacks.fireTopicChange(c, setterID, fields.Topic)
	return nil
}

func (c *Chat) handleSharedState(sender [32]byte, payload []byte) error {
	incoming, err := state.UnpackSharedState(payload)
	if err != nil {
		return err
	}
	founder, err := c.founderKeyPair()
	if err != nil {
		return err
	}
	old := c.SharedState.Current
	accepted, changed, err := state.AcceptSharedState(old, incoming, founder)
	if err != nil {
		return c.handleBadPeer(sender, "bad shared state signature")
	}
	if !changed {
		return nil
	}
	c.SharedState.Current = accepted
	if old.Fields.Privacy != accepted.Fields.Privacy {
		c.callbacks.firePrivacyChange(c, Privacy(accepted.Fields.Privacy))
	}
	if string(old.Fields.Password) != string(accepted.Fields.Password) {
		c.callbacks.firePasswordChange(c, len(accepted.Fields.Password) > 0)
	}
	if old.Fields.MaxPeers != accepted.Fields.MaxPeers {
		c.callbacks.fireMaxPeersChange(c, accepted.Fields.MaxPeers)
	}
	return nil
}

func (c *Chat) handleModList(sender [32]byte, payload []byte) error {
	keysList, err := state.ValidateAgainstHash(payload, c.SharedState.Current.Fields.ModListHash)
	if err != nil {
		return c.handleBadPeer(sender, "mod list hash mismatch")
	}
	c.Mods = state.NewModList()
	for _, k := range keysList {
		if err := c.Mods.Add(k, c.isConnectedSignKey); err != nil {
			c.log.Warn("groupchat: failed to apply incoming mod list entry", logger.Err(err))
		}
	}
	c.revalidateRoles()
	return nil
}

func (c *Chat) handleSanctionsList(sender [32]byte, payload []byte) error {
	incoming, err := state.UnpackSanctions(payload)
	if err != nil {
		return err
	}
	accepted, changed, err := state.AcceptIncoming(c.Sanctions.Creds.Version, incoming, c.issuerLookup)
	if err != nil {
		return c.handleBadPeer(sender, "bad sanctions list")
	}
	if !changed {
		return nil
	}
	c.Sanctions = accepted
	c.revalidateRoles()
	return nil
}

func (c *Chat) handleHSResponseAck(sender [32]byte, payload []byte) error {
	conn, ok := c.ConnByEncryptKey(sender)
	if !ok {
		return logger.New(logger.CodePeerUnknown, "groupchat: hs response ack from unknown peer")
	}
	return c.Handshake.HandleResponseAck(context.Background(), conn, sender)
}

func (c *Chat) handleInviteRequest(sender [32]byte, payload []byte) error {
	invite, err := codec.UnpackInvitePayload(payload)
	if err != nil {
		return err
	}
	conn, ok := c.ConnByEncryptKey(sender)
	if !ok {
		return logger.New(logger.CodePeerUnknown, "groupchat: invite request from unknown peer")
	}
	addr := AddrOf(conn)

	if uint32(len(c.Peers.Peers())) >= c.SharedState.Current.Fields.MaxPeers {
		return c.sendLossy(conn, addr, codec.KindInviteResponseReject, []byte{byte(codec.RejectGroupFull)})
	}
	pw := c.SharedState.Current.Fields.Password
	if len(pw) > 0 && string(pw) != string(invite.Password) {
		return c.sendLossy(conn, addr, codec.KindInviteResponseReject, []byte{byte(codec.RejectBadPassword)})
	}
	idx := c.Peers.ByEncryptKey(sender)
	if idx < 0 {
		return logger.New(logger.CodePeerUnknown, "groupchat: invite request peer vanished")
	}
	if err := c.Peers.Update(idx, invite.Nick, membership.StatusNone, membership.RoleUser); err != nil {
		delete(c.Conns, c.Peers.Peers()[idx].PeerID)
		return c.sendLossy(conn, addr, codec.KindInviteResponseReject, []byte{byte(codec.RejectNickTaken)})
	}
	if err := c.sendLossless(conn, addr, codec.KindInviteResponse, nil); err != nil {
		return err
	}
	return c.sendLossless(conn, addr, codec.KindPeerInfoRequest, nil)
}

func (c *Chat) handleInviteResponse(sender [32]byte, payload []byte) error {
	conn, ok := c.ConnByEncryptKey(sender)
	if !ok {
		return logger.New(logger.CodePeerUnknown, "groupchat: invite response from unknown peer")
	}
	c.confirmPeer(conn, sender)
	return c.sendSyncRequest(conn)
}

func (c *Chat) handleInviteResponseReject(sender [32]byte, payload []byte) error {
	reason := codec.InviteRejectReason(0)
	if len(payload) > 0 {
		reason = codec.InviteRejectReason(payload[0])
	}
	idx := c.Peers.ByEncryptKey(sender)
	if idx > 0 {
		delete(c.Conns, c.Peers.Peers()[idx].PeerID)
		c.Peers.Delete(idx)
		metrics.PeerChurn.WithLabelValues("invite_rejected").Inc()
	}
	if len(c.Peers.Peers()) == 1 {
		c.State = StateFailed
	}
	c.callbacks.fireRejected(c, reason)
	return nil
}

func (c *Chat) handlePeerInfoRequest(sender [32]byte, payload []byte) error {
	conn, ok := c.ConnByEncryptKey(sender)
	if !ok {
		return logger.New(logger.CodePeerUnknown, "groupchat: peer info request from unknown peer")
	}
	self := c.Peers.Peers()[0]
	info := codec.PeerInfo{Nick: self.Nick, Status: byte(self.Status), Role: byte(self.Role)}
	return c.sendLossless(conn, AddrOf(conn), codec.KindPeerInfoResponse, info.Pack())
}

func (c *Chat) handlePeerInfoResponse(sender [32]byte, payload []byte) error {
	info, _, err := codec.UnpackPeerInfo(payload)
	if err != nil {
		return err
	}
	idx := c.Peers.ByEncryptKey(sender)
	if idx < 0 {
		return logger.New(logger.CodePeerUnknown, "groupchat: peer info response from unknown peer")
	}
	peer := c.Peers.Peers()[idx]
	if err := c.Peers.Update(idx, info.Nick, membership.Status(info.Status), membership.Role(info.Role)); err != nil {
		delete(c.Conns, peer.PeerID)
		return err
	}
	want := membership.ValidateRole(peer, c.SharedState.Current.Fields.FounderEncryptPublicKey, c.Mods.Contains, c.Sanctions.IsObserver)
	if membership.ClaimedRoleInvalid(membership.Role(info.Role), want) {
		return c.handleBadPeer(sender, "claimed role not validated")
	}
	peer.Role = want
	if conn, ok := c.Conns[peer.PeerID]; ok {
		c.confirmPeer(conn, sender)
	}
	return nil
}

// confirmPeer promotes conn to confirmed once this side has completed
// a successful peer-info exchange with sender, distinct from and
// later than the raw cryptographic handshake. The peer-join callback
// fires on this transition: a peer has joined, from our view, once we
// can both reach it and name it.
func (c *Chat) confirmPeer(conn *peerconn.Conn, sender [32]byte) {
	if conn.Confirmed {
		return
	}
	conn.Confirmed = true
	c.Peers.RecordConfirmed(sender)
	if idx := c.Peers.ByEncryptKey(sender); idx > 0 {
		c.callbacks.firePeerJoin(c, c.Peers.Peers()[idx].PeerID)
	}
}

func (c *Chat) handlePeerAnnounce(sender [32]byte, payload []byte) error {
	node, _, err := codec.UnpackAnnounceNode(payload)
	if err != nil {
		return err
	}
	if node.PeerPublicKey == c.SelfIdentity.EncryptPublicBytes() {
		return nil
	}
	return c.connectToPeer(node.PeerPublicKey, []codec.RelayNode{node.Relay}, handshake.RequestPeerInfoExchange)
}

func (c *Chat) handleTCPRelays(sender [32]byte, payload []byte) error {
	conn, ok := c.ConnByEncryptKey(sender)
	if !ok {
		return logger.New(logger.CodePeerUnknown, "groupchat: tcp relays from unknown peer")
	}
	relay, _, err := codec.UnpackRelayNode(payload)
	if err != nil {
		return err
	}
	conn.AddRelay(c.clock.Now(), relay)
	return nil
}

func (c *Chat) handleIPPort(sender [32]byte, payload []byte) error {
	conn, ok := c.ConnByEncryptKey(sender)
	if !ok {
		return logger.New(logger.CodePeerUnknown, "groupchat: ip_port from unknown peer")
	}
	relay, _, err := codec.UnpackRelayNode(payload)
	if err != nil {
		return err
	}
	conn.RemoteAddr = &net.UDPAddr{IP: relay.IP, Port: int(relay.Port)}
	conn.LastSharedIPPort = c.clock.Now()
	return nil
}

func (c *Chat) handleCustomPacket(sender [32]byte, payload []byte) error {
	idx := c.Peers.ByEncryptKey(sender)
	if idx < 0 {
		return logger.New(logger.CodePeerUnknown, "groupchat: custom packet from unknown peer")
	}
	if c.Peers.Peers()[idx].Ignore {
		return nil
	}
	c.callbacks.fireCustomPacket(c, c.Peers.Peers()[idx].PeerID, false, payload)
	return nil
}

func (c *Chat) handleBroadcast(sender [32]byte, payload []byte) error {
	hdr, n, err := codec.UnpackBroadcastHeader(payload)
	if err != nil {
		return err
	}
	body := payload[n:]
	idx := c.Peers.ByEncryptKey(sender)
	if idx < 0 {
		return logger.New(logger.CodePeerUnknown, "groupchat: broadcast from unknown peer")
	}
	peerID := c.Peers.Peers()[idx].PeerID
	// local-only read suppression: state changes still apply, but no
	// message callbacks fire for an ignored peer
	ignored := c.Peers.Peers()[idx].Ignore

	switch hdr.Type {
	case codec.BroadcastStatus:
		if len(body) < 1 {
			return logger.New(logger.CodeShortBuffer, "groupchat: short status broadcast")
		}
		c.Peers.Peers()[idx].Status = membership.Status(body[0])
		c.callbacks.fireStatusChange(c, peerID, membership.Status(body[0]))
	case codec.BroadcastNick:
		c.Peers.Peers()[idx].Nick = append([]byte(nil), body...)
		c.callbacks.fireNickChange(c, peerID, body)
	case codec.BroadcastPlainMessage:
		if !ignored {
			c.callbacks.fireMessage(c, peerID, false, body)
		}
	case codec.BroadcastActionMessage:
		if !ignored {
			c.callbacks.fireMessage(c, peerID, true, body)
		}
	case codec.BroadcastPrivateMessage:
		if !ignored {
			c.callbacks.firePrivateMessage(c, peerID, body)
		}
	case codec.BroadcastPeerExit:
		delete(c.Conns, peerID)
		c.Peers.Delete(idx)
		metrics.PeerChurn.WithLabelValues("part").Inc()
		c.callbacks.firePeerExit(c, peerID, body)
	case codec.BroadcastRemovePeer:
		return c.applyRemovePeer(idx, peerID, body)
	case codec.BroadcastRemoveBan:
		return c.applyRemoveBan(body)
	case codec.BroadcastSetMod:
		return c.applySetMod(body)
	case codec.BroadcastSetObserver:
		return c.applySetObserver(body)
	default:
		c.log.Debug("groupchat: unknown broadcast sub-kind")
	}
	return nil
}
