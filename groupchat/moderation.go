package groupchat

import (
	"net"

	"github.com/ingvar1995/toxcore/codec"
	"github.com/ingvar1995/toxcore/internal/idgen"
	"github.com/ingvar1995/toxcore/internal/logger"
	"github.com/ingvar1995/toxcore/internal/metrics"
	"github.com/ingvar1995/toxcore/membership"
	"github.com/ingvar1995/toxcore/state"
)

func randomBanID() uint32 {
	id, err := idgen.Uint32(idgen.Crypto)
	if err != nil {
		return 0
	}
	return id
}

func (c *Chat) canModerate() bool {
	role := c.Peers.Peers()[0].Role
	return role == membership.RoleFounder || role == membership.RoleModerator
}

func (c *Chat) peerIndexByID(peerID uint32) int {
	for i, p := range c.Peers.Peers() {
		if p.PeerID == peerID {
			return i
		}
	}
	return -1
}

func (c *Chat) peerIndexBySignKey(signPub [32]byte) int {
	for i, p := range c.Peers.Peers() {
		if p.SignPublicKey == signPub {
			return i
		}
	}
	return -1
}

func (c *Chat) broadcastHeader(kind codec.BroadcastKind) []byte {
	return codec.BroadcastHeader{Type: kind, ChatIDHash: c.ChatIDHash, UnixTime: c.clock.Now().Unix()}.Pack()
}

func (c *Chat) broadcastBody(kind codec.BroadcastKind, body []byte) []byte {
	return append(c.broadcastHeader(kind), body...)
}

// AddModerator promotes a peer to moderator; founder-only. Re-signs
// and broadcasts shared state after the mod list hash changes.
func (c *Chat) AddModerator(peerID uint32) error {
	if c.Peers.Peers()[0].Role != membership.RoleFounder {
		return logger.New(logger.CodeRoleInsufficient, "groupchat: add moderator requires founder")
	}
	idx := c.peerIndexByID(peerID)
	if idx < 0 {
		return logger.New(logger.CodePeerUnknown, "groupchat: add moderator target unknown")
	}
	signPub := c.Peers.Peers()[idx].SignPublicKey
	if err := c.Mods.Add(signPub, c.isConnectedSignKey); err != nil {
		return err
	}
	return c.finishModChange(true, signPub)
}

// RemoveModerator demotes a moderator; founder-only. Re-issues any
// sanction the removed key issued under the founder, and re-signs the
// topic if the removed key set it.
func (c *Chat) RemoveModerator(peerID uint32) error {
	if c.Peers.Peers()[0].Role != membership.RoleFounder {
		return logger.New(logger.CodeRoleInsufficient, "groupchat: remove moderator requires founder")
	}
	idx := c.peerIndexByID(peerID)
	if idx < 0 {
		return logger.New(logger.CodePeerUnknown, "groupchat: remove moderator target unknown")
	}
	signPub := c.Peers.Peers()[idx].SignPublicKey
	if !c.Mods.Remove(signPub) {
		return nil
	}
	if err := c.finishModChange(false, signPub); err != nil {
		return err
	}

	// after the SET_MOD / mod list / shared state sequence: re-issue the
	// removed key's sanctions under the founder, then re-sign the topic
	// if the removed key set it
	selfSign := c.SelfIdentity.SignPublicBytes()
	if reissued, err := c.Sanctions.ReissueByIssuer(signPub, c.SelfIdentity.Sign, selfSign); err == nil && reissued > 0 {
		c.broadcastLossless(codec.KindSanctionsList, c.Sanctions.Pack())
	}
	if c.Topic.Fields.SetterKey == signPub {
		resigned, err := state.ReSign(c.Topic, c.SelfIdentity.Sign, selfSign)
		if err == nil {
			c.Topic = resigned
			c.broadcastLossless(codec.KindTopic, append(c.Topic.Fields.Pack(), c.Topic.Signature[:]...))
		}
	}
	return nil
}

// finishModChange re-signs shared state under the new mod list hash
// and broadcasts the SET_MOD notice, then the new mod list, then the
// new shared state, in that order.
func (c *Chat) finishModChange(added bool, signPub [32]byte) error {
	next, err := c.SharedState.Current.Reissue(c.ChatSecret, func(f *codec.SharedStateFields) {
		f.ModListHash = c.Mods.Hash()
	})
	if err != nil {
		return err
	}
	c.SharedState.Current = next
	c.revalidateRoles()

	body := c.broadcastBody(codec.BroadcastSetMod, codec.SetModBody{Added: added, SigningPK: signPub}.Pack())
	c.broadcastLossless(codec.KindBroadcast, body)
	c.broadcastLossless(codec.KindModList, c.Mods.Pack())
	c.broadcastLossless(codec.KindSharedState, c.SharedState.Current.Pack())
	return nil
}

// AddObserver mutes a peer; mod-or-founder.
func (c *Chat) AddObserver(peerID uint32) error {
	if !c.canModerate() {
		return logger.New(logger.CodeRoleInsufficient, "groupchat: add observer requires moderator or founder")
	}
	idx := c.peerIndexByID(peerID)
	if idx < 0 {
		return logger.New(logger.CodePeerUnknown, "groupchat: add observer target unknown")
	}
	encPub := c.Peers.Peers()[idx].EncryptPublicKey
	selfSign := c.SelfIdentity.SignPublicBytes()
	entry := codec.Sanction{Tag: codec.SanctionObserver, ObserverPublicKey: encPub, IssuerPublicKey: selfSign}
	if err := c.Sanctions.Add(entry, c.SelfIdentity.Sign, selfSign); err != nil {
		return err
	}
	c.revalidateRoles()
	body := c.broadcastBody(codec.BroadcastSetObserver, codec.SetObserverBody{Added: true, EncryptPK: encPub}.Pack())
	c.broadcastLossless(codec.KindBroadcast, body)
	c.broadcastLossless(codec.KindSanctionsList, c.Sanctions.Pack())
	return nil
}

// RemoveObserver lifts an observer mute; mod-or-founder.
func (c *Chat) RemoveObserver(peerID uint32) error {
	if !c.canModerate() {
		return logger.New(logger.CodeRoleInsufficient, "groupchat: remove observer requires moderator or founder")
	}
	idx := c.peerIndexByID(peerID)
	if idx < 0 {
		return logger.New(logger.CodePeerUnknown, "groupchat: remove observer target unknown")
	}
	encPub := c.Peers.Peers()[idx].EncryptPublicKey
	selfSign := c.SelfIdentity.SignPublicBytes()
	removed, err := c.Sanctions.RemoveObserver(encPub, c.SelfIdentity.Sign, selfSign)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}
	c.revalidateRoles()
	body := c.broadcastBody(codec.BroadcastSetObserver, codec.SetObserverBody{Added: false, EncryptPK: encPub}.Pack())
	c.broadcastLossless(codec.KindBroadcast, body)
	c.broadcastLossless(codec.KindSanctionsList, c.Sanctions.Pack())
	return nil
}

// Kick disconnects a peer without a lasting sanction; mod-or-founder.
func (c *Chat) Kick(peerID uint32) error {
	if !c.canModerate() {
		return logger.New(logger.CodeRoleInsufficient, "groupchat: kick requires moderator or founder")
	}
	idx := c.peerIndexByID(peerID)
	if idx <= 0 {
		return logger.New(logger.CodePeerUnknown, "groupchat: kick target unknown")
	}
	delete(c.Conns, peerID)
	c.Peers.Delete(idx)
	metrics.PeerChurn.WithLabelValues("kicked").Inc()

	body := c.broadcastBody(codec.BroadcastRemovePeer, codec.RemovePeerBody{Event: codec.RemovePeerKick, TargetPeerID: peerID}.Pack())
	c.broadcastLossless(codec.KindBroadcast, body)
	return nil
}

// Ban disconnects a peer and records a ban sanction against its last
// known address; mod-or-founder.
func (c *Chat) Ban(peerID uint32) error {
	if !c.canModerate() {
		return logger.New(logger.CodeRoleInsufficient, "groupchat: ban requires moderator or founder")
	}
	idx := c.peerIndexByID(peerID)
	if idx <= 0 {
		return logger.New(logger.CodePeerUnknown, "groupchat: ban target unknown")
	}
	conn := c.Conns[peerID]
	var ip net.IP
	var port uint16
	if conn != nil && conn.RemoteAddr != nil {
		ip = conn.RemoteAddr.IP
		port = uint16(conn.RemoteAddr.Port)
	}
	banID := randomBanID()
	selfSign := c.SelfIdentity.SignPublicBytes()
	entry := codec.Sanction{Tag: codec.SanctionBan, BanIP: ip, BanPort: port, BanID: banID, IssuerPublicKey: selfSign}
	if err := c.Sanctions.Add(entry, c.SelfIdentity.Sign, selfSign); err != nil {
		return err
	}
	delete(c.Conns, peerID)
	c.Peers.Delete(idx)
	metrics.PeerChurn.WithLabelValues("banned").Inc()

	body := c.broadcastBody(codec.BroadcastRemovePeer, codec.RemovePeerBody{Event: codec.RemovePeerBan, TargetPeerID: peerID}.Pack())
	c.broadcastLossless(codec.KindBroadcast, body)
	c.broadcastLossless(codec.KindSanctionsList, c.Sanctions.Pack())
	return nil
}

// RemoveBan lifts a ban by id; mod-or-founder.
func (c *Chat) RemoveBan(banID uint32) error {
	if !c.canModerate() {
		return logger.New(logger.CodeRoleInsufficient, "groupchat: remove ban requires moderator or founder")
	}
	selfSign := c.SelfIdentity.SignPublicBytes()
	removed, err := c.Sanctions.RemoveBan(banID, c.SelfIdentity.Sign, selfSign)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}
	body := c.broadcastBody(codec.BroadcastRemoveBan, codec.RemoveBanBody{BanID: banID}.Pack())
	c.broadcastLossless(codec.KindBroadcast, body)
	c.broadcastLossless(codec.KindSanctionsList, c.Sanctions.Pack())
	return nil
}

// SetTopic sets the chat topic; mod-or-founder.
func (c *Chat) SetTopic(text []byte) error {
	if !c.canModerate() {
		return logger.New(logger.CodeRoleInsufficient, "groupchat: set topic requires moderator or founder")
	}
	selfSign := c.SelfIdentity.SignPublicBytes()
	next, err := state.Set(c.Topic, text, c.SelfIdentity.Sign, selfSign)
	if err != nil {
		return err
	}
	c.Topic = next
	c.broadcastLossless(codec.KindTopic, append(c.Topic.Fields.Pack(), c.Topic.Signature[:]...))
	c.callbacks.fireTopicChange(c, c.Peers.Peers()[0].PeerID, text)
	return nil
}

// SetPassword changes the join password; founder-only.
func (c *Chat) SetPassword(password []byte) error {
	if err := c.reissueSharedState(func(f *codec.SharedStateFields) { f.Password = password }); err != nil {
		return err
	}
	c.callbacks.firePasswordChange(c, len(password) > 0)
	return nil
}

// SetPrivacy changes the chat's public/private visibility; founder-only.
func (c *Chat) SetPrivacy(p Privacy) error {
	if err := c.reissueSharedState(func(f *codec.SharedStateFields) { f.Privacy = byte(p) }); err != nil {
		return err
	}
	c.callbacks.firePrivacyChange(c, p)
	return nil
}

// SetMaxPeers changes the group size cap; founder-only.
func (c *Chat) SetMaxPeers(max uint32) error {
	if err := c.reissueSharedState(func(f *codec.SharedStateFields) { f.MaxPeers = max }); err != nil {
		return err
	}
	c.callbacks.fireMaxPeersChange(c, max)
	return nil
}

func (c *Chat) reissueSharedState(mutate func(*codec.SharedStateFields)) error {
	if c.Peers.Peers()[0].Role != membership.RoleFounder {
		return logger.New(logger.CodeRoleInsufficient, "groupchat: shared state change requires founder")
	}
	next, err := c.SharedState.Current.Reissue(c.ChatSecret, mutate)
	if err != nil {
		return err
	}
	c.SharedState.Current = next
	c.broadcastLossless(codec.KindSharedState, c.SharedState.Current.Pack())
	return nil
}

// applyRemovePeer handles an inbound REMOVE_PEER broadcast, dropping
// the target peer locally (or disconnecting self if targeted).
func (c *Chat) applyRemovePeer(idx int, sourcePeerID uint32, body []byte) error {
	rp, err := codec.UnpackRemovePeerBody(body)
	if err != nil {
		return err
	}
	selfID := c.Peers.Peers()[0].PeerID
	if rp.TargetPeerID == selfID {
		c.State = StateDisconnected
		if rp.Event == codec.RemovePeerBan {
			c.callbacks.firePeerBanned(c, selfID, sourcePeerID)
		} else {
			c.callbacks.firePeerKicked(c, selfID, sourcePeerID)
		}
		return nil
	}
	if targetIdx := c.peerIndexByID(rp.TargetPeerID); targetIdx > 0 {
		delete(c.Conns, rp.TargetPeerID)
		c.Peers.Delete(targetIdx)
		metrics.PeerChurn.WithLabelValues("broadcast_remove").Inc()
	}
	if rp.Event == codec.RemovePeerBan {
		c.callbacks.firePeerBanned(c, rp.TargetPeerID, sourcePeerID)
	} else {
		c.callbacks.firePeerKicked(c, rp.TargetPeerID, sourcePeerID)
	}
	return nil
}

// applyRemoveBan handles an inbound REMOVE_BAN broadcast notice; the
// sanctions list change itself arrives as a separate SANCTIONS_LIST packet.
func (c *Chat) applyRemoveBan(body []byte) error {
	_, err := codec.UnpackRemoveBanBody(body)
	return err
}

// applySetMod handles an inbound SET_MOD broadcast notice and fires
// the moderator-change callback; the mod list/shared state mutation
// itself arrives as separate MOD_LIST/SHARED_STATE packets.
func (c *Chat) applySetMod(body []byte) error {
	sb, err := codec.UnpackSetModBody(body)
	if err != nil {
		return err
	}
	if idx := c.peerIndexBySignKey(sb.SigningPK); idx > 0 {
		c.callbacks.fireModeratorChange(c, c.Peers.Peers()[idx].PeerID, sb.Added)
	}
	return nil
}

// applySetObserver handles an inbound SET_OBSERVER broadcast notice
// and fires the observer-change callback; the sanctions list mutation
// itself arrives as a separate SANCTIONS_LIST packet.
func (c *Chat) applySetObserver(body []byte) error {
	sb, err := codec.UnpackSetObserverBody(body)
	if err != nil {
		return err
	}
	if idx := c.Peers.ByEncryptKey(sb.EncryptPK); idx > 0 {
		c.callbacks.fireObserverChange(c, c.Peers.Peers()[idx].PeerID, sb.Added)
	}
	return nil
}
