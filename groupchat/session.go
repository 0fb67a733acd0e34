package groupchat

import (
	"time"

	"github.com/ingvar1995/toxcore/announce"
	"github.com/ingvar1995/toxcore/codec"
	"github.com/ingvar1995/toxcore/config"
	gcrypto "github.com/ingvar1995/toxcore/crypto"
	"github.com/ingvar1995/toxcore/crypto/keys"
	"github.com/ingvar1995/toxcore/handshake"
	"github.com/ingvar1995/toxcore/internal/clock"
	"github.com/ingvar1995/toxcore/internal/logger"
	"github.com/ingvar1995/toxcore/internal/metrics"
	"github.com/ingvar1995/toxcore/membership"
	"github.com/ingvar1995/toxcore/state"
	"github.com/ingvar1995/toxcore/transport"
)

// Privacy is the chat's visibility setting.
type Privacy byte

const (
	PrivacyPublic  Privacy = 0
	PrivacyPrivate Privacy = 1
)

// SelfInfo is the nick/status a founder or joiner presents at creation.
type SelfInfo struct {
	Nick   []byte
	Status membership.Status
}

// Session manages the array of joined/founded Chats plus the
// process-wide AnnounceStore they share.
type Session struct {
	chats     map[uint32]*Chat // keyed by ChatIDHash
	announce  *announce.Store
	callbacks *Callbacks
	cfg       *config.Config
	clock     clock.Clock
	log       logger.Logger
}

// NewSession constructs an empty Session with default protocol tuning
// and an immutable callback set.
// A nil clock defaults to the real wall clock.
func NewSession(clk clock.Clock, log logger.Logger, callbacks *Callbacks) *Session {
	return NewSessionWithConfig(nil, clk, log, callbacks)
}

// NewSessionWithConfig constructs a Session with explicit protocol
// tuning parameters. A nil cfg falls back to config.Default().
func NewSessionWithConfig(cfg *config.Config, clk clock.Clock, log logger.Logger, callbacks *Callbacks) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if log == nil {
		log = logger.Get()
	}
	return &Session{
		chats:     make(map[uint32]*Chat),
		announce:  announce.NewStore(clk),
		callbacks: callbacks,
		cfg:       cfg,
		log:       log,
		clock:     clk,
	}
}

// Chats returns the live chat set, for iteration by the embedder's tick loop.
func (s *Session) Chats() map[uint32]*Chat { return s.chats }

// ChatByHash looks up a chat by its 32-bit chat_id_hash.
func (s *Session) ChatByHash(hash uint32) (*Chat, bool) {
	c, ok := s.chats[hash]
	return c, ok
}

// Create founds a new chat: generates the chat keypair, initializes
// and signs shared state, sets founder role, and (if Public) announces
// to the overlay.
func (s *Session) Create(sock transport.Socket, privacy Privacy, name []byte, self *gcrypto.Identity, selfInfo SelfInfo) (*Chat, error) {
	chatKey, err := keys.GenerateEd25519KeyPair()
	if err != nil {
		return nil, err
	}
	chatID := rawPub(chatKey)

	joinType := handshake.JoinPublic
	if privacy == PrivacyPrivate {
		joinType = handshake.JoinPrivate
	}

	now := s.clock.Now()
	chat := NewChat(now, chatID, self, joinType, s.log)
	chat.ChatSecret = chatKey
	chat.State = StateConnected
	chat.cfg = wireConfigFrom(s.cfg)
	chat.Bootstrap(sock, s.announce, s.clock, s.callbacks)

	// The shared state is signed by the chat key (the chat id is its
	// public half); the founder's own extended public key rides inside
	// so peers can match the founder's role and topic/sanction issuance.
	shared, err := state.NewSharedState(chatKey, self.EncryptPublicBytes(), self.SignPublicBytes(), 100, name, byte(privacy), nil, chat.Mods.Hash())
	if err != nil {
		return nil, err
	}
	chat.SharedState.Current = shared

	topic, err := state.Set(state.Topic{}, []byte(" "), self.Sign, self.SignPublicBytes())
	if err != nil {
		return nil, err
	}
	chat.Topic = topic

	chat.Peers.Peers()[0].Nick = selfInfo.Nick
	chat.Peers.Peers()[0].Status = selfInfo.Status
	chat.Peers.Peers()[0].Role = membership.RoleFounder

	s.chats[chat.ChatIDHash] = chat
	s.log.Info("groupchat: founded group", logger.String("trace_id", newTraceID()))
	metrics.HandshakesInitiated.WithLabelValues("create").Inc()

	if privacy == PrivacyPublic {
		s.announce.AddAnnounce(announceSelf(chat, now))
	}
	s.callbacks.fireSelfJoin(chat)
	return chat, nil
}

// Join creates an empty chat for an already-known chat id and enters
// Connecting, asking the overlay for peers. The
// overlay lookup itself is out of scope (Non-goal (a)); callers feed
// discovered peers back in via AddPeer once found.
func (s *Session) Join(sock transport.Socket, chatID [32]byte, password []byte, self *gcrypto.Identity, selfInfo SelfInfo, joinType handshake.JoinType) (*Chat, error) {
	now := s.clock.Now()
	chat := NewChat(now, chatID, self, joinType, s.log)
	chat.State = StateConnecting
	chat.LastJoinAttempt = now
	chat.JoinPassword = password
	chat.Peers.Peers()[0].Nick = selfInfo.Nick
	chat.Peers.Peers()[0].Status = selfInfo.Status
	chat.cfg = wireConfigFrom(s.cfg)
	chat.Bootstrap(sock, s.announce, s.clock, s.callbacks)

	s.chats[chat.ChatIDHash] = chat
	s.log.Info("groupchat: joining group", logger.String("trace_id", newTraceID()))
	return chat, nil
}

// Exit transitions a chat to Closing; the next Tick broadcasts
// partMessage (truncated to 128 bytes) and deletes it.
func (s *Session) Exit(chatIDHash uint32, partMessage []byte) {
	c, ok := s.chats[chatIDHash]
	if !ok {
		return
	}
	if len(partMessage) > maxPartMessage {
		partMessage = partMessage[:maxPartMessage]
	}
	c.PartMessage = partMessage
	c.State = StateClosing
}

// Announces exposes the shared AnnounceStore for discovery lookups.
func (s *Session) Announces() *announce.Store { return s.announce }

func announceSelf(c *Chat, now time.Time) codec.AnnounceNode {
	return codec.AnnounceNode{
		ChatID:        c.ChatID,
		PeerPublicKey: c.SelfIdentity.EncryptPublicBytes(),
		UnixTimestamp: now.Unix(),
	}
}

func rawPub(kp gcrypto.KeyPair) [32]byte {
	type rawPublic interface{ RawPublicKey() []byte }
	var out [32]byte
	if rp, ok := kp.(rawPublic); ok {
		copy(out[:], rp.RawPublicKey())
	}
	return out
}
