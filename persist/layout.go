// Package persist defines the shape of a group's persisted state: the
// set of fields a host application reads back on restart to resume a
// chat without re-running the founder/join dance. This package does
// not touch a file or a database — an external collaborator owns
// actually writing GroupLayout to disk; this package only fixes its
// field layout and gives it a human-readable YAML encoding.
package persist

import (
	"fmt"
	"net"

	"github.com/mr-tron/base58"
	"gopkg.in/yaml.v3"

	"github.com/ingvar1995/toxcore/codec"
)

// TopicLayout mirrors the four persisted topic fields: text, the
// signing key of whoever last set it, version, and detached signature.
type TopicLayout struct {
	Text          []byte
	SetterSignKey [32]byte
	Version       uint32
	Signature     [64]byte
}

// SavedPeerAddress is one remembered rendezvous point: a peer's
// long-term encryption public key paired with the relay node last
// seen carrying traffic for it.
type SavedPeerAddress struct {
	PublicKey [32]byte
	Relay     codec.RelayNode
}

// GroupLayout mirrors, field for field, the persisted state layout a
// host application is expected to write on exit and restore on
// restart. Explicit length fields in that layout (group_name length,
// password length, self_nick length, saved-address count) are
// represented here as ordinary Go slice lengths rather than separate
// counters; every other field keeps its name and position.
type GroupLayout struct {
	FounderPublicKey     [32]byte
	GroupName            []byte
	PrivacyState         byte
	MaxPeers             uint32
	Password             []byte
	ModListHash          [32]byte
	SharedStateVersion   uint32
	SharedStateSignature [64]byte
	Topic                TopicLayout
	ChatPublicKey        [32]byte
	ChatSecretKey        []byte // nil for a non-founder
	ModList              [][32]byte
	SelfPublicKey        [32]byte
	SelfSecretKey        []byte
	SelfNick             []byte
	SelfRole             byte
	SelfStatus           byte
	SavedPeers           []SavedPeerAddress
}

// wire shadow: every binary field becomes a base58 string so the
// marshaled document stays readable and diffable, the same display
// encoding cmd/groupchat-keygen uses for keys on the command line.
type groupLayoutWire struct {
	FounderPublicKey     string     `yaml:"founder_public_key"`
	GroupName            string     `yaml:"group_name"`
	PrivacyState         byte       `yaml:"privacy_state"`
	MaxPeers             uint32     `yaml:"maxpeers"`
	Password             string     `yaml:"password,omitempty"`
	ModListHash          string     `yaml:"mod_list_hash"`
	SharedStateVersion   uint32     `yaml:"shared_state_version"`
	SharedStateSignature string     `yaml:"shared_state_signature"`
	Topic                topicWire  `yaml:"topic"`
	ChatPublicKey        string     `yaml:"chat_public_key"`
	ChatSecretKey        string     `yaml:"chat_secret_key,omitempty"`
	ModList              []string   `yaml:"mod_list"`
	SelfPublicKey        string     `yaml:"self_public_key"`
	SelfSecretKey        string     `yaml:"self_secret_key"`
	SelfNick             string     `yaml:"self_nick"`
	SelfRole             byte       `yaml:"self_role"`
	SelfStatus           byte       `yaml:"self_status"`
	SavedPeers           []peerWire `yaml:"saved_peers"`
}

type topicWire struct {
	Text          string `yaml:"text"`
	SetterSignKey string `yaml:"setter_sign_key"`
	Version       uint32 `yaml:"version"`
	Signature     string `yaml:"signature"`
}

type peerWire struct {
	PublicKey string `yaml:"public_key"`
	RelayIP   string `yaml:"relay_ip,omitempty"`
	RelayPort uint16 `yaml:"relay_port,omitempty"`
	RelayKey  string `yaml:"relay_key,omitempty"`
}

// MarshalYAML implements yaml.Marshaler, rendering every binary field
// as base58 text.
func (g GroupLayout) MarshalYAML() (interface{}, error) {
	peers := make([]peerWire, len(g.SavedPeers))
	for i, p := range g.SavedPeers {
		peers[i] = peerWire{
			PublicKey: base58.Encode(p.PublicKey[:]),
			RelayIP:   p.Relay.IP.String(),
			RelayPort: p.Relay.Port,
			RelayKey:  base58.Encode(p.Relay.PublicKey[:]),
		}
	}
	mods := make([]string, len(g.ModList))
	for i, k := range g.ModList {
		mods[i] = base58.Encode(k[:])
	}
	return groupLayoutWire{
		FounderPublicKey:     base58.Encode(g.FounderPublicKey[:]),
		GroupName:            string(g.GroupName),
		PrivacyState:         g.PrivacyState,
		MaxPeers:             g.MaxPeers,
		Password:             string(g.Password),
		ModListHash:          base58.Encode(g.ModListHash[:]),
		SharedStateVersion:   g.SharedStateVersion,
		SharedStateSignature: base58.Encode(g.SharedStateSignature[:]),
		Topic: topicWire{
			Text:          string(g.Topic.Text),
			SetterSignKey: base58.Encode(g.Topic.SetterSignKey[:]),
			Version:       g.Topic.Version,
			Signature:     base58.Encode(g.Topic.Signature[:]),
		},
		ChatPublicKey: base58.Encode(g.ChatPublicKey[:]),
		ChatSecretKey: encodeOptional(g.ChatSecretKey),
		ModList:       mods,
		SelfPublicKey: base58.Encode(g.SelfPublicKey[:]),
		SelfSecretKey: base58.Encode(g.SelfSecretKey),
		SelfNick:      string(g.SelfNick),
		SelfRole:      g.SelfRole,
		SelfStatus:    g.SelfStatus,
		SavedPeers:    peers,
	}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler, decoding base58 text back
// into the fixed-width binary fields.
func (g *GroupLayout) UnmarshalYAML(value *yaml.Node) error {
	var w groupLayoutWire
	if err := value.Decode(&w); err != nil {
		return err
	}

	out := GroupLayout{
		GroupName:          []byte(w.GroupName),
		PrivacyState:       w.PrivacyState,
		MaxPeers:           w.MaxPeers,
		Password:           []byte(w.Password),
		SharedStateVersion: w.SharedStateVersion,
		Topic: TopicLayout{
			Text:    []byte(w.Topic.Text),
			Version: w.Topic.Version,
		},
		SelfNick:   []byte(w.SelfNick),
		SelfRole:   w.SelfRole,
		SelfStatus: w.SelfStatus,
	}

	var err error
	if out.FounderPublicKey, err = decode32(w.FounderPublicKey); err != nil {
		return fmt.Errorf("persist: founder_public_key: %w", err)
	}
	if out.ModListHash, err = decode32(w.ModListHash); err != nil {
		return fmt.Errorf("persist: mod_list_hash: %w", err)
	}
	if out.SharedStateSignature, err = decode64(w.SharedStateSignature); err != nil {
		return fmt.Errorf("persist: shared_state_signature: %w", err)
	}
	if out.Topic.SetterSignKey, err = decode32(w.Topic.SetterSignKey); err != nil {
		return fmt.Errorf("persist: topic.setter_sign_key: %w", err)
	}
	if out.Topic.Signature, err = decode64(w.Topic.Signature); err != nil {
		return fmt.Errorf("persist: topic.signature: %w", err)
	}
	if out.ChatPublicKey, err = decode32(w.ChatPublicKey); err != nil {
		return fmt.Errorf("persist: chat_public_key: %w", err)
	}
	if out.ChatSecretKey, err = decodeOptional(w.ChatSecretKey); err != nil {
		return fmt.Errorf("persist: chat_secret_key: %w", err)
	}
	if out.SelfPublicKey, err = decode32(w.SelfPublicKey); err != nil {
		return fmt.Errorf("persist: self_public_key: %w", err)
	}
	if out.SelfSecretKey, err = base58.Decode(w.SelfSecretKey); err != nil {
		return fmt.Errorf("persist: self_secret_key: %w", err)
	}

	out.ModList = make([][32]byte, len(w.ModList))
	for i, s := range w.ModList {
		if out.ModList[i], err = decode32(s); err != nil {
			return fmt.Errorf("persist: mod_list[%d]: %w", i, err)
		}
	}

	out.SavedPeers = make([]SavedPeerAddress, len(w.SavedPeers))
	for i, p := range w.SavedPeers {
		pub, err := decode32(p.PublicKey)
		if err != nil {
			return fmt.Errorf("persist: saved_peers[%d].public_key: %w", i, err)
		}
		relayKey, err := decode32(p.RelayKey)
		if err != nil {
			return fmt.Errorf("persist: saved_peers[%d].relay_key: %w", i, err)
		}
		out.SavedPeers[i] = SavedPeerAddress{
			PublicKey: pub,
			Relay: codec.RelayNode{
				IP:        parseIP(p.RelayIP),
				Port:      p.RelayPort,
				PublicKey: relayKey,
			},
		}
	}

	*g = out
	return nil
}

func encodeOptional(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return base58.Encode(b)
}

func decodeOptional(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return base58.Decode(s)
}

func decode32(s string) ([32]byte, error) {
	var out [32]byte
	if s == "" {
		return out, nil
	}
	b, err := base58.Decode(s)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

func parseIP(s string) net.IP {
	if s == "" {
		return nil
	}
	return net.ParseIP(s)
}

func decode64(s string) ([64]byte, error) {
	var out [64]byte
	if s == "" {
		return out, nil
	}
	b, err := base58.Decode(s)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}
