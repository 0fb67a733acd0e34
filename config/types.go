// Package config holds protocol tuning parameters for the group-chat
// core: ping interval, lossless window size, handshake timeout, the
// new-connection rate limiter's threshold and decay, announce
// capacity/timeout, and rejoin interval. This is tuning configuration
// only; the outer host application owns its own CLI/UI configuration.
package config

import "time"

// Config is the full set of tunable protocol parameters.
type Config struct {
	// Network carries per-tick timing knobs for the transport/session
	// layer.
	Network NetworkConfig `yaml:"network" json:"network"`
	// Membership carries peer-table and rate-limiting knobs.
	Membership MembershipConfig `yaml:"membership" json:"membership"`
	// Announce carries announce sizing/expiry values (see AnnounceConfig).
	Announce AnnounceConfig `yaml:"announce" json:"announce"`
	// Logging controls the structured logger.
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// NetworkConfig configures transport/session timing.
type NetworkConfig struct {
	PingInterval           time.Duration `yaml:"ping_interval" json:"ping_interval"`
	LosslessWindowSize     int           `yaml:"lossless_window_size" json:"lossless_window_size"`
	LosslessRetryInterval  time.Duration `yaml:"lossless_retry_interval" json:"lossless_retry_interval"`
	HandshakeTimeout       time.Duration `yaml:"handshake_timeout" json:"handshake_timeout"`
	ConfirmedPeerTimeout   time.Duration `yaml:"confirmed_peer_timeout" json:"confirmed_peer_timeout"`
	UnconfirmedPeerTimeout time.Duration `yaml:"unconfirmed_peer_timeout" json:"unconfirmed_peer_timeout"`
	ConnectingTimeout      time.Duration `yaml:"connecting_timeout" json:"connecting_timeout"`
	RejoinInterval         time.Duration `yaml:"rejoin_interval" json:"rejoin_interval"`
	RelayShareInterval     time.Duration `yaml:"relay_share_interval" json:"relay_share_interval"`
	IPPortShareInterval    time.Duration `yaml:"ip_port_share_interval" json:"ip_port_share_interval"`
	MaxPacketSize          int           `yaml:"max_packet_size" json:"max_packet_size"`
}

// MembershipConfig configures peer-table and rate-limiting knobs.
type MembershipConfig struct {
	RateLimitThreshold int           `yaml:"rate_limit_threshold" json:"rate_limit_threshold"`
	RateLimitDecay     time.Duration `yaml:"rate_limit_decay" json:"rate_limit_decay"`
	MaxMods            int           `yaml:"max_mods" json:"max_mods"`
	ConfirmedPeersRing int           `yaml:"confirmed_peers_ring" json:"confirmed_peers_ring"`
	SavedInvitesRing   int           `yaml:"saved_invites_ring" json:"saved_invites_ring"`
	RelayRing          int           `yaml:"relay_ring" json:"relay_ring"`
}

// AnnounceConfig holds announce capacity and expiry values. They are
// loaded and validated only: announce.Store does not read them and
// uses its own fixed capacity (16 per chat) and stale timeout (10
// minutes).
type AnnounceConfig struct {
	Capacity int           `yaml:"capacity" json:"capacity"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// Default returns the stock tuning configuration.
func Default() *Config {
	return &Config{
		Network: NetworkConfig{
			PingInterval:           12 * time.Second,
			LosslessWindowSize:     64,
			LosslessRetryInterval:  2 * time.Second,
			HandshakeTimeout:       10 * time.Second,
			ConfirmedPeerTimeout:   60 * time.Second,
			UnconfirmedPeerTimeout: 20 * time.Second,
			ConnectingTimeout:      60 * time.Second,
			RejoinInterval:         20 * time.Second,
			RelayShareInterval:     60 * time.Second,
			IPPortShareInterval:    20 * time.Second,
			MaxPacketSize:          65507,
		},
		Membership: MembershipConfig{
			RateLimitThreshold: 10,
			RateLimitDecay:     time.Second,
			MaxMods:            128,
			ConfirmedPeersRing: 10,
			SavedInvitesRing:   10,
			RelayRing:          4,
		},
		Announce: AnnounceConfig{
			Capacity: 16,
			Timeout:  300 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	switch {
	case c.Network.LosslessWindowSize <= 0 || c.Network.LosslessWindowSize&(c.Network.LosslessWindowSize-1) != 0:
		return errInvalid("network.lossless_window_size must be a positive power of two")
	case c.Network.MaxPacketSize <= 0 || c.Network.MaxPacketSize > 65507:
		return errInvalid("network.max_packet_size must be in (0, 65507]")
	case c.Membership.RateLimitThreshold <= 0:
		return errInvalid("membership.rate_limit_threshold must be positive")
	case c.Membership.MaxMods <= 0 || c.Membership.MaxMods > 128:
		return errInvalid("membership.max_mods must be in (0, 128]")
	case c.Announce.Capacity <= 0:
		return errInvalid("announce.capacity must be positive")
	}
	return nil
}

func errInvalid(msg string) error { return &validationError{msg: msg} }

type validationError struct{ msg string }

func (e *validationError) Error() string { return "config: " + e.msg }
