package config

import (
	"time"

	"github.com/trinetra/chatsim-server/internal/core"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"`
	MaxMessageBytes   int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`

	// JWT configuration
	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTTTL      time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`
	// JWTRequired rejects WebSocket hellos without a valid token.
	JWTRequired bool `mapstructure:"jwt_required" yaml:"jwt_required"`

	// SubmitsPerMinute limits inbound submits per connection. Zero disables the limit.
	SubmitsPerMinute int `mapstructure:"submits_per_minute" yaml:"submits_per_minute"`
	MaxSessions      int `mapstructure:"max_sessions" yaml:"max_sessions"`

	Simulation Simulation `mapstructure:"simulation" yaml:"simulation"`
}

// Simulation holds the independent tunables of both demos.
type Simulation struct {
	// Seed makes runs reproducible. Zero seeds from the clock.
	Seed     uint64  `mapstructure:"seed" yaml:"seed"`
	ChatRoom Profile `mapstructure:"chatroom" yaml:"chatroom"`
	Chatbot  Profile `mapstructure:"chatbot" yaml:"chatbot"`
}

// Profile mirrors core.Profile in config form.
type Profile struct {
	ConnectDelay              time.Duration `mapstructure:"connect_delay" yaml:"connect_delay"`
	SendingDelay              time.Duration `mapstructure:"sending_delay" yaml:"sending_delay"`
	SentDelay                 time.Duration `mapstructure:"sent_delay" yaml:"sent_delay"`
	DeliveredDelay            time.Duration `mapstructure:"delivered_delay" yaml:"delivered_delay"`
	ReadDelay                 time.Duration `mapstructure:"read_delay" yaml:"read_delay"`
	ReplyProbability          float64       `mapstructure:"reply_probability" yaml:"reply_probability"`
	ReplyDelayMin             time.Duration `mapstructure:"reply_delay_min" yaml:"reply_delay_min"`
	ReplyDelayMax             time.Duration `mapstructure:"reply_delay_max" yaml:"reply_delay_max"`
	TypingDelay               time.Duration `mapstructure:"typing_delay" yaml:"typing_delay"`
	PresenceInterval          time.Duration `mapstructure:"presence_interval" yaml:"presence_interval"`
	PresenceChangeProbability float64       `mapstructure:"presence_change_probability" yaml:"presence_change_probability"`
	ChatterInterval           time.Duration `mapstructure:"chatter_interval" yaml:"chatter_interval"`
	ChatterProbability        float64       `mapstructure:"chatter_probability" yaml:"chatter_probability"`
	NotificationDuration      time.Duration `mapstructure:"notification_duration" yaml:"notification_duration"`
	ConfirmSends              bool          `mapstructure:"confirm_sends" yaml:"confirm_sends"`
	AnnounceReplies           bool          `mapstructure:"announce_replies" yaml:"announce_replies"`
	ClearedWelcomeDelay       time.Duration `mapstructure:"cleared_welcome_delay" yaml:"cleared_welcome_delay"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",
		MaxMessageBytes:   64 << 10,
		JWTSecret:         "change-me-in-production",
		JWTAudience:       "chatsim",
		JWTIssuer:         "chatsim-server",
		JWTTTL:            24 * time.Hour,
		SubmitsPerMinute:  60,
		MaxSessions:       1000,
		Simulation: Simulation{
			ChatRoom: ProfileFrom(core.DefaultChatRoomProfile()),
			Chatbot:  ProfileFrom(core.DefaultChatbotProfile()),
		},
	}
}

// ProfileFrom converts a core profile into its config form.
func ProfileFrom(p core.Profile) Profile {
	return Profile{
		ConnectDelay:              p.ConnectDelay,
		SendingDelay:              p.Delivery.Sending,
		SentDelay:                 p.Delivery.Sent,
		DeliveredDelay:            p.Delivery.Delivered,
		ReadDelay:                 p.Delivery.Read,
		ReplyProbability:          p.ReplyProbability,
		ReplyDelayMin:             p.ReplyDelayMin,
		ReplyDelayMax:             p.ReplyDelayMax,
		TypingDelay:               p.TypingDelay,
		PresenceInterval:          p.PresenceInterval,
		PresenceChangeProbability: p.PresenceChangeProbability,
		ChatterInterval:           p.ChatterInterval,
		ChatterProbability:        p.ChatterProbability,
		NotificationDuration:      p.NotificationDuration,
		ConfirmSends:              p.ConfirmSends,
		AnnounceReplies:           p.AnnounceReplies,
		ClearedWelcomeDelay:       p.ClearedWelcomeDelay,
	}
}

// Core converts the config form into a validated core profile of the given kind.
func (p Profile) Core(kind core.Kind) (core.Profile, error) {
	out := core.Profile{
		Kind:         kind,
		ConnectDelay: p.ConnectDelay,
		Delivery: core.DeliveryDelays{
			Sending:   p.SendingDelay,
			Sent:      p.SentDelay,
			Delivered: p.DeliveredDelay,
			Read:      p.ReadDelay,
		},
		ReplyProbability:          p.ReplyProbability,
		ReplyDelayMin:             p.ReplyDelayMin,
		ReplyDelayMax:             p.ReplyDelayMax,
		TypingDelay:               p.TypingDelay,
		PresenceInterval:          p.PresenceInterval,
		PresenceChangeProbability: p.PresenceChangeProbability,
		ChatterInterval:           p.ChatterInterval,
		ChatterProbability:        p.ChatterProbability,
		NotificationDuration:      p.NotificationDuration,
		ConfirmSends:              p.ConfirmSends,
		AnnounceReplies:           p.AnnounceReplies,
		ClearedWelcomeDelay:       p.ClearedWelcomeDelay,
	}
	if err := out.Validate(); err != nil {
		return core.Profile{}, err
	}
	return out, nil
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.Simulation.Seed != 0 {
		c.Simulation.Seed = other.Simulation.Seed
	}
}
