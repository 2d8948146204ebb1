package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrijs2005/gophlink/internal/common"
	"github.com/dmitrijs2005/gophlink/internal/cryptox"
)

// Config holds runtime settings for the gophlink CLI.
//
// Fields:
//   - ServerURL: base URL of the backend.
//   - ProductName: sProductName sent on auth calls.
//   - StateDSN: SQLite database holding the session and the entry cache.
//   - OTPTTL: lifetime of an OTP challenge; the countdown ticks once a second.
//   - BcryptCost: cost used to prepare passwords before they are sent.
//   - Verbose: log debug output to stderr.
type Config struct {
	ServerURL   string
	ProductName string
	StateDSN    string
	OTPTTL      time.Duration
	BcryptCost  int
	Verbose     bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:10008"
	c.ProductName = common.DefaultProductName
	c.StateDSN = "gophlink.db"
	c.OTPTTL = common.DefaultOTPSeconds * time.Second
	c.BcryptCost = cryptox.DefaultBcryptCost
	c.Verbose = false
}

// OTPSeconds is OTPTTL in whole countdown ticks.
func (c *Config) OTPSeconds() int {
	return int(c.OTPTTL / time.Second)
}

// LogLevel is the slog level matching Verbose.
func (c *Config) LogLevel() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// Validate rejects settings the client cannot work with.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server url is empty")
	}
	if c.OTPTTL < time.Second {
		return fmt.Errorf("otp ttl %s is shorter than one second", c.OTPTTL)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost %d out of range", c.BcryptCost)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones. args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
