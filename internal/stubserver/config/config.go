// Package config handles configuration for the stub backend, including
// defaults, JSON overlay, and command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"
)

// User is an account the stub knows from start-up. Its raw password is kept
// so that login can check the prepared password strictly.
type User struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Config holds runtime settings for the stub backend.
//
// Fields:
//   - Addr: listen address of the HTTP endpoint.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Test default only.
//   - TokenTTL: lifetime of issued session tokens.
//   - OTPTTL: lifetime of one-time codes.
//   - KeyTTL: lifetime of envelope keys handed out by /gateway/key.
//   - PublicURL: prefix of generated short URLs.
//   - Users: seeded accounts.
type Config struct {
	Addr      string
	SecretKey string
	TokenTTL  time.Duration
	OTPTTL    time.Duration
	KeyTTL    time.Duration
	PublicURL string
	Users     []User
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure and meant for local testing only.
func (c *Config) LoadDefaults() {
	c.Addr = ":10008"
	c.SecretKey = "secretKey"
	c.TokenTTL = 60 * time.Minute
	c.OTPTTL = 120 * time.Second
	c.KeyTTL = 60 * time.Minute
	c.PublicURL = "http://localhost:10008/r"
	c.Users = nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags. args
// excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseUser reads "email:password[:name]".
func parseUser(s string) (User, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return User{}, fmt.Errorf("user %q: want email:password[:name]", s)
	}
	u := User{Email: parts[0], Password: parts[1]}
	if len(parts) == 3 {
		u.Name = parts[2]
	}
	return u, nil
}
