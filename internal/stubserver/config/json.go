package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophlink/internal/flagx"
	"github.com/dmitrijs2005/gophlink/internal/timex"
)

// JSONConfig is the file form of Config. Durations use timex.Duration, so
// both "1m" and integer nanoseconds are accepted.
type JSONConfig struct {
	Addr      string         `json:"addr"`
	SecretKey string         `json:"secret_key"`
	TokenTTL  timex.Duration `json:"token_ttl"`
	OTPTTL    timex.Duration `json:"otp_ttl"`
	KeyTTL    timex.Duration `json:"key_ttl"`
	PublicURL string         `json:"public_url"`
	Users     []User         `json:"users"`
}

// parseJSON overlays cfg with the non-empty fields of the file named by -c
// or -config.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.JSONConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.Addr != "" {
		cfg.Addr = jc.Addr
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.TokenTTL.Duration != 0 {
		cfg.TokenTTL = jc.TokenTTL.Duration
	}
	if jc.OTPTTL.Duration != 0 {
		cfg.OTPTTL = jc.OTPTTL.Duration
	}
	if jc.KeyTTL.Duration != 0 {
		cfg.KeyTTL = jc.KeyTTL.Duration
	}
	if jc.PublicURL != "" {
		cfg.PublicURL = jc.PublicURL
	}
	cfg.Users = append(cfg.Users, jc.Users...)
	return nil
}
