package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophlink/internal/flagx"
	"github.com/dmitrijs2005/gophlink/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. OTPTTL uses
// timex.Duration, so it may be "2m" or integer nanoseconds.
type JSONConfig struct {
	ServerURL   string         `json:"server_url"`
	ProductName string         `json:"product_name"`
	StateDSN    string         `json:"state_dsn"`
	OTPTTL      timex.Duration `json:"otp_ttl"`
	BcryptCost  int            `json:"bcrypt_cost"`
	Verbose     *bool          `json:"verbose"`
}

// parseJSON overlays cfg with the fields present in the file named by -c or
// -config. Without such a flag nothing happens.
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

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.ProductName != "" {
		cfg.ProductName = jc.ProductName
	}
	if jc.StateDSN != "" {
		cfg.StateDSN = jc.StateDSN
	}
	if jc.OTPTTL.Duration != 0 {
		cfg.OTPTTL = jc.OTPTTL.Duration
	}
	if jc.BcryptCost != 0 {
		cfg.BcryptCost = jc.BcryptCost
	}
	if jc.Verbose != nil {
		cfg.Verbose = *jc.Verbose
	}
	return nil
}
