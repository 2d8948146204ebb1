package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gophlink/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   listen address (e.g., ":10008")
//	-s string   JWT HMAC secret key
//	-t int      token validity, minutes
//	-b string   prefix of generated short URLs
//	-u string   seeded user email:password[:name], may repeat
//
// Notes:
//   - The function first filters args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - The token duration flag is accepted as an integer in minutes.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-t", "-b", "-u"})

	fs := flag.NewFlagSet("stubserver", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "address and port to run server")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	tokenTTL := fs.Int("t", int(cfg.TokenTTL.Minutes()), "token validity (in minutes)")
	fs.StringVar(&cfg.PublicURL, "b", cfg.PublicURL, "short URL prefix")
	fs.Func("u", "seeded user email:password[:name]", func(v string) error {
		u, err := parseUser(v)
		if err != nil {
			return err
		}
		cfg.Users = append(cfg.Users, u)
		return nil
	})

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.TokenTTL = time.Duration(*tokenTTL) * time.Minute
	return nil
}
