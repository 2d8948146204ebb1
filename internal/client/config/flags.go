package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/gophlink/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend
//	-p string   product name sent to the backend
//	-d string   local state database
//	-v          verbose logging
//
// Other flags are filtered out with flagx.FilterArgs first.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-p", "-d", "-v"})

	fs := flag.NewFlagSet("gophlink", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the backend")
	fs.StringVar(&cfg.ProductName, "p", cfg.ProductName, "product name")
	fs.StringVar(&cfg.StateDSN, "d", cfg.StateDSN, "local state database")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose logging")

	return fs.Parse(args)
}
