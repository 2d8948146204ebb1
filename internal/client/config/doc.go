// Package config loads runtime configuration for the gophlink CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend (default http://localhost:10008)
//	-p string   product name (default URL_SHORTENER)
//	-d string   local state database (default gophlink.db)
//	-v          verbose logging
//
// # JSON schema
//
//	{
//	  "server_url": "https://api.example.com",
//	  "product_name": "URL_SHORTENER",
//	  "state_dsn": "/home/me/.gophlink/state.db",
//	  "otp_ttl": "2m",
//	  "bcrypt_cost": 10,
//	  "verbose": false
//	}
//
// Fields missing from the file keep their previous value.
package config
