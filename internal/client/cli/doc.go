// Package cli provides the interactive gophlink command-line client.
//
// It wires configuration, the local SQLite state, the envelope transport and
// the services into a small REPL. Typical flow: restore a persisted session
// (or log in with an emailed one-time code), then manage shortened URLs.
//
// Key features:
//   - Register with email verification, Login with OTP, Logout
//   - List / Add / Update / Delete shortened URLs, show QR codes
//   - Change password
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// Leaving the REPL unloads the session store: a run that never signed in
// leaves no state behind.
package cli
