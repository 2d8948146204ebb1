// Package client talks to the gophlink backend.
//
// # Overview
//
// The package provides:
//  1. HTTPClient, the transport of the envelope protocol: every call is a
//     JSON POST carrying {"encryptedPayload": blob} plus the sKeyId header,
//     answered by {"sResponse": blob}. Sealing and opening the blobs is
//     delegated to a Sealer (see package envelope).
//  2. Typed endpoint methods (Login, ValidateTwoFactorOTP, Dashboard, ...)
//     that return a closed three-variant Result: success with a payload,
//     rejection with the first server message, or an unexpected outcome
//     with its cause.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying the embedded goose migrations.
//
// # Error Handling
//
// Transport-level conditions are exposed as sentinel errors for errors.Is:
// ErrUnavailable, ErrMalformedResponse and ErrUnrecognizedResponse. They only ever appear as the cause
// of a KindUnexpected result or as the error of FetchKey.
//
// Nothing is retried here. A retry is always an explicit caller action.
package client
