// Package models defines the client-side data model of gophlink: session
// state, shortened-URL entries and the JSON shapes of the envelope protocol.
package models
