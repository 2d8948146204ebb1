// Package envelope seals request payloads and opens response blobs with the
// session key currently held by the client.
package envelope

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophlink/internal/client/models"
	"github.com/dmitrijs2005/gophlink/internal/cryptox"
)

var (
	// ErrNoKey means no session key has been provisioned yet (or it was
	// dropped on logout).
	ErrNoKey = errors.New("no session key")
	// ErrDecrypt covers every way a blob can fail to open.
	ErrDecrypt = cryptox.ErrDecrypt
)

// KeySource yields the current session key or ErrNoKey.
type KeySource interface {
	Current() (models.SessionKey, error)
}

type Envelope struct {
	keys KeySource
}

func New(keys KeySource) *Envelope {
	return &Envelope{keys: keys}
}

// Seal encrypts plaintext under the current key and returns the key id to
// send alongside the blob.
func (e *Envelope) Seal(plaintext []byte) (string, string, error) {
	k, err := e.keys.Current()
	if err != nil {
		return "", "", err
	}
	blob, err := cryptox.EncryptCBC(k.Material, plaintext)
	if err != nil {
		return "", "", fmt.Errorf("seal: %w", err)
	}
	return k.ID, blob, nil
}

// Open decrypts a response blob under the current key.
func (e *Envelope) Open(blob string) ([]byte, error) {
	k, err := e.keys.Current()
	if err != nil {
		return nil, err
	}
	return cryptox.DecryptCBC(k.Material, blob)
}
