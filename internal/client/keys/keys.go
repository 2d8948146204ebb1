// Package keys provisions the short-lived symmetric session key from the
// backend's key endpoint and holds it for the envelope.
//
// At most one fetch is in flight: concurrent Provision calls share its
// result. A failed fetch never replaces or partially overwrites the key
// already held.
package keys

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophlink/internal/client/envelope"
	"github.com/dmitrijs2005/gophlink/internal/client/models"
	"github.com/dmitrijs2005/gophlink/internal/common"
	"github.com/dmitrijs2005/gophlink/internal/cryptox"
	"github.com/dmitrijs2005/gophlink/internal/logging"
	"golang.org/x/sync/singleflight"
)

var (
	ErrKeyUnreachable = errors.New("key endpoint unreachable")
	ErrKeyMalformed   = errors.New("malformed key response")
)

// Fetcher performs the raw key request.
type Fetcher interface {
	FetchKey(ctx context.Context) (models.KeyResponse, error)
}

type Provisioner struct {
	fetcher Fetcher
	log     logging.Logger
	sf      singleflight.Group

	mu  sync.RWMutex
	key *models.SessionKey
}

func NewProvisioner(f Fetcher, log logging.Logger) *Provisioner {
	return &Provisioner{fetcher: f, log: log}
}

// Provision fetches a fresh key and makes it current.
func (p *Provisioner) Provision(ctx context.Context) (models.SessionKey, error) {
	v, err, shared := p.sf.Do("key", func() (any, error) {
		kr, err := p.fetcher.FetchKey(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyUnreachable, err)
		}
		k, err := parseKey(kr)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		p.replace(&k)
		p.mu.Unlock()

		p.log.Debug(ctx, "session key provisioned", "key_id", k.ID)
		return k, nil
	})
	if err != nil {
		p.log.Warn(ctx, "key provisioning failed", "error", err, "shared", shared)
		return models.SessionKey{}, err
	}
	return clone(v.(models.SessionKey)), nil
}

// Ensure returns the current key, provisioning one when none is held.
func (p *Provisioner) Ensure(ctx context.Context) (models.SessionKey, error) {
	if k, err := p.Current(); err == nil {
		return k, nil
	}
	return p.Provision(ctx)
}

// Current returns a copy of the held key, or envelope.ErrNoKey.
func (p *Provisioner) Current() (models.SessionKey, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.key == nil {
		return models.SessionKey{}, envelope.ErrNoKey
	}
	return clone(*p.key), nil
}

// Drop forgets the held key.
func (p *Provisioner) Drop() {
	p.mu.Lock()
	p.replace(nil)
	p.mu.Unlock()
}

// replace must be called with mu held.
func (p *Provisioner) replace(k *models.SessionKey) {
	if p.key != nil {
		common.WipeByteArray(p.key.Material)
	}
	if k != nil {
		c := clone(*k)
		k = &c
	}
	p.key = k
}

func parseKey(kr models.KeyResponse) (models.SessionKey, error) {
	if kr.SKey == "" || kr.SID == "" {
		return models.SessionKey{}, fmt.Errorf("%w: missing sKey or sId", ErrKeyMalformed)
	}
	material, err := base64.StdEncoding.DecodeString(kr.SKey)
	if err != nil {
		return models.SessionKey{}, fmt.Errorf("%w: %v", ErrKeyMalformed, err)
	}
	if len(material) != cryptox.KeySize {
		return models.SessionKey{}, fmt.Errorf("%w: key is %d bytes", ErrKeyMalformed, len(material))
	}
	return models.SessionKey{ID: kr.SID, Material: material}, nil
}

func clone(k models.SessionKey) models.SessionKey {
	return models.SessionKey{ID: k.ID, Material: append([]byte(nil), k.Material...)}
}
