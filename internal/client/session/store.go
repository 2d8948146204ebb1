// Package session holds the activated login of this client process: the
// bearer token and the identity it belongs to.
//
// The session lives in memory and is mirrored into the local metadata table
// so it survives a restart. Clearing it also drops the session key, forcing
// a fresh key before the next login.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophlink/internal/client/models"
	"github.com/dmitrijs2005/gophlink/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophlink/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

const (
	keyToken         = "token"
	keyIdentityName  = "identity_name"
	keyIdentityEmail = "identity_email"
)

var ErrEmptyToken = errors.New("empty session token")

// KeyDropper forgets the current session key.
type KeyDropper interface {
	Drop()
}

type Store struct {
	repo metadata.Repository
	keys KeyDropper
	log  logging.Logger
	now  func() time.Time

	mu        sync.RWMutex
	current   *models.Session
	activated bool
}

func NewStore(repo metadata.Repository, keys KeyDropper, log logging.Logger) *Store {
	return &Store{repo: repo, keys: keys, log: log, now: time.Now}
}

// Activate makes token the current session and persists it.
func (s *Store) Activate(ctx context.Context, token string, id models.Identity) error {
	if token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.repo.SetMany(ctx, map[string][]byte{
		keyToken:         []byte(token),
		keyIdentityName:  []byte(id.Name),
		keyIdentityEmail: []byte(id.Email),
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.current = &models.Session{Token: token, Identity: id}
	s.activated = true
	s.log.Info(ctx, "session activated", "user", id.Name)
	return nil
}

// Get returns the current session, if any.
func (s *Store) Get() (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return models.Session{}, false
	}
	return *s.current, true
}

// Clear forgets the session in memory and on disk and drops the session key.
// Clearing an empty store is not an error.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	s.keys.Drop()

	if err := s.repo.Delete(ctx, keyToken, keyIdentityName, keyIdentityEmail); err != nil {
		return fmt.Errorf("forget session: %w", err)
	}
	return nil
}

// Unload runs when the process exits. It clears everything unless a session
// was activated or restored at some point during this run.
func (s *Store) Unload(ctx context.Context) error {
	s.mu.RLock()
	activated := s.activated
	s.mu.RUnlock()

	if activated {
		return nil
	}
	return s.Clear(ctx)
}

// Restore loads a persisted session. A token that carries an exp claim in
// the past is treated as invalidated and cleared. It reports whether a
// session is now current.
func (s *Store) Restore(ctx context.Context) (bool, error) {
	token, err := s.repo.Get(ctx, keyToken)
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	if len(token) == 0 {
		return false, nil
	}

	if s.expired(string(token)) {
		s.log.Info(ctx, "persisted session expired")
		return false, s.Clear(ctx)
	}

	name, err := s.repo.Get(ctx, keyIdentityName)
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	email, err := s.repo.Get(ctx, keyIdentityEmail)
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}

	s.mu.Lock()
	s.current = &models.Session{
		Token:    string(token),
		Identity: models.Identity{Name: string(name), Email: string(email)},
	}
	s.activated = true
	s.mu.Unlock()

	return true, nil
}

// expired only looks at the exp claim; the signature is the backend's
// business. Opaque tokens never expire here.
func (s *Store) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(s.now())
}
