package stubserver

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/pquerna/otp/totp"
)

const otpIssuer = "gophlink"

type otpRecord struct {
	code    string
	subject string
}

// otpStore issues six-digit codes and remembers them under a random otp id
// until they are used or expire. Every challenge gets its own TOTP secret.
type otpStore struct {
	codes *cache.Cache
	last  *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

func newOTPStore(ttl time.Duration) *otpStore {
	return &otpStore{
		codes: cache.New(ttl, time.Minute),
		last:  cache.New(ttl, time.Minute),
		ttl:   ttl,
		now:   time.Now,
	}
}

// issue creates a challenge for subject and returns its id and code.
func (s *otpStore) issue(subject string) (string, string, error) {
	key, err := totp.Generate(totp.GenerateOpts{Issuer: otpIssuer, AccountName: subject})
	if err != nil {
		return "", "", err
	}
	code, err := totp.GenerateCode(key.Secret(), s.now())
	if err != nil {
		return "", "", err
	}

	id := uuid.NewString()
	s.codes.Set(id, otpRecord{code: code, subject: subject}, s.ttl)
	s.last.Set(subject, code, s.ttl)
	return id, code, nil
}

// check consumes the challenge id if code matches and returns its subject.
func (s *otpStore) check(id, code string) (string, bool) {
	v, ok := s.codes.Get(id)
	if !ok {
		return "", false
	}
	rec := v.(otpRecord)
	if rec.code != code {
		return "", false
	}
	s.codes.Delete(id)
	return rec.subject, true
}

// lastCode is the most recent code mailed to subject.
func (s *otpStore) lastCode(subject string) (string, bool) {
	v, ok := s.last.Get(subject)
	if !ok {
		return "", false
	}
	return v.(string), true
}
