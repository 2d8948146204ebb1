package stubserver

import (
	"time"

	"github.com/dmitrijs2005/gophlink/internal/common"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const keySize = 32

// keyStore holds the envelope keys handed out by /gateway/key until they
// expire.
type keyStore struct {
	c *cache.Cache
}

func newKeyStore(ttl time.Duration) *keyStore {
	return &keyStore{c: cache.New(ttl, 10*time.Minute)}
}

func (s *keyStore) issue() (string, []byte) {
	id := uuid.NewString()
	key := common.GenerateRandByteArray(keySize)
	s.c.SetDefault(id, key)
	return id, key
}

func (s *keyStore) get(id string) ([]byte, bool) {
	v, ok := s.c.Get(id)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}
