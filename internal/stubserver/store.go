package stubserver

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophlink/internal/client/models"
	"github.com/dmitrijs2005/gophlink/internal/common"
	"github.com/dmitrijs2005/gophlink/internal/cryptox"
	"golang.org/x/crypto/bcrypt"
)

const dateLayout = "2006-01-02"

type user struct {
	email string
	name  string
	// raw is only known for seeded users; prepared for signed-up ones.
	raw      string
	prepared string
}

// passwordMatches checks a prepared (bcrypt) password. Without the raw
// password only the shape of the hash can be checked.
func (u *user) passwordMatches(prepared string) bool {
	if u.raw != "" {
		return cryptox.CheckPreparedPassword(prepared, []byte(u.raw))
	}
	_, err := bcrypt.Cost([]byte(prepared))
	return err == nil
}

type entry struct {
	code      string
	longURL   string
	createdAt time.Time
	expiresAt time.Time
	qrCode    string
}

// store keeps accounts and their entries in memory.
type store struct {
	mu        sync.Mutex
	users     map[string]*user
	entries   map[string][]*entry
	publicURL string
	now       func() time.Time
	newCode   func() (string, error)
}

func newStore(publicURL string) *store {
	return &store{
		users:     make(map[string]*user),
		entries:   make(map[string][]*entry),
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
		newCode:   func() (string, error) { return common.MakeRandHexString(3) },
	}
}

func userKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *store) addUser(email, name, raw, prepared string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := userKey(email)
	if _, ok := s.users[k]; ok {
		return fmt.Errorf("user %s already exists", email)
	}
	if name == "" {
		name = email
	}
	s.users[k] = &user{email: email, name: name, raw: raw, prepared: prepared}
	return nil
}

func (s *store) user(email string) (user, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userKey(email)]
	if !ok {
		return user{}, false
	}
	return *u, true
}

func (s *store) setPassword(email, prepared string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userKey(email)]; ok {
		u.raw = ""
		u.prepared = prepared
	}
}

func (s *store) shortURL(code string) string {
	return s.publicURL + "/" + code
}

func (s *store) toModel(e *entry) models.Entry {
	return models.Entry{
		LongURL:   e.longURL,
		ShortURL:  s.shortURL(e.code),
		ShortCode: e.code,
		CreatedAt: e.createdAt.Format(dateLayout),
		ExpiredAt: e.expiresAt.Format(dateLayout),
		QRCode:    e.qrCode,
	}
}

// list returns the live entries of email, newest first.
func (s *store) list(email string) models.EntryList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(userKey(email))
}

func (s *store) listLocked(k string) models.EntryList {
	now := s.now()
	live := s.entries[k][:0]
	for _, e := range s.entries[k] {
		if e.expiresAt.After(now) {
			live = append(live, e)
		}
	}
	s.entries[k] = live

	sorted := append([]*entry(nil), live...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].createdAt.After(sorted[j].createdAt) })

	out := make(models.EntryList, 0, len(sorted))
	for _, e := range sorted {
		out = append(out, s.toModel(e))
	}
	return out
}

func (s *store) add(email, longURL string, days int) (models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, err := s.uniqueCodeLocked()
	if err != nil {
		return models.Entry{}, err
	}
	qrCode, err := qrPNG(s.shortURL(code))
	if err != nil {
		return models.Entry{}, err
	}

	now := s.now()
	e := &entry{
		code:      code,
		longURL:   longURL,
		createdAt: now,
		expiresAt: now.AddDate(0, 0, days),
		qrCode:    qrCode,
	}
	k := userKey(email)
	s.entries[k] = append(s.entries[k], e)
	return s.toModel(e), nil
}

func (s *store) uniqueCodeLocked() (string, error) {
	for range 5 {
		code, err := s.newCode()
		if err != nil {
			return "", err
		}
		if !s.codeTakenLocked(code) {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free short code")
}

func (s *store) codeTakenLocked(code string) bool {
	for _, list := range s.entries {
		for _, e := range list {
			if e.code == code {
				return true
			}
		}
	}
	return false
}

func (s *store) findLocked(k, short string) int {
	for i, e := range s.entries[k] {
		if e.code == short || s.shortURL(e.code) == short {
			return i
		}
	}
	return -1
}

func (s *store) update(email, short, longURL string, days int) (models.EntryList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := userKey(email)
	i := s.findLocked(k, short)
	if i < 0 {
		return nil, common.ErrorNotFound
	}
	e := s.entries[k][i]
	e.longURL = longURL
	e.expiresAt = s.now().AddDate(0, 0, days)
	return s.listLocked(k), nil
}

func (s *store) remove(email, short string) (models.EntryList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := userKey(email)
	i := s.findLocked(k, short)
	if i < 0 {
		return nil, common.ErrorNotFound
	}
	s.entries[k] = append(s.entries[k][:i], s.entries[k][i+1:]...)
	return s.listLocked(k), nil
}

// resolve finds the target of a short code across all users.
func (s *store) resolve(code string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, list := range s.entries {
		for _, e := range list {
			if e.code == code && e.expiresAt.After(now) {
				return e.longURL, true
			}
		}
	}
	return "", false
}
