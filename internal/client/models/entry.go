package models

import (
	"bytes"
	"encoding/json"
)

// Entry is a shortened URL as reported by the backend. The client never
// derives these fields itself.
type Entry struct {
	LongURL   string `json:"longUrl"`
	ShortURL  string `json:"shortUrl,omitempty"`
	ShortCode string `json:"shortCode,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	ExpiredAt string `json:"expiredAt,omitempty"`
	QRCode    string `json:"qrCode,omitempty"`
}

// Key identifies the entry towards the backend.
func (e Entry) Key() string {
	if e.ShortURL != "" {
		return e.ShortURL
	}
	return e.ShortCode
}

// EntryList is the dashboard payload. The backend sends either an array or,
// for a single entry, a bare object; both decode into a slice.
type EntryList []Entry

func (l *EntryList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*l = EntryList{}
		return nil
	}
	if len(b) > 0 && b[0] == '{' {
		var e Entry
		if err := json.Unmarshal(b, &e); err != nil {
			return err
		}
		*l = EntryList{e}
		return nil
	}
	var items []Entry
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	if items == nil {
		items = []Entry{}
	}
	*l = items
	return nil
}
