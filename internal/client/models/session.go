package models

// SessionKey is the short-lived symmetric key handed out by the key endpoint.
type SessionKey struct {
	ID       string
	Material []byte
}

// Identity is what the client knows about the signed-in user.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is an activated login: the bearer token and the identity it
// belongs to.
type Session struct {
	Token    string
	Identity Identity
}
