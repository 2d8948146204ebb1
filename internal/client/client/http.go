package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophlink/internal/client/models"
	"github.com/dmitrijs2005/gophlink/internal/common"
	"github.com/dmitrijs2005/gophlink/internal/logging"
	"github.com/google/uuid"
)

const maxResponseSize = 4 << 20

// Sealer encrypts request payloads and decrypts response blobs with the
// current session key.
type Sealer interface {
	Seal(plaintext []byte) (keyID string, blob string, err error)
	Open(blob string) ([]byte, error)
}

// Credentials authenticate a call: the bearer token and the display name
// sent in the userName header.
type Credentials struct {
	Token    string
	UserName string
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
	sealer  Sealer
	log     logging.Logger
	newID   func() string
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithLogger sets the logger; by default nothing is logged.
func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// WithRequestIDs overrides the X-Request-ID generator.
func WithRequestIDs(fn func() string) Option {
	return func(c *HTTPClient) { c.newID = fn }
}

// NewHTTPClient returns a client for the backend at baseURL. The sealer may
// be nil for clients that only fetch keys. The default *http.Client has no
// timeout: a call lasts as long as its ctx allows.
func NewHTTPClient(baseURL string, sealer Sealer, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		sealer:  sealer,
		log:     logging.Discard(),
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetSealer binds the sealer after construction; the key provisioner and the
// envelope both need a client, so one of them has to be wired late.
func (c *HTTPClient) SetSealer(s Sealer) {
	c.sealer = s
}

// FetchKey asks the key endpoint for a fresh session key. The answer is not
// validated here.
func (c *HTTPClient) FetchKey(ctx context.Context) (models.KeyResponse, error) {
	var kr models.KeyResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathKey, nil)
	if err != nil {
		return kr, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.RequestIDHeaderName, c.newID())

	resp, err := c.http.Do(req)
	if err != nil {
		return kr, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return kr, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := json.Unmarshal(body, &kr); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return kr, fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
		}
		return kr, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return kr, nil
}

// post performs one envelope round trip and returns the decrypted body.
func (c *HTTPClient) post(ctx context.Context, path string, payload any, creds *Credentials) ([]byte, error) {
	if c.sealer == nil {
		return nil, errors.New("client has no sealer")
	}

	plain, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	keyID, blob, err := c.sealer.Seal(plain)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(models.EncryptedRequest{EncryptedPayload: blob})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	reqID := c.newID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.KeyIDHeaderName, keyID)
	req.Header.Set(common.RequestIDHeaderName, reqID)
	if creds != nil {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+creds.Token)
		req.Header.Set(common.UserNameHeaderName, creds.UserName)
	}

	c.log.Debug(ctx, "envelope call", "path", path, "request_id", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var er models.EncryptedResponse
	if err := json.Unmarshal(raw, &er); err != nil || er.SResponse == "" {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
		}
		return nil, fmt.Errorf("%w: no sResponse", ErrMalformedResponse)
	}

	return c.sealer.Open(er.SResponse)
}

// call runs an envelope round trip and classifies the answer. A payload that
// passes ok wins over any error array, as the backend sometimes sends both.
func call[Req, Resp any](ctx context.Context, c *HTTPClient, path string, payload Req, creds *Credentials, ok func(*Resp) bool) Result[Resp] {
	plain, err := c.post(ctx, path, payload, creds)
	if err != nil {
		c.log.Warn(ctx, "envelope call failed", "path", path, "error", err)
		return unexpected[Resp](err)
	}

	var r models.Response[Resp]
	if err := json.Unmarshal(plain, &r); err != nil {
		c.log.Warn(ctx, "cannot parse response", "path", path, "error", err)
		return unexpected[Resp](fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}

	if p := r.Payload(); p != nil && ok(p) {
		return success(*p)
	}
	if msg, found := r.FirstError(); found {
		return rejected[Resp](msg)
	}
	c.log.Warn(ctx, "unrecognized response", "path", path)
	return unexpected[Resp](ErrUnrecognizedResponse)
}
