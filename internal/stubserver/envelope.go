package stubserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophlink/internal/client/models"
	"github.com/dmitrijs2005/gophlink/internal/common"
	"github.com/dmitrijs2005/gophlink/internal/cryptox"
	"github.com/gin-gonic/gin"
)

const ctxKeyMaterial = "envelope_key"

var errUnknownKey = errors.New("unknown key id")

// openEnvelope resolves the sKeyId header, decrypts the request body and
// unmarshals it into dst. The key is kept on the context for the reply.
func (s *Server) openEnvelope(c *gin.Context, dst any) error {
	key, ok := s.keys.get(c.GetHeader(common.KeyIDHeaderName))
	if !ok {
		return errUnknownKey
	}
	c.Set(ctxKeyMaterial, key)

	var req models.EncryptedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return err
	}
	plain, err := cryptox.DecryptCBC(key, req.EncryptedPayload)
	if err != nil {
		return err
	}
	return json.Unmarshal(plain, dst)
}

// sealed answers with {sResponse} built from a payload and/or error
// messages, encrypted with the request's key.
func sealed[T any](c *gin.Context, status int, payload *T, messages ...string) {
	resp := models.Response[T]{}
	if payload != nil {
		resp.OBody = &models.Body[T]{PayLoad: payload}
	}
	for _, m := range messages {
		resp.AError = append(resp.AError, models.APIError{SMessage: m})
	}

	key, ok := c.Get(ctxKeyMaterial)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": errUnknownKey.Error()})
		return
	}

	plain, err := json.Marshal(resp)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	blob, err := cryptox.EncryptCBC(key.([]byte), plain)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(status, models.EncryptedResponse{SResponse: blob})
}

// reject answers with a structured error only.
func reject(c *gin.Context, status int, message string) {
	sealed[struct{}](c, status, nil, message)
	c.Abort()
}

// open is openEnvelope plus the standard failure answers. It reports
// whether the handler may continue.
func (s *Server) open(c *gin.Context, dst any) bool {
	err := s.openEnvelope(c, dst)
	switch {
	case err == nil:
		return true
	case errors.Is(err, errUnknownKey):
		// without a key nothing can be sealed
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unknown or expired key"})
	default:
		s.log.Warn(c.Request.Context(), "cannot open envelope", "path", c.FullPath(), "error", err)
		reject(c, http.StatusBadRequest, "Malformed request.")
	}
	return false
}
