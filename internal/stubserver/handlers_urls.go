package stubserver

import (
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/gophlink/internal/client/models"
	"github.com/dmitrijs2005/gophlink/internal/common"
	"github.com/gin-gonic/gin"
)

func encodeKey(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (s *Server) handleDashboard(c *gin.Context) {
	var req models.DashboardRequest
	if !s.open(c, &req) {
		return
	}
	list := s.store.list(c.GetString(ctxEmail))
	sealed(c, http.StatusOK, &list)
}

func (s *Server) handleSave(c *gin.Context) {
	var req models.SaveEntryRequest
	if !s.open(c, &req) {
		return
	}
	if !validURL(req.SLongURL) || req.IExpiryDay <= 0 {
		reject(c, http.StatusBadRequest, "Invalid URL or expiry.")
		return
	}

	e, err := s.store.add(c.GetString(ctxEmail), req.SLongURL, req.IExpiryDay)
	if err != nil {
		s.log.Error(c.Request.Context(), "cannot save entry", "error", err)
		reject(c, http.StatusInternalServerError, "Failed to save URL.")
		return
	}
	sealed(c, http.StatusOK, &e)
}

func (s *Server) handleUpdate(c *gin.Context) {
	var req models.UpdateEntryRequest
	if !s.open(c, &req) {
		return
	}
	if !validURL(req.SLongURL) || req.IExpiryDay <= 0 {
		reject(c, http.StatusBadRequest, "Invalid URL or expiry.")
		return
	}

	list, err := s.store.update(c.GetString(ctxEmail), req.SShortURL, req.SLongURL, req.IExpiryDay)
	if errors.Is(err, common.ErrorNotFound) {
		reject(c, http.StatusNotFound, "URL not found.")
		return
	}
	if err != nil {
		reject(c, http.StatusInternalServerError, "Failed to update URL.")
		return
	}
	sealed(c, http.StatusOK, &list)
}

func (s *Server) handleDelete(c *gin.Context) {
	var req models.DeleteEntryRequest
	if !s.open(c, &req) {
		return
	}

	list, err := s.store.remove(c.GetString(ctxEmail), req.SShortURL)
	if errors.Is(err, common.ErrorNotFound) {
		reject(c, http.StatusNotFound, "URL not found.")
		return
	}
	if err != nil {
		reject(c, http.StatusInternalServerError, "Failed to delete URL.")
		return
	}
	sealed(c, http.StatusOK, &list)
}

func (s *Server) handleRedirect(c *gin.Context) {
	target, ok := s.store.resolve(c.Param("code"))
	if !ok {
		c.String(http.StatusNotFound, "not found")
		return
	}
	c.Redirect(http.StatusFound, target)
}
