package stubserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophlink/internal/common"
	"github.com/dmitrijs2005/gophlink/internal/cryptox"
	"github.com/dmitrijs2005/gophlink/internal/logging"
	"github.com/dmitrijs2005/gophlink/internal/stubserver/auth"
	"github.com/dmitrijs2005/gophlink/internal/stubserver/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	ctxEmail   = "email"
	ctxTokenID = "token_id"
)

// Server is the stub backend.
type Server struct {
	cfg       *config.Config
	log       logging.Logger
	keys      *keyStore
	otps      *otpStore
	store     *store
	verified  *cache.Cache
	revoked   *cache.Cache
	jwtSecret []byte
	engine    *gin.Engine
}

// New builds the server and seeds the configured users.
func New(cfg *config.Config, log logging.Logger) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:       cfg,
		log:       log.With("module", "stubserver"),
		keys:      newKeyStore(cfg.KeyTTL),
		otps:      newOTPStore(cfg.OTPTTL),
		store:     newStore(cfg.PublicURL),
		verified:  cache.New(10*time.Minute, time.Minute),
		revoked:   cache.New(cfg.TokenTTL, time.Minute),
		jwtSecret: []byte(cfg.SecretKey),
	}
	for _, u := range cfg.Users {
		if err := s.AddUser(u.Email, u.Name, u.Password); err != nil {
			return nil, err
		}
	}
	s.engine = s.routes()
	return s, nil
}

// AddUser seeds an account with a known raw password.
func (s *Server) AddUser(email, name, password string) error {
	return s.store.addUser(email, name, password, "")
}

// LastOTP returns the last code issued for email, as if read from the
// mailbox. The server also logs it.
func (s *Server) LastOTP(email string) (string, bool) {
	return s.otps.lastCode(userKey(email))
}

// Handler exposes the routes, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/gateway/key", s.handleKey)
	r.GET("/r/:code", s.handleRedirect)

	r.POST("/auth/user-login", s.handleLogin)
	r.POST("/auth/validate-tfa-otp", s.handleValidateTFA)
	r.POST("/communications/send-email-otp", s.handleSendEmailOTP)
	r.POST("/communications/validate-email-otp", s.handleValidateEmailOTP)
	r.POST("/auth/create-user", s.handleCreateUser)

	authed := r.Group("/", s.requireToken)
	authed.POST("/auth/change-password", s.handleChangePassword)
	authed.POST("/auth/logout", s.handleLogout)
	authed.POST("/url-service/get-dashboard-details", s.handleDashboard)
	authed.POST("/url-service/save-data", s.handleSave)
	authed.POST("/url-service/update-data", s.handleUpdate)
	authed.POST("/url-service/delete-data", s.handleDelete)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(common.RequestIDHeaderName)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(common.RequestIDHeaderName, reqID)

		c.Next()

		s.log.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"request_id", reqID,
			"duration", time.Since(start),
		)
	}
}

// requireToken checks the bearer token before the envelope is opened. A
// failure is still answered sealed when the key is known, so clients see a
// structured error.
func (s *Server) requireToken(c *gin.Context) {
	raw, ok := strings.CutPrefix(c.GetHeader(common.AuthorizationHeaderName), "Bearer ")
	if !ok || raw == "" {
		s.unauthorized(c, "Missing token.")
		return
	}

	claims, err := auth.ParseToken(raw, s.jwtSecret)
	if err != nil {
		msg := "Invalid token."
		if errors.Is(err, common.ErrTokenExpired) {
			msg = "Session expired. Please log in again."
		}
		s.unauthorized(c, msg)
		return
	}
	if _, gone := s.revoked.Get(claims.ID); gone {
		s.unauthorized(c, "Session expired. Please log in again.")
		return
	}

	c.Set(ctxEmail, claims.Email)
	c.Set(ctxTokenID, claims.ID)
	c.Next()
}

func (s *Server) unauthorized(c *gin.Context, msg string) {
	key, ok := s.keys.get(c.GetHeader(common.KeyIDHeaderName))
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msg})
		return
	}
	c.Set(ctxKeyMaterial, key)
	reject(c, http.StatusUnauthorized, msg)
}

func (s *Server) issueToken(email string) (string, error) {
	return auth.GenerateToken(email, uuid.NewString(), s.jwtSecret, s.cfg.TokenTTL)
}

func (s *Server) digest(code, otpID string) string {
	return cryptox.OTPDigest(code, otpID)
}

// Run serves on cfg.Addr until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on l until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.log.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info(ctx, "Starting HTTP server", "address", l.Addr().String())

	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
