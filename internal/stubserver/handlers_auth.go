package stubserver

import (
	"net/http"

	"github.com/dmitrijs2005/gophlink/internal/client/models"
	"github.com/dmitrijs2005/gophlink/internal/common"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleKey(c *gin.Context) {
	id, key := s.keys.issue()
	c.JSON(http.StatusOK, models.KeyResponse{SKey: encodeKey(key), SID: id})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req models.LoginRequest
	if !s.open(c, &req) {
		return
	}
	ctx := c.Request.Context()

	u, ok := s.store.user(req.SUserIdentifier)
	if !ok || !u.passwordMatches(req.SSHAPassword) {
		s.log.Info(ctx, "login rejected", "user", req.SUserIdentifier)
		reject(c, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	otpID, code, err := s.otps.issue(userKey(u.email))
	if err != nil {
		s.log.Error(ctx, "cannot issue otp", "error", err)
		reject(c, http.StatusInternalServerError, "Failed to send OTP.")
		return
	}
	s.log.Info(ctx, "login otp issued", "user", u.email, "otp_id", otpID, "code", code)

	sealed(c, http.StatusOK, &models.LoginPayload{
		SStatus:   common.StatusSuccess,
		SOtpToken: otpID,
		SUsername: u.name,
	})
}

func (s *Server) handleValidateTFA(c *gin.Context) {
	var req models.TwoFactorOTPRequest
	if !s.open(c, &req) {
		return
	}
	ctx := c.Request.Context()

	subject, ok := s.otps.check(req.SOtpID, req.SOtp)
	if !ok || subject != userKey(req.SUserName) {
		reject(c, http.StatusBadRequest, "Invalid OTP.")
		return
	}
	u, ok := s.store.user(subject)
	if !ok {
		reject(c, http.StatusBadRequest, "Invalid OTP.")
		return
	}

	token, err := s.issueToken(u.email)
	if err != nil {
		s.log.Error(ctx, "cannot issue token", "error", err)
		reject(c, http.StatusInternalServerError, "Login failed.")
		return
	}

	sealed(c, http.StatusOK, &models.OTPPayload{
		SStatus:         common.StatusSuccess,
		SToken:          token,
		SEncryptedValue: s.digest(req.SOtp, req.SOtpID),
	})
}

func (s *Server) handleSendEmailOTP(c *gin.Context) {
	var req models.EmailOTPRequest
	if !s.open(c, &req) {
		return
	}
	ctx := c.Request.Context()

	if req.SEmailID == "" {
		reject(c, http.StatusBadRequest, "Email is required.")
		return
	}
	if _, exists := s.store.user(req.SEmailID); exists {
		reject(c, http.StatusConflict, "User already exists.")
		return
	}

	otpID, code, err := s.otps.issue(userKey(req.SEmailID))
	if err != nil {
		s.log.Error(ctx, "cannot issue otp", "error", err)
		reject(c, http.StatusInternalServerError, "Failed to send OTP.")
		return
	}
	s.log.Info(ctx, "signup otp issued", "email", req.SEmailID, "otp_id", otpID, "code", code)

	sealed(c, http.StatusOK, &models.EmailOTPPayload{BSuccess: true, SOtp: otpID})
}

func (s *Server) handleValidateEmailOTP(c *gin.Context) {
	var req models.ValidateEmailOTPRequest
	if !s.open(c, &req) {
		return
	}

	subject, ok := s.otps.check(req.SOtpID, req.SOtp)
	if !ok {
		reject(c, http.StatusBadRequest, "Invalid OTP.")
		return
	}
	s.verified.SetDefault(subject, true)

	sealed(c, http.StatusOK, &models.OTPPayload{
		SStatus:         common.StatusSuccess,
		SEncryptedValue: s.digest(req.SOtp, req.SOtpID),
	})
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var req models.SignupRequest
	if !s.open(c, &req) {
		return
	}
	ctx := c.Request.Context()

	if _, ok := s.verified.Get(userKey(req.SUserName)); !ok {
		reject(c, http.StatusForbidden, "Email is not verified.")
		return
	}
	if req.SPassword == "" || req.SFullName == "" {
		reject(c, http.StatusBadRequest, "Name and password are required.")
		return
	}
	if err := s.store.addUser(req.SUserName, req.SFullName, "", req.SPassword); err != nil {
		reject(c, http.StatusConflict, "User already exists.")
		return
	}
	s.verified.Delete(userKey(req.SUserName))
	s.log.Info(ctx, "user created", "user", req.SUserName)

	sealed(c, http.StatusOK, &models.StatusPayload{
		SStatus:          common.StatusSuccess,
		SResponseMessage: "User created successfully.",
	})
}

func (s *Server) handleChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if !s.open(c, &req) {
		return
	}
	email := c.GetString(ctxEmail)

	u, ok := s.store.user(email)
	if !ok || !u.passwordMatches(req.SOldPassword) {
		reject(c, http.StatusBadRequest, "Old password is incorrect.")
		return
	}
	if req.SNewPassword == "" {
		reject(c, http.StatusBadRequest, "New password is required.")
		return
	}
	s.store.setPassword(email, req.SNewPassword)

	sealed(c, http.StatusOK, &models.StatusPayload{
		SStatus:          common.StatusPasswordChanged,
		SResponseMessage: "Password changed successfully.",
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	var req models.LogoutRequest
	if !s.open(c, &req) {
		return
	}
	s.revoked.SetDefault(c.GetString(ctxTokenID), true)

	sealed(c, http.StatusOK, &models.StatusPayload{
		SStatus:          common.StatusSuccess,
		SResponseMessage: "Logged out.",
	})
}
