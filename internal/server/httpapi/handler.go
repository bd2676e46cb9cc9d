// Package httpapi exposes the auth service over JSON HTTP.
package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lulemo/habitlock/internal/apperr"
	"github.com/lulemo/habitlock/internal/logging"
	"github.com/lulemo/habitlock/internal/server/models"
	"github.com/lulemo/habitlock/internal/server/services"
	"github.com/lulemo/habitlock/internal/server/token"
)

type Handler struct {
	auth   *services.CredentialAuthService
	tokens *token.Service
	log    logging.Logger
}

func NewHandler(auth *services.CredentialAuthService, tokens *token.Service, log logging.Logger) *Handler {
	return &Handler{auth: auth, tokens: tokens, log: log.With("component", "httpapi")}
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Code     string `json:"code" binding:"required"`
	Region   string `json:"region"`
}

type resetPasswordRequest struct {
	Email    string `json:"email" binding:"required"`
	Code     string `json:"code" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// userPayload is the public view of an account. Password material never
// appears here.
type userPayload struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Region      string   `json:"region"`
	Status      string   `json:"status"`
	Permissions []string `json:"permissions"`
}

func toUserPayload(u *models.User) userPayload {
	return userPayload{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		Region:      u.Region,
		Status:      u.Status,
		Permissions: u.Permissions,
	}
}

func okWithDevCode(c *gin.Context, devCode string) {
	if devCode != "" {
		c.JSON(http.StatusOK, gin.H{"ok": true, "devCode": devCode})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) SendRegisterCode(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}
	devCode, err := h.auth.SendRegisterCode(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	okWithDevCode(c, devCode)
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}
	if err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Region, req.Code); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) SendResetCode(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}
	devCode, err := h.auth.SendResetCode(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	okWithDevCode(c, devCode)
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), req.Email, req.Code, req.Password); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}
	creds, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken":      creds.AccessToken,
		"accessExpiresAt":  creds.AccessExpiresAt.UnixMilli(),
		"refreshToken":     creds.RefreshToken,
		"refreshExpiresAt": creds.RefreshExpiresAt.UnixMilli(),
		"user":             toUserPayload(user),
	})
}

func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}
	creds, user, err := h.tokens.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken":     creds.AccessToken,
		"accessExpiresAt": creds.AccessExpiresAt.UnixMilli(),
		"user":            toUserPayload(user),
	})
}

// Logout is idempotent: revoking an unknown or missing token still reports
// ok, since the client's goal (no live session) is already met.
func (h *Handler) Logout(c *gin.Context) {
	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		if err := h.tokens.RevokeByToken(c.Request.Context(), req.RefreshToken); err != nil {
			writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Me(c *gin.Context) {
	subject := currentUser(c)
	user, err := h.auth.GetUser(c.Request.Context(), subject.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserPayload(user)})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "service": "habitlock-api"})
}
