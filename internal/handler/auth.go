package handler

import (
	"errors"
	"time"

	"navtools/internal/apperr"
	"navtools/internal/audit"
	"navtools/internal/middleware"
	"navtools/internal/models"
	"navtools/internal/token"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves login, token refresh and self-service account routes.
type AuthHandler struct {
	DB     *gorm.DB
	Tokens *token.Service
	Audit  *audit.Recorder
}

func NewAuthHandler(db *gorm.DB, tokens *token.Service, rec *audit.Recorder) *AuthHandler {
	return &AuthHandler{DB: db, Tokens: tokens, Audit: rec}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Login verifies credentials and issues a token pair. Bad username and bad
// password answer identically so neither can be probed apart.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	var admin models.AdminUser
	if err := h.DB.Where("username = ?", req.Username).First(&admin).Error; err != nil {
		fail(c, apperr.New(apperr.Unauthenticated, "incorrect username or password"))
		return
	}
	if bcrypt.CompareHashAndPassword(admin.HashedPassword, []byte(req.Password)) != nil {
		fail(c, apperr.New(apperr.Unauthenticated, "incorrect username or password"))
		return
	}
	if !admin.IsActive {
		fail(c, apperr.New(apperr.Forbidden, "account is disabled"))
		return
	}

	now := time.Now()
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&admin).Update("last_login", now).Error; err != nil {
			return err
		}
		id := admin.ID
		return h.Audit.Record(tx, audit.Entry{
			AdminID:    &id,
			Action:     "login",
			TargetType: "admin",
			TargetID:   &id,
			IPAddress:  middleware.ClientIP(c),
			UserAgent:  c.GetHeader("User-Agent"),
		})
	})
	if err != nil {
		fail(c, err)
		return
	}

	access, _, err := h.Tokens.IssueAccessToken(admin.ID)
	if err != nil {
		fail(c, err)
		return
	}
	refresh, err := h.Tokens.IssueRefreshToken(admin.ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(h.Tokens.AccessTTL().Seconds()),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh exchanges a refresh token for a fresh pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	access, refresh, _, err := h.Tokens.Refresh(req.RefreshToken)
	if err != nil {
		if errors.Is(err, token.ErrWrongTokenType) {
			fail(c, apperr.New(apperr.Unauthenticated, "invalid token type"))
			return
		}
		fail(c, apperr.New(apperr.Unauthenticated, "invalid refresh token"))
		return
	}
	ok(c, tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(h.Tokens.AccessTTL().Seconds()),
	})
}

// Me returns the authenticated admin's profile snapshot.
func (h *AuthHandler) Me(c *gin.Context) {
	admin, ok_ := middleware.CurrentAdmin(c)
	if !ok_ {
		fail(c, apperr.New(apperr.Unauthenticated, "authentication required"))
		return
	}
	ok(c, admin)
}

// Logout is a stateless no-op: tokens stay valid until natural expiry and
// the client simply discards them. Only the audit trail records the event.
func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		admin, _ := middleware.CurrentAdmin(c)
		return h.Audit.Record(tx, auditEntry(c, "logout", "admin", uintPtr(admin.ID), nil))
	})
	if err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "logged out")
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ChangePassword is the self-service path: the old secret must verify
// before the new one is accepted.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}
	current, _ := middleware.CurrentAdmin(c)

	var admin models.AdminUser
	if err := h.DB.First(&admin, current.ID).Error; err != nil {
		fail(c, apperr.New(apperr.Unauthenticated, "user not found"))
		return
	}
	if bcrypt.CompareHashAndPassword(admin.HashedPassword, []byte(req.OldPassword)) != nil {
		fail(c, apperr.New(apperr.Conflict, "incorrect old password"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		fail(c, err)
		return
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&admin).Update("hashed_password", hashed).Error; err != nil {
			return err
		}
		return h.Audit.Record(tx, auditEntry(c, "reset-password", "admin", uintPtr(admin.ID), nil))
	})
	if err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "password changed")
}
