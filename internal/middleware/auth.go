// Package middleware holds the authorization checkpoint run in front of
// every protected admin route.
package middleware

import (
	"strings"
	"time"

	"navtools/internal/apperr"
	"navtools/internal/models"
	"navtools/internal/token"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const profileKey = "currentAdmin"

// Profile is the immutable identity snapshot placed in the request context
// once authentication succeeds. It never includes the password hash.
type Profile struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	IsSuperuser bool       `json:"is_superuser"`
	IsActive    bool       `json:"is_active"`
	LastLogin   *time.Time `json:"last_login"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ProfileOf builds the snapshot from a stored admin row.
func ProfileOf(u *models.AdminUser) Profile {
	return Profile{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		LastLogin:   u.LastLogin,
		CreatedAt:   u.CreatedAt,
	}
}

// CurrentAdmin returns the authenticated admin snapshot, or false when the
// request did not pass through RequireAdmin.
func CurrentAdmin(c *gin.Context) (Profile, bool) {
	v, ok := c.Get(profileKey)
	if !ok {
		return Profile{}, false
	}
	p, ok := v.(Profile)
	return p, ok
}

func abort(c *gin.Context, err *apperr.Error) {
	c.AbortWithStatusJSON(err.Kind.Status(), gin.H{
		"code":    err.Kind.Status(),
		"message": err.Message,
		"data":    nil,
	})
}

// RequireAdmin authenticates the bearer token and resolves it to an active
// admin account. The flow: extract credential, decode, resolve subject,
// check active. Missing, malformed, expired and unknown-subject cases all
// answer 401; a resolved but disabled account answers 403.
func RequireAdmin(db *gorm.DB, tokens *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abort(c, apperr.New(apperr.Unauthenticated, "authentication token not provided"))
			return
		}

		claims, err := tokens.Decode(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abort(c, apperr.New(apperr.Unauthenticated, "invalid authentication token"))
			return
		}

		subject, err := claims.SubjectID()
		if err != nil {
			abort(c, apperr.New(apperr.Unauthenticated, "invalid token payload"))
			return
		}

		var admin models.AdminUser
		if err := db.First(&admin, subject).Error; err != nil {
			abort(c, apperr.New(apperr.Unauthenticated, "user not found"))
			return
		}
		if !admin.IsActive {
			abort(c, apperr.New(apperr.Forbidden, "account is disabled"))
			return
		}

		c.Set(profileKey, ProfileOf(&admin))
		c.Next()
	}
}

// RequireSuperuser gates superuser-only routes. Must run after RequireAdmin.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := CurrentAdmin(c)
		if !ok {
			abort(c, apperr.New(apperr.Unauthenticated, "authentication required"))
			return
		}
		if !admin.IsSuperuser {
			abort(c, apperr.New(apperr.Forbidden, "requires superuser privileges"))
			return
		}
		c.Next()
	}
}

// ClientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func ClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
	}
	return c.RemoteIP()
}
