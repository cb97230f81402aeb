package handler

import (
	"strconv"

	"navtools/internal/apperr"
	"navtools/internal/audit"
	"navtools/internal/middleware"
	"navtools/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminHandler manages admin accounts. Every route here sits behind the
// superuser gate.
type AdminHandler struct {
	DB    *gorm.DB
	Audit *audit.Recorder
}

func NewAdminHandler(db *gorm.DB, rec *audit.Recorder) *AdminHandler {
	return &AdminHandler{DB: db, Audit: rec}
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.New(apperr.Validation, "invalid id")
	}
	return uint(id), nil
}

// List supports ?search= over username and email.
func (h *AdminHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)

	q := h.DB.Model(&models.AdminUser{})
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("username LIKE ? OR email LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		fail(c, err)
		return
	}
	var admins []models.AdminUser
	if err := q.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&admins).Error; err != nil {
		fail(c, err)
		return
	}

	items := make([]middleware.Profile, 0, len(admins))
	for i := range admins {
		items = append(items, middleware.ProfileOf(&admins[i]))
	}
	okList(c, items, total, page, pageSize)
}

type adminCreateRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	IsSuperuser bool   `json:"is_superuser"`
	IsActive    *bool  `json:"is_active"`
}

func (h *AdminHandler) Create(c *gin.Context) {
	var req adminCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	// optimistic uniqueness pre-checks; the unique indexes backstop races
	var cnt int64
	h.DB.Model(&models.AdminUser{}).Where("username = ?", req.Username).Count(&cnt)
	if cnt > 0 {
		fail(c, apperr.New(apperr.Conflict, "username already exists"))
		return
	}
	h.DB.Model(&models.AdminUser{}).Where("email = ?", req.Email).Count(&cnt)
	if cnt > 0 {
		fail(c, apperr.New(apperr.Conflict, "email already exists"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		fail(c, err)
		return
	}
	admin := models.AdminUser{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashed,
		IsSuperuser:    req.IsSuperuser,
		IsActive:       true,
	}
	if req.IsActive != nil {
		admin.IsActive = *req.IsActive
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		return h.Audit.Record(tx, auditEntry(c, "create", "admin", uintPtr(admin.ID),
			gin.H{"username": admin.Username}))
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, middleware.ProfileOf(&admin))
}

func (h *AdminHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var admin models.AdminUser
	if err := h.DB.First(&admin, id).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "admin not found"))
		return
	}
	ok(c, middleware.ProfileOf(&admin))
}

type adminUpdateRequest struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	IsSuperuser *bool   `json:"is_superuser"`
	IsActive    *bool   `json:"is_active"`
}

// Update applies only the fields present in the request. Disabling the
// account that is performing the request is rejected.
func (h *AdminHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req adminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	var admin models.AdminUser
	if err := h.DB.First(&admin, id).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "admin not found"))
		return
	}
	current, _ := middleware.CurrentAdmin(c)

	updates := map[string]any{}
	if req.Username != nil {
		var cnt int64
		h.DB.Model(&models.AdminUser{}).Where("username = ? AND id <> ?", *req.Username, id).Count(&cnt)
		if cnt > 0 {
			fail(c, apperr.New(apperr.Conflict, "username already exists"))
			return
		}
		updates["username"] = *req.Username
	}
	if req.Email != nil {
		var cnt int64
		h.DB.Model(&models.AdminUser{}).Where("email = ? AND id <> ?", *req.Email, id).Count(&cnt)
		if cnt > 0 {
			fail(c, apperr.New(apperr.Conflict, "email already exists"))
			return
		}
		updates["email"] = *req.Email
	}
	if req.IsActive != nil {
		if id == current.ID && !*req.IsActive {
			fail(c, apperr.New(apperr.Conflict, "cannot disable the currently signed-in account"))
			return
		}
		updates["is_active"] = *req.IsActive
	}
	if req.IsSuperuser != nil {
		updates["is_superuser"] = *req.IsSuperuser
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&admin).Updates(updates).Error; err != nil {
				return err
			}
		}
		return h.Audit.Record(tx, auditEntry(c, "update", "admin", uintPtr(id), updates))
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, middleware.ProfileOf(&admin))
}

func (h *AdminHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	current, _ := middleware.CurrentAdmin(c)
	if id == current.ID {
		fail(c, apperr.New(apperr.Conflict, "cannot delete the currently signed-in account"))
		return
	}

	var admin models.AdminUser
	if err := h.DB.First(&admin, id).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "admin not found"))
		return
	}

	// the audit trail keeps its weak reference; the row goes, the history stays
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&admin).Error; err != nil {
			return err
		}
		return h.Audit.Record(tx, auditEntry(c, "delete", "admin", uintPtr(id),
			gin.H{"username": admin.Username}))
	})
	if err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "admin deleted")
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ResetPassword is the administrator-initiated path: no old-secret check.
func (h *AdminHandler) ResetPassword(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	var admin models.AdminUser
	if err := h.DB.First(&admin, id).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "admin not found"))
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
		return h.Audit.Record(tx, auditEntry(c, "reset-password", "admin", uintPtr(id), nil))
	})
	if err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "password reset")
}
