package handler

import (
	"navtools/internal/apperr"
	"navtools/internal/audit"
	"navtools/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// IconHandler manages the icon resource library.
type IconHandler struct {
	DB    *gorm.DB
	Audit *audit.Recorder
}

func NewIconHandler(db *gorm.DB, rec *audit.Recorder) *IconHandler {
	return &IconHandler{DB: db, Audit: rec}
}

func (h *IconHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)

	q := h.DB.Model(&models.IconResource{})
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if search := c.Query("search"); search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		fail(c, err)
		return
	}
	var icons []models.IconResource
	if err := q.Order("category, name").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&icons).Error; err != nil {
		fail(c, err)
		return
	}
	okList(c, icons, total, page, pageSize)
}

// Categories lists the distinct icon categories for the picker UI.
func (h *IconHandler) Categories(c *gin.Context) {
	var categories []string
	err := h.DB.Model(&models.IconResource{}).
		Distinct("category").Where("category <> ''").Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, categories)
}

type iconCreateRequest struct {
	Name     string `json:"name" binding:"required,max=50"`
	Slug     string `json:"slug" binding:"required,max=50"`
	IconType string `json:"icon_type"`
	Content  string `json:"content"`
	Category string `json:"category"`
	IsActive *bool  `json:"is_active"`
}

func (h *IconHandler) Create(c *gin.Context) {
	var req iconCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	var cnt int64
	h.DB.Model(&models.IconResource{}).Where("slug = ?", req.Slug).Count(&cnt)
	if cnt > 0 {
		fail(c, apperr.New(apperr.Conflict, "icon slug already exists"))
		return
	}

	icon := models.IconResource{
		Name:     req.Name,
		Slug:     req.Slug,
		IconType: req.IconType,
		Content:  req.Content,
		Source:   "custom",
		Category: req.Category,
		IsActive: true,
	}
	if icon.IconType == "" {
		icon.IconType = "lucide"
	}
	if req.IsActive != nil {
		icon.IsActive = *req.IsActive
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&icon).Error; err != nil {
			return err
		}
		return h.Audit.Record(tx, auditEntry(c, "create", "icon", uintPtr(icon.ID),
			gin.H{"slug": icon.Slug}))
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, icon)
}

type iconUpdateRequest struct {
	Name     *string `json:"name"`
	Slug     *string `json:"slug"`
	IconType *string `json:"icon_type"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
	IsActive *bool   `json:"is_active"`
}

func (h *IconHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req iconUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	var icon models.IconResource
	if err := h.DB.First(&icon, id).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "icon not found"))
		return
	}
	if req.Slug != nil {
		var cnt int64
		h.DB.Model(&models.IconResource{}).Where("slug = ? AND id <> ?", *req.Slug, id).Count(&cnt)
		if cnt > 0 {
			fail(c, apperr.New(apperr.Conflict, "icon slug already exists"))
			return
		}
	}

	updates := map[string]any{}
	setIf(updates, "name", req.Name)
	setIf(updates, "slug", req.Slug)
	setIf(updates, "icon_type", req.IconType)
	setIf(updates, "content", req.Content)
	setIf(updates, "category", req.Category)
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&icon).Updates(updates).Error; err != nil {
				return err
			}
		}
		return h.Audit.Record(tx, auditEntry(c, "update", "icon", uintPtr(id), updates))
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, icon)
}

func (h *IconHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var icon models.IconResource
	if err := h.DB.First(&icon, id).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "icon not found"))
		return
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&icon).Error; err != nil {
			return err
		}
		return h.Audit.Record(tx, auditEntry(c, "delete", "icon", uintPtr(id),
			gin.H{"slug": icon.Slug}))
	})
	if err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "icon deleted")
}
