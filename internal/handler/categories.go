package handler

import (
	"navtools/internal/apperr"
	"navtools/internal/audit"
	"navtools/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler manages tool categories.
type CategoryHandler struct {
	DB    *gorm.DB
	Audit *audit.Recorder
}

func NewCategoryHandler(db *gorm.DB, rec *audit.Recorder) *CategoryHandler {
	return &CategoryHandler{DB: db, Audit: rec}
}

type categoryWithCount struct {
	models.Category
	ToolCount int64 `json:"tool_count"`
}

func (h *CategoryHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)

	q := h.DB.Model(&models.Category{})
	if search := c.Query("search"); search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}
	if v := c.Query("is_active"); v != "" {
		q = q.Where("is_active = ?", v == "true")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		fail(c, err)
		return
	}
	var categories []models.Category
	if err := q.Order("sort_order ASC, created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&categories).Error; err != nil {
		fail(c, err)
		return
	}

	items := make([]categoryWithCount, 0, len(categories))
	for _, cat := range categories {
		var cnt int64
		h.DB.Model(&models.Tool{}).Where("category_id = ?", cat.ID).Count(&cnt)
		items = append(items, categoryWithCount{Category: cat, ToolCount: cnt})
	}
	okList(c, items, total, page, pageSize)
}

type categoryCreateRequest struct {
	Name        string `json:"name" binding:"required,max=50"`
	Slug        string `json:"slug" binding:"required,max=50"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	var cnt int64
	h.DB.Model(&models.Category{}).Where("slug = ?", req.Slug).Count(&cnt)
	if cnt > 0 {
		fail(c, apperr.New(apperr.Conflict, "category slug already exists"))
		return
	}

	cat := models.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}
	if cat.Color == "" {
		cat.Color = "#FFD700"
	}
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cat).Error; err != nil {
			return err
		}
		return h.Audit.Record(tx, auditEntry(c, "create", "category", uintPtr(cat.ID),
			gin.H{"name": cat.Name, "slug": cat.Slug}))
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, cat)
}

func (h *CategoryHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var cat models.Category
	if err := h.DB.First(&cat, id).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "category not found"))
		return
	}
	ok(c, cat)
}

type categoryUpdateRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	Color       *string `json:"color"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req categoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	var cat models.Category
	if err := h.DB.First(&cat, id).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "category not found"))
		return
	}
	if req.Slug != nil {
		var cnt int64
		h.DB.Model(&models.Category{}).Where("slug = ? AND id <> ?", *req.Slug, id).Count(&cnt)
		if cnt > 0 {
			fail(c, apperr.New(apperr.Conflict, "category slug already exists"))
			return
		}
	}

	updates := map[string]any{}
	setIf(updates, "name", req.Name)
	setIf(updates, "slug", req.Slug)
	setIf(updates, "description", req.Description)
	setIf(updates, "icon", req.Icon)
	setIf(updates, "color", req.Color)
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&cat).Updates(updates).Error; err != nil {
				return err
			}
		}
		return h.Audit.Record(tx, auditEntry(c, "update", "category", uintPtr(id), updates))
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, cat)
}

// Delete refuses while tools still reference the category.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var cat models.Category
	if err := h.DB.First(&cat, id).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "category not found"))
		return
	}

	var toolCount int64
	h.DB.Model(&models.Tool{}).Where("category_id = ?", id).Count(&toolCount)
	if toolCount > 0 {
		fail(c, apperr.Newf(apperr.Conflict, "category still has %d tools", toolCount))
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&cat).Error; err != nil {
			return err
		}
		return h.Audit.Record(tx, auditEntry(c, "delete", "category", uintPtr(id),
			gin.H{"name": cat.Name}))
	})
	if err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "category deleted")
}
