package handler

import (
	"encoding/json"
	"strconv"

	"navtools/internal/apperr"
	"navtools/internal/audit"
	"navtools/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ToolHandler manages the tool catalogue.
type ToolHandler struct {
	DB    *gorm.DB
	Audit *audit.Recorder
}

func NewToolHandler(db *gorm.DB, rec *audit.Recorder) *ToolHandler {
	return &ToolHandler{DB: db, Audit: rec}
}

func tagsJSON(tags []string) (datatypes.JSON, error) {
	if tags == nil {
		return nil, nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func (h *ToolHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)

	q := h.DB.Model(&models.Tool{})
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR short_description LIKE ?", like, like)
	}
	if v := c.Query("category_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			q = q.Where("category_id = ?", id)
		}
	}
	if v := c.Query("is_active"); v != "" {
		q = q.Where("is_active = ?", v == "true")
	}
	if v := c.Query("is_featured"); v != "" {
		q = q.Where("is_featured = ?", v == "true")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		fail(c, err)
		return
	}
	var tools []models.Tool
	if err := q.Order("sort_order ASC, created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&tools).Error; err != nil {
		fail(c, err)
		return
	}
	okList(c, tools, total, page, pageSize)
}

type toolCreateRequest struct {
	Name             string   `json:"name" binding:"required,max=100"`
	Slug             string   `json:"slug" binding:"required,max=100"`
	ShortDescription string   `json:"short_description"`
	Description      string   `json:"description"`
	URL              string   `json:"url" binding:"required,max=500"`
	CategoryID       uint     `json:"category_id" binding:"required"`
	Icon             string   `json:"icon"`
	Tags             []string `json:"tags"`
	IsActive         *bool    `json:"is_active"`
	IsFeatured       bool     `json:"is_featured"`
	IsSelfDeveloped  bool     `json:"is_self_developed"`
	APIEndpoint      string   `json:"api_endpoint"`
	SortOrder        int      `json:"sort_order"`
}

func (h *ToolHandler) Create(c *gin.Context) {
	var req toolCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	var cnt int64
	h.DB.Model(&models.Tool{}).Where("slug = ?", req.Slug).Count(&cnt)
	if cnt > 0 {
		fail(c, apperr.New(apperr.Conflict, "tool slug already exists"))
		return
	}
	h.DB.Model(&models.Category{}).Where("id = ?", req.CategoryID).Count(&cnt)
	if cnt == 0 {
		fail(c, apperr.New(apperr.NotFound, "category not found"))
		return
	}

	tags, err := tagsJSON(req.Tags)
	if err != nil {
		fail(c, err)
		return
	}
	tool := models.Tool{
		Name:             req.Name,
		Slug:             req.Slug,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		URL:              req.URL,
		CategoryID:       req.CategoryID,
		Icon:             req.Icon,
		Tags:             tags,
		IsActive:         true,
		IsFeatured:       req.IsFeatured,
		IsSelfDeveloped:  req.IsSelfDeveloped,
		APIEndpoint:      req.APIEndpoint,
		SortOrder:        req.SortOrder,
	}
	if req.IsActive != nil {
		tool.IsActive = *req.IsActive
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tool).Error; err != nil {
			return err
		}
		return h.Audit.Record(tx, auditEntry(c, "create", "tool", uintPtr(tool.ID),
			gin.H{"name": tool.Name, "slug": tool.Slug}))
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, tool)
}

func (h *ToolHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var tool models.Tool
	if err := h.DB.First(&tool, id).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "tool not found"))
		return
	}
	ok(c, tool)
}

type toolUpdateRequest struct {
	Name             *string   `json:"name"`
	Slug             *string   `json:"slug"`
	ShortDescription *string   `json:"short_description"`
	Description      *string   `json:"description"`
	URL              *string   `json:"url"`
	CategoryID       *uint     `json:"category_id"`
	Icon             *string   `json:"icon"`
	Tags             *[]string `json:"tags"`
	IsActive         *bool     `json:"is_active"`
	IsFeatured       *bool     `json:"is_featured"`
	IsSelfDeveloped  *bool     `json:"is_self_developed"`
	APIEndpoint      *string   `json:"api_endpoint"`
	SortOrder        *int      `json:"sort_order"`
}

// Update overwrites only the fields present in the request body.
func (h *ToolHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req toolUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	var tool models.Tool
	if err := h.DB.First(&tool, id).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "tool not found"))
		return
	}

	if req.Slug != nil {
		var cnt int64
		h.DB.Model(&models.Tool{}).Where("slug = ? AND id <> ?", *req.Slug, id).Count(&cnt)
		if cnt > 0 {
			fail(c, apperr.New(apperr.Conflict, "tool slug already exists"))
			return
		}
	}
	if req.CategoryID != nil {
		var cnt int64
		h.DB.Model(&models.Category{}).Where("id = ?", *req.CategoryID).Count(&cnt)
		if cnt == 0 {
			fail(c, apperr.New(apperr.NotFound, "category not found"))
			return
		}
	}

	updates := map[string]any{}
	setIf(updates, "name", req.Name)
	setIf(updates, "slug", req.Slug)
	setIf(updates, "short_description", req.ShortDescription)
	setIf(updates, "description", req.Description)
	setIf(updates, "url", req.URL)
	setIf(updates, "icon", req.Icon)
	setIf(updates, "api_endpoint", req.APIEndpoint)
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.Tags != nil {
		tags, err := tagsJSON(*req.Tags)
		if err != nil {
			fail(c, err)
			return
		}
		updates["tags"] = tags
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if req.IsSelfDeveloped != nil {
		updates["is_self_developed"] = *req.IsSelfDeveloped
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&tool).Updates(updates).Error; err != nil {
				return err
			}
		}
		return h.Audit.Record(tx, auditEntry(c, "update", "tool", uintPtr(id), updates))
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, tool)
}

func setIf(updates map[string]any, column string, v *string) {
	if v != nil {
		updates[column] = *v
	}
}

func (h *ToolHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var tool models.Tool
	if err := h.DB.First(&tool, id).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "tool not found"))
		return
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&tool).Error; err != nil {
			return err
		}
		return h.Audit.Record(tx, auditEntry(c, "delete", "tool", uintPtr(id),
			gin.H{"name": tool.Name}))
	})
	if err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "tool deleted")
}

// ToggleFeatured flips the featured flag.
func (h *ToolHandler) ToggleFeatured(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var tool models.Tool
	if err := h.DB.First(&tool, id).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "tool not found"))
		return
	}
	next := !tool.IsFeatured
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&tool).Update("is_featured", next).Error; err != nil {
			return err
		}
		return h.Audit.Record(tx, auditEntry(c, "toggle", "tool", uintPtr(id),
			gin.H{"is_featured": next}))
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"is_featured": next})
}

type reorderRequest struct {
	ToolIDs []uint `json:"tool_ids" binding:"required"`
}

// ReorderFeatured rewrites sort_order to match the submitted id order.
func (h *ToolHandler) ReorderFeatured(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		for index, toolID := range req.ToolIDs {
			if err := tx.Model(&models.Tool{}).Where("id = ?", toolID).
				Update("sort_order", index).Error; err != nil {
				return err
			}
		}
		return h.Audit.Record(tx, auditEntry(c, "reorder", "tool", nil,
			gin.H{"tool_ids": req.ToolIDs}))
	})
	if err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "order updated")
}

type batchRequest struct {
	ToolIDs  []uint `json:"tool_ids" binding:"required"`
	IsActive *bool  `json:"is_active"`
}

func (h *ToolHandler) BatchDelete(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id IN ?", req.ToolIDs).Delete(&models.Tool{}).Error; err != nil {
			return err
		}
		return h.Audit.Record(tx, auditEntry(c, "batch-delete", "tool", nil,
			gin.H{"tool_ids": req.ToolIDs}))
	})
	if err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "tools deleted")
}

func (h *ToolHandler) BatchToggle(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}
	if req.IsActive == nil {
		fail(c, apperr.New(apperr.Validation, "is_active is required"))
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Tool{}).Where("id IN ?", req.ToolIDs).
			Update("is_active", *req.IsActive).Error; err != nil {
			return err
		}
		return h.Audit.Record(tx, auditEntry(c, "batch-toggle", "tool", nil,
			gin.H{"tool_ids": req.ToolIDs, "is_active": *req.IsActive}))
	})
	if err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "tools updated")
}
