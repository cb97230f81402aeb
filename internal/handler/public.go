package handler

import (
	"encoding/json"

	"navtools/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PublicHandler serves the unauthenticated directory endpoints. Read-mostly;
// the only mutation is the best-effort view counter.
type PublicHandler struct {
	DB *gorm.DB
}

func NewPublicHandler(db *gorm.DB) *PublicHandler {
	return &PublicHandler{DB: db}
}

func (h *PublicHandler) SiteConfig(c *gin.Context) {
	var cfg models.SiteConfig
	if err := h.DB.First(&cfg).Error; err != nil {
		// no row yet; answer with the defaults the seed would create
		ok(c, gin.H{
			"site_name":        "NavTools",
			"site_description": "A curated collection of useful tools",
			"theme_enabled":    true,
		})
		return
	}
	ok(c, gin.H{
		"site_name":        cfg.SiteName,
		"site_description": cfg.SiteDescription,
		"site_keywords":    cfg.SiteKeywords,
		"icp_beian":        cfg.ICPBeian,
		"gongan_beian":     cfg.GonganBeian,
		"contact_email":    cfg.ContactEmail,
		"theme_enabled":    cfg.ThemeEnabled,
		"logo_url":         cfg.LogoURL,
		"favicon_url":      cfg.FaviconURL,
		"footer_text":      cfg.FooterText,
	})
}

type publicCategory struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	ToolCount   int64  `json:"tool_count"`
}

func (h *PublicHandler) activeCategories() ([]publicCategory, error) {
	var categories []models.Category
	err := h.DB.Where("is_active = ?", true).Order("sort_order ASC").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	items := make([]publicCategory, 0, len(categories))
	for _, cat := range categories {
		var cnt int64
		h.DB.Model(&models.Tool{}).
			Where("category_id = ? AND is_active = ?", cat.ID, true).Count(&cnt)
		items = append(items, publicCategory{
			ID:          cat.ID,
			Name:        cat.Name,
			Slug:        cat.Slug,
			Description: cat.Description,
			Icon:        cat.Icon,
			Color:       cat.Color,
			ToolCount:   cnt,
		})
	}
	return items, nil
}

func (h *PublicHandler) Categories(c *gin.Context) {
	items, err := h.activeCategories()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, items)
}

type publicToolCategory struct {
	ID    uint   `json:"id,omitempty"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color"`
}

type publicTool struct {
	ID               uint               `json:"id"`
	Name             string             `json:"name"`
	Slug             string             `json:"slug"`
	ShortDescription string             `json:"short_description"`
	Description      string             `json:"description,omitempty"`
	Icon             string             `json:"icon"`
	URL              string             `json:"url"`
	IsFeatured       bool               `json:"is_featured"`
	IsSelfDeveloped  bool               `json:"is_self_developed"`
	APIEndpoint      string             `json:"api_endpoint,omitempty"`
	ViewCount        int                `json:"view_count"`
	Tags             []string           `json:"tags"`
	Category         publicToolCategory `json:"category"`
}

func publicToolOf(t *models.Tool, cat *models.Category, withDescription bool) publicTool {
	tags := []string{}
	if len(t.Tags) > 0 {
		_ = json.Unmarshal(t.Tags, &tags)
	}
	item := publicTool{
		ID:               t.ID,
		Name:             t.Name,
		Slug:             t.Slug,
		ShortDescription: t.ShortDescription,
		Icon:             t.Icon,
		URL:              t.URL,
		IsFeatured:       t.IsFeatured,
		IsSelfDeveloped:  t.IsSelfDeveloped,
		APIEndpoint:      t.APIEndpoint,
		ViewCount:        t.ViewCount,
		Tags:             tags,
		Category: publicToolCategory{
			ID:    cat.ID,
			Name:  cat.Name,
			Slug:  cat.Slug,
			Icon:  cat.Icon,
			Color: cat.Color,
		},
	}
	if withDescription {
		item.Description = t.Description
	}
	return item
}

func (h *PublicHandler) Tools(c *gin.Context) {
	page, pageSize := pageParams(c)

	q := h.DB.Model(&models.Tool{}).
		Joins("JOIN categories ON categories.id = tools.category_id").
		Where("tools.is_active = ?", true)
	if slug := c.Query("category"); slug != "" {
		q = q.Where("categories.slug = ?", slug)
	}
	if v := c.Query("featured"); v != "" {
		q = q.Where("tools.is_featured = ?", v == "true")
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("tools.name LIKE ? OR tools.short_description LIKE ? OR tools.tags LIKE ?",
			like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		fail(c, err)
		return
	}
	var tools []models.Tool
	if err := q.Preload("Category").
		Order("tools.sort_order ASC, tools.created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&tools).Error; err != nil {
		fail(c, err)
		return
	}

	items := make([]publicTool, 0, len(tools))
	for i := range tools {
		items = append(items, publicToolOf(&tools[i], &tools[i].Category, false))
	}
	okList(c, items, total, page, pageSize)
}

// ToolDetail looks up an active tool by slug and bumps its view counter.
// The increment is read-modify-write and may lose updates under concurrent
// traffic; view counts are best-effort analytics, not bookkeeping.
func (h *PublicHandler) ToolDetail(c *gin.Context) {
	slug := c.Param("slug")

	var tool models.Tool
	err := h.DB.Preload("Category").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&tool).Error
	if err != nil {
		c.JSON(404, gin.H{"code": 404, "message": "tool not found", "data": nil})
		return
	}

	tool.ViewCount++
	h.DB.Model(&tool).Update("view_count", tool.ViewCount)

	ok(c, publicToolOf(&tool, &tool.Category, true))
}

// RecordView bumps the view counter by tool id. Unknown ids are ignored.
func (h *PublicHandler) RecordView(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var tool models.Tool
	if err := h.DB.First(&tool, id).Error; err == nil {
		h.DB.Model(&tool).Update("view_count", tool.ViewCount+1)
	}
	okMsg(c, "success")
}

// Home aggregates everything the landing page needs in one call.
func (h *PublicHandler) Home(c *gin.Context) {
	var cfg models.SiteConfig
	siteConfig := gin.H{
		"site_name":        "NavTools",
		"site_description": "A curated collection of useful tools",
		"theme_enabled":    true,
	}
	if err := h.DB.First(&cfg).Error; err == nil {
		siteConfig = gin.H{
			"site_name":        cfg.SiteName,
			"site_description": cfg.SiteDescription,
			"theme_enabled":    cfg.ThemeEnabled,
		}
	}

	categories, err := h.activeCategories()
	if err != nil {
		fail(c, err)
		return
	}

	var featured []models.Tool
	if err := h.DB.Preload("Category").
		Where("is_featured = ? AND is_active = ?", true, true).
		Order("sort_order ASC").Limit(10).
		Find(&featured).Error; err != nil {
		fail(c, err)
		return
	}
	featuredItems := make([]publicTool, 0, len(featured))
	for i := range featured {
		featuredItems = append(featuredItems, publicToolOf(&featured[i], &featured[i].Category, false))
	}

	var recent []models.Tool
	if err := h.DB.Preload("Category").
		Where("is_active = ?", true).
		Order("created_at DESC").Limit(12).
		Find(&recent).Error; err != nil {
		fail(c, err)
		return
	}
	recentItems := make([]publicTool, 0, len(recent))
	for i := range recent {
		recentItems = append(recentItems, publicToolOf(&recent[i], &recent[i].Category, false))
	}

	ok(c, gin.H{
		"site_config":    siteConfig,
		"categories":     categories,
		"featured_tools": featuredItems,
		"recent_tools":   recentItems,
	})
}
