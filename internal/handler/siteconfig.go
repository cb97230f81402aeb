package handler

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"navtools/internal/apperr"
	"navtools/internal/assets"
	"navtools/internal/audit"
	"navtools/internal/models"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SiteConfigHandler manages the singleton site configuration row and the
// branding assets (logo, favicon) that it references.
type SiteConfigHandler struct {
	DB     *gorm.DB
	Audit  *audit.Recorder
	Assets *assets.Index
}

func NewSiteConfigHandler(db *gorm.DB, rec *audit.Recorder, idx *assets.Index) *SiteConfigHandler {
	return &SiteConfigHandler{DB: db, Audit: rec, Assets: idx}
}

func (h *SiteConfigHandler) load() (*models.SiteConfig, error) {
	var cfg models.SiteConfig
	if err := h.DB.First(&cfg).Error; err != nil {
		return nil, apperr.New(apperr.NotFound, "site configuration not found")
	}
	return &cfg, nil
}

func (h *SiteConfigHandler) Get(c *gin.Context) {
	cfg, err := h.load()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, cfg)
}

type siteConfigUpdateRequest struct {
	SiteName        *string `json:"site_name"`
	SiteDescription *string `json:"site_description"`
	SiteKeywords    *string `json:"site_keywords"`
	ICPBeian        *string `json:"icp_beian"`
	GonganBeian     *string `json:"gongan_beian"`
	ContactEmail    *string `json:"contact_email"`
	ThemeEnabled    *bool   `json:"theme_enabled"`
	LogoURL         *string `json:"logo_url"`
	FaviconURL      *string `json:"favicon_url"`
	FooterText      *string `json:"footer_text"`
}

func (h *SiteConfigHandler) Update(c *gin.Context) {
	var req siteConfigUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}
	cfg, err := h.load()
	if err != nil {
		fail(c, err)
		return
	}

	updates := map[string]any{}
	setIf(updates, "site_name", req.SiteName)
	setIf(updates, "site_description", req.SiteDescription)
	setIf(updates, "site_keywords", req.SiteKeywords)
	setIf(updates, "icp_beian", req.ICPBeian)
	setIf(updates, "gongan_beian", req.GonganBeian)
	setIf(updates, "contact_email", req.ContactEmail)
	setIf(updates, "logo_url", req.LogoURL)
	setIf(updates, "favicon_url", req.FaviconURL)
	setIf(updates, "footer_text", req.FooterText)
	if req.ThemeEnabled != nil {
		updates["theme_enabled"] = *req.ThemeEnabled
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(cfg).Updates(updates).Error; err != nil {
				return err
			}
		}
		return h.Audit.Record(tx, auditEntry(c, "update", "config", uintPtr(cfg.ID), updates))
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, cfg)
}

const faviconSize = 64

// UploadBranding accepts a multipart image for kind=logo or kind=favicon,
// stores it under the upload directory and points the site config at it.
// Favicons are resized to a square thumbnail.
func (h *SiteConfigHandler) UploadBranding(c *gin.Context) {
	kind := c.PostForm("kind")
	if kind != "logo" && kind != "favicon" {
		fail(c, apperr.New(apperr.Validation, "kind must be logo or favicon"))
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		fail(c, apperr.New(apperr.Validation, "file is required"))
		return
	}
	if file.Size > 5*1024*1024 {
		fail(c, apperr.New(apperr.Validation, "file too large (max 5MB)"))
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		fail(c, apperr.New(apperr.Validation, "unsupported image type"))
		return
	}

	cfg, err := h.load()
	if err != nil {
		fail(c, err)
		return
	}

	name := fmt.Sprintf("%s-%d%s", kind, time.Now().Unix(), ext)
	dst := filepath.Join(h.Assets.Dir(), name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		fail(c, err)
		return
	}

	if kind == "favicon" {
		img, err := imaging.Open(dst)
		if err != nil {
			fail(c, apperr.New(apperr.Validation, "file is not a decodable image"))
			return
		}
		thumb := imaging.Fill(img, faviconSize, faviconSize, imaging.Center, imaging.Lanczos)
		if err := imaging.Save(thumb, dst); err != nil {
			fail(c, err)
			return
		}
	}

	column := "logo_url"
	if kind == "favicon" {
		column = "favicon_url"
	}
	url := "/static/" + name
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(cfg).Update(column, url).Error; err != nil {
			return err
		}
		return h.Audit.Record(tx, auditEntry(c, "update", "config", uintPtr(cfg.ID),
			gin.H{column: url}))
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"url": url})
}

// ListAssets returns the uploaded files known to the watcher index.
func (h *SiteConfigHandler) ListAssets(c *gin.Context) {
	ok(c, h.Assets.List())
}
