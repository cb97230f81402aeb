package handler

import (
	"strconv"
	"time"

	"navtools/internal/audit"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuditLogHandler exposes the read-only query surface over the audit
// trail. Superuser only; there is deliberately no write surface here.
type AuditLogHandler struct {
	DB *gorm.DB
}

func NewAuditLogHandler(db *gorm.DB) *AuditLogHandler {
	return &AuditLogHandler{DB: db}
}

func (h *AuditLogHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)

	var f audit.Filter
	if v := c.Query("admin_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			f.AdminID = uint(id)
		}
	}
	f.Action = c.Query("action")
	f.TargetType = c.Query("target_type")
	if v := c.Query("start_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.Start = t
		}
	}
	if v := c.Query("end_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.End = t
		}
	}

	rows, total, err := audit.List(h.DB, f, page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	okList(c, rows, total, page, pageSize)
}

func (h *AuditLogHandler) Actions(c *gin.Context) {
	actions, err := audit.Actions(h.DB)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, actions)
}

func (h *AuditLogHandler) TargetTypes(c *gin.Context) {
	types, err := audit.TargetTypes(h.DB)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, types)
}
