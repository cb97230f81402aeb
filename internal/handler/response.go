package handler

import (
	"net/http"
	"strconv"

	"navtools/internal/apperr"
	"navtools/internal/audit"
	"navtools/internal/middleware"

	"github.com/gin-gonic/gin"
)

// All responses share the {code, message, data} envelope; list payloads
// nest {items, total, page, page_size} under data.

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "success", "data": data})
}

func okMsg(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": msg, "data": nil})
}

func okList(c *gin.Context, items any, total int64, page, pageSize int) {
	ok(c, gin.H{"items": items, "total": total, "page": page, "page_size": pageSize})
}

// fail maps any error to the envelope exactly once. Storage errors that are
// not typed business failures come out as a generic message.
func fail(c *gin.Context, err error) {
	ae := apperr.From(err)
	c.JSON(ae.Kind.Status(), gin.H{"code": ae.Kind.Status(), "message": ae.Message, "data": nil})
}

func failValidation(c *gin.Context, err error) {
	fail(c, apperr.New(apperr.Validation, "invalid request: "+err.Error()))
}

// pageParams parses ?page and ?page_size with the usual clamps.
func pageParams(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// auditEntry pre-fills an audit entry with the acting admin and request
// metadata from the gin context.
func auditEntry(c *gin.Context, action, targetType string, targetID *uint, details any) audit.Entry {
	e := audit.Entry{
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		IPAddress:  middleware.ClientIP(c),
		UserAgent:  c.GetHeader("User-Agent"),
	}
	if admin, ok := middleware.CurrentAdmin(c); ok {
		id := admin.ID
		e.AdminID = &id
	}
	return e
}

func uintPtr(v uint) *uint { return &v }
