package handler

import (
	"bytes"
	"encoding/json"

	"navtools/internal/apperr"
	"navtools/pkg/extract"

	"github.com/gin-gonic/gin"
)

// DevtoolsHandler serves the self-developed utilities exposed under
// /devtools for tools flagged is_self_developed.
type DevtoolsHandler struct {
	Extractor *extract.Extractor
}

func NewDevtoolsHandler(ex *extract.Extractor) *DevtoolsHandler {
	return &DevtoolsHandler{Extractor: ex}
}

type wechatExtractRequest struct {
	URL string `json:"url" binding:"required"`
}

func (h *DevtoolsHandler) WeChatExtract(c *gin.Context) {
	var req wechatExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}
	if !extract.IsWeChatURL(req.URL) {
		fail(c, apperr.New(apperr.Validation, "only mp.weixin.qq.com article links are supported"))
		return
	}
	article, err := h.Extractor.WeChatArticle(req.URL)
	if err != nil {
		fail(c, apperr.New(apperr.Conflict, "extraction failed: "+err.Error()))
		return
	}
	ok(c, article)
}

type jsonFormatRequest struct {
	JSON string `json:"json" binding:"required"`
	Mode string `json:"mode"` // format (default) or minify
}

// JSONFormat pretty-prints or minifies a JSON document.
func (h *DevtoolsHandler) JSONFormat(c *gin.Context) {
	var req jsonFormatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	var buf bytes.Buffer
	var err error
	switch req.Mode {
	case "", "format":
		err = json.Indent(&buf, []byte(req.JSON), "", "  ")
	case "minify":
		err = json.Compact(&buf, []byte(req.JSON))
	default:
		fail(c, apperr.New(apperr.Validation, "mode must be format or minify"))
		return
	}
	if err != nil {
		fail(c, apperr.New(apperr.Validation, "invalid JSON: "+err.Error()))
		return
	}
	ok(c, gin.H{"result": buf.String()})
}
