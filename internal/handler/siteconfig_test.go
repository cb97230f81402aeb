package handler_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"navtools/internal/models"

	"github.com/disintegration/imaging"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func (e *env) upload(tok, kind, filename string, content []byte) *httptest.ResponseRecorder {
	e.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("kind", kind); err != nil {
		e.t.Fatalf("write field: %v", err)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		e.t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		e.t.Fatalf("write file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/site-config/branding", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestBrandingUploadLogo(t *testing.T) {
	e := newEnv(t)
	tok := e.rootToken()

	rec := e.upload(tok, "logo", "logo.png", pngBytes(t, 200, 80))
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		URL string `json:"url"`
	}
	dataInto(t, rec, &resp)
	if !strings.HasPrefix(resp.URL, "/static/logo-") {
		t.Fatalf("url = %q", resp.URL)
	}

	var cfg models.SiteConfig
	if err := e.db.First(&cfg).Error; err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogoURL != resp.URL {
		t.Fatalf("logo_url = %q, want %q", cfg.LogoURL, resp.URL)
	}

	// the uploaded file serves over the static route
	static := e.do(http.MethodGet, resp.URL, "", nil)
	if static.Code != http.StatusOK {
		t.Fatalf("static fetch: %d", static.Code)
	}
}

func TestBrandingUploadFaviconIsResized(t *testing.T) {
	e := newEnv(t)
	tok := e.rootToken()

	rec := e.upload(tok, "favicon", "icon.png", pngBytes(t, 300, 200))
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		URL string `json:"url"`
	}
	dataInto(t, rec, &resp)

	var cfg models.SiteConfig
	e.db.First(&cfg)
	if cfg.FaviconURL != resp.URL {
		t.Fatalf("favicon_url = %q", cfg.FaviconURL)
	}

	name := strings.TrimPrefix(resp.URL, "/static/")
	stored, err := imaging.Open(filepath.Join(e.assetsDir(), name))
	if err != nil {
		t.Fatalf("open stored favicon: %v", err)
	}
	if b := stored.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Fatalf("favicon bounds = %v, want 64x64", b)
	}
}

func TestBrandingUploadValidation(t *testing.T) {
	e := newEnv(t)
	tok := e.rootToken()

	if rec := e.upload(tok, "banner", "x.png", pngBytes(t, 10, 10)); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad kind: %d, want 422", rec.Code)
	}
	if rec := e.upload(tok, "logo", "x.exe", []byte("MZ")); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad extension: %d, want 422", rec.Code)
	}
	if rec := e.upload(tok, "favicon", "x.png", []byte("not an image")); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("undecodable favicon: %d, want 422", rec.Code)
	}
}

func TestAssetIndexSeesUploads(t *testing.T) {
	e := newEnv(t)
	tok := e.rootToken()

	if rec := e.upload(tok, "logo", "logo.png", pngBytes(t, 50, 50)); rec.Code != http.StatusOK {
		t.Fatalf("upload: %d", rec.Code)
	}

	// the watcher index is eventually consistent; poll briefly
	deadline := time.Now().Add(2 * time.Second)
	for {
		rec := e.do(http.MethodGet, "/admin/site-config/assets", tok, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("list assets: %d", rec.Code)
		}
		var names []string
		dataInto(t, rec, &names)
		found := false
		for _, n := range names {
			if strings.HasPrefix(n, "logo-") {
				found = true
			}
		}
		if found {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("uploaded file never appeared in the index: %v", names)
		}
		time.Sleep(20 * time.Millisecond)
	}
}
