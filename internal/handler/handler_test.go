package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"navtools/internal/assets"
	"navtools/internal/audit"
	"navtools/internal/config"
	"navtools/internal/database"
	"navtools/internal/models"
	"navtools/internal/router"
	"navtools/internal/token"
	"navtools/pkg/extract"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// env spins up the full router against a throwaway sqlite database, the
// way the server runs in production minus the listener.
type env struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	tokens *token.Service
	assets *assets.Index
}

func (e *env) assetsDir() string { return e.assets.Dir() }

const rootPassword = "Root@123"

func newEnv(t *testing.T) *env {
	t.Helper()
	tmp := t.TempDir()

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(tmp, "test.db")})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	err = database.Seed(db, config.AdminConfig{
		Username: "root",
		Password: rootPassword,
		Email:    "root@example.com",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	idx, err := assets.New(filepath.Join(tmp, "uploads"), zap.NewNop())
	if err != nil {
		t.Fatalf("asset index: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })

	cfg := &config.Config{
		Server: config.ServerConfig{
			Mode:           gin.TestMode,
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		JWT: config.JWTConfig{
			Secret:              "handler-test-secret",
			AccessExpireMinutes: 30,
			RefreshExpireDays:   7,
		},
	}
	tokens := token.NewService(cfg.JWT)

	r := router.Setup(router.Deps{
		Config:    cfg,
		DB:        db,
		Log:       zap.NewNop(),
		Tokens:    tokens,
		Audit:     audit.NewRecorder(zap.NewNop()),
		Assets:    idx,
		Extractor: extract.New(),
	})
	return &env{t: t, router: r, db: db, tokens: tokens, assets: idx}
}

func (e *env) do(method, path, bearer string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			e.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope from %q: %v", rec.Body.String(), err)
	}
	return env
}

func dataInto(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	env := decode(t, rec)
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data from %q: %v", env.Data, err)
	}
}

type listPayload struct {
	Items    json.RawMessage `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// rootToken logs in as the seeded superuser and returns the access token.
func (e *env) rootToken() string {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/auth/login", "", gin.H{"username": "root", "password": rootPassword})
	if rec.Code != http.StatusOK {
		e.t.Fatalf("root login failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	dataInto(e.t, rec, &resp)
	return resp.AccessToken
}

// seedAdmin writes an account straight to the database and returns an
// access token for it.
func (e *env) seedAdmin(username, password string, super, active bool) (*models.AdminUser, string) {
	e.t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		e.t.Fatalf("hash: %v", err)
	}
	admin := models.AdminUser{
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: hashed,
		IsSuperuser:    super,
		IsActive:       active,
	}
	if err := e.db.Create(&admin).Error; err != nil {
		e.t.Fatalf("seed admin: %v", err)
	}
	tok, _, err := e.tokens.IssueAccessToken(admin.ID)
	if err != nil {
		e.t.Fatalf("issue token: %v", err)
	}
	return &admin, tok
}

func (e *env) seedCategory(name, slug string) *models.Category {
	e.t.Helper()
	cat := models.Category{Name: name, Slug: slug, IsActive: true}
	if err := e.db.Create(&cat).Error; err != nil {
		e.t.Fatalf("seed category: %v", err)
	}
	return &cat
}

// auditCount counts trail records matching action and target type.
func (e *env) auditCount(action, targetType string) int64 {
	e.t.Helper()
	var n int64
	e.db.Model(&models.AuditLog{}).
		Where("action = ? AND target_type = ?", action, targetType).
		Count(&n)
	return n
}
