package handler_test

import (
	"fmt"
	"net/http"
	"reflect"
	"testing"

	"navtools/internal/models"

	"github.com/gin-gonic/gin"
)

func TestToolCreateAndGet(t *testing.T) {
	e := newEnv(t)
	tok := e.rootToken()
	cat := e.seedCategory("Dev", "dev")

	rec := e.do(http.MethodPost, "/admin/tools", tok, gin.H{
		"name":        "JSON Formatter",
		"slug":        "json-formatter",
		"url":         "https://example.com/json",
		"category_id": cat.ID,
		"tags":        []string{"json", "formatter"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var created models.Tool
	dataInto(t, rec, &created)
	if created.ID == 0 || !created.IsActive {
		t.Fatalf("created = %+v", created)
	}
	if n := e.auditCount("create", "tool"); n != 1 {
		t.Fatalf("create audit count = %d", n)
	}

	rec = e.do(http.MethodGet, fmt.Sprintf("/admin/tools/%d", created.ID), tok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d", rec.Code)
	}
	var got models.Tool
	dataInto(t, rec, &got)
	if string(got.Tags) != `["json","formatter"]` {
		t.Fatalf("tags = %s", got.Tags)
	}
}

func TestToolCreateRejectsDuplicateSlugAndBadCategory(t *testing.T) {
	e := newEnv(t)
	tok := e.rootToken()
	cat := e.seedCategory("Dev", "dev")

	body := gin.H{"name": "A", "slug": "dup", "url": "https://a.example", "category_id": cat.ID}
	if rec := e.do(http.MethodPost, "/admin/tools", tok, body); rec.Code != http.StatusOK {
		t.Fatalf("first create: %d", rec.Code)
	}
	if rec := e.do(http.MethodPost, "/admin/tools", tok, body); rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate slug: %d, want 400", rec.Code)
	}

	missing := gin.H{"name": "B", "slug": "b", "url": "https://b.example", "category_id": 9999}
	if rec := e.do(http.MethodPost, "/admin/tools", tok, missing); rec.Code != http.StatusNotFound {
		t.Fatalf("missing category: %d, want 404", rec.Code)
	}
}

// Update must only overwrite the fields present in the body.
func TestToolUpdateIsPartial(t *testing.T) {
	e := newEnv(t)
	tok := e.rootToken()
	cat := e.seedCategory("Dev", "dev")

	var created models.Tool
	dataInto(t, e.do(http.MethodPost, "/admin/tools", tok, gin.H{
		"name":        "Original",
		"slug":        "original",
		"url":         "https://orig.example",
		"category_id": cat.ID,
		"tags":        []string{"keep"},
	}), &created)

	rec := e.do(http.MethodPut, fmt.Sprintf("/admin/tools/%d", created.ID), tok,
		gin.H{"name": "Renamed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}

	var stored models.Tool
	if err := e.db.First(&stored, created.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Name != "Renamed" {
		t.Fatalf("name = %q", stored.Name)
	}
	if stored.Slug != "original" || stored.URL != "https://orig.example" {
		t.Fatalf("untouched fields changed: %+v", stored)
	}
	if string(stored.Tags) != `["keep"]` {
		t.Fatalf("tags changed: %s", stored.Tags)
	}

	// explicit false is a present field, not an omission
	rec = e.do(http.MethodPut, fmt.Sprintf("/admin/tools/%d", created.ID), tok,
		gin.H{"is_active": false})
	if rec.Code != http.StatusOK {
		t.Fatalf("deactivate: %d", rec.Code)
	}
	e.db.First(&stored, created.ID)
	if stored.IsActive {
		t.Fatal("is_active=false not applied")
	}
}

func TestToolToggleAndReorder(t *testing.T) {
	e := newEnv(t)
	tok := e.rootToken()
	cat := e.seedCategory("Dev", "dev")

	ids := make([]uint, 0, 3)
	for i := 0; i < 3; i++ {
		var created models.Tool
		dataInto(t, e.do(http.MethodPost, "/admin/tools", tok, gin.H{
			"name":        fmt.Sprintf("Tool %d", i),
			"slug":        fmt.Sprintf("tool-%d", i),
			"url":         "https://t.example",
			"category_id": cat.ID,
		}), &created)
		ids = append(ids, created.ID)
	}

	rec := e.do(http.MethodPost, fmt.Sprintf("/admin/tools/%d/toggle-featured", ids[0]), tok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: %d", rec.Code)
	}
	var flipped models.Tool
	e.db.First(&flipped, ids[0])
	if !flipped.IsFeatured {
		t.Fatal("toggle did not set is_featured")
	}

	// submit the reverse order; sort_order should follow the submitted index
	reversed := []uint{ids[2], ids[1], ids[0]}
	rec = e.do(http.MethodPost, "/admin/tools/reorder-featured", tok, gin.H{"tool_ids": reversed})
	if rec.Code != http.StatusOK {
		t.Fatalf("reorder: %d %s", rec.Code, rec.Body.String())
	}
	var orders []int
	for _, id := range reversed {
		var tool models.Tool
		e.db.First(&tool, id)
		orders = append(orders, tool.SortOrder)
	}
	if !reflect.DeepEqual(orders, []int{0, 1, 2}) {
		t.Fatalf("sort orders = %v", orders)
	}
	if n := e.auditCount("reorder", "tool"); n != 1 {
		t.Fatalf("reorder audit count = %d", n)
	}
}

func TestToolBatchOperations(t *testing.T) {
	e := newEnv(t)
	tok := e.rootToken()
	cat := e.seedCategory("Dev", "dev")

	ids := make([]uint, 0, 3)
	for i := 0; i < 3; i++ {
		var created models.Tool
		dataInto(t, e.do(http.MethodPost, "/admin/tools", tok, gin.H{
			"name":        fmt.Sprintf("Batch %d", i),
			"slug":        fmt.Sprintf("batch-%d", i),
			"url":         "https://b.example",
			"category_id": cat.ID,
		}), &created)
		ids = append(ids, created.ID)
	}

	rec := e.do(http.MethodPost, "/admin/tools/batch-toggle", tok,
		gin.H{"tool_ids": ids[:2], "is_active": false})
	if rec.Code != http.StatusOK {
		t.Fatalf("batch-toggle: %d %s", rec.Code, rec.Body.String())
	}
	var inactive int64
	e.db.Model(&models.Tool{}).Where("is_active = ?", false).Count(&inactive)
	if inactive != 2 {
		t.Fatalf("inactive count = %d", inactive)
	}

	// is_active is mandatory for the toggle
	rec = e.do(http.MethodPost, "/admin/tools/batch-toggle", tok, gin.H{"tool_ids": ids})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("batch-toggle without is_active: %d, want 422", rec.Code)
	}

	rec = e.do(http.MethodPost, "/admin/tools/batch-delete", tok, gin.H{"tool_ids": ids[:2]})
	if rec.Code != http.StatusOK {
		t.Fatalf("batch-delete: %d", rec.Code)
	}
	var remaining int64
	e.db.Model(&models.Tool{}).Count(&remaining)
	if remaining != 1 {
		t.Fatalf("remaining = %d, want 1", remaining)
	}
	if n := e.auditCount("batch-delete", "tool"); n != 1 {
		t.Fatalf("batch-delete audit count = %d", n)
	}
}

func TestToolListFilters(t *testing.T) {
	e := newEnv(t)
	tok := e.rootToken()
	dev := e.seedCategory("Dev", "dev")
	design := e.seedCategory("Design", "design")

	seed := []struct {
		name, slug string
		cat        uint
		featured   bool
	}{
		{"Alpha Formatter", "alpha", dev.ID, true},
		{"Beta Linter", "beta", dev.ID, false},
		{"Gamma Palette", "gamma", design.ID, false},
	}
	for _, s := range seed {
		rec := e.do(http.MethodPost, "/admin/tools", tok, gin.H{
			"name": s.name, "slug": s.slug, "url": "https://x.example",
			"category_id": s.cat, "is_featured": s.featured,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("seed %s: %d", s.slug, rec.Code)
		}
	}

	cases := []struct {
		path string
		want int64
	}{
		{"/admin/tools", 3},
		{"/admin/tools?search=Formatter", 1},
		{"/admin/tools?is_featured=true", 1},
		{fmt.Sprintf("/admin/tools?category_id=%d", design.ID), 1},
	}
	for _, tc := range cases {
		rec := e.do(http.MethodGet, tc.path, tok, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: %d", tc.path, rec.Code)
		}
		var list listPayload
		dataInto(t, rec, &list)
		if list.Total != tc.want {
			t.Errorf("%s: total = %d, want %d", tc.path, list.Total, tc.want)
		}
	}
}

func itoa(v uint) string { return fmt.Sprintf("%d", v) }
