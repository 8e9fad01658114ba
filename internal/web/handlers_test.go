package web

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hpungsan/quire/internal/config"
	"github.com/hpungsan/quire/internal/db"
	"github.com/hpungsan/quire/internal/ops"
	"github.com/hpungsan/quire/internal/storage"
	"github.com/hpungsan/quire/internal/store"
)

func setupTest(t *testing.T) *Handlers {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		t.Fatalf("template sub-FS: %v", err)
	}

	return &Handlers{
		idx:      store.NewIndex(storage.NewSQLite(database), store.IndexOptions{}),
		cfg:      config.DefaultConfig(),
		renderer: NewRenderer(templateSub, "test"),
	}
}

// seedDraft creates a draft with the given title and HTML body and returns its ID.
func seedDraft(t *testing.T, h *Handlers, title, html string) string {
	t.Helper()
	out, err := ops.Create(context.Background(), h.idx, ops.CreateInput{Title: title, Content: html})
	if err != nil {
		t.Fatalf("seed draft %q: %v", title, err)
	}
	return out.ID
}

func newMux(t *testing.T, h *Handlers) http.Handler {
	t.Helper()
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		t.Fatalf("static sub-FS: %v", err)
	}
	return securityHeaders(routes(h, staticSub))
}

// --- HandleList ---

func TestHandleList_Default(t *testing.T) {
	h := setupTest(t)
	seedDraft(t, h, "Weekly digest", "<p>Links of the week</p>")

	req := httptest.NewRequest("GET", "/drafts", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Weekly digest") {
		t.Error("expected draft title in response")
	}
	if !strings.Contains(body, "Links of the week") {
		t.Error("expected excerpt in response")
	}
	if !strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("expected full layout")
	}
}

func TestHandleList_Empty(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/drafts", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No drafts yet") {
		t.Error("expected empty state message")
	}
}

func TestHandleList_UntitledDraft(t *testing.T) {
	h := setupTest(t)
	seedDraft(t, h, "", "")

	req := httptest.NewRequest("GET", "/drafts", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if !strings.Contains(rec.Body.String(), "Untitled draft") {
		t.Error("expected placeholder title for an untitled draft")
	}
}

func TestHandleList_HtmxReturnsContentOnly(t *testing.T) {
	h := setupTest(t)
	seedDraft(t, h, "htmx-test", "")

	req := httptest.NewRequest("GET", "/drafts", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	body := rec.Body.String()
	if strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("htmx response should not include the layout")
	}
	if !strings.Contains(body, "htmx-test") {
		t.Error("expected draft in htmx response")
	}
}

func TestHandleList_JSONPagination(t *testing.T) {
	h := setupTest(t)
	for _, title := range []string{"one", "two", "three"} {
		seedDraft(t, h, title, "")
	}

	req := httptest.NewRequest("GET", "/drafts?limit=2", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	var out ops.ListOutput
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(out.Items))
	}
	if !out.Pagination.HasMore || out.Pagination.Total != 3 {
		t.Errorf("pagination = %+v, want has_more with total 3", out.Pagination)
	}
}

// --- HandleDetail ---

func TestHandleDetail(t *testing.T) {
	h := setupTest(t)
	id := seedDraft(t, h, "Detail", "<p>Body <strong>text</strong></p>")
	if _, err := ops.AddSource(context.Background(), h.idx, ops.AddSourceInput{ID: id, Type: "link", URL: "https://example.com/post"}); err != nil {
		t.Fatalf("add source: %v", err)
	}

	req := httptest.NewRequest("GET", "/drafts/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<strong>text</strong>") {
		t.Error("expected rendered draft HTML")
	}
	if !strings.Contains(body, `href="https://example.com/post"`) {
		t.Error("expected link source")
	}
}

func TestHandleDetail_NotFound(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/drafts/nope", nil)
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "draft not found") {
		t.Error("expected error page message")
	}
}

func TestHandleDetail_NotFoundJSON(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/drafts/nope", nil)
	req.SetPathValue("id", "nope")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	var payload struct {
		Error struct {
			Code   string `json:"code"`
			Status int    `json:"status"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Error.Code != "NOT_FOUND" || payload.Error.Status != 404 {
		t.Errorf("error = %+v, want NOT_FOUND/404", payload.Error)
	}
}

func TestHandleDetail_HtmxError(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/drafts/nope", nil)
	req.SetPathValue("id", "nope")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if !strings.HasPrefix(rec.Body.String(), `<div class="error-message">`) {
		t.Errorf("body = %q, want error fragment", rec.Body.String())
	}
}

// --- HandleCreate ---

func TestHandleCreate_Redirects(t *testing.T) {
	h := setupTest(t)

	form := url.Values{"title": {"Fresh"}}
	req := httptest.NewRequest("POST", "/drafts", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/drafts/") {
		t.Fatalf("Location = %q", loc)
	}

	list, err := ops.List(context.Background(), h.idx, ops.ListInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].Title != "Fresh" {
		t.Errorf("items = %+v, want one draft titled Fresh", list.Items)
	}
}

func TestHandleCreate_Htmx(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("POST", "/drafts", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("HX-Redirect"), "/drafts/") {
		t.Errorf("HX-Redirect = %q", rec.Header().Get("HX-Redirect"))
	}
}

// --- HandleDelete ---

func TestHandleDelete(t *testing.T) {
	h := setupTest(t)
	id := seedDraft(t, h, "gone", "")

	req := httptest.NewRequest("DELETE", "/drafts/"+id, nil)
	req.SetPathValue("id", id)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	var out ops.DeleteOutput
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Deleted || out.ID != id {
		t.Errorf("out = %+v, want deleted %s", out, id)
	}

	if _, err := ops.Fetch(context.Background(), h.idx, ops.FetchInput{ID: id}); err == nil {
		t.Error("expected draft to be gone")
	}
}

func TestHandleDelete_HtmxRedirect(t *testing.T) {
	h := setupTest(t)
	id := seedDraft(t, h, "gone", "")

	req := httptest.NewRequest("DELETE", "/drafts/"+id, nil)
	req.SetPathValue("id", id)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if got := rec.Header().Get("HX-Redirect"); got != "/drafts" {
		t.Errorf("HX-Redirect = %q, want /drafts", got)
	}
}

// --- Routing ---

func TestRoutes(t *testing.T) {
	h := setupTest(t)
	srv := httptest.NewServer(newMux(t, h))
	defer srv.Close()

	client := srv.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp, err := client.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/drafts" {
		t.Errorf("GET / = %d %q, want redirect to /drafts", resp.StatusCode, resp.Header.Get("Location"))
	}
	if resp.Header.Get("X-Frame-Options") != "DENY" {
		t.Error("expected security headers")
	}

	resp, err = client.Get(srv.URL + "/static/style.css")
	if err != nil {
		t.Fatalf("GET static: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("static status = %d, want 200", resp.StatusCode)
	}
}

func TestFormatCount(t *testing.T) {
	tests := map[int]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -4500: "-4,500"}
	for n, want := range tests {
		if got := formatCount(n); got != want {
			t.Errorf("formatCount(%d) = %q, want %q", n, got, want)
		}
	}
}
