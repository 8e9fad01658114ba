package web

import (
	"net/http"
	"strconv"

	"github.com/hpungsan/quire/internal/config"
	"github.com/hpungsan/quire/internal/errors"
	"github.com/hpungsan/quire/internal/ops"
	"github.com/hpungsan/quire/internal/store"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	idx      *store.Index
	cfg      *config.Config
	renderer *Renderer
}

// HandleList handles GET /drafts: drafts, most recently updated first.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	input := ops.ListInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	}

	result, err := ops.List(r.Context(), h.idx, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Drafts",
			Version: h.renderer.version,
			Nav:     "drafts",
		},
		Items:      result.Items,
		Pagination: result.Pagination,
	})
}

// HandleDetail handles GET /drafts/{id}: view a single draft.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("draft ID is required"))
		return
	}

	d, err := ops.Fetch(r.Context(), h.idx, ops.FetchInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, d)
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   d.DisplayTitle,
			Version: h.renderer.version,
			Nav:     "drafts",
		},
		Draft:        d,
		RenderedHTML: renderDraftHTML(d.Content),
	})
}

// HandleCreate handles POST /drafts: create a draft from an optional title.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	result, err := ops.Create(r.Context(), h.idx, ops.CreateInput{Title: r.FormValue("title")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	location := "/drafts/" + result.ID

	if isHTMX(r) {
		w.Header().Set("HX-Redirect", location)
		w.WriteHeader(http.StatusCreated)
		return
	}

	if wantsJSON(r) {
		w.Header().Set("Location", location)
		renderJSON(w, http.StatusCreated, result)
		return
	}

	http.Redirect(w, r, location, http.StatusSeeOther)
}

// HandleDelete handles DELETE /drafts/{id}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("draft ID is required"))
		return
	}

	result, err := ops.Delete(r.Context(), h.idx, ops.DeleteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/drafts")
		w.WriteHeader(http.StatusOK)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/drafts", http.StatusFound)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
