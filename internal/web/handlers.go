package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/JonMunkholm/regdef/internal/catalog"
	"github.com/JonMunkholm/regdef/internal/logging"
	"github.com/JonMunkholm/regdef/internal/registers"
	"github.com/JonMunkholm/regdef/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// defaultCompileSource names catalogs compiled from a request body
// without a source parameter.
const defaultCompileSource = "request"

// CompileResponse is the result of POST /api/compile.
type CompileResponse struct {
	catalog.Document
	Applied bool  `json:"applied"`
	Saved   int64 `json:"saved,omitempty"` // Register rows written to the store
}

// handleHealth reports liveness and the size of the served catalog.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"registers": s.Catalog().Len(),
	})
}

// viewCatalog applies the groups and lang query parameters to the served catalog.
func (s *Server) viewCatalog(r *http.Request) (*catalog.Catalog, catalog.GroupFilter, error) {
	c := s.Catalog()
	q := r.URL.Query()

	filter, err := catalog.ParseGroupFilter(q.Get("groups"))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errInvalidParameter, err)
	}
	if !filter.IsZero() {
		c = c.Filter(filter)
	}
	if lang := q.Get("lang"); lang != "" {
		c = c.WithLang(lang)
	}
	return c, filter, nil
}

// handleIndex renders the catalog page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	c, filter, err := s.viewCatalog(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := CatalogPage(catalog.NewDocument(c), filter.String()).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render catalog page", "error", err)
	}
}

// handleCatalog returns the summary of the served catalog.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalog().Summary())
}

// handleRegisters returns the registers of the served catalog, sorted by address.
func (s *Server) handleRegisters(w http.ResponseWriter, r *http.Request) {
	c, _, err := s.viewCatalog(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, catalog.NewDocument(c).Registers)
}

// handleRegister returns the register at the address path parameter.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	addr, err := registers.ParseInt(chi.URLParam(r, "address"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	c := s.Catalog()
	if lang := r.URL.Query().Get("lang"); lang != "" {
		c = c.WithLang(lang)
	}

	reg, ok := c.Lookup(addr)
	if !ok {
		respondMessage(w, r, notFound(addr), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, catalog.View(reg, c.Lang))
}

// TypeInfo describes one register base type.
type TypeInfo struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
	Format  string   `json:"format"` // Wire format tag
	Width   int      `json:"width"`  // Bytes per element
}

// handleTypes lists the accepted type names and their aliases.
func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	encs := registers.Encodings()
	types := make([]TypeInfo, len(encs))
	for i, enc := range encs {
		types[i] = TypeInfo{
			Name:    enc.Name,
			Aliases: registers.Aliases(enc.Class),
			Format:  string(enc.Format),
			Width:   enc.Width,
		}
	}
	writeJSON(w, http.StatusOK, types)
}

// handleCompile compiles the request body as a register file. With
// apply=true the result replaces the served catalog and is saved when a
// store is configured.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	dialect := s.reader.Dialect()
	if d := q.Get("delimiter"); d != "" {
		comma, err := parseDelimiter(d)
		if err != nil {
			s.respondError(w, r, err, http.StatusBadRequest)
			return
		}
		dialect.Comma = comma
	}

	apply := false
	if v := q.Get("apply"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.respondError(w, r, fmt.Errorf("%w: apply %q is not a boolean", errInvalidParameter, v), http.StatusBadRequest)
			return
		}
		apply = b
	}

	lang := s.reader.Lang
	if v := q.Get("lang"); v != "" {
		lang = v
	}
	source := q.Get("source")
	if source == "" {
		source = defaultCompileSource
	}

	if s.cfg.MaxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodySize)
	}

	ctx := r.Context()
	logger := logging.WithFields(ctx, "source", source)

	c, err := catalog.Compile(ctx, r.Body, source, catalog.Options{
		Dialect: dialect,
		Lang:    lang,
		Logger:  logger,
	})
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, err, http.StatusRequestEntityTooLarge)
			return
		}
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	resp := CompileResponse{Document: catalog.NewDocument(c)}
	if apply {
		if s.store != nil {
			n, err := s.store.SaveCatalog(ctx, c)
			if err != nil {
				s.respondError(w, r, err, http.StatusInternalServerError)
				return
			}
			resp.Saved = n
		}
		s.SetCatalog(c)
		resp.Applied = true
		logger.Info("served catalog replaced", "catalog_id", c.ID.String(), "registers", c.Len())
	}

	writeJSON(w, http.StatusOK, resp)
}

// DeleteResponse is the result of DELETE /api/catalogs/{id}.
type DeleteResponse struct {
	ID        string `json:"id"`
	Registers int64  `json:"registers"` // Register rows removed
}

// handleListCatalogs returns the stored catalogs, newest first.
func (s *Server) handleListCatalogs(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, r, errNoStore, http.StatusServiceUnavailable)
		return
	}

	summaries, err := s.store.ListCatalogs(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// handleDeleteCatalog removes a stored catalog and its registers. The
// served catalog is not affected.
func (s *Server) handleDeleteCatalog(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, r, errNoStore, http.StatusServiceUnavailable)
		return
	}

	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: catalog id %q: %w", errInvalidParameter, raw, err), http.StatusBadRequest)
		return
	}

	n, err := s.store.DeleteCatalog(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrCatalogNotFound) {
			status = http.StatusNotFound
		}
		s.respondError(w, r, err, status)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{ID: id.String(), Registers: n})
}

// parseDelimiter accepts one rune that can separate CSV fields.
func parseDelimiter(s string) (rune, error) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("%w: delimiter %q must be a single character", errInvalidParameter, s)
	}
	return r, nil
}
