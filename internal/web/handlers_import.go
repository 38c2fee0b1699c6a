package web

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/perizinan/internal/core"
	"github.com/JonMunkholm/perizinan/internal/logging"
)

// handleImport loads a PKL-format sheet into the permit table. The
// "options" form field carries core.ImportOptions as JSON. Partial
// results are returned with the rows that failed.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	wb, err := s.readWorkbook(w, r)
	if err != nil {
		respondError(w, r, err, uploadStatus(err))
		return
	}
	defer wb.Close()

	var opts core.ImportOptions
	if err := decodeForm(r, "options", &opts); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	grid, err := s.service.SheetRows(wb, opts.Sheet)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	ctx, cancel := s.uploadContext(r)
	defer cancel()

	res, err := s.service.ImportPermits(ctx, grid, opts)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleRollbackImport deletes every permit inserted by one import batch.
func (s *Server) handleRollbackImport(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.RollbackImport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleImportStatus reports import slot usage.
func (s *Server) handleImportStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.service.LimiterStatus())
}

func (s *Server) handleListPermits(w http.ResponseWriter, r *http.Request) {
	page, err := s.service.ListPermits(r.Context(),
		r.URL.Query().Get("sector"),
		parseIntParam(r, "limit", 0),
		parseIntParam(r, "offset", 0),
	)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleExportPermits downloads stored permits, optionally for one sector.
func (s *Server) handleExportPermits(w http.ResponseWriter, r *http.Request) {
	sector := r.URL.Query().Get("sector")
	if sector != "" && !s.service.Catalog().HasSector(sector) {
		respondError(w, r, core.ErrUnknownSector, http.StatusBadRequest)
		return
	}

	// Render before writing headers so store errors still get a status.
	var buf bytes.Buffer
	if err := s.service.ExportPermits(r.Context(), &buf, sector); err != nil {
		respondError(w, r, err, 0)
		return
	}
	setAttachment(w, "data_perizinan")
	if _, err := buf.WriteTo(w); err != nil {
		logRequestError(r, "permit export write failed", err)
	}
}

func logRequestError(r *http.Request, msg string, err error) {
	logging.FromContext(r.Context()).Error(msg, "path", r.URL.Path, "error", err)
}
