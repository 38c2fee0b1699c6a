package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JonMunkholm/perizinan/internal/core"
)

type extractRequest struct {
	Text   string `json:"text"`
	Column string `json:"column"`
}

// handleExtract runs extraction over one free-text cell.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		respondError(w, r, errBadOptions, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.service.Extract(req.Text, req.Column))
}

// handleCatalog returns the sectors, categories, import aliases and months
// the service validates against.
func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Catalog())
}

// handleSheets lists a workbook's sheets and previews one of them.
func (s *Server) handleSheets(w http.ResponseWriter, r *http.Request) {
	wb, err := s.readWorkbook(w, r)
	if err != nil {
		respondError(w, r, err, uploadStatus(err))
		return
	}
	defer wb.Close()

	preview, err := s.service.Preview(wb, r.FormValue("sheet"))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// handleStandardize maps one sheet onto the canonical columns. The
// "options" form field carries core.StandardizeOptions as JSON.
func (s *Server) handleStandardize(w http.ResponseWriter, r *http.Request) {
	wb, err := s.readWorkbook(w, r)
	if err != nil {
		respondError(w, r, err, uploadStatus(err))
		return
	}
	defer wb.Close()

	var opts core.StandardizeOptions
	if err := decodeForm(r, "options", &opts); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	grid, err := s.service.SheetRows(wb, strings.TrimSpace(opts.Sheet))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	ctx, cancel := s.uploadContext(r)
	defer cancel()

	res, err := s.service.Standardize(ctx, grid, opts)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// uploadStatus is 413 for oversized bodies and 400 for anything else wrong
// with the upload itself.
func uploadStatus(err error) int {
	if s := statusFor(err); s == http.StatusRequestEntityTooLarge {
		return s
	}
	if core.MapError(err).Code == "FILE002" || core.MapError(err).Code == "FILE003" {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}
