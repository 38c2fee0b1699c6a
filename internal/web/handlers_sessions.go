package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/perizinan/internal/core"
)

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.NewSession()
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Session(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleStackSession standardizes an uploaded sheet and appends it to the
// session under the month and year form fields.
func (s *Server) handleStackSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.service.Session(id); err != nil {
		respondError(w, r, err, 0)
		return
	}

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

	month := strings.TrimSpace(r.FormValue("month"))
	year, err := strconv.Atoi(strings.TrimSpace(r.FormValue("year")))
	if month == "" || err != nil {
		respondError(w, r, errMissingYear, http.StatusBadRequest)
		return
	}

	grid, err := s.service.SheetRows(wb, strings.TrimSpace(opts.Sheet))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	ctx, cancel := s.uploadContext(r)
	defer cancel()

	view, err := s.service.StackSession(ctx, id, grid, opts, month, year)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleClearSession empties a session but keeps it open.
func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.ClearSession(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.service.DeleteSession(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// handleExportSession downloads every stacked month as one workbook.
func (s *Server) handleExportSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, err := s.service.Session(id)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	if view.Rows == 0 {
		respondError(w, r, core.ErrEmptyFile, http.StatusUnprocessableEntity)
		return
	}

	setAttachment(w, "rekap_perizinan")
	if err := s.service.ExportSession(w, id); err != nil {
		// Headers are already sent.
		logRequestError(r, "session export failed", err)
	}
}
