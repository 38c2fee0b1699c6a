package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/perizinan/internal/sheet"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// parseIntParam parses a non-negative integer query parameter with a
// default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}

// readWorkbook parses the multipart "file" field as a workbook. The body
// is capped at the configured upload size.
func (s *Server) readWorkbook(w http.ResponseWriter, r *http.Request) (*sheet.Workbook, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	if r.ContentLength > maxSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", errFileTooBig, maxSize)
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, fmt.Errorf("%w: limit is %d bytes", errFileTooBig, tooBig.Limit)
		}
		return nil, fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	return sheet.Read(file, header.Filename)
}

// decodeForm unmarshals the JSON form field name into v. A missing field
// leaves v untouched.
func decodeForm(r *http.Request, name string, v any) error {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w (%s: %v)", errBadOptions, name, err)
	}
	return nil
}

// uploadContext bounds workbook processing by the upload timeout.
func (s *Server) uploadContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
}

// setAttachment prepares headers for a spreadsheet download named
// prefix_YYYYMMDD_HHMMSS.xlsx.
func setAttachment(w http.ResponseWriter, prefix string) {
	filename := fmt.Sprintf("%s_%s.xlsx", prefix, time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
}
