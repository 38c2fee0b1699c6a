package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/perizinan/internal/database"
	"github.com/JonMunkholm/perizinan/internal/mapping"
)

// PermitStore persists imported permits. Satisfied by *database.Queries.
type PermitStore interface {
	InsertPermit(ctx context.Context, arg database.InsertPermitParams) (int64, error)
	ListPermits(ctx context.Context, arg database.ListPermitsParams) ([]database.Permit, error)
	CountPermits(ctx context.Context, sektor string) (int64, error)
	DeleteImport(ctx context.Context, importID pgtype.UUID) (int64, error)
}

// Recorder receives service-level measurements. The metrics package
// provides the Prometheus implementation.
type Recorder interface {
	ExtractionHits(option string, hits, total int)
	StandardizedRows(n int)
	ImportRows(outcome string, n int)
	ImportDuration(d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ExtractionHits(string, int, int) {}
func (nopRecorder) StandardizedRows(int)            {}
func (nopRecorder) ImportRows(string, int)          {}
func (nopRecorder) ImportDuration(time.Duration)    {}

// SheetPreview lists a workbook's sheets and the first rows of one of them.
type SheetPreview struct {
	FileName string     `json:"file_name"`
	Sheets   []string   `json:"sheets"`
	Sheet    string     `json:"sheet"`
	Rows     [][]string `json:"rows"`
}

// StandardizeOptions selects the table inside a sheet and maps it onto the
// canonical schema.
type StandardizeOptions struct {
	Sheet       string                      `json:"sheet"`
	Header      mapping.HeaderSpec          `json:"header"`
	Fields      mapping.FieldMap            `json:"fields"`
	Extractions []mapping.ExtractionRequest `json:"extractions"`
}

// StandardizeResult carries sorted records, their display view and the
// extraction hit counts.
type StandardizeResult struct {
	Columns []string                 `json:"columns"`
	Records []mapping.Record         `json:"-"`
	Display []mapping.Record         `json:"rows"`
	Stats   []mapping.ExtractionStat `json:"extractions,omitempty"`
	Source  []string                 `json:"source_columns"`
}

// SessionView summarizes a stacking session.
type SessionView struct {
	ID        string               `json:"id"`
	Rows      int                  `json:"rows"`
	Months    []mapping.MonthCount `json:"months"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// ImportOptions describes one permit import batch. HeaderRow and DataRow
// are zero-based. Overrides maps a permit field to a source header and
// wins over automatic matching; an empty header unmaps the field.
// Document, when set, must be one of the category's document types and is
// stored as jenis_dokumen on every row.
type ImportOptions struct {
	Sector    string            `json:"sector"`
	Category  string            `json:"category"`
	Document  string            `json:"document,omitempty"`
	Sheet     string            `json:"sheet"`
	HeaderRow int               `json:"header_row"`
	DataRow   int               `json:"data_row"`
	Overrides map[string]string `json:"overrides,omitempty"`
}

// FailedRow is a row the store rejected. Row is 1-based within the sheet.
type FailedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult reports the outcome of ImportPermits.
type ImportResult struct {
	ImportID string            `json:"import_id"`
	Inserted int               `json:"inserted"`
	Skipped  int               `json:"skipped"`
	Failed   []FailedRow       `json:"failed"`
	Mapping  map[string]string `json:"mapping"`
	Duration time.Duration     `json:"duration_ns"`
}

// RollbackResult reports the outcome of RollbackImport.
type RollbackResult struct {
	ImportID    string `json:"import_id"`
	RowsDeleted int64  `json:"rows_deleted"`
}

// PermitPage is one page of stored permits.
type PermitPage struct {
	Permits []database.Permit `json:"permits"`
	Total   int64             `json:"total"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
}
