package core

// import.go loads PKL-format permit sheets into the perizinan table.
//
// Headers are matched against the catalog's import aliases, each data row
// is normalized field by field (see convert.go) and inserted through the
// resilience executor. A failing row is recorded and the batch continues.

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/perizinan/internal/config"
	"github.com/JonMunkholm/perizinan/internal/database"
	"github.com/JonMunkholm/perizinan/internal/mapping"
	"github.com/JonMunkholm/perizinan/internal/resilience"
)

var (
	ErrUnknownSector   = errors.New("unknown sector")
	ErrUnknownCategory = errors.New("unknown permit category")
	ErrUnknownDocument = errors.New("unknown document type")
	ErrImportNotFound  = errors.New("import not found")
)

// Fields that do not map one-to-one onto a permit column.
const (
	fieldNIB          = "nib"
	fieldNomorTanggal = "nomor_tanggal_permohonan"
	fieldTanggalIzin  = "tanggal_izin"
	fieldMasaBerlaku  = "masa_berlaku"
)

const (
	opInsertPermit = "insert_permit"
	opDeleteImport = "delete_import"

	outcomeInserted = "inserted"
	outcomeFailed   = "failed"
	outcomeSkipped  = "skipped"
)

// ImportPermits validates opts, matches grid's header row to permit fields
// and inserts every data row. Rows whose first cell is empty are skipped.
// The returned error is non-nil only when the batch could not run at all
// or ctx ended; per-row failures are reported in ImportResult.Failed.
func (s *Service) ImportPermits(ctx context.Context, grid [][]string, opts ImportOptions) (ImportResult, error) {
	if s.store == nil {
		return ImportResult{}, ErrNoStore
	}
	if err := s.validateImport(opts); err != nil {
		return ImportResult{}, err
	}
	if len(grid) == 0 {
		return ImportResult{}, ErrEmptyFile
	}
	if opts.HeaderRow >= len(grid) {
		return ImportResult{}, fmt.Errorf("header row %d is past the end of the data (%d rows)", opts.HeaderRow, len(grid))
	}

	columns, err := s.MatchHeaders(grid[opts.HeaderRow], opts.Overrides)
	if err != nil {
		return ImportResult{}, err
	}

	release, err := s.limiter.Acquire(ctx, "import", opts.Sector)
	if err != nil {
		return ImportResult{}, err
	}
	defer release()

	start := time.Now()
	importID := uuid.New()
	result := ImportResult{
		ImportID: importID.String(),
		Failed:   []FailedRow{},
		Mapping:  make(map[string]string, len(columns)),
	}
	header := grid[opts.HeaderRow]
	for field, idx := range columns {
		result.Mapping[field] = header[idx]
	}

	log := opLogger(ctx,
		"import_id", result.ImportID,
		"sector", opts.Sector,
		"category", opts.Category,
	)
	log.Info("import started", "rows", max(len(grid)-opts.DataRow, 0), "fields", len(columns))

	for i := opts.DataRow; i < len(grid); i++ {
		row := grid[i]
		if len(row) == 0 || CleanValue(row[0]) == "" {
			result.Skipped++
			continue
		}

		params := database.InsertPermitParams{
			ImportID:          ToPgUUID(importID),
			Sektor:            opts.Sector,
			KategoriPerizinan: opts.Category,
		}
		params.PermitFields = BuildPermitFields(row, columns)
		if opts.Document != "" {
			params.JenisDokumen = ToPgText(opts.Document)
		}

		err := s.executor.Execute(ctx, opInsertPermit, func(ctx context.Context) error {
			_, err := s.store.InsertPermit(ctx, params)
			return err
		}, resilience.PostgresClassifier)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				s.recordImport(result, start)
				log.Warn("import interrupted", "error", ctxErr, "inserted", result.Inserted)
				return result, ctxErr
			}
			log.Debug("row rejected", "row", i+1, "error", err)
			reason := err.Error()
			if IsUserFacing(err) {
				reason = FormatUserError(err)
			}
			result.Failed = append(result.Failed, FailedRow{
				Row:    i + 1,
				Reason: "Row " + strconv.Itoa(i+1) + ": " + reason,
			})
			continue
		}
		result.Inserted++
	}

	result.Duration = time.Since(start)
	s.recordImport(result, start)
	log.Info("import completed",
		"inserted", result.Inserted,
		"failed", len(result.Failed),
		"skipped", result.Skipped,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

func (s *Service) recordImport(result ImportResult, start time.Time) {
	s.metrics.ImportRows(outcomeInserted, result.Inserted)
	s.metrics.ImportRows(outcomeFailed, len(result.Failed))
	s.metrics.ImportRows(outcomeSkipped, result.Skipped)
	s.metrics.ImportDuration(time.Since(start))
}

func (s *Service) validateImport(opts ImportOptions) error {
	if !s.catalog.HasSector(opts.Sector) {
		return fmt.Errorf("%w: %q", ErrUnknownSector, opts.Sector)
	}
	cat, ok := s.catalog.Category(opts.Category)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, opts.Category)
	}
	if opts.Document != "" && !slices.Contains(cat.Documents, opts.Document) {
		return fmt.Errorf("%w: %q is not filed under %s", ErrUnknownDocument, opts.Document, cat.Name)
	}
	if opts.HeaderRow < 0 || opts.DataRow <= opts.HeaderRow {
		return fmt.Errorf("invalid header spec: data_row (%d) must follow header_row (%d)", opts.DataRow, opts.HeaderRow)
	}
	return nil
}

// MatchHeaders assigns a column index to each import field. For every
// catalog alias the first header containing it (ignoring case) wins;
// overrides map a field to an exact header and take precedence.
func (s *Service) MatchHeaders(header []string, overrides map[string]string) (map[string]int, error) {
	return matchHeaders(s.catalog.ImportAliases, header, overrides)
}

func matchHeaders(aliases []config.ImportAlias, header []string, overrides map[string]string) (map[string]int, error) {
	upper := make([]string, len(header))
	for i, h := range header {
		upper[i] = strings.ToUpper(strings.TrimSpace(h))
	}

	columns := make(map[string]int)
	known := make(map[string]bool, len(aliases))
	for _, a := range aliases {
		known[a.Field] = true
		needle := strings.ToUpper(a.Header)
		for i, h := range upper {
			if strings.Contains(h, needle) {
				columns[a.Field] = i
				break
			}
		}
	}

	for field, col := range overrides {
		if !known[field] {
			return nil, fmt.Errorf("unknown permit field %q", field)
		}
		if col == "" {
			delete(columns, field)
			continue
		}
		i := slices.IndexFunc(header, func(h string) bool {
			return strings.TrimSpace(h) == strings.TrimSpace(col)
		})
		if i < 0 {
			return nil, &mapping.MappingError{Column: col}
		}
		columns[field] = i
	}
	return columns, nil
}

// BuildPermitFields normalizes one data row into permit columns.
func BuildPermitFields(row []string, columns map[string]int) database.PermitFields {
	var f database.PermitFields
	for field, idx := range columns {
		raw := ""
		if idx < len(row) {
			raw = CleanValue(row[idx])
		}

		switch field {
		case fieldNIB:
			f.Nib = ToPgText(CleanNIB(raw))
		case fieldNomorTanggal:
			nomor, tanggal := ParseNomorTanggal(raw)
			f.NomorPermohonan = ToPgText(nomor)
			f.TanggalPermohonan = ToPgText(ParseIndonesianDate(tanggal))
		case fieldTanggalIzin, fieldMasaBerlaku:
			f.SetField(field, ToPgText(ParseIndonesianDate(raw)))
		default:
			f.SetField(field, ToPgText(raw))
		}
	}
	return f
}

// RollbackImport deletes every permit written by the import id.
func (s *Service) RollbackImport(ctx context.Context, id string) (RollbackResult, error) {
	if s.store == nil {
		return RollbackResult{}, ErrNoStore
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return RollbackResult{}, fmt.Errorf("%w: invalid id %q", ErrImportNotFound, id)
	}

	var deleted int64
	err = s.executor.Execute(ctx, opDeleteImport, func(ctx context.Context) error {
		n, err := s.store.DeleteImport(ctx, ToPgUUID(parsed))
		deleted = n
		return err
	}, resilience.PostgresClassifier)
	if err != nil {
		return RollbackResult{}, err
	}
	if deleted == 0 {
		return RollbackResult{}, fmt.Errorf("%w: %s", ErrImportNotFound, id)
	}

	opLogger(ctx, "import_id", id).Info("import rolled back", "rows_deleted", deleted)
	return RollbackResult{ImportID: id, RowsDeleted: deleted}, nil
}

func listParams(sector string, limit, offset int) database.ListPermitsParams {
	return database.ListPermitsParams{
		Sektor: sector,
		Limit:  int32(limit),
		Offset: int32(offset),
	}
}

// permitColumns heads exported permit reports.
func permitColumns() []string {
	cols := []string{"NO", "SEKTOR", "KATEGORI PERIZINAN"}
	for _, c := range database.FieldColumns {
		cols = append(cols, strings.ToUpper(strings.ReplaceAll(c, "_", " ")))
	}
	return append(cols, "IMPORT ID")
}

func (s *Service) permitRows(ctx context.Context, sector string) ([]string, [][]string, error) {
	var rows [][]string
	for offset := 0; ; offset += exportPageSize {
		page, err := s.store.ListPermits(ctx, listParams(sector, exportPageSize, offset))
		if err != nil {
			return nil, nil, err
		}
		for _, p := range page {
			row := []string{strconv.Itoa(len(rows) + 1), p.Sektor, p.KategoriPerizinan}
			for _, c := range database.FieldColumns {
				row = append(row, PgTextToString(p.Field(c)))
			}
			rows = append(rows, append(row, PgUUIDToString(p.ImportID)))
		}
		if len(page) < exportPageSize {
			break
		}
	}
	return permitColumns(), rows, nil
}
