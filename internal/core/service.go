package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/perizinan/internal/config"
	"github.com/JonMunkholm/perizinan/internal/extract"
	"github.com/JonMunkholm/perizinan/internal/logging"
	"github.com/JonMunkholm/perizinan/internal/mapping"
	"github.com/JonMunkholm/perizinan/internal/resilience"
	"github.com/JonMunkholm/perizinan/internal/sheet"
)

// ErrNoStore is returned by permit operations when the service was built
// without a database.
var ErrNoStore = errors.New("permit store not configured")

// ErrEmptyFile is returned when a selected sheet has no rows.
var ErrEmptyFile = errors.New("empty file: the sheet has no rows")

// DefaultSheetKeyword picks the sheet preselected in previews.
const DefaultSheetKeyword = "DATA"

// exportPageSize bounds each read while exporting permits.
const exportPageSize = 1000

// Deps are the collaborators a Service uses. Only Catalog is required.
type Deps struct {
	Store    PermitStore
	Executor *resilience.Executor
	Limiter  *ImportLimiter
	Catalog  *config.Catalog
	Metrics  Recorder
}

// Options tune extraction and sessions.
type Options struct {
	Workers     int
	PreviewRows int
	SessionTTL  time.Duration
	MaxSessions int
}

// Service provides the permit extraction, mapping and import operations.
type Service struct {
	store    PermitStore
	executor *resilience.Executor
	limiter  *ImportLimiter
	catalog  *config.Catalog
	metrics  Recorder
	sessions *SessionStore
	opts     Options
	now      func() time.Time
}

// NewService creates a new Service instance.
func NewService(deps Deps, opts Options) (*Service, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("new service: catalog is required")
	}
	if deps.Executor == nil {
		deps.Executor = resilience.NewExecutor(resilience.DefaultConfig())
	}
	if deps.Limiter == nil {
		deps.Limiter = NewImportLimiter(0, 0)
	}
	if deps.Metrics == nil {
		deps.Metrics = nopRecorder{}
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = 20
	}

	return &Service{
		store:    deps.Store,
		executor: deps.Executor,
		limiter:  deps.Limiter,
		catalog:  deps.Catalog,
		metrics:  deps.Metrics,
		sessions: NewSessionStore(opts.SessionTTL, opts.MaxSessions),
		opts:     opts,
		now:      time.Now,
	}, nil
}

// Catalog returns the reference data the service validates against.
func (s *Service) Catalog() *config.Catalog {
	return s.catalog
}

// Extract pulls identifiers out of one free-text cell. column is the
// header the cell sits under and steers ambiguous tokens.
func (s *Service) Extract(text, column string) extract.Result {
	return extract.Extract(text, column)
}

// Preview lists the workbook's sheets and the first rows of sheetName, or
// of the default sheet when sheetName is empty.
func (s *Service) Preview(wb *sheet.Workbook, sheetName string) (SheetPreview, error) {
	if sheetName == "" {
		sheetName = wb.DefaultSheet(DefaultSheetKeyword)
	}
	rows, err := wb.Preview(sheetName, s.opts.PreviewRows)
	if err != nil {
		return SheetPreview{}, err
	}
	return SheetPreview{
		FileName: wb.Name(),
		Sheets:   wb.Sheets(),
		Sheet:    sheetName,
		Rows:     rows,
	}, nil
}

// SheetRows returns the rows of sheetName, or of the default sheet.
func (s *Service) SheetRows(wb *sheet.Workbook, sheetName string) ([][]string, error) {
	if sheetName == "" {
		sheetName = wb.DefaultSheet(DefaultSheetKeyword)
	}
	rows, err := wb.Rows(sheetName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheetName, ErrEmptyFile)
	}
	return rows, nil
}

// Standardize builds a table from grid, applies the requested extractions
// and projects the rows onto the canonical schema.
func (s *Service) Standardize(ctx context.Context, grid [][]string, opts StandardizeOptions) (StandardizeResult, error) {
	release, err := s.limiter.Acquire(ctx, "standardize", "")
	if err != nil {
		return StandardizeResult{}, err
	}
	defer release()

	table, err := mapping.BuildTable(grid, opts.Header)
	if err != nil {
		return StandardizeResult{}, err
	}

	table, stats, err := mapping.ApplyExtractions(ctx, table, opts.Extractions, s.opts.Workers)
	if err != nil {
		return StandardizeResult{}, err
	}
	for _, st := range stats {
		s.metrics.ExtractionHits(string(st.Option), st.Hits, st.Total)
	}

	records, err := mapping.Standardize(table, opts.Fields)
	if err != nil {
		return StandardizeResult{}, err
	}
	s.metrics.StandardizedRows(len(records))

	return StandardizeResult{
		Columns: mapping.Headers(),
		Records: records,
		Display: mapping.DisplayView(records),
		Stats:   stats,
		Source:  table.Columns,
	}, nil
}

// NewSession starts an empty stacking session.
func (s *Service) NewSession() (SessionView, error) {
	id, err := s.sessions.Create()
	if err != nil {
		return SessionView{}, err
	}
	return s.sessions.View(id)
}

// StackSession standardizes grid and appends the records to the session
// under the "<month> <year>" label.
func (s *Service) StackSession(ctx context.Context, id string, grid [][]string, opts StandardizeOptions, month string, year int) (SessionView, error) {
	label, err := s.MonthLabel(month, year)
	if err != nil {
		return SessionView{}, err
	}
	if _, err := s.sessions.Get(id); err != nil {
		return SessionView{}, err
	}

	res, err := s.Standardize(ctx, grid, opts)
	if err != nil {
		return SessionView{}, err
	}

	if _, err := s.sessions.Update(id, func(st mapping.Stack) mapping.Stack {
		return st.Append(label, res.Records)
	}); err != nil {
		return SessionView{}, err
	}

	opLogger(ctx).Info("batch stacked",
		"session_id", id,
		"month", label,
		"rows", len(res.Records),
	)
	return s.sessions.View(id)
}

// MonthLabel validates month against the catalog and formats the BULAN
// value using the catalog's spelling.
func (s *Service) MonthLabel(month string, year int) (string, error) {
	n, ok := s.catalog.MonthNumber(month)
	if !ok {
		return "", fmt.Errorf("unknown month %q", month)
	}
	if year < 1900 || year > 9999 {
		return "", fmt.Errorf("unknown month: year %d out of range", year)
	}
	return mapping.MonthLabel(s.catalog.Months[n-1], year), nil
}

// Session summarizes a stacking session.
func (s *Service) Session(id string) (SessionView, error) {
	return s.sessions.View(id)
}

// ClearSession empties the session's stack but keeps the session.
func (s *Service) ClearSession(id string) (SessionView, error) {
	if _, err := s.sessions.Update(id, mapping.Stack.Clear); err != nil {
		return SessionView{}, err
	}
	return s.sessions.View(id)
}

// DeleteSession discards the session.
func (s *Service) DeleteSession(id string) {
	s.sessions.Delete(id)
}

// ExportSession writes the stacked rows as an xlsx report.
func (s *Service) ExportSession(w io.Writer, id string) error {
	st, err := s.sessions.Get(id)
	if err != nil {
		return err
	}
	t := st.Table()

	months := make([]string, 0, len(st.Months()))
	for _, m := range st.Months() {
		months = append(months, m.Month)
	}

	return sheet.WriteReport(w, sheet.Report{
		Sheet:     "All Data",
		Title:     "REKAP DATA PERIZINAN",
		Subtitle:  "Periode: " + strings.Join(months, ", "),
		Generated: s.now(),
		Columns:   t.Columns,
		Rows:      t.Rows,
	})
}

// SweepSessions evicts expired sessions.
func (s *Service) SweepSessions() int {
	return s.sessions.Sweep()
}

// StartSessionSweeper evicts expired sessions every interval until ctx is
// cancelled.
func (s *Service) StartSessionSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.SweepSessions(); n > 0 {
				slog.Info("expired sessions evicted", "count", n)
			}
		}
	}
}

// ListPermits returns one page of stored permits, newest first.
func (s *Service) ListPermits(ctx context.Context, sector string, limit, offset int) (PermitPage, error) {
	if s.store == nil {
		return PermitPage{}, ErrNoStore
	}
	if limit <= 0 || limit > exportPageSize {
		limit = 50
	}
	offset = max(offset, 0)

	permits, err := s.store.ListPermits(ctx, listParams(sector, limit, offset))
	if err != nil {
		return PermitPage{}, err
	}
	total, err := s.store.CountPermits(ctx, sector)
	if err != nil {
		return PermitPage{}, err
	}
	return PermitPage{Permits: permits, Total: total, Limit: limit, Offset: offset}, nil
}

// ExportPermits writes every stored permit of sector (all sectors when
// empty) as an xlsx report.
func (s *Service) ExportPermits(ctx context.Context, w io.Writer, sector string) error {
	if s.store == nil {
		return ErrNoStore
	}

	columns, rows, err := s.permitRows(ctx, sector)
	if err != nil {
		return err
	}

	subtitle := "Sektor: Semua"
	if sector != "" {
		subtitle = "Sektor: " + sector
	}
	return sheet.WriteReport(w, sheet.Report{
		Sheet:     "Perizinan",
		Title:     "DATA PERIZINAN",
		Subtitle:  subtitle,
		Generated: s.now(),
		Columns:   columns,
		Rows:      rows,
	})
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx ends.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// opLogger carries the request ID and, when known, the calling client.
func opLogger(ctx context.Context, args ...any) *slog.Logger {
	return logging.WithFields(ctx, append(args, ClientFrom(ctx).logArgs()...)...)
}
