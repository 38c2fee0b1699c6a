package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/perizinan/internal/config"
	"github.com/JonMunkholm/perizinan/internal/database"
	"github.com/JonMunkholm/perizinan/internal/extract"
	"github.com/JonMunkholm/perizinan/internal/mapping"
	"github.com/JonMunkholm/perizinan/internal/resilience"
	"github.com/JonMunkholm/perizinan/internal/sheet"
)

// ----------------------------------------------------------------------------
// Test Helpers
// ----------------------------------------------------------------------------

type fakeStore struct {
	mu       sync.Mutex
	inserted []database.InsertPermitParams
	failOn   map[string]error // keyed by nama_pengguna_layanan
	permits  []database.Permit
	deleted  map[pgtype.UUID]int64
}

func (f *fakeStore) InsertPermit(_ context.Context, arg database.InsertPermitParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failOn[arg.NamaPenggunaLayanan.String]; ok {
		return 0, err
	}
	f.inserted = append(f.inserted, arg)
	return int64(len(f.inserted)), nil
}

func (f *fakeStore) ListPermits(_ context.Context, arg database.ListPermitsParams) ([]database.Permit, error) {
	var out []database.Permit
	for _, p := range f.permits {
		if arg.Sektor == "" || p.Sektor == arg.Sektor {
			out = append(out, p)
		}
	}
	start := min(int(arg.Offset), len(out))
	end := min(start+int(arg.Limit), len(out))
	return out[start:end], nil
}

func (f *fakeStore) CountPermits(ctx context.Context, sektor string) (int64, error) {
	all, _ := f.ListPermits(ctx, database.ListPermitsParams{Sektor: sektor, Limit: 1 << 30})
	return int64(len(all)), nil
}

func (f *fakeStore) DeleteImport(_ context.Context, id pgtype.UUID) (int64, error) {
	return f.deleted[id], nil
}

func newTestService(t testing.TB, store PermitStore) *Service {
	t.Helper()
	cat, err := config.LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	svc, err := NewService(Deps{
		Store:    store,
		Executor: resilience.NewExecutor(resilience.Config{RetryMaxAttempts: 1}),
		Limiter:  NewImportLimiter(2, time.Second),
		Catalog:  cat,
	}, Options{Workers: 2, SessionTTL: time.Hour, MaxSessions: 4})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	svc.now = func() time.Time { return time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC) }
	return svc
}

// monthGrid is a sheet with a title row above the header.
func monthGrid() [][]string {
	return [][]string{
		{"REKAP DATA", "", ""},
		{"NAMA", "NIB", "KETERANGAN"},
		{"Budi", "NIB. 1111111111111", "Email: budi@mail.com"},
		{"", "", ""},
		{"Ani", "2222", "nan"},
	}
}

func monthOptions() StandardizeOptions {
	return StandardizeOptions{
		Header: mapping.HeaderSpec{StartRow: 1, HeaderRow: 0},
		Fields: mapping.FieldMap{
			mapping.FieldNama:  "NAMA",
			mapping.FieldNIB:   "NIB",
			mapping.FieldEmail: "KETERANGAN_email",
		},
		Extractions: []mapping.ExtractionRequest{
			{Column: "KETERANGAN", Options: []extract.Option{extract.OptEmail}},
		},
	}
}

// ----------------------------------------------------------------------------
// NewService Tests
// ----------------------------------------------------------------------------

func TestNewService_RequiresCatalog(t *testing.T) {
	if _, err := NewService(Deps{}, Options{}); err == nil {
		t.Fatal("expected error without catalog")
	}
}

func TestExtract(t *testing.T) {
	svc := newTestService(t, nil)
	res := svc.Extract("BUDI SANTOSO NIK: 3201234567890123", "Pemohon")
	if got, _ := res.Get(extract.NationalID); got != "3201234567890123" {
		t.Errorf("NIK = %q, want 3201234567890123", got)
	}
}

// ----------------------------------------------------------------------------
// Standardize Tests
// ----------------------------------------------------------------------------

func TestStandardize(t *testing.T) {
	svc := newTestService(t, nil)

	res, err := svc.Standardize(context.Background(), monthGrid(), monthOptions())
	if err != nil {
		t.Fatalf("Standardize() error = %v", err)
	}

	if len(res.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2", len(res.Records))
	}
	ani, budi := res.Records[0], res.Records[1]
	if ani.Nama != "Ani" || ani.NIB != "2222" || ani.Email != mapping.Placeholder {
		t.Errorf("first record = %+v", ani)
	}
	if budi.Nama != "Budi" || budi.Email != "budi@mail.com" || budi.KBLI != mapping.Placeholder {
		t.Errorf("second record = %+v", budi)
	}

	if len(res.Stats) != 1 || res.Stats[0].Hits != 1 || res.Stats[0].Total != 2 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if strings.Join(res.Source, ",") != "NAMA,NIB,KETERANGAN,KETERANGAN_email" {
		t.Errorf("Source = %q", res.Source)
	}
	if len(res.Display) != 2 {
		t.Errorf("len(Display) = %d", len(res.Display))
	}
}

func TestStandardize_Errors(t *testing.T) {
	svc := newTestService(t, nil)

	tests := []struct {
		name     string
		mutate   func(*StandardizeOptions)
		wantCode string
	}{
		{
			name:     "missing mapped column",
			mutate:   func(o *StandardizeOptions) { o.Fields[mapping.FieldNPWP] = "NPWP" },
			wantCode: "MAP001",
		},
		{
			name: "missing extraction column",
			mutate: func(o *StandardizeOptions) {
				o.Extractions = append(o.Extractions, mapping.ExtractionRequest{Column: "PEMOHON"})
			},
			wantCode: "MAP001",
		},
		{
			name:     "header past end",
			mutate:   func(o *StandardizeOptions) { o.Header.StartRow = 9 },
			wantCode: "MAP004",
		},
		{
			name:     "negative offset",
			mutate:   func(o *StandardizeOptions) { o.Header.StartCol = -1 },
			wantCode: "MAP003",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := monthOptions()
			tt.mutate(&opts)
			_, err := svc.Standardize(context.Background(), monthGrid(), opts)
			if got := MapError(err).Code; got != tt.wantCode {
				t.Errorf("error = %v (code %s), want code %s", err, got, tt.wantCode)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Preview Tests
// ----------------------------------------------------------------------------

func TestPreviewAndSheetRows(t *testing.T) {
	svc := newTestService(t, nil)
	wb, err := sheet.Read(strings.NewReader("NAMA,NIB\nAni,1\nBudi,2\n"), "januari.csv")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	defer wb.Close()

	p, err := svc.Preview(wb, "")
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if p.Sheet != sheet.CSVSheet || p.FileName != "januari.csv" || len(p.Rows) != 3 {
		t.Errorf("Preview() = %+v", p)
	}

	if _, err := svc.SheetRows(wb, "Rekap"); MapError(err).Code != "FILE006" {
		t.Errorf("SheetRows(unknown) error = %v", err)
	}

	empty, err := sheet.Read(strings.NewReader(""), "kosong.csv")
	if err != nil {
		t.Fatalf("Read(empty) error = %v", err)
	}
	if _, err := svc.SheetRows(empty, ""); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("SheetRows(empty) error = %v, want ErrEmptyFile", err)
	}
}

// ----------------------------------------------------------------------------
// Session Tests
// ----------------------------------------------------------------------------

func TestStackSession(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	sess, err := svc.NewSession()
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	if _, err := svc.StackSession(ctx, sess.ID, monthGrid(), monthOptions(), "januari", 2025); err != nil {
		t.Fatalf("StackSession(januari) error = %v", err)
	}
	view, err := svc.StackSession(ctx, sess.ID, monthGrid(), monthOptions(), "Februari", 2025)
	if err != nil {
		t.Fatalf("StackSession(Februari) error = %v", err)
	}

	if view.Rows != 4 {
		t.Errorf("Rows = %d, want 4", view.Rows)
	}
	want := []mapping.MonthCount{{Month: "Februari 2025", Rows: 2}, {Month: "Januari 2025", Rows: 2}}
	if len(view.Months) != 2 || view.Months[0] != want[0] || view.Months[1] != want[1] {
		t.Errorf("Months = %+v, want %+v", view.Months, want)
	}

	if _, err := svc.StackSession(ctx, sess.ID, monthGrid(), monthOptions(), "May", 2025); MapError(err).Code != "MAP008" {
		t.Errorf("unknown month error = %v", err)
	}
	if _, err := svc.StackSession(ctx, "missing", monthGrid(), monthOptions(), "Mei", 2025); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("missing session error = %v", err)
	}

	cleared, err := svc.ClearSession(sess.ID)
	if err != nil {
		t.Fatalf("ClearSession() error = %v", err)
	}
	if cleared.Rows != 0 || len(cleared.Months) != 0 {
		t.Errorf("after clear = %+v", cleared)
	}
}

func TestExportSession(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	sess, _ := svc.NewSession()
	if _, err := svc.StackSession(ctx, sess.ID, monthGrid(), monthOptions(), "Maret", 2024); err != nil {
		t.Fatalf("StackSession() error = %v", err)
	}

	var buf bytes.Buffer
	if err := svc.ExportSession(&buf, sess.ID); err != nil {
		t.Fatalf("ExportSession() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	checks := map[string]string{
		"A1": "REKAP DATA PERIZINAN",
		"A2": "Periode: Maret 2024",
		"A3": "Dibuat: 01-02-2025 09:30",
		"A5": mapping.MonthColumn,
		"C5": "Nama",
		"A6": "Maret 2024",
		"C6": "Ani",
		"C7": "Budi",
	}
	for cell, want := range checks {
		got, err := f.GetCellValue("All Data", cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s) error = %v", cell, err)
		}
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}
}

// ----------------------------------------------------------------------------
// Permit Query Tests
// ----------------------------------------------------------------------------

func TestListAndExportPermits(t *testing.T) {
	store := &fakeStore{permits: []database.Permit{
		{ID: 2, Sektor: "Pertanian", KategoriPerizinan: "Perizinan", PermitFields: database.PermitFields{NamaPenggunaLayanan: ToPgText("CV TANI")}},
		{ID: 1, Sektor: "Kelautan dan Perikanan", KategoriPerizinan: "Perizinan Berusaha", PermitFields: database.PermitFields{NamaPenggunaLayanan: ToPgText("KM BAHARI")}},
	}}
	svc := newTestService(t, store)
	ctx := context.Background()

	page, err := svc.ListPermits(ctx, "Pertanian", 0, -5)
	if err != nil {
		t.Fatalf("ListPermits() error = %v", err)
	}
	if page.Total != 1 || len(page.Permits) != 1 || page.Limit != 50 || page.Offset != 0 {
		t.Errorf("page = %+v", page)
	}

	var buf bytes.Buffer
	if err := svc.ExportPermits(ctx, &buf, ""); err != nil {
		t.Fatalf("ExportPermits() error = %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Perizinan")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 7 {
		t.Fatalf("len(rows) = %d, want 7", len(rows))
	}
	if rows[1][0] != "Sektor: Semua" || rows[4][3] != "NAMA PENGGUNA LAYANAN" || rows[6][3] != "KM BAHARI" {
		t.Errorf("rows = %q", rows)
	}
}

func TestPermitOperations_NoStore(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	if _, err := svc.ListPermits(ctx, "", 10, 0); !errors.Is(err, ErrNoStore) {
		t.Errorf("ListPermits() error = %v", err)
	}
	if err := svc.ExportPermits(ctx, &bytes.Buffer{}, ""); !errors.Is(err, ErrNoStore) {
		t.Errorf("ExportPermits() error = %v", err)
	}
	if _, err := svc.ImportPermits(ctx, nil, ImportOptions{}); !errors.Is(err, ErrNoStore) {
		t.Errorf("ImportPermits() error = %v", err)
	}
	if _, err := svc.RollbackImport(ctx, "x"); !errors.Is(err, ErrNoStore) {
		t.Errorf("RollbackImport() error = %v", err)
	}
}

func TestClientContext(t *testing.T) {
	if got := ClientFrom(context.Background()); got != (Client{}) {
		t.Errorf("ClientFrom(empty) = %+v, want zero", got)
	}

	ctx := WithClient(context.Background(), Client{IP: "10.1.2.3"})
	if got := ClientFrom(ctx); got.IP != "10.1.2.3" || got.UserAgent != "" {
		t.Errorf("ClientFrom() = %+v", got)
	}
	if args := ClientFrom(ctx).logArgs(); len(args) != 2 || args[0] != "client_ip" {
		t.Errorf("logArgs() = %v, want only client_ip", args)
	}
}
