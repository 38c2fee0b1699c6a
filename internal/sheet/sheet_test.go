package sheet

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func writeFixture(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Rekap"); err != nil {
		t.Fatalf("SetSheetName: %v", err)
	}
	if _, err := f.NewSheet("DATA PKL JAN"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	f.SetCellValue("DATA PKL JAN", "A1", "Nama")
	f.SetCellValue("DATA PKL JAN", "B1", "NIB")
	f.SetCellValue("DATA PKL JAN", "A2", "Ani")
	f.SetCellValue("DATA PKL JAN", "B2", "1234567890123")

	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
	return path
}

// ----------------------------------------------------------------------------
// Workbook Tests
// ----------------------------------------------------------------------------

func TestOpen_XLSX(t *testing.T) {
	wb, err := Open(writeFixture(t))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer wb.Close()

	if got, want := wb.Sheets(), []string{"Rekap", "DATA PKL JAN"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Sheets() = %q, want %q", got, want)
	}
	if got := wb.DefaultSheet("pkl"); got != "DATA PKL JAN" {
		t.Errorf("DefaultSheet(pkl) = %q", got)
	}
	if got := wb.DefaultSheet("missing"); got != "Rekap" {
		t.Errorf("DefaultSheet(missing) = %q, want first sheet", got)
	}

	rows, err := wb.Rows("DATA PKL JAN")
	if err != nil {
		t.Fatalf("Rows() error: %v", err)
	}
	want := [][]string{{"Nama", "NIB"}, {"Ani", "1234567890123"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Rows() = %q, want %q", rows, want)
	}

	preview, err := wb.Preview("DATA PKL JAN", 1)
	if err != nil || len(preview) != 1 {
		t.Errorf("Preview() = %v, %v", preview, err)
	}
}

func TestRows_UnknownSheet(t *testing.T) {
	wb, err := Open(writeFixture(t))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer wb.Close()

	_, err = wb.Rows("Nope")
	var re *ReadError
	if !errors.As(err, &re) || re.Sheet != "Nope" {
		t.Errorf("error = %v, want *ReadError for sheet Nope", err)
	}
}

func TestRead_CSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "plain",
			input: "Nama,NIB\nAni,123\n",
			want:  [][]string{{"Nama", "NIB"}, {"Ani", "123"}},
		},
		{
			name:  "byte order mark and ragged rows",
			input: "\uFEFFNama,NIB\nAni\n",
			want:  [][]string{{"Nama", "NIB"}, {"Ani"}},
		},
		{
			name:  "lazy quotes",
			input: "Nama\nPT \"ABC\" JAYA\n",
			want:  [][]string{{"Nama"}, {"PT \"ABC\" JAYA"}},
		},
		{
			name:  "windows-1252 text",
			input: "Nama,Alamat\nJos\xe9,Jl. Sud\xfcrman \x96 Blok A\n",
			want:  [][]string{{"Nama", "Alamat"}, {"Jos\u00e9", "Jl. Sud\u00fcrman \u2013 Blok A"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb, err := Read(strings.NewReader(tt.input), "data.CSV")
			if err != nil {
				t.Fatalf("Read() error: %v", err)
			}
			if got := wb.Sheets(); !reflect.DeepEqual(got, []string{CSVSheet}) {
				t.Errorf("Sheets() = %q", got)
			}
			rows, err := wb.Rows(CSVSheet)
			if err != nil {
				t.Fatalf("Rows() error: %v", err)
			}
			if !reflect.DeepEqual(rows, tt.want) {
				t.Errorf("Rows() = %q, want %q", rows, tt.want)
			}
		})
	}
}

func TestRead_Unsupported(t *testing.T) {
	_, err := Read(strings.NewReader("x"), "notes.txt")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestRead_CorruptXLSX(t *testing.T) {
	_, err := Read(strings.NewReader("not a zip"), "broken.xlsx")
	var re *ReadError
	if !errors.As(err, &re) || re.Component != "workbook" {
		t.Errorf("error = %v, want workbook *ReadError", err)
	}
}

// ----------------------------------------------------------------------------
// Writer Tests
// ----------------------------------------------------------------------------

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	rep := Report{
		Sheet:     "Data",
		Title:     "LAPORAN PERIZINAN",
		Subtitle:  "Sektor: Perikanan",
		Generated: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
		Columns:   []string{"NIB", "Nama"},
		Rows:      [][]string{{"0220001234567", "Ani"}},
	}
	if err := WriteReport(&buf, rep); err != nil {
		t.Fatalf("WriteReport() error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	cells := map[string]string{
		"A1": "LAPORAN PERIZINAN",
		"A2": "Sektor: Perikanan",
		"A3": "Dibuat: 01-03-2025 09:30",
		"A4": "",
		"A5": "NIB",
		"B5": "Nama",
		"A6": "0220001234567",
		"B6": "Ani",
	}
	for cell, want := range cells {
		got, err := f.GetCellValue("Data", cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, "All Data", []string{"BULAN", "Nama"}, [][]string{{"Januari 2025", "Ani"}}); err != nil {
		t.Fatalf("WriteTable() error: %v", err)
	}

	wb, err := Read(&buf, "out.xlsx")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	defer wb.Close()

	rows, err := wb.Rows("All Data")
	if err != nil {
		t.Fatalf("Rows() error: %v", err)
	}
	want := [][]string{{"BULAN", "Nama"}, {"Januari 2025", "Ani"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Rows() = %q, want %q", rows, want)
	}
}

func TestWriteMarked(t *testing.T) {
	var buf bytes.Buffer
	grid := [][]string{{"judul"}, {"", "Nama"}}
	if err := WriteMarked(&buf, grid, 1, 1); err != nil {
		t.Fatalf("WriteMarked() error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	style, err := f.GetCellStyle("Sheet1", "B2")
	if err != nil {
		t.Fatalf("GetCellStyle: %v", err)
	}
	if style == 0 {
		t.Error("start cell has no style")
	}
	if v, _ := f.GetCellValue("Sheet1", "B2"); v != "Nama" {
		t.Errorf("B2 = %q, want Nama", v)
	}
}
