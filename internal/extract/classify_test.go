package extract

import (
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		run    string
		hint   string
		want   Kind
		wantOK bool
	}{
		{"15 digits is tax id", "123456789012345", "", TaxID, true},
		{"15 digits ignores NIB hint", "123456789012345", "NIB", TaxID, true},
		{"16 digits is national id", "1234567890123456", "", NationalID, true},
		{"16 digits ignores phone hint", "0812345678901234", "TELP", NationalID, true},
		{"13 digits with NIB hint", "0812345678901", "NIB", BusinessRegistrationID, true},
		{"13 digits plain", "9120001234567", "", BusinessRegistrationID, true},
		{"13 digits starting 0", "0812345678901", "", Phone, true},
		{"13 digits starting 62", "6281234567890", "", Phone, true},
		{"13 digits under phone column", "9120001234567", "NO TELP", Phone, true},
		{"13 digits under HP column", "9120001234567", "HP", Phone, true},
		{"13 digits NOMOR does not veto", "9120001234567", "NOMOR", BusinessRegistrationID, true},
		{"lowercase hint", "9120001234567", "nib", BusinessRegistrationID, true},
		{"12 digits starting 08", "081234567890", "", Phone, true},
		{"11 digits starting 8", "81234567890", "", Phone, true},
		{"10 digits with NOMOR hint", "1234567890", "NOMOR", Phone, true},
		{"10 digits no signal", "1234567890", "", "", false},
		{"14 digits", "12345678901234", "NPWP", "", false},
		{"9 digits", "081234567", "TELP", "", false},
		{"17 digits", "12345678901234567", "", "", false},
		{"not digits", "12345abcde12345", "", "", false},
		{"empty", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.run, tt.hint)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Classify(%q, %q) = %q, %v; want %q, %v", tt.run, tt.hint, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCandidates(t *testing.T) {
	tests := []struct {
		name string
		run  string
		hint string
		want []Kind
	}{
		{"NIB then phone when phone rule holds", "8123456789012", "NIB", []Kind{BusinessRegistrationID, Phone}},
		{"NIB only", "9123456789012", "NIB", []Kind{BusinessRegistrationID}},
		{"NIB hint with phone keyword", "9123456789012", "NIB/TELP", []Kind{BusinessRegistrationID, Phone}},
		{"phone only", "0812345678901", "", []Kind{Phone}},
		{"tax id only", "123456789012345", "", []Kind{TaxID}},
		{"nothing", "12345678901234", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Candidates(tt.run, tt.hint)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Candidates(%q, %q) = %v, want %v", tt.run, tt.hint, got, tt.want)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	runs := []string{"123456789012345", "0812345678901", "9120001234567", "1234567890"}
	hints := []string{"", "NIB", "TELP", "NPWP/NIK"}
	for _, run := range runs {
		for _, hint := range hints {
			k1, ok1 := Classify(run, hint)
			k2, ok2 := Classify(run, hint)
			if k1 != k2 || ok1 != ok2 {
				t.Errorf("Classify(%q, %q) changed between calls", run, hint)
			}
		}
	}
}
