package main

import (
	"testing"

	"github.com/JonMunkholm/perizinan/internal/extract"
	"github.com/JonMunkholm/perizinan/internal/mapping"
)

func TestParseFieldMap(t *testing.T) {
	fm, err := parseFieldMap([]string{"nama=NAMA PEMOHON", "NIB=NIB", "Email="})
	if err != nil {
		t.Fatalf("parseFieldMap() error = %v", err)
	}
	want := mapping.FieldMap{
		mapping.FieldNama:  "NAMA PEMOHON",
		mapping.FieldNIB:   "NIB",
		mapping.FieldEmail: "",
	}
	if len(fm) != len(want) {
		t.Fatalf("parseFieldMap() = %v, want %v", fm, want)
	}
	for f, col := range want {
		if fm[f] != col {
			t.Errorf("%s = %q, want %q", f, fm[f], col)
		}
	}

	tests := []struct {
		name  string
		pairs []string
	}{
		{"missing separator", []string{"Nama"}},
		{"unknown field", []string{"Telepon=HP"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseFieldMap(tt.pairs); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseExtractions(t *testing.T) {
	reqs, err := parseExtractions([]string{"PEMOHON=nik,NPWP", "KETERANGAN=email", "PEMOHON=name"})
	if err != nil {
		t.Fatalf("parseExtractions() error = %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("len = %d, want 2", len(reqs))
	}
	got := reqs[0]
	if got.Column != "PEMOHON" || len(got.Options) != 3 ||
		got.Options[0] != extract.OptNIK || got.Options[1] != extract.OptNPWP || got.Options[2] != extract.OptName {
		t.Errorf("first request = %+v", got)
	}

	for _, bad := range []string{"=nik", "PEMOHON", "PEMOHON=passport"} {
		if _, err := parseExtractions([]string{bad}); err == nil {
			t.Errorf("parseExtractions(%q) expected error", bad)
		}
	}
}

func TestParseOverrides(t *testing.T) {
	got, err := parseOverrides([]string{"Keterangan=CATATAN", "email="})
	if err != nil {
		t.Fatalf("parseOverrides() error = %v", err)
	}
	if got["keterangan"] != "CATATAN" || got["email"] != "" || len(got) != 2 {
		t.Errorf("parseOverrides() = %v", got)
	}
	if _, err := parseOverrides([]string{"=X"}); err == nil {
		t.Error("expected error for empty field")
	}
	if m, _ := parseOverrides(nil); m != nil {
		t.Errorf("parseOverrides(nil) = %v, want nil", m)
	}
}
