package extract

import (
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		text string
		hint string
		want []Segment
	}{
		{
			name: "aligned slash",
			text: "123/456",
			hint: "NPWP/NIK",
			want: []Segment{{"123", "NPWP"}, {"456", "NIK"}},
		},
		{
			name: "extra value segment keeps empty hint",
			text: "1/2/3",
			hint: "A/B",
			want: []Segment{{"1", "A"}, {"2", "B"}, {"3", ""}},
		},
		{
			name: "missing value segments are dropped",
			text: "1/ /3",
			hint: "a/b/c/d",
			want: []Segment{{"1", "A"}, {"3", "C"}},
		},
		{
			name: "comma with padding",
			text: " 1 , 2 ",
			hint: "NPWP, NIK",
			want: []Segment{{"1", "NPWP"}, {"2", "NIK"}},
		},
		{
			name: "slash outranks comma",
			text: "1,2/3",
			hint: "A,B/C",
			want: []Segment{{"1,2", "A,B"}, {"3", "C"}},
		},
		{
			name: "wide space",
			text: "1   2",
			hint: "NIK  NPWP",
			want: []Segment{{"1", "NIK"}, {"2", "NPWP"}},
		},
		{
			name: "delimiter missing from hint",
			text: "1/2",
			hint: "NPWP NIK",
			want: nil,
		},
		{
			name: "delimiter missing from text",
			text: "12",
			hint: "NPWP/NIK",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.text, tt.hint, DefaultDelimiters)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q, %q) = %v, want %v", tt.text, tt.hint, got, tt.want)
			}
		})
	}
}

func TestDelimiterApplicable(t *testing.T) {
	tests := []struct {
		d    Delimiter
		text string
		hint string
		want bool
	}{
		{Pipe, "1|2", "NIK|NPWP", true},
		{Pipe, "1|2", "NIK NPWP", false},
		{Newline, "1\n2", "NIK\nNPWP", true},
		{Semicolon, "1;2", "nik;npwp", true},
		{WideSpace, "1  2", "NIK NPWP", false},
	}
	for _, tt := range tests {
		if got := tt.d.Applicable(tt.text, tt.hint); got != tt.want {
			t.Errorf("%s.Applicable(%q, %q) = %v, want %v", tt.d.Name, tt.text, tt.hint, got, tt.want)
		}
	}
}
