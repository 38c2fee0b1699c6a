package mapping

import (
	"fmt"
	"strings"
)

// Placeholder marks a canonical value that is unmapped or empty.
const Placeholder = "-"

// Field is a canonical output column.
type Field string

const (
	FieldNIB    Field = "NIB"
	FieldNama   Field = "Nama"
	FieldKBLI   Field = "KBLI"
	FieldAlamat Field = "Alamat"
	FieldNPWP   Field = "NPWP"
	FieldNomor  Field = "Nomor"
	FieldEmail  Field = "Email"
)

// CanonicalFields is the fixed output column order.
var CanonicalFields = []Field{FieldNIB, FieldNama, FieldKBLI, FieldAlamat, FieldNPWP, FieldNomor, FieldEmail}

// MonthColumn heads the month label column of stacked exports.
const MonthColumn = "BULAN"

// ParseField matches s against the canonical field names, ignoring case.
func ParseField(s string) (Field, error) {
	for _, f := range CanonicalFields {
		if strings.EqualFold(string(f), strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown canonical field %q", s)
}

// Record is one standardized row.
type Record struct {
	NIB    string `json:"NIB"`
	Nama   string `json:"Nama"`
	KBLI   string `json:"KBLI"`
	Alamat string `json:"Alamat"`
	NPWP   string `json:"NPWP"`
	Nomor  string `json:"Nomor"`
	Email  string `json:"Email"`
}

// Get returns the value of f.
func (r Record) Get(f Field) string {
	switch f {
	case FieldNIB:
		return r.NIB
	case FieldNama:
		return r.Nama
	case FieldKBLI:
		return r.KBLI
	case FieldAlamat:
		return r.Alamat
	case FieldNPWP:
		return r.NPWP
	case FieldNomor:
		return r.Nomor
	case FieldEmail:
		return r.Email
	}
	return ""
}

// Set assigns v to f.
func (r *Record) Set(f Field, v string) {
	switch f {
	case FieldNIB:
		r.NIB = v
	case FieldNama:
		r.Nama = v
	case FieldKBLI:
		r.KBLI = v
	case FieldAlamat:
		r.Alamat = v
	case FieldNPWP:
		r.NPWP = v
	case FieldNomor:
		r.Nomor = v
	case FieldEmail:
		r.Email = v
	}
}

// Values returns the record in canonical column order.
func (r Record) Values() []string {
	out := make([]string, len(CanonicalFields))
	for i, f := range CanonicalFields {
		out[i] = r.Get(f)
	}
	return out
}

// Headers returns the canonical column names.
func Headers() []string {
	out := make([]string, len(CanonicalFields))
	for i, f := range CanonicalFields {
		out[i] = string(f)
	}
	return out
}

// RecordsTable lays records out under the canonical headers.
func RecordsTable(records []Record) Table {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = r.Values()
	}
	return Table{Columns: Headers(), Rows: rows}
}
