package core

// convert.go normalizes raw spreadsheet cells into permit column values.
//
// Source workbooks are hand-maintained, so values arrive with labels
// ("NIB. 0220..."), combined cells ("Nomor Permohonan : X (5 Maret 2024)"),
// Indonesian month names and pandas-style "nan" placeholders.
//
// ToPg* functions return pgtype values with Valid=false for empty input,
// allowing the database to store NULL.

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	nibLabel      = regexp.MustCompile(`(?i)^NIB\.?\s*`)
	nomorPattern  = regexp.MustCompile(`(?i)(?:Nomor\s*Permohonan\s*:\s*)?([A-Z0-9\-]+)`)
	parenDate     = regexp.MustCompile(`\((\d{1,2}\s+\w+\s+\d{4})\)`)
	indonesianDMY = regexp.MustCompile(`(?i)(\d{1,2})\s+(\w+)\s+(\d{4})`)
)

// indonesianMonths maps lowercase month names to their number.
var indonesianMonths = map[string]int{
	"januari": 1, "februari": 2, "maret": 3, "april": 4,
	"mei": 5, "juni": 6, "juli": 7, "agustus": 8,
	"september": 9, "oktober": 10, "november": 11, "desember": 12,
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	// Remove leading '='
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// CleanValue applies CleanCell and blanks the placeholders "nan", "NaN"
// and "-".
func CleanValue(s string) string {
	s = CleanCell(s)
	switch s {
	case "nan", "NaN", "-":
		return ""
	}
	return s
}

// CleanNIB strips a leading "NIB" or "NIB." label.
func CleanNIB(s string) string {
	return nibLabel.ReplaceAllString(strings.TrimSpace(s), "")
}

// ParseNomorTanggal splits a combined application cell such as
// "Nomor Permohonan : 12345-ABC (5 Maret 2024)" into the number and the
// parenthesized date text. Either part may be empty.
func ParseNomorTanggal(s string) (nomor, tanggal string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	if m := nomorPattern.FindStringSubmatch(s); m != nil {
		nomor = m[1]
	}
	if m := parenDate.FindStringSubmatch(s); m != nil {
		tanggal = m[1]
	}
	return nomor, tanggal
}

// ParseIndonesianDate converts "D MonthName YYYY" to "YYYY-MM-DD". An
// unknown month name maps to January. Text without a recognizable date is
// returned trimmed but otherwise unchanged.
func ParseIndonesianDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	m := indonesianDMY.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	month, ok := indonesianMonths[strings.ToLower(m[2])]
	if !ok {
		month = 1
	}
	return fmt.Sprintf("%s-%02d-%s", m[3], month, zeroPad(m[1]))
}

func zeroPad(day string) string {
	if len(day) == 1 {
		return "0" + day
	}
	return day
}

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgUUID converts a uuid.UUID to pgtype.UUID.
// Returns invalid for the nil UUID.
func ToPgUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

// PgUUIDToString converts a pgtype.UUID to its string representation.
// Returns empty string if the UUID is invalid.
func PgUUIDToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

// PgTextToString returns the string value, or "" for NULL.
func PgTextToString(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}
