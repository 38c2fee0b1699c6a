package extract

import "regexp"

// Name patterns, tried in order. Each captures the leading name in group 1.
// Trailing context is consumed rather than asserted; only group 1 is used.
var (
	// "BUDI SANTOSO/KM: ..." or "BUDI SANTOSO KM: ..."
	nameSlashVessel = regexp.MustCompile(`(?i)^([A-Z][A-Z\s.,&'-]+?)\s*(?:/\s*KM[:\s.]|KM:)`)

	// "BUDI SANTOSO KM. ..."
	nameSpaceVessel = regexp.MustCompile(`(?i)^([A-Z][A-Z\s.,&'-]+?)\s+KM[:\s.]`)

	// "BUDI/SINAR LAUT ..." with the second segment in group 2.
	nameSlashOther = regexp.MustCompile(`(?i)^([A-Z][A-Z\s.]+?)/([A-Z\s\d]+?)(?:\s|NPWP|NIK|EMAIL|TELP|$)`)

	// Leading run ended by a wide gap, a label keyword or end of line.
	nameLeading = regexp.MustCompile(`(?im)^([A-Z][A-Z\s.,&'\d-]+?)(?:\s{2,}|NIK|NPWP|NIB|EMAIL|TELP|TLP|NOMOR|STATUS|$)`)

	entityPrefix = regexp.MustCompile(`(?i)^(?:PT|CV|UD|PD)\s*[.\s]`)
)

var vesselLabeled = regexp.MustCompile(`(?i)(?:/\s*)?KM[:\s.]([A-Z\s\d]+?)(?:\s{2,}|NIK|NPWP|NIB|EMAIL|TELP|TLP|STATUS|$)`)

// KBLI: "50133,  PENGANGKUTAN IKAN"
var classificationPattern = regexp.MustCompile(`(?i)(\d{5})\s*,\s*([A-Z\s]+)`)

var (
	emailLabeled = regexp.MustCompile(`(?i)EMAIL[;:\s]*([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`)
	emailPlain   = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

var (
	taxIDLabeled    = regexp.MustCompile(`(?i)NPWP[:.\s]+(\d{15})`)
	nationalLabeled = regexp.MustCompile(`(?i)NIK[:.\s]+(\d{16})`)
	nibLabeled      = regexp.MustCompile(`(?i)NIB[:.\s]+(\d{13})`)

	// Prefix in group 1 (optional), subscriber digits in group 2.
	phoneLabeled = regexp.MustCompile(`(?i)(?:TELPON|TELP|TLP|HP|PHONE|NOMOR)[:.'\s]*(\+?62|0)?[\s-]?(\d{8,13})`)
)

var (
	digitRun        = regexp.MustCompile(`\d+`)
	standaloneDigit = regexp.MustCompile(`\b\d{10,16}\b`)
)
