package core

import (
	"fmt"
	"strings"
)

// UserMessage is what an operator sees for an error: a short message, a
// suggested fix and a support code.
//
// Code prefixes: DB (database), MAP (mapping and import options), FILE
// (uploaded workbook), UPL (import slots and stacking sessions), RATE
// (rate limiting) and ERR000 for anything unrecognised.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

// messageRule matches when the lower-cased error text contains any of
// patterns.
type messageRule struct {
	patterns []string
	msg      UserMessage
}

func rule(code, message, action string, patterns ...string) messageRule {
	return messageRule{patterns: patterns, msg: UserMessage{Message: message, Action: action, Code: code}}
}

// messageRules is scanned in order and the first hit wins, so narrower
// patterns sit above broader ones ("circuit breaker is open" above
// "timeout", "no such sheet" above "read error").
var messageRules = []messageRule{
	rule("DB001", "A permit with this key already exists",
		"Review the failed rows for duplicates", "duplicate key"),
	rule("DB002", "This value must be unique but already exists",
		"Check for duplicate entries in your sheet", "unique constraint", "violates unique"),
	rule("DB004", "Unable to connect to database",
		"Please try again in a few moments", "connection refused"),
	rule("DB005", "Database connection was interrupted",
		"Please try again", "connection reset"),
	rule("DB008", "Database calls are paused after repeated failures",
		"Wait half a minute and retry the import", "circuit breaker is open"),
	rule("DB009", "No database is configured",
		"Set DATABASE_URL and restart", "permit store not configured"),
	rule("DB006", "Operation timed out",
		"Try a smaller sheet or try again later", "timeout"),
	rule("DB007", "Database was busy with conflicting operations",
		"Please try again", "deadlock"),

	rule("MAP001", "A mapped source column does not exist in the sheet",
		"Pick column names from the sheet preview", "mapping: source column"),
	rule("MAP002", "Unknown target field",
		"Use one of NIB, Nama, KBLI, Alamat, NPWP, Nomor, Email", "unknown canonical field"),
	rule("MAP003", "Start row, start column or header rows are invalid",
		"Offsets must be zero or greater", "invalid header spec"),
	rule("MAP004", "Header row lies beyond the sheet data",
		"Check the start row and header row against the preview", "past the end of the data"),
	rule("MAP005", "Unsupported extraction option",
		"Use name, vessel_name, kbli, email, phone, nik, npwp or nib", "unknown extraction option"),
	rule("MAP006", "Sector is not in the catalog",
		"Choose a sector listed by /api/catalog", "unknown sector"),
	rule("MAP007", "Permit category is not in the catalog",
		"Choose Perizinan, Perizinan Berusaha or Non-Perizinan", "unknown permit category"),
	rule("MAP009", "Unknown permit field in the header overrides",
		"Use field names listed under import_aliases in /api/catalog", "unknown permit field"),
	rule("MAP010", "Document type is not filed under the selected category",
		"Choose a document type listed for the category", "unknown document type"),
	rule("MAP008", "Month is not recognized",
		"Use an Indonesian month name such as Januari", "unknown month"),

	rule("FILE001", "File exceeds maximum size limit",
		"Split the workbook into smaller files", "file too large"),
	rule("FILE002", "File format is not supported",
		"Upload an .xlsx, .xlsm or .csv file", "unsupported file format"),
	rule("FILE006", "The selected sheet is not in the workbook",
		"Pick a sheet from the sheet list", "no such sheet"),
	rule("FILE003", "The workbook could not be read",
		"Re-save the file in Excel and upload again", "read error"),
	rule("FILE004", "No file was selected",
		"Please select a workbook to upload", "no file provided"),
	rule("FILE005", "The uploaded file has no rows",
		"Please upload a sheet with data rows", "empty file"),

	rule("UPL002", "System is busy processing other imports",
		"Please wait a moment and try again", "too many imports"),
	rule("UPL003", "Stacking session not found",
		"The session may have expired. Please start a new one", "session not found"),
	rule("UPL006", "Too many stacking sessions are open",
		"Export and clear an old session, or wait for it to expire", "too many stacking sessions"),
	rule("UPL007", "Import batch not found",
		"Check the import ID; the batch may already be rolled back", "import not found"),
	rule("UPL004", "Request was cancelled",
		"Please try again", "context canceled"),
	rule("UPL005", "Request timed out",
		"Try a smaller file or check your connection", "context deadline exceeded"),

	rule("RATE001", "Too many requests",
		"Please wait a moment before trying again", "rate limit"),
}

var unknownMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError finds the UserMessage for err. A nil error gives the zero
// value and an unrecognised one gives ERR000.
//
//	MapError(errors.New(`mapping: source column "NAMA" does not exist`)).Code // "MAP001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	text := strings.ToLower(err.Error())
	for _, r := range messageRules {
		for _, p := range r.patterns {
			if strings.Contains(text, p) {
				return r.msg
			}
		}
	}
	return unknownMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather
// than the ERR000 fallback.
func IsUserFacing(err error) bool {
	return err != nil && MapError(err).Code != unknownMessage.Code
}

// UserError pairs a technical error with its UserMessage. Error returns
// the friendly text and Unwrap the original.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string { return e.User.Message }

func (e *UserError) Unwrap() error { return e.Technical }

// NewUserError wraps err, or returns nil for a nil err.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
