// Package extract pulls typed fields out of loosely structured spreadsheet
// cells: names, vessel names, KBLI classification codes, emails, phone
// numbers and the three Indonesian registry numbers (NIK, NPWP, NIB).
//
// Extraction is a fold over an ordered list of detectors. Each detector
// proposes (kind, value) matches; the first value proposed for a kind wins
// and is never overwritten by a later detector. Nothing in this package
// returns an error: a detector that finds nothing simply proposes nothing.
package extract

import (
	"fmt"
	"strings"
)

// Kind names a field that can be extracted from a cell.
type Kind string

const (
	PersonName             Kind = "person_name"
	CompanyName            Kind = "company_name"
	VesselName             Kind = "vessel_name"
	ClassificationCode     Kind = "classification_code"
	Email                  Kind = "email"
	Phone                  Kind = "phone"
	NationalID             Kind = "national_id"              // NIK, 16 digits
	TaxID                  Kind = "tax_id"                   // NPWP, 15 digits
	BusinessRegistrationID Kind = "business_registration_id" // NIB, 13 digits
)

// Kinds lists every kind in display order.
var Kinds = []Kind{
	PersonName, CompanyName, VesselName, ClassificationCode,
	Email, Phone, NationalID, TaxID, BusinessRegistrationID,
}

// numberKinds are the kinds filled by the split and numeric stages.
var numberKinds = []Kind{TaxID, NationalID, BusinessRegistrationID, Phone}

// Result maps each recognized kind to its value. Absent kinds are omitted.
type Result map[Kind]string

// Get returns the value for k and whether it was found.
func (r Result) Get(k Kind) (string, bool) {
	v, ok := r[k]
	return v, ok
}

// Name returns the person name, falling back to the company name.
func (r Result) Name() (string, bool) {
	if v, ok := r[PersonName]; ok {
		return v, true
	}
	v, ok := r[CompanyName]
	return v, ok
}

func (r Result) has(k Kind) bool {
	_, ok := r[k]
	return ok
}

func (r Result) hasAll(kinds []Kind) bool {
	for _, k := range kinds {
		if !r.has(k) {
			return false
		}
	}
	return true
}

// Option is a user-facing extraction choice. Each option produces one
// derived column named "<column>_<option>".
type Option string

const (
	OptName       Option = "name"
	OptVesselName Option = "vessel_name"
	OptKBLI       Option = "kbli"
	OptEmail      Option = "email"
	OptPhone      Option = "phone"
	OptNIK        Option = "nik"
	OptNPWP       Option = "npwp"
	OptNIB        Option = "nib"
)

// Options lists every option in the order they are offered.
var Options = []Option{OptName, OptVesselName, OptKBLI, OptEmail, OptPhone, OptNIK, OptNPWP, OptNIB}

var optionKinds = map[Option]Kind{
	OptVesselName: VesselName,
	OptKBLI:       ClassificationCode,
	OptEmail:      Email,
	OptPhone:      Phone,
	OptNIK:        NationalID,
	OptNPWP:       TaxID,
	OptNIB:        BusinessRegistrationID,
}

// ParseOption converts a string such as "nik" or "NPWP" to an Option.
func ParseOption(s string) (Option, error) {
	o := Option(strings.ToLower(strings.TrimSpace(s)))
	if o == OptName {
		return o, nil
	}
	if _, ok := optionKinds[o]; ok {
		return o, nil
	}
	return "", fmt.Errorf("unknown extraction option %q", s)
}

// Value returns the value the option selects from r.
func (r Result) Value(o Option) (string, bool) {
	if o == OptName {
		return r.Name()
	}
	k, ok := optionKinds[o]
	if !ok {
		return "", false
	}
	return r.Get(k)
}
