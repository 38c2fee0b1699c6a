package extract

import "strings"

var (
	// phone keywords that veto a 13-digit run being read as NIB
	nibVetoKeywords = []string{"TELP", "PHONE", "HP"}
	// column keywords that mark a phone number
	phoneKeywords = []string{"TELP", "PHONE", "HP", "NOMOR"}
)

// Classify returns the kind an unlabeled digit run most likely holds,
// judged by its length, its leading digits and the column hint.
//
//	15 digits  -> tax ID (NPWP)
//	16 digits  -> national ID (NIK)
//	13 digits  -> NIB when the hint says NIB, or when the run does not
//	              start with 0/62 and the hint has no phone keyword;
//	              otherwise phone
//	10-13      -> phone when it starts with 0, 62 or 8, or the hint has
//	              a phone keyword
func Classify(run, hint string) (Kind, bool) {
	c := Candidates(run, hint)
	if len(c) == 0 {
		return "", false
	}
	return c[0], true
}

// Candidates returns every kind run may fill, most likely first. When the
// first kind is already taken the next one applies; a 13-digit NIB
// candidate falls back to phone this way.
func Candidates(run, hint string) []Kind {
	if !isDigits(run) {
		return nil
	}
	hint = strings.ToUpper(hint)

	switch n := len(run); {
	case n == 15:
		return []Kind{TaxID}
	case n == 16:
		return []Kind{NationalID}
	case n == 13:
		if strings.Contains(hint, "NIB") ||
			(!hasPrefixAny(run, "0", "62") && !containsAny(hint, nibVetoKeywords)) {
			if phoneRule(run, hint) {
				return []Kind{BusinessRegistrationID, Phone}
			}
			return []Kind{BusinessRegistrationID}
		}
		return []Kind{Phone}
	case n >= 10 && n <= 12:
		if phoneRule(run, hint) {
			return []Kind{Phone}
		}
	}
	return nil
}

func phoneRule(run, hint string) bool {
	return hasPrefixAny(run, "0", "62", "8") || containsAny(hint, phoneKeywords)
}

func hasPrefixAny(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
