package extract

import "strings"

// Input is the prepared form of a cell handed to every detector.
type Input struct {
	// Raw is the cell text exactly as read.
	Raw string
	// Text is Raw trimmed and NFKC-normalized.
	Text string
	// Hint is the uppercased source column name.
	Hint string
}

// Match is a single proposal from a detector.
type Match struct {
	Kind  Kind
	Value string
}

// Detector inspects a cell and proposes matches. found holds the kinds
// already settled by earlier detectors; detectors must not modify it.
type Detector func(in Input, found Result) []Match

// Detectors is the fixed evaluation order used by Extract.
var Detectors = []Detector{
	DetectName,
	DetectVessel,
	DetectSlashVessel,
	DetectClassification,
	DetectEmail,
	DetectLabeledNumbers,
	DetectDelimited,
	DetectUnlabeled,
}

// DetectName proposes a person or company name from the start of the cell.
func DetectName(in Input, _ Result) []Match {
	name, _ := leadingName(in.Text)
	if name == "" {
		return nil
	}
	if entityPrefix.MatchString(name) {
		return []Match{{CompanyName, name}}
	}
	return []Match{{PersonName, name}}
}

// DetectSlashVessel proposes the segment after "NAME/" as the vessel when
// the name was found by the slash pattern. It runs after DetectVessel so a
// labeled "KM" vessel takes precedence.
func DetectSlashVessel(in Input, _ Result) []Match {
	_, vessel := leadingName(in.Text)
	if vessel == "" {
		return nil
	}
	return []Match{{VesselName, vessel}}
}

// leadingName runs the four name patterns in priority order. The second
// return is only set by the "NAME/OTHER" pattern.
func leadingName(text string) (name, slashSegment string) {
	if m := nameSlashVessel.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), ""
	}
	if m := nameSpaceVessel.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), ""
	}
	if m := nameSlashOther.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	if m := nameLeading.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), ""
	}
	return "", ""
}

// DetectVessel proposes "KM <name>" from a KM: / KM. / KM label.
func DetectVessel(in Input, _ Result) []Match {
	m := vesselLabeled.FindStringSubmatch(in.Text)
	if m == nil {
		return nil
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return nil
	}
	return []Match{{VesselName, "KM " + name}}
}

// DetectClassification proposes a KBLI code with its description.
func DetectClassification(in Input, _ Result) []Match {
	m := classificationPattern.FindStringSubmatch(in.Text)
	if m == nil {
		return nil
	}
	desc := strings.TrimSpace(m[2])
	if desc == "" {
		return nil
	}
	return []Match{{ClassificationCode, m[1] + " - " + desc}}
}

// DetectEmail prefers an address right after an EMAIL label and otherwise
// takes the first address anywhere in the raw cell.
func DetectEmail(in Input, _ Result) []Match {
	if m := emailLabeled.FindStringSubmatch(in.Text); m != nil {
		return []Match{{Email, m[1]}}
	}
	if e := emailPlain.FindString(in.Raw); e != "" {
		return []Match{{Email, e}}
	}
	return nil
}

// DetectLabeledNumbers proposes NPWP, NIK, NIB and phone values that
// follow their label.
func DetectLabeledNumbers(in Input, _ Result) []Match {
	var out []Match
	if m := taxIDLabeled.FindStringSubmatch(in.Text); m != nil {
		out = append(out, Match{TaxID, m[1]})
	}
	if m := nationalLabeled.FindStringSubmatch(in.Text); m != nil {
		out = append(out, Match{NationalID, m[1]})
	}
	if m := nibLabeled.FindStringSubmatch(in.Text); m != nil {
		out = append(out, Match{BusinessRegistrationID, m[1]})
	}
	if m := phoneLabeled.FindStringSubmatch(in.Text); m != nil {
		phone := strings.NewReplacer("'", "", `"`, "").Replace(m[1] + m[2])
		out = append(out, Match{Phone, phone})
	}
	return out
}

// DetectDelimited handles compound columns such as "NPWP/NIK": the cell
// and the hint are split by the same delimiter and each digit run is routed
// by the keyword of its aligned hint segment. Delimiters are tried in
// priority order until one of them fills a kind.
func DetectDelimited(in Input, found Result) []Match {
	if found.hasAll(numberKinds) {
		return nil
	}

	taken := make(map[Kind]bool, len(numberKinds))
	for _, k := range numberKinds {
		taken[k] = found.has(k)
	}

	var out []Match
	for _, d := range DefaultDelimiters {
		if !d.Applicable(in.Text, in.Hint) {
			continue
		}
		filled := false
		for _, seg := range d.Split(in.Text, in.Hint) {
			for _, run := range digitRun.FindAllString(seg.Value, -1) {
				k, ok := routeByHint(run, seg.Hint, taken)
				if !ok {
					continue
				}
				taken[k] = true
				filled = true
				out = append(out, Match{k, run})
			}
		}
		if filled {
			break
		}
	}
	return out
}

// routeByHint picks a kind from the first keyword in hint whose kind is
// still open. The length window only applies to that keyword.
func routeByHint(run, hint string, taken map[Kind]bool) (Kind, bool) {
	n := len(run)
	switch {
	case strings.Contains(hint, "NPWP") && !taken[TaxID]:
		return TaxID, n >= 14 && n <= 16
	case strings.Contains(hint, "NIK") && !taken[NationalID]:
		return NationalID, n >= 15 && n <= 17
	case strings.Contains(hint, "NIB") && !taken[BusinessRegistrationID]:
		return BusinessRegistrationID, n >= 12 && n <= 14
	case containsAny(hint, phoneKeywords) && !taken[Phone]:
		return Phone, n >= 10 && n <= 15
	}
	return "", false
}

// DetectUnlabeled classifies every standalone 10-16 digit run by length
// and assigns it to the first candidate kind that is still open.
func DetectUnlabeled(in Input, found Result) []Match {
	taken := make(map[Kind]bool)
	var out []Match
	for _, run := range standaloneDigit.FindAllString(in.Text, -1) {
		for _, k := range Candidates(run, in.Hint) {
			if found.has(k) || taken[k] {
				continue
			}
			taken[k] = true
			out = append(out, Match{k, run})
			break
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
