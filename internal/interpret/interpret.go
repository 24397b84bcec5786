// Package interpret parses raw model output into spoken text plus an
// optional journal clue. Parsing never fails: every strategy degrades to the
// next, ending with the raw text taken verbatim.
package interpret

import "strings"

const (
	strictMarker = "|||JOURNAL:"
	looseMarker  = "|||"
)

// Result is the outcome of parsing one model reply.
type Result struct {
	Speech string
	Clue   string // empty when no clue was extracted
}

// HasClue reports whether a clue was extracted.
func (r Result) HasClue() bool { return r.Clue != "" }

// Parse splits raw model output into speech and an optional clue.
// Strategies are tried in order:
//
//  1. Strict: split on the first "|||JOURNAL:"; everything after is the clue.
//  2. Loose: split on the first "|||"; the suffix counts as a clue only if it
//     mentions JOURNAL (any case), with any leading "journal:" label stripped.
//  3. Verbatim: the whole text is speech, no clue.
func Parse(raw string) Result {
	if idx := strings.Index(raw, strictMarker); idx >= 0 {
		return Result{
			Speech: strings.TrimSpace(raw[:idx]),
			Clue:   strings.TrimSpace(raw[idx+len(strictMarker):]),
		}
	}

	if idx := strings.Index(raw, looseMarker); idx >= 0 {
		speech := strings.TrimSpace(raw[:idx])
		suffix := strings.TrimSpace(raw[idx+len(looseMarker):])
		if strings.Contains(strings.ToUpper(suffix), "JOURNAL") {
			return Result{Speech: speech, Clue: stripJournalLabel(suffix)}
		}
		return Result{Speech: speech}
	}

	return Result{Speech: raw}
}

// stripJournalLabel removes a leading "journal:" label, case-insensitive,
// and trims the remainder.
func stripJournalLabel(s string) string {
	if idx := strings.Index(strings.ToLower(s), "journal:"); idx >= 0 {
		s = s[idx+len("journal:"):]
	}
	return strings.TrimSpace(s)
}
