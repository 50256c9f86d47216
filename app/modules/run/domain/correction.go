package rundomain

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// DefaultCorrectionThreshold is the minimum similarity score for a fuzzy
// match to be applied automatically.
const DefaultCorrectionThreshold = 85

// swapConfirmThreshold is the similarity the transposed team value must reach
// against the vocabulary before a field swap is applied.
const swapConfirmThreshold = 80

// teamLabels is the fixed set of valid team badges. OCR frequently reads the
// circular team badge and the character name in the wrong visual order, which
// is what swap detection repairs.
var teamLabels = map[string]struct{}{
	"Sprint": {},
	"Mile":   {},
	"Medium": {},
	"Long":   {},
	"Dirt":   {},
}

// IsTeamLabel reports whether s is one of the valid team badges.
func IsTeamLabel(s string) bool {
	_, ok := teamLabels[s]
	return ok
}

// Correct resolves a batch of raw OCR records against the vocabulary.
//
// Per record: whitespace is trimmed, transposed name/team fields are swapped
// back when the heuristic is confident, exact vocabulary matches pass
// through, near matches at or above threshold are auto-corrected with the
// original kept for review, and everything else is flagged low-confidence.
// No record is ever dropped; a batch of N raw records always yields N
// corrected records.
func Correct(records []RawRecord, vocab Vocabulary, threshold int) CorrectionReport {
	report := CorrectionReport{
		Records: make([]CorrectedRecord, 0, len(records)),
	}

	for _, raw := range records {
		name := strings.TrimSpace(raw.Name)
		team := strings.TrimSpace(raw.Team)
		if name == "" {
			name = UnknownPlaceholder
		}
		if team == "" {
			team = UnknownPlaceholder
		}

		originalName := name
		swapped := false

		// Swap detection: the name slot holds a team badge and the team slot
		// holds something that looks like a character name.
		if IsTeamLabel(name) && !IsTeamLabel(team) {
			if _, score := bestMatch(team, vocab); score > swapConfirmThreshold {
				name, team = team, name
				swapped = true
			}
		}

		rec := CorrectedRecord{
			Name:    name,
			Team:    team,
			Epithet: raw.Epithet,
			Score:   raw.Score,
		}

		switch {
		case vocab.Contains(name):
			if swapped {
				rec.Confidence = MatchAutoCorrected
				rec.OriginalName = &originalName
				report.AnyAutoCorrected = true
			} else {
				rec.Confidence = MatchExact
			}
		default:
			best, score := bestMatch(name, vocab)
			if score >= threshold {
				rec.Name = best
				rec.OriginalName = &originalName
				rec.Confidence = MatchAutoCorrected
				report.AnyAutoCorrected = true
			} else {
				rec.Confidence = MatchLowConfidence
				report.LowConfidenceCount++
				if swapped {
					// The swap itself already altered the record.
					rec.OriginalName = &originalName
					report.AnyAutoCorrected = true
				}
			}
		}

		report.Records = append(report.Records, rec)
	}

	return report
}

// bestMatch returns the vocabulary entry with the highest similarity to name
// and its score in [0,100]. An empty vocabulary scores zero.
func bestMatch(name string, vocab Vocabulary) (string, int) {
	best := ""
	bestScore := 0
	for _, candidate := range vocab.Names() {
		if score := fuzzy.WRatio(name, candidate); score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best, bestScore
}
