// Package rundomain holds the pure core of the run engine: the record types,
// the OCR correction algorithm, period-key derivation, and the per-run
// lifecycle state machine. Nothing in this package touches storage or the
// event bus directly.
package rundomain

import "sort"

// Status is the persisted lifecycle status of a run.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// MatchConfidence classifies how a record's name was resolved against the
// vocabulary.
type MatchConfidence string

const (
	MatchExact         MatchConfidence = "exact"
	MatchAutoCorrected MatchConfidence = "auto_corrected"
	MatchLowConfidence MatchConfidence = "low_confidence"
)

// UnknownPlaceholder substitutes a missing name or team so malformed OCR
// output flows through correction instead of failing it.
const UnknownPlaceholder = "UNKNOWN"

// RawRecord is one OCR-extracted score row. Untrusted: name and team may be
// noisy, transposed, or absent.
type RawRecord struct {
	Name    string  `json:"name"`
	Team    string  `json:"team"`
	Epithet *string `json:"epithet"`
	Score   int64   `json:"score"`
}

// CorrectedRecord is a RawRecord after vocabulary resolution. OriginalName is
// set only when the name was auto-corrected.
type CorrectedRecord struct {
	Name         string          `json:"name"`
	Team         string          `json:"team"`
	Epithet      *string         `json:"epithet"`
	Score        int64           `json:"score"`
	OriginalName *string         `json:"original_name,omitempty"`
	Confidence   MatchConfidence `json:"confidence"`
}

// CorrectionReport is what the correction engine hands back for one batch.
// Records always has the same length as the input batch.
type CorrectionReport struct {
	Records            []CorrectedRecord `json:"records"`
	LowConfidenceCount int               `json:"low_confidence_count"`
	AnyAutoCorrected   bool              `json:"any_auto_corrected"`
}

// Vocabulary is the canonical set of valid character names. Iteration order
// is fixed so best-match selection is deterministic.
type Vocabulary struct {
	names []string
	set   map[string]struct{}
}

// NewVocabulary builds a Vocabulary from the active name list.
func NewVocabulary(names []string) Vocabulary {
	set := make(map[string]struct{}, len(names))
	uniq := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := set[n]; ok {
			continue
		}
		set[n] = struct{}{}
		uniq = append(uniq, n)
	}
	sort.Strings(uniq)
	return Vocabulary{names: uniq, set: set}
}

// Contains reports whether name is a canonical entry.
func (v Vocabulary) Contains(name string) bool {
	_, ok := v.set[name]
	return ok
}

// Names returns the canonical names in sorted order.
func (v Vocabulary) Names() []string {
	return v.names
}

// Len returns the number of canonical entries.
func (v Vocabulary) Len() int {
	return len(v.names)
}
