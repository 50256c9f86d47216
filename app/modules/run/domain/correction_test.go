package rundomain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var testVocabulary = NewVocabulary([]string{
	"Special Week",
	"Silence Suzuka",
	"Maruzensky",
	"Oguri Cap",
	"Gold Ship",
	"Tokai Teio",
	"Rice Shower",
})

func strPtr(s string) *string { return &s }

func TestCorrectPreservesBatchLength(t *testing.T) {
	records := []RawRecord{
		{Name: "Special Week", Team: "Mile", Score: 46730},
		{Name: "Maruzcnsky", Team: "Sprint", Score: 41200},
		{Name: "XyzAbc123", Team: "Dirt", Score: 100},
		{Name: "", Team: "", Score: 0},
		{Name: "Gold Ship", Team: "Long", Score: 39990},
	}

	report := Correct(records, testVocabulary, DefaultCorrectionThreshold)

	if got, want := len(report.Records), len(records); got != want {
		t.Fatalf("expected %d corrected records, got %d", want, got)
	}
}

func TestCorrectExactMatch(t *testing.T) {
	report := Correct([]RawRecord{{Name: "Special Week", Team: "Mile", Score: 46730}}, testVocabulary, DefaultCorrectionThreshold)

	rec := report.Records[0]
	if rec.Confidence != MatchExact {
		t.Errorf("expected exact confidence, got %s", rec.Confidence)
	}
	if rec.OriginalName != nil {
		t.Errorf("exact match must not set original name, got %q", *rec.OriginalName)
	}
	if report.AnyAutoCorrected {
		t.Error("exact match must not flag the batch as auto-corrected")
	}
	if report.LowConfidenceCount != 0 {
		t.Errorf("expected zero low-confidence records, got %d", report.LowConfidenceCount)
	}
}

func TestCorrectSwapsTransposedFields(t *testing.T) {
	report := Correct([]RawRecord{{Name: "Sprint", Team: "Special Week", Score: 44000}}, testVocabulary, DefaultCorrectionThreshold)

	want := CorrectedRecord{
		Name:         "Special Week",
		Team:         "Sprint",
		Score:        44000,
		OriginalName: strPtr("Sprint"),
		Confidence:   MatchAutoCorrected,
	}
	if diff := cmp.Diff(want, report.Records[0]); diff != "" {
		t.Errorf("swapped record mismatch (-want +got):\n%s", diff)
	}
	if !report.AnyAutoCorrected {
		t.Error("swap must flag the batch as auto-corrected")
	}
}

func TestCorrectDoesNotSwapWhenBothLookLikeTeams(t *testing.T) {
	// "Mile" in both slots: team is a valid label, so the heuristic must not
	// fire even though the name is one too.
	report := Correct([]RawRecord{{Name: "Mile", Team: "Long", Score: 100}}, testVocabulary, DefaultCorrectionThreshold)

	rec := report.Records[0]
	if rec.Name != "Mile" || rec.Team != "Long" {
		t.Errorf("fields must stay put, got name=%q team=%q", rec.Name, rec.Team)
	}
	if rec.Confidence != MatchLowConfidence {
		t.Errorf("expected low confidence, got %s", rec.Confidence)
	}
}

func TestCorrectFuzzyAutoCorrection(t *testing.T) {
	report := Correct([]RawRecord{{Name: "Maruzcnsky", Team: "Mile", Score: 46730}}, testVocabulary, 85)

	rec := report.Records[0]
	if rec.Name != "Maruzensky" {
		t.Errorf("expected auto-corrected name Maruzensky, got %q", rec.Name)
	}
	if rec.OriginalName == nil || *rec.OriginalName != "Maruzcnsky" {
		t.Errorf("expected original name Maruzcnsky, got %v", rec.OriginalName)
	}
	if rec.Confidence != MatchAutoCorrected {
		t.Errorf("expected auto-corrected confidence, got %s", rec.Confidence)
	}
	if !report.AnyAutoCorrected {
		t.Error("expected batch auto-corrected flag")
	}
}

func TestCorrectLowConfidenceKeepsName(t *testing.T) {
	report := Correct([]RawRecord{{Name: "XyzAbc123", Team: "Dirt", Score: 100}}, testVocabulary, 85)

	rec := report.Records[0]
	if rec.Name != "XyzAbc123" {
		t.Errorf("unresolved name must be kept, got %q", rec.Name)
	}
	if rec.Confidence != MatchLowConfidence {
		t.Errorf("expected low confidence, got %s", rec.Confidence)
	}
	if report.LowConfidenceCount != 1 {
		t.Errorf("expected low_confidence_count 1, got %d", report.LowConfidenceCount)
	}
}

func TestCorrectEmptyVocabulary(t *testing.T) {
	records := []RawRecord{
		{Name: "Special Week", Team: "Mile", Score: 1},
		{Name: "Gold Ship", Team: "Long", Score: 2},
	}

	report := Correct(records, NewVocabulary(nil), DefaultCorrectionThreshold)

	if report.LowConfidenceCount != len(records) {
		t.Errorf("every record should be low confidence, got %d of %d", report.LowConfidenceCount, len(records))
	}
	for i, rec := range report.Records {
		if rec.Name != records[i].Name {
			t.Errorf("record %d: name must be preserved, got %q", i, rec.Name)
		}
	}
}

func TestCorrectMissingFieldsUsePlaceholder(t *testing.T) {
	report := Correct([]RawRecord{{Name: "  ", Team: "", Score: 0}}, testVocabulary, DefaultCorrectionThreshold)

	rec := report.Records[0]
	if rec.Name != UnknownPlaceholder || rec.Team != UnknownPlaceholder {
		t.Errorf("missing fields must become %q, got name=%q team=%q", UnknownPlaceholder, rec.Name, rec.Team)
	}
	if rec.Confidence != MatchLowConfidence {
		t.Errorf("placeholder name should be low confidence, got %s", rec.Confidence)
	}
}

func TestCorrectTrimsWhitespace(t *testing.T) {
	report := Correct([]RawRecord{{Name: "  Special Week ", Team: " Mile ", Score: 10}}, testVocabulary, DefaultCorrectionThreshold)

	rec := report.Records[0]
	if rec.Name != "Special Week" || rec.Team != "Mile" {
		t.Errorf("whitespace must be trimmed, got name=%q team=%q", rec.Name, rec.Team)
	}
	if rec.Confidence != MatchExact {
		t.Errorf("trimmed exact match expected, got %s", rec.Confidence)
	}
}
