package triage

import (
	"strings"
	"testing"
)

func baseResult() Result {
	return Result{
		Severity:        SeverityModerate,
		Summary:         "Likely viral illness.",
		Recommendations: []string{"Rest well", "Stay hydrated"},
		Warnings:        []string{"Seek care if worsening"},
		NextSteps:       []string{"Monitor for 48 hours"},
	}
}

func TestEnrichAddsFeverAdvice(t *testing.T) {
	result := Enrich(baseResult(), "high fever since last night")
	found := false
	for _, rec := range result.Recommendations {
		if strings.Contains(rec, "Paracetamol") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected paracetamol advice, got %v", result.Recommendations)
	}
}

func TestEnrichSkipsWhenAdvicePresent(t *testing.T) {
	base := baseResult()
	base.Recommendations = append(base.Recommendations, "Take Dolo 650 for fever as directed")
	result := Enrich(base, "high fever since last night")
	count := 0
	for _, rec := range result.Recommendations {
		if strings.Contains(strings.ToLower(rec), "dolo") || strings.Contains(strings.ToLower(rec), "paracetamol") {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected existing fever advice to suppress the rule, got %v", result.Recommendations)
	}
}

func TestEnrichMultipleRules(t *testing.T) {
	// The headache rule is suppressed because "Rest well" already covers it.
	result := Enrich(baseResult(), "fever with cough and headache and diarrhea")
	if len(result.Recommendations) != 5 {
		t.Fatalf("expected 3 enrichments on top of 2 base recs, got %v", result.Recommendations)
	}
}

func TestEnrichCapsRecommendations(t *testing.T) {
	base := baseResult()
	base.Recommendations = []string{"r1", "r2", "r3", "r4", "r5", "r6", "r7"}
	result := Enrich(base, "fever with cough and headache and diarrhea")
	if len(result.Recommendations) != maxRecommendations {
		t.Fatalf("len = %d, want %d", len(result.Recommendations), maxRecommendations)
	}
}

func TestEnrichLeavesOtherFieldsAlone(t *testing.T) {
	base := baseResult()
	result := Enrich(base, "fever")
	if result.Severity != base.Severity {
		t.Fatalf("severity changed")
	}
	if len(result.Warnings) != len(base.Warnings) || len(result.NextSteps) != len(base.NextSteps) {
		t.Fatalf("warnings or next steps changed")
	}
}

func TestEnrichNoMatchNoChange(t *testing.T) {
	base := baseResult()
	result := Enrich(base, "sprained ankle while playing")
	if len(result.Recommendations) != len(base.Recommendations) {
		t.Fatalf("expected no enrichment, got %v", result.Recommendations)
	}
}
