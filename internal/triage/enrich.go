package triage

import "strings"

// enrichmentRule adds one locally sourced recommendation when the symptom
// text matches and no existing recommendation already covers the topic.
type enrichmentRule struct {
	keywords []string
	markers  []string // lowercase fragments that mean the advice is already present
	advice   string
}

var enrichmentRules = []enrichmentRule{
	{
		keywords: []string{"fever"},
		markers:  []string{"paracetamol", "dolo"},
		advice:   "Use Paracetamol (e.g., Dolo 650 mg) every 6-8h as needed (max 4 doses/day) if not contraindicated",
	},
	{
		keywords: []string{"cough"},
		markers:  []string{"steam"},
		advice:   "Inhale steam 2-3 times daily to ease throat and chest congestion",
	},
	{
		keywords: []string{"headache"},
		markers:  []string{"rest", "quiet"},
		advice:   "Rest in a quiet, dim room and stay hydrated",
	},
	{
		keywords: []string{"diarrhea", "loose motion"},
		markers:  []string{"ors"},
		advice:   "Take ORS solution after each loose stool to prevent dehydration",
	},
}

// Enrich appends deterministic local guidance to the recommendations based on
// keywords in the symptom text. Duplicate advice is skipped and the list is
// capped; severity, warnings, and next steps are never modified.
func Enrich(result Result, symptoms string) Result {
	lowered := strings.ToLower(symptoms)
	existing := strings.ToLower(strings.Join(result.Recommendations, " | "))

	for _, rule := range enrichmentRules {
		if len(result.Recommendations) >= maxRecommendations {
			break
		}
		if !containsAny(lowered, rule.keywords) {
			continue
		}
		if containsAny(existing, rule.markers) {
			continue
		}
		result.Recommendations = append(result.Recommendations, rule.advice)
		existing += " | " + strings.ToLower(rule.advice)
	}

	if len(result.Recommendations) > maxRecommendations {
		result.Recommendations = result.Recommendations[:maxRecommendations]
	}
	return result
}
