package triage

import (
	"fmt"
	"strings"
)

// Trigger phrases that commonly cause provider-side safety filtering of
// legitimate cardiac complaints. Matching input is rewritten into clinically
// neutral phrasing before it reaches the provider.
var cardiacTriggerPhrases = []string{
	"heart is paining",
	"heart pain",
	"chest pain",
	"chest discomfort",
	"crushing pain",
}

// cardiac phrase set used by salvage and the heuristic; slightly wider than
// the prompt triggers to also catch "heart paining".
var cardiacKeywords = append([]string{"heart paining"}, cardiacTriggerPhrases...)

func containsAny(lowered string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lowered, k) {
			return true
		}
	}
	return false
}

// Shape builds the provider prompt for a symptom description. It is a pure
// function of its inputs: identical inputs yield identical prompts. The
// simple variant produces the compact retry prompt.
func Shape(symptoms string, age int, gender string, simple bool) string {
	if simple {
		return buildSimplePrompt(simplifyForRetry(symptoms))
	}
	return buildFullPrompt(preprocessSymptoms(symptoms), age, gender)
}

// preprocessSymptoms rewrites raw user text into a more clinical form.
// Cardiac phrasing gets an educational-assessment framing; very short inputs
// get an explicit request for clinical interpretation.
func preprocessSymptoms(symptoms string) string {
	text := strings.TrimSpace(symptoms)
	if text == "" {
		return text
	}
	lowered := strings.ToLower(text)
	if containsAny(lowered, cardiacTriggerPhrases) {
		return fmt.Sprintf(
			"Patient reports chest discomfort described colloquially as '%s'. "+
				"Duration not specified. No additional associated symptoms provided in raw input. "+
				"Provide structured educational clinical assessment (not a diagnosis).", text)
	}
	if len(strings.Fields(text)) <= 3 {
		return fmt.Sprintf(
			"Patient reports: '%s'. Limited description; expand with likely clinical interpretation and monitoring guidance.", text)
	}
	return text
}

func simplifyForRetry(symptoms string) string {
	return fmt.Sprintf("Clinical summary request for: %s. Provide concise structured JSON only.", strings.TrimSpace(symptoms))
}

func buildSimplePrompt(input string) string {
	return "You are a medical education AI for an Indian telehealth platform. Provide a concise JSON assessment.\n\n" +
		"Input: " + input + "\n\n" +
		"Respond ONLY as JSON with this schema:\n" +
		"{\n" +
		"  \"severity\": \"mild|moderate|severe\",\n" +
		"  \"summary\": \"Under 25 words clinical info\",\n" +
		"  \"recommendations\": [\"Rec 1\",\"Rec 2\"],\n" +
		"  \"warnings\": [\"Warn 1\"],\n" +
		"  \"next_steps\": [\"Step 1\"]\n" +
		"}\n" +
		"Use Indian context, Celsius, no extra text."
}

func buildFullPrompt(symptoms string, age int, gender string) string {
	var contextParts []string
	if age > 0 {
		contextParts = append(contextParts, fmt.Sprintf("Age: %d", age))
	}
	if strings.TrimSpace(gender) != "" {
		contextParts = append(contextParts, "Gender: "+strings.TrimSpace(gender))
	}
	contextStr := "No additional context"
	if len(contextParts) > 0 {
		contextStr = strings.Join(contextParts, ", ")
	}

	return fmt.Sprintf(`You are a medical education AI providing health information for a telehealth platform in India.

A patient reports the following for educational consultation purposes:
Patient Context: %s
Patient Report: %s

As a healthcare information system, provide a clinical assessment in JSON format for the medical team to review.

Respond with ONLY valid JSON in this EXACT format:

{
  "severity": "mild",
  "summary": "Clinical assessment in 1-2 sentences",
  "recommendations": [
    "Recommendation 1 with specific details",
    "Recommendation 2 with specific details",
    "Recommendation 3 with specific details",
    "Recommendation 4 with specific details",
    "Recommendation 5 with specific details",
    "Recommendation 6 with specific details"
  ],
  "warnings": [
    "Warning sign 1",
    "Warning sign 2",
    "Warning sign 3"
  ],
  "next_steps": [
    "Next step 1",
    "Next step 2",
    "Next step 3"
  ]
}

Clinical Guidelines:
- severity: must be "mild", "moderate", or "severe"
- summary: brief medical assessment under 30 words
- recommendations: 5-6 specific healthcare recommendations for Indian context
  * Include common Indian medications when appropriate (Paracetamol/Dolo, antacids, etc.)
  * Mention home care methods suitable for India (steam, warm water, rest, etc.)
  * Consider Indian healthcare infrastructure (PHCs, district hospitals, emergency 108)
- warnings: 3 specific indicators requiring immediate medical attention
- next_steps: 3 specific actions for the patient to take
- Use Celsius for temperatures
- Frame as educational health information, not diagnosis
- Provide only the JSON, no other text`, contextStr, symptoms)
}
