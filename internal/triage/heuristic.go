package triage

import "strings"

var severeKeywords = []string{
	"chest pain",
	"heart pain",
	"heart is paining",
	"severe pain",
	"crushing pain",
	"difficulty breathing",
	"shortness of breath",
	"blood",
	"unconscious",
	"seizure",
}

var moderateKeywords = []string{
	"fever",
	"pain",
	"headache",
	"cough",
	"vomiting",
	"diarrhea",
	"nausea",
	"body ache",
}

// HeuristicAnalyze produces a deterministic assessment without any provider.
// It is the terminal rung of the fallback ladder and also serves empty input
// directly. Cardiac presentations get a dedicated emergency-oriented result.
func HeuristicAnalyze(symptoms string) Result {
	text := strings.TrimSpace(symptoms)
	if text == "" {
		return emptyInputResult()
	}
	lowered := strings.ToLower(text)

	if containsAny(lowered, cardiacKeywords) {
		return cardiacResult()
	}
	if containsAny(lowered, severeKeywords) {
		return severeResult()
	}
	if containsAny(lowered, moderateKeywords) {
		return moderateResult()
	}
	return mildResult()
}

func emptyInputResult() Result {
	return Result{
		Severity: SeverityMild,
		Summary:  "No symptoms provided for analysis.",
		Recommendations: []string{
			"Describe your symptoms in detail for an assessment",
			"Include duration, intensity, and any associated symptoms",
		},
		Warnings: []string{
			"Seek immediate care for chest pain, breathing difficulty, or loss of consciousness",
		},
		NextSteps: []string{
			"Submit a symptom description to begin analysis",
		},
	}
}

func cardiacResult() Result {
	return Result{
		Severity: SeveritySevere,
		Summary:  "Reported chest or heart pain requires urgent medical evaluation to rule out a cardiac event.",
		Recommendations: []string{
			"Stop all physical activity and sit or lie down immediately",
			"If not allergic and no contraindication, chew a 300 mg aspirin",
			"Do not eat or drink anything until evaluated",
			"Have someone stay with you at all times",
			"Keep a list of current medications ready for responders",
			"Call 108 ambulance in India for emergency transport",
		},
		Warnings: []string{
			"Chest pain spreading to arm, jaw, or back is an emergency",
			"Breathlessness, sweating, or nausea with chest pain needs immediate care",
			"Do not drive yourself to the hospital",
		},
		NextSteps: []string{
			"Call 108 for emergency ambulance transport",
			"Get an ECG and cardiac evaluation at the nearest hospital",
			"Inform family members of your condition and location",
		},
	}
}

func severeResult() Result {
	return Result{
		Severity: SeveritySevere,
		Summary:  "Symptoms suggest a potentially serious condition requiring prompt medical attention.",
		Recommendations: []string{
			"Seek medical evaluation at the nearest hospital without delay",
			"Avoid self-medication beyond basic first aid",
			"Arrange for someone to accompany you",
			"Carry any recent medical records or prescriptions",
			"Note when the symptoms started and how they have changed",
		},
		Warnings: []string{
			"Worsening pain, breathing difficulty, or confusion is an emergency",
			"Call 108 if symptoms escalate before you reach care",
			"Do not delay evaluation to see if symptoms pass",
		},
		NextSteps: []string{
			"Visit the nearest district hospital or emergency department",
			"Call 108 if unable to arrange transport",
			"Monitor symptoms continuously until seen by a clinician",
		},
	}
}

func moderateResult() Result {
	return Result{
		Severity: SeverityModerate,
		Summary:  "Symptoms are consistent with a common illness that usually improves with home care and monitoring.",
		Recommendations: []string{
			"Rest and maintain good hydration with water, ORS, or clear fluids",
			"Use Paracetamol (e.g., Dolo 650 mg) for fever or pain if not contraindicated",
			"Eat light, easily digestible food",
			"Monitor temperature twice daily in Celsius",
			"Visit your nearest PHC if symptoms persist beyond 48 hours",
		},
		Warnings: []string{
			"Fever above 39.5°C or lasting more than 3 days needs medical review",
			"Persistent vomiting or inability to keep fluids down needs care",
			"Worsening or new severe symptoms warrant immediate evaluation",
		},
		NextSteps: []string{
			"Continue home care and monitor for 24-48 hours",
			"Consult a doctor if there is no improvement",
			"Keep a simple log of symptoms and temperature",
		},
	}
}

func mildResult() Result {
	return Result{
		Severity: SeverityMild,
		Summary:  "Symptoms appear mild and are likely to resolve with basic self-care.",
		Recommendations: []string{
			"Rest adequately and stay hydrated",
			"Maintain a balanced diet with fresh food",
			"Practice good hygiene to avoid spreading any infection",
			"Use simple home remedies like warm water and steam as comfortable",
			"Observe for any change in symptoms over the next few days",
		},
		Warnings: []string{
			"Consult a doctor if symptoms persist beyond a week",
			"Seek care if new symptoms such as fever or pain develop",
			"Do not ignore gradual worsening",
		},
		NextSteps: []string{
			"Continue normal activities as tolerated",
			"Re-assess symptoms after 2-3 days",
			"Visit a PHC or teleconsultation if concerned",
		},
	}
}
