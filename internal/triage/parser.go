package triage

import (
	"encoding/json"
	"fmt"
	"strings"
)

// rawResult mirrors the provider's JSON schema with loosely typed list fields
// so a scalar where a list belongs can still be coerced.
type rawResult struct {
	Severity        string `json:"severity"`
	Summary         string `json:"summary"`
	Recommendations any    `json:"recommendations"`
	Warnings        any    `json:"warnings"`
	NextSteps       any    `json:"next_steps"`
}

// Parse turns raw provider text into a Result. Repair transformations are
// applied in a fixed order before decoding; already-valid JSON passes through
// unchanged. Returns ErrParse when no amount of repair yields JSON, and
// ErrIncomplete when the JSON decodes but omits a required field.
func Parse(raw string) (Result, error) {
	cleaned := repair(raw)
	if cleaned == "" {
		return Result{}, fmt.Errorf("%w: empty text", ErrParse)
	}

	var parsed rawResult
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return validate(parsed)
}

func validate(parsed rawResult) (Result, error) {
	if strings.TrimSpace(parsed.Severity) == "" {
		return Result{}, fmt.Errorf("%w: missing severity", ErrIncomplete)
	}
	if strings.TrimSpace(parsed.Summary) == "" {
		return Result{}, fmt.Errorf("%w: missing summary", ErrIncomplete)
	}
	if parsed.Recommendations == nil {
		return Result{}, fmt.Errorf("%w: missing recommendations", ErrIncomplete)
	}
	if parsed.Warnings == nil {
		return Result{}, fmt.Errorf("%w: missing warnings", ErrIncomplete)
	}
	if parsed.NextSteps == nil {
		return Result{}, fmt.Errorf("%w: missing next_steps", ErrIncomplete)
	}

	return Result{
		Severity:        normalizeSeverity(strings.ToLower(strings.TrimSpace(parsed.Severity))),
		Summary:         strings.TrimSpace(parsed.Summary),
		Recommendations: coerceList(parsed.Recommendations),
		Warnings:        coerceList(parsed.Warnings),
		NextSteps:       coerceList(parsed.NextSteps),
	}, nil
}

// coerceList accepts a JSON array of strings, a bare string, or anything else
// representable, and always returns a string slice.
func coerceList(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					out = append(out, trimmed)
				}
				continue
			}
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	case string:
		if trimmed := strings.TrimSpace(val); trimmed != "" {
			return []string{trimmed}
		}
		return []string{}
	case nil:
		return []string{}
	default:
		return []string{fmt.Sprintf("%v", val)}
	}
}

// repair normalizes near-JSON provider text: code fences stripped, text
// outside the outermost object dropped, trailing commas removed, an odd
// number of quotes closed. Each step is idempotent on clean input.
func repair(raw string) string {
	text := strings.TrimSpace(raw)
	text = stripCodeFences(text)
	text = sliceToObject(text)
	text = stripTrailingCommas(text)
	text = closeUnterminatedString(text)
	return strings.TrimSpace(text)
}

func stripCodeFences(text string) string {
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	} else {
		return text
	}
	// Closing fence may be missing when the response was truncated.
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// sliceToObject keeps the substring from the first '{' to the matching
// last '}'. When braces are unbalanced the missing closers are appended so a
// truncated object still decodes once strings are terminated.
func sliceToObject(text string) string {
	start := strings.Index(text, "{")
	if start < 0 {
		return text
	}
	text = text[start:]
	if end := strings.LastIndex(text, "}"); end >= 0 {
		candidate := text[:end+1]
		if braceBalance(candidate) == 0 {
			return candidate
		}
	}
	// Truncated mid-object: balance by appending closers.
	if missing := braceBalance(text); missing > 0 {
		text = closeUnterminatedString(text)
		text = strings.TrimRight(strings.TrimSpace(text), ",")
		text += strings.Repeat("}", missing)
	}
	return text
}

// braceBalance counts unclosed braces outside of string literals.
func braceBalance(text string) int {
	depth := 0
	inString := false
	escaped := false
	for _, r := range text {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
			}
		}
	}
	return depth
}

// stripTrailingCommas removes commas that directly precede a closing brace or
// bracket, skipping string literals.
func stripTrailingCommas(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	inString := false
	escaped := false
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' && inString {
			b.WriteRune(r)
			escaped = true
			continue
		}
		if r == '"' {
			inString = !inString
			b.WriteRune(r)
			continue
		}
		if r == ',' && !inString {
			j := i + 1
			for j < len(runes) && (runes[j] == ' ' || runes[j] == '\n' || runes[j] == '\t' || runes[j] == '\r') {
				j++
			}
			if j < len(runes) && (runes[j] == '}' || runes[j] == ']') {
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// closeUnterminatedString appends a closing quote when the text ends inside a
// string literal, as happens when generation is cut off mid-value.
func closeUnterminatedString(text string) string {
	inString := false
	escaped := false
	for _, r := range text {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		}
	}
	if inString {
		return text + `"`
	}
	return text
}

// SalvageGuidance is one set of warnings and next steps injected when salvage
// must complete a truncated response that lost those fields.
type SalvageGuidance struct {
	Warnings  []string
	NextSteps []string
}

// SalvageDefaults holds the injectable salvage content. The cardiac set is
// used when the original symptom text matched chest-pain phrasing, the
// generic set otherwise.
type SalvageDefaults struct {
	Summary string
	Cardiac SalvageGuidance
	Generic SalvageGuidance
}

// DefaultSalvageDefaults returns the stock salvage content.
func DefaultSalvageDefaults() SalvageDefaults {
	return SalvageDefaults{
		Summary: "Automated salvage of truncated response. Clinical review advised.",
		Cardiac: SalvageGuidance{
			Warnings: []string{
				"Severe persistent chest pain needs immediate medical evaluation",
				"Chest pain with breathlessness or sweating is an emergency",
				"Call 108 for life-threatening symptoms",
			},
			NextSteps: []string{
				"Seek emergency medical assessment (ECG, vitals)",
				"Avoid exertion; remain calm",
				"Arrange transport to nearest hospital",
			},
		},
		Generic: SalvageGuidance{
			Warnings: []string{
				"Seek medical care if symptoms worsen or new symptoms appear",
				"Persistent symptoms beyond 48 hours need clinical review",
				"Call 108 for any emergency",
			},
			NextSteps: []string{
				"Consult a doctor for a complete assessment",
				"Monitor symptoms closely over the next 24 hours",
				"Keep a record of symptom changes",
			},
		},
	}
}

// Salvage attempts a last-resort reconstruction of a truncated response by
// closing open structures and injecting default blocks for the missing
// required fields. The original symptom text selects cardiac or generic
// guidance and decides whether a missing severity is forced to severe.
// Returns ErrParse when reconstruction still does not decode.
func Salvage(raw, symptoms string, defaults SalvageDefaults) (Result, error) {
	cardiac := containsAny(strings.ToLower(symptoms), cardiacKeywords)
	guidance := defaults.Generic
	if cardiac {
		guidance = defaults.Cardiac
	}

	text := strings.TrimSpace(raw)
	text = stripCodeFences(text)
	start := strings.Index(text, "{")
	if start < 0 {
		return Result{}, fmt.Errorf("%w: no object to salvage", ErrParse)
	}
	text = text[start:]
	text = closeUnterminatedString(text)
	text = closeRecommendationsList(text)

	text = strings.TrimRight(strings.TrimSpace(text), ",")
	text = strings.TrimSuffix(text, "}")
	text = strings.TrimRight(strings.TrimSpace(text), ",")

	if !strings.Contains(text, `"warnings"`) {
		text = appendField(text, `"warnings": `+mustMarshalList(guidance.Warnings))
	}
	if !strings.Contains(text, `"next_steps"`) {
		text = appendField(text, `"next_steps": `+mustMarshalList(guidance.NextSteps))
	}
	if !strings.Contains(text, `"summary"`) {
		text = appendField(text, `"summary": `+mustMarshalString(defaults.Summary))
	}
	if !strings.Contains(text, `"recommendations"`) {
		text = appendField(text, `"recommendations": []`)
	}
	if !strings.Contains(text, `"severity"`) {
		severity := SeverityModerate
		if cardiac {
			severity = SeveritySevere
		}
		text = appendField(text, `"severity": `+mustMarshalString(severity))
	}

	if missing := braceBalance(text); missing > 0 {
		text += strings.Repeat("}", missing)
	}
	text = stripTrailingCommas(text)

	var parsed rawResult
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return Result{}, fmt.Errorf("%w: salvage decode: %v", ErrParse, err)
	}
	if strings.TrimSpace(parsed.Summary) == "" {
		parsed.Summary = defaults.Summary
	}
	result, err := validate(parsed)
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// closeRecommendationsList closes a recommendations array that generation cut
// off mid-stream. The bracket goes before the object's closing brace when one
// survived the truncation, otherwise at the end of the text.
func closeRecommendationsList(text string) string {
	idx := strings.LastIndex(text, `"recommendations"`)
	if idx < 0 {
		return text
	}
	tail := text[idx:]
	if !strings.Contains(tail, "[") || strings.Contains(tail, "]") {
		return text
	}
	if end := strings.LastIndex(text, "}"); end > idx {
		head := strings.TrimRight(strings.TrimSpace(text[:end]), ",")
		return head + "]" + text[end:]
	}
	return strings.TrimRight(strings.TrimSpace(text), ",") + "]"
}

// appendField adds a key/value pair to a partially closed object, inserting
// the separating comma only when the object already has members.
func appendField(text, field string) string {
	trimmed := strings.TrimRight(text, " \n\t\r")
	if strings.HasSuffix(trimmed, "{") || strings.HasSuffix(trimmed, ",") {
		return trimmed + " " + field
	}
	return trimmed + ", " + field
}

func mustMarshalList(items []string) string {
	data, _ := json.Marshal(items)
	return string(data)
}

func mustMarshalString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}
