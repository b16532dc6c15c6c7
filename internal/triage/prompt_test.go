package triage

import (
	"strings"
	"testing"
)

func TestShapeDeterministic(t *testing.T) {
	a := Shape("fever and cough for two days", 30, "female", false)
	b := Shape("fever and cough for two days", 30, "female", false)
	if a != b {
		t.Fatalf("expected identical prompts for identical inputs")
	}
}

func TestShapeCardiacRewrite(t *testing.T) {
	prompt := Shape("my heart is paining", 0, "", false)
	if strings.Contains(prompt, "Patient Report: my heart is paining") {
		t.Fatalf("raw cardiac phrasing should be rewritten, got: %s", prompt)
	}
	if !strings.Contains(prompt, "chest discomfort described colloquially") {
		t.Fatalf("expected clinical rewrite in prompt")
	}
	if !strings.Contains(prompt, "'my heart is paining'") {
		t.Fatalf("rewrite should preserve the original wording verbatim")
	}
}

func TestShapeShortInputExpansion(t *testing.T) {
	prompt := Shape("stomach ache", 0, "", false)
	if !strings.Contains(prompt, "Limited description") {
		t.Fatalf("expected short-input expansion request")
	}
}

func TestShapeLongerInputUnchanged(t *testing.T) {
	symptoms := "mild fever with runny nose since yesterday evening"
	prompt := Shape(symptoms, 0, "", false)
	if !strings.Contains(prompt, "Patient Report: "+symptoms) {
		t.Fatalf("non-trigger input should pass through unchanged")
	}
}

func TestShapePatientContext(t *testing.T) {
	prompt := Shape("persistent cough with mild fever today", 42, "male", false)
	if !strings.Contains(prompt, "Age: 42") || !strings.Contains(prompt, "Gender: male") {
		t.Fatalf("expected age and gender in patient context")
	}

	prompt = Shape("persistent cough with mild fever today", 0, "", false)
	if !strings.Contains(prompt, "No additional context") {
		t.Fatalf("expected placeholder when no context provided")
	}
}

func TestShapeSimpleVariant(t *testing.T) {
	prompt := Shape("fever and body ache since morning", 30, "female", true)
	if !strings.Contains(prompt, "Clinical summary request for:") {
		t.Fatalf("simple variant should use the simplified input")
	}
	if !strings.Contains(prompt, "concise JSON assessment") {
		t.Fatalf("simple variant should use the compact prompt")
	}
	if strings.Contains(prompt, "Recommendation 5") {
		t.Fatalf("simple variant should not carry the full schema")
	}
}
