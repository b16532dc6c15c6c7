package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"telehealth-backend/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient("test-key", "test-model")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.SetBaseURL(server.URL)
	return client
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("", "test-model")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !llm.IsConfigError(err) {
		t.Fatalf("missing key should be a config error, got %v", err)
	}
	if _, err := NewClient("key", ""); err == nil {
		t.Fatalf("expected error for missing model")
	}
}

func TestGenerateSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query")
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.SafetySettings) != 4 {
			t.Errorf("standard preset should send 4 safety settings, got %d", len(req.SafetySettings))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content":      map[string]any{"parts": []map[string]any{{"text": `{"severity": "mild"}`}}},
				"finishReason": "STOP",
			}},
		})
	})

	outcome, err := client.Generate(context.Background(), "prompt", llm.Params{Temperature: 0.7, Safety: llm.SafetyStandard})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if outcome.Filtered {
		t.Fatalf("unexpected filtered outcome")
	}
	if outcome.Text != `{"severity": "mild"}` {
		t.Fatalf("text = %q", outcome.Text)
	}
	if outcome.FinishReason != "STOP" {
		t.Fatalf("finishReason = %q", outcome.FinishReason)
	}
}

func TestGenerateMinimalSafetyPreset(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.SafetySettings) != 1 || req.SafetySettings[0].Category != "HARM_CATEGORY_DANGEROUS_CONTENT" {
			t.Errorf("minimal preset settings = %+v", req.SafetySettings)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content":      map[string]any{"parts": []map[string]any{{"text": "ok"}}},
				"finishReason": "STOP",
			}},
		})
	})

	if _, err := client.Generate(context.Background(), "prompt", llm.Params{Safety: llm.SafetyMinimal}); err != nil {
		t.Fatalf("generate: %v", err)
	}
}

func TestGeneratePromptBlocked(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"promptFeedback": map[string]any{"blockReason": "SAFETY"},
		})
	})

	outcome, err := client.Generate(context.Background(), "prompt", llm.Params{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !outcome.Filtered {
		t.Fatalf("expected filtered outcome")
	}
	if outcome.FinishReason != "SAFETY" {
		t.Fatalf("finishReason = %q", outcome.FinishReason)
	}
}

func TestGenerateCandidateWithoutParts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content":      map[string]any{},
				"finishReason": "SAFETY",
				"safetyRatings": []map[string]any{
					{"category": "HARM_CATEGORY_DANGEROUS_CONTENT", "probability": "HIGH"},
				},
			}},
		})
	})

	outcome, err := client.Generate(context.Background(), "prompt", llm.Params{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !outcome.Filtered || outcome.Text != "" {
		t.Fatalf("outcome = %+v", outcome)
	}
	if len(outcome.SafetyRatings) != 1 || outcome.SafetyRatings[0].Probability != "HIGH" {
		t.Fatalf("safetyRatings = %+v", outcome.SafetyRatings)
	}
}

func TestGenerateUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.Generate(context.Background(), "prompt", llm.Params{})
	if !errors.Is(err, llm.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestGenerateAPIErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 401, "message": "invalid key", "status": "UNAUTHENTICATED"},
		})
	})

	_, err := client.Generate(context.Background(), "prompt", llm.Params{})
	if !errors.Is(err, llm.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestGenerateServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Generate(context.Background(), "prompt", llm.Params{})
	if err == nil || errors.Is(err, llm.ErrUnauthorized) {
		t.Fatalf("err = %v, want transport error", err)
	}
}
