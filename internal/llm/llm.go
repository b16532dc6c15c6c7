package llm

import (
	"context"
	"errors"
)

// Provider abstracts a text-generation backend. Implementations are stateless
// per call and safe for concurrent use.
type Provider interface {
	// Generate sends a prompt and returns the provider outcome. A filtered
	// response (the provider executed but produced no usable text) is not an
	// error; it is reported via Outcome.Filtered so callers can distinguish
	// content failures from transport and configuration failures.
	Generate(ctx context.Context, prompt string, params Params) (Outcome, error)
	// Name identifies the provider and model for audit records.
	Name() string
}

// SafetyPreset selects how aggressively the provider's safety filters run.
type SafetyPreset int

const (
	// SafetyStandard enables all harm categories at a permissive threshold,
	// suitable for medically legitimate but alarming phrasing.
	SafetyStandard SafetyPreset = iota
	// SafetyMinimal enables only the most conservative category. Used on the
	// retry path to maximize the chance of getting any usable text back.
	SafetyMinimal
)

// Params are sampling parameters for a single generation call.
type Params struct {
	Temperature     float32
	MaxOutputTokens int
	TopP            float32
	TopK            int
	Safety          SafetyPreset
}

// SafetyRating is one per-category safety classification reported by a provider.
type SafetyRating struct {
	Category    string
	Probability string
}

// Outcome is the result of one provider call that completed at the HTTP level.
type Outcome struct {
	Text          string
	Filtered      bool
	FinishReason  string
	SafetyRatings []SafetyRating
}

// ErrUnauthorized marks credential rejection by a provider. It indicates a
// deployment defect and must propagate to the caller instead of advancing
// any fallback path.
var ErrUnauthorized = errors.New("provider rejected credentials")

// IsConfigError reports whether err indicates a configuration problem rather
// than a content or transport failure.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
