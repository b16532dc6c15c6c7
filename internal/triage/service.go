package triage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"telehealth-backend/internal/llm"
	"telehealth-backend/internal/shared/metrics"
	"telehealth-backend/internal/shared/telemetry"
)

// Generation parameter sets per ladder rung. The retry rung trades creativity
// for determinism so a flaky primary gets the best chance of clean JSON.
var (
	primaryParams = llm.Params{
		Temperature:     0.7,
		MaxOutputTokens: 1000,
		TopP:            0.9,
		TopK:            40,
		Safety:          llm.SafetyStandard,
	}
	retryParams = llm.Params{
		Temperature:     0.2,
		MaxOutputTokens: 400,
		TopP:            0.8,
		TopK:            20,
		Safety:          llm.SafetyMinimal,
	}
	alternateParams = llm.Params{
		Temperature:     0.2,
		MaxOutputTokens: 500,
	}
)

// Analyzer runs the symptom-analysis ladder: primary provider, retry on the
// primary with a simplified prompt, alternate provider, then the local
// heuristic. Every failed network rung is recorded as a blocked attempt.
type Analyzer struct {
	primary   llm.Provider
	alternate llm.Provider // may be nil
	blocked   BlockedRepo
	timeout   time.Duration
	salvage   SalvageDefaults
}

// NewAnalyzer wires the ladder. alternate may be nil, in which case the
// ladder skips straight from retry to the heuristic.
func NewAnalyzer(primary llm.Provider, alternate llm.Provider, blocked BlockedRepo, timeout time.Duration) *Analyzer {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Analyzer{
		primary:   primary,
		alternate: alternate,
		blocked:   blocked,
		timeout:   timeout,
		salvage:   DefaultSalvageDefaults(),
	}
}

// SetSalvageDefaults overrides the blocks injected during salvage.
func (a *Analyzer) SetSalvageDefaults(d SalvageDefaults) {
	a.salvage = d
}

// Analyze runs the full ladder for one request. The returned error is non-nil
// only for configuration failures (rejected credentials); every other failure
// mode degrades to the heuristic result instead.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	metrics.IncTriageStarted()
	defer func() {
		metrics.ObserveTriageDurationMs(float64(time.Since(start).Milliseconds()))
	}()

	symptoms := strings.TrimSpace(req.Symptoms)
	if symptoms == "" {
		metrics.IncTriageCompleted()
		return HeuristicAnalyze(symptoms), nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	// Rung 1: primary provider, full prompt.
	result, err := a.attempt(ctx, a.primary, Shape(symptoms, req.Age, req.Gender, false), primaryParams, req)
	if err == nil {
		return a.complete(Enrich(result, symptoms), false), nil
	}
	if llm.IsConfigError(err) {
		return Result{}, err
	}
	if errors.Is(err, errIncompleteResponse) {
		return a.heuristic(symptoms), nil
	}

	// Rung 2: same provider, simplified prompt and relaxed safety. Only a
	// success here marks the result as retried.
	result, err = a.attempt(ctx, a.primary, Shape(symptoms, req.Age, req.Gender, true), retryParams, req)
	if err == nil {
		return a.complete(Enrich(result, symptoms), true), nil
	}
	if llm.IsConfigError(err) {
		return Result{}, err
	}
	if errors.Is(err, errIncompleteResponse) {
		return a.heuristic(symptoms), nil
	}

	// Rung 3: alternate provider, when configured.
	if a.alternate != nil {
		result, err = a.attempt(ctx, a.alternate, Shape(symptoms, req.Age, req.Gender, true), alternateParams, req)
		if err == nil {
			return a.complete(Enrich(result, symptoms), false), nil
		}
		if llm.IsConfigError(err) {
			return Result{}, err
		}
		if errors.Is(err, errIncompleteResponse) {
			return a.heuristic(symptoms), nil
		}
	}

	return a.heuristic(symptoms), nil
}

// heuristic is rung 4: the deterministic local result, always available.
// It never carries the retried flag; that flag marks only the simplified
// retry of the primary provider.
func (a *Analyzer) heuristic(symptoms string) Result {
	metrics.IncTriageFallback()
	telemetry.Warn("triage.fallback", map[string]any{
		"symptomsLen": len(symptoms),
	})
	return a.complete(Enrich(HeuristicAnalyze(symptoms), symptoms), false)
}

func (a *Analyzer) complete(result Result, retried bool) Result {
	result.Retried = retried
	metrics.IncTriageCompleted()
	return result
}

var (
	errAttemptFailed = fmt.Errorf("attempt failed")
	// errIncompleteResponse means the provider returned valid JSON missing a
	// required field. A partial assessment must not be completed with
	// defaults; the ladder drops straight to the heuristic instead.
	errIncompleteResponse = fmt.Errorf("incomplete response")
)

// attempt runs one network rung: generate, parse, salvage if needed. A nil
// error means result is usable. Configuration errors propagate unwrapped so
// the ladder can abort; all other failures are recorded as blocked attempts
// and collapse to errAttemptFailed or errIncompleteResponse.
func (a *Analyzer) attempt(ctx context.Context, provider llm.Provider, prompt string, params llm.Params, req Request) (Result, error) {
	if ctx.Err() != nil {
		return Result{}, errAttemptFailed
	}

	outcome, err := provider.Generate(ctx, prompt, params)
	if err != nil {
		if llm.IsConfigError(err) {
			telemetry.Error("provider rejected credentials", map[string]any{
				"provider": provider.Name(),
			})
			return Result{}, err
		}
		telemetry.Warn("triage.blocked", map[string]any{
			"provider": provider.Name(),
			"reason":   ReasonTransportError,
			"error":    sanitizeError(err),
		})
		a.recordBlocked(req, nil, ReasonTransportError, provider.Name())
		return Result{}, errAttemptFailed
	}

	if outcome.Filtered {
		telemetry.Warn("triage.blocked", map[string]any{
			"provider":     provider.Name(),
			"reason":       ReasonBlockedNoParts,
			"finishReason": outcome.FinishReason,
		})
		a.recordBlocked(req, rawOrNil(outcome.Text), ReasonBlockedNoParts, provider.Name())
		return Result{}, errAttemptFailed
	}

	result, parseErr := Parse(outcome.Text)
	if parseErr == nil {
		return result, nil
	}
	if errors.Is(parseErr, ErrIncomplete) {
		// Valid JSON with a required field missing: the output is not
		// truncated, it is wrong. Salvage would hand back a partial model
		// assessment padded with defaults.
		telemetry.Warn("triage.incomplete", map[string]any{
			"provider":   provider.Name(),
			"parseError": parseErr.Error(),
		})
		return Result{}, errIncompleteResponse
	}

	result, salvageErr := Salvage(outcome.Text, req.Symptoms, a.salvage)
	if salvageErr == nil {
		telemetry.Info("triage.salvaged", map[string]any{
			"provider": provider.Name(),
		})
		return result, nil
	}

	telemetry.Warn("triage.blocked", map[string]any{
		"provider":   provider.Name(),
		"reason":     ReasonSalvageFailed,
		"parseError": parseErr.Error(),
	})
	a.recordBlocked(req, rawOrNil(outcome.Text), ReasonSalvageFailed, provider.Name())
	return Result{}, errAttemptFailed
}

// recordBlocked writes the audit record. Persistence failures are logged and
// swallowed: audit must never break the analysis path.
func (a *Analyzer) recordBlocked(req Request, raw *string, reason, model string) {
	metrics.IncBlockedAttempt()
	attempt := BlockedAttempt{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Symptoms:    req.Symptoms,
		RawResponse: raw,
		Reason:      reason,
		Model:       model,
		CreatedAt:   time.Now().UTC(),
	}
	// Detached context: the audit write should survive request cancellation.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.blocked.InsertBlocked(ctx, attempt); err != nil {
		telemetry.Error("failed to persist blocked attempt", map[string]any{
			"reason": reason,
			"model":  model,
			"error":  err.Error(),
		})
	}
}

func rawOrNil(text string) *string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return &text
}

var apiKeyPattern = regexp.MustCompile(`key=[^&\s"]+`)

// sanitizeError strips credential material from provider error strings before
// they reach logs.
func sanitizeError(err error) string {
	return apiKeyPattern.ReplaceAllString(err.Error(), "key=REDACTED")
}
