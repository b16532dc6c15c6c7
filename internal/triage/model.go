package triage

import "time"

// Severity levels form a closed set; every result carries exactly one.
const (
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

// maxRecommendations caps the recommendations list after enrichment.
const maxRecommendations = 8

// Request is one symptom-analysis call. It is created per call and owned by
// the calling request scope.
type Request struct {
	Symptoms string
	Age      int    // 0 = not provided
	Gender   string // empty = not provided
	UserID   *int64 // nil = anonymous
}

// Result is the structured assessment returned to the caller. All list fields
// and severity are always present and well-typed, even on total provider
// failure.
type Result struct {
	Severity        string   `json:"severity"`
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
	Warnings        []string `json:"warnings"`
	NextSteps       []string `json:"next_steps"`
	Retried         bool     `json:"retried"`
}

// BlockedAttempt is one filtered or unparseable provider interaction,
// persisted append-only for audit.
type BlockedAttempt struct {
	ID          string
	UserID      *int64
	Symptoms    string
	RawResponse *string // nil when the provider produced no output at all
	Reason      string
	Model       string
	CreatedAt   time.Time
}

func normalizeSeverity(raw string) string {
	switch raw {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return raw
	default:
		return SeverityModerate
	}
}
