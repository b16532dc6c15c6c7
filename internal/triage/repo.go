package triage

import "context"

// BlockedRepo persists blocked provider attempts for later audit. Records are
// append-only; the service never reads them back on the request path.
type BlockedRepo interface {
	InsertBlocked(ctx context.Context, attempt BlockedAttempt) error
	ListRecentBlocked(ctx context.Context, limit int) ([]BlockedAttempt, error)
}
