package triage

import (
	"context"
	"sync"
)

// MemoryBlockedRepo is an in-memory BlockedRepo for local development and
// tests. Audit records do not survive a restart.
type MemoryBlockedRepo struct {
	mu       sync.Mutex
	attempts []BlockedAttempt
}

func NewMemoryBlockedRepo() *MemoryBlockedRepo {
	return &MemoryBlockedRepo{}
}

func (r *MemoryBlockedRepo) InsertBlocked(_ context.Context, attempt BlockedAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, attempt)
	return nil
}

func (r *MemoryBlockedRepo) ListRecentBlocked(_ context.Context, limit int) ([]BlockedAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	out := make([]BlockedAttempt, 0, limit)
	for i := len(r.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.attempts[i])
	}
	return out, nil
}

var _ BlockedRepo = (*MemoryBlockedRepo)(nil)
