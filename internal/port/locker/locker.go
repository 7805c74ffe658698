package locker

import (
	"context"
	"hash/fnv"

	"github.com/google/uuid"
)

// AdvisoryLocker serialises critical sections keyed by an int64.
// The Postgres implementation uses session advisory locks, so lock and unlock
// must happen on the same DB connection; the in-memory one uses a keyed mutex.
type AdvisoryLocker interface {
	WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error
}

// KeyFor derives a stable lock key for a project.
func KeyFor(projectID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(projectID[:])
	return int64(h.Sum64())
}
