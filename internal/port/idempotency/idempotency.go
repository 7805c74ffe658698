package idempotency

import (
	"context"

	"github.com/google/uuid"
)

// Store remembers the result of an operation keyed by a client-supplied
// idempotency key so repeated submissions can be answered without re-running it.
//
// A key is reserved before the operation runs and completed with Store once it
// succeeds. A reserved key with no result yet is reported as not found by
// Check but cannot be reserved again until it is released or expires.
type Store interface {
	// Check returns the stored result and whether a completed result exists.
	Check(ctx context.Context, key string) ([]byte, bool, error)
	// Reserve claims key for one in-flight operation. It reports false when
	// the key is already reserved or completed.
	Reserve(ctx context.Context, key string, userID uuid.UUID, opType string) (bool, error)
	// Store completes key with result. The first completed result wins.
	Store(ctx context.Context, key string, userID uuid.UUID, opType string, result []byte) error
	// Release drops a reservation that was never completed.
	Release(ctx context.Context, key string) error
}
