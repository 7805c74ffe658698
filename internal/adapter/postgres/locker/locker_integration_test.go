//go:build integration

package locker_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pglocker "github.com/alanyang/project-chat/internal/adapter/postgres/locker"
	portlocker "github.com/alanyang/project-chat/internal/port/locker"
	"github.com/alanyang/project-chat/internal/testutil"
)

func TestLocker_SerialisesSameKey(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	l := pglocker.New(pool)
	key := portlocker.KeyFor(uuid.New())

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.WithLock(context.Background(), key, func(context.Context) error {
				n := inside.Add(1)
				for {
					m := maxInside.Load()
					if n <= m || maxInside.CompareAndSwap(m, n) {
						break
					}
				}
				inside.Add(-1)
				return nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
}
