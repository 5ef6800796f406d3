// Package queue provides the bounded per-workflow queue abstraction: a
// multi-backend store interface and a manager that routes enqueue/dequeue
// calls to lazily-connected backing stores.
package queue

import (
	"context"
	"fmt"
	"strings"
)

// Store is a backing store holding named FIFO lists. Implementations must
// make each primitive atomic per key; the manager relies on that as its only
// cross-producer/consumer synchronization.
type Store interface {
	// Push appends a value to the tail of the list.
	Push(ctx context.Context, key, value string) error

	// Pop removes and returns the head of the list. The second return is
	// false when the list is empty, which is not an error.
	Pop(ctx context.Context, key string) (string, bool, error)

	// Len returns the current length of the list.
	Len(ctx context.Context, key string) (int64, error)

	// Trim drops the oldest entries so that at most max remain.
	Trim(ctx context.Context, key string, max int64) error

	Ping(ctx context.Context) error
	Close() error
}

// OpenStore connects to the backing store identified by a connection target
// URL. Supported schemes: redis:// (and rediss://), memory://.
func OpenStore(ctx context.Context, target string) (Store, error) {
	switch {
	case strings.HasPrefix(target, "redis://"), strings.HasPrefix(target, "rediss://"):
		return openRedisStore(ctx, target)
	case strings.HasPrefix(target, "memory://"):
		return newMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store target: %s", target)
	}
}
