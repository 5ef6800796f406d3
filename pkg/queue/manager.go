package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// DefaultRoute is the logical queue route used when a caller passes an empty
// route name.
const DefaultRoute = "default"

// DefaultMaxLength bounds each queue list when no global limit is configured.
const DefaultMaxLength = 1000

// ErrRouteNotConfigured is returned when an operation references a queue
// route absent from the manager's route table. Routes are never auto-created.
var ErrRouteNotConfigured = errors.New("queue route not configured")

// Manager routes enqueue/dequeue calls for a (workflow, route) pair to the
// correct backing store, connecting lazily on first use. It is the only
// component that opens or closes store connections.
type Manager struct {
	routes    map[string]string
	maxLength int64
	logger    *slog.Logger

	mu    sync.Mutex
	conns map[string]Store
}

// NewManager builds a manager over a static route table mapping logical
// route names to connection targets. maxLength <= 0 selects the default.
func NewManager(routes map[string]string, maxLength int64, logger *slog.Logger) *Manager {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	return &Manager{
		routes:    routes,
		maxLength: maxLength,
		conns:     make(map[string]Store),
		logger:    logger.With("module", "queue_manager"),
	}
}

// MaxLength returns the configured per-queue length bound.
func (m *Manager) MaxLength() int64 {
	return m.maxLength
}

// Routes returns the configured logical route names.
func (m *Manager) Routes() []string {
	names := make([]string, 0, len(m.routes))
	for name := range m.routes {
		names = append(names, name)
	}

	return names
}

// Connect establishes the backing connection for a route if absent.
// Idempotent: an already-connected route is left untouched.
func (m *Manager) Connect(ctx context.Context, queueName string) error {
	_, err := m.store(ctx, queueName)

	return err
}

func (m *Manager) store(ctx context.Context, queueName string) (Store, error) {
	target, ok := m.routes[queueName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRouteNotConfigured, queueName)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if conn, ok := m.conns[queueName]; ok {
		return conn, nil
	}

	conn, err := OpenStore(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to connect queue route %s: %w", queueName, err)
	}

	m.conns[queueName] = conn
	m.logger.InfoContext(ctx, "Connected queue route", "queue", queueName)

	return conn, nil
}

// Disconnect tears down the connection for a route. Calling it on an
// unconnected or unknown route is a no-op, so a later operation re-connects
// instead of reusing a dead handle.
func (m *Manager) Disconnect(ctx context.Context, queueName string) error {
	m.mu.Lock()
	conn, ok := m.conns[queueName]
	delete(m.conns, queueName)
	m.mu.Unlock()

	if !ok {
		return nil
	}

	if err := conn.Close(); err != nil {
		return fmt.Errorf("failed to disconnect queue route %s: %w", queueName, err)
	}

	m.logger.InfoContext(ctx, "Disconnected queue route", "queue", queueName)

	return nil
}

// DisconnectAll tears down every live connection.
func (m *Manager) DisconnectAll(ctx context.Context) error {
	var errs []error

	for name := range m.routes {
		if err := m.Disconnect(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Enqueue appends a payload to the tail of the workflow's queue on the given
// route, then trims the list to the configured bound keeping the most recent
// entries. The append and trim are two store operations, not one atomic step:
// concurrent producers may observe the length momentarily above the bound
// before trimming settles.
func (m *Manager) Enqueue(ctx context.Context, workflowName string, data map[string]any, queueName string) error {
	if queueName == "" {
		queueName = DefaultRoute
	}

	conn, err := m.store(ctx, queueName)
	if err != nil {
		return err
	}

	value, err := NewItem(data, queueName).encode()
	if err != nil {
		return fmt.Errorf("failed to encode queue item: %w", err)
	}

	key := queueKey(workflowName)

	if err := conn.Push(ctx, key, value); err != nil {
		return fmt.Errorf("failed to enqueue item for %s: %w", workflowName, err)
	}

	if err := conn.Trim(ctx, key, m.maxLength); err != nil {
		return fmt.Errorf("failed to trim queue for %s: %w", workflowName, err)
	}

	length, err := conn.Len(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read queue length for %s: %w", workflowName, err)
	}

	m.logger.InfoContext(ctx, "Item enqueued",
		"workflow", workflowName,
		"queue", queueName,
		"queue_length", length,
	)

	return nil
}

// Dequeue pops the oldest item from the workflow's queue on the given route.
// An empty queue returns (nil, nil): the normal "nothing to do" signal,
// distinct from a connection failure.
func (m *Manager) Dequeue(ctx context.Context, workflowName, queueName string) (*Item, error) {
	if queueName == "" {
		queueName = DefaultRoute
	}

	conn, err := m.store(ctx, queueName)
	if err != nil {
		return nil, err
	}

	value, ok, err := conn.Pop(ctx, queueKey(workflowName))
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue item for %s: %w", workflowName, err)
	}

	if !ok {
		return nil, nil
	}

	item, err := decodeItem(value)
	if err != nil {
		return nil, fmt.Errorf("failed to decode queue item for %s: %w", workflowName, err)
	}

	m.logger.DebugContext(ctx, "Item dequeued", "workflow", workflowName, "queue", queueName)

	return item, nil
}

// QueueSize returns the current length of the workflow's queue on a route.
func (m *Manager) QueueSize(ctx context.Context, workflowName, queueName string) (int64, error) {
	if queueName == "" {
		queueName = DefaultRoute
	}

	conn, err := m.store(ctx, queueName)
	if err != nil {
		return 0, err
	}

	return conn.Len(ctx, queueKey(workflowName))
}

// AllQueueSizes aggregates the workflow's queue length across every
// configured route.
func (m *Manager) AllQueueSizes(ctx context.Context, workflowName string) (map[string]int64, error) {
	sizes := make(map[string]int64, len(m.routes))

	for name := range m.routes {
		size, err := m.QueueSize(ctx, workflowName, name)
		if err != nil {
			return nil, err
		}

		sizes[name] = size
	}

	return sizes, nil
}
