package ticker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dukex/conduit/pkg/queue"
)

const (
	defaultStreamURL = "wss://fstream.binance.com/stream"
	receiveTimeout   = 5 * time.Second
	reconnectDelay   = time.Second

	defaultRateLimit  = 100
	defaultRateWindow = time.Second
)

// Streamer owns the exchange WebSocket connection and feeds raw messages
// into the workflow's queue. One Streamer per configured ticker workflow;
// the queued messages are later classified by Workflow.Process.
type Streamer struct {
	url          string
	workflowName string
	route        string
	rateLimit    int
	rateWindow   time.Duration

	queue  *queue.Manager
	logger *slog.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewStreamer builds a streamer from workflow options. Either an explicit
// "url" or at least one symbol and one stream type must be configured.
func NewStreamer(workflowName, route string, options map[string]any, queueManager *queue.Manager, logger *slog.Logger) (*Streamer, error) {
	s := &Streamer{
		workflowName: workflowName,
		route:        route,
		rateLimit:    defaultRateLimit,
		rateWindow:   defaultRateWindow,
		queue:        queueManager,
		logger:       logger.With("module", "ticker_streamer", "workflow", workflowName),
	}

	if url, ok := options["url"].(string); ok && url != "" {
		s.url = url
	} else {
		symbols := stringSlice(options["symbols"])
		streams := stringSlice(options["streams"])

		if len(symbols) == 0 || len(streams) == 0 {
			return nil, fmt.Errorf("ticker streamer for %s requires symbols and streams, or an explicit url", workflowName)
		}

		s.url = streamURL(symbols, streams)
	}

	if limit, ok := options["rate_limit"].(float64); ok && limit > 0 {
		s.rateLimit = int(limit)
	}

	if window, ok := options["rate_limit_window"].(float64); ok && window > 0 {
		s.rateWindow = time.Duration(window * float64(time.Second))
	}

	return s, nil
}

func streamURL(symbols, streams []string) string {
	pairs := make([]string, 0, len(symbols)*len(streams))

	for _, symbol := range symbols {
		for _, stream := range streams {
			pairs = append(pairs, strings.ToLower(symbol)+"@"+stream)
		}
	}

	return defaultStreamURL + "?streams=" + strings.Join(pairs, "/")
}

func stringSlice(value any) []string {
	raw, ok := value.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(raw))

	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}

	return out
}

// Run reads messages until the context is cancelled or an enqueue fails.
// Read errors reconnect after a short delay; read timeouts just poll again so
// cancellation is observed even on a silent stream.
func (s *Streamer) Run(ctx context.Context) error {
	defer s.Close()

	received := 0
	windowStart := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		conn, err := s.connect(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "Stream connect failed, retrying", "error", err)
			sleepCtx(ctx, reconnectDelay)

			continue
		}

		_ = conn.SetReadDeadline(time.Now().Add(receiveTimeout))

		_, raw, err := conn.ReadMessage()
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}

			s.logger.WarnContext(ctx, "Stream read failed, reconnecting", "error", err)
			s.Close()
			sleepCtx(ctx, reconnectDelay)

			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= s.rateWindow {
			windowStart = now
			received = 0
		}

		received++
		if received > s.rateLimit {
			s.logger.WarnContext(ctx, "Stream rate limit hit, pausing",
				"limit", s.rateLimit,
				"window", s.rateWindow,
			)
			sleepCtx(ctx, s.rateWindow-now.Sub(windowStart))

			windowStart = time.Now()
			received = 0
		}

		var message map[string]any
		if err := json.Unmarshal(raw, &message); err != nil {
			message = map[string]any{
				"message":   string(raw),
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			}
		}

		if err := s.queue.Enqueue(ctx, s.workflowName, message, s.route); err != nil {
			return fmt.Errorf("failed to enqueue stream message: %w", err)
		}
	}
}

func (s *Streamer) connect(ctx context.Context) (*websocket.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return s.conn, nil
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", s.url, err)
	}

	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	s.conn = conn
	s.logger.InfoContext(ctx, "Stream connected", "url", s.url)

	return conn, nil
}

// Close drops the current connection. Run reconnects on its next iteration
// unless its context is done.
func (s *Streamer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
