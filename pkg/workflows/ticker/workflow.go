// Package ticker processes cryptocurrency market data from the Binance
// futures combined stream. The Streamer owns the WebSocket connection and
// enqueues raw messages; the Workflow turns queued messages into typed tick
// records.
package ticker

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

type Workflow struct {
	logger *slog.Logger
}

func NewWorkflow(logger *slog.Logger) *Workflow {
	return &Workflow{logger: logger.With("workflow", "ticker")}
}

// Validate rejects empty messages; everything else is classified by Process.
func (w *Workflow) Validate(_ context.Context, data map[string]any) bool {
	return len(data) > 0
}

// Process classifies one combined-stream message. Messages that are neither
// trades nor mark prices are passed through under type "unknown" rather
// than failing, so an unexpected stream subscription does not burn retries.
func (w *Workflow) Process(ctx context.Context, data map[string]any) (map[string]any, error) {
	streamName, _ := data["stream"].(string)

	payload, ok := data["data"].(map[string]any)
	if !ok {
		streamName = "unknown"
		payload = data
	}

	var processed map[string]any

	switch {
	case strings.Contains(streamName, "@aggTrade"):
		processed = map[string]any{
			"type":           "trade",
			"symbol":         payload["s"],
			"price":          toFloat(payload["p"]),
			"quantity":       toFloat(payload["q"]),
			"timestamp":      payload["T"],
			"is_buyer_maker": payload["m"] == true,
		}
	case strings.Contains(streamName, "@markPrice"):
		processed = map[string]any{
			"type":              "mark_price",
			"symbol":            payload["s"],
			"price":             toFloat(payload["p"]),
			"index_price":       toFloat(payload["i"]),
			"funding_rate":      toFloat(payload["r"]),
			"next_funding_time": payload["T"],
			"timestamp":         time.Now().UTC().Format(time.RFC3339),
		}
	default:
		processed = map[string]any{
			"type":     "unknown",
			"raw_data": payload,
		}
	}

	w.logger.DebugContext(ctx, "Tick processed", "stream", streamName, "type", processed["type"])

	return processed, nil
}

func (w *Workflow) Cleanup(_ context.Context) error {
	return nil
}

// toFloat accepts the string-encoded decimals Binance emits alongside plain
// numbers.
func toFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}

		return f
	default:
		return 0
	}
}
