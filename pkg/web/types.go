// Package web provides the HTTP ingestion front-end: webhook enqueueing,
// queue observability and health endpoints.
package web

// WebhookPayload is the request body accepted by the webhook endpoint.
type WebhookPayload struct {
	Data map[string]any `json:"data" validate:"required"`
}

// EnqueueResponse acknowledges an accepted webhook. The acknowledgement is
// fire-and-forget with respect to eventual processing.
type EnqueueResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// QueueSizesResponse reports a workflow's queue depth on every configured
// route.
type QueueSizesResponse struct {
	Workflow string           `json:"workflow"`
	Queues   map[string]int64 `json:"queues"`
}
