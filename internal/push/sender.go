// Package push delivers best-effort push notifications to an external
// gateway. Delivery failures are reported to the caller but are never fatal
// to the operation that triggered them.
package push

import "context"

// Delivery is a single push request.
type Delivery struct {
	// DeliveryID is a deterministic dedupe key: the gateway drops repeats.
	DeliveryID string `json:"delivery_id"`
	UserID     string `json:"user_id"`
	Title      string `json:"title"`
	Message    string `json:"message"`
}

// Sender delivers push notifications.
type Sender interface {
	// Send delivers one push. An error means this delivery failed; the
	// caller decides whether to surface it as a partial-delivery warning.
	Send(ctx context.Context, d Delivery) error
}
