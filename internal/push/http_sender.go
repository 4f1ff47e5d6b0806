package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout is the default gateway request timeout.
const DefaultTimeout = 10 * time.Second

// HTTPSender implements Sender against an HTTP push gateway.
type HTTPSender struct {
	endpoint string
	client   *http.Client
}

// SenderOption configures HTTPSender.
type SenderOption func(*HTTPSender)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) SenderOption {
	return func(s *HTTPSender) {
		s.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) SenderOption {
	return func(s *HTTPSender) {
		s.client = client
	}
}

// NewHTTPSender creates a sender posting deliveries to the gateway endpoint.
func NewHTTPSender(endpoint string, opts ...SenderOption) *HTTPSender {
	s := &HTTPSender{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compile-time interface check.
var _ Sender = (*HTTPSender)(nil)

// Send posts one delivery as JSON. Non-2xx responses are errors.
func (s *HTTPSender) Send(ctx context.Context, d Delivery) error {
	body, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal delivery: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}
	return nil
}
