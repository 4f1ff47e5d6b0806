// Package stub provides an in-memory push sender for tests.
package stub

import (
	"context"
	"fmt"
	"sync"

	"fitmetrics/internal/push"
)

// Sender records deliveries and fails the ones addressed to FailUserIDs.
type Sender struct {
	mu          sync.Mutex
	sent        []push.Delivery
	FailUserIDs map[string]bool
}

// NewSender creates a stub sender.
func NewSender() *Sender {
	return &Sender{FailUserIDs: make(map[string]bool)}
}

// Compile-time interface check.
var _ push.Sender = (*Sender)(nil)

// Send records the delivery, or fails if the user is marked for failure.
func (s *Sender) Send(_ context.Context, d push.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailUserIDs[d.UserID] {
		return fmt.Errorf("stub delivery failure for user %s", d.UserID)
	}
	s.sent = append(s.sent, d)
	return nil
}

// Sent returns a copy of the recorded deliveries.
func (s *Sender) Sent() []push.Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]push.Delivery, len(s.sent))
	copy(out, s.sent)
	return out
}
