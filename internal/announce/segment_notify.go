package announce

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fitmetrics/internal/domain"
	"fitmetrics/internal/idhash"
	"fitmetrics/internal/push"
	"fitmetrics/internal/segment"
)

// SegmentResult contains the outcome of a segment notification send.
type SegmentResult struct {
	Recipients           int              `json:"recipients"`
	NotificationsCreated int              `json:"notifications_created"`
	PushFailures         []string         `json:"push_failures,omitempty"`
	Warnings             []domain.Warning `json:"warnings,omitempty"`
}

// NotifySegment resolves the filter and sends an announcement to every
// matched profile. A zero-recipient segment is a successful no-op carrying
// WarningNoRecipients. Push failures surface as WarningPartialDelivery.
func (o *Orchestrator) NotifySegment(ctx context.Context, resolver *segment.Resolver, filter *domain.SegmentFilter, title, message string) (*SegmentResult, error) {
	resolved, err := resolver.Resolve(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("resolve segment: %w", err)
	}

	result := &SegmentResult{
		Recipients: len(resolved.Profiles),
		Warnings:   resolved.Warnings,
	}
	if len(resolved.Profiles) == 0 {
		return result, nil
	}

	targetType := "segment"
	if filter == nil || filter.IsEmpty() {
		targetType = "all"
	}
	// Audit payload: every record carries the resolved audience size
	data := map[string]any{
		"target_type":      targetType,
		"recipients_count": len(resolved.Profiles),
	}

	createdAt := o.now()
	notifications := make([]*domain.Notification, 0, len(resolved.Profiles))
	for _, p := range resolved.Profiles {
		notifications = append(notifications, &domain.Notification{
			ID:        uuid.NewString(),
			UserID:    p.UserID,
			Type:      domain.NotificationTypeAnnouncement,
			Title:     title,
			Message:   message,
			Data:      data,
			CreatedAt: createdAt,
		})
	}

	if err := o.notificationStore.InsertBulk(ctx, notifications); err != nil {
		return nil, fmt.Errorf("insert segment notifications: %w", err)
	}
	result.NotificationsCreated = len(notifications)

	if o.pushSender != nil {
		for _, n := range notifications {
			// Key on the content, not the record id, so a retried send of
			// the same announcement dedupes at the gateway
			d := push.Delivery{
				DeliveryID: idhash.ComputeDeliveryID("segment", n.UserID, n.Title),
				UserID:     n.UserID,
				Title:      n.Title,
				Message:    n.Message,
			}
			if err := o.pushSender.Send(ctx, d); err != nil {
				result.PushFailures = append(result.PushFailures, fmt.Sprintf("push to %s: %v", n.UserID, err))
			}
		}
		if len(result.PushFailures) > 0 {
			result.Warnings = append(result.Warnings, domain.WarningPartialDelivery)
		}
	}

	return result, nil
}
