// Package announce owns the one state transition of the admin console:
// announcing challenge winners and fanning out notifications.
// Flow: load challenge → rank participants → commit winners → notify → push
package announce

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"fitmetrics/internal/domain"
	"fitmetrics/internal/idhash"
	"fitmetrics/internal/leaderboard"
	"fitmetrics/internal/push"
	"fitmetrics/internal/storage"
)

// ErrChallengeNotCompleted is returned when winners are requested for a
// challenge that has not finished yet.
var ErrChallengeNotCompleted = errors.New("challenge is not completed")

// defaultWinnersCount is how many top entries become the winner payload
// when the caller does not ask for a specific count.
const defaultWinnersCount = 3

// Orchestrator coordinates the announcement transition.
// The commit phase is a check-and-set at the storage boundary: of two
// concurrent announcers exactly one wins, the loser observes
// storage.ErrAlreadyAnnounced.
type Orchestrator struct {
	challengeStore    storage.ChallengeStore
	notificationStore storage.NotificationStore
	ranker            *leaderboard.Ranker
	pushSender        push.Sender

	now     func() int64
	verbose bool
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	ChallengeStore    storage.ChallengeStore
	NotificationStore storage.NotificationStore

	// Required collaborators
	Ranker *leaderboard.Ranker

	// PushSender is optional; without it the push phase is skipped.
	PushSender push.Sender

	// Now overrides the clock (Unix ms). Defaults to wall time.
	Now func() int64

	Verbose bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	now := opts.Now
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}
	return &Orchestrator{
		challengeStore:    opts.ChallengeStore,
		notificationStore: opts.NotificationStore,
		ranker:            opts.Ranker,
		pushSender:        opts.PushSender,
		now:               now,
		verbose:           opts.Verbose,
	}
}

// Result contains the outcome of one announcement run.
type Result struct {
	ChallengeID          string          `json:"challenge_id"`
	AnnouncedAt          int64           `json:"announced_at"`
	Winners              []domain.Winner `json:"winners"`
	NotificationsCreated int             `json:"notifications_created"`
	PushFailures         []string        `json:"push_failures,omitempty"`
	Warnings             []domain.Warning `json:"warnings,omitempty"`
}

// Run executes the announcement transition for one challenge. topK is how
// many top entries become winners; zero or negative means the default of 3.
// Phases:
//  1. Load and validate the challenge
//  2. Rank the full participant set, select top winners
//  3. Commit winners (conditional update, exactly-once)
//  4. Insert one notification per participant (all-or-nothing)
//  5. Best-effort push; failures become WarningPartialDelivery
func (o *Orchestrator) Run(ctx context.Context, challengeID string, topK int) (*Result, error) {
	if topK <= 0 {
		topK = defaultWinnersCount
	}
	// Phase 1: Load challenge
	o.log("Phase 1: Loading challenge %s...", challengeID)
	challenge, err := o.challengeStore.GetByID(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (load challenge) failed: %w", err)
	}
	if challenge.WinnerAnnouncedAt != nil {
		return nil, storage.ErrAlreadyAnnounced
	}
	if challenge.Status != domain.ChallengeStatusCompleted {
		return nil, ErrChallengeNotCompleted
	}

	// Phase 2: Rank participants
	o.log("Phase 2: Ranking participants...")
	entries, err := o.ranker.Compute(ctx, challengeID, 0)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (rank participants) failed: %w", err)
	}
	winners, err := leaderboard.Winners(entries, topK)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (select winners) failed: %w", err)
	}
	o.log("  Ranked %d participants, %d winners", len(entries), len(winners))

	// Phase 3: Commit winners. The conditional update is the transactional
	// boundary: a lost race surfaces here and nothing below runs.
	o.log("Phase 3: Committing winners...")
	announcedAt := o.now()
	if err := o.challengeStore.SetWinners(ctx, challengeID, winners, announcedAt); err != nil {
		return nil, err
	}

	result := &Result{
		ChallengeID: challengeID,
		AnnouncedAt: announcedAt,
		Winners:     winners,
	}

	// Phase 4: Notification fan-out, one record per participant
	o.log("Phase 4: Creating notifications...")
	notifications := buildNotifications(challenge, entries, winners, announcedAt)
	if err := o.notificationStore.InsertBulk(ctx, notifications); err != nil {
		return nil, fmt.Errorf("phase 4 (insert notifications) failed: %w", err)
	}
	result.NotificationsCreated = len(notifications)

	// Phase 5: Push, best effort. Failures never fail the announcement.
	if o.pushSender != nil {
		o.log("Phase 5: Dispatching push...")
		result.PushFailures = o.dispatchPush(ctx, notifications, challengeID)
		if len(result.PushFailures) > 0 {
			result.Warnings = append(result.Warnings, domain.WarningPartialDelivery)
			o.log("  %d push deliveries failed", len(result.PushFailures))
		}
	}

	o.log("Announced %s: %d winners, %d notifications",
		challengeID, len(result.Winners), result.NotificationsCreated)

	return result, nil
}

// buildNotifications creates one notification per ranked participant.
// Winners get a personal challenge_winner notice, everyone else an
// announcement with the winner list.
func buildNotifications(challenge *domain.Challenge, entries []domain.LeaderboardEntry, winners []domain.Winner, createdAt int64) []*domain.Notification {
	winnerRanks := make(map[string]int, len(winners))
	for _, w := range winners {
		winnerRanks[w.UserID] = w.Rank
	}

	data := map[string]any{
		"challenge_id": challenge.ID,
		"winners":      winners,
	}

	notifications := make([]*domain.Notification, 0, len(entries))
	for _, e := range entries {
		n := &domain.Notification{
			ID:        uuid.NewString(),
			UserID:    e.UserID,
			Data:      data,
			CreatedAt: createdAt,
		}
		if rank, ok := winnerRanks[e.UserID]; ok {
			n.Type = domain.NotificationTypeChallengeWinner
			n.Title = fmt.Sprintf("You placed #%d in %s!", rank, challenge.Title)
			n.Message = fmt.Sprintf("Congratulations! You finished #%d with %d points.", rank, e.Score)
		} else {
			n.Type = domain.NotificationTypeAnnouncement
			n.Title = fmt.Sprintf("Winners announced for %s", challenge.Title)
			n.Message = "The challenge has ended. Check the leaderboard for the final results."
		}
		notifications = append(notifications, n)
	}
	return notifications
}

// dispatchPush sends one push per notification and collects failures.
func (o *Orchestrator) dispatchPush(ctx context.Context, notifications []*domain.Notification, challengeID string) []string {
	var failures []string
	for _, n := range notifications {
		d := push.Delivery{
			DeliveryID: idhash.ComputeDeliveryID(challengeID, n.UserID, string(n.Type)),
			UserID:     n.UserID,
			Title:      n.Title,
			Message:    n.Message,
		}
		if err := o.pushSender.Send(ctx, d); err != nil {
			log.Printf("[announce] push to %s failed: %v", n.UserID, err)
			failures = append(failures, fmt.Sprintf("push to %s: %v", n.UserID, err))
		}
	}
	return failures
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[announce] "+format, args...)
	}
}
