package usage

import (
	"context"
	"fmt"

	"codeberg.org/incdrops/server/internal/quota"
	ws "codeberg.org/incdrops/server/internal/websocket"
)

// publisher may be nil when nothing listens for usage changes
func NewService(tracker *quota.Tracker, accounts AccountFinder, publisher Publisher) *Service {
	return &Service{
		tracker:   tracker,
		accounts:  accounts,
		publisher: publisher,
	}
}

func (s *Service) tier(ctx context.Context, accountID string) (string, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("failed to load account: %w", err)
	}

	return account.Tier, nil
}

// current usage of the account under its stored tier
func (s *Service) Snapshot(ctx context.Context, accountID string) (*Snapshot, error) {
	tier, err := s.tier(ctx, accountID)
	if err != nil {
		return nil, err
	}

	u, err := s.tracker.LoadUsage(ctx, accountID)
	if err != nil {
		return nil, err
	}

	snap := s.snapshot(tier, u.UsageRecord)
	snap.Degraded = u.Degraded

	return &snap, nil
}

// gates one generation for the account. an allowed decision is pushed to the
// account's other sessions
func (s *Service) Consume(ctx context.Context, accountID string) (quota.Decision, error) {
	tier, err := s.tier(ctx, accountID)
	if err != nil {
		return quota.Decision{}, err
	}

	d, err := s.tracker.TryConsume(ctx, accountID, tier)
	if err != nil {
		return quota.Decision{}, err
	}

	if d.Allowed {
		s.publish(accountID, FromDecision(d))
	}

	return d, nil
}

// gives back the generation d consumed for a failed upstream call. only
// charges the store confirmed are pushed to the account's sessions
func (s *Service) Refund(ctx context.Context, accountID string, d quota.Decision) (*Snapshot, error) {
	rec, err := s.tracker.Refund(ctx, accountID, d)
	if err != nil {
		return nil, err
	}

	snap := s.snapshot(d.Tier, rec)
	snap.Degraded = !d.Recorded

	if d.Recorded {
		s.publish(accountID, snap)
	}

	return &snap, nil
}

// zeroes the account's counter for the current period
func (s *Service) Reset(ctx context.Context, accountID string) (*Snapshot, error) {
	tier, err := s.tier(ctx, accountID)
	if err != nil {
		return nil, err
	}

	rec, err := s.tracker.Reset(ctx, accountID)
	if err != nil {
		return nil, err
	}

	snap := s.snapshot(tier, rec)
	s.publish(accountID, snap)

	return &snap, nil
}

func (s *Service) snapshot(tier string, rec quota.UsageRecord) Snapshot {
	ceiling := s.tracker.Limits().Ceiling(tier)

	snap := Snapshot{
		Tier:      tier,
		Period:    rec.PeriodKey.String(),
		Count:     rec.Count,
		Limit:     int64(ceiling),
		Remaining: -1,
		ResetAt:   rec.PeriodKey.ResetAt(),
	}

	if ceiling.Bounded() {
		snap.Remaining = max(int64(ceiling)-rec.Count, 0)
	}

	return snap
}

func (s *Service) publish(accountID string, snap Snapshot) {
	if s.publisher == nil {
		return
	}

	s.publisher.PublishUsage(accountID, ws.UsageUpdatedPayload{
		Period:    snap.Period,
		Count:     snap.Count,
		Limit:     snap.Limit,
		Remaining: snap.Remaining,
	})
}

// the snapshot a decision describes
func FromDecision(d quota.Decision) Snapshot {
	return Snapshot{
		Tier:      d.Tier,
		Period:    d.PeriodKey.String(),
		Count:     d.Count,
		Limit:     int64(d.Ceiling),
		Remaining: d.Remaining,
		ResetAt:   d.ResetAt,
		Degraded:  d.Degraded,
	}
}
