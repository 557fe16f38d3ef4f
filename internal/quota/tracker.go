package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/incdrops/server/internal/logger"
	"golang.org/x/sync/singleflight"
)

const defaultStoreTimeout = 3 * time.Second

// gates and records generation attempts against a monthly per-tier quota.
// the store is the durable owner, the cache is a shadow that is only advanced
// after the store confirmed a write
type Tracker struct {
	store    Store
	cache    Cache
	limits   TierLimits
	now      func() time.Time
	timeout  time.Duration
	observer Observer
	loads    singleflight.Group
	pending  *pendingLedger
}

type Option func(*Tracker)

// overrides the wall clock, used by tests to cross month boundaries
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func WithCache(cache Cache) Option {
	return func(t *Tracker) { t.cache = cache }
}

func WithLimits(limits TierLimits) Option {
	return func(t *Tracker) { t.limits = limits }
}

// bounds every store call
func WithStoreTimeout(d time.Duration) Option {
	return func(t *Tracker) { t.timeout = d }
}

func WithObserver(o Observer) Option {
	return func(t *Tracker) { t.observer = o }
}

// creates a tracker over store, with an in-memory cache unless one is supplied
func NewTracker(store Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:    store,
		cache:    NewMemoryCache(),
		limits:   DefaultTierLimits(),
		now:      time.Now,
		timeout:  defaultStoreTimeout,
		observer: nopObserver{},
		pending:  newPendingLedger(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

func (t *Tracker) Limits() TierLimits {
	return t.limits
}

// returns the calendar month identifier for now
func (t *Tracker) CurrentPeriodKey() PeriodKey {
	return PeriodOf(t.now())
}

// reads the account's usage for the current period. a stale record reads as zero
// and the reset is persisted. when the store is unreachable the cached record is
// used if it belongs to the current period, otherwise zero, and Degraded is set.
// generations allowed during an outage and not yet written through are included
func (t *Tracker) LoadUsage(ctx context.Context, accountID string) (Usage, error) {
	u, err := t.loadStored(ctx, accountID)
	if err != nil {
		return Usage{}, err
	}

	if n := t.pending.count(accountID, u.PeriodKey); n > 0 {
		u.Count += n
		u.Degraded = true
	}

	return u, nil
}

func (t *Tracker) loadStored(ctx context.Context, accountID string) (Usage, error) {
	if accountID == "" {
		return Usage{}, ErrInvalidAccount
	}

	// concurrent loads for one account share a single store round trip
	v, _, _ := t.loads.Do(accountID, func() (any, error) {
		return t.load(context.WithoutCancel(ctx), accountID), nil
	})

	return v.(Usage), nil
}

func (t *Tracker) load(ctx context.Context, accountID string) Usage {
	period := t.CurrentPeriodKey()

	sctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	rec, ok, err := t.store.Get(sctx, accountID)
	if err != nil && !errors.Is(err, ErrMalformedRecord) {
		t.storeFailed("get", accountID, err)
		return t.fallback(accountID, period)
	}

	if err != nil || !ok || !rec.Valid() {
		rec = zeroRecord(period)
		t.cache.Save(accountID, rec)
		return Usage{UsageRecord: rec}
	}

	if rec.PeriodKey != period {
		reset, err := t.persistReset(sctx, accountID, period)
		if err != nil {
			// the zero view is still correct for this period, only the write is lost
			t.storeFailed("reset", accountID, err)
			reset = zeroRecord(period)
		}

		rec = reset
	}

	t.cache.Save(accountID, rec)
	return Usage{UsageRecord: rec}
}

// writes the period rollover. with an atomic store this is an increment by zero,
// so a concurrent consume from another session is never overwritten
func (t *Tracker) persistReset(ctx context.Context, accountID string, period PeriodKey) (UsageRecord, error) {
	if inc, ok := t.store.(Incrementer); ok {
		return inc.Increment(ctx, accountID, period, 0)
	}

	rec := zeroRecord(period)
	return rec, t.store.Set(ctx, accountID, rec)
}

func (t *Tracker) fallback(accountID string, period PeriodKey) Usage {
	if cached, ok := t.cache.Load(accountID); ok && cached.PeriodKey == period && cached.Count >= 0 {
		return Usage{UsageRecord: cached, Degraded: true}
	}

	return Usage{UsageRecord: zeroRecord(period), Degraded: true}
}

// reports the decision TryConsume would make without recording anything
func (t *Tracker) Check(ctx context.Context, accountID, tier string) (Decision, error) {
	usage, err := t.LoadUsage(ctx, accountID)
	if err != nil {
		return Decision{}, err
	}

	d := t.decide(tier, usage)
	if d.Allowed {
		d.Remaining = remaining(d.Ceiling, d.Count)
	}

	return d, nil
}

// checks the account's usage against its tier ceiling and, when below it,
// records one generation
func (t *Tracker) TryConsume(ctx context.Context, accountID, tier string) (Decision, error) {
	usage, err := t.loadStored(ctx, accountID)
	if err != nil {
		return Decision{}, err
	}

	// outage generations count against the ceiling and are written through
	// together with this one
	unconfirmed := t.pending.take(accountID, usage.PeriodKey)
	if unconfirmed > 0 {
		usage.Count += unconfirmed
		usage.Degraded = true
	}

	d := t.decide(tier, usage)
	if !d.Allowed {
		t.pending.add(accountID, usage.PeriodKey, unconfirmed)
		t.observer.ObserveDecision(d)
		return d, nil
	}

	rec, err := t.increment(ctx, accountID, usage.PeriodKey, unconfirmed+1)
	if err != nil {
		// fail open: allow this generation and remember it until the store is back.
		// the cache is left as it was so it never runs ahead of the store
		t.storeFailed("increment", accountID, err)
		t.pending.add(accountID, usage.PeriodKey, unconfirmed+1)

		d.Degraded = true
		d.Count = usage.Count + 1
		d.Remaining = remaining(d.Ceiling, d.Count)
		t.observer.ObserveDecision(d)
		return d, nil
	}

	t.cache.Save(accountID, rec)

	d.Recorded = true
	d.Degraded = false
	d.Count = rec.Count
	d.PeriodKey = rec.PeriodKey
	d.Remaining = remaining(d.Ceiling, rec.Count)
	t.observer.ObserveDecision(d)

	return d, nil
}

func (t *Tracker) decide(tier string, usage Usage) Decision {
	ceiling := t.limits.Ceiling(tier)

	d := Decision{
		Allowed:   true,
		Tier:      tier,
		Count:     usage.Count,
		Ceiling:   ceiling,
		PeriodKey: usage.PeriodKey,
		ResetAt:   usage.PeriodKey.ResetAt(),
		Degraded:  usage.Degraded,
	}

	if ceiling.Bounded() && usage.Count >= int64(ceiling) {
		d.Allowed = false
		d.Remaining = 0
	}

	return d
}

// gives back the generation d consumed, used when it failed upstream. a charge
// the store never confirmed is dropped from the outage count instead. charges
// from an earlier period are not refunded
func (t *Tracker) Refund(ctx context.Context, accountID string, d Decision) (UsageRecord, error) {
	if accountID == "" {
		return UsageRecord{}, ErrInvalidAccount
	}

	if !d.Allowed {
		return UsageRecord{}, ErrNothingToRefund
	}

	if d.PeriodKey != t.CurrentPeriodKey() {
		return UsageRecord{}, ErrStalePeriod
	}

	if !d.Recorded {
		t.pending.add(accountID, d.PeriodKey, -1)
		return UsageRecord{PeriodKey: d.PeriodKey, Count: max(d.Count-1, 0)}, nil
	}

	rec, err := t.increment(ctx, accountID, d.PeriodKey, -1)
	if err != nil {
		t.observer.ObserveStoreError("refund")
		return UsageRecord{}, fmt.Errorf("failed to refund usage: %w", err)
	}

	t.cache.Save(accountID, rec)
	return rec, nil
}

// zeroes the account's counter for the current period
func (t *Tracker) Reset(ctx context.Context, accountID string) (UsageRecord, error) {
	if accountID == "" {
		return UsageRecord{}, ErrInvalidAccount
	}

	rec := zeroRecord(t.CurrentPeriodKey())

	sctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if err := t.store.Set(sctx, accountID, rec); err != nil {
		t.observer.ObserveStoreError("set")
		return UsageRecord{}, fmt.Errorf("failed to reset usage: %w", err)
	}

	t.pending.clear(accountID)
	t.cache.Save(accountID, rec)
	return rec, nil
}

// called after the remote store incremented the counter on its own. the cached
// value for the account is discarded so the next read goes to the store
func (t *Tracker) RecordExternalIncrement(_ context.Context, accountID string) {
	if accountID == "" {
		return
	}

	t.cache.Forget(accountID)
}

func (t *Tracker) increment(ctx context.Context, accountID string, period PeriodKey, delta int64) (UsageRecord, error) {
	sctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if inc, ok := t.store.(Incrementer); ok {
		rec, err := inc.Increment(sctx, accountID, period, delta)
		if err != nil {
			return UsageRecord{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}

		return rec, nil
	}

	// read-modify-write for stores without an atomic primitive
	rec, ok, err := t.store.Get(sctx, accountID)
	if err != nil && !errors.Is(err, ErrMalformedRecord) {
		return UsageRecord{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if err != nil || !ok || !rec.Valid() || rec.PeriodKey != period {
		rec = zeroRecord(period)
	}

	rec.Count = max(rec.Count+delta, 0)

	if err := t.store.Set(sctx, accountID, rec); err != nil {
		return UsageRecord{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return rec, nil
}

func (t *Tracker) storeFailed(op, accountID string, err error) {
	t.observer.ObserveStoreError(op)
	logger.WarnErr(err, "quota store operation failed, continuing degraded",
		"op", op,
		"account_id", accountID,
	)
}

func remaining(c Ceiling, count int64) int64 {
	if !c.Bounded() {
		return -1
	}

	return max(int64(c)-count, 0)
}
