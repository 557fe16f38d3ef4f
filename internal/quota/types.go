package quota

import (
	"context"
	"errors"
	"time"
)

// identifies a calendar month, formatted YYYY-MM
type PeriodKey string

// the monthly usage counter for one account. json names match the
// legacy account document ("usage.month", "usage.count")
type UsageRecord struct {
	PeriodKey PeriodKey `json:"month"`
	Count     int64     `json:"count"`
}

// a usage record plus whether it came from a degraded (cache or zero) fallback
type Usage struct {
	UsageRecord
	Degraded bool `json:"degraded"`
}

// maximum generations per period; Unbounded means no ceiling
type Ceiling int64

const Unbounded Ceiling = -1

// outcome of a TryConsume call
type Decision struct {
	Allowed   bool
	Tier      string
	Count     int64 // new count when allowed, current count when denied
	Ceiling   Ceiling
	Remaining int64 // -1 when unbounded
	PeriodKey PeriodKey
	ResetAt   time.Time
	Degraded  bool // store was unreachable, counter will reconcile later
	Recorded  bool // the store confirmed the increment
}

var (
	ErrStoreUnavailable = errors.New("quota store unavailable")
	ErrMalformedRecord  = errors.New("malformed usage record")
	ErrInvalidAccount   = errors.New("account id is required")
	ErrReadOnlyStore    = errors.New("quota store is read-only")
	ErrStalePeriod      = errors.New("usage period has ended")
	ErrNothingToRefund  = errors.New("decision did not consume a generation")
)

// the durable owner of usage records
type Store interface {
	Get(ctx context.Context, accountID string) (UsageRecord, bool, error)
	Set(ctx context.Context, accountID string, rec UsageRecord) error
}

// implemented by stores with a server-side atomic counter. Increment resets the
// counter when the stored period differs from period, then adds delta (floored at zero)
type Incrementer interface {
	Increment(ctx context.Context, accountID string, period PeriodKey, delta int64) (UsageRecord, error)
}

// the local shadow of usage records
type Cache interface {
	Load(accountID string) (UsageRecord, bool)
	Save(accountID string, rec UsageRecord)
	Forget(accountID string)
}

// receives decision and store-failure events, implemented by the metrics package
type Observer interface {
	ObserveDecision(d Decision)
	ObserveStoreError(op string)
}

type nopObserver struct{}

func (nopObserver) ObserveDecision(Decision) {}
func (nopObserver) ObserveStoreError(string) {}
