package quota

import "sync"

// generations allowed while the store was unreachable, per account. they count
// against the ceiling until a later increment writes them through
type pendingLedger struct {
	mu      sync.Mutex
	entries map[string]pendingEntry
}

type pendingEntry struct {
	period PeriodKey
	n      int64
}

func newPendingLedger() *pendingLedger {
	return &pendingLedger{entries: make(map[string]pendingEntry)}
}

// unconfirmed generations for the account in period. entries of other periods are dropped
func (l *pendingLedger) count(accountID string, period PeriodKey) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.current(accountID, period)
}

// removes and returns the account's unconfirmed generations in period
func (l *pendingLedger) take(accountID string, period PeriodKey) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.current(accountID, period)
	delete(l.entries, accountID)

	return n
}

func (l *pendingLedger) add(accountID string, period PeriodKey, n int64) {
	if n == 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	total := max(l.current(accountID, period)+n, 0)
	if total == 0 {
		delete(l.entries, accountID)
		return
	}

	l.entries[accountID] = pendingEntry{period: period, n: total}
}

func (l *pendingLedger) clear(accountID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, accountID)
}

// caller holds mu
func (l *pendingLedger) current(accountID string, period PeriodKey) int64 {
	e, ok := l.entries[accountID]
	if !ok {
		return 0
	}

	if e.period != period {
		delete(l.entries, accountID)
		return 0
	}

	return e.n
}
