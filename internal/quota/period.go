package quota

import "time"

const periodLayout = "2006-01"

// returns the period containing t, in UTC
func PeriodOf(t time.Time) PeriodKey {
	return PeriodKey(t.UTC().Format(periodLayout))
}

func (p PeriodKey) Valid() bool {
	_, err := time.Parse(periodLayout, string(p))
	return err == nil
}

// first instant of the month after p; zero time for an invalid key
func (p PeriodKey) ResetAt() time.Time {
	start, err := time.Parse(periodLayout, string(p))
	if err != nil {
		return time.Time{}
	}

	return start.AddDate(0, 1, 0)
}

func (p PeriodKey) String() string {
	return string(p)
}

// a zero record for the given period
func zeroRecord(p PeriodKey) UsageRecord {
	return UsageRecord{PeriodKey: p, Count: 0}
}

// reports whether the record has a parseable period and a non-negative count
func (r UsageRecord) Valid() bool {
	return r.PeriodKey.Valid() && r.Count >= 0
}
