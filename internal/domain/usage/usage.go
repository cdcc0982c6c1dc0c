// Package usage describes language model token consumption.
package usage

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod maps a query value to a Period. Empty means day.
func ParsePeriod(s string) (Period, bool) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, true
	case PeriodMonth:
		return PeriodMonth, true
	default:
		return "", false
	}
}

// Budget is a token budget snapshot. A zero limit means unlimited.
type Budget struct {
	Limit     int64
	Remaining int64 // -1 when unlimited
	Exhausted bool
	ResetsAt  int64 // unix millis
}

// Report is the LLM usage of one period.
type Report struct {
	Period      Period
	PeriodStart int64 // unix millis
	PeriodEnd   int64 // unix millis
	TokensUsed  int64
	Budget      Budget
}
