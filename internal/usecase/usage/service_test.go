package usage

import (
	"context"
	"testing"
	"time"

	domusage "github.com/kailas-cloud/reliefqa/internal/domain/usage"
)

// --- Mock ---

type mockBudgetReader struct {
	dailyLimit       int64
	monthlyLimit     int64
	dailyUsed        int64
	monthlyUsed      int64
	remainingDaily   int64
	remainingMonthly int64
}

func (m *mockBudgetReader) DailyLimit() int64       { return m.dailyLimit }
func (m *mockBudgetReader) MonthlyLimit() int64     { return m.monthlyLimit }
func (m *mockBudgetReader) DailyUsed() int64        { return m.dailyUsed }
func (m *mockBudgetReader) MonthlyUsed() int64      { return m.monthlyUsed }
func (m *mockBudgetReader) RemainingDaily() int64   { return m.remainingDaily }
func (m *mockBudgetReader) RemainingMonthly() int64 { return m.remainingMonthly }

var fixedNow = time.Date(2024, 2, 10, 15, 30, 0, 0, time.UTC)

func newTestService(br BudgetReader) *Service {
	s := New(br)
	s.now = func() time.Time { return fixedNow }
	return s
}

// --- Tests ---

func TestGetReport_DailyPeriod(t *testing.T) {
	svc := newTestService(&mockBudgetReader{
		dailyLimit:       10000,
		dailyUsed:        3000,
		remainingDaily:   7000,
		monthlyLimit:     100000,
		monthlyUsed:      50000,
		remainingMonthly: 50000,
	})
	r := svc.GetReport(context.Background(), domusage.PeriodDay)

	if r.Period != domusage.PeriodDay {
		t.Errorf("period = %q", r.Period)
	}
	dayStart := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	if r.PeriodStart != dayStart.UnixMilli() || r.PeriodEnd != dayStart.Add(24*time.Hour).UnixMilli() {
		t.Errorf("bounds = %d..%d", r.PeriodStart, r.PeriodEnd)
	}
	if r.TokensUsed != 3000 || r.Budget.Limit != 10000 || r.Budget.Remaining != 7000 {
		t.Errorf("unexpected report: %+v", r)
	}
	if r.Budget.Exhausted {
		t.Error("budget should not be exhausted")
	}
	if r.Budget.ResetsAt != r.PeriodEnd {
		t.Errorf("resets_at = %d, want period end", r.Budget.ResetsAt)
	}
}

func TestGetReport_MonthlyPeriod(t *testing.T) {
	svc := newTestService(&mockBudgetReader{
		monthlyLimit:     100000,
		monthlyUsed:      100000,
		remainingMonthly: 0,
	})
	r := svc.GetReport(context.Background(), domusage.PeriodMonth)

	if r.Period != domusage.PeriodMonth {
		t.Errorf("period = %q", r.Period)
	}
	if r.PeriodStart != time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).UnixMilli() {
		t.Errorf("start = %d", r.PeriodStart)
	}
	if r.PeriodEnd != time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli() {
		t.Errorf("end = %d", r.PeriodEnd)
	}
	if !r.Budget.Exhausted || r.TokensUsed != 100000 {
		t.Errorf("unexpected report: %+v", r)
	}
}

func TestGetReport_NoBudget(t *testing.T) {
	r := newTestService(nil).GetReport(context.Background(), domusage.PeriodDay)

	if r.Budget.Limit != 0 || r.Budget.Remaining != -1 || r.Budget.Exhausted || r.TokensUsed != 0 {
		t.Errorf("unexpected unlimited report: %+v", r)
	}
}

func TestGetReport_UnknownPeriodFallsBackToDay(t *testing.T) {
	r := newTestService(nil).GetReport(context.Background(), "total")
	if r.Period != domusage.PeriodDay {
		t.Errorf("period = %q, want day", r.Period)
	}
}
