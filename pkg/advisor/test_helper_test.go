package advisor

import (
	"strings"
	"testing"
	"time"
)

func assertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", msg, err)
	}
}

func assertContains(t *testing.T, s, substr, msg string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("%s: expected %q to contain %q", msg, s, substr)
	}
}

func assertNotContains(t *testing.T, s, substr, msg string) {
	t.Helper()
	if strings.Contains(s, substr) {
		t.Errorf("%s: expected %q not to contain %q", msg, s, substr)
	}
}

func amountPtr(v int64) *Amount {
	return AmountPtr(NewAmountFromInt(v))
}

// completeProfile returns a fully populated moderate investor.
func completeProfile(age int) *FinancialProfile {
	return &FinancialProfile{
		Age:                  IntPtr(age),
		IncomeRange:          Income50KTo75K,
		RiskTolerance:        RiskModerate,
		InvestmentExperience: ExperienceIntermediate,
		FinancialGoals:       []FinancialGoal{GoalRetirement, GoalWealthBuilding},
		EmploymentStatus:     EmployedFullTime,
		MaritalStatus:        MaritalSingle,
		TimeHorizon:          HorizonLong,
	}
}

// fixedClock returns a clock that advances by step on every call.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	current := start.Add(-step)
	return func() time.Time {
		current = current.Add(step)
		return current
	}
}
