package service

import (
	"context"
	"testing"
)

func TestCompletionPercentage(t *testing.T) {
	cases := []struct {
		completed, days, want int
	}{
		{0, 14, 0},
		{7, 14, 50},
		// 未设置监测天数时按 14 天计，同样取整
		{1, 0, 7},
		{3, 0, 21},
		{3, 7, 43},
		{30, 14, 100},
		{-1, 10, 0},
	}
	for _, tc := range cases {
		if got := CompletionPercentage(tc.completed, tc.days); got != tc.want {
			t.Fatalf("CompletionPercentage(%d, %d) = %d; want %d", tc.completed, tc.days, got, tc.want)
		}
	}
}

func TestDashboardOverview(t *testing.T) {
	gdb := setupServiceTestDB(t)
	checkIns := NewCheckInService(gdb, []Section{SectionSleep})
	dashboard := NewDashboardService(gdb, checkIns, NewStreakService(gdb, 30))
	submissions := NewSubmissionService(gdb, checkIns, NewSectionWriter(gdb), nil, nil, nil)
	ctx := context.Background()

	if _, err := NewProfileService(gdb).CompleteOnboarding(ctx, 1, OnboardingInput{DisplayName: "Kai", MonitoringDays: 10}, testToday); err != nil {
		t.Fatalf("CompleteOnboarding returned error: %v", err)
	}

	for i := 2; i >= 0; i-- {
		sub := sleepSubmission("")
		if _, err := submissions.Submit(ctx, 1, sub, daysAgo(testToday, i)); err != nil {
			t.Fatalf("Submit returned error: %v", err)
		}
	}

	overview, err := dashboard.Overview(ctx, 1, testToday)
	if err != nil {
		t.Fatalf("Overview returned error: %v", err)
	}
	if overview.Balance.CurrentBalance != 60 {
		t.Fatalf("expected balance 60, got %+v", overview.Balance)
	}
	if overview.CurrentStreak != 3 || overview.TotalCheckIns != 3 {
		t.Fatalf("unexpected streak/total: %+v", overview)
	}
	if overview.CompletionPercentage != 30 || overview.MonitoringDays != 10 {
		t.Fatalf("unexpected completion: %+v", overview)
	}
	if overview.DisplayName != "Kai" || !overview.OnboardingCompleted {
		t.Fatalf("unexpected profile data: %+v", overview)
	}
	if overview.Today == nil || len(overview.Today.Missing) != 0 {
		t.Fatalf("expected today fully logged: %+v", overview.Today)
	}
	if len(overview.Week) != 7 || !overview.Week[6].Completed || overview.Week[3].HasRecord {
		t.Fatalf("unexpected week strip: %+v", overview.Week)
	}
}
