package service

import (
	"context"
	"testing"

	"github.com/moodlog/internal/db"
)

func record(daysBack int, completed bool) db.DailyCheckIn {
	return db.DailyCheckIn{CheckInDate: daysAgo(testToday, daysBack), Completed: completed}
}

func TestCurrentStreakConsecutiveDays(t *testing.T) {
	records := []db.DailyCheckIn{record(0, true), record(1, true), record(2, true)}
	if got := CurrentStreak(records, testToday); got != 3 {
		t.Fatalf("expected streak 3, got %d", got)
	}
}

func TestCurrentStreakGapBreaksRun(t *testing.T) {
	records := []db.DailyCheckIn{record(0, true), record(2, true)}
	if got := CurrentStreak(records, testToday); got != 1 {
		t.Fatalf("expected streak 1, got %d", got)
	}
}

func TestCurrentStreakTodayPending(t *testing.T) {
	// 当天未完成时从昨天开始计数
	records := []db.DailyCheckIn{record(0, false), record(1, true), record(2, true)}
	if got := CurrentStreak(records, testToday); got != 2 {
		t.Fatalf("expected streak 2, got %d", got)
	}

	records = []db.DailyCheckIn{record(1, true), record(2, true), record(3, true)}
	if got := CurrentStreak(records, testToday); got != 3 {
		t.Fatalf("expected streak 3 without today's record, got %d", got)
	}
}

func TestCurrentStreakIncompleteDayStops(t *testing.T) {
	records := []db.DailyCheckIn{record(0, true), record(1, false), record(2, true)}
	if got := CurrentStreak(records, testToday); got != 1 {
		t.Fatalf("expected streak 1, got %d", got)
	}
}

func TestCurrentStreakEmptyAndStale(t *testing.T) {
	if got := CurrentStreak(nil, testToday); got != 0 {
		t.Fatalf("expected 0 for no records, got %d", got)
	}
	records := []db.DailyCheckIn{record(3, true), record(4, true)}
	if got := CurrentStreak(records, testToday); got != 0 {
		t.Fatalf("expected 0 for a run ending before yesterday, got %d", got)
	}
}

func TestStreakServiceCapsAtWindow(t *testing.T) {
	gdb := setupServiceTestDB(t)
	for i := 0; i < 40; i++ {
		row := db.DailyCheckIn{UserID: 1, CheckInDate: daysAgo(testToday, i), Completed: true}
		if err := gdb.Create(&row).Error; err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	svc := NewStreakService(gdb, 30)
	got, err := svc.Current(context.Background(), 1, testToday)
	if err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if got != 30 {
		t.Fatalf("expected streak capped at 30, got %d", got)
	}

	week, err := svc.Week(context.Background(), 1, testToday)
	if err != nil {
		t.Fatalf("Week returned error: %v", err)
	}
	if len(week) != 7 || week[6].Date != "2024-05-10" || !week[6].Completed {
		t.Fatalf("unexpected week strip: %+v", week)
	}
}

func TestLongestStreak(t *testing.T) {
	records := []db.DailyCheckIn{
		record(0, true),
		record(2, true), record(3, true), record(4, true),
		record(6, false), record(7, true),
	}
	if got := LongestStreak(records); got != 3 {
		t.Fatalf("expected longest 3, got %d", got)
	}
	if got := LongestStreak(nil); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestWeekStripMarksMissingDays(t *testing.T) {
	strip := WeekStrip([]db.DailyCheckIn{record(0, true), record(3, false)}, testToday)
	if len(strip) != 7 {
		t.Fatalf("expected 7 days, got %d", len(strip))
	}
	if strip[0].Date != testToday.AddDate(0, 0, -6).Format(DateFormat) {
		t.Fatalf("expected strip to start six days ago, got %s", strip[0].Date)
	}
	if !strip[3].HasRecord || strip[3].Completed {
		t.Fatalf("expected day -3 to have an incomplete record: %+v", strip[3])
	}
	if strip[4].HasRecord {
		t.Fatalf("expected day -2 to be empty: %+v", strip[4])
	}
	if !strip[6].Completed {
		t.Fatalf("expected today completed: %+v", strip[6])
	}
}
