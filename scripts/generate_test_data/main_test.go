package main

import (
	"context"
	"testing"
	"time"

	"github.com/moodlog/internal/db"
	"github.com/moodlog/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file:demo-seed?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return gdb
}

func TestSeedDemoDataBuildsHistory(t *testing.T) {
	gdb := setupSeedTestDB(t)
	ctx := context.Background()
	today := time.Date(2024, 5, 21, 12, 0, 0, 0, time.UTC)

	summary, err := seedDemoData(ctx, gdb, demoDays, today)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	// 第 4、11、18 天留空
	if summary.days != 18 || summary.sections != 18*9 || summary.games != 6 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	completed, err := service.NewCheckInService(gdb, nil).CountCompleted(ctx, summary.userID)
	if err != nil {
		t.Fatalf("count completed: %v", err)
	}
	if completed != 18 {
		t.Fatalf("expected 18 completed days, got %d", completed)
	}

	streak, err := service.NewStreakService(gdb, 0).Current(ctx, summary.userID, today)
	if err != nil {
		t.Fatalf("streak: %v", err)
	}
	if streak != 4 {
		t.Fatalf("expected streak 4, got %d", streak)
	}

	board, err := service.NewAchievementService(gdb, 0).List(ctx, summary.userID)
	if err != nil {
		t.Fatalf("list achievements: %v", err)
	}
	unlocked := map[string]bool{}
	for _, item := range board.Achievements {
		unlocked[item.Code] = item.Unlocked
	}
	for _, code := range []string{"first_check_in", "first_full_day", "streak_3", "first_game", "coins_500"} {
		if !unlocked[code] {
			t.Fatalf("expected %s unlocked", code)
		}
	}

	again, err := seedDemoData(ctx, gdb, demoDays, today)
	if err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	if again.userID != summary.userID || again.sections != 0 {
		t.Fatalf("expected second run to skip, got %+v", again)
	}
}
