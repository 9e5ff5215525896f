package service

import (
	"context"
	"testing"

	"github.com/moodlog/internal/db"
)

func TestAchievementListOrderedByReward(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewAchievementService(gdb, 30)

	board, err := svc.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if board.TotalCount != len(db.AchievementCatalog()) {
		t.Fatalf("expected %d achievements, got %d", len(db.AchievementCatalog()), board.TotalCount)
	}
	if board.UnlockedCount != 0 {
		t.Fatalf("expected nothing unlocked, got %d", board.UnlockedCount)
	}
	for i := 1; i < len(board.Achievements); i++ {
		if board.Achievements[i-1].CoinsReward < board.Achievements[i].CoinsReward {
			t.Fatalf("expected descending rewards, got %d before %d",
				board.Achievements[i-1].CoinsReward, board.Achievements[i].CoinsReward)
		}
	}
}

func TestAchievementEvaluateCoinsUnlockOnce(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewAchievementService(gdb, 30)
	ledger := NewLedgerService(gdb)
	ctx := context.Background()

	if _, err := ledger.Credit(ctx, Credit{UserID: 1, Amount: 100, Source: "test", SubmissionID: "seed"}); err != nil {
		t.Fatalf("Credit returned error: %v", err)
	}

	unlocked, err := svc.Evaluate(ctx, 1, testToday)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if len(unlocked) != 1 || unlocked[0].Code != "coins_100" {
		t.Fatalf("expected coins_100 unlock, got %+v", unlocked)
	}

	again, err := svc.Evaluate(ctx, 1, testToday)
	if err != nil {
		t.Fatalf("second Evaluate returned error: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no new unlocks, got %+v", again)
	}

	balance, _ := ledger.Balance(ctx, 1)
	if balance.TotalCoins != 120 {
		t.Fatalf("expected 100 + 20 reward, got %+v", balance)
	}

	board, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if board.UnlockedCount != 1 {
		t.Fatalf("expected one unlocked achievement, got %d", board.UnlockedCount)
	}
	for _, view := range board.Achievements {
		if view.Code == "coins_100" && (!view.Unlocked || view.UnlockedAt == nil) {
			t.Fatalf("expected coins_100 marked unlocked: %+v", view)
		}
	}
}

func TestAchievementRewardCascade(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewAchievementService(gdb, 30)
	ledger := NewLedgerService(gdb)
	ctx := context.Background()

	// 490 + 20 (coins_100) 跨过 500，下一轮解锁 coins_500
	if _, err := ledger.Credit(ctx, Credit{UserID: 1, Amount: 490, Source: "test", SubmissionID: "seed"}); err != nil {
		t.Fatalf("Credit returned error: %v", err)
	}
	unlocked, err := svc.Evaluate(ctx, 1, testToday)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if len(unlocked) != 2 {
		t.Fatalf("expected coins_100 and coins_500, got %+v", unlocked)
	}

	balance, _ := ledger.Balance(ctx, 1)
	if balance.TotalCoins != 560 {
		t.Fatalf("expected 490 + 20 + 50, got %+v", balance)
	}
}

func TestAchievementProgressAndStreakRules(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewAchievementService(gdb, 30)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		row := db.DailyCheckIn{UserID: 1, CheckInDate: daysAgo(testToday, i), Completed: true}
		if err := gdb.Create(&row).Error; err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	progress, err := svc.Progress(ctx, 1, testToday)
	if err != nil {
		t.Fatalf("Progress returned error: %v", err)
	}
	if progress.CompletedDays != 3 || progress.CurrentStreak != 3 {
		t.Fatalf("unexpected progress: %+v", progress)
	}

	unlocked, err := svc.Evaluate(ctx, 1, testToday)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	codes := make(map[string]bool)
	for _, item := range unlocked {
		codes[item.Code] = true
	}
	if !codes["first_full_day"] || !codes["streak_3"] {
		t.Fatalf("expected first_full_day and streak_3, got %v", codes)
	}
	if codes["streak_7"] {
		t.Fatal("streak_7 must stay locked")
	}
}
