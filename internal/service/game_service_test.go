package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/moodlog/internal/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGameCompleteMemoryReward(t *testing.T) {
	gdb := setupServiceTestDB(t)
	inv := &recordingInvalidator{}
	svc := NewGameService(gdb, NewAchievementService(gdb, 30), inv, nil)

	result, err := svc.Complete(context.Background(), 1, GameMemory, 5, "g-1", testToday)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if result.CoinsAwarded != 40 {
		t.Fatalf("expected 40 coins for 5 moves, got %d", result.CoinsAwarded)
	}
	if result.Play.Score != 5 || result.Play.GameType != "memory" || result.Play.CoinsEarned != 40 {
		t.Fatalf("unexpected game play: %+v", result.Play)
	}
	if len(result.Unlocked) != 1 || result.Unlocked[0].Code != "first_game" {
		t.Fatalf("expected first_game unlock, got %+v", result.Unlocked)
	}
	// 40 + 10 (first_game)
	if result.Balance.CurrentBalance != 50 {
		t.Fatalf("expected balance 50, got %+v", result.Balance)
	}
	if len(inv.users) != 1 {
		t.Fatalf("expected one invalidation, got %v", inv.users)
	}
}

func TestGameCompleteBreathingFixedScore(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewGameService(gdb, nil, nil, nil)

	result, err := svc.Complete(context.Background(), 1, GameBreathing, 0, "", testToday)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if result.Play.Score != 5 || result.CoinsAwarded != 20 {
		t.Fatalf("unexpected breathing result: %+v", result)
	}
	if result.SubmissionID == "" {
		t.Fatal("expected generated submission id")
	}
}

func TestGameCompleteRejectsUnknownAndReplay(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewGameService(gdb, nil, nil, nil)
	ctx := context.Background()

	if _, err := svc.Complete(ctx, 1, "chess", 1, "x", testToday); !errors.Is(err, ErrInvalidGame) {
		t.Fatalf("expected ErrInvalidGame, got %v", err)
	}

	if _, err := svc.Complete(ctx, 1, GameRelaxation, 0, "dup", testToday); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if _, err := svc.Complete(ctx, 1, GameRelaxation, 0, "dup", testToday); !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}

	plays, err := svc.History(ctx, 1, 10)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(plays) != 1 {
		t.Fatalf("expected replay to roll back the game row, got %d plays", len(plays))
	}
}

func TestGameCompleteHugeMovesCreditsFloor(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewGameService(gdb, nil, nil, nil)

	result, err := svc.Complete(context.Background(), 1, GameMemory, math.MaxInt-(1<<40), "huge", testToday)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if result.CoinsAwarded != 10 || result.Play.CoinsEarned != 10 {
		t.Fatalf("expected floor reward 10, got %+v", result)
	}
	if result.Balance.TotalCoins != 10 || result.Balance.CurrentBalance != 10 {
		t.Fatalf("unexpected balance: %+v", result.Balance)
	}
}

func TestGameStatsCountsEveryPlay(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewGameService(gdb, nil, nil, nil)
	ctx := context.Background()

	stats, err := svc.Stats(ctx, 1)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.TotalPlayed != 0 || stats.TotalCoins != 0 {
		t.Fatalf("expected empty stats, got %+v", stats)
	}

	// 25 局超过一页，累计值仍需覆盖全部记录
	for i := 0; i < 25; i++ {
		if _, err := svc.Complete(ctx, 1, GameWorkplace, 0, fmt.Sprintf("w-%d", i), testToday); err != nil {
			t.Fatalf("Complete #%d returned error: %v", i, err)
		}
	}
	if _, err := svc.Complete(ctx, 2, GameRelaxation, 0, "other", testToday); err != nil {
		t.Fatalf("Complete for other user returned error: %v", err)
	}

	stats, err = svc.Stats(ctx, 1)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.TotalPlayed != 25 || stats.TotalCoins != 25*15 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	plays, err := svc.History(ctx, 1, 0)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(plays) != 20 {
		t.Fatalf("expected default page of 20, got %d", len(plays))
	}
}

func TestGameServiceFallsBackToGlobalLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	previous := logging.L()
	logging.SetGlobal(zap.New(core))
	t.Cleanup(func() { logging.SetGlobal(previous) })

	gdb := setupServiceTestDB(t)
	svc := NewGameService(gdb, nil, nil, nil)
	if _, err := svc.Complete(context.Background(), 1, GameMindfulness, 0, "logged", testToday); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}

	if logs.FilterMessage("game completed").Len() != 1 {
		t.Fatalf("expected completion to be logged through the global logger, got %v", logs.All())
	}
}
