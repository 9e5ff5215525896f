package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/moodlog/internal/db"
	"gorm.io/gorm"
)

type recordingInvalidator struct {
	users []uint
}

func (r *recordingInvalidator) Invalidate(_ context.Context, userID uint) {
	r.users = append(r.users, userID)
}

func newTestSubmissionService(gdb *gorm.DB, required []Section, inv CacheInvalidator) *SubmissionService {
	checkIns := NewCheckInService(gdb, required)
	return NewSubmissionService(gdb, checkIns, NewSectionWriter(gdb), NewAchievementService(gdb, 30), inv, nil)
}

func sleepSubmission(id string) SectionSubmission {
	hours := 7.5
	return SectionSubmission{
		SubmissionID: id,
		Section:      SectionSleep,
		Sleep:        &SleepInput{HoursSlept: &hours, SleepQuality: 8},
	}
}

func TestSubmitSleepCreditsAndUnlocksFirstCheckIn(t *testing.T) {
	gdb := setupServiceTestDB(t)
	inv := &recordingInvalidator{}
	svc := newTestSubmissionService(gdb, nil, inv)

	result, err := svc.Submit(context.Background(), 1, sleepSubmission("sleep-1"), testToday)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	if result.CoinsAwarded != 20 {
		t.Fatalf("expected 20 coins, got %d", result.CoinsAwarded)
	}
	if result.CheckIn.CoinsEarned != 20 || result.DayCompleted {
		t.Fatalf("unexpected check-in state: %+v completed=%v", result.CheckIn, result.DayCompleted)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(result.Entries))
	}
	if len(result.Unlocked) != 1 || result.Unlocked[0].Code != "first_check_in" {
		t.Fatalf("expected first_check_in unlock, got %+v", result.Unlocked)
	}
	// 20 分区奖励 + 10 成就奖励
	if result.Balance.CurrentBalance != 30 || result.Balance.TotalCoins != 30 {
		t.Fatalf("expected balance 30, got %+v", result.Balance)
	}
	if len(inv.users) != 1 || inv.users[0] != 1 {
		t.Fatalf("expected cache invalidation for user 1, got %v", inv.users)
	}
}

func TestSubmitMedicationsSingleCredit(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewSubmissionService(gdb, NewCheckInService(gdb, nil), NewSectionWriter(gdb), nil, nil, nil)

	sub := SectionSubmission{
		SubmissionID: "meds-1",
		Section:      SectionMedications,
		Medications: []MedicationInput{
			{MedicationName: "Lithium", Taken: true},
			{MedicationName: "Sertraline", Taken: false},
			{MedicationName: ""},
		},
	}
	result, err := svc.Submit(context.Background(), 4, sub, testToday)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}
	if result.Balance.CurrentBalance != 10 {
		t.Fatalf("expected a single 10-coin credit, got %+v", result.Balance)
	}

	var txCount int64
	gdb.Model(&db.CoinTransaction{}).Where("user_id = ?", 4).Count(&txCount)
	if txCount != 1 {
		t.Fatalf("expected 1 ledger transaction, got %d", txCount)
	}
}

func TestSubmitReplayIsNoop(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := newTestSubmissionService(gdb, nil, nil)
	ctx := context.Background()

	first, err := svc.Submit(ctx, 1, sleepSubmission("replay"), testToday)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	if _, err := svc.Submit(ctx, 1, sleepSubmission("replay"), testToday); !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}

	var logs int64
	gdb.Model(&db.SleepLog{}).Where("user_id = ?", 1).Count(&logs)
	if logs != 1 {
		t.Fatalf("expected replay to leave 1 sleep log, got %d", logs)
	}
	balance, _ := NewLedgerService(gdb).Balance(ctx, 1)
	if balance != first.Balance {
		t.Fatalf("expected balance unchanged after replay, got %+v want %+v", balance, first.Balance)
	}

	// 同一幂等键在另一个用户下互不影响
	if _, err := svc.Submit(ctx, 2, sleepSubmission("replay"), testToday); err != nil {
		t.Fatalf("expected other user to accept the same key, got %v", err)
	}
}

func TestSubmitInvalidWritesNothing(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := newTestSubmissionService(gdb, nil, nil)

	_, err := svc.Submit(context.Background(), 1, SectionSubmission{Section: SectionMood, Mood: &MoodInput{MoodScore: 0}}, testToday)
	if !errors.Is(err, ErrInvalidSubmission) {
		t.Fatalf("expected ErrInvalidSubmission, got %v", err)
	}

	var records, txs int64
	gdb.Model(&db.DailyCheckIn{}).Count(&records)
	gdb.Model(&db.CoinTransaction{}).Count(&txs)
	if records != 0 || txs != 0 {
		t.Fatalf("expected no writes, got %d records and %d transactions", records, txs)
	}
}

func TestSubmitCompletesDayWhenRequiredSectionsLogged(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := newTestSubmissionService(gdb, []Section{SectionSleep, SectionMood}, nil)
	ctx := context.Background()

	first, err := svc.Submit(ctx, 1, sleepSubmission("a"), testToday)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if first.DayCompleted {
		t.Fatal("expected day incomplete after one section")
	}

	second, err := svc.Submit(ctx, 1, SectionSubmission{
		SubmissionID: "b",
		Section:      SectionMood,
		Mood:         &MoodInput{MoodScore: 6},
	}, testToday.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if !second.DayCompleted || !second.CheckIn.Completed {
		t.Fatal("expected day completed after all required sections")
	}
	if second.CheckIn.ID != first.CheckIn.ID {
		t.Fatal("expected both sections on the same daily record")
	}
	if second.CheckIn.CoinsEarned != 40 {
		t.Fatalf("expected 40 coins on the record, got %d", second.CheckIn.CoinsEarned)
	}
	if len(second.Unlocked) != 1 || second.Unlocked[0].Code != "first_full_day" {
		t.Fatalf("expected first_full_day unlock, got %+v", second.Unlocked)
	}
	// 20 + 10 (first_check_in) + 20 + 25 (first_full_day)
	if second.Balance.CurrentBalance != 75 {
		t.Fatalf("expected balance 75, got %+v", second.Balance)
	}
}

func TestSubmitGeneratesSubmissionID(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := newTestSubmissionService(gdb, nil, nil)

	result, err := svc.Submit(context.Background(), 1, sleepSubmission(""), testToday)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if result.SubmissionID == "" {
		t.Fatal("expected generated submission id")
	}

	var tx db.CoinTransaction
	if err := gdb.Where("user_id = ? AND source = ?", 1, "section:sleep").First(&tx).Error; err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	if tx.SubmissionID != ledgerKeyFor(1, result.SubmissionID) {
		t.Fatalf("unexpected ledger key %q", tx.SubmissionID)
	}
}
