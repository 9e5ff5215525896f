package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/moodlog/internal/db"
)

func TestLedgerCreditAccumulates(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewLedgerService(gdb)
	ctx := context.Background()

	amounts := []int{20, 10, 25, 10}
	var last Balance
	for i, amount := range amounts {
		balance, err := svc.Credit(ctx, Credit{UserID: 7, Amount: amount, Source: "test", SubmissionID: fmt.Sprintf("s-%d", i)})
		if err != nil {
			t.Fatalf("Credit returned error: %v", err)
		}
		last = balance
	}

	if last.TotalCoins != 65 || last.CurrentBalance != 65 {
		t.Fatalf("expected 65/65, got %+v", last)
	}

	balance, err := svc.Balance(ctx, 7)
	if err != nil {
		t.Fatalf("Balance returned error: %v", err)
	}
	if balance != last {
		t.Fatalf("expected stored balance %+v, got %+v", last, balance)
	}

	history, err := svc.History(ctx, 7, 10)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(history) != len(amounts) {
		t.Fatalf("expected %d transactions, got %d", len(amounts), len(history))
	}
}

func TestLedgerCreditRejectsReplayAndBadAmounts(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewLedgerService(gdb)
	ctx := context.Background()

	if _, err := svc.Credit(ctx, Credit{UserID: 1, Amount: 20, Source: "test", SubmissionID: "same"}); err != nil {
		t.Fatalf("Credit returned error: %v", err)
	}
	if _, err := svc.Credit(ctx, Credit{UserID: 1, Amount: 20, Source: "test", SubmissionID: "same"}); !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}
	if _, err := svc.Credit(ctx, Credit{UserID: 1, Amount: 0, Source: "test", SubmissionID: "zero"}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.Credit(ctx, Credit{UserID: 1, Amount: 5, Source: "test"}); !errors.Is(err, ErrInvalidSubmission) {
		t.Fatalf("expected ErrInvalidSubmission for missing id, got %v", err)
	}

	balance, _ := svc.Balance(ctx, 1)
	if balance.CurrentBalance != 20 {
		t.Fatalf("replayed credit must not change balance, got %+v", balance)
	}
}

func TestLedgerConcurrentCreditsSum(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewLedgerService(gdb)
	ctx := context.Background()

	const workers = 12
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.Credit(ctx, Credit{UserID: 3, Amount: i + 1, Source: "test", SubmissionID: fmt.Sprintf("c-%d", i)}); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Credit returned error: %v", err)
	}

	want := workers * (workers + 1) / 2
	var row db.UserCoins
	if err := gdb.Where("user_id = ?", 3).First(&row).Error; err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	if row.TotalCoins != want || row.CurrentBalance != want {
		t.Fatalf("expected %d coins, got %+v", want, row)
	}
}
