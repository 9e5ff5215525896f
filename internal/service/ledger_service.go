package service

import (
	"context"
	"fmt"

	"github.com/moodlog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerService 管理用户金币账户
// 入账通过单条 UPDATE ... SET x = x + ? 完成，并发提交不会丢失增量
// 每笔入账写一条 coin_transactions，submission_id 唯一，重放同一提交不会重复入账
type LedgerService struct {
	db *gorm.DB
}

// Balance 描述账户当前状态
type Balance struct {
	TotalCoins     int `json:"total_coins"`
	CurrentBalance int `json:"current_balance"`
}

// Credit 描述一次入账
type Credit struct {
	UserID       uint
	Amount       int
	Source       string
	SubmissionID string
}

// NewLedgerService 构造 LedgerService
func NewLedgerService(gdb *gorm.DB) *LedgerService {
	return &LedgerService{db: gdb}
}

// Credit 在独立事务中入账并返回入账后的余额
func (s *LedgerService) Credit(ctx context.Context, credit Credit) (Balance, error) {
	var balance Balance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		balance, err = creditTx(tx, credit)
		return err
	})
	return balance, err
}

// Balance 读取账户余额，账户不存在时创建空账户
func (s *LedgerService) Balance(ctx context.Context, userID uint) (Balance, error) {
	return readBalance(s.db.WithContext(ctx), userID)
}

// History 按时间倒序返回最近的入账流水
func (s *LedgerService) History(ctx context.Context, userID uint, limit int) ([]db.CoinTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var entries []db.CoinTransaction
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list coin transactions: %w", err)
	}
	return entries, nil
}

func creditTx(tx *gorm.DB, credit Credit) (Balance, error) {
	if credit.Amount <= 0 {
		return Balance{}, ErrInvalidAmount
	}
	if credit.SubmissionID == "" {
		return Balance{}, fmt.Errorf("%w: missing submission id", ErrInvalidSubmission)
	}

	entry := db.CoinTransaction{
		UserID:       credit.UserID,
		SubmissionID: credit.SubmissionID,
		Source:       credit.Source,
		Amount:       credit.Amount,
	}
	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "submission_id"}},
		DoNothing: true,
	}).Create(&entry)
	if result.Error != nil {
		return Balance{}, fmt.Errorf("record coin transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return Balance{}, ErrDuplicateSubmission
	}

	if err := ensureLedger(tx, credit.UserID); err != nil {
		return Balance{}, err
	}

	if err := tx.Model(&db.UserCoins{}).
		Where("user_id = ?", credit.UserID).
		Updates(map[string]interface{}{
			"total_coins":     gorm.Expr("total_coins + ?", credit.Amount),
			"current_balance": gorm.Expr("current_balance + ?", credit.Amount),
		}).Error; err != nil {
		return Balance{}, fmt.Errorf("credit coins: %w", err)
	}

	return readBalance(tx, credit.UserID)
}

func ensureLedger(tx *gorm.DB, userID uint) error {
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&db.UserCoins{UserID: userID}).Error; err != nil {
		return fmt.Errorf("ensure coin ledger: %w", err)
	}
	return nil
}

func readBalance(tx *gorm.DB, userID uint) (Balance, error) {
	if err := ensureLedger(tx, userID); err != nil {
		return Balance{}, err
	}

	var row db.UserCoins
	if err := tx.Where("user_id = ?", userID).First(&row).Error; err != nil {
		return Balance{}, fmt.Errorf("read coin ledger: %w", err)
	}
	return Balance{TotalCoins: row.TotalCoins, CurrentBalance: row.CurrentBalance}, nil
}

func transactionExists(tx *gorm.DB, submissionID string) (bool, error) {
	var count int64
	if err := tx.Model(&db.CoinTransaction{}).
		Where("submission_id = ?", submissionID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check submission: %w", err)
	}
	return count > 0, nil
}
