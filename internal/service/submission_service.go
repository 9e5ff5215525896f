package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/moodlog/internal/db"
	"github.com/moodlog/internal/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CacheInvalidator 在用户数据变化后清理派生缓存
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID uint)
}

// SubmissionService 将一次分区提交作为整体处理：
// 取当日记录 -> 写日志 -> 标记分区 -> 计算奖励 -> 入账 -> 判定当日完成，全部在同一事务中
type SubmissionService struct {
	db           *gorm.DB
	checkIns     *CheckInService
	writer       *SectionWriter
	achievements *AchievementService
	invalidator  CacheInvalidator
	logger       *zap.Logger
}

// SubmissionResult 返回给客户端的提交结果
type SubmissionResult struct {
	SubmissionID string
	Section      Section
	CheckIn      db.DailyCheckIn
	Entries      []interface{}
	CoinsAwarded int
	Balance      Balance
	DayCompleted bool
	Unlocked     []db.Achievement
}

// NewSubmissionService 构造 SubmissionService；invalidator 与 logger 可为空
func NewSubmissionService(gdb *gorm.DB, checkIns *CheckInService, writer *SectionWriter, achievements *AchievementService, invalidator CacheInvalidator, logger *zap.Logger) *SubmissionService {
	if logger == nil {
		logger = logging.L()
	}
	return &SubmissionService{
		db:           gdb,
		checkIns:     checkIns,
		writer:       writer,
		achievements: achievements,
		invalidator:  invalidator,
		logger:       logger,
	}
}

// Submit 处理一次分区提交。任一步失败整体回滚；重放已入账的 SubmissionID 返回 ErrDuplicateSubmission
func (s *SubmissionService) Submit(ctx context.Context, userID uint, sub SectionSubmission, now time.Time) (*SubmissionResult, error) {
	if err := s.writer.Validate(sub); err != nil {
		return nil, err
	}
	if sub.SubmissionID == "" {
		sub.SubmissionID = uuid.NewString()
	}

	amount, _ := SectionReward(sub.Section)
	ledgerKey := ledgerKeyFor(userID, sub.SubmissionID)
	result := &SubmissionResult{SubmissionID: sub.SubmissionID, Section: sub.Section, CoinsAwarded: amount}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seen, err := transactionExists(tx, ledgerKey)
		if err != nil {
			return err
		}
		if seen {
			return ErrDuplicateSubmission
		}

		record, err := getOrCreateCheckIn(tx, userID, now)
		if err != nil {
			return err
		}

		entries, err := s.writer.Append(tx, record, sub, now)
		if err != nil {
			return err
		}

		if err := markSection(tx, record, sub.Section, now); err != nil {
			return err
		}
		if err := addCheckInCoins(tx, record, amount); err != nil {
			return err
		}

		balance, err := creditTx(tx, Credit{
			UserID:       userID,
			Amount:       amount,
			Source:       SourceSectionPrefix + string(sub.Section),
			SubmissionID: ledgerKey,
		})
		if err != nil {
			return err
		}

		completed, err := refreshCompletion(tx, record, s.checkIns.Required())
		if err != nil {
			return err
		}

		result.CheckIn = *record
		result.Entries = entries
		result.Balance = balance
		result.DayCompleted = completed
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateSubmission) || errors.Is(err, ErrInvalidSubmission) {
			s.logger.Info("section submission rejected",
				zap.Uint("user_id", userID),
				zap.String("section", string(sub.Section)),
				zap.String("submission_id", sub.SubmissionID),
				zap.Error(err))
			return nil, err
		}
		s.logger.Error("section submission failed",
			zap.Uint("user_id", userID),
			zap.String("section", string(sub.Section)),
			zap.String("submission_id", sub.SubmissionID),
			zap.Error(err))
		return nil, fmt.Errorf("submit %s: %w", sub.Section, err)
	}

	s.logger.Info("section submitted",
		zap.Uint("user_id", userID),
		zap.String("section", string(sub.Section)),
		zap.Int("coins", amount),
		zap.Bool("day_completed", result.DayCompleted))

	afterWrite(ctx, s.db, s.achievements, s.invalidator, s.logger, userID, now, &result.Unlocked, &result.Balance)
	return result, nil
}

// afterWrite 清理缓存并评估成就；成就奖励入账后刷新余额。失败只记录日志，不影响已提交的结果
func afterWrite(ctx context.Context, gdb *gorm.DB, achievements *AchievementService, invalidator CacheInvalidator, logger *zap.Logger, userID uint, now time.Time, unlocked *[]db.Achievement, balance *Balance) {
	if invalidator != nil {
		invalidator.Invalidate(ctx, userID)
	}
	if achievements == nil {
		return
	}

	newly, err := achievements.Evaluate(ctx, userID, now)
	if err != nil {
		logger.Warn("achievement evaluation failed", zap.Uint("user_id", userID), zap.Error(err))
		return
	}
	*unlocked = newly
	if len(newly) == 0 {
		return
	}

	refreshed, err := readBalance(gdb.WithContext(ctx), userID)
	if err != nil {
		logger.Warn("refresh balance failed", zap.Uint("user_id", userID), zap.Error(err))
		return
	}
	*balance = refreshed
}

// ledgerKeyFor 按用户隔离客户端提供的幂等键
func ledgerKeyFor(userID uint, submissionID string) string {
	return fmt.Sprintf("u%d:%s", userID, submissionID)
}
