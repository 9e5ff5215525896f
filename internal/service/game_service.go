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

// GameService 记录小游戏完成并发放奖励
type GameService struct {
	db           *gorm.DB
	achievements *AchievementService
	invalidator  CacheInvalidator
	logger       *zap.Logger
}

// GameResult 小游戏完成结果
type GameResult struct {
	SubmissionID string
	Play         db.GamePlay
	CoinsAwarded int
	Balance      Balance
	Unlocked     []db.Achievement
}

// GameStats 小游戏累计数据
type GameStats struct {
	TotalPlayed int64
	TotalCoins  int64
}

// NewGameService 构造 GameService
func NewGameService(gdb *gorm.DB, achievements *AchievementService, invalidator CacheInvalidator, logger *zap.Logger) *GameService {
	if logger == nil {
		logger = logging.L()
	}
	return &GameService{db: gdb, achievements: achievements, invalidator: invalidator, logger: logger}
}

// Complete 保存一次游戏记录并入账；记忆游戏的 score 为翻牌步数
func (s *GameService) Complete(ctx context.Context, userID uint, game GameType, score int, submissionID string, now time.Time) (*GameResult, error) {
	amount, ok := GameReward(game, score)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidGame, game)
	}
	if submissionID == "" {
		submissionID = uuid.NewString()
	}

	result := &GameResult{SubmissionID: submissionID, CoinsAwarded: amount}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		play := db.GamePlay{
			UserID:      userID,
			GameType:    string(game),
			Score:       GameScore(game, score),
			CoinsEarned: amount,
		}
		if err := tx.Create(&play).Error; err != nil {
			return fmt.Errorf("record game: %w", err)
		}

		balance, err := creditTx(tx, Credit{
			UserID:       userID,
			Amount:       amount,
			Source:       SourceGamePrefix + string(game),
			SubmissionID: ledgerKeyFor(userID, submissionID),
		})
		if err != nil {
			return err
		}

		result.Play = play
		result.Balance = balance
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateSubmission) {
			return nil, err
		}
		s.logger.Error("game completion failed", zap.Uint("user_id", userID), zap.String("game", string(game)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("game completed", zap.Uint("user_id", userID), zap.String("game", string(game)), zap.Int("coins", amount))
	afterWrite(ctx, s.db, s.achievements, s.invalidator, s.logger, userID, now, &result.Unlocked, &result.Balance)
	return result, nil
}

// History 按时间倒序返回最近的游戏记录
func (s *GameService) History(ctx context.Context, userID uint, limit int) ([]db.GamePlay, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}

	var plays []db.GamePlay
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&plays).Error; err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return plays, nil
}

// Stats 统计用户累计游戏局数与游戏所得金币
func (s *GameService) Stats(ctx context.Context, userID uint) (GameStats, error) {
	var stats GameStats
	if err := s.db.WithContext(ctx).
		Model(&db.GamePlay{}).
		Select("COUNT(*) AS total_played, COALESCE(SUM(coins_earned), 0) AS total_coins").
		Where("user_id = ?", userID).
		Scan(&stats).Error; err != nil {
		return GameStats{}, fmt.Errorf("game stats: %w", err)
	}
	return stats, nil
}
