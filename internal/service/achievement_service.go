package service

import (
	"context"
	"fmt"
	"time"

	"github.com/moodlog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AchievementService 读取成就墙并根据用户进度解锁成就
// 解锁记录只追加；首次解锁时按成就奖励入账，入账键由用户与成就 Code 决定，只会发放一次
type AchievementService struct {
	db           *gorm.DB
	streakWindow int
}

// AchievementView 成就墙中的一项
type AchievementView struct {
	ID          uint       `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	CoinsReward int        `json:"coins_reward"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

// AchievementBoard 成就墙汇总
type AchievementBoard struct {
	Achievements  []AchievementView `json:"achievements"`
	UnlockedCount int               `json:"unlocked_count"`
	TotalCount    int               `json:"total_count"`
	Balance       Balance           `json:"balance"`
}

// Progress 成就规则依赖的用户进度
type Progress struct {
	SectionsLogged int `json:"sections_logged"`
	CompletedDays  int `json:"completed_days"`
	CurrentStreak  int `json:"current_streak"`
	LifetimeCoins  int `json:"lifetime_coins"`
	GamesPlayed    int `json:"games_played"`
}

// NewAchievementService 构造 AchievementService
func NewAchievementService(gdb *gorm.DB, streakWindow int) *AchievementService {
	if streakWindow <= 0 {
		streakWindow = defaultStreakWindow
	}
	return &AchievementService{db: gdb, streakWindow: streakWindow}
}

// List 返回全部成就（按奖励降序）及当前用户的解锁状态
func (s *AchievementService) List(ctx context.Context, userID uint) (*AchievementBoard, error) {
	q := s.db.WithContext(ctx)

	var catalog []db.Achievement
	if err := q.Order("coins_reward DESC, id ASC").Find(&catalog).Error; err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}

	unlocked, err := unlockedAchievements(q, userID)
	if err != nil {
		return nil, err
	}

	balance, err := readBalance(q, userID)
	if err != nil {
		return nil, err
	}

	board := &AchievementBoard{
		Achievements: make([]AchievementView, 0, len(catalog)),
		TotalCount:   len(catalog),
		Balance:      balance,
	}
	for _, item := range catalog {
		view := AchievementView{
			ID:          item.ID,
			Code:        item.Code,
			Name:        item.Name,
			Description: item.Description,
			Icon:        item.Icon,
			CoinsReward: item.CoinsReward,
		}
		if at, ok := unlocked[item.ID]; ok {
			unlockedAt := at
			view.Unlocked = true
			view.UnlockedAt = &unlockedAt
			board.UnlockedCount++
		}
		board.Achievements = append(board.Achievements, view)
	}
	return board, nil
}

// Progress 汇总成就判定所需的计数
func (s *AchievementService) Progress(ctx context.Context, userID uint, today time.Time) (Progress, error) {
	q := s.db.WithContext(ctx)
	var progress Progress

	var sections int64
	if err := q.Model(&db.CheckInSection{}).Where("user_id = ?", userID).Count(&sections).Error; err != nil {
		return Progress{}, fmt.Errorf("count logged sections: %w", err)
	}
	progress.SectionsLogged = int(sections)

	completed, err := countCompleted(q, userID)
	if err != nil {
		return Progress{}, err
	}
	progress.CompletedDays = completed

	records, err := recentCheckIns(q, userID, s.streakWindow)
	if err != nil {
		return Progress{}, err
	}
	progress.CurrentStreak = CurrentStreak(records, today)

	var games int64
	if err := q.Model(&db.GamePlay{}).Where("user_id = ?", userID).Count(&games).Error; err != nil {
		return Progress{}, fmt.Errorf("count games: %w", err)
	}
	progress.GamesPlayed = int(games)

	balance, err := readBalance(q, userID)
	if err != nil {
		return Progress{}, err
	}
	progress.LifetimeCoins = balance.TotalCoins

	return progress, nil
}

// Evaluate 解锁所有已满足条件的成就并返回本次新解锁的项
// 成就奖励本身可能让金币类成就达标，因此循环直到没有新的解锁
func (s *AchievementService) Evaluate(ctx context.Context, userID uint, today time.Time) ([]db.Achievement, error) {
	var catalog []db.Achievement
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&catalog).Error; err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}

	var newly []db.Achievement
	for round := 0; round <= len(catalog); round++ {
		progress, err := s.Progress(ctx, userID, today)
		if err != nil {
			return nil, err
		}
		unlocked, err := unlockedAchievements(s.db.WithContext(ctx), userID)
		if err != nil {
			return nil, err
		}

		gained := 0
		for _, item := range catalog {
			if _, ok := unlocked[item.ID]; ok || !ruleMet(item, progress) {
				continue
			}
			fresh, err := s.unlock(ctx, userID, item, today)
			if err != nil {
				return nil, err
			}
			if fresh {
				newly = append(newly, item)
				gained++
			}
		}
		if gained == 0 {
			break
		}
	}
	return newly, nil
}

func (s *AchievementService) unlock(ctx context.Context, userID uint, item db.Achievement, at time.Time) (bool, error) {
	fresh := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := db.UserAchievement{UserID: userID, AchievementID: item.ID, UnlockedAt: at}
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).Create(&row)
		if result.Error != nil {
			return fmt.Errorf("unlock achievement %s: %w", item.Code, result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}
		fresh = true

		if item.CoinsReward <= 0 {
			return nil
		}
		_, err := creditTx(tx, Credit{
			UserID:       userID,
			Amount:       item.CoinsReward,
			Source:       SourceAchievement,
			SubmissionID: fmt.Sprintf("achievement:%d:%s", userID, item.Code),
		})
		return err
	})
	return fresh, err
}

func unlockedAchievements(q *gorm.DB, userID uint) (map[uint]time.Time, error) {
	var rows []db.UserAchievement
	if err := q.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list unlocked achievements: %w", err)
	}

	unlocked := make(map[uint]time.Time, len(rows))
	for _, row := range rows {
		unlocked[row.AchievementID] = row.UnlockedAt
	}
	return unlocked, nil
}

func ruleMet(item db.Achievement, progress Progress) bool {
	switch item.Rule {
	case db.RuleSectionsLogged:
		return progress.SectionsLogged >= item.Threshold
	case db.RuleCompletedDays:
		return progress.CompletedDays >= item.Threshold
	case db.RuleStreak:
		return progress.CurrentStreak >= item.Threshold
	case db.RuleLifetimeCoins:
		return progress.LifetimeCoins >= item.Threshold
	case db.RuleGamesPlayed:
		return progress.GamesPlayed >= item.Threshold
	default:
		return false
	}
}
