package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 成就规则类型
const (
	RuleSectionsLogged = "sections_logged"
	RuleCompletedDays  = "completed_days"
	RuleStreak         = "streak"
	RuleLifetimeCoins  = "lifetime_coins"
	RuleGamesPlayed    = "games_played"
)

// Achievement 静态成就目录，Code 唯一；Rule + Threshold 描述解锁条件
type Achievement struct {
	ID          uint   `gorm:"primaryKey"`
	Code        string `gorm:"size:64;uniqueIndex;not null"`
	Name        string `gorm:"size:120;not null"`
	Description string `gorm:"size:255"`
	Icon        string `gorm:"size:32"`
	CoinsReward int    `gorm:"not null;default:0"`
	Rule        string `gorm:"size:32;not null"`
	Threshold   int    `gorm:"not null"`
}

// UserAchievement 解锁记录只追加，UserID + AchievementID 唯一
type UserAchievement struct {
	ID            uint        `gorm:"primaryKey"`
	UserID        uint        `gorm:"not null;index:idx_user_achievement_unique,unique"`
	AchievementID uint        `gorm:"not null;index:idx_user_achievement_unique,unique"`
	Achievement   Achievement `gorm:"constraint:OnDelete:CASCADE"`
	UnlockedAt    time.Time   `gorm:"not null"`
}

// AchievementCatalog 返回内置成就目录
func AchievementCatalog() []Achievement {
	return []Achievement{
		{Code: "first_check_in", Name: "第一步", Description: "完成第一次分区记录", Icon: "sprout", CoinsReward: 10, Rule: RuleSectionsLogged, Threshold: 1},
		{Code: "first_full_day", Name: "完整的一天", Description: "完成一整天的打卡", Icon: "sun", CoinsReward: 25, Rule: RuleCompletedDays, Threshold: 1},
		{Code: "streak_3", Name: "三日连胜", Description: "连续 3 天完成打卡", Icon: "flame", CoinsReward: 30, Rule: RuleStreak, Threshold: 3},
		{Code: "streak_7", Name: "一周坚持", Description: "连续 7 天完成打卡", Icon: "calendar", CoinsReward: 70, Rule: RuleStreak, Threshold: 7},
		{Code: "streak_30", Name: "月度守护", Description: "连续 30 天完成打卡", Icon: "trophy", CoinsReward: 300, Rule: RuleStreak, Threshold: 30},
		{Code: "coins_100", Name: "小有积蓄", Description: "累计获得 100 金币", Icon: "coin", CoinsReward: 20, Rule: RuleLifetimeCoins, Threshold: 100},
		{Code: "coins_500", Name: "金币收藏家", Description: "累计获得 500 金币", Icon: "gem", CoinsReward: 50, Rule: RuleLifetimeCoins, Threshold: 500},
		{Code: "first_game", Name: "放松一下", Description: "完成第一次小游戏", Icon: "gamepad", CoinsReward: 10, Rule: RuleGamesPlayed, Threshold: 1},
		{Code: "games_10", Name: "游戏达人", Description: "完成 10 次小游戏", Icon: "star", CoinsReward: 40, Rule: RuleGamesPlayed, Threshold: 10},
	}
}

// SeedAchievements 幂等写入成就目录，已存在的 Code 保持不变
func SeedAchievements(gdb *gorm.DB) error {
	catalog := AchievementCatalog()
	if err := gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&catalog).Error; err != nil {
		return fmt.Errorf("seed achievements: %w", err)
	}
	return nil
}
