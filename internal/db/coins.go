package db

import (
	"time"

	"gorm.io/gorm"
)

// UserCoins 金币账户：TotalCoins 为累计获得，CurrentBalance 为当前余额
// 两个字段只通过 SQL 自增更新，不做读-改-写
type UserCoins struct {
	ID             uint `gorm:"primaryKey"`
	UserID         uint `gorm:"uniqueIndex;not null"`
	TotalCoins     int  `gorm:"not null;default:0"`
	CurrentBalance int  `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CoinTransaction 每次入账的流水，SubmissionID 唯一保证同一次提交只入账一次
type CoinTransaction struct {
	ID           uint      `gorm:"primaryKey"`
	UserID       uint      `gorm:"not null;index"`
	SubmissionID string    `gorm:"size:120;uniqueIndex;not null"`
	Source       string    `gorm:"size:64;not null"`
	Amount       int       `gorm:"not null"`
	CreatedAt    time.Time `gorm:"index"`
}

// GamePlay 小游戏完成记录
type GamePlay struct {
	gorm.Model
	UserID      uint   `gorm:"not null;index"`
	GameType    string `gorm:"size:32;not null;index"`
	Score       int
	CoinsEarned int
}

// TableName 固定表名
func (GamePlay) TableName() string {
	return "games_played"
}
