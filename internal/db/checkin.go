package db

import (
	"time"

	"gorm.io/gorm"
)

// DailyCheckIn 每个用户每个自然日一条
// UserID + CheckInDate 采用唯一索引，并发 find-or-create 也只会落一行
// CoinsEarned 汇总当日各分区发放的金币，Completed 在必填分区全部记录后置为 true
type DailyCheckIn struct {
	gorm.Model
	UserID      uint      `gorm:"not null;index:idx_daily_check_in_unique,unique"`
	CheckInDate time.Time `gorm:"not null;index:idx_daily_check_in_unique,unique"`
	Completed   bool      `gorm:"not null;default:false"`
	CoinsEarned int       `gorm:"not null;default:0"`
}

// TableName 固定表名
func (DailyCheckIn) TableName() string {
	return "daily_check_ins"
}

// CheckInSection 记录某天已提交的分区，CheckInID + Section 唯一
type CheckInSection struct {
	ID        uint      `gorm:"primaryKey"`
	CheckInID uint      `gorm:"not null;index:idx_check_in_section_unique,unique"`
	UserID    uint      `gorm:"not null;index"`
	Section   string    `gorm:"size:32;not null;index:idx_check_in_section_unique,unique"`
	LoggedAt  time.Time `gorm:"not null"`
}
