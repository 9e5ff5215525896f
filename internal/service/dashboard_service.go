package service

import (
	"context"
	"math"
	"time"

	"gorm.io/gorm"
)

// defaultMonitoringDays 资料中未设置监测天数时的完成度分母
const defaultMonitoringDays = 14

// DashboardService 汇总首页数据：余额、连胜、完成度、当日分区与最近 7 天
type DashboardService struct {
	db       *gorm.DB
	checkIns *CheckInService
	streaks  *StreakService
}

// Dashboard 首页数据
type Dashboard struct {
	Balance              Balance     `json:"balance"`
	CurrentStreak        int         `json:"current_streak"`
	TotalCheckIns        int         `json:"total_check_ins"`
	MonitoringDays       int         `json:"monitoring_days"`
	CompletionPercentage int         `json:"completion_percentage"`
	Today                *CheckInDay `json:"-"`
	Week                 []DayStatus `json:"week"`
	DisplayName          string      `json:"display_name"`
	OnboardingCompleted  bool        `json:"onboarding_completed"`
}

// NewDashboardService 构造 DashboardService
func NewDashboardService(gdb *gorm.DB, checkIns *CheckInService, streaks *StreakService) *DashboardService {
	return &DashboardService{db: gdb, checkIns: checkIns, streaks: streaks}
}

// Overview 返回 today 视角的首页数据
func (s *DashboardService) Overview(ctx context.Context, userID uint, today time.Time) (*Dashboard, error) {
	q := s.db.WithContext(ctx)

	profile, err := ensureProfile(q, userID)
	if err != nil {
		return nil, err
	}
	balance, err := readBalance(q, userID)
	if err != nil {
		return nil, err
	}
	streak, err := s.streaks.Current(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	total, err := s.checkIns.CountCompleted(ctx, userID)
	if err != nil {
		return nil, err
	}
	day, err := s.checkIns.Day(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	week, err := s.streaks.Week(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Balance:              balance,
		CurrentStreak:        streak,
		TotalCheckIns:        total,
		MonitoringDays:       profile.MonitoringDays,
		CompletionPercentage: CompletionPercentage(total, profile.MonitoringDays),
		Today:                day,
		Week:                 week,
		DisplayName:          profile.DisplayName,
		OnboardingCompleted:  profile.OnboardingCompleted,
	}, nil
}

// CompletionPercentage 已完成天数占监测计划的百分比，上限 100
func CompletionPercentage(completed, monitoringDays int) int {
	if completed <= 0 {
		return 0
	}
	if monitoringDays <= 0 {
		monitoringDays = defaultMonitoringDays
	}
	return min(100, int(math.Round(float64(completed)/float64(monitoringDays)*100)))
}
