package service

import (
	"context"
	"sort"
	"time"

	"github.com/moodlog/internal/db"
	"gorm.io/gorm"
)

const defaultStreakWindow = 30

// StreakService 按需计算连续打卡天数
type StreakService struct {
	db     *gorm.DB
	window int
}

// DayStatus 描述某一天是否有记录、是否完成
type DayStatus struct {
	Date      string `json:"date"`
	HasRecord bool   `json:"has_record"`
	Completed bool   `json:"completed"`
}

// NewStreakService 构造 StreakService，window 为扫描的最近记录条数
func NewStreakService(gdb *gorm.DB, window int) *StreakService {
	if window <= 0 {
		window = defaultStreakWindow
	}
	return &StreakService{db: gdb, window: window}
}

// Current 返回截至 today 的连续完成天数
func (s *StreakService) Current(ctx context.Context, userID uint, today time.Time) (int, error) {
	records, err := recentCheckIns(s.db.WithContext(ctx), userID, s.window)
	if err != nil {
		return 0, err
	}
	return CurrentStreak(records, today), nil
}

// Week 返回截至 today 的最近 7 天完成情况，按日期升序
func (s *StreakService) Week(ctx context.Context, userID uint, today time.Time) ([]DayStatus, error) {
	records, err := recentCheckIns(s.db.WithContext(ctx), userID, 7)
	if err != nil {
		return nil, err
	}
	return WeekStrip(records, today), nil
}

// CurrentStreak 从 today 向前逐日检查：期望日期存在记录且已完成才计数，遇到缺口或未完成即停止
// today 尚未完成时从昨天开始，当天未结束不打断连胜
// 结果不超过 records 的条数，调用方通过窗口大小限制扫描范围
func CurrentStreak(records []db.DailyCheckIn, today time.Time) int {
	completed := completedDays(records)

	start := normalizeToDate(today)
	if _, ok := completed[start.Format(DateFormat)]; !ok {
		start = start.AddDate(0, 0, -1)
	}

	streak := 0
	for i := 0; i < len(records); i++ {
		expected := start.AddDate(0, 0, -i).Format(DateFormat)
		if _, ok := completed[expected]; !ok {
			break
		}
		streak++
	}
	return streak
}

// LongestStreak 返回记录中最长的连续完成天数
func LongestStreak(records []db.DailyCheckIn) int {
	days := make([]time.Time, 0, len(records))
	for _, record := range records {
		if record.Completed {
			days = append(days, normalizeToDate(record.CheckInDate))
		}
	}
	if len(days) == 0 {
		return 0
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, current := 1, 1
	for i := 1; i < len(days); i++ {
		delta := int(days[i].Sub(days[i-1]).Hours() / 24)
		switch delta {
		case 0:
			continue
		case 1:
			current++
			if current > longest {
				longest = current
			}
		default:
			current = 1
		}
	}
	return longest
}

// WeekStrip 生成截至 today 的 7 天状态
func WeekStrip(records []db.DailyCheckIn, today time.Time) []DayStatus {
	byDay := make(map[string]db.DailyCheckIn, len(records))
	for _, record := range records {
		byDay[normalizeToDate(record.CheckInDate).Format(DateFormat)] = record
	}

	strip := make([]DayStatus, 0, 7)
	for i := 6; i >= 0; i-- {
		key := daysAgo(today, i).Format(DateFormat)
		record, ok := byDay[key]
		strip = append(strip, DayStatus{Date: key, HasRecord: ok, Completed: ok && record.Completed})
	}
	return strip
}

func completedDays(records []db.DailyCheckIn) map[string]struct{} {
	days := make(map[string]struct{}, len(records))
	for _, record := range records {
		if record.Completed {
			days[normalizeToDate(record.CheckInDate).Format(DateFormat)] = struct{}{}
		}
	}
	return days
}
