package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/moodlog/internal/cache"
	"github.com/moodlog/internal/db"
	"gorm.io/gorm"
)

const statisticsWindowDays = 30

// StatisticsService 计算最近 30 天的统计汇总与洞察
// 汇总结果按 用户+日期 缓存在 Redis；写入类操作通过 Invalidate 清理。金币余额不进入缓存
type StatisticsService struct {
	db    *gorm.DB
	cache *cache.Cache
}

// LogCounts 统计窗口内各类日志条数
type LogCounts struct {
	CheckIns      int `json:"check_ins"`
	CompletedDays int `json:"completed_days"`
	Mood          int `json:"mood"`
	Sleep         int `json:"sleep"`
	Medications   int `json:"medications"`
	Concentration int `json:"concentration"`
}

// MedicationStat 单个药物的服用情况
type MedicationStat struct {
	Name       string `json:"name"`
	Taken      int    `json:"taken"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

// MedicationAdherence 服药依从性
type MedicationAdherence struct {
	Taken         int              `json:"taken"`
	Missed        int              `json:"missed"`
	Percentage    int              `json:"percentage"`
	PerMedication []MedicationStat `json:"per_medication"`
}

// WeeklyDay 最近 7 天中的一天，无数据的字段为 nil
type WeeklyDay struct {
	Date       string   `json:"date"`
	MoodScore  *int     `json:"mood_score"`
	HoursSlept *float64 `json:"hours_slept"`
	MedsTaken  *int     `json:"meds_taken"`
	MedsTotal  *int     `json:"meds_total"`
}

// StatisticsSummary 统计页数据
type StatisticsSummary struct {
	RangeStart    string              `json:"range_start"`
	RangeEnd      string              `json:"range_end"`
	Counts        LogCounts           `json:"counts"`
	AverageMood   *float64            `json:"average_mood"`
	AverageSleep  *float64            `json:"average_sleep"`
	Medication    MedicationAdherence `json:"medication"`
	Weekly        []WeeklyDay         `json:"weekly"`
	LongestStreak int                 `json:"longest_streak"`
	Insights      Insights            `json:"insights"`
}

// NewStatisticsService 构造 StatisticsService；c 可为未启用的缓存
func NewStatisticsService(gdb *gorm.DB, c *cache.Cache) *StatisticsService {
	return &StatisticsService{db: gdb, cache: c}
}

// Summary 返回截至 today 的统计汇总，优先读缓存
func (s *StatisticsService) Summary(ctx context.Context, userID uint, today time.Time) (*StatisticsSummary, error) {
	key := statisticsKey(userID, today)

	var cached StatisticsSummary
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	summary, err := s.compute(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, key, summary)
	return summary, nil
}

// Invalidate 清理用户全部统计缓存
func (s *StatisticsService) Invalidate(ctx context.Context, userID uint) {
	if s == nil {
		return
	}
	s.cache.InvalidateByPrefix(ctx, statisticsPrefix(userID))
}

func (s *StatisticsService) compute(ctx context.Context, userID uint, today time.Time) (*StatisticsSummary, error) {
	q := s.db.WithContext(ctx)
	end := normalizeToDate(today)
	since := end.AddDate(0, 0, -statisticsWindowDays)

	var mood []moodPoint
	if err := datedLogs(q, "mood_logs", "mood_logs.mood_score", userID, since).Scan(&mood).Error; err != nil {
		return nil, fmt.Errorf("load mood logs: %w", err)
	}
	var sleep []sleepPoint
	if err := datedLogs(q, "sleep_logs", "sleep_logs.hours_slept, sleep_logs.sleep_quality", userID, since).Scan(&sleep).Error; err != nil {
		return nil, fmt.Errorf("load sleep logs: %w", err)
	}
	var meds []medicationPoint
	if err := datedLogs(q, "medication_logs", "medication_logs.medication_name, medication_logs.taken", userID, since).Scan(&meds).Error; err != nil {
		return nil, fmt.Errorf("load medication logs: %w", err)
	}
	var concentration []concentrationPoint
	if err := datedLogs(q, "concentration_logs", "concentration_logs.concentration_level", userID, since).Scan(&concentration).Error; err != nil {
		return nil, fmt.Errorf("load concentration logs: %w", err)
	}

	var records []db.DailyCheckIn
	if err := q.Where("user_id = ? AND check_in_date >= ?", userID, since).
		Order("check_in_date ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load check-ins: %w", err)
	}

	summary := &StatisticsSummary{
		RangeStart:    since.Format(DateFormat),
		RangeEnd:      end.Format(DateFormat),
		Medication:    medicationAdherence(meds),
		Weekly:        weeklyOverview(mood, sleep, meds, end),
		LongestStreak: LongestStreak(records),
		Insights:      buildInsights(mood, sleep, meds, concentration),
	}

	summary.Counts = LogCounts{
		CheckIns:      len(records),
		Mood:          len(mood),
		Sleep:         len(sleep),
		Medications:   len(meds),
		Concentration: len(concentration),
	}
	for _, record := range records {
		if record.Completed {
			summary.Counts.CompletedDays++
		}
	}

	if len(mood) > 0 {
		var sum float64
		for _, m := range mood {
			sum += float64(m.MoodScore)
		}
		avg := round1(sum / float64(len(mood)))
		summary.AverageMood = &avg
	}
	if len(sleep) > 0 {
		var sum float64
		for _, sl := range sleep {
			sum += sl.HoursSlept
		}
		avg := round1(sum / float64(len(sleep)))
		summary.AverageSleep = &avg
	}

	return summary, nil
}

// datedLogs 将日志与其打卡记录关联，带出 check_in_date，并按写入顺序排列
func datedLogs(q *gorm.DB, table, columns string, userID uint, since time.Time) *gorm.DB {
	return q.Table(table).
		Select(fmt.Sprintf("daily_check_ins.check_in_date AS check_in_date, %s", columns)).
		Joins(fmt.Sprintf("JOIN daily_check_ins ON daily_check_ins.id = %s.check_in_id", table)).
		Where(fmt.Sprintf("%s.user_id = ?", table), userID).
		Where("daily_check_ins.check_in_date >= ?", since).
		Order(fmt.Sprintf("%s.created_at ASC, %s.id ASC", table, table))
}

func medicationAdherence(meds []medicationPoint) MedicationAdherence {
	adherence := MedicationAdherence{PerMedication: []MedicationStat{}}
	if len(meds) == 0 {
		return adherence
	}

	groups := make(map[string]*MedicationStat)
	for _, m := range meds {
		stat, ok := groups[m.MedicationName]
		if !ok {
			stat = &MedicationStat{Name: m.MedicationName}
			groups[m.MedicationName] = stat
		}
		stat.Total++
		if m.Taken {
			stat.Taken++
			adherence.Taken++
		}
	}
	adherence.Missed = len(meds) - adherence.Taken
	adherence.Percentage = percentage(adherence.Taken, len(meds))

	for _, stat := range groups {
		stat.Percentage = percentage(stat.Taken, stat.Total)
		adherence.PerMedication = append(adherence.PerMedication, *stat)
	}
	sort.Slice(adherence.PerMedication, func(i, j int) bool {
		return adherence.PerMedication[i].Name < adherence.PerMedication[j].Name
	})
	return adherence
}

func weeklyOverview(mood []moodPoint, sleep []sleepPoint, meds []medicationPoint, today time.Time) []WeeklyDay {
	days := make([]WeeklyDay, 0, 7)
	for i := 6; i >= 0; i-- {
		key := daysAgo(today, i).Format(DateFormat)
		day := WeeklyDay{Date: key}

		for _, m := range mood {
			if dateKey(m.CheckInDate) == key {
				score := m.MoodScore
				day.MoodScore = &score
				break
			}
		}
		for _, sl := range sleep {
			if dateKey(sl.CheckInDate) == key {
				hours := sl.HoursSlept
				day.HoursSlept = &hours
				break
			}
		}

		taken, total := 0, 0
		for _, m := range meds {
			if dateKey(m.CheckInDate) != key {
				continue
			}
			total++
			if m.Taken {
				taken++
			}
		}
		if total > 0 {
			day.MedsTaken = &taken
			day.MedsTotal = &total
		}

		days = append(days, day)
	}
	return days
}

func percentage(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

func statisticsPrefix(userID uint) string {
	return fmt.Sprintf("stats:%d:", userID)
}

func statisticsKey(userID uint, today time.Time) string {
	return statisticsPrefix(userID) + normalizeToDate(today).Format(DateFormat)
}
