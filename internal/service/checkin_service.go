package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moodlog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CheckInService 负责每日打卡记录的查找与创建
// 同一用户同一天只有一条记录，由 (user_id, check_in_date) 唯一索引保证
type CheckInService struct {
	db       *gorm.DB
	required []Section
}

// CheckInDay 汇总某天的打卡记录与已提交分区
type CheckInDay struct {
	Record   db.DailyCheckIn
	Logged   []Section
	Missing  []Section
	Required []Section
}

// NewCheckInService 构造 CheckInService，required 为空时所有分区都是必填
func NewCheckInService(gdb *gorm.DB, required []Section) *CheckInService {
	if len(required) == 0 {
		required = Sections()
	}
	return &CheckInService{db: gdb, required: required}
}

// Required 返回判定当日完成所需的分区
func (s *CheckInService) Required() []Section {
	return append([]Section(nil), s.required...)
}

// GetOrCreate 幂等地取得用户某天的记录，不存在时以 completed=false、coins_earned=0 创建
func (s *CheckInService) GetOrCreate(ctx context.Context, userID uint, date time.Time) (*db.DailyCheckIn, error) {
	return getOrCreateCheckIn(s.db.WithContext(ctx), userID, date)
}

// Get 读取用户某天的记录
func (s *CheckInService) Get(ctx context.Context, userID uint, date time.Time) (*db.DailyCheckIn, error) {
	var record db.DailyCheckIn
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND check_in_date = ?", userID, normalizeToDate(date)).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCheckInNotFound
		}
		return nil, fmt.Errorf("get check-in: %w", err)
	}
	return &record, nil
}

// GetByID 按 ID 读取记录，并校验归属
func (s *CheckInService) GetByID(ctx context.Context, userID, id uint) (*db.DailyCheckIn, error) {
	var record db.DailyCheckIn
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCheckInNotFound
		}
		return nil, fmt.Errorf("get check-in: %w", err)
	}
	return &record, nil
}

// Recent 按日期倒序返回最近 limit 条记录
func (s *CheckInService) Recent(ctx context.Context, userID uint, limit int) ([]db.DailyCheckIn, error) {
	return recentCheckIns(s.db.WithContext(ctx), userID, limit)
}

// Between 返回闭区间内的记录，按日期升序
func (s *CheckInService) Between(ctx context.Context, userID uint, start, end time.Time) ([]db.DailyCheckIn, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("invalid range: end before start")
	}

	var records []db.DailyCheckIn
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("check_in_date BETWEEN ? AND ?", normalizeToDate(start), normalizeToDate(end)).
		Order("check_in_date ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	return records, nil
}

// CountCompleted 统计已完成的天数
func (s *CheckInService) CountCompleted(ctx context.Context, userID uint) (int, error) {
	return countCompleted(s.db.WithContext(ctx), userID)
}

// Day 返回某天的记录及分区完成情况；当天尚无记录时返回未落库的空记录
func (s *CheckInService) Day(ctx context.Context, userID uint, date time.Time) (*CheckInDay, error) {
	day := &CheckInDay{
		Record:   db.DailyCheckIn{UserID: userID, CheckInDate: normalizeToDate(date)},
		Required: s.Required(),
	}

	record, err := s.Get(ctx, userID, date)
	switch {
	case err == nil:
		day.Record = *record
		logged, err := loggedSections(s.db.WithContext(ctx), record.ID)
		if err != nil {
			return nil, err
		}
		day.Logged = logged
	case errors.Is(err, ErrCheckInNotFound):
	default:
		return nil, err
	}

	done := make(map[Section]struct{}, len(day.Logged))
	for _, section := range day.Logged {
		done[section] = struct{}{}
	}
	for _, section := range day.Required {
		if _, ok := done[section]; !ok {
			day.Missing = append(day.Missing, section)
		}
	}
	return day, nil
}

func getOrCreateCheckIn(tx *gorm.DB, userID uint, date time.Time) (*db.DailyCheckIn, error) {
	day := normalizeToDate(date)

	record := db.DailyCheckIn{UserID: userID, CheckInDate: day}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "check_in_date"}},
		DoNothing: true,
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create check-in: %w", err)
	}

	var loaded db.DailyCheckIn
	if err := tx.Where("user_id = ? AND check_in_date = ?", userID, day).First(&loaded).Error; err != nil {
		return nil, fmt.Errorf("reload check-in: %w", err)
	}
	return &loaded, nil
}

func recentCheckIns(tx *gorm.DB, userID uint, limit int) ([]db.DailyCheckIn, error) {
	if limit <= 0 {
		limit = 30
	}

	var records []db.DailyCheckIn
	if err := tx.Where("user_id = ?", userID).
		Order("check_in_date DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list recent check-ins: %w", err)
	}
	return records, nil
}

func countCompleted(tx *gorm.DB, userID uint) (int, error) {
	var count int64
	if err := tx.Model(&db.DailyCheckIn{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count completed check-ins: %w", err)
	}
	return int(count), nil
}

func loggedSections(tx *gorm.DB, checkInID uint) ([]Section, error) {
	var names []string
	if err := tx.Model(&db.CheckInSection{}).
		Where("check_in_id = ?", checkInID).
		Order("logged_at ASC, id ASC").
		Pluck("section", &names).Error; err != nil {
		return nil, fmt.Errorf("list logged sections: %w", err)
	}

	sections := make([]Section, 0, len(names))
	for _, name := range names {
		sections = append(sections, Section(name))
	}
	return sections, nil
}

// markSection 记录分区已提交，重复提交不新增行
func markSection(tx *gorm.DB, record *db.DailyCheckIn, section Section, at time.Time) error {
	row := db.CheckInSection{
		CheckInID: record.ID,
		UserID:    record.UserID,
		Section:   string(section),
		LoggedAt:  at,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "check_in_id"}, {Name: "section"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("mark section: %w", err)
	}
	return nil
}

// refreshCompletion 在必填分区全部记录后将记录置为完成，返回最新状态
func refreshCompletion(tx *gorm.DB, record *db.DailyCheckIn, required []Section) (bool, error) {
	if record.Completed {
		return true, nil
	}

	names := make([]string, 0, len(required))
	for _, section := range required {
		names = append(names, string(section))
	}

	var logged int64
	if err := tx.Model(&db.CheckInSection{}).
		Where("check_in_id = ? AND section IN ?", record.ID, names).
		Count(&logged).Error; err != nil {
		return false, fmt.Errorf("count logged sections: %w", err)
	}
	if int(logged) < len(names) {
		return false, nil
	}

	if err := tx.Model(&db.DailyCheckIn{}).
		Where("id = ?", record.ID).
		Update("completed", true).Error; err != nil {
		return false, fmt.Errorf("complete check-in: %w", err)
	}
	record.Completed = true
	return true, nil
}

func addCheckInCoins(tx *gorm.DB, record *db.DailyCheckIn, amount int) error {
	if err := tx.Model(&db.DailyCheckIn{}).
		Where("id = ?", record.ID).
		UpdateColumn("coins_earned", gorm.Expr("coins_earned + ?", amount)).Error; err != nil {
		return fmt.Errorf("add check-in coins: %w", err)
	}
	record.CoinsEarned += amount
	return nil
}
