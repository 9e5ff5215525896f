package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moodlog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileService 管理用户资料与引导问卷
type ProfileService struct {
	db       *gorm.DB
	validate *validator.Validate
}

// OnboardingInput 引导问卷
type OnboardingInput struct {
	DisplayName    string `json:"display_name" validate:"max=120"`
	Age            *int   `json:"age" validate:"omitempty,min=1,max=120"`
	Gender         string `json:"gender" validate:"max=40"`
	Diagnosis      string `json:"diagnosis" validate:"max=200"`
	MonitoringDays int    `json:"monitoring_days" validate:"required,min=1,max=365"`
}

// NewProfileService 构造 ProfileService
func NewProfileService(gdb *gorm.DB) *ProfileService {
	return &ProfileService{db: gdb, validate: validator.New()}
}

// Get 读取用户资料，不存在时创建空资料
func (s *ProfileService) Get(ctx context.Context, userID uint) (*db.Profile, error) {
	return ensureProfile(s.db.WithContext(ctx), userID)
}

// UpdateDisplayName 修改展示名
func (s *ProfileService) UpdateDisplayName(ctx context.Context, userID uint, name string) (*db.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: display_name is required", ErrInvalidSubmission)
	}
	if len([]rune(name)) > 120 {
		return nil, fmt.Errorf("%w: display_name is too long", ErrInvalidSubmission)
	}

	q := s.db.WithContext(ctx)
	profile, err := ensureProfile(q, userID)
	if err != nil {
		return nil, err
	}
	if err := q.Model(profile).Update("display_name", name).Error; err != nil {
		return nil, fmt.Errorf("update display name: %w", err)
	}
	profile.DisplayName = name
	return profile, nil
}

// CompleteOnboarding 保存问卷并以 today 作为监测起始日
func (s *ProfileService) CompleteOnboarding(ctx context.Context, userID uint, input OnboardingInput, today time.Time) (*db.Profile, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}

	q := s.db.WithContext(ctx)
	profile, err := ensureProfile(q, userID)
	if err != nil {
		return nil, err
	}

	start := normalizeToDate(today)
	profile.Age = input.Age
	profile.Gender = strings.TrimSpace(input.Gender)
	profile.Diagnosis = strings.TrimSpace(input.Diagnosis)
	profile.MonitoringDays = input.MonitoringDays
	profile.MonitoringStartDate = &start
	profile.OnboardingCompleted = true
	if name := strings.TrimSpace(input.DisplayName); name != "" {
		profile.DisplayName = name
	}

	if err := q.Save(profile).Error; err != nil {
		return nil, fmt.Errorf("save onboarding: %w", err)
	}
	return profile, nil
}

// SkipOnboarding 跳过问卷，仅标记完成
func (s *ProfileService) SkipOnboarding(ctx context.Context, userID uint) (*db.Profile, error) {
	q := s.db.WithContext(ctx)
	profile, err := ensureProfile(q, userID)
	if err != nil {
		return nil, err
	}
	if err := q.Model(profile).Update("onboarding_completed", true).Error; err != nil {
		return nil, fmt.Errorf("skip onboarding: %w", err)
	}
	profile.OnboardingCompleted = true
	return profile, nil
}

func ensureProfile(q *gorm.DB, userID uint) (*db.Profile, error) {
	if userID == 0 {
		return nil, ErrProfileNotFound
	}

	if err := q.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&db.Profile{UserID: userID}).Error; err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}

	var profile db.Profile
	if err := q.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}
