package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/moodlog/internal/db"
	"gorm.io/gorm"
)

const clockFormat = "15:04"

// SleepInput 睡眠分区；HoursSlept 缺省时由 BedTime/WakeTime 推算，跨午夜自动加一天
type SleepInput struct {
	HoursSlept   *float64 `json:"hours_slept" validate:"omitempty,gte=0,lte=24"`
	BedTime      string   `json:"bed_time" validate:"omitempty,datetime=15:04"`
	WakeTime     string   `json:"wake_time" validate:"omitempty,datetime=15:04"`
	SleepQuality int      `json:"sleep_quality" validate:"required,min=1,max=10"`
	Dreams       bool     `json:"dreams"`
	Nightmares   bool     `json:"nightmares"`
	Notes        string   `json:"notes" validate:"max=2000"`
}

// MoodInput 情绪分区
type MoodInput struct {
	MoodScore   int      `json:"mood_score" validate:"required,min=1,max=10"`
	Emotions    []string `json:"emotions" validate:"max=20,dive,max=40"`
	EnergyLevel int      `json:"energy_level" validate:"omitempty,min=1,max=10"`
	StressLevel int      `json:"stress_level" validate:"omitempty,min=1,max=10"`
	Notes       string   `json:"notes" validate:"max=2000"`
}

// AppetiteInput 食欲分区
type AppetiteInput struct {
	AppetiteLevel  int    `json:"appetite_level" validate:"required,min=1,max=10"`
	MealsCount     int    `json:"meals_count" validate:"gte=0,lte=20"`
	HydrationLevel int    `json:"hydration_level" validate:"omitempty,min=1,max=10"`
	Notes          string `json:"notes" validate:"max=2000"`
}

// MedicationInput 单条用药；名称为空的条目会被忽略
type MedicationInput struct {
	MedicationName string `json:"medication_name" validate:"max=120"`
	Dosage         string `json:"dosage" validate:"max=120"`
	Taken          bool   `json:"taken"`
	Notes          string `json:"notes" validate:"max=2000"`
}

// SubstanceInput 单条物质使用；类型为空的条目会被忽略
type SubstanceInput struct {
	SubstanceType string `json:"substance_type" validate:"max=120"`
	Amount        string `json:"amount" validate:"max=120"`
	TimeConsumed  string `json:"time_consumed" validate:"omitempty,datetime=15:04"`
	Notes         string `json:"notes" validate:"max=2000"`
}

// ThoughtInput 思维分区
type ThoughtInput struct {
	IntrusiveThoughts         bool   `json:"intrusive_thoughts"`
	RacingThoughts            bool   `json:"racing_thoughts"`
	NegativeThoughtsIntensity int    `json:"negative_thoughts_intensity" validate:"required,min=1,max=10"`
	SuicidalIdeation          bool   `json:"suicidal_ideation"`
	Notes                     string `json:"notes" validate:"max=2000"`
}

// ImpulseInput 冲动分区
type ImpulseInput struct {
	ImpulseControlLevel int      `json:"impulse_control_level" validate:"required,min=1,max=10"`
	ImpulseTypes        []string `json:"impulse_types" validate:"max=20,dive,max=40"`
	ActedOnImpulse      bool     `json:"acted_on_impulse"`
	Notes               string   `json:"notes" validate:"max=2000"`
}

// LibidoInput 性欲分区
type LibidoInput struct {
	LibidoLevel int    `json:"libido_level" validate:"required,min=1,max=10"`
	Notes       string `json:"notes" validate:"max=2000"`
}

// ConcentrationInput 专注力分区
type ConcentrationInput struct {
	ConcentrationLevel   int    `json:"concentration_level" validate:"required,min=1,max=10"`
	FocusDurationMinutes *int   `json:"focus_duration_minutes" validate:"omitempty,gte=0,lte=1440"`
	DistractionsCount    *int   `json:"distractions_count" validate:"omitempty,gte=0"`
	Notes                string `json:"notes" validate:"max=2000"`
}

// SectionSubmission 一次分区提交，Section 决定读取哪个负载字段
// SubmissionID 为空时由 SubmissionService 生成
type SectionSubmission struct {
	SubmissionID  string
	Section       Section
	Sleep         *SleepInput
	Mood          *MoodInput
	Appetite      *AppetiteInput
	Medications   []MedicationInput
	Substances    []SubstanceInput
	Thoughts      *ThoughtInput
	Impulses      *ImpulseInput
	Libido        *LibidoInput
	Concentration *ConcentrationInput
}

// SectionWriter 按分区写入日志条目，只做必填项与范围校验，不触发奖励
type SectionWriter struct {
	db       *gorm.DB
	validate *validator.Validate
	policy   *bluemonday.Policy
}

// NewSectionWriter 构造 SectionWriter
func NewSectionWriter(gdb *gorm.DB) *SectionWriter {
	return &SectionWriter{
		db:       gdb,
		validate: validator.New(),
		policy:   bluemonday.StrictPolicy(),
	}
}

// Validate 在写入前校验提交内容
func (w *SectionWriter) Validate(sub SectionSubmission) error {
	if _, ok := SectionReward(sub.Section); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidSection, sub.Section)
	}

	switch sub.Section {
	case SectionSleep:
		if sub.Sleep == nil {
			return missingPayload(sub.Section)
		}
		if err := w.check(sub.Sleep); err != nil {
			return err
		}
		if sub.Sleep.HoursSlept == nil && (sub.Sleep.BedTime == "" || sub.Sleep.WakeTime == "") {
			return fmt.Errorf("%w: hours_slept or bed_time/wake_time is required", ErrInvalidSubmission)
		}
		return nil
	case SectionMood:
		if sub.Mood == nil {
			return missingPayload(sub.Section)
		}
		return w.check(sub.Mood)
	case SectionAppetite:
		if sub.Appetite == nil {
			return missingPayload(sub.Section)
		}
		return w.check(sub.Appetite)
	case SectionMedications:
		kept := 0
		for i := range sub.Medications {
			if err := w.check(&sub.Medications[i]); err != nil {
				return err
			}
			if strings.TrimSpace(sub.Medications[i].MedicationName) != "" {
				kept++
			}
		}
		if kept == 0 {
			return fmt.Errorf("%w: at least one medication_name is required", ErrInvalidSubmission)
		}
		return nil
	case SectionSubstances:
		kept := 0
		for i := range sub.Substances {
			if err := w.check(&sub.Substances[i]); err != nil {
				return err
			}
			if strings.TrimSpace(sub.Substances[i].SubstanceType) != "" {
				kept++
			}
		}
		if kept == 0 {
			return fmt.Errorf("%w: at least one substance_type is required", ErrInvalidSubmission)
		}
		return nil
	case SectionThoughts:
		if sub.Thoughts == nil {
			return missingPayload(sub.Section)
		}
		return w.check(sub.Thoughts)
	case SectionImpulses:
		if sub.Impulses == nil {
			return missingPayload(sub.Section)
		}
		return w.check(sub.Impulses)
	case SectionLibido:
		if sub.Libido == nil {
			return missingPayload(sub.Section)
		}
		return w.check(sub.Libido)
	case SectionConcentration:
		if sub.Concentration == nil {
			return missingPayload(sub.Section)
		}
		return w.check(sub.Concentration)
	}
	return fmt.Errorf("%w: %s", ErrInvalidSection, sub.Section)
}

// Append 在 tx 中写入日志条目；多条目分区每个非空条目单独一行
func (w *SectionWriter) Append(tx *gorm.DB, record *db.DailyCheckIn, sub SectionSubmission, now time.Time) ([]interface{}, error) {
	if err := w.Validate(sub); err != nil {
		return nil, err
	}

	userID, checkInID := record.UserID, record.ID

	var rows []interface{}
	switch sub.Section {
	case SectionSleep:
		in := sub.Sleep
		hours, err := resolveSleepHours(in)
		if err != nil {
			return nil, err
		}
		rows = append(rows, &db.SleepLog{
			UserID:       userID,
			CheckInID:    checkInID,
			BedTime:      in.BedTime,
			WakeTime:     in.WakeTime,
			HoursSlept:   hours,
			SleepQuality: in.SleepQuality,
			Dreams:       in.Dreams,
			Nightmares:   in.Nightmares,
			Notes:        w.cleanText(in.Notes),
		})
	case SectionMood:
		in := sub.Mood
		rows = append(rows, &db.MoodLog{
			UserID:      userID,
			CheckInID:   checkInID,
			MoodScore:   in.MoodScore,
			Emotions:    w.cleanList(in.Emotions),
			EnergyLevel: in.EnergyLevel,
			StressLevel: in.StressLevel,
			Notes:       w.cleanText(in.Notes),
		})
	case SectionAppetite:
		in := sub.Appetite
		rows = append(rows, &db.AppetiteLog{
			UserID:         userID,
			CheckInID:      checkInID,
			AppetiteLevel:  in.AppetiteLevel,
			MealsCount:     in.MealsCount,
			HydrationLevel: in.HydrationLevel,
			Notes:          w.cleanText(in.Notes),
		})
	case SectionMedications:
		for _, in := range sub.Medications {
			name := w.cleanText(in.MedicationName)
			if name == "" {
				continue
			}
			var takenAt *time.Time
			if in.Taken {
				at := now
				takenAt = &at
			}
			rows = append(rows, &db.MedicationLog{
				UserID:         userID,
				CheckInID:      checkInID,
				MedicationName: name,
				Dosage:         w.cleanText(in.Dosage),
				Taken:          in.Taken,
				TimeTaken:      takenAt,
				Notes:          w.cleanText(in.Notes),
			})
		}
	case SectionSubstances:
		for _, in := range sub.Substances {
			kind := w.cleanText(in.SubstanceType)
			if kind == "" {
				continue
			}
			rows = append(rows, &db.SubstanceLog{
				UserID:        userID,
				CheckInID:     checkInID,
				SubstanceType: kind,
				Amount:        w.cleanText(in.Amount),
				TimeConsumed:  in.TimeConsumed,
				Notes:         w.cleanText(in.Notes),
			})
		}
	case SectionThoughts:
		in := sub.Thoughts
		rows = append(rows, &db.ThoughtLog{
			UserID:                    userID,
			CheckInID:                 checkInID,
			IntrusiveThoughts:         in.IntrusiveThoughts,
			RacingThoughts:            in.RacingThoughts,
			NegativeThoughtsIntensity: in.NegativeThoughtsIntensity,
			SuicidalIdeation:          in.SuicidalIdeation,
			Notes:                     w.cleanText(in.Notes),
		})
	case SectionImpulses:
		in := sub.Impulses
		rows = append(rows, &db.ImpulseLog{
			UserID:              userID,
			CheckInID:           checkInID,
			ImpulseControlLevel: in.ImpulseControlLevel,
			ImpulseTypes:        w.cleanList(in.ImpulseTypes),
			ActedOnImpulse:      in.ActedOnImpulse,
			Notes:               w.cleanText(in.Notes),
		})
	case SectionLibido:
		in := sub.Libido
		rows = append(rows, &db.LibidoLog{
			UserID:      userID,
			CheckInID:   checkInID,
			LibidoLevel: in.LibidoLevel,
			Notes:       w.cleanText(in.Notes),
		})
	case SectionConcentration:
		in := sub.Concentration
		rows = append(rows, &db.ConcentrationLog{
			UserID:               userID,
			CheckInID:            checkInID,
			ConcentrationLevel:   in.ConcentrationLevel,
			FocusDurationMinutes: in.FocusDurationMinutes,
			DistractionsCount:    in.DistractionsCount,
			Notes:                w.cleanText(in.Notes),
		})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no entries to write", ErrInvalidSubmission)
	}

	for _, row := range rows {
		if err := tx.Create(row).Error; err != nil {
			return nil, fmt.Errorf("insert %s log: %w", sub.Section, err)
		}
	}
	return rows, nil
}

// Entries 读取某条打卡记录下指定分区的全部条目
func (w *SectionWriter) Entries(ctx context.Context, userID, checkInID uint, section Section) (interface{}, error) {
	q := w.db.WithContext(ctx)
	switch section {
	case SectionSleep:
		return findEntries[db.SleepLog](q, userID, checkInID)
	case SectionMood:
		return findEntries[db.MoodLog](q, userID, checkInID)
	case SectionAppetite:
		return findEntries[db.AppetiteLog](q, userID, checkInID)
	case SectionMedications:
		return findEntries[db.MedicationLog](q, userID, checkInID)
	case SectionSubstances:
		return findEntries[db.SubstanceLog](q, userID, checkInID)
	case SectionThoughts:
		return findEntries[db.ThoughtLog](q, userID, checkInID)
	case SectionImpulses:
		return findEntries[db.ImpulseLog](q, userID, checkInID)
	case SectionLibido:
		return findEntries[db.LibidoLog](q, userID, checkInID)
	case SectionConcentration:
		return findEntries[db.ConcentrationLog](q, userID, checkInID)
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidSection, section)
}

func findEntries[T any](q *gorm.DB, userID, checkInID uint) ([]T, error) {
	var entries []T
	if err := q.Where("user_id = ? AND check_in_id = ?", userID, checkInID).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

func (w *SectionWriter) check(input interface{}) error {
	if err := w.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return fmt.Errorf("%w: %s failed on %s", ErrInvalidSubmission, first.Field(), first.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}
	return nil
}

// cleanText 去除 HTML 标签并保留纯文本
func (w *SectionWriter) cleanText(raw string) string {
	return strings.TrimSpace(html.UnescapeString(w.policy.Sanitize(raw)))
}

func (w *SectionWriter) cleanList(items []string) []string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		if value := w.cleanText(item); value != "" {
			cleaned = append(cleaned, value)
		}
	}
	return cleaned
}

func missingPayload(section Section) error {
	return fmt.Errorf("%w: missing %s payload", ErrInvalidSubmission, section)
}

func resolveSleepHours(in *SleepInput) (float64, error) {
	if in.HoursSlept != nil {
		return *in.HoursSlept, nil
	}
	return sleepHours(in.BedTime, in.WakeTime)
}

// sleepHours 由入睡与起床时间计算睡眠时长，起床早于入睡视为跨午夜
func sleepHours(bedTime, wakeTime string) (float64, error) {
	bed, err := time.Parse(clockFormat, bedTime)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid bed_time", ErrInvalidSubmission)
	}
	wake, err := time.Parse(clockFormat, wakeTime)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid wake_time", ErrInvalidSubmission)
	}

	diff := wake.Sub(bed)
	if diff < 0 {
		diff += 24 * time.Hour
	}
	return math.Round(diff.Hours()*100) / 100, nil
}
