package db

import "time"

// 各分区日志写入后不再修改，因此只保留 CreatedAt
// UserID/CheckInID 均建索引便于按日回溯

// SleepLog 睡眠记录，HoursSlept 可由入睡/起床时间推算
type SleepLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	CheckInID    uint      `gorm:"not null;index" json:"check_in_id"`
	BedTime      string    `gorm:"size:5" json:"bed_time,omitempty"`
	WakeTime     string    `gorm:"size:5" json:"wake_time,omitempty"`
	HoursSlept   float64   `json:"hours_slept"`
	SleepQuality int       `json:"sleep_quality"`
	Dreams       bool      `json:"dreams"`
	Nightmares   bool      `json:"nightmares"`
	Notes        string    `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

// MoodLog 情绪记录
type MoodLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	CheckInID   uint      `gorm:"not null;index" json:"check_in_id"`
	MoodScore   int       `json:"mood_score"`
	Emotions    []string  `gorm:"type:text;serializer:json" json:"emotions"`
	EnergyLevel int       `json:"energy_level"`
	StressLevel int       `json:"stress_level"`
	Notes       string    `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// AppetiteLog 食欲记录
type AppetiteLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	CheckInID      uint      `gorm:"not null;index" json:"check_in_id"`
	AppetiteLevel  int       `json:"appetite_level"`
	MealsCount     int       `json:"meals_count"`
	HydrationLevel int       `json:"hydration_level"`
	Notes          string    `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

// MedicationLog 用药记录，同一天可有多条
type MedicationLog struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	CheckInID      uint       `gorm:"not null;index" json:"check_in_id"`
	MedicationName string     `gorm:"size:120;not null" json:"medication_name"`
	Dosage         string     `gorm:"size:120" json:"dosage"`
	Taken          bool       `json:"taken"`
	TimeTaken      *time.Time `json:"time_taken"`
	Notes          string     `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
}

// SubstanceLog 物质使用记录，同一天可有多条
type SubstanceLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	CheckInID     uint      `gorm:"not null;index" json:"check_in_id"`
	SubstanceType string    `gorm:"size:120;not null" json:"substance_type"`
	Amount        string    `gorm:"size:120" json:"amount"`
	TimeConsumed  string    `gorm:"size:5" json:"time_consumed,omitempty"`
	Notes         string    `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// ThoughtLog 思维记录
type ThoughtLog struct {
	ID                        uint      `gorm:"primaryKey" json:"id"`
	UserID                    uint      `gorm:"not null;index" json:"user_id"`
	CheckInID                 uint      `gorm:"not null;index" json:"check_in_id"`
	IntrusiveThoughts         bool      `json:"intrusive_thoughts"`
	RacingThoughts            bool      `json:"racing_thoughts"`
	NegativeThoughtsIntensity int       `json:"negative_thoughts_intensity"`
	SuicidalIdeation          bool      `json:"suicidal_ideation"`
	Notes                     string    `gorm:"type:text" json:"notes"`
	CreatedAt                 time.Time `gorm:"index" json:"created_at"`
}

// ImpulseLog 冲动控制记录
type ImpulseLog struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	UserID              uint      `gorm:"not null;index" json:"user_id"`
	CheckInID           uint      `gorm:"not null;index" json:"check_in_id"`
	ImpulseControlLevel int       `json:"impulse_control_level"`
	ImpulseTypes        []string  `gorm:"type:text;serializer:json" json:"impulse_types"`
	ActedOnImpulse      bool      `json:"acted_on_impulse"`
	Notes               string    `gorm:"type:text" json:"notes"`
	CreatedAt           time.Time `gorm:"index" json:"created_at"`
}

// LibidoLog 性欲记录
type LibidoLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	CheckInID   uint      `gorm:"not null;index" json:"check_in_id"`
	LibidoLevel int       `json:"libido_level"`
	Notes       string    `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// ConcentrationLog 专注力记录，专注时长与分心次数可选
type ConcentrationLog struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	UserID               uint      `gorm:"not null;index" json:"user_id"`
	CheckInID            uint      `gorm:"not null;index" json:"check_in_id"`
	ConcentrationLevel   int       `json:"concentration_level"`
	FocusDurationMinutes *int      `json:"focus_duration_minutes"`
	DistractionsCount    *int      `json:"distractions_count"`
	Notes                string    `gorm:"type:text" json:"notes"`
	CreatedAt            time.Time `gorm:"index" json:"created_at"`
}
