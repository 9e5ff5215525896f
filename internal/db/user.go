package db

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// User 定义了用户模型，Email 作为登录名
type User struct {
	gorm.Model
	Email    string `gorm:"size:191;uniqueIndex;not null"`
	Password string `gorm:"not null"`
}

// Profile 保存引导问卷与展示名，每个用户至多一条
// MonitoringDays 为用户计划的监测天数，用于计算完成度
type Profile struct {
	gorm.Model
	UserID              uint   `gorm:"uniqueIndex;not null"`
	DisplayName         string `gorm:"size:120"`
	Age                 *int
	Gender              string `gorm:"size:40"`
	Diagnosis           string `gorm:"size:200"`
	MonitoringDays      int
	MonitoringStartDate *time.Time
	OnboardingCompleted bool `gorm:"not null;default:false"`
}

// EnsureUser 存在性检查：若邮箱与密码均非空且账号不存在，则创建 bcrypt 哈希的用户及其资料、金币账户。
func EnsureUser(email, password, displayName string) error {
	trimmedEmail := strings.ToLower(strings.TrimSpace(email))
	trimmedPassword := strings.TrimSpace(password)
	if trimmedEmail == "" || trimmedPassword == "" {
		return nil
	}

	if DB == nil {
		return errors.New("database not initialized")
	}

	var existing User
	err := DB.Where("email = ?", trimmedEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		user := User{Email: trimmedEmail, Password: string(hashed)}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if err := tx.Create(&Profile{UserID: user.ID, DisplayName: strings.TrimSpace(displayName)}).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&UserCoins{UserID: user.ID}).Error
	})
}
