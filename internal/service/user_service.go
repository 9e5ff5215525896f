package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/moodlog/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 负责注册与登录校验
type UserService struct {
	db       *gorm.DB
	validate *validator.Validate
}

// RegisterInput 注册参数
type RegisterInput struct {
	Email       string `json:"email" validate:"required,email,max=191"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	DisplayName string `json:"display_name" validate:"max=120"`
}

// NewUserService 构造 UserService
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb, validate: validator.New()}
}

// Register 创建用户，并同时创建资料与金币账户
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*db.User, error) {
	input.Email = normalizeEmail(input.Email)
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := db.User{Email: input.Email, Password: string(hashed)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			return ErrEmailTaken
		}

		if err := tx.Create(&user).Error; err != nil {
			// 并发注册时由唯一索引兜底
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}
		if err := tx.Create(&db.Profile{UserID: user.ID, DisplayName: input.DisplayName}).Error; err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		return ensureLedger(tx, user.ID)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate 校验邮箱与密码
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*db.User, error) {
	var user db.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// Get 按 ID 读取用户
func (s *UserService) Get(ctx context.Context, id uint) (*db.User, error) {
	var user db.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
