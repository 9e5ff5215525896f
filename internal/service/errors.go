package service

import "errors"

var (
	// ErrInvalidSection 分区名不在已知列表中
	ErrInvalidSection = errors.New("invalid check-in section")
	// ErrInvalidSubmission 提交内容缺少必填项或超出范围
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrDuplicateSubmission 同一提交 ID 已经入账
	ErrDuplicateSubmission = errors.New("submission already processed")
	// ErrInvalidAmount 金币数必须为正
	ErrInvalidAmount = errors.New("coin amount must be positive")
	// ErrInvalidGame 未知的小游戏
	ErrInvalidGame = errors.New("unknown game type")
	// ErrCheckInNotFound 打卡记录不存在或不属于当前用户
	ErrCheckInNotFound = errors.New("check-in not found")
	// ErrProfileNotFound 用户资料不存在
	ErrProfileNotFound = errors.New("profile not found")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken 邮箱已注册
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials 邮箱或密码错误
	ErrInvalidCredentials = errors.New("invalid email or password")
)
