package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/moodlog/internal/db"
	"github.com/moodlog/internal/service"
	"go.uber.org/zap"
)

const (
	idempotencyHeader    = "Idempotency-Key"
	maxIdempotencyKeyLen = 64
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// parseLimitQuery 读取 limit 参数，缺省或越界时回退到 fallback
func parseLimitQuery(c *gin.Context, fallback, maximum int) int {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	if limit > maximum {
		return maximum
	}
	return limit
}

// idempotencyKey 读取幂等键，丢弃非法 UTF-8 字节，超长时按字符边界截断到 64 字节以内
func idempotencyKey(c *gin.Context) string {
	key := strings.TrimSpace(strings.ToValidUTF8(c.GetHeader(idempotencyHeader), ""))
	if len(key) <= maxIdempotencyKeyLen {
		return key
	}
	cut := maxIdempotencyKeyLen
	for cut > 0 && !utf8.RuneStart(key[cut]) {
		cut--
	}
	return key[:cut]
}

// handleServiceError 将服务层错误映射为 HTTP 状态码
func (a *API) handleServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidSection):
		respondError(c, http.StatusNotFound, "未知的打卡分区")
	case errors.Is(err, service.ErrInvalidGame):
		respondError(c, http.StatusNotFound, "未知的小游戏")
	case errors.Is(err, service.ErrInvalidSubmission):
		respondError(c, http.StatusBadRequest, strings.TrimPrefix(err.Error(), service.ErrInvalidSubmission.Error()+": "))
	case errors.Is(err, service.ErrDuplicateSubmission):
		respondError(c, http.StatusConflict, "该提交已处理")
	case errors.Is(err, service.ErrEmailTaken):
		respondError(c, http.StatusConflict, "邮箱已注册")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "邮箱或密码错误")
	case errors.Is(err, service.ErrCheckInNotFound):
		respondError(c, http.StatusNotFound, "打卡记录不存在")
	case errors.Is(err, service.ErrProfileNotFound), errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusNotFound, "用户不存在")
	default:
		a.logger.Error(fallback, zap.String("path", c.FullPath()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, fallback)
	}
}

func checkInPayload(record db.DailyCheckIn) gin.H {
	return gin.H{
		"id":            record.ID,
		"check_in_date": record.CheckInDate.Format(service.DateFormat),
		"completed":     record.Completed,
		"coins_earned":  record.CoinsEarned,
	}
}

func achievementPayload(item db.Achievement) gin.H {
	return gin.H{
		"id":           item.ID,
		"code":         item.Code,
		"name":         item.Name,
		"description":  item.Description,
		"icon":         item.Icon,
		"coins_reward": item.CoinsReward,
	}
}

func achievementPayloads(items []db.Achievement) []gin.H {
	payloads := make([]gin.H, 0, len(items))
	for _, item := range items {
		payloads = append(payloads, achievementPayload(item))
	}
	return payloads
}

func sectionNames(sections []service.Section) []string {
	names := make([]string, 0, len(sections))
	for _, section := range sections {
		names = append(names, string(section))
	}
	return names
}
