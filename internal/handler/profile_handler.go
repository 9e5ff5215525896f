package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moodlog/internal/db"
	"github.com/moodlog/internal/service"
)

type profileUpdateRequest struct {
	DisplayName string `json:"display_name"`
}

// GetProfile 返回当前用户资料
func (a *API) GetProfile(c *gin.Context) {
	profile, err := a.profiles.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		a.handleServiceError(c, err, "获取资料失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profilePayload(*profile)})
}

// UpdateProfile 修改展示名
func (a *API) UpdateProfile(c *gin.Context) {
	var payload profileUpdateRequest
	if !bindJSON(c, &payload, "请填写展示名") {
		return
	}

	profile, err := a.profiles.UpdateDisplayName(c.Request.Context(), currentUserID(c), payload.DisplayName)
	if err != nil {
		a.handleServiceError(c, err, "更新资料失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "资料已更新",
		"profile": profilePayload(*profile),
	})
}

// CompleteOnboarding 保存引导问卷
func (a *API) CompleteOnboarding(c *gin.Context) {
	var payload service.OnboardingInput
	if !bindJSON(c, &payload, "问卷格式不正确") {
		return
	}

	profile, err := a.profiles.CompleteOnboarding(c.Request.Context(), currentUserID(c), payload, a.clock())
	if err != nil {
		a.handleServiceError(c, err, "保存问卷失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profilePayload(*profile)})
}

// SkipOnboarding 跳过引导问卷
func (a *API) SkipOnboarding(c *gin.Context) {
	profile, err := a.profiles.SkipOnboarding(c.Request.Context(), currentUserID(c))
	if err != nil {
		a.handleServiceError(c, err, "操作失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profilePayload(*profile)})
}

func profilePayload(profile db.Profile) gin.H {
	var start interface{}
	if profile.MonitoringStartDate != nil {
		start = profile.MonitoringStartDate.Format(service.DateFormat)
	}
	return gin.H{
		"display_name":          profile.DisplayName,
		"age":                   profile.Age,
		"gender":                profile.Gender,
		"diagnosis":             profile.Diagnosis,
		"monitoring_days":       profile.MonitoringDays,
		"monitoring_start_date": start,
		"onboarding_completed":  profile.OnboardingCompleted,
	}
}
