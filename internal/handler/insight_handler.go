package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// GetAchievements 返回成就墙
func (a *API) GetAchievements(c *gin.Context) {
	board, err := a.achievements.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		a.handleServiceError(c, err, "获取成就失败")
		return
	}
	c.JSON(http.StatusOK, board)
}

// GetStatistics 返回最近 30 天统计
func (a *API) GetStatistics(c *gin.Context) {
	summary, err := a.statistics.Summary(c.Request.Context(), currentUserID(c), a.clock())
	if err != nil {
		a.handleServiceError(c, err, "获取统计数据失败")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetStatisticsReport 导出统计报告，format=markdown 时返回原始 Markdown
func (a *API) GetStatisticsReport(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)

	profile, err := a.profiles.Get(ctx, userID)
	if err != nil {
		a.handleServiceError(c, err, "生成报告失败")
		return
	}

	report, err := a.statistics.Report(ctx, userID, profile.DisplayName, a.clock())
	if err != nil {
		a.handleServiceError(c, err, "生成报告失败")
		return
	}

	switch strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "html"))) {
	case "markdown", "md":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown))
	case "json":
		c.JSON(http.StatusOK, report)
	default:
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(report.HTML))
	}
}

// GetDashboard 返回首页汇总
func (a *API) GetDashboard(c *gin.Context) {
	overview, err := a.dashboard.Overview(c.Request.Context(), currentUserID(c), a.clock())
	if err != nil {
		a.handleServiceError(c, err, "获取首页数据失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance":               overview.Balance,
		"current_streak":        overview.CurrentStreak,
		"total_check_ins":       overview.TotalCheckIns,
		"monitoring_days":       overview.MonitoringDays,
		"completion_percentage": overview.CompletionPercentage,
		"today":                 checkInDayPayload(overview.Today),
		"week":                  overview.Week,
		"display_name":          overview.DisplayName,
		"onboarding_completed":  overview.OnboardingCompleted,
	})
}
