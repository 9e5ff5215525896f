package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moodlog/internal/service"
)

type medicationsRequest struct {
	Medications []service.MedicationInput `json:"medications"`
}

type substancesRequest struct {
	Substances []service.SubstanceInput `json:"substances"`
}

// GetTodayCheckIn 返回当天记录与各分区完成情况
func (a *API) GetTodayCheckIn(c *gin.Context) {
	day, err := a.checkIns.Day(c.Request.Context(), currentUserID(c), a.clock())
	if err != nil {
		a.handleServiceError(c, err, "获取今日打卡失败")
		return
	}
	c.JSON(http.StatusOK, checkInDayPayload(day))
}

// ListCheckIns 按日期倒序返回最近的打卡记录
func (a *API) ListCheckIns(c *gin.Context) {
	limit := parseLimitQuery(c, 30, 365)

	records, err := a.checkIns.Recent(c.Request.Context(), currentUserID(c), limit)
	if err != nil {
		a.handleServiceError(c, err, "获取打卡记录失败")
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, record := range records {
		items = append(items, checkInPayload(record))
	}
	c.JSON(http.StatusOK, gin.H{"check_ins": items})
}

// SubmitSection 提交一个分区，Idempotency-Key 头用于防止重复入账
func (a *API) SubmitSection(c *gin.Context) {
	section, ok := service.ParseSection(c.Param("section"))
	if !ok {
		respondError(c, http.StatusNotFound, "未知的打卡分区")
		return
	}

	sub, ok := bindSubmission(c, section)
	if !ok {
		return
	}
	sub.SubmissionID = idempotencyKey(c)

	result, err := a.submissions.Submit(c.Request.Context(), currentUserID(c), sub, a.clock())
	if err != nil {
		a.handleServiceError(c, err, "保存打卡失败")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"submission_id": result.SubmissionID,
		"section":       result.Section,
		"check_in":      checkInPayload(result.CheckIn),
		"entries":       result.Entries,
		"coins_awarded": result.CoinsAwarded,
		"balance":       result.Balance,
		"day_completed": result.DayCompleted,
		"unlocked":      achievementPayloads(result.Unlocked),
	})
}

// GetSectionEntries 返回某条记录下指定分区的条目
func (a *API) GetSectionEntries(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的打卡记录ID")
		return
	}
	section, ok := service.ParseSection(c.Param("section"))
	if !ok {
		respondError(c, http.StatusNotFound, "未知的打卡分区")
		return
	}

	userID := currentUserID(c)
	record, err := a.checkIns.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		a.handleServiceError(c, err, "获取打卡记录失败")
		return
	}

	entries, err := a.writer.Entries(c.Request.Context(), userID, record.ID, section)
	if err != nil {
		a.handleServiceError(c, err, "获取分区记录失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"check_in": checkInPayload(*record),
		"section":  section,
		"entries":  entries,
	})
}

// bindSubmission 按分区解析请求体；单条分区直接是字段对象，用药与物质为列表
func bindSubmission(c *gin.Context, section service.Section) (service.SectionSubmission, bool) {
	sub := service.SectionSubmission{Section: section}
	const message = "提交内容格式不正确"

	switch section {
	case service.SectionSleep:
		sub.Sleep = &service.SleepInput{}
		return sub, bindJSON(c, sub.Sleep, message)
	case service.SectionMood:
		sub.Mood = &service.MoodInput{}
		return sub, bindJSON(c, sub.Mood, message)
	case service.SectionAppetite:
		sub.Appetite = &service.AppetiteInput{}
		return sub, bindJSON(c, sub.Appetite, message)
	case service.SectionMedications:
		var payload medicationsRequest
		if !bindJSON(c, &payload, message) {
			return sub, false
		}
		sub.Medications = payload.Medications
		return sub, true
	case service.SectionSubstances:
		var payload substancesRequest
		if !bindJSON(c, &payload, message) {
			return sub, false
		}
		sub.Substances = payload.Substances
		return sub, true
	case service.SectionThoughts:
		sub.Thoughts = &service.ThoughtInput{}
		return sub, bindJSON(c, sub.Thoughts, message)
	case service.SectionImpulses:
		sub.Impulses = &service.ImpulseInput{}
		return sub, bindJSON(c, sub.Impulses, message)
	case service.SectionLibido:
		sub.Libido = &service.LibidoInput{}
		return sub, bindJSON(c, sub.Libido, message)
	case service.SectionConcentration:
		sub.Concentration = &service.ConcentrationInput{}
		return sub, bindJSON(c, sub.Concentration, message)
	}

	respondError(c, http.StatusNotFound, "未知的打卡分区")
	return sub, false
}

func checkInDayPayload(day *service.CheckInDay) gin.H {
	var record interface{}
	if day.Record.ID != 0 {
		record = checkInPayload(day.Record)
	}
	return gin.H{
		"date":     day.Record.CheckInDate.Format(service.DateFormat),
		"check_in": record,
		"logged":   sectionNames(day.Logged),
		"missing":  sectionNames(day.Missing),
		"required": sectionNames(day.Required),
	}
}
