package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moodlog/internal/service"
)

// gameCompleteRequest 的分数与步数均限制在 [0, 10000]
type gameCompleteRequest struct {
	Score int `json:"score" binding:"gte=0,lte=10000"`
	Moves int `json:"moves" binding:"gte=0,lte=10000"`
}

// CompleteGame 记录一次小游戏完成；记忆游戏读取 moves，其余读取 score
func (a *API) CompleteGame(c *gin.Context) {
	game, ok := service.ParseGame(c.Param("game"))
	if !ok {
		respondError(c, http.StatusNotFound, "未知的小游戏")
		return
	}

	var payload gameCompleteRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &payload, "请求格式不正确") {
		return
	}

	score := payload.Score
	if game == service.GameMemory {
		score = payload.Moves
	}

	result, err := a.games.Complete(c.Request.Context(), currentUserID(c), game, score, idempotencyKey(c), a.clock())
	if err != nil {
		a.handleServiceError(c, err, "保存游戏记录失败")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"submission_id": result.SubmissionID,
		"game":          result.Play.GameType,
		"score":         result.Play.Score,
		"coins_awarded": result.CoinsAwarded,
		"balance":       result.Balance,
		"unlocked":      achievementPayloads(result.Unlocked),
	})
}

// ListGames 返回最近的游戏记录以及累计局数、累计游戏金币
func (a *API) ListGames(c *gin.Context) {
	limit := parseLimitQuery(c, 20, 200)
	userID := currentUserID(c)

	plays, err := a.games.History(c.Request.Context(), userID, limit)
	if err != nil {
		a.handleServiceError(c, err, "获取游戏记录失败")
		return
	}
	stats, err := a.games.Stats(c.Request.Context(), userID)
	if err != nil {
		a.handleServiceError(c, err, "获取游戏统计失败")
		return
	}

	items := make([]gin.H, 0, len(plays))
	for _, play := range plays {
		items = append(items, gin.H{
			"id":           play.ID,
			"game":         play.GameType,
			"score":        play.Score,
			"coins_earned": play.CoinsEarned,
			"played_at":    play.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"games": items,
		"stats": gin.H{
			"total_played": stats.TotalPlayed,
			"total_coins":  stats.TotalCoins,
		},
	})
}
