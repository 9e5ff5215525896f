package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetCoins 返回金币余额，始终读取数据库
func (a *API) GetCoins(c *gin.Context) {
	balance, err := a.ledger.Balance(c.Request.Context(), currentUserID(c))
	if err != nil {
		a.handleServiceError(c, err, "获取金币失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// ListCoinTransactions 返回最近的入账流水
func (a *API) ListCoinTransactions(c *gin.Context) {
	limit := parseLimitQuery(c, 50, 200)

	history, err := a.ledger.History(c.Request.Context(), currentUserID(c), limit)
	if err != nil {
		a.handleServiceError(c, err, "获取金币流水失败")
		return
	}

	items := make([]gin.H, 0, len(history))
	for _, tx := range history {
		items = append(items, gin.H{
			"id":         tx.ID,
			"source":     tx.Source,
			"amount":     tx.Amount,
			"created_at": tx.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"transactions": items})
}

// GetStreak 返回当前连胜与最近 7 天完成情况
func (a *API) GetStreak(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)
	today := a.clock()

	streak, err := a.streaks.Current(ctx, userID, today)
	if err != nil {
		a.handleServiceError(c, err, "获取连胜失败")
		return
	}
	week, err := a.streaks.Week(ctx, userID, today)
	if err != nil {
		a.handleServiceError(c, err, "获取连胜失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"current_streak": streak,
		"week":           week,
	})
}
