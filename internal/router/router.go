package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/moodlog/internal/handler"
	"github.com/moodlog/internal/logging"
	"go.uber.org/zap"
)

const sessionName = "moodlog_session"

// Config 路由层配置
type Config struct {
	SessionSecret      string
	AllowedOrigins     []string
	RateLimitPerMinute int
	SecureCookie       bool
	Logger             *zap.Logger
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, cfg Config) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.L()
	}

	r := gin.New()
	r.Use(logging.RequestLogger(logger))
	r.Use(logging.Recovery(logger))

	if len(cfg.AllowedOrigins) > 0 {
		corsCfg := cors.Config{
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Idempotency-Key"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}
		if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
			corsCfg.AllowOriginFunc = func(string) bool { return true }
		} else {
			corsCfg.AllowOrigins = cfg.AllowedOrigins
		}
		r.Use(cors.New(corsCfg))
	}

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	limiter := handler.NewRateLimiter(cfg.RateLimitPerMinute)

	apiGroup := r.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", limiter.Middleware(), api.Register)
			authGroup.POST("/login", limiter.Middleware(), api.Login)
			authGroup.POST("/logout", api.Logout)
			authGroup.GET("/me", handler.AuthRequired(), api.Me)
		}

		// 需要登录的接口
		protected := apiGroup.Group("")
		protected.Use(handler.AuthRequired())
		{
			protected.GET("/profile", api.GetProfile)
			protected.PUT("/profile", api.UpdateProfile)
			protected.POST("/onboarding", api.CompleteOnboarding)
			protected.POST("/onboarding/skip", api.SkipOnboarding)

			protected.GET("/dashboard", api.GetDashboard)

			protected.GET("/check-ins", api.ListCheckIns)
			protected.GET("/check-ins/today", api.GetTodayCheckIn)
			protected.POST("/check-ins/:section", limiter.Middleware(), api.SubmitSection)
			protected.GET("/check-ins/:id/:section", api.GetSectionEntries)

			protected.GET("/streak", api.GetStreak)
			protected.GET("/coins", api.GetCoins)
			protected.GET("/coins/transactions", api.ListCoinTransactions)

			protected.GET("/games", api.ListGames)
			protected.POST("/games/:game/complete", limiter.Middleware(), api.CompleteGame)

			protected.GET("/achievements", api.GetAchievements)
			protected.GET("/statistics", api.GetStatistics)
			protected.GET("/statistics/report", api.GetStatisticsReport)
		}
	}

	return r
}
