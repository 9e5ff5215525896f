package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/moodlog/internal/db"
	"github.com/moodlog/internal/service"
	"go.uber.org/zap"
)

const (
	sessionUserKey = "user_id"
	loginPath      = "/login"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register 注册并直接登录
func (a *API) Register(c *gin.Context) {
	var payload service.RegisterInput
	if !bindJSON(c, &payload, "请填写邮箱和密码") {
		return
	}

	user, err := a.users.Register(c.Request.Context(), payload)
	if err != nil {
		a.handleServiceError(c, err, "注册失败")
		return
	}

	if !a.startSession(c, user) {
		return
	}

	a.logger.Info("user registered", zap.Uint("user_id", user.ID))
	c.JSON(http.StatusCreated, gin.H{"user": userPayload(*user)})
}

// Login 校验邮箱密码并写入会话
func (a *API) Login(c *gin.Context) {
	var payload loginRequest
	if !bindJSON(c, &payload, "请填写邮箱和密码") {
		return
	}

	user, err := a.users.Authenticate(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		a.handleServiceError(c, err, "登录失败")
		return
	}

	if !a.startSession(c, user) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userPayload(*user)})
}

// Logout 清空会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已退出登录"})
}

// Me 返回当前登录用户与资料
func (a *API) Me(c *gin.Context) {
	userID := currentUserID(c)

	user, err := a.users.Get(c.Request.Context(), userID)
	if err != nil {
		a.handleServiceError(c, err, "获取用户失败")
		return
	}
	profile, err := a.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		a.handleServiceError(c, err, "获取资料失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    userPayload(*user),
		"profile": profilePayload(*profile),
	})
}

func (a *API) startSession(c *gin.Context, user *db.User) bool {
	session := sessions.Default(c)
	session.Set(sessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		a.logger.Error("save session failed", zap.Uint("user_id", user.ID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return false
	}
	return true
}

// AuthRequired 要求已登录会话，未登录返回 401 并提示前端跳转登录页
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := sessionUserID(session.Get(sessionUserKey))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "请先登录",
				"redirect": loginPath,
			})
			return
		}
		c.Set(sessionUserKey, userID)
		c.Next()
	}
}

// currentUserID 读取 AuthRequired 写入上下文的用户 ID
func currentUserID(c *gin.Context) uint {
	if value, exists := c.Get(sessionUserKey); exists {
		if id, ok := value.(uint); ok {
			return id
		}
	}
	return 0
}

func sessionUserID(value interface{}) (uint, bool) {
	switch v := value.(type) {
	case uint:
		return v, v > 0
	case int:
		return uint(v), v > 0
	case int64:
		return uint(v), v > 0
	case uint64:
		return uint(v), v > 0
	case float64:
		return uint(v), v > 0
	default:
		return 0, false
	}
}

func userPayload(user db.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"created_at": user.CreatedAt,
	}
}
