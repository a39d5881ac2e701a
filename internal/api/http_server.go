package api

import (
	"accounts/internal/auth"
	"accounts/internal/config"
	"accounts/internal/model"
	"accounts/internal/service"
	"accounts/internal/storage"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	requestTimeout     = 5 * time.Second
	defaultUploadLimit = 5 << 20
)

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	repo              model.Repository
	storage           storage.Storage
	storagePublicBase string
	tokens            *auth.Manager
	verifyOverride    auth.VerifyMode
	uploadLimit       int64

	// 服务层
	accounts *service.AccountService
}

// NewHTTPHandler 创建 HTTP 处理器实例
func NewHTTPHandler(cfg config.Config, repo model.Repository, store storage.Storage) (*HTTPHandler, error) {
	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, auth.DefaultTokenTTL)
	if err != nil {
		return nil, err
	}

	var override auth.VerifyMode
	if strings.TrimSpace(cfg.TokenVerifyMode) != "" {
		mode, ok := auth.ParseVerifyMode(cfg.TokenVerifyMode)
		if !ok {
			logrus.WithField("mode", cfg.TokenVerifyMode).Warn("unknown TOKEN_VERIFY_MODE, keeping per-route modes")
		}
		override = mode
	}

	uploadLimit := cfg.UploadMaxBytes
	if uploadLimit <= 0 {
		uploadLimit = defaultUploadLimit
	}

	hasher := auth.NewHasher(cfg.BcryptCost)

	return &HTTPHandler{
		repo:              repo,
		storage:           store,
		storagePublicBase: normalisePublicBase(cfg.StoragePublicBaseURL),
		tokens:            tokens,
		verifyOverride:    override,
		uploadLimit:       uploadLimit,
		accounts:          service.NewAccountService(cfg, repo, store, hasher, tokens),
	}, nil
}

// RegisterRoutes mounts the account API under group (normally /api/users).
func (h *HTTPHandler) RegisterRoutes(group *gin.RouterGroup) {
	strict := h.AuthMiddleware(auth.VerifyStrict)
	collapsed := h.AuthMiddleware(auth.VerifyCollapsed)

	group.POST("/register", h.OptionalAuth(), h.Register)
	group.POST("/login", h.Login)
	group.GET("/me", strict, h.Me)

	group.PUT("/update", collapsed, h.UpdateProfile)
	group.DELETE("/delete-profile-image", collapsed, h.RemoveAvatar)
	group.PUT("/delete-account", collapsed, h.DeleteOwnAccount)
	group.DELETE("/delete-user", collapsed, h.DeleteAccountByHandle)

	group.GET("/get-users", strict, h.ListUsers)
	group.GET("/admins", strict, h.ListAdmins)
	group.PUT("/change-etat", collapsed, h.ChangeState)
	group.PUT("/superadmin/change-etat", collapsed, h.ChangeStateAsSuperAdmin)
}

// requestContext 为处理器创建带超时的上下文
func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// normalisePublicBase 规范化公共 URL 基础路径
func normalisePublicBase(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = "/uploads"
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}

// Health reports whether the database answers.
func (h *HTTPHandler) Health(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "repository not available")
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.repo.Ping(ctx); err != nil {
		logrus.WithError(err).Warn("health check failed")
		ServiceUnavailable(c, "database unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
