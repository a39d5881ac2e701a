package api

import (
	"errors"
	"net/http"
	"strings"

	"accounts/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	currentClaimsContextKey = "current-claims"
)

var errMalformedHeader = errors.New("malformed authorization header")

// AuthMiddleware JWT 认证中间件
//
// mode 决定失败响应的形式：strict 区分缺失、过期和无效令牌，collapsed 一律返回
// "Unauthorized"。配置了 TOKEN_VERIFY_MODE 时对所有路由覆盖 mode。
func (h *HTTPHandler) AuthMiddleware(mode auth.VerifyMode) gin.HandlerFunc {
	mode = h.effectiveMode(mode)
	return func(c *gin.Context) {
		claims, err := h.verifyRequest(c, mode)
		if err != nil {
			abortWithTokenError(c, err)
			return
		}
		c.Set(currentClaimsContextKey, claims)
		c.Next()
	}
}

// OptionalAuth verifies a bearer token when one is sent and lets anonymous
// requests through.
func (h *HTTPHandler) OptionalAuth() gin.HandlerFunc {
	mode := h.effectiveMode(auth.VerifyStrict)
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader("Authorization")) == "" {
			c.Next()
			return
		}
		claims, err := h.verifyRequest(c, mode)
		if err != nil {
			abortWithTokenError(c, err)
			return
		}
		c.Set(currentClaimsContextKey, claims)
		c.Next()
	}
}

func (h *HTTPHandler) effectiveMode(mode auth.VerifyMode) auth.VerifyMode {
	if h.verifyOverride != "" {
		return h.verifyOverride
	}
	if mode == "" {
		return auth.VerifyStrict
	}
	return mode
}

func (h *HTTPHandler) verifyRequest(c *gin.Context, mode auth.VerifyMode) (*auth.Claims, error) {
	tokenString, err := bearerToken(c.GetHeader("Authorization"))
	if err != nil {
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Debug("rejected authorization header")
		if mode == auth.VerifyCollapsed {
			return nil, auth.ErrUnauthorized
		}
		if errors.Is(err, errMalformedHeader) {
			return nil, auth.ErrTokenInvalid
		}
		return nil, err
	}

	claims, err := h.tokens.Verify(tokenString, mode)
	if err != nil {
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Warn("failed to verify jwt token")
		return nil, err
	}
	return claims, nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", auth.ErrTokenMissing
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errMalformedHeader
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", auth.ErrTokenMissing
	}
	return token, nil
}

func abortWithTokenError(c *gin.Context, err error) {
	var expired *auth.ExpiredError
	switch {
	case errors.As(err, &expired):
		at := expired.ExpiredAt.UTC()
		c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
			Code:      ErrCodeTokenExpired,
			Err:       "Token expired",
			ExpiredAt: &at,
		})
	case errors.Is(err, auth.ErrTokenMissing):
		c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
			Code: ErrCodeTokenMissing,
			Err:  "No token provided",
		})
	case errors.Is(err, auth.ErrTokenInvalid):
		c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
			Code: ErrCodeTokenInvalid,
			Err:  "Invalid token",
		})
	default:
		c.Abort()
		Unauthorized(c, "Unauthorized")
	}
}

// CurrentClaims 从上下文获取当前请求的令牌声明
func CurrentClaims(c *gin.Context) *auth.Claims {
	value, exists := c.Get(currentClaimsContextKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}
