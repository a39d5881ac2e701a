package api

import (
	"accounts/internal/entity"
	"accounts/internal/service"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Register 注册新账号（multipart 表单）
func (h *HTTPHandler) Register(c *gin.Context) {
	form, err := h.readMultipart(c, registerFields)
	if err != nil {
		writeFormError(c, err)
		return
	}

	in := service.RegisterInput{
		Surnom:   form.values[fieldSurnom],
		Email:    form.values[fieldEmail],
		Password: form.values[fieldMotDePasse],
		Avatar:   form.avatar,
	}
	if raw := form.optional(fieldGradeID); raw != nil {
		grade, err := strconv.ParseUint(*raw, 10, 8)
		if err != nil {
			writeFormError(c, invalidFieldError(fieldGradeID))
			return
		}
		in.GradeID = entity.Role(grade)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.accounts.Register(ctx, CurrentClaims(c), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.ToSummary())
}

// Login 校验凭证并签发令牌
func (h *HTTPHandler) Login(c *gin.Context) {
	var req entity.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		writeFormError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.accounts.Login(ctx, service.LoginInput{
		Surnom:   strings.TrimSpace(req.Surnom),
		Password: req.MotDePasse,
	})
	if err != nil {
		if service.KindOf(err) == service.KindAuthentication {
			logrus.WithField("surnom", req.Surnom).Info("login rejected")
		}
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me 返回当前令牌对应的账号
func (h *HTTPHandler) Me(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.accounts.Me(ctx, CurrentClaims(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.ToSummary())
}
