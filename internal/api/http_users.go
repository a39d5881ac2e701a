package api

import (
	"accounts/internal/entity"
	"accounts/internal/service"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// UpdateProfile 更新当前用户资料（multipart 表单）
func (h *HTTPHandler) UpdateProfile(c *gin.Context) {
	form, err := h.readMultipart(c, updateFields)
	if err != nil {
		writeFormError(c, err)
		return
	}

	in := service.UpdateProfileInput{
		Surnom:      form.optional(fieldSurnom),
		Email:       form.optional(fieldEmail),
		RemoveImage: strings.EqualFold(strings.TrimSpace(form.values[fieldRemoveImage]), "true"),
		Avatar:      form.avatar,
	}
	if raw := form.optional(fieldMotDePasse); raw != nil {
		var change service.PasswordChange
		dec := json.NewDecoder(strings.NewReader(*raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&change); err != nil {
			BadRequest(c, ErrCodeInvalidRequest, "Données invalides pour la mise à jour du mot de passe.")
			return
		}
		in.Password = &change
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.accounts.UpdateProfile(ctx, CurrentClaims(c), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.UserMessageResponse{
		Message: "User updated successfully",
		User:    user.ToSummary(),
	})
}

// RemoveAvatar 删除当前用户头像
func (h *HTTPHandler) RemoveAvatar(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.accounts.RemoveAvatar(ctx, CurrentClaims(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.MessageResponse{Message: "Profile image deleted successfully"})
}

// DeleteOwnAccount 软删除当前账号
func (h *HTTPHandler) DeleteOwnAccount(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.accounts.DeleteOwnAccount(ctx, CurrentClaims(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.MessageResponse{Message: "Compte supprimé avec succès."})
}

// DeleteAccountByHandle 按 surnom 永久删除当前账号
func (h *HTTPHandler) DeleteAccountByHandle(c *gin.Context) {
	var req entity.DeleteByHandleRequest
	if err := decodeJSON(c, &req); err != nil {
		writeFormError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.accounts.DeleteAccountByHandle(ctx, CurrentClaims(c), req.Surnom); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.MessageResponse{Message: "User deleted successfully"})
}

// ListUsers 按 gradeId / etatId 过滤用户列表
func (h *HTTPHandler) ListUsers(c *gin.Context) {
	var criteria entity.UserCriteria
	if raw := strings.TrimSpace(c.Query("gradeId")); raw != "" {
		value, err := strconv.ParseUint(raw, 10, 8)
		if err != nil {
			writeFormError(c, invalidFieldError("gradeId"))
			return
		}
		criteria.GradeID = entity.Role(value)
	}
	if raw := strings.TrimSpace(c.Query("etatId")); raw != "" {
		value, err := strconv.ParseUint(raw, 10, 8)
		if err != nil {
			writeFormError(c, invalidFieldError("etatId"))
			return
		}
		criteria.EtatID = entity.State(value)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.accounts.ListByCriteria(ctx, CurrentClaims(c), criteria)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.UsersToSummaries(users))
}

// ListAdmins 列出所有管理员（含角色名称）
func (h *HTTPHandler) ListAdmins(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	admins, err := h.accounts.ListAdmins(ctx, CurrentClaims(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.UsersToSummaries(admins))
}

// ChangeState 在激活与封禁之间切换用户状态
func (h *HTTPHandler) ChangeState(c *gin.Context) {
	in, ok := bindChangeState(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.accounts.ChangeState(ctx, CurrentClaims(c), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.UserMessageResponse{
		Message: "L'état de l'utilisateur a été modifié avec succès.",
		User:    user.ToSummary(),
	})
}

// ChangeStateAsSuperAdmin 超级管理员设置任意状态
func (h *HTTPHandler) ChangeStateAsSuperAdmin(c *gin.Context) {
	in, ok := bindChangeState(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.accounts.ChangeStateAsSuperAdmin(ctx, CurrentClaims(c), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.UserMessageResponse{
		Message: "User state updated successfully.",
		User:    user.ToSummary(),
	})
}

func bindChangeState(c *gin.Context) (service.ChangeStateInput, bool) {
	var req entity.ChangeStateRequest
	if err := decodeJSON(c, &req); err != nil {
		writeFormError(c, err)
		return service.ChangeStateInput{}, false
	}
	return service.ChangeStateInput{UserID: req.UserID, NewEtat: req.NewEtat}, true
}
