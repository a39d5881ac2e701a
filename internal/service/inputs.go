package service

import (
	"accounts/internal/entity"
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// AvatarUpload is one uploaded image file.
type AvatarUpload struct {
	Filename string
	Data     []byte
}

// RegisterInput 注册参数
type RegisterInput struct {
	Surnom   string `validate:"required,max=255"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required"`
	// GradeID zero means the standard user grade.
	GradeID entity.Role
	Avatar  *AvatarUpload
}

// LoginInput 登录参数
type LoginInput struct {
	Surnom   string `validate:"required"`
	Password string `validate:"required"`
}

// PasswordChange is the password bundle of a profile update.
type PasswordChange struct {
	OldPassword     string `json:"oldPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// UpdateProfileInput 资料更新参数，nil 字段表示不修改
type UpdateProfileInput struct {
	Surnom      *string         `validate:"omitempty,min=1,max=255"`
	Email       *string         `validate:"omitempty,email,max=255"`
	Password    *PasswordChange `validate:"omitempty"`
	RemoveImage bool
	Avatar      *AvatarUpload
}

// ChangeStateInput names the target account and its new state.
type ChangeStateInput struct {
	UserID  uint         `validate:"required"`
	NewEtat entity.State `validate:"required"`
}

// validateInput runs struct validation. Missing required fields become
// missingErr, anything else a generic invalid-field error.
func validateInput(in interface{}, missingErr *Error) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return internalError("Internal Server Error", err)
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return missingErr
		}
	}
	fe := fieldErrs[0]
	return validationError(CodeInvalidField, "Invalid "+fe.Field())
}
