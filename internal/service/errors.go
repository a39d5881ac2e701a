package service

import (
	"errors"
	"fmt"
)

// Kind classifies service failures. The HTTP layer maps each kind to a status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// 业务错误码
const (
	CodeMissingFields      = "missing_fields"
	CodeInvalidField       = "invalid_field"
	CodeWeakPassword       = "weak_password"
	CodePasswordFields     = "password_fields_required"
	CodeOldPassword        = "old_password_mismatch"
	CodeConfirmMismatch    = "confirm_mismatch"
	CodeInvalidParams      = "invalid_params"
	CodeInvalidCredentials = "invalid_credentials"
	CodeUnauthorized       = "unauthorized"
	CodeBlocked            = "account_blocked"
	CodeForbidden          = "forbidden"
	CodeSuperAdminTarget   = "superadmin_target"
	CodeUserNotFound       = "user_not_found"
	CodeDuplicateSurnom    = "duplicate_surnom"
	CodeDuplicateEmail     = "duplicate_email"
	CodeInternal           = "internal_error"
)

// Error is returned by every AccountService operation that fails.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func validationError(code, message string) *Error {
	return newError(KindValidation, code, message)
}

func conflictError(code, message string) *Error {
	return newError(KindConflict, code, message)
}

func forbiddenError(code, message string) *Error {
	return newError(KindAuthorization, code, message)
}

func internalError(message string, err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: message, Err: err}
}

var (
	errInvalidCredentials = newError(KindAuthentication, CodeInvalidCredentials, "Invalid credentials")
	errUnauthorized       = newError(KindAuthentication, CodeUnauthorized, "Unauthorized")
	errBlocked            = forbiddenError(CodeBlocked, "Votre compte est bloqué. Veuillez contacter l'administrateur.")
	errForbidden          = forbiddenError(CodeForbidden, "Forbidden")
	errSuperAdminTarget   = forbiddenError(CodeSuperAdminTarget, "Cannot modify a superadmin.")
	errUserNotFound       = newError(KindNotFound, CodeUserNotFound, "User not found")
	errInvalidParams      = validationError(CodeInvalidParams, "Invalid request parameters")
	errDuplicateSurnom    = conflictError(CodeDuplicateSurnom, "Ce surnom est déjà utilisé. Veuillez en choisir un autre.")
	errDuplicateEmail     = conflictError(CodeDuplicateEmail, "Cet email est déjà utilisé. Veuillez en choisir un autre.")
	errPasswordFields     = validationError(CodePasswordFields, "Tous les champs de mot de passe sont requis.")
	errOldPassword        = validationError(CodeOldPassword, "L'ancien mot de passe est incorrect.")
	errConfirmMismatch    = validationError(CodeConfirmMismatch, "Le nouveau mot de passe et la confirmation ne correspondent pas.")
)

// KindOf returns the kind of err, or KindInternal for anything that is not a *Error.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}
