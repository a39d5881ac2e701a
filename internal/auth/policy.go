package auth

import (
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 20
	// PasswordSpecialChars lists the characters that satisfy the special-character rule.
	PasswordSpecialChars = `!@#$%^&*(),.?":{}|<>`
)

// PasswordPolicyMessage is returned to callers whose password fails ValidatePassword.
const PasswordPolicyMessage = "Le mot de passe doit contenir entre 8 et 20 caractères, inclure une majuscule, une minuscule, un chiffre et un caractère spécial."

// ValidatePassword reports whether candidate satisfies the password policy:
// 8 to 20 characters with at least one ASCII uppercase letter, one ASCII
// lowercase letter, one digit and one character from PasswordSpecialChars.
func ValidatePassword(candidate string) bool {
	length := utf8.RuneCountInString(candidate)
	if length < MinPasswordLength || length > MaxPasswordLength {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, ch := range candidate {
		switch {
		case ch >= 'A' && ch <= 'Z':
			hasUpper = true
		case ch >= 'a' && ch <= 'z':
			hasLower = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		case strings.ContainsRune(PasswordSpecialChars, ch):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSpecial
}
