package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used at every call site unless configured otherwise.
const DefaultBcryptCost = 10

// bcrypt digests start with "$2a$NN$" followed by 22 characters of encoded salt.
const bcryptSaltLength = 29

// Hasher produces salted bcrypt digests.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher. Costs outside bcrypt's range fall back to DefaultBcryptCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &Hasher{cost: cost}
}

// Hash 对明文密码进行哈希处理，返回摘要及其盐值。
// 盐值是 bcrypt 嵌入摘要的前缀，单独返回以便与摘要一同持久化。
func (h *Hasher) Hash(password string) (digest string, salt string, err error) {
	if strings.TrimSpace(password) == "" {
		return "", "", errors.New("password must not be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", "", err
	}
	if len(hashed) < bcryptSaltLength {
		return "", "", errors.New("unexpected bcrypt digest length")
	}
	return string(hashed), string(hashed[:bcryptSaltLength]), nil
}

// Verify 验证密码是否与存储的哈希值匹配
func (h *Hasher) Verify(password, digest string) bool {
	if strings.TrimSpace(digest) == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
