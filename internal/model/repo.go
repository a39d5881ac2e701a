package model

import (
	"accounts/internal/entity"
	"context"
)

// Repository 定义数据库操作接口
//
// 查询不到记录时返回 gorm.ErrRecordNotFound。
type Repository interface {
	// 用户管理
	CreateUser(ctx context.Context, user *entity.DbUser) error
	UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error
	GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error)
	GetUserBySurnom(ctx context.Context, surnom string) (*entity.DbUser, error)
	// FindLiveUserBySurnomOrEmail returns a non-deleted user other than
	// excludeID whose handle or email matches.
	FindLiveUserBySurnomOrEmail(ctx context.Context, surnom, email string, excludeID uint) (*entity.DbUser, error)
	DeleteUserBySurnom(ctx context.Context, surnom string) error
	ListAdmins(ctx context.Context) ([]entity.DbUser, error)
	ListUsersByCriteria(ctx context.Context, criteria entity.UserCriteria) ([]entity.DbUser, error)
	CountUsers(ctx context.Context) (int64, error)

	// 参考数据
	EnsureGrades(ctx context.Context, grades []entity.DbGrade) error
	EnsureEtats(ctx context.Context, etats []entity.DbEtat) error

	Ping(ctx context.Context) error
}
