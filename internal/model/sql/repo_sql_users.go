package sql

import (
	"accounts/internal/entity"
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var orderByUserID = clause.OrderByColumn{Column: clause.Column{Name: "UtilisateurID"}}

// CreateUser persists a new user record.
func (r *GormRepository) CreateUser(ctx context.Context, user *entity.DbUser) error {
	if err := r.ready(); err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user is nil")
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// UpdateUser updates an existing user entry.
func (r *GormRepository) UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error {
	if err := r.ready(); err != nil {
		return err
	}
	if id == 0 {
		return fmt.Errorf("invalid user")
	}
	values := updates.ToMap()
	if len(values) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&entity.DbUser{}).
		Where(map[string]interface{}{"UtilisateurID": id}).
		Updates(values).Error
}

// GetUserByID loads a user by ID.
func (r *GormRepository) GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var user entity.DbUser
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserBySurnom loads a user by its exact handle.
func (r *GormRepository) GetUserBySurnom(ctx context.Context, surnom string) (*entity.DbUser, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(surnom)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var user entity.DbUser
	err := r.db.WithContext(ctx).
		Where(map[string]interface{}{"Surnom": trimmed}).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindLiveUserBySurnomOrEmail returns the first non-deleted user, other than
// excludeID, holding the given handle or email. Empty values are ignored.
func (r *GormRepository) FindLiveUserBySurnomOrEmail(ctx context.Context, surnom, email string, excludeID uint) (*entity.DbUser, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	surnom = strings.TrimSpace(surnom)
	email = strings.TrimSpace(email)

	var match *gorm.DB
	switch {
	case surnom != "" && email != "":
		match = r.db.Where(map[string]interface{}{"Surnom": surnom}).Or(map[string]interface{}{"Email": email})
	case surnom != "":
		match = r.db.Where(map[string]interface{}{"Surnom": surnom})
	case email != "":
		match = r.db.Where(map[string]interface{}{"Email": email})
	default:
		return nil, gorm.ErrRecordNotFound
	}

	query := r.db.WithContext(ctx).
		Where(match).
		Not(map[string]interface{}{"EtatID": entity.StateDeleted})
	if excludeID != 0 {
		query = query.Not(map[string]interface{}{"UtilisateurID": excludeID})
	}

	var user entity.DbUser
	if err := query.Order(orderByUserID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUserBySurnom removes the row holding the handle.
func (r *GormRepository) DeleteUserBySurnom(ctx context.Context, surnom string) error {
	if err := r.ready(); err != nil {
		return err
	}
	trimmed := strings.TrimSpace(surnom)
	if trimmed == "" {
		return gorm.ErrRecordNotFound
	}
	result := r.db.WithContext(ctx).
		Where(map[string]interface{}{"Surnom": trimmed}).
		Delete(&entity.DbUser{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListAdmins returns SuperAdmin and Admin accounts with their grade joined.
func (r *GormRepository) ListAdmins(ctx context.Context) ([]entity.DbUser, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var users []entity.DbUser
	err := r.db.WithContext(ctx).
		Preload("Grade").
		Where(map[string]interface{}{"GradeID": []entity.Role{entity.RoleSuperAdmin, entity.RoleAdmin}}).
		Order(orderByUserID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ListUsersByCriteria returns users matching both grade and state.
func (r *GormRepository) ListUsersByCriteria(ctx context.Context, criteria entity.UserCriteria) ([]entity.DbUser, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var users []entity.DbUser
	err := r.db.WithContext(ctx).
		Where(map[string]interface{}{"GradeID": criteria.GradeID, "EtatID": criteria.EtatID}).
		Order(orderByUserID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// CountUsers returns total user count.
func (r *GormRepository) CountUsers(ctx context.Context) (int64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.DbUser{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
