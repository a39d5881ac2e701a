package sql

import (
	"accounts/internal/entity"
	"context"

	"gorm.io/gorm/clause"
)

// EnsureGrades inserts missing grade rows, leaving existing ones untouched.
func (r *GormRepository) EnsureGrades(ctx context.Context, grades []entity.DbGrade) error {
	if err := r.ready(); err != nil {
		return err
	}
	if len(grades) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&grades).Error
}

// EnsureEtats inserts missing state rows, leaving existing ones untouched.
func (r *GormRepository) EnsureEtats(ctx context.Context, etats []entity.DbEtat) error {
	if err := r.ready(); err != nil {
		return err
	}
	if len(etats) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&etats).Error
}
