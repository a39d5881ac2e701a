package model

import (
	"accounts/internal/auth"
	"accounts/internal/config"
	"accounts/internal/entity"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type accountSeed struct {
	Surnom   string
	Email    string
	Password string
	Role     entity.Role
}

// DefaultGrades returns the role reference rows.
func DefaultGrades() []entity.DbGrade {
	return []entity.DbGrade{
		{ID: entity.RoleSuperAdmin, Nom: entity.RoleSuperAdmin.String()},
		{ID: entity.RoleAdmin, Nom: entity.RoleAdmin.String()},
		{ID: entity.RoleStandardUser, Nom: entity.RoleStandardUser.String()},
	}
}

// DefaultEtats returns the account state reference rows.
func DefaultEtats() []entity.DbEtat {
	return []entity.DbEtat{
		{ID: entity.StateActive, Nom: entity.StateActive.String()},
		{ID: entity.StateDeleted, Nom: entity.StateDeleted.String()},
		{ID: entity.StateBlocked, Nom: entity.StateBlocked.String()},
		{ID: entity.StateSold, Nom: entity.StateSold.String()},
	}
}

// SeedDefaults ensures reference data and the configured default accounts exist.
func SeedDefaults(ctx context.Context, repo Repository, cfg config.Config, hasher *auth.Hasher) error {
	if repo == nil {
		return nil
	}
	if err := repo.EnsureGrades(ctx, DefaultGrades()); err != nil {
		return fmt.Errorf("seed grades: %w", err)
	}
	if err := repo.EnsureEtats(ctx, DefaultEtats()); err != nil {
		return fmt.Errorf("seed etats: %w", err)
	}
	if hasher == nil {
		hasher = auth.NewHasher(cfg.BcryptCost)
	}

	for _, seed := range buildDefaultAccountSeeds(cfg) {
		if err := createSeedAccount(ctx, repo, hasher, seed); err != nil {
			return err
		}
	}

	count, err := repo.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	logrus.WithField("users", count).Info("account store ready")
	return nil
}

func createSeedAccount(ctx context.Context, repo Repository, hasher *auth.Hasher, seed accountSeed) error {
	_, err := repo.GetUserBySurnom(ctx, seed.Surnom)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	digest, salt, err := hasher.Hash(seed.Password)
	if err != nil {
		return fmt.Errorf("hash %s password: %w", seed.Role, err)
	}
	user := &entity.DbUser{
		Surnom:     seed.Surnom,
		Email:      seed.Email,
		MotDePasse: digest,
		Salt:       salt,
		GradeID:    seed.Role,
		EtatID:     entity.StateActive,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create %s account: %w", seed.Role, err)
	}
	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"surnom":  user.Surnom,
		"grade":   seed.Role.String(),
	}).Info("default account created")
	return nil
}

func buildDefaultAccountSeeds(cfg config.Config) []accountSeed {
	candidates := []accountSeed{
		{
			Surnom:   strings.TrimSpace(cfg.SeedSuperAdminSurnom),
			Email:    strings.TrimSpace(cfg.SeedSuperAdminEmail),
			Password: cfg.SeedSuperAdminPassword,
			Role:     entity.RoleSuperAdmin,
		},
		{
			Surnom:   strings.TrimSpace(cfg.SeedAdminSurnom),
			Email:    strings.TrimSpace(cfg.SeedAdminEmail),
			Password: cfg.SeedAdminPassword,
			Role:     entity.RoleAdmin,
		},
	}

	seeds := make([]accountSeed, 0, len(candidates))
	for _, c := range candidates {
		if c.Surnom == "" || c.Email == "" || strings.TrimSpace(c.Password) == "" {
			continue
		}
		seeds = append(seeds, c)
	}
	return seeds
}
