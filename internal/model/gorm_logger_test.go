package model

import (
	"accounts/internal/entity"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestGormLoggerOmitsBoundValues(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	repo := newTestRepository(t)
	createUser(t, repo, "alice", "alice@example.com", entity.RoleStandardUser, entity.StateActive)
	hook.Reset()

	const digest = "$2a$04$leakedDigestValue"
	err := repo.CreateUser(context.Background(), &entity.DbUser{
		Surnom: "alice", Email: "other@example.com", MotDePasse: digest, Salt: "leakedSaltValue",
		GradeID: entity.RoleStandardUser, EtatID: entity.StateActive,
	})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	var failed *logrus.Entry
	for _, entry := range hook.AllEntries() {
		rendered := entry.Message + fmt.Sprint(entry.Data)
		assert.NotContains(t, rendered, digest)
		assert.NotContains(t, rendered, "leakedSaltValue")
		if entry.Message == "gorm query failed" {
			failed = entry
		}
	}
	require.NotNil(t, failed, "expected the failed insert to be logged")
	assert.Equal(t, logrus.ErrorLevel, failed.Level)
	assert.Contains(t, failed.Data["sql"], "INSERT INTO")
}

func TestGormLoggerLevels(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	gormLog := newGormLogger(base)
	query := func() (string, int64) { return "SELECT 1", 1 }

	tests := []struct {
		name  string
		log   logger.Interface
		begin time.Time
		err   error
		level logrus.Level
		none  bool
	}{
		{name: "error", log: gormLog, begin: time.Now(), err: errors.New("boom"), level: logrus.ErrorLevel},
		{name: "record not found ignored", log: gormLog, begin: time.Now(), err: gorm.ErrRecordNotFound, none: true},
		{name: "slow", log: gormLog, begin: time.Now().Add(-time.Minute), level: logrus.WarnLevel},
		{name: "fast at warn level", log: gormLog, begin: time.Now(), none: true},
		{name: "fast at info level", log: gormLog.LogMode(logger.Info), begin: time.Now(), level: logrus.DebugLevel},
		{name: "silent", log: gormLog.LogMode(logger.Silent), begin: time.Now(), err: errors.New("boom"), none: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook.Reset()
			tt.log.Trace(context.Background(), tt.begin, query, tt.err)
			if tt.none {
				assert.Empty(t, hook.AllEntries())
				return
			}
			entry := hook.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, tt.level, entry.Level)
			assert.Equal(t, "SELECT 1", entry.Data["sql"])
		})
	}

	sql, vars := gormLog.ParamsFilter(context.Background(), "SELECT ? FROM t", "secret")
	assert.Equal(t, "SELECT ? FROM t", sql)
	assert.Empty(t, vars)
	assert.False(t, strings.Contains(sql, "secret"))
}
