package model

import (
	"accounts/internal/auth"
	"accounts/internal/config"
	"accounts/internal/entity"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestRepository(t *testing.T) Repository {
	t.Helper()
	repo, err := InitRepository(&config.Config{DBType: DBTypeSQLite, DBPath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, repo.EnsureGrades(context.Background(), DefaultGrades()))
	require.NoError(t, repo.EnsureEtats(context.Background(), DefaultEtats()))
	return repo
}

func createUser(t *testing.T, repo Repository, surnom, email string, role entity.Role, state entity.State) *entity.DbUser {
	t.Helper()
	user := &entity.DbUser{
		Surnom:     surnom,
		Email:      email,
		MotDePasse: "digest",
		Salt:       "salt",
		GradeID:    role,
		EtatID:     state,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	require.NotZero(t, user.ID)
	return user
}

func TestInitRepositoryRejectsUnknownType(t *testing.T) {
	_, err := InitRepository(&config.Config{DBType: "oracle"})
	assert.Error(t, err)

	_, err = InitRepository(nil)
	assert.Error(t, err)
}

func TestCreateUserRejectsDuplicateSurnom(t *testing.T) {
	repo := newTestRepository(t)
	createUser(t, repo, "alice", "alice@example.com", entity.RoleStandardUser, entity.StateActive)

	err := repo.CreateUser(context.Background(), &entity.DbUser{
		Surnom: "alice", Email: "other@example.com", MotDePasse: "d", Salt: "s",
		GradeID: entity.RoleStandardUser, EtatID: entity.StateActive,
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestGetUserLookups(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	alice := createUser(t, repo, "alice", "alice@example.com", entity.RoleStandardUser, entity.StateActive)

	byID, err := repo.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Surnom)

	bySurnom, err := repo.GetUserBySurnom(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, bySurnom.ID)

	_, err = repo.GetUserBySurnom(ctx, "Alice")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.GetUserByID(ctx, alice.ID+100)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.GetUserByID(ctx, 0)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindLiveUserBySurnomOrEmail(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	alice := createUser(t, repo, "alice", "alice@example.com", entity.RoleStandardUser, entity.StateActive)
	createUser(t, repo, "delete-2026-01-01T00-00-00-000Z", "Utilisateur@delete.com", entity.RoleStandardUser, entity.StateDeleted)
	blocked := createUser(t, repo, "bob", "bob@example.com", entity.RoleStandardUser, entity.StateBlocked)

	tests := []struct {
		name      string
		surnom    string
		email     string
		excludeID uint
		wantID    uint
	}{
		{name: "by surnom", surnom: "alice", wantID: alice.ID},
		{name: "by email", email: "alice@example.com", wantID: alice.ID},
		{name: "either matches", surnom: "nobody", email: "bob@example.com", wantID: blocked.ID},
		{name: "deleted rows ignored", email: "Utilisateur@delete.com"},
		{name: "excluded id ignored", surnom: "alice", excludeID: alice.ID},
		{name: "no criteria", surnom: " ", email: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := repo.FindLiveUserBySurnomOrEmail(ctx, tt.surnom, tt.email, tt.excludeID)
			if tt.wantID == 0 {
				assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, user.ID)
		})
	}
}

func TestUpdateUserAppliesAndClearsFields(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	alice := createUser(t, repo, "alice", "alice@example.com", entity.RoleStandardUser, entity.StateActive)

	path := "/uploads/1-avatar.png"
	email := "new@example.com"
	require.NoError(t, repo.UpdateUser(ctx, alice.ID, entity.UserUpdates{Email: &email, CheminImage: &path}))

	reloaded, err := repo.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, email, reloaded.Email)
	assert.Equal(t, path, reloaded.AvatarPath())

	state := entity.StateBlocked
	require.NoError(t, repo.UpdateUser(ctx, alice.ID, entity.UserUpdates{ClearImage: true, EtatID: &state}))
	reloaded, err = repo.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CheminImage)
	assert.Equal(t, entity.StateBlocked, reloaded.EtatID)

	assert.NoError(t, repo.UpdateUser(ctx, alice.ID, entity.UserUpdates{}))
	assert.Error(t, repo.UpdateUser(ctx, 0, entity.UserUpdates{Email: &email}))
}

func TestDeleteUserBySurnom(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	createUser(t, repo, "alice", "alice@example.com", entity.RoleStandardUser, entity.StateActive)

	require.NoError(t, repo.DeleteUserBySurnom(ctx, "alice"))
	_, err := repo.GetUserBySurnom(ctx, "alice")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, repo.DeleteUserBySurnom(ctx, "alice"), gorm.ErrRecordNotFound)
}

func TestListAdminsJoinsGrade(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	root := createUser(t, repo, "root", "root@example.com", entity.RoleSuperAdmin, entity.StateActive)
	admin := createUser(t, repo, "admin", "admin@example.com", entity.RoleAdmin, entity.StateBlocked)
	createUser(t, repo, "alice", "alice@example.com", entity.RoleStandardUser, entity.StateActive)

	admins, err := repo.ListAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 2)
	assert.Equal(t, root.ID, admins[0].ID)
	assert.Equal(t, admin.ID, admins[1].ID)
	require.NotNil(t, admins[0].Grade)
	assert.Equal(t, "SuperAdmin", admins[0].Grade.Nom)
	require.NotNil(t, admins[1].Grade)
	assert.Equal(t, "Admin", admins[1].Grade.Nom)
}

func TestListUsersByCriteria(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	alice := createUser(t, repo, "alice", "alice@example.com", entity.RoleStandardUser, entity.StateActive)
	createUser(t, repo, "bob", "bob@example.com", entity.RoleStandardUser, entity.StateBlocked)
	createUser(t, repo, "admin", "admin@example.com", entity.RoleAdmin, entity.StateActive)

	users, err := repo.ListUsersByCriteria(ctx, entity.UserCriteria{GradeID: entity.RoleStandardUser, EtatID: entity.StateActive})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, alice.ID, users[0].ID)

	users, err = repo.ListUsersByCriteria(ctx, entity.UserCriteria{GradeID: entity.RoleAdmin, EtatID: entity.StateBlocked})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	cfg := config.Config{
		SeedSuperAdminSurnom:   "root",
		SeedSuperAdminEmail:    "root@example.com",
		SeedSuperAdminPassword: "Sup3r!pass",
		SeedAdminSurnom:        "admin",
		SeedAdminEmail:         "",
		SeedAdminPassword:      "Adm1n!pass",
	}
	hasher := auth.NewHasher(bcrypt.MinCost)

	require.NoError(t, SeedDefaults(ctx, repo, cfg, hasher))
	require.NoError(t, SeedDefaults(ctx, repo, cfg, hasher))

	count, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count, "admin seed without email is skipped")

	root, err := repo.GetUserBySurnom(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSuperAdmin, root.GradeID)
	assert.Equal(t, entity.StateActive, root.EtatID)
	assert.True(t, hasher.Verify("Sup3r!pass", root.MotDePasse))
	assert.Equal(t, root.MotDePasse[:len(root.Salt)], root.Salt)
}

func TestPingAndKeepAliveStops(t *testing.T) {
	repo := newTestRepository(t)
	require.NoError(t, repo.Ping(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		KeepAlive(ctx, repo, 5*time.Millisecond)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("keep-alive loop did not stop after cancel")
	}
}
