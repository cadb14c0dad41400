package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:users_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT,
  phone TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func TestRepositoryCreateAndFind(t *testing.T) {
	t.Parallel()

	repo := NewRepository(setupUsersTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{
		Email:        "buyer@example.com",
		PasswordHash: "argon2id$hash",
		FirstName:    "Buyer",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
	assert.True(t, created.IsActive)

	byEmail, err := repo.FindByEmail(ctx, "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", byID.Email)
}

func TestRepositoryCreateDuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := NewRepository(setupUsersTestDB(t))
	ctx := context.Background()

	dto := CreateUserDTO{Email: "dup@example.com", PasswordHash: "hash", FirstName: "First"}
	_, err := repo.Create(ctx, dto)
	require.NoError(t, err)

	_, err = repo.Create(ctx, dto)
	require.Error(t, err)
}

func TestRepositoryUpdateLastLogin(t *testing.T) {
	t.Parallel()

	repo := NewRepository(setupUsersTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{
		Email:        "login@example.com",
		PasswordHash: "hash",
		FirstName:    "Login",
	})
	require.NoError(t, err)
	require.Nil(t, created.LastLoginAt)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, created.ID, at))

	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	assert.WithinDuration(t, at, *reloaded.LastLoginAt, time.Second)
}

func TestRepositoryFindByIDMissing(t *testing.T) {
	t.Parallel()

	repo := NewRepository(setupUsersTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
