package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/glassops/glassops-backend/pkg/db/dbtest"
	"github.com/glassops/glassops-backend/pkg/enums"
)

func TestRepositoryCreateAndLookup(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{
		Email:        "  Dispatch@Example.com ",
		PasswordHash: "hash",
		Name:         " Dana ",
	})
	require.NoError(t, err)
	assert.Equal(t, "dispatch@example.com", created.Email)
	assert.Equal(t, enums.UserRoleStaff, created.Role)
	assert.True(t, created.IsActive)

	found, err := repo.FindByEmail(ctx, "DISPATCH@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "Dana", found.Name)

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRepositoryUpdateLastLogin(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Email: "a@example.com", PasswordHash: "h", Name: "A", Role: enums.UserRoleAdmin})
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, at))

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	assert.True(t, at.Equal(*reloaded.LastLoginAt))
	assert.Equal(t, enums.UserRoleAdmin, reloaded.Role)
}
