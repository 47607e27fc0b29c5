package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-backend/pkg/db/dbtest"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
)

func TestCreateDefaultsRoleAndActive(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())

	user, err := repo.Create(context.Background(), CreateUserDTO{Email: "a@example.com", PasswordHash: "x", Name: "Ada"})
	require.NoError(t, err)
	require.Equal(t, enums.UserRoleUser, user.Role)
	require.True(t, user.IsActive)

	loaded, err := repo.FindByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, loaded.ID)
}

func TestMe(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Email: "me@example.com", PasswordHash: "x", Name: "Me"})
	require.NoError(t, err)

	me, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "me@example.com", me.Email)

	_, err = svc.Me(ctx, uuid.New())
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
	_, err = svc.Me(ctx, uuid.Nil)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))
}

func TestListIsAdminOnly(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	for _, email := range []string{"one@example.com", "two@example.com", "three@example.com"} {
		_, err := repo.Create(ctx, CreateUserDTO{Email: email, PasswordHash: "x", Name: email})
		require.NoError(t, err)
	}

	_, err = svc.List(ctx, enums.UserRoleModerator, pagination.Params{})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))

	first, err := svc.List(ctx, enums.UserRoleAdmin, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.List(ctx, enums.UserRoleAdmin, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	require.Empty(t, second.NextCursor)
}
