package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-backend/internal/users"
	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/db/dbtest"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/security"
)

func TestRegisterCreatesUser(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: client, PasswordConfig: config.PasswordConfig{}})
	require.NoError(t, err)
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterRequest{Name: " Ada ", Email: " Ada@Example.com ", Password: "long-enough"})
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", created.Email)
	require.Equal(t, "Ada", created.Name)
	require.Equal(t, enums.UserRoleUser, created.Role)

	stored, err := users.NewRepository(client.DB()).FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	ok, err := security.VerifyPassword("long-enough", stored.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "long-enough"})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict))
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: client})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{Name: "Bo", Email: "bo@example.com", Password: "1234567"})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}
