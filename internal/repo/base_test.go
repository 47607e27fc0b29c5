package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/pkg/db/dbtest"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
)

func seedBrands(t *testing.T, base Base, names ...string) []models.Brand {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]models.Brand, 0, len(names))
	for i, name := range names {
		brand := models.Brand{ID: uuid.New(), Name: name, CreatedAt: start.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, base.DB(context.Background()).Create(&brand).Error)
		rows = append(rows, brand)
	}
	return rows
}

func TestBaseDBBindsContext(t *testing.T) {
	base := NewBase(dbtest.Open(t).DB())

	withCtx := base.DB(context.Background())
	require.NotNil(t, withCtx)
	require.NotNil(t, withCtx.Statement)
	require.NotNil(t, withCtx.Statement.Context)
}

func TestDeleteByID(t *testing.T) {
	base := NewBase(dbtest.Open(t).DB())
	brands := seedBrands(t, base, "Oatly")

	require.NoError(t, base.DeleteByID(context.Background(), &models.Brand{}, brands[0].ID))

	err := base.DeleteByID(context.Background(), &models.Brand{}, brands[0].ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound), "got %v", err)
}

func TestNewestFirstPagesAfterCursor(t *testing.T) {
	base := NewBase(dbtest.Open(t).DB())
	seeded := seedBrands(t, base, "first", "second", "third")

	var page []models.Brand
	require.NoError(t, NewestFirst(base.DB(context.Background()).Model(&models.Brand{}), nil, 2).Find(&page).Error)
	require.Len(t, page, 2)
	require.Equal(t, "third", page[0].Name)
	require.Equal(t, "second", page[1].Name)

	cursor := &pagination.Cursor{CreatedAt: seeded[1].CreatedAt, ID: seeded[1].ID}
	var next []models.Brand
	require.NoError(t, NewestFirst(base.DB(context.Background()).Model(&models.Brand{}), cursor, 2).Find(&next).Error)
	require.Len(t, next, 1)
	require.Equal(t, "first", next[0].Name)
}
