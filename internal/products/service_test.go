package product

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/internal/discounts"
	"github.com/angelmondragon/catalog-backend/pkg/db/dbtest"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
)

type fixture struct {
	svc      Service
	conn     *gorm.DB
	brand    models.Brand
	other    models.Brand
	category models.Category
	store    models.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := dbtest.Open(t)
	conn := client.DB()
	f := fixture{
		conn:     conn,
		brand:    models.Brand{ID: uuid.New(), Name: "Rimi"},
		other:    models.Brand{ID: uuid.New(), Name: "Iki"},
		category: models.Category{ID: uuid.New(), Name: "Bakery"},
	}
	require.NoError(t, conn.Create(&f.brand).Error)
	require.NoError(t, conn.Create(&f.other).Error)
	require.NoError(t, conn.Create(&f.category).Error)
	f.store = models.Store{ID: uuid.New(), BrandID: f.brand.ID, AddressLine1: "Ukmergės g. 1", City: "Vilnius"}
	require.NoError(t, conn.Create(&f.store).Error)

	resolver := discounts.NewResolver(discounts.NewRepository(conn), nil)
	svc, err := NewService(NewRepository(conn), client, resolver)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func decimalPtr(raw string) *decimal.Decimal {
	d := decimal.RequireFromString(raw)
	return &d
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil, nil)
	require.Error(t, err)
}

func TestCreateProductInheritsStoreBrand(t *testing.T) {
	f := newFixture(t)

	dto, err := f.svc.CreateProduct(context.Background(), enums.UserRoleModerator, CreateProductInput{
		StoreID:    &f.store.ID,
		CategoryID: f.category.ID,
		Name:       " Rye bread ",
		Price:      decimalPtr("1.999"),
	})
	require.NoError(t, err)
	require.Equal(t, "Rye bread", dto.Name)
	require.Equal(t, f.brand.ID, *dto.BrandID)
	require.Equal(t, "2.00", *dto.Price)
	require.Nil(t, dto.ResolvedPrice)
	require.Equal(t, discounts.SourceNone, dto.PriceSource)
	require.Equal(t, enums.PriceUnitPerPiece, dto.PriceUnit)
}

func TestCreateProductRejectsBrandStoreMismatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateProduct(context.Background(), enums.UserRoleAdmin, CreateProductInput{
		StoreID:    &f.store.ID,
		BrandID:    &f.other.ID,
		CategoryID: f.category.ID,
		Name:       "Bagel",
	})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	require.Equal(t, discounts.ReasonBrandStoreMismatch, discounts.ReasonOf(err))

	var n int64
	require.NoError(t, f.conn.Model(&models.Product{}).Count(&n).Error)
	require.Zero(t, n)
}

func TestCreateProductChecksReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateProduct(ctx, enums.UserRoleAdmin, CreateProductInput{CategoryID: uuid.New(), Name: "Nothing"})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	missing := uuid.New()
	_, err = f.svc.CreateProduct(ctx, enums.UserRoleAdmin, CreateProductInput{StoreID: &missing, CategoryID: f.category.ID, Name: "Nowhere"})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	_, err = f.svc.CreateProduct(ctx, enums.UserRoleUser, CreateProductInput{CategoryID: f.category.ID, Name: "Sneaky"})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))
}

func TestCreateProductDuplicateNameConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	input := CreateProductInput{StoreID: &f.store.ID, CategoryID: f.category.ID, Name: "Croissant"}

	_, err := f.svc.CreateProduct(ctx, enums.UserRoleAdmin, input)
	require.NoError(t, err)
	_, err = f.svc.CreateProduct(ctx, enums.UserRoleAdmin, input)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict))
}

func TestGetProductEmbedsResolvedPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.CreateProduct(ctx, enums.UserRoleAdmin, CreateProductInput{
		StoreID:    &f.store.ID,
		CategoryID: f.category.ID,
		Name:       "Baguette",
		Price:      decimalPtr("10.00"),
	})
	require.NoError(t, err)

	discount := models.Discount{
		ID:           uuid.New(),
		Name:         "bakery week",
		DiscountType: enums.DiscountTypePercentage,
		Value:        decimal.NewFromInt(20),
		TargetType:   enums.DiscountTargetCategory,
		CategoryID:   &f.category.ID,
		StartsAt:     time.Now().UTC().Add(-time.Hour),
		Status:       enums.DiscountStatusApproved,
	}
	require.NoError(t, f.conn.Create(&discount).Error)

	dto, err := f.svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "10.00", *dto.Price)
	require.Equal(t, "8.00", *dto.ResolvedPrice)
	require.Equal(t, discounts.SourceDirect, dto.PriceSource)
}

func TestUpdateProductClearsPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.CreateProduct(ctx, enums.UserRoleAdmin, CreateProductInput{
		CategoryID: f.category.ID,
		Name:       "Cake",
		Price:      decimalPtr("5.00"),
	})
	require.NoError(t, err)

	name := "Birthday cake"
	dto, err := f.svc.UpdateProduct(ctx, enums.UserRoleModerator, created.ID, UpdateProductInput{Name: &name, ClearPrice: true})
	require.NoError(t, err)
	require.Equal(t, name, dto.Name)
	require.Nil(t, dto.Price)
	require.Equal(t, discounts.SourceNoPrice, dto.PriceSource)

	_, err = f.svc.UpdateProduct(ctx, enums.UserRoleModerator, uuid.New(), UpdateProductInput{Name: &name})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestListProductsFiltersAndPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, name := range []string{"White bread", "Brown bread", "Muffin"} {
		_, err := f.svc.CreateProduct(ctx, enums.UserRoleAdmin, CreateProductInput{StoreID: &f.store.ID, CategoryID: f.category.ID, Name: name})
		require.NoError(t, err)
	}

	list, err := f.svc.ListProducts(ctx, ListProductsInput{Filters: ProductListFilters{Query: "BREAD"}})
	require.NoError(t, err)
	require.Len(t, list.Products, 2)

	page, err := f.svc.ListProducts(ctx, ListProductsInput{
		Filters:    ProductListFilters{StoreID: &f.store.ID},
		Pagination: pagination.Params{Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, page.Products, 2)
	require.NotEmpty(t, page.NextCursor)
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.CreateProduct(ctx, enums.UserRoleAdmin, CreateProductInput{CategoryID: f.category.ID, Name: "Donut"})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteProduct(ctx, enums.UserRoleAdmin, created.ID))
	require.True(t, pkgerrors.Is(f.svc.DeleteProduct(ctx, enums.UserRoleAdmin, created.ID), pkgerrors.CodeNotFound))
}

func TestApplyUpdateToProductTrims(t *testing.T) {
	product := &models.Product{Name: "old"}
	name := "  New name "
	external := "  "
	applyUpdateToProduct(product, UpdateProductInput{Name: &name, ExternalID: &external})
	require.Equal(t, "New name", product.Name)
	require.Nil(t, product.ExternalID)
}
