package discounts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
)

// Repository persists discounts and their product history.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) FindStore(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *Repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindBrandByName matches case-insensitively.
func (r *Repository) FindBrandByName(ctx context.Context, name string) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).Where("lower(name) = lower(?)", name).First(&brand).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

// FindCategoryByName matches case-insensitively.
func (r *Repository) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("lower(name) = lower(?)", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *Repository) CreateDiscount(ctx context.Context, discount *models.Discount) error {
	if discount.ID == uuid.Nil {
		discount.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(discount).Error
}

func (r *Repository) FindDiscount(ctx context.Context, id uuid.UUID) (*models.Discount, error) {
	var discount models.Discount
	if err := r.db.WithContext(ctx).First(&discount, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &discount, nil
}

// LockDiscount loads the discount row FOR UPDATE on Postgres so concurrent
// moderation and history sync of the same discount serialize.
func (r *Repository) LockDiscount(ctx context.Context, id uuid.UUID) (*models.Discount, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector != nil && r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var discount models.Discount
	if err := query.First(&discount, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &discount, nil
}

// UpdateStatus persists the moderation status only.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.DiscountStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Discount{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListFilter narrows discount listings.
type ListFilter struct {
	SubmittedBy *uuid.UUID
	Status      *enums.DiscountStatus
	Cursor      *pagination.Cursor
	Limit       int
}

// List returns discounts newest first using keyset pagination. Limit is used
// as given.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Discount, error) {
	query := r.db.WithContext(ctx).Model(&models.Discount{})
	if filter.SubmittedBy != nil {
		query = query.Where("submitted_by = ?", *filter.SubmittedBy)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID)
	}
	var rows []models.Discount
	err := query.Order("created_at DESC").Order("id DESC").Limit(filter.Limit).Find(&rows).Error
	return rows, err
}

// ListDirectRules loads approved discounts targeting the product, its
// category, its brand or its store whose window contains now.
func (r *Repository) ListDirectRules(ctx context.Context, product *models.Product, now time.Time) ([]models.Discount, error) {
	targets := r.db.Where("product_id = ?", product.ID).Or("category_id = ?", product.CategoryID)
	if product.BrandID != nil {
		targets = targets.Or("brand_id = ?", *product.BrandID)
	}
	if product.StoreID != nil {
		targets = targets.Or("store_id = ?", *product.StoreID)
	}
	var rows []models.Discount
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.DiscountStatusApproved).
		Where("starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at > ?", now).
		Where(targets).
		Find(&rows).Error
	return rows, err
}

// historyWithDiscount pairs a history row with its discount.
type historyWithDiscount struct {
	History  models.ProductDiscountHistory
	Discount models.Discount
}

// ListOpenHistory loads history rows of the product not closed at now, newest
// applied first, each with its discount.
func (r *Repository) ListOpenHistory(ctx context.Context, productID uuid.UUID, now time.Time) ([]historyWithDiscount, error) {
	var rows []models.ProductDiscountHistory
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Where("removed_at IS NULL OR removed_at > ?", now).
		Order("applied_at DESC").
		Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return r.attachDiscounts(ctx, rows)
}

// PageHistory returns one page of the product's full history plus the total.
func (r *Repository) PageHistory(ctx context.Context, productID uuid.UUID, offset, limit int) ([]historyWithDiscount, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.ProductDiscountHistory{}).Where("product_id = ?", productID)
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ProductDiscountHistory
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("applied_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	joined, err := r.attachDiscounts(ctx, rows)
	return joined, total, err
}

func (r *Repository) attachDiscounts(ctx context.Context, rows []models.ProductDiscountHistory) ([]historyWithDiscount, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	seen := make(map[uuid.UUID]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.DiscountID]; ok {
			continue
		}
		seen[row.DiscountID] = struct{}{}
		ids = append(ids, row.DiscountID)
	}
	var discounts []models.Discount
	if len(ids) > 0 {
		if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&discounts).Error; err != nil {
			return nil, err
		}
	}
	byID := make(map[uuid.UUID]models.Discount, len(discounts))
	for _, d := range discounts {
		byID[d.ID] = d
	}
	out := make([]historyWithDiscount, 0, len(rows))
	for _, row := range rows {
		d, ok := byID[row.DiscountID]
		if !ok {
			continue
		}
		out = append(out, historyWithDiscount{History: row, Discount: d})
	}
	return out, nil
}

// ListPricedProductsForTarget loads every product with a price that the
// target resolves to.
func (r *Repository) ListPricedProductsForTarget(ctx context.Context, target Target) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Where("price IS NOT NULL")
	switch target.Type() {
	case enums.DiscountTargetProduct:
		query = query.Where("id = ?", target.ID())
	case enums.DiscountTargetCategory:
		query = query.Where("category_id = ?", target.ID())
	case enums.DiscountTargetBrand:
		query = query.Where("brand_id = ?", target.ID())
	case enums.DiscountTargetStore:
		query = query.Where("store_id = ?", target.ID())
	default:
		return nil, errors.New("unknown discount target")
	}
	var rows []models.Product
	err := query.Order("id ASC").Find(&rows).Error
	return rows, err
}

// OpenHistoryProductIDs returns the products holding an open row for the discount.
func (r *Repository) OpenHistoryProductIDs(ctx context.Context, discountID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.ProductDiscountHistory{}).
		Where("discount_id = ? AND removed_at IS NULL", discountID).
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (r *Repository) CreateHistory(ctx context.Context, rows []models.ProductDiscountHistory) error {
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		if rows[i].ID == uuid.Nil {
			rows[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// CloseOpenHistory sets removed_at on every open row of the discount.
func (r *Repository) CloseOpenHistory(ctx context.Context, discountID uuid.UUID, removedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.ProductDiscountHistory{}).
		Where("discount_id = ? AND removed_at IS NULL", discountID).
		Update("removed_at", removedAt).Error
}

// ListStaleOpen returns discounts holding open history rows although they are
// no longer live at now. Rows are ordered by id and start after afterID when
// it is set.
func (r *Repository) ListStaleOpen(ctx context.Context, now time.Time, afterID uuid.UUID, limit int) ([]models.Discount, error) {
	open := r.db.Model(&models.ProductDiscountHistory{}).
		Select("discount_id").
		Where("removed_at IS NULL")
	query := r.db.WithContext(ctx).
		Where("id IN (?)", open).
		Where("status <> ? OR starts_at > ? OR (ends_at IS NOT NULL AND ends_at <= ?)", enums.DiscountStatusApproved, now, now)
	if afterID != uuid.Nil {
		query = query.Where("id > ?", afterID)
	}
	var rows []models.Discount
	err := query.Order("id ASC").Limit(limit).Find(&rows).Error
	return rows, err
}

// LiveCursor is the (starts_at, id) position of the last live discount read.
type LiveCursor struct {
	StartsAt time.Time
	ID       uuid.UUID
}

// ListLive returns approved discounts whose window contains now, oldest start
// first, positioned after the cursor when one is given.
func (r *Repository) ListLive(ctx context.Context, now time.Time, after *LiveCursor, limit int) ([]models.Discount, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", enums.DiscountStatusApproved).
		Where("starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at > ?", now)
	if after != nil {
		query = query.Where("starts_at > ? OR (starts_at = ? AND id > ?)", after.StartsAt, after.StartsAt, after.ID)
	}
	var rows []models.Discount
	err := query.Order("starts_at ASC").Order("id ASC").Limit(limit).Find(&rows).Error
	return rows, err
}
