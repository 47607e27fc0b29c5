package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/internal/discounts"
	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
)

const maxItemQuantity = 999

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type priceResolver interface {
	ResolveProduct(ctx context.Context, product *models.Product, now time.Time) (discounts.Resolution, error)
}

// Service exposes the shopping cart workflow for a single user.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	SetItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error)
	Checkout(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
}

type service struct {
	repo     CartRepository
	tx       txRunner
	resolver priceResolver
	now      func() time.Time
}

// NewService builds a cart service.
func NewService(repo CartRepository, tx txRunner, resolver priceResolver) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if resolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "price resolver required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		resolver: resolver,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// GetCart returns the open cart, or an empty OPEN view when none exists yet.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if err := ensureUser(userID); err != nil {
		return nil, err
	}
	cart, err := s.repo.FindOpenByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptyCart(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return s.price(ctx, cart)
}

// SetItem adds the product to the open cart or overwrites its quantity. The
// cart is created on first write.
func (s *service) SetItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if err := ensureUser(userID); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	if quantity < 1 || quantity > maxItemQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be between 1 and 999")
	}

	var cart *models.ShoppingCart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindProduct(ctx, productID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		open, err := s.openCart(ctx, repo, userID)
		if err != nil {
			return err
		}
		if err := repo.UpsertItem(ctx, &models.CartItem{
			CartID:    open.ID,
			ProductID: productID,
			Quantity:  quantity,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
		}
		cart, err = repo.FindOpenByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
		}
		return nil
	})
	if err != nil {
		return nil, asServiceError(err, "set cart item")
	}
	return s.price(ctx, cart)
}

// RemoveItem drops the product line. Missing carts or lines are not errors.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error) {
	if err := ensureUser(userID); err != nil {
		return nil, err
	}
	cart, err := s.repo.FindOpenByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptyCart(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := s.repo.DeleteItem(ctx, cart.ID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return s.GetCart(ctx, userID)
}

// Checkout closes the open cart and returns its final priced view.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if err := ensureUser(userID); err != nil {
		return nil, err
	}
	now := s.now()
	var cart *models.ShoppingCart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		open, err := repo.FindOpenByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no open cart")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(open.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
		}
		if err := repo.Close(ctx, open.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close cart")
		}
		open.Status = enums.CartStatusClosed
		open.ClosedAt = &now
		cart = open
		return nil
	})
	if err != nil {
		return nil, asServiceError(err, "checkout cart")
	}
	return s.price(ctx, cart)
}

func (s *service) openCart(ctx context.Context, repo CartRepository, userID uuid.UUID) (*models.ShoppingCart, error) {
	cart, err := repo.FindOpenByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	created, err := repo.Create(ctx, &models.ShoppingCart{UserID: userID, Status: enums.CartStatusOpen})
	if err != nil {
		if db.IsUniqueViolation(err, "shopping_carts_one_open_per_user") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart is being created concurrently")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

func (s *service) price(ctx context.Context, cart *models.ShoppingCart) (*CartDTO, error) {
	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	productsByID, err := s.repo.FindProducts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}

	now := s.now()
	total := decimal.Zero
	id := cart.ID
	out := &CartDTO{
		ID:       &id,
		Status:   cart.Status,
		Items:    make([]CartItemDTO, 0, len(cart.Items)),
		ClosedAt: cart.ClosedAt,
	}
	for _, item := range cart.Items {
		p, ok := productsByID[item.ProductID]
		if !ok {
			continue
		}
		res, err := s.resolver.ResolveProduct(ctx, &p, now)
		if err != nil {
			return nil, err
		}
		line := CartItemDTO{
			ProductID:   p.ID,
			Name:        p.Name,
			Quantity:    item.Quantity,
			PriceSource: res.Source,
		}
		unit := res.Price
		if p.Price.Valid {
			base := p.Price.Decimal
			line.BasePrice = discounts.FormatMoneyPtr(&base)
			if unit == nil {
				unit = &base
			}
		}
		if unit != nil {
			lineTotal := unit.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
			total = total.Add(lineTotal)
			line.UnitPrice = discounts.FormatMoneyPtr(unit)
			line.LineTotal = discounts.FormatMoneyPtr(&lineTotal)
		}
		out.Items = append(out.Items, line)
	}
	out.Total = discounts.FormatMoney(total)
	return out, nil
}

func emptyCart() *CartDTO {
	return &CartDTO{
		Status: enums.CartStatusOpen,
		Items:  []CartItemDTO{},
		Total:  discounts.FormatMoney(decimal.Zero),
	}
}

func asServiceError(err error, msg string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func ensureUser(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return nil
}
