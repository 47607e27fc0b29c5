package discounts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
)

type resolutionRecorder interface {
	ObserveResolution(source string)
}

// Resolver loads the pricing candidates of a product and runs Resolve over them.
type Resolver struct {
	repo    *Repository
	metrics resolutionRecorder
}

// NewResolver builds a resolver. metrics may be nil.
func NewResolver(repo *Repository, metrics resolutionRecorder) *Resolver {
	return &Resolver{repo: repo, metrics: metrics}
}

// WithTx returns a resolver reading through tx.
func (r *Resolver) WithTx(tx *gorm.DB) *Resolver {
	return &Resolver{repo: r.repo.WithTx(tx), metrics: r.metrics}
}

// ResolvePrice returns the discounted price of the product at now, or nil when
// no discount applies or the product has no price.
func (r *Resolver) ResolvePrice(ctx context.Context, productID uuid.UUID, now time.Time) (*decimal.Decimal, error) {
	product, err := r.repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("product not found")
		}
		return nil, dependency(err, "failed to load product")
	}
	res, err := r.ResolveProduct(ctx, product, now)
	if err != nil {
		return nil, err
	}
	return res.Price, nil
}

// ResolveProduct resolves an already loaded product.
func (r *Resolver) ResolveProduct(ctx context.Context, product *models.Product, now time.Time) (Resolution, error) {
	priced := PricedProductFromModel(product)
	if priced.Price == nil {
		r.observe(Resolution{Source: SourceNoPrice})
		return Resolution{Source: SourceNoPrice}, nil
	}
	candidates, err := r.candidates(ctx, product, now)
	if err != nil {
		return Resolution{}, err
	}
	res := Resolve(priced, candidates, now)
	r.observe(res)
	return res, nil
}

func (r *Resolver) candidates(ctx context.Context, product *models.Product, now time.Time) (Candidates, error) {
	direct, err := r.repo.ListDirectRules(ctx, product, now)
	if err != nil {
		return Candidates{}, dependency(err, "failed to load discount rules")
	}
	var out Candidates
	for i := range direct {
		if rule, ok := RuleFromModel(&direct[i]); ok {
			out.Direct = append(out.Direct, rule)
		}
	}
	if len(out.Direct) > 0 {
		return out, nil
	}

	history, err := r.repo.ListOpenHistory(ctx, product.ID, now)
	if err != nil {
		return Candidates{}, dependency(err, "failed to load discount history")
	}
	for i := range history {
		rule, ok := RuleFromModel(&history[i].Discount)
		if !ok {
			continue
		}
		out.History = append(out.History, HistoryEntry{
			AppliedAt: history[i].History.AppliedAt,
			RemovedAt: history[i].History.RemovedAt,
			Rule:      rule,
		})
	}
	return out, nil
}

func (r *Resolver) observe(res Resolution) {
	if r.metrics != nil {
		r.metrics.ObserveResolution(res.Source)
	}
}
