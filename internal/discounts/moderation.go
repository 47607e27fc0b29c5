package discounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/outbox"
	"github.com/angelmondragon/catalog-backend/pkg/outbox/payloads"
)

// TransitionDiscountStatus records a moderation decision and syncs the
// product history of the discount in the same transaction. Any current status
// may be decided again.
func (s *service) TransitionDiscountStatus(ctx context.Context, principal Principal, discountID uuid.UUID, status enums.DiscountStatus) (*DiscountDTO, error) {
	if !principal.Role.CanModerate() {
		return nil, forbidden("moderator role required")
	}
	if !status.IsModerationDecision() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be approved or denied").
			WithDetails(map[string]any{"field": "status"})
	}

	now := s.now()
	var updated *models.Discount
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		discount, err := repo.LockDiscount(ctx, discountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("discount not found")
			}
			return err
		}
		previous := discount.Status
		if err := repo.UpdateStatus(ctx, discount.ID, status); err != nil {
			return err
		}
		discount.Status = status
		discount.UpdatedAt = now

		if _, err := s.history.SyncDiscount(ctx, tx, discount, now); err != nil {
			return err
		}

		err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDiscountStatusChanged,
			AggregateType: enums.AggregateDiscount,
			AggregateID:   discount.ID,
			Actor:         &outbox.ActorRef{UserID: principal.UserID, Role: string(principal.Role)},
			OccurredAt:    now,
			Data: payloads.DiscountStatusChangedEvent{
				DiscountID:     discount.ID,
				PreviousStatus: previous,
				Status:         status,
				Effective:      EffectiveStatus(EffectiveFromModel(discount), now),
				DecidedBy:      principal.UserID,
				DecidedAt:      now,
			},
		})
		if err != nil {
			return err
		}
		updated = discount
		return nil
	})
	if err != nil {
		return nil, dependency(err, "failed to update discount status")
	}

	if s.metrics != nil {
		s.metrics.ObserveDecision(string(enums.AggregateDiscount), string(status))
	}
	dto := toDiscountDTO(updated, now)
	return &dto, nil
}
