package reports

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/outbox"
	"github.com/angelmondragon/catalog-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
)

const (
	maxImageBytes      = 2 << 20
	maxDescriptionSize = 2000
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type decisionRecorder interface {
	ObserveDecision(entity, status string)
}

// Service exposes report intake and moderation.
type Service interface {
	Create(ctx context.Context, reporterID uuid.UUID, input CreateInput) (*ReportDTO, error)
	List(ctx context.Context, role enums.UserRole, status *enums.ReportStatus, params pagination.Params) (*ReportList, error)
	Get(ctx context.Context, role enums.UserRole, id uuid.UUID) (*ReportDTO, error)
	Decide(ctx context.Context, moderatorID uuid.UUID, role enums.UserRole, id uuid.UUID, status enums.ReportStatus) (*ReportDTO, error)
}

type service struct {
	tx      txRunner
	repo    *Repository
	outbox  outboxEmitter
	metrics decisionRecorder
	now     func() time.Time
}

// NewService wires the report service. metrics may be nil.
func NewService(tx txRunner, repo *Repository, emitter outboxEmitter, metrics decisionRecorder) (Service, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "report repository required")
	}
	if emitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox emitter required")
	}
	return &service{
		tx:      tx,
		repo:    repo,
		outbox:  emitter,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Create validates and stores a report in the REPORTED state.
func (s *service) Create(ctx context.Context, reporterID uuid.UUID, input CreateInput) (*ReportDTO, error) {
	if reporterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	report, err := buildReport(input)
	if err != nil {
		return nil, err
	}
	report.ReportedBy = &reporterID

	var model any = &models.Product{}
	targetID := report.ProductID
	targetLabel := "product"
	if report.DiscountID != nil {
		model = &models.Discount{}
		targetID = report.DiscountID
		targetLabel = "discount"
	}
	exists, err := s.repo.Exists(ctx, model, *targetID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check report target")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, targetLabel+" not found")
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create report")
	}
	dto := FromModel(report)
	return &dto, nil
}

func buildReport(input CreateInput) (*models.Report, error) {
	hasProduct := input.ProductID != nil && *input.ProductID != uuid.Nil
	hasDiscount := input.DiscountID != nil && *input.DiscountID != uuid.Nil
	if hasProduct == hasDiscount {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of product_id or discount_id is required").
			WithReason("exactly_one_target_required")
	}
	description := strings.TrimSpace(input.Description)
	if len(description) > maxDescriptionSize {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is too long").
			WithDetails(map[string]any{"field": "description"})
	}

	report := &models.Report{
		Description: description,
		Status:      enums.ReportStatusReported,
	}
	if hasProduct {
		if input.ProductReason == nil || strings.TrimSpace(*input.ProductReason) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_reason is required for product reports").
				WithDetails(map[string]any{"field": "product_reason"})
		}
		reason, err := enums.ParseProductReportReason(strings.TrimSpace(*input.ProductReason))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product_reason").
				WithDetails(map[string]any{"field": "product_reason"})
		}
		report.ProductID = input.ProductID
		report.ProductReason = &reason
		return report, nil
	}

	if input.DiscountImageBase64 == nil || strings.TrimSpace(*input.DiscountImageBase64) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount_image_base64 is required for discount reports").
			WithDetails(map[string]any{"field": "discount_image_base64"})
	}
	image := strings.TrimSpace(*input.DiscountImageBase64)
	decoded, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "discount_image_base64 is not valid base64").
			WithDetails(map[string]any{"field": "discount_image_base64"})
	}
	if len(decoded) > maxImageBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount image exceeds 2 MiB").
			WithDetails(map[string]any{"field": "discount_image_base64"})
	}
	report.DiscountID = input.DiscountID
	report.DiscountImageBase64 = &image
	return report, nil
}

// List returns the moderation queue of reports.
func (s *service) List(ctx context.Context, role enums.UserRole, status *enums.ReportStatus, params pagination.Params) (*ReportList, error) {
	if !role.CanModerate() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "moderator role required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.List(ctx, status, cursor, pagination.LimitWithBuffer(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reports")
	}
	rows, next := pagination.Page(rows, limit, func(r models.Report) pagination.Cursor {
		return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
	})
	out := &ReportList{Items: make([]ReportDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		out.Items = append(out.Items, FromModel(&rows[i]))
	}
	return out, nil
}

// Get returns a single report for moderators.
func (s *service) Get(ctx context.Context, role enums.UserRole, id uuid.UUID) (*ReportDTO, error) {
	if !role.CanModerate() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "moderator role required")
	}
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "report not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load report")
	}
	dto := FromModel(report)
	return &dto, nil
}

// Decide accepts or denies a report and emits report_status_changed.
func (s *service) Decide(ctx context.Context, moderatorID uuid.UUID, role enums.UserRole, id uuid.UUID, status enums.ReportStatus) (*ReportDTO, error) {
	if !role.CanModerate() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "moderator role required")
	}
	if status != enums.ReportStatusAccepted && status != enums.ReportStatusDenied {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be ACCEPTED or DENIED").
			WithDetails(map[string]any{"field": "status"})
	}

	now := s.now()
	var decided *models.Report
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		report, err := repo.Lock(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "report not found")
			}
			return err
		}
		if err := repo.Decide(ctx, report.ID, status, moderatorID, now); err != nil {
			return err
		}
		report.Status = status
		report.DecidedBy = &moderatorID
		report.UpdatedAt = now

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReportStatusChanged,
			AggregateType: enums.AggregateReport,
			AggregateID:   report.ID,
			Actor:         &outbox.ActorRef{UserID: moderatorID, Role: string(role)},
			OccurredAt:    now,
			Data: payloads.ReportStatusChangedEvent{
				ReportID:  report.ID,
				Status:    status,
				DecidedBy: moderatorID,
			},
		}); err != nil {
			return err
		}
		decided = report
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decide report")
	}

	if s.metrics != nil {
		s.metrics.ObserveDecision(string(enums.AggregateReport), string(status))
	}
	dto := FromModel(decided)
	return &dto, nil
}
