package reports

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/pkg/db/dbtest"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/outbox"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
)

type decisionLog struct{ entries []string }

func (d *decisionLog) ObserveDecision(entity, status string) {
	d.entries = append(d.entries, entity+":"+status)
}

func newTestService(t *testing.T) (Service, *gorm.DB, *decisionLog) {
	t.Helper()
	client := dbtest.Open(t)
	conn := client.DB()
	log := &decisionLog{}
	svc, err := NewService(client, NewRepository(conn), outbox.NewService(outbox.NewRepository(conn), nil), log)
	require.NoError(t, err)
	return svc, conn, log
}

func seedTargets(t *testing.T, conn *gorm.DB) (models.Product, models.Discount) {
	t.Helper()
	category := models.Category{ID: uuid.New(), Name: "Snacks"}
	require.NoError(t, conn.Create(&category).Error)
	p := models.Product{ID: uuid.New(), CategoryID: category.ID, Name: "Chips"}
	require.NoError(t, conn.Create(&p).Error)
	d := models.Discount{
		ID:           uuid.New(),
		Name:         "Chips deal",
		DiscountType: enums.DiscountTypeFixed,
		Value:        decimal.RequireFromString("1.00"),
		TargetType:   enums.DiscountTargetProduct,
		ProductID:    &p.ID,
		Status:       enums.DiscountStatusInReview,
		StartsAt:     time.Now().UTC(),
	}
	require.NoError(t, conn.Create(&d).Error)
	return p, d
}

func strPtr(v string) *string { return &v }

func TestCreateRequiresExactlyOneTarget(t *testing.T) {
	svc, conn, _ := newTestService(t)
	p, d := seedTargets(t, conn)
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), CreateInput{})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	require.Equal(t, "exactly_one_target_required", pkgerrors.ReasonOf(err))

	_, err = svc.Create(ctx, uuid.New(), CreateInput{ProductID: &p.ID, DiscountID: &d.ID, ProductReason: strPtr("price")})
	require.Equal(t, "exactly_one_target_required", pkgerrors.ReasonOf(err))
}

func TestCreateProductReport(t *testing.T) {
	svc, conn, _ := newTestService(t)
	p, _ := seedTargets(t, conn)
	ctx := context.Background()
	reporter := uuid.New()

	_, err := svc.Create(ctx, reporter, CreateInput{ProductID: &p.ID})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = svc.Create(ctx, reporter, CreateInput{ProductID: &p.ID, ProductReason: strPtr("smell")})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	report, err := svc.Create(ctx, reporter, CreateInput{ProductID: &p.ID, ProductReason: strPtr("price"), Description: "  wrong shelf price "})
	require.NoError(t, err)
	require.Equal(t, enums.ReportStatusReported, report.Status)
	require.Equal(t, enums.ReportTargetProduct, report.TargetType)
	require.Equal(t, enums.ProductReportReasonPrice, *report.ProductReason)
	require.Equal(t, "wrong shelf price", report.Description)
	require.Equal(t, reporter, *report.ReportedBy)
}

func TestCreateDiscountReport(t *testing.T) {
	svc, conn, _ := newTestService(t)
	_, d := seedTargets(t, conn)
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), CreateInput{DiscountID: &d.ID})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = svc.Create(ctx, uuid.New(), CreateInput{DiscountID: &d.ID, DiscountImageBase64: strPtr("not base64!")})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	image := base64.StdEncoding.EncodeToString([]byte("receipt"))
	report, err := svc.Create(ctx, uuid.New(), CreateInput{DiscountID: &d.ID, DiscountImageBase64: &image})
	require.NoError(t, err)
	require.Equal(t, enums.ReportTargetDiscount, report.TargetType)
	require.Nil(t, report.ProductReason)

	missing := uuid.New()
	_, err = svc.Create(ctx, uuid.New(), CreateInput{DiscountID: &missing, DiscountImageBase64: &image})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestModerationRequiresRole(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, enums.UserRoleUser, nil, pagination.Params{})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))
	_, err = svc.Get(ctx, enums.UserRoleUser, uuid.New())
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))
	_, err = svc.Decide(ctx, uuid.New(), enums.UserRoleUser, uuid.New(), enums.ReportStatusAccepted)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))
}

func TestDecideEmitsEventAndFilters(t *testing.T) {
	svc, conn, log := newTestService(t)
	p, _ := seedTargets(t, conn)
	ctx := context.Background()
	moderator := uuid.New()

	first, err := svc.Create(ctx, uuid.New(), CreateInput{ProductID: &p.ID, ProductReason: strPtr("name")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, uuid.New(), CreateInput{ProductID: &p.ID, ProductReason: strPtr("other")})
	require.NoError(t, err)

	_, err = svc.Decide(ctx, moderator, enums.UserRoleModerator, first.ID, enums.ReportStatusReported)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	_, err = svc.Decide(ctx, moderator, enums.UserRoleModerator, uuid.New(), enums.ReportStatusDenied)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	decided, err := svc.Decide(ctx, moderator, enums.UserRoleAdmin, first.ID, enums.ReportStatusAccepted)
	require.NoError(t, err)
	require.Equal(t, enums.ReportStatusAccepted, decided.Status)
	require.Equal(t, moderator, *decided.DecidedBy)
	require.Equal(t, []string{"report:ACCEPTED"}, log.entries)

	var events []models.OutboxEvent
	require.NoError(t, conn.Find(&events).Error)
	require.Len(t, events, 1)
	require.Equal(t, enums.EventReportStatusChanged, events[0].EventType)
	require.Equal(t, first.ID, events[0].AggregateID)

	accepted := enums.ReportStatusAccepted
	list, err := svc.List(ctx, enums.UserRoleModerator, &accepted, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)

	all, err := svc.List(ctx, enums.UserRoleModerator, nil, pagination.Params{Limit: 1})
	require.NoError(t, err)
	require.Len(t, all.Items, 1)
	require.NotEmpty(t, all.NextCursor)

	got, err := svc.Get(ctx, enums.UserRoleModerator, first.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ReportStatusAccepted, got.Status)
}
