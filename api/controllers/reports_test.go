package controllers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-backend/pkg/enums"
)

func TestReportCreate(t *testing.T) {
	svc := &stubReportService{}
	productID := uuid.New()
	rec := serve(t, ReportCreate(svc, nil), testRequest{
		method: http.MethodPost,
		path:   "/api/v1/reports",
		body:   `{"product_id":"` + productID.String() + `","product_reason":"price","description":"wrong shelf price"}`,
		userID: uuid.New(),
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, svc.input.ProductID)
	require.Equal(t, productID, *svc.input.ProductID)
	require.NotNil(t, svc.input.ProductReason)
	require.Equal(t, "price", *svc.input.ProductReason)
}

func TestReportCreateRejectsOversizedBody(t *testing.T) {
	svc := &stubReportService{}
	image := strings.Repeat("A", maxReportBodyBytes+1)
	rec := serve(t, ReportCreate(svc, nil), testRequest{
		method: http.MethodPost,
		path:   "/api/v1/reports",
		body:   `{"discount_id":"` + uuid.NewString() + `","discount_image_base64":"` + image + `"}`,
		userID: uuid.New(),
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Nil(t, svc.input.DiscountID)
}

func TestModerationReportsStatusCaseInsensitive(t *testing.T) {
	svc := &stubReportService{}
	rec := serve(t, ModerationReports(svc, nil), testRequest{
		method: http.MethodGet,
		path:   "/api/v1/moderation/reports?status=reported",
		userID: uuid.New(),
		role:   enums.UserRoleModerator,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.status)
	require.Equal(t, enums.ReportStatusReported, *svc.status)
	require.Equal(t, enums.UserRoleModerator, svc.role)
}

func TestModerationDecideReport(t *testing.T) {
	svc := &stubReportService{}
	reportID := uuid.New()
	rec := serve(t, ModerationDecideReport(svc, nil), testRequest{
		method: http.MethodPatch,
		path:   "/api/v1/moderation/reports/" + reportID.String(),
		body:   `{"status":"accepted"}`,
		params: map[string]string{"reportId": reportID.String()},
		userID: uuid.New(),
		role:   enums.UserRoleAdmin,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, enums.ReportStatusAccepted, svc.decision)

	rec = serve(t, ModerationDecideReport(svc, nil), testRequest{
		method: http.MethodPatch,
		path:   "/api/v1/moderation/reports/" + reportID.String(),
		body:   `{"status":"maybe"}`,
		params: map[string]string{"reportId": reportID.String()},
		userID: uuid.New(),
		role:   enums.UserRoleAdmin,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
