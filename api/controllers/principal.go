package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/api/middleware"
	"github.com/angelmondragon/catalog-backend/internal/discounts"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
)

// principalFromRequest reads the caller seeded by middleware.Auth.
func principalFromRequest(r *http.Request) (discounts.Principal, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return discounts.Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return discounts.Principal{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user context")
	}
	role := enums.UserRole(middleware.RoleFromContext(r.Context()))
	if !role.IsValid() {
		return discounts.Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid role context")
	}
	return discounts.Principal{UserID: userID, Role: role}, nil
}
