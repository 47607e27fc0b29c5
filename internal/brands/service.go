package brands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
)

type brandRepository interface {
	Create(ctx context.Context, brand *models.Brand) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Brand, error)
	Save(ctx context.Context, brand *models.Brand) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Brand, error)
}

// Service exposes brand reads to everyone and writes to moderators.
type Service interface {
	List(ctx context.Context, params pagination.Params) (*BrandList, error)
	Get(ctx context.Context, id uuid.UUID) (*BrandDTO, error)
	Create(ctx context.Context, role enums.UserRole, input CreateInput) (*BrandDTO, error)
	Update(ctx context.Context, role enums.UserRole, id uuid.UUID, input UpdateInput) (*BrandDTO, error)
	Delete(ctx context.Context, role enums.UserRole, id uuid.UUID) error
}

type service struct {
	repo brandRepository
}

// NewService builds the brand service.
func NewService(repo brandRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("brand repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*BrandList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list brands")
	}
	rows, next := pagination.Page(rows, params.Limit, func(b models.Brand) pagination.Cursor {
		return pagination.Cursor{CreatedAt: b.CreatedAt, ID: b.ID}
	})
	items := make([]BrandDTO, 0, len(rows))
	for i := range rows {
		items = append(items, FromModel(&rows[i]))
	}
	return &BrandList{Items: items, NextCursor: next}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*BrandDTO, error) {
	brand, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(brand)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, role enums.UserRole, input CreateInput) (*BrandDTO, error) {
	if !role.CanModerate() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "moderator role required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	brand := &models.Brand{ID: uuid.New(), Name: name, Description: strings.TrimSpace(input.Description)}
	if err := s.repo.Create(ctx, brand); err != nil {
		return nil, mapWriteError(err)
	}
	dto := FromModel(brand)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, role enums.UserRole, id uuid.UUID, input UpdateInput) (*BrandDTO, error) {
	if !role.CanModerate() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "moderator role required")
	}
	brand, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		brand.Name = name
	}
	if input.Description != nil {
		brand.Description = strings.TrimSpace(*input.Description)
	}
	if err := s.repo.Save(ctx, brand); err != nil {
		return nil, mapWriteError(err)
	}
	dto := FromModel(brand)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, role enums.UserRole, id uuid.UUID) error {
	if !role.CanModerate() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "moderator role required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to delete brand")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	brand, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load brand")
	}
	return brand, nil
}

func mapWriteError(err error) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "brand name already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to save brand")
}
