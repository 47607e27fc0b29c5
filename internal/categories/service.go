package categories

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

type categoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Save(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Category, error)
}

// Service manages the category catalog. Writes need a moderating role.
type Service interface {
	List(ctx context.Context, params pagination.Params) (*CategoryList, error)
	Get(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	Create(ctx context.Context, role enums.UserRole, input CreateInput) (*CategoryDTO, error)
	Update(ctx context.Context, role enums.UserRole, id uuid.UUID, input UpdateInput) (*CategoryDTO, error)
	Delete(ctx context.Context, role enums.UserRole, id uuid.UUID) error
}

type service struct {
	repo categoryRepository
}

// NewService builds the category service.
func NewService(repo categoryRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*CategoryList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list categories")
	}
	rows, next := pagination.Page(rows, params.Limit, func(b models.Category) pagination.Cursor {
		return pagination.Cursor{CreatedAt: b.CreatedAt, ID: b.ID}
	})
	items := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		items = append(items, FromModel(&rows[i]))
	}
	return &CategoryList{Items: items, NextCursor: next}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	category, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(category)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, role enums.UserRole, input CreateInput) (*CategoryDTO, error) {
	if !role.CanModerate() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "moderator role required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	category := &models.Category{ID: uuid.New(), Name: name, Description: strings.TrimSpace(input.Description)}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, mapWriteError(err)
	}
	dto := FromModel(category)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, role enums.UserRole, id uuid.UUID, input UpdateInput) (*CategoryDTO, error) {
	if !role.CanModerate() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "moderator role required")
	}
	category, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		category.Name = name
	}
	if input.Description != nil {
		category.Description = strings.TrimSpace(*input.Description)
	}
	if err := s.repo.Save(ctx, category); err != nil {
		return nil, mapWriteError(err)
	}
	dto := FromModel(category)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, role enums.UserRole, id uuid.UUID) error {
	if !role.CanModerate() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "moderator role required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to delete category")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load category")
	}
	return category, nil
}

func mapWriteError(err error) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "category name already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to save category")
}
