package fragrances

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mmattyV/scentra-backend/pkg/db/models"
	pkgerrors "github.com/mmattyV/scentra-backend/pkg/errors"
)

// Service exposes read and admin curation operations over the catalog.
type Service interface {
	GetFragrance(ctx context.Context, id uuid.UUID) (*models.Fragrance, error)
	SearchFragrances(ctx context.Context, query string, limit int) ([]models.Fragrance, error)
	CreateFragrance(ctx context.Context, input CreateFragranceInput) (*models.Fragrance, error)
}

// CreateFragranceInput holds the validated payload for a new catalog entry.
type CreateFragranceInput struct {
	Name        string
	Brand       string
	Description *string
	ImageKey    string
}

type service struct {
	repo *Repository
}

// NewService constructs the catalog service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("fragrance repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetFragrance(ctx context.Context, id uuid.UUID) (*models.Fragrance, error) {
	fragrance, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "fragrance not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load fragrance")
	}
	return fragrance, nil
}

func (s *service) SearchFragrances(ctx context.Context, query string, limit int) ([]models.Fragrance, error) {
	rows, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search fragrances")
	}
	return rows, nil
}

func (s *service) CreateFragrance(ctx context.Context, input CreateFragranceInput) (*models.Fragrance, error) {
	name := strings.TrimSpace(input.Name)
	brand := strings.TrimSpace(input.Brand)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if brand == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand is required")
	}

	fragrance := &models.Fragrance{
		ID:          uuid.New(),
		Name:        name,
		Brand:       brand,
		Description: input.Description,
		ImageKey:    input.ImageKey,
	}
	created, err := s.repo.Create(ctx, fragrance)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert fragrance")
	}
	return created, nil
}
