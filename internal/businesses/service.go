package businesses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/hangout-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/hangout-backend/pkg/errors"
)

type businessRepository interface {
	Create(ctx context.Context, business *models.Business) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]models.Business, error)
}

// Service exposes business operations and ownership checks.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateBusinessInput) (*BusinessDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*BusinessDTO, error)
	ListMine(ctx context.Context, ownerID uuid.UUID) ([]BusinessDTO, error)
	ResolveOwned(ctx context.Context, ownerID uuid.UUID, businessID *uuid.UUID) (*models.Business, error)
	EnsureOwner(ctx context.Context, actorID, businessID uuid.UUID) (*models.Business, error)
}

type service struct {
	repo businessRepository
}

// NewService builds a business service with the provided repository.
func NewService(repo businessRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("business repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateBusinessInput) (*BusinessDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account required")
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	business := input.ToModel(ownerID)
	if err := s.repo.Create(ctx, business); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create business")
	}
	return FromModel(business), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*BusinessDTO, error) {
	business, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(business), nil
}

func (s *service) ListMine(ctx context.Context, ownerID uuid.UUID) ([]BusinessDTO, error) {
	rows, err := s.repo.FindByOwner(ctx, ownerID, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list businesses")
	}
	out := make([]BusinessDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

// ResolveOwned picks the business an owner acts on. An explicit id must be an
// active business of the owner; otherwise the owner must have exactly one.
func (s *service) ResolveOwned(ctx context.Context, ownerID uuid.UUID, businessID *uuid.UUID) (*models.Business, error) {
	if businessID != nil && *businessID != uuid.Nil {
		business, err := s.load(ctx, *businessID)
		if err != nil {
			return nil, err
		}
		if business.AccountID != ownerID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business belongs to another account")
		}
		if !business.Active {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return business, nil
	}

	rows, err := s.repo.FindByOwner(ctx, ownerID, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list businesses")
	}
	switch len(rows) {
	case 0:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
	case 1:
		return &rows[0], nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business_id is required when the account owns several businesses").
			WithDetails(map[string]any{"business_count": len(rows)})
	}
}

// EnsureOwner loads the business and rejects actors that do not own it.
func (s *service) EnsureOwner(ctx context.Context, actorID, businessID uuid.UUID) (*models.Business, error) {
	business, err := s.load(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if business.AccountID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business belongs to another account")
	}
	return business, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	business, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load business")
	}
	return business, nil
}
