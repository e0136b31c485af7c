package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/hangout-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/hangout-backend/pkg/errors"
)

type accountsRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Account, error)
	FirstProfiles(ctx context.Context, accountIDs []uuid.UUID) (map[uuid.UUID]models.UserProfile, error)
}

// Service exposes account lookups.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*AccountDTO, error)
	Summaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Summary, error)
}

type service struct {
	repo accountsRepository
}

// NewService builds the account service.
func NewService(repo accountsRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*AccountDTO, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	profiles, err := s.repo.FirstProfiles(ctx, []uuid.UUID{account.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	var profile *models.UserProfile
	if p, ok := profiles[account.ID]; ok {
		profile = &p
	}
	return FromModel(account, profile), nil
}

// Summaries returns display fields keyed by account id. Unknown ids are absent
// from the result.
func (s *service) Summaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Summary, error) {
	out := make(map[uuid.UUID]Summary, len(ids))
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load accounts")
	}
	profiles, err := s.repo.FirstProfiles(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profiles")
	}
	for _, row := range rows {
		summary := Summary{AccountID: row.ID, Email: row.Email}
		if p, ok := profiles[row.ID]; ok {
			name := p.Name
			summary.Name = &name
			summary.AvatarURL = p.AvatarURL
		}
		out[row.ID] = summary
	}
	return out, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
