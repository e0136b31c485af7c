package businesses

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/hangout-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/hangout-backend/pkg/errors"
)

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error creating service without repo")
	}
}

func TestServiceCreateValidatesName(t *testing.T) {
	svc, _ := NewService(&stubRepo{})
	_, err := svc.Create(context.Background(), uuid.New(), CreateBusinessInput{Name: "   "})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestServiceCreatePersistsActiveBusiness(t *testing.T) {
	repo := &stubRepo{}
	svc, _ := NewService(repo)
	owner := uuid.New()

	dto, err := svc.Create(context.Background(), owner, CreateBusinessInput{Name: " Cafe Mocha "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Name != "Cafe Mocha" || !dto.Active || dto.OwnerID != owner {
		t.Fatalf("unexpected dto %+v", dto)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one insert, got %d", len(repo.created))
	}
}

func TestServiceResolveOwned(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	first := models.Business{ID: uuid.New(), AccountID: owner, Name: "One", Active: true}
	second := models.Business{ID: uuid.New(), AccountID: owner, Name: "Two", Active: true}
	closed := models.Business{ID: uuid.New(), AccountID: owner, Name: "Closed", Active: false}
	other := models.Business{ID: uuid.New(), AccountID: stranger, Name: "Other", Active: true}

	cases := []struct {
		name       string
		rows       []models.Business
		businessID *uuid.UUID
		wantID     uuid.UUID
		wantCode   pkgerrors.Code
	}{
		{name: "single active business", rows: []models.Business{first, closed}, wantID: first.ID},
		{name: "no business", rows: []models.Business{other}, wantCode: pkgerrors.CodeNotFound},
		{name: "several businesses", rows: []models.Business{first, second}, wantCode: pkgerrors.CodeValidation},
		{name: "explicit owned", rows: []models.Business{first, second}, businessID: &second.ID, wantID: second.ID},
		{name: "explicit foreign", rows: []models.Business{first, other}, businessID: &other.ID, wantCode: pkgerrors.CodeForbidden},
		{name: "explicit inactive", rows: []models.Business{closed}, businessID: &closed.ID, wantCode: pkgerrors.CodeNotFound},
		{name: "explicit missing", rows: []models.Business{first}, businessID: ptrUUID(uuid.New()), wantCode: pkgerrors.CodeNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := NewService(&stubRepo{rows: tc.rows})
			got, err := svc.ResolveOwned(context.Background(), owner, tc.businessID)
			if tc.wantCode != "" {
				assertCode(t, err, tc.wantCode)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != tc.wantID {
				t.Fatalf("expected business %s got %s", tc.wantID, got.ID)
			}
		})
	}
}

func TestServiceEnsureOwner(t *testing.T) {
	owner := uuid.New()
	business := models.Business{ID: uuid.New(), AccountID: owner, Name: "Mine", Active: false}
	svc, _ := NewService(&stubRepo{rows: []models.Business{business}})

	if _, err := svc.EnsureOwner(context.Background(), owner, business.ID); err != nil {
		t.Fatalf("owner should pass even for inactive business: %v", err)
	}
	_, err := svc.EnsureOwner(context.Background(), uuid.New(), business.ID)
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestServiceGetDependencyError(t *testing.T) {
	svc, _ := NewService(&stubRepo{err: errors.New("boom")})
	_, err := svc.Get(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeDependency)
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func ptrUUID(id uuid.UUID) *uuid.UUID {
	return &id
}

type stubRepo struct {
	rows    []models.Business
	created []*models.Business
	err     error
}

func (s *stubRepo) Create(_ context.Context, business *models.Business) error {
	if s.err != nil {
		return s.err
	}
	business.ID = uuid.New()
	s.created = append(s.created, business)
	return nil
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Business, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.rows {
		if s.rows[i].ID == id {
			row := s.rows[i]
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindByOwner(_ context.Context, ownerID uuid.UUID, activeOnly bool) ([]models.Business, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Business
	for _, row := range s.rows {
		if row.AccountID != ownerID {
			continue
		}
		if activeOnly && !row.Active {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}
