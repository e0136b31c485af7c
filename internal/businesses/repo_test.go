package businesses

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/hangout-backend/pkg/db/dbtest"
	"github.com/angelmondragon/hangout-backend/pkg/db/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return dbtest.Open(t, "businesses")
}

func TestRepositoryFindByOwner(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	owner := uuid.New()

	for _, b := range []*models.Business{
		{AccountID: owner, Name: "Open", Active: true},
		{AccountID: owner, Name: "Closed", Active: false},
		{AccountID: uuid.New(), Name: "Elsewhere", Active: true},
	} {
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all, err := repo.FindByOwner(ctx, owner, false)
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 businesses, got %d (%v)", len(all), err)
	}
	active, err := repo.FindByOwner(ctx, owner, true)
	if err != nil || len(active) != 1 || active[0].Name != "Open" {
		t.Fatalf("expected only the open business, got %+v (%v)", active, err)
	}
}
