package vouchers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/hangout-backend/internal/businesses"
	"github.com/angelmondragon/hangout-backend/pkg/db/dbtest"
	"github.com/angelmondragon/hangout-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/hangout-backend/pkg/errors"
	"github.com/angelmondragon/hangout-backend/pkg/pagination"
)

type catalogFixture struct {
	db       *gorm.DB
	bizSvc   businesses.Service
	svc      Service
	owner    uuid.UUID
	business models.Business
}

func newCatalogFixture(t *testing.T) catalogFixture {
	t.Helper()
	db := dbtest.Open(t, "vouchers")
	bizSvc, err := businesses.NewService(businesses.NewRepository(db))
	require.NoError(t, err)
	svc, err := NewService(NewRepository(db), bizSvc)
	require.NoError(t, err)

	owner := uuid.New()
	business := models.Business{AccountID: owner, Name: "Rooftop Bar", Active: true}
	require.NoError(t, db.Create(&business).Error)
	return catalogFixture{db: db, bizSvc: bizSvc, svc: svc, owner: owner, business: business}
}

func (f catalogFixture) create(t *testing.T, name string) *VoucherDTO {
	t.Helper()
	now := time.Now().UTC()
	dto, err := f.svc.Create(context.Background(), f.owner, CreateVoucherInput{
		Name:      name,
		Percent:   decimal.NewFromFloat(12.5),
		Quantity:  10,
		ValidFrom: now.Add(-time.Hour),
		ValidTo:   now.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	return dto
}

func TestCatalogSoftDeleteKeepsGetAndHidesFromList(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	kept := f.create(t, "Kept")
	removed := f.create(t, "Removed")

	require.NoError(t, f.svc.Delete(ctx, f.owner, removed.ID))

	detail, err := f.svc.Get(ctx, removed.ID)
	require.NoError(t, err)
	require.False(t, detail.Active)
	require.Equal(t, "Rooftop Bar", detail.BusinessName)
	require.True(t, detail.Percent.Equal(decimal.NewFromFloat(12.5)))

	page, err := f.svc.ListByBusiness(ctx, f.business.ID, pagination.PageParams{Page: 1, Size: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	require.Equal(t, kept.ID, page.Items[0].ID)

	owned, err := f.svc.ListByOwnerAccount(ctx, f.owner, pagination.PageParams{Page: 1, Size: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, owned.Total)
}

func TestCatalogPagination(t *testing.T) {
	f := newCatalogFixture(t)
	for i := 0; i < 25; i++ {
		f.create(t, "Voucher")
	}

	page, err := f.svc.ListByBusiness(context.Background(), f.business.ID, pagination.PageParams{Page: 3, Size: 10})
	require.NoError(t, err)
	require.EqualValues(t, 25, page.Total)
	require.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 5)
}

func TestCatalogEditByStrangerIsForbidden(t *testing.T) {
	f := newCatalogFixture(t)
	voucher := f.create(t, "Mine")

	name := "Theirs"
	_, err := f.svc.Edit(context.Background(), uuid.New(), voucher.ID, EditVoucherInput{Name: &name})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestCatalogEditBumpsUpdatedAt(t *testing.T) {
	f := newCatalogFixture(t)
	voucher := f.create(t, "Original")
	time.Sleep(5 * time.Millisecond)

	name := "Renamed"
	edited, err := f.svc.Edit(context.Background(), f.owner, voucher.ID, EditVoucherInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", edited.Name)
	require.True(t, edited.UpdatedAt.After(voucher.UpdatedAt))
	require.Equal(t, voucher.VoucherCode, edited.VoucherCode)
}

func TestCatalogDeleteMissingVoucher(t *testing.T) {
	f := newCatalogFixture(t)
	err := f.svc.Delete(context.Background(), f.owner, uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCatalogDuplicateSuppliedCode(t *testing.T) {
	f := newCatalogFixture(t)
	now := time.Now().UTC()
	code := "ho-summer"
	input := CreateVoucherInput{
		Name:        "Summer",
		Percent:     decimal.NewFromInt(20),
		Quantity:    1,
		ValidFrom:   now,
		ValidTo:     now.Add(time.Hour),
		VoucherCode: &code,
	}

	first, err := f.svc.Create(context.Background(), f.owner, input)
	require.NoError(t, err)
	require.Equal(t, "HO-SUMMER", first.VoucherCode)

	_, err = f.svc.Create(context.Background(), f.owner, input)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

// interleavingRepo runs afterLoad once, right after a voucher is read, to
// stand in for a writer that commits while an edit is in progress.
type interleavingRepo struct {
	*Repository
	afterLoad func(id uuid.UUID)
}

func (r *interleavingRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Voucher, error) {
	voucher, err := r.Repository.FindByID(ctx, id)
	if err == nil && r.afterLoad != nil {
		hook := r.afterLoad
		r.afterLoad = nil
		hook(id)
	}
	return voucher, err
}

func (f catalogFixture) interleaved(t *testing.T, afterLoad func(id uuid.UUID)) Service {
	t.Helper()
	svc, err := NewService(&interleavingRepo{Repository: NewRepository(f.db), afterLoad: afterLoad}, f.bizSvc)
	require.NoError(t, err)
	return svc
}

func TestCatalogEditKeepsConcurrentRedemption(t *testing.T) {
	f := newCatalogFixture(t)
	voucher := f.create(t, "Original")
	svc := f.interleaved(t, func(id uuid.UUID) {
		require.NoError(t, f.db.Exec("UPDATE vouchers SET quantity = quantity - 1 WHERE id = ?", id).Error)
	})

	name := "Renamed"
	edited, err := svc.Edit(context.Background(), f.owner, voucher.ID, EditVoucherInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", edited.Name)
	require.Equal(t, voucher.Quantity-1, edited.Quantity)

	var row models.Voucher
	require.NoError(t, f.db.First(&row, "id = ?", voucher.ID).Error)
	require.Equal(t, voucher.Quantity-1, row.Quantity)
}

func TestCatalogEditDoesNotReviveConcurrentDelete(t *testing.T) {
	f := newCatalogFixture(t)
	voucher := f.create(t, "Original")
	svc := f.interleaved(t, func(id uuid.UUID) {
		require.NoError(t, f.db.Exec("UPDATE vouchers SET active = ? WHERE id = ?", false, id).Error)
	})

	name := "Renamed"
	_, err := svc.Edit(context.Background(), f.owner, voucher.ID, EditVoucherInput{Name: &name})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	var row models.Voucher
	require.NoError(t, f.db.First(&row, "id = ?", voucher.ID).Error)
	require.False(t, row.Active)
	require.Equal(t, "Original", row.Name)
}

func TestCatalogEditAfterDeleteIsStateConflict(t *testing.T) {
	f := newCatalogFixture(t)
	voucher := f.create(t, "Original")
	require.NoError(t, f.svc.Delete(context.Background(), f.owner, voucher.ID))

	quantity := 50
	_, err := f.svc.Edit(context.Background(), f.owner, voucher.ID, EditVoucherInput{Quantity: &quantity})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)
}
