package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cshub/backend/internal/domain/account"
	"github.com/cshub/backend/internal/domain/ledger"
	"github.com/cshub/backend/internal/domain/shared"
	"github.com/cshub/backend/internal/domain/user"
)

func seedInvoice(t *testing.T, repo *GormInvoiceRepository, customerID uuid.UUID, number string, issued, due time.Time, amount, paid int64, status ledger.InvoiceStatus) *ledger.Invoice {
	t.Helper()
	inv, err := ledger.NewInvoice(customerID, ledger.InvoiceInput{
		InvoiceNumber: number,
		InvoiceDate:   &issued,
		InvoiceAmount: ptr(decimal.NewFromInt(amount)),
		PaidAmount:    ptr(decimal.NewFromInt(paid)),
		DueDate:       &due,
		Status:        status,
	}, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), inv))
	return inv
}

func TestGormInvoiceRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	c := seedCustomer(t, db, account.CustomerInput{CompanyName: "Acme Corp"})
	other := seedCustomer(t, db, account.CustomerInput{CompanyName: "Globex"})
	repo := NewGormInvoiceRepository(db)

	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	older := seedInvoice(t, repo, c.ID, "INV-001", jan, jan.AddDate(0, 0, 30), 1000, 1000, ledger.InvoiceStatusPaid)
	newer := seedInvoice(t, repo, c.ID, "INV-002", feb, feb.AddDate(0, 0, 30), 2000, 500, ledger.InvoiceStatusPartiallyPaid)

	t.Run("lists newest first", func(t *testing.T) {
		list, err := repo.FindByCustomer(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, newer.ID, list[0].ID)
		assert.Equal(t, older.ID, list[1].ID)
		assert.True(t, decimal.NewFromInt(500).Equal(list[0].PaidAmount))
	})

	t.Run("number is unique per customer", func(t *testing.T) {
		exists, err := repo.ExistsByNumber(ctx, c.ID, "INV-001", uuid.Nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByNumber(ctx, c.ID, "INV-001", older.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.ExistsByNumber(ctx, other.ID, "INV-001", uuid.Nil)
		require.NoError(t, err)
		assert.False(t, exists)

		dup, err := ledger.NewInvoice(c.ID, ledger.InvoiceInput{
			InvoiceNumber: "INV-001",
			InvoiceDate:   &jan,
			InvoiceAmount: ptr(decimal.NewFromInt(1)),
			DueDate:       &jan,
		}, nil)
		require.NoError(t, err)
		assert.True(t, shared.IsConflict(repo.Save(ctx, dup)))
	})

	t.Run("unsettled excludes paid", func(t *testing.T) {
		seedInvoice(t, repo, other.ID, "G-1", jan, jan, 300, 0, ledger.InvoiceStatusRaised)
		unsettled, err := repo.FindUnsettled(ctx)
		require.NoError(t, err)
		require.Len(t, unsettled, 2)
		for _, inv := range unsettled {
			assert.NotEqual(t, ledger.InvoiceStatusPaid, inv.Status)
		}
	})

	t.Run("update with lock and delete", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, newer.ID)
		require.NoError(t, err)
		_, err = loaded.Apply(ledger.InvoicePatch{PaidAmount: ptr(decimal.NewFromInt(2000)), Status: ptr(ledger.InvoiceStatusPaid)}, nil)
		require.NoError(t, err)
		require.NoError(t, repo.SaveWithLock(ctx, loaded))

		stored, err := repo.FindByID(ctx, newer.ID)
		require.NoError(t, err)
		assert.Equal(t, ledger.InvoiceStatusPaid, stored.Status)

		require.NoError(t, repo.Delete(ctx, newer.ID))
		assert.True(t, shared.IsNotFound(repo.Delete(ctx, newer.ID)))
		_, err = repo.FindByID(ctx, newer.ID)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestGormUserRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewGormUserRepository(db)

	for _, u := range []*user.User{
		{BaseEntity: shared.NewBaseEntity(), Email: " Dana@Example.com ", FullName: "Dana Park", Role: user.RoleCSM, IsActive: true},
		{BaseEntity: shared.NewBaseEntity(), Email: "ali@example.com", FullName: "Ali Kaya", Role: user.RoleCSM, IsActive: false},
		{BaseEntity: shared.NewBaseEntity(), Email: "sam@example.com", FullName: "Sam Lee", Role: user.RoleAM, IsActive: true},
	} {
		require.NoError(t, repo.Save(ctx, u))
	}

	found, err := repo.FindByEmail(ctx, "DANA@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "Dana Park", found.FullName)
	assert.Equal(t, "dana@example.com", found.Email)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.True(t, shared.IsNotFound(err))

	csms, err := repo.FindAll(ctx, user.RoleCSM, false)
	require.NoError(t, err)
	assert.Len(t, csms, 2)

	active, err := repo.FindAll(ctx, "", true)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Dana Park", active[0].FullName)
	assert.Equal(t, "Sam Lee", active[1].FullName)
}
