package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-shop/internal/customers/domain"
	"go-shop/pkg/db"
	apperrors "go-shop/pkg/errors"
)

func newTestRepo(t *testing.T) *GormCustomerRepository {
	t.Helper()
	conn, err := db.NewConnection(db.Config{Driver: "sqlite", DSN: "file::memory:"})
	require.NoError(t, err)

	repo := NewGormCustomerRepository(conn)
	require.NoError(t, repo.Migrate())
	return repo
}

func TestGormCustomerRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	c, err := domain.NewCustomer("ada@example.com", "Ada", "Lovelace", "", "12 St James's Square")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, c))
	require.NotZero(t, c.ID)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "12 St James's Square", got.Address)

	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byEmail.ID)
}

func TestGormCustomerRepository_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), 404)
	assert.True(t, apperrors.HasReason(err, domain.ReasonCustomerNotFound))

	_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestGormCustomerRepository_DuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, _ := domain.NewCustomer("ada@example.com", "Ada", "Lovelace", "", "")
	require.NoError(t, repo.Create(ctx, first))

	second, _ := domain.NewCustomer("ada@example.com", "Augusta", "King", "", "")
	err := repo.Create(ctx, second)
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict))
}
