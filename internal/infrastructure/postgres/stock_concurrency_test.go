package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/inventory"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Hospital-api/pkg/config"
)

// Requiere una base de datos desechable: HOSPITAL_TEST_DATABASE_URL=postgres://...
func TestStock_PrimerasEntradasConcurrentesSeSuman(t *testing.T) {
	url := os.Getenv("HOSPITAL_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("HOSPITAL_TEST_DATABASE_URL no definida")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url}, postgres.PoolOptions{})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = postgres.NewMigrator(pool).Up(ctx)
	require.NoError(t, err)

	repos := postgres.NewRepos(pool)
	suffix := uuid.NewString()[:8]
	center := &entity.HospitalCenter{Name: "Centre " + suffix, IsActive: true}
	require.NoError(t, repos.Centers.Add(ctx, center))
	cat := &entity.ProductCategory{Name: "Cat " + suffix, IsActive: true}
	require.NoError(t, repos.Categories.Add(ctx, cat))
	product := &entity.Product{CategoryID: cat.ID, Code: "C" + suffix, Name: "Produit " + suffix, Unit: "boîte", IsActive: true}
	require.NoError(t, repos.Products.Add(ctx, product))

	uc := inventory.NewMovementUseCase(repos, postgres.NewTxRunner(pool))
	id := session.Identity{CenterID: center.ID, Role: entity.RoleMedicalStaff}

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 1; i <= writers; i++ {
		wg.Add(1)
		go func(qty int64) {
			defer wg.Done()
			_, err := uc.Register(ctx, id, dto.MovementRequest{
				ProductID: product.ID, MovementType: entity.MovementEntry, Quantity: decimal.NewFromInt(qty),
			})
			errs <- err
		}(int64(i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, computed, err := uc.Reconcile(ctx, product.ID, center.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(36).Equal(computed), computed.String())
	assert.True(t, stored.Equal(computed), "stock %s, movimientos %s", stored, computed)
}
