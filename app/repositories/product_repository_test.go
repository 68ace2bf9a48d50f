package repositories_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/app/repositories"
)

func newTestRepo(t *testing.T) *repositories.ProductRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Product{}))

	return repositories.NewProductRepository(db)
}

func seed(t *testing.T, repo *repositories.ProductRepository, name string, qty int) models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: 10, Qty: qty, ImageURL: "http://img/" + name, ImageID: "img-" + name}
	require.NoError(t, repo.Create(&p))
	return p
}

func TestCreateAndFind(t *testing.T) {
	repo := newTestRepo(t)

	created := seed(t, repo, "Widget", 3)
	require.NotZero(t, created.ID)

	got, err := repo.Find(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.True(t, got.Status, "AfterFind should derive status from qty")
}

func TestFindMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Find(999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFindByName(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo, "Widget", 0)

	got, err := repo.FindByName("Widget")
	require.NoError(t, err)
	assert.False(t, got.Status, "zero qty derives status=false")

	_, err = repo.FindByName("Gadget")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestNameExistsCaseInsensitive(t *testing.T) {
	repo := newTestRepo(t)
	p := seed(t, repo, "Widget", 1)

	exists, err := repo.NameExists("wIdGeT", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	// The row itself is excluded when editing.
	exists, err = repo.NameExists("widget", p.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.NameExists("Gadget", 0)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCreateDuplicateName(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo, "Widget", 1)

	dup := models.Product{Name: "Widget", Price: 5, Qty: 2}
	assert.ErrorIs(t, repo.Create(&dup), models.ErrNameTaken)
}

func TestAllInsertionOrder(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo, "B-Item", 1)
	seed(t, repo, "A-Item", 1)

	all, err := repo.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "B-Item", all[0].Name)
	assert.Equal(t, "A-Item", all[1].Name)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	p := seed(t, repo, "Widget", 1)

	require.NoError(t, repo.Delete(p.ID))
	_, err := repo.Find(p.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(p.ID), models.ErrNotFound)
}

func TestAdjustQty(t *testing.T) {
	repo := newTestRepo(t)
	p := seed(t, repo, "Widget", 5)

	got, err := repo.AdjustQty(p.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Qty)
	assert.True(t, got.Status)

	got, err = repo.AdjustQty(p.ID, -2)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Qty)
	assert.False(t, got.Status)
}

func TestAdjustQtyFloor(t *testing.T) {
	repo := newTestRepo(t)
	p := seed(t, repo, "Widget", 2)

	_, err := repo.AdjustQty(p.ID, -3)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	// The rejected delta must not have touched the row.
	got, err := repo.Find(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Qty)
}

func TestAdjustQtyMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.AdjustQty(42, 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAdjustQtyConcurrent(t *testing.T) {
	repo := newTestRepo(t)
	p := seed(t, repo, "Widget", 100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AdjustQty(p.ID, -5)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.Find(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Qty, "no concurrent delta may be lost")
}
