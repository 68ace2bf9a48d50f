package services_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shashiranjanraj/stockroom/app/events"
	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/app/repositories"
	"github.com/shashiranjanraj/stockroom/app/services"
	"github.com/shashiranjanraj/stockroom/pkg/event"
	"github.com/shashiranjanraj/stockroom/pkg/media"
)

// fakeStore is an in-memory media.Store with switchable failure modes.
type fakeStore struct {
	mu         sync.Mutex
	seq        int
	objects    map[string]bool
	deleted    []string
	failUpload bool
	failDelete bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]bool{}}
}

func (f *fakeStore) Upload(filename string, r io.Reader) (media.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpload {
		return media.Image{}, errors.New("store down")
	}
	if _, err := io.ReadAll(r); err != nil {
		return media.Image{}, err
	}
	f.seq++
	id := fmt.Sprintf("obj-%d", f.seq)
	f.objects[id] = true
	return media.Image{URL: "http://media.test/" + id, ID: id}, nil
}

func (f *fakeStore) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return errors.New("store down")
	}
	delete(f.objects, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// fixture wires a real repository over in-memory sqlite to a fake store and
// an event recorder.
type fixture struct {
	svc    *services.InventoryService
	repo   *repositories.ProductRepository
	store  *fakeStore
	events *[]events.ChangeEvent
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Product{}))

	store := newFakeStore()
	repo := repositories.NewProductRepository(db)

	fired := &[]events.ChangeEvent{}
	d := event.NewDispatcher()
	d.Listen(events.InventoryChanged, func(payload interface{}) {
		*fired = append(*fired, payload.(events.ChangeEvent))
	})

	return fixture{
		svc:    services.NewInventoryService(repo, store, d),
		repo:   repo,
		store:  store,
		events: fired,
	}
}

func createInput(name string) services.CreateInput {
	return services.CreateInput{
		Name:      name,
		Price:     9.99,
		Qty:       5,
		ImageName: "photo.png",
		Image:     strings.NewReader("image-bytes"),
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(context.Background(), createInput("Widget"))
	require.NoError(t, err)

	assert.NotZero(t, p.ID)
	assert.True(t, p.Status)
	assert.NotEmpty(t, p.ImageURL)
	assert.NotEmpty(t, p.ImageID)

	require.Len(t, *f.events, 1)
	ev := (*f.events)[0]
	assert.Equal(t, events.ActionAdded, ev.Action)
	require.NotNil(t, ev.Product)
	assert.Equal(t, p.ID, ev.Product.ID)
}

func TestCreateWithoutImage(t *testing.T) {
	f := newFixture(t)

	in := createInput("Widget")
	in.Image = nil
	_, err := f.svc.Create(context.Background(), in)

	assert.ErrorIs(t, err, models.ErrImageRequired)
	assert.Empty(t, *f.events, "failed mutations fire no events")
}

func TestCreateEmptyImage(t *testing.T) {
	f := newFixture(t)

	in := createInput("Widget")
	in.Image = strings.NewReader("")
	_, err := f.svc.Create(context.Background(), in)

	assert.ErrorIs(t, err, models.ErrImageRequired, "zero-byte upload is a validation failure")
	assert.Empty(t, f.store.objects, "store never sees the empty upload")
	assert.Empty(t, *f.events)
}

func TestCreateInvalidInput(t *testing.T) {
	f := newFixture(t)

	for name, in := range map[string]services.CreateInput{
		"empty name":     {Name: "  ", Price: 1, Qty: 1, Image: strings.NewReader("x")},
		"negative price": {Name: "Widget", Price: -1, Qty: 1, Image: strings.NewReader("x")},
		"negative qty":   {Name: "Widget", Price: 1, Qty: -1, Image: strings.NewReader("x")},
	} {
		_, err := f.svc.Create(context.Background(), in)
		assert.ErrorIs(t, err, models.ErrInvalidInput, name)
	}
	assert.Empty(t, *f.events)
}

func TestCreateDuplicateName(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), createInput("Widget"))
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), createInput("wIDGET"))
	assert.ErrorIs(t, err, models.ErrNameTaken)
	assert.Len(t, *f.events, 1, "only the first create fires")
}

func TestCreateUploadFailure(t *testing.T) {
	f := newFixture(t)
	f.store.failUpload = true

	_, err := f.svc.Create(context.Background(), createInput("Widget"))
	assert.ErrorIs(t, err, models.ErrMediaStore)

	all, err := f.repo.All()
	require.NoError(t, err)
	assert.Empty(t, all, "no row without an image")
	assert.Empty(t, *f.events)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Create(context.Background(), createInput("Widget"))
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), p.ID, services.UpdateInput{
		Name: "Widget Pro", Price: 19.99, Qty: 7,
	})
	require.NoError(t, err)

	got, err := f.repo.Find(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget Pro", got.Name)
	assert.Equal(t, p.ImageID, got.ImageID, "image kept when none supplied")

	require.Len(t, *f.events, 2)
	ev := (*f.events)[1]
	assert.Equal(t, events.ActionUpdated, ev.Action)
	assert.Contains(t, ev.Notification(), "was Widget")
}

func TestUpdateReplacesImage(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Create(context.Background(), createInput("Widget"))
	require.NoError(t, err)

	updated, err := f.svc.Update(context.Background(), p.ID, services.UpdateInput{
		Name: "Widget", Price: 9.99, Qty: 5,
		ImageName: "new.png", Image: strings.NewReader("new-bytes"),
	})
	require.NoError(t, err)

	assert.NotEqual(t, p.ImageID, updated.ImageID)
	assert.Contains(t, f.store.deleted, p.ImageID, "old image released")
}

func TestUpdateEmptyImageKeepsStoredImage(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Create(context.Background(), createInput("Widget"))
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), p.ID, services.UpdateInput{
		Name: "Widget", Price: 9.99, Qty: 5,
		ImageName: "new.png", Image: strings.NewReader(""),
	})

	assert.ErrorIs(t, err, models.ErrImageRequired)
	assert.True(t, f.store.objects[p.ImageID], "existing image untouched")
	assert.Empty(t, f.store.deleted)
	assert.Len(t, *f.events, 1, "only the create fired")
}

func TestUpdateMissing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update(context.Background(), 404, services.UpdateInput{
		Name: "Ghost", Price: 1, Qty: 1,
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateDuplicateName(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), createInput("Widget"))
	require.NoError(t, err)
	other, err := f.svc.Create(context.Background(), createInput("Gadget"))
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), other.ID, services.UpdateInput{
		Name: "widget", Price: 1, Qty: 1,
	})
	assert.ErrorIs(t, err, models.ErrNameTaken)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Create(context.Background(), createInput("Widget"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), p.ID))

	_, err = f.repo.Find(p.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Contains(t, f.store.deleted, p.ImageID)

	require.Len(t, *f.events, 2)
	ev := (*f.events)[1]
	assert.Equal(t, events.ActionDeleted, ev.Action)
	require.NotNil(t, ev.Product)
	assert.Equal(t, p.ID, ev.Product.ID)
	assert.Equal(t, "Widget", ev.Product.Name)
}

func TestDeleteMediaFailureKeepsRow(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Create(context.Background(), createInput("Widget"))
	require.NoError(t, err)
	f.store.failDelete = true

	err = f.svc.Delete(context.Background(), p.ID)
	assert.ErrorIs(t, err, models.ErrMediaStore)

	// Image delete happens before the row delete, so the row survives.
	_, err = f.repo.Find(p.ID)
	assert.NoError(t, err)
	assert.Len(t, *f.events, 1, "failed delete fires nothing")
}

func TestAdjustQuantity(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Create(context.Background(), createInput("Widget"))
	require.NoError(t, err)

	got, err := f.svc.AdjustQuantity(context.Background(), p.ID, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Qty)
	assert.False(t, got.Status)

	require.Len(t, *f.events, 2)
	ev := (*f.events)[1]
	assert.Equal(t, events.ActionQtyAdjusted, ev.Action)
	require.NotNil(t, ev.Stock)
	assert.Equal(t, 0, ev.Stock.Qty)
	assert.False(t, ev.Stock.Status)
	assert.Contains(t, ev.Notification(), "out of stock")
}

func TestAdjustQuantityInsufficient(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Create(context.Background(), createInput("Widget"))
	require.NoError(t, err)

	_, err = f.svc.AdjustQuantity(context.Background(), p.ID, -6)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)
	assert.Len(t, *f.events, 1)
}

func TestListDerivesStatus(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), createInput("Widget"))
	require.NoError(t, err)

	in := createInput("Empty")
	in.Qty = 0
	_, err = f.svc.Create(context.Background(), in)
	require.NoError(t, err)

	list, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].Status)
	assert.False(t, list[1].Status)
}
