package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shashiranjanraj/stockroom/app/events"
	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/app/repositories"
	"github.com/shashiranjanraj/stockroom/pkg/cache"
	"github.com/shashiranjanraj/stockroom/pkg/event"
	"github.com/shashiranjanraj/stockroom/pkg/logger"
	"github.com/shashiranjanraj/stockroom/pkg/media"
)

// listCacheKey holds the cached full product list. Invalidated on every
// successful mutation.
const listCacheKey = "inventory:all"

const listCacheTTL = 5 * time.Minute

// CreateInput carries the fields for a new product. Image is required.
type CreateInput struct {
	Name      string
	Price     float64
	Qty       int
	ImageName string
	Image     io.Reader
}

// UpdateInput carries the editable fields of an existing product.
// Image is optional; when nil the stored image is kept.
type UpdateInput struct {
	Name      string
	Price     float64
	Qty       int
	ImageName string
	Image     io.Reader
}

// InventoryService implements product mutations and reads. Every successful
// mutation fires exactly one InventoryChanged event, strictly after the
// database write has committed. Failed mutations fire nothing.
type InventoryService struct {
	repo       *repositories.ProductRepository
	store      media.Store
	dispatcher *event.Dispatcher
}

func NewInventoryService(repo *repositories.ProductRepository, store media.Store, d *event.Dispatcher) *InventoryService {
	return &InventoryService{repo: repo, store: store, dispatcher: d}
}

// List returns every product, cheapest read first through the redis cache.
func (s *InventoryService) List(ctx context.Context) ([]models.Product, error) {
	var cached []models.Product
	if cache.Get(listCacheKey, &cached) {
		for i := range cached {
			cached[i].Refresh()
		}
		return cached, nil
	}

	products, err := s.repo.All()
	if err != nil {
		return nil, err
	}

	if err := cache.Set(listCacheKey, products, listCacheTTL); err != nil {
		logger.WithCtx(ctx).Warn("inventory: cache list", "error", err)
	}

	return products, nil
}

// GetByID returns a single product.
func (s *InventoryService) GetByID(_ context.Context, id uint) (models.Product, error) {
	return s.repo.Find(id)
}

// GetByName returns a single product by exact name.
func (s *InventoryService) GetByName(_ context.Context, name string) (models.Product, error) {
	return s.repo.FindByName(name)
}

// Create validates the input, uploads the image to the media store, then
// inserts the row. The event carries the full snapshot of the new product.
func (s *InventoryService) Create(ctx context.Context, in CreateInput) (models.Product, error) {
	if err := validate(in.Name, in.Price, in.Qty); err != nil {
		return models.Product{}, err
	}
	data, err := readImage(in.Image)
	if err != nil {
		return models.Product{}, err
	}

	taken, err := s.repo.NameExists(in.Name, 0)
	if err != nil {
		return models.Product{}, err
	}
	if taken {
		return models.Product{}, models.ErrNameTaken
	}

	img, err := s.store.Upload(in.ImageName, bytes.NewReader(data))
	if err != nil {
		return models.Product{}, fmt.Errorf("%w: upload: %v", models.ErrMediaStore, err)
	}

	p := models.Product{
		Name:     strings.TrimSpace(in.Name),
		Price:    in.Price,
		Qty:      in.Qty,
		ImageURL: img.URL,
		ImageID:  img.ID,
	}
	if err := s.repo.Create(&p); err != nil {
		// The row never existed, so the uploaded image is an orphan.
		// Best-effort cleanup; images:prune catches whatever this misses.
		if delErr := s.store.Delete(img.ID); delErr != nil {
			logger.WithCtx(ctx).Warn("inventory: orphan image left in media store",
				"image_id", img.ID, "error", delErr)
		}
		return models.Product{}, err
	}
	p.Refresh()

	s.invalidate(ctx)
	s.dispatcher.Fire(events.InventoryChanged, events.Added(&p))
	logger.WithCtx(ctx).Info("inventory: product created", "id", p.ID, "name", p.Name)

	return p, nil
}

// Update edits an existing product. When a replacement image is supplied the
// old one is removed from the media store first; a store failure aborts the
// update before any database write.
func (s *InventoryService) Update(ctx context.Context, id uint, in UpdateInput) (models.Product, error) {
	if err := validate(in.Name, in.Price, in.Qty); err != nil {
		return models.Product{}, err
	}

	p, err := s.repo.Find(id)
	if err != nil {
		return models.Product{}, err
	}
	prevName := p.Name

	taken, err := s.repo.NameExists(in.Name, id)
	if err != nil {
		return models.Product{}, err
	}
	if taken {
		return models.Product{}, models.ErrNameTaken
	}

	if in.Image != nil {
		data, err := readImage(in.Image)
		if err != nil {
			return models.Product{}, err
		}
		if p.ImageID != "" {
			if err := s.store.Delete(p.ImageID); err != nil {
				return models.Product{}, fmt.Errorf("%w: delete old image: %v", models.ErrMediaStore, err)
			}
		}
		img, err := s.store.Upload(in.ImageName, bytes.NewReader(data))
		if err != nil {
			return models.Product{}, fmt.Errorf("%w: upload: %v", models.ErrMediaStore, err)
		}
		p.ImageURL = img.URL
		p.ImageID = img.ID
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Price = in.Price
	p.Qty = in.Qty

	if err := s.repo.Update(&p); err != nil {
		return models.Product{}, err
	}
	p.Refresh()

	s.invalidate(ctx)
	s.dispatcher.Fire(events.InventoryChanged, events.Updated(&p, prevName))
	logger.WithCtx(ctx).Info("inventory: product updated", "id", p.ID, "name", p.Name)

	return p, nil
}

// Delete removes a product and its stored image. The image is deleted first:
// if the media store refuses, the row stays and the caller gets
// ErrMediaStore, keeping the database and the store consistent.
func (s *InventoryService) Delete(ctx context.Context, id uint) error {
	p, err := s.repo.Find(id)
	if err != nil {
		return err
	}

	if p.ImageID != "" {
		if err := s.store.Delete(p.ImageID); err != nil {
			return fmt.Errorf("%w: delete image: %v", models.ErrMediaStore, err)
		}
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	s.invalidate(ctx)
	s.dispatcher.Fire(events.InventoryChanged, events.Deleted(&p))
	logger.WithCtx(ctx).Info("inventory: product deleted", "id", p.ID, "name", p.Name)

	return nil
}

// AdjustQuantity applies a signed delta to a product's stock level. The
// increment happens atomically in the database, so concurrent adjustments
// never lose updates and qty never drops below zero.
func (s *InventoryService) AdjustQuantity(ctx context.Context, id uint, delta int) (models.Product, error) {
	p, err := s.repo.AdjustQty(id, delta)
	if err != nil {
		return models.Product{}, err
	}

	s.invalidate(ctx)
	s.dispatcher.Fire(events.InventoryChanged, events.QtyAdjusted(&p))
	logger.WithCtx(ctx).Info("inventory: quantity adjusted",
		"id", p.ID, "name", p.Name, "delta", delta, "qty", p.Qty)

	return p, nil
}

func (s *InventoryService) invalidate(ctx context.Context) {
	if err := cache.Del(listCacheKey); err != nil {
		logger.WithCtx(ctx).Warn("inventory: invalidate list cache", "error", err)
	}
}

// readImage buffers the uploaded image. A nil or zero-byte upload is a
// validation failure, caught before any media-store call: an empty
// replacement on Update must not delete the image it was meant to swap.
func readImage(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, models.ErrImageRequired
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read image: %v", models.ErrInvalidInput, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image file is empty", models.ErrImageRequired)
	}
	return data, nil
}

func validate(name string, price float64, qty int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", models.ErrInvalidInput)
	}
	if price < 0 {
		return fmt.Errorf("%w: price cannot be negative", models.ErrInvalidInput)
	}
	if qty < 0 {
		return fmt.Errorf("%w: qty cannot be negative", models.ErrInvalidInput)
	}
	return nil
}
