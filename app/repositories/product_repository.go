package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/stockroom/app/models"
)

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Find looks up a product by primary key.
func (r *ProductRepository) Find(id uint) (models.Product, error) {
	var p models.Product
	err := r.db.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, models.ErrNotFound
	}
	return p, err
}

// FindByName looks up a product by exact name.
func (r *ProductRepository) FindByName(name string) (models.Product, error) {
	var p models.Product
	err := r.db.Where("name = ?", name).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, models.ErrNotFound
	}
	return p, err
}

// NameExists reports whether any product other than excludeID already uses
// name, compared case-insensitively. excludeID 0 means "no exclusion".
func (r *ProductRepository) NameExists(name string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.Model(&models.Product{}).
		Where("LOWER(name) = LOWER(?)", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// All returns every product in insertion order.
func (r *ProductRepository) All() ([]models.Product, error) {
	var products []models.Product
	err := r.db.Order("id ASC").Find(&products).Error
	return products, err
}

// Create persists a new product. A duplicate-name unique violation that
// raced past the service-level pre-check is mapped to ErrNameTaken.
func (r *ProductRepository) Create(p *models.Product) error {
	err := r.db.Create(p).Error
	if isUniqueViolation(err) {
		return models.ErrNameTaken
	}
	return err
}

// Update persists all fields of an existing product.
func (r *ProductRepository) Update(p *models.Product) error {
	err := r.db.Save(p).Error
	if isUniqueViolation(err) {
		return models.ErrNameTaken
	}
	return err
}

// Delete removes the row. Deleting an absent id returns ErrNotFound.
func (r *ProductRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// AdjustQty applies qty += delta as a single atomic UPDATE with a zero
// floor, so two concurrent adjustments can never lose a delta or drive the
// quantity negative. Returns the post-adjustment row.
func (r *ProductRepository) AdjustQty(id uint, delta int) (models.Product, error) {
	res := r.db.Model(&models.Product{}).
		Where("id = ? AND qty + ? >= 0", id, delta).
		UpdateColumn("qty", gorm.Expr("qty + ?", delta))
	if res.Error != nil {
		return models.Product{}, res.Error
	}

	if res.RowsAffected == 0 {
		// Either the id is unknown or the floor check rejected the delta;
		// a follow-up read tells the two apart.
		if _, err := r.Find(id); err != nil {
			return models.Product{}, err
		}
		return models.Product{}, models.ErrInsufficientStock
	}

	return r.Find(id)
}

// isUniqueViolation detects duplicate-key failures across the supported
// drivers. gorm only translates them when the dialector opts in, so a
// string check covers sqlite and friends.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}
