package seeders

import (
	"github.com/shashiranjanraj/stockroom/app/models"
	"gorm.io/gorm"
)

func init() {
	Register("products", SeedProducts)
}

// SeedProducts inserts a handful of demo products. Idempotent: rows are
// matched by name, so re-running seed never duplicates.
func SeedProducts(db *gorm.DB) error {
	products := []models.Product{
		{Name: "Wireless Mouse", Price: 24.99, Qty: 120},
		{Name: "Mechanical Keyboard", Price: 89.00, Qty: 45},
		{Name: "USB-C Hub", Price: 39.50, Qty: 0},
		{Name: "27\" Monitor", Price: 229.00, Qty: 18},
		{Name: "Laptop Stand", Price: 31.75, Qty: 64},
	}

	for i := range products {
		if err := db.Where("name = ?", products[i].Name).
			FirstOrCreate(&products[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
