package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is an inventory record. Status is never stored: it is derived
// from Qty on every read and after every mutation, so the two can never
// disagree. ImageURL and ImageID are set together by the media store;
// ImageID is the object key needed to later delete or replace the image.
type Product struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Price     float64   `gorm:"not null;default:0" json:"price"`
	Qty       int       `gorm:"not null;default:0" json:"qty"`
	Status    bool      `gorm:"-" json:"status"`
	ImageURL  string    `gorm:"size:512" json:"imageUrl"`
	ImageID   string    `gorm:"size:255" json:"imageId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InStock reports the derived availability flag.
func (p *Product) InStock() bool { return p.Qty > 0 }

// Refresh recomputes derived fields. Call after any change to Qty.
func (p *Product) Refresh() { p.Status = p.InStock() }

// AfterFind keeps Status consistent on every row gorm loads.
func (p *Product) AfterFind(_ *gorm.DB) error {
	p.Refresh()
	return nil
}
