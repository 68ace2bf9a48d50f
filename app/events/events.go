// Package events defines the inventory change events broadcast to
// websocket subscribers after successful mutations.
package events

import (
	"fmt"
	"time"

	"github.com/shashiranjanraj/stockroom/app/models"
)

// Dispatcher event name fired by the inventory service after each
// committed mutation.
const InventoryChanged = "inventory.changed"

// Wire action names. Clients switch on these to patch their local state.
const (
	ActionAdded       = "added"
	ActionUpdated     = "updated"
	ActionDeleted     = "deleted"
	ActionQtyAdjusted = "qty-adjusted"
)

// Stock carries the fields that change on a quantity adjustment.
type Stock struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Qty    int    `json:"qty"`
	Status bool   `json:"status"`
}

// ChangeEvent is the message published on the inventory topic. Exactly one
// of Product or Stock is set, depending on Action:
//
//	added        → Product (full snapshot)
//	updated      → Product (full snapshot)
//	deleted      → Product (last snapshot before removal)
//	qty-adjusted → Stock
type ChangeEvent struct {
	Action   string          `json:"action"`
	Product  *models.Product `json:"product,omitempty"`
	Stock    *Stock          `json:"stock,omitempty"`
	At       time.Time       `json:"at"`
	prevName string
}

// Added builds the event for a newly created product.
func Added(p *models.Product) ChangeEvent {
	return ChangeEvent{Action: ActionAdded, Product: p, At: time.Now().UTC()}
}

// Updated builds the event for an edited product. prevName is the name the
// product had before the edit, used for the notification text when a rename
// happened.
func Updated(p *models.Product, prevName string) ChangeEvent {
	return ChangeEvent{Action: ActionUpdated, Product: p, At: time.Now().UTC(), prevName: prevName}
}

// Deleted builds the event for a removed product. p is the last snapshot of
// the row before it was removed.
func Deleted(p *models.Product) ChangeEvent {
	return ChangeEvent{Action: ActionDeleted, Product: p, At: time.Now().UTC()}
}

// QtyAdjusted builds the event for a stock-level change.
func QtyAdjusted(p *models.Product) ChangeEvent {
	return ChangeEvent{
		Action: ActionQtyAdjusted,
		Stock:  &Stock{ID: p.ID, Name: p.Name, Qty: p.Qty, Status: p.Status},
		At:     time.Now().UTC(),
	}
}

// SubjectID returns the id of the product the event is about.
func (e ChangeEvent) SubjectID() uint {
	switch {
	case e.Product != nil:
		return e.Product.ID
	case e.Stock != nil:
		return e.Stock.ID
	default:
		return 0
	}
}

// Notification renders the human-readable text sent on the notifications
// topic alongside the structured change event.
func (e ChangeEvent) Notification() string {
	switch e.Action {
	case ActionAdded:
		return fmt.Sprintf("Product added: %s", e.Product.Name)
	case ActionUpdated:
		if e.prevName != "" && e.prevName != e.Product.Name {
			return fmt.Sprintf("Product updated: %s (was %s)", e.Product.Name, e.prevName)
		}
		return fmt.Sprintf("Product updated: %s", e.Product.Name)
	case ActionDeleted:
		return fmt.Sprintf("Product deleted: %s", e.Product.Name)
	case ActionQtyAdjusted:
		if e.Stock.Qty == 0 {
			return fmt.Sprintf("%s is out of stock", e.Stock.Name)
		}
		return fmt.Sprintf("Stock changed: %s now at %d", e.Stock.Name, e.Stock.Qty)
	default:
		return ""
	}
}
