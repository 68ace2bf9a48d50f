// Package syncclient keeps a local mirror of the product catalog in sync
// with the server, the same way the browser UI does: one authoritative full
// load at startup, then incremental patches applied from the websocket
// change feed.
//
//	client := syncclient.New("http://localhost:8080")
//	if err := client.Start(ctx); err != nil { ... }
//	defer client.Close()
//
//	products := client.Products() // current local view
//
// Change events are applied strictly in receipt order. A lost event is only
// repaired by the full reload performed after every reconnect.
package syncclient

// Wire action names, matching the server's change feed.
const (
	ActionAdded       = "added"
	ActionUpdated     = "updated"
	ActionDeleted     = "deleted"
	ActionQtyAdjusted = "qty-adjusted"
)

// Product is the client-side view of a catalog entry.
type Product struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Qty      int     `json:"qty"`
	Status   bool    `json:"status"`
	ImageURL string  `json:"imageUrl"`
	ImageID  string  `json:"imageId"`
}

// Stock carries the fields that change on a quantity adjustment.
type Stock struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Qty    int    `json:"qty"`
	Status bool   `json:"status"`
}

// ChangeEvent is one message from the inventory topic. Exactly one of
// Product or Stock is set, depending on Action; deleted carries the last
// snapshot of the removed product.
type ChangeEvent struct {
	Action  string   `json:"action"`
	Product *Product `json:"product,omitempty"`
	Stock   *Stock   `json:"stock,omitempty"`
}
