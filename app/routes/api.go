package routes

import (
	"net/http"

	"github.com/shashiranjanraj/stockroom/app/controllers"
	"github.com/shashiranjanraj/stockroom/pkg/ctx"
	"github.com/shashiranjanraj/stockroom/pkg/router"
	"github.com/shashiranjanraj/stockroom/pkg/ws"
)

// RegisterAPI mounts the REST surface and the two websocket topics.
func RegisterAPI(r *router.Router, ic *controllers.InventoryController, inventory, notifications *ws.Hub) {
	api := r.Group("/api")

	api.Get("/inventory", "inventory.index", ctx.Wrap(ic.Index))
	api.Post("/inventory", "inventory.store", ctx.Wrap(ic.Store))
	api.Get("/inventory/byname/{name}", "inventory.show-by-name", ctx.Wrap(ic.ShowByName))
	api.Get("/inventory/{id}", "inventory.show", ctx.Wrap(ic.Show))
	api.Put("/inventory/{id}", "inventory.update", ctx.Wrap(ic.Update))
	api.Delete("/inventory/{id}", "inventory.destroy", ctx.Wrap(ic.Destroy))
	api.Patch("/inventory/{id}/adjust-qty", "inventory.adjust-qty", ctx.Wrap(ic.AdjustQty))

	r.Get("/ws/inventory", "ws.inventory", func(w http.ResponseWriter, req *http.Request) {
		ws.Upgrade(w, req, inventory)
	})
	r.Get("/ws/notifications", "ws.notifications", func(w http.ResponseWriter, req *http.Request) {
		ws.Upgrade(w, req, notifications)
	})
}
