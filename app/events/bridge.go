package events

import (
	"github.com/shashiranjanraj/stockroom/pkg/event"
	"github.com/shashiranjanraj/stockroom/pkg/logger"
	"github.com/shashiranjanraj/stockroom/pkg/metrics"
	"github.com/shashiranjanraj/stockroom/pkg/ws"
)

// notification is the envelope sent on the notifications topic. Action and
// ID identify the subject so clients can collapse bursts about one product
// even when the rendered text differs.
type notification struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	ID      uint   `json:"id"`
}

// Bridge subscribes the two websocket hubs to InventoryChanged. Every fired
// change event is fanned out twice: the structured event to the inventory
// hub, a text message to the notifications hub.
func Bridge(d *event.Dispatcher, inventory, notifications *ws.Hub) {
	d.Listen(InventoryChanged, func(payload interface{}) {
		evt, ok := payload.(ChangeEvent)
		if !ok {
			logger.Warn("events: unexpected payload type on " + InventoryChanged)
			return
		}

		if err := inventory.PublishJSON(evt); err != nil {
			logger.Error("events: publish change event", "action", evt.Action, "error", err)
			return
		}
		note := notification{Message: evt.Notification(), Action: evt.Action, ID: evt.SubjectID()}
		if err := notifications.PublishJSON(note); err != nil {
			logger.Error("events: publish notification", "action", evt.Action, "error", err)
			return
		}

		metrics.EventsPublished.WithLabelValues(evt.Action).Inc()
	})
}
