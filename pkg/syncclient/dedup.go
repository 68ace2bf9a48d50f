package syncclient

import (
	"fmt"
	"sync"
	"time"
)

// defaultDedupWindow collapses notification bursts: two notifications about
// the same subject inside this window surface once.
const defaultDedupWindow = 2 * time.Second

// NotificationKey derives the dedup key for a notification. Notifications
// that name their subject key on (action, product id), so a burst of
// adjustments to one product collapses even as the rendered text changes
// ("now at 3", "now at 2"). Bare text keys on itself.
func NotificationKey(action string, id uint, msg string) string {
	if action == "" {
		return msg
	}
	return fmt.Sprintf("%s:%d", action, id)
}

// Deduper suppresses repeated notifications about one subject arriving in a
// short burst. It only gates what the user sees; change-event patching never
// goes through it.
type Deduper struct {
	mu     sync.Mutex
	window time.Duration
	last   string
	lastAt time.Time
	now    func() time.Time
}

func NewDeduper(window time.Duration) *Deduper {
	if window <= 0 {
		window = defaultDedupWindow
	}
	return &Deduper{window: window, now: time.Now}
}

// Accept reports whether the notification behind key should be surfaced. A
// key identical to the previous one within the window is dropped.
func (d *Deduper) Accept(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if key == d.last && now.Sub(d.lastAt) < d.window {
		d.lastAt = now
		return false
	}

	d.last = key
	d.lastAt = now
	return true
}
