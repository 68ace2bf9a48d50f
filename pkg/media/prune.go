package media

import (
	"sync"
	"sync/atomic"

	"github.com/shashiranjanraj/stockroom/pkg/logger"
	"github.com/shashiranjanraj/stockroom/pkg/workerpool"
)

// Prune deletes every stored object whose id is not in referenced.
// Orphans accumulate when an upload succeeds but the subsequent row insert
// fails (an accepted, documented leak of the create path); this is the
// manual remediation for it. Deletes run in parallel on a small pool.
// Returns the number of objects removed.
func (s *DiskStore) Prune(referenced map[string]bool) (int, error) {
	keys, err := s.Keys()
	if err != nil {
		return 0, err
	}

	pool := workerpool.New(8)
	defer pool.Shutdown()

	var removed atomic.Int64
	var wg sync.WaitGroup

	for _, key := range keys {
		if referenced[key] {
			continue
		}
		key := key
		wg.Add(1)
		if err := pool.SubmitWait(func() {
			defer wg.Done()
			if err := s.Delete(key); err != nil {
				logger.Warn("media: prune delete failed", "key", key, "error", err)
				return
			}
			removed.Add(1)
		}); err != nil {
			wg.Done()
		}
	}

	wg.Wait()
	return int(removed.Load()), nil
}
