package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/waiverwire/internal/domain/jobscheduler"
)

// JobDispatchRepository collects dispatch events keyed by dispatch id,
// last write wins, the same collapse the SQL upsert performs.
type JobDispatchRepository struct {
	mu     sync.Mutex
	events map[string]jobscheduler.DispatchEvent
	order  []string
}

func NewJobDispatchRepository() *JobDispatchRepository {
	return &JobDispatchRepository{events: make(map[string]jobscheduler.DispatchEvent)}
}

func (r *JobDispatchRepository) UpsertEvent(_ context.Context, event jobscheduler.DispatchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, seen := r.events[event.DispatchID]; !seen {
		r.order = append(r.order, event.DispatchID)
	}
	r.events[event.DispatchID] = event
	return nil
}

// Events returns recorded events in first-seen order.
func (r *JobDispatchRepository) Events() []jobscheduler.DispatchEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]jobscheduler.DispatchEvent, 0, len(r.order))
	for _, id := range r.order {
		items = append(items, r.events[id])
	}
	return items
}
