package journal

import (
	"sync"

	"github.com/ghalamif/BattleTrack/internal/domain"
	"github.com/ghalamif/BattleTrack/internal/ports"
)

// Ring is a bounded in-memory journal. Once full, each append evicts the
// oldest entry; ids keep increasing so readers can tell what they missed.
type Ring struct {
	mu      sync.Mutex
	entries []domain.Event
	head    int // index of the oldest entry
	size    int
	nextID  ports.JournalEntryID
	dropped uint64
}

func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring{entries: make([]domain.Event, capacity)}
}

func (r *Ring) Append(e domain.Event) (ports.JournalEntryID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	if r.size == len(r.entries) {
		r.entries[r.head] = e
		r.head = (r.head + 1) % len(r.entries)
		r.dropped++
	} else {
		r.entries[(r.head+r.size)%len(r.entries)] = e
		r.size++
	}
	return r.nextID, nil
}

// Iterate calls fn for every retained entry with an id of at least from,
// oldest first. fn runs on a snapshot and may call back into the ring.
func (r *Ring) Iterate(from ports.JournalEntryID, fn func(id ports.JournalEntryID, e domain.Event) error) error {
	r.mu.Lock()
	first := r.nextID - ports.JournalEntryID(r.size) + 1
	snapshot := make([]domain.Event, r.size)
	for i := range snapshot {
		snapshot[i] = r.entries[(r.head+i)%len(r.entries)]
	}
	r.mu.Unlock()

	for i, e := range snapshot {
		id := first + ports.JournalEntryID(i)
		if id < from {
			continue
		}
		if err := fn(id, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *Ring) Stats() ports.JournalStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := ports.JournalStats{Latest: r.nextID, Dropped: r.dropped}
	if r.size > 0 {
		st.Oldest = r.nextID - ports.JournalEntryID(r.size) + 1
	}
	return st
}

var _ ports.Journal = (*Ring)(nil)
