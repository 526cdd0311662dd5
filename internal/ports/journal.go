package ports

import "github.com/ghalamif/BattleTrack/internal/domain"

type JournalEntryID uint64

// Journal keeps the transition history of the current run for review from
// the CLI or an embedding program.
type Journal interface {
	Append(e domain.Event) (JournalEntryID, error)
	Iterate(from JournalEntryID, fn func(id JournalEntryID, e domain.Event) error) error
	Stats() JournalStats
}

type JournalStats struct {
	Oldest  JournalEntryID
	Latest  JournalEntryID
	Dropped uint64
}
