package journal

import (
	"errors"
	"testing"
	"time"

	"github.com/ghalamif/BattleTrack/internal/domain"
	"github.com/ghalamif/BattleTrack/internal/ports"
)

func TestRingAppendIterate(t *testing.T) {
	r := NewRing(4)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e1 := domain.Event{At: at, From: domain.StateIdle, To: domain.StateArmed}
	e2 := domain.Event{At: at.Add(time.Second), From: domain.StateArmed, To: domain.StateEmergency, Reason: "actuator fault: drive"}

	id1, err := r.Append(e1)
	if err != nil || id1 != 1 {
		t.Fatalf("append event 1: %v id=%d", err, id1)
	}
	id2, err := r.Append(e2)
	if err != nil || id2 != 2 {
		t.Fatalf("append event 2: %v id=%d", err, id2)
	}

	var got []domain.Event
	if err := r.Iterate(0, func(id ports.JournalEntryID, e domain.Event) error {
		got = append(got, e)
		return nil
	}); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(got) != 2 || got[1].Reason != e2.Reason || !got[0].At.Equal(at) {
		t.Fatalf("unexpected events %+v", got)
	}

	got = nil
	if err := r.Iterate(id2, func(id ports.JournalEntryID, e domain.Event) error {
		got = append(got, e)
		return nil
	}); err != nil {
		t.Fatalf("iterate from %d: %v", id2, err)
	}
	if len(got) != 1 || got[0].To != domain.StateEmergency {
		t.Fatalf("expected only the newest entry, got %+v", got)
	}
}

func TestRingEvictsOldest(t *testing.T) {
	r := NewRing(2)
	for i := 0; i < 5; i++ {
		if _, err := r.Append(domain.Event{Reason: string(rune('a' + i))}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	stats := r.Stats()
	if stats.Oldest != 4 || stats.Latest != 5 || stats.Dropped != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	var ids []ports.JournalEntryID
	var reasons string
	if err := r.Iterate(0, func(id ports.JournalEntryID, e domain.Event) error {
		ids = append(ids, id)
		reasons += e.Reason
		return nil
	}); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(ids) != 2 || ids[0] != 4 || ids[1] != 5 || reasons != "de" {
		t.Fatalf("expected entries 4 and 5, got %v %q", ids, reasons)
	}
}

func TestRingIterateStopsOnError(t *testing.T) {
	r := NewRing(3)
	r.Append(domain.Event{})
	r.Append(domain.Event{})

	stop := errors.New("stop")
	calls := 0
	err := r.Iterate(0, func(ports.JournalEntryID, domain.Event) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Fatalf("expected iteration to stop after the first error, err=%v calls=%d", err, calls)
	}

	if st := NewRing(0).Stats(); st.Oldest != 0 || st.Latest != 0 {
		t.Fatalf("empty ring should report zero ids, got %+v", st)
	}
}
