package snapshot

import (
	"context"
	"log"
	"sync"
	"time"

	"saboaria/backend/internal/domain"
	"saboaria/backend/internal/store"
)

// Slot holds at most one snapshot: the latest full-store export. Saving
// overwrites the previous snapshot unconditionally.
type Slot interface {
	Save(ctx context.Context, doc domain.BackupDocument) error
	Load(ctx context.Context) (domain.BackupDocument, bool, error)
	Ping(ctx context.Context) error
	Close() error
}

const DefaultDebounce = 3 * time.Second

// Snapshotter listens for store mutations and writes a debounced
// full-store export to its slot. The first mutation after an idle
// period starts the window; mutations inside the window coalesce into
// the single flush at the window's end. The timer is deliberately not
// reset per mutation, so a steady write stream still snapshots every
// debounce interval.
type Snapshotter struct {
	repo     store.Repository
	slot     Slot
	debounce time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

func NewSnapshotter(repo store.Repository, slot Slot, debounce time.Duration) *Snapshotter {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Snapshotter{
		repo:     repo,
		slot:     slot,
		debounce: debounce,
	}
}

// StoreMutated implements store.MutationObserver.
func (s *Snapshotter) StoreMutated() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.timer != nil {
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		s.timer = nil
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}
		s.flush()
	})
}

// Flush exports and saves immediately, cancelling any pending window.
// Called on shutdown so the last burst of mutations is never lost to
// the debounce.
func (s *Snapshotter) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.flush()
}

// Close stops the snapshotter after a final flush.
func (s *Snapshotter) Close() {
	s.Flush()
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
}

// flush is best-effort. A failing slot must never take the engine
// down, so errors are logged and swallowed.
func (s *Snapshotter) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	doc, err := s.repo.ExportAll(ctx)
	if err != nil {
		log.Printf("[snapshot] WARN: export failed: %v", err)
		return
	}
	if err := s.slot.Save(ctx, doc); err != nil {
		log.Printf("[snapshot] WARN: save failed: %v", err)
	}
}

// Recover imports the slot's snapshot into the store, but only when
// every entity table is empty. Any non-empty table means the store
// already holds live state and a stale snapshot must not clobber it.
func Recover(ctx context.Context, repo store.Repository, slot Slot) error {
	counts, err := repo.Counts(ctx)
	if err != nil {
		return err
	}
	for table, n := range counts {
		if n > 0 {
			log.Printf("[snapshot] store not empty (%s has %d rows), skipping recovery", table, n)
			return nil
		}
	}

	doc, ok, err := slot.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		log.Println("[snapshot] no snapshot found, starting empty")
		return nil
	}

	if err := repo.ImportAll(ctx, doc); err != nil {
		return err
	}
	log.Printf("[snapshot] restored snapshot exported at %s", doc.Meta.ExportedAt.Format(time.RFC3339))
	return nil
}
