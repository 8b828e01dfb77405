package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Direction selects the neighbour MoveAdjacent swaps with.
type Direction string

const (
	DirectionBefore Direction = "before"
	DirectionAfter  Direction = "after"
)

// ErrInvalidDirection reports a direction ParseDirection does not recognise.
var ErrInvalidDirection = errors.New("dashboard: invalid direction")

// ParseDirection accepts before/after plus the left/right and up/down aliases.
func ParseDirection(value string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "before", "left", "up", "prev":
		return DirectionBefore, nil
	case "after", "right", "down", "next":
		return DirectionAfter, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, value)
	}
}

func (d Direction) offset() int {
	switch d {
	case DirectionBefore:
		return -1
	case DirectionAfter:
		return 1
	default:
		return 0
	}
}

// Layout change reasons.
const (
	ReasonLoad   = "load"
	ReasonAdd    = "add"
	ReasonRemove = "remove"
	ReasonMove   = "move"
	ReasonReset  = "reset"
)

// LayoutChange is delivered to OnChange observers after every effective change.
type LayoutChange struct {
	Reason   string
	WidgetID string
	Sequence []string
}

// ResolvedWidget pairs a definition with its position in the stored sequence.
// Index is the sequence index, which is what MoveAdjacent expects.
type ResolvedWidget struct {
	Index      int
	Definition WidgetDefinition
}

// LayoutStoreOptions configures a LayoutStore.
type LayoutStoreOptions struct {
	Storage  Storage
	Catalog  Catalog
	Key      string
	Defaults []string
	Decoder  LayoutDecoder
	Logger   *slog.Logger
}

// LayoutStore owns the ordered sequence of active widget ids. It is the single
// source of truth for what is shown and in what order.
type LayoutStore struct {
	opts LayoutStoreOptions

	mu       sync.RWMutex
	sequence []string

	listenerMu   sync.Mutex
	listeners    map[int]func(context.Context, LayoutChange)
	nextListener int
}

// NewLayoutStore builds a store holding the default sequence until Load is called.
func NewLayoutStore(opts LayoutStoreOptions) *LayoutStore {
	if opts.Storage == nil {
		opts.Storage = NewInMemoryStorage()
	}
	if opts.Catalog == nil {
		opts.Catalog = NewRegistry()
	}
	if opts.Key == "" {
		opts.Key = DefaultLayoutKey
	}
	if len(opts.Defaults) == 0 {
		opts.Defaults = DefaultLayout()
	}
	if opts.Decoder == nil {
		opts.Decoder = NewJSONSchemaLayoutDecoder()
	}
	opts.Logger = normalizeLogger(opts.Logger)
	return &LayoutStore{
		opts:      opts,
		sequence:  cloneIDs(opts.Defaults),
		listeners: map[int]func(context.Context, LayoutChange){},
	}
}

// Load reads durable storage. Missing or malformed data yields the default
// sequence; this never fails.
func (s *LayoutStore) Load(ctx context.Context) []string {
	seq := s.read(ctx)
	s.mu.Lock()
	s.sequence = seq
	out := cloneIDs(seq)
	s.mu.Unlock()
	s.notify(ctx, LayoutChange{Reason: ReasonLoad, Sequence: cloneIDs(out)})
	return out
}

func (s *LayoutStore) read(ctx context.Context) []string {
	data, err := s.opts.Storage.Get(ctx, s.opts.Key)
	if err != nil {
		if !errors.Is(err, ErrStorageKeyNotFound) {
			s.opts.Logger.Warn("layout storage unreadable, using default layout", "key", s.opts.Key, "error", err)
		}
		return cloneIDs(s.opts.Defaults)
	}
	ids, err := s.opts.Decoder.Decode(data)
	if err != nil {
		s.opts.Logger.Warn("persisted layout malformed, using default layout", "key", s.opts.Key, "error", err)
		return cloneIDs(s.opts.Defaults)
	}
	return ids
}

// Persist serializes the full sequence to durable storage.
func (s *LayoutStore) Persist(ctx context.Context, sequence []string) error {
	if sequence == nil {
		sequence = []string{}
	}
	data, err := json.Marshal(sequence)
	if err != nil {
		return fmt.Errorf("dashboard: encode layout: %w", err)
	}
	if err := s.opts.Storage.Set(ctx, s.opts.Key, data); err != nil {
		return fmt.Errorf("dashboard: persist layout: %w", err)
	}
	return nil
}

// Sequence returns a copy of the current order.
func (s *LayoutStore) Sequence() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneIDs(s.sequence)
}

// Contains reports whether id is part of the layout.
func (s *LayoutStore) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.sequence, id) >= 0
}

// Append adds id at the end. Already present or unknown ids are ignored.
func (s *LayoutStore) Append(ctx context.Context, id string) ([]string, error) {
	return s.mutate(ctx, ReasonAdd, func(current []string) ([]string, string, bool) {
		if id == "" || indexOf(current, id) >= 0 {
			return current, id, false
		}
		if _, ok := s.opts.Catalog.Lookup(id); !ok {
			return current, id, false
		}
		next := make([]string, 0, len(current)+1)
		next = append(next, current...)
		return append(next, id), id, true
	})
}

// Remove deletes id. Absent ids are ignored.
func (s *LayoutStore) Remove(ctx context.Context, id string) ([]string, error) {
	return s.mutate(ctx, ReasonRemove, func(current []string) ([]string, string, bool) {
		idx := indexOf(current, id)
		if idx < 0 {
			return current, id, false
		}
		next := make([]string, 0, len(current)-1)
		next = append(next, current[:idx]...)
		return append(next, current[idx+1:]...), id, true
	})
}

// MoveAdjacent swaps the element at index with its neighbour in direction.
// Moves whose target falls outside the sequence are ignored.
func (s *LayoutStore) MoveAdjacent(ctx context.Context, index int, direction Direction) ([]string, error) {
	return s.mutate(ctx, ReasonMove, func(current []string) ([]string, string, bool) {
		target := index + direction.offset()
		if target == index || index < 0 || index >= len(current) || target < 0 || target >= len(current) {
			return current, "", false
		}
		next := cloneIDs(current)
		next[index], next[target] = next[target], next[index]
		return next, current[index], true
	})
}

// Reset clears the storage key and restores the default sequence.
func (s *LayoutStore) Reset(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	err := s.opts.Storage.Delete(ctx, s.opts.Key)
	s.sequence = cloneIDs(s.opts.Defaults)
	out := cloneIDs(s.sequence)
	s.mu.Unlock()
	if err != nil {
		err = fmt.Errorf("dashboard: clear layout: %w", err)
		s.opts.Logger.Warn("layout reset could not clear storage", "key", s.opts.Key, "error", err)
	}
	s.notify(ctx, LayoutChange{Reason: ReasonReset, Sequence: cloneIDs(out)})
	return out, err
}

// Resolve maps the sequence to catalog definitions. Ids the catalog no longer
// knows are skipped but stay in the sequence.
func (s *LayoutStore) Resolve() []ResolvedWidget {
	seq := s.Sequence()
	resolved := make([]ResolvedWidget, 0, len(seq))
	for idx, id := range seq {
		def, ok := s.opts.Catalog.Lookup(id)
		if !ok {
			continue
		}
		resolved = append(resolved, ResolvedWidget{Index: idx, Definition: def})
	}
	return resolved
}

// UnusedCatalogEntries lists catalog entries absent from the sequence.
func (s *LayoutStore) UnusedCatalogEntries() []WidgetDefinition {
	seq := s.Sequence()
	used := make(map[string]struct{}, len(seq))
	for _, id := range seq {
		used[id] = struct{}{}
	}
	var unused []WidgetDefinition
	for _, def := range s.opts.Catalog.Definitions() {
		if _, ok := used[def.ID]; !ok {
			unused = append(unused, def)
		}
	}
	return unused
}

// Catalog exposes the catalog the store resolves against.
func (s *LayoutStore) Catalog() Catalog {
	return s.opts.Catalog
}

// OnChange registers fn for every effective layout change and returns a cancel func.
// Observers run synchronously on the mutating goroutine after the store lock is released.
func (s *LayoutStore) OnChange(fn func(context.Context, LayoutChange)) func() {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	return func() {
		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *LayoutStore) mutate(ctx context.Context, reason string, fn func([]string) ([]string, string, bool)) ([]string, error) {
	s.mu.Lock()
	next, id, changed := fn(s.sequence)
	if !changed {
		out := cloneIDs(s.sequence)
		s.mu.Unlock()
		return out, nil
	}
	s.sequence = next
	out := cloneIDs(next)
	err := s.Persist(ctx, out)
	s.mu.Unlock()
	if err != nil {
		s.opts.Logger.Warn("layout change kept in memory but not persisted", "reason", reason, "error", err)
	}
	s.notify(ctx, LayoutChange{Reason: reason, WidgetID: id, Sequence: cloneIDs(out)})
	return out, err
}

func (s *LayoutStore) notify(ctx context.Context, change LayoutChange) {
	s.listenerMu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(context.Context, LayoutChange), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.listenerMu.Unlock()
	for _, fn := range fns {
		fn(ctx, change)
	}
}

func indexOf(ids []string, id string) int {
	for i, existing := range ids {
		if existing == id {
			return i
		}
	}
	return -1
}

func cloneIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
