package dashboard

import (
	"fmt"
	"sync"
)

// CatalogHook lets packages register widget definitions during init().
type CatalogHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []CatalogHook
)

// RegisterCatalogHook registers a hook executed against new registries.
func RegisterCatalogHook(h CatalogHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry implements Catalog with hook + manifest support. Definitions keep
// their registration order so "add widget" menus are stable.
type Registry struct {
	mu           sync.RWMutex
	definitions  map[string]WidgetDefinition
	order        []string
	manifestMeta map[string]ManifestProvider
}

// NewRegistry builds a registry seeded with the default catalog and applies global hooks.
func NewRegistry() *Registry {
	reg := NewEmptyRegistry()
	for _, def := range DefaultWidgetDefinitions() {
		_ = reg.RegisterDefinition(def)
	}
	_ = reg.ApplyHooks()
	return reg
}

// NewEmptyRegistry builds a registry with no definitions.
func NewEmptyRegistry() *Registry {
	return &Registry{
		definitions:  map[string]WidgetDefinition{},
		manifestMeta: map[string]ManifestProvider{},
	}
}

// ApplyHooks executes registered catalog hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDefinition stores widget metadata. Registering an existing id replaces
// the entry in place.
func (r *Registry) RegisterDefinition(def WidgetDefinition) error {
	if err := validateDefinition(def); err != nil {
		return err
	}
	def.TitleLocalized = normalizeLocaleMap(def.TitleLocalized)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.definitions[def.ID]; !exists {
		r.order = append(r.order, def.ID)
	}
	r.definitions[def.ID] = def
	return nil
}

// Unregister removes a definition. Layout entries pointing at it become stale
// and are skipped during rendering.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.definitions[id]; !ok {
		return
	}
	delete(r.definitions, id)
	delete(r.manifestMeta, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Lookup fetches a widget definition by id.
func (r *Registry) Lookup(id string) (WidgetDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[id]
	return def, ok
}

// ProviderMetadata returns any manifest metadata registered for a widget.
func (r *Registry) ProviderMetadata(id string) (ManifestProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.manifestMeta[id]
	return meta, ok
}

// Definitions returns all registered definitions in registration order.
func (r *Registry) Definitions() []WidgetDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]WidgetDefinition, 0, len(r.order))
	for _, id := range r.order {
		defs = append(defs, r.definitions[id])
	}
	return defs
}

func (r *Registry) recordProviderMetadata(id string, meta ManifestProvider) {
	if meta.isZero() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manifestMeta[id] = meta
}

func validateDefinition(def WidgetDefinition) error {
	if def.ID == "" {
		return fmt.Errorf("dashboard: widget definition id is required")
	}
	if def.Kind == "" {
		return fmt.Errorf("dashboard: widget definition %s is missing a kind", def.ID)
	}
	if def.Span != 1 && def.Span != 2 {
		return fmt.Errorf("dashboard: widget definition %s has span %d, expected 1 or 2", def.ID, def.Span)
	}
	return nil
}
