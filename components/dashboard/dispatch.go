package dashboard

import (
	"context"
	"sync"
)

// WidgetData is an opaque payload passed to templates and transports.
type WidgetData map[string]any

// WidgetContext contains what a provider needs to render one frame. Snapshot is
// a copy; providers never write back to the layout or to user data.
type WidgetContext struct {
	Definition WidgetDefinition
	Snapshot   Snapshot
	Locale     string
	Index      int
	Inert      bool
	Translator TranslationService
}

// ContentProvider renders the body of a widget.
type ContentProvider interface {
	Render(ctx context.Context, meta WidgetContext) (WidgetData, error)
}

// ProviderFunc adapts a function into a ContentProvider.
type ProviderFunc func(ctx context.Context, meta WidgetContext) (WidgetData, error)

// Render calls f.
func (f ProviderFunc) Render(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	return f(ctx, meta)
}

// Mounter is implemented by providers that keep per-instance state for as long
// as a widget is present in the layout.
type Mounter interface {
	Mount(ctx context.Context, meta WidgetContext) Instance
}

// Instance is a mounted, stateful widget body.
type Instance interface {
	Render(ctx context.Context, meta WidgetContext) (WidgetData, error)
	Unmount()
}

// Refresher is implemented by instances that support a manual re-trigger.
type Refresher interface {
	Refresh() <-chan struct{}
}

// Watcher is implemented by instances whose state changes asynchronously.
type Watcher interface {
	Watch(fn func(FetchView)) func()
	View() FetchView
}

// renderNothing is the provider unknown kinds resolve to.
var renderNothing ContentProvider = ProviderFunc(func(context.Context, WidgetContext) (WidgetData, error) {
	return nil, nil
})

// Dispatch selects the content provider for a widget kind.
type Dispatch struct {
	mu        sync.RWMutex
	providers map[WidgetKind]ContentProvider
}

// NewDispatch builds a dispatch seeded with the built-in stateless providers.
// The insight provider needs a generator and is registered by the caller.
func NewDispatch() *Dispatch {
	d := NewEmptyDispatch()
	for kind, provider := range defaultProviders() {
		d.Register(kind, provider)
	}
	return d
}

// NewEmptyDispatch builds a dispatch with no providers.
func NewEmptyDispatch() *Dispatch {
	return &Dispatch{providers: map[WidgetKind]ContentProvider{}}
}

// Register binds a provider to kind, replacing any previous binding.
func (d *Dispatch) Register(kind WidgetKind, provider ContentProvider) {
	if kind == "" || provider == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.providers[kind] = provider
}

// Resolve returns the provider for kind. Unknown kinds render nothing.
func (d *Dispatch) Resolve(kind WidgetKind) ContentProvider {
	provider, ok := d.Lookup(kind)
	if !ok {
		return renderNothing
	}
	return provider
}

// Lookup reports whether kind has a registered provider.
func (d *Dispatch) Lookup(kind WidgetKind) (ContentProvider, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	provider, ok := d.providers[kind]
	return provider, ok
}
