package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrUnknownWidget is returned when an operation targets an id absent from the layout.
	ErrUnknownWidget = errors.New("dashboard: widget is not part of the layout")
	// ErrRefreshUnsupported is returned when refreshing a widget without a refreshable body.
	ErrRefreshUnsupported = errors.New("dashboard: widget does not support refresh")
	// ErrWidgetInert is returned when widget content is used while editing the layout.
	ErrWidgetInert = errors.New("dashboard: widget content is inert while editing")
)

// Frame controls exposed to the interface.
const (
	ControlRemove     = "remove"
	ControlMoveBefore = "move-before"
	ControlMoveAfter  = "move-after"
	ControlRefresh    = "refresh"
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	Catalog       Catalog
	Storage       Storage
	LayoutKey     string
	DefaultLayout []string
	Dispatch      *Dispatch
	Insight       InsightOptions
	Data          DataSource
	Translator    TranslationService
	RefreshHook   RefreshHook
	Telemetry     Telemetry
	Logger        *slog.Logger
}

// Service orchestrates the catalog, layout store, edit session, content
// dispatch and the widget instances mounted for the current layout.
type Service struct {
	opts    Options
	layout  *LayoutStore
	session *EditSession

	mu         sync.Mutex
	instances  map[string]*mountedWidget
	stopLayout func()
}

type mountedWidget struct {
	instance  Instance
	stopWatch func()
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Catalog == nil {
		opts.Catalog = NewRegistry()
	}
	if opts.Storage == nil {
		opts.Storage = NewInMemoryStorage()
	}
	if opts.Data == nil {
		opts.Data = StaticDataSource{Data: DefaultSnapshot()}
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	opts.Logger = normalizeLogger(opts.Logger)
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.Insight.Logger == nil {
		opts.Insight.Logger = opts.Logger
	}
	if opts.Insight.Telemetry == nil {
		opts.Insight.Telemetry = opts.Telemetry
	}
	if opts.Dispatch == nil {
		opts.Dispatch = NewDispatch()
		opts.Dispatch.Register(KindInsight, NewInsightProvider(opts.Insight))
	}
	layout := NewLayoutStore(LayoutStoreOptions{
		Storage:  opts.Storage,
		Catalog:  opts.Catalog,
		Key:      opts.LayoutKey,
		Defaults: opts.DefaultLayout,
		Logger:   opts.Logger,
	})
	svc := &Service{
		opts:      opts,
		layout:    layout,
		session:   NewEditSession(layout),
		instances: map[string]*mountedWidget{},
	}
	svc.stopLayout = layout.OnChange(svc.handleLayoutChange)
	return svc
}

// Start loads the persisted layout and mounts stateful widget bodies.
func (s *Service) Start(ctx context.Context) []string {
	return s.layout.Load(ctx)
}

// Layout exposes the layout store.
func (s *Service) Layout() *LayoutStore {
	return s.layout
}

// Session exposes the edit session.
func (s *Service) Session() *EditSession {
	return s.session
}

// Catalog exposes the widget catalog.
func (s *Service) Catalog() Catalog {
	return s.opts.Catalog
}

// Dispatch exposes the content dispatch.
func (s *Service) Dispatch() *Dispatch {
	return s.opts.Dispatch
}

// ToggleEdit flips between browsing and editing.
func (s *Service) ToggleEdit(ctx context.Context) EditMode {
	mode := s.session.Toggle()
	s.publish(ctx, WidgetEvent{Reason: "mode", Mode: mode.String()})
	s.recordTelemetry(ctx, "dashboard.mode.toggle", map[string]any{"mode": mode.String()})
	return mode
}

// AddWidget appends a catalog entry to the layout. Edit mode only.
func (s *Service) AddWidget(ctx context.Context, id string) ([]string, error) {
	editor, ok := s.session.Editor()
	if !ok {
		return nil, ErrNotEditing
	}
	if _, known := s.opts.Catalog.Lookup(id); !known {
		return s.layout.Sequence(), fmt.Errorf("%w: %s", ErrUnknownWidget, id)
	}
	return editor.Append(ctx, id)
}

// RemoveWidget deletes a widget from the layout. Edit mode only.
func (s *Service) RemoveWidget(ctx context.Context, id string) ([]string, error) {
	editor, ok := s.session.Editor()
	if !ok {
		return nil, ErrNotEditing
	}
	if !s.layout.Contains(id) {
		return s.layout.Sequence(), fmt.Errorf("%w: %s", ErrUnknownWidget, id)
	}
	return editor.Remove(ctx, id)
}

// MoveWidget swaps the widget with its neighbour in direction. Moves past
// either end are ignored. Edit mode only.
func (s *Service) MoveWidget(ctx context.Context, id string, direction Direction) ([]string, error) {
	editor, ok := s.session.Editor()
	if !ok {
		return nil, ErrNotEditing
	}
	index := indexOf(s.layout.Sequence(), id)
	if index < 0 {
		return s.layout.Sequence(), fmt.Errorf("%w: %s", ErrUnknownWidget, id)
	}
	return editor.MoveAdjacent(ctx, index, direction)
}

// ResetLayout restores the default layout and clears the stored one.
func (s *Service) ResetLayout(ctx context.Context) ([]string, error) {
	return s.layout.Reset(ctx)
}

// RefreshWidget re-triggers the content fetch of a mounted widget. The
// returned channel closes once the new cycle settles.
func (s *Service) RefreshWidget(ctx context.Context, id string) (<-chan struct{}, error) {
	if s.session.Editing() {
		return nil, ErrWidgetInert
	}
	if !s.layout.Contains(id) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWidget, id)
	}
	s.mu.Lock()
	mounted := s.instances[id]
	s.mu.Unlock()
	if mounted == nil {
		return nil, ErrRefreshUnsupported
	}
	refresher, ok := mounted.instance.(Refresher)
	if !ok {
		return nil, ErrRefreshUnsupported
	}
	s.recordTelemetry(ctx, "dashboard.widget.refresh", map[string]any{"widget_id": id})
	return refresher.Refresh(), nil
}

// BoardView is the full interface model for one render.
type BoardView struct {
	Mode       string             `json:"mode"`
	Editing    bool               `json:"editing"`
	Sequence   []string           `json:"sequence"`
	Frames     []FrameView        `json:"frames"`
	AddOptions []WidgetDefinition `json:"add_options,omitempty"`
	CanAdd     bool               `json:"can_add"`
}

// FrameView is one widget frame.
type FrameView struct {
	Index    int        `json:"index"`
	ID       string     `json:"id"`
	Kind     WidgetKind `json:"kind"`
	Title    string     `json:"title"`
	Span     int        `json:"span"`
	Inert    bool       `json:"inert"`
	Controls []string   `json:"controls,omitempty"`
	Data     WidgetData `json:"data,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// View resolves the layout and renders every frame for locale.
func (s *Service) View(ctx context.Context, locale string) (BoardView, error) {
	snapshot, err := s.opts.Data.Snapshot(ctx)
	if err != nil {
		return BoardView{}, fmt.Errorf("dashboard: load snapshot: %w", err)
	}
	mode := s.session.Mode()
	editing := mode == ModeEditing
	sequence := s.layout.Sequence()
	view := BoardView{
		Mode:     mode.String(),
		Editing:  editing,
		Sequence: sequence,
		Frames:   []FrameView{},
	}
	for _, resolved := range s.layout.Resolve() {
		def := resolved.Definition
		meta := WidgetContext{
			Definition: def,
			Snapshot:   cloneSnapshot(snapshot),
			Locale:     locale,
			Index:      resolved.Index,
			Inert:      editing,
			Translator: s.opts.Translator,
		}
		frame := FrameView{
			Index: resolved.Index,
			ID:    def.ID,
			Kind:  def.Kind,
			Title: def.TitleForLocale(locale),
			Span:  def.Span,
			Inert: editing,
		}
		instance := s.instance(def.ID)
		var data WidgetData
		var renderErr error
		if instance != nil {
			data, renderErr = instance.Render(ctx, meta)
		} else {
			data, renderErr = s.opts.Dispatch.Resolve(def.Kind).Render(ctx, meta)
		}
		if renderErr != nil {
			frame.Error = renderErr.Error()
			s.recordTelemetry(ctx, "dashboard.widget.provider_error", map[string]any{
				"widget_id": def.ID,
				"error":     renderErr.Error(),
			})
		}
		frame.Data = data
		frame.Controls = frameControls(editing, resolved.Index, len(sequence), instance)
		view.Frames = append(view.Frames, frame)
	}
	if editing {
		view.AddOptions = s.layout.UnusedCatalogEntries()
		view.CanAdd = len(view.AddOptions) > 0
	}
	return view, nil
}

func frameControls(editing bool, index, length int, instance Instance) []string {
	var controls []string
	if editing {
		controls = append(controls, ControlRemove)
		if index > 0 {
			controls = append(controls, ControlMoveBefore)
		}
		if index < length-1 {
			controls = append(controls, ControlMoveAfter)
		}
		return controls
	}
	if _, ok := instance.(Refresher); ok {
		controls = append(controls, ControlRefresh)
	}
	return controls
}

// Close unmounts every widget instance and stops observing the layout.
func (s *Service) Close() {
	if s.stopLayout != nil {
		s.stopLayout()
	}
	s.mu.Lock()
	instances := s.instances
	s.instances = map[string]*mountedWidget{}
	s.mu.Unlock()
	for _, mounted := range instances {
		mounted.unmount()
	}
}

// NotifyWidgetUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyWidgetUpdated(ctx context.Context, event WidgetEvent) error {
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.event", map[string]any{
		"widget_id": event.WidgetID,
		"reason":    event.Reason,
	})
	return nil
}

func (s *Service) instance(id string) Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mounted, ok := s.instances[id]; ok {
		return mounted.instance
	}
	return nil
}

func (s *Service) handleLayoutChange(ctx context.Context, change LayoutChange) {
	pending := s.reconcile(ctx)
	s.publish(ctx, WidgetEvent{
		WidgetID: change.WidgetID,
		Reason:   change.Reason,
		Sequence: change.Sequence,
	})
	s.recordTelemetry(ctx, "dashboard.layout."+change.Reason, map[string]any{
		"widget_id": change.WidgetID,
		"count":     len(change.Sequence),
	})
	for _, event := range pending {
		s.publish(ctx, event)
	}
}

// reconcile unmounts instances whose widget left the layout and mounts
// stateful bodies for widgets that joined it.
func (s *Service) reconcile(ctx context.Context) []WidgetEvent {
	resolved := s.layout.Resolve()
	present := make(map[string]ResolvedWidget, len(resolved))
	for _, widget := range resolved {
		present[widget.Definition.ID] = widget
	}

	s.mu.Lock()
	var stale []*mountedWidget
	for id, mounted := range s.instances {
		if _, ok := present[id]; !ok {
			stale = append(stale, mounted)
			delete(s.instances, id)
		}
	}
	var toMount []ResolvedWidget
	for _, widget := range resolved {
		if _, ok := s.instances[widget.Definition.ID]; ok {
			continue
		}
		if _, ok := s.opts.Dispatch.Resolve(widget.Definition.Kind).(Mounter); ok {
			toMount = append(toMount, widget)
		}
	}
	s.mu.Unlock()

	for _, mounted := range stale {
		mounted.unmount()
	}
	if len(toMount) == 0 {
		return nil
	}

	snapshot, err := s.opts.Data.Snapshot(ctx)
	if err != nil {
		s.opts.Logger.Warn("snapshot unavailable while mounting widgets", "error", err)
	}
	var pending []WidgetEvent
	for _, widget := range toMount {
		def := widget.Definition
		mounter := s.opts.Dispatch.Resolve(def.Kind).(Mounter)
		instance := mounter.Mount(ctx, WidgetContext{
			Definition: def,
			Snapshot:   cloneSnapshot(snapshot),
			Index:      widget.Index,
			Translator: s.opts.Translator,
		})
		mounted := &mountedWidget{instance: instance}
		if watcher, ok := instance.(Watcher); ok {
			id := def.ID
			mounted.stopWatch = watcher.Watch(func(view FetchView) {
				s.publish(context.WithoutCancel(ctx), WidgetEvent{WidgetID: id, Reason: "fetch", Fetch: &view})
			})
			current := watcher.View()
			pending = append(pending, WidgetEvent{WidgetID: id, Reason: "fetch", Fetch: &current})
		}
		s.mu.Lock()
		if _, exists := s.instances[def.ID]; exists || !s.layout.Contains(def.ID) {
			s.mu.Unlock()
			mounted.unmount()
			continue
		}
		s.instances[def.ID] = mounted
		s.mu.Unlock()
		s.opts.Logger.Debug("widget mounted", "widget_id", def.ID, "kind", def.Kind)
	}
	return pending
}

func (m *mountedWidget) unmount() {
	if m.stopWatch != nil {
		m.stopWatch()
	}
	m.instance.Unmount()
}

func (s *Service) publish(ctx context.Context, event WidgetEvent) {
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		s.opts.Logger.Warn("refresh hook failed", "reason", event.Reason, "widget_id", event.WidgetID, "error", err)
	}
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

type noopRefreshHook struct{}

func (noopRefreshHook) WidgetUpdated(context.Context, WidgetEvent) error {
	return nil
}
