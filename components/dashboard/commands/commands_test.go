package commands

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	dashboard "github.com/goliatone/go-homedash/components/dashboard"
)

type stubService struct {
	addCalls     int
	removeCalls  int
	moveCalls    int
	resetCalls   int
	refreshCalls int
	lastDir      dashboard.Direction
	refreshErr   error
	done         chan struct{}
}

func (s *stubService) AddWidget(context.Context, string) ([]string, error) {
	s.addCalls++
	return []string{"w-ai"}, nil
}

func (s *stubService) RemoveWidget(context.Context, string) ([]string, error) {
	s.removeCalls++
	return nil, nil
}

func (s *stubService) MoveWidget(_ context.Context, _ string, dir dashboard.Direction) ([]string, error) {
	s.moveCalls++
	s.lastDir = dir
	return nil, nil
}

func (s *stubService) ResetLayout(context.Context) ([]string, error) {
	s.resetCalls++
	return dashboard.DefaultLayout(), nil
}

func (s *stubService) RefreshWidget(context.Context, string) (<-chan struct{}, error) {
	s.refreshCalls++
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return s.done, nil
}

type stubTelemetry struct {
	mu     sync.Mutex
	calls  int
	events []string
}

func (s *stubTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.events = append(s.events, event)
}

func TestAddWidgetCommand(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewAddWidgetCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), AddWidgetInput{WidgetID: "w-ai"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.addCalls != 1 {
		t.Fatalf("expected add call")
	}
	if telemetry.calls != 0 {
		t.Fatalf("successful add is recorded by the service, got %v", telemetry.events)
	}
	if err := cmd.Execute(context.Background(), AddWidgetInput{}); err == nil {
		t.Fatalf("expected missing id error")
	}
	if telemetry.calls != 1 || telemetry.events[0] != eventCommandRejected {
		t.Fatalf("expected rejection telemetry, got %v", telemetry.events)
	}
}

func TestRemoveWidgetCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewRemoveWidgetCommand(service, nil)
	if err := cmd.Execute(context.Background(), RemoveWidgetInput{WidgetID: "w-stats"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.removeCalls != 1 {
		t.Fatalf("expected remove call")
	}
}

func TestMoveWidgetCommandParsesDirection(t *testing.T) {
	service := &stubService{}
	cmd := NewMoveWidgetCommand(service, nil)
	if err := cmd.Execute(context.Background(), MoveWidgetInput{WidgetID: "w-stats", Direction: "left"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.moveCalls != 1 || service.lastDir != dashboard.DirectionBefore {
		t.Fatalf("expected move before, got %v calls=%d", service.lastDir, service.moveCalls)
	}
	if err := cmd.Execute(context.Background(), MoveWidgetInput{WidgetID: "w-stats", Direction: "sideways"}); err == nil {
		t.Fatalf("expected direction error")
	}
	if service.moveCalls != 1 {
		t.Fatalf("invalid direction must not reach the service")
	}
}

func TestResetLayoutCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewResetLayoutCommand(service, nil)
	if err := cmd.Execute(context.Background(), ResetLayoutInput{}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.resetCalls != 1 {
		t.Fatalf("expected reset call")
	}
}

func TestRefreshWidgetCommandWaits(t *testing.T) {
	done := make(chan struct{})
	service := &stubService{done: done}
	cmd := NewRefreshWidgetCommand(service, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := cmd.Execute(ctx, RefreshWidgetInput{WidgetID: "w-ai", Wait: true}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error while fetch is pending, got %v", err)
	}

	close(done)
	if err := cmd.Execute(context.Background(), RefreshWidgetInput{WidgetID: "w-ai", Wait: true}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if err := cmd.Execute(context.Background(), RefreshWidgetInput{WidgetID: "w-ai"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.refreshCalls != 3 {
		t.Fatalf("expected 3 refresh calls, got %d", service.refreshCalls)
	}
}

func TestRefreshWidgetCommandPropagatesServiceErrors(t *testing.T) {
	service := &stubService{refreshErr: dashboard.ErrWidgetInert}
	telemetry := &stubTelemetry{}
	cmd := NewRefreshWidgetCommand(service, telemetry)
	err := cmd.Execute(context.Background(), RefreshWidgetInput{WidgetID: "w-ai"})
	if !errors.Is(err, dashboard.ErrWidgetInert) {
		t.Fatalf("expected inert error, got %v", err)
	}
	if telemetry.calls != 1 || telemetry.events[0] != eventCommandRejected {
		t.Fatalf("expected rejection telemetry, got %v", telemetry.events)
	}
}

func TestToggleEditCommandAgainstService(t *testing.T) {
	ctx := context.Background()
	service := dashboard.NewService(dashboard.Options{})
	service.Start(ctx)
	defer service.Close()

	toggle := NewToggleEditCommand(service)
	editing := true
	if err := toggle.Execute(ctx, ToggleEditInput{Editing: &editing}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if err := toggle.Execute(ctx, ToggleEditInput{Editing: &editing}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !service.Session().Editing() {
		t.Fatalf("expected editing mode after idempotent toggles")
	}

	remove := NewRemoveWidgetCommand(service, nil)
	if err := remove.Execute(ctx, RemoveWidgetInput{WidgetID: "w-timer"}); err != nil {
		t.Fatalf("remove returned error: %v", err)
	}
	want := []string{"w-ai", "w-stats", "w-activity", "w-saved"}
	if got := service.Layout().Sequence(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if err := toggle.Execute(ctx, ToggleEditInput{}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	err := remove.Execute(ctx, RemoveWidgetInput{WidgetID: "w-ai"})
	if !errors.Is(err, dashboard.ErrNotEditing) {
		t.Fatalf("expected ErrNotEditing while browsing, got %v", err)
	}
}

func TestCommandsRecordEachEventOnce(t *testing.T) {
	ctx := context.Background()
	telemetry := &stubTelemetry{}
	service := dashboard.NewService(dashboard.Options{Telemetry: telemetry})
	service.Start(ctx)
	defer service.Close()

	editing := true
	if err := NewToggleEditCommand(service).Execute(ctx, ToggleEditInput{Editing: &editing}); err != nil {
		t.Fatalf("toggle returned error: %v", err)
	}
	if err := NewRemoveWidgetCommand(service, telemetry).Execute(ctx, RemoveWidgetInput{WidgetID: "w-timer"}); err != nil {
		t.Fatalf("remove returned error: %v", err)
	}
	if err := NewMoveWidgetCommand(service, telemetry).Execute(ctx, MoveWidgetInput{WidgetID: "w-ai", Direction: "after"}); err != nil {
		t.Fatalf("move returned error: %v", err)
	}

	counts := map[string]int{}
	for _, event := range telemetry.events {
		counts[event]++
	}
	for _, event := range []string{"dashboard.mode.toggle", "dashboard.layout.remove", "dashboard.layout.move"} {
		if counts[event] != 1 {
			t.Fatalf("expected %s recorded once, got %d (%v)", event, counts[event], telemetry.events)
		}
	}
	if counts[eventCommandRejected] != 0 {
		t.Fatalf("unexpected rejection events: %v", telemetry.events)
	}

	err := NewRefreshWidgetCommand(service, telemetry).Execute(ctx, RefreshWidgetInput{WidgetID: "w-ai"})
	if !errors.Is(err, dashboard.ErrWidgetInert) {
		t.Fatalf("expected inert error while editing, got %v", err)
	}
	if counts := countOf(telemetry.events, eventCommandRejected); counts != 1 {
		t.Fatalf("expected one rejection, got %d", counts)
	}
	if countOf(telemetry.events, "dashboard.widget.refresh") != 0 {
		t.Fatalf("rejected refresh must not be recorded as a refresh")
	}
}

func countOf(events []string, name string) int {
	n := 0
	for _, event := range events {
		if event == name {
			n++
		}
	}
	return n
}
