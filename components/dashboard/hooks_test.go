package dashboard

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiHookJoinsErrors(t *testing.T) {
	first := &recordingHook{err: errors.New("first")}
	second := &recordingHook{}
	third := &recordingHook{err: errors.New("third")}
	hook := MultiHook{first, nil, second, third}

	err := hook.WidgetUpdated(context.Background(), WidgetEvent{Reason: "mode"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "third")
	assert.Equal(t, []string{"mode"}, second.reasons())
}

func TestLogHook(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	hook := LogHook{Logger: logger}

	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{Reason: ReasonRemove, WidgetID: "w-ai"}))
	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{Reason: "fetch", WidgetID: "w-ai", Fetch: &FetchView{Status: "loading"}}))

	out := buf.String()
	assert.Contains(t, out, "reason=remove")
	assert.Contains(t, out, "widget_id=w-ai")
	assert.NotContains(t, out, "status=loading")

	assert.NoError(t, LogHook{}.WidgetUpdated(context.Background(), WidgetEvent{Reason: "mode"}))
}

func TestBuildCatalog(t *testing.T) {
	reg, err := BuildCatalog("", filepath.Join("..", "..", "docs", "manifests", "focus.yaml"))
	require.NoError(t, err)
	def, ok := reg.Lookup("w-pomodoro-long")
	require.True(t, ok)
	assert.Equal(t, KindTimer, def.Kind)

	_, err = BuildCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
