package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-homedash/components/dashboard"
	"github.com/goliatone/go-homedash/components/dashboard/httpapi"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `[storage]
driver = "file"
path = "` + filepath.ToSlash(filepath.Join(dir, "state")) + `"

[insight]
api_key_env = "HOMEDASH_TEST_NO_SUCH_KEY"

[log]
level = "error"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	var root cli
	parser, err := kong.New(&root, kong.BindTo(context.Background(), (*context.Context)(nil)))
	require.NoError(t, err)
	kctx, err := parser.Parse(append([]string{"--config", configPath, "--env-file", ""}, args...))
	require.NoError(t, err)
	var out, errOut bytes.Buffer
	err = kctx.Run(&root.globals, &runtime{out: &out, err: &errOut})
	return out.String(), err
}

func TestLayoutPrintsDefaultBoard(t *testing.T) {
	out, err := run(t, writeConfig(t), "layout")
	require.NoError(t, err)
	assert.Contains(t, out, "mode: browsing")
	assert.Contains(t, out, "1. w-ai")
	assert.Contains(t, out, "5. w-timer")
	assert.Contains(t, out, dashboard.MessageNotConfigured)
}

func TestMutationsPersistAcrossRuns(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "remove", "w-stats")
	require.NoError(t, err)
	assert.Equal(t, "w-ai w-activity w-saved w-timer\n", out)

	out, err = run(t, cfg, "move", "w-ai", "after")
	require.NoError(t, err)
	assert.Equal(t, "w-activity w-ai w-saved w-timer\n", out)

	out, err = run(t, cfg, "add", "w-stats")
	require.NoError(t, err)
	assert.Equal(t, "w-activity w-ai w-saved w-timer w-stats\n", out)

	out, err = run(t, cfg, "layout", "--json")
	require.NoError(t, err)
	var view dashboard.BoardView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, []string{"w-activity", "w-ai", "w-saved", "w-timer", "w-stats"}, view.Sequence)
	assert.False(t, view.Editing)

	out, err = run(t, cfg, "reset")
	require.NoError(t, err)
	assert.Equal(t, strings.Join(dashboard.DefaultLayout(), " ")+"\n", out)
}

func TestMutationErrorsSurface(t *testing.T) {
	cfg := writeConfig(t)
	_, err := run(t, cfg, "remove", "w-nope")
	assert.ErrorIs(t, err, dashboard.ErrUnknownWidget)

	_, err = run(t, cfg, "insight")
	require.Error(t, err)
	assert.Contains(t, err.Error(), dashboard.MessageNotConfigured)
}

func TestCatalogMarksBoardWidgets(t *testing.T) {
	cfg := writeConfig(t)
	_, err := run(t, cfg, "remove", "w-saved")
	require.NoError(t, err)

	out, err := run(t, cfg, "catalog", "--unused")
	require.NoError(t, err)
	assert.Contains(t, out, "w-saved")
	assert.NotContains(t, out, "w-ai")
}

func TestMuxServesBoardAndMutations(t *testing.T) {
	var root cli
	root.Config = writeConfig(t)
	ctx := context.Background()
	a, err := root.open(ctx, &runtime{out: &bytes.Buffer{}, err: &bytes.Buffer{}})
	require.NoError(t, err)
	defer a.Close()

	server := httptest.NewServer(newMux(a, httpapi.NewCommandExecutor(a.Service, nil)))
	defer server.Close()

	resp, err := http.Get(server.URL + "/dashboard/_board")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/dashboard/widgets/w-ai", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "removal requires edit mode")

	resp, err = http.Post(server.URL+"/dashboard/mode", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.NotContains(t, a.Service.Layout().Sequence(), "w-ai")
}
