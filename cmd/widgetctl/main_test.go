package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-homedash/components/dashboard"
)

func TestScaffoldWritesManifestAndStub(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "widgets", "manifest.yaml")
	stub := filepath.Join(dir, "weather_provider.go")
	cmd := &scaffoldCmd{
		Title:        "Local Weather",
		Kind:         "weather",
		Span:         1,
		Description:  "Forecast for today",
		Locale:       map[string]string{"es": "Tiempo local"},
		ManifestPath: manifest,
		Tag:          []string{"outdoors"},
		ProviderOut:  stub,
	}

	var out bytes.Buffer
	require.NoError(t, cmd.Run(context.Background(), &out))
	assert.Contains(t, out.String(), "w-local-weather")
	assert.Contains(t, out.String(), "no built-in renderer")

	doc, err := dashboard.ReadManifest(manifest)
	require.NoError(t, err)
	require.Len(t, doc.Widgets, 1)
	def := doc.Widgets[0].Definition
	assert.Equal(t, "w-local-weather", def.ID)
	assert.Equal(t, dashboard.WidgetKind("weather"), def.Kind)
	assert.Equal(t, "Tiempo local", def.TitleForLocale("es"))
	assert.Equal(t, "renderLocalWeather", doc.Widgets[0].Provider.Entry)

	source, err := os.ReadFile(stub)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(source), "func renderLocalWeather(ctx context.Context, meta WidgetContext) (WidgetData, error)"))

	catalog, err := dashboard.BuildCatalog(manifest)
	require.NoError(t, err)
	_, ok := catalog.Lookup("w-local-weather")
	assert.True(t, ok)
}

func TestScaffoldRejectsDuplicatesWithoutOverwrite(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "manifest.yaml")
	cmd := &scaffoldCmd{Title: "Quotes", ID: "w-quotes", Kind: "stats", Span: 2, ManifestPath: manifest, SkipProvider: true}
	require.NoError(t, cmd.Run(context.Background(), &bytes.Buffer{}))

	err := cmd.Run(context.Background(), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already defines widget w-quotes")

	cmd.Overwrite = true
	cmd.Span = 1
	require.NoError(t, cmd.Run(context.Background(), &bytes.Buffer{}))
	doc, err := dashboard.ReadManifest(manifest)
	require.NoError(t, err)
	require.Len(t, doc.Widgets, 1)
	assert.Equal(t, 1, doc.Widgets[0].Definition.Span)
}

func TestScaffoldRejectsInvalidDefinitions(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "manifest.yaml")

	bad := &scaffoldCmd{Title: "Wide", Kind: "stats", Span: 3, ManifestPath: manifest, SkipProvider: true}
	assert.Error(t, bad.Run(context.Background(), &bytes.Buffer{}))

	builtin := &scaffoldCmd{Title: "Stats", ID: "w-stats", Kind: "stats", Span: 1, ManifestPath: manifest, SkipProvider: true}
	err := builtin.Run(context.Background(), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "built-in")

	_, statErr := os.Stat(manifest)
	assert.True(t, os.IsNotExist(statErr), "failed scaffolds leave no manifest behind")
}

func TestListIncludesBuiltInsAndManifests(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "manifest.yaml")
	scaffold := &scaffoldCmd{Title: "Quotes", Kind: "stats", Span: 1, ManifestPath: manifest, SkipProvider: true}
	require.NoError(t, scaffold.Run(context.Background(), &bytes.Buffer{}))

	var out bytes.Buffer
	list := &listCmd{Manifest: []string{manifest}, Locale: "es"}
	require.NoError(t, list.Run(context.Background(), &out))
	assert.Contains(t, out.String(), "w-ai")
	assert.Contains(t, out.String(), "Resumen inteligente")
	assert.Contains(t, out.String(), "w-quotes")

	out.Reset()
	validate := &validateCmd{Paths: []string{manifest}}
	require.NoError(t, validate.Run(context.Background(), &out))
	assert.Contains(t, out.String(), "1 manifest(s) valid")
}

func TestRenderFuncName(t *testing.T) {
	assert.Equal(t, "renderFocusTimer", renderFuncName("focus timer"))
	assert.Equal(t, "w-focus-timer", (&scaffoldCmd{Title: "Focus Timer"}).widgetID())
	assert.Equal(t, "w-custom", (&scaffoldCmd{Title: "Focus Timer", ID: " w-custom "}).widgetID())
}
