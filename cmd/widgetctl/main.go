package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"

	"github.com/goliatone/go-homedash/components/dashboard"
)

type cli struct {
	Scaffold scaffoldCmd `cmd:"" help:"Add a widget definition to a manifest and generate a provider stub."`
	Validate validateCmd `cmd:"" help:"Validate manifests against the built-in catalog."`
	List     listCmd     `cmd:"" help:"List catalog entries, including manifests."`
}

type scaffoldCmd struct {
	Title        string            `required:"" help:"Display title for the widget."`
	ID           string            `help:"Widget identifier (defaults to w-<kebab title>)."`
	Kind         string            `required:"" help:"Content kind rendered by the widget (insight, activity-feed, saved-items, stats, timer or a custom kind)."`
	Span         int               `default:"1" help:"Grid columns the widget occupies (1 or 2)."`
	Description  string            `help:"One-line description used in manifests."`
	Locale       map[string]string `help:"Localized titles, e.g. --locale es=Resumen."`
	ManifestPath string            `required:"" name:"manifest" type:"path" help:"Path to the manifest YAML file to update."`
	Tag          []string          `help:"Optional tags to include in the manifest."`
	Maintainer   []string          `help:"Maintainers to record in the manifest."`
	ProviderOut  string            `help:"File path for the generated provider stub (defaults to components/dashboard/<id>_provider.go)."`
	Overwrite    bool              `help:"Replace an existing manifest entry / provider stub."`
	SkipProvider bool              `name:"skip-provider" help:"Skip provider stub generation."`
}

type validateCmd struct {
	Paths []string `arg:"" type:"existingfile" help:"Manifest files to validate."`
}

type listCmd struct {
	Manifest []string `type:"existingfile" help:"Additional manifests to load."`
	Locale   string   `help:"Locale used to resolve titles."`
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Description("Widget catalog tooling for homedash manifests."),
		kong.UsageOnError(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
		kong.BindTo(io.Writer(os.Stdout), (*io.Writer)(nil)),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

func (cmd *scaffoldCmd) Run(_ context.Context, out io.Writer) error {
	id := cmd.widgetID()
	def := dashboard.WidgetDefinition{
		ID:             id,
		Kind:           dashboard.WidgetKind(cmd.Kind),
		Title:          cmd.Title,
		TitleLocalized: cmd.Locale,
		Description:    cmd.Description,
		Span:           cmd.Span,
	}
	if err := dashboard.NewEmptyRegistry().RegisterDefinition(def); err != nil {
		return fmt.Errorf("widgetctl: %w", err)
	}
	if _, ok := dashboard.NewRegistry().Lookup(id); ok {
		return fmt.Errorf("widgetctl: %s collides with a built-in widget", id)
	}

	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("widgetctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}

	renderer := renderFuncName(cmd.Title)
	entry := dashboard.ManifestWidget{
		Definition: def,
		Provider: dashboard.ManifestProvider{
			Name:    cmd.Title,
			Summary: cmd.Description,
			Entry:   renderer,
		},
		Maintainers: cmd.Maintainer,
		Tags:        cmd.Tag,
	}
	if err := upsert(doc, entry, cmd.Overwrite); err != nil {
		return err
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}

	if !slices.Contains(dashboard.KnownKinds(), def.Kind) {
		fmt.Fprintf(out, "! kind %q has no built-in renderer; register a provider for it\n", def.Kind)
	}
	if cmd.SkipProvider {
		fmt.Fprintf(out, "✓ Added %s to %s\n", id, manifestPath)
		return nil
	}
	providerPath := cmd.ProviderOut
	if providerPath == "" {
		providerPath = filepath.Join("components", "dashboard", fmt.Sprintf("%s_provider.go", strcase.ToSnake(id)))
	}
	if err := writeProviderStub(providerPath, renderer, def, cmd.Overwrite); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Added %s to %s and generated %s\n", id, manifestPath, providerPath)
	return nil
}

func (cmd *scaffoldCmd) widgetID() string {
	if id := strings.TrimSpace(cmd.ID); id != "" {
		return id
	}
	return "w-" + strcase.ToKebab(cmd.Title)
}

func (cmd *validateCmd) Run(_ context.Context, out io.Writer) error {
	_, err := dashboard.BuildCatalog(cmd.Paths...)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ %d manifest(s) valid\n", len(cmd.Paths))
	return nil
}

func (cmd *listCmd) Run(_ context.Context, out io.Writer) error {
	catalog, err := dashboard.BuildCatalog(cmd.Manifest...)
	if err != nil {
		return err
	}
	for _, def := range catalog.Definitions() {
		fmt.Fprintf(out, "%-18s %-14s span=%d  %s\n", def.ID, def.Kind, def.Span, def.TitleForLocale(cmd.Locale))
	}
	return nil
}

func upsert(doc *dashboard.WidgetManifestDocument, entry dashboard.ManifestWidget, overwrite bool) error {
	idx := slices.IndexFunc(doc.Widgets, func(w dashboard.ManifestWidget) bool {
		return w.Definition.ID == entry.Definition.ID
	})
	switch {
	case idx >= 0 && !overwrite:
		return fmt.Errorf("widgetctl: manifest already defines widget %s (use --overwrite to replace)", entry.Definition.ID)
	case idx >= 0:
		doc.Widgets[idx] = entry
	default:
		doc.Widgets = append(doc.Widgets, entry)
	}
	sort.SliceStable(doc.Widgets, func(i, j int) bool {
		return doc.Widgets[i].Definition.ID < doc.Widgets[j].Definition.ID
	})
	return doc.Validate()
}

func loadOrInitManifest(path string) (*dashboard.WidgetManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dashboard.WidgetManifestDocument{
				Version: dashboard.ManifestVersion,
				Widgets: []dashboard.ManifestWidget{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("widgetctl: stat manifest: %w", err)
	}
	return dashboard.ReadManifest(path)
}

func writeManifest(path string, doc *dashboard.WidgetManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("widgetctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("widgetctl: create manifest %s: %w", path, err)
	}
	defer file.Close()
	if err := dashboard.EncodeManifest(file, doc); err != nil {
		return fmt.Errorf("widgetctl: write manifest: %w", err)
	}
	return nil
}

func writeProviderStub(path, funcName string, def dashboard.WidgetDefinition, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("widgetctl: provider stub %s already exists (use --overwrite or --provider-out)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("widgetctl: mkdir provider dir: %w", err)
	}
	content := fmt.Sprintf(`package dashboard

import (
	"context"
)

// %s renders %s (%s) widgets. Register it with
// Dispatch.Register(%q, ProviderFunc(%s)).
func %s(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	return WidgetData{
		"message": "replace with real data",
	}, nil
}
`, funcName, def.ID, def.Kind, def.Kind, funcName, funcName)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("widgetctl: write provider stub: %w", err)
	}
	return nil
}

func renderFuncName(title string) string {
	return "render" + strcase.ToPascal(title)
}
