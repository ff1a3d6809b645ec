package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-pharmadash/components/dashboard"
)

type scaffoldCmd struct {
	Code            string   `required:"" help:"Widget code, <namespace>.widget.<name> (e.g. acme.widget.cold_chain)."`
	Name            string   `required:"" help:"Display name for the widget."`
	Description     string   `required:"" help:"One-line description used in manifests."`
	Category        string   `default:"pharmacy" help:"Widget category (stats, alerts, pharmacy, ...)."`
	ManifestPath    string   `name:"manifest" default:"docs/manifests/pharmacy.yaml" type:"path" help:"Manifest YAML/JSON file to update."`
	SchemaPath      string   `name:"schema" type:"path" help:"JSON or YAML schema for the widget configuration."`
	Tag             []string `help:"Tags recorded in the manifest (repeatable)."`
	Maintainer      []string `help:"Maintainers recorded in the manifest (repeatable)."`
	Capabilities    []string `help:"Provider capability labels (html,json,sse,...)."`
	DocsURL         string   `help:"Link to provider documentation."`
	Channel         string   `help:"Distribution channel label (community, partner, internal)."`
	ProviderPackage string   `default:"github.com/goliatone/go-pharmadash/components/dashboard" help:"Go package where the provider factory lives."`
	ProviderOut     string   `help:"Provider stub path (defaults to components/dashboard/provider_<name>.go)."`
	Overwrite       bool     `help:"Replace an existing manifest entry and provider stub."`
	SkipProvider    bool     `name:"skip-provider" help:"Only update the manifest."`
}

func (cmd *scaffoldCmd) Run(out io.Writer) error {
	if !dashboard.ValidWidgetCode(cmd.Code) {
		return fmt.Errorf("widgetctl: widget code %q must look like <namespace>.widget.<name>", cmd.Code)
	}
	schema, err := loadSchema(cmd.SchemaPath)
	if err != nil {
		return err
	}
	doc, err := loadOrInitManifest(cmd.ManifestPath)
	if err != nil {
		return err
	}

	widgetName := cmd.Code[strings.LastIndex(cmd.Code, ".")+1:]
	providerType := strcase.ToGoPascal(widgetName) + "Provider"
	entry := dashboard.ManifestWidget{
		Definition: dashboard.WidgetDefinition{
			Code:        cmd.Code,
			Name:        cmd.Name,
			Description: cmd.Description,
			Category:    cmd.Category,
			Schema:      schema,
		},
		Provider: dashboard.ManifestProvider{
			Name:         cmd.Name + " Provider",
			Summary:      cmd.Description,
			Entry:        cmd.ProviderPackage + ".New" + providerType,
			Package:      cmd.ProviderPackage,
			DocsURL:      cmd.DocsURL,
			Capabilities: cmd.Capabilities,
			Channel:      cmd.Channel,
		},
		Maintainers: cmd.Maintainer,
		Tags:        cmd.Tag,
	}
	if err := upsertWidget(doc, entry, cmd.Overwrite); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("widgetctl: %w", err)
	}
	if err := writeManifest(cmd.ManifestPath, doc); err != nil {
		return err
	}

	if cmd.SkipProvider {
		fmt.Fprintf(out, "added %s to %s\n", cmd.Code, cmd.ManifestPath)
		return nil
	}
	stubPath := cmd.ProviderOut
	if stubPath == "" {
		stubPath = filepath.Join("components", "dashboard", "provider_"+widgetName+".go")
	}
	if err := writeProviderStub(stubPath, cmd.ProviderPackage, providerType, cmd.Code, cmd.Overwrite); err != nil {
		return err
	}
	fmt.Fprintf(out, "added %s to %s, provider stub at %s\n", cmd.Code, cmd.ManifestPath, stubPath)
	return nil
}

// upsertWidget keeps manifest entries sorted by code.
func upsertWidget(doc *dashboard.WidgetManifestDocument, entry dashboard.ManifestWidget, overwrite bool) error {
	idx := sort.Search(len(doc.Widgets), func(i int) bool {
		return doc.Widgets[i].Definition.Code >= entry.Definition.Code
	})
	if idx < len(doc.Widgets) && doc.Widgets[idx].Definition.Code == entry.Definition.Code {
		if !overwrite {
			return fmt.Errorf("widgetctl: manifest already defines %s (use --overwrite to replace it)", entry.Definition.Code)
		}
		doc.Widgets[idx] = entry
		return nil
	}
	doc.Widgets = append(doc.Widgets, dashboard.ManifestWidget{})
	copy(doc.Widgets[idx+1:], doc.Widgets[idx:])
	doc.Widgets[idx] = entry
	return nil
}

func loadSchema(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{"type": "object", "properties": map[string]any{}}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("widgetctl: read schema: %w", err)
	}
	var schema map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &schema)
	default:
		err = json.Unmarshal(data, &schema)
	}
	if err != nil {
		return nil, fmt.Errorf("widgetctl: parse schema %s: %w", path, err)
	}
	return schema, nil
}

func loadOrInitManifest(path string) (*dashboard.WidgetManifestDocument, error) {
	doc, err := dashboard.ReadManifest(path)
	if errors.Is(err, os.ErrNotExist) {
		return &dashboard.WidgetManifestDocument{Version: dashboard.ManifestVersion, Source: path}, nil
	}
	if err != nil {
		return nil, err
	}
	sort.SliceStable(doc.Widgets, func(i, j int) bool {
		return doc.Widgets[i].Definition.Code < doc.Widgets[j].Definition.Code
	})
	return doc, nil
}

func writeManifest(path string, doc *dashboard.WidgetManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("widgetctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("widgetctl: encode manifest: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("widgetctl: encode manifest: %w", err)
	}
	if err := os.WriteFile(path, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("widgetctl: write manifest: %w", err)
	}
	return nil
}

var providerStub = template.Must(template.New("provider").Parse(`package {{.Package}}

import "context"

// {{.Type}} feeds the {{.Code}} widget.
type {{.Type}} struct{}

// New{{.Type}} builds the provider registered for {{.Code}}.
func New{{.Type}}() Provider {
	return &{{.Type}}{}
}

// Fetch returns the widget payload for one viewer.
func (p *{{.Type}}) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	return WidgetData{"items": []any{}}, nil
}
`))

func writeProviderStub(path, pkgPath, providerType, code string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("widgetctl: provider stub %s already exists (use --overwrite or --provider-out)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("widgetctl: mkdir provider dir: %w", err)
	}
	var buf strings.Builder
	err := providerStub.Execute(&buf, map[string]string{
		"Package": pkgPath[strings.LastIndex(pkgPath, "/")+1:],
		"Type":    providerType,
		"Code":    code,
	})
	if err != nil {
		return fmt.Errorf("widgetctl: render provider stub: %w", err)
	}
	if err := os.WriteFile(path, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("widgetctl: write provider stub: %w", err)
	}
	return nil
}
