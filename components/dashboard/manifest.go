package dashboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion is the manifest format version written by widgetctl.
	ManifestVersion = manifestVersionV1
)

// widget codes read "<namespace>.widget.<name>", e.g. pharmacy.widget.alerts.
var widgetCodePattern = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)*\.widget\.[a-z0-9_]+$`)

// ValidWidgetCode reports whether code is accepted in a manifest.
func ValidWidgetCode(code string) bool {
	return widgetCodePattern.MatchString(code)
}

// WidgetManifestDocument is a YAML or JSON file describing widgets shipped
// outside the built-in pharmacy set.
type WidgetManifestDocument struct {
	Version  string           `json:"version" yaml:"version"`
	Name     string           `json:"name,omitempty" yaml:"name,omitempty"`
	Package  string           `json:"package,omitempty" yaml:"package,omitempty"`
	Homepage string           `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	Widgets  []ManifestWidget `json:"widgets" yaml:"widgets"`
	Source   string           `json:"-" yaml:"-"`
}

// ManifestWidget is one widget entry.
type ManifestWidget struct {
	Definition  WidgetDefinition `json:"definition" yaml:"definition"`
	Provider    ManifestProvider `json:"provider,omitempty" yaml:"provider,omitempty"`
	Maintainers []string         `json:"maintainers,omitempty" yaml:"maintainers,omitempty"`
	Tags        []string         `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// ManifestProvider records where a widget's provider lives.
type ManifestProvider struct {
	Name         string   `json:"name,omitempty" yaml:"name,omitempty"`
	Summary      string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Entry        string   `json:"entry,omitempty" yaml:"entry,omitempty"`
	Package      string   `json:"package,omitempty" yaml:"package,omitempty"`
	DocsURL      string   `json:"docs_url,omitempty" yaml:"docs_url,omitempty"`
	Capabilities []string `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	Channel      string   `json:"channel,omitempty" yaml:"channel,omitempty"`
}

func (p ManifestProvider) isZero() bool {
	return p.Name == "" && p.Summary == "" && p.Entry == "" && p.Package == "" &&
		p.DocsURL == "" && len(p.Capabilities) == 0 && p.Channel == ""
}

// LoadManifestFile reads, validates and registers the manifest at path.
func (r *Registry) LoadManifestFile(path string) (*WidgetManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDir registers every .yaml, .yml and .json manifest in dir in
// name order. A widget code defined by two files is an error.
func (r *Registry) LoadManifestDir(dir string) ([]*WidgetManifestDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("dashboard: read manifest dir %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	seen := map[string]string{}
	docs := make([]*WidgetManifestDocument, 0, len(paths))
	for _, path := range paths {
		doc, err := ReadManifest(path)
		if err != nil {
			return nil, err
		}
		for _, widget := range doc.Widgets {
			if prev, ok := seen[widget.Definition.Code]; ok {
				return nil, fmt.Errorf("dashboard: widget %s defined in %s and %s", widget.Definition.Code, prev, path)
			}
			seen[widget.Definition.Code] = path
		}
		docs = append(docs, doc)
	}
	for _, doc := range docs {
		if err := r.LoadManifestDocument(doc); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// LoadManifestDocument registers definitions and provider metadata.
func (r *Registry) LoadManifestDocument(doc *WidgetManifestDocument) error {
	if doc == nil {
		return errors.New("dashboard: manifest document is nil")
	}
	for _, widget := range doc.Widgets {
		if err := r.RegisterDefinition(widget.Definition); err != nil {
			return fmt.Errorf("dashboard: register widget %s from %s: %w", widget.Definition.Code, doc.Source, err)
		}
		r.recordProviderMetadata(widget.Definition.Code, widget.Provider)
		if err := r.bindChartProvider(widget.Definition.Code, widget.Provider); err != nil {
			return fmt.Errorf("dashboard: widget %s from %s: %w", widget.Definition.Code, doc.Source, err)
		}
	}
	return nil
}

// bindChartProvider gives config-drawn chart widgets a provider unless one is
// already bound.
func (r *Registry) bindChartProvider(code string, meta ManifestProvider) error {
	kind, ok := chartKindFor(meta)
	if !ok {
		return nil
	}
	if kind != ChartLine && kind != ChartBar {
		return fmt.Errorf("unsupported chart capability %q", chartCapabilityPrefix+kind)
	}
	if _, bound := r.Provider(code); bound {
		return nil
	}
	return r.RegisterProvider(code, NewChartProvider(NewChartRenderer(kind)))
}

// ReadManifest decodes and validates a manifest file without registering it.
func ReadManifest(path string) (*WidgetManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from r. Unknown fields are rejected. JSON
// manifests decode too, JSON being a subset of YAML.
func DecodeManifest(r io.Reader) (*WidgetManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc WidgetManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate reports every problem in the manifest: version, code format,
// missing names, duplicate codes and schemas that do not compile.
func (doc *WidgetManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	schemas := NewJSONSchemaValidator()
	seen := make(map[string]struct{}, len(doc.Widgets))
	var errs error
	for idx, widget := range doc.Widgets {
		code := widget.Definition.Code
		switch {
		case code == "":
			errs = errors.Join(errs, fmt.Errorf("dashboard: manifest widget %d is missing definition.code", idx))
			continue
		case !widgetCodePattern.MatchString(code):
			errs = errors.Join(errs, fmt.Errorf("dashboard: manifest widget code %q must look like <namespace>.widget.<name>", code))
		}
		if widget.Definition.Name == "" {
			errs = errors.Join(errs, fmt.Errorf("dashboard: manifest widget %s is missing definition.name", code))
		}
		if _, dup := seen[code]; dup {
			errs = errors.Join(errs, fmt.Errorf("dashboard: manifest duplicates widget code %s", code))
		}
		seen[code] = struct{}{}
		if err := schemas.CheckSchema(widget.Definition); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}
