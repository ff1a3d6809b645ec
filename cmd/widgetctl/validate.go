package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goliatone/go-pharmadash/components/dashboard"
)

type validateCmd struct {
	Paths []string `arg:"" help:"Manifest files or directories."`
}

// Run loads every path into one registry so duplicate codes across
// arguments are reported as well.
func (cmd *validateCmd) Run(out io.Writer) error {
	registry := dashboard.NewRegistry()
	seen := map[string]string{}
	widgets := 0
	for _, path := range cmd.Paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("widgetctl: %w", err)
		}
		var docs []*dashboard.WidgetManifestDocument
		if info.IsDir() {
			docs, err = registry.LoadManifestDir(path)
		} else {
			var doc *dashboard.WidgetManifestDocument
			doc, err = registry.LoadManifestFile(path)
			docs = append(docs, doc)
		}
		if err != nil {
			return fmt.Errorf("widgetctl: %s: %w", path, err)
		}
		for _, doc := range docs {
			for _, widget := range doc.Widgets {
				code := widget.Definition.Code
				if prev, ok := seen[code]; ok {
					return fmt.Errorf("widgetctl: widget %s defined in %s and %s", code, prev, doc.Source)
				}
				seen[code] = doc.Source
			}
			widgets += len(doc.Widgets)
		}
	}
	fmt.Fprintf(out, "ok: %d widgets in %d paths\n", widgets, len(cmd.Paths))
	return nil
}

type listCmd struct {
	Path string `arg:"" type:"existingfile" help:"Manifest file."`
}

func (cmd *listCmd) Run(out io.Writer) error {
	doc, err := dashboard.ReadManifest(cmd.Path)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tCATEGORY\tTAGS")
	for _, widget := range doc.Widgets {
		def := widget.Definition
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", def.Code, def.Name, def.Category, strings.Join(widget.Tags, ","))
	}
	return tw.Flush()
}
