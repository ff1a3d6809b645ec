// Command widgetctl maintains the widget manifests loaded by pharmadash.
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
)

type cli struct {
	Scaffold scaffoldCmd `cmd:"" help:"Add a widget definition to a manifest and generate a provider stub."`
	Validate validateCmd `cmd:"" help:"Check manifest files or directories the way pharmadash loads them."`
	List     listCmd     `cmd:"" help:"Print the widgets declared in a manifest."`
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Name("widgetctl"),
		kong.Description("Widget manifest tooling for the pharmacy dashboard."),
		kong.UsageOnError(),
		kong.BindTo(io.Writer(os.Stdout), (*io.Writer)(nil)),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
