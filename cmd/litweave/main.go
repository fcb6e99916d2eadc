package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/litweave/cmd/litweave/commands"
	"git.home.luguber.info/inful/litweave/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("litweave"),
		kong.Description("Render literate documents (Markdown prose + code chunks) to HTML."),
		kong.Vars{"version": version.Version},
	)
	// AfterApply has installed the default logger by now.
	err := ctx.Run(&commands.Global{Logger: slog.Default()}, &cli)
	ctx.FatalIfErrorf(err)
}
