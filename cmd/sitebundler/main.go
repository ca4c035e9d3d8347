package main

import (
	"log/slog"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/sitebundler/cmd/sitebundler/commands"
	"git.home.luguber.info/inful/sitebundler/internal/errors"
	"git.home.luguber.info/inful/sitebundler/internal/version"
)

func main() {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("sitebundler"),
		kong.Description("Build a static site bundle with an application shell, content runtime, and content index"),
		kong.Vars{"version": version.Version},
		kong.UsageOnError(),
	)

	g := &commands.Global{Logger: slog.Default()}
	if err := ctx.Run(g, &cli); err != nil {
		adapter := errors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
		adapter.HandleError(err)
	}
}
