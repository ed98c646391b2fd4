package main

import (
	"log/slog"
	"os"

	"git.home.luguber.info/inful/sitegen/cmd/sitegen/commands"
	"git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/version"
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for SITEGEN_* overrides; absence is fine.
	_ = godotenv.Load()

	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("sitegen"),
		kong.Description("Static site compiler with per-run timing, outcome, and diagnostic reporting"),
		kong.Vars{"version": version.Version},
	)

	err := ctx.Run(&commands.Global{Logger: slog.Default()}, cli)

	// Command output (diagnostics, stderr messages) is rendered by the
	// commands themselves; the adapter only maps the exit code. Interrupts
	// exit clean.
	adapter := errors.NewCLIErrorAdapter(cli.Verbose, nil)
	os.Exit(adapter.ExitCodeFor(err))
}
