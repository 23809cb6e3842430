// Command dikit inspects the registrations declared in a manifest file.
//
//	dikit -m handlers.yaml candidates 'IHandler[OrderCreated]'
//	dikit -m handlers.yaml fetch --all 'IHandler[OrderCreated]'
//	dikit -m handlers.yaml check
//	dikit -m handlers.yaml serve --addr :8080
//
// The manifest path can also be set with DIKIT_MANIFEST, including from a .env file
// in the working directory.
package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

type CLI struct {
	Globals

	Candidates CandidatesCmd `cmd:"" help:"Print the candidate sequence for a type."`
	Fetch      FetchCmd      `cmd:"" help:"Print the producer fetched for a type."`
	Check      CheckCmd      `cmd:"" help:"Run the checks declared in the manifest."`
	Serve      ServeCmd      `cmd:"" help:"Serve the diagnostics HTTP handler."`
	Version    VersionCmd    `cmd:"" help:"Print version information."`
}

func main() {
	// A missing .env file is fine
	_ = godotenv.Load()

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("dikit"),
		kong.Description("Inspect variance-aware registrations declared in a manifest."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
