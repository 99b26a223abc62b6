// Command server runs the openaccess inventory API and its maintenance
// commands.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Globals are the flags shared by every command
type Globals struct {
	Config string `short:"c" type:"path" help:"Path to the config file"`
	Tenant int64  `short:"t" help:"Tenant id, overriding tenant.default_id"`
}

// CLI is the root command structure
type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version information"`

	Serve    ServeCmd    `cmd:"" default:"1" help:"Run the HTTP API"`
	Import   ImportCmd   `cmd:"" help:"Replace a tenant's inventory from a YAML file"`
	Trace    TraceCmd    `cmd:"" help:"Print the signal path starting at a core"`
	Topology TopologyCmd `cmd:"" help:"Print the device topology"`
}

func main() {
	InitLogging()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("openaccess"),
		kong.Description("ISP inventory: device topology and fiber signal tracing"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	if err := kctx.Run(&cli.Globals); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
