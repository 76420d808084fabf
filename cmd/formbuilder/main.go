// Command formbuilder serves the form builder over HTTP and offers
// command-line access to the template store.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
)

var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Config   string           `short:"c" type:"path" help:"TOML config file (default: ./formbuilder.toml when present)."`
	EnvFile  []string         `name:"env-file" type:"path" help:"dotenv files read before the process environment."`
	LogLevel string           `name:"log-level" help:"Log level (debug, info, warn, error)."`
	Seed     string           `short:"s" type:"path" help:"JSON or YAML template document loaded into the store."`
	Enforce  bool             `help:"Reject invalid templates and submissions instead of logging them."`
	Version  kong.VersionFlag `help:"Print the version and exit."`
}

// CLI is the command tree.
type CLI struct {
	Globals

	Serve  ServeCmd  `cmd:"" default:"1" help:"Serve the builder, catalog and filler pages."`
	List   ListCmd   `cmd:"" help:"List stored templates."`
	Lint   LintCmd   `cmd:"" help:"Check templates for structural problems."`
	Schema SchemaCmd `cmd:"" help:"Print the submission schema of a template."`
	Render RenderCmd `cmd:"" help:"Render a template with a registered renderer."`
	Fill   FillCmd   `cmd:"" help:"Fill out a template in the terminal."`
	Export ExportCmd `cmd:"" help:"Write every stored template as JSON or YAML."`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

// run parses args, builds the runtime and executes the selected command.
func run(args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("formbuilder"),
		kong.Description("Build form templates, fill them out and collect submissions."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Vars{"version": version},
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	rt, err := newRuntime(cli.Globals, stdout, stderr)
	if err != nil {
		return err
	}
	return ctx.Run(rt)
}
