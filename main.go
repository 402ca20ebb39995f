package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/mcncl/pytyper/internal/batch"
	"github.com/mcncl/pytyper/internal/cache"
	"github.com/mcncl/pytyper/internal/config"
	"github.com/mcncl/pytyper/internal/converter"
	"github.com/mcncl/pytyper/internal/errors"
	"github.com/mcncl/pytyper/internal/formatter"
	"github.com/mcncl/pytyper/internal/generator"
	"github.com/mcncl/pytyper/internal/logging"
	"github.com/mcncl/pytyper/internal/mcp"
	"github.com/mcncl/pytyper/internal/parser"
)

// Version information
const (
	Version = "0.1.0"
)

// CLI defines the command-line interface
type CLI struct {
	Config  string           `help:"Path to config file. Defaults to the nearest .pytyper.yml." short:"c" type:"path"`
	Debug   bool             `help:"Enable debug logging." short:"d"`
	Version kong.VersionFlag `help:"Show version information." short:"v"`

	Convert      ConvertCmd      `cmd:"" default:"withargs" help:"Convert one JSON document to Pydantic models."`
	Batch        BatchCmd        `cmd:"" help:"Convert many JSON files in parallel."`
	MCP          MCPCmd          `cmd:"" name:"mcp" help:"Serve the converter as an MCP tool over stdio."`
	ConfigSchema ConfigSchemaCmd `cmd:"" name:"config-schema" help:"Print the JSON Schema of the config file."`
}

// Context holds the runtime context shared by all commands
type Context struct {
	Ctx    context.Context
	Debug  bool
	Config *config.Config

	Stdin           io.Reader
	StdinIsTerminal bool
	Stdout          io.Writer
	Stderr          io.Writer
}

// ConvertCmd converts one document from a file or stdin.
type ConvertCmd struct {
	Input       string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to output Python file. If not specified, writes to stdout." short:"o" type:"path"`
	Style       string `help:"Output style: verbose or terse." short:"s"`
	Format      bool   `help:"Tidy the output and add the configured file header." short:"f" default:"true" negatable:""`
	Repair      bool   `help:"Try to repair malformed JSON before failing."`
	Select      string `help:"jq path expression selecting the part of the document to convert, e.g. '.data[0]'."`
	Interactive bool   `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// BatchCmd converts many files.
type BatchCmd struct {
	Files   []string `arg:"" name:"file" help:"JSON files to convert." type:"existingfile"`
	OutDir  string   `help:"Directory for generated files. Defaults to each input's directory." short:"O" type:"path"`
	Workers int      `help:"Files converted in parallel. Defaults to batch.workers." short:"w"`
	Style   string   `help:"Output style: verbose or terse." short:"s"`
}

// MCPCmd serves the conversion tool.
type MCPCmd struct{}

// ConfigSchemaCmd prints the config schema.
type ConfigSchemaCmd struct{}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var cli CLI
	app, err := kong.New(&cli,
		kong.Name("pytyper"),
		kong.Description("A tool to convert JSON to Pydantic models"),
		kong.Vars{"version": "pytyper version " + Version},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}

	kctx, err := app.Parse(args)
	if err != nil {
		app.Errorf("%s", err)
		fmt.Fprintf(os.Stderr, "\nFor help, run: pytyper --help\n")
		return 1
	}

	// No arguments at all means the user wants to paste JSON
	if len(args) == 0 {
		cli.Convert.Interactive = true
	}

	if err := config.LoadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		return 1
	}

	configPath := cli.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.LoadConfigWithCLI(configPath, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		return 1
	}

	cleanup, err := logging.Setup(cfg.Log, cli.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %s\n", err)
		return 1
	}
	defer func() { _ = cleanup() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = kctx.Run(&Context{
		Ctx:             ctx,
		Debug:           cli.Debug,
		Config:          cfg,
		Stdin:           os.Stdin,
		StdinIsTerminal: stdinIsTerminal(),
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
	})
	if err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: pytyper --help\n")
		return 1
	}
	return 0
}

func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// Run converts one document.
func (c *ConvertCmd) Run(ctx *Context) error {
	cfg := *ctx.Config
	if c.Style != "" {
		cfg.Style = c.Style
	}
	if c.Repair {
		cfg.Input.Repair = true
	}
	if c.Select != "" {
		cfg.Input.Select = c.Select
	}

	conv, err := converter.New(&cfg)
	if err != nil {
		return err
	}
	style, err := generator.ParseStyle(cfg.Style)
	if err != nil {
		return errors.NewConfigError("invalid style", err)
	}

	data, err := c.readInput(ctx)
	if err != nil {
		return err
	}

	code, err := conv.ConvertBytes(data, style)
	if err != nil {
		return err
	}

	if c.Format {
		code = formatter.NewFormatterWithHeader(cfg.Output.FileHeader).Format(code)
	}

	return c.writeOutput(ctx, code)
}

// readInput reads JSON from file, piped stdin or an interactive paste
func (c *ConvertCmd) readInput(ctx *Context) ([]byte, error) {
	if c.Input != "" {
		return parser.ReadFile(c.Input)
	}

	if ctx.StdinIsTerminal {
		if c.Interactive {
			return readInteractiveInput(ctx)
		}
		return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	data, err := io.ReadAll(ctx.Stdin)
	if err != nil {
		return nil, errors.NewInputError("failed to read from stdin", err)
	}
	return data, nil
}

// writeOutput writes code to file or stdout
func (c *ConvertCmd) writeOutput(ctx *Context, code string) error {
	if c.Output != "" {
		if err := os.WriteFile(c.Output, []byte(code), 0644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", c.Output), err)
		}
		fmt.Fprintf(ctx.Stderr, "Generated Pydantic models written to %s\n", c.Output)
		return nil
	}

	if _, err := io.WriteString(ctx.Stdout, code); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput lets users paste JSON and signal completion with
// Ctrl+D (EOF)
func readInteractiveInput(ctx *Context) ([]byte, error) {
	fmt.Fprintln(ctx.Stderr, "PyTyper Interactive Mode")
	fmt.Fprintln(ctx.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	data, err := io.ReadAll(bufio.NewReader(ctx.Stdin))
	if err != nil {
		return nil, errors.NewInputError("error reading input", err)
	}

	fmt.Fprintln(ctx.Stderr, "\nProcessing JSON...")
	return data, nil
}

// Run converts every file, reporting each outcome on stderr.
func (c *BatchCmd) Run(ctx *Context) error {
	cfg := *ctx.Config
	if c.Style != "" {
		cfg.Style = c.Style
	}
	if c.Workers > 0 {
		cfg.Batch.Workers = c.Workers
	}

	conv, err := newCachedConverter(&cfg)
	if err != nil {
		return err
	}
	style, err := generator.ParseStyle(cfg.Style)
	if err != nil {
		return errors.NewConfigError("invalid style", err)
	}

	runner := batch.NewRunner(conv, formatter.NewFormatterWithHeader(cfg.Output.FileHeader), cfg.Batch.Workers)
	results, err := runner.Run(ctx.Ctx, batch.Jobs(c.Files, c.OutDir), style)
	if err != nil {
		return errors.NewOutputError("batch conversion interrupted", err)
	}

	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(ctx.Stderr, "FAIL %s: %s\n", res.Input, errors.UserFriendlyError(res.Err))
			continue
		}
		fmt.Fprintf(ctx.Stderr, "ok   %s -> %s\n", res.Input, res.Output)
	}

	if failed := batch.Failed(results); failed > 0 {
		return errors.NewOutputError(fmt.Sprintf("%d of %d files failed to convert", failed, len(results)), nil)
	}
	return nil
}

// Run serves MCP over stdio until the client disconnects.
func (c *MCPCmd) Run(ctx *Context) error {
	conv, err := newCachedConverter(ctx.Config)
	if err != nil {
		return err
	}
	srv, err := mcp.NewServer(conv, Version)
	if err != nil {
		return err
	}
	return srv.Run(ctx.Ctx)
}

// Run prints the schema.
func (c *ConfigSchemaCmd) Run(ctx *Context) error {
	data, err := config.SchemaJSON()
	if err != nil {
		return errors.NewOutputError("failed to render config schema", err)
	}
	_, err = fmt.Fprintln(ctx.Stdout, string(data))
	return err
}

func newCachedConverter(cfg *config.Config) (*converter.Converter, error) {
	results, err := cache.NewResultCache(cfg.Cache.MaxItems)
	if err != nil {
		return nil, errors.NewConfigError("failed to create result cache", err)
	}
	return converter.New(cfg, converter.WithCache(results))
}
