// Command doubledyn compiles double-dispatch specifications into Go.
//
//	//go:generate doubledyn shapes.dd
//
// writes shapes_dispatch.go next to shapes.dd.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/funvibe/doubledyn/internal/config"
	"github.com/funvibe/doubledyn/pkg/doubledyn"
)

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r) // Re-panic to get stack trace
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// cli holds the state of one invocation.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	color  bool

	output     string
	pkg        string
	configPath string
	verbose    bool
	verify     bool
}

// run executes the command line and returns the exit status:
// 0 success, 1 compile or verify failure, 2 usage error.
func run(args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr, color: colorEnabled(stderr)}

	if len(args) > 0 {
		switch args[0] {
		case "version", "-version", "--version":
			return c.handleVersion()
		case "help", "-h", "-help", "--help":
			return c.handleHelp()
		case "check":
			return c.handleCheck(args[1:])
		}
	}
	return c.handleGenerate(args)
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() { fmt.Fprint(c.stderr, usage) }
	fs.StringVar(&c.output, "o", "", "output file (`-` for stdout); single input only")
	fs.StringVar(&c.pkg, "pkg", "", "package name of the generated file")
	fs.StringVar(&c.configPath, "config", "", "doubledyn.yaml to use instead of searching for one")
	fs.BoolVar(&c.verbose, "v", false, "print progress and the resolved model")
	fs.BoolVar(&c.verify, "verify", false, "fail if a generated file is out of date instead of writing it")
	return fs
}

func (c *cli) parse(name string, args []string) ([]string, bool) {
	fs := c.flags(name)
	if err := fs.Parse(args); err != nil {
		return nil, false
	}
	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprint(c.stderr, usage)
		return nil, false
	}
	if c.output != "" && len(files) > 1 {
		fmt.Fprintln(c.stderr, "Error: -o needs exactly one input file")
		return nil, false
	}
	return files, true
}

func (c *cli) handleVersion() int {
	fmt.Fprintln(c.stdout, "doubledyn "+config.Version)
	return 0
}

func (c *cli) handleHelp() int {
	fmt.Fprint(c.stdout, usage)
	return 0
}

// handleCheck validates specifications without writing anything.
func (c *cli) handleCheck(args []string) int {
	files, ok := c.parse("check", args)
	if !ok {
		return 2
	}

	status := 0
	for _, file := range files {
		cfg, err := c.loadConfig(file)
		if err != nil {
			c.report(err)
			status = 1
			continue
		}
		opts := doubledyn.OptionsFromConfig(cfg, c.pkg)
		opts.CheckOnly = true
		res, err := c.compile(file, opts)
		if err != nil {
			c.report(err)
			status = 1
			continue
		}
		c.logf("%s: ok", file)
		c.describe(res)
	}
	return status
}

func (c *cli) handleGenerate(args []string) int {
	files, ok := c.parse("doubledyn", args)
	if !ok {
		return 2
	}

	status := 0
	for _, file := range files {
		if err := c.generate(file); err != nil {
			c.report(err)
			status = 1
		}
	}
	return status
}

var errOutOfDate = errors.New("generated file is out of date; run go generate")

func (c *cli) generate(file string) error {
	cfg, err := c.loadConfig(file)
	if err != nil {
		return err
	}
	res, err := c.compile(file, doubledyn.OptionsFromConfig(cfg, c.pkg))
	if err != nil {
		return err
	}
	c.describe(res)

	out := c.output
	if out == "" {
		out = cfg.OutputPath(file)
	}

	if out == "-" {
		_, err := c.stdout.Write(res.Output)
		return err
	}

	if c.verify {
		current, err := os.ReadFile(out)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", out, err)
		}
		if !bytes.Equal(current, res.Output) {
			return fmt.Errorf("%s: %w", out, errOutOfDate)
		}
		c.logf("%s is up to date", out)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(out, res.Output, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	c.logf("wrote %s", out)
	return nil
}

func (c *cli) compile(file string, opts doubledyn.Options) (*doubledyn.Result, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	if filepath.Ext(file) != config.SourceFileExt {
		c.logf("warning: %s does not have the %s extension", file, config.SourceFileExt)
	}
	c.logf("compiling %s (package %q)", file, opts.Package)
	return doubledyn.Compile(file, src, opts)
}

// loadConfig returns the -config file or the nearest doubledyn.yaml above
// the specification.
func (c *cli) loadConfig(file string) (*config.Config, error) {
	if c.configPath != "" {
		return config.LoadConfig(c.configPath)
	}
	cfg, err := config.Discover(filepath.Dir(file))
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.logf("using %s", cfg.Path)
	}
	return cfg, nil
}

// describe prints the resolved model and override warnings in verbose mode.
func (c *cli) describe(res *doubledyn.Result) {
	if !c.verbose {
		return
	}
	var sb strings.Builder
	res.WriteSummary(&sb)
	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		c.logf("  %s", line)
	}
	for _, warning := range res.Overrides() {
		c.logf("%s %s", c.paint(yellow, "warning:"), warning)
	}
}

func (c *cli) logf(format string, args ...interface{}) {
	if c.verbose {
		fmt.Fprintf(c.stderr, "[doubledyn] "+format+"\n", args...)
	}
}

const usage = `doubledyn - generate Go double dispatch from .dd specifications

Usage:
  doubledyn [flags] file.dd...     generate <name>_dispatch.go next to each spec
  doubledyn check [flags] file.dd... validate specifications only
  doubledyn version                print the version
  doubledyn help                   print this help

Flags:
  -o path       output file, "-" for stdout (single input only)
  -pkg name     package name (default: doubledyn.yaml, then $GOPACKAGE)
  -config path  use this doubledyn.yaml instead of searching for one
  -v            verbose: progress, resolved model and override warnings
  -verify       exit 1 if the generated file on disk is out of date

Environment:
  NO_COLOR      disable coloured diagnostics
  DEBUG=1       show stack traces for internal errors
`
