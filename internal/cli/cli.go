package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/buildinfo"
	"github.com/matzehuels/lineage/pkg/config"
	"github.com/matzehuels/lineage/pkg/engine"
	lerrors "github.com/matzehuels/lineage/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "lineage"

	// configFile is the file name looked up in the config directory.
	configFile = "config.toml"
)

// Exit codes returned by [Execute].
const (
	ExitOK          = 0
	ExitError       = 1
	ExitInterrupted = 130
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	// Out receives command output. Progress and logs go to the logger.
	Out io.Writer

	configPath string
	verbose    bool
	logFormat  string
}

// New creates a new CLI instance with a default logger and the built-in
// configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		Out:    os.Stdout,
	}
}

// Execute runs the command line in args and returns the process exit code.
// Errors are printed to the status output; a cancelled ctx exits with
// [ExitInterrupted].
func Execute(ctx context.Context, args []string) int {
	c := New(os.Stderr, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SilenceErrors = true

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	}
	printError("%v", err)
	if code := lerrors.GetCode(err); code != "" {
		c.Logger.Debug("command failed", "code", code)
	}
	return ExitError
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "lineage",
		Short: "Lineage prepares and explores data lineage graphs",
		Long: `Lineage lays out data lineage graphs of tables and columns, traces the
lineage of a single column, and serves the result to an interactive viewer.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.Logger.SetLevel(log.DebugLevel)
			}
			if err := c.setLogFormat(c.logFormat); err != nil {
				return err
			}
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "text", "log format: text, json, logfmt")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+filepath.Join("$XDG_CONFIG_HOME", appName, configFile)+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.traceCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.forceCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the --config file, or the default config file when it
// exists. Without either the built-in defaults stay in place.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(dir, configFile)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded config", "path", path)
	c.Config = cfg
	return nil
}

// engineOptions converts the active configuration for the engine.
func (c *CLI) engineOptions() engine.Options {
	return engine.FromConfig(c.Config, c.Logger)
}

// =============================================================================
// Engine Setup
// =============================================================================

// viewOpts are the flags shared by every command that prepares a view.
type viewOpts struct {
	orientation string
	expandAll   bool
	expand      []string
}

func (o *viewOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.orientation, "orientation", "", "layout orientation: LR (default), TB")
	cmd.Flags().BoolVar(&o.expandAll, "expand-all", false, "expand every node to show its attributes")
	cmd.Flags().StringSliceVar(&o.expand, "expand", nil, "node ids to expand (comma-separated)")
}

// loadEngine imports input, prepares the graph and applies the view flags.
func (c *CLI) loadEngine(ctx context.Context, input string, opts viewOpts) (*engine.Engine, error) {
	start := time.Now()
	var e *engine.Engine
	err := spin(ctx, "Preparing "+filepath.Base(input)+"...", "Preparation failed", func() error {
		var err error
		if e, err = engine.Load(ctx, input, c.engineOptions()); err != nil {
			return err
		}
		return applyViewOpts(ctx, e, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", input, err)
	}

	logIssues(c.Logger, e.Report())
	logPrepared(c.Logger, e, time.Since(start))
	return e, nil
}

func applyViewOpts(ctx context.Context, e *engine.Engine, opts viewOpts) error {
	if opts.orientation != "" {
		if err := e.SetOrientation(ctx, opts.orientation); err != nil {
			return err
		}
	}
	if opts.expandAll {
		_, err := e.ExpandAll(ctx)
		return err
	}
	for _, id := range opts.expand {
		if _, err := e.Focus(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the config directory using XDG standard (~/.config/lineage/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// cacheDir returns the cache directory using XDG standard (~/.cache/lineage/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// openOutput opens path for writing, or stdout when path is empty or "-".
func (c *CLI) openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{c.Out}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
