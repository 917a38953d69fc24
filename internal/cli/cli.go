// Package cli implements the lanechart command-line interface.
//
// The commands load a chart document (JSON or YAML), run it through the
// pipeline and write the artifacts:
//   - render: lay out the chart, route its links and write SVG, PNG, PDF or JSON
//   - route: print the routed path of every link
//   - inspect: browse links and their routes interactively
//   - validate: check documents against the schema and semantic rules
//   - convert, example: move documents between formats, emit a sample chart
//   - serve: run the HTTP API
//   - cache: manage the render cache
//
// All commands support --verbose (-v) for debug logging and --config to point
// at a lanechart.toml.
package cli

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lanechart/internal/config"
	"github.com/matzehuels/lanechart/pkg/buildinfo"
	"github.com/matzehuels/lanechart/pkg/cache"
	"github.com/matzehuels/lanechart/pkg/chart"
	"github.com/matzehuels/lanechart/pkg/httputil"
	chartio "github.com/matzehuels/lanechart/pkg/io"
	"github.com/matzehuels/lanechart/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "lanechart"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and built-in config.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Lanechart lays out swimlane timelines and routes their links",
		Long:         `Lanechart renders timeline charts of swimlanes and items, routing dependency links between items as rounded orthogonal paths that avoid the bars.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.Path()+")")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.routeCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.exampleCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("config loaded", "path", c.configPath, "viz", cfg.Render.VizType)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	ca, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ca, nil, c.Logger), nil
}

// newCache returns the on-disk render cache, or a null cache when caching is
// off or no cache directory can be determined.
func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Input
// =============================================================================

// loadChart reads a chart from a file or an http(s) URL. Downloads go
// through the render cache so repeated runs stay offline.
func (c *CLI) loadChart(ctx context.Context, input string, noCache bool) (*chart.Chart, error) {
	if !httputil.IsURL(input) {
		return chartio.Import(input)
	}

	ca, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	defer ca.Close()

	doc, err := httputil.NewFetcher(ca).Fetch(ctx, input)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("fetched chart", "url", input, "bytes", len(doc.Body), "cached", doc.Cached)

	// The URL's extension beats a generic Content-Type.
	format := doc.ContentType
	if u, err := url.Parse(input); err == nil {
		if f, err := chartio.FormatFromPath(u.Path); err == nil {
			format = string(f)
		}
	}
	return pipeline.Parse(doc.Body, format)
}

// localName is where outputs for input go by default: the input path itself,
// or the last URL segment in the working directory.
func localName(input string) string {
	if !httputil.IsURL(input) {
		return input
	}
	u, err := url.Parse(input)
	if err != nil || path.Base(u.Path) == "/" || path.Base(u.Path) == "." {
		return "chart"
	}
	return path.Base(u.Path)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/lanechart/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
