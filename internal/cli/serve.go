package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanechart/internal/config"
	"github.com/matzehuels/lanechart/internal/server"
	"github.com/matzehuels/lanechart/pkg/cache"
	"github.com/matzehuels/lanechart/pkg/pipeline"
	"github.com/matzehuels/lanechart/pkg/store"
)

// serverKeyPrefix namespaces server cache keys so a shared Redis can hold
// several deployments.
const serverKeyPrefix = appName + ":v1:"

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		envFiles []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes rendering, single-link routing and chart storage over HTTP.

Backends are picked from the [server] config section or LANECHART_* environment
variables (a .env file in the working directory is read too):
  - LANECHART_REDIS_ADDR: share the render cache through Redis
  - LANECHART_MONGO_URI:  store charts in MongoDB
  - LANECHART_DATA_DIR:   store charts as files
Without any of them, charts live in memory and renders are cached on disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			if err := cfg.LoadEnv(envFiles...); err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if !cmd.Flags().Changed("verbose") {
				c.SetLogLevel(parseLevel(cfg.Server.LogLevel))
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringSliceVar(&envFiles, "env-file", nil, "dotenv file(s) to read (default .env if present)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	ca, err := c.serverCache(ctx, cfg)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(ca, cache.NewScopedKeyer(cache.NewDefaultKeyer(), serverKeyPrefix), c.Logger)
	defer runner.Close()

	st, err := c.openStore(ctx, cfg.Server)
	if err != nil {
		return err
	}
	defer st.Close(context.WithoutCancel(ctx))

	srv := server.New(server.Options{
		Runner:         runner,
		Store:          st,
		Logger:         c.Logger,
		Defaults:       cfg.Render.PipelineOptions(),
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
	})

	printInfo("Listening on %s", StyleHighlight.Render(cfg.Server.Addr))
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

// serverCache prefers Redis when configured so several instances share
// renders, then the local file cache.
func (c *CLI) serverCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	if cfg.Server.RedisAddr == "" || cfg.Cache.Disabled {
		return c.newCache(false)
	}
	rc, err := cache.NewRedisCache(ctx, cfg.Server.RedisAddr, cfg.Server.RedisDB)
	if err != nil {
		return nil, err
	}
	c.Logger.Info("render cache", "backend", "redis", "addr", cfg.Server.RedisAddr, "db", cfg.Server.RedisDB)
	return rc, nil
}

// openStore picks the chart store: MongoDB, then a data directory, then memory.
func (c *CLI) openStore(ctx context.Context, cfg config.ServerConfig) (store.Store, error) {
	switch {
	case cfg.MongoURI != "":
		db := cfg.MongoDB
		if db == "" {
			db = appName
		}
		s, err := store.NewMongoStore(ctx, cfg.MongoURI, db)
		if err != nil {
			return nil, err
		}
		c.Logger.Info("chart store", "backend", "mongo", "db", db)
		return s, nil
	case cfg.DataDir != "":
		s, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		c.Logger.Info("chart store", "backend", "file", "dir", s.Path())
		return s, nil
	default:
		c.Logger.Warn("chart store is in memory; charts are lost on restart")
		return store.NewMemoryStore(), nil
	}
}
