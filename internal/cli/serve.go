package cli

import (
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Deva-here/ScribbleForge/internal/server"
	"github.com/Deva-here/ScribbleForge/pkg/session"
	"github.com/Deva-here/ScribbleForge/pkg/studio"
)

const janitorInterval = time.Minute

type serveOpts struct {
	addr string
}

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP session API",
		Long: `Run the JSON HTTP API. Each client session owns its own text, settings and
busy/error state; idle sessions expire after the configured session TTL.`,
		Example: `  scribbleforge serve --addr :9090
  SCRIBBLEFORGE_REDIS_ADDR=localhost:6379 scribbleforge serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if opts.addr != "" {
				cfg.Addr = opts.addr
			}

			ctx := cmd.Context()
			svc, err := c.newServices(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			store := session.NewMemoryStore(session.WithMaxSessions(cfg.MaxSessions))
			srv := server.New(store,
				func(opts ...studio.Option) *studio.Controller { return c.newController(svc, opts...) },
				server.WithLogger(c.Logger),
				server.WithSessionTTL(cfg.SessionTTL),
				server.WithRequestTimeout(cfg.RequestTimeout),
				server.WithFlowTimeout(cfg.FlowTimeout),
			)

			c.Logger.Info("starting server", "provider", cfg.Provider, "model", cfg.Model)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.ListenAndServe(gctx, cfg.Addr) })
			g.Go(func() error { return session.Janitor(gctx, store, janitorInterval) })
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
