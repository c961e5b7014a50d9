package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Paintersrp/loradex/internal/handler"
	"github.com/Paintersrp/loradex/internal/server"
	"github.com/Paintersrp/loradex/internal/state"
)

func NewCmdServe(s *state.State) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the library over a JSON API",
		Long: heredoc.Doc(`
			Serve the active library over HTTP. The API lists, filters and
			groups models, renames and moves them, edits their JSON sidecars
			and stores the library settings. Prometheus metrics are exposed
			on /metrics.

			The library is watched for changes while the server runs.
		`),
		Example: heredoc.Doc(`
			loradex serve
			loradex serve --addr 0.0.0.0:9000
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" && s.Library != nil {
				addr = s.Library.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			watch(s)
			srv := server.New(catalogOf(s), s.Handler, s.Config, reloader(s), s.Logger)

			if s.Catalog == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "No models directory configured, set one through the settings API\n")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on, defaults to the library setting")

	return cmd
}

// reloader rebuilds the library services after the settings API changed the
// models directory or ignored folders.
func reloader(s *state.State) server.ReloadFunc {
	return func() (server.Catalog, *handler.FileHandler, error) {
		if err := s.Reload(); err != nil {
			return nil, nil, err
		}
		watch(s)
		return catalogOf(s), s.Handler, nil
	}
}

func catalogOf(s *state.State) server.Catalog {
	if s.Catalog == nil {
		return nil
	}
	return s.Catalog
}

func watch(s *state.State) {
	w, err := s.StartWatcher()
	if err != nil {
		s.Logger.Warn("library watcher unavailable", zap.Error(err))
		return
	}
	log := s.Logger
	go w.Run(func(err error) {
		log.Warn("library watcher error", zap.Error(err))
	})
}
