package command

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/alwitt/reporter"
	"github.com/alwitt/reporter/config"
	"github.com/apex/log"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serve the results reporting API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			cfg, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}

			svc, err := reporter.NewService(
				cmd.Context(), cfg, clockwork.NewRealClock(), prometheus.NewRegistry(),
			)
			if err != nil {
				return err
			}
			defer func() {
				if err := svc.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			grp, ctx := errgroup.WithContext(cmd.Context())

			listener, err := listen(ctx, cfg.HTTP.ListenAddress)
			if err != nil {
				return err
			}

			log.WithField("address", listener.Addr().String()).Info("Starting API server")
			serve(ctx, grp, svc.Server.Server, listener, cfg.HTTP)
			return grp.Wait()
		},
	}
}

func listen(ctx context.Context, addr string) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, "tcp", addr)
}

// serve run the server on the listener until the context is canceled, then drain it.
func serve(
	ctx context.Context,
	grp *errgroup.Group,
	srv *http.Server,
	listener net.Listener,
	cfg config.HTTPConfig,
) {
	srv.ReadHeaderTimeout = cfg.ReadTimeout
	srv.ReadTimeout = cfg.ReadTimeout
	srv.WriteTimeout = cfg.WriteTimeout
	srv.IdleTimeout = cfg.IdleTimeout

	grp.Go(func() error {
		err := srv.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	grp.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
