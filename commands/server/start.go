package server

import (
	"context"
	"net/http"
	"time"

	"github.com/iov-one/poa/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// AppGenerator lets us lazily initialize app, using home dir
// and logger potentially initialized with other flags
type AppGenerator func(string, log.Logger, bool) (abci.Application, error)

// StartOptions configures the ABCI server.
type StartOptions struct {
	// Bind is the address the ABCI socket server listens on.
	Bind string
	// MetricsAddr is the listen address of the /metrics endpoint.
	// Metrics are not served when empty.
	MetricsAddr string
	Debug       bool
}

const shutdownTimeout = 5 * time.Second

// StartCmd generates the application and serves it over an ABCI socket
// until ctx is cancelled.
func StartCmd(ctx context.Context, gen AppGenerator, logger log.Logger, home string, opts StartOptions) error {
	app, err := gen(home, logger, opts.Debug)
	if err != nil {
		return err
	}

	logger.Info("Starting ABCI app", "bind", opts.Bind)
	svr, err := server.NewServer(opts.Bind, "socket", app)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrap(err, "start abci server")
	}
	defer svr.Stop()

	if opts.MetricsAddr != "" {
		metrics := &http.Server{Addr: opts.MetricsAddr, Handler: metricsMux()}
		go func() {
			if err := metrics.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server", "err", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := metrics.Shutdown(sctx); err != nil {
				logger.Error("metrics shutdown", "err", err)
			}
		}()
		logger.Info("Serving metrics", "addr", opts.MetricsAddr)
	}

	<-ctx.Done()
	logger.Info("Stopping ABCI app")
	return nil
}

func metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
