package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salarydash/internal/api"
	"salarydash/internal/engine"
	"salarydash/internal/logger"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API (default command)",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
}

// runServe starts the API immediately and loads the dataset in the
// background. Data routes answer 503 until the load finishes; a failed load
// stops the server and the process exits non-zero.
func runServe(cmd *cobra.Command, _ []string) error {
	log := logger.Named("server")
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := api.NewHandler(nil, cfg.EngineOptions())
	e := api.NewServer(h)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Msg("server ready (dataset loading in background)")
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})

	g.Go(func() error {
		t0 := time.Now()
		store, err := engine.Load(gctx, cfg.Source())
		if err != nil {
			if gctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "load dataset")
		}
		h.SetStore(store)
		log.Info().Int("rows", store.Len()).Dur("took", time.Since(t0)).Msg("dataset ready, API fully live")
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
