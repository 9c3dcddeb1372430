package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/pastelaria-api/database"
	"github.com/yeremiapane/pastelaria-api/kds"
	"github.com/yeremiapane/pastelaria-api/router"
	"github.com/yeremiapane/pastelaria-api/services"
	"github.com/yeremiapane/pastelaria-api/utils"
)

const shutdownTimeout = 10 * time.Second

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts, seed)
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "load the sample catalog into empty tables before serving")
	return cmd
}

func runServe(ctx context.Context, opts *RootOptions, seed bool) error {
	cfg := opts.Config
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	if seed {
		if _, err := database.Seed(db, false); err != nil {
			return err
		}
	}

	store, closeStore, err := openStore(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer closeStore()

	sweeper := services.NewCacheSweeper(store, cfg.CacheSweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	r, err := router.SetupRouter(cfg, db, store, kds.NewHub())
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.InfoLogger.WithField("port", cfg.Port).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	utils.InfoLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
