package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/console"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/httpapi"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/status"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the draft over HTTP and WebSocket",
	Long: `Start the HTTP API and WebSocket stream for the draft. The status
board file is kept current for stream overlays. With --console, bans can
also be typed at this terminal.`,
	RunE: runServe,
}

var serveConsole bool

func init() {
	serveCmd.Flags().BoolVar(&serveConsole, "console", false, "also read stage bans from stdin")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lb := newLobby(ctx, cfg, log)
	snaps, err := lb.Subscribe(ctx, "status-board", 16)
	if err != nil {
		return err
	}
	board := status.NewBoard(cfg.StatusFile, log)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.SetupRoutes(lb, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		board.Run(gctx, snaps)
		return nil
	})
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("output_dir", cfg.OutputDir))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if serveConsole {
		g.Go(func() error {
			err := console.NewBridge(lb, nil, cmd.InOrStdin(), cmd.OutOrStdout(), log).Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	err = g.Wait()
	log.Info("server stopped", zap.Error(err))
	return err
}
