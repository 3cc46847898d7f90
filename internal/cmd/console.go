package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/console"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/status"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/types"
)

var consoleCmd = &cobra.Command{
	Use:   "console <runner-a> <runner-b>",
	Short: "Run one draft at this terminal",
	Long: `Start a draft between two runners and read both stage bans from
stdin. Artifacts are written to the output directory when the draft
concludes.`,
	Args: cobra.ExactArgs(2),
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	lb := newLobby(ctx, cfg, log)
	snaps, err := lb.Subscribe(ctx, "status-board", 16)
	if err != nil {
		return err
	}
	// The board outlives ctx so it can drain the final snapshots; it stops
	// when the lobby closes its outbox.
	boardDone := make(chan struct{})
	go func() {
		defer close(boardDone)
		status.NewBoard(cfg.StatusFile, log).Run(context.Background(), snaps)
	}()
	defer func() {
		stop()
		<-boardDone
	}()

	res, err := lb.Start(ctx, args[0], args[1])
	if err != nil {
		return fmt.Errorf("start draft: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Draft started between %s and %s\n", args[0], args[1])
	for _, msg := range types.Announcements(res.Events) {
		fmt.Fprintln(out, msg)
	}

	b := console.NewBridge(lb, nil, cmd.InOrStdin(), out, log)
	b.StopOnConclusion = true
	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
