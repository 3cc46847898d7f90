package cmd

import (
	"context"
	"math/rand/v2"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/artifact"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/config"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/engine"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/lobby"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/logging"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/stage"
)

var rootCmd = &cobra.Command{
	Use:   "huntdraft",
	Short: "Stage-ban draft for SA2B hunting tourney races",
	Long: `huntdraft runs the two-runner stage-ban draft for a hunting tourney
race and writes the randomizer config and LiveSplit splits once both
bans are in.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var envFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
}

func loadConfig() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func newLobby(ctx context.Context, cfg config.Config, log *zap.Logger) *lobby.Lobby {
	opts := lobby.Options{
		Catalog: stage.Hunting(),
		Writer:  artifact.NewWriter(cfg.OutputDir, log),
		Splits:  artifact.SplitsOptions{ScriptPath: cfg.ScriptPath},
		Log:     log,
	}
	if cfg.RNGSeed != 0 {
		opts.Rand = rand.New(rand.NewPCG(cfg.RNGSeed, cfg.RNGSeed^0x9e3779b97f4a7c15))
	}
	return lobby.NewLobby(ctx, engine.NewEmptyState(), opts)
}
