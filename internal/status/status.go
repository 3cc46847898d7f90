// Package status keeps the three-line text file a stream overlay reads:
// turn message, runner A's ban, runner B's ban.
package status

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/engine"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/lobby"
)

func Lines(s engine.State) [3]string {
	var lines [3]string
	switch s.Phase {
	case engine.PhaseIdle:
		return lines
	case engine.PhaseConcluded:
		lines[0] = "Draft concluded"
	default:
		lines[0] = fmt.Sprintf("%s's turn to ban", s.CurrentTurn)
	}
	lines[1] = s.BannedBy(s.RunnerA)
	lines[2] = s.BannedBy(s.RunnerB)
	return lines
}

type Board struct {
	path string
	log  *zap.Logger
}

func NewBoard(path string, log *zap.Logger) *Board {
	if log == nil {
		log = zap.NewNop()
	}
	return &Board{path: path, log: log}
}

func (b *Board) Write(s engine.State) error {
	lines := Lines(s)
	if err := os.WriteFile(b.path, []byte(strings.Join(lines[:], "\n")), 0o644); err != nil {
		return fmt.Errorf("write status %s: %w", b.path, err)
	}
	return nil
}

// Run rewrites the board for every snapshot until snaps closes or ctx ends.
// A failed write is logged and the next snapshot tries again.
func (b *Board) Run(ctx context.Context, snaps <-chan lobby.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			if err := b.Write(snap.State); err != nil {
				b.log.Warn("status board not updated", zap.Int("version", snap.Version), zap.Error(err))
			}
		}
	}
}
