package status

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/engine"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/lobby"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/stage"
)

func TestLines(t *testing.T) {
	cat := stage.Hunting()
	apply := func(s engine.State, cmd engine.Command) engine.State {
		_, next, err := engine.Apply(cat, s, cmd)
		require.NoError(t, err)
		return next
	}

	s := engine.NewEmptyState()
	assert.Equal(t, [3]string{"", "", ""}, Lines(s))

	// Bob wins the flip, so Bob's ban goes on runner B's line.
	s = apply(s, engine.Command{Type: engine.CmdStart, RunnerA: "Alice", RunnerB: "Bob", FirstIsA: false})
	assert.Equal(t, [3]string{"Bob's turn to ban", "", ""}, Lines(s))

	s = apply(s, engine.Command{Type: engine.CmdBan, Stage: "dc"})
	assert.Equal(t, [3]string{"Alice's turn to ban", "", "Death Chamber"}, Lines(s))

	s = apply(s, engine.Command{Type: engine.CmdBan, Stage: "hall"})
	assert.Equal(t, [3]string{"Draft concluded", "Security Hall", "Death Chamber"}, Lines(s))

	s = apply(s, engine.Command{Type: engine.CmdReset})
	assert.Equal(t, [3]string{"", "", ""}, Lines(s))
}

func readEventually(t *testing.T, path, want string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	var got string
	for time.Now().Before(deadline) {
		b, err := os.ReadFile(path)
		if err == nil {
			got = string(b)
			if got == want {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("status file: want %q, got %q", want, got)
}

func TestBoard_FollowsLobby(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "draft_status.txt")
	l := lobby.NewLobby(ctx, engine.NewEmptyState(), lobby.Options{Rand: rand.New(rand.NewPCG(3, 4))})

	snaps, err := l.Subscribe(ctx, "status", 16)
	require.NoError(t, err)
	go NewBoard(path, nil).Run(ctx, snaps)

	readEventually(t, path, "\n\n")

	res, err := l.Start(ctx, "Alice", "Bob")
	require.NoError(t, err)
	readEventually(t, path, res.State.FirstBanner+"'s turn to ban\n\n")

	_, err = l.SubmitBan(ctx, "wc")
	require.NoError(t, err)
	v, err := l.View(ctx)
	require.NoError(t, err)
	lines := Lines(v.State)
	readEventually(t, path, lines[0]+"\n"+lines[1]+"\n"+lines[2])

	_, err = l.Reset(ctx)
	require.NoError(t, err)
	readEventually(t, path, "\n\n")
}

func TestBoard_WriteError(t *testing.T) {
	b := NewBoard(filepath.Join(t.TempDir(), "missing", "status.txt"), nil)
	assert.Error(t, b.Write(engine.NewEmptyState()))
}
