// Package console lets an operator type stage bans at a terminal. It is only
// a caller of the lobby; every ban goes through Lobby.BanAndPublish.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/artifact"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/engine"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/lobby"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/stage"
)

type Bridge struct {
	// StopOnConclusion makes Run return once a ban concludes the draft.
	StopOnConclusion bool

	lobby *lobby.Lobby
	cat   *stage.Catalog
	in    io.Reader
	out   io.Writer
	log   *zap.Logger
}

func NewBridge(lb *lobby.Lobby, cat *stage.Catalog, in io.Reader, out io.Writer, log *zap.Logger) *Bridge {
	if cat == nil {
		cat = stage.Hunting()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{lobby: lb, cat: cat, in: in, out: out, log: log}
}

// Run prompts whenever the lobby is waiting for a ban and submits each input
// line. It returns at end of input, when ctx ends, or when the lobby closes.
func (b *Bridge) Run(ctx context.Context) error {
	snaps, err := b.lobby.Subscribe(ctx, "console", 16)
	if err != nil {
		return err
	}
	defer func() {
		_ = b.lobby.Unsubscribe(context.WithoutCancel(ctx), "console")
	}()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(b.in)
		for sc.Scan() {
			select {
			case lines <- strings.TrimSpace(sc.Text()):
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case snap, ok := <-snaps:
			if !ok {
				return lobby.ErrClosed
			}
			b.prompt(snap.State)

		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if line == "" {
				continue
			}
			if b.submit(ctx, line) && b.StopOnConclusion {
				return nil
			}
		}
	}
}

func (b *Bridge) prompt(s engine.State) {
	var which string
	switch s.Phase {
	case engine.PhaseAwaitingFirstBan:
		which = "first"
	case engine.PhaseAwaitingSecondBan:
		which = "second"
	default:
		return
	}

	fmt.Fprintf(b.out, "\nWaiting for %s stage ban...\n", which)
	fmt.Fprintf(b.out, "Enter stage name or abbreviation for %s to ban:\n", s.CurrentTurn)
	fmt.Fprintln(b.out, "\nAvailable stages:")
	for _, st := range b.cat.Stages() {
		if !slices.Contains(s.Bans, st.Name) {
			fmt.Fprintf(b.out, "- %s (%s)\n", st.Name, st.Aliases[0])
		}
	}
	fmt.Fprint(b.out, "> ")
}

// submit reports whether the ban concluded the draft.
func (b *Bridge) submit(ctx context.Context, line string) bool {
	res, pub, err := b.lobby.BanAndPublish(ctx, line)

	var werr *artifact.WriteError
	switch {
	case errors.Is(err, engine.ErrUnresolvedStage):
		fmt.Fprintln(b.out, "Invalid stage name. Please try again.")
		fmt.Fprint(b.out, "> ")
		return false
	case errors.Is(err, engine.ErrAlreadyBanned):
		name, _ := b.cat.Resolve(line)
		fmt.Fprintf(b.out, "%s has already been banned. Please choose another stage.\n", name)
		fmt.Fprint(b.out, "> ")
		return false
	case errors.Is(err, engine.ErrNotAwaitingBan):
		fmt.Fprintln(b.out, "No stage ban is pending.")
		return false
	case errors.As(err, &werr):
		fmt.Fprintf(b.out, "Draft concluded, but %s could not be written: %v\n", werr.Path, werr.Err)
		return true
	case err != nil:
		b.log.Error("console ban failed", zap.String("input", line), zap.Error(err))
		fmt.Fprintf(b.out, "Error processing input: %v\n", err)
		return false
	}

	for _, e := range res.Events {
		if e.Type == engine.EvtBanRecorded {
			fmt.Fprintf(b.out, "\n%s banned %s\n", e.Runner, e.Stage)
		}
	}
	if res.State.Phase == engine.PhaseAwaitingSecondBan {
		fmt.Fprintf(b.out, "Now waiting for %s's ban...\n", res.State.CurrentTurn)
	}
	if pub != nil {
		if pub.Files.ConfigPath != "" {
			fmt.Fprintf(b.out, "Generated config file: %s\n", pub.Files.ConfigPath)
			fmt.Fprintf(b.out, "Generated LiveSplit file: %s\n", pub.Files.SplitsPath)
		}
		fmt.Fprintln(b.out, "Stage order: "+strings.Join(pub.Ordering.Active, ", "))
		fmt.Fprintln(b.out, "The draft has been concluded.")
	}
	return pub != nil
}
