package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/stage"
)

var ErrValidation = errors.New("validation failed")
var ErrUnresolvedStage = errors.New("unresolved stage")
var ErrAlreadyBanned = errors.New("stage already banned")
var ErrNotAwaitingBan = errors.New("not awaiting a ban")
var ErrDraftInProgress = errors.New("draft already in progress")
var ErrUnsupportedCommand = errors.New("unsupported command")

// MaxRunnerNameLen is exclusive: names must be shorter than this.
const MaxRunnerNameLen = 10

type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhaseAwaitingFirstBan  Phase = "awaiting_first_ban"
	PhaseAwaitingSecondBan Phase = "awaiting_second_ban"
	PhaseConcluded         Phase = "concluded"
)

type State struct {
	Phase        Phase    `json:"phase"`
	RunnerA      string   `json:"runner_a,omitempty"`
	RunnerB      string   `json:"runner_b,omitempty"`
	FirstBanner  string   `json:"first_banner,omitempty"`
	SecondBanner string   `json:"second_banner,omitempty"`
	CurrentTurn  string   `json:"current_turn,omitempty"`
	Bans         []string `json:"bans"`
}

type CommandType string

const (
	CmdStart CommandType = "StartDraft"
	CmdBan   CommandType = "BanStage"
	CmdReset CommandType = "ResetDraft"
)

/*
	CmdStart -> EvtDraftStarted
	CmdBan   -> EvtBanRecorded -> EvtTurnAdvanced     (first ban)
	CmdBan   -> EvtBanRecorded -> EvtDraftConcluded   (second ban)
	CmdReset -> EvtDraftReset
*/

type Command struct {
	Type    CommandType
	RunnerA string
	RunnerB string
	// FirstIsA is the coin flip for CmdStart. The caller owns the randomness.
	FirstIsA bool
	Stage    string
}

type EventType string

const (
	EvtDraftStarted   EventType = "DraftStarted"
	EvtBanRecorded    EventType = "BanRecorded"
	EvtTurnAdvanced   EventType = "TurnAdvanced"
	EvtDraftConcluded EventType = "DraftConcluded"
	EvtDraftReset     EventType = "DraftReset"
)

type Event struct {
	Type   EventType `json:"type"`
	Runner string    `json:"runner,omitempty"`
	Stage  string    `json:"stage,omitempty"`
}

// Apply is pure: s is never modified, and on error the returned state is s.
func Apply(cat *stage.Catalog, s State, cmd Command) ([]Event, State, error) {
	switch cmd.Type {
	case CmdStart:
		if s.Phase == PhaseAwaitingFirstBan || s.Phase == PhaseAwaitingSecondBan {
			return nil, s, ErrDraftInProgress
		}
		if err := validateRunners(cmd.RunnerA, cmd.RunnerB); err != nil {
			return nil, s, err
		}

		newState := NewEmptyState()
		newState.RunnerA = cmd.RunnerA
		newState.RunnerB = cmd.RunnerB
		if cmd.FirstIsA {
			newState.FirstBanner, newState.SecondBanner = cmd.RunnerA, cmd.RunnerB
		} else {
			newState.FirstBanner, newState.SecondBanner = cmd.RunnerB, cmd.RunnerA
		}
		newState.CurrentTurn = newState.FirstBanner
		newState.Phase = DerivePhase(true, 0)

		return []Event{{Type: EvtDraftStarted, Runner: newState.FirstBanner}}, newState, nil

	case CmdBan:
		name, ok := cat.Resolve(cmd.Stage)

		if !s.awaitingBan() {
			// A banned stage stays "already banned" in every phase.
			if ok && slices.Contains(s.Bans, name) {
				return nil, s, fmt.Errorf("%w: %s", ErrAlreadyBanned, name)
			}
			return nil, s, ErrNotAwaitingBan
		}
		if !ok {
			return nil, s, fmt.Errorf("%w: %q", ErrUnresolvedStage, cmd.Stage)
		}
		if slices.Contains(s.Bans, name) {
			return nil, s, fmt.Errorf("%w: %s", ErrAlreadyBanned, name)
		}

		banner := s.CurrentTurn
		newState := s
		newState.Bans = append(slices.Clone(s.Bans), name)
		newState.Phase = DerivePhase(true, len(newState.Bans))

		events := []Event{{Type: EvtBanRecorded, Runner: banner, Stage: name}}
		if newState.Phase == PhaseConcluded {
			newState.CurrentTurn = ""
			events = append(events, Event{Type: EvtDraftConcluded})
		} else {
			newState.CurrentTurn = s.bannerFor(len(newState.Bans))
			events = append(events, Event{Type: EvtTurnAdvanced, Runner: newState.CurrentTurn})
		}
		return events, newState, nil

	case CmdReset:
		return []Event{{Type: EvtDraftReset}}, NewEmptyState(), nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func validateRunners(a, b string) error {
	for _, name := range []string{a, b} {
		if name == "" {
			return fmt.Errorf("%w: runner name is empty", ErrValidation)
		}
		if len([]rune(name)) >= MaxRunnerNameLen {
			return fmt.Errorf("%w: runner name %q must be less than %d characters", ErrValidation, name, MaxRunnerNameLen)
		}
	}
	if a == b {
		return fmt.Errorf("%w: runners must be different, got %q twice", ErrValidation, a)
	}
	return nil
}
