package types

import (
	"fmt"

	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/artifact"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/engine"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/order"
)

type ClientMessage struct {
	Type    string `json:"type"` // "StartDraft" | "BanStage" | "ResetDraft"
	RunnerA string `json:"runner_a,omitempty"`
	RunnerB string `json:"runner_b,omitempty"`
	Stage   string `json:"stage,omitempty"`
}

type ServerMessage struct {
	Type          string          `json:"type"` // "StateSnapshot" | "Error"
	Version       int             `json:"version,omitempty"`
	State         *engine.State   `json:"state,omitempty"`
	Events        []engine.Event  `json:"events,omitempty"`
	Announcements []string        `json:"announcements,omitempty"`
	Ordering      *order.Ordering `json:"ordering,omitempty"`
	Error         string          `json:"error,omitempty"`
}

type StartRequest struct {
	RunnerA string `json:"runner_a"`
	RunnerB string `json:"runner_b"`
}

type BanRequest struct {
	Stage string `json:"stage"`
}

type DraftResponse struct {
	Version       int             `json:"version"`
	State         engine.State    `json:"state"`
	Events        []engine.Event  `json:"events,omitempty"`
	Announcements []string        `json:"announcements,omitempty"`
	Ordering      *order.Ordering `json:"ordering,omitempty"`
	SplitNames    []string        `json:"split_names,omitempty"`
	Files         *artifact.Files `json:"files,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Path  string `json:"path,omitempty"`
}

// Announce renders the channel message for an event, or "" for events that
// are not announced.
func Announce(e engine.Event) string {
	switch e.Type {
	case engine.EvtDraftStarted:
		return fmt.Sprintf("%s bans first! Please type which stage you would like to ban.", e.Runner)
	case engine.EvtBanRecorded:
		return fmt.Sprintf("%s banned %s.", e.Runner, e.Stage)
	case engine.EvtTurnAdvanced:
		return fmt.Sprintf("It's %s's turn to ban. Please type which stage you would like to ban.", e.Runner)
	case engine.EvtDraftConcluded:
		return "The draft has been concluded."
	case engine.EvtDraftReset:
		return "The draft has been reset."
	default:
		return ""
	}
}

func Announcements(events []engine.Event) []string {
	var out []string
	for _, e := range events {
		if msg := Announce(e); msg != "" {
			out = append(out, msg)
		}
	}
	return out
}
