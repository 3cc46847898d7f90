// Package order turns a concluded draft's bans into the randomized stage
// sequence that both artifacts are generated from.
package order

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/engine"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/stage"
)

// SplitsPerStage is the number of emeralds/pieces hunted per stage.
const SplitsPerStage = 5

var ErrUnknownStage = errors.New("unknown stage")
var ErrDuplicateBan = errors.New("duplicate ban")
var ErrBanCount = errors.New("wrong ban count")

type Ordering struct {
	// Ranks has every catalog stage; banned stages are 0.
	Ranks       map[string]int `json:"ranks"`
	Active      []string       `json:"active"`
	SplitLabels []string       `json:"split_labels"`
}

// Generate ranks every non-banned stage with a uniform shuffle. If
// stage.NoStartStage lands first it is swapped with a random later position
// once; this is intentionally not a re-roll, so the result is not uniform
// over orderings that avoid it.
func Generate(cat *stage.Catalog, banned []string, r *rand.Rand) (Ordering, error) {
	ranks := make(map[string]int, cat.Len())
	for _, name := range banned {
		if !cat.Contains(name) {
			return Ordering{}, fmt.Errorf("%w: %q", ErrUnknownStage, name)
		}
		if _, dup := ranks[name]; dup {
			return Ordering{}, fmt.Errorf("%w: %q", ErrDuplicateBan, name)
		}
		ranks[name] = 0
	}
	if len(banned) != len(engine.BanOrder) {
		return Ordering{}, fmt.Errorf("%w: %w: got %d, want %d", engine.ErrValidation, ErrBanCount, len(banned), len(engine.BanOrder))
	}

	remaining := make([]string, 0, cat.Len()-len(banned))
	for _, name := range cat.Names() {
		if !slices.Contains(banned, name) {
			remaining = append(remaining, name)
		}
	}

	r.Shuffle(len(remaining), func(i, j int) {
		remaining[i], remaining[j] = remaining[j], remaining[i]
	})
	if len(remaining) > 1 && remaining[0] == stage.NoStartStage {
		swap := 1 + r.IntN(len(remaining)-1)
		remaining[0], remaining[swap] = remaining[swap], remaining[0]
	}

	for i, name := range remaining {
		ranks[name] = i + 1
	}

	return Ordering{
		Ranks:       ranks,
		Active:      remaining,
		SplitLabels: splitLabels(remaining),
	}, nil
}

func splitLabels(active []string) []string {
	total := len(active) * SplitsPerStage
	labels := make([]string, 0, total)
	n := 1
	for _, name := range active {
		for k := 1; k <= SplitsPerStage; k++ {
			labels = append(labels, fmt.Sprintf("%s %d (%d/%d)", name, k, n, total))
			n++
		}
	}
	return labels
}

// SplitNames are the labels without the running "(i/N)" counter.
func (o Ordering) SplitNames() []string {
	names := make([]string, len(o.SplitLabels))
	for i, l := range o.SplitLabels {
		if j := strings.LastIndex(l, " ("); j >= 0 {
			l = l[:j]
		}
		names[i] = l
	}
	return names
}

// Banned lists rank-0 stages in catalog order.
func (o Ordering) Banned(cat *stage.Catalog) []string {
	var out []string
	for _, name := range cat.Names() {
		if rank, ok := o.Ranks[name]; ok && rank == 0 {
			out = append(out, name)
		}
	}
	return out
}
