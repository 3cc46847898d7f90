package engine

func NewEmptyState() State {
	s := State{
		Bans: []string{},
	}
	s.Phase = DerivePhase(false, 0)
	return s
}

func DerivePhase(started bool, bans int) Phase {
	if !started {
		return PhaseIdle
	} else if bans >= len(BanOrder) {
		return PhaseConcluded
	} else if bans == 0 {
		return PhaseAwaitingFirstBan
	} else {
		return PhaseAwaitingSecondBan
	}
}

func (s State) awaitingBan() bool {
	return s.Phase == PhaseAwaitingFirstBan || s.Phase == PhaseAwaitingSecondBan
}

// bannerFor returns who bans at turn index i (0-based), or "" past the end.
func (s State) bannerFor(i int) string {
	if i < 0 || i >= len(BanOrder) {
		return ""
	}
	if BanOrder[i] == SeatFirst {
		return s.FirstBanner
	}
	return s.SecondBanner
}

// BannedBy returns the stage the runner banned, or "".
func (s State) BannedBy(runner string) string {
	if runner == "" {
		return ""
	}
	for i, st := range s.Bans {
		if s.bannerFor(i) == runner {
			return st
		}
	}
	return ""
}
