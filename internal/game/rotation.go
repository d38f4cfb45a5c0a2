package game

// CompletedCycles reports how many full prompt-to-image handoff cycles
// every round has at least completed: the minimum image count across all
// rounds. It is always recomputed from the rounds themselves and is the
// sole "where are we" input to the rotation. While the game has fewer
// rounds than roster slots it is zero.
func (g Game) CompletedCycles() int {
	if len(g.Rounds) != len(g.Players) || len(g.Rounds) == 0 {
		return 0
	}
	min := -1
	for _, round := range g.Rounds {
		count := countKind(round, KindImage)
		if min < 0 || count < min {
			min = count
		}
	}
	return min
}

// offsetFor selects the round index the given player currently extends.
// As cycles advance every player's target rotates forward by one, so each
// round is handed off to the next player in roster order.
func (g Game) offsetFor(p Player) (int, error) {
	index := indexOf(g.Players, p)
	if index < 0 {
		return 0, ErrNotInRoster
	}
	return (index + g.CompletedCycles()) % len(g.Players), nil
}

// RoundForPlayer returns a copy of the round the player should currently
// see and continue. It shares its derivation with WithTurn: whichever
// round a player is shown is the round their next turn will land in.
func (g Game) RoundForPlayer(p Player) (Round, error) {
	offset, err := g.offsetFor(p)
	if err != nil {
		return nil, err
	}
	source := g.roundAt(offset)
	round := make(Round, len(source))
	copy(round, source)
	return round, nil
}

// MostRecentPromptFor returns the last turn of the player's current round
// when that turn is a prompt awaiting an image. An empty round, or a
// round whose last turn is already an image, means the caller is out of
// turn order.
func (g Game) MostRecentPromptFor(p Player) (Turn, error) {
	round, err := g.RoundForPlayer(p)
	if err != nil {
		return Turn{}, err
	}
	if len(round) == 0 {
		return Turn{}, ErrNoPendingPrompt
	}
	last := round[len(round)-1]
	if last.Kind != KindPrompt {
		return Turn{}, ErrNoPendingPrompt
	}
	return last, nil
}

func countKind(round Round, kind string) int {
	count := 0
	for _, turn := range round {
		if turn.Kind == kind {
			count++
		}
	}
	return count
}
