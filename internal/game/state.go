package game

// deriveState recomputes the game state from the shape of the rounds.
// The guards are pure functions of the aggregate turn counts, never of a
// single event, so the state can be recomputed from a stored snapshot at
// any time and replaying an append is idempotent.
//
// Checked in priority order:
//  1. every round holds at least N images    -> FINISHED (absorbing)
//  2. no turns at all                        -> NEW
//  3. every round balanced (prompts==images) -> REQUEST_NEW_PROMPTS
//  4. prompt counts uneven across rounds     -> WAIT_FOR_PROMPTS
//  5. otherwise images are still trickling in -> WAIT_FOR_IMAGES
func (g Game) deriveState() string {
	n := len(g.Players)
	if n == 0 {
		return StateNew
	}
	if g.CompletedCycles() >= n {
		return StateFinished
	}
	if g.turnCount() == 0 {
		return StateNew
	}
	if g.roundsBalanced() {
		return StateRequestNewPrompts
	}
	if !g.allRoundsEqualByKind(KindPrompt) {
		return StateWaitForPrompts
	}
	return StateWaitForImages
}

// allRoundsEqualByKind reports whether every round holds the identical
// count of turns of the given kind. When the number of rounds does not
// match the roster size (the brief window between roster growth and
// round allocation) it relaxes to "at least one round has zero of that
// kind".
func (g Game) allRoundsEqualByKind(kind string) bool {
	if len(g.Rounds) != len(g.Players) {
		for _, round := range g.Rounds {
			if countKind(round, kind) == 0 {
				return true
			}
		}
		return len(g.Rounds) == 0
	}
	want := -1
	for _, round := range g.Rounds {
		count := countKind(round, kind)
		if want < 0 {
			want = count
		}
		if count != want {
			return false
		}
	}
	return true
}

// roundsBalanced reports whether every round has handed off cleanly:
// identical prompt and image counts across rounds, with each prompt
// already illustrated. This marks the boundary between cycles, where
// every player owes a fresh prompt.
func (g Game) roundsBalanced() bool {
	if !g.allRoundsEqualByKind(KindPrompt) || !g.allRoundsEqualByKind(KindImage) {
		return false
	}
	for _, round := range g.Rounds {
		if countKind(round, KindPrompt) != countKind(round, KindImage) {
			return false
		}
	}
	return true
}
