package game

import (
	"time"

	"github.com/google/uuid"
)

const (
	KindPrompt = "PROMPT"
	KindImage  = "IMAGE"
)

const (
	StateNew               = "NEW"
	StateRequestNewPrompts = "REQUEST_NEW_PROMPTS"
	StateWaitForPrompts    = "WAIT_FOR_PROMPTS"
	StateWaitForImages     = "WAIT_FOR_IMAGES"
	StateFinished          = "FINISHED"
)

// Player is a reference to an externally owned identity. Two players are
// the same player iff their IDs match.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Turn is an immutable contribution to a round: either a text prompt or
// the URL of a generated image.
type Turn struct {
	ID        string    `json:"id"`
	Author    Player    `json:"author"`
	Kind      string    `json:"kind"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Round is one continuous prompt/image relay chain, append-only.
type Round []Turn

// Game is the aggregate the engine operates on. All transforms are
// value-in, value-out: the receiver is never mutated.
type Game struct {
	ID        string    `json:"id"`
	Players   []Player  `json:"players"`
	Rounds    []Round   `json:"rounds"`
	State     string    `json:"game_state"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTurn mints a turn for the given author. The engine itself never
// creates turns; callers build them and hand them to WithTurn.
func NewTurn(author Player, kind, content string) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Author:    author,
		Kind:      kind,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// New creates a game from a frozen lobby roster, with one empty round
// per roster slot.
func New(roster []Player) (Game, error) {
	if len(roster) == 0 {
		return Game{}, ErrEmptyRoster
	}
	players := make([]Player, 0, len(roster))
	for _, p := range roster {
		if indexOf(players, p) >= 0 {
			return Game{}, ErrDuplicatePlayer
		}
		players = append(players, p)
	}
	return Game{
		ID:        uuid.NewString(),
		Players:   players,
		Rounds:    make([]Round, len(players)),
		State:     StateNew,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// WithPlayer returns a game with the player appended to the roster and
// one more empty round slot. Adding a player who is already on the
// roster is a no-op. The roster is frozen once the first turn lands.
func (g Game) WithPlayer(p Player) (Game, error) {
	if indexOf(g.Players, p) >= 0 {
		return g, nil
	}
	if g.turnCount() > 0 {
		return Game{}, ErrGameStarted
	}
	next := g.clone()
	next.Players = append(next.Players, p)
	next.Rounds = append(next.Rounds, Round{})
	return next, nil
}

// WithTurn appends the turn to the round selected by the rotation offset
// of its author and re-derives the game state.
func (g Game) WithTurn(t Turn) (Game, error) {
	if g.State == StateFinished {
		return Game{}, ErrGameFinished
	}
	offset, err := g.offsetFor(t.Author)
	if err != nil {
		return Game{}, err
	}
	if t.Kind == KindImage {
		round := g.roundAt(offset)
		if len(round) == 0 || round[len(round)-1].Kind != KindPrompt {
			return Game{}, ErrNotAwaitingImage
		}
	}
	next := g.clone()
	for len(next.Rounds) <= offset {
		next.Rounds = append(next.Rounds, Round{})
	}
	next.Rounds[offset] = append(next.Rounds[offset], t)
	next.State = next.deriveState()
	return next, nil
}

func (g Game) clone() Game {
	next := g
	next.Players = make([]Player, len(g.Players))
	copy(next.Players, g.Players)
	next.Rounds = make([]Round, len(g.Rounds))
	for i, round := range g.Rounds {
		next.Rounds[i] = make(Round, len(round))
		copy(next.Rounds[i], round)
	}
	return next
}

func (g Game) turnCount() int {
	total := 0
	for _, round := range g.Rounds {
		total += len(round)
	}
	return total
}

func (g Game) roundAt(offset int) Round {
	if offset < 0 || offset >= len(g.Rounds) {
		return nil
	}
	return g.Rounds[offset]
}

func indexOf(players []Player, p Player) int {
	for i, candidate := range players {
		if candidate.ID == p.ID {
			return i
		}
	}
	return -1
}
