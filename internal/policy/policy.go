// FILE: stripchess/internal/policy/policy.go
package policy

import (
	"errors"
	"math/rand/v2"
	"sync"

	"stripchess/internal/board"
	"stripchess/internal/engine"
	"stripchess/internal/rules"
)

var ErrNoMoves = errors.New("no legal moves")

// Policy selects a move for the side to move. history holds the positions
// played so far, for policies that avoid repetition.
type Policy interface {
	Name() string
	Move(p board.Position, history engine.Repetitions) (board.Move, error)
}

// Random picks uniformly among legal moves
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *Random) Name() string { return "random" }

func (r *Random) Move(p board.Position, _ engine.Repetitions) (board.Move, error) {
	moves := rules.CurrentMoves(p)
	if len(moves) == 0 {
		return board.Move{}, ErrNoMoves
	}
	r.mu.Lock()
	i := r.rng.IntN(len(moves))
	r.mu.Unlock()
	return moves[i], nil
}

// Greedy takes the most valuable capture, discounted by the mover's value when
// the destination is defended. Ties are broken at random.
type Greedy struct {
	random *Random
}

func NewGreedy(seed uint64) *Greedy {
	return &Greedy{random: NewRandom(seed)}
}

func (g *Greedy) Name() string { return "greedy" }

// MoveScore is the one-ply gain of m given the opponent's attack set
func MoveScore(b board.Board, m board.Move, defended rules.SquareSet) int {
	target := engine.PieceValue(b[m.To].Kind())
	if defended.Has(m.To) {
		return target - engine.PieceValue(b[m.From].Kind())
	}
	return target
}

func (g *Greedy) Move(p board.Position, _ engine.Repetitions) (board.Move, error) {
	moves := rules.CurrentMoves(p)
	if len(moves) == 0 {
		return board.Move{}, ErrNoMoves
	}
	defended := rules.AttackedSquares(p.Board, p.Turn.Opposite())

	var best []board.Move
	bestScore := 0
	for _, m := range moves {
		score := MoveScore(p.Board, m, defended)
		switch {
		case len(best) == 0 || score > bestScore:
			best = append(best[:0], m)
			bestScore = score
		case score == bestScore:
			best = append(best, m)
		}
	}

	g.random.mu.Lock()
	i := g.random.rng.IntN(len(best))
	g.random.mu.Unlock()
	return best[i], nil
}

// Searcher plays the first move of the principal line
type Searcher struct {
	Depth int
	Cache *engine.Cache
}

func (s *Searcher) Name() string { return "search" }

func (s *Searcher) Move(p board.Position, history engine.Repetitions) (board.Move, error) {
	opts := engine.DefaultOptions(s.Depth)
	opts.Cache = s.Cache
	opts.History = history

	res := engine.Search(p, opts)
	if len(res.Line) > 0 {
		return res.Line[0], nil
	}
	// terminal root, horizon at zero depth or a repetition draw at the root
	moves := s.Cache.LegalMoves(p)
	if len(moves) == 0 {
		return board.Move{}, ErrNoMoves
	}
	return moves[0], nil
}

// ByName builds a policy from its CLI name
func ByName(name string, seed uint64, depth int, cache *engine.Cache) (Policy, error) {
	switch name {
	case "random":
		return NewRandom(seed), nil
	case "greedy":
		return NewGreedy(seed), nil
	case "search":
		return &Searcher{Depth: depth, Cache: cache}, nil
	default:
		return nil, errors.New("unknown policy: " + name)
	}
}
