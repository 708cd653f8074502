// FILE: stripchess/internal/engine/search.go
package engine

import (
	"stripchess/internal/board"
	"stripchess/internal/core"
	"stripchess/internal/rules"
)

// Options configures a search. The zero Rules value selects rules.Default and
// a nil Evaluator selects Material. Use rules.NoLimits to search without
// draw thresholds.
type Options struct {
	// MaxDepth is the horizon in plies
	MaxDepth  int
	Pruning   bool
	Ordering  bool
	Evaluator Evaluator
	Rules     rules.Rules
	Cache     *Cache
	// History holds positions played before the root, for repetition draws
	History Repetitions
}

// DefaultOptions enables pruning and ordering with the material evaluator
func DefaultOptions(depth int) Options {
	return Options{
		MaxDepth:  depth,
		Pruning:   true,
		Ordering:  true,
		Evaluator: Material,
		Rules:     rules.Default,
	}
}

// Result is the outcome of a search, scored for the side to move at the root
type Result struct {
	Score int
	// Line is the principal line from the root; empty when the root is
	// terminal or at the horizon
	Line []board.Move
	// Nodes counts visited positions
	Nodes int
}

type searcher struct {
	opts  Options
	root  core.Color
	nodes int
}

// Search runs depth-limited minimax from p. Among equally scored lines the
// shortest wins, then the first generated.
func Search(p board.Position, opts Options) Result {
	if opts.Evaluator == nil {
		opts.Evaluator = Material
	}
	if opts.Rules == (rules.Rules{}) {
		opts.Rules = rules.Default
	}
	if opts.MaxDepth < 0 {
		opts.MaxDepth = 0
	}

	s := &searcher{opts: opts, root: p.Turn}
	score, line := s.search(p, 0, opts.History, ScoreLoss-1, ScoreWin+1)
	return Result{Score: score, Line: line, Nodes: s.nodes}
}

func (s *searcher) terminalScore(o core.Outcome) int {
	switch o {
	case core.OutcomeDraw:
		return ScoreDraw
	case core.Winner(s.root):
		return ScoreWin
	default:
		return ScoreLoss
	}
}

// search returns the score and line of p. With pruning, results outside
// (alpha, beta) are bounds only.
func (s *searcher) search(p board.Position, depth int, reps Repetitions, alpha, beta int) (int, []board.Move) {
	s.nodes++

	key := p.Key()
	if reps.Count(key) >= 2 {
		return ScoreDraw, nil
	}
	reps = reps.Push(key)

	legal := s.opts.Cache.LegalMoves(p)
	if outcome, _ := s.opts.Rules.ClassifyWithMoves(p, legal); outcome != core.OutcomeNone {
		return s.terminalScore(outcome), nil
	}
	if depth >= s.opts.MaxDepth {
		return s.opts.Evaluator(p.Board, s.root), nil
	}

	moves := legal
	if s.opts.Ordering {
		moves = OrderByEvaluation(p.Board, legal, p.Turn, s.opts.Evaluator)
	}

	maximizing := p.Turn == s.root
	best := ScoreWin + 1
	if maximizing {
		best = ScoreLoss - 1
	}
	var bestLine []board.Move

	for _, m := range moves {
		// widen the child window by one so a child equal to the current
		// best is scored exactly and can win on line length
		childAlpha, childBeta := alpha, beta
		if maximizing {
			childAlpha--
		} else {
			childBeta++
		}

		score, line := s.search(board.Apply(p, m), depth+1, reps, childAlpha, childBeta)

		if s.better(maximizing, score, len(line)+1, best, len(bestLine)) {
			best = score
			bestLine = make([]board.Move, 0, len(line)+1)
			bestLine = append(bestLine, m)
			bestLine = append(bestLine, line...)
		}

		if !s.opts.Pruning {
			continue
		}
		if maximizing {
			if best >= beta {
				break
			}
			alpha = max(alpha, best)
		} else {
			if best <= alpha {
				break
			}
			beta = min(beta, best)
		}
	}
	return best, bestLine
}

func (s *searcher) better(maximizing bool, score, length, best, bestLength int) bool {
	if score == best {
		return length < bestLength
	}
	if maximizing {
		return score > best
	}
	return score < best
}
