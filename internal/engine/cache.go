// FILE: stripchess/internal/engine/cache.go
package engine

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"stripchess/internal/board"
	"stripchess/internal/rules"
)

// DefaultCacheSize bounds the legal move memo
const DefaultCacheSize = 1 << 20

// Cache memoizes legal move generation by board and side to move.
// It is safe for concurrent searches. Cached slices must not be modified.
type Cache struct {
	moves  *lru.Cache[board.Key, []board.Move]
	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	moves, err := lru.New[board.Key, []board.Move](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create move cache: %w", err)
	}
	return &Cache{moves: moves}, nil
}

// LegalMoves returns the legal moves of p, computing them on a miss.
// A nil cache always computes.
func (c *Cache) LegalMoves(p board.Position) []board.Move {
	if c == nil {
		return rules.CurrentMoves(p)
	}
	key := p.Key()
	if moves, ok := c.moves.Get(key); ok {
		c.hits.Add(1)
		return moves
	}
	c.misses.Add(1)
	moves := rules.CurrentMoves(p)
	c.moves.Add(key, moves)
	return moves
}

// Stats reports cache hits and misses since creation
func (c *Cache) Stats() (hits, misses uint64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.moves.Len()
}
