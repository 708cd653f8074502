// FILE: stripchess/internal/engine/repetition.go
package engine

import "stripchess/internal/board"

// Repetitions is an immutable record of the positions seen on one path.
// Push returns an extended copy sharing the tail with its parent, so sibling
// branches never observe each other's entries.
type Repetitions struct {
	node *repNode
}

type repNode struct {
	key  board.Key
	next *repNode
	size int
}

// NewRepetitions seeds the record with prior game history, oldest first
func NewRepetitions(keys ...board.Key) Repetitions {
	var r Repetitions
	for _, k := range keys {
		r = r.Push(k)
	}
	return r
}

func (r Repetitions) Push(k board.Key) Repetitions {
	return Repetitions{node: &repNode{key: k, next: r.node, size: r.Len() + 1}}
}

// Count returns how many times k occurs on the path
func (r Repetitions) Count(k board.Key) int {
	n := 0
	for node := r.node; node != nil; node = node.next {
		if node.key == k {
			n++
		}
	}
	return n
}

func (r Repetitions) Len() int {
	if r.node == nil {
		return 0
	}
	return r.node.size
}
