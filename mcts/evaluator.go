package mcts

import "alphago9/board"

// Evaluator is the dual-head network contract the tree consumes: given a
// board it returns a policy prior over all BVCNT+1 moves (PASS last) and a
// scalar value estimate from the side-to-move's perspective.
type Evaluator interface {
	Evaluate(b *board.Board) (policy []float32, value float32)
}
