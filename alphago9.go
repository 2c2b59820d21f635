// Package alphago9 wires a board.Board, an mcts.Evaluator and an mcts.Tree
// together into the Engine a GTP server, SGF loader, or CLI launcher
// drives: GenMove, Play, Undo, SelfPlay. A move decision flows
// Board -> Evaluator (once at root) -> repeated playouts -> Tree picks a
// move by visit count -> caller plays it on the real Board.
package alphago9

import (
	"math/rand"
	"time"

	"alphago9/board"
	"alphago9/mcts"
)

// Engine owns the live game state: the real Board, the search Tree, and
// the launch-time mode flags threaded from the CLI.
type Engine struct {
	Board *board.Board
	Tree  *mcts.Tree

	eval mcts.Evaluator
	rnd  *rand.Rand

	Quick  bool // genmove does a one-shot argmax of the root policy, no MCTS
	Random bool // genmove plays a random legal move, no network call at all
	Clean  bool // ask Tree.Search to try to clean up dead stones instead of passing
}

// New wires eval into a fresh Board and Tree.
func New(eval mcts.Evaluator) *Engine {
	return &Engine{
		Board: board.New(),
		Tree:  mcts.New(eval),
		eval:  eval,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetTime configures the Tree's main-time/byoyomi budget, matching GTP's
// time_settings.
func (e *Engine) SetTime(mainTime, byoyomi float32) {
	e.Tree.MainTime = mainTime
	e.Tree.Byoyomi = byoyomi
	e.Tree.LeftTime = mainTime
}

// SetLeftTime updates the clock's remaining main time, matching GTP's
// time_left (only the seconds field is read).
func (e *Engine) SetLeftTime(seconds float32) {
	e.Tree.LeftTime = seconds
}

// Clear resets both the Board and the Tree for a new game.
func (e *Engine) Clear() {
	e.Board.Clear()
	e.Tree.Clear()
}

// Play plays v on the live Board. notFillEye mirrors board.Board.Play;
// GTP's own play/undo handlers call this with false since the protocol
// gives no way to reject a move.
func (e *Engine) Play(v int, notFillEye bool) error {
	return e.Board.Play(v, notFillEye)
}

// Undo replays the move history minus its last entry onto a cleared
// Board and Tree, the only way to retract a move given Board's append-
// only history.
func (e *Engine) Undo() error {
	history := e.Board.History()
	if len(history) > 0 {
		history = history[:len(history)-1]
	}
	replay := make([]int, len(history))
	copy(replay, history)

	e.Clear()
	for _, v := range replay {
		if err := e.Board.Play(v, false); err != nil {
			return err
		}
	}
	return nil
}

// GenMove picks the engine's next move for the side to move, honouring
// Quick/Random, and returns it alongside a [0,1] win-rate estimate (0.5
// for the modes that bypass search). It does not play the move; callers
// decide whether/how to apply it (GTP's genmove plays it immediately,
// SelfPlay does too).
func (e *Engine) GenMove(timeBudget float32) (move int, winRate float32) {
	switch {
	case e.Random:
		return e.randomCandidate(), 0.5
	case e.Quick:
		policy, _ := e.eval.Evaluate(e.Board)
		return board.Rv2ev(mcts.ArgmaxF32(policy)), 0.5
	default:
		return e.Tree.Search(e.Board, timeBudget, false, e.Clean)
	}
}

// randomCandidate previews RandomPlay's choice without mutating Board,
// since GenMove's contract is "decide, don't play".
func (e *Engine) randomCandidate() int {
	scratch := board.New()
	e.Board.CopyTo(scratch)
	return scratch.RandomPlay(e.rnd)
}

// SelfPlay drives the engine against itself until two consecutive passes
// or the move count reaches 2*BVCNT plies, mutating Board and returning
// the final Chinese-style score (positive favours Black). Each move comes
// from GenMove, so Random and Quick select the move as they do there;
// with neither set, Tree.Search picks it.
func (e *Engine) SelfPlay(timeBudget float32) float32 {
	e.Tree.RootNoise = true
	defer func() { e.Tree.RootNoise = false }()

	for e.Board.MoveCnt() < 2*board.BVCNT {
		prev := e.Board.PrevMove()
		move, _ := e.GenMove(timeBudget)
		_ = e.Board.Play(move, false)
		if prev == board.PASS && move == board.PASS {
			break
		}
	}
	return e.Board.Score()
}
