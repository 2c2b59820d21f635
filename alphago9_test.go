package alphago9

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alphago9/board"
)

// uniformEval hands back a flat policy over whatever board.Info says is a
// legal candidate and a fixed value; enough to exercise Engine's wiring
// without a trained network.
type uniformEval struct{}

func (uniformEval) Evaluate(b *board.Board) (policy []float32, value float32) {
	policy = make([]float32, board.BVCNT+1)
	_, _, candList := b.Info()
	if len(candList) == 0 {
		return policy, 0
	}
	p := float32(1) / float32(len(candList))
	for _, rv := range candList {
		policy[rv] = p
	}
	return policy, 0
}

func TestNewWiresBoardAndTree(t *testing.T) {
	e := New(uniformEval{})
	assert.Equal(t, 0, e.Board.MoveCnt())
	assert.NotNil(t, e.Tree)
}

func TestPlayAdvancesBoard(t *testing.T) {
	e := New(uniformEval{})
	v, err := board.Str2ev("E5")
	require.NoError(t, err)
	require.NoError(t, e.Play(v, false))
	assert.Equal(t, 1, e.Board.MoveCnt())
}

func TestUndoRetractsLastMove(t *testing.T) {
	e := New(uniformEval{})
	v, _ := board.Str2ev("E5")
	require.NoError(t, e.Play(v, false))
	require.NoError(t, e.Play(board.PASS, false))
	require.NoError(t, e.Undo())
	assert.Equal(t, 1, e.Board.MoveCnt())
	assert.Equal(t, []int{v}, e.Board.History())
}

func TestGenMoveRandomNeverMutatesBoardDirectly(t *testing.T) {
	e := New(uniformEval{})
	e.Random = true
	before := e.Board.MoveCnt()
	move, winRate := e.GenMove(0)
	assert.Equal(t, before, e.Board.MoveCnt())
	assert.Equal(t, float32(0.5), winRate)
	assert.True(t, move == board.PASS || e.Board.Legal(move))
}

func TestGenMoveQuickPicksArgmaxOfRootPolicy(t *testing.T) {
	e := New(uniformEval{})
	e.Quick = true
	move, winRate := e.GenMove(0)
	assert.Equal(t, float32(0.5), winRate)
	assert.True(t, e.Board.Legal(move) || move == board.PASS)
	// Uniform policy over the candidates: the first index, A1, wins the argmax.
	assert.Equal(t, board.Rv2ev(0), move)
}

func TestSelfPlayReachesEndOfGameScore(t *testing.T) {
	e := New(uniformEval{})
	e.Random = true
	score := e.SelfPlay(0)
	assert.Equal(t, e.Board.Score(), score)
	assert.LessOrEqual(t, e.Board.MoveCnt(), 2*board.BVCNT)
}
