package gtp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alphago9"
	"alphago9/board"
)

// stubEval hands back a uniform policy over whatever's legal and a fixed
// value, enough to drive genmove/play without a trained network.
type stubEval struct{}

func (stubEval) Evaluate(b *board.Board) (policy []float32, value float32) {
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

func serveOne(t *testing.T, s *Server, cmd string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, s.Serve(strings.NewReader(cmd+"\n"), &out))
	return out.String()
}

func TestProtocolBasics(t *testing.T) {
	engine := alphago9.New(stubEval{})
	s := New(engine)

	assert.Equal(t, "= 2\n\n", serveOne(t, s, "protocol_version"))
	assert.Equal(t, "= AlphaGo9\n\n", serveOne(t, s, "name"))
	assert.Equal(t, "= 1.0\n\n", serveOne(t, s, "version"))
}

func TestBoardsizeAndKomiValidation(t *testing.T) {
	engine := alphago9.New(stubEval{})
	s := New(engine)

	assert.Equal(t, "= \n\n", serveOne(t, s, "boardsize 9"))
	assert.True(t, strings.HasPrefix(serveOne(t, s, "boardsize 19"), "? "))
	assert.Equal(t, "= \n\n", serveOne(t, s, "komi 7"))
	assert.True(t, strings.HasPrefix(serveOne(t, s, "komi 6.5"), "? "))
}

func TestPlayThenShowboardThenUndo(t *testing.T) {
	engine := alphago9.New(stubEval{})
	s := New(engine)

	var out bytes.Buffer
	cmds := "play B E5\nshowboard\nundo\n"
	require.NoError(t, s.Serve(strings.NewReader(cmds), &out))
	assert.Equal(t, 0, engine.Board.MoveCnt())
}

func TestGenmoveRespondsWithALegalVertex(t *testing.T) {
	engine := alphago9.New(stubEval{})
	engine.Tree.MaxPlayouts = 100 // keep the search budget small and deterministic
	s := New(engine)

	resp := serveOne(t, s, "genmove B")
	require.True(t, strings.HasPrefix(resp, "= "))
	label := strings.TrimSpace(strings.TrimPrefix(resp, "= "))
	assert.NotEqual(t, "resign", label)
	assert.Equal(t, 1, engine.Board.MoveCnt())
}

func TestUnknownCommandReportsError(t *testing.T) {
	engine := alphago9.New(stubEval{})
	s := New(engine)
	assert.Equal(t, "? unknown_command\n\n", serveOne(t, s, "frobnicate"))
}

func TestQuitStopsTheLoop(t *testing.T) {
	engine := alphago9.New(stubEval{})
	s := New(engine)
	var out bytes.Buffer
	// A command after "quit" must never be processed.
	err := s.Serve(strings.NewReader("quit\nname\n"), &out)
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "AlphaGo9")
}
