package mcts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alphago9/board"
)

// uniformEval hands back a flat policy over the legal candidate list (via
// board.Board.Info) and a fixed value, so a search against it has no signal
// to converge on; it only exercises the tree machinery.
type uniformEval struct{ value float32 }

func (e uniformEval) Evaluate(b *board.Board) ([]float32, float32) {
	policy := make([]float32, board.BVCNT+1)
	_, _, candList := b.Info()
	if len(candList) == 0 {
		return policy, e.value
	}
	p := float32(1) / float32(len(candList))
	for _, rv := range candList {
		policy[rv] = p
	}
	return policy, e.value
}

// biasedEval strongly favours one extended-linear move (near-certain policy
// mass while that move is still available) and always judges Black the
// near-certain winner (0.95 with Black to move, -0.95 with White to move),
// letting a search for Black converge on that move quickly.
type biasedEval struct{ favorite int }

func (e biasedEval) Evaluate(b *board.Board) ([]float32, float32) {
	policy := make([]float32, board.BVCNT+1)
	_, _, candList := b.Info()
	favRv := board.Ev2rv(e.favorite)
	found := false
	for _, rv := range candList {
		if rv == favRv {
			found = true
		}
		policy[rv] = 0.001
	}
	if found {
		policy[favRv] = 10
	} else if len(candList) > 0 {
		policy[candList[0]] = 10
	}
	value := float32(0)
	if b.Turn() == board.Black {
		value = 0.95
	} else {
		value = -0.95
	}
	return policy, value
}

func TestNewTreeAllocatesFullPool(t *testing.T) {
	tr := New(uniformEval{})
	assert.Equal(t, MaxNodeCnt, len(tr.pool))
	for _, nd := range tr.pool {
		assert.True(t, nd.free())
	}
}

func TestCreateNodeIsIdempotentPerTransposition(t *testing.T) {
	tr := New(uniformEval{})
	b := board.New()
	hash, moveCnt, candList := b.Info()
	policy, _ := tr.eval.Evaluate(b)

	id1 := tr.createNode(hash, moveCnt, candList, policy)
	id2 := tr.createNode(hash, moveCnt, candList, policy)
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, tr.nodeCnt)

	nd := tr.pool[id1]
	assert.Greater(t, nd.branchCnt, 0)
	// branches come out sorted by descending prior
	for i := 1; i < nd.branchCnt; i++ {
		assert.GreaterOrEqual(t, nd.prob[i-1], nd.prob[i])
	}
}

func TestNodeHashIndexStaysConsistent(t *testing.T) {
	tr := New(uniformEval{})
	b := board.New()
	hash, moveCnt, candList := b.Info()
	policy, _ := tr.eval.Evaluate(b)
	id := tr.createNode(hash, moveCnt, candList, policy)

	gotID, ok := tr.nodeHashes[hash]
	require.True(t, ok)
	assert.Equal(t, id, gotID)
	assert.Equal(t, tr.pool[id].hash, hash)
}

func TestSearchBranchKeepsCountsConsistent(t *testing.T) {
	tr := New(uniformEval{})
	b := board.New()

	hash, moveCnt, candList := b.Info()
	policy, _ := tr.eval.Evaluate(b)
	tr.rootID = tr.createNode(hash, moveCnt, candList, policy)
	tr.rootMoveCnt = b.MoveCnt()
	tr.Cp = 1.5

	for i := 0; i < 50; i++ {
		scratch := b.Clone()
		var route []branchStep
		tr.searchBranch(scratch, tr.rootID, &route)
	}

	root := tr.pool[tr.rootID]
	sumVisits := 0
	for br := 0; br < root.branchCnt; br++ {
		sumVisits += root.visitCnt[br]
		assert.GreaterOrEqual(t, root.valueWin[br], -float32(root.visitCnt[br]))
		assert.LessOrEqual(t, root.valueWin[br], float32(root.visitCnt[br]))
	}
	assert.Equal(t, 50, root.totalCnt)
	assert.Equal(t, 50, sumVisits)
}

func TestDeleteNodeLeavesAtLeastOneFreeSlot(t *testing.T) {
	tr := New(uniformEval{})
	tr.rootMoveCnt = 1000 // every node below counts as "stale"

	for i := 0; i < MaxNodeCnt/2+10; i++ {
		nd := tr.pool[i]
		nd.moveCnt = 0
		nd.hash = uint64(i)
		tr.nodeHashes[nd.hash] = i
	}
	tr.nodeCnt = MaxNodeCnt/2 + 10

	tr.deleteNode()

	freeCnt := 0
	for _, nd := range tr.pool {
		if nd.free() {
			freeCnt++
		}
	}
	assert.Greater(t, freeCnt, 0)
	assert.Equal(t, 0, len(tr.nodeHashes))
}

func TestSearchConvergesOnForcedWin(t *testing.T) {
	b := board.New()
	favorite, err := board.Str2ev("E5")
	require.NoError(t, err)

	tr := New(biasedEval{favorite: favorite})
	move, winRate := tr.Search(b, 0.05, false, false)

	assert.Equal(t, favorite, move)
	assert.Greater(t, winRate, float32(0.9))
}

// passLeaningEval splits nearly all its policy mass between PASS (the
// larger share) and one alternative move, so those two come first in the
// root's branch order, and always judges the side to move a heavy
// favourite.
type passLeaningEval struct{ alt int }

func (e passLeaningEval) Evaluate(b *board.Board) ([]float32, float32) {
	policy := make([]float32, board.BVCNT+1)
	_, _, candList := b.Info()
	for _, rv := range candList {
		policy[rv] = 0.0001
	}
	policy[board.BVCNT] = 0.6
	if altRv := board.Ev2rv(e.alt); policy[altRv] != 0 {
		policy[altRv] = 0.4
	}
	return policy, 0.9
}

func TestSearchCleanReplacesPassWhenBetterMoveExists(t *testing.T) {
	b := board.New()
	require.NoError(t, b.Play(board.PASS, false))
	alt, err := board.Str2ev("E5")
	require.NoError(t, err)

	tr := New(passLeaningEval{alt: alt})
	tr.MaxPlayouts = 300

	// Seed the root with settled statistics: PASS is the most-visited
	// branch, the alternative is second, and both have positive valueWin.
	// PASS leads by more than 100x with totalCnt over 5000, so Search takes
	// its early exit and decides from these counts alone.
	seedRoot := func() {
		hash, moveCnt, candList := b.Info()
		policy, _ := tr.eval.Evaluate(b)
		root := tr.pool[tr.createNode(hash, moveCnt, candList, policy)]
		for br := 0; br < root.branchCnt; br++ {
			switch root.mov[br] {
			case board.PASS:
				root.visitCnt[br], root.valueWin[br] = 5900, 5000
			case alt:
				root.visitCnt[br], root.valueWin[br] = 50, 40
			}
		}
		root.totalCnt = 5950
	}

	seedRoot()
	move, _ := tr.Search(b, 0, false, true)
	assert.Equal(t, alt, move)

	tr.Clear()
	seedRoot()
	move, _ = tr.Search(b, 0, false, false)
	assert.Equal(t, board.PASS, move)
}

func TestSearchStopsAtPlayoutBudget(t *testing.T) {
	b := board.New()
	tr := New(uniformEval{})
	tr.MaxPlayouts = 50
	move, _ := tr.Search(b, 0, false, false)
	assert.True(t, move == board.PASS || b.Legal(move))
	assert.Equal(t, 50, tr.pool[tr.rootID].totalCnt)
}

func TestStopPonderingHaltsPonderSearch(t *testing.T) {
	b := board.New()
	tr := New(uniformEval{})
	tr.StopPondering()
	move, _ := tr.Search(b, 0, true, false)
	assert.NotEqual(t, board.VNULL, move)
}

func TestAddRootNoiseReweightsPriorsWithoutChangingBranchCount(t *testing.T) {
	b := board.New()
	tr := New(uniformEval{})
	hash, moveCnt, candList := b.Info()
	policy, _ := tr.eval.Evaluate(b)
	tr.rootID = tr.createNode(hash, moveCnt, candList, policy)
	root := tr.pool[tr.rootID]
	before := append([]float32(nil), root.prob[:root.branchCnt]...)

	tr.addRootNoise(1)

	assert.Len(t, root.prob[:root.branchCnt], len(before))
	changed := false
	for i := range before {
		if root.prob[i] != before[i] {
			changed = true
		}
	}
	assert.True(t, changed)
}

func TestSearchWithRootNoiseStillReturnsLegalMove(t *testing.T) {
	b := board.New()
	tr := New(uniformEval{})
	tr.RootNoise = true
	move, _ := tr.Search(b, 0.05, false, false)
	assert.True(t, move == board.PASS || b.Legal(move))
}
