package mcts

import (
	"github.com/pkg/errors"

	"alphago9/board"
)

var errInvalidConfig = errors.New("mcts: invalid config")

// Config tunes a Tree's exploration behaviour. New seeds a Tree with
// DefaultConfig; Search overwrites Cp itself once per call based on the
// root move count (0.01 in the opening, DefaultConfig's value afterwards)
// at the start of every call, so a Cp set here only applies to
// searchBranch playouts run outside Search.
type Config struct {
	Cp float32
}

// DefaultConfig returns sane defaults.
func DefaultConfig() Config {
	return Config{Cp: 1.5}
}

// IsValid reports whether c can be used to drive a search.
func (c Config) IsValid() bool {
	return c.Cp > 0
}

// Tree is a fixed-capacity, transposition-addressed MCTS node pool plus the
// book-keeping to search it: time budget, root tracking, and eval cache.
type Tree struct {
	Config

	MainTime float32
	Byoyomi  float32
	LeftTime float32

	// MaxPlayouts, when positive, makes Search stop after that many
	// playouts instead of consulting a clock. Browser builds set this;
	// native builds leave it zero and run on the time budget.
	MaxPlayouts int

	// RootNoise asks Search to mix Dirichlet exploration noise into the
	// root's branch priors before playouts start (see addRootNoise).
	// Engine.SelfPlay sets this; a GTP-driven match play does not, since a
	// real opponent shouldn't see self-play's exploration jitter.
	RootNoise bool

	eval Evaluator

	pool        []*node
	nodeCnt     int
	rootID      int
	rootMoveCnt int
	nodeHashes  map[uint64]int
	evalCnt     int

	stopFlag bool // ponder-stop hook; set via StopPondering, polled every 64 playouts
}

// New allocates a Tree with a full MaxNodeCnt node pool and the given
// evaluator wired in as the sole source of policy/value estimates.
func New(eval Evaluator) *Tree {
	t := &Tree{
		Config:     DefaultConfig(),
		eval:       eval,
		pool:       make([]*node, MaxNodeCnt),
		nodeHashes: make(map[uint64]int),
		Byoyomi:    1.0,
	}
	for i := range t.pool {
		t.pool[i] = newNode()
	}
	return t
}

// SetConfig replaces the Tree's Config wholesale, rejecting one that fails
// IsValid so Search is never left with a non-positive Cp.
func (t *Tree) SetConfig(c Config) error {
	if !c.IsValid() {
		return errInvalidConfig
	}
	t.Config = c
	return nil
}

// Clear resets every node to unused and forgets the hash index, as well as
// resetting the time budget and ponder-stop flag.
func (t *Tree) Clear() {
	t.LeftTime = t.MainTime
	for _, nd := range t.pool {
		nd.clear()
	}
	t.nodeCnt = 0
	t.rootID = 0
	t.rootMoveCnt = 0
	for k := range t.nodeHashes {
		delete(t.nodeHashes, k)
	}
	t.evalCnt = 0
	t.stopFlag = false
}

// StopPondering requests that a ponder search end at its next 64-playout
// poll. The flag stays set until a ponder search consumes it or Clear
// resets it; searches with ponder=false never read it.
func (t *Tree) StopPondering() { t.stopFlag = true }

// deleteNode reclaims every node older than the current root once the pool
// is at least half full.
func (t *Tree) deleteNode() {
	if t.nodeCnt < MaxNodeCnt/2 {
		return
	}
	for i, nd := range t.pool {
		if !nd.free() && nd.moveCnt < t.rootMoveCnt {
			if h, ok := t.nodeHashes[nd.hash]; ok && h == i {
				delete(t.nodeHashes, nd.hash)
			}
			nd.clear()
			t.nodeCnt--
		}
	}
}

// createNode finds or allocates the pool slot for the position described by
// info (as returned by board.Board.Info), open-addressing on hash%MaxNodeCnt
// with linear probing, and populates its branches from prob restricted to
// the legal candidate list, ordered by descending prior.
func (t *Tree) createNode(hash uint64, moveCnt int, candList []int, prob []float32) int {
	if id, ok := t.nodeHashes[hash]; ok && t.pool[id].hash == hash && t.pool[id].moveCnt == moveCnt {
		return id
	}

	id := int(hash % MaxNodeCnt)
	for !t.pool[id].free() {
		id++
		if id == MaxNodeCnt {
			id = 0
		}
	}
	t.nodeHashes[hash] = id
	t.nodeCnt++

	nd := t.pool[id]
	nd.clear()
	nd.moveCnt = moveCnt
	nd.hash = hash
	nd.initBranch()

	legal := make(map[int]bool, len(candList))
	for _, rv := range candList {
		legal[rv] = true
	}
	for _, rv := range argsortF32(prob, true) {
		if legal[rv] {
			nd.mov[nd.branchCnt] = board.Rv2ev(rv)
			nd.prob[nd.branchCnt] = prob[rv]
			nd.branchCnt++
		}
	}
	return id
}

// hasNext reports whether branch b of node_id still points at a live,
// transposition-matching child for the given move count.
func (t *Tree) hasNext(nodeID, b, moveCnt int) bool {
	nd := t.pool[nodeID]
	next := nd.nextID[b]
	if next == noNext {
		return false
	}
	child := t.pool[next]
	return nd.nextHash[b] == child.hash && child.moveCnt == moveCnt
}

// branchRate maps a branch's accumulated negamax value into a [0,1]
// win-rate estimate.
func branchRate(nd *node, b int) float32 {
	visits := nd.visitCnt[b]
	if visits < 1 {
		visits = 1
	}
	return nd.valueWin[b]/float32(visits)/2 + 0.5
}
