package mcts

import (
	"fmt"
	"io"
	"time"

	"github.com/chewxy/math32"

	"alphago9/board"
)

// branchStep records one (node, branch) choice along a playout for
// diagnostic replay; the search loop pushes to it but nothing downstream
// reads it back yet.
type branchStep struct {
	nodeID int
	branch int
}

// searchBranch descends one playout from nodeID, expanding a fresh leaf
// when it reaches one, and backs up the negamax value along the route it
// took. It mutates b in place and returns the playout's value from the
// perspective of the side to move at nodeID.
func (t *Tree) searchBranch(b *board.Board, nodeID int, route *[]branchStep) float32 {
	nd := t.pool[nodeID]

	ndRate := float32(0)
	if nd.totalCnt != 0 {
		ndRate = nd.totalValue / float32(nd.totalCnt)
	}
	cpsv := t.Cp * math32.Sqrt(float32(nd.totalCnt))

	best := 0
	bestActionValue := math32.Inf(-1)
	for br := 0; br < nd.branchCnt; br++ {
		rate := ndRate
		if nd.visitCnt[br] != 0 {
			rate = nd.valueWin[br] / float32(nd.visitCnt[br])
		}
		actionValue := rate + cpsv*nd.prob[br]/float32(nd.visitCnt[br]+1)
		if actionValue > bestActionValue {
			bestActionValue = actionValue
			best = br
		}
	}

	*route = append(*route, branchStep{nodeID, best})
	nextID := nd.nextID[best]
	nextMove := nd.mov[best]
	headNode := !t.hasNext(nodeID, best, b.MoveCnt()+1) ||
		nd.visitCnt[best] < ExpandCnt ||
		b.MoveCnt() > board.BVCNT*2 ||
		(nextMove == board.PASS && b.PrevMove() == board.PASS)

	_ = b.Play(nextMove, false)

	var value float32
	if headNode {
		if nd.evaluated[best] {
			value = nd.value[best]
		} else {
			prob, leafValue := t.eval.Evaluate(b)
			t.evalCnt++
			value = -leafValue
			nd.value[best] = value
			nd.evaluated[best] = true

			if float32(t.nodeCnt) > 0.85*float32(MaxNodeCnt) {
				t.deleteNode()
			}

			hash, moveCnt, candList := b.Info()
			nextID = t.createNode(hash, moveCnt, candList, prob)
			nd.nextID[best] = nextID
			nd.nextHash[best] = hash

			child := t.pool[nextID]
			child.totalValue -= nd.valueWin[best]
			child.totalCnt += nd.visitCnt[best]
		}
	} else {
		value = -t.searchBranch(b, nextID, route)
	}

	nd.totalValue += value
	nd.totalCnt++
	nd.valueWin[best] += value
	nd.visitCnt[best]++
	return value
}

// Search runs playouts from b until the time budget (or an early-exit
// condition) is reached, then returns the chosen move in extended-linear
// coordinates and a [0,1] win-rate estimate. timeBudget == 0 asks Search to
// derive a budget from MainTime/Byoyomi/LeftTime the way the native build
// does; a positive Tree.MaxPlayouts replaces the clock with a playout
// count. ponder always runs playouts (no early exit) and also stops once
// StopPondering has been called, checked at the same 64-playout poll as
// the time budget, which still applies.
// clean swaps a PASS choice for the runner-up branch when both branches
// have accumulated valueWin of the same sign.
func (t *Tree) Search(b *board.Board, timeBudget float32, ponder, clean bool) (move int, winRate float32) {
	start := time.Now()
	prob, _ := t.eval.Evaluate(b)
	hash, moveCnt, candList := b.Info()
	t.rootID = t.createNode(hash, moveCnt, candList, prob)
	t.rootMoveCnt = b.MoveCnt()
	if b.MoveCnt() < 8 {
		t.Cp = 0.01
	} else {
		t.Cp = DefaultConfig().Cp
	}

	root := t.pool[t.rootID]
	if root.branchCnt <= 1 {
		return board.PASS, 0.5
	}

	if t.RootNoise {
		t.addRootNoise(uint64(time.Now().UnixNano()))
	}

	t.deleteNode()

	order := argsortInt(root.visitCnt[:root.branchCnt], true)
	best, second := order[0], order[1]
	winRate = branchRate(root, best)

	standOut := root.totalCnt > 5000 && root.visitCnt[best] > root.visitCnt[second]*100
	almostWin := root.totalCnt > 5000 && (winRate < 0.1 || winRate > 0.9)

	if ponder || !(standOut || almostWin) {
		budget := timeBudget
		if budget == 0 {
			if t.MainTime == 0 || t.LeftTime < t.Byoyomi*2 {
				budget = maxF32(t.Byoyomi, 1.0)
			} else {
				rem := float32(50 - moveCnt)
				if rem < 0 {
					rem = 0
				}
				budget = t.LeftTime / (55.0 + rem)
			}
		}

		t.evalCnt = 0
		scratch := board.New()
		searchIdx := 1
		for {
			b.CopyTo(scratch)
			var route []branchStep
			t.searchBranch(scratch, t.rootID, &route)
			searchIdx++
			if t.MaxPlayouts > 0 && searchIdx > t.MaxPlayouts {
				break
			}
			if searchIdx%64 == 0 {
				if ponder && t.stopFlag {
					t.stopFlag = false
					break
				}
				if t.MaxPlayouts == 0 && time.Since(start).Seconds() > float64(budget) {
					break
				}
			}
		}

		order = argsortInt(root.visitCnt[:root.branchCnt], true)
		best, second = order[0], order[1]
	}

	move = root.mov[best]
	winRate = branchRate(root, best)

	if clean && move == board.PASS && root.valueWin[best]*root.valueWin[second] > 0 {
		move = root.mov[second]
		winRate = branchRate(root, second)
	}

	if !ponder {
		elapsed := float32(time.Since(start).Seconds())
		t.LeftTime = maxF32(t.LeftTime-elapsed, 0)
	}
	return move, winRate
}

// bestSequence renders the principal variation starting at headMove as a
// human-readable "A1->B2->pass"-style string, following up to 7 plies.
func (t *Tree) bestSequence(nodeID, headMove int) string {
	seq := board.Ev2str(headMove)
	nextMove := headMove
	for i := 0; i < 7; i++ {
		nd := t.pool[nodeID]
		if nextMove == board.PASS || nd.branchCnt < 1 {
			break
		}
		best := argmaxIntSlice(nd.visitCnt[:nd.branchCnt])
		if nd.visitCnt[best] == 0 {
			break
		}
		nextMove = nd.mov[best]
		seq += "->" + board.Ev2str(nextMove)
		if !t.hasNext(nodeID, best, nd.moveCnt+1) {
			break
		}
		nodeID = nd.nextID[best]
	}
	return seq
}

// PrintInfo writes the per-branch visit/rate/value/prob table for nodeID's
// top candidates, each with its best-sequence continuation, in the same
// shape as the native build's stderr search report.
func (t *Tree) PrintInfo(w io.Writer, nodeID int) {
	nd := t.pool[nodeID]
	order := argsortInt(nd.visitCnt[:nd.branchCnt], true)
	fmt.Fprintln(w, "|move|count  |rate |value|prob | best sequence")
	limit := len(order)
	if limit > 9 {
		limit = 9
	}
	for i := 0; i < limit; i++ {
		m := order[i]
		visits := nd.visitCnt[m]
		if visits == 0 {
			break
		}
		rate := branchRate(nd, m) * 100
		value := (nd.value[m]/2 + 0.5) * 100
		fmt.Fprintf(w, "|%4s|%7d|%5.1f|%5.1f|%5.1f| %s\n",
			board.Ev2str(nd.mov[m]), visits, rate, value, nd.prob[m]*100,
			t.bestSequence(nd.nextID[m], nd.mov[m]))
	}
}

// PrintRootInfo writes the current root's search report to w, the same
// table PrintInfo renders for any node. Callers outside this package (the
// GTP loop's genmove, the CLI's self-play post-mortem) only ever have the
// root to report on, since rootID itself is not exported.
func (t *Tree) PrintRootInfo(w io.Writer) {
	t.PrintInfo(w, t.rootID)
}

func argmaxIntSlice(a []int) int {
	best := 0
	for i, v := range a {
		if v > a[best] {
			best = i
		}
	}
	return best
}

func maxF32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
