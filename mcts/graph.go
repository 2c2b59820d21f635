package mcts

import (
	"fmt"

	"github.com/awalterschulze/gographviz"

	"alphago9/board"
)

// DotGraph renders the subtree rooted at nodeID as Graphviz DOT, one
// labelled node per visited branch, down to maxDepth plies. Branches with
// zero visits are skipped: an unvisited branch has nothing to show besides
// its prior, which PrintInfo already reports.
func (t *Tree) DotGraph(nodeID, maxDepth int) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName("pv"); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}
	t.addDotNodes(g, nodeID, fmt.Sprintf("n%d", nodeID), maxDepth)
	return g.String(), nil
}

// RootDotGraph renders DotGraph starting from the current root, for
// callers outside this package that only ever have the root to graph from
// (the CLI's --graph post-mortem).
func (t *Tree) RootDotGraph(maxDepth int) (string, error) {
	return t.DotGraph(t.rootID, maxDepth)
}

func (t *Tree) addDotNodes(g *gographviz.Graph, nodeID int, name string, depthLeft int) {
	nd := t.pool[nodeID]
	if err := g.AddNode("pv", name, nil); err != nil {
		return
	}
	if depthLeft <= 0 {
		return
	}
	for b := 0; b < nd.branchCnt; b++ {
		if nd.visitCnt[b] == 0 {
			continue
		}
		childName := fmt.Sprintf("%s_%d", name, b)
		label := fmt.Sprintf("\"%s\\nN=%d Q=%.2f\"", board.Ev2str(nd.mov[b]), nd.visitCnt[b], branchRate(nd, b))
		if err := g.AddNode("pv", childName, map[string]string{"label": label}); err != nil {
			continue
		}
		if err := g.AddEdge(name, childName, true, nil); err != nil {
			continue
		}
		if t.hasNext(nodeID, b, nd.moveCnt+1) {
			t.addDotNodes(g, nd.nextID[b], childName, depthLeft-1)
		}
	}
}
