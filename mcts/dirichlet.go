package mcts

import (
	distrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"
)

// dirichletAlpha is the concentration parameter AlphaGo Zero uses for a
// 9x9-sized action space; smaller boards get noisier, more exploratory
// priors than 19x19's 0.03.
const dirichletAlpha = 0.15

// rootNoiseWeight is how much of the prior at the root is replaced by
// Dirichlet noise, matching the 0.25 mix AlphaGo Zero self-play uses.
const rootNoiseWeight = 0.25

// addRootNoise mixes Dirichlet(dirichletAlpha) exploration noise into the
// root node's branch priors in place, seeded from seed. Only meant to be
// called on the root before a self-play search: it's what keeps self-play
// games from collapsing onto the same opening every game.
func (t *Tree) addRootNoise(seed uint64) {
	root := t.pool[t.rootID]
	if root.branchCnt == 0 {
		return
	}
	alpha := make([]float64, root.branchCnt)
	for i := range alpha {
		alpha[i] = dirichletAlpha
	}
	dist := distmv.NewDirichlet(alpha, distrand.NewSource(seed))
	noise := dist.Rand(nil)
	for b := 0; b < root.branchCnt; b++ {
		root.prob[b] = (1-rootNoiseWeight)*root.prob[b] + rootNoiseWeight*float32(noise[b])
	}
}
