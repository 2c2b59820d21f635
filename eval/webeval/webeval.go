// Package webeval is the browser-embedded Evaluator: it calls a host page
// JS function `evaluate(featureBuffer) -> [policy, value]` instead of
// running a local network, bridging into the DOM/JS runtime with
// gopherjs/js. Build with GopherJS.
package webeval

import (
	"github.com/gopherjs/gopherjs/js"

	"alphago9/board"
)

// Evaluator calls a JS-global `evaluate` function for every leaf, blocking
// the calling goroutine until it returns. One evaluation is the quantum of
// work; there is no async Promise path.
type Evaluator struct {
	fn  *js.Object // the host page's `evaluate` function
	buf []float32  // scratch feature tensor, reused across calls
}

// New binds to the global JS function named fnName (typically "evaluate").
func New(fnName string) *Evaluator {
	return &Evaluator{
		fn:  js.Global.Get(fnName),
		buf: make([]float32, board.BVCNT*board.FeatureCnt),
	}
}

// Evaluate extracts b's feature tensor, hands it to the host as a
// Float32Array, and unpacks the returned [policy, value] pair.
func (e *Evaluator) Evaluate(b *board.Board) (policy []float32, value float32) {
	b.Feature(e.buf)
	input := js.Global.Get("Float32Array").New(len(e.buf))
	for i, f := range e.buf {
		input.SetIndex(i, f)
	}

	result := e.fn.Invoke(input)
	policyArr := result.Index(0)
	valueArr := result.Index(1)

	policy = make([]float32, board.BVCNT+1)
	for i := range policy {
		policy[i] = float32(policyArr.Index(i).Float())
	}
	value = float32(valueArr.Index(0).Float())
	return policy, value
}
