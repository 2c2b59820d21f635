// Command alphago9web is the browser build, compiled with GopherJS. It
// exports a global think(pv, budget) function the host page calls with the
// game so far (a JS array of extended-linear vertices) and a playout
// budget, and it answers {mov, win_rate}. The host page in turn provides
// the evaluate() function webeval calls for every leaf.
package main

import (
	"github.com/gopherjs/gopherjs/js"

	"alphago9"
	"alphago9/eval/webeval"
)

func main() {
	engine := alphago9.New(webeval.New("evaluate"))
	js.Global.Set("think", think(engine))
}

// think replays pv onto a cleared board and searches with a playout-count
// budget; the browser build never consults a clock.
func think(engine *alphago9.Engine) func(pv []int, budget int) map[string]interface{} {
	return func(pv []int, budget int) map[string]interface{} {
		engine.Clear()
		for _, v := range pv {
			_ = engine.Play(v, false)
		}
		engine.Tree.MaxPlayouts = budget
		move, winRate := engine.GenMove(0)
		return map[string]interface{}{
			"mov":      move,
			"win_rate": winRate,
		}
	}
}
