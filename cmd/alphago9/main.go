// Command alphago9 is the CLI launcher: it loads the dual-head network
// and either drops into the GTP loop or runs a self-play game.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"alphago9"
	"alphago9/board"
	dual "alphago9/eval/dualnet"
	"alphago9/gtp"
)

var (
	self       = flag.Bool("self", false, "self play")
	quick      = flag.Bool("quick", false, "no MCTS, one-shot argmax of root policy")
	random     = flag.Bool("random", false, "random rollouts only")
	clean      = flag.Bool("clean", false, "try to clean up all dead stones")
	mainTime   = flag.Float64("main_time", 0, "main time (sec), default 0")
	byoyomi    = flag.Float64("byoyomi", 3, "byoyomi (sec), default 3 (1 for self play)")
	modelPath  = flag.String("model", "frozen_model.pb", "path to the frozen dual-head checkpoint")
	renderPath = flag.String("render", "", "write a PNG of the final position to this path")
	graphPath  = flag.String("graph", "", "write a Graphviz DOT of the final search tree to this path")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	byoyomiSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "byoyomi" {
			byoyomiSet = true
		}
	})

	nn, err := dual.Load(*modelPath, dual.DefaultConfig())
	if err != nil {
		log.Fatalf("alphago9: cannot load model %s: %+v", *modelPath, err)
	}
	inf, err := dual.Infer(nn, true)
	if err != nil {
		log.Fatalf("alphago9: cannot build inference VM: %+v", err)
	}
	defer inf.Close()

	engine := alphago9.New(dual.NewEvaluator(inf))
	engine.Quick = *quick
	engine.Random = *random
	engine.Clean = *clean

	if *self {
		byo := float32(*byoyomi)
		if !byoyomiSet {
			byo = 1
		}
		engine.SetTime(float32(*mainTime), byo)

		score := engine.SelfPlay(0)
		engine.Board.ShowBoard(os.Stderr)
		engine.Tree.PrintRootInfo(os.Stderr)
		log.Printf("result: %s", resultString(score))

		if *renderPath != "" {
			writeRender(engine.Board, *renderPath)
		}
		if *graphPath != "" {
			writeGraph(engine, *graphPath)
		}
		return
	}

	engine.SetTime(float32(*mainTime), float32(*byoyomi))
	server := gtp.New(engine)
	if err := server.Serve(os.Stdin, os.Stdout); err != nil {
		log.Fatalf("alphago9: gtp loop: %+v", err)
	}
}

func resultString(score float32) string {
	if score == 0 {
		return "Draw"
	}
	winner := "B"
	if score < 0 {
		winner = "W"
		score = -score
	}
	return fmt.Sprintf("%s+%.1f", winner, score)
}

func writeRender(b *board.Board, path string) {
	f, err := os.Create(path)
	if err != nil {
		log.Printf("alphago9: cannot write render %s: %v", path, err)
		return
	}
	defer f.Close()
	if err := b.RenderPNG(f); err != nil {
		log.Printf("alphago9: render failed: %v", err)
	}
}

func writeGraph(engine *alphago9.Engine, path string) {
	dot, err := engine.Tree.RootDotGraph(4)
	if err != nil {
		log.Printf("alphago9: graph failed: %v", err)
		return
	}
	if err := os.WriteFile(path, []byte(dot), 0644); err != nil {
		log.Printf("alphago9: cannot write graph %s: %v", path, err)
	}
}
