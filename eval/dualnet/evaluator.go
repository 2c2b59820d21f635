package dual

import (
	"encoding/gob"
	"os"

	"github.com/pkg/errors"

	"alphago9/board"
)

// Evaluator adapts an Inferer to the board-shaped capability mcts.Tree
// consumes: Evaluate(*board.Board) (policy, value). It satisfies
// mcts.Evaluator structurally without dualnet importing mcts.
type Evaluator struct {
	inf *Inferer
	buf []float32 // point-major scratch tensor, board.Board.Feature's own layout
	chw []float32 // buf transposed into the Features x Height x Width layout Conv2d expects
}

// NewEvaluator wraps an already-initialised Inferer.
func NewEvaluator(inf *Inferer) *Evaluator {
	return &Evaluator{
		inf: inf,
		buf: make([]float32, board.BVCNT*board.FeatureCnt),
		chw: make([]float32, board.BVCNT*board.FeatureCnt),
	}
}

// Evaluate extracts b's feature tensor and runs it through the network,
// returning the policy prior (length BVCNT+1, PASS last) and the scalar
// value from the side to move's perspective.
func (e *Evaluator) Evaluate(b *board.Board) (policy []float32, value float32) {
	b.Feature(e.buf)
	pointMajorToCHW(e.buf, e.chw, board.FeatureCnt, board.BSIZE, board.BSIZE)
	policy, value, err := e.inf.Infer(e.chw)
	if err != nil {
		panic(err)
	}
	return policy, value
}

// pointMajorToCHW transposes src, laid out point-major (board.Board.Feature's
// p*featureCnt+f indexing, a point's features held together), into dst laid
// out channel-major (f*height*width+p, a feature plane held together) — the
// NCHW order gorgonia's Conv2d expects its input tensor in.
func pointMajorToCHW(src, dst []float32, featureCnt, height, width int) {
	for p := 0; p < height*width; p++ {
		for f := 0; f < featureCnt; f++ {
			dst[f*height*width+p] = src[p*featureCnt+f]
		}
	}
}

// Close releases the underlying Inferer's tape machine.
func (e *Evaluator) Close() error {
	return e.inf.Close()
}

// Load builds and initialises a Dual for conf, then decodes weights gob-
// encoded at path into it. The on-disk format is a gob stream of the
// learnable tensors in Learnables order.
func Load(path string, conf Config) (*Dual, error) {
	nn := New(conf)
	if err := nn.Init(); err != nil {
		return nil, errors.Wrap(err, "dual: init network before load")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dual: open %s", path)
	}
	defer f.Close()

	dec := gob.NewDecoder(f)
	for _, n := range nn.Learnables() {
		if err := dec.Decode(n.Value()); err != nil {
			return nil, errors.Wrapf(err, "dual: decode weight %s", n.Name())
		}
	}
	return nn, nil
}

// Save gob-encodes nn's learnable weights, in Learnables order, to path.
func Save(path string, nn *Dual) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "dual: open %s", path)
	}
	defer f.Close()

	enc := gob.NewEncoder(f)
	for _, n := range nn.Learnables() {
		if err := enc.Encode(n.Value()); err != nil {
			return errors.Wrapf(err, "dual: encode weight %s", n.Name())
		}
	}
	return nil
}
