package dual

import (
	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
	"gorgonia.org/vecf32"
)

// Inferer runs one Dual network through a dedicated tape machine. A Tree
// calls Infer exactly once per leaf evaluation; Close releases the VM.
type Inferer struct {
	nn      *Dual
	vm      G.VM
	fwdOnly bool
}

// Infer builds a VM bound to nn's graph. fwdOnly requests a graph with no
// gradient tape, the shape used for genmove/self-play inference rather
// than training.
func Infer(nn *Dual, fwdOnly bool) (*Inferer, error) {
	if nn.g == nil || nn.x == nil {
		return nil, errors.New("dual: network not initialised, call Init first")
	}
	var vm G.VM
	if fwdOnly {
		vm = G.NewTapeMachine(nn.g)
	} else {
		vm = G.NewTapeMachine(nn.g, G.BindDualValues(nn.Learnables()...))
	}
	return &Inferer{nn: nn, vm: vm, fwdOnly: fwdOnly}, nil
}

// Infer runs the network forward on a single BVCNT*FeatureCnt-long,
// channel-major feature vector (Features x Height x Width, i.e.
// board.Board.Feature's point-major output after the transpose
// Evaluator.Evaluate applies) and returns the policy prior over BVCNT+1
// moves and the scalar value.
func (inf *Inferer) Infer(a []float32) (policy []float32, value float32, err error) {
	c := inf.nn.conf
	input := tensor.New(tensor.WithBacking(a), tensor.WithShape(c.BatchSize, c.Features, c.Height, c.Width))
	if err = G.Let(inf.nn.x, input); err != nil {
		return nil, 0, errors.Wrap(err, "dual: bind input")
	}
	if err = inf.vm.RunAll(); err != nil {
		return nil, 0, errors.Wrap(err, "dual: run forward pass")
	}
	defer inf.vm.Reset()

	// Copy out of the VM's backing storage before Reset recycles it, and
	// renormalise so the priors sum to one even when a checkpoint's softmax
	// drifts from it numerically.
	raw := inf.nn.policy.Value().Data().([]float32)
	policy = make([]float32, len(raw))
	copy(policy, raw)
	if sum := vecf32.Sum(policy); sum > 0 {
		vecf32.Scale(policy, 1/sum)
	}

	value = inf.nn.value.Value().Data().([]float32)[0]
	return policy, value, nil
}

// ExecLog is a debugging escape hatch: on a failed Infer, the caller can
// dump the tape machine's instruction trace.
func (inf *Inferer) ExecLog() string {
	if tm, ok := inf.vm.(*G.TapeMachine); ok {
		return tm.String()
	}
	return ""
}

// Close releases the tape machine's resources.
func (inf *Inferer) Close() error {
	return inf.vm.Close()
}
