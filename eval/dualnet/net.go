package dual

import (
	"fmt"

	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Dual is the policy+value network: a stem convolution, SharedLayers
// residual blocks, then two heads. Its input placeholder node is named "x";
// the policy and value fields hold the two head outputs (gorgonia names
// its own intermediate nodes, so the heads are reached through these Go
// fields rather than by graph node name).
type Dual struct {
	g    *G.ExprGraph
	conf Config

	x *G.Node // input, shape (BatchSize, Features, Height, Width)

	stemW, stemB *G.Node
	blockW       []*G.Node // two conv weights per residual block, flattened
	blockB       []*G.Node

	policyW, policyB *G.Node
	valueW1, valueB1 *G.Node
	valueW2, valueB2 *G.Node

	policy *G.Node // pfc/policy, shape (BatchSize, ActionSpace)
	value  *G.Node // vfc/value, shape (BatchSize, 1)
}

// New builds an uninitialised Dual for conf. Call Init to wire the graph.
func New(conf Config) *Dual {
	return &Dual{conf: conf, g: G.NewGraph()}
}

// Graph exposes the underlying expression graph. Save/Load do not use it;
// they walk Learnables.
func (d *Dual) Graph() *G.ExprGraph { return d.g }

// Learnables returns every trainable node in definition order, the same
// order Save/Load walk when (de)serialising weights.
func (d *Dual) Learnables() G.Nodes {
	ns := G.Nodes{d.stemW, d.stemB}
	ns = append(ns, d.blockW...)
	ns = append(ns, d.blockB...)
	ns = append(ns, d.policyW, d.policyB, d.valueW1, d.valueB1, d.valueW2, d.valueB2)
	return ns
}

// Init constructs the graph's nodes: a stem conv, conf.SharedLayers
// residual blocks, and the policy/value heads. Weights are Glorot
// initialised, biases start at zero.
func (d *Dual) Init() error {
	c := d.conf
	if !c.IsValid() {
		return errors.Errorf("dual: invalid config %+v", c)
	}

	d.x = G.NewTensor(d.g, tensor.Float32, 4,
		G.WithShape(c.BatchSize, c.Features, c.Height, c.Width), G.WithName("x"))

	d.stemW = G.NewTensor(d.g, tensor.Float32, 4,
		G.WithShape(c.K, c.Features, 3, 3), G.WithName("stem.w"), G.WithInit(G.GlorotN(1.0)))
	d.stemB = G.NewTensor(d.g, tensor.Float32, 4,
		G.WithShape(1, c.K, 1, 1), G.WithName("stem.b"), G.WithInit(G.Zeroes()))

	h, err := convBlock(d.x, d.stemW, d.stemB)
	if err != nil {
		return errors.Wrap(err, "dual: stem conv")
	}

	for i := 0; i < c.SharedLayers; i++ {
		w1 := G.NewTensor(d.g, tensor.Float32, 4,
			G.WithShape(c.K, c.K, 3, 3), G.WithName(fmt.Sprintf("res%d.w1", i)), G.WithInit(G.GlorotN(1.0)))
		b1 := G.NewTensor(d.g, tensor.Float32, 4,
			G.WithShape(1, c.K, 1, 1), G.WithName(fmt.Sprintf("res%d.b1", i)), G.WithInit(G.Zeroes()))
		w2 := G.NewTensor(d.g, tensor.Float32, 4,
			G.WithShape(c.K, c.K, 3, 3), G.WithName(fmt.Sprintf("res%d.w2", i)), G.WithInit(G.GlorotN(1.0)))
		b2 := G.NewTensor(d.g, tensor.Float32, 4,
			G.WithShape(1, c.K, 1, 1), G.WithName(fmt.Sprintf("res%d.b2", i)), G.WithInit(G.Zeroes()))
		d.blockW = append(d.blockW, w1, w2)
		d.blockB = append(d.blockB, b1, b2)

		h, err = residualBlock(h, w1, b1, w2, b2)
		if err != nil {
			return errors.Wrapf(err, "dual: residual block %d", i)
		}
	}

	policy, err := d.policyHead(h)
	if err != nil {
		return errors.Wrap(err, "dual: policy head")
	}
	d.policy = policy

	value, err := d.valueHead(h)
	if err != nil {
		return errors.Wrap(err, "dual: value head")
	}
	d.value = value

	return nil
}

func convBlock(in, w, b *G.Node) (*G.Node, error) {
	conv, err := G.Conv2d(in, w, tensor.Shape{3, 3}, []int{1, 1}, []int{1, 1}, []int{1, 1})
	if err != nil {
		return nil, err
	}
	biased, err := G.BroadcastAdd(conv, b, nil, []byte{0, 2, 3})
	if err != nil {
		return nil, err
	}
	return G.Rectify(biased)
}

func residualBlock(in, w1, b1, w2, b2 *G.Node) (*G.Node, error) {
	h1, err := convBlock(in, w1, b1)
	if err != nil {
		return nil, err
	}
	conv2, err := G.Conv2d(h1, w2, tensor.Shape{3, 3}, []int{1, 1}, []int{1, 1}, []int{1, 1})
	if err != nil {
		return nil, err
	}
	biased, err := G.BroadcastAdd(conv2, b2, nil, []byte{0, 2, 3})
	if err != nil {
		return nil, err
	}
	sum, err := G.Add(biased, in)
	if err != nil {
		return nil, err
	}
	return G.Rectify(sum)
}

func (d *Dual) policyHead(h *G.Node) (*G.Node, error) {
	c := d.conf
	flat, err := G.Reshape(h, tensor.Shape{c.BatchSize, c.K * c.Height * c.Width})
	if err != nil {
		return nil, err
	}
	d.policyW = G.NewMatrix(d.g, tensor.Float32, G.WithShape(c.K*c.Height*c.Width, c.ActionSpace),
		G.WithName("policy.w"), G.WithInit(G.GlorotN(1.0)))
	d.policyB = G.NewVector(d.g, tensor.Float32, G.WithShape(c.ActionSpace), G.WithName("policy.b"), G.WithInit(G.Zeroes()))
	logits, err := G.Mul(flat, d.policyW)
	if err != nil {
		return nil, err
	}
	biased, err := G.BroadcastAdd(logits, d.policyB, nil, []byte{0})
	if err != nil {
		return nil, err
	}
	return G.SoftMax(biased)
}

func (d *Dual) valueHead(h *G.Node) (*G.Node, error) {
	c := d.conf
	flat, err := G.Reshape(h, tensor.Shape{c.BatchSize, c.K * c.Height * c.Width})
	if err != nil {
		return nil, err
	}
	d.valueW1 = G.NewMatrix(d.g, tensor.Float32, G.WithShape(c.K*c.Height*c.Width, c.FC),
		G.WithName("value.w1"), G.WithInit(G.GlorotN(1.0)))
	d.valueB1 = G.NewVector(d.g, tensor.Float32, G.WithShape(c.FC), G.WithName("value.b1"), G.WithInit(G.Zeroes()))
	fc1, err := G.Mul(flat, d.valueW1)
	if err != nil {
		return nil, err
	}
	fc1b, err := G.BroadcastAdd(fc1, d.valueB1, nil, []byte{0})
	if err != nil {
		return nil, err
	}
	fc1r, err := G.Rectify(fc1b)
	if err != nil {
		return nil, err
	}

	d.valueW2 = G.NewMatrix(d.g, tensor.Float32, G.WithShape(c.FC, 1), G.WithName("value.w2"), G.WithInit(G.GlorotN(1.0)))
	d.valueB2 = G.NewVector(d.g, tensor.Float32, G.WithShape(1), G.WithName("value.b2"), G.WithInit(G.Zeroes()))
	fc2, err := G.Mul(fc1r, d.valueW2)
	if err != nil {
		return nil, err
	}
	fc2b, err := G.BroadcastAdd(fc2, d.valueB2, nil, []byte{0})
	if err != nil {
		return nil, err
	}
	return G.Tanh(fc2b)
}
