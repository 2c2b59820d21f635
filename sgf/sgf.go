// Package sgf ingests an SGF collection, walking the first game's first
// variation for its move sequence. Moves are simply replayed onto a
// board.Board one at a time; the parser itself is intentionally minimal,
// a walker rather than a full SGF implementation.
package sgf

import (
	"strings"

	"github.com/pkg/errors"

	"alphago9/board"
)

// ErrMalformed is wrapped around any parse failure.
var ErrMalformed = errors.New("sgf: malformed collection")

// Move is one SGF B[xy]/W[xy] property, already decoded to an
// extended-linear vertex. An empty property (`B[]` or `W[]`) is a pass.
type Move struct {
	Color board.Color
	Vtx   int
}

// Load parses an SGF collection and returns the move sequence of the first
// game's first variation, capped at maxMoves plies (0 means unlimited).
func Load(data string, maxMoves int) ([]Move, error) {
	n, rest, err := parseNode(strings.TrimSpace(data))
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	_ = rest

	var moves []Move
	for cur := n; cur != nil; cur = cur.next {
		if mv, ok := cur.move(); ok {
			moves = append(moves, mv)
			if maxMoves > 0 && len(moves) >= maxMoves {
				break
			}
		}
	}
	return moves, nil
}

// Replay plays every move of seq onto b in order, stopping at the first
// illegal move. SGF content is trusted, but a caller handing us a
// hand-edited file gets a reported index rather than a panic.
func Replay(b *board.Board, seq []Move) (playedCnt int, err error) {
	for i, mv := range seq {
		if err := b.Play(mv.Vtx, false); err != nil {
			return i, errors.Wrapf(err, "sgf: move %d (%s)", i, board.Ev2str(mv.Vtx))
		}
	}
	return len(seq), nil
}

// node is one SGF tree node: its own properties plus the first child in
// the main (first) variation. Sibling variations after the first are
// skipped by bracket counting without being parsed, per the "first game's
// first variation" contract.
type node struct {
	props map[string]string
	next  *node
}

func (n *node) move() (Move, bool) {
	if v, ok := n.props["B"]; ok {
		return Move{Color: board.Black, Vtx: decodeVtx(v)}, true
	}
	if v, ok := n.props["W"]; ok {
		return Move{Color: board.White, Vtx: decodeVtx(v)}, true
	}
	return Move{}, false
}

// decodeVtx converts an SGF point ("a".."s" letter pair, origin top-left)
// to an extended-linear vertex; an empty string is a pass.
func decodeVtx(v string) int {
	if v == "" {
		return board.PASS
	}
	if len(v) != 2 {
		return board.PASS
	}
	x := int(v[0]-'a') + 1
	// SGF y runs top-to-bottom; board xy2ev's y runs bottom-to-top.
	y := board.BSIZE - int(v[1]-'a')
	if x < 1 || x > board.BSIZE || y < 1 || y > board.BSIZE {
		return board.PASS
	}
	return board.Rv2ev((y-1)*board.BSIZE + (x - 1))
}

// parseNode parses a single SGF GameTree: "(;prop[val]prop[val];...(sub)...)"
// It follows only the first child tree at every branch point, matching the
// "first variation" contract, and returns the head of the node chain plus
// whatever text follows the closing paren of this GameTree.
func parseNode(s string) (*node, string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") {
		return nil, s, errors.New("expected '('")
	}
	s = s[1:]

	var head, tail *node
	for {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, "", errors.New("unexpected end of input")
		}
		switch s[0] {
		case ';':
			n, rest, err := parseProps(s[1:])
			if err != nil {
				return nil, "", err
			}
			if head == nil {
				head, tail = n, n
			} else {
				tail.next = n
				tail = n
			}
			s = rest
		case '(':
			child, rest, err := parseNode(s)
			if err != nil {
				return nil, "", err
			}
			if tail != nil {
				tail.next = child
			} else {
				head = child
			}
			// Skip any further sibling variations in this GameTree; only
			// the first is followed.
			depth := 0
			for i := 0; i < len(rest); i++ {
				switch rest[i] {
				case '(':
					depth++
				case ')':
					if depth == 0 {
						return head, rest[i+1:], nil
					}
					depth--
				}
			}
			return nil, "", errors.New("unterminated game tree")
		case ')':
			return head, s[1:], nil
		default:
			return nil, "", errors.Errorf("unexpected character %q", s[0])
		}
	}
}

// parseProps reads the ";"-delimited run of PROP[value] pairs starting
// right after the ';', stopping at the next ';', '(' or ')'.
func parseProps(s string) (*node, string, error) {
	n := &node{props: make(map[string]string)}
	for {
		s = strings.TrimSpace(s)
		if s == "" || s[0] == ';' || s[0] == '(' || s[0] == ')' {
			return n, s, nil
		}
		i := 0
		for i < len(s) && s[i] != '[' {
			i++
		}
		if i == 0 || i >= len(s) {
			return nil, "", errors.New("expected PROP[value]")
		}
		key := strings.TrimSpace(s[:i])
		j := strings.IndexByte(s[i+1:], ']')
		if j < 0 {
			return nil, "", errors.New("unterminated property value")
		}
		val := s[i+1 : i+1+j]
		n.props[key] = val
		s = s[i+2+j:]
	}
}
