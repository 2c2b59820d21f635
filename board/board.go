package board

import (
	"hash/maphash"

	"github.com/pkg/errors"
)

// ErrKind distinguishes the two ways Play can fail.
type ErrKind int

const (
	// Illegal means legal(v) was false: occupied, ko-forbidden, or suicide.
	Illegal ErrKind = iota
	// FillEye means the move would fill the side to move's own true eye.
	FillEye
)

func (k ErrKind) String() string {
	if k == FillEye {
		return "fill-eye"
	}
	return "illegal"
}

// PlayError reports why Play refused a move.
type PlayError struct {
	Kind ErrKind
	Move int
}

func (e *PlayError) Error() string {
	return "board: " + e.Kind.String() + " move at " + Ev2str(e.Move)
}

// IsIllegal reports whether err is an Illegal PlayError.
func IsIllegal(err error) bool {
	var pe *PlayError
	return errors.As(err, &pe) && pe.Kind == Illegal
}

// IsFillEye reports whether err is a FillEye PlayError.
func IsFillEye(err error) bool {
	var pe *PlayError
	return errors.As(err, &pe) && pe.Kind == FillEye
}

// Board is the position, turn, ko and history state machine. Zero value is
// not usable; use New.
type Board struct {
	state     [EBVCNT]intersection
	id        [EBVCNT]int // union-find representative vertex per chain
	next      [EBVCNT]int // circular per-chain stone list
	sg        [EBVCNT]*stoneGroup
	prevState [KeepPrevCnt][EBVCNT]intersection

	ko        int
	turn      Color
	moveCnt   int
	prevMove  int
	removeCnt int
	history   []int
}

// New returns a cleared Board ready to play.
func New() *Board {
	b := &Board{}
	for v := range b.sg {
		b.sg[v] = newStoneGroup()
	}
	b.Clear()
	return b
}

// Clear resets the Board to the empty starting position: exterior
// sentinels on the border, empty playable points, singleton union-find,
// no ko, Black to move, empty history.
func (b *Board) Clear() {
	for v := range b.state {
		b.state[v] = iExterior
	}
	for x := 1; x <= BSIZE; x++ {
		for y := 1; y <= BSIZE; y++ {
			b.state[xy2ev(x, y)] = iEmpty
		}
	}
	for v := range b.id {
		b.id[v] = v
		b.next[v] = v
	}
	for _, g := range b.sg {
		g.clear(false)
	}
	for i := range b.prevState {
		b.prevState[i] = b.state
	}
	b.ko = VNULL
	b.turn = Black
	b.moveCnt = 0
	b.prevMove = VNULL
	b.removeCnt = 0
	b.history = b.history[:0]
}

// CopyTo deep-copies b into dest, including every StoneGroup slot and the
// move history.
func (b *Board) CopyTo(dest *Board) {
	dest.state = b.state
	dest.id = b.id
	dest.next = b.next
	for v := range b.sg {
		b.sg[v].copyTo(dest.sg[v])
	}
	dest.prevState = b.prevState
	dest.ko = b.ko
	dest.turn = b.turn
	dest.moveCnt = b.moveCnt
	dest.prevMove = b.prevMove
	dest.removeCnt = b.removeCnt
	if cap(dest.history) < len(b.history) {
		dest.history = make([]int, len(b.history))
	} else {
		dest.history = dest.history[:len(b.history)]
	}
	copy(dest.history, b.history)
}

// Clone returns an independent deep copy of b.
func (b *Board) Clone() *Board {
	c := New()
	b.CopyTo(c)
	return c
}

// Turn returns the side to move.
func (b *Board) Turn() Color { return b.turn }

// MoveCnt returns the ply count.
func (b *Board) MoveCnt() int { return b.moveCnt }

// PrevMove returns the last played extended-linear vertex, or VNULL before
// the first move.
func (b *Board) PrevMove() int { return b.prevMove }

// RemoveCnt returns how many stones the last Play captured.
func (b *Board) RemoveCnt() int { return b.removeCnt }

// Ko returns the current ko point, or VNULL.
func (b *Board) Ko() int { return b.ko }

// History returns the ordered sequence of extended-linear moves played so
// far, including passes. Callers must not mutate the returned slice.
func (b *Board) History() []int { return b.history }

// StoneAt reports the colour at v and whether v holds a stone at all.
func (b *Board) StoneAt(v int) (c Color, ok bool) {
	s := b.state[v]
	return s.color(), s.isStone()
}

// place_stone: internal helper for Play, never fallible on its own -
// preconditions are established by legal().
func (b *Board) placeStone(v int) {
	stoneColor := stoneOf(b.turn)
	b.state[v] = stoneColor
	b.id[v] = v
	b.sg[v].clear(true)
	for _, nv := range neighbors(v) {
		if b.state[nv] == iEmpty {
			b.sg[b.id[v]].add(nv)
		} else {
			b.sg[b.id[nv]].sub(v)
		}
	}
	for _, nv := range neighbors(v) {
		if b.state[nv] == stoneColor && b.id[nv] != b.id[v] {
			b.merge(v, nv)
		}
	}
	b.removeCnt = 0
	oppStone := stoneOf(b.turn.Opponent())
	for _, nv := range neighbors(v) {
		if b.state[nv] == oppStone && b.sg[b.id[nv]].libCnt == 0 {
			b.remove(nv)
		}
	}
}

// merge unions the chains containing v1 and v2, folding the smaller into
// the larger (on a tie, v1's chain keeps its representative).
func (b *Board) merge(v1, v2 int) {
	idBase, idAdd := b.id[v1], b.id[v2]
	if b.sg[idBase].size < b.sg[idAdd].size {
		idBase, idAdd = idAdd, idBase
	}
	b.sg[idBase].merge(b.sg[idAdd])

	for vTmp := idAdd; ; {
		b.id[vTmp] = idBase
		vTmp = b.next[vTmp]
		if vTmp == idAdd {
			break
		}
	}
	b.next[v1], b.next[v2] = b.next[v2], b.next[v1]
}

// remove lifts the chain containing v off the board, restoring each vertex
// to Empty and crediting it back as a liberty to every neighbouring chain.
func (b *Board) remove(v int) {
	for vTmp := v; ; {
		b.removeCnt++
		b.state[vTmp] = iEmpty
		b.id[vTmp] = vTmp
		for _, nv := range neighbors(vTmp) {
			b.sg[b.id[nv]].add(vTmp)
		}
		next := b.next[vTmp]
		b.next[vTmp] = vTmp
		if next == v {
			break
		}
		vTmp = next
	}
}

// Legal reports whether v is a legal move for the side to move: PASS is
// always legal; an occupied or ko-forbidden vertex never is; otherwise v is
// legal iff some neighbour is empty, some opposing neighbour chain can be
// captured, or some friendly neighbour chain survives the connection with
// more than one liberty left.
func (b *Board) Legal(v int) bool {
	if v == PASS {
		return true
	}
	if v == b.ko || b.state[v] != iEmpty {
		return false
	}

	var stoneCnt, atrCnt [2]int
	for _, nv := range neighbors(v) {
		switch s := b.state[nv]; s {
		case iEmpty:
			return true
		case iWhite, iBlack:
			c := s.color()
			stoneCnt[c]++
			if b.sg[b.id[nv]].libCnt == 1 {
				atrCnt[c]++
			}
		}
	}
	return atrCnt[b.turn.Opponent()] != 0 || atrCnt[b.turn] < stoneCnt[b.turn]
}

// Eyeshape reports whether v is a true eye for pl: all four cardinal
// neighbours are friendly stones or board edge, and at most one of the
// four diagonals is hostile-or-exterior, unless exactly two are
// hostile-or-exterior and at least one of those is an opposing
// single-liberty chain pl can recapture right away (its last liberty is
// not ko-barred), collapsing the wedge.
func (b *Board) Eyeshape(v int, pl Color) bool {
	if v == PASS {
		return false
	}
	for _, nv := range neighbors(v) {
		s := b.state[nv]
		if s == iEmpty || s == stoneOf(pl.Opponent()) {
			return false
		}
	}
	var diagCnt [4]int
	for _, nv := range diagonals(v) {
		diagCnt[b.state[nv].toIndex()]++
	}
	oppIdx := stoneOf(pl.Opponent()).toIndex()
	wedgeCnt := diagCnt[oppIdx]
	if diagCnt[iExterior.toIndex()] > 0 {
		wedgeCnt++
	}
	if wedgeCnt == 2 {
		for _, nv := range diagonals(v) {
			if b.state[nv] == stoneOf(pl.Opponent()) &&
				b.sg[b.id[nv]].libCnt == 1 &&
				b.sg[b.id[nv]].vAtr != b.ko {
				return true
			}
		}
	}
	return wedgeCnt < 2
}

// Play attempts v for the side to move. not_fill_eye requests that filling
// the mover's own true eye be rejected with FillEye instead of played.
func (b *Board) Play(v int, notFillEye bool) error {
	if !b.Legal(v) {
		return &PlayError{Kind: Illegal, Move: v}
	}
	if notFillEye && b.Eyeshape(v, b.turn) {
		return &PlayError{Kind: FillEye, Move: v}
	}

	for i := KeepPrevCnt - 1; i > 0; i-- {
		b.prevState[i] = b.prevState[i-1]
	}
	b.prevState[0] = b.state

	if v == PASS {
		b.ko = VNULL
		b.removeCnt = 0
	} else {
		b.placeStone(v)
		id := b.id[v]
		b.ko = VNULL
		if b.removeCnt == 1 && b.sg[id].libCnt == 1 && b.sg[id].size == 1 {
			b.ko = b.sg[id].vAtr
		}
	}
	b.prevMove = v
	b.history = append(b.history, v)
	b.turn = b.turn.Opponent()
	b.moveCnt++
	return nil
}

// RandomPlay shuffles the empty vertices and plays the first one accepted
// under not_fill_eye=true, falling back to PASS. Used by Rollout and by
// the engine's random-move mode; not part of the search's hot path.
func (b *Board) RandomPlay(rnd interface{ Intn(int) int }) int {
	empty := make([]int, 0, BVCNT)
	for v, s := range b.state {
		if s == iEmpty {
			empty = append(empty, v)
		}
	}
	for i := len(empty) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		empty[i], empty[j] = empty[j], empty[i]
	}
	for _, v := range empty {
		if err := b.Play(v, true); err == nil {
			return v
		}
	}
	_ = b.Play(PASS, true)
	return PASS
}

// Rollout plays RandomPlay until two consecutive passes or move_cnt
// reaches 2*EBVCNT, mutating the board in place.
func (b *Board) Rollout(rnd interface{ Intn(int) int }, showBoard bool) {
	for b.moveCnt < 2*EBVCNT {
		prev := b.prevMove
		mov := b.RandomPlay(rnd)
		if showBoard && mov != PASS {
			b.ShowBoard(nil)
		}
		if prev == PASS && mov == PASS {
			break
		}
	}
}

// Score computes Chinese-style area minus KOMI: every playable vertex
// counts for a colour if it holds that colour's stone, or is an empty
// point whose cardinal neighbours include that colour and not the other.
func (b *Board) Score() float32 {
	var stoneCnt [2]int
	for rv := 0; rv < BVCNT; rv++ {
		v := Rv2ev(rv)
		s := b.state[v]
		if s.isStone() {
			stoneCnt[s.color()]++
			continue
		}
		var nbrCnt [4]int
		for _, nv := range neighbors(v) {
			nbrCnt[b.state[nv].toIndex()]++
		}
		if nbrCnt[White] > 0 && nbrCnt[Black] == 0 {
			stoneCnt[White]++
		} else if nbrCnt[Black] > 0 && nbrCnt[White] == 0 {
			stoneCnt[Black]++
		}
	}
	return float32(stoneCnt[Black]-stoneCnt[White]) - KOMI
}

// Feature writes the BVCNT x FeatureCnt network input, flattened
// point-major: out[p*FeatureCnt+f]. Planes 0/1 are current-turn/opponent
// stones now; 2/3 and 4/5 mirror the two previous snapshots; plane 6 is
// the constant "turn as Color" value broadcast over every point. out must
// have length BVCNT*FeatureCnt.
func (b *Board) Feature(out []float32) {
	index := func(p, f int) int { return p*FeatureCnt + f }
	my := stoneOf(b.turn)
	opp := stoneOf(b.turn.Opponent())
	for p := 0; p < BVCNT; p++ {
		v := Rv2ev(p)
		out[index(p, 0)] = boolF(b.state[v] == my)
		out[index(p, 1)] = boolF(b.state[v] == opp)
	}
	for i := 0; i < KeepPrevCnt; i++ {
		for p := 0; p < BVCNT; p++ {
			v := Rv2ev(p)
			out[index(p, (i+1)*2)] = boolF(b.prevState[i][v] == my)
			out[index(p, (i+1)*2+1)] = boolF(b.prevState[i][v] == opp)
		}
	}
	for p := 0; p < BVCNT; p++ {
		out[index(p, FeatureCnt-1)] = float32(b.turn)
	}
}

func boolF(v bool) float32 {
	if v {
		return 1
	}
	return 0
}

var hashSeed = maphash.MakeSeed()

// Hash returns a process-lifetime-stable (not cross-run-stable) hash of
// (state, prev_state[0], turn).
func (b *Board) Hash() uint64 {
	var h1, h2 maphash.Hash
	h1.SetSeed(hashSeed)
	h2.SetSeed(hashSeed)
	writeStates(&h1, b.state[:])
	h1val := h1.Sum64()
	writeStates(&h2, b.state[:])
	writeStates(&h2, b.prevState[0][:])
	h2val := h2.Sum64()
	return (h1val ^ h2val) ^ uint64(b.turn)
}

func writeStates(h *maphash.Hash, s []intersection) {
	buf := make([]byte, len(s))
	for i, v := range s {
		buf[i] = byte(v)
	}
	_, _ = h.Write(buf)
}

// Info returns the position's hash, ply count, and the board-linear list of
// empty vertices that are legal and not a true eye for the side to move,
// with PASS appended.
func (b *Board) Info() (hash uint64, moveCnt int, candList []int) {
	candList = make([]int, 0, BVCNT+1)
	for v, s := range b.state {
		if s == iEmpty && b.Legal(v) && !b.Eyeshape(v, b.turn) {
			candList = append(candList, Ev2rv(v))
		}
	}
	candList = append(candList, Ev2rv(PASS))
	return b.Hash(), b.moveCnt, candList
}
