package board

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPlay(t *testing.T, b *Board, label string, notFillEye bool) {
	t.Helper()
	v, err := Str2ev(label)
	require.NoError(t, err)
	require.NoError(t, b.Play(v, notFillEye))
}

func TestCoordRoundTrip(t *testing.T) {
	for x := 1; x <= BSIZE; x++ {
		for y := 1; y <= BSIZE; y++ {
			ev := xy2ev(x, y)
			label := Ev2str(ev)
			got, err := Str2ev(label)
			require.NoError(t, err)
			assert.Equal(t, ev, got)
		}
	}
	got, err := Str2ev("pass")
	require.NoError(t, err)
	assert.Equal(t, PASS, got)

	assert.Equal(t, BVCNT, Ev2rv(PASS))
	for rv := 0; rv < BVCNT; rv++ {
		assert.Equal(t, rv, Ev2rv(Rv2ev(rv)))
	}
}

func TestStr2evInvalid(t *testing.T) {
	_, err := Str2ev("Z9")
	assert.Error(t, err)
	_, err = Str2ev("A99")
	assert.Error(t, err)
	_, err = Str2ev("")
	assert.Error(t, err)
}

func TestEmptyBoardScoreIsNegativeKomi(t *testing.T) {
	b := New()
	assert.Equal(t, float32(-KOMI), b.Score())
}

func TestPassPassEndsWithKomiScore(t *testing.T) {
	b := New()
	require.NoError(t, b.Play(PASS, false))
	require.NoError(t, b.Play(PASS, false))
	assert.Equal(t, float32(-KOMI), b.Score())
	assert.Equal(t, []int{PASS, PASS}, b.History())
}

func TestSimpleCaptureSetsKo(t *testing.T) {
	b := New()
	// Corner ko: Black holds A2 (kept alive by its spare liberty at A3) while
	// White surrounds B1 via B2 and C1, leaving Black's B1 stone with its
	// sole liberty at the corner A1. White then plays A1: the lone Black
	// neighbour at A2 blocks White from merging into a bigger chain, so the
	// capture leaves White's own A1 stone in atari on the vacated B1,
	// setting the ko point there.
	moves := []struct {
		color string
		v     string
	}{
		{"B", "J9"}, // filler, keeps colours alternating
		{"W", "J6"}, // filler
		{"B", "A2"},
		{"W", "B2"},
		{"B", "J7"}, // filler
		{"W", "C1"},
		{"B", "B1"},
	}
	for _, m := range moves {
		require.Equal(t, m.color, b.Turn().String())
		mustPlay(t, b, m.v, false)
	}
	require.Equal(t, "W", b.Turn().String())
	mustPlay(t, b, "A1", false) // White captures the lone Black B1 stone

	assert.Equal(t, 1, b.RemoveCnt())

	koV, _ := Str2ev("B1")
	assert.Equal(t, koV, b.Ko())

	// Black retaking at B1 immediately is illegal (ko).
	v, err := Str2ev("B1")
	require.NoError(t, err)
	err = b.Play(v, false)
	require.Error(t, err)
	assert.True(t, IsIllegal(err))
}

func TestEyeFillRejectedAndSuicideIllegal(t *testing.T) {
	b := New()
	// Black builds A2-B2-B1 around the corner point A1, keeping outside
	// liberties: filling A1 is a legal move but fills a true eye.
	for _, m := range []string{"A2", "pass", "B2", "pass", "B1", "pass"} {
		mustPlay(t, b, m, false)
	}

	v, err := Str2ev("A1")
	require.NoError(t, err)
	require.Equal(t, "B", b.Turn().String())
	assert.True(t, b.Eyeshape(v, Black))

	err = b.Play(v, true)
	require.Error(t, err)
	assert.True(t, IsFillEye(err))

	// White now seals the outside until A1 is the corner chain's last
	// liberty; filling it would be self-capture, refused outright.
	for _, m := range []string{"pass", "A3", "pass", "B3", "pass", "C2", "pass", "C1"} {
		mustPlay(t, b, m, false)
	}
	require.Equal(t, "B", b.Turn().String())
	err = b.Play(v, false)
	require.Error(t, err)
	assert.True(t, IsIllegal(err))
}

func TestSuicideWithoutCaptureIsIllegal(t *testing.T) {
	b := New()
	mustPlay(t, b, "A2", false) // B
	mustPlay(t, b, "pass", false)
	mustPlay(t, b, "B1", false) // B
	mustPlay(t, b, "pass", false)
	mustPlay(t, b, "pass", false)

	// White at A1 has no empty neighbour and no capture available.
	v, _ := Str2ev("A1")
	require.Equal(t, "W", b.Turn().String())
	assert.False(t, b.Legal(v))
}

func TestHistoryReplayReproducesPosition(t *testing.T) {
	a := New()
	a.Rollout(rand.New(rand.NewSource(7)), false)

	b := New()
	for _, v := range a.History() {
		require.NoError(t, b.Play(v, false))
	}

	assert.Equal(t, a.state, b.state)
	assert.Equal(t, a.id, b.id)
	assert.Equal(t, a.next, b.next)
	assert.Equal(t, a.ko, b.ko)
	assert.Equal(t, a.turn, b.turn)
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestGroupLibertiesMatchAdjacentEmpties(t *testing.T) {
	b := New()
	b.Rollout(rand.New(rand.NewSource(3)), false)

	for v, s := range b.state {
		if !s.isStone() {
			continue
		}
		// Walk the chain via next, collecting the empty points adjacent to
		// any member; that set must equal the group's recorded liberties.
		want := map[int]struct{}{}
		size := 0
		for cur := v; ; {
			size++
			for _, nv := range neighbors(cur) {
				if b.state[nv] == iEmpty {
					want[nv] = struct{}{}
				}
			}
			cur = b.next[cur]
			if cur == v {
				break
			}
		}
		sg := b.sg[b.id[v]]
		assert.Equal(t, size, sg.size)
		assert.Equal(t, len(want), sg.libCnt)
		assert.Equal(t, want, sg.libs)
	}
}

func TestLegalMatchesPlaySuccess(t *testing.T) {
	b := New()
	for v := 0; v < EBVCNT; v++ {
		c := b.Clone()
		legal := c.Legal(v)
		err := c.Play(v, false)
		if legal {
			assert.NoErrorf(t, err, "vertex %d expected legal", v)
		} else if err != nil {
			assert.True(t, IsIllegal(err))
		}
	}
}

func TestEyeshapeFalseOnEmptyWithEmptyNeighbours(t *testing.T) {
	b := New()
	v, _ := Str2ev("E5")
	assert.False(t, b.Eyeshape(v, Black))
}

func TestRolloutTerminates(t *testing.T) {
	b := New()
	b.Rollout(rand.New(rand.NewSource(1)), false)
	assert.LessOrEqual(t, b.MoveCnt(), 2*EBVCNT)
}

func TestHashDependsOnlyOnStatePrevStateAndTurn(t *testing.T) {
	a := New()
	c := New()
	mustPlay(t, a, "E5", false)
	mustPlay(t, c, "E5", false)
	assert.Equal(t, a.Hash(), c.Hash())

	mustPlay(t, a, "C3", false)
	assert.NotEqual(t, a.Hash(), c.Hash())
}
