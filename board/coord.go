package board

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidLabel is returned by Str2ev when the input is not a valid
// vertex label.
var ErrInvalidLabel = errors.New("board: invalid vertex label")

// ev2xy converts an extended-linear vertex to 1-based board coordinates.
func ev2xy(ev int) (x, y int) {
	return ev % EBSIZE, ev / EBSIZE
}

// xy2ev converts 1-based board coordinates to an extended-linear vertex.
func xy2ev(x, y int) int {
	return y*EBSIZE + x
}

// Rv2ev converts a board-linear vertex (or BVCNT, meaning PASS) to an
// extended-linear vertex.
func Rv2ev(rv int) int {
	if rv == BVCNT {
		return PASS
	}
	return rv%BSIZE + 1 + (rv/BSIZE+1)*EBSIZE
}

// Ev2rv converts an extended-linear vertex to a board-linear vertex; PASS
// maps to BVCNT.
func Ev2rv(ev int) int {
	if ev == PASS {
		return BVCNT
	}
	return ev%EBSIZE - 1 + (ev/EBSIZE-1)*BSIZE
}

// Ev2str renders an extended-linear vertex as an alphabetic label such as
// "E5", or "pass" for PASS (and anything >= PASS).
func Ev2str(ev int) string {
	if ev >= PASS {
		return "pass"
	}
	x, y := ev2xy(ev)
	return string(xLabels[x-1]) + strconv.Itoa(y)
}

// Str2ev parses a vertex label ("A1".."J9", case-insensitive, skipping "I"),
// or "pass"/"resign" (case-insensitive), into an extended-linear vertex.
// Unlike the rest of the board API, Str2ev is a boundary function and never
// panics on malformed input.
func Str2ev(v string) (int, error) {
	up := strings.ToUpper(strings.TrimSpace(v))
	if up == "PASS" || up == "RESIGN" {
		return PASS, nil
	}
	if len(up) < 2 {
		return 0, errors.Wrapf(ErrInvalidLabel, "%q", v)
	}
	first := up[0]
	x := -1
	for i, c := range xLabels {
		if c == first {
			x = i + 1
			break
		}
	}
	if x < 0 || x > BSIZE {
		return 0, errors.Wrapf(ErrInvalidLabel, "%q", v)
	}
	y, err := strconv.Atoi(up[1:])
	if err != nil || y < 1 || y > BSIZE {
		return 0, errors.Wrapf(ErrInvalidLabel, "%q", v)
	}
	return xy2ev(x, y), nil
}

// neighbors returns the four cardinal neighbours of v in extended-linear
// coordinates. The exterior border guarantees these are always in-bounds
// for any playable v.
func neighbors(v int) [4]int {
	return [4]int{v + 1, v + EBSIZE, v - 1, v - EBSIZE}
}

// diagonals returns the four diagonal neighbours of v, the two-axis
// combinations of ±1 and ±EBSIZE.
func diagonals(v int) [4]int {
	return [4]int{v + EBSIZE + 1, v + EBSIZE - 1, v - EBSIZE - 1, v - EBSIZE + 1}
}
