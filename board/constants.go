// Package board implements the 9x9 Go position representation: legal move
// generation, group/liberty tracking, simple ko detection and the feature
// tensor consumed by the dual-head network. Positional superko is not
// checked.
package board

// Board geometry. BSIZE is the playable board edge; EBSIZE adds a one-cell
// exterior border so neighbour lookups never need bounds checks.
const (
	BSIZE  = 9
	EBSIZE = BSIZE + 2
	BVCNT  = BSIZE * BSIZE
	EBVCNT = EBSIZE * EBSIZE

	// PASS is a board-sized vertex reserved for the pass move.
	PASS = EBVCNT
	// VNULL is the sentinel for "no vertex".
	VNULL = EBVCNT + 1

	// KOMI is the fixed compensation added to White's score.
	KOMI = 7.0

	// KeepPrevCnt is how many previous state snapshots are kept for the
	// history feature planes.
	KeepPrevCnt = 2
	// FeatureCnt is the number of feature planes written by Feature.
	FeatureCnt = KeepPrevCnt*2 + 3
)

var xLabels = [...]byte{'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'J', 'K', 'L', 'M', 'N', 'O', 'P', 'Q', 'R', 'S', 'T'}
