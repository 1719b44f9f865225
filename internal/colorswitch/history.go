package colorswitch

import (
	"sort"

	nchess "github.com/corentings/chess/v2"
)

// History is the game-lifetime switch record. A square that has switched
// once never switches again; lastColor drives the strict alternation of
// single-piece mode.
type History struct {
	switched   map[nchess.Square]struct{}
	promoted   map[nchess.Square]struct{}
	moveNums   []int
	whiteCount int
	blackCount int
	lastColor  nchess.Color
	hasLast    bool
}

// NewHistory returns an empty record.
func NewHistory() *History {
	return &History{
		switched: make(map[nchess.Square]struct{}),
		promoted: make(map[nchess.Square]struct{}),
	}
}

// Switched reports whether the square has already hosted a switch.
func (h *History) Switched(sq nchess.Square) bool {
	_, ok := h.switched[sq]
	return ok
}

// MarkPromotion records a square holding a promoted piece; such squares are
// permanently ineligible.
func (h *History) MarkPromotion(sq nchess.Square) {
	h.promoted[sq] = struct{}{}
}

// Promoted reports whether the square holds a promoted piece.
func (h *History) Promoted(sq nchess.Square) bool {
	_, ok := h.promoted[sq]
	return ok
}

// MoveUsed reports whether a switch was already recorded at the given move
// number. Trigger policies use this to fire at most once per move number.
func (h *History) MoveUsed(moveNumber int) bool {
	for _, n := range h.moveNums {
		if n == moveNumber {
			return true
		}
	}
	return false
}

// recordFlip registers one executed flip. newColor is the color the piece
// became; the per-color counters count arrivals, so a two-piece switch
// increments both sides by one.
func (h *History) recordFlip(sq nchess.Square, newColor nchess.Color) {
	h.switched[sq] = struct{}{}
	if newColor == nchess.White {
		h.whiteCount++
	} else {
		h.blackCount++
	}
}

// recordSession closes out one executed session: the move number is appended
// once, and lastColor becomes the pre-flip color of the first selected piece.
func (h *History) recordSession(moveNumber int, firstOriginalColor nchess.Color) {
	h.moveNums = append(h.moveNums, moveNumber)
	h.lastColor = firstOriginalColor
	h.hasLast = true
}

// LastColor returns the pre-flip color of the most recent switch, if any.
func (h *History) LastColor() (nchess.Color, bool) {
	return h.lastColor, h.hasLast
}

// Counts returns the per-color switch totals (white, black).
func (h *History) Counts() (int, int) {
	return h.whiteCount, h.blackCount
}

// MoveNumbers returns a copy of the recorded switch move numbers in order.
func (h *History) MoveNumbers() []int {
	out := make([]int, len(h.moveNums))
	copy(out, h.moveNums)
	return out
}

// SwitchedSquares returns the switched squares in deterministic order.
func (h *History) SwitchedSquares() []nchess.Square {
	out := make([]nchess.Square, 0, len(h.switched))
	for sq := range h.switched {
		out = append(out, sq)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
