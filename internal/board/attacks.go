package board

import (
	nchess "github.com/corentings/chess/v2"
)

// Offset tables for the stepping pieces; sliders walk the four diagonal or
// four orthogonal directions until blocked.
var (
	knightDeltas = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingDeltas   = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	diagonalDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	straightDirs = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
)

// InCheck reports whether the king of the given color is attacked. A missing
// king (possible in synthetic test positions) is never in check.
func (p *Position) InCheck(color nchess.Color) bool {
	kingSq, ok := p.KingSquare(color)
	if !ok {
		return false
	}
	return p.AttackedBy(kingSq, opposite(color))
}

// AttackedBy reports whether any piece of color `by` attacks the target
// square on the current position.
func (p *Position) AttackedBy(target nchess.Square, by nchess.Color) bool {
	tf, tr := int(target.File()), int(target.Rank())

	// Pawns attack one rank toward the enemy, so a pawn attacking the target
	// sits one rank behind it from the attacker's point of view.
	pawnRank := tr - 1
	if by == nchess.Black {
		pawnRank = tr + 1
	}
	for _, df := range [2]int{-1, 1} {
		if p.pieceIs(tf+df, pawnRank, nchess.Pawn, by) {
			return true
		}
	}

	for _, d := range knightDeltas {
		if p.pieceIs(tf+d[0], tr+d[1], nchess.Knight, by) {
			return true
		}
	}
	for _, d := range kingDeltas {
		if p.pieceIs(tf+d[0], tr+d[1], nchess.King, by) {
			return true
		}
	}

	if p.slideHits(tf, tr, diagonalDirs, nchess.Bishop, by) {
		return true
	}
	return p.slideHits(tf, tr, straightDirs, nchess.Rook, by)
}

// AttacksFrom reports whether the piece on `from` attacks `target`. Used by
// the eligibility filter to keep the piece currently delivering a threat to
// the enemy king off the candidate list.
func (p *Position) AttacksFrom(from, target nchess.Square) bool {
	piece := p.PieceAt(from)
	if piece == nchess.NoPiece || from == target {
		return false
	}
	df := int(target.File()) - int(from.File())
	dr := int(target.Rank()) - int(from.Rank())

	switch piece.Type() {
	case nchess.Pawn:
		forward := 1
		if piece.Color() == nchess.Black {
			forward = -1
		}
		return dr == forward && (df == 1 || df == -1)
	case nchess.Knight:
		return (abs(df) == 1 && abs(dr) == 2) || (abs(df) == 2 && abs(dr) == 1)
	case nchess.King:
		return abs(df) <= 1 && abs(dr) <= 1
	case nchess.Bishop:
		if abs(df) != abs(dr) {
			return false
		}
		return p.rayClear(from, sign(df), sign(dr), target)
	case nchess.Rook:
		if df != 0 && dr != 0 {
			return false
		}
		return p.rayClear(from, sign(df), sign(dr), target)
	case nchess.Queen:
		if abs(df) != abs(dr) && df != 0 && dr != 0 {
			return false
		}
		return p.rayClear(from, sign(df), sign(dr), target)
	}
	return false
}

// rayClear walks from `from` toward `target` one step at a time and reports
// whether every intermediate square is empty.
func (p *Position) rayClear(from nchess.Square, stepF, stepR int, target nchess.Square) bool {
	f, r := int(from.File())+stepF, int(from.Rank())+stepR
	for f >= 0 && f < 8 && r >= 0 && r < 8 {
		sq := nchess.NewSquare(nchess.File(f), nchess.Rank(r))
		if sq == target {
			return true
		}
		if p.PieceAt(sq) != nchess.NoPiece {
			return false
		}
		f += stepF
		r += stepR
	}
	return false
}

func (p *Position) slideHits(tf, tr int, dirs [4][2]int, slider nchess.PieceType, by nchess.Color) bool {
	for _, d := range dirs {
		f, r := tf+d[0], tr+d[1]
		for f >= 0 && f < 8 && r >= 0 && r < 8 {
			piece := p.PieceAt(nchess.NewSquare(nchess.File(f), nchess.Rank(r)))
			if piece != nchess.NoPiece {
				if piece.Color() == by && (piece.Type() == slider || piece.Type() == nchess.Queen) {
					return true
				}
				break
			}
			f += d[0]
			r += d[1]
		}
	}
	return false
}

func (p *Position) pieceIs(f, r int, t nchess.PieceType, c nchess.Color) bool {
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return false
	}
	piece := p.PieceAt(nchess.NewSquare(nchess.File(f), nchess.Rank(r)))
	return piece != nchess.NoPiece && piece.Type() == t && piece.Color() == c
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
