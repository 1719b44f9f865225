package colorswitch

import (
	nchess "github.com/corentings/chess/v2"

	"github.com/caesarchess/switchcore/internal/board"
)

// A piece within this king-move distance of its own king counts as protected
// and never switches.
const kingProtectionRadius = 2

// isEligible applies the hard exclusion rules. Rank ordering and
// check-safety vetting happen later, on the survivors.
func isEligible(pos *board.Position, hist *History, piece nchess.Piece, sq nchess.Square) bool {
	if piece == nchess.NoPiece || piece.Type() == nchess.King {
		return false
	}
	if hist.Switched(sq) || hist.Promoted(sq) {
		return false
	}
	if kingSq, ok := pos.KingSquare(piece.Color()); ok {
		if board.Distance(sq, kingSq) <= kingProtectionRadius {
			return false
		}
	}
	if attacksEnemyKing(pos, piece, sq) {
		return false
	}
	if piece.Type() == nchess.Pawn && pawnInFrozenRank(sq) {
		return false
	}
	return true
}

// eligibleSquares scans the board and returns every square passing the
// exclusion rules, in a1..h8 order.
func eligibleSquares(pos *board.Position, hist *History) []nchess.Square {
	var out []nchess.Square
	for _, sq := range board.AllSquares() {
		if isEligible(pos, hist, pos.PieceAt(sq), sq) {
			out = append(out, sq)
		}
	}
	return out
}

// attacksEnemyKing reports whether the piece currently threatens the enemy
// king square. The active check-deliverer stays on the board; flipping it
// would silently dissolve the threat.
func attacksEnemyKing(pos *board.Position, piece nchess.Piece, sq nchess.Square) bool {
	enemy := nchess.Black
	if piece.Color() == nchess.Black {
		enemy = nchess.White
	}
	kingSq, ok := pos.KingSquare(enemy)
	if !ok {
		return false
	}
	return pos.AttacksFrom(sq, kingSq)
}

// pawnInFrozenRank rejects pawns on the second and seventh ranks. For either
// color those are the starting rank and the rank one step from promotion;
// switching them would trivialize promotion play.
func pawnInFrozenRank(sq nchess.Square) bool {
	return sq.Rank() == nchess.Rank2 || sq.Rank() == nchess.Rank7
}
