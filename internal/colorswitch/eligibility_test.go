package colorswitch

import (
	"testing"

	nchess "github.com/corentings/chess/v2"

	"github.com/caesarchess/switchcore/internal/board"
)

func sq(f nchess.File, r nchess.Rank) nchess.Square { return nchess.NewSquare(f, r) }

func bareKingsPosition() *board.Position {
	pos := board.NewPosition()
	pos.PlacePieceAt(sq(nchess.FileA, nchess.Rank1), nchess.WhiteKing)
	pos.PlacePieceAt(sq(nchess.FileH, nchess.Rank8), nchess.BlackKing)
	return pos
}

func TestKingNeverEligible(t *testing.T) {
	pos := bareKingsPosition()
	hist := NewHistory()
	a1 := sq(nchess.FileA, nchess.Rank1)
	if isEligible(pos, hist, pos.PieceAt(a1), a1) {
		t.Fatalf("king must never be eligible")
	}
}

func TestSwitchedSquareNotEligibleTwice(t *testing.T) {
	pos := bareKingsPosition()
	e4 := sq(nchess.FileE, nchess.Rank4)
	pos.PlacePieceAt(e4, nchess.WhiteRook)

	hist := NewHistory()
	if !isEligible(pos, hist, pos.PieceAt(e4), e4) {
		t.Fatalf("rook on e4 should start eligible")
	}
	hist.recordFlip(e4, nchess.Black)
	if isEligible(pos, hist, pos.PieceAt(e4), e4) {
		t.Fatalf("square with a recorded switch must be ineligible")
	}
}

func TestKingProtectionRadius(t *testing.T) {
	pos := bareKingsPosition()
	hist := NewHistory()

	b2 := sq(nchess.FileB, nchess.Rank2)
	pos.PlacePieceAt(b2, nchess.WhiteRook)
	if isEligible(pos, hist, pos.PieceAt(b2), b2) {
		t.Fatalf("piece one square from its own king is protected")
	}

	c3 := sq(nchess.FileC, nchess.Rank3)
	pos.PlacePieceAt(c3, nchess.WhiteKnight)
	if isEligible(pos, hist, pos.PieceAt(c3), c3) {
		t.Fatalf("distance 2 is still inside the protection radius")
	}

	d4 := sq(nchess.FileD, nchess.Rank4)
	pos.PlacePieceAt(d4, nchess.WhiteKnight)
	if !isEligible(pos, hist, pos.PieceAt(d4), d4) {
		t.Fatalf("distance 3 is outside the protection radius")
	}
}

func TestCheckDelivererNotEligible(t *testing.T) {
	pos := bareKingsPosition()
	hist := NewHistory()

	h4 := sq(nchess.FileH, nchess.Rank4)
	pos.PlacePieceAt(h4, nchess.WhiteRook)
	if isEligible(pos, hist, pos.PieceAt(h4), h4) {
		t.Fatalf("rook attacking the enemy king up the h-file must be ineligible")
	}

	// Blocking the file restores eligibility.
	pos.PlacePieceAt(sq(nchess.FileH, nchess.Rank6), nchess.BlackPawn)
	if !isEligible(pos, hist, pos.PieceAt(h4), h4) {
		t.Fatalf("blocked rook no longer threatens the king")
	}
}

func TestPawnFrozenRanks(t *testing.T) {
	pos := bareKingsPosition()
	hist := NewHistory()

	e2 := sq(nchess.FileE, nchess.Rank2)
	pos.PlacePieceAt(e2, nchess.WhitePawn)
	if isEligible(pos, hist, pos.PieceAt(e2), e2) {
		t.Fatalf("pawn on rank 2 must be ineligible")
	}

	d7 := sq(nchess.FileD, nchess.Rank7)
	pos.PlacePieceAt(d7, nchess.BlackPawn)
	if isEligible(pos, hist, pos.PieceAt(d7), d7) {
		t.Fatalf("pawn on rank 7 must be ineligible")
	}

	e4 := sq(nchess.FileE, nchess.Rank4)
	pos.PlacePieceAt(e4, nchess.WhitePawn)
	if !isEligible(pos, hist, pos.PieceAt(e4), e4) {
		t.Fatalf("mid-board pawn should be eligible")
	}
}

func TestPromotedSquareNotEligible(t *testing.T) {
	pos := bareKingsPosition()
	hist := NewHistory()

	e5 := sq(nchess.FileE, nchess.Rank5)
	pos.PlacePieceAt(e5, nchess.WhiteKnight)
	if !isEligible(pos, hist, pos.PieceAt(e5), e5) {
		t.Fatalf("knight should start eligible")
	}
	hist.MarkPromotion(e5)
	if isEligible(pos, hist, pos.PieceAt(e5), e5) {
		t.Fatalf("promoted piece must be ineligible")
	}
}

func TestEligibleSquaresScan(t *testing.T) {
	pos := bareKingsPosition()
	pos.PlacePieceAt(sq(nchess.FileE, nchess.Rank4), nchess.WhiteRook)
	pos.PlacePieceAt(sq(nchess.FileB, nchess.Rank6), nchess.BlackKnight)

	got := eligibleSquares(pos, NewHistory())
	if len(got) != 2 {
		t.Fatalf("expected 2 eligible squares, got %d (%v)", len(got), got)
	}
}
