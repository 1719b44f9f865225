package colorswitch

import (
	"context"
	"testing"
	"time"

	nchess "github.com/corentings/chess/v2"

	"github.com/caesarchess/switchcore/internal/board"
	"github.com/caesarchess/switchcore/internal/config"
	"github.com/caesarchess/switchcore/internal/eval"
)

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock { return &fakeClock{t: time.Unix(1_700_000_000, 0)} }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeAnimator struct {
	active  bool
	started int
	stopped int
}

func (a *fakeAnimator) Start()       { a.active = true; a.started++ }
func (a *fakeAnimator) Active() bool { return a.active }
func (a *fakeAnimator) Stop()        { a.active = false; a.stopped++ }

func newMaterialEvaluator(t *testing.T) eval.Evaluator {
	t.Helper()
	ev, err := eval.New(eval.ModeMaterial, eval.Options{Cache: eval.NewCache(time.Second)})
	if err != nil {
		t.Fatalf("eval.New: %v", err)
	}
	return ev
}

// newScenarioManager builds a manager over a position with one clean switch
// candidate per color: a white rook on e4 and a black knight on b6, kings
// tucked in opposite corners.
func newScenarioManager(t *testing.T, switchMode int, triggerMode string) (*Manager, *fakeClock, *fakeAnimator) {
	t.Helper()
	pos := board.NewPosition()
	pos.PlacePieceAt(sq(nchess.FileA, nchess.Rank1), nchess.WhiteKing)
	pos.PlacePieceAt(sq(nchess.FileH, nchess.Rank8), nchess.BlackKing)
	pos.PlacePieceAt(sq(nchess.FileE, nchess.Rank4), nchess.WhiteRook)
	pos.PlacePieceAt(sq(nchess.FileB, nchess.Rank6), nchess.BlackKnight)

	clk := newFakeClock()
	anim := &fakeAnimator{}
	cfg := &config.AppConfig{
		TriggerMode:       triggerMode,
		SwitchMode:        switchMode,
		TimerDuration:     15 * time.Second,
		HighlightDuration: 5 * time.Second,
	}
	m := NewManager(pos, anim, newMaterialEvaluator(t), cfg, WithClock(clk.Now))
	return m, clk, anim
}

// driveToCompletion walks an open session through animation, highlight and
// execution.
func driveToCompletion(t *testing.T, m *Manager, clk *fakeClock, anim *fakeAnimator) {
	t.Helper()
	ctx := context.Background()

	if m.State() != StateAnimation {
		t.Fatalf("expected animation state, got %v", m.State())
	}
	anim.active = false
	m.Advance(ctx)
	if m.State() != StateHighlighting {
		t.Fatalf("expected highlighting after animation completes, got %v", m.State())
	}

	m.Advance(ctx)
	if m.State() != StateHighlighting {
		t.Fatalf("highlight window must hold until it elapses")
	}
	clk.Advance(5 * time.Second)
	m.Advance(ctx)
	if m.State() != StateSwitching {
		t.Fatalf("expected switching after the highlight window, got %v", m.State())
	}
	m.Advance(ctx)
	if m.State() != StateIdle {
		t.Fatalf("expected idle after execution, got %v", m.State())
	}
}

func TestFullTwoPieceCycle(t *testing.T) {
	m, clk, anim := newScenarioManager(t, 2, config.TriggerMove)
	ctx := context.Background()

	if !m.CheckTrigger(10) {
		t.Fatalf("move trigger should fire at move 10")
	}
	squares := m.BeginSwitchSequence(ctx)
	if len(squares) != 2 {
		t.Fatalf("two-piece mode should select 2 squares, got %v", squares)
	}
	if anim.started != 1 {
		t.Fatalf("animation should start once, got %d", anim.started)
	}

	turnBefore := m.pos.Turn()
	driveToCompletion(t, m, clk, anim)

	e4 := sq(nchess.FileE, nchess.Rank4)
	b6 := sq(nchess.FileB, nchess.Rank6)
	if got := m.pos.PieceAt(e4); got != nchess.BlackRook {
		t.Fatalf("e4 = %v, want flipped black rook", got)
	}
	if got := m.pos.PieceAt(b6); got != nchess.WhiteKnight {
		t.Fatalf("b6 = %v, want flipped white knight", got)
	}
	if m.pos.Turn() != turnBefore {
		t.Fatalf("turn changed across the switch: %v -> %v", turnBefore, m.pos.Turn())
	}

	white, black := m.history.Counts()
	if white != 1 || black != 1 {
		t.Fatalf("counters = %d/%d, want 1/1", white, black)
	}
	if moves := m.history.MoveNumbers(); len(moves) != 1 || moves[0] != 10 {
		t.Fatalf("move numbers = %v, want [10]", moves)
	}
	if !m.history.Switched(e4) || !m.history.Switched(b6) {
		t.Fatalf("both squares must be recorded as switched")
	}
}

func TestNoDoubleSwitch(t *testing.T) {
	m, clk, anim := newScenarioManager(t, 2, config.TriggerMove)
	ctx := context.Background()

	m.CheckTrigger(10)
	if got := m.BeginSwitchSequence(ctx); len(got) != 2 {
		t.Fatalf("first selection should find 2 squares, got %v", got)
	}
	driveToCompletion(t, m, clk, anim)

	// The only candidates have switched once; the next trigger finds nothing.
	if !m.CheckTrigger(15) {
		t.Fatalf("move trigger should fire at move 15")
	}
	if got := m.BeginSwitchSequence(ctx); got != nil {
		t.Fatalf("switched squares must never be reselected, got %v", got)
	}
	if m.State() != StateIdle {
		t.Fatalf("skipped trigger must leave the state idle, got %v", m.State())
	}
}

func TestSingleModeAlternatesColors(t *testing.T) {
	m, clk, anim := newScenarioManager(t, 1, config.TriggerMove)
	ctx := context.Background()

	// No previous switch: white goes first.
	m.CheckTrigger(10)
	first := m.BeginSwitchSequence(ctx)
	if len(first) != 1 || first[0] != sq(nchess.FileE, nchess.Rank4) {
		t.Fatalf("first pick should be the white rook on e4, got %v", first)
	}
	driveToCompletion(t, m, clk, anim)

	if last, ok := m.history.LastColor(); !ok || last != nchess.White {
		t.Fatalf("last switched color should be white, got %v ok=%v", last, ok)
	}

	// Second round must pick black.
	m.CheckTrigger(15)
	second := m.BeginSwitchSequence(ctx)
	if len(second) != 1 || second[0] != sq(nchess.FileB, nchess.Rank6) {
		t.Fatalf("second pick should be the black knight on b6, got %v", second)
	}
	driveToCompletion(t, m, clk, anim)

	// Third round wants white again, but the only white-origin piece has
	// already switched; alternation is strict, so the trigger is skipped.
	m.CheckTrigger(20)
	if got := m.BeginSwitchSequence(ctx); got != nil {
		t.Fatalf("empty prioritized pool must skip the switch, got %v", got)
	}
}

func TestTwoPieceModeSkipsWithOnePool(t *testing.T) {
	pos := board.NewPosition()
	pos.PlacePieceAt(sq(nchess.FileA, nchess.Rank1), nchess.WhiteKing)
	pos.PlacePieceAt(sq(nchess.FileH, nchess.Rank8), nchess.BlackKing)
	pos.PlacePieceAt(sq(nchess.FileE, nchess.Rank4), nchess.WhiteRook)

	cfg := &config.AppConfig{
		TriggerMode:       config.TriggerMove,
		SwitchMode:        2,
		TimerDuration:     15 * time.Second,
		HighlightDuration: 5 * time.Second,
	}
	m := NewManager(pos, &fakeAnimator{}, newMaterialEvaluator(t), cfg)

	if got := m.BeginSwitchSequence(context.Background()); got != nil {
		t.Fatalf("two-piece mode with one empty pool must select nothing, got %v", got)
	}
	if m.State() != StateIdle {
		t.Fatalf("state must stay idle, got %v", m.State())
	}
}

func TestCancelSessionLeavesBoardUntouched(t *testing.T) {
	m, _, anim := newScenarioManager(t, 2, config.TriggerMove)
	ctx := context.Background()

	m.CheckTrigger(10)
	if got := m.BeginSwitchSequence(ctx); len(got) != 2 {
		t.Fatalf("selection should succeed, got %v", got)
	}

	m.CancelSession()
	if m.State() != StateIdle {
		t.Fatalf("cancel must return to idle, got %v", m.State())
	}
	if anim.stopped != 1 {
		t.Fatalf("cancel should stop the running animation")
	}
	if got := m.pos.PieceAt(sq(nchess.FileE, nchess.Rank4)); got != nchess.WhiteRook {
		t.Fatalf("cancelled session must not mutate the board, e4 = %v", got)
	}
	white, black := m.history.Counts()
	if white != 0 || black != 0 {
		t.Fatalf("cancelled session must not touch history, counters %d/%d", white, black)
	}
	if m.SelectedSquares() != nil {
		t.Fatalf("session must be discarded on cancel")
	}
}

func TestExecuteSwitchOutsideSwitchingIsNoop(t *testing.T) {
	m, _, _ := newScenarioManager(t, 2, config.TriggerMove)
	ctx := context.Background()

	if m.ExecuteSwitch(ctx) {
		t.Fatalf("execute outside SWITCHING must be a no-op")
	}

	m.CheckTrigger(10)
	m.BeginSwitchSequence(ctx)
	if m.ExecuteSwitch(ctx) {
		t.Fatalf("execute during ANIMATION must be a no-op")
	}
	if got := m.pos.PieceAt(sq(nchess.FileE, nchess.Rank4)); got != nchess.WhiteRook {
		t.Fatalf("no-op execute must not mutate the board, e4 = %v", got)
	}
}

func TestTurnPreservedWithBlackToMove(t *testing.T) {
	m, clk, anim := newScenarioManager(t, 2, config.TriggerMove)
	m.pos.SetTurn(nchess.Black)

	m.CheckTrigger(10)
	if got := m.BeginSwitchSequence(context.Background()); len(got) != 2 {
		t.Fatalf("selection should succeed, got %v", got)
	}
	driveToCompletion(t, m, clk, anim)

	if m.pos.Turn() != nchess.Black {
		t.Fatalf("turn must survive the switch, got %v", m.pos.Turn())
	}
}

func TestBeginWhileActiveReturnsNil(t *testing.T) {
	m, _, _ := newScenarioManager(t, 2, config.TriggerMove)
	ctx := context.Background()

	m.CheckTrigger(10)
	if got := m.BeginSwitchSequence(ctx); len(got) != 2 {
		t.Fatalf("first begin should succeed, got %v", got)
	}
	if got := m.BeginSwitchSequence(ctx); got != nil {
		t.Fatalf("second begin during an active session must return nil, got %v", got)
	}
}

func TestStatsSnapshot(t *testing.T) {
	m, clk, anim := newScenarioManager(t, 2, config.TriggerMove)
	ctx := context.Background()

	m.CheckTrigger(10)
	m.BeginSwitchSequence(ctx)
	driveToCompletion(t, m, clk, anim)

	snap := m.Stats()
	if snap.State != "idle" {
		t.Fatalf("snapshot state = %q, want idle", snap.State)
	}
	if snap.WhiteSwitches != 1 || snap.BlackSwitches != 1 {
		t.Fatalf("snapshot counters = %d/%d, want 1/1", snap.WhiteSwitches, snap.BlackSwitches)
	}
	if len(snap.SwitchedSquares) != 2 {
		t.Fatalf("snapshot squares = %v, want 2 entries", snap.SwitchedSquares)
	}
}
