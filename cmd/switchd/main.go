// switchd runs a self-play exercise of the color-switch core: random legal
// moves drive the game forward while the configured trigger policy fires
// switch sequences, with a fixed-length stand-in for the animation phase.
// Useful for soak-testing trigger, selection and executor behavior without a
// UI attached.
package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/caesarchess/switchcore/internal/colorswitch"
	"github.com/caesarchess/switchcore/internal/config"
	"github.com/caesarchess/switchcore/internal/obslog"
	"github.com/caesarchess/switchcore/internal/switchbuilder"
)

const (
	tickInterval  = 50 * time.Millisecond
	moveInterval  = 500 * time.Millisecond
	animationSpan = 1 * time.Second
	maxMoves      = 200
)

// timedAnimator stands in for the UI animation collaborator: active for a
// fixed span after Start.
type timedAnimator struct {
	span    time.Duration
	startAt time.Time
	running bool
}

func (a *timedAnimator) Start() {
	a.startAt = time.Now()
	a.running = true
}

func (a *timedAnimator) Active() bool {
	if !a.running {
		return false
	}
	if time.Since(a.startAt) >= a.span {
		a.running = false
	}
	return a.running
}

func (a *timedAnimator) Stop() { a.running = false }

func main() {
	if err := obslog.InitFromEnv(); err != nil {
		os.Stderr.WriteString("logger init failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer obslog.Sync()

	cfg, err := config.Load()
	if err != nil {
		obslog.L().Fatal("config_load_failed", zap.Error(err))
	}

	deps, err := switchbuilder.Build(cfg, &timedAnimator{span: animationSpan})
	if err != nil {
		obslog.L().Fatal("build_failed", zap.Error(err))
	}
	defer deps.Close()

	if deps.Stats != nil {
		go func() {
			if err := deps.Stats.ListenAndServe(); err != nil {
				obslog.L().Error("stats_server_failed", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obslog.L().Info("switchd_started",
		zap.String("trigger_mode", cfg.TriggerMode),
		zap.Int("switch_mode", cfg.SwitchMode),
		zap.String("eval_mode", cfg.EvalMode))

	run(ctx, deps, cfg)

	snap := deps.Manager.Stats()
	obslog.L().Info("switchd_finished",
		zap.Int("white_switches", snap.WhiteSwitches),
		zap.Int("black_switches", snap.BlackSwitches),
		zap.Ints("switch_moves", snap.SwitchMoves))
}

func run(ctx context.Context, deps *switchbuilder.Deps, cfg *config.AppConfig) {
	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed))

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	moveCount := 0
	lastMove := time.Now()

	for {
		select {
		case <-ctx.Done():
			obslog.L().Info("shutdown_requested")
			return
		case <-ticker.C:
		}

		deps.Manager.Advance(ctx)

		// Moves pause while a switch sequence plays out, mirroring how the
		// real game loop defers input during the visible phases.
		if deps.Manager.State() != colorswitch.StateIdle {
			continue
		}

		if time.Since(lastMove) >= moveInterval {
			if !playRandomMove(deps, rnd) {
				obslog.L().Info("no_legal_moves", zap.Int("move", moveCount))
				return
			}
			moveCount++
			lastMove = time.Now()
		}

		if moveCount >= maxMoves {
			obslog.L().Info("move_limit_reached", zap.Int("moves", moveCount))
			return
		}

		if deps.Manager.CheckTrigger(moveCount) {
			deps.Manager.BeginSwitchSequence(ctx)
		}
	}
}

func playRandomMove(deps *switchbuilder.Deps, rnd *rand.Rand) bool {
	pos := deps.Position
	moves := pos.LegalMoves(pos.Turn())
	if len(moves) == 0 {
		return false
	}
	mv := moves[rnd.Intn(len(moves))]
	promoted, err := pos.ApplyMove(mv)
	if err != nil {
		obslog.L().Warn("move_apply_failed", zap.Error(err))
		return false
	}
	if promoted {
		// Promoted pieces are permanently off the switch candidate list.
		deps.Manager.MarkPromotion(mv.To)
	}
	return true
}
