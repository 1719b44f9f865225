// Package switchbuilder wires the switch core from configuration: board,
// evaluation strategy, optional engine process, optional Redis journal and
// optional stats endpoint, assembled once at startup.
package switchbuilder

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/caesarchess/switchcore/internal/board"
	"github.com/caesarchess/switchcore/internal/colorswitch"
	"github.com/caesarchess/switchcore/internal/config"
	"github.com/caesarchess/switchcore/internal/eval"
	"github.com/caesarchess/switchcore/internal/obslog"
	"github.com/caesarchess/switchcore/internal/statserver"
	"github.com/caesarchess/switchcore/internal/uci"
)

// Deps is everything the application runs with. Optional members are nil
// when their configuration is absent.
type Deps struct {
	Config    *config.AppConfig
	Position  *board.Position
	Manager   *colorswitch.Manager
	Evaluator eval.Evaluator
	Engine    *uci.Manager
	Redis     *redis.Client
	Stats     *statserver.Server
}

// Build assembles the dependency graph. The animator is supplied by the
// caller; everything else comes from cfg.
func Build(cfg *config.AppConfig, anim colorswitch.Animator) (*Deps, error) {
	deps := &Deps{
		Config:   cfg,
		Position: board.StartingPosition(),
	}

	cache := eval.NewCache(cfg.CacheTTL)

	var analyzer eval.Analyzer
	if cfg.EvalMode == config.EvalEngine {
		engine, err := uci.NewManager(cfg.EnginePath)
		if err != nil {
			return nil, fmt.Errorf("build engine manager: %w", err)
		}
		deps.Engine = engine
		analyzer = engine
	}

	// Enhanced mode with the stability factor switched off is plain material
	// scoring.
	evalMode := cfg.EvalMode
	if evalMode == config.EvalEnhanced && !cfg.StabilityEnabled {
		evalMode = config.EvalMaterial
	}
	evaluator, err := eval.New(evalMode, eval.Options{
		Cache:           cache,
		StabilityWeight: cfg.StabilityWeight,
		Analyzer:        analyzer,
		AnalysisBudget:  cfg.AnalysisBudget,
	})
	if err != nil {
		return nil, fmt.Errorf("build evaluator: %w", err)
	}
	deps.Evaluator = evaluator

	var store colorswitch.EventStore = colorswitch.NoopStore{}
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		deps.Redis = redis.NewClient(opt)
		store = colorswitch.NewRedisStore(deps.Redis)
		obslog.L().Info("switch_journal_enabled", zap.String("addr", opt.Addr))
	}

	deps.Manager = colorswitch.NewManager(deps.Position, anim, evaluator, cfg,
		colorswitch.WithEventStore(store))

	if cfg.StatsAddr != "" {
		deps.Stats = statserver.New(cfg.StatsAddr, deps.Manager.Stats)
	}

	return deps, nil
}

// Close releases held resources in reverse dependency order.
func (d *Deps) Close() {
	if d.Stats != nil {
		if err := d.Stats.Shutdown(); err != nil {
			obslog.L().Warn("stats_server_shutdown_failed", zap.Error(err))
		}
	}
	if d.Engine != nil {
		if err := d.Engine.Close(); err != nil {
			obslog.L().Warn("engine_close_failed", zap.Error(err))
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			obslog.L().Warn("redis_close_failed", zap.Error(err))
		}
	}
}
