package switchbuilder

import (
	"testing"
	"time"

	"github.com/caesarchess/switchcore/internal/config"
)

func baseConfig() *config.AppConfig {
	return &config.AppConfig{
		TriggerMode:       config.TriggerMove,
		SwitchMode:        2,
		TimerDuration:     15 * time.Second,
		HighlightDuration: 5 * time.Second,
		EvalMode:          config.EvalMaterial,
		StabilityEnabled:  true,
		StabilityWeight:   0.01,
		CacheTTL:          5 * time.Second,
		AnalysisBudget:    100 * time.Millisecond,
	}
}

func TestBuildMaterialMode(t *testing.T) {
	deps, err := Build(baseConfig(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer deps.Close()

	if deps.Manager == nil || deps.Evaluator == nil || deps.Position == nil {
		t.Fatalf("core dependencies missing: %+v", deps)
	}
	if deps.Engine != nil {
		t.Fatalf("material mode must not start an engine manager")
	}
	if deps.Redis != nil || deps.Stats != nil {
		t.Fatalf("optional dependencies should be nil without configuration")
	}
}

func TestBuildEngineModeMissingBinary(t *testing.T) {
	cfg := baseConfig()
	cfg.EvalMode = config.EvalEngine
	cfg.EnginePath = "/nonexistent/engine"
	if _, err := Build(cfg, nil); err == nil {
		t.Fatalf("expected error for missing engine binary")
	}
}

func TestBuildRejectsBadRedisURL(t *testing.T) {
	cfg := baseConfig()
	cfg.RedisURL = "://not-a-url"
	if _, err := Build(cfg, nil); err == nil {
		t.Fatalf("expected error for malformed redis url")
	}
}

func TestBuildStatsServer(t *testing.T) {
	cfg := baseConfig()
	cfg.StatsAddr = ":0"
	deps, err := Build(cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer deps.Close()
	if deps.Stats == nil {
		t.Fatalf("stats server should be built when an address is configured")
	}
}
