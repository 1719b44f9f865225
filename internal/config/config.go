package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Trigger and evaluation mode identifiers. Validated on load so the rest of
// the program can switch on them without a default branch.
const (
	TriggerMove        = "move"
	TriggerTimer       = "timer"
	TriggerPlayer      = "player"
	TriggerRandomToken = "random_token"

	EvalMaterial = "material"
	EvalEnhanced = "enhanced"
	EvalEngine   = "engine"
)

type AppConfig struct {
	TriggerMode string
	SwitchMode  int // 1 = alternating single piece, 2 = one per side

	TimerDuration     time.Duration
	HighlightDuration time.Duration

	EvalMode         string
	StabilityEnabled bool
	StabilityWeight  float64
	CacheTTL         time.Duration

	EnginePath     string
	AnalysisBudget time.Duration

	RandomSeed int64 // 0 = time-seeded

	RedisURL  string // optional switch-event journal
	StatsAddr string // optional counters endpoint, e.g. ":8844"
}

// fileConfig is the YAML shape; zero values mean "not set".
type fileConfig struct {
	TriggerMode         string  `yaml:"trigger_mode"`
	SwitchMode          int     `yaml:"switch_mode"`
	TimerDurationMS     int     `yaml:"timer_duration_ms"`
	HighlightDurationMS int     `yaml:"highlight_duration_ms"`
	EvalMode            string  `yaml:"eval_mode"`
	StabilityEnabled    *bool   `yaml:"stability_enabled"`
	StabilityWeight     float64 `yaml:"stability_weight"`
	CacheTTLSeconds     int     `yaml:"cache_ttl_seconds"`
	EnginePath          string  `yaml:"engine_path"`
	AnalysisBudgetMS    int     `yaml:"analysis_budget_ms"`
	RandomSeed          int64   `yaml:"random_seed"`
	RedisURL            string  `yaml:"redis_url"`
	StatsAddr           string  `yaml:"stats_addr"`
}

// Load builds the config from defaults, then the YAML file named by
// SWITCH_CONFIG (if any), then environment overrides.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		TriggerMode:       TriggerMove,
		SwitchMode:        2,
		TimerDuration:     15 * time.Second,
		HighlightDuration: 5 * time.Second,
		EvalMode:          EvalMaterial,
		StabilityEnabled:  true,
		StabilityWeight:   0.01,
		CacheTTL:          5 * time.Second,
		AnalysisBudget:    100 * time.Millisecond,
	}

	if path := strings.TrimSpace(os.Getenv("SWITCH_CONFIG")); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFile(cfg *AppConfig, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if v := strings.TrimSpace(fc.TriggerMode); v != "" {
		cfg.TriggerMode = v
	}
	if fc.SwitchMode != 0 {
		cfg.SwitchMode = fc.SwitchMode
	}
	if fc.TimerDurationMS > 0 {
		cfg.TimerDuration = time.Duration(fc.TimerDurationMS) * time.Millisecond
	}
	if fc.HighlightDurationMS > 0 {
		cfg.HighlightDuration = time.Duration(fc.HighlightDurationMS) * time.Millisecond
	}
	if v := strings.TrimSpace(fc.EvalMode); v != "" {
		cfg.EvalMode = v
	}
	if fc.StabilityEnabled != nil {
		cfg.StabilityEnabled = *fc.StabilityEnabled
	}
	if fc.StabilityWeight > 0 {
		cfg.StabilityWeight = fc.StabilityWeight
	}
	if fc.CacheTTLSeconds > 0 {
		cfg.CacheTTL = time.Duration(fc.CacheTTLSeconds) * time.Second
	}
	if v := strings.TrimSpace(fc.EnginePath); v != "" {
		cfg.EnginePath = v
	}
	if fc.AnalysisBudgetMS > 0 {
		cfg.AnalysisBudget = time.Duration(fc.AnalysisBudgetMS) * time.Millisecond
	}
	if fc.RandomSeed != 0 {
		cfg.RandomSeed = fc.RandomSeed
	}
	if v := strings.TrimSpace(fc.RedisURL); v != "" {
		cfg.RedisURL = v
	}
	if v := strings.TrimSpace(fc.StatsAddr); v != "" {
		cfg.StatsAddr = v
	}
	return nil
}

func applyEnv(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv("SWITCH_TRIGGER_MODE")); v != "" {
		cfg.TriggerMode = v
	}
	if v := strings.TrimSpace(os.Getenv("SWITCH_MODE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && (n == 1 || n == 2) {
			cfg.SwitchMode = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("SWITCH_TIMER_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimerDuration = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("SWITCH_HIGHLIGHT_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HighlightDuration = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("WIN_PROBABILITY_MODE")); v != "" {
		cfg.EvalMode = v
	}
	if v := strings.TrimSpace(os.Getenv("STABILITY_FACTOR_ENABLED")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.StabilityEnabled = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("STABILITY_FACTOR_WEIGHT")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.StabilityWeight = f
		}
	}
	if v := strings.TrimSpace(os.Getenv("EVAL_CACHE_TTL_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheTTL = time.Duration(n) * time.Second
		}
	}
	if v := strings.TrimSpace(os.Getenv("UCI_ENGINE_PATH")); v != "" {
		cfg.EnginePath = v
	}
	if v := strings.TrimSpace(os.Getenv("ENGINE_ANALYSIS_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AnalysisBudget = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("SWITCH_RANDOM_SEED")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.RandomSeed = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("STATS_ADDR")); v != "" {
		cfg.StatsAddr = v
	}
}

func validate(cfg *AppConfig) error {
	switch cfg.TriggerMode {
	case TriggerMove, TriggerTimer, TriggerPlayer, TriggerRandomToken:
	default:
		return fmt.Errorf("unknown trigger mode %q", cfg.TriggerMode)
	}
	switch cfg.EvalMode {
	case EvalMaterial, EvalEnhanced, EvalEngine:
	default:
		return fmt.Errorf("unknown evaluation mode %q", cfg.EvalMode)
	}
	if cfg.SwitchMode != 1 && cfg.SwitchMode != 2 {
		return fmt.Errorf("switch mode must be 1 or 2, got %d", cfg.SwitchMode)
	}
	if cfg.EvalMode == EvalEngine && strings.TrimSpace(cfg.EnginePath) == "" {
		return fmt.Errorf("UCI_ENGINE_PATH is required for engine evaluation mode")
	}
	return nil
}
