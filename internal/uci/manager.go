package uci

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/caesarchess/switchcore/internal/obslog"
	"go.uber.org/zap"
)

// ErrUnavailable is returned when the analysis process is not running and a
// fresh start attempt is not due yet. Callers treat it as "fall back to
// material evaluation"; it is never fatal.
var ErrUnavailable = errors.New("analysis engine unavailable")

// How long after a failed start before another attempt is made. Keeps a
// missing binary from turning every evaluation into a spawn attempt.
const startRetryBackoff = 5 * time.Second

// Manager owns the one analysis process handle for the whole application.
// It is constructed once at startup and injected wherever engine-backed
// evaluation is configured; nothing else starts or stops the process.
type Manager struct {
	binaryPath string

	mu           sync.Mutex
	session      *Session
	lastStartErr error
	lastStartAt  time.Time
}

// NewManager validates the binary path but does not start the process; the
// first Analyze call does.
func NewManager(binaryPath string) (*Manager, error) {
	if binaryPath == "" {
		return nil, fmt.Errorf("engine binary path required")
	}
	if _, err := os.Stat(binaryPath); err != nil {
		return nil, fmt.Errorf("engine binary check: %w", err)
	}
	return &Manager{binaryPath: binaryPath}, nil
}

// Analyze scores the position within the given time budget. Any failure —
// process missing, dead, timed out, malformed output — closes the handle and
// returns an error; the next call may transparently restart the process.
func (m *Manager) Analyze(ctx context.Context, fen string, budget time.Duration) (Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.ensureSessionLocked(ctx)
	if err != nil {
		return Score{}, err
	}

	score, err := session.Analyze(ctx, fen, budget)
	if err != nil {
		obslog.L().Warn("engine_analyze_failed", zap.Error(err))
		m.discardLocked()
		return Score{}, err
	}
	return score, nil
}

// Close tears the process down. The manager stays usable; a later Analyze
// starts a fresh process.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	err := m.session.Close()
	m.session = nil
	return err
}

func (m *Manager) ensureSessionLocked(ctx context.Context) (*Session, error) {
	if m.session != nil {
		return m.session, nil
	}
	if m.lastStartErr != nil && time.Since(m.lastStartAt) < startRetryBackoff {
		return nil, ErrUnavailable
	}

	m.lastStartAt = time.Now()
	session, err := NewSession(ctx, m.binaryPath)
	if err != nil {
		m.lastStartErr = err
		obslog.L().Error("engine_start_failed", zap.String("binary", m.binaryPath), zap.Error(err))
		return nil, fmt.Errorf("start analysis engine: %w", err)
	}
	m.session = session
	m.lastStartErr = nil
	obslog.L().Info("engine_started", zap.String("binary", m.binaryPath))
	return session, nil
}

func (m *Manager) discardLocked() {
	if m.session != nil {
		_ = m.session.Close()
		m.session = nil
	}
}
