// Package uci owns the single long-lived external analysis process. The
// manager starts it lazily, restarts it (with backoff) after a failure, and
// exposes one bounded-time operation: score a position.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultReadyTimeout = 4 * time.Second
	// Extra wall-clock allowance past the requested analysis budget before a
	// search read is abandoned and the session declared dead.
	searchGrace = 500 * time.Millisecond
)

// Score is an engine verdict relative to the side to move. Mate != 0 means a
// forced mate in Mate moves (negative: the side to move is being mated); CP
// is only meaningful when Mate == 0.
type Score struct {
	CP   int
	Mate int
}

// IsMate reports whether the score is a forced-mate signal.
func (s Score) IsMate() bool { return s.Mate != 0 }

// Session wraps one running UCI engine process.
type Session struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	mu     sync.Mutex
}

// NewSession launches the engine binary and completes the UCI handshake.
func NewSession(ctx context.Context, binaryPath string) (*Session, error) {
	cmd := exec.Command(binaryPath)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdoutPipe.Close()
		return nil, fmt.Errorf("start engine: %w", err)
	}

	s := &Session{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdoutPipe),
	}
	if err := s.initialize(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Analyze scores the position given as a FEN string. The call returns within
// roughly budget+grace; a timeout or protocol error invalidates the session.
func (s *Session) Analyze(ctx context.Context, fen string, budget time.Duration) (Score, error) {
	if budget <= 0 {
		budget = 100 * time.Millisecond
	}

	if err := s.send("position fen " + fen + "\n"); err != nil {
		return Score{}, fmt.Errorf("send position: %w", err)
	}
	ms := int(budget / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	if err := s.send("go movetime " + strconv.Itoa(ms) + "\n"); err != nil {
		return Score{}, fmt.Errorf("send go: %w", err)
	}

	searchCtx, cancel := context.WithTimeout(ctx, budget+searchGrace)
	defer cancel()

	var (
		score Score
		seen  bool
	)
	for {
		line, err := s.readLine(searchCtx)
		if err != nil {
			return Score{}, fmt.Errorf("read line: %w", err)
		}
		switch {
		case strings.HasPrefix(line, "info "):
			if sc, ok := parseScore(line); ok {
				score = sc
				seen = true
			}
		case strings.HasPrefix(line, "bestmove"):
			if !seen {
				return Score{}, fmt.Errorf("engine returned no score")
			}
			return score, nil
		}
	}
}

// EnsureReady round-trips an isready/readyok pair.
func (s *Session) EnsureReady(ctx context.Context) error {
	readyCtx, cancel := context.WithTimeout(ctx, defaultReadyTimeout)
	defer cancel()

	if err := s.send("isready\n"); err != nil {
		return fmt.Errorf("send isready: %w", err)
	}
	if err := s.awaitToken(readyCtx, "readyok"); err != nil {
		return fmt.Errorf("wait readyok: %w", err)
	}
	return nil
}

// Close shuts the process down. Safe to call on a broken session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdin != nil {
		_, _ = io.WriteString(s.stdin, "quit\n")
		s.stdin.Close()
	}
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	if s.cmd != nil {
		return s.cmd.Wait()
	}
	return nil
}

// parseScore extracts the trailing "score cp N" or "score mate N" token pair
// from a UCI info line.
func parseScore(line string) (Score, bool) {
	parts := strings.Fields(line)
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] != "score" {
			continue
		}
		val, err := strconv.Atoi(parts[i+2])
		if err != nil {
			return Score{}, false
		}
		switch parts[i+1] {
		case "cp":
			return Score{CP: val}, true
		case "mate":
			if val == 0 {
				// "mate 0" means the side to move is mated right now.
				return Score{Mate: -1}, true
			}
			return Score{Mate: val}, true
		}
		return Score{}, false
	}
	return Score{}, false
}

func (s *Session) initialize(ctx context.Context) error {
	initCtx, cancel := context.WithTimeout(ctx, defaultReadyTimeout)
	defer cancel()

	if err := s.send("uci\n"); err != nil {
		return fmt.Errorf("send uci: %w", err)
	}
	if err := s.awaitToken(initCtx, "uciok"); err != nil {
		return fmt.Errorf("wait uciok: %w", err)
	}

	// Analysis workload: one thread, small hash, full-strength scoring.
	opts := []string{
		"setoption name Threads value 1\n",
		"setoption name Hash value 16\n",
		"setoption name MultiPV value 1\n",
	}
	for _, opt := range opts {
		if err := s.send(opt); err != nil {
			return fmt.Errorf("apply options: %w", err)
		}
	}

	if err := s.send("isready\n"); err != nil {
		return fmt.Errorf("send isready: %w", err)
	}
	if err := s.awaitToken(initCtx, "readyok"); err != nil {
		return fmt.Errorf("wait readyok: %w", err)
	}
	return nil
}

func (s *Session) send(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.stdin, msg)
	return err
}

func (s *Session) awaitToken(ctx context.Context, token string) error {
	for {
		line, err := s.readLine(ctx)
		if err != nil {
			return err
		}
		if strings.Contains(line, token) {
			return nil
		}
	}
}

func (s *Session) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		line, err := s.stdout.ReadString('\n')
		ch <- result{line: strings.TrimSpace(line), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.line, res.err
	}
}
