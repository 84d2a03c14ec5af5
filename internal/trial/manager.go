package trial

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"

	"klvcli/internal/config"
)

// Sentinel errors surfaced to the transport layer.
var (
	ErrTrialExpired      = errors.New("trial period has expired")
	ErrInvalidActivation = errors.New("invalid activation code")
	ErrNoActivation      = errors.New("activation is not configured")
)

const (
	pbkdf2Iterations = 4096
	pbkdf2KeyLength  = 32
)

// State is the persisted trial state.
type State struct {
	StartedAt   time.Time `json:"started_at"`
	Activated   bool      `json:"activated"`
	ActivatedAt time.Time `json:"activated_at,omitempty"`
}

// Status is the externally visible trial status.
type Status struct {
	Activated bool          `json:"activated"`
	Expired   bool          `json:"expired"`
	ExpiresAt time.Time     `json:"expires_at"`
	Remaining time.Duration `json:"-"`
	Countdown string        `json:"countdown"`
	Detail    string        `json:"detail"`
}

// Manager owns the trial state file and answers gating questions. Safe for
// concurrent use.
type Manager struct {
	statePath string
	duration  time.Duration
	digest    string
	salt      string
	logger    *slog.Logger

	mu    sync.Mutex
	state State

	// now is replaceable in tests.
	now func() time.Time
}

// NewManager loads the trial state, starting a fresh trial (and persisting
// it) when no state file exists yet.
func NewManager(cfg config.TrialConfig, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		statePath: cfg.StateFile,
		duration:  cfg.Duration,
		digest:    cfg.ActivationDigest,
		salt:      cfg.ActivationSalt,
		logger:    logger.With(slog.String("component", "trial")),
		now:       time.Now,
	}

	if err := m.loadOrStart(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) loadOrStart() error {
	data, err := os.ReadFile(m.statePath)
	if os.IsNotExist(err) {
		m.state = State{StartedAt: m.now()}
		m.logger.Info("starting new trial",
			slog.Time("started_at", m.state.StartedAt),
			slog.Duration("duration", m.duration))
		return m.persist()
	}
	if err != nil {
		return fmt.Errorf("failed to read trial state: %w", err)
	}

	if err := json.Unmarshal(data, &m.state); err != nil {
		return fmt.Errorf("failed to parse trial state: %w", err)
	}
	if m.state.StartedAt.IsZero() {
		m.state.StartedAt = m.now()
		return m.persist()
	}
	return nil
}

func (m *Manager) persist() error {
	if dir := filepath.Dir(m.statePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create trial state directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode trial state: %w", err)
	}
	if err := os.WriteFile(m.statePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write trial state: %w", err)
	}
	return nil
}

// ExpiresAt returns the end of the trial window: 23:59:59 of the final day.
func (m *Manager) ExpiresAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiresAtLocked()
}

func (m *Manager) expiresAtLocked() time.Time {
	end := m.state.StartedAt.Add(m.duration)
	return time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, end.Location())
}

// Remaining returns the time left in the trial, never negative.
func (m *Manager) Remaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	left := m.expiresAtLocked().Sub(m.now())
	if left < 0 {
		return 0
	}
	return left
}

// IsExpired reports whether the trial gate should block. An activated
// install never expires.
func (m *Manager) IsExpired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Activated {
		return false
	}
	return m.now().After(m.expiresAtLocked())
}

// Activated reports whether an activation code has lifted the trial.
func (m *Manager) Activated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Activated
}

// Activate verifies the code against the configured PBKDF2 digest and, on
// success, persists the activated state.
func (m *Manager) Activate(code string) error {
	if m.digest == "" {
		return ErrNoActivation
	}

	want, err := hex.DecodeString(m.digest)
	if err != nil {
		return fmt.Errorf("malformed activation digest: %w", err)
	}
	got := pbkdf2.Key([]byte(code), []byte(m.salt), pbkdf2Iterations, pbkdf2KeyLength, sha256.New)
	if subtle.ConstantTimeCompare(want, got) != 1 {
		m.logger.Warn("activation attempt rejected")
		return ErrInvalidActivation
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Activated = true
	m.state.ActivatedAt = m.now()
	if err := m.persist(); err != nil {
		return err
	}
	m.logger.Info("trial activated", slog.Time("activated_at", m.state.ActivatedAt))
	return nil
}

// Status snapshots the trial for the status endpoint.
func (m *Manager) Status() Status {
	m.mu.Lock()
	activated := m.state.Activated
	expiresAt := m.expiresAtLocked()
	remaining := expiresAt.Sub(m.now())
	m.mu.Unlock()

	if remaining < 0 {
		remaining = 0
	}
	return Status{
		Activated: activated,
		Expired:   !activated && remaining == 0,
		ExpiresAt: expiresAt,
		Remaining: remaining,
		Countdown: Countdown(remaining),
		Detail:    DetailedCountdown(remaining),
	}
}

// DeriveDigest computes the hex PBKDF2 digest for an activation code. Used
// by operators to provision config, and by tests.
func DeriveDigest(code, salt string) string {
	return hex.EncodeToString(
		pbkdf2.Key([]byte(code), []byte(salt), pbkdf2Iterations, pbkdf2KeyLength, sha256.New))
}
