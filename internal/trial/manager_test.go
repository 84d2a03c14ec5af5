package trial

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klvcli/internal/config"
)

func testConfig(t *testing.T) config.TrialConfig {
	t.Helper()
	return config.TrialConfig{
		Duration:  7 * 24 * time.Hour,
		StateFile: filepath.Join(t.TempDir(), "trial.json"),
	}
}

func TestNewManagerStartsTrial(t *testing.T) {
	cfg := testConfig(t)

	m, err := NewManager(cfg, nil)
	require.NoError(t, err)

	assert.False(t, m.IsExpired())
	assert.False(t, m.Activated())
	assert.Positive(t, m.Remaining())

	// State file persisted.
	_, err = os.Stat(cfg.StateFile)
	assert.NoError(t, err)
}

func TestNewManagerReloadsExistingState(t *testing.T) {
	cfg := testConfig(t)

	first, err := NewManager(cfg, nil)
	require.NoError(t, err)
	startedAt := first.state.StartedAt

	second, err := NewManager(cfg, nil)
	require.NoError(t, err)
	assert.True(t, second.state.StartedAt.Equal(startedAt),
		"reload must not restart the trial clock")
}

func TestExpiresAtEndOfFinalDay(t *testing.T) {
	cfg := testConfig(t)
	m, err := NewManager(cfg, nil)
	require.NoError(t, err)

	m.state.StartedAt = time.Date(2024, time.March, 1, 10, 30, 0, 0, time.UTC)
	exp := m.ExpiresAt()
	assert.Equal(t, time.Date(2024, time.March, 8, 23, 59, 59, 0, time.UTC), exp)
}

func TestIsExpired(t *testing.T) {
	cfg := testConfig(t)
	m, err := NewManager(cfg, nil)
	require.NoError(t, err)

	start := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	m.state.StartedAt = start

	m.now = func() time.Time { return start.Add(3 * 24 * time.Hour) }
	assert.False(t, m.IsExpired())

	m.now = func() time.Time { return start.Add(30 * 24 * time.Hour) }
	assert.True(t, m.IsExpired())
	assert.Zero(t, m.Remaining())
}

func TestActivation(t *testing.T) {
	cfg := testConfig(t)
	cfg.ActivationSalt = "pepper"
	cfg.ActivationDigest = DeriveDigest("LET-ME-IN", "pepper")

	m, err := NewManager(cfg, nil)
	require.NoError(t, err)

	require.ErrorIs(t, m.Activate("wrong-code"), ErrInvalidActivation)
	assert.False(t, m.Activated())

	require.NoError(t, m.Activate("LET-ME-IN"))
	assert.True(t, m.Activated())

	// Activated installs never expire, however old the trial.
	m.now = func() time.Time { return time.Now().Add(365 * 24 * time.Hour) }
	assert.False(t, m.IsExpired())

	// Activation survives a reload.
	reloaded, err := NewManager(cfg, nil)
	require.NoError(t, err)
	assert.True(t, reloaded.Activated())
}

func TestActivateWithoutConfiguredDigest(t *testing.T) {
	m, err := NewManager(testConfig(t), nil)
	require.NoError(t, err)
	require.ErrorIs(t, m.Activate("anything"), ErrNoActivation)
}

func TestStatus(t *testing.T) {
	cfg := testConfig(t)
	m, err := NewManager(cfg, nil)
	require.NoError(t, err)

	start := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	m.state.StartedAt = start
	m.now = func() time.Time { return start.Add(2 * 24 * time.Hour) }

	status := m.Status()
	assert.False(t, status.Expired)
	assert.False(t, status.Activated)
	assert.Equal(t, "5 days", status.Countdown)
	assert.Contains(t, status.Detail, "remaining")
}

func TestCountdown(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		want      string
	}{
		{"several days", 73 * time.Hour, "3 days"},
		{"exactly one day", 25 * time.Hour, "1 day"},
		{"under a day", 10 * time.Hour, "Last day!"},
		{"minutes left", 5 * time.Minute, "Last day!"},
		{"nothing left", 0, "Last day!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Countdown(tt.remaining))
		})
	}
}

func TestDetailedCountdown(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		want      string
	}{
		{"days and hours", 2*24*time.Hour + 4*time.Hour, "2 days 4 hours remaining"},
		{"single day", 24*time.Hour + time.Hour, "1 day 1 hour remaining"},
		{"hours and minutes", 5*time.Hour + 12*time.Minute, "5 hours 12 minutes remaining"},
		{"final stretch", 30 * time.Minute, "Last day!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetailedCountdown(tt.remaining))
		})
	}
}
