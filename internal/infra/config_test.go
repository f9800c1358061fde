package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/thermal-policy-host/internal/domain"
)

const sampleConfig = `
server:
  port: 8181
  grpc_port: 9191
negotiation:
  transport: grpc
  target: platform:7000
  rate_limit: 20
policies:
  - name: passive
    path: builtin:passive
    enabled_at_start: true
    events: [PolicyPassiveTableChanged, PolicyPidAlgorithmTableChanged]
  - name: critical
    path: /opt/policies/critical.so
`

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, sampleConfig)

	cfg, v, err := LoadConfig(dir)
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, 9191, cfg.Server.GRPCPort)
	assert.Equal(t, "grpc", cfg.Negotiation.Transport)
	assert.Equal(t, 20.0, cfg.Negotiation.RateLimit)
	assert.Equal(t, uint(3), cfg.Negotiation.Attempts, "default")
	assert.Equal(t, 10*time.Second, cfg.Engine.ShutdownTimeout)
	assert.Equal(t, []domain.PolicyDefinition{
		{Name: "passive", Path: "builtin:passive", EnabledAtStart: true,
			Events: []string{"PolicyPassiveTableChanged", "PolicyPidAlgorithmTableChanged"}},
		{Name: "critical", Path: "/opt/policies/critical.so"},
	}, cfg.Policies)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("POLICYHOST_SERVER_PORT", "9000")
	t.Setenv("POLICYHOST_AUTH_PUBLIC_KEY_DATA", "pem")

	cfg, _, err := LoadConfig(t.TempDir())
	require.NoError(t, err, "missing file falls back to defaults")
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "loopback", cfg.Negotiation.Transport)
	assert.Equal(t, []byte("pem"), cfg.Auth.PublicKey)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"loopback", Config{Negotiation: NegotiationConfig{Transport: "loopback"}}, true},
		{"grpc without target", Config{Negotiation: NegotiationConfig{Transport: "grpc"}}, false},
		{"unknown transport", Config{Negotiation: NegotiationConfig{Transport: "carrier-pigeon"}}, false},
		{"nameless policy", Config{
			Negotiation: NegotiationConfig{Transport: "loopback"},
			Policies:    []domain.PolicyDefinition{{Path: "builtin:passive"}},
		}, false},
		{"duplicate policy", Config{
			Negotiation: NegotiationConfig{Transport: "loopback"},
			Policies:    []domain.PolicyDefinition{{Name: "a", Path: "x"}, {Name: "a", Path: "y"}},
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestWatchConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, sampleConfig)

	_, v, err := LoadConfig(dir)
	require.NoError(t, err)

	changes := make(chan *Config, 16)
	WatchConfig(v, zap.NewNop(), func(c *Config) {
		select {
		case changes <- c:
		default:
		}
	})

	updated := sampleConfig + "  - name: third\n    path: builtin:third\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	// Запись может прийти несколькими событиями; ждём итоговую версию
	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-changes:
			if len(c.Policies) == 3 {
				return
			}
		case <-deadline:
			t.Fatal("config change was not observed")
		}
	}
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(LoggerConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))

	l, err = NewLogger(LoggerConfig{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))

	_, err = NewLogger(LoggerConfig{Level: "loud"})
	assert.Error(t, err)
	_, err = NewLogger(LoggerConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}
