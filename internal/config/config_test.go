package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SCILEDGER_CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, TransportStdio, cfg.Transport.Mode)
	require.Equal(t, "local", cfg.Identity.DefaultPrincipal)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
db:
  path: /var/lib/ledger.db
transport:
  mode: http
auth:
  enabled: true
  jwt_issuer: observatory
  api_keys:
    - token: key-1
      principal: alice
metrics:
  enabled: false
`), 0o600))

	t.Setenv("SCILEDGER_CONFIG_PATH", path)
	t.Setenv("SCILEDGER_SERVER_PORT", "9100")
	t.Setenv("SCILEDGER_JWT_SECRET", "s3cret")
	t.Setenv("SCILEDGER_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "/var/lib/ledger.db", cfg.DB.Path)
	require.Equal(t, TransportHTTP, cfg.Transport.Mode)
	require.Equal(t, "observatory", cfg.Auth.JWTIssuer)
	require.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	require.Equal(t, []APIKey{{Token: "key-1", Principal: "alice"}}, cfg.Auth.APIKeys)
	require.False(t, cfg.Metrics.Enabled)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "sciledger-journal", cfg.Journal.Path)
}

func TestLoadInvalidEnv(t *testing.T) {
	t.Setenv("SCILEDGER_CONFIG_PATH", "")
	t.Setenv("SCILEDGER_SERVER_PORT", "eighty")

	_, err := Load()
	require.ErrorContains(t, err, "SCILEDGER_SERVER_PORT")
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("SCILEDGER_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.ErrorContains(t, err, "read config file")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Transport.Mode = "carrier-pigeon"
	require.ErrorContains(t, cfg.Validate(), "unknown transport mode")

	cfg = Default()
	cfg.Identity.DefaultPrincipal = ""
	require.ErrorContains(t, cfg.Validate(), "default_principal")

	cfg = Default()
	cfg.Transport.Mode = TransportHTTP
	cfg.Server.Port = 70000
	require.ErrorContains(t, cfg.Validate(), "out of range")

	cfg = Default()
	cfg.Auth.APIKeys = []APIKey{{Token: "k"}}
	require.ErrorContains(t, cfg.Validate(), "api_keys[0]")
}
