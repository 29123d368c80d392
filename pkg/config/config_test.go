package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/NeuralTrust/LearnGate/pkg/config"
	"github.com/NeuralTrust/LearnGate/pkg/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.AdminPort)
	assert.Equal(t, 8081, cfg.Server.ProxyPort)
	assert.Equal(t, "http://localhost:3000", cfg.Upstream.URL)
	assert.Equal(t, 30*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, []string{"/api/auth", "/api/public"}, cfg.Auth.PublicPrefixes)
	assert.Equal(t, config.DefaultRoutes, cfg.Routes)

	p, err := cfg.BuildPolicy()
	require.NoError(t, err)
	assert.Equal(t, policy.DefaultMaxBodyBytes, p.Limits().MaxBodyBytes)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  proxy_port: 9000
upstream:
  url: http://lms:4000
  timeout: 5s
routes:
  - /api/posts/:postId
security:
  max_body_bytes: 2048
  max_depth: 8
  free_text_fields: [body]
  strict_route_prefixes: [/api/posts]
  general_patterns:
    - name: semicolon
      expr: ";"
telemetry:
  exporters:
    - name: kafka
      settings:
        host: localhost
        port: "9092"
        topic: security-events
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600))

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.ProxyPort)
	assert.Equal(t, "http://lms:4000", cfg.Upstream.URL)
	assert.Equal(t, 5*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, []string{"/api/posts/:postId"}, cfg.Routes)
	require.Len(t, cfg.Telemetry.Exporters, 1)
	assert.Equal(t, "kafka", cfg.Telemetry.Exporters[0].Name)
	assert.Equal(t, "security-events", cfg.Telemetry.Exporters[0].Settings["topic"])

	p, err := cfg.BuildPolicy()
	require.NoError(t, err)
	assert.Equal(t, int64(2048), p.Limits().MaxBodyBytes)
	assert.Equal(t, 8, p.Limits().MaxDepth)
	assert.Equal(t, policy.TierStrict, p.TierFor("/api/posts/1", "body"))
	pt, matched := p.Match(policy.TierGeneral, "a;b")
	require.True(t, matched)
	assert.Equal(t, "semicolon", pt.Name)
}

func TestBuildPolicy_InvalidPattern(t *testing.T) {
	cfg := &config.Config{Security: policy.Settings{
		StrictPatterns: []policy.PatternSource{{Name: "bad", Expr: "(["}},
	}}
	_, err := cfg.BuildPolicy()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid security settings")
}
