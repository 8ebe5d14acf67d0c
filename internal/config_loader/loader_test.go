package config_loader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
http:
  host: 0.0.0.0
  port: 8080
  cors:
    - https://app.example.com
  metrics_port: 9090
  client:
    user_agent: delegator/1.0
    default_timeout: 1.5s
services:
  catalog:
    protocol: rest
    scheme: http
    authority: catalog.internal:8080
    methods:
      search:
        method: POST
        path: /search/
virtualhosts:
  catalog:
    host: api.example.com
    routes:
      /search:
        cryptogram: '{"steps":[{"service":"catalog","method":"search","payload":{"q":""}}]}'
events:
  user_action:
    queue_url: https://queue.example/user-action
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", validYAML))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.HTTP.CORS)
	assert.Equal(t, 9090, cfg.HTTP.MetricsPort)
	assert.Equal(t, "delegator/1.0", cfg.HTTP.Client.UserAgent)

	timeout, err := cfg.HTTP.Client.ParseDefaultTimeout()
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, timeout)

	svc, ok := cfg.Services["catalog"]
	require.True(t, ok)
	assert.Equal(t, "rest", svc.Protocol)
	assert.Equal(t, "catalog.internal:8080", svc.Authority)
	assert.Equal(t, "POST", svc.Methods["search"].HTTPMethod)
	assert.Equal(t, "/search/", svc.Methods["search"].PathAndQuery)

	vhost, ok := cfg.Virtualhosts["catalog"]
	require.True(t, ok)
	assert.Equal(t, "api.example.com", vhost.Host)

	c, err := vhost.Routes["/search"].ParseCryptogram()
	require.NoError(t, err)
	require.Len(t, c.Steps, 1)
	assert.Equal(t, "catalog", *c.Steps[0].Service)

	require.NotNil(t, cfg.Events)
	assert.Equal(t, "https://queue.example/user-action", cfg.Events.UserAction.QueueURL)
}

func TestLoadTOML(t *testing.T) {
	content := `
[http]
host = "127.0.0.1"
port = 3000

[http.client]
user_agent = "delegator/1.0"
default_timeout = "2s"

[services.pricing]
protocol = "rest"
scheme = "http"
authority = "pricing.internal"

[services.pricing.methods.lookup]
method = "POST"
path = "/price/"
`
	cfg, err := Load(writeConfig(t, "config.toml", content))
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.HTTP.Port)

	timeout, err := cfg.HTTP.Client.ParseDefaultTimeout()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, timeout)

	assert.Equal(t, "POST", cfg.Services["pricing"].Methods["lookup"].HTTPMethod)
}

func TestLoadMissingPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvConfigPath)
}

func TestLoadPathFromEnv(t *testing.T) {
	path := writeConfig(t, "config.yaml", validYAML)
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTP.Port)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load(writeConfig(t, "config.ini", "x = 1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config file extension")
}

func TestLoadRejectsMissingRequiredFields(t *testing.T) {
	content := `
http:
  host: 0.0.0.0
  port: 8080
  client:
    user_agent: delegator/1.0
    default_timeout: 1s
`
	_, err := Load(writeConfig(t, "config.yaml", content))
	require.Error(t, err)
	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	content := `
http:
  host: 0.0.0.0
  port: 8080
  client:
    user_agent: delegator/1.0
    default_timeout: soon
services:
  catalog:
    protocol: rest
    scheme: http
    authority: catalog.internal
    methods:
      search:
        method: POST
        path: /search/
`
	_, err := Load(writeConfig(t, "config.yaml", content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_timeout")
}

func TestLoadRejectsUnresolvableRouteService(t *testing.T) {
	content := `
http:
  host: 0.0.0.0
  port: 8080
  client:
    user_agent: delegator/1.0
    default_timeout: 1s
services:
  catalog:
    protocol: rest
    scheme: http
    authority: catalog.internal
    methods:
      search:
        method: POST
        path: /search/
virtualhosts:
  catalog:
    host: api.example.com
    routes:
      /search:
        cryptogram: '{"steps":[{"service":"missing","method":"search"}]}'
`
	_, err := Load(writeConfig(t, "config.yaml", content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown service")
}

func TestParseStringyDuration(t *testing.T) {
	tests := []struct {
		value    string
		expected time.Duration
		wantErr  bool
	}{
		{value: "1s", expected: time.Second},
		{value: "0.25s", expected: 250 * time.Millisecond},
		{value: "600s", expected: 600 * time.Second},
		{value: "1m", wantErr: true},
		{value: "s", wantErr: true},
		{value: "-1s", wantErr: true},
		{value: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			d, err := parseStringyDuration(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}
