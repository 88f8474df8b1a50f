package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestParseJson(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()

	t.Run("loads values from file", func(t *testing.T) {
		path := writeTempConfig(t, `{"server_endpoint_addr":"http://api.example.com","request_timeout":"5s"}`)
		os.Args = []string{"cli", "-c", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "http://api.example.com", cfg.ServerEndpointAddr)
		assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	})

	t.Run("no-op without config flag", func(t *testing.T) {
		os.Args = []string{"cli"}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "http://localhost:8080", cfg.ServerEndpointAddr)
	})

	t.Run("panics on invalid json", func(t *testing.T) {
		path := writeTempConfig(t, `{not json`)
		os.Args = []string{"cli", "-c", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		assert.Panics(t, func() { parseJson(cfg) })
	})
}
