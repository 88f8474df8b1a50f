package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()
	assert.Equal(t, c.ServerEndpointAddr, "http://localhost:8080")
	assert.Equal(t, c.RequestTimeout, 10*time.Second)
}

func TestLoadConfig(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()
	os.Args = []string{"cli"}

	c := LoadConfig()
	assert.Equal(t, c.ServerEndpointAddr, "http://localhost:8080")
	assert.Equal(t, c.RequestTimeout, 10*time.Second)
}
