package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"qrd/internal/structures"
)

func validConfig() *structures.Config {
	return &structures.Config{
		Mode: structures.ModeFull,
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: structures.Storage{
			DBPath: "/tmp/qrd.db",
		},
		Redirect: structures.RedirectConfig{
			StaticURL: "https://example.org/promo",
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_HostOnlyMode(t *testing.T) {
	c := validConfig()
	c.Mode = structures.ModeHostOnly
	v := NewCnfValidator(c)
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_InvalidMode(t *testing.T) {
	c := validConfig()
	c.Mode = "standalone"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_EmptyDBPath(t *testing.T) {
	c := validConfig()
	c.Storage.DBPath = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_InvalidRedirectURL(t *testing.T) {
	c := validConfig()
	c.Redirect.StaticURL = "not-a-url"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}
