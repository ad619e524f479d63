package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite tests configuration loading
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
}

func (s *ConfigTestSuite) SetupTest() {
	s.tempDir = s.T().TempDir()
}

func (s *ConfigTestSuite) TestDefaults() {
	cfg, err := Load(NewViper())
	s.Require().NoError(err)

	s.Equal(":8080", cfg.Listen)
	s.Equal("", cfg.HomeDir)
	s.Equal("info", cfg.LogLevel)
	s.Equal(10*time.Second, cfg.ShutdownTimeout)
	s.Empty(cfg.Plugins.Disabled)
	s.Equal("http://localhost:8080", cfg.Client.URL)
	s.Equal(3, cfg.Client.RetryMax)
	s.Equal(time.Second, cfg.Client.RetryWaitMin)
	s.Equal(30*time.Second, cfg.Client.RetryWaitMax)
}

func (s *ConfigTestSuite) TestEnvironmentOverrides() {
	s.T().Setenv("PHONECLEANER_LISTEN", "127.0.0.1:9090")
	s.T().Setenv("PHONECLEANER_HOME_DIR", "/data/app")
	s.T().Setenv("PHONECLEANER_CLIENT_RETRY_MAX", "5")

	cfg, err := Load(NewViper())
	s.Require().NoError(err)

	s.Equal("127.0.0.1:9090", cfg.Listen)
	s.Equal("/data/app", cfg.HomeDir)
	s.Equal(5, cfg.Client.RetryMax)
}

func (s *ConfigTestSuite) TestReadYAMLFile() {
	path := filepath.Join(s.tempDir, "storaged.yaml")
	content := `
listen: ":7000"
log_level: debug
shutdown_timeout: 3s
plugins:
  disabled:
    - legacy
client:
  url: "https://storage.internal"
  timeout: 5s
`
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	v := NewViper()
	s.Require().NoError(ReadFile(v, path))

	cfg, err := Load(v)
	s.Require().NoError(err)
	s.Equal(":7000", cfg.Listen)
	s.Equal("debug", cfg.LogLevel)
	s.Equal(3*time.Second, cfg.ShutdownTimeout)
	s.Equal([]string{"legacy"}, cfg.Plugins.Disabled)
	s.Equal("https://storage.internal", cfg.Client.URL)
	s.Equal(5*time.Second, cfg.Client.Timeout)
}

func (s *ConfigTestSuite) TestReadTOMLFile() {
	path := filepath.Join(s.tempDir, "storaged.toml")
	content := "listen = \":7001\"\nhome_dir = \"/srv/home\"\n"
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	v := NewViper()
	s.Require().NoError(ReadFile(v, path))

	cfg, err := Load(v)
	s.Require().NoError(err)
	s.Equal(":7001", cfg.Listen)
	s.Equal("/srv/home", cfg.HomeDir)
}

func (s *ConfigTestSuite) TestExplicitMissingFileFails() {
	err := ReadFile(NewViper(), filepath.Join(s.tempDir, "missing.yaml"))
	s.Error(err)
}

func (s *ConfigTestSuite) TestValidate() {
	base := func() *Config {
		cfg, err := Load(NewViper())
		s.Require().NoError(err)
		return cfg
	}

	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty listen", func(c *Config) { c.Listen = " " }},
		{"zero shutdown timeout", func(c *Config) { c.ShutdownTimeout = 0 }},
		{"negative retries", func(c *Config) { c.Client.RetryMax = -1 }},
		{"inverted retry waits", func(c *Config) { c.Client.RetryWaitMin = time.Minute }},
		{"bad client url", func(c *Config) { c.Client.URL = "ftp://host" }},
	}

	for _, tc := range testCases {
		cfg := base()
		tc.mutate(cfg)
		s.Error(cfg.Validate(), tc.name)
	}
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
