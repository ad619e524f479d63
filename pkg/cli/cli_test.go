package cli

import (
	"bytes"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"phonecleaner/pkg/channel"
	"phonecleaner/pkg/diskspace"
	"phonecleaner/pkg/server"
	"phonecleaner/pkg/storage"
)

type fixedQuerier int64

func (q fixedQuerier) TotalDiskSpace() diskspace.Reading {
	return int64(q)
}

// CLITestSuite tests the command tree
type CLITestSuite struct {
	suite.Suite
	homeDir string
}

func (s *CLITestSuite) SetupTest() {
	s.homeDir = s.T().TempDir()
	// Keep the search path away from any real config.
	s.T().Setenv("HOME", s.homeDir)
	s.T().Chdir(s.homeDir)
}

func (s *CLITestSuite) run(args ...string) (string, error) {
	root := NewRootCommand("test-v1.0.0")
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return strings.TrimSpace(out.String()), err
}

func (s *CLITestSuite) TestVersion() {
	out, err := s.run("version")
	s.NoError(err)
	s.Equal("test-v1.0.0", out)
}

func (s *CLITestSuite) TestQueryLocal() {
	out, err := s.run("query", "--home-dir", s.homeDir)
	s.Require().NoError(err)

	total, err := strconv.ParseInt(out, 10, 64)
	s.Require().NoError(err, "output %q", out)
	s.GreaterOrEqual(total, int64(0))
}

func (s *CLITestSuite) TestQueryLocalMissingPathIsZero() {
	out, err := s.run("query", "--home-dir", "/nonexistent/path/that/does/not/exist")
	s.NoError(err)
	s.Equal("0", out)
}

func (s *CLITestSuite) TestQueryUnknownMethod() {
	_, err := s.run("query", "--method", "unknownMethod")
	s.ErrorIs(err, channel.ErrNotImplemented)
}

func (s *CLITestSuite) TestQueryRemote() {
	messenger := channel.NewMessenger()
	storage.NewHandler(fixedQuerier(64_000_000_000)).Attach(messenger)
	httpServer := httptest.NewServer(server.NewChannelServer(messenger, "test").Handler())
	defer httpServer.Close()

	out, err := s.run("query", "--remote", "--url", httpServer.URL)
	s.NoError(err)
	s.Equal("64000000000", out)

	out, err = s.run("query", "--remote", "--url", httpServer.URL, "--human")
	s.NoError(err)
	s.Equal("64 GB", out)

	_, err = s.run("query", "--remote", "--url", httpServer.URL, "--method", "foo")
	s.ErrorIs(err, channel.ErrNotImplemented)
}

func (s *CLITestSuite) TestQueryFromEnvironment() {
	s.T().Setenv("PHONECLEANER_HOME_DIR", "/nonexistent/path/that/does/not/exist")

	out, err := s.run("query")
	s.NoError(err)
	s.Equal("0", out)
}

func (s *CLITestSuite) TestServeRejectsInvalidConfig() {
	_, err := s.run("serve", "--listen", " ")
	s.Error(err)

	_, err = s.run("serve", "--shutdown-timeout=-1s")
	s.Error(err)
}

func (s *CLITestSuite) TestMissingConfigFile() {
	_, err := s.run("--config", "/nonexistent/storaged.yaml", "version")
	s.Error(err)
}

func (s *CLITestSuite) TestFormatResult() {
	s.Equal("64000000000", formatResult([]byte("64000000000"), false))
	s.Equal("64 GB", formatResult([]byte("64000000000"), true))
	s.Equal("0", formatResult([]byte("0"), false))
	s.Equal(`"text"`, formatResult([]byte(`"text"`), true))
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}
