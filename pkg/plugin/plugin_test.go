package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"phonecleaner/pkg/channel"
)

// MockPlugin attaches a single channel named after itself
type MockPlugin struct {
	name       string
	err        error
	panics     bool
	registered int
}

func (p *MockPlugin) Name() string { return p.name }

func (p *MockPlugin) Register(m *channel.Messenger) error {
	if p.panics {
		panic("broken plugin")
	}
	if p.err != nil {
		return p.err
	}
	p.registered++
	m.SetMethodCallHandler("plugins/"+p.name, func(context.Context, channel.MethodCall) (any, error) {
		return p.name, nil
	})
	return nil
}

// PluginTestSuite tests the plugin registrant
type PluginTestSuite struct {
	suite.Suite
	messenger *channel.Messenger
}

func (s *PluginTestSuite) SetupTest() {
	s.messenger = channel.NewMessenger()
}

func (s *PluginTestSuite) TestRegisterAll() {
	alpha := &MockPlugin{name: "alpha"}
	beta := &MockPlugin{name: "beta"}

	NewRegistrant([]Plugin{alpha, beta}, nil).RegisterAll(s.messenger)

	s.Equal(1, alpha.registered)
	s.Equal(1, beta.registered)
	s.Equal([]string{"plugins/alpha", "plugins/beta"}, s.messenger.Channels())
}

func (s *PluginTestSuite) TestDisabledPluginsSkipped() {
	alpha := &MockPlugin{name: "alpha"}
	beta := &MockPlugin{name: "beta"}

	NewRegistrant([]Plugin{alpha, beta}, []string{"beta"}).RegisterAll(s.messenger)

	s.Equal(1, alpha.registered)
	s.Equal(0, beta.registered)
	s.Equal([]string{"plugins/alpha"}, s.messenger.Channels())
}

func (s *PluginTestSuite) TestFailuresDoNotStopRegistration() {
	failing := &MockPlugin{name: "failing", err: errors.New("no device")}
	panicking := &MockPlugin{name: "panicking", panics: true}
	healthy := &MockPlugin{name: "healthy"}

	s.NotPanics(func() {
		NewRegistrant([]Plugin{failing, panicking, healthy}, nil).RegisterAll(s.messenger)
	})

	s.Equal(1, healthy.registered)
	s.Equal([]string{"plugins/healthy"}, s.messenger.Channels())
}

func (s *PluginTestSuite) TestCatalogue() {
	Add(&MockPlugin{name: "zz-catalogue-test"})
	Add(&MockPlugin{name: "aa-catalogue-test"})

	var names []string
	for _, p := range Catalogue() {
		names = append(names, p.Name())
	}
	s.Contains(names, "zz-catalogue-test")
	s.Contains(names, "aa-catalogue-test")
	s.Less(indexOf(names, "aa-catalogue-test"), indexOf(names, "zz-catalogue-test"))

	s.Panics(func() { Add(&MockPlugin{name: "aa-catalogue-test"}) })
	s.Panics(func() { Add(nil) })
}

func (s *PluginTestSuite) TestNilPluginsUsesCatalogue() {
	Add(&MockPlugin{name: "from-catalogue"})

	NewRegistrant(nil, nil).RegisterAll(s.messenger)

	s.Contains(s.messenger.Channels(), "plugins/from-catalogue")
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func TestPluginSuite(t *testing.T) {
	suite.Run(t, new(PluginTestSuite))
}
