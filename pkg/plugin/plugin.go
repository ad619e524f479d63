// Package plugin runs the generic plugin registration step. Plugins add
// themselves to a process-wide catalogue with Add, usually from an init
// function, and the Registrant activates them at startup.
package plugin

import (
	"fmt"
	"sort"
	"sync"

	"phonecleaner/pkg/channel"
	"phonecleaner/pkg/log"
	"phonecleaner/pkg/metrics"
)

// Plugin is a native extension that attaches its own channels.
type Plugin interface {
	Name() string
	Register(m *channel.Messenger) error
}

var (
	catalogueMu sync.RWMutex
	catalogue   = make(map[string]Plugin)
)

// Add makes p available to the registrant. It panics on a nil plugin or a
// duplicate name, like database/sql.Register.
func Add(p Plugin) {
	catalogueMu.Lock()
	defer catalogueMu.Unlock()

	if p == nil {
		panic("plugin: Add plugin is nil")
	}
	if _, dup := catalogue[p.Name()]; dup {
		panic(fmt.Sprintf("plugin: Add called twice for plugin %s", p.Name()))
	}
	catalogue[p.Name()] = p
}

// Catalogue returns the added plugins sorted by name.
func Catalogue() []Plugin {
	catalogueMu.RLock()
	defer catalogueMu.RUnlock()

	plugins := make([]Plugin, 0, len(catalogue))
	for _, p := range catalogue {
		plugins = append(plugins, p)
	}
	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Name() < plugins[j].Name()
	})
	return plugins
}

// Registrant activates a set of plugins against a messenger.
type Registrant struct {
	plugins  []Plugin
	disabled map[string]struct{}
}

// NewRegistrant returns a registrant over plugins, skipping any named in disabled.
// A nil plugins slice means the process-wide catalogue.
func NewRegistrant(plugins []Plugin, disabled []string) *Registrant {
	if plugins == nil {
		plugins = Catalogue()
	}

	skip := make(map[string]struct{}, len(disabled))
	for _, name := range disabled {
		skip[name] = struct{}{}
	}

	return &Registrant{plugins: plugins, disabled: skip}
}

// RegisterAll registers every enabled plugin with m. Failures are logged and
// skipped; nothing is reported to the caller.
func (r *Registrant) RegisterAll(m *channel.Messenger) {
	registered := 0
	for _, p := range r.plugins {
		name := p.Name()
		if _, off := r.disabled[name]; off {
			log.Debug().Str("plugin", name).Msg("Plugin disabled by configuration")
			continue
		}

		if err := registerOne(p, m); err != nil {
			log.Warn().Err(err).Str("plugin", name).Msg("Plugin registration failed")
			continue
		}
		registered++
	}

	metrics.PluginsRegistered.Set(float64(registered))
	log.Info().Int("registered", registered).Int("available", len(r.plugins)).Msg("Plugins registered")
}

func registerOne(p Plugin, m *channel.Messenger) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("plugin %s panicked: %v", p.Name(), rec)
		}
	}()
	return p.Register(m)
}
