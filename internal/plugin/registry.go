package plugin

import (
	"log/slog"
)

// Registry runs every registered Plugin at a hop and merges their output
// under each plugin's name. Plugins are stateless, so a Registry is safe
// to share across concurrent traces (spec.md §5).
type Registry struct {
	log     *slog.Logger
	plugins []Plugin
}

// NewRegistry builds a Registry. A nil logger falls back to slog.Default.
func NewRegistry(log *slog.Logger, plugins ...Plugin) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{log: log, plugins: plugins}
}

// Register adds a plugin to the registry.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
}

// Decode runs every plugin against communities/localPref and merges each
// plugin's non-empty result map under its name. A plugin that panics is
// recovered and logged — it never aborts the trace (spec.md §4.D
// step 8, §7 PluginError).
func (r *Registry) Decode(communities []string, localPref *int) map[string]map[string]Value {
	if len(r.plugins) == 0 {
		return nil
	}
	out := make(map[string]map[string]Value, len(r.plugins))
	for _, p := range r.plugins {
		result := r.runSafely(p, communities, localPref)
		if len(result) > 0 {
			out[p.Name()] = result
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (r *Registry) runSafely(p Plugin, communities []string, localPref *int) (result map[string]Value) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn("plugin panicked, ignoring", "plugin", p.Name(), "recover", rec)
			result = nil
		}
	}()
	return p.Decode(communities, localPref)
}
