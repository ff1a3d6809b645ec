package activity

import "context"

// DefaultChannel tags events that do not carry a channel.
const DefaultChannel = "dashboard"

// Config toggles activity emission. Verbs, when set, limits what audit sinks
// keep; the emitter itself delivers every verb.
type Config struct {
	Enabled bool     `yaml:"enabled"`
	Channel string   `yaml:"channel"`
	Verbs   []string `yaml:"verbs"`
}

// Emitter publishes events to hooks when enabled.
type Emitter struct {
	hooks Hooks
	cfg   Config
}

// NewEmitter builds an emitter. It is disabled when cfg.Enabled is false or
// there are no hooks.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	return &Emitter{hooks: hooks, cfg: cfg}
}

// Enabled reports whether Emit delivers anything.
func (e *Emitter) Enabled() bool {
	return e != nil && e.cfg.Enabled && len(e.hooks) > 0
}

// Emit delivers evt, defaulting its channel.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if !e.Enabled() {
		return nil
	}
	if evt.Channel == "" {
		evt.Channel = e.cfg.Channel
	}
	return e.hooks.Notify(ctx, evt)
}
