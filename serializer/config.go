// Package serializer projects records into plain, client-facing shapes:
// attribute selection, root wrapping, and relation projection (foreign-key,
// embedded, or side-loaded), with recursive per-relation overrides.
// Grounded on the teacher's translator.go (which turns driver rows into
// typed values) but generalized from a single-record type conversion to a
// configurable, relation-aware projection over the in-memory graph.
package serializer

// RelationsMode selects how a relationship is projected into the output.
type RelationsMode string

const (
	ForeignKey           RelationsMode = "foreignKey"
	Embedded             RelationsMode = "embedded"
	EmbeddedForeignKey   RelationsMode = "embedded+foreignKey"
	SideLoaded           RelationsMode = "sideLoaded"
	SideLoadedForeignKey RelationsMode = "sideLoaded+foreignKey"
)

func (m RelationsMode) isSideLoaded() bool {
	return m == SideLoaded || m == SideLoadedForeignKey
}

func (m RelationsMode) isEmbedded() bool {
	return m == Embedded || m == EmbeddedForeignKey
}

func (m RelationsMode) keepsForeignKey() bool {
	return m == ForeignKey || m == EmbeddedForeignKey || m.isSideLoaded()
}

// Select configures attribute projection: Include, if non-nil, is an
// include-only key list; otherwise Exclude, if non-nil, excludes those
// keys and includes the rest. Both nil means "include everything".
type Select struct {
	Include []string
	Exclude []string
}

// RootOption encodes the tri-state `root` setting: unset (default per
// mode), explicit bool, or an explicit string key.
type RootOption struct {
	Explicit bool
	Enabled  bool
	Key      string
}

// RelationOverride overrides how one relation is projected: its own mode
// (zero value inherits the config's top-level RelationsMode) and an
// optional nested Config applied when recursing into that relation.
type RelationOverride struct {
	Mode   RelationsMode
	Nested *Config
}

// Config is a serializer configuration: what to render and how.
type Config struct {
	Select        Select
	Root          RootOption
	With          map[string]RelationOverride
	RelationsMode RelationsMode
}

// Option configures a Config at construction or override time.
type Option func(*Config)

// New builds a Config from options, defaulting RelationsMode to ForeignKey.
func New(opts ...Option) Config {
	cfg := Config{RelationsMode: ForeignKey, With: map[string]RelationOverride{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Clone returns a deep-enough copy of cfg safe to mutate with further
// options without affecting the original (used to apply per-call overrides
// onto a collection's default config).
func (c Config) Clone() Config {
	with := make(map[string]RelationOverride, len(c.With))
	for k, v := range c.With {
		with[k] = v
	}
	out := c
	out.With = with
	return out
}

// WithSelect restricts output to the listed attribute keys.
func WithSelect(fields ...string) Option {
	return func(c *Config) { c.Select = Select{Include: fields} }
}

// WithSelectExclude includes every attribute except the listed keys.
func WithSelectExclude(fields ...string) Option {
	return func(c *Config) { c.Select = Select{Exclude: fields} }
}

// WithSelectMap mirrors the `{[field]: boolean}` select form: if any value
// is true, only true keys are included (false keys are redundant); if all
// are false, those keys are excluded and the rest included.
func WithSelectMap(fields map[string]bool) Option {
	return func(c *Config) {
		var include, exclude []string
		for k, v := range fields {
			if v {
				include = append(include, k)
			} else {
				exclude = append(exclude, k)
			}
		}
		if len(include) > 0 {
			c.Select = Select{Include: include}
		} else {
			c.Select = Select{Exclude: exclude}
		}
	}
}

// WithRoot sets the `root` option: a bool enables/disables root wrapping
// with the default key, a string enables it with an explicit key.
func WithRoot(v any) Option {
	return func(c *Config) {
		switch val := v.(type) {
		case bool:
			c.Root = RootOption{Explicit: true, Enabled: val}
		case string:
			c.Root = RootOption{Explicit: true, Enabled: true, Key: val}
		}
	}
}

// WithRelationsMode sets the config's default relation projection mode.
func WithRelationsMode(mode RelationsMode) Option {
	return func(c *Config) { c.RelationsMode = mode }
}

// WithRelations lists relation names to include, inheriting the config's
// default RelationsMode.
func WithRelations(names ...string) Option {
	return func(c *Config) {
		for _, name := range names {
			if c.With == nil {
				c.With = map[string]RelationOverride{}
			}
			c.With[name] = RelationOverride{}
		}
	}
}

// WithRelation includes relation name with an explicit mode and, when
// nested is non-nil, a nested Config applied recursively when rendering it.
func WithRelation(name string, mode RelationsMode, nested *Config) Option {
	return func(c *Config) {
		if c.With == nil {
			c.With = map[string]RelationOverride{}
		}
		c.With[name] = RelationOverride{Mode: mode, Nested: nested}
	}
}

func (c Config) relationMode(name string) (RelationsMode, bool) {
	override, ok := c.With[name]
	if !ok {
		return "", false
	}
	if override.Mode == "" {
		return c.RelationsMode, true
	}
	return override.Mode, true
}
