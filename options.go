package fy

// config collects every functional option shared by Parser, Emitter
// and Composer (spec.md §2 Configuration), generalized the way
// awsqed-config-formatter/formatter threads an options slice through
// its formatter constructors.
type config struct {
	mode    Mode
	indent  int
	width   int
	flow    FlowStyle
	resolve bool
	strict  bool
	logger  Logger
}

func defaultConfig() config {
	return config{
		mode:    YAML12,
		indent:  2,
		width:   80,
		flow:    FlowAny,
		resolve: true,
		strict:  true,
		logger:  noopLogger(),
	}
}

// Option configures a Parser, Emitter or Composer.
type Option func(*config)

// WithMode selects the YAML version / JSON dialect (default YAML12).
func WithMode(m Mode) Option { return func(c *config) { c.mode = m } }

// WithIndent sets the block indentation width used by the emitter
// (default 2; ignored by Parser/Composer).
func WithIndent(n int) Option { return func(c *config) { c.indent = n } }

// WithWidth sets the emitter's preferred line width for folding
// (default 80; <= 0 disables width-based folding).
func WithWidth(n int) Option { return func(c *config) { c.width = n } }

// WithFlow selects the emitter's block/flow policy (default FlowAny:
// each collection keeps the style recorded on its node).
func WithFlow(f FlowStyle) Option { return func(c *config) { c.flow = f } }

// WithResolve records a core-schema resolution setting (default true).
// Parser does not consult it: untagged scalars are resolved against
// the core schema whatever the setting.
func WithResolve(b bool) Option { return func(c *config) { c.resolve = b } }

// WithStrict toggles strict duplicate-mapping-key rejection (default
// true; spec.md §9 open question (a)).
func WithStrict(b bool) Option { return func(c *config) { c.strict = b } }

// WithLogger attaches a Logger for structured tracing (default: a
// no-op logger, consistent with the "no implicit I/O" rule).
func WithLogger(l Logger) Option { return func(c *config) { c.logger = l } }
