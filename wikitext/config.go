package wikitext

import (
	"io"
	"log/slog"
)

// defaultSchemes is the fixed URL scheme list from spec section 4.G,
// promoted to an actual, overridable Config field per section 6's "SHOULD
// be exposed as configuration" note.
var defaultSchemes = []string{
	"http", "https", "ftp", "telnet", "irc", "ircs", "nntp",
	"worldwind", "mailto", "news", "svn", "git", "mms",
}

// Config holds the options recognized by the core (spec section 6),
// plus the ambient logger. It is a plain struct with functional-option
// constructors, mirroring the exported-struct-with-defaults convention
// peg.Config already uses for CallstackLimit/LoopLimit/Disable*, rather
// than introducing a config-file or env-var library.
type Config struct {
	// AllowSchemes is the set of URL schemes recognized by external link
	// and plain-link rules. Defaults to defaultSchemes.
	AllowSchemes []string

	// Entities resolves named HTML entities to code points. Defaults to
	// HTMLEntities (entities.go).
	Entities EntityResolver

	// Logger receives structured diagnostics as they are produced, in
	// addition to the []Diagnostic slice Parse returns. Defaults to a
	// discarding slog.Logger, matching the silent-by-default convention.
	Logger *slog.Logger

	// StripCommentsOnFirstLine, if true, treats a comment on the first
	// line as comment_alone even though spec section 4.F documents this
	// as a quirk to preserve by default (false).
	StripCommentsOnFirstLine bool

	// Memoization enables the peg engine's memo table for state-
	// independent rules. Default true; set false to compare parses for
	// memo/no-memo equivalence (spec section 8, invariant 3).
	Memoization bool

	// Inclusion selects how the preprocessor renders <noinclude>,
	// <includeonly> and <onlyinclude> regions. Defaults to InclusionView,
	// matching how a page is rendered when viewed directly rather than
	// transcluded onto another page.
	Inclusion InclusionMode
}

// Option configures a Config via WithXxx constructors.
type Option func(*Config)

// WithSchemes overrides the recognized external-link URL schemes.
func WithSchemes(schemes ...string) Option {
	return func(cfg *Config) {
		cfg.AllowSchemes = append([]string(nil), schemes...)
	}
}

// WithEntities overrides the named-entity resolver.
func WithEntities(resolver EntityResolver) Option {
	return func(cfg *Config) {
		cfg.Entities = resolver
	}
}

// WithLogger overrides the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = logger
	}
}

// WithMemoization toggles the engine's memo table.
func WithMemoization(enabled bool) Option {
	return func(cfg *Config) {
		cfg.Memoization = enabled
	}
}

// WithStripCommentsOnFirstLine toggles the first-line comment-alone quirk.
func WithStripCommentsOnFirstLine(strip bool) Option {
	return func(cfg *Config) {
		cfg.StripCommentsOnFirstLine = strip
	}
}

// WithInclusion selects how <noinclude>/<includeonly>/<onlyinclude> regions
// are rendered by the preprocessor.
func WithInclusion(mode InclusionMode) Option {
	return func(cfg *Config) {
		cfg.Inclusion = mode
	}
}

// NewConfig builds a Config from its defaults plus the given options.
func NewConfig(opts ...Option) Config {
	cfg := Config{
		AllowSchemes:             append([]string(nil), defaultSchemes...),
		Entities:                 HTMLEntities,
		Logger:                   slog.New(slog.NewTextHandler(io.Discard, nil)),
		StripCommentsOnFirstLine: false,
		Memoization:              true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Entities == nil {
		cfg.Entities = HTMLEntities
	}
	return cfg
}
