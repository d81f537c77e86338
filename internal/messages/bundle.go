// Package messages resolves user-facing strings of the macro annotations
// support from the MacrosBundle resource table.
//
// The locale is fixed per Bundle when it is created; MessageIn overrides it
// for a single call. The process-wide Bundle returned by Default is built
// once, on first use, from the options passed to Configure.
package messages

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/text/language"

	"macros/internal/config"
	"macros/internal/domain"
	"macros/internal/infrastructure/i18n"
	"macros/internal/ports/output"
)

// Ensure Bundle implements the output.Messages port.
var _ output.Messages = (*Bundle)(nil)

// Bundle resolves message keys against an immutable table. It is safe for
// concurrent use.
type Bundle struct {
	table  *i18n.Table
	locale language.Tag
	strict bool
	log    *slog.Logger
}

type options struct {
	locale language.Tag
	dir    string
	strict bool
	log    *slog.Logger
}

type Option func(*options)

// WithLocale sets the active locale. Defaults to English.
func WithLocale(tag language.Tag) Option {
	return func(o *options) { o.locale = tag }
}

// WithMessagesDir loads additional MacrosBundle.* files from dir.
func WithMessagesDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithStrict makes Message panic instead of returning placeholder text.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// New loads the resource table and returns a Bundle for the configured
// locale. Errors wrap domain.ErrLoadFailure.
func New(opts ...Option) (*Bundle, error) {
	o := options{locale: language.English}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = slog.Default()
	}

	table, err := i18n.Load(o.dir)
	if err != nil {
		return nil, err
	}

	b := &Bundle{
		table:  table,
		locale: table.Match(o.locale),
		strict: o.strict,
		log:    o.log,
	}
	b.log.Debug("messages: bundle loaded",
		"bundle", i18n.BundleName,
		"locale", b.locale.String(),
		"requested", o.locale.String())
	return b, nil
}

// Locale is the loaded language closest to the requested locale.
func (b *Bundle) Locale() language.Tag {
	return b.locale
}

// Catalog exposes the loaded table for validation tooling.
func (b *Bundle) Catalog() output.Catalog {
	return b.table
}

// Message renders key with args in the bundle locale.
//
// A missing key renders as !key! and a template/argument mismatch renders the
// raw template (or !key! when there is none); both are logged. In strict mode
// both panic.
func (b *Bundle) Message(key string, args ...any) string {
	return b.MessageIn(b.locale, key, args...)
}

// MessageIn is Message for an explicit locale.
func (b *Bundle) MessageIn(tag language.Tag, key string, args ...any) string {
	s, err := b.lookup(tag, key, args)
	if err == nil {
		return s
	}
	if b.strict {
		panic(err)
	}
	b.log.Error("messages: lookup failed", "key", key, "locale", tag.String(), "error", err)
	if s == "" || errors.Is(err, domain.ErrMissingKey) {
		return "!" + key + "!"
	}
	return s
}

// Lookup renders key with args in the bundle locale. Errors wrap
// domain.ErrMissingKey or domain.ErrFormatMismatch.
func (b *Bundle) Lookup(key string, args ...any) (string, error) {
	return b.lookup(b.locale, key, args)
}

// lookup returns the raw template alongside a format error.
func (b *Bundle) lookup(tag language.Tag, key string, args []any) (string, error) {
	p, matched, err := b.table.Template(tag, key)
	if err != nil {
		return "", err
	}
	s, err := p.Format(matched, args...)
	if err != nil {
		return p.String(), fmt.Errorf("%w: %q: %w", domain.ErrFormatMismatch, key, err)
	}
	return s, nil
}

var (
	defaultMu     sync.Mutex
	defaultOpts   []Option
	defaultLoaded bool
)

// Configure sets the options used to build the Default bundle. It fails with
// domain.ErrAlreadyLoaded once Default has been built.
func Configure(opts ...Option) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLoaded {
		return domain.ErrAlreadyLoaded
	}
	defaultOpts = append([]Option(nil), opts...)
	return nil
}

var loadDefault = sync.OnceValue(func() *Bundle {
	defaultMu.Lock()
	defaultLoaded = true
	opts := append([]Option{WithLocale(config.SystemLocale())}, defaultOpts...)
	defaultMu.Unlock()

	b, err := New(opts...)
	if err != nil {
		panic(fmt.Errorf("messages: %w", err))
	}
	return b
})

// Default returns the process-wide Bundle, loading it on first use with the
// process locale unless Configure said otherwise. It panics when the table
// cannot be loaded.
func Default() *Bundle {
	return loadDefault()
}

// Message renders key with args using the Default bundle.
func Message(key string, args ...any) string {
	return Default().Message(key, args...)
}

// Lookup is Message with errors reported instead of rendered.
func Lookup(key string, args ...any) (string, error) {
	return Default().Lookup(key, args...)
}
