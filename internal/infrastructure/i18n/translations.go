package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/nicksnyder/go-i18n/v2/i18n/template"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"macros/internal/domain"
	"macros/internal/ports/output"
	"macros/pkg/msgformat"
)

// BundleName is the logical name of the resource table. Files are named
// <BundleName>.<lang>.<format>.
const BundleName = "MacrosBundle"

//go:embed MacrosBundle.*.toml
var localeFS embed.FS

// Ensure Table implements the output.Catalog port.
var _ output.Catalog = (*Table)(nil)

// Table is the immutable message table, backed by a go-i18n Bundle.
// Every template is parsed once at load time.
type Table struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	patterns        map[language.Tag]map[string]*msgformat.Pattern
}

// Load builds a Table from the embedded resource files, then from the
// <BundleName>.* files in dir when dir is not empty. Later files override
// earlier entries with the same language and key.
func Load(dir string) (*Table, error) {
	t := &Table{
		bundle:          i18n.NewBundle(language.English),
		defaultLanguage: language.English,
		patterns:        make(map[language.Tag]map[string]*msgformat.Pattern),
	}
	t.bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	t.bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
	t.bundle.RegisterUnmarshalFunc("yml", yaml.Unmarshal)
	t.bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	embedded, err := fs.Glob(localeFS, BundleName+".*.toml")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLoadFailure, err)
	}
	for _, file := range embedded {
		mf, err := t.bundle.LoadMessageFileFS(localeFS, file)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrLoadFailure, file, err)
		}
		if err := t.addFile(file, mf); err != nil {
			return nil, err
		}
	}

	if dir != "" {
		files, err := bundleFiles(dir)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			mf, err := t.bundle.LoadMessageFile(file)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", domain.ErrLoadFailure, file, err)
			}
			if err := t.addFile(file, mf); err != nil {
				return nil, err
			}
		}
	}

	if len(t.patterns[t.defaultLanguage]) == 0 {
		return nil, fmt.Errorf("%w: no %s messages for default language %s", domain.ErrLoadFailure, BundleName, t.defaultLanguage)
	}
	return t, nil
}

func bundleFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLoadFailure, err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, BundleName+".") {
			continue
		}
		switch strings.TrimPrefix(filepath.Ext(name), ".") {
		case "toml", "yaml", "yml", "json":
			files = append(files, filepath.Join(dir, name))
		}
	}
	slices.Sort(files)
	return files, nil
}

func (t *Table) addFile(name string, mf *i18n.MessageFile) error {
	byKey, ok := t.patterns[mf.Tag]
	if !ok {
		byKey = make(map[string]*msgformat.Pattern, len(mf.Messages))
		t.patterns[mf.Tag] = byKey
	}
	for _, m := range mf.Messages {
		p, err := msgformat.Parse(m.Other)
		if err != nil {
			return fmt.Errorf("%w: %s: key %q: %w", domain.ErrLoadFailure, name, m.ID, err)
		}
		byKey[m.ID] = p
	}
	slog.Debug("i18n: loaded message file", "file", name, "language", mf.Tag.String(), "messages", len(mf.Messages))
	return nil
}

// Template returns the parsed template for key, matching tag against the
// loaded languages and falling back to the default language.
//
// go-i18n only selects the message; its text/template execution is disabled
// so that quoted "{{" in a template stays literal.
func (t *Table) Template(tag language.Tag, key string) (*msgformat.Pattern, language.Tag, error) {
	localizer := i18n.NewLocalizer(t.bundle, tag.String())
	raw, matched, err := localizer.LocalizeWithTag(&i18n.LocalizeConfig{
		MessageID:      key,
		TemplateParser: template.IdentityParser{},
	})
	if err != nil {
		var notFound *i18n.MessageNotFoundErr
		if errors.As(err, &notFound) {
			return nil, language.Und, fmt.Errorf("%w: %q", domain.ErrMissingKey, key)
		}
		return nil, language.Und, fmt.Errorf("%w: %q: %w", domain.ErrFormatMismatch, key, err)
	}
	if p, ok := t.patterns[matched][key]; ok {
		return p, matched, nil
	}
	p, err := msgformat.Parse(raw)
	if err != nil {
		return nil, matched, fmt.Errorf("%w: %q: %w", domain.ErrFormatMismatch, key, err)
	}
	return p, matched, nil
}

// Match returns the loaded language closest to tag.
func (t *Table) Match(tag language.Tag) language.Tag {
	tags := t.Languages()
	_, i, _ := language.NewMatcher(tags).Match(tag)
	return tags[i]
}

func (t *Table) DefaultLanguage() language.Tag {
	return t.defaultLanguage
}

// Languages lists loaded languages, default language first.
func (t *Table) Languages() []language.Tag {
	return t.bundle.LanguageTags()
}

// Keys returns the sorted keys defined for tag.
func (t *Table) Keys(tag language.Tag) []string {
	keys := make([]string, 0, len(t.patterns[tag]))
	for k := range t.patterns[tag] {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (t *Table) Arity(tag language.Tag, key string) (int, bool) {
	p, ok := t.patterns[tag][key]
	if !ok {
		return 0, false
	}
	return p.Arity(), true
}
