package application

import (
	"context"
	"errors"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"macros/internal/adapters/source"
	"macros/internal/domain/entities"
	"macros/internal/messages"
)

type staticSource struct {
	sites []entities.CallSite
	err   error
}

func (s staticSource) CallSites(context.Context) ([]entities.CallSite, error) {
	return s.sites, s.err
}

func pos(line int) token.Position {
	return token.Position{Filename: "main.go", Line: line, Column: 2}
}

func newService(t *testing.T, dir string, src staticSource) *CheckService {
	t.Helper()
	opts := []messages.Option{messages.WithLocale(language.English)}
	if dir != "" {
		opts = append(opts, messages.WithMessagesDir(dir))
	}
	b, err := messages.New(opts...)
	require.NoError(t, err)
	return NewCheckService(b.Catalog(), b, src)
}

func TestCheckCallSites(t *testing.T) {
	svc := newService(t, "", staticSource{sites: []entities.CallSite{
		{Pos: pos(1), Key: "greeting.hello", Args: 1},
		{Pos: pos(2), Key: "does.not.exist"},
		{Pos: pos(3), Key: "macro.expansion.failed", Args: 1},
		{Pos: pos(4), Key: "macro.expansion.failed", Args: 0, Variadic: true},
	}})

	findings, n, err := svc.CheckCallSites(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	require.Len(t, findings, 2)

	assert.Equal(t, entities.FindingMissingKey, findings[0].Kind)
	assert.Equal(t, "main.go:2:2: unknown message key 'does.not.exist'", findings[0].Text)
	assert.False(t, findings[0].IsTableFinding())

	assert.Equal(t, entities.FindingArgCount, findings[1].Kind)
	assert.Equal(t, "main.go:3:2: key 'macro.expansion.failed' expects 2 arguments, got 1", findings[1].Text)
}

func TestCheckCallSitesSourceError(t *testing.T) {
	boom := errors.New("boom")
	svc := newService(t, "", staticSource{err: boom})

	_, _, err := svc.CheckCallSites(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = svc.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestCheckTable(t *testing.T) {
	t.Run("shipped table is consistent", func(t *testing.T) {
		svc := newService(t, "", staticSource{})
		assert.Empty(t, svc.CheckTable(context.Background()))
	})

	t.Run("inconsistent translation", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "MacrosBundle.de.toml"), []byte(
			"\"greeting.hello\" = \"Hallo {0} und {1}\"\n\"only.in.german\" = \"Nur\"\n"), 0o600))
		svc := newService(t, dir, staticSource{})

		findings := svc.CheckTable(context.Background())
		require.Len(t, findings, 2)

		assert.Equal(t, entities.FindingTranslationArity, findings[0].Kind)
		assert.Equal(t, language.German, findings[0].Language)
		assert.Equal(t, "de: key 'greeting.hello' expects 2 arguments, en template expects 1", findings[0].Text)
		assert.True(t, findings[0].IsTableFinding())

		assert.Equal(t, entities.FindingOrphan, findings[1].Kind)
		assert.Equal(t, "de: key 'only.in.german' has no en template", findings[1].Text)
	})
}

func TestRun(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := newService(t, "", staticSource{sites: []entities.CallSite{
			{Pos: pos(1), Key: "greeting.hello", Args: 1},
		}})
		report, err := svc.Run(context.Background())
		require.NoError(t, err)
		assert.True(t, report.OK())
		assert.Equal(t, "1 call sites and 2 languages checked, no problems found", report.Summary)
	})

	t.Run("failed", func(t *testing.T) {
		svc := newService(t, "", staticSource{sites: []entities.CallSite{
			{Pos: pos(1), Key: "nope"},
			{Pos: pos(2), Key: "greeting.hello"},
		}})
		report, err := svc.Run(context.Background())
		require.NoError(t, err)
		assert.False(t, report.OK())
		assert.Len(t, report.Findings, 2)
		assert.Equal(t, "2 problems found", report.Summary)
	})
}

// Every lookup in this module's own sources must match the shipped table.
func TestModuleCallSites(t *testing.T) {
	root, err := filepath.Abs(filepath.Join("..", ".."))
	require.NoError(t, err)

	b, err := messages.New()
	require.NoError(t, err)
	svc := NewCheckService(b.Catalog(), b, source.NewScanner([]string{root}, nil, false))

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	for _, f := range report.Findings {
		t.Error(f.Text)
	}
	assert.Positive(t, report.CallSites)
}
