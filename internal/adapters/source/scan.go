package source

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/ast/inspector"

	"macros/internal/domain/entities"
	"macros/internal/ports/output"
)

// DefaultFuncs are the selector names treated as message lookups.
var DefaultFuncs = []string{"Message", "Lookup"}

var _ output.CallSiteSource = (*Scanner)(nil)

// Scanner finds calls such as messages.Message("key", args...) in Go files
// below a set of root directories. Only calls whose first argument is a
// string literal are reported.
type Scanner struct {
	roots []string
	funcs []string
	tests bool
}

// NewScanner scans roots for calls to funcs (DefaultFuncs when empty).
// includeTests adds _test.go files.
func NewScanner(roots []string, funcs []string, includeTests bool) *Scanner {
	if len(funcs) == 0 {
		funcs = DefaultFuncs
	}
	return &Scanner{roots: roots, funcs: funcs, tests: includeTests}
}

// CallSites parses every package directory concurrently and returns the
// sites sorted by position.
func (s *Scanner) CallSites(ctx context.Context) ([]entities.CallSite, error) {
	dirs, err := s.packageDirs()
	if err != nil {
		return nil, err
	}

	var (
		mu    sync.Mutex
		sites []entities.CallSite
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, dir := range dirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			found, err := s.scanDir(dir)
			if err != nil {
				return err
			}
			mu.Lock()
			sites = append(sites, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(sites, func(a, b entities.CallSite) int {
		if c := strings.Compare(a.Pos.Filename, b.Pos.Filename); c != 0 {
			return c
		}
		if a.Pos.Line != b.Pos.Line {
			return a.Pos.Line - b.Pos.Line
		}
		return a.Pos.Column - b.Pos.Column
	})
	return sites, nil
}

func (s *Scanner) packageDirs() ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	for _, root := range s.roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if s.isSource(d.Name()) {
				dir := filepath.Dir(path)
				if !seen[dir] {
					seen[dir] = true
					dirs = append(dirs, dir)
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
	}
	return dirs, nil
}

func skipDir(name string) bool {
	return name == "vendor" || name == "testdata" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func (s *Scanner) isSource(name string) bool {
	if !strings.HasSuffix(name, ".go") {
		return false
	}
	return s.tests || !strings.HasSuffix(name, "_test.go")
}

func (s *Scanner) scanDir(dir string) ([]entities.CallSite, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.go"))
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	var files []*ast.File
	for _, path := range entries {
		if !s.isSource(filepath.Base(path)) {
			continue
		}
		f, err := parser.ParseFile(fset, path, nil, parser.SkipObjectResolution)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		files = append(files, f)
	}

	var sites []entities.CallSite
	inspector.New(files).Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		if site, ok := s.callSite(fset, n.(*ast.CallExpr)); ok {
			sites = append(sites, site)
		}
	})
	return sites, nil
}

func (s *Scanner) callSite(fset *token.FileSet, call *ast.CallExpr) (entities.CallSite, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || !slices.Contains(s.funcs, sel.Sel.Name) || len(call.Args) == 0 {
		return entities.CallSite{}, false
	}
	lit, ok := call.Args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return entities.CallSite{}, false
	}
	key, err := strconv.Unquote(lit.Value)
	if err != nil {
		return entities.CallSite{}, false
	}
	return entities.CallSite{
		Pos:      fset.Position(call.Pos()),
		Func:     sel.Sel.Name,
		Key:      key,
		Args:     len(call.Args) - 1,
		Variadic: call.Ellipsis.IsValid(),
	}, true
}
