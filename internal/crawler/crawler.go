package crawler

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"diaggroups/internal/tablegen"
)

// ErrIncludeNotFound is returned when an include path matches no file.
var ErrIncludeNotFound = errors.New("include not found")

// Crawler loads a definitions file and the files it includes.
type Crawler struct {
	includeDirs []string
	logger      *slog.Logger
}

// NewCrawler creates a crawler that searches includeDirs after the
// directory of the including file.
func NewCrawler(includeDirs []string, logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Crawler{includeDirs: includeDirs, logger: logger}
}

// Load parses root and splices every include in place, so the returned
// File lists statements in document order. Each file is included at most once.
func (c *Crawler) Load(root string) (*tablegen.File, error) {
	seen := make(map[string]bool)
	stmts, err := c.load(root, seen)
	if err != nil {
		return nil, err
	}
	return &tablegen.File{Path: root, Statements: stmts}, nil
}

func (c *Crawler) load(path string, seen map[string]bool) ([]tablegen.Statement, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if seen[abs] {
		c.logger.Debug("skipping repeated include", "path", path)
		return nil, nil
	}
	seen[abs] = true

	file, err := tablegen.ParseFile(path)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("parsed definitions file", "path", path, "statements", len(file.Statements))

	return c.splice(file.Statements, filepath.Dir(path), seen)
}

// splice replaces includes with the statements of the included files,
// including those nested inside let and defset blocks.
func (c *Crawler) splice(stmts []tablegen.Statement, dir string, seen map[string]bool) ([]tablegen.Statement, error) {
	out := make([]tablegen.Statement, 0, len(stmts))
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *tablegen.Include:
			target, err := c.resolve(s.Path, dir)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", s.At, err)
			}
			included, err := c.load(target, seen)
			if err != nil {
				return nil, err
			}
			out = append(out, included...)
		case *tablegen.Let:
			body, err := c.splice(s.Body, dir, seen)
			if err != nil {
				return nil, err
			}
			out = append(out, &tablegen.Let{Bindings: s.Bindings, Body: body, At: s.At})
		case *tablegen.Defset:
			body, err := c.splice(s.Body, dir, seen)
			if err != nil {
				return nil, err
			}
			out = append(out, &tablegen.Defset{Name: s.Name, Body: body, At: s.At})
		default:
			out = append(out, stmt)
		}
	}
	return out, nil
}

func (c *Crawler) resolve(include, dir string) (string, error) {
	if filepath.IsAbs(include) {
		if exists(include) {
			return include, nil
		}
		return "", fmt.Errorf("%w: %s", ErrIncludeNotFound, include)
	}
	for _, base := range append([]string{dir}, c.includeDirs...) {
		candidate := filepath.Join(base, include)
		if exists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrIncludeNotFound, include)
}

func exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
