// Package plmxml ingests PLMXML product-structure documents and links them
// into navigable bill-of-materials trees.
//
// A parse is a pure in-process transform: document bytes in, an ordered list
// of linked product view trees plus flat per-type lookup tables out. Fatal
// XML errors abort the parse with no partial result; data-quality problems
// (unresolved references, structural cycles, missing ids) are collected as
// diagnostics on the result instead.
package plmxml

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jacoelho/plmxml/errors"
)

// Engine parses PLMXML documents with a fixed configuration.
// It is safe for concurrent use; every parse runs on independent state.
type Engine struct {
	cfg parseConfig
}

// Option configures parsing.
type Option interface{ apply(*parseConfig) }

type parseConfig struct {
	baseDir      string
	syntheticIDs bool
}

type optionFunc func(*parseConfig)

func (f optionFunc) apply(cfg *parseConfig) {
	if cfg == nil {
		return
	}
	f(cfg)
}

// WithBaseDir sets the directory external-file locations are resolved
// against. Without it, locations are kept as found in the document.
func WithBaseDir(dir string) Option {
	return optionFunc(func(cfg *parseConfig) {
		cfg.baseDir = dir
	})
}

// WithSyntheticIDs controls whether elements missing an id attribute are
// assigned a synthetic unique id. Enabled by default; when disabled, such
// elements keep an empty id and may collide in their table.
func WithSyntheticIDs(enabled bool) Option {
	return optionFunc(func(cfg *parseConfig) {
		cfg.syntheticIDs = enabled
	})
}

// New returns an engine with the given options applied.
func New(opts ...Option) *Engine {
	cfg := parseConfig{syntheticIDs: true}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&cfg)
		}
	}
	return &Engine{cfg: cfg}
}

// Parse reads one PLMXML document and returns the linked result.
func (e *Engine) Parse(r io.Reader) (*Result, error) {
	if e == nil {
		return nil, errors.DiagnosticList{errors.NewDiagnostic(errors.ErrNilReader, "nil engine", "")}
	}
	if r == nil {
		return nil, errors.DiagnosticList{errors.NewDiagnostic(errors.ErrNilReader, "nil reader", "")}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return e.ParseBytes(data)
}

// ParseBytes parses one PLMXML document held in memory.
func (e *Engine) ParseBytes(data []byte) (*Result, error) {
	session := newSession(e.cfg)
	if err := session.run(data); err != nil {
		return nil, errors.DiagnosticList{errors.NewDiagnostic(errors.ErrXMLParse, err.Error(), "")}
	}
	session.result.link()
	return session.result, nil
}

// Parse parses one document with the given options.
func Parse(r io.Reader, opts ...Option) (*Result, error) {
	return New(opts...).Parse(r)
}

// ParseFile parses a document from a file path. The file's directory becomes
// the base directory for external-file resolution unless an explicit
// WithBaseDir option overrides it.
func ParseFile(path string, opts ...Option) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	base := filepath.ToSlash(filepath.Dir(path))
	e := New(append([]Option{WithBaseDir(base)}, opts...)...)
	return e.ParseBytes(data)
}
