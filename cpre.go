/*
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package cpre is a small C-style preprocessor: macro definition and
// expansion, conditional compilation and quoted includes over a single
// source buffer. The package-level functions run one self-contained
// session per call.
package cpre

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/srcline/cpre/internal/preprocessor"
)

// IncludeResolver supplies the text of an included header by name.
type IncludeResolver = preprocessor.IncludeResolver

// Options configures one preprocessing session.
type Options struct {
	// Defines are NAME or NAME=VALUE predefinitions applied before the
	// source is read; a bare NAME defines it as 1.
	Defines []string
	// Undefines are macro names removed after Defines are applied.
	Undefines []string
	// IncludeDirs are searched, in order, for quoted includes. Ignored
	// when Resolver is set.
	IncludeDirs []string
	// Resolver overrides file-based include loading.
	Resolver IncludeResolver
}

// Expand preprocesses src and returns the expanded text.
func Expand(src string) (string, error) {
	return ExpandWith(src, Options{})
}

// ExpandWith preprocesses src under opts and returns the expanded text.
func ExpandWith(src string, opts Options) (string, error) {
	p := newSession(src, opts, "")
	out, err := p.Expand()
	if err != nil {
		return "", locate(p, err)
	}
	return out, nil
}

// Process runs directive handling only, without producing output text.
// Use it to validate a source or to collect its macro definitions.
func Process(src string) error {
	return ProcessWith(src, Options{})
}

func ProcessWith(src string, opts Options) error {
	p := newSession(src, opts, "")
	if err := p.Process(); err != nil {
		return locate(p, err)
	}
	return nil
}

// ExpandFile preprocesses the file at path. Quoted includes are
// resolved against the file's directory first, then opts.IncludeDirs.
func ExpandFile(path string, opts Options) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	p := newSession(string(src), opts, filepath.Dir(path))
	out, err := p.Expand()
	if err != nil {
		return "", fmt.Errorf("%s:%w", filepath.Base(path), locate(p, err))
	}
	return out, nil
}

func newSession(src string, opts Options, baseDir string) *preprocessor.PreProcessor {
	p := preprocessor.New(src)
	for _, d := range opts.Defines {
		name, value := ParseDefine(d)
		p.Define(name, value)
	}
	for _, name := range opts.Undefines {
		p.Undef(name)
	}
	switch {
	case opts.Resolver != nil:
		p.SetResolver(opts.Resolver)
	case baseDir != "" || len(opts.IncludeDirs) > 0:
		p.SetResolver(NewFileResolver(baseDir, opts.IncludeDirs))
	}
	return p
}

// ParseDefine splits a NAME=VALUE predefinition; a bare NAME gets the
// value 1.
func ParseDefine(s string) (name, value string) {
	if name, value, ok := strings.Cut(s, "="); ok {
		return name, value
	}
	return s, "1"
}

// locate prefixes directive errors with their line:col position.
func locate(p *preprocessor.PreProcessor, err error) error {
	off := -1
	var serr *preprocessor.SyntaxError
	var uerr *preprocessor.UnknownDirectiveError
	switch {
	case errors.As(err, &serr):
		off = serr.Offset
	case errors.As(err, &uerr):
		off = uerr.Offset
	}
	if off < 0 {
		return err
	}
	line, col := p.LineCol(off)
	return fmt.Errorf("%d:%d: %w", line, col, err)
}

// ---------------- Token inspection ----------------

// TokenInfo is one lexed token with its position, for inspection tools.
type TokenInfo struct {
	Kind string
	Text string
	Line int
	Col  int
}

// Tokenize lexes src without directive or macro handling. Line breaks
// are omitted.
func Tokenize(src string) []TokenInfo {
	p := preprocessor.New(src)
	var out []TokenInfo
	for {
		tok := p.Next()
		if tok.Kind == preprocessor.EOF {
			return out
		}
		if tok.Kind == preprocessor.Newline {
			continue
		}
		line, col := p.LineCol(tok.Begin)
		out = append(out, TokenInfo{
			Kind: tok.Kind.String(),
			Text: p.Text(tok),
			Line: line,
			Col:  col,
		})
	}
}

// ---------------- File-based include resolution ----------------

// FileResolver loads quoted includes from disk, trying the including
// file's directory first and then each include directory in order. A
// header is loaded at most once per session; a repeated request means
// the include chain loops back on itself.
type FileResolver struct {
	baseDir string
	dirs    []string
	loaded  map[string]bool
}

func NewFileResolver(baseDir string, dirs []string) *FileResolver {
	return &FileResolver{baseDir: baseDir, dirs: dirs, loaded: map[string]bool{}}
}

func (r *FileResolver) Resolve(name string) (string, error) {
	path, err := r.find(name)
	if err != nil {
		return "", err
	}
	if r.loaded[path] {
		return "", fmt.Errorf("include cycle detected: %s", name)
	}
	r.loaded[path] = true
	text, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(text), nil
}

func (r *FileResolver) find(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", err
		}
		return name, nil
	}
	dirs := r.dirs
	if r.baseDir != "" {
		dirs = append([]string{r.baseDir}, dirs...)
	}
	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("header not found in include path")
}
