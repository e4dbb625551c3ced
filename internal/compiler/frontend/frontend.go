// Package frontend defines the language front-end contract consumed by the
// incremental compilation engine, and its ArcLang implementation. A front
// end must be deterministic given identical input; cache soundness depends
// on it.
package frontend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Mbaroudi/arclang-sub001/internal/compiler/ast"
	"github.com/Mbaroudi/arclang-sub001/internal/compiler/lexer"
	"github.com/Mbaroudi/arclang-sub001/internal/compiler/parser"
)

// AST is an opaque parsed representation that can serialize itself for
// artifact storage.
type AST interface {
	Encode() ([]byte, error)
}

// SemanticInfo is the symbol surface of one compilation unit.
type SemanticInfo struct {
	ExportedSymbols []string
	ImportedSymbols []string
}

// FrontEnd parses, analyzes, and extracts dependencies from one unit.
type FrontEnd interface {
	Parse(content []byte) (AST, error)
	Analyze(a AST) (*SemanticInfo, error)
	ExtractDependencies(a AST) []string
}

// ArcFrontEnd is the ArcLang implementation of FrontEnd.
type ArcFrontEnd struct{}

// New creates the ArcLang front end.
func New() *ArcFrontEnd {
	return &ArcFrontEnd{}
}

// Parse tokenizes and parses ArcLang source. Lex or parse errors fail the
// whole unit.
func (fe *ArcFrontEnd) Parse(content []byte) (AST, error) {
	lex := lexer.New(string(content))
	tokens, lexErrors := lex.ScanTokens()
	if len(lexErrors) > 0 {
		messages := make([]string, 0, len(lexErrors))
		for _, lexErr := range lexErrors {
			messages = append(messages, fmt.Sprintf("%d:%d: %s", lexErr.Line, lexErr.Column, lexErr.Message))
		}
		return nil, fmt.Errorf("lexing failed: %s", strings.Join(messages, "; "))
	}

	p := parser.New(tokens)
	file, parseErrors := p.Parse()
	if len(parseErrors) > 0 {
		messages := make([]string, 0, len(parseErrors))
		for _, parseErr := range parseErrors {
			messages = append(messages, parseErr.Error())
		}
		return nil, fmt.Errorf("parsing failed: %s", strings.Join(messages, "; "))
	}

	return file, nil
}

// Analyze computes the exported and imported symbol lists for a parsed
// file. Exported symbols are the element names the file declares; imported
// symbols are the element names it references but does not declare.
func (fe *ArcFrontEnd) Analyze(a AST) (*SemanticInfo, error) {
	file, ok := a.(*ast.File)
	if !ok {
		return nil, fmt.Errorf("unsupported AST type %T", a)
	}

	exported := make(map[string]struct{})
	if file.Model != nil {
		exported[file.Model.Name] = struct{}{}
	}
	for _, req := range file.Requirements {
		exported[req.Name] = struct{}{}
	}
	for _, comp := range file.Components {
		exported[comp.Name] = struct{}{}
	}
	for _, fn := range file.Functions {
		exported[fn.Name] = struct{}{}
	}

	referenced := make(map[string]struct{})
	for _, req := range file.Requirements {
		for _, name := range req.Traces {
			referenced[name] = struct{}{}
		}
	}
	for _, comp := range file.Components {
		for _, name := range comp.Implements {
			referenced[name] = struct{}{}
		}
		for _, name := range comp.Provides {
			referenced[name] = struct{}{}
		}
		for _, name := range comp.Requires {
			referenced[name] = struct{}{}
		}
	}
	for _, fn := range file.Functions {
		for _, name := range fn.Satisfies {
			referenced[name] = struct{}{}
		}
	}
	for _, trace := range file.Traces {
		referenced[trace.From] = struct{}{}
		referenced[trace.To] = struct{}{}
	}

	imported := make([]string, 0)
	for name := range referenced {
		if _, local := exported[name]; !local {
			imported = append(imported, name)
		}
	}

	info := &SemanticInfo{
		ExportedSymbols: make([]string, 0, len(exported)),
		ImportedSymbols: imported,
	}
	for name := range exported {
		info.ExportedSymbols = append(info.ExportedSymbols, name)
	}
	sort.Strings(info.ExportedSymbols)
	sort.Strings(info.ImportedSymbols)

	return info, nil
}

// ExtractDependencies returns the unit ids named by the file's import
// declarations, deduplicated in source order.
func (fe *ArcFrontEnd) ExtractDependencies(a AST) []string {
	file, ok := a.(*ast.File)
	if !ok {
		return nil
	}

	seen := make(map[string]struct{})
	deps := make([]string, 0, len(file.Imports))
	for _, imp := range file.Imports {
		if _, dup := seen[imp.Path]; dup {
			continue
		}
		seen[imp.Path] = struct{}{}
		deps = append(deps, imp.Path)
	}

	return deps
}
