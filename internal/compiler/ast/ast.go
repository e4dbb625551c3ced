// Package ast defines the abstract syntax tree for ArcLang source files.
// ArcLang is a systems-engineering DSL: models, requirements, components,
// functions, and traceability links, with file-level imports.
package ast

import (
	"bytes"
	"encoding/gob"
)

// File is the root node for one parsed .arc source file.
type File struct {
	Imports      []*ImportDecl
	Model        *ModelDecl
	Requirements []*RequirementDecl
	Components   []*ComponentDecl
	Functions    []*FunctionDecl
	Traces       []*TraceDecl
}

// Encode serializes the file for artifact storage.
func (f *File) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeFile reconstructs a File from its encoded artifact form.
func DecodeFile(data []byte) (*File, error) {
	var file File
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&file); err != nil {
		return nil, err
	}
	return &file, nil
}

// ImportDecl brings another compilation unit into scope:
//
//	import "subsystems/power.arc"
type ImportDecl struct {
	Path   string
	Line   int
	Column int
}

// ModelDecl is the optional top-level model header of a file.
type ModelDecl struct {
	Name       string
	Attributes map[string]string
	Line       int
	Column     int
}

// RequirementDecl declares a requirement and its traceability upward.
type RequirementDecl struct {
	Name        string
	Title       string
	Description string
	Priority    string
	Rationale   string
	Traces      []string
	Line        int
	Column      int
}

// ComponentDecl declares an architecture component and its interface
// obligations.
type ComponentDecl struct {
	Name        string
	Description string
	Implements  []string
	Provides    []string
	Requires    []string
	Line        int
	Column      int
}

// FunctionDecl declares a system function allocated to the architecture.
type FunctionDecl struct {
	Name        string
	Description string
	Satisfies   []string
	Line        int
	Column      int
}

// TraceDecl is an explicit traceability link between two named elements:
//
//	trace FC_001 -> REQ_001 : satisfies
type TraceDecl struct {
	From   string
	To     string
	Kind   string
	Line   int
	Column int
}
