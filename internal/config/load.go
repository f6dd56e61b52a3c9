package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Load reads, parses and compiles the configuration file at path.
// The format is chosen by extension: .yaml, .yml and .json are read as YAML,
// .cue as CUE.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "configuration file not found", Err: err}
		}
		return nil, &LoadError{Code: ErrCodeLoadFailed, Path: path, Message: "read failed", Err: err}
	}

	doc, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	return Compile(doc)
}

// Parse decodes a document; name supplies the extension and error positions.
func Parse(data []byte, name string) (Document, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return ParseYAML(data)
	case ".cue":
		return ParseCUE(data, name)
	default:
		return Document{}, &LoadError{
			Code:    ErrCodeUnsupported,
			Path:    name,
			Message: "unsupported configuration format (want .yaml, .yml, .json or .cue)",
		}
	}
}

// ParseYAML decodes a YAML document. Unknown keys are rejected.
func ParseYAML(data []byte) (Document, error) {
	var doc Document

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Document{}, &LoadError{Code: ErrCodeLoadFailed, Message: "parse YAML", Err: err}
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err == nil {
		for i, line := range yamlItemLines(&root, "whole_text_rules") {
			if i < len(doc.WholeTextRules) {
				doc.WholeTextRules[i].Line = line
			}
		}
		for i, line := range yamlItemLines(&root, "character_rules") {
			if i < len(doc.CharacterRules) {
				doc.CharacterRules[i].Line = line
			}
		}
	}

	return doc, nil
}

// yamlItemLines returns the line of each item of the top-level sequence key.
func yamlItemLines(root *yaml.Node, key string) []int {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	m := root.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value != key {
			continue
		}
		seq := m.Content[i+1]
		if seq.Kind != yaml.SequenceNode {
			return nil
		}
		lines := make([]int, len(seq.Content))
		for j, item := range seq.Content {
			lines[j] = item.Line
		}
		return lines
	}
	return nil
}

// ParseCUE compiles a CUE document, unifies it with #Config from the embedded
// schema and decodes the concrete result. Schema violations are returned as
// Errors carrying source lines.
func ParseCUE(data []byte, name string) (Document, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Document{}, fmt.Errorf("compile embedded schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return Document{}, &LoadError{Code: ErrCodeLoadFailed, Path: name, Message: "compile CUE", Err: err}
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Document{}, cueSchemaErrors(err, v, name)
	}

	var doc Document
	if err := unified.Decode(&doc); err != nil {
		return Document{}, &LoadError{Code: ErrCodeLoadFailed, Path: name, Message: "decode CUE", Err: err}
	}

	for i, line := range cueItemLines(v, "whole_text_rules") {
		if i < len(doc.WholeTextRules) {
			doc.WholeTextRules[i].Line = line
		}
	}
	for i, line := range cueItemLines(v, "character_rules") {
		if i < len(doc.CharacterRules) {
			doc.CharacterRules[i].Line = line
		}
	}

	return doc, nil
}

func cueItemLines(v cue.Value, key string) []int {
	list := v.LookupPath(cue.ParsePath(key))
	if !list.Exists() {
		return nil
	}
	iter, err := list.List()
	if err != nil {
		return nil
	}
	var lines []int
	for iter.Next() {
		line := 0
		if pos := iter.Value().Pos(); pos.IsValid() {
			line = pos.Line()
		}
		lines = append(lines, line)
	}
	return lines
}

// cueSchemaErrors converts CUE validation errors. Each keeps a line of the
// document named name, never one of the embedded schema when avoidable.
func cueSchemaErrors(err error, doc cue.Value, name string) Errors {
	var errs Errors
	for _, e := range cueerrors.Errors(err) {
		ce := &CompileError{
			Field:   strings.Join(e.Path(), "."),
			Code:    ErrCodeSchemaViolation,
			Message: e.Error(),
		}
		if ce.Field == "" {
			ce.Field = "document"
		}
		ce.Line = cueErrorLine(e, doc, name)
		errs = append(errs, ce)
	}
	if len(errs) == 0 {
		errs = append(errs, &CompileError{Field: "document", Code: ErrCodeSchemaViolation, Message: err.Error()})
	}
	return errs
}

// cueErrorLine picks the line to report for e: the document value at the
// error path, else the first position in the document, else any position.
func cueErrorLine(e cueerrors.Error, doc cue.Value, name string) int {
	if line := cuePathLine(doc, e.Path()); line > 0 {
		return line
	}
	fallback := 0
	for _, pos := range cueerrors.Positions(e) {
		if !pos.IsValid() || pos.Line() == 0 {
			continue
		}
		if pos.Filename() == name {
			return pos.Line()
		}
		if fallback == 0 {
			fallback = pos.Line()
		}
	}
	return fallback
}

// cuePathLine returns the line of the deepest value of doc along path, or 0.
func cuePathLine(doc cue.Value, path []string) int {
	sels := make([]cue.Selector, 0, len(path))
	for _, elem := range path {
		if strings.HasPrefix(elem, "#") {
			continue
		}
		if i, err := strconv.Atoi(elem); err == nil {
			sels = append(sels, cue.Index(i))
		} else {
			sels = append(sels, cue.Str(elem))
		}
	}
	for ; len(sels) > 0; sels = sels[:len(sels)-1] {
		if x := doc.LookupPath(cue.MakePath(sels...)); x.Exists() {
			if pos := x.Pos(); pos.IsValid() && pos.Line() > 0 {
				return pos.Line()
			}
		}
	}
	return 0
}
