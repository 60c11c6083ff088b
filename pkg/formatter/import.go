package formatter

import (
	"fmt"
	"strings"
)

// Classification says whether an imported binding is erased at compile time.
type Classification int

const (
	Value Classification = iota
	Type
)

func (c Classification) String() string {
	if c == Type {
		return "type"
	}
	return "value"
}

// ClassifiedName is one classified resolution of an import specifier
type ClassifiedName struct {
	DisplayName    string // name, or "name as alias"
	Classification Classification
}

// ModuleImportRecord collects the bindings imported from one module specifier
type ModuleImportRecord struct {
	ModuleSpecifier string
	ValueNames      []string // import { value } from '...'
	DefaultName     string   // import Default from '...'
	TypeNames       []string // import type { Type } from '...'
}

// addValue appends name to ValueNames. A value import also carries the type meaning,
// so the name leaves TypeNames if it was there.
func (r *ModuleImportRecord) addValue(name string) {
	if contains(r.ValueNames, name) {
		return
	}
	r.TypeNames = remove(r.TypeNames, name)
	r.ValueNames = append(r.ValueNames, name)
}

// addType appends name to TypeNames unless it is already imported as a value.
func (r *ModuleImportRecord) addType(name string) {
	if contains(r.ValueNames, name) || contains(r.TypeNames, name) {
		return
	}
	r.TypeNames = append(r.TypeNames, name)
}

// Lines renders the record as zero, one or two import statements
func (r *ModuleImportRecord) Lines() []string {
	var lines []string
	id := r.ModuleSpecifier
	values := strings.Join(r.ValueNames, ", ")

	switch {
	case r.DefaultName != "" && len(r.ValueNames) > 0:
		lines = append(lines, fmt.Sprintf("import %s, { %s } from '%s'", r.DefaultName, values, id))
	case r.DefaultName != "":
		lines = append(lines, fmt.Sprintf("import %s from '%s'", r.DefaultName, id))
	case len(r.ValueNames) > 0:
		lines = append(lines, fmt.Sprintf("import { %s } from '%s'", values, id))
	}

	if len(r.TypeNames) > 0 {
		lines = append(lines, fmt.Sprintf("import type { %s } from '%s'", strings.Join(r.TypeNames, ", "), id))
	}

	return lines
}

// moduleRecords is an insertion-ordered map of records keyed by module specifier.
// One is built per file and dropped once that file's imports are synthesized.
type moduleRecords struct {
	order  []string
	byPath map[string]*ModuleImportRecord
}

func newModuleRecords() *moduleRecords {
	return &moduleRecords{byPath: make(map[string]*ModuleImportRecord)}
}

func (m *moduleRecords) get(id string) (*ModuleImportRecord, bool) {
	record, ok := m.byPath[id]
	return record, ok
}

func (m *moduleRecords) getOrCreate(id string) *ModuleImportRecord {
	if record, ok := m.byPath[id]; ok {
		return record
	}
	record := &ModuleImportRecord{ModuleSpecifier: id}
	m.byPath[id] = record
	m.order = append(m.order, id)
	return record
}

// lines renders every record in first-seen order
func (m *moduleRecords) lines() []string {
	var lines []string
	for _, id := range m.order {
		lines = append(lines, m.byPath[id].Lines()...)
	}
	return lines
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	for i, item := range list {
		if item == s {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}
