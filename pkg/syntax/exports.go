package syntax

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// DeclarationKind is the semantic kind of a declaration, spelled the way the
// TypeScript language service spells script element kinds.
type DeclarationKind string

const (
	KindType      DeclarationKind = "type"
	KindInterface DeclarationKind = "interface"
	KindClass     DeclarationKind = "class"
	KindFunction  DeclarationKind = "function"
	KindConst     DeclarationKind = "const"
	KindLet       DeclarationKind = "let"
	KindVar       DeclarationKind = "var"
	KindEnum      DeclarationKind = "enum"
	KindModule    DeclarationKind = "module"
	KindUnknown   DeclarationKind = "unknown"
)

// DefaultExport is the export name of `export default ...`.
const DefaultExport = "default"

// Declaration is a top-level declaration. Same-named declarations merge, so a name
// may carry several.
type Declaration struct {
	Name     string
	Kind     DeclarationKind
	Line     int
	Exported bool
}

// ExportClause is one specifier of `export { local as exported }`, optionally
// re-exported from Source. Local is "*" for `export * as ns from '...'`. TypeOnly
// clauses come from `export type { ... }` or an inline `type` modifier.
type ExportClause struct {
	Local    string
	Exported string
	Source   string
	TypeOnly bool
}

// ImportBinding records where a local import binding comes from. Name is "default"
// for default imports and "*" for namespace imports.
type ImportBinding struct {
	Source string
	Name   string
}

// ExportTable describes what a module exports and the local bindings needed to follow
// those exports.
type ExportTable struct {
	Declarations map[string][]Declaration
	Clauses      []ExportClause
	Stars        []string
	Imports      map[string]ImportBinding

	// ExportAssignment is the identifier of `export = X`, empty without one.
	ExportAssignment string
	// Namespaces holds the members of every `namespace N { }` declared in the
	// module, merged across blocks.
	Namespaces map[string]*ExportTable
	// AmbientModules holds the bodies of `declare module 'name' { }` blocks.
	AmbientModules map[string]*ExportTable
}

func NewExportTable() *ExportTable {
	return &ExportTable{
		Declarations:   make(map[string][]Declaration),
		Imports:        make(map[string]ImportBinding),
		Namespaces:     make(map[string]*ExportTable),
		AmbientModules: make(map[string]*ExportTable),
	}
}

// Exports builds the file's export table from its top-level statements.
func (f *File) Exports() *ExportTable {
	table := NewExportTable()
	f.topLevel(func(n *sitter.Node) {
		f.statement(n, table, false)
	})
	return table
}

// statement records n in table. Inside an ambient body every declaration is
// exported, written with `export` or not.
func (f *File) statement(n *sitter.Node, table *ExportTable, ambient bool) {
	switch n.Kind() {
	case "export_statement":
		f.exportStatement(n, table, ambient)
	case "import_statement":
		f.importBindings(n, table)
	case "expression_statement":
		// namespace N { } parses as an expression statement
		if inner := n.NamedChild(0); inner != nil && inner.Kind() == "internal_module" {
			f.declare(inner, ambient, ambient, table)
		}
	default:
		f.declare(n, ambient, ambient, table)
	}
}

// body builds the export table of a namespace or ambient module block.
func (f *File) body(block *sitter.Node, ambient bool) *ExportTable {
	table := NewExportTable()
	for i := 0; i < int(block.NamedChildCount()); i++ {
		f.statement(block.NamedChild(uint(i)), table, ambient)
	}
	return table
}

// Merge adds the contents of other to t, the way same-named namespaces merge.
func (t *ExportTable) Merge(other *ExportTable) {
	for name, decls := range other.Declarations {
		t.Declarations[name] = append(t.Declarations[name], decls...)
	}
	t.Clauses = append(t.Clauses, other.Clauses...)
	t.Stars = append(t.Stars, other.Stars...)
	for name, binding := range other.Imports {
		t.Imports[name] = binding
	}
	if other.ExportAssignment != "" {
		t.ExportAssignment = other.ExportAssignment
	}
	for name, members := range other.Namespaces {
		if existing, ok := t.Namespaces[name]; ok {
			existing.Merge(members)
		} else {
			t.Namespaces[name] = members
		}
	}
	for name, members := range other.AmbientModules {
		if existing, ok := t.AmbientModules[name]; ok {
			existing.Merge(members)
		} else {
			t.AmbientModules[name] = members
		}
	}
}

// HasExport reports whether the table exports name through a declaration or a clause.
// Star re-exports are not consulted.
func (t *ExportTable) HasExport(name string) bool {
	for _, decl := range t.Declarations[name] {
		if decl.Exported {
			return true
		}
	}
	for _, clause := range t.Clauses {
		if clause.Exported == name {
			return true
		}
	}
	return false
}

func (f *File) exportStatement(n *sitter.Node, table *ExportTable, ambient bool) {
	if hasToken(n, "=") {
		// export = X
		if target := firstNamed(n); target != nil && target.Kind() == "identifier" {
			table.ExportAssignment = f.text(target)
		}
		return
	}

	isDefault := hasToken(n, "default")
	typeOnly := hasToken(n, "type")
	source := ""
	if src := n.ChildByFieldName("source"); src != nil {
		source = unquote(f.text(src))
	}

	if decl := n.ChildByFieldName("declaration"); decl != nil {
		if !isDefault {
			f.declare(decl, true, ambient, table)
			return
		}
		names := f.declare(decl, false, ambient, table)
		if len(names) == 0 {
			// export default function () {}
			table.Declarations[DefaultExport] = append(table.Declarations[DefaultExport], Declaration{
				Name:     DefaultExport,
				Kind:     declarationKind(decl),
				Line:     line(decl),
				Exported: true,
			})
			return
		}
		table.Clauses = append(table.Clauses, ExportClause{Local: names[0], Exported: DefaultExport})
		return
	}

	if value := n.ChildByFieldName("value"); value != nil && isDefault {
		if value.Kind() == "identifier" {
			table.Clauses = append(table.Clauses, ExportClause{Local: f.text(value), Exported: DefaultExport})
			return
		}
		kind := KindVar
		switch value.Kind() {
		case "class":
			kind = KindClass
		case "function_expression", "arrow_function", "generator_function":
			kind = KindFunction
		}
		table.Declarations[DefaultExport] = append(table.Declarations[DefaultExport], Declaration{
			Name:     DefaultExport,
			Kind:     kind,
			Line:     line(value),
			Exported: true,
		})
		return
	}

	if clause := childOfKind(n, "export_clause"); clause != nil {
		for i := 0; i < int(clause.NamedChildCount()); i++ {
			spec := clause.NamedChild(uint(i))
			if spec.Kind() != "export_specifier" {
				continue
			}
			local := unquote(f.text(spec.ChildByFieldName("name")))
			exported := local
			if alias := spec.ChildByFieldName("alias"); alias != nil {
				exported = unquote(f.text(alias))
			}
			table.Clauses = append(table.Clauses, ExportClause{
				Local:    local,
				Exported: exported,
				Source:   source,
				TypeOnly: typeOnly || hasToken(spec, "type"),
			})
		}
		return
	}

	if source == "" {
		return
	}
	if ns := childOfKind(n, "namespace_export"); ns != nil {
		name := ns.NamedChild(0)
		table.Clauses = append(table.Clauses, ExportClause{
			Local:    "*",
			Exported: unquote(f.text(name)),
			Source:   source,
			TypeOnly: typeOnly,
		})
		return
	}
	if hasToken(n, "*") {
		table.Stars = append(table.Stars, source)
	}
}

func (f *File) importBindings(n *sitter.Node, table *ExportTable) {
	if n.HasError() {
		return
	}
	decl := f.importDeclaration(n)
	if decl.DefaultImport != "" {
		table.Imports[decl.DefaultImport] = ImportBinding{Source: decl.ModuleSpecifier, Name: DefaultExport}
	}
	if decl.NamespaceImport != "" {
		table.Imports[decl.NamespaceImport] = ImportBinding{Source: decl.ModuleSpecifier, Name: "*"}
	}
	for _, spec := range decl.NamedImports {
		table.Imports[spec.LocalName()] = ImportBinding{Source: decl.ModuleSpecifier, Name: spec.Name}
	}
}

// declare records the declarations introduced by n and returns their names. ambient is
// set inside `declare` contexts, whose namespace members are implicitly exported.
func (f *File) declare(n *sitter.Node, exported, ambient bool, table *ExportTable) []string {
	var names []string
	add := func(nameNode *sitter.Node, kind DeclarationKind) {
		if nameNode == nil {
			return
		}
		name := f.text(nameNode)
		table.Declarations[name] = append(table.Declarations[name], Declaration{
			Name:     name,
			Kind:     kind,
			Line:     line(n),
			Exported: exported,
		})
		names = append(names, name)
	}

	switch n.Kind() {
	case "interface_declaration", "type_alias_declaration", "class_declaration",
		"abstract_class_declaration", "function_declaration", "generator_function_declaration",
		"function_signature", "enum_declaration":
		add(n.ChildByFieldName("name"), declarationKind(n))
	case "internal_module", "module":
		name := n.ChildByFieldName("name")
		if name == nil {
			break
		}
		body := n.ChildByFieldName("body")
		if name.Kind() == "string" {
			// declare module 'pkg' { } describes another module and binds nothing here
			if body != nil {
				f.ambientModule(unquote(f.text(name)), body, table)
			}
			break
		}
		add(name, KindModule)
		if body != nil && name.Kind() == "identifier" {
			f.namespace(f.text(name), body, ambient, table)
		}
	case "lexical_declaration", "variable_declaration":
		kind := declarationKind(n)
		for i := 0; i < int(n.NamedChildCount()); i++ {
			declarator := n.NamedChild(uint(i))
			if declarator.Kind() != "variable_declarator" {
				continue
			}
			for _, ident := range bindingIdentifiers(declarator.ChildByFieldName("name")) {
				add(ident, kind)
			}
		}
	case "ambient_declaration":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			names = append(names, f.declare(n.NamedChild(uint(i)), exported, true, table)...)
		}
	}

	return names
}

func (f *File) namespace(name string, body *sitter.Node, ambient bool, table *ExportTable) {
	members := f.body(body, ambient)
	if existing, ok := table.Namespaces[name]; ok {
		existing.Merge(members)
		return
	}
	table.Namespaces[name] = members
}

func (f *File) ambientModule(name string, body *sitter.Node, table *ExportTable) {
	members := f.body(body, true)
	if existing, ok := table.AmbientModules[name]; ok {
		existing.Merge(members)
		return
	}
	table.AmbientModules[name] = members
}

// declarationKind maps a declaration node to its DeclarationKind.
func declarationKind(n *sitter.Node) DeclarationKind {
	switch n.Kind() {
	case "interface_declaration":
		return KindInterface
	case "type_alias_declaration":
		return KindType
	case "class_declaration", "abstract_class_declaration", "class":
		return KindClass
	case "function_declaration", "generator_function_declaration", "function_signature",
		"function_expression", "generator_function", "arrow_function":
		return KindFunction
	case "enum_declaration":
		return KindEnum
	case "internal_module", "module":
		return KindModule
	case "lexical_declaration":
		if hasToken(n, "let") {
			return KindLet
		}
		return KindConst
	case "variable_declaration":
		return KindVar
	}
	return KindUnknown
}

// bindingIdentifiers returns the identifiers bound by a declarator name, descending
// into object and array destructuring patterns.
func bindingIdentifiers(pattern *sitter.Node) []*sitter.Node {
	if pattern == nil {
		return nil
	}
	switch pattern.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		return []*sitter.Node{pattern}
	case "pair_pattern":
		return bindingIdentifiers(pattern.ChildByFieldName("value"))
	case "assignment_pattern":
		return bindingIdentifiers(pattern.ChildByFieldName("left"))
	}
	var idents []*sitter.Node
	for i := 0; i < int(pattern.NamedChildCount()); i++ {
		idents = append(idents, bindingIdentifiers(pattern.NamedChild(uint(i)))...)
	}
	return idents
}
