package syntax

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/siyuan-infoblox/ts-import-types/pkg/errors"
)

// ImportSpecifier is one `name [as alias]` entry of a named import.
type ImportSpecifier struct {
	Name     string
	Alias    string
	TypeOnly bool   // inline modifier: import { type Name } from '...'
	Text     string // verbatim source text, modifier included
}

// DisplayName is the specifier as written inside braces, without any type modifier.
func (s ImportSpecifier) DisplayName() string {
	if s.Alias == "" {
		return s.Name
	}
	return s.Name + " as " + s.Alias
}

// LocalName is the binding the specifier introduces in the importing file.
func (s ImportSpecifier) LocalName() string {
	if s.Alias == "" {
		return s.Name
	}
	return s.Alias
}

// ImportDeclaration is a top-level import statement.
type ImportDeclaration struct {
	ModuleSpecifier string
	DefaultImport   string
	NamespaceImport string
	NamedImports    []ImportSpecifier
	TypeOnly        bool   // import type ... from '...'
	SideEffect      bool   // import '...'
	Require         bool   // import x = require('...')
	Attributes      string // verbatim `with { ... }` or `assert { ... }` clause

	Start int // byte offset of the statement
	End   int // byte offset just past the statement, terminator included
	Line  int
	Text  string

	// Comments are the comment lines directly above the statement, with no blank line
	// in between. CommentStart is the offset of the line the first one starts on, or
	// Start without comments.
	Comments     []string
	CommentStart int

	// byte range of the `{ ... }` clause, both zero without named imports
	BracesStart int
	BracesEnd   int
}

// HasBindings reports whether the declaration binds a default or named import.
func (d ImportDeclaration) HasBindings() bool {
	return d.DefaultImport != "" || len(d.NamedImports) > 0
}

// Imports returns the file's import declarations in source order. A syntax error inside
// an import statement fails the whole call, since removing a half-parsed statement
// could drop bindings.
func (f *File) Imports() ([]ImportDeclaration, error) {
	var (
		imports  []ImportDeclaration
		comments []*sitter.Node
		err      error
	)

	f.topLevel(func(n *sitter.Node) {
		if err != nil {
			return
		}
		if n.Kind() == "comment" {
			comments = append(comments, n)
			return
		}
		preceding := comments
		comments = nil

		if n.Kind() == "ERROR" && strings.HasPrefix(f.text(n), "import") {
			err = errors.Errorf("malformed import declaration at %s:%d", f.Path, line(n))
			return
		}
		if n.Kind() != "import_statement" {
			return
		}
		if n.HasError() {
			err = errors.Errorf("malformed import declaration at %s:%d", f.Path, line(n))
			return
		}
		decl := f.importDeclaration(n)
		f.attachComments(&decl, preceding)
		imports = append(imports, decl)
	})

	return imports, err
}

// attachComments records the run of comments that ends on the line above decl. A
// comment trailing other code on its line, or a triple-slash directive, ends the run.
func (f *File) attachComments(decl *ImportDeclaration, comments []*sitter.Node) {
	next := decl.Start
	for i := len(comments) - 1; i >= 0; i-- {
		c := comments[i]
		gap := f.Source[c.EndByte():next]
		if len(strings.TrimSpace(string(gap))) > 0 || strings.Count(string(gap), "\n") != 1 {
			break
		}
		text := f.text(c)
		if strings.HasPrefix(text, "///") {
			break
		}
		lineStart := int(c.StartByte())
		for lineStart > 0 && (f.Source[lineStart-1] == ' ' || f.Source[lineStart-1] == '\t') {
			lineStart--
		}
		if lineStart > 0 && f.Source[lineStart-1] != '\n' {
			break
		}
		decl.Comments = append([]string{text}, decl.Comments...)
		decl.CommentStart = lineStart
		next = int(c.StartByte())
	}
}

func (f *File) importDeclaration(n *sitter.Node) ImportDeclaration {
	decl := ImportDeclaration{
		TypeOnly: hasToken(n, "type"),
		Start:    int(n.StartByte()),
		End:      int(n.EndByte()),
		Line:     line(n),
		Text:     f.text(n),
	}
	decl.CommentStart = decl.Start
	if attributes := childOfKind(n, "import_attribute"); attributes != nil {
		decl.Attributes = f.text(attributes)
	}

	if requireClause := childOfKind(n, "import_require_clause"); requireClause != nil {
		decl.Require = true
		decl.ModuleSpecifier = unquote(f.text(requireClause.ChildByFieldName("source")))
		return decl
	}

	decl.ModuleSpecifier = unquote(f.text(n.ChildByFieldName("source")))

	clause := childOfKind(n, "import_clause")
	if clause == nil {
		decl.SideEffect = true
		return decl
	}

	for i := 0; i < int(clause.NamedChildCount()); i++ {
		child := clause.NamedChild(uint(i))
		switch child.Kind() {
		case "identifier":
			decl.DefaultImport = f.text(child)
		case "namespace_import":
			if ident := childOfKind(child, "identifier"); ident != nil {
				decl.NamespaceImport = f.text(ident)
			}
		case "named_imports":
			decl.NamedImports = f.importSpecifiers(child)
			decl.BracesStart, decl.BracesEnd = int(child.StartByte()), int(child.EndByte())
		}
	}

	return decl
}

func (f *File) importSpecifiers(named *sitter.Node) []ImportSpecifier {
	var specifiers []ImportSpecifier
	for i := 0; i < int(named.NamedChildCount()); i++ {
		child := named.NamedChild(uint(i))
		if child.Kind() != "import_specifier" {
			continue
		}
		spec := ImportSpecifier{
			Name:     f.text(child.ChildByFieldName("name")),
			TypeOnly: hasToken(child, "type"),
			Text:     f.text(child),
		}
		if alias := child.ChildByFieldName("alias"); alias != nil {
			spec.Alias = f.text(alias)
		}
		specifiers = append(specifiers, spec)
	}
	return specifiers
}
