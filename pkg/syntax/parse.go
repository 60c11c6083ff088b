// Package syntax extracts the import, export and directive structure of TypeScript
// sources with tree-sitter.
package syntax

import (
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/siyuan-infoblox/ts-import-types/pkg/errors"
	"github.com/siyuan-infoblox/ts-import-types/pkg/utils"
)

var (
	languagesOnce sync.Once
	tsLanguage    *sitter.Language
	tsxLanguage   *sitter.Language
)

func languageFor(path string) *sitter.Language {
	languagesOnce.Do(func() {
		tsLanguage = sitter.NewLanguage(typescript.LanguageTypescript())
		tsxLanguage = sitter.NewLanguage(typescript.LanguageTSX())
	})
	if utils.IsTSXFile(path) {
		return tsxLanguage
	}
	return tsLanguage
}

// File is a parsed source file. Close releases the underlying syntax tree.
type File struct {
	Path   string
	Source []byte

	tree *sitter.Tree
	root *sitter.Node
}

// Parse parses source as TypeScript, or as TSX when path has a .tsx/.jsx extension.
// Syntax errors outside import statements are tolerated.
func Parse(path string, source []byte) (*File, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(languageFor(path)); err != nil {
		return nil, errors.Wrap(err, errors.ErrMsgFailedToParseFile)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, errors.Errorf("%s: %s", errors.ErrMsgFailedToParseFile, path)
	}

	return &File{
		Path:   path,
		Source: source,
		tree:   tree,
		root:   tree.RootNode(),
	}, nil
}

// Close releases the syntax tree.
func (f *File) Close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

// topLevel calls visit for every named top-level node, comments included.
func (f *File) topLevel(visit func(n *sitter.Node)) {
	for i := 0; i < int(f.root.NamedChildCount()); i++ {
		visit(f.root.NamedChild(uint(i)))
	}
}

func (f *File) text(n *sitter.Node) string {
	return nodeText(n, f.Source)
}

// nodeText extracts the text content of a tree-sitter node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// hasToken reports whether node has a direct anonymous child spelled token,
// such as the "type" in `import type { A } from './a'`.
func hasToken(node *sitter.Node, token string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if !child.IsNamed() && child.Kind() == token {
			return true
		}
	}
	return false
}

// childOfKind finds the first direct child with the given kind.
func childOfKind(node *sitter.Node, kind string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == kind {
			return child
		}
	}
	return nil
}

// firstNamed returns the first named child of node that is not a comment.
func firstNamed(node *sitter.Node) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(uint(i)); child.Kind() != "comment" {
			return child
		}
	}
	return nil
}

// unquote strips the delimiters of a string literal node's text.
func unquote(literal string) string {
	if len(literal) >= 2 {
		first, last := literal[0], literal[len(literal)-1]
		if (first == '"' || first == '\'') && first == last {
			return literal[1 : len(literal)-1]
		}
	}
	return literal
}

func line(n *sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}
