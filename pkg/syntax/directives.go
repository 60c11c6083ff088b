package syntax

import (
	"regexp"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var referenceDirective = regexp.MustCompile(`^///\s*<reference\s+(path|types|lib|no-default-lib)\s*=\s*["']([^"']*)["']\s*/>`)

// Directive is a triple-slash reference directive such as /// <reference lib="dom" />.
type Directive struct {
	Kind  string // path, types, lib or no-default-lib
	Value string
	Text  string
	Line  int
}

// Directives returns the triple-slash directives in the file's leading comments. The
// compiler ignores them after the first statement, and so does this.
func (f *File) Directives() []Directive {
	var directives []Directive
	done := false

	f.topLevel(func(n *sitter.Node) {
		if done {
			return
		}
		if n.Kind() != "comment" {
			done = true
			return
		}
		text := f.text(n)
		if m := referenceDirective.FindStringSubmatch(text); m != nil {
			directives = append(directives, Directive{
				Kind:  m[1],
				Value: m[2],
				Text:  text,
				Line:  line(n),
			})
		}
	})

	return directives
}
