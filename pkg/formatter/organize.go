package formatter

import (
	"bytes"
	"sort"
	"strings"

	"github.com/siyuan-infoblox/ts-import-types/pkg/syntax"
)

// Organizer normalizes the import statements of a rewritten file
type Organizer interface {
	OrganizeImports(path string, text []byte, eol string) ([]byte, error)
}

// importOrganizer sorts the leading block of import statements: side-effect imports
// first in their original order, then the rest by module specifier, with the named
// specifiers inside braces sorted too. Exact duplicates are dropped.
type importOrganizer struct{}

// NewOrganizer returns the built-in Organizer
func NewOrganizer() Organizer {
	return importOrganizer{}
}

func (importOrganizer) OrganizeImports(path string, text []byte, eol string) ([]byte, error) {
	file, err := syntax.Parse(path, text)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	imports, err := file.Imports()
	if err != nil {
		return nil, err
	}

	block := leadingBlock(text, imports)
	if len(block) == 0 {
		return text, nil
	}

	var sideEffects, rest []syntax.ImportDeclaration
	for _, decl := range block {
		if decl.SideEffect {
			sideEffects = append(sideEffects, decl)
		} else {
			rest = append(rest, decl)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return lessFold(rest[i].ModuleSpecifier, rest[j].ModuleSpecifier)
	})

	var lines []string
	seen := make(map[string]bool)
	for _, decl := range append(sideEffects, rest...) {
		line := sortSpecifiers(text, decl)
		if seen[line] {
			continue
		}
		seen[line] = true
		lines = append(lines, line)
	}

	start, end := block[0].Start, block[len(block)-1].End
	tail := bytes.TrimLeft(text[end:], " \t\r\n")
	gap := text[end : len(text)-len(tail)]

	var out bytes.Buffer
	out.Write(text[:start])
	out.WriteString(strings.Join(lines, eol))
	out.WriteString(eol)
	if len(tail) > 0 {
		if bytes.Count(gap, []byte("\n")) > 1 {
			out.WriteString(eol)
		}
		out.Write(tail)
	}
	return out.Bytes(), nil
}

// leadingBlock returns the first run of import statements separated only by whitespace.
func leadingBlock(text []byte, imports []syntax.ImportDeclaration) []syntax.ImportDeclaration {
	if len(imports) == 0 {
		return nil
	}
	n := 1
	for n < len(imports) {
		gap := text[imports[n-1].End:imports[n].Start]
		if len(bytes.TrimSpace(gap)) > 0 {
			break
		}
		n++
	}
	return imports[:n]
}

// sortSpecifiers returns the statement's text with its named specifiers sorted.
func sortSpecifiers(text []byte, decl syntax.ImportDeclaration) string {
	if decl.BracesEnd == 0 || len(decl.NamedImports) == 0 {
		return decl.Text
	}

	specs := make([]syntax.ImportSpecifier, len(decl.NamedImports))
	copy(specs, decl.NamedImports)
	sort.SliceStable(specs, func(i, j int) bool {
		return lessFold(specs[i].Name, specs[j].Name)
	})

	parts := make([]string, 0, len(specs))
	for _, spec := range specs {
		if !contains(parts, spec.Text) {
			parts = append(parts, spec.Text)
		}
	}

	braces := "{ " + strings.Join(parts, ", ") + " }"
	return string(text[decl.Start:decl.BracesStart]) + braces + string(text[decl.BracesEnd:decl.End])
}

// lessFold orders case-insensitively, falling back to byte order for ties.
func lessFold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
