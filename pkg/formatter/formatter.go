package formatter

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/siyuan-infoblox/ts-import-types/pkg/errors"
	"github.com/siyuan-infoblox/ts-import-types/pkg/resolver"
	"github.com/siyuan-infoblox/ts-import-types/pkg/syntax"
)

type FormatterConfig struct {
	DryRun          bool              // print the rewritten text instead of saving it
	OrganiseImports bool              // run the Organizer after the rewrite
	Diff            bool              // with DryRun, print a line diff instead of the full text
	Resolver        resolver.Resolver // classifies named imports
	Organizer       Organizer         // optional, defaults to the built-in import organizer
	Output          io.Writer         // optional, defaults to os.Stdout
	WorkingDir      string            // paths are reported relative to it
	Logger          *slog.Logger      // optional, discards by default
}

// formatter rewrites the import declarations of TypeScript files
type formatter struct {
	config    FormatterConfig
	organizer Organizer
	reporter  *Reporter
	logger    *slog.Logger
}

// RewriteResult is the outcome of rewriting one file
type RewriteResult struct {
	RewrittenImports    []string // synthesized import lines, in insertion order
	RewrittenDirectives []string // triple-slash directives found in the file
	HasChanges          bool
	Text                []byte // the rewritten text, or the source when nothing changed
}

// New creates a formatter for the given configuration
func New(config FormatterConfig) *formatter {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	organizer := config.Organizer
	if organizer == nil {
		organizer = NewOrganizer()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &formatter{
		config:    config,
		organizer: organizer,
		reporter:  NewReporter(config.Output, config.WorkingDir),
		logger:    logger,
	}
}

// Reporter returns the console reporter the formatter writes progress to.
func (g *formatter) Reporter() *Reporter {
	return g.reporter
}

// rewriteState accumulates what the scan of one file learned. It never outlives the file.
type rewriteState struct {
	records    *moduleRecords
	rewritable []syntax.ImportDeclaration
	valueDecls map[string]int
	typeDecls  map[string]int
	classified bool // some specifier produced a classified pair
	retyped    bool // some value-position specifier resolved only to types
	inlineType bool // some specifier carried an inline type modifier
}

func newRewriteState() *rewriteState {
	return &rewriteState{
		records:    newModuleRecords(),
		valueDecls: make(map[string]int),
		typeDecls:  make(map[string]int),
	}
}

// needsRewrite reports whether synthesizing the records would change the file's imports.
func (s *rewriteState) needsRewrite() bool {
	if s.retyped || s.inlineType {
		return true
	}
	for _, n := range s.valueDecls {
		if n > 1 {
			return true
		}
	}
	for _, n := range s.typeDecls {
		if n > 1 {
			return true
		}
	}
	return false
}

// RewriteFile splits the named imports of source into value and type-only declarations.
// path selects the grammar and is the importing file for module resolution.
func (g *formatter) RewriteFile(ctx context.Context, path string, source []byte) (*RewriteResult, error) {
	file, err := syntax.Parse(path, source)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrMsgFailedToParseFile)
	}
	defer file.Close()

	result := &RewriteResult{Text: source}
	for _, directive := range file.Directives() {
		result.RewrittenDirectives = append(result.RewrittenDirectives, directive.Text)
	}

	imports, err := file.Imports()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrMsgFailedToParseFile)
	}

	state := newRewriteState()
	for _, decl := range imports {
		if err := g.scanDeclaration(ctx, path, decl, state); err != nil {
			return nil, err
		}
	}

	result.HasChanges = state.classified && state.needsRewrite()
	if !result.HasChanges {
		return result, nil
	}

	eol := detectEOL(source)
	result.RewrittenImports = state.records.lines()

	var buf bytes.Buffer
	for _, decl := range state.rewritable {
		for _, comment := range decl.Comments {
			buf.WriteString(comment + eol)
		}
	}
	buf.WriteString(strings.Join(result.RewrittenImports, eol) + eol + eol)
	buf.Write(removeDeclarations(source, state.rewritable))
	text := buf.Bytes()

	if g.config.OrganiseImports {
		text, err = g.organizer.OrganizeImports(path, text, eol)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrMsgFailedToOrganize)
		}
	}

	result.Text = text
	return result, nil
}

// scanDeclaration records the bindings of one import declaration.
func (g *formatter) scanDeclaration(ctx context.Context, path string, decl syntax.ImportDeclaration, state *rewriteState) error {
	if !rewritable(decl) {
		return nil
	}

	id := decl.ModuleSpecifier
	if existing, ok := state.records.get(id); ok && decl.DefaultImport != "" &&
		existing.DefaultName != "" && existing.DefaultName != decl.DefaultImport {
		g.logger.Debug("keeping declaration with a second default import",
			"file", path, "module", id, "line", decl.Line)
		return nil
	}

	record := state.records.getOrCreate(id)
	state.rewritable = append(state.rewritable, decl)

	if decl.TypeOnly {
		state.typeDecls[id]++
		for _, spec := range decl.NamedImports {
			record.addType(spec.DisplayName())
			state.classified = true
		}
		return nil
	}

	state.valueDecls[id]++
	if decl.DefaultImport != "" {
		record.DefaultName = decl.DefaultImport
	}

	for _, spec := range decl.NamedImports {
		if spec.TypeOnly {
			record.addType(spec.DisplayName())
			state.classified = true
			state.inlineType = true
			continue
		}

		names, err := Classify(ctx, g.config.Resolver, path, id, spec)
		if err != nil {
			return errors.Wrapf(err, errors.ErrMsgFailedToResolve, spec.Name, id)
		}
		if len(names) == 0 {
			g.logger.Debug("unresolved import kept as value",
				"file", path, "module", id, "name", spec.Name)
			record.addValue(spec.DisplayName())
			continue
		}

		state.classified = true
		if merge(names) == Type {
			record.addType(spec.DisplayName())
			state.retyped = true
		} else {
			record.addValue(spec.DisplayName())
		}
	}
	return nil
}

// rewritable reports whether decl can be removed and re-synthesized from its record.
// Namespace imports, require imports, type-only default imports and imports carrying
// attributes have no line in the synthesized output and stay where they are.
func rewritable(decl syntax.ImportDeclaration) bool {
	if decl.SideEffect || decl.Require || decl.NamespaceImport != "" || decl.Attributes != "" {
		return false
	}
	if decl.TypeOnly && decl.DefaultImport != "" {
		return false
	}
	return decl.HasBindings()
}

// removeDeclarations cuts every declaration out of source along with the comments
// directly above it and the spaces and single line break that follow it. decls must
// be in source order.
func removeDeclarations(source []byte, decls []syntax.ImportDeclaration) []byte {
	var (
		out  bytes.Buffer
		last int
	)
	for _, decl := range decls {
		out.Write(source[last:decl.CommentStart])
		last = skipLineEnd(source, decl.End)
	}
	out.Write(source[last:])
	return out.Bytes()
}

func skipLineEnd(source []byte, i int) int {
	for i < len(source) && (source[i] == ' ' || source[i] == '\t') {
		i++
	}
	if i < len(source) && source[i] == '\r' {
		i++
	}
	if i < len(source) && source[i] == '\n' {
		i++
	}
	return i
}

// detectEOL returns the line terminator the file already uses.
func detectEOL(source []byte) string {
	if bytes.Contains(source, []byte("\r\n")) {
		return "\r\n"
	}
	return "\n"
}
