// Package resolver finds the declarations an imported name refers to, following
// module resolution and re-export chains across the project's sources.
package resolver

import (
	"context"
	"log/slog"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/siyuan-infoblox/ts-import-types/pkg/errors"
	"github.com/siyuan-infoblox/ts-import-types/pkg/std"
	"github.com/siyuan-infoblox/ts-import-types/pkg/syntax"
)

// DefinitionKind is the semantic kind of a resolved definition.
type DefinitionKind = syntax.DeclarationKind

const (
	KindType      = syntax.KindType
	KindInterface = syntax.KindInterface
	KindClass     = syntax.KindClass
	KindFunction  = syntax.KindFunction
	KindConst     = syntax.KindConst
	KindLet       = syntax.KindLet
	KindVar       = syntax.KindVar
	KindEnum      = syntax.KindEnum
	KindModule    = syntax.KindModule
	KindUnknown   = syntax.KindUnknown
)

// DefaultCacheSize is the number of parsed export tables kept in memory.
const DefaultCacheSize = 512

// Definition is a declaration an imported name resolves to. TypeOnly is set when the
// name was reached through `export type { ... }`, which only exposes the type meaning.
type Definition struct {
	Name     string
	Kind     DefinitionKind
	FilePath string
	Line     int
	TypeOnly bool
}

// Resolver resolves the definitions of a name imported by fromFile from moduleSpecifier.
// A module or name that cannot be found yields no definitions and no error.
type Resolver interface {
	ResolveDefinitions(ctx context.Context, fromFile, moduleSpecifier, name string) ([]Definition, error)
}

// Options configures module resolution. Paths substitutions are relative to PathsBase.
// AmbientFiles are declaration files searched for `declare module 'name'` blocks when
// a specifier does not resolve to a file.
type Options struct {
	BaseURL      string
	Paths        map[string][]string
	PathsBase    string
	AmbientFiles []string
	CacheSize    int
	Logger       *slog.Logger
}

type resolver struct {
	opts    Options
	log     *slog.Logger
	exports *lru.Cache[string, *syntax.ExportTable]

	ambientOnce sync.Once
	ambient     map[string]ambientModule
}

// module is a resolved module specifier: a source file, or a `declare module` block
// inside one when ambient is set.
type module struct {
	path    string
	ambient string
}

func (m module) key() string {
	if m.ambient == "" {
		return m.path
	}
	return m.path + "@" + m.ambient
}

// New creates a Resolver backed by tree-sitter parses of the files it visits.
func New(opts Options) (*resolver, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *syntax.ExportTable](size)
	if err != nil {
		return nil, errors.Wrap(err, "creating export cache")
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &resolver{
		opts:    opts,
		log:     log,
		exports: cache,
	}, nil
}

// ResolveDefinitions implements Resolver.
func (r *resolver) ResolveDefinitions(ctx context.Context, fromFile, moduleSpecifier, name string) ([]Definition, error) {
	target, ok := r.resolve(fromFile, moduleSpecifier)
	if !ok {
		r.log.Debug("unresolved module", "specifier", moduleSpecifier, "from", fromFile)
		return nil, nil
	}

	defs, err := r.lookup(ctx, target, name, map[string]bool{})
	if err != nil {
		return nil, errors.Wrapf(err, "looking up %q in %s", name, target.key())
	}
	if len(defs) == 0 {
		r.log.Debug("unresolved name", "name", name, "module", target.key())
	}
	return defs, nil
}

// Invalidate drops the cached export table of path, after the file was rewritten.
func (r *resolver) Invalidate(path string) {
	r.exports.Remove(path)
}

// resolve maps a specifier to a file, falling back to the ambient module declarations.
// Relative specifiers can only match wildcard declarations such as '*.svg'.
func (r *resolver) resolve(fromFile, specifier string) (module, bool) {
	if path, ok := r.resolveModule(fromFile, specifier); ok {
		return module{path: path}, true
	}
	if std.IsBuiltinModule(specifier) {
		return module{}, false
	}
	return r.resolveAmbient(specifier)
}

// table returns the export table of m.
func (r *resolver) table(m module) (*syntax.ExportTable, error) {
	if m.ambient == "" {
		return r.exportTable(m.path)
	}
	return r.ambientModules()[m.ambient].table, nil
}

// lookup collects the definitions exported from m under name.
func (r *resolver) lookup(ctx context.Context, m module, name string, visited map[string]bool) ([]Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := m.key() + "#" + name
	if visited[key] {
		return nil, nil
	}
	visited[key] = true

	table, err := r.table(m)
	if err != nil {
		return nil, err
	}
	return r.lookupIn(ctx, m, table, name, visited)
}

// lookupIn collects the definitions table exports under name. table is the export
// table of m or of a namespace declared in m.
func (r *resolver) lookupIn(ctx context.Context, m module, table *syntax.ExportTable, name string, visited map[string]bool) ([]Definition, error) {
	if table.ExportAssignment != "" && !table.HasExport(name) {
		return r.lookupAssignment(ctx, m, table, name, visited)
	}

	var defs []Definition
	for _, decl := range table.Declarations[name] {
		if decl.Exported {
			// all same-named declarations merge with the exported one
			defs = append(defs, definitions(m.path, table.Declarations[name])...)
			break
		}
	}

	for _, clause := range table.Clauses {
		if clause.Exported != name {
			continue
		}
		found, err := r.followClause(ctx, m, table, clause, visited)
		if err != nil {
			return nil, err
		}
		if clause.TypeOnly {
			found = typeOnly(found)
		}
		defs = append(defs, found...)
	}

	if len(defs) > 0 || name == syntax.DefaultExport {
		return defs, nil
	}

	for _, star := range table.Stars {
		target, ok := r.resolve(m.path, star)
		if !ok {
			continue
		}
		found, err := r.lookup(ctx, target, name, visited)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			return found, nil
		}
	}

	return nil, nil
}

// lookupAssignment resolves name in a module written as `export = X`. The default
// export is X itself; any other name is a member of the namespace merged into X.
func (r *resolver) lookupAssignment(ctx context.Context, m module, table *syntax.ExportTable, name string, visited map[string]bool) ([]Definition, error) {
	target := table.ExportAssignment
	if name == syntax.DefaultExport {
		if decls := table.Declarations[target]; len(decls) > 0 {
			return definitions(m.path, decls), nil
		}
		return r.followImport(ctx, m, table, target, visited)
	}

	if members, ok := table.Namespaces[target]; ok {
		return r.lookupIn(ctx, m, members, name, visited)
	}
	if binding, ok := table.Imports[target]; ok && binding.Name == "*" {
		// import * as X from '...'; export = X
		next, ok := r.resolve(m.path, binding.Source)
		if !ok {
			return nil, nil
		}
		return r.lookup(ctx, next, name, visited)
	}
	return nil, nil
}

func (r *resolver) followClause(ctx context.Context, m module, table *syntax.ExportTable, clause syntax.ExportClause, visited map[string]bool) ([]Definition, error) {
	if clause.Source != "" {
		if clause.Local == "*" {
			return []Definition{{Name: clause.Exported, Kind: KindModule, FilePath: m.path}}, nil
		}
		target, ok := r.resolve(m.path, clause.Source)
		if !ok {
			return nil, nil
		}
		return r.lookup(ctx, target, clause.Local, visited)
	}

	if decls := table.Declarations[clause.Local]; len(decls) > 0 {
		return definitions(m.path, decls), nil
	}
	return r.followImport(ctx, m, table, clause.Local, visited)
}

// followImport resolves a local binding that was itself imported into m.
func (r *resolver) followImport(ctx context.Context, m module, table *syntax.ExportTable, local string, visited map[string]bool) ([]Definition, error) {
	binding, ok := table.Imports[local]
	if !ok {
		return nil, nil
	}
	if binding.Name == "*" {
		return []Definition{{Name: local, Kind: KindModule, FilePath: m.path}}, nil
	}
	target, ok := r.resolve(m.path, binding.Source)
	if !ok {
		return nil, nil
	}
	return r.lookup(ctx, target, binding.Name, visited)
}

func definitions(path string, decls []syntax.Declaration) []Definition {
	defs := make([]Definition, 0, len(decls))
	for _, decl := range decls {
		defs = append(defs, Definition{
			Name:     decl.Name,
			Kind:     decl.Kind,
			FilePath: path,
			Line:     decl.Line,
		})
	}
	return defs
}

func typeOnly(defs []Definition) []Definition {
	for i := range defs {
		defs[i].TypeOnly = true
	}
	return defs
}

// exportTable returns the parsed export table of path, from cache when possible.
func (r *resolver) exportTable(path string) (*syntax.ExportTable, error) {
	if table, ok := r.exports.Get(path); ok {
		return table, nil
	}
	r.log.Debug("parsing module", "path", path)

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrMsgFailedToReadFile)
	}

	file, err := syntax.Parse(path, source)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	table := file.Exports()
	r.exports.Add(path, table)
	return table, nil
}
