package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	return root
}

var projectFiles = map[string]string{
	"src/types.ts": `export interface User { name: string }
export type ID = string;
export class Service {}
interface Service { extra: boolean }
export function helper() {}
export const VERSION = 1;
export enum Role { Admin }
`,
	"src/index.ts": `import { ID } from './types';
export * from './types';
export { helper as renamedHelper } from './types';
export { ID as Identifier };
export * as everything from './types';
`,
	"src/cycle/a.ts":                            "export * from './b';\nexport const A = 1;\n",
	"src/cycle/b.ts":                            "export * from './a';\n",
	"node_modules/lib/package.json":             `{ "name": "lib", "types": "dist/index.d.ts" }`,
	"node_modules/lib/dist/index.d.ts":          "export interface LibOptions {}\nexport declare function lib(): void;\n",
	"node_modules/@types/scope__pkg/index.d.ts": "export type Scoped = string;\n",
	"node_modules/plain/index.d.ts":             "export declare const plain: number;\n",
}

func newTestResolver(t *testing.T, root string) *resolver {
	t.Helper()
	r, err := New(Options{
		Paths:     map[string][]string{"@app/*": {"src/*"}},
		PathsBase: root,
		CacheSize: 16,
	})
	require.NoError(t, err)
	return r
}

func TestResolver_ResolveDefinitions(t *testing.T) {
	root := writeProject(t, projectFiles)
	r := newTestResolver(t, root)
	from := filepath.Join(root, "src", "app.ts")

	tests := []struct {
		name      string
		specifier string
		imported  string
		wantKinds []DefinitionKind
	}{
		{"interface", "./types", "User", []DefinitionKind{KindInterface}},
		{"type alias", "./types", "ID", []DefinitionKind{KindType}},
		{"merged class and interface", "./types", "Service", []DefinitionKind{KindClass, KindInterface}},
		{"function", "./types", "helper", []DefinitionKind{KindFunction}},
		{"const", "./types", "VERSION", []DefinitionKind{KindConst}},
		{"enum", "./types", "Role", []DefinitionKind{KindEnum}},
		{"js extension maps to ts", "./types.js", "User", []DefinitionKind{KindInterface}},
		{"star re-export", "./index", "User", []DefinitionKind{KindInterface}},
		{"renamed re-export", "./index", "renamedHelper", []DefinitionKind{KindFunction}},
		{"export of an import", "./index", "Identifier", []DefinitionKind{KindType}},
		{"namespace re-export", "./index", "everything", []DefinitionKind{KindModule}},
		{"directory index", ".", "User", []DefinitionKind{KindInterface}},
		{"paths mapping", "@app/types", "ID", []DefinitionKind{KindType}},
		{"package types field", "lib", "LibOptions", []DefinitionKind{KindInterface}},
		{"package declared function", "lib", "lib", []DefinitionKind{KindFunction}},
		{"scoped @types package", "@scope/pkg", "Scoped", []DefinitionKind{KindType}},
		{"package index", "plain", "plain", []DefinitionKind{KindConst}},
		{"missing name", "./types", "Missing", nil},
		{"missing module", "./nowhere", "User", nil},
		{"builtin module", "node:fs", "readFile", nil},
		{"cyclic star exports", "./cycle/a", "Missing", nil},
		{"cyclic star exports found", "./cycle/b", "A", []DefinitionKind{KindConst}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			defs, err := r.ResolveDefinitions(context.Background(), from, tt.specifier, tt.imported)
			req.NoError(err)

			var kinds []DefinitionKind
			for _, def := range defs {
				kinds = append(kinds, def.Kind)
			}
			req.Equal(tt.wantKinds, kinds, "ResolveDefinitions(%q, %q)", tt.specifier, tt.imported)
		})
	}
}

func TestResolver_definitionLocation(t *testing.T) {
	req := require.New(t)
	root := writeProject(t, projectFiles)
	r := newTestResolver(t, root)

	defs, err := r.ResolveDefinitions(context.Background(), filepath.Join(root, "src", "app.ts"), "./index", "renamedHelper")
	req.NoError(err)
	req.Len(defs, 1)
	req.Equal(Definition{
		Name:     "helper",
		Kind:     KindFunction,
		FilePath: filepath.Join(root, "src", "types.ts"),
		Line:     5,
	}, defs[0])
}

func TestResolver_cacheAndInvalidate(t *testing.T) {
	req := require.New(t)
	root := writeProject(t, map[string]string{"m.ts": "export interface A {}\n"})
	r := newTestResolver(t, root)
	from := filepath.Join(root, "index.ts")
	target := filepath.Join(root, "m.ts")

	defs, err := r.ResolveDefinitions(context.Background(), from, "./m", "A")
	req.NoError(err)
	req.Equal(KindInterface, defs[0].Kind)
	req.True(r.exports.Contains(target))

	req.NoError(os.WriteFile(target, []byte("export class A {}\n"), 0644))

	defs, err = r.ResolveDefinitions(context.Background(), from, "./m", "A")
	req.NoError(err)
	req.Equal(KindInterface, defs[0].Kind, "stale until invalidated")

	r.Invalidate(target)
	defs, err = r.ResolveDefinitions(context.Background(), from, "./m", "A")
	req.NoError(err)
	req.Equal(KindClass, defs[0].Kind)
}

func TestResolver_canceledContext(t *testing.T) {
	req := require.New(t)
	root := writeProject(t, map[string]string{"m.ts": "export interface A {}\n"})
	r := newTestResolver(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ResolveDefinitions(ctx, filepath.Join(root, "index.ts"), "./m", "A")
	req.ErrorIs(err, context.Canceled)
}

var declarationFiles = map[string]string{
	"node_modules/@types/react/index.d.ts": `export = React;
export as namespace React;

declare namespace React {
    interface FC<P = {}> { (props: P): unknown }
    type Key = string | number;
    function createElement(type: string): unknown;
    class Component<P> { props: P }
}
`,
	"node_modules/@types/express/index.d.ts": `import * as core from './core';
declare function e(): core.Express;
declare namespace e {
    interface Request extends core.Request {}
    var json: () => unknown;
}
export = e;
`,
	"node_modules/@types/express/core.d.ts": "export interface Express {}\nexport interface Request {}\n",
	"node_modules/legacy/index.d.ts":        "import * as impl from './impl';\nexport = impl;\n",
	"node_modules/legacy/impl.d.ts":         "export type Handle = number;\nexport declare function open(): Handle;\n",
	"src/globals.d.ts": `declare module 'virtual-lib' {
    export interface Opts {}
    export function start(opts: Opts): void;
}
declare module '*.svg' {
    const url: string;
    export default url;
}
declare module '*.module.css' {
    export type ClassNames = Record<string, string>;
}
`,
	"src/more.d.ts": `declare module 'virtual-lib' {
    export type Mode = 'a' | 'b';
}
`,
	"src/reexports.ts": "export type { Service } from './service';\nexport { Service as RuntimeService } from './service';\n",
	"src/service.ts":   "export class Service {}\n",
}

func TestResolver_declarationPatterns(t *testing.T) {
	root := writeProject(t, declarationFiles)
	r, err := New(Options{
		AmbientFiles: []string{
			filepath.Join(root, "src", "globals.d.ts"),
			filepath.Join(root, "src", "more.d.ts"),
		},
		CacheSize: 16,
	})
	require.NoError(t, err)
	from := filepath.Join(root, "src", "app.ts")

	tests := []struct {
		name      string
		specifier string
		imported  string
		wantKinds []DefinitionKind
	}{
		{"export assignment namespace interface", "react", "FC", []DefinitionKind{KindInterface}},
		{"export assignment namespace type", "react", "Key", []DefinitionKind{KindType}},
		{"export assignment namespace function", "react", "createElement", []DefinitionKind{KindFunction}},
		{"export assignment namespace class", "react", "Component", []DefinitionKind{KindClass}},
		{"export assignment default", "react", "default", []DefinitionKind{KindModule}},
		{"export assignment missing member", "react", "Missing", nil},
		{"function merged with namespace", "express", "Request", []DefinitionKind{KindInterface}},
		{"function merged with namespace value", "express", "json", []DefinitionKind{KindVar}},
		{"function merged with namespace default", "express", "default", []DefinitionKind{KindFunction, KindModule}},
		{"export assignment of a namespace import", "legacy", "Handle", []DefinitionKind{KindType}},
		{"ambient module interface", "virtual-lib", "Opts", []DefinitionKind{KindInterface}},
		{"ambient module function", "virtual-lib", "start", []DefinitionKind{KindFunction}},
		{"ambient module blocks merge", "virtual-lib", "Mode", []DefinitionKind{KindType}},
		{"wildcard ambient module", "./icon.svg", "default", []DefinitionKind{KindConst}},
		{"wildcard ambient module bare", "icons/logo.svg", "default", []DefinitionKind{KindConst}},
		{"wildcard ambient module type", "theme.module.css", "ClassNames", []DefinitionKind{KindType}},
		{"relative file wins over wildcard", "./service", "Service", []DefinitionKind{KindClass}},
		{"unknown ambient module", "virtual-other", "Opts", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			defs, err := r.ResolveDefinitions(context.Background(), from, tt.specifier, tt.imported)
			req.NoError(err)

			var kinds []DefinitionKind
			for _, def := range defs {
				kinds = append(kinds, def.Kind)
			}
			req.Equal(tt.wantKinds, kinds, "ResolveDefinitions(%q, %q)", tt.specifier, tt.imported)
		})
	}
}

func TestResolver_ambientDefinitionLocation(t *testing.T) {
	req := require.New(t)
	root := writeProject(t, declarationFiles)
	globals := filepath.Join(root, "src", "globals.d.ts")
	r, err := New(Options{AmbientFiles: []string{globals, filepath.Join(root, "missing.d.ts")}})
	req.NoError(err)

	defs, err := r.ResolveDefinitions(context.Background(), filepath.Join(root, "src", "app.ts"), "virtual-lib", "Opts")
	req.NoError(err)
	req.Equal([]Definition{{Name: "Opts", Kind: KindInterface, FilePath: globals, Line: 2}}, defs)
}

func TestResolver_typeOnlyExports(t *testing.T) {
	req := require.New(t)
	root := writeProject(t, declarationFiles)
	r := newTestResolver(t, root)
	from := filepath.Join(root, "src", "app.ts")

	defs, err := r.ResolveDefinitions(context.Background(), from, "./reexports", "Service")
	req.NoError(err)
	req.Len(defs, 1)
	req.Equal(KindClass, defs[0].Kind)
	req.True(defs[0].TypeOnly)

	defs, err = r.ResolveDefinitions(context.Background(), from, "./reexports", "RuntimeService")
	req.NoError(err)
	req.Len(defs, 1)
	req.False(defs[0].TypeOnly)
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern   string
		specifier string
		want      string
		wantOK    bool
	}{
		{"@app/*", "@app/models/user", "models/user", true},
		{"@app/*", "@other/models", "", false},
		{"*.css", "theme.css", "theme", true},
		{"config", "config", "", true},
		{"config", "config/x", "", false},
		{"a*b", "ab", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.specifier, func(t *testing.T) {
			req := require.New(t)
			got, ok := matchPattern(tt.pattern, tt.specifier)
			req.Equal(tt.wantOK, ok)
			req.Equal(tt.want, got)
		})
	}
}

func TestSplitPackage(t *testing.T) {
	tests := []struct {
		specifier   string
		wantName    string
		wantSubpath string
	}{
		{"react", "react", ""},
		{"lodash/fp", "lodash", "/fp"},
		{"@scope/pkg", "@scope/pkg", ""},
		{"@scope/pkg/deep/path", "@scope/pkg", "/deep/path"},
	}

	for _, tt := range tests {
		t.Run(tt.specifier, func(t *testing.T) {
			req := require.New(t)
			name, subpath := splitPackage(tt.specifier)
			req.Equal(tt.wantName, name)
			req.Equal(tt.wantSubpath, subpath)
			req.NotContains(mangleScopedName(name), "@")
		})
	}
}
