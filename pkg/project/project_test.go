package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siyuan-infoblox/ts-import-types/pkg/tsconfig"
)

func setupProject(t *testing.T, config string) (string, *Project) {
	t.Helper()
	req := require.New(t)
	root := t.TempDir()

	files := map[string]string{
		"tsconfig.json":             config,
		"src/index.ts":              "export {}",
		"src/components/App.tsx":    "export {}",
		"src/generated/schema.ts":   "export {}",
		"src/types.d.ts":            "export {}",
		"scripts/build.ts":          "export {}",
		"node_modules/dep/index.ts": "export {}",
		"src/readme.md":             "# docs",
	}
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		req.NoError(os.MkdirAll(filepath.Dir(full), 0755))
		req.NoError(os.WriteFile(full, []byte(content), 0644))
	}

	cfg, err := tsconfig.Load(filepath.Join(root, "tsconfig.json"))
	req.NoError(err)
	p, err := New(cfg, root)
	req.NoError(err)
	return root, p
}

func relativePaths(t *testing.T, root string, files []*SourceFile) []string {
	t.Helper()
	var paths []string
	for _, f := range files {
		rel, err := filepath.Rel(root, f.Path)
		require.NoError(t, err)
		paths = append(paths, filepath.ToSlash(rel))
	}
	return paths
}

func TestProject_SourceFiles(t *testing.T) {
	tests := []struct {
		name     string
		config   string
		patterns []string
		want     []string
	}{
		{
			name:   "whole project by default",
			config: `{}`,
			want: []string{
				"scripts/build.ts",
				"src/components/App.tsx",
				"src/generated/schema.ts",
				"src/index.ts",
				"src/types.d.ts",
			},
		},
		{
			name:   "include directory and exclude",
			config: `{ "include": ["src"], "exclude": ["src/generated"] }`,
			want: []string{
				"src/components/App.tsx",
				"src/index.ts",
				"src/types.d.ts",
			},
		},
		{
			name:   "files list",
			config: `{ "files": ["scripts/build.ts"] }`,
			want:   []string{"scripts/build.ts"},
		},
		{
			name:     "cli patterns select within the project",
			config:   `{ "include": ["src/**/*"] }`,
			patterns: []string{"src/**/*.tsx", "scripts/*.ts"},
			want:     []string{"src/components/App.tsx"},
		},
		{
			name:     "negated cli pattern",
			config:   `{}`,
			patterns: []string{"src/**/*.ts", "!**/*.d.ts"},
			want: []string{
				"src/generated/schema.ts",
				"src/index.ts",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			root, p := setupProject(t, tt.config)

			files, err := p.SourceFiles(tt.patterns)
			req.NoError(err)
			req.Equal(tt.want, relativePaths(t, root, files))
		})
	}
}

func TestProject_DeclarationFiles(t *testing.T) {
	req := require.New(t)
	root, p := setupProject(t, `{ "exclude": ["scripts"] }`)
	req.NoError(os.WriteFile(filepath.Join(root, "src", "env.d.mts"), []byte("export {}"), 0644))

	paths, err := p.DeclarationFiles()
	req.NoError(err)
	req.Equal([]string{
		filepath.Join(root, "src", "env.d.mts"),
		filepath.Join(root, "src", "types.d.ts"),
	}, paths)
}

func TestProject_SourceFiles_invalidPattern(t *testing.T) {
	req := require.New(t)
	_, p := setupProject(t, `{}`)

	_, err := p.SourceFiles([]string{"src/[.ts"})
	req.Error(err)
	req.Contains(err.Error(), "invalid file pattern")
}

func TestSourceFile_LoadSave(t *testing.T) {
	req := require.New(t)
	root, p := setupProject(t, `{}`)

	files, err := p.SourceFiles([]string{"src/index.ts"})
	req.NoError(err)
	req.Len(files, 1)
	f := files[0]

	req.NoError(f.Load())
	req.Equal("export {}", string(f.Text()))
	req.False(f.Changed())
	req.False(f.Virtual())

	f.SetText([]byte("export const x = 1;\n"))
	req.True(f.Changed())
	req.NoError(f.Save())
	req.False(f.Changed())

	saved, err := os.ReadFile(filepath.Join(root, "src", "index.ts"))
	req.NoError(err)
	req.Equal("export const x = 1;\n", string(saved))
}

func TestSourceFile_LoadMissing(t *testing.T) {
	req := require.New(t)
	f := &SourceFile{Path: filepath.Join(t.TempDir(), "gone.ts")}
	req.Error(f.Load())
}

func TestProject_CreateSourceFile(t *testing.T) {
	req := require.New(t)
	root, p := setupProject(t, `{}`)

	f := p.CreateSourceFile("src/stdin.ts", []byte("import { a } from './a';\n"))
	req.Equal(filepath.Join(root, "src", "stdin.ts"), f.Path)
	req.True(f.Virtual())
	req.NoError(f.Load(), "virtual files are already loaded")
	req.Equal("import { a } from './a';\n", string(f.Text()))
	req.Error(f.Save(), "virtual files cannot be saved")
}
