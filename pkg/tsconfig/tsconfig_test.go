package tsconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siyuan-infoblox/ts-import-types/pkg/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_defaults(t *testing.T) {
	req := require.New(t)
	dir := filepath.ToSlash(t.TempDir())
	path := filepath.Join(dir, "tsconfig.json")
	writeFile(t, path, `{ "compilerOptions": { "strict": true } }`)

	cfg, err := Load(path)
	req.NoError(err)
	req.Equal(filepath.ToSlash(path), cfg.Path)
	req.Equal(dir, cfg.Dir)
	req.Equal([]string{dir + "/**/*"}, cfg.Include)
	req.Equal([]string{dir + "/node_modules", dir + "/bower_components", dir + "/jspm_packages"}, cfg.Exclude)
	req.Nil(cfg.Files)
	req.Empty(cfg.CompilerOptions.BaseURL)
	req.Equal(dir, cfg.CompilerOptions.PathsBase)
}

func TestLoad_commentsAndTrailingCommas(t *testing.T) {
	req := require.New(t)
	dir := filepath.ToSlash(t.TempDir())
	path := filepath.Join(dir, "tsconfig.json")
	writeFile(t, path, `{
  // line comment
  "compilerOptions": {
    /* block comment */
    "baseUrl": "./src",
    "paths": {
      "@app/*": ["app/*"],
    },
    "outDir": "dist",
  },
  "include": ["src/**/*",],
}`)

	cfg, err := Load(path)
	req.NoError(err)
	req.Equal(dir+"/src", cfg.CompilerOptions.BaseURL)
	req.Equal(dir+"/src", cfg.CompilerOptions.PathsBase)
	req.Equal(map[string][]string{"@app/*": {"app/*"}}, cfg.CompilerOptions.Paths)
	req.Equal([]string{dir + "/src/**/*"}, cfg.Include)
	req.Contains(cfg.Exclude, dir+"/dist")
}

func TestLoad_extends(t *testing.T) {
	req := require.New(t)
	dir := filepath.ToSlash(t.TempDir())

	writeFile(t, filepath.Join(dir, "configs", "base.json"), `{
  "compilerOptions": { "paths": { "~/*": ["./lib/*"] } },
  "exclude": ["generated"]
}`)
	writeFile(t, filepath.Join(dir, "node_modules", "@acme", "tsconfig", "tsconfig.json"), `{
  "compilerOptions": { "outDir": "build" }
}`)
	path := filepath.Join(dir, "tsconfig.json")
	writeFile(t, path, `{
  "extends": ["./configs/base", "@acme/tsconfig"],
  "files": ["index.ts"]
}`)

	cfg, err := Load(path)
	req.NoError(err)
	req.Equal([]string{dir + "/index.ts"}, cfg.Files)
	req.Nil(cfg.Include, "files without include selects only files")
	req.Equal([]string{dir + "/configs/generated"}, cfg.Exclude, "exclude is relative to the declaring config")
	req.Equal(dir+"/configs", cfg.CompilerOptions.PathsBase)
	req.Equal(dir+"/node_modules/@acme/tsconfig/build", cfg.CompilerOptions.OutDir)
}

func TestLoad_errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "invalid.json"), `{ "compilerOptions": `)
	writeFile(t, filepath.Join(dir, "badextends.json"), `{ "extends": "./missing" }`)
	writeFile(t, filepath.Join(dir, "a.json"), `{ "extends": "./b.json" }`)
	writeFile(t, filepath.Join(dir, "b.json"), `{ "extends": "./a.json" }`)

	tests := []struct {
		name    string
		path    string
		wantMsg string
	}{
		{"missing file", filepath.Join(dir, "missing.json"), errors.ErrMsgFailedToReadConfig},
		{"invalid json", filepath.Join(dir, "invalid.json"), errors.ErrMsgFailedToParseConfig},
		{"missing extends", filepath.Join(dir, "badextends.json"), "failed to resolve extended config"},
		{"circular extends", filepath.Join(dir, "a.json"), "circular extends chain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			_, err := Load(tt.path)
			req.Error(err)
			req.True(errors.IsConfigurationError(err), "Load(%q) should return a ConfigurationError", tt.path)
			req.Contains(err.Error(), tt.wantMsg)
		})
	}
}
