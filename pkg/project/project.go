// Package project selects a TypeScript project's source files and persists them.
package project

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/siyuan-infoblox/ts-import-types/pkg/errors"
	"github.com/siyuan-infoblox/ts-import-types/pkg/tsconfig"
	"github.com/siyuan-infoblox/ts-import-types/pkg/utils"
)

// compiledPattern holds both the pattern string and its compiled globs
type compiledPattern struct {
	pattern string
	globs   []glob.Glob
	negated bool
}

func (cp compiledPattern) match(path string) bool {
	for _, g := range cp.globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// Project is a tsconfig.json project.
type Project struct {
	config  *tsconfig.Config
	cwd     string
	files   map[string]bool
	include []compiledPattern
	exclude []compiledPattern
}

// New compiles the include and exclude patterns of cfg. Relative CLI patterns passed
// to SourceFiles are later resolved against cwd.
func New(cfg *tsconfig.Config, cwd string) (*Project, error) {
	p := &Project{
		config: cfg,
		cwd:    filepath.ToSlash(cwd),
		files:  make(map[string]bool),
	}

	for _, file := range cfg.Files {
		p.files[file] = true
	}

	for _, pattern := range cfg.Include {
		cp, err := compile(includePattern(pattern))
		if err != nil {
			return nil, errors.NewConfigurationError(cfg.Path, err)
		}
		p.include = append(p.include, cp)
	}

	for _, pattern := range cfg.Exclude {
		cp, err := compile(pattern)
		if err != nil {
			return nil, errors.NewConfigurationError(cfg.Path, err)
		}
		// an excluded directory excludes everything below it
		below, err := compile(strings.TrimSuffix(pattern, "/") + "/**")
		if err != nil {
			return nil, errors.NewConfigurationError(cfg.Path, err)
		}
		cp.globs = append(cp.globs, below.globs...)
		p.exclude = append(p.exclude, cp)
	}

	return p, nil
}

// Config returns the project configuration.
func (p *Project) Config() *tsconfig.Config {
	return p.config
}

// SourceFiles returns the project's source files in lexical path order. When patterns
// is non-empty only files matching at least one pattern, and no "!"-negated pattern,
// are returned.
func (p *Project) SourceFiles(patterns []string) ([]*SourceFile, error) {
	var selectors, negations []compiledPattern
	for _, pattern := range patterns {
		cp, err := compile(p.absolutePattern(pattern))
		if err != nil {
			return nil, err
		}
		if cp.negated {
			negations = append(negations, cp)
		} else {
			selectors = append(selectors, cp)
		}
	}

	paths, err := utils.FindSourceFiles(filepath.FromSlash(p.config.Dir))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrMsgFailedToFindFiles)
	}

	var files []*SourceFile
	for _, path := range paths {
		slashed := filepath.ToSlash(path)
		if !p.inProject(slashed) {
			continue
		}
		if len(selectors) > 0 && !matchesAny(slashed, selectors) {
			continue
		}
		if matchesAny(slashed, negations) {
			continue
		}
		files = append(files, &SourceFile{Path: path})
	}

	return files, nil
}

// DeclarationFiles returns the paths of the project's declaration files, the files
// that may declare ambient modules.
func (p *Project) DeclarationFiles() ([]string, error) {
	files, err := p.SourceFiles(nil)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, file := range files {
		if utils.IsDeclarationFile(file.Path) {
			paths = append(paths, file.Path)
		}
	}
	return paths, nil
}

// CreateSourceFile returns an in-memory file at path that is never written to disk.
func (p *Project) CreateSourceFile(path string, text []byte) *SourceFile {
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.FromSlash(p.cwd), path)
	}
	return &SourceFile{
		Path:     path,
		text:     text,
		original: text,
		virtual:  true,
		loaded:   true,
	}
}

func (p *Project) inProject(path string) bool {
	if p.files[path] {
		return true
	}
	if matchesAny(path, p.exclude) {
		return false
	}
	return matchesAny(path, p.include)
}

func (p *Project) absolutePattern(pattern string) string {
	negated := strings.HasPrefix(pattern, "!")
	pattern = filepath.ToSlash(strings.TrimPrefix(pattern, "!"))
	pattern = strings.TrimPrefix(pattern, "./")
	if !strings.HasPrefix(pattern, "/") && !filepath.IsAbs(pattern) {
		pattern = p.cwd + "/" + pattern
	}
	if negated {
		return "!" + pattern
	}
	return pattern
}

// includePattern expands a directory include such as "src" to "src/**/*".
func includePattern(pattern string) string {
	last := pattern[strings.LastIndex(pattern, "/")+1:]
	if strings.ContainsAny(last, "*?") || strings.Contains(last, ".") {
		return pattern
	}
	return strings.TrimSuffix(pattern, "/") + "/**/*"
}

// compile compiles a glob with '/' as separator. Each "/**/" also gets a variant
// without it, so that "src/**/*.ts" matches "src/index.ts".
func compile(pattern string) (compiledPattern, error) {
	cp := compiledPattern{pattern: pattern}
	if strings.HasPrefix(pattern, "!") {
		cp.negated = true
		pattern = strings.TrimPrefix(pattern, "!")
	}

	variants := []string{pattern}
	if strings.Contains(pattern, "/**/") {
		variants = append(variants, strings.ReplaceAll(pattern, "/**/", "/"))
	}

	for _, variant := range variants {
		g, err := glob.Compile(variant, '/')
		if err != nil {
			return cp, errors.Wrapf(err, errors.ErrMsgInvalidPattern, cp.pattern)
		}
		cp.globs = append(cp.globs, g)
	}
	return cp, nil
}

func matchesAny(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.match(path) {
			return true
		}
	}
	return false
}

// SourceFile is a project file whose text is loaded on demand.
type SourceFile struct {
	Path string

	text     []byte
	original []byte
	mode     os.FileMode
	virtual  bool
	loaded   bool
}

// Load reads the file from disk unless it is already in memory.
func (f *SourceFile) Load() error {
	if f.loaded {
		return nil
	}
	info, err := os.Stat(f.Path)
	if err != nil {
		return errors.Wrap(err, errors.ErrMsgFailedToReadFile)
	}
	text, err := os.ReadFile(f.Path)
	if err != nil {
		return errors.Wrap(err, errors.ErrMsgFailedToReadFile)
	}
	f.text, f.original, f.mode, f.loaded = text, text, info.Mode().Perm(), true
	return nil
}

// Text returns the file's current in-memory text.
func (f *SourceFile) Text() []byte {
	return f.text
}

// SetText replaces the in-memory text.
func (f *SourceFile) SetText(text []byte) {
	f.text = text
}

// Changed reports whether the in-memory text differs from what was loaded.
func (f *SourceFile) Changed() bool {
	return string(f.text) != string(f.original)
}

// Virtual reports whether the file only exists in memory.
func (f *SourceFile) Virtual() bool {
	return f.virtual
}

// Save writes the in-memory text back to the file's path.
func (f *SourceFile) Save() error {
	if f.virtual {
		return errors.Errorf("%s: %s is not backed by a file", errors.ErrMsgFailedToWriteFile, f.Path)
	}
	mode := f.mode
	if mode == 0 {
		mode = 0644
	}
	if err := os.WriteFile(f.Path, f.text, mode); err != nil {
		return errors.Wrap(err, errors.ErrMsgFailedToWriteFile)
	}
	f.original = f.text
	return nil
}
