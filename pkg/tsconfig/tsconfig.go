// Package tsconfig loads the subset of a TypeScript project configuration that file
// selection and module resolution need.
package tsconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/siyuan-infoblox/ts-import-types/pkg/errors"
	"github.com/siyuan-infoblox/ts-import-types/pkg/utils"
)

// DefaultInclude is the include pattern used when neither files nor include are set.
const DefaultInclude = "**/*"

// DefaultExclude lists the directories excluded when exclude is not set.
var DefaultExclude = []string{"node_modules", "bower_components", "jspm_packages"}

// Config is a loaded tsconfig.json with extends applied. All paths are absolute and
// use forward slashes so they can be matched by glob patterns.
type Config struct {
	Path            string
	Dir             string
	CompilerOptions CompilerOptions
	Include         []string
	Exclude         []string
	Files           []string
}

// CompilerOptions holds the module resolution options.
type CompilerOptions struct {
	BaseURL   string
	Paths     map[string][]string
	PathsBase string // directory that paths substitutions are relative to
	OutDir    string
}

type rawConfig struct {
	Extends         json.RawMessage     `json:"extends"`
	CompilerOptions *rawCompilerOptions `json:"compilerOptions"`
	Include         *[]string           `json:"include"`
	Exclude         *[]string           `json:"exclude"`
	Files           *[]string           `json:"files"`
}

type rawCompilerOptions struct {
	BaseURL *string             `json:"baseUrl"`
	Paths   map[string][]string `json:"paths"`
	OutDir  *string             `json:"outDir"`
}

// Load reads the config at path and every config it extends. Errors are returned as
// *errors.ConfigurationError.
func Load(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.NewConfigurationError(path, err)
	}

	cfg, err := load(abs, map[string]bool{})
	if err != nil {
		if errors.IsConfigurationError(err) {
			return nil, err
		}
		return nil, errors.NewConfigurationError(abs, err)
	}

	cfg.Path = filepath.ToSlash(abs)
	cfg.Dir = filepath.ToSlash(filepath.Dir(abs))
	if cfg.Files == nil && cfg.Include == nil {
		cfg.Include = []string{joinPattern(cfg.Dir, DefaultInclude)}
	}
	if cfg.Exclude == nil {
		for _, dir := range DefaultExclude {
			cfg.Exclude = append(cfg.Exclude, joinPattern(cfg.Dir, dir))
		}
		if cfg.CompilerOptions.OutDir != "" {
			cfg.Exclude = append(cfg.Exclude, cfg.CompilerOptions.OutDir)
		}
	}
	if cfg.CompilerOptions.PathsBase == "" {
		cfg.CompilerOptions.PathsBase = cfg.Dir
	}
	if cfg.CompilerOptions.BaseURL != "" {
		cfg.CompilerOptions.PathsBase = cfg.CompilerOptions.BaseURL
	}

	return cfg, nil
}

// parse standardizes JSON with comments and trailing commas and decodes it.
func parse(data []byte) (*rawConfig, error) {
	standard, err := hujson.Standardize(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrMsgFailedToParseConfig)
	}

	var raw rawConfig
	if err := json.Unmarshal(standard, &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrMsgFailedToParseConfig)
	}
	return &raw, nil
}

func load(path string, visiting map[string]bool) (*Config, error) {
	if visiting[path] {
		return nil, errors.Errorf(errors.ErrMsgCircularExtends, path)
	}
	visiting[path] = true
	defer delete(visiting, path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigurationError(path, errors.Wrap(err, errors.ErrMsgFailedToReadConfig))
	}

	raw, err := parse(data)
	if err != nil {
		return nil, errors.NewConfigurationError(path, err)
	}

	dir := filepath.ToSlash(filepath.Dir(path))
	cfg := &Config{}

	bases, err := extendsList(raw.Extends)
	if err != nil {
		return nil, errors.NewConfigurationError(path, err)
	}
	for _, base := range bases {
		basePath, err := resolveExtends(filepath.Dir(path), base)
		if err != nil {
			return nil, errors.NewConfigurationError(path, err)
		}
		baseCfg, err := load(basePath, visiting)
		if err != nil {
			return nil, err
		}
		cfg.merge(baseCfg)
	}

	cfg.apply(raw, dir)
	return cfg, nil
}

// merge overlays the fields set in other onto c.
func (c *Config) merge(other *Config) {
	if other.Include != nil {
		c.Include = other.Include
	}
	if other.Exclude != nil {
		c.Exclude = other.Exclude
	}
	if other.Files != nil {
		c.Files = other.Files
	}
	if other.CompilerOptions.BaseURL != "" {
		c.CompilerOptions.BaseURL = other.CompilerOptions.BaseURL
	}
	if other.CompilerOptions.Paths != nil {
		c.CompilerOptions.Paths = other.CompilerOptions.Paths
		c.CompilerOptions.PathsBase = other.CompilerOptions.PathsBase
	}
	if other.CompilerOptions.OutDir != "" {
		c.CompilerOptions.OutDir = other.CompilerOptions.OutDir
	}
}

// apply overlays a raw config declared in dir. Relative paths resolve against dir.
func (c *Config) apply(raw *rawConfig, dir string) {
	if raw.Include != nil {
		c.Include = joinPatterns(dir, *raw.Include)
	}
	if raw.Exclude != nil {
		c.Exclude = joinPatterns(dir, *raw.Exclude)
	}
	if raw.Files != nil {
		c.Files = joinPatterns(dir, *raw.Files)
	}

	opts := raw.CompilerOptions
	if opts == nil {
		return
	}
	if opts.BaseURL != nil {
		c.CompilerOptions.BaseURL = joinPattern(dir, *opts.BaseURL)
	}
	if opts.Paths != nil {
		c.CompilerOptions.Paths = opts.Paths
		c.CompilerOptions.PathsBase = dir
	}
	if opts.OutDir != nil {
		c.CompilerOptions.OutDir = joinPattern(dir, *opts.OutDir)
	}
}

// extendsList decodes extends, which is a string or, since TypeScript 5.0, an array.
func extendsList(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, errors.Wrap(err, errors.ErrMsgFailedToParseConfig)
	}
	return many, nil
}

// resolveExtends locates an extended config either relative to dir or as a package
// under node_modules.
func resolveExtends(dir, name string) (string, error) {
	withJSON := func(p string) []string {
		if strings.HasSuffix(p, ".json") {
			return []string{p}
		}
		return []string{p, p + ".json", filepath.Join(p, utils.TSConfigFileName)}
	}

	if filepath.IsAbs(name) || strings.HasPrefix(name, "./") || strings.HasPrefix(name, "../") {
		target := name
		if !filepath.IsAbs(name) {
			target = filepath.Join(dir, name)
		}
		for _, candidate := range withJSON(target) {
			if utils.FileExists(candidate) {
				return candidate, nil
			}
		}
		return "", errors.Errorf(errors.ErrMsgFailedToExtendConfig, name)
	}

	for current := dir; ; {
		for _, candidate := range withJSON(filepath.Join(current, "node_modules", name)) {
			if utils.FileExists(candidate) {
				return candidate, nil
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return "", errors.Errorf(errors.ErrMsgFailedToExtendConfig, name)
}

func joinPatterns(dir string, patterns []string) []string {
	joined := make([]string, 0, len(patterns))
	for _, p := range patterns {
		joined = append(joined, joinPattern(dir, p))
	}
	return joined
}

func joinPattern(dir, pattern string) string {
	pattern = filepath.ToSlash(pattern)
	if strings.HasPrefix(pattern, "/") || filepath.IsAbs(pattern) {
		return pattern
	}
	return filepath.ToSlash(filepath.Join(dir, pattern))
}
