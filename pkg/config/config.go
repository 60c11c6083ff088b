// Package config loads the tool's own options from flags, the environment and an
// optional .tsimporttypes.yaml file.
package config

import (
	"github.com/siyuan-infoblox/ts-import-types/pkg/resolver"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. TSIT_DRY_RUN.
	EnvPrefix = "TSIT"
	// FileName is the tool config file looked up in the working directory.
	FileName = ".tsimporttypes"

	DefaultProject = "./tsconfig.json"
)

// Options is the resolved configuration of one run
type Options struct {
	Project         string `mapstructure:"project"`
	DryRun          bool   `mapstructure:"dry_run"`
	OrganiseImports bool   `mapstructure:"organise_imports"`
	Stdio           bool   `mapstructure:"stdio"`
	FilePath        string `mapstructure:"file_path"`
	Diff            bool   `mapstructure:"diff"`
	Verbose         bool   `mapstructure:"verbose"`
	NoColor         bool   `mapstructure:"no_color"`
	CacheSize       int    `mapstructure:"cache_size"`

	// ProjectSet is true when the project path differs from the default.
	ProjectSet bool `mapstructure:"-"`
	// Patterns are the positional glob arguments.
	Patterns []string `mapstructure:"-"`
}

// Default returns the options used when nothing overrides them.
func Default() *Options {
	return &Options{
		Project:         DefaultProject,
		OrganiseImports: true,
		CacheSize:       resolver.DefaultCacheSize,
	}
}
