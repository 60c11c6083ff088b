package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/siyuan-infoblox/ts-import-types/pkg/errors"
)

// flagKeys maps command line flags onto config keys
var flagKeys = map[string]string{
	"project":   "project",
	"dry-run":   "dry_run",
	"stdio":     "stdio",
	"file-path": "file_path",
	"diff":      "diff",
	"verbose":   "verbose",
	"no-color":  "no_color",
}

// NoOrganiseImportsFlag inverts organise_imports.
const NoOrganiseImportsFlag = "no-organise-imports"

// Loader resolves Options.
type Loader struct {
	workingDir string
	configFile string
	flags      *pflag.FlagSet
}

// NewLoader creates a loader. configFile may be empty, in which case .tsimporttypes.yaml
// is looked up in workingDir. flags may be nil.
func NewLoader(workingDir, configFile string, flags *pflag.FlagSet) *Loader {
	return &Loader{
		workingDir: workingDir,
		configFile: configFile,
		flags:      flags,
	}
}

// Load resolves the options with the following priority (highest to lowest):
// 1. Command line flags
// 2. Environment variables (TSIT_*)
// 3. Config file (--config, or .tsimporttypes.yaml in the working directory)
// 4. Default values
func (l *Loader) Load(patterns []string) (*Options, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(l.workingDir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := l.bindFlags(v); err != nil {
		return nil, errors.NewConfigurationError(l.configFile, err)
	}

	if err := v.ReadInConfig(); err != nil {
		// a missing default file is fine, a missing --config is not
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.NewConfigurationError(l.configFile, errors.Wrap(err, errors.ErrMsgFailedToReadConfig))
		}
	}

	opts := &Options{}
	if err := v.Unmarshal(opts); err != nil {
		return nil, errors.NewConfigurationError(v.ConfigFileUsed(), errors.Wrap(err, errors.ErrMsgFailedToParseConfig))
	}
	opts.ProjectSet = opts.Project != DefaultProject
	opts.Patterns = patterns

	if err := Validate(opts); err != nil {
		return nil, errors.NewConfigurationError(v.ConfigFileUsed(), err)
	}
	return opts, nil
}

func (l *Loader) bindFlags(v *viper.Viper) error {
	if l.flags == nil {
		return nil
	}
	for flag, key := range flagKeys {
		if f := l.flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	if f := l.flags.Lookup(NoOrganiseImportsFlag); f != nil && f.Changed {
		disabled, err := l.flags.GetBool(NoOrganiseImportsFlag)
		if err != nil {
			return err
		}
		v.Set("organise_imports", !disabled)
	}
	return nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("project", defaults.Project)
	v.SetDefault("dry_run", defaults.DryRun)
	v.SetDefault("organise_imports", defaults.OrganiseImports)
	v.SetDefault("stdio", defaults.Stdio)
	v.SetDefault("file_path", defaults.FilePath)
	v.SetDefault("diff", defaults.Diff)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("no_color", defaults.NoColor)
	v.SetDefault("cache_size", defaults.CacheSize)
}
