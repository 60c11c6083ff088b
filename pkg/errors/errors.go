package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Error message constants for the ts-import-types application
const (
	// Configuration errors
	ErrMsgNotATSConfig          = "ts-import-types --project %s is not a tsconfig.json file"
	ErrMsgFailedToReadConfig    = "failed to read config file"
	ErrMsgFailedToParseConfig   = "failed to parse config file"
	ErrMsgFailedToExtendConfig  = "failed to resolve extended config %q"
	ErrMsgCircularExtends       = "circular extends chain at %s"
	ErrMsgInvalidOptions        = "invalid options"
	ErrMsgStdioWithPatterns     = "--stdio cannot be combined with file patterns"
	ErrMsgDiffWithoutDryRun     = "--diff requires --dry-run"
	ErrMsgInvalidCacheSize      = "cache size must be positive, got %d"
	ErrMsgFailedToGetWorkingDir = "failed to get current working directory"

	// File processing errors
	ErrMsgFailedToReadFile      = "failed to read file"
	ErrMsgFailedToParseFile     = "failed to parse file"
	ErrMsgFailedToWriteFile     = "failed to write file"
	ErrMsgFailedToResolve       = "failed to resolve %q from %q"
	ErrMsgFailedToOrganize      = "failed to organize imports"
	ErrMsgFailedToFindFiles     = "failed to find source files in directory"
	ErrMsgInvalidPattern        = "invalid file pattern %q"
	ErrMsgFailedToReadStdin     = "failed to read stdin"
	ErrMsgPanicDuringProcessing = "panic while processing file: %v"

	// Info/warning messages
	InfoMsgAnalysing          = "Analysing"
	InfoMsgFound              = "Found"
	InfoMsgFiles              = "files"
	InfoMsgContainsDirectives = "contains triple-slash directives"
	InfoMsgComplete           = " Complete "
	InfoMsgPleaseRaiseIssue   = "Please raise an issue at %s"
	InfoMsgInterrupted        = "Interrupted, remaining files were left untouched"
	IssuesURL                 = "https://github.com/siyuan-infoblox/ts-import-types/issues"
	WarnMsgDirectives         = `* Moving triple-slash directives such as /// <reference lib="webworker" /> back
  to the top of the file is not yet supported.

  Until then, the following files will need their triple-slash
  directives manually moving back to the top of the file:`
)

// ConfigurationError reports a project or tool configuration that cannot be loaded.
// It is fatal: no file is processed after one is returned.
type ConfigurationError struct {
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError wraps err with a stack trace and the offending path.
func NewConfigurationError(path string, err error) error {
	return &ConfigurationError{Path: path, Err: pkgerrors.WithStack(err)}
}

// FileError is a failure confined to a single source file.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// NewFileError wraps err as a per-file failure.
func NewFileError(path string, err error) error {
	return &FileError{Path: path, Err: err}
}

// IsConfigurationError reports whether err carries a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return As(err, &cfgErr)
}

// IsFileError reports whether err carries a FileError.
func IsFileError(err error) bool {
	var fileErr *FileError
	return As(err, &fileErr)
}

// Wrap, Wrapf, New, Errorf, As and Is re-export github.com/pkg/errors so callers import a
// single errors package.
var (
	Wrap   = pkgerrors.Wrap
	Wrapf  = pkgerrors.Wrapf
	New    = pkgerrors.New
	Errorf = pkgerrors.Errorf
	As     = pkgerrors.As
	Is     = pkgerrors.Is
)
