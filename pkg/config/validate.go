package config

import (
	"github.com/siyuan-infoblox/ts-import-types/pkg/errors"
)

// Validate rejects option combinations that cannot run.
func Validate(opts *Options) error {
	if opts.Stdio && len(opts.Patterns) > 0 {
		return errors.Wrap(errors.New(errors.ErrMsgStdioWithPatterns), errors.ErrMsgInvalidOptions)
	}
	if opts.Diff && !opts.DryRun {
		return errors.Wrap(errors.New(errors.ErrMsgDiffWithoutDryRun), errors.ErrMsgInvalidOptions)
	}
	if opts.CacheSize <= 0 {
		return errors.Wrap(errors.Errorf(errors.ErrMsgInvalidCacheSize, opts.CacheSize), errors.ErrMsgInvalidOptions)
	}
	return nil
}
