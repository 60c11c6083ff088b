package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/siyuan-infoblox/ts-import-types/pkg/config"
	"github.com/siyuan-infoblox/ts-import-types/pkg/errors"
	"github.com/siyuan-infoblox/ts-import-types/pkg/formatter"
	"github.com/siyuan-infoblox/ts-import-types/pkg/project"
	"github.com/siyuan-infoblox/ts-import-types/pkg/resolver"
	"github.com/siyuan-infoblox/ts-import-types/pkg/tsconfig"
	"github.com/siyuan-infoblox/ts-import-types/pkg/utils"
	"github.com/siyuan-infoblox/ts-import-types/pkg/version"
)

const (
	UseDescription   = "tsit [flags] [patterns...]"
	ShortDescription = "Autofix TypeScript imports to use import type where possible"
	LongDescription  = `tsit rewrites the imports of a TypeScript project so that bindings which
only resolve to types and interfaces are imported with "import type".

  import Default, { value1, TypeA } from './m'

becomes

  import Default, { value1 } from './m'
  import type { TypeA } from './m'

Patterns are globs selecting source files of the project; without patterns every
file of the project is processed. With --stdio, source code is read from stdin and
the result written to stdout.

Options may also be set with TSIT_* environment variables or a .tsimporttypes.yaml
file in the working directory.`
)

var (
	configFile  string
	showVersion bool
	versionInfo version.Info
)

var rootCmd = newRootCommand()

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           UseDescription,
		Short:         ShortDescription,
		Long:          LongDescription,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.BoolP("dry-run", "d", false, "write output to stdout instead of overwriting files")
	flags.StringP("project", "p", config.DefaultProject, "path to tsconfig.json")
	flags.BoolP(config.NoOrganiseImportsFlag, "O", false, "disable the organise imports pass")
	flags.Bool("stdio", false, "read from stdin and write to stdout")
	flags.String("file-path", "", "file location to use for --stdio source code")
	flags.Bool("diff", false, "with --dry-run, print a diff instead of the full text")
	flags.Bool("verbose", false, "log debug information to stderr")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringVar(&configFile, "config", "", "tool config file (default .tsimporttypes.yaml)")
	flags.BoolVarP(&showVersion, "version", "v", false, "Show version information")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if showVersion {
		fmt.Fprintln(cmd.OutOrStdout(), versionInfo.String())
		return nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, errors.ErrMsgFailedToGetWorkingDir)
	}

	opts, err := config.NewLoader(cwd, configFile, cmd.Flags()).Load(args)
	if err != nil {
		return err
	}
	if opts.NoColor {
		color.NoColor = true
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	if opts.Stdio {
		return runStdio(cmd, opts, cwd, logger)
	}
	return runProject(cmd, opts, cwd, logger)
}

// runProject rewrites the source files of a tsconfig.json project in place, or prints
// them when running dry.
func runProject(cmd *cobra.Command, opts *config.Options, cwd string, logger *slog.Logger) error {
	configPath := absolute(cwd, opts.Project)

	proj, res, err := loadProject(configPath, cwd, opts, logger)
	if err != nil {
		return err
	}

	g := formatter.New(formatter.FormatterConfig{
		DryRun:          opts.DryRun,
		OrganiseImports: opts.OrganiseImports,
		Diff:            opts.Diff,
		Resolver:        res,
		Output:          cmd.OutOrStdout(),
		WorkingDir:      cwd,
		Logger:          logger,
	})
	g.Reporter().Analysing(configPath)

	files, err := proj.SourceFiles(opts.Patterns)
	if err != nil {
		return err
	}

	summary, err := g.ProcessFiles(cmd.Context(), files)
	if err != nil {
		return err
	}
	logger.Debug("run finished",
		"files", summary.Files, "rewritten", summary.Rewritten,
		"unchanged", summary.Unchanged, "failed", summary.Failed)
	return nil
}

// runStdio rewrites source code read from stdin as if it lived at --file-path.
func runStdio(cmd *cobra.Command, opts *config.Options, cwd string, logger *slog.Logger) error {
	source, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return errors.Wrap(err, errors.ErrMsgFailedToReadStdin)
	}

	filePath := opts.FilePath
	if filePath == "" {
		filePath = "stdin.ts"
	}
	filePath = absolute(cwd, filePath)

	configPath := absolute(cwd, opts.Project)
	if !opts.ProjectSet {
		if found := utils.FindProjectConfig(filepath.Dir(filePath)); found != "" {
			configPath = found
		}
	}

	proj, res, err := loadProject(configPath, cwd, opts, logger)
	if err != nil {
		return err
	}

	g := formatter.New(formatter.FormatterConfig{
		OrganiseImports: opts.OrganiseImports,
		Resolver:        res,
		Output:          cmd.ErrOrStderr(),
		WorkingDir:      cwd,
		Logger:          logger,
	})

	text, err := g.ProcessStdio(cmd.Context(), proj.CreateSourceFile(filePath, source))
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(text)
	return err
}

// loadProject loads the tsconfig.json at configPath and builds the resolver for it.
func loadProject(configPath, cwd string, opts *config.Options, logger *slog.Logger) (*project.Project, resolver.Resolver, error) {
	cfg, err := tsconfig.Load(configPath)
	if err != nil {
		logger.Debug("loading project config", "path", configPath, "error", err)
		return nil, nil, &errors.ConfigurationError{Err: errors.Errorf(errors.ErrMsgNotATSConfig, configPath)}
	}

	proj, err := project.New(cfg, cwd)
	if err != nil {
		return nil, nil, err
	}

	ambient, err := proj.DeclarationFiles()
	if err != nil {
		return nil, nil, err
	}

	res, err := resolver.New(resolver.Options{
		BaseURL:      cfg.CompilerOptions.BaseURL,
		Paths:        cfg.CompilerOptions.Paths,
		PathsBase:    cfg.CompilerOptions.PathsBase,
		AmbientFiles: ambient,
		CacheSize:    opts.CacheSize,
		Logger:       logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return proj, res, nil
}

func absolute(cwd, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(cwd, path)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// reportError prints err to w. Configuration errors, a failed --stdio file and an
// interrupt get a single line; anything else escaped the per-file boundary and is
// reported with its stack trace.
func reportError(w io.Writer, err error) {
	red := color.New(color.FgRed)
	switch {
	case errors.IsConfigurationError(err):
		red.Fprintln(w, err.Error())
		return
	case errors.IsFileError(err):
		red.Fprintln(w, "×", err.Error())
		return
	case errors.Is(err, context.Canceled):
		color.New(color.FgYellow).Fprintln(w, "!", errors.InfoMsgInterrupted)
		return
	}

	red.Fprintf(w, "! %s\n\n", err.Error())
	red.Fprintf(w, "! "+errors.InfoMsgPleaseRaiseIssue+"\n\n", color.New(color.Underline).Sprint(errors.IssuesURL))

	trace := strings.TrimRight(fmt.Sprintf("%+v", err), "\n")
	for _, line := range strings.Split(trace, "\n") {
		fmt.Fprintln(w, "    "+line)
	}
}

// Execute runs the root command. Errors are reported to stderr before being returned.
func Execute(info version.Info) error {
	versionInfo = info

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		reportError(rootCmd.ErrOrStderr(), err)
		return err
	}
	return nil
}
