package formatter

import (
	"context"

	"github.com/siyuan-infoblox/ts-import-types/pkg/diff"
	"github.com/siyuan-infoblox/ts-import-types/pkg/errors"
	"github.com/siyuan-infoblox/ts-import-types/pkg/project"
)

// Summary counts the outcome of a batch run
type Summary struct {
	Files          int
	Rewritten      int
	Unchanged      int
	Failed         int
	DirectiveFiles []string // rewritten files that contain triple-slash directives
}

// invalidator is implemented by resolvers that cache parsed files.
type invalidator interface {
	Invalidate(path string)
}

// ProcessFiles rewrites files one at a time, in order. A failure in one file is
// reported and counted, and the batch carries on with the next file. Only a canceled
// context stops the batch early.
func (g *formatter) ProcessFiles(ctx context.Context, files []*project.SourceFile) (*Summary, error) {
	summary := &Summary{Files: len(files)}
	g.reporter.Found(len(files))

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result, err := g.processFile(ctx, file)
		if err != nil {
			g.logger.Debug("file skipped", "file", file.Path, "error", err)
			g.reporter.Failed(file.Path, err)
			summary.Failed++
			continue
		}

		if !result.HasChanges {
			g.reporter.Unchanged(file.Path)
			summary.Unchanged++
			continue
		}

		g.reporter.Rewritten(file.Path)
		summary.Rewritten++

		if len(result.RewrittenDirectives) > 0 {
			summary.DirectiveFiles = append(summary.DirectiveFiles, file.Path)
			g.reporter.ContainsDirectives()
		}

		if g.config.DryRun {
			if g.config.Diff {
				g.reporter.Text([]byte(diff.Lines(result.original, file.Text())))
			} else {
				g.reporter.Text(file.Text())
			}
		}
	}

	g.reporter.Complete(summary.DirectiveFiles)
	return summary, nil
}

// fileResult extends RewriteResult with the text the file had before the rewrite
type fileResult struct {
	*RewriteResult
	original []byte
}

// processFile rewrites a single file and saves it unless running dry or the file only
// exists in memory. Panics are recovered into a FileError so that the caller can keep
// going.
func (g *formatter) processFile(ctx context.Context, file *project.SourceFile) (result *fileResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewFileError(file.Path, errors.Errorf(errors.ErrMsgPanicDuringProcessing, r))
		}
	}()

	if err := file.Load(); err != nil {
		return nil, errors.NewFileError(file.Path, err)
	}

	original := file.Text()
	rewrite, err := g.RewriteFile(ctx, file.Path, original)
	if err != nil {
		return nil, errors.NewFileError(file.Path, err)
	}
	result = &fileResult{RewriteResult: rewrite, original: original}
	if !rewrite.HasChanges {
		return result, nil
	}

	file.SetText(rewrite.Text)
	if g.config.DryRun || file.Virtual() || !file.Changed() {
		return result, nil
	}

	if err := file.Save(); err != nil {
		return nil, errors.NewFileError(file.Path, err)
	}
	if cache, ok := g.config.Resolver.(invalidator); ok {
		cache.Invalidate(file.Path)
	}
	return result, nil
}

// ProcessStdio rewrites a file that only exists in memory and returns its new text.
// The text is returned unchanged when there is nothing to rewrite.
func (g *formatter) ProcessStdio(ctx context.Context, file *project.SourceFile) ([]byte, error) {
	result, err := g.RewriteFile(ctx, file.Path, file.Text())
	if err != nil {
		return nil, errors.NewFileError(file.Path, err)
	}
	if result.HasChanges {
		file.SetText(result.Text)
	}
	return file.Text(), nil
}
