package formatter

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/siyuan-infoblox/ts-import-types/pkg/errors"
)

var (
	infoColor    = color.New(color.FgBlue)
	skipColor    = color.New(color.FgHiBlack)
	successColor = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	bannerColor  = color.New(color.BgGreen, color.FgBlack)
)

// Reporter prints run progress to the console
type Reporter struct {
	out io.Writer
	cwd string
}

// NewReporter creates a Reporter writing to out. Paths are shown relative to cwd when
// it is set.
func NewReporter(out io.Writer, cwd string) *Reporter {
	return &Reporter{out: out, cwd: cwd}
}

// Analysing announces the project configuration being processed.
func (r *Reporter) Analysing(configPath string) {
	r.Info(errors.InfoMsgAnalysing, r.relative(configPath))
}

// Found announces how many source files were selected.
func (r *Reporter) Found(n int) {
	r.Info(errors.InfoMsgFound, humanize.Comma(int64(n)), errors.InfoMsgFiles)
}

func (r *Reporter) Unchanged(path string) {
	skipColor.Fprintln(r.out, "-", r.relative(path))
}

func (r *Reporter) Rewritten(path string) {
	successColor.Fprintln(r.out, "✓", r.relative(path))
}

func (r *Reporter) Failed(path string, err error) {
	failColor.Fprintln(r.out, "×", r.relative(path))
	if err != nil {
		skipColor.Fprintln(r.out, "  "+err.Error())
	}
}

func (r *Reporter) ContainsDirectives() {
	warnColor.Fprintln(r.out, "!", errors.InfoMsgContainsDirectives)
}

// Text prints a preview of a file verbatim.
func (r *Reporter) Text(text []byte) {
	fmt.Fprintln(r.out, string(text))
}

// Complete prints the end-of-run banner and, when needed, the list of files whose
// triple-slash directives must be moved back by hand.
func (r *Reporter) Complete(directiveFiles []string) {
	fmt.Fprintln(r.out)
	bannerColor.Fprint(r.out, errors.InfoMsgComplete)
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out)

	if len(directiveFiles) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(errors.WarnMsgDirectives)
	sb.WriteString("\n")
	for _, path := range directiveFiles {
		sb.WriteString("\n  - " + r.relative(path))
	}
	warnColor.Fprintln(r.out, sb.String())
}

// Info prints an informational line such as "i Found 12 files".
func (r *Reporter) Info(parts ...string) {
	infoColor.Fprintln(r.out, "i "+strings.Join(parts, " "))
}

func (r *Reporter) relative(path string) string {
	if r.cwd == "" {
		return path
	}
	rel, err := filepath.Rel(r.cwd, path)
	if err != nil {
		return path
	}
	return rel
}
