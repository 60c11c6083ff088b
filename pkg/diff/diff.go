// Package diff renders line diffs for previewing rewrites.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Lines returns a line diff of a and b. Every line of the result is prefixed with "+",
// "-" or " ". Identical inputs yield an empty string.
func Lines(a, b []byte) string {
	if string(a) == string(b) {
		return ""
	}

	dmp := diffmatchpatch.New()
	chars1, chars2, lines := dmp.DiffLinesToChars(string(a), string(b))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(chars1, chars2, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range splitLines(d.Text) {
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// splitLines splits text into lines without their terminators.
func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
