package resolver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/siyuan-infoblox/ts-import-types/pkg/std"
	"github.com/siyuan-infoblox/ts-import-types/pkg/utils"
)

// extensions are tried, in order, for an extensionless module path.
var extensions = []string{".ts", ".tsx", ".d.ts", ".mts", ".cts", ".d.mts", ".d.cts"}

// jsExtensions maps emitted JavaScript extensions to the sources they are compiled from.
var jsExtensions = map[string][]string{
	".js":  {".ts", ".tsx", ".d.ts"},
	".jsx": {".tsx"},
	".mjs": {".mts", ".d.mts"},
	".cjs": {".cts", ".d.cts"},
}

type packageJSON struct {
	Types   string `json:"types"`
	Typings string `json:"typings"`
}

// resolveModule maps a module specifier imported by fromFile to a source file.
func (r *resolver) resolveModule(fromFile, specifier string) (string, bool) {
	if std.IsBuiltinModule(specifier) {
		return "", false
	}
	fromDir := filepath.Dir(fromFile)

	if isRelative(specifier) {
		if filepath.IsAbs(filepath.FromSlash(specifier)) {
			return resolveFile(filepath.FromSlash(specifier))
		}
		return resolveFile(filepath.Join(fromDir, filepath.FromSlash(specifier)))
	}

	for _, candidate := range r.pathsCandidates(specifier) {
		if path, ok := resolveFile(candidate); ok {
			return path, true
		}
	}

	if r.opts.BaseURL != "" {
		if path, ok := resolveFile(filepath.Join(filepath.FromSlash(r.opts.BaseURL), filepath.FromSlash(specifier))); ok {
			return path, true
		}
	}

	return resolveNodeModules(fromDir, specifier)
}

func isRelative(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") ||
		strings.HasPrefix(specifier, "/")
}

// pathsCandidates applies the tsconfig paths mapping with the longest matching prefix.
func (r *resolver) pathsCandidates(specifier string) []string {
	if len(r.opts.Paths) == 0 {
		return nil
	}

	var (
		best      []string
		bestMatch string
		bestLen   = -1
	)
	for pattern, substitutions := range r.opts.Paths {
		matched, ok := matchPattern(pattern, specifier)
		if !ok {
			continue
		}
		prefixLen := len(pattern)
		if star := strings.Index(pattern, "*"); star >= 0 {
			prefixLen = star
		} else {
			// exact patterns beat any wildcard
			prefixLen = len(pattern) + len(specifier)
		}
		if prefixLen > bestLen {
			best, bestMatch, bestLen = substitutions, matched, prefixLen
		}
	}

	candidates := make([]string, 0, len(best))
	for _, sub := range best {
		path := strings.Replace(sub, "*", bestMatch, 1)
		candidates = append(candidates, filepath.Join(filepath.FromSlash(r.opts.PathsBase), filepath.FromSlash(path)))
	}
	return candidates
}

// matchPattern matches specifier against a paths key containing at most one "*" and
// returns the text the wildcard captured.
func matchPattern(pattern, specifier string) (string, bool) {
	star := strings.Index(pattern, "*")
	if star < 0 {
		return "", pattern == specifier
	}
	prefix, suffix := pattern[:star], pattern[star+1:]
	if len(specifier) < len(prefix)+len(suffix) ||
		!strings.HasPrefix(specifier, prefix) || !strings.HasSuffix(specifier, suffix) {
		return "", false
	}
	return specifier[len(prefix) : len(specifier)-len(suffix)], true
}

// resolveNodeModules looks for a package, then its @types counterpart, in every
// node_modules directory from dir up to the filesystem root.
func resolveNodeModules(dir, specifier string) (string, bool) {
	name, subpath := splitPackage(specifier)
	typesName := "@types/" + mangleScopedName(name)

	for current := dir; ; {
		modules := filepath.Join(current, "node_modules")
		if path, ok := resolveFile(filepath.Join(modules, filepath.FromSlash(name+subpath))); ok {
			return path, true
		}
		if path, ok := resolveFile(filepath.Join(modules, filepath.FromSlash(typesName+subpath))); ok {
			return path, true
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

// splitPackage splits "@scope/pkg/sub/path" into "@scope/pkg" and "/sub/path".
func splitPackage(specifier string) (string, string) {
	parts := strings.SplitN(specifier, "/", 3)
	if strings.HasPrefix(specifier, "@") && len(parts) >= 2 {
		name := parts[0] + "/" + parts[1]
		return name, strings.TrimPrefix(specifier, name)
	}
	name := parts[0]
	return name, strings.TrimPrefix(specifier, name)
}

// mangleScopedName maps "@scope/pkg" to the DefinitelyTyped name "scope__pkg".
func mangleScopedName(name string) string {
	if strings.HasPrefix(name, "@") {
		return strings.Replace(strings.TrimPrefix(name, "@"), "/", "__", 1)
	}
	return name
}

// resolveFile tries base as a file, with TypeScript extensions, and as a directory.
func resolveFile(base string) (string, bool) {
	if utils.IsSourceFile(base) && utils.FileExists(base) {
		return base, true
	}

	ext := filepath.Ext(base)
	if replacements, ok := jsExtensions[ext]; ok {
		stem := strings.TrimSuffix(base, ext)
		for _, replacement := range replacements {
			if utils.FileExists(stem + replacement) {
				return stem + replacement, true
			}
		}
	}

	for _, ext := range extensions {
		if utils.FileExists(base + ext) {
			return base + ext, true
		}
	}

	if isDir, err := utils.IsDirectory(base); err == nil && isDir {
		return resolveDirectory(base)
	}
	return "", false
}

func resolveDirectory(dir string) (string, bool) {
	if data, err := os.ReadFile(filepath.Join(dir, "package.json")); err == nil {
		var pkg packageJSON
		if json.Unmarshal(data, &pkg) == nil {
			for _, entry := range []string{pkg.Types, pkg.Typings} {
				if entry == "" {
					continue
				}
				target := filepath.Join(dir, filepath.FromSlash(entry))
				if utils.FileExists(target) && utils.IsSourceFile(target) {
					return target, true
				}
				// "types": "./lib/index" without extension
				for _, ext := range extensions {
					if utils.FileExists(target + ext) {
						return target + ext, true
					}
				}
			}
		}
	}

	for _, ext := range extensions {
		index := filepath.Join(dir, "index"+ext)
		if utils.FileExists(index) {
			return index, true
		}
	}
	return "", false
}
