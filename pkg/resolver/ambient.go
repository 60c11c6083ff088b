package resolver

import (
	"strings"

	"github.com/siyuan-infoblox/ts-import-types/pkg/syntax"
)

// ambientModule is a `declare module 'name' { }` block found in a declaration file.
type ambientModule struct {
	path  string
	table *syntax.ExportTable
}

// ambientModules indexes the ambient module blocks of Options.AmbientFiles on first use.
// Blocks declaring the same name merge, the first file keeping the path.
func (r *resolver) ambientModules() map[string]ambientModule {
	r.ambientOnce.Do(func() {
		r.ambient = make(map[string]ambientModule)
		for _, path := range r.opts.AmbientFiles {
			table, err := r.exportTable(path)
			if err != nil {
				r.log.Debug("skipping declaration file", "path", path, "error", err)
				continue
			}
			for name, members := range table.AmbientModules {
				if existing, ok := r.ambient[name]; ok {
					merged := syntax.NewExportTable()
					merged.Merge(existing.table)
					merged.Merge(members)
					r.ambient[name] = ambientModule{path: existing.path, table: merged}
					continue
				}
				r.ambient[name] = ambientModule{path: path, table: members}
			}
		}
		r.log.Debug("indexed ambient modules", "files", len(r.opts.AmbientFiles), "modules", len(r.ambient))
	})
	return r.ambient
}

// resolveAmbient finds the ambient module declaring specifier. An exact name wins over
// wildcard names such as '*.svg', which match with the longest prefix first.
func (r *resolver) resolveAmbient(specifier string) (module, bool) {
	modules := r.ambientModules()
	if m, ok := modules[specifier]; ok {
		return module{path: m.path, ambient: specifier}, true
	}

	best, bestLen := "", -1
	for name := range modules {
		star := strings.Index(name, "*")
		if star < 0 {
			continue
		}
		if _, ok := matchPattern(name, specifier); ok && (star > bestLen || (star == bestLen && name < best)) {
			best, bestLen = name, star
		}
	}
	if bestLen < 0 {
		return module{}, false
	}
	return module{path: modules[best].path, ambient: best}, true
}
