package std

import "strings"

// nodePrefix is the URL scheme Node.js reserves for its builtin modules.
const nodePrefix = "node:"

// BuiltinModules lists the Node.js core modules. Their declarations live in ambient
// `declare module` blocks of @types/node rather than in files a module specifier can
// be resolved to.
var BuiltinModules = map[string]bool{
	"assert":              true,
	"assert/strict":       true,
	"async_hooks":         true,
	"buffer":              true,
	"child_process":       true,
	"cluster":             true,
	"console":             true,
	"constants":           true,
	"crypto":              true,
	"dgram":               true,
	"diagnostics_channel": true,
	"dns":                 true,
	"dns/promises":        true,
	"domain":              true,
	"events":              true,
	"fs":                  true,
	"fs/promises":         true,
	"http":                true,
	"http2":               true,
	"https":               true,
	"inspector":           true,
	"module":              true,
	"net":                 true,
	"os":                  true,
	"path":                true,
	"path/posix":          true,
	"path/win32":          true,
	"perf_hooks":          true,
	"process":             true,
	"punycode":            true,
	"querystring":         true,
	"readline":            true,
	"readline/promises":   true,
	"repl":                true,
	"stream":              true,
	"stream/consumers":    true,
	"stream/promises":     true,
	"stream/web":          true,
	"string_decoder":      true,
	"sys":                 true,
	"timers":              true,
	"timers/promises":     true,
	"tls":                 true,
	"trace_events":        true,
	"tty":                 true,
	"url":                 true,
	"util":                true,
	"util/types":          true,
	"v8":                  true,
	"vm":                  true,
	"wasi":                true,
	"worker_threads":      true,
	"zlib":                true,
}

// IsBuiltinModule reports whether a module specifier names a Node.js core module,
// with or without the node: prefix.
func IsBuiltinModule(specifier string) bool {
	if strings.HasPrefix(specifier, nodePrefix) {
		// node:test and node:sqlite only exist in prefixed form
		name := strings.TrimPrefix(specifier, nodePrefix)
		return name != "" && (BuiltinModules[name] || name == "test" || name == "sqlite" || name == "sea")
	}
	return BuiltinModules[specifier]
}
