// Package resolver implements CallerResolver: it infers a
// CallerIdentity from the runtime call stack and a configured set of
// zone-root directories.
//
// Grounded on original_source/src/foundation/PathResolver.py, translated
// from Python's traceback.extract_stack() walk into Go's
// runtime.Callers/CallersFrames, and on opal-lang-opal's own habit of
// using runtime.Caller for call-site attribution (core/invariant,
// runtime/decorators/logging.go).
package resolver

import (
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/capkv/capkv/internal/capkverr"
	"github.com/capkv/capkv/internal/invariant"
)

// Identity is the result of a successful resolve() call.
type Identity struct {
	// Name is the first path segment under the matched zone root.
	Name string
	// Path is the resolved absolute source-file path of the caller frame.
	Path string
	// Zone is the lower-cased basename of the matched zone root.
	Zone string
}

// zoneRoot is one canonicalized, directory-backed root.
type zoneRoot struct {
	path  string // canonical absolute path, no trailing separator
	label string // lower-cased basename
	depth int    // number of path segments, used for most-specific-root tie-break
}

// CallerResolver matches stack frames against configured zone roots.
type CallerResolver struct {
	roots []zoneRoot
}

// Option configures a CallerResolver at construction.
type Option func(*options)

type options struct {
	fs afero.Fs
}

// WithFilesystem overrides the filesystem used to create zone-root
// directories. Defaults to afero.NewOsFs(); tests typically pass
// afero.NewMemMapFs().
func WithFilesystem(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// New builds a CallerResolver over one or more zone-root directories,
// canonicalizing each and creating it on the filesystem if absent. An
// empty root list is a ConfigurationError.
func New(zoneRoots []string, opts ...Option) (*CallerResolver, error) {
	if len(zoneRoots) == 0 {
		return nil, capkverr.ConfigurationError("at least one zone root is required")
	}

	o := &options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(o)
	}

	roots := make([]zoneRoot, 0, len(zoneRoots))
	for _, raw := range zoneRoots {
		if raw == "" {
			return nil, capkverr.ConfigurationError("zone root path must not be empty")
		}

		abs, err := filepath.Abs(raw)
		if err != nil {
			return nil, capkverr.ConfigurationError("cannot resolve zone root %q: %v", raw, err)
		}
		abs = filepath.Clean(abs)

		if err := o.fs.MkdirAll(abs, 0o755); err != nil {
			return nil, capkverr.ConfigurationError("cannot create zone root %q: %v", abs, err)
		}

		parts := splitPath(abs)
		label := "unknown"
		if len(parts) > 0 {
			label = strings.ToLower(parts[len(parts)-1])
		}

		roots = append(roots, zoneRoot{path: abs, label: label, depth: len(parts)})
	}

	return &CallerResolver{roots: roots}, nil
}

// Resolve walks the call stack of the calling goroutine, innermost
// frame first (excluding Resolve's own frame), looking for the first
// frame whose source file lies under some configured zone root. Ties
// among roots matching the same frame are broken by picking the
// deepest (most specific) root, and ties at equal depth by
// first-configured order. A frame further out than the first match is
// never considered, which prevents a trusted utility frame from
// laundering an untrusted caller's identity into a trusted zone.
func (r *CallerResolver) Resolve() (Identity, error) {
	const maxFrames = 64
	pc := make([]uintptr, maxFrames)
	// skip=2: runtime.Callers itself and this Resolve frame.
	n := runtime.Callers(2, pc)
	invariant.Invariant(n > 0, "runtime.Callers returned no frames for the current goroutine")
	frames := runtime.CallersFrames(pc[:n])

	for {
		frame, more := frames.Next()

		file := filepath.Clean(frame.File)
		if best, ok := r.bestMatch(file); ok {
			name := ""
			if len(best.relParts) > 0 {
				name = best.relParts[0]
			}
			return Identity{Name: name, Path: file, Zone: best.root.label}, nil
		}

		if !more {
			break
		}
	}

	return Identity{}, capkverr.UnknownCaller("no stack frame lies under any configured zone root")
}

type match struct {
	root     zoneRoot
	relParts []string
}

// bestMatch finds every zone root that file resolves under and returns
// the most specific (deepest root path) match, breaking ties by
// first-configured order.
func (r *CallerResolver) bestMatch(file string) (match, bool) {
	var matches []match

	for _, root := range r.roots {
		rel, err := filepath.Rel(root.path, file)
		if err != nil {
			continue
		}
		if rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
			continue
		}

		parts := splitPath(rel)
		if len(parts) == 0 {
			continue
		}

		matches = append(matches, match{root: root, relParts: parts})
	}

	if len(matches) == 0 {
		return match{}, false
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].root.depth > matches[j].root.depth
	})

	return matches[0], true
}

func splitPath(p string) []string {
	p = strings.Trim(p, string(filepath.Separator))
	if p == "" {
		return nil
	}
	return strings.Split(p, string(filepath.Separator))
}
