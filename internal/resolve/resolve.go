// Package resolve implements the Constant Resolver: Zeitwerk-style
// autoload-path inference of fully qualified constant names from file
// paths, and nesting-aware lookup from a textual reference plus a
// namespace stack back to zero or more defining files.
package resolve

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	rubyrefs "github.com/perryqh/ruby-references-go"
	"github.com/perryqh/ruby-references-go/internal/inflect"
)

// Resolver is built once from Configuration and is read-only
// thereafter; it is safe to call Resolve from many goroutines
// concurrently.
type Resolver struct {
	definitions []rubyrefs.ConstantDefinition
	byName      map[string][]rubyrefs.ConstantDefinition
}

// Definitions returns every inferred constant definition, in no
// particular order. Restored from the reference implementation's
// equivalent accessor for callers that want to enumerate every known
// constant rather than resolve a specific reference.
func (r *Resolver) Definitions() []rubyrefs.ConstantDefinition {
	return r.definitions
}

// New builds a Resolver by globbing every autoload root for source
// files and inferring each one's fully qualified constant name from its
// path relative to the longest (most specific) autoload root that
// contains it.
func New(autoloadRoots []rubyrefs.AutoloadRoot, acronymList []string, primaryExt string) (*Resolver, error) {
	acronyms := inflect.NewAcronymSet(acronymList)

	type rootEntry struct {
		root rubyrefs.AutoloadRoot
		file string
	}

	fileToLongest := make(map[string]rootEntry)

	for _, root := range autoloadRoots {
		pattern := filepath.ToSlash(filepath.Join(root.AbsolutePath, "**/*."+primaryExt))
		files, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			existing, ok := fileToLongest[f]
			if !ok || componentCount(root.AbsolutePath) > componentCount(existing.root.AbsolutePath) {
				fileToLongest[f] = rootEntry{root: root, file: f}
			}
		}
	}

	definitions := make([]rubyrefs.ConstantDefinition, 0, len(fileToLongest))
	for file, entry := range fileToLongest {
		definitions = append(definitions, inferConstant(file, entry.root, acronyms))
	}

	byName := make(map[string][]rubyrefs.ConstantDefinition, len(definitions))
	for _, d := range definitions {
		byName[d.FullyQualifiedName] = append(byName[d.FullyQualifiedName], d)
	}

	return &Resolver{definitions: definitions, byName: byName}, nil
}

func componentCount(path string) int {
	return len(strings.Split(filepath.ToSlash(filepath.Clean(path)), "/"))
}

func inferConstant(absolutePath string, root rubyrefs.AutoloadRoot, acronyms inflect.AcronymSet) rubyrefs.ConstantDefinition {
	rel, err := filepath.Rel(root.AbsolutePath, absolutePath)
	if err != nil {
		rel = strings.TrimPrefix(absolutePath, root.AbsolutePath)
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))

	camelized := inflect.Camelize(rel, acronyms)
	fqn := root.DefaultNamespace + "::" + camelized

	return rubyrefs.ConstantDefinition{
		FullyQualifiedName:       fqn,
		AbsolutePathOfDefinition: absolutePath,
	}
}

// Resolve looks up name under a namespace stack (outermost first),
// trying candidates from most to least specific: for an absolute name
// (leading "::") only the exact map entry is tried; otherwise
// candidates are built by prepending successively shorter prefixes of
// stack, root last, mirroring the language's own nesting-lookup order.
func (r *Resolver) Resolve(name string, namespaceStack []string) []rubyrefs.ConstantDefinition {
	if strings.HasPrefix(name, "::") {
		return r.byName[name]
	}

	nameParts := strings.Split(name, "::")
	for k := len(namespaceStack); k >= 0; k-- {
		parts := append(append([]string(nil), namespaceStack[:k]...), nameParts...)
		candidate := "::" + strings.Join(parts, "::")
		if defs, ok := r.byName[candidate]; ok {
			return defs
		}
	}
	return nil
}
