package collector

import (
	"strings"

	rubyrefs "github.com/perryqh/ruby-references-go"
)

// FilterSelfReferences drops references whose only matching definition
// sits at the reference's own source location — in practice a
// class/module declaration's self-reference. When
// includeReferenceIsDefinition is true, the input is returned unchanged.
func FilterSelfReferences(references []rubyrefs.UnresolvedReference, definitions []rubyrefs.ParsedDefinition, includeReferenceIsDefinition bool) []rubyrefs.UnresolvedReference {
	if includeReferenceIsDefinition {
		return references
	}

	locations := definitionLocations(definitions)

	kept := make([]rubyrefs.UnresolvedReference, 0, len(references))
	for _, r := range references {
		if !isSelfReference(r, locations) {
			kept = append(kept, r)
		}
	}
	return kept
}

// definitionLocations maps every prefix of every definition's fully
// qualified name to the first (outermost) definition's location, e.g.
// a definition "::Foo::Bar::BAZ" contributes keys "::Foo", "::Foo::Bar"
// and "::Foo::Bar::BAZ", keeping whichever was inserted first so an
// inner constant never overwrites its enclosing class/module's entry.
func definitionLocations(definitions []rubyrefs.ParsedDefinition) map[string]rubyrefs.Range {
	locations := make(map[string]rubyrefs.Range)
	for _, d := range definitions {
		parts := strings.Split(d.FullyQualifiedName, "::")
		for i := range parts {
			key := strings.Join(parts[:i+1], "::")
			if _, exists := locations[key]; !exists {
				locations[key] = d.Location
			}
		}
	}
	return locations
}

// isSelfReference reports whether r is the synthetic self-reference a
// class/module declaration contributes for its own name: true only when
// at least one candidate namespace resolution names a known definition
// AND every such definition sits at r's exact location (the declaration
// site itself, not some other real usage of the same name).
func isSelfReference(r rubyrefs.UnresolvedReference, locations map[string]rubyrefs.Range) bool {
	matched := false
	for _, candidate := range possibleFullyQualifiedNames(r.NamespacePath, r.Name) {
		loc, ok := locations[candidate]
		if !ok {
			continue
		}
		if loc.StartRow != r.Location.StartRow || loc.StartCol != r.Location.StartCol {
			return false
		}
		matched = true
	}
	return matched
}

// possibleFullyQualifiedNames enumerates candidate fully qualified
// names for a textual reference under a namespace stack, from most to
// least specific, matching the resolver's own lookup order. An already
// absolute name (leading "::", as class/module self-references carry)
// has exactly one candidate: itself.
func possibleFullyQualifiedNames(namespacePath []string, name string) []string {
	if strings.HasPrefix(name, "::") {
		return []string{name}
	}

	candidates := make([]string, 0, len(namespacePath)+1)
	for k := len(namespacePath); k >= 0; k-- {
		parts := append(append([]string(nil), namespacePath[:k]...), strings.Split(name, "::")...)
		candidates = append(candidates, "::"+strings.Join(parts, "::"))
	}
	return candidates
}
