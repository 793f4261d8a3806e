// Package inflect implements the small slice of ActiveSupport-style
// string inflection the constant resolver and association DSL need:
// snake_case/path segments to CamelCase (acronym-aware), and English
// singularization of a symbol's textual form.
package inflect

import "strings"

// AcronymSet is a case-insensitive lookup of configured acronyms,
// keyed by lowercase form, valued by the acronym's canonical casing
// (e.g. "api" -> "API").
type AcronymSet map[string]string

// NewAcronymSet builds an AcronymSet from a configured acronym list.
func NewAcronymSet(acronyms []string) AcronymSet {
	set := make(AcronymSet, len(acronyms))
	for _, a := range acronyms {
		set[strings.ToLower(a)] = a
	}
	return set
}

// Camelize converts a "/"-separated, snake_case relative path into a
// "::"-joined CamelCase constant path, e.g. "my_module/some_api_class"
// with acronym set {"api"} becomes "MyModule::SomeAPIClass".
func Camelize(relativePath string, acronyms AcronymSet) string {
	segments := strings.Split(relativePath, "/")
	camelized := make([]string, len(segments))
	for i, seg := range segments {
		camelized[i] = camelizeSegment(seg, acronyms)
	}
	return strings.Join(camelized, "::")
}

// camelizeSegment converts one underscore_separated path segment into
// CamelCase, preserving any underscore-delimited word that matches a
// configured acronym.
func camelizeSegment(segment string, acronyms AcronymSet) string {
	words := strings.Split(segment, "_")
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		if canon, ok := acronyms[strings.ToLower(w)]; ok {
			parts = append(parts, canon)
			continue
		}
		parts = append(parts, capitalize(w))
	}
	return strings.Join(parts, "")
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	r := []rune(word)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// ToClassCase converts a symbol's bare textual form (e.g. "accounting_firm")
// into a class name (e.g. "AccountingFirm"), optionally singularizing it
// first, as the association DSL does for bare has_many/has_one/belongs_to
// symbol arguments.
func ToClassCase(s string, singularize bool, acronyms AcronymSet) string {
	if singularize {
		s = Singularize(s)
	}
	return camelizeSegment(s, acronyms)
}

// irregular maps plural -> singular for forms that don't follow the
// suffix rules below.
var irregular = map[string]string{
	"people":   "person",
	"men":      "man",
	"women":    "woman",
	"children": "child",
	"teeth":    "tooth",
	"feet":     "foot",
	"geese":    "goose",
	"mice":     "mouse",
	"data":     "datum",
}

// uncountable are words Rails' inflector treats as singular already.
var uncountable = map[string]bool{
	"series":     true,
	"species":    true,
	"equipment":  true,
	"information": true,
	"news":       true,
}

// Singularize reverses common English pluralization, the way
// ActiveSupport::Inflector#singularize does for the handful of forms
// that show up as association symbol arguments.
func Singularize(word string) string {
	lower := strings.ToLower(word)
	if uncountable[lower] {
		return word
	}
	if singular, ok := irregular[lower]; ok {
		return matchCase(word, singular)
	}

	switch {
	case strings.HasSuffix(lower, "ies") && len(lower) > 3:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(lower, "ves") && len(lower) > 3:
		return word[:len(word)-3] + "f"
	case strings.HasSuffix(lower, "ses") && len(lower) > 3:
		return word[:len(word)-2]
	case strings.HasSuffix(lower, "xes") && len(lower) > 3:
		return word[:len(word)-2]
	case strings.HasSuffix(lower, "ches") && len(lower) > 4:
		return word[:len(word)-2]
	case strings.HasSuffix(lower, "shes") && len(lower) > 4:
		return word[:len(word)-2]
	case strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ss") && len(lower) > 1:
		return word[:len(word)-1]
	default:
		return word
	}
}

// matchCase is a best-effort case transfer for the irregular table,
// which is only ever consulted with already-lowercase association
// symbol text in practice.
func matchCase(original, replacement string) string {
	if original == strings.ToUpper(original) {
		return strings.ToUpper(replacement)
	}
	return replacement
}
