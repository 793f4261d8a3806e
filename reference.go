// Package rubyrefs resolves inter-file constant references in a tree of
// Ruby-like source files: every syntactic use of a class/module/constant
// name is paired, where possible, with the file that defines it.
package rubyrefs

import "sort"

// Range is a source span: start/end row and column. Row is 1-based,
// column is 0-based, and the span is inclusive of start and exclusive of
// end.
type Range struct {
	StartRow int `json:"start_row"`
	StartCol int `json:"start_col"`
	EndRow   int `json:"end_row"`
	EndCol   int `json:"end_col"`
}

// UnresolvedReference is a textual use of a name in source, not yet
// joined to its definition.
type UnresolvedReference struct {
	Name string `json:"name"`
	// NamespacePath is the lexical nesting at the reference site,
	// outermost namespace first.
	NamespacePath []string `json:"namespace_path"`
	Location      Range    `json:"location"`
}

// ParsedDefinition is a lexical declaration of a constant.
// FullyQualifiedName always has a leading "::" and contains no empty
// segments.
type ParsedDefinition struct {
	FullyQualifiedName string `json:"fully_qualified_name"`
	Location           Range  `json:"location"`
}

// ProcessedFile is the output of running the File Processor and AST
// Collector over one source file. Two ProcessedFiles with the same
// absolute path and contents compare equal.
type ProcessedFile struct {
	AbsolutePath         string                `json:"absolute_path"`
	UnresolvedReferences []UnresolvedReference `json:"unresolved_references"`
}

// ConstantDefinition pairs a fully qualified constant name with the
// absolute path of the file that, by autoload convention, defines it.
type ConstantDefinition struct {
	FullyQualifiedName       string
	AbsolutePathOfDefinition string
}

// SourceLocation is a Reference's line/column, as exposed to callers.
type SourceLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Reference is the final, resolved output of the pipeline: a name used
// at RelativeReferencingFile, paired with the file that defines it when
// the resolver could determine one.
type Reference struct {
	ConstantName            string            `json:"constant_name"`
	RelativeDefiningFile    *string           `json:"relative_defining_file"`
	RelativeReferencingFile string            `json:"relative_referencing_file"`
	SourceLocation          SourceLocation    `json:"source_location"`
	ExtraFields             map[string]string `json:"extra_fields"`
}

// SortReferences stably sorts references into the deterministic final
// order the Parallel Driver's caller-visible contract requires:
// (constant_name, relative_defining_file, relative_referencing_file,
// line, column, len(extra_fields)).
func SortReferences(references []Reference) {
	sort.Stable(byOrder(references))
}

// byOrder implements the deterministic final sort order from the
// Parallel Driver: (constant_name, relative_defining_file,
// relative_referencing_file, line, column, len(extra_fields)).
type byOrder []Reference

func (r byOrder) Len() int      { return len(r) }
func (r byOrder) Swap(i, j int) { r[i], r[j] = r[j], r[i] }
func (r byOrder) Less(i, j int) bool {
	a, b := r[i], r[j]
	if a.ConstantName != b.ConstantName {
		return a.ConstantName < b.ConstantName
	}
	if cmp := compareOptionalString(a.RelativeDefiningFile, b.RelativeDefiningFile); cmp != 0 {
		return cmp < 0
	}
	if a.RelativeReferencingFile != b.RelativeReferencingFile {
		return a.RelativeReferencingFile < b.RelativeReferencingFile
	}
	if a.SourceLocation.Line != b.SourceLocation.Line {
		return a.SourceLocation.Line < b.SourceLocation.Line
	}
	if a.SourceLocation.Column != b.SourceLocation.Column {
		return a.SourceLocation.Column < b.SourceLocation.Column
	}
	return len(a.ExtraFields) < len(b.ExtraFields)
}

// compareOptionalString matches Rust's Option<String> Ord: None sorts
// before Some, and Some values compare lexically.
func compareOptionalString(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}
