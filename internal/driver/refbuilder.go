package driver

import (
	"fmt"
	"strings"

	rubyrefs "github.com/perryqh/ruby-references-go"
	"github.com/perryqh/ruby-references-go/internal/resolve"
)

// buildReferences joins one unresolved reference against the resolver,
// producing one Reference per resolved definition, or a single
// unresolved Reference (no defining file) when the resolver found
// nothing.
func buildReferences(cfg *rubyrefs.Configuration, resolver *resolve.Resolver, u rubyrefs.UnresolvedReference, referencingAbsolutePath string) ([]rubyrefs.Reference, error) {
	relativeReferencingFile, err := relativeTo(cfg.AbsoluteRoot, referencingAbsolutePath)
	if err != nil {
		return nil, fmt.Errorf("refbuilder: referencing file %s: %w", referencingAbsolutePath, err)
	}

	sourceLocation := rubyrefs.SourceLocation{
		Line:   u.Location.StartRow,
		Column: u.Location.StartCol,
	}

	definitions := resolver.Resolve(u.Name, u.NamespacePath)

	if len(definitions) == 0 {
		extraFields := extraFields(cfg, relativeReferencingFile, nil)
		return []rubyrefs.Reference{{
			ConstantName:            u.Name,
			RelativeReferencingFile: relativeReferencingFile,
			SourceLocation:          sourceLocation,
			RelativeDefiningFile:    nil,
			ExtraFields:             extraFields,
		}}, nil
	}

	references := make([]rubyrefs.Reference, 0, len(definitions))
	for _, def := range definitions {
		relativeDefiningFile, err := relativeTo(cfg.AbsoluteRoot, def.AbsolutePathOfDefinition)
		if err != nil {
			return nil, fmt.Errorf("refbuilder: defining file %s: %w", def.AbsolutePathOfDefinition, err)
		}
		definingFile := relativeDefiningFile
		extraFields := extraFields(cfg, relativeReferencingFile, &definingFile)

		references = append(references, rubyrefs.Reference{
			ConstantName:            def.FullyQualifiedName,
			RelativeReferencingFile: relativeReferencingFile,
			SourceLocation:          sourceLocation,
			RelativeDefiningFile:    &definingFile,
			ExtraFields:             extraFields,
		})
	}
	return references, nil
}

func extraFields(cfg *rubyrefs.Configuration, relativeReferencingFile string, relativeDefiningFile *string) map[string]string {
	if cfg.ExtraReferenceFields == nil {
		return map[string]string{}
	}
	return cfg.ExtraReferenceFields(relativeReferencingFile, relativeDefiningFile)
}

// relativeTo strip_prefixes absolutePath by root, failing loudly (a
// configuration bug) if absolutePath isn't actually under root.
func relativeTo(root, absolutePath string) (string, error) {
	root = strings.TrimSuffix(root, "/")
	if absolutePath != root && !strings.HasPrefix(absolutePath, root+"/") {
		return "", fmt.Errorf("%s is not under root %s", absolutePath, root)
	}
	rel := strings.TrimPrefix(absolutePath, root+"/")
	return filepathToSlash(rel), nil
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
