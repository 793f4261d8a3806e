// Package process implements the File Processor: it classifies a path
// by extension/filename, optionally preprocesses ERB templates into
// their embedded Ruby snippets, parses the result, and runs the AST
// Collector + Self-Reference Filter to produce a ProcessedFile.
package process

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	rubyrefs "github.com/perryqh/ruby-references-go"
	"github.com/perryqh/ruby-references-go/internal/collector"
	"github.com/perryqh/ruby-references-go/internal/inflect"
	"github.com/perryqh/ruby-references-go/internal/rbparse"
)

type fileType int

const (
	fileTypeNone fileType = iota
	fileTypeRuby
	fileTypeERB
)

// erbPattern extracts the interior of every <%= ... %>, <% ... %>, and
// <%- ... -%> tag; captures are joined by newline before being handed
// to the Ruby parser.
var erbPattern = regexp.MustCompile(`(?s)<%=?-?\s*(.*?)\s*-?%>`)

// Options bundles the subset of Configuration the File Processor and
// AST Collector need, so this package doesn't import the whole
// Configuration surface (autoload roots, cache settings, etc. are not
// its concern).
type Options struct {
	RubyExtensions               []string
	RubySpecialFiles             []string
	CustomAssociations           []string
	Acronyms                     inflect.AcronymSet
	IncludeReferenceIsDefinition bool
}

// FromContents runs the parser and collector over already-read file
// contents, skipping the file-type dispatch step. File calls it after
// reading (and, for templates, preprocessing) the file.
func FromContents(absolutePath string, contents []byte, opts Options) rubyrefs.ProcessedFile {
	tree := rbparse.Parse(contents)
	if tree == nil {
		return rubyrefs.ProcessedFile{AbsolutePath: absolutePath}
	}
	defer tree.Close()

	root := tree.RootNode()
	references, definitions := collector.Collect(root, contents, opts.CustomAssociations, opts.Acronyms)
	filtered := collector.FilterSelfReferences(references, definitions, opts.IncludeReferenceIsDefinition)

	return rubyrefs.ProcessedFile{
		AbsolutePath:         absolutePath,
		UnresolvedReferences: filtered,
	}
}

// File reads path, preprocesses it if it's a template, parses it, and
// runs the collector. Unknown file types yield an empty ProcessedFile
// (no error); parser failures likewise yield an empty reference list
// rather than an error.
func File(path string, opts Options) (rubyrefs.ProcessedFile, error) {
	switch classify(path, opts) {
	case fileTypeRuby:
		contents, err := os.ReadFile(path)
		if err != nil {
			return rubyrefs.ProcessedFile{}, fmt.Errorf("process: read %s: %w", path, err)
		}
		return FromContents(path, contents, opts), nil
	case fileTypeERB:
		raw, err := os.ReadFile(path)
		if err != nil {
			return rubyrefs.ProcessedFile{}, fmt.Errorf("process: read %s: %w", path, err)
		}
		contents := []byte(convertERB(string(raw)))
		return FromContents(path, contents, opts), nil
	default:
		return rubyrefs.ProcessedFile{AbsolutePath: path}, nil
	}
}

func classify(path string, opts Options) fileType {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "erb" {
		return fileTypeERB
	}

	extensions := opts.RubyExtensions
	if extensions == nil {
		extensions = rubyrefs.DefaultRubyExtensions
	}
	for _, e := range extensions {
		if e == ext {
			return fileTypeRuby
		}
	}

	specialFiles := opts.RubySpecialFiles
	if specialFiles == nil {
		specialFiles = rubyrefs.DefaultRubySpecialFiles
	}
	base := filepath.Base(path)
	for _, f := range specialFiles {
		if f == base {
			return fileTypeRuby
		}
	}

	return fileTypeNone
}

func convertERB(contents string) string {
	matches := erbPattern.FindAllStringSubmatch(contents, -1)
	captures := make([]string, 0, len(matches))
	for _, m := range matches {
		captures = append(captures, m[1])
	}
	return strings.Join(captures, "\n")
}
