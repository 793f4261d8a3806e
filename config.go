package rubyrefs

// ExtraFieldsFunc decorates a resolved reference with caller-supplied
// metadata (e.g. owning-package names). It must be safe to call from
// many workers concurrently.
type ExtraFieldsFunc func(relativeReferencingFile string, relativeDefiningFile *string) map[string]string

// AutoloadRoot maps an absolute directory to the default namespace
// prefix constants beneath it are implicitly nested under. An empty
// DefaultNamespace means the root contributes top-level constants; a
// non-empty one must already carry its own leading "::" (e.g.
// "::Company"), since the resolver joins it with "::" + camelized path
// verbatim rather than normalizing it.
type AutoloadRoot struct {
	AbsolutePath     string
	DefaultNamespace string
}

// Configuration is the sole input to AllReferences. It has no lifecycle
// of its own: every field is read-only once construction completes.
type Configuration struct {
	// AbsoluteRoot is the root all Reference paths are relativized
	// against.
	AbsoluteRoot string

	// IncludedFiles enumerates every file to process, as absolute
	// paths. Discovering this set (e.g. walking a directory tree while
	// honoring ignore rules) is the embedder's responsibility.
	IncludedFiles []string

	// AutoloadRoots drives the Constant Resolver's inferred constant
	// set (see internal/resolve).
	AutoloadRoots []AutoloadRoot

	// Acronyms are preserved uppercased, rather than
	// capitalize-first-letter-only, when camelizing autoload paths and
	// association-derived class names (e.g. "API" in
	// "some_api_class.rb" -> "SomeAPIClass").
	Acronyms []string

	// CustomAssociations extends the built-in has_one/has_many/
	// belongs_to/has_and_belongs_to_many association method names the
	// AST Collector treats as implicit constant references.
	CustomAssociations []string

	// RubyExtensions are the file extensions (without the leading dot)
	// treated as language source. Defaults to the conventional
	// rb/rake/builder/gemspec/ru matrix when left nil.
	RubyExtensions []string

	// RubySpecialFiles are exact file basenames treated as language
	// source regardless of extension. Defaults to Gemfile/Rakefile
	// when left nil.
	RubySpecialFiles []string

	// IncludeReferenceIsDefinition, when true, disables the Self-
	// Reference Filter: a class/module declaration's own definition
	// reference is kept rather than dropped.
	IncludeReferenceIsDefinition bool

	// CacheEnabled switches between the Persistent and NoOp cache
	// variants.
	CacheEnabled bool

	// CacheDirectory is the root of the on-disk content-addressed
	// cache. Ignored when CacheEnabled is false.
	CacheDirectory string

	// ExtraReferenceFields, if non-nil, is invoked once per resolved
	// Reference to populate its ExtraFields.
	ExtraReferenceFields ExtraFieldsFunc
}

// DefaultRubyExtensions is the conventional language-source extension
// matrix (spec.md §6), used when Configuration.RubyExtensions is nil.
var DefaultRubyExtensions = []string{"rb", "rake", "builder", "gemspec", "ru"}

// DefaultRubySpecialFiles is the conventional special-filename matrix
// (spec.md §6), used when Configuration.RubySpecialFiles is nil.
var DefaultRubySpecialFiles = []string{"Gemfile", "Rakefile"}

// DefaultConfiguration returns a Configuration with every field at its
// conventional default except AbsoluteRoot, IncludedFiles and
// AutoloadRoots, which callers must always supply.
func DefaultConfiguration(absoluteRoot string, includedFiles []string, autoloadRoots []AutoloadRoot) Configuration {
	return Configuration{
		AbsoluteRoot:     absoluteRoot,
		IncludedFiles:    includedFiles,
		AutoloadRoots:    autoloadRoots,
		RubyExtensions:   DefaultRubyExtensions,
		RubySpecialFiles: DefaultRubySpecialFiles,
		CacheEnabled:     false,
	}
}

// RubyExtensionsOrDefault returns RubyExtensions, falling back to
// DefaultRubyExtensions when unset.
func (c *Configuration) RubyExtensionsOrDefault() []string {
	if c.RubyExtensions == nil {
		return DefaultRubyExtensions
	}
	return c.RubyExtensions
}

// RubySpecialFilesOrDefault returns RubySpecialFiles, falling back to
// DefaultRubySpecialFiles when unset.
func (c *Configuration) RubySpecialFilesOrDefault() []string {
	if c.RubySpecialFiles == nil {
		return DefaultRubySpecialFiles
	}
	return c.RubySpecialFiles
}
