package resolve

import (
	"os"
	"path/filepath"
	"testing"

	rubyrefs "github.com/perryqh/ruby-references-go"
)

// newFixture lays out a small autoload tree under t.TempDir(), mirroring
// the scenarios the reference implementation's zeitwerk tests exercise:
// an unnested root (packs/foo, packs/bar) and a root with a default
// namespace (app/company_data, nested under ::Company).
func newFixture(t *testing.T) (root string, roots []rubyrefs.AutoloadRoot) {
	t.Helper()
	root = t.TempDir()

	files := map[string]string{
		"packs/foo/app/services/foo.rb":     "class Foo\nend\n",
		"packs/foo/app/services/foo/bar.rb": "class Foo::Bar\nend\n",
		"packs/bar/app/services/bar.rb":     "class Bar\n  BAR = 1\nend\n",
		"app/company_data/widget.rb":        "class Widget\nend\n",
	}
	for rel, contents := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", rel, err)
		}
	}

	roots = []rubyrefs.AutoloadRoot{
		{AbsolutePath: filepath.Join(root, "packs/foo/app/services")},
		{AbsolutePath: filepath.Join(root, "packs/bar/app/services")},
		{AbsolutePath: filepath.Join(root, "app/company_data"), DefaultNamespace: "::Company"},
	}
	return root, roots
}

func resolverFor(t *testing.T, root string, roots []rubyrefs.AutoloadRoot) *Resolver {
	t.Helper()
	r, err := New(roots, nil, "rb")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestResolveUnnestedReferenceToUnnestedConstant(t *testing.T) {
	root, roots := newFixture(t)
	r := resolverFor(t, root, roots)

	defs := r.Resolve("Foo", nil)
	if len(defs) != 1 || defs[0].FullyQualifiedName != "::Foo" {
		t.Fatalf("Resolve(Foo, []) = %+v, want [::Foo]", defs)
	}
}

func TestResolveConstantInOverriddenNamespace(t *testing.T) {
	root, roots := newFixture(t)
	r := resolverFor(t, root, roots)

	defs := r.Resolve("Widget", []string{"Company"})
	if len(defs) != 1 || defs[0].FullyQualifiedName != "::Company::Widget" {
		t.Fatalf("Resolve(Widget, [Company]) = %+v, want [::Company::Widget]", defs)
	}
}

func TestResolveNestedReferenceToUnnestedConstant(t *testing.T) {
	root, roots := newFixture(t)
	r := resolverFor(t, root, roots)

	defs := r.Resolve("Foo", []string{"Foo", "Bar", "Baz"})
	if len(defs) != 1 || defs[0].FullyQualifiedName != "::Foo" {
		t.Fatalf("Resolve(Foo, [Foo Bar Baz]) = %+v, want [::Foo]", defs)
	}
}

func TestResolveNestedReferenceToNestedConstant(t *testing.T) {
	root, roots := newFixture(t)
	r := resolverFor(t, root, roots)

	defs := r.Resolve("Bar", []string{"Foo"})
	if len(defs) != 1 || defs[0].FullyQualifiedName != "::Foo::Bar" {
		t.Fatalf("Resolve(Bar, [Foo]) = %+v, want [::Foo::Bar]", defs)
	}
}

func TestResolveNestedReferenceToGlobalConstant(t *testing.T) {
	root, roots := newFixture(t)
	r := resolverFor(t, root, roots)

	defs := r.Resolve("::Bar", []string{"Foo"})
	if len(defs) != 1 || defs[0].FullyQualifiedName != "::Bar" {
		t.Fatalf("Resolve(::Bar, [Foo]) = %+v, want [::Bar]", defs)
	}
}

func TestResolveUnknownConstantReturnsNil(t *testing.T) {
	root, roots := newFixture(t)
	r := resolverFor(t, root, roots)

	if defs := r.Resolve("NoSuchThing", nil); defs != nil {
		t.Errorf("Resolve(NoSuchThing) = %+v, want nil", defs)
	}
}

func TestInferConstantWithAcronym(t *testing.T) {
	root := t.TempDir()
	rootDir := filepath.Join(root, "app/services")
	path := filepath.Join(rootDir, "my_module/some_api_class.rb")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("class MyModule::SomeAPIClass\nend\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r, err := New([]rubyrefs.AutoloadRoot{{AbsolutePath: rootDir}}, []string{"API"}, "rb")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	defs := r.Resolve("::MyModule::SomeAPIClass", nil)
	if len(defs) != 1 {
		t.Fatalf("Resolve(::MyModule::SomeAPIClass) = %+v, want one match", defs)
	}
	if defs[0].AbsolutePathOfDefinition != path {
		t.Errorf("AbsolutePathOfDefinition = %q, want %q", defs[0].AbsolutePathOfDefinition, path)
	}
}
