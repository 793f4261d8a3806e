package rubyrefs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, root, rel, contents string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	return path
}

// TestAllReferencesEndToEnd mirrors the client_invitation-style scenario
// from the reference implementation's processor tests: a class with an
// ApplicationRecord superclass, an association referencing a sibling
// model, an included module, and two nested T::Enum subclasses.
func TestAllReferencesEndToEnd(t *testing.T) {
	root := t.TempDir()

	appServices := filepath.Join(root, "app/services")
	writeFixture(t, root, "app/services/application_record.rb", "class ApplicationRecord\nend\n")
	writeFixture(t, root, "app/services/has_uuid.rb", "module HasUuid\nend\n")
	writeFixture(t, root, "app/services/accounting_firm.rb", "class AccountingFirm\nend\n")
	clientInvitationPath := writeFixture(t, root, "app/services/client_invitation.rb", `class ClientInvitation < ApplicationRecord
  include HasUuid

  belongs_to :accounting_firm

  class InvitationType < T::Enum
  end

  class InvitationTrigger < T::Enum
  end
end
`)

	cfg := DefaultConfiguration(root, []string{clientInvitationPath}, []AutoloadRoot{
		{AbsolutePath: appServices},
	})

	references, err := AllReferences(cfg)
	if err != nil {
		t.Fatalf("AllReferences: %v", err)
	}

	got := make(map[string]bool)
	for _, r := range references {
		got[r.ConstantName] = true
	}

	// Every referenced name here shares ClientInvitation's own autoload
	// root, so each resolves to its fully qualified defining name rather
	// than staying as unresolved literal text.
	for _, want := range []string{"::ApplicationRecord", "::HasUuid", "::AccountingFirm"} {
		if !got[want] {
			t.Errorf("references are missing %q; got %v", want, keysOf(got))
		}
	}

	// T::Enum is never defined anywhere in the fixture, so it stays
	// unresolved under its literal reference text.
	if !got["T::Enum"] {
		t.Errorf("references are missing unresolved T::Enum; got %v", keysOf(got))
	}

	// The self-reference filter drops a class/module's own declaration
	// from its reference list, for the outer class and both inner ones.
	for _, dropped := range []string{"::ClientInvitation", "::ClientInvitation::InvitationType", "::ClientInvitation::InvitationTrigger"} {
		if got[dropped] {
			t.Errorf("self-reference %q should have been dropped by the self-reference filter", dropped)
		}
	}
}

// TestAllReferencesIncludeReferenceIsDefinition confirms the self-
// reference filter can be disabled, keeping a class's own declaration as
// a reference to itself.
func TestAllReferencesIncludeReferenceIsDefinition(t *testing.T) {
	root := t.TempDir()
	path := writeFixture(t, root, "app/foo.rb", "class Foo\nend\n")

	cfg := DefaultConfiguration(root, []string{path}, nil)
	cfg.IncludeReferenceIsDefinition = true

	references, err := AllReferences(cfg)
	if err != nil {
		t.Fatalf("AllReferences: %v", err)
	}

	found := false
	for _, r := range references {
		if r.ConstantName == "::Foo" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected ::Foo self-reference to be kept, got %+v", references)
	}
}

func TestAllReferencesResolvesDefiningFile(t *testing.T) {
	root := t.TempDir()
	appServices := filepath.Join(root, "app/services")
	writeFixture(t, root, "app/services/bar.rb", "class Bar\nend\n")
	fooPath := writeFixture(t, root, "app/services/foo.rb", "class Foo\n  Bar\nend\n")

	cfg := DefaultConfiguration(root, []string{fooPath}, []AutoloadRoot{
		{AbsolutePath: appServices},
	})

	references, err := AllReferences(cfg)
	if err != nil {
		t.Fatalf("AllReferences: %v", err)
	}

	var barRef *Reference
	for i := range references {
		if references[i].ConstantName == "Bar" || references[i].ConstantName == "::Bar" {
			barRef = &references[i]
		}
	}
	if barRef == nil {
		t.Fatalf("expected a Bar reference, got %+v", references)
	}
	if barRef.RelativeDefiningFile == nil || *barRef.RelativeDefiningFile != "app/services/bar.rb" {
		t.Errorf("RelativeDefiningFile = %v, want app/services/bar.rb", barRef.RelativeDefiningFile)
	}
}

func keysOf(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
