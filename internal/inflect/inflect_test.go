package inflect

import "testing"

func TestCamelize(t *testing.T) {
	acronyms := NewAcronymSet([]string{"API", "CSV"})

	tests := []struct {
		path string
		want string
	}{
		{"foo", "Foo"},
		{"foo/bar", "Foo::Bar"},
		{"my_module/some_api_class", "MyModule::SomeAPIClass"},
		{"my_module/some_csv_class", "MyModule::SomeCSVClass"},
		{"company_data/widget", "CompanyData::Widget"},
	}

	for _, tt := range tests {
		if got := Camelize(tt.path, acronyms); got != tt.want {
			t.Errorf("Camelize(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSingularize(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"companies", "company"},
		{"accounting_firm", "accounting_firm"},
		{"boxes", "box"},
		{"classes", "class"},
		{"people", "person"},
		{"cats", "cat"},
	}

	for _, tt := range tests {
		if got := Singularize(tt.word); got != tt.want {
			t.Errorf("Singularize(%q) = %q, want %q", tt.word, got, tt.want)
		}
	}
}

func TestToClassCase(t *testing.T) {
	acronyms := NewAcronymSet(nil)

	if got := ToClassCase("accounting_firm", true, acronyms); got != "AccountingFirm" {
		t.Errorf("ToClassCase(accounting_firm) = %q, want AccountingFirm", got)
	}
	if got := ToClassCase("companies", true, acronyms); got != "Company" {
		t.Errorf("ToClassCase(companies, singularize) = %q, want Company", got)
	}
}
