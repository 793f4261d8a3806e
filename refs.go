package rubyrefs

import "github.com/perryqh/ruby-references-go/internal/driver"

// AllReferences runs the full pipeline over configuration: per-file
// parsing (cached), constant resolution, and reference building,
// returning a deterministically sorted list of every reference the
// analysis could find.
func AllReferences(configuration Configuration) ([]Reference, error) {
	return driver.Run(&configuration)
}
