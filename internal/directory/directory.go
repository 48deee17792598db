package directory

import (
	"errors"
	"fmt"
	"strings"
)

// Directory resolves a requested department keyword to a destination
// number. Lookups are case-insensitive, synonyms collapse onto canonical
// departments, and anything unrecognized falls back to the default entry,
// so Resolve never fails once the directory is built.
//
// The mapping is static for the process lifetime; build it once from
// config at startup.
type Directory struct {
	numbers        map[string]string // canonical keyword -> destination number
	defaultKeyword string
}

// New builds a Directory from canonical keyword->number pairs, an
// alias->keyword synonym table and the default keyword.
func New(departments map[string]string, aliases map[string]string, defaultKeyword string) (*Directory, error) {
	if len(departments) == 0 {
		return nil, errors.New("directory: at least one department is required")
	}

	numbers := make(map[string]string, len(departments)+len(aliases))
	for k, num := range departments {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || strings.TrimSpace(num) == "" {
			return nil, fmt.Errorf("directory: invalid department entry %q=%q", k, num)
		}
		numbers[k] = strings.TrimSpace(num)
	}
	for alias, target := range aliases {
		alias = strings.ToLower(strings.TrimSpace(alias))
		target = strings.ToLower(strings.TrimSpace(target))
		num, ok := numbers[target]
		if !ok {
			return nil, fmt.Errorf("directory: alias %q points at unknown department %q", alias, target)
		}
		numbers[alias] = num
	}

	defaultKeyword = strings.ToLower(strings.TrimSpace(defaultKeyword))
	if _, ok := numbers[defaultKeyword]; !ok {
		return nil, fmt.Errorf("directory: default department %q is not configured", defaultKeyword)
	}

	return &Directory{numbers: numbers, defaultKeyword: defaultKeyword}, nil
}

// Resolve returns the destination number for keyword. Missing, empty or
// unrecognized keywords resolve to the default destination.
func (d *Directory) Resolve(keyword string) string {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if num, ok := d.numbers[keyword]; ok {
		return num
	}
	return d.numbers[d.defaultKeyword]
}

// Canonical returns the keyword actually used for resolution: the lowered
// input if it is known, otherwise the default keyword. Useful for
// human-readable confirmations.
func (d *Directory) Canonical(keyword string) string {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if _, ok := d.numbers[keyword]; ok {
		return keyword
	}
	return d.defaultKeyword
}
