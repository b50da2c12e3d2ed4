package catalog

// groups.go implements group filter expressions.
//
// An expression is a comma-separated list of combinations; each combination
// joins group tags with "&". A register matches when every tag of at least
// one combination is in its group set:
//
//	main,status&grid   matches registers in "main", or in both "status" and "grid"

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/regdef/internal/registers"
)

// GroupFilter is a disjunction of tag conjunctions. The zero value matches
// every register.
type GroupFilter [][]string

// ParseGroupFilter parses a filter expression. Surrounding space and empty
// entries are ignored, so "" and " , " yield the match-all filter.
func ParseGroupFilter(expr string) (GroupFilter, error) {
	var f GroupFilter
	for _, combo := range strings.Split(expr, ",") {
		var tags []string
		for _, tag := range strings.Split(combo, "&") {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if !registers.IsGroupTag(tag) {
				return nil, fmt.Errorf("invalid group %q in filter %q", tag, expr)
			}
			tags = append(tags, tag)
		}
		if len(tags) > 0 {
			f = append(f, tags)
		}
	}
	return f, nil
}

// IsZero reports whether f matches everything.
func (f GroupFilter) IsZero() bool {
	return len(f) == 0
}

// Match reports whether groups satisfies at least one combination of f.
func (f GroupFilter) Match(groups registers.GroupSet) bool {
	if f.IsZero() {
		return true
	}
	for _, combo := range f {
		if groups.HasAll(combo...) {
			return true
		}
	}
	return false
}

func (f GroupFilter) String() string {
	combos := make([]string, len(f))
	for i, combo := range f {
		combos[i] = strings.Join(combo, "&")
	}
	return strings.Join(combos, ",")
}
