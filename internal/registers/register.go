package registers

import (
	"cmp"
	"slices"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// DefaultGroup is the membership of a register whose groups cell is empty or absent.
const DefaultGroup = "all"

// GroupSet is the set of membership tags of a register.
type GroupSet map[string]struct{}

// NewGroupSet builds a set from tags.
func NewGroupSet(tags ...string) GroupSet {
	g := make(GroupSet, len(tags))
	for _, t := range tags {
		g[t] = struct{}{}
	}
	return g
}

// Has reports whether tag is a member.
func (g GroupSet) Has(tag string) bool {
	_, ok := g[tag]
	return ok
}

// HasAll reports whether every tag is a member.
func (g GroupSet) HasAll(tags ...string) bool {
	for _, t := range tags {
		if !g.Has(t) {
			return false
		}
	}
	return true
}

// Sorted returns the tags in lexical order.
func (g GroupSet) Sorted() []string {
	out := make([]string, 0, len(g))
	for t := range g {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// RegisterDef is one compiled register. Values are ordered by Address only.
type RegisterDef struct {
	Address int
	Name    string
	Type    Encoding
	Len     int // Element count, at least 1
	Unit    Unit
	Groups  GroupSet
	Divisor float64
	Desc    map[string]string // Normalized locale -> text, non-empty entries only

	// Extra holds the columns outside the fixed shape as a cty object whose
	// type is synthesized from the header; dotted columns become nested objects.
	// It is cty.EmptyObjectVal when the file has no such columns.
	Extra cty.Value
}

// Compare orders registers by address.
func (r RegisterDef) Compare(other RegisterDef) int {
	return cmp.Compare(r.Address, other.Address)
}

// Less reports whether r sorts before other.
func (r RegisterDef) Less(other RegisterDef) bool {
	return r.Compare(other) < 0
}

// ByteSize returns the size of the register's raw value in bytes.
func (r RegisterDef) ByteSize() int {
	return r.Type.Width * r.Len
}

// FormatString returns the packed layout of the register, e.g. "2H".
func (r RegisterDef) FormatString() string {
	return r.Type.FormatString(r.Len)
}

// Description returns the text for lang, the closest language present, the
// locale-less description, or finally the register name.
func (r RegisterDef) Description(lang string) string {
	if key, ok := matchLocale(r.Desc, lang); ok {
		return r.Desc[key]
	}
	if d, ok := r.Desc[UndeterminedLocale]; ok {
		return d
	}
	return r.Name
}

// ExtraValue walks Extra along path. ok is false if any step is missing.
func (r RegisterDef) ExtraValue(path ...string) (cty.Value, bool) {
	v := r.Extra
	for _, name := range path {
		if v.IsNull() || !v.Type().IsObjectType() || !v.Type().HasAttribute(name) {
			return cty.NilVal, false
		}
		v = v.GetAttr(name)
	}
	return v, !v.IsNull()
}

// ExtraString returns a string leaf of Extra.
func (r RegisterDef) ExtraString(path ...string) (string, bool) {
	v, ok := r.ExtraValue(path...)
	if !ok || !v.IsKnown() || !v.Type().Equals(cty.String) {
		return "", false
	}
	return v.AsString(), true
}

// SortByAddress sorts regs in place by address, keeping file order for
// equal addresses.
func SortByAddress(regs []RegisterDef) {
	slices.SortStableFunc(regs, RegisterDef.Compare)
}
