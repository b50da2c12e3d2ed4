package registers

// suppliers.go holds the default field suppliers of the fixed RegisterDef
// shape. Each supplier turns the cells of one row into a typed value.
// Callers can override any of them by field name through Suppliers.

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Supplier builds one record field from a row. node is the schema node bound
// to the field, or nil when the file has no such column.
type Supplier func(row Row, node *SchemaNode) (any, error)

// Suppliers maps field names to suppliers. Fields outside the fixed shape are
// keyed by their dotted path, e.g. "meta.page".
type Suppliers map[string]Supplier

// groupTokenRegex matches one group tag: a run of letters, digits or underscores.
var groupTokenRegex = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// IsGroupTag reports whether tag can appear in a register's group set.
func IsGroupTag(tag string) bool {
	loc := groupTokenRegex.FindStringIndex(tag)
	return loc != nil && loc[0] == 0 && loc[1] == len(tag)
}

// DefaultSuppliers returns a fresh copy of the built-in suppliers.
func DefaultSuppliers() Suppliers {
	return Suppliers{
		FieldAddress: supplyAddress,
		FieldName:    supplyName,
		FieldType:    supplyType,
		FieldLen:     supplyLen,
		FieldUnit:    supplyUnit,
		FieldGroups:  supplyGroups,
		FieldDivisor: supplyDivisor,
		FieldDesc:    supplyDesc,
	}
}

// splitType splits a BASETYPE[:LEN[:SUBTYPE]] cell into its three segments.
// Missing segments are empty; segments past the third are ignored.
func splitType(cell string) (base, length, subtype string) {
	parts := strings.Split(cell, ":")
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
}

// ParseInt parses an integer literal honoring 0x, 0o and 0b prefixes.
// A leading zero followed by more digits is rejected rather than read as
// octal, so "0100" is an error and not 64.
func ParseInt(s string) (int, error) {
	v, err := parseLiteral(strings.TrimSpace(s), strconv.IntSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidNumber, s)
	}
	return int(v), nil
}

// parseLiteral is strconv.ParseInt with base 0, minus legacy octal.
func parseLiteral(s string, bitSize int) (int64, error) {
	if legacyOctal(s) {
		return 0, fmt.Errorf("parse %q: leading zero, use 0o for octal", s)
	}
	return strconv.ParseInt(s, 0, bitSize)
}

// legacyOctal reports whether s is a number whose digits start with a zero
// followed by another digit or an underscore.
func legacyOctal(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	return len(s) > 1 && s[0] == '0' && (s[1] == '_' || (s[1] >= '0' && s[1] <= '9'))
}

func supplyAddress(row Row, node *SchemaNode) (any, error) {
	s, _ := row.Leaf(node)
	addr, err := ParseInt(s)
	if err != nil {
		return nil, err
	}
	if addr < 0 {
		return nil, fmt.Errorf("%w: address %d is negative", ErrInvalidNumber, addr)
	}
	return addr, nil
}

func supplyName(row Row, node *SchemaNode) (any, error) {
	s, _ := row.Leaf(node)
	return s, nil
}

func supplyType(row Row, _ *SchemaNode) (any, error) {
	cell, _ := row.Field(FieldType)
	base, _, _ := splitType(cell)
	return LookupEncoding(base)
}

func supplyLen(row Row, _ *SchemaNode) (any, error) {
	cell, _ := row.Field(FieldType)
	_, length, _ := splitType(cell)
	if length == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(length)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not an element count", ErrInvalidLength, length)
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: element count %d must be at least 1", ErrInvalidLength, n)
	}
	return n, nil
}

func supplyUnit(row Row, node *SchemaNode) (any, error) {
	name, _ := row.Field(FieldName)
	cell, _ := row.Field(FieldType)
	_, _, subtype := splitType(cell)

	var text string
	if node != nil && node.IsLeaf() {
		text, _ = row.Raw(node.Column)
	}
	return ParseUnit(name, subtype, text)
}

func supplyGroups(row Row, node *SchemaNode) (any, error) {
	s, _ := row.Leaf(node)
	tokens := groupTokenRegex.FindAllString(s, -1)
	if len(tokens) == 0 {
		return NewGroupSet(DefaultGroup), nil
	}
	return NewGroupSet(tokens...), nil
}

func supplyDivisor(row Row, node *SchemaNode) (any, error) {
	s, _ := row.Leaf(node)
	if s == "" {
		return 1.0, nil
	}

	if legacyOctal(s) {
		return nil, fmt.Errorf("%w: divisor %q has a leading zero", ErrInvalidNumber, s)
	}

	var d float64
	if i, err := parseLiteral(s, 64); err == nil {
		d = float64(i)
	} else if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		d = f
	} else {
		return nil, fmt.Errorf("%w: divisor %q", ErrInvalidNumber, s)
	}

	if d == 0 {
		return nil, fmt.Errorf("%w: divisor must not be zero", ErrInvalidNumber)
	}
	return d, nil
}

// supplyDesc collects the non-empty locale cells of the row. A row too short
// to reach any locale column yields an empty map.
func supplyDesc(row Row, node *SchemaNode) (any, error) {
	desc := make(map[string]string)
	if node == nil || node.IsLeaf() {
		return desc, nil
	}
	for _, locale := range node.Fields {
		if text, ok := row.Leaf(node.Children[locale]); ok && text != "" {
			desc[locale] = text
		}
	}
	return desc, nil
}

// supplyText is the pass-through supplier for columns outside the fixed shape.
func supplyText(row Row, node *SchemaNode) (any, error) {
	s, _ := row.Leaf(node)
	return s, nil
}
