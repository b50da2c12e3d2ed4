package registers

import "strings"

// HeaderIndex maps raw header names to their position in a CSV row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Call it once per file and share it between rows.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		if _, seen := idx[h]; !seen {
			idx[h] = i
		}
	}
	return idx
}

// Row is one data row together with the header and schema it was read under.
type Row struct {
	Line   int // Data row number, 1 for the first row after the header
	cells  []string
	index  HeaderIndex
	schema *SchemaNode
}

// NewRow binds cells to a header index and resolved schema.
func NewRow(cells []string, index HeaderIndex, schema *SchemaNode) Row {
	return Row{cells: cells, index: index, schema: schema}
}

// Raw returns the untrimmed cell for a raw column name. ok is false when the
// column is unknown or the row is too short to contain it.
func (r Row) Raw(column string) (string, bool) {
	pos, ok := r.index[column]
	if !ok || pos >= len(r.cells) {
		return "", false
	}
	return r.cells[pos], true
}

// Cell returns the trimmed cell for a raw column name.
func (r Row) Cell(column string) (string, bool) {
	s, ok := r.Raw(column)
	return strings.TrimSpace(s), ok
}

// Leaf returns the trimmed cell a leaf node is bound to.
func (r Row) Leaf(node *SchemaNode) (string, bool) {
	if node == nil || !node.IsLeaf() {
		return "", false
	}
	return r.Cell(node.Column)
}

// Field returns the trimmed cell of a top-level schema field.
func (r Row) Field(name string) (string, bool) {
	node, ok := r.schema.Child(name)
	if !ok {
		return "", false
	}
	return r.Leaf(node)
}

// blank reports whether any of the named top-level fields is empty.
func (r Row) blank(names ...string) bool {
	for _, name := range names {
		if s, _ := r.Field(name); s == "" {
			return true
		}
	}
	return false
}
