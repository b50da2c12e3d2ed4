package registers

// schema.go resolves a CSV header row into a tree of record fields.
//
// Column names are matched case-insensitively. A dotted column such as
// "meta.page" becomes a nested field "page" under an internal node "meta".
// Columns named "desc_<locale>" are gathered under the "desc" field and
// keyed by their normalized locale, so "Desc_en_US" is reachable as
// desc -> "en_us".

import (
	"fmt"
	"sort"
	"strings"
)

// Field names of the fixed RegisterDef shape.
const (
	FieldAddress = "address"
	FieldName    = "name"
	FieldType    = "type"
	FieldLen     = "len"
	FieldUnit    = "unit"
	FieldGroups  = "groups"
	FieldDivisor = "divisor"
	FieldDesc    = "desc"
)

// RequiredFields must be present in every header.
var RequiredFields = []string{FieldAddress, FieldName, FieldType, FieldUnit}

const descPrefix = FieldDesc + "_"

// SchemaNode is either a leaf bound to one raw CSV column or an internal
// node grouping named child fields.
type SchemaNode struct {
	Column   string                 // Raw header of a leaf; empty for internal nodes
	Fields   []string               // Child names in resolution order
	Children map[string]*SchemaNode // nil for leaves
}

func newInternalNode() *SchemaNode {
	return &SchemaNode{Children: make(map[string]*SchemaNode)}
}

// IsLeaf reports whether n reads a single column.
func (n *SchemaNode) IsLeaf() bool {
	return n.Children == nil
}

// Child returns the named child of an internal node.
func (n *SchemaNode) Child(name string) (*SchemaNode, bool) {
	if n == nil || n.Children == nil {
		return nil, false
	}
	c, ok := n.Children[name]
	return c, ok
}

// Has reports whether every name is a child of n.
func (n *SchemaNode) Has(names ...string) bool {
	for _, name := range names {
		if _, ok := n.Child(name); !ok {
			return false
		}
	}
	return true
}

// Columns returns the raw columns of every leaf below n, depth-first.
func (n *SchemaNode) Columns() []string {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		return []string{n.Column}
	}
	var cols []string
	for _, name := range n.Fields {
		cols = append(cols, n.Children[name].Columns()...)
	}
	return cols
}

func (n *SchemaNode) add(name string, child *SchemaNode) {
	n.Fields = append(n.Fields, name)
	n.Children[name] = child
}

func (n *SchemaNode) remove(name string) {
	delete(n.Children, name)
	for i, f := range n.Fields {
		if f == name {
			n.Fields = append(n.Fields[:i], n.Fields[i+1:]...)
			return
		}
	}
}

// insert places column under n following path, creating internal nodes
// as needed.
func (n *SchemaNode) insert(path []string, column string) error {
	name := path[0]
	if name == "" {
		return fmt.Errorf("%w: column %q has an empty field name", ErrColumnConflict, column)
	}

	existing, exists := n.Children[name]
	if len(path) == 1 {
		if exists {
			return fmt.Errorf("%w: column %q duplicates field %q", ErrColumnConflict, column, name)
		}
		n.add(name, &SchemaNode{Column: column})
		return nil
	}

	if !exists {
		existing = newInternalNode()
		n.add(name, existing)
	} else if existing.IsLeaf() {
		return fmt.Errorf("%w: column %q nests under plain column %q", ErrColumnConflict, column, existing.Column)
	}
	return existing.insert(path[1:], column)
}

// Resolve builds the schema tree for a header row. Headers are processed in
// sorted order so the tree does not depend on column order in the file.
// Blank headers are ignored.
func Resolve(headers []string) (*SchemaNode, error) {
	type header struct {
		key string
		raw string
	}

	sorted := make([]header, 0, len(headers))
	for _, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		sorted = append(sorted, header{key: key, raw: h})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].key < sorted[j].key
	})

	root := newInternalNode()
	for _, h := range sorted {
		if err := root.insert(strings.Split(h.key, "."), h.raw); err != nil {
			return nil, err
		}
	}

	if err := groupDescriptions(root); err != nil {
		return nil, err
	}

	if err := checkRequired(root); err != nil {
		return nil, err
	}

	return root, nil
}

// groupDescriptions moves every desc_<locale> column into the desc node and
// normalizes the locale keys of a dotted desc.<locale> group. A bare "desc"
// column is kept as the undetermined locale.
func groupDescriptions(root *SchemaNode) error {
	desc := newInternalNode()

	addLocale := func(locale string, leaf *SchemaNode) error {
		key := NormalizeLocale(locale)
		if key == "" {
			key = UndeterminedLocale
		}
		if prev, dup := desc.Children[key]; dup {
			return fmt.Errorf("%w: columns %q and %q both describe locale %q",
				ErrColumnConflict, prev.Column, leaf.Column, key)
		}
		desc.add(key, leaf)
		return nil
	}

	if existing, ok := root.Child(FieldDesc); ok {
		if existing.IsLeaf() {
			if err := addLocale(UndeterminedLocale, existing); err != nil {
				return err
			}
		} else {
			for _, name := range existing.Fields {
				child := existing.Children[name]
				if !child.IsLeaf() {
					return fmt.Errorf("%w: description columns cannot nest below %s.%s",
						ErrColumnConflict, FieldDesc, name)
				}
				if err := addLocale(name, child); err != nil {
					return err
				}
			}
		}
		root.remove(FieldDesc)
	}

	for _, name := range append([]string(nil), root.Fields...) {
		child := root.Children[name]
		if !strings.HasPrefix(name, descPrefix) || !child.IsLeaf() {
			continue
		}
		if err := addLocale(strings.TrimPrefix(name, descPrefix), child); err != nil {
			return err
		}
		root.remove(name)
	}

	if len(desc.Fields) > 0 {
		root.add(FieldDesc, desc)
	}
	return nil
}

func checkRequired(root *SchemaNode) error {
	var missing []string
	for _, name := range RequiredFields {
		node, ok := root.Child(name)
		if !ok || !node.IsLeaf() {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequiredColumns, strings.Join(missing, ", "))
	}
	return nil
}
