package registers

// factory.go turns a resolved schema into a row factory.
//
// The factory is built once per file. Fields of the fixed RegisterDef shape
// are bound to their suppliers; every other column is compiled into a cty
// object type, nested for dotted columns, and bound to a pass-through
// supplier unless one is registered under its dotted path. Applying the
// factory to a row evaluates the bound suppliers in schema order.

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// BaseFields lists the fixed RegisterDef fields in construction order.
var BaseFields = []string{
	FieldAddress, FieldName, FieldType, FieldLen,
	FieldUnit, FieldGroups, FieldDivisor, FieldDesc,
}

func isBaseField(name string) bool {
	for _, f := range BaseFields {
		if f == name {
			return true
		}
	}
	return false
}

type boundField struct {
	name   string
	node   *SchemaNode
	supply Supplier
}

// recordBuilder builds one synthesized record (the extras root or a nested group).
type recordBuilder struct {
	path   string
	typ    cty.Type
	fields []recordField
}

type recordField struct {
	name   string
	node   *SchemaNode
	nested *recordBuilder // set for internal nodes
	supply Supplier       // set for leaves
}

// Factory produces RegisterDefs from rows read under one schema.
type Factory struct {
	schema *SchemaNode
	base   []boundField
	extra  *recordBuilder
}

// BuildFactory binds suppliers to the fields of schema. overrides replace
// the default supplier of the same name; fields outside the fixed shape are
// looked up by dotted path.
func BuildFactory(schema *SchemaNode, overrides Suppliers) (*Factory, error) {
	if schema == nil || schema.IsLeaf() {
		return nil, fmt.Errorf("build factory: schema root must be a record")
	}

	suppliers := DefaultSuppliers()
	for name, s := range overrides {
		if s == nil {
			return nil, fmt.Errorf("build factory: nil supplier for field %q", name)
		}
		suppliers[name] = s
	}

	f := &Factory{schema: schema}
	for _, name := range BaseFields {
		node, _ := schema.Child(name)
		f.base = append(f.base, boundField{name: name, node: node, supply: suppliers[name]})
	}

	var extras []string
	for _, name := range schema.Fields {
		if !isBaseField(name) {
			extras = append(extras, name)
		}
	}
	f.extra = buildRecord(schema, extras, "", suppliers)

	return f, nil
}

// buildRecord synthesizes the record for the named children of node,
// depth-first so nested types exist before their parent's.
func buildRecord(node *SchemaNode, names []string, path string, suppliers Suppliers) *recordBuilder {
	rb := &recordBuilder{path: path}
	attrs := make(map[string]cty.Type, len(names))

	for _, name := range names {
		child := node.Children[name]
		qualified := joinPath(path, name)
		field := recordField{name: name, node: child}

		if child.IsLeaf() {
			if s, ok := suppliers[qualified]; ok {
				field.supply = s
				attrs[name] = cty.DynamicPseudoType
			} else {
				field.supply = supplyText
				attrs[name] = cty.String
			}
		} else {
			field.nested = buildRecord(child, child.Fields, qualified, suppliers)
			attrs[name] = field.nested.typ
		}

		rb.fields = append(rb.fields, field)
	}

	rb.typ = cty.Object(attrs)
	return rb
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// ExtraType returns the synthesized type of RegisterDef.Extra. Attributes
// served by a custom supplier are typed cty.DynamicPseudoType.
func (f *Factory) ExtraType() cty.Type {
	return f.extra.typ
}

// Schema returns the schema the factory was built from.
func (f *Factory) Schema() *SchemaNode {
	return f.schema
}

// New builds the RegisterDef for row.
func (f *Factory) New(row Row) (RegisterDef, error) {
	values := make(map[string]any, len(f.base))
	for _, bf := range f.base {
		v, err := bf.supply(row, bf.node)
		if err != nil {
			return RegisterDef{}, fieldError(bf.name, row, bf.node, err)
		}
		values[bf.name] = v
	}

	reg, err := assemble(values)
	if err != nil {
		return RegisterDef{}, err
	}

	extra, err := f.extra.value(row)
	if err != nil {
		return RegisterDef{}, err
	}
	reg.Extra = extra

	return reg, nil
}

func (rb *recordBuilder) value(row Row) (cty.Value, error) {
	if len(rb.fields) == 0 {
		return cty.EmptyObjectVal, nil
	}

	attrs := make(map[string]cty.Value, len(rb.fields))
	for _, field := range rb.fields {
		if field.nested != nil {
			v, err := field.nested.value(row)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[field.name] = v
			continue
		}

		qualified := joinPath(rb.path, field.name)
		raw, err := field.supply(row, field.node)
		if err != nil {
			return cty.NilVal, fieldError(qualified, row, field.node, err)
		}
		v, err := toCtyValue(raw)
		if err != nil {
			return cty.NilVal, &FieldConversionError{Field: qualified, Err: err}
		}
		attrs[field.name] = v
	}
	return cty.ObjectVal(attrs), nil
}

// toCtyValue converts a supplier result into a cty value, inferring the
// type of plain Go values.
func toCtyValue(v any) (cty.Value, error) {
	switch tv := v.(type) {
	case nil:
		return cty.NullVal(cty.String), nil
	case cty.Value:
		return tv, nil
	case string:
		return cty.StringVal(tv), nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unsupported value %T: %w", v, err)
	}
	return gocty.ToCtyValue(v, ty)
}

func fieldError(name string, row Row, node *SchemaNode, err error) error {
	if fe, ok := err.(*FieldConversionError); ok {
		return fe
	}
	value, _ := row.Leaf(node)
	if strings.ContainsRune(value, '\n') {
		value = ""
	}
	return &FieldConversionError{Field: name, Value: value, Err: err}
}

// assemble type-checks supplier results into a RegisterDef.
func assemble(values map[string]any) (RegisterDef, error) {
	var (
		reg RegisterDef
		err error
	)
	if reg.Address, err = fieldAs[int](values, FieldAddress); err != nil {
		return reg, err
	}
	if reg.Name, err = fieldAs[string](values, FieldName); err != nil {
		return reg, err
	}
	if reg.Type, err = fieldAs[Encoding](values, FieldType); err != nil {
		return reg, err
	}
	if reg.Len, err = fieldAs[int](values, FieldLen); err != nil {
		return reg, err
	}
	if reg.Unit, err = fieldAs[Unit](values, FieldUnit); err != nil {
		return reg, err
	}
	if reg.Groups, err = fieldAs[GroupSet](values, FieldGroups); err != nil {
		return reg, err
	}
	if reg.Divisor, err = fieldAs[float64](values, FieldDivisor); err != nil {
		return reg, err
	}
	if reg.Desc, err = fieldAs[map[string]string](values, FieldDesc); err != nil {
		return reg, err
	}
	if len(reg.Groups) == 0 {
		reg.Groups = NewGroupSet(DefaultGroup)
	}
	if reg.Desc == nil {
		reg.Desc = make(map[string]string)
	}
	return reg, nil
}

func fieldAs[T any](values map[string]any, name string) (T, error) {
	v, ok := values[name].(T)
	if !ok {
		var zero T
		return zero, &FieldConversionError{
			Field: name,
			Err:   fmt.Errorf("supplier returned %T, want %T", values[name], zero),
		}
	}
	return v, nil
}
