package catalog

// export.go renders catalogs as aligned text, JSON or YAML.
//
// JSON and YAML share one view model. Extra columns are carried as their
// cty value: JSON output uses the cty JSON encoding, YAML output converts
// the value to plain Go maps and scalars first.

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/regdef/internal/registers"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"
)

// Format names an export encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name, ignoring case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// SymbolView is one member of an ENUM or FLAGS unit.
type SymbolView struct {
	Value int64  `json:"value" yaml:"value"`
	Name  string `json:"name" yaml:"name"`
}

// RegisterView is the exported shape of one register.
type RegisterView struct {
	Address     string            `json:"address" yaml:"address"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Type        string            `json:"type" yaml:"type"`
	Format      string            `json:"format" yaml:"format"`
	Len         int               `json:"len" yaml:"len"`
	ByteSize    int               `json:"byte_size" yaml:"byte_size"`
	Unit        string            `json:"unit,omitempty" yaml:"unit,omitempty"`
	SymbolKind  string            `json:"symbol_kind,omitempty" yaml:"symbol_kind,omitempty"`
	Symbols     []SymbolView      `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	Groups      []string          `json:"groups" yaml:"groups"`
	Divisor     float64           `json:"divisor" yaml:"divisor"`
	Desc        map[string]string `json:"desc,omitempty" yaml:"desc,omitempty"`
	Extra       Extra             `json:"extra" yaml:"extra,omitempty"`
}

// Document is the JSON and YAML export of a catalog.
type Document struct {
	Catalog   Summary        `json:"catalog" yaml:"catalog"`
	Registers []RegisterView `json:"registers" yaml:"registers"`
}

// FormatAddress renders an address the way exports show it.
func FormatAddress(addr int) string {
	return fmt.Sprintf("0x%04X", addr)
}

// View builds the exported shape of reg, describing it in lang.
func View(reg registers.RegisterDef, lang string) RegisterView {
	v := RegisterView{
		Address:     FormatAddress(reg.Address),
		Name:        reg.Name,
		Description: reg.Description(lang),
		Type:        reg.Type.Name,
		Format:      reg.FormatString(),
		Len:         reg.Len,
		ByteSize:    reg.ByteSize(),
		Groups:      reg.Groups.Sorted(),
		Divisor:     reg.Divisor,
		Extra:       Extra{reg.Extra},
	}
	if len(reg.Desc) > 0 {
		v.Desc = reg.Desc
	}

	if st := reg.Unit.Symbolic; st != nil {
		v.SymbolKind = st.Kind.String()
		v.Symbols = make([]SymbolView, len(st.Members))
		for i, m := range st.Members {
			v.Symbols[i] = SymbolView{Value: m.Value, Name: m.Name}
		}
	} else {
		v.Unit = reg.Unit.Label
	}
	return v
}

// NewDocument builds the export document of c, registers sorted by address.
func NewDocument(c *Catalog) Document {
	sorted := c.Sorted()
	views := make([]RegisterView, len(sorted))
	for i, reg := range sorted {
		views[i] = View(reg, c.Lang)
	}
	return Document{Catalog: c.Summary(), Registers: views}
}

// Write encodes c to w in the given format.
func Write(w io.Writer, format Format, c *Catalog) error {
	switch format {
	case FormatText:
		return writeText(w, c)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewDocument(c))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewDocument(c)); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// writeText prints one aligned line per register:
// address, name, description, type and unit ("-" when empty).
func writeText(w io.Writer, c *Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ADDRESS\tNAME\tDESCRIPTION\tTYPE\tUNIT")
	for _, reg := range c.Sorted() {
		typ := reg.Type.Name
		if reg.Len > 1 {
			typ = fmt.Sprintf("%s[%d]", typ, reg.Len)
		}
		unit := reg.Unit.String()
		if unit == "" {
			unit = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			FormatAddress(reg.Address), reg.Name, oneLine(c.Description(reg)), typ, unit)
	}
	return tw.Flush()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Extra carries the synthesized extra-column object of a register.
type Extra struct {
	cty.Value
}

// IsZero reports whether there is nothing to export.
func (e Extra) IsZero() bool {
	if e.Value.IsNull() || !e.Value.IsKnown() {
		return true
	}
	ty := e.Value.Type()
	return ty.IsObjectType() && len(ty.AttributeTypes()) == 0
}

// MarshalJSON encodes the value with its own cty type.
func (e Extra) MarshalJSON() ([]byte, error) {
	if e.IsZero() {
		return []byte("{}"), nil
	}
	return ctyjson.Marshal(e.Value, e.Value.Type())
}

// MarshalYAML converts the value to plain Go data.
func (e Extra) MarshalYAML() (any, error) {
	if e.IsZero() {
		return map[string]any{}, nil
	}
	return nativeValue(e.Value)
}

// Native returns the value as plain Go data: strings, int64 or float64
// numbers, bools, slices and maps.
func (e Extra) Native() (map[string]any, error) {
	if e.IsZero() {
		return map[string]any{}, nil
	}
	v, err := nativeValue(e.Value)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("extra value is %s, want object", e.Value.Type().FriendlyName())
	}
	return m, nil
}

// nativeValue recursively converts a cty value to its natural Go counterpart.
// Whole numbers become int64 when they fit.
func nativeValue(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty.Equals(cty.String):
		return v.AsString(), nil

	case ty.Equals(cty.Number):
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil

	case ty.Equals(cty.Bool):
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			nv, err := nativeValue(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, nv)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			name := key.AsString()
			nv, err := nativeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", name, err)
			}
			out[name] = nv
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported cty type %s", ty.FriendlyName())
	}
}
