package registers

// encoding.go holds the static table of register type aliases.
//
// Each alias group shares one Encoding: an ordinal class (assigned in
// declaration order), a single-character format tag naming the primitive
// wire encoding, and the byte width of one element. Lookups are
// case-insensitive, so "int16", "INT16" and "I16" all resolve to the same
// descriptor.

import (
	"fmt"
	"strconv"
	"strings"
)

// Format tags for the primitive wire encodings.
const (
	FormatInt16   byte = 'h'
	FormatUint16  byte = 'H'
	FormatInt32   byte = 'i'
	FormatUint32  byte = 'I'
	FormatInt64   byte = 'l'
	FormatUint64  byte = 'L'
	FormatFloat32 byte = 'f'
	FormatFloat64 byte = 'd'
	FormatBits    byte = 'B'
	FormatASCII   byte = 's'
)

// Encoding describes the binary shape of one register element.
type Encoding struct {
	Class  int    // Ordinal of the alias group, starting at 1
	Name   string // Canonical alias (first in its group)
	Format byte   // Wire format tag, see Format* constants
	Width  int    // Bytes per element
}

// ByteSize returns the number of bytes occupied by count elements.
func (e Encoding) ByteSize(count int) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLength, count)
	}
	return e.Width * count, nil
}

// FormatString returns the packed layout for count elements, e.g. "3h".
func (e Encoding) FormatString(count int) string {
	return strconv.Itoa(count) + string(e.Format)
}

// IsZero reports whether e is the zero Encoding (no type resolved).
func (e Encoding) IsZero() bool {
	return e.Class == 0
}

func (e Encoding) String() string {
	return e.Name
}

// aliasGroup declares one set of synonyms sharing an encoding.
type aliasGroup struct {
	format  byte
	width   int
	aliases []string
}

// aliasGroups is the declaration-ordered alias table. Class ordinals are
// derived from the position in this slice and must stay stable.
var aliasGroups = []aliasGroup{
	{FormatInt16, 2, []string{"int16", "i16"}},
	{FormatUint16, 2, []string{"uint16", "u16"}},
	{FormatInt32, 4, []string{"int32", "i32", "int"}},
	{FormatUint32, 4, []string{"uint32", "u32", "uint"}},
	{FormatInt64, 8, []string{"int64", "i64", "long"}},
	{FormatUint64, 8, []string{"uint64", "u64"}},
	{FormatFloat32, 4, []string{"float", "f32", "f"}},
	{FormatFloat64, 8, []string{"double", "f64", "d"}},
	{FormatBits, 1, []string{"bitmap", "bits"}},
	{FormatASCII, 1, []string{"ascii", "char"}},
}

// encodingsByAlias maps upper-cased aliases to their descriptor.
// Built once and never mutated.
var encodingsByAlias = buildEncodingTable(aliasGroups)

func buildEncodingTable(groups []aliasGroup) map[string]Encoding {
	table := make(map[string]Encoding)
	for i, g := range groups {
		enc := Encoding{
			Class:  i + 1,
			Name:   g.aliases[0],
			Format: g.format,
			Width:  g.width,
		}
		for _, alias := range g.aliases {
			key := strings.ToUpper(alias)
			if _, dup := table[key]; dup {
				panic(fmt.Sprintf("duplicate type alias: %s", alias))
			}
			table[key] = enc
		}
	}
	return table
}

// LookupEncoding resolves a type alias, ignoring case and surrounding space.
func LookupEncoding(alias string) (Encoding, error) {
	enc, ok := encodingsByAlias[strings.ToUpper(strings.TrimSpace(alias))]
	if !ok {
		return Encoding{}, fmt.Errorf("%w: %q", ErrUnknownTypeAlias, alias)
	}
	return enc, nil
}

// Encodings returns one descriptor per alias group, ordered by class.
func Encodings() []Encoding {
	out := make([]Encoding, 0, len(aliasGroups))
	for _, g := range aliasGroups {
		out = append(out, encodingsByAlias[strings.ToUpper(g.aliases[0])])
	}
	return out
}

// Aliases returns every alias accepted for the given class, in declaration order.
func Aliases(class int) []string {
	if class < 1 || class > len(aliasGroups) {
		return nil
	}
	return append([]string(nil), aliasGroups[class-1].aliases...)
}
