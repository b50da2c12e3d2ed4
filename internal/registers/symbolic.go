package registers

// symbolic.go parses the ENUM/FLAGS mini-language found in unit cells.
//
// A symbolic unit is a block of "VALUE: NAME" lines:
//
//	{
//	  0: OFF
//	  1: ON
//	  0x10: AUTO
//	}
//
// Blank lines and lines that are exactly "{" or "}" are ignored. Values
// accept the 0x, 0o and 0b prefixes; a bare leading zero such as 010 is
// rejected. Each line is split on its first colon,
// so names may themselves contain colons.

import (
	"fmt"
	"strings"
)

// SymbolKind distinguishes exclusive enumerations from combinable flag sets.
type SymbolKind int

const (
	KindEnum SymbolKind = iota + 1
	KindFlags
)

func (k SymbolKind) String() string {
	switch k {
	case KindEnum:
		return "ENUM"
	case KindFlags:
		return "FLAGS"
	default:
		return ""
	}
}

// Symbol is one named value of a SymbolicType.
type Symbol struct {
	Value int64
	Name  string
}

// SymbolicType is a named value space generated from a unit cell.
// For KindEnum a register holds exactly one member; for KindFlags it holds
// any bitwise union of members.
type SymbolicType struct {
	Name    string // Owning register name
	Kind    SymbolKind
	Members []Symbol // Declaration order
}

// Exclusive reports whether membership is mutually exclusive (an enumeration).
func (t *SymbolicType) Exclusive() bool {
	return t.Kind == KindEnum
}

// NameOf returns the member name declared for value.
func (t *SymbolicType) NameOf(value int64) (string, bool) {
	for _, m := range t.Members {
		if m.Value == value {
			return m.Name, true
		}
	}
	return "", false
}

// ValueOf returns the value declared for name. Names match exactly.
func (t *SymbolicType) ValueOf(name string) (int64, bool) {
	for _, m := range t.Members {
		if m.Name == name {
			return m.Value, true
		}
	}
	return 0, false
}

// IsSet reports whether the named member is present in raw.
// For enumerations raw must equal the member value. For flag sets every bit
// of the member must be set in raw; a zero-valued flag is set only when raw
// is zero.
func (t *SymbolicType) IsSet(raw int64, name string) bool {
	v, ok := t.ValueOf(name)
	if !ok {
		return false
	}
	if t.Kind == KindEnum || v == 0 {
		return raw == v
	}
	return raw&v == v
}

// Decompose returns the names of members present in raw, in declaration order.
// For enumerations the result holds at most one name.
func (t *SymbolicType) Decompose(raw int64) []string {
	if t.Kind == KindEnum {
		if name, ok := t.NameOf(raw); ok {
			return []string{name}
		}
		return nil
	}
	var names []string
	for _, m := range t.Members {
		if t.IsSet(raw, m.Name) {
			names = append(names, m.Name)
		}
	}
	return names
}

func (t *SymbolicType) String() string {
	var b strings.Builder
	b.WriteString(t.Kind.String())
	b.WriteString(" ")
	b.WriteString(t.Name)
	b.WriteString(" {")
	for i, m := range t.Members {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, " %d: %s", m.Value, m.Name)
	}
	b.WriteString(" }")
	return b.String()
}

// Unit is either a plain label (physical unit or free text) or a symbolic type.
type Unit struct {
	Label    string
	Symbolic *SymbolicType
}

// IsSymbolic reports whether the unit carries an ENUM or FLAGS type.
func (u Unit) IsSymbolic() bool {
	return u.Symbolic != nil
}

func (u Unit) String() string {
	if u.Symbolic != nil {
		return u.Symbolic.String()
	}
	return u.Label
}

// ParseUnit interprets a unit cell. When subtype is ENUM or FLAGS (any case)
// text is parsed as a symbolic block named after field; otherwise the text
// is returned verbatim as a plain label.
//
// Duplicate names and duplicate values are both rejected, so that NameOf and
// ValueOf are unambiguous.
func ParseUnit(field, subtype, text string) (Unit, error) {
	var kind SymbolKind
	switch strings.ToUpper(strings.TrimSpace(subtype)) {
	case "ENUM":
		kind = KindEnum
	case "FLAGS":
		kind = KindFlags
	default:
		return Unit{Label: text}, nil
	}

	st := &SymbolicType{Name: field, Kind: kind}
	names := make(map[string]bool)
	values := make(map[int64]string)

	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "{" || line == "}" {
			continue
		}

		lit, name, ok := strings.Cut(line, ":")
		if !ok {
			return Unit{}, fmt.Errorf("%w: line %d %q: missing ':'", ErrMalformedSymbolicUnit, n+1, line)
		}
		lit = strings.TrimSpace(lit)
		name = strings.TrimSpace(name)
		if name == "" {
			return Unit{}, fmt.Errorf("%w: line %d %q: missing name", ErrMalformedSymbolicUnit, n+1, line)
		}

		value, err := parseLiteral(lit, 64)
		if err != nil {
			return Unit{}, fmt.Errorf("%w: line %d: invalid value %q", ErrMalformedSymbolicUnit, n+1, lit)
		}

		if names[name] {
			return Unit{}, fmt.Errorf("%w: duplicate name %q", ErrMalformedSymbolicUnit, name)
		}
		if prev, dup := values[value]; dup {
			return Unit{}, fmt.Errorf("%w: value %d declared for both %q and %q", ErrMalformedSymbolicUnit, value, prev, name)
		}
		names[name] = true
		values[value] = name

		st.Members = append(st.Members, Symbol{Value: value, Name: name})
	}

	if len(st.Members) == 0 {
		return Unit{}, fmt.Errorf("%w: %s block declares no values", ErrMalformedSymbolicUnit, kind)
	}

	return Unit{Symbolic: st}, nil
}
