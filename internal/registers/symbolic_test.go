package registers

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ----------------------------------------------------------------------------
// ParseUnit Tests
// ----------------------------------------------------------------------------

func TestParseUnit_Plain(t *testing.T) {
	tests := []struct {
		name    string
		subtype string
		text    string
		want    string
	}{
		{"physical unit", "", "V", "V"},
		{"verbatim", "", "  kWh ", "  kWh "},
		{"empty", "", "", ""},
		{"unknown subtype keeps text", "RANGE", "0..100", "0..100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ParseUnit("reg", tt.subtype, tt.text)
			if err != nil {
				t.Fatalf("ParseUnit() error = %v", err)
			}
			if u.IsSymbolic() {
				t.Fatalf("ParseUnit() returned symbolic unit %v", u.Symbolic)
			}
			if u.Label != tt.want {
				t.Errorf("Label = %q, want %q", u.Label, tt.want)
			}
		})
	}
}

func TestParseUnit_Enum(t *testing.T) {
	u, err := ParseUnit("mode", "ENUM", "0: OFF\n1: ON\n2: AUTO")
	if err != nil {
		t.Fatalf("ParseUnit() error = %v", err)
	}
	if !u.IsSymbolic() {
		t.Fatal("ParseUnit() returned plain unit")
	}

	want := &SymbolicType{
		Name: "mode",
		Kind: KindEnum,
		Members: []Symbol{
			{Value: 0, Name: "OFF"},
			{Value: 1, Name: "ON"},
			{Value: 2, Name: "AUTO"},
		},
	}
	if diff := cmp.Diff(want, u.Symbolic); diff != "" {
		t.Errorf("symbolic type mismatch (-want +got):\n%s", diff)
	}
	if !u.Symbolic.Exclusive() {
		t.Error("Exclusive() = false, want true for ENUM")
	}
}

func TestParseUnit_ValueLiterals(t *testing.T) {
	tests := []struct {
		lit  string
		want int64
	}{
		{"0", 0},
		{"10", 10},
		{"0o17", 15},
		{"0x1F", 31},
		{"0b101", 5},
		{"-0x2", -2},
		{"1_000", 1000},
	}

	for _, tt := range tests {
		t.Run(tt.lit, func(t *testing.T) {
			u, err := ParseUnit("reg", "ENUM", tt.lit+": X")
			if err != nil {
				t.Fatalf("ParseUnit() error = %v", err)
			}
			if got := u.Symbolic.Members[0].Value; got != tt.want {
				t.Errorf("value = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseUnit_FlagsWithDecoration(t *testing.T) {
	text := "{\r\n  0x01: ALARM\r\n\r\n  0b10: WARN \r\n  0o10: SERVICE\r\n}\r\n"

	u, err := ParseUnit("status", "flags", text)
	if err != nil {
		t.Fatalf("ParseUnit() error = %v", err)
	}

	want := []Symbol{
		{Value: 1, Name: "ALARM"},
		{Value: 2, Name: "WARN"},
		{Value: 8, Name: "SERVICE"},
	}
	if diff := cmp.Diff(want, u.Symbolic.Members); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}
	if u.Symbolic.Kind != KindFlags {
		t.Errorf("Kind = %v, want FLAGS", u.Symbolic.Kind)
	}
	if u.Symbolic.Exclusive() {
		t.Error("Exclusive() = true, want false for FLAGS")
	}
}

func TestParseUnit_NameKeepsColons(t *testing.T) {
	u, err := ParseUnit("state", "ENUM", "1: PHASE:A\n2:PHASE:B")
	if err != nil {
		t.Fatalf("ParseUnit() error = %v", err)
	}
	if name, _ := u.Symbolic.NameOf(1); name != "PHASE:A" {
		t.Errorf("NameOf(1) = %q, want %q", name, "PHASE:A")
	}
	if name, _ := u.Symbolic.NameOf(2); name != "PHASE:B" {
		t.Errorf("NameOf(2) = %q, want %q", name, "PHASE:B")
	}
}

func TestParseUnit_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"missing colon", "0 OFF"},
		{"non-numeric value", "x: OFF"},
		{"float value", "1.5: HALF"},
		{"leading zero", "010: A\n8: B"},
		{"leading zero underscore", "0_1: A"},
		{"missing name", "1:"},
		{"duplicate value", "1: ON\n1: ENABLED"},
		{"duplicate name", "1: ON\n2: ON"},
		{"no members", "{\n}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUnit("reg", "ENUM", tt.text)
			if !errors.Is(err, ErrMalformedSymbolicUnit) {
				t.Errorf("ParseUnit(%q) error = %v, want ErrMalformedSymbolicUnit", tt.text, err)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// SymbolicType Helper Tests
// ----------------------------------------------------------------------------

func TestSymbolicType_Enum(t *testing.T) {
	u, err := ParseUnit("mode", "ENUM", "0: OFF\n1: ON\n2: AUTO")
	if err != nil {
		t.Fatalf("ParseUnit() error = %v", err)
	}
	st := u.Symbolic

	if name, ok := st.NameOf(2); !ok || name != "AUTO" {
		t.Errorf("NameOf(2) = %q, %v; want AUTO, true", name, ok)
	}
	if _, ok := st.NameOf(7); ok {
		t.Error("NameOf(7) ok = true, want false")
	}
	if v, ok := st.ValueOf("ON"); !ok || v != 1 {
		t.Errorf("ValueOf(ON) = %d, %v; want 1, true", v, ok)
	}
	if !st.IsSet(1, "ON") {
		t.Error("IsSet(1, ON) = false, want true")
	}
	// Enumerations are not bit-combinable: 3 is neither ON nor AUTO.
	if st.IsSet(3, "ON") {
		t.Error("IsSet(3, ON) = true, want false")
	}
	if got := st.Decompose(2); !cmp.Equal(got, []string{"AUTO"}) {
		t.Errorf("Decompose(2) = %v, want [AUTO]", got)
	}
	if got := st.Decompose(9); got != nil {
		t.Errorf("Decompose(9) = %v, want nil", got)
	}
	if got, want := st.String(), "ENUM mode { 0: OFF, 1: ON, 2: AUTO }"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSymbolicType_Flags(t *testing.T) {
	u, err := ParseUnit("status", "FLAGS", "0: NONE\n1: A\n2: B\n4: C\n6: BC")
	if err != nil {
		t.Fatalf("ParseUnit() error = %v", err)
	}
	st := u.Symbolic

	tests := []struct {
		raw  int64
		want []string
	}{
		{0, []string{"NONE"}},
		{1, []string{"A"}},
		{5, []string{"A", "C"}},
		{6, []string{"B", "C", "BC"}},
		{8, nil},
	}
	for _, tt := range tests {
		if got := st.Decompose(tt.raw); !cmp.Equal(got, tt.want) {
			t.Errorf("Decompose(%d) = %v, want %v", tt.raw, got, tt.want)
		}
	}

	if !st.IsSet(7, "BC") {
		t.Error("IsSet(7, BC) = false, want true")
	}
	if st.IsSet(4, "BC") {
		t.Error("IsSet(4, BC) = true, want false")
	}
	if st.IsSet(1, "missing") {
		t.Error("IsSet(1, missing) = true, want false")
	}
}
