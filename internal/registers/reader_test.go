package registers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleFile = `address,name,type,unit,groups,divisor,desc_en_US,desc_de_DE,meta.page
0x0000,voltage,uint16,V,"main, grid",10,Grid voltage,Netzspannung,1
,,,,,,,,
Power section,,,,,,,,
0x0010,power,int32:2,W,grid,,Active power,,2
0x0002,mode,int16::ENUM,"0: OFF
1: ON
2: AUTO",main,,Operating mode,Betriebsart,1
0x0003,status,uint16::FLAGS,"{
  0x1: ALARM
  0x2: WARN
}",status,,,,3
`

func readString(t *testing.T, input string, opts Options) ([]RegisterDef, error) {
	t.Helper()
	if opts.Source == "" {
		opts.Source = "test.csv"
	}
	return Read(context.Background(), strings.NewReader(input), opts)
}

func TestRead_SampleFile(t *testing.T) {
	regs, err := readString(t, sampleFile, Options{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	// Blank and commentary rows are skipped; file order is kept.
	var names []string
	for _, r := range regs {
		names = append(names, r.Name)
	}
	if diff := cmp.Diff([]string{"voltage", "power", "mode", "status"}, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	voltage, power, mode, status := regs[0], regs[1], regs[2], regs[3]

	if voltage.Divisor != 10 || !voltage.Groups.HasAll("main", "grid") {
		t.Errorf("voltage = divisor %v groups %v", voltage.Divisor, voltage.Groups.Sorted())
	}
	if got := voltage.Description("de_DE"); got != "Netzspannung" {
		t.Errorf("voltage.Description(de_DE) = %q", got)
	}

	if power.Address != 0x10 || power.Len != 2 || power.ByteSize() != 8 {
		t.Errorf("power = address %d len %d size %d", power.Address, power.Len, power.ByteSize())
	}
	if _, ok := power.Desc["de_de"]; ok {
		t.Error("power has a de_de description for an empty cell")
	}

	if !mode.Unit.IsSymbolic() || !mode.Unit.Symbolic.Exclusive() {
		t.Fatalf("mode unit = %v, want ENUM", mode.Unit)
	}
	if name, _ := mode.Unit.Symbolic.NameOf(2); name != "AUTO" {
		t.Errorf("mode NameOf(2) = %q, want AUTO", name)
	}

	if !status.Unit.IsSymbolic() || status.Unit.Symbolic.Kind != KindFlags {
		t.Fatalf("status unit = %v, want FLAGS", status.Unit)
	}
	if got := status.Unit.Symbolic.Decompose(3); !cmp.Equal(got, []string{"ALARM", "WARN"}) {
		t.Errorf("status Decompose(3) = %v", got)
	}
	if len(status.Desc) != 0 {
		t.Errorf("status.Desc = %v, want empty", status.Desc)
	}
	if got := status.Description("en"); got != "status" {
		t.Errorf("status.Description(en) = %q, want name fallback", got)
	}
	if page, _ := status.ExtraString("meta", "page"); page != "3" {
		t.Errorf("status meta.page = %q, want 3", page)
	}
}

func TestRead_SortByAddress(t *testing.T) {
	regs, err := readString(t, sampleFile, Options{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	SortByAddress(regs)

	var addrs []int
	for _, r := range regs {
		addrs = append(addrs, r.Address)
	}
	if diff := cmp.Diff([]int{0x00, 0x02, 0x03, 0x10}, addrs); diff != "" {
		t.Errorf("addresses mismatch (-want +got):\n%s", diff)
	}
}

func TestRead_MissingColumnsBeforeRows(t *testing.T) {
	input := "address,name,type\n1,a,int\nnot,a,row\n"

	regs, err := readString(t, input, Options{})
	if !errors.Is(err, ErrMissingRequiredColumns) {
		t.Fatalf("Read() error = %v, want ErrMissingRequiredColumns", err)
	}
	if regs != nil {
		t.Errorf("Read() returned %d registers with an error", len(regs))
	}
	var rowErr *RowParseError
	if errors.As(err, &rowErr) {
		t.Error("header error reported as a row error")
	}
}

func TestRead_RowErrorAbortsWithLine(t *testing.T) {
	input := "address,name,type,unit\n" +
		"1,a,int,V\n" +
		",,,\n" +
		"0xZZ,b,int,V\n" +
		"4,c,int,V\n"

	regs, err := readString(t, input, Options{Source: "plant.csv"})
	if regs != nil {
		t.Errorf("Read() returned %d registers with an error", len(regs))
	}

	var rowErr *RowParseError
	if !errors.As(err, &rowErr) {
		t.Fatalf("Read() error = %v, want *RowParseError", err)
	}
	if rowErr.Line != 3 {
		t.Errorf("Line = %d, want 3", rowErr.Line)
	}
	if rowErr.SourceLine != 4 {
		t.Errorf("SourceLine = %d, want 4", rowErr.SourceLine)
	}
	if rowErr.Source != "plant.csv" {
		t.Errorf("Source = %q, want plant.csv", rowErr.Source)
	}
	if !strings.Contains(err.Error(), "line 3 of plant.csv") {
		t.Errorf("error %q does not name the line", err)
	}

	var fe *FieldConversionError
	if !errors.As(err, &fe) || fe.Field != FieldAddress || fe.Value != "0xZZ" {
		t.Errorf("field error = %+v, want address 0xZZ", fe)
	}
	if !errors.Is(err, ErrInvalidNumber) {
		t.Error("error does not wrap ErrInvalidNumber")
	}
}

func TestRead_SkipsRowsWithBlankKeyFields(t *testing.T) {
	input := "address,name,type,unit\n" +
		"1,a,int,V\n" +
		",b,int,V\n" +
		"3,,int,V\n" +
		"4,d,,V\n" +
		"5,e,int,\n"

	regs, err := readString(t, input, Options{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(regs) != 2 || regs[0].Name != "a" || regs[1].Name != "e" {
		t.Errorf("Read() = %d registers, want a and e", len(regs))
	}
}

func TestRead_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "\n\n"} {
		_, err := readString(t, input, Options{})
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Read(%q) error = %v, want ErrEmptyInput", input, err)
		}
	}
}

func TestRead_HeaderOnly(t *testing.T) {
	regs, err := readString(t, "address,name,type,unit\n", Options{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(regs) != 0 {
		t.Errorf("Read() = %d registers, want 0", len(regs))
	}
}

func TestRead_ByteOrderMark(t *testing.T) {
	input := "\xEF\xBB\xBFaddress,name,type,unit\n1,a,int16,V\n"

	regs, err := readString(t, input, Options{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(regs) != 1 || regs[0].Address != 1 {
		t.Errorf("Read() = %+v, want one register at address 1", regs)
	}
}

func TestRead_UTF16(t *testing.T) {
	text := "address,name,type,unit\n7,a,int16,V\n"
	// UTF-16LE with byte order mark.
	input := []byte{0xFF, 0xFE}
	for _, r := range text {
		input = append(input, byte(r), 0)
	}

	regs, err := readString(t, string(input), Options{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(regs) != 1 || regs[0].Address != 7 {
		t.Errorf("Read() = %+v, want one register at address 7", regs)
	}
}

func TestRead_Dialect(t *testing.T) {
	input := "# exported from plant tool\n" +
		"address; name; type; unit\n" +
		"1; a; int16; V\n" +
		"# disabled; x; int16; V\n" +
		"2; b; uint16; A\n"

	opts := Options{Dialect: Dialect{Comma: ';', Comment: '#', TrimLeadingSpace: true}}
	regs, err := readString(t, input, opts)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(regs) != 2 || regs[1].Unit.Label != "A" {
		t.Errorf("Read() = %+v, want registers a and b", regs)
	}
}

func TestRead_InvalidCSV(t *testing.T) {
	input := "address,name,type,unit\n1,\"a,int16,V\n"

	_, err := readString(t, input, Options{})
	var rowErr *RowParseError
	if !errors.As(err, &rowErr) {
		t.Fatalf("Read() error = %v, want *RowParseError", err)
	}
	if !strings.Contains(err.Error(), "invalid csv") {
		t.Errorf("error %q does not mention invalid csv", err)
	}
	if got := MapError(err).Code; got != "FILE002" {
		t.Errorf("MapError().Code = %q, want FILE002", got)
	}
}

func TestRead_LazyQuotes(t *testing.T) {
	input := "address,name,type,unit\n1,a\"b,int16,V\n"

	if _, err := readString(t, input, Options{}); err == nil {
		t.Fatal("Read() error = nil for a bare quote in strict mode")
	}

	regs, err := readString(t, input, Options{Dialect: Dialect{LazyQuotes: true}})
	if err != nil {
		t.Fatalf("Read() with lazy quotes error = %v", err)
	}
	if regs[0].Name != `a"b` {
		t.Errorf("Name = %q, want %q", regs[0].Name, `a"b`)
	}
}

func TestRead_CustomSuppliers(t *testing.T) {
	input := "address,name,type,unit,meta.page\n1,a,int16,V,4\n"
	opts := Options{Suppliers: Suppliers{
		"meta.page": func(row Row, node *SchemaNode) (any, error) {
			s, _ := row.Leaf(node)
			return ParseInt(s)
		},
	}}

	regs, err := readString(t, input, opts)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	page, ok := regs[0].ExtraValue("meta", "page")
	if !ok || page.AsBigFloat().String() != "4" {
		t.Errorf("meta.page = %#v, want 4", page)
	}
}

func TestRead_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := "address,name,type,unit\n1,a,int,V\n"

	_, err := Read(ctx, strings.NewReader(input), Options{CheckInterval: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Read() error = %v, want context.Canceled", err)
	}

	// The default interval is not reached by a one-row file.
	if _, err := Read(ctx, strings.NewReader(input), Options{}); err != nil {
		t.Errorf("Read() with default interval error = %v", err)
	}
}

func TestRead_LegacyOctalRejected(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantField string
		wantErr   error
	}{
		{"address", "address,name,type,unit\n0100,a,int16,V\n", FieldAddress, ErrInvalidNumber},
		{"divisor", "address,name,type,unit,divisor\n0x100,a,int16,V,010\n", FieldDivisor, ErrInvalidNumber},
		{"enum value", "address,name,type,unit\n1,m,int16::ENUM,\"010: A\n8: B\"\n", FieldUnit, ErrMalformedSymbolicUnit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readString(t, tt.input, Options{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Read() error = %v, want %v", err, tt.wantErr)
			}
			var fe *FieldConversionError
			if !errors.As(err, &fe) || fe.Field != tt.wantField {
				t.Errorf("field error = %+v, want field %s", fe, tt.wantField)
			}
		})
	}
}
