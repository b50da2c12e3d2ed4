package registers

// reader.go drives a CSV register file through the schema compiler.
//
// The flow for one file:
//  1. Decode the input (BOM detection, ill-formed UTF-8 replaced)
//  2. Read the header and resolve it into a schema; missing required
//     columns abort here, before any row is read
//  3. Build one factory for the whole file
//  4. Apply the factory to every data row. Rows with a blank address, name
//     or type are skipped; any other failure aborts the read with the row's
//     line number attached
//
// No partial catalogs are returned: Read yields either every register of
// the file or an error.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// defaultCheckInterval is how often (in rows) Read checks for cancellation
// when Options.CheckInterval is zero.
const defaultCheckInterval = 100

// Dialect carries the CSV tokenizer settings. The zero value reads
// comma-separated files without comments.
type Dialect struct {
	Comma            rune // Field delimiter; ',' when zero
	Comment          rune // Lines starting with this rune are ignored; none when zero
	LazyQuotes       bool
	TrimLeadingSpace bool
}

// Options configures Read.
type Options struct {
	Dialect   Dialect
	Source    string    // File identity used in errors and logs
	Suppliers Suppliers // Per-field overrides of the default suppliers
	Logger    *slog.Logger

	CheckInterval int // Rows between cancellation checks; defaultCheckInterval when zero
}

// NewInputReader decodes r as UTF-8, or as UTF-16 when it starts with a
// UTF-16 byte order mark. A UTF-8 BOM is dropped and ill-formed bytes are
// replaced with U+FFFD.
func NewInputReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

func newCSVReader(r io.Reader, d Dialect) *csv.Reader {
	cr := csv.NewReader(NewInputReader(r))
	if d.Comma != 0 {
		cr.Comma = d.Comma
	}
	cr.Comment = d.Comment
	cr.LazyQuotes = d.LazyQuotes
	cr.TrimLeadingSpace = d.TrimLeadingSpace
	cr.FieldsPerRecord = -1
	return cr
}

// Read compiles every data row of r into a RegisterDef, in file order.
// r is borrowed: closing it stays with the caller.
func Read(ctx context.Context, r io.Reader, opts Options) ([]RegisterDef, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("source", opts.Source)

	interval := opts.CheckInterval
	if interval <= 0 {
		interval = defaultCheckInterval
	}

	cr := newCSVReader(r, opts.Dialect)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", sourceName(opts.Source), ErrEmptyInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: invalid csv header: %w", sourceName(opts.Source), err)
	}

	schema, err := Resolve(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sourceName(opts.Source), err)
	}

	factory, err := BuildFactory(schema, opts.Suppliers)
	if err != nil {
		return nil, err
	}

	logger.Debug("schema resolved",
		"columns", len(header),
		"fields", len(schema.Fields),
		"extra", factory.ExtraType().FriendlyName(),
	)

	index := MakeHeaderIndex(header)
	var (
		regs    []RegisterDef
		skipped int
	)

	for line := 1; ; line++ {
		if line%interval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("read cancelled at line %d: %w", line, err)
			}
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rowErr := &RowParseError{Line: line, Source: opts.Source, Err: fmt.Errorf("invalid csv: %w", err)}
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				rowErr.SourceLine = pe.StartLine
			}
			return nil, rowErr
		}

		row := NewRow(record, index, schema)
		row.Line = line

		if row.blank(FieldAddress, FieldName, FieldType) {
			skipped++
			logger.Debug("skipping row with blank required field", "line", line)
			continue
		}

		reg, err := factory.New(row)
		if err != nil {
			sourceLine, _ := cr.FieldPos(0)
			return nil, &RowParseError{Line: line, SourceLine: sourceLine, Source: opts.Source, Err: err}
		}
		regs = append(regs, reg)
	}

	logger.Debug("registers read", "count", len(regs), "skipped", skipped)
	return regs, nil
}

func sourceName(source string) string {
	if source == "" {
		return "<input>"
	}
	return source
}
