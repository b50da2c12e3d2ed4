// Package catalog holds compiled register catalogs and their exports.
//
// A Catalog is the result of compiling one register file: the registers in
// file order plus the identity of the compile (id, source, locale, time).
// Catalogs are immutable once built; Filter returns a new value.
package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/JonMunkholm/regdef/internal/registers"
	"github.com/google/uuid"
)

// Options configures Compile and Load.
type Options struct {
	Dialect   registers.Dialect
	Suppliers registers.Suppliers
	Lang      string // Preferred description locale
	Logger    *slog.Logger
}

// Catalog is a compiled register file.
type Catalog struct {
	ID         uuid.UUID
	Source     string
	Lang       string // Normalized locale used by Description
	CompiledAt time.Time
	Registers  []registers.RegisterDef // File order
}

// Summary describes a catalog without its registers.
type Summary struct {
	ID         string    `json:"id" yaml:"id"`
	Source     string    `json:"source" yaml:"source"`
	Lang       string    `json:"lang" yaml:"lang"`
	CompiledAt time.Time `json:"compiled_at" yaml:"compiled_at"`
	Count      int       `json:"count" yaml:"count"`
	Groups     []string  `json:"groups" yaml:"groups"`
}

// Compile reads every register of r. It fails exactly when the register
// reader fails; no partial catalog is returned.
func Compile(ctx context.Context, r io.Reader, source string, opts Options) (*Catalog, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	regs, err := registers.Read(ctx, r, registers.Options{
		Dialect:   opts.Dialect,
		Source:    source,
		Suppliers: opts.Suppliers,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		ID:         uuid.New(),
		Source:     source,
		Lang:       registers.NormalizeLocale(opts.Lang),
		CompiledAt: time.Now().UTC(),
		Registers:  regs,
	}

	logger.Info("catalog compiled",
		"catalog_id", c.ID.String(),
		"source", source,
		"registers", len(regs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return c, nil
}

// Load compiles the register file at path. The file is closed before Load
// returns, on success and on error.
func Load(ctx context.Context, path string, opts Options) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open register file: %w", err)
	}
	defer f.Close()

	return Compile(ctx, f, path, opts)
}

// Len returns the number of registers.
func (c *Catalog) Len() int {
	return len(c.Registers)
}

// Sorted returns a copy of the registers ordered by address. Registers
// sharing an address keep their file order.
func (c *Catalog) Sorted() []registers.RegisterDef {
	out := make([]registers.RegisterDef, len(c.Registers))
	copy(out, c.Registers)
	registers.SortByAddress(out)
	return out
}

// Lookup returns the first register, in file order, at address.
func (c *Catalog) Lookup(address int) (registers.RegisterDef, bool) {
	for _, r := range c.Registers {
		if r.Address == address {
			return r, true
		}
	}
	return registers.RegisterDef{}, false
}

// Filter returns a catalog with the registers matched by f. The result
// shares the identity of c.
func (c *Catalog) Filter(f GroupFilter) *Catalog {
	out := *c
	out.Registers = nil
	for _, r := range c.Registers {
		if f.Match(r.Groups) {
			out.Registers = append(out.Registers, r)
		}
	}
	return &out
}

// Groups returns every group tag used by the catalog, sorted.
func (c *Catalog) Groups() []string {
	all := registers.NewGroupSet()
	for _, r := range c.Registers {
		for tag := range r.Groups {
			all[tag] = struct{}{}
		}
	}
	return all.Sorted()
}

// Description returns the description of reg in the catalog's locale.
func (c *Catalog) Description(reg registers.RegisterDef) string {
	return reg.Description(c.Lang)
}

// WithLang returns a shallow copy of c that describes registers in lang.
func (c *Catalog) WithLang(lang string) *Catalog {
	out := *c
	out.Lang = registers.NormalizeLocale(lang)
	return &out
}

// Summary returns the catalog identity and size.
func (c *Catalog) Summary() Summary {
	return Summary{
		ID:         c.ID.String(),
		Source:     c.Source,
		Lang:       c.Lang,
		CompiledAt: c.CompiledAt,
		Count:      c.Len(),
		Groups:     c.Groups(),
	}
}
