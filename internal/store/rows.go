package store

import (
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/regdef/internal/catalog"
	"github.com/JonMunkholm/regdef/internal/registers"
	"github.com/jackc/pgx/v5/pgtype"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// CopyColumns lists the register_defs columns in the order CopyRow
// returns values.
var CopyColumns = []string{
	"catalog_id",
	"position",
	"address",
	"name",
	"type_name",
	"format",
	"len",
	"byte_size",
	"unit",
	"symbol_kind",
	"symbols",
	"groups",
	"divisor",
	"descriptions",
	"extra",
}

// CopyRow converts one register to a COPY row for register_defs.
// position is the register's index in file order.
func CopyRow(catalogID pgtype.UUID, position int, reg registers.RegisterDef) ([]any, error) {
	var (
		unit       pgtype.Text
		symbolKind pgtype.Text
		symbols    []byte
	)
	if st := reg.Unit.Symbolic; st != nil {
		symbolKind = pgtype.Text{String: st.Kind.String(), Valid: true}
		members := make([]catalog.SymbolView, len(st.Members))
		for i, m := range st.Members {
			members[i] = catalog.SymbolView{Value: m.Value, Name: m.Name}
		}
		b, err := json.Marshal(members)
		if err != nil {
			return nil, fmt.Errorf("encode symbols of %s: %w", reg.Name, err)
		}
		symbols = b
	} else if reg.Unit.Label != "" {
		unit = pgtype.Text{String: reg.Unit.Label, Valid: true}
	}

	desc, err := json.Marshal(reg.Desc)
	if err != nil {
		return nil, fmt.Errorf("encode descriptions of %s: %w", reg.Name, err)
	}

	extra, err := extraJSON(reg)
	if err != nil {
		return nil, fmt.Errorf("encode extra columns of %s: %w", reg.Name, err)
	}

	return []any{
		catalogID,
		int32(position),
		int64(reg.Address),
		reg.Name,
		reg.Type.Name,
		reg.FormatString(),
		int32(reg.Len),
		int32(reg.ByteSize()),
		unit,
		symbolKind,
		symbols,
		reg.Groups.Sorted(),
		reg.Divisor,
		desc,
		extra,
	}, nil
}

func extraJSON(reg registers.RegisterDef) ([]byte, error) {
	v := reg.Extra
	if v.IsNull() || !v.IsKnown() {
		return []byte("{}"), nil
	}
	return ctyjson.Marshal(v, v.Type())
}

func copyRows(c *catalog.Catalog) ([][]any, error) {
	id := pgUUID(c.ID)
	rows := make([][]any, len(c.Registers))
	for i, reg := range c.Registers {
		row, err := CopyRow(id, i, reg)
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}
	return rows, nil
}

func catalogArgs(c *catalog.Catalog) []any {
	return []any{
		pgUUID(c.ID),
		c.Source,
		c.Lang,
		pgtype.Timestamptz{Time: c.CompiledAt, Valid: true},
		int32(c.Len()),
		c.Groups(),
	}
}
