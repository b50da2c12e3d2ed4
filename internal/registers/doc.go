// Package registers compiles CSV register definition files into typed
// register descriptions.
//
// A register file describes the memory-mapped registers of a field device,
// one register per row:
//
//	address,name,type,unit,groups,divisor,desc_en_US,desc_de_DE,meta.page
//	0x0000,voltage,uint16,V,"main, grid",10,Grid voltage,Netzspannung,1
//	0x0002,mode,int16::ENUM,"0: OFF
//	1: ON
//	2: AUTO",main,,Operating mode,,1
//
// # Compilation
//
// The header row is resolved into a [SchemaNode] tree ([Resolve]): dotted
// columns nest, desc_<locale> columns are grouped by normalized locale, and
// the address, name, type and unit columns are required. [BuildFactory]
// binds a [Supplier] to every field once per file, synthesizing a cty object
// type for columns outside the fixed shape. [Read] then applies the factory
// to each data row.
//
// # Types and Units
//
// The type column is BASETYPE[:LEN[:SUBTYPE]]. BASETYPE resolves through a
// static, case-insensitive alias table ([LookupEncoding]) to an [Encoding]
// with a wire format tag and element width. When SUBTYPE is ENUM or FLAGS
// the unit cell holds "VALUE: NAME" lines that [ParseUnit] turns into a
// [SymbolicType]; otherwise the unit is a plain label.
//
// # Errors
//
// Header problems ([ErrMissingRequiredColumns], [ErrColumnConflict]) abort
// before any row is read. A failing row aborts the whole read with a
// [*RowParseError] wrapping the [*FieldConversionError] of the field that
// failed. Rows whose address, name or type is blank are skipped silently.
// [MapError] turns any of these into a [UserMessage] with a support code.
package registers
