package store

const registerTable = "register_defs"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS register_catalogs (
		id             uuid PRIMARY KEY,
		source         text NOT NULL,
		lang           text NOT NULL,
		compiled_at    timestamptz NOT NULL,
		register_count integer NOT NULL,
		groups         text[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS register_defs (
		catalog_id   uuid NOT NULL REFERENCES register_catalogs (id) ON DELETE CASCADE,
		position     integer NOT NULL,
		address      bigint NOT NULL,
		name         text NOT NULL,
		type_name    text NOT NULL,
		format       text NOT NULL,
		len          integer NOT NULL,
		byte_size    integer NOT NULL,
		unit         text,
		symbol_kind  text,
		symbols      jsonb,
		groups       text[] NOT NULL,
		divisor      double precision NOT NULL,
		descriptions jsonb NOT NULL,
		extra        jsonb NOT NULL,
		PRIMARY KEY (catalog_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS register_defs_address_idx ON register_defs (catalog_id, address)`,
}

const insertCatalogSQL = `INSERT INTO register_catalogs
	(id, source, lang, compiled_at, register_count, groups)
	VALUES ($1, $2, $3, $4, $5, $6)`

const listCatalogsSQL = `SELECT id, source, lang, compiled_at, register_count, groups
	FROM register_catalogs
	ORDER BY compiled_at DESC`

const deleteRegistersSQL = `DELETE FROM register_defs WHERE catalog_id = $1`

const deleteCatalogSQL = `DELETE FROM register_catalogs WHERE id = $1`
