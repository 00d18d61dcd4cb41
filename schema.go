package modelstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mickamy/modelstate/internal/ident"
)

// SchemaConfig controls history table generation behaviour.
type SchemaConfig struct {
	HistorySuffix string // suffix appended to base table name (default: _history)
	CreateIDIndex bool   // create an index on the history table id column
}

// Migrate creates a history table for every model descriptor in targets.
func Migrate(ctx context.Context, db *sql.DB, cfg SchemaConfig, targets ...any) error {
	if cfg.HistorySuffix == "" {
		cfg.HistorySuffix = "_history"
	}
	if len(targets) == 0 {
		return nil
	}
	models := make([]Model, 0, len(targets))
	for _, t := range targets {
		m, err := Resolve(t)
		if err != nil {
			return err
		}
		models = append(models, m)
	}

	for _, m := range models {
		name := tableName(m)
		parts := ident.SplitQualified(name)
		if len(parts) == 0 {
			return fmt.Errorf("modelstate: invalid table identifier %q", name)
		}
		base, err := selectBaseTable(ctx, db, parts, keyName(m))
		if err != nil {
			return err
		}
		if base.idType == "" {
			base.idType = historyIDType(keyType(m))
		}
		if err := createHistoryTable(ctx, db, cfg, base); err != nil {
			return err
		}
	}
	return nil
}

// historyIDType maps a model key type to the column type of the history id.
func historyIDType(kt KeyType) string {
	switch kt {
	case KeyUUID:
		return "UUID"
	case KeyULID:
		return "CHAR(26)"
	case KeyString:
		return "TEXT"
	default:
		return "BIGINT"
	}
}

type tableInfo struct {
	schema string
	table  string
	ident  string
	idType string
}

// selectBaseTable reads the catalog type of the key column of the base table.
func selectBaseTable(ctx context.Context, db *sql.DB, parts []string, key string) (tableInfo, error) {
	var schemaName, tableName string
	switch len(parts) {
	case 1:
		schemaName = "public"
		tableName = parts[0]
	case 2:
		schemaName = parts[0]
		tableName = parts[1]
	default:
		return tableInfo{}, fmt.Errorf("modelstate: unsupported identifier %q", strings.Join(parts, "."))
	}

	row := db.QueryRowContext(ctx, `
        SELECT
            n.nspname,
            r.relname,
            pg_catalog.format_type(a.atttypid, a.atttypmod) AS id_type
        FROM pg_class r
        JOIN pg_namespace n ON n.oid = r.relnamespace
        LEFT JOIN (
            SELECT attrelid, atttypid, atttypmod
            FROM pg_attribute
            WHERE attname = $3
              AND attnum > 0
              AND NOT attisdropped
        ) AS a ON a.attrelid = r.oid
        WHERE n.nspname = $1 AND r.relname = $2
    `, schemaName, tableName, key)

	var info tableInfo
	var idType sql.NullString
	if err := row.Scan(&info.schema, &info.table, &idType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tableInfo{}, fmt.Errorf("modelstate: table %s.%s not found", schemaName, tableName)
		}
		return tableInfo{}, err
	}
	info.ident = ident.QuoteQualified([]string{info.schema, info.table})
	if idType.Valid {
		info.idType = idType.String
	}
	return info, nil
}

func createHistoryTable(ctx context.Context, db *sql.DB, cfg SchemaConfig, base tableInfo) error {
	historyParts := ident.HistoryParts(base.ident, cfg.HistorySuffix)
	historyIdent := ident.QuoteQualified(historyParts)
	if historyIdent == "" {
		return fmt.Errorf("modelstate: invalid history identifier for %s", base.ident)
	}
	columns := []string{
		"history_id BIGSERIAL PRIMARY KEY",
		fmt.Sprintf("id %s", base.idType),
		"operation TEXT NOT NULL",
		"operated_at TIMESTAMPTZ NOT NULL",
		"operated_by TEXT",
		"trace_id TEXT",
		"reason TEXT",
		"before JSONB",
		"after JSONB",
	}

	ddl := fmt.Sprintf(`
    CREATE TABLE IF NOT EXISTS %s (
        %s
    );
    `, historyIdent, strings.Join(columns, ",\n\t"))

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return err
	}
	if cfg.CreateIDIndex {
		indexName := fmt.Sprintf("idx_%s_id", historyParts[len(historyParts)-1])
		stmt := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (id);`, ident.Quote(indexName), historyIdent)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
