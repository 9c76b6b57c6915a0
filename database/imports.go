package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/herdsync/herdsync/model"
)

// importTables whitelists the destination tables and their writable columns,
// in statement order. Record keys outside the whitelist are dropped, never
// interpolated.
var importTables = map[string][]string{
	"bulls": {
		"farm_id", "naab_code", "name", "registration", "birth_date",
		"ptam", "ptaf", "ptap", "fat_pct", "protein_pct",
		"scs", "pl", "dpr", "tpi", "nm",
		"beta_casein", "kappa_casein", "import_batch_id",
	},
	"females": {
		"farm_id", "identifier", "name", "registration", "birth_date",
		"sire_naab", "mgs_naab",
		"ptam", "ptaf", "ptap", "scs", "dpr", "tpi", "nm",
		"beta_casein", "import_batch_id",
	},
}

// UpsertRows writes one chunk of normalized records into a destination table
// with INSERT ... ON CONFLICT DO UPDATE on the given conflict columns. Only
// whitelisted columns that appear in at least one record are written.
func (d Datasource) UpsertRows(ctx context.Context, table string, conflictColumns []string, rows []model.Record) error {
	ctx, span := otel.Tracer("Imports").Start(ctx, "Upserting import chunk")
	defer span.End()

	if len(rows) == 0 {
		return nil
	}
	allowed, ok := importTables[table]
	if !ok {
		return errors.Errorf("unknown import table %q", table)
	}
	allowedSet := make(map[string]bool, len(allowed))
	for _, c := range allowed {
		allowedSet[c] = true
	}
	for _, c := range conflictColumns {
		if !allowedSet[c] {
			return errors.Errorf("conflict column %q not writable on table %q", c, table)
		}
	}

	columns := make([]string, 0, len(allowed))
	for _, c := range allowed {
		for _, row := range rows {
			if _, present := row[c]; present {
				columns = append(columns, c)
				break
			}
		}
	}
	if len(columns) == 0 {
		return errors.Errorf("no writable columns in chunk for table %q", table)
	}

	placeholders := make([]string, 0, len(rows))
	values := make([]interface{}, 0, len(rows)*len(columns))
	arg := 1
	for _, row := range rows {
		marks := make([]string, 0, len(columns))
		for _, c := range columns {
			marks = append(marks, fmt.Sprintf("$%d", arg))
			arg++
			if v, present := row[c]; present {
				values = append(values, v)
			} else {
				values = append(values, nil)
			}
		}
		placeholders = append(placeholders, "("+strings.Join(marks, ", ")+")")
	}

	conflictSet := make(map[string]bool, len(conflictColumns))
	for _, c := range conflictColumns {
		conflictSet[c] = true
	}
	updates := make([]string, 0, len(columns))
	for _, c := range columns {
		if conflictSet[c] {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "),
	)
	if len(conflictColumns) > 0 {
		if len(updates) > 0 {
			query += fmt.Sprintf(
				" ON CONFLICT (%s) DO UPDATE SET %s",
				strings.Join(conflictColumns, ", "), strings.Join(updates, ", "),
			)
		} else {
			query += fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", strings.Join(conflictColumns, ", "))
		}
	}

	_, err := d.Conn.ExecContext(ctx, query, values...)
	if err != nil {
		return errors.Wrapf(err, "upserting %d rows into %s", len(rows), table)
	}
	return nil
}

// ExistingKeys reports which of the given natural keys already exist for a
// tenant, so the importer can classify a chunk into inserts and updates
// before upserting it.
func (d Datasource) ExistingKeys(ctx context.Context, table, tenantColumn, tenantID, keyColumn string, keys []string) (map[string]bool, error) {
	ctx, span := otel.Tracer("Imports").Start(ctx, "Prefetching existing keys")
	defer span.End()

	existing := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return existing, nil
	}
	allowed, ok := importTables[table]
	if !ok {
		return nil, errors.Errorf("unknown import table %q", table)
	}
	allowedSet := make(map[string]bool, len(allowed))
	for _, c := range allowed {
		allowedSet[c] = true
	}
	if !allowedSet[tenantColumn] || !allowedSet[keyColumn] {
		return nil, errors.Errorf("columns %q/%q not queryable on table %q", tenantColumn, keyColumn, table)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1 AND %s = ANY($2)",
		keyColumn, table, tenantColumn, keyColumn,
	)
	rows, err := d.Conn.QueryContext(ctx, query, tenantID, pq.Array(keys))
	if err != nil {
		return nil, errors.Wrapf(err, "querying existing keys on %s", table)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		existing[key] = true
	}
	return existing, rows.Err()
}
