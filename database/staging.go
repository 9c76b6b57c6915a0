package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/herdsync/herdsync/model"
)

// InsertStagingRows persists uploaded rows pending promotion. Raw and mapped
// payloads are stored as JSONB so the original upload survives schema changes.
func (d Datasource) InsertStagingRows(ctx context.Context, rows []*model.StagingRow) error {
	ctx, span := otel.Tracer("Staging").Start(ctx, "Saving staging rows to db")
	defer span.End()

	if len(rows) == 0 {
		return nil
	}
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning staging insert")
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO staging_rows(
			row_id, batch_id, entity, uploaded_by, row_number,
			raw_data, mapped_data, valid, errors
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	if err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "preparing staging insert")
	}
	defer stmt.Close()

	for _, row := range rows {
		rawJSON, err := json.Marshal(row.Raw)
		if err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "marshaling raw row %s", row.RowID)
		}
		mappedJSON, err := json.Marshal(row.Mapped)
		if err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "marshaling mapped row %s", row.RowID)
		}
		errsJSON, err := json.Marshal(row.Errors)
		if err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "marshaling errors for row %s", row.RowID)
		}
		_, err = stmt.ExecContext(ctx,
			row.RowID, row.BatchID, row.Entity, row.UploadedBy, row.RowNumber,
			rawJSON, mappedJSON, row.Valid, errsJSON,
		)
		if err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "inserting staging row %s", row.RowID)
		}
	}
	return tx.Commit()
}

// GetPendingStagingRows retrieves unimported rows for one entity type, ordered
// by batch and row number so promotion replays the upload order.
func (d Datasource) GetPendingStagingRows(ctx context.Context, entity string) ([]*model.StagingRow, error) {
	ctx, span := otel.Tracer("Staging").Start(ctx, "Fetching pending staging rows")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, row_id, batch_id, entity, uploaded_by, row_number,
			raw_data, mapped_data, valid, errors, created_at, imported_at
		FROM staging_rows
		WHERE entity = $1 AND imported_at IS NULL
		ORDER BY batch_id, row_number
	`, entity)
	if err != nil {
		return nil, errors.Wrapf(err, "querying pending staging rows for %s", entity)
	}
	defer rows.Close()

	var pending []*model.StagingRow
	for rows.Next() {
		row := &model.StagingRow{}
		var rawJSON, mappedJSON, errsJSON []byte
		var importedAt sql.NullTime
		err = rows.Scan(
			&row.ID, &row.RowID, &row.BatchID, &row.Entity, &row.UploadedBy,
			&row.RowNumber, &rawJSON, &mappedJSON, &row.Valid, &errsJSON,
			&row.CreatedAt, &importedAt,
		)
		if err != nil {
			return nil, err
		}
		if len(rawJSON) > 0 {
			if err := json.Unmarshal(rawJSON, &row.Raw); err != nil {
				return nil, errors.Wrapf(err, "decoding raw payload of row %s", row.RowID)
			}
		}
		if len(mappedJSON) > 0 {
			if err := json.Unmarshal(mappedJSON, &row.Mapped); err != nil {
				return nil, errors.Wrapf(err, "decoding mapped payload of row %s", row.RowID)
			}
		}
		if len(errsJSON) > 0 {
			if err := json.Unmarshal(errsJSON, &row.Errors); err != nil {
				return nil, errors.Wrapf(err, "decoding errors of row %s", row.RowID)
			}
		}
		if importedAt.Valid {
			t := importedAt.Time
			row.ImportedAt = &t
		}
		pending = append(pending, row)
	}
	return pending, rows.Err()
}

// MarkStagingRowImported stamps imported_at and records the row's error list.
// Rows are stamped whether or not promotion succeeded; reprocessing requires
// an explicit reset.
func (d Datasource) MarkStagingRowImported(ctx context.Context, rowID string, rowErrors []string) error {
	ctx, span := otel.Tracer("Staging").Start(ctx, "Marking staging row imported")
	defer span.End()

	errsJSON, err := json.Marshal(rowErrors)
	if err != nil {
		return errors.Wrapf(err, "marshaling errors for row %s", rowID)
	}
	_, err = d.Conn.ExecContext(ctx, `
		UPDATE staging_rows
		SET imported_at = $2, errors = $3, valid = $4
		WHERE row_id = $1
	`, rowID, time.Now(), errsJSON, len(rowErrors) == 0)
	return err
}

// ResetStagingRow clears imported_at so a corrected row becomes eligible for
// the next promotion run.
func (d Datasource) ResetStagingRow(ctx context.Context, rowID string) error {
	ctx, span := otel.Tracer("Staging").Start(ctx, "Resetting staging row")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE staging_rows SET imported_at = NULL, errors = NULL, valid = TRUE
		WHERE row_id = $1
	`, rowID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.Errorf("staging row %s not found", rowID)
	}
	return nil
}
