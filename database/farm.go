package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/herdsync/herdsync/model"
)

// CreateFarm inserts a new farm into the database
func (d Datasource) CreateFarm(ctx context.Context, farm model.Farm) (model.Farm, error) {
	ctx, span := otel.Tracer("Farm").Start(ctx, "Saving farm to db")
	defer span.End()

	farm.FarmID = model.GenerateUUIDWithSuffix("frm")
	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO farms (farm_id, owner_id, name, raw_id)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING created_at
	`, farm.FarmID, farm.OwnerID, farm.Name, farm.RawID).Scan(&farm.CreatedAt)
	if err != nil {
		return model.Farm{}, errors.Wrapf(err, "creating farm %q", farm.Name)
	}
	return farm, nil
}

// GetFarmByRawID retrieves a farm by its source-system id, or nil when none
// exists
func (d Datasource) GetFarmByRawID(ctx context.Context, rawID string) (*model.Farm, error) {
	ctx, span := otel.Tracer("Farm").Start(ctx, "Fetching farm by raw id")
	defer span.End()

	farm := &model.Farm{}
	var raw sql.NullString
	err := d.Conn.QueryRowContext(ctx, `
		SELECT farm_id, owner_id, name, raw_id, created_at
		FROM farms WHERE raw_id = $1
	`, rawID).Scan(&farm.FarmID, &farm.OwnerID, &farm.Name, &raw, &farm.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	farm.RawID = raw.String
	return farm, nil
}

// UpdateFarm updates a farm's owner and name
func (d Datasource) UpdateFarm(ctx context.Context, farm *model.Farm) error {
	ctx, span := otel.Tracer("Farm").Start(ctx, "Updating farm")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE farms SET owner_id = $2, name = $3 WHERE farm_id = $1
	`, farm.FarmID, farm.OwnerID, farm.Name)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.Errorf("farm %s not found", farm.FarmID)
	}
	return nil
}
