package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/herdsync/herdsync/model"
)

// CreateProfile inserts a new farm-owner profile into the database
func (d Datasource) CreateProfile(ctx context.Context, profile model.Profile) (model.Profile, error) {
	ctx, span := otel.Tracer("Profile").Start(ctx, "Saving profile to db")
	defer span.End()

	profile.ProfileID = model.GenerateUUIDWithSuffix("prf")
	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO profiles (profile_id, email, name)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, profile.ProfileID, profile.Email, profile.Name).Scan(&profile.CreatedAt)
	if err != nil {
		return model.Profile{}, errors.Wrapf(err, "creating profile for %s", profile.Email)
	}
	return profile, nil
}

// GetProfileByEmail retrieves a profile by email, or nil when none exists
func (d Datasource) GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	ctx, span := otel.Tracer("Profile").Start(ctx, "Fetching profile by email")
	defer span.End()

	profile := &model.Profile{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT profile_id, email, name, created_at
		FROM profiles WHERE email = $1
	`, email).Scan(&profile.ProfileID, &profile.Email, &profile.Name, &profile.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// GetAllProfiles retrieves all profiles in creation order
func (d Datasource) GetAllProfiles(ctx context.Context) ([]model.Profile, error) {
	ctx, span := otel.Tracer("Profile").Start(ctx, "Fetching all profiles")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT profile_id, email, name, created_at
		FROM profiles ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.ProfileID, &p.Email, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
