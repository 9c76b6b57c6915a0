/*
Copyright 2024 Herdsync Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"

	"github.com/herdsync/herdsync/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	imports // Interface for bulk row import operations
	staging // Interface for staging-row operations
	profile // Interface for profile-related operations
	farm    // Interface for farm-related operations
}

// imports defines methods for bulk upserts into the animal tables.
type imports interface {
	UpsertRows(ctx context.Context, table string, conflictColumns []string, rows []model.Record) error   // Upserts a chunk of normalized rows
	ExistingKeys(ctx context.Context, table, tenantColumn, tenantID, keyColumn string, keys []string) (map[string]bool, error) // Returns which natural keys already exist for a tenant
}

// staging defines methods for the durable staging-row store.
type staging interface {
	InsertStagingRows(ctx context.Context, rows []*model.StagingRow) error                  // Persists uploaded rows pending promotion
	GetPendingStagingRows(ctx context.Context, entity string) ([]*model.StagingRow, error)  // Retrieves unimported rows for one entity, in row order
	MarkStagingRowImported(ctx context.Context, rowID string, rowErrors []string) error     // Stamps imported_at and records row errors
	ResetStagingRow(ctx context.Context, rowID string) error                                // Clears imported_at for explicit reprocessing
}

// profile defines methods for handling farm-owner profiles.
type profile interface {
	CreateProfile(ctx context.Context, profile model.Profile) (model.Profile, error) // Creates a new profile
	GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error)     // Retrieves a profile by email
	GetAllProfiles(ctx context.Context) ([]model.Profile, error)                     // Retrieves all profiles
}

// farm defines methods for handling farms.
type farm interface {
	CreateFarm(ctx context.Context, farm model.Farm) (model.Farm, error) // Creates a new farm
	GetFarmByRawID(ctx context.Context, rawID string) (*model.Farm, error) // Retrieves a farm by its source-system id
	UpdateFarm(ctx context.Context, farm *model.Farm) error              // Updates a farm's owner and name
}
