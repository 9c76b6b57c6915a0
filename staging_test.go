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

package herdsync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/herdsync/herdsync/model"
)

func TestStageUpload(t *testing.T) {
	service, datasource := newTestHerdsync(t)

	var staged []*model.StagingRow
	datasource.On("InsertStagingRows", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			staged = args.Get(1).([]*model.StagingRow)
		}).Return(nil)

	batchID, err := service.StageUpload(context.Background(), model.StagingFemales, "ops@herdsync.io", []StagedRowInput{
		{Raw: map[string]interface{}{"Brinco": "BR-1"}, Mapped: model.Record{"identifier": "BR-1"}},
		{Raw: map[string]interface{}{"Brinco": ""}, Errors: []string{"missing identifier"}},
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, batchID)
	assert.Len(t, staged, 2)
	assert.Equal(t, batchID, staged[0].BatchID)
	assert.Equal(t, 1, staged[0].RowNumber)
	assert.True(t, staged[0].Valid)
	assert.Equal(t, 2, staged[1].RowNumber)
	assert.False(t, staged[1].Valid)
}

func TestStageUploadRejectsUnknownEntity(t *testing.T) {
	service, _ := newTestHerdsync(t)

	_, err := service.StageUpload(context.Background(), "tractors", "", []StagedRowInput{{}})
	assert.Error(t, err)
}

func TestPromoteStagingProfiles(t *testing.T) {
	service, datasource := newTestHerdsync(t)

	pending := []*model.StagingRow{
		{RowID: "stg_1", Mapped: map[string]interface{}{"email": "Ana@Farm.io", "name": "Ana"}},
		{RowID: "stg_2", Mapped: map[string]interface{}{"email": "bruno@farm.io", "name": "Bruno"}},
		{RowID: "stg_3", Mapped: map[string]interface{}{"name": "No Email"}},
	}
	datasource.On("GetPendingStagingRows", mock.Anything, model.StagingProfiles).Return(pending, nil)
	datasource.On("GetPendingStagingRows", mock.Anything, model.StagingFarms).Return([]*model.StagingRow{}, nil)
	datasource.On("GetPendingStagingRows", mock.Anything, model.StagingFemales).Return([]*model.StagingRow{}, nil)

	datasource.On("GetProfileByEmail", mock.Anything, "ana@farm.io").Return(nil, nil)
	datasource.On("GetProfileByEmail", mock.Anything, "bruno@farm.io").
		Return(&model.Profile{ProfileID: "prf_b", Email: "bruno@farm.io"}, nil)
	datasource.On("CreateProfile", mock.Anything, mock.MatchedBy(func(p model.Profile) bool {
		return p.Email == "ana@farm.io"
	})).Return(model.Profile{ProfileID: "prf_a", Email: "ana@farm.io"}, nil)

	datasource.On("MarkStagingRowImported", mock.Anything, "stg_1", mock.Anything).Return(nil)
	datasource.On("MarkStagingRowImported", mock.Anything, "stg_2", mock.Anything).Return(nil)
	datasource.On("MarkStagingRowImported", mock.Anything, "stg_3", mock.MatchedBy(func(errs []string) bool {
		return len(errs) == 1
	})).Return(nil)

	summary, err := service.PromoteStaging(context.Background())
	assert.NoError(t, err)

	profiles := summary.Results[0]
	assert.Equal(t, model.StagingProfiles, profiles.Entity)
	assert.Equal(t, 1, profiles.Inserted)
	assert.Equal(t, 1, profiles.Updated)
	assert.Equal(t, 1, profiles.Errors)

	// Only the created profile gets credentials.
	assert.Len(t, summary.Credentials, 1)
	assert.Equal(t, "ana@farm.io", summary.Credentials[0].Email)
	assert.NotEmpty(t, summary.Credentials[0].Password)

	// Every row is stamped, including the failed one.
	datasource.AssertNumberOfCalls(t, "MarkStagingRowImported", 3)
}

func TestPromoteStagingFarmOwnerResolution(t *testing.T) {
	service, datasource := newTestHerdsync(t)

	profiles := []model.Profile{
		{ProfileID: "prf_1", Email: "ana@farm.io", Name: "Ana Souza"},
		{ProfileID: "prf_2", Email: "bruno@farm.io", Name: "Bruno Lima"},
	}
	pending := []*model.StagingRow{
		// Exact email match.
		{RowID: "stg_1", Mapped: map[string]interface{}{"name": "Santa Clara", "raw_id": "F1", "owner_email": "BRUNO@farm.io"}},
		// Fuzzy name match (typo).
		{RowID: "stg_2", Mapped: map[string]interface{}{"name": "Boa Vista", "raw_id": "F2", "owner_name": "Ana Sousa"}},
		// No match at all: falls back to the first profile.
		{RowID: "stg_3", Mapped: map[string]interface{}{"name": "Recanto", "raw_id": "F3", "owner_email": "nobody@farm.io", "owner_name": "Zzz"}},
	}

	datasource.On("GetPendingStagingRows", mock.Anything, model.StagingProfiles).Return([]*model.StagingRow{}, nil)
	datasource.On("GetPendingStagingRows", mock.Anything, model.StagingFarms).Return(pending, nil)
	datasource.On("GetPendingStagingRows", mock.Anything, model.StagingFemales).Return([]*model.StagingRow{}, nil)
	datasource.On("GetAllProfiles", mock.Anything).Return(profiles, nil)

	datasource.On("GetFarmByRawID", mock.Anything, mock.Anything).Return(nil, nil)
	datasource.On("CreateFarm", mock.Anything, mock.MatchedBy(func(f model.Farm) bool {
		return f.OwnerID == "prf_2" && f.Name == "Santa Clara"
	})).Return(model.Farm{FarmID: "frm_1"}, nil).Once()
	datasource.On("CreateFarm", mock.Anything, mock.MatchedBy(func(f model.Farm) bool {
		return f.OwnerID == "prf_1" && f.Name == "Boa Vista"
	})).Return(model.Farm{FarmID: "frm_2"}, nil).Once()
	datasource.On("CreateFarm", mock.Anything, mock.MatchedBy(func(f model.Farm) bool {
		return f.OwnerID == "prf_1" && f.Name == "Recanto"
	})).Return(model.Farm{FarmID: "frm_3"}, nil).Once()
	datasource.On("MarkStagingRowImported", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	summary, err := service.PromoteStaging(context.Background())
	assert.NoError(t, err)

	farms := summary.Results[1]
	assert.Equal(t, 3, farms.Inserted)
	assert.Equal(t, 0, farms.Errors)
	assert.Equal(t, 1, farms.FallbackOwners, "only the unresolvable owner counts as fallback")
	datasource.AssertExpectations(t)
}

func TestPromoteStagingFarmUpdateExisting(t *testing.T) {
	service, datasource := newTestHerdsync(t)

	pending := []*model.StagingRow{
		{RowID: "stg_1", Mapped: map[string]interface{}{"name": "Santa Clara II", "raw_id": "F1", "owner_email": "ana@farm.io"}},
	}
	datasource.On("GetPendingStagingRows", mock.Anything, model.StagingProfiles).Return([]*model.StagingRow{}, nil)
	datasource.On("GetPendingStagingRows", mock.Anything, model.StagingFarms).Return(pending, nil)
	datasource.On("GetPendingStagingRows", mock.Anything, model.StagingFemales).Return([]*model.StagingRow{}, nil)
	datasource.On("GetAllProfiles", mock.Anything).
		Return([]model.Profile{{ProfileID: "prf_1", Email: "ana@farm.io"}}, nil)
	datasource.On("GetFarmByRawID", mock.Anything, "F1").
		Return(&model.Farm{FarmID: "frm_1", OwnerID: "prf_old", Name: "Santa Clara", RawID: "F1"}, nil)
	datasource.On("UpdateFarm", mock.Anything, mock.MatchedBy(func(f *model.Farm) bool {
		return f.FarmID == "frm_1" && f.OwnerID == "prf_1" && f.Name == "Santa Clara II"
	})).Return(nil)
	datasource.On("MarkStagingRowImported", mock.Anything, "stg_1", mock.Anything).Return(nil)

	summary, err := service.PromoteStaging(context.Background())
	assert.NoError(t, err)

	farms := summary.Results[1]
	assert.Equal(t, 0, farms.Inserted)
	assert.Equal(t, 1, farms.Updated)
	datasource.AssertExpectations(t)
}

func TestPromoteStagingFemales(t *testing.T) {
	service, datasource := newTestHerdsync(t)

	pending := []*model.StagingRow{
		{RowID: "stg_1", BatchID: "batch_1", Mapped: map[string]interface{}{
			"farm_raw_id": "F1", "identifier": "BR-1", "ptam": 500.0,
		}},
		{RowID: "stg_2", BatchID: "batch_1", Mapped: map[string]interface{}{
			"farm_raw_id": "F1", "identifier": "BR-2",
		}},
		{RowID: "stg_3", BatchID: "batch_1", Mapped: map[string]interface{}{
			"farm_raw_id": "MISSING", "identifier": "BR-3",
		}},
	}
	datasource.On("GetPendingStagingRows", mock.Anything, model.StagingProfiles).Return([]*model.StagingRow{}, nil)
	datasource.On("GetPendingStagingRows", mock.Anything, model.StagingFarms).Return([]*model.StagingRow{}, nil)
	datasource.On("GetPendingStagingRows", mock.Anything, model.StagingFemales).Return(pending, nil)

	// The farm is looked up once and cached for the batch.
	datasource.On("GetFarmByRawID", mock.Anything, "F1").
		Return(&model.Farm{FarmID: "frm_1", RawID: "F1"}, nil).Once()
	datasource.On("GetFarmByRawID", mock.Anything, "MISSING").Return(nil, nil)

	datasource.On("ExistingKeys", mock.Anything, "females", "farm_id", "frm_1", "identifier", []string{"BR-1"}).
		Return(map[string]bool{"BR-1": true}, nil)
	datasource.On("ExistingKeys", mock.Anything, "females", "farm_id", "frm_1", "identifier", []string{"BR-2"}).
		Return(map[string]bool{}, nil)
	datasource.On("UpsertRows", mock.Anything, "females", []string{"farm_id", "identifier"}, mock.MatchedBy(func(rows []model.Record) bool {
		return len(rows) == 1 && rows[0]["farm_id"] == "frm_1" && rows[0]["import_batch_id"] == "batch_1"
	})).Return(nil)
	datasource.On("MarkStagingRowImported", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	summary, err := service.PromoteStaging(context.Background())
	assert.NoError(t, err)

	females := summary.Results[2]
	assert.Equal(t, 1, females.Inserted)
	assert.Equal(t, 1, females.Updated)
	assert.Equal(t, 1, females.Errors)
	datasource.AssertExpectations(t)
}

func TestNameMatches(t *testing.T) {
	assert.True(t, nameMatches("Ana Souza", "ana sousa", ownerNameDrift))
	assert.True(t, nameMatches("Ana Souza", "Souza", ownerNameDrift))
	assert.False(t, nameMatches("Ana Souza", "Bruno Lima", ownerNameDrift))
	assert.False(t, nameMatches("", "Ana", ownerNameDrift))
}
