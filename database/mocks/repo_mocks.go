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
package mocks

import (
	"context"

	"github.com/herdsync/herdsync/model"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Import methods

func (m *MockDataSource) UpsertRows(ctx context.Context, table string, conflictColumns []string, rows []model.Record) error {
	args := m.Called(ctx, table, conflictColumns, rows)
	return args.Error(0)
}

func (m *MockDataSource) ExistingKeys(ctx context.Context, table, tenantColumn, tenantID, keyColumn string, keys []string) (map[string]bool, error) {
	args := m.Called(ctx, table, tenantColumn, tenantID, keyColumn, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

// Staging methods

func (m *MockDataSource) InsertStagingRows(ctx context.Context, rows []*model.StagingRow) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockDataSource) GetPendingStagingRows(ctx context.Context, entity string) ([]*model.StagingRow, error) {
	args := m.Called(ctx, entity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.StagingRow), args.Error(1)
}

func (m *MockDataSource) MarkStagingRowImported(ctx context.Context, rowID string, rowErrors []string) error {
	args := m.Called(ctx, rowID, rowErrors)
	return args.Error(0)
}

func (m *MockDataSource) ResetStagingRow(ctx context.Context, rowID string) error {
	args := m.Called(ctx, rowID)
	return args.Error(0)
}

// Profile methods

func (m *MockDataSource) CreateProfile(ctx context.Context, profile model.Profile) (model.Profile, error) {
	args := m.Called(ctx, profile)
	return args.Get(0).(model.Profile), args.Error(1)
}

func (m *MockDataSource) GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockDataSource) GetAllProfiles(ctx context.Context) ([]model.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Profile), args.Error(1)
}

// Farm methods

func (m *MockDataSource) CreateFarm(ctx context.Context, farm model.Farm) (model.Farm, error) {
	args := m.Called(ctx, farm)
	return args.Get(0).(model.Farm), args.Error(1)
}

func (m *MockDataSource) GetFarmByRawID(ctx context.Context, rawID string) (*model.Farm, error) {
	args := m.Called(ctx, rawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Farm), args.Error(1)
}

func (m *MockDataSource) UpdateFarm(ctx context.Context, farm *model.Farm) error {
	args := m.Called(ctx, farm)
	return args.Error(0)
}
