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

// Package herdsync implements the import and standardization core of a
// dairy-cattle genetic-management platform: mapping arbitrary spreadsheet
// columns onto a canonical trait schema, normalizing rows (units, locales,
// dates), batch-upserting them against the herd store, and promoting staged
// uploads into production tables.
package herdsync

import (
	"github.com/herdsync/herdsync/config"
	"github.com/herdsync/herdsync/database"
)

// Herdsync is the service root, wiring the datasource into the import,
// mapping and staging pipelines.
type Herdsync struct {
	datasource database.IDataSource
	cnf        *config.Configuration
}

// NewHerdsync initializes the service with the provided datasource and the
// loaded configuration.
func NewHerdsync(db database.IDataSource) (*Herdsync, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	return &Herdsync{datasource: db, cnf: configuration}, nil
}
