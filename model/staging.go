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
package model

import "time"

// Staging entity types, promoted in dependency order: farms reference profile
// owners and females reference farm ids.
const (
	StagingProfiles = "profiles"
	StagingFarms    = "farms"
	StagingFemales  = "females"
)

// StagingRow is a durable raw row awaiting promotion to production. Failed
// rows keep their error list and stay for manual correction; clearing
// ImportedAt makes a row eligible for reprocessing.
type StagingRow struct {
	ID         int64                  `json:"-"`
	RowID      string                 `json:"row_id"`
	BatchID    string                 `json:"batch_id"`
	Entity     string                 `json:"entity"`
	UploadedBy string                 `json:"uploaded_by"`
	RowNumber  int                    `json:"row_number"`
	Raw        map[string]interface{} `json:"raw"`
	Mapped     map[string]interface{} `json:"mapped,omitempty"`
	Valid      bool                   `json:"valid"`
	Errors     []string               `json:"errors,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	ImportedAt *time.Time             `json:"imported_at,omitempty"`
}

// PromotionEntityResult is one entity type's outcome of a staging promotion
// run.
type PromotionEntityResult struct {
	Entity         string `json:"entity"`
	Inserted       int    `json:"inserted"`
	Updated        int    `json:"updated"`
	Errors         int    `json:"errors"`
	FallbackOwners int    `json:"fallback_owners,omitempty"`
}

// ProfileCredential carries the generated login for a profile created during
// promotion. Returned once and never persisted in clear.
type ProfileCredential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PromotionSummary aggregates one full promotion run across all entity types.
type PromotionSummary struct {
	Results     []PromotionEntityResult `json:"results"`
	Credentials []ProfileCredential     `json:"credentials,omitempty"`
}
