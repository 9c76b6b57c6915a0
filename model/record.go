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

// Record is one normalized row shaped for the target table: canonical keys
// mapped to coerced values (string, float64 or ISO-8601 date string).
type Record map[string]interface{}

// ImportBatchResult is one chunk's outcome. When Error is set the chunk's
// upsert failed as a whole and Inserted/Updated are zero.
type ImportBatchResult struct {
	Batch    int    `json:"batch"`
	Total    int    `json:"total"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
	Error    string `json:"error,omitempty"`
}

// ImportBatchError annotates a failed chunk for the response error list.
type ImportBatchError struct {
	Batch   int    `json:"batch"`
	Status  int    `json:"status,omitempty"`
	Message string `json:"message"`
}

// ImportSummary is the aggregate import response. Batches are ordered by
// batch index regardless of worker completion order.
type ImportSummary struct {
	TotalReceived  int                 `json:"total_received"`
	TotalProcessed int                 `json:"total_processed"`
	BatchCount     int                 `json:"batch_count"`
	ChunkSize      int                 `json:"chunk_size"`
	Inserted       int                 `json:"inserted"`
	Updated        int                 `json:"updated"`
	Batches        []ImportBatchResult `json:"batches"`
	Errors         []ImportBatchError  `json:"errors"`
}
