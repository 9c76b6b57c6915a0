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
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/herdsync/herdsync/internal/apierror"
	"github.com/herdsync/herdsync/model"
)

// ImportRequest is one bulk upload destined for a single animal table.
// ConflictColumns name the upsert key; when they are exactly (farm_id,
// identity column) the importer classifies rows into inserts and updates
// before writing.
type ImportRequest struct {
	FarmID          string         `json:"farm_id"`
	Table           string         `json:"table"`
	ConflictColumns []string       `json:"conflict_columns"`
	Rows            []model.Record `json:"rows"`
}

// identityColumns maps each import table to its natural-key column within a
// farm.
var identityColumns = map[string]string{
	"bulls":   "naab_code",
	"females": "identifier",
}

// HandleImport validates, chunks and upserts one upload. Rows are split into
// fixed-size chunks processed by a small worker pool; a failed chunk becomes
// an error entry without affecting its siblings, so the caller always gets a
// full per-batch accounting.
func (h *Herdsync) HandleImport(ctx context.Context, req *ImportRequest) (*model.ImportSummary, error) {
	if h.datasource == nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "datasource is not configured", nil)
	}
	if req == nil {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "request payload is required", nil)
	}
	if req.FarmID == "" {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "farm_id is required", nil)
	}
	if _, ok := identityColumns[req.Table]; !ok {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, fmt.Sprintf("unknown import table %q", req.Table), nil)
	}
	if req.Rows == nil {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "rows must be an array", nil)
	}

	chunkSize := h.cnf.Import.ChunkSize
	workers := h.cnf.Import.Workers
	maxRows := h.cnf.Import.MaxRows

	if len(req.Rows) > maxRows {
		return nil, apierror.NewAPIError(
			apierror.ErrBadRequest,
			fmt.Sprintf("%d rows exceed the %d-row limit, split the file and import in parts", len(req.Rows), maxRows),
			nil,
		)
	}

	summary := &model.ImportSummary{
		TotalReceived: len(req.Rows),
		ChunkSize:     chunkSize,
		Batches:       []model.ImportBatchResult{},
		Errors:        []model.ImportBatchError{},
	}
	if len(req.Rows) == 0 {
		return summary, nil
	}

	// The farm scope is stamped server-side so rows cannot cross tenants.
	for i, row := range req.Rows {
		if row == nil {
			return nil, apierror.NewAPIError(apierror.ErrBadRequest, fmt.Sprintf("row %d is null", i+1), nil)
		}
		row["farm_id"] = req.FarmID
	}

	chunks := chunkRecords(req.Rows, chunkSize)
	results := make([]model.ImportBatchResult, len(chunks))
	summary.BatchCount = len(chunks)

	if workers > len(chunks) {
		workers = len(chunks)
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= len(chunks) {
					return
				}
				results[i] = h.processChunk(ctx, req, i+1, chunks[i])
			}
		}()
	}
	wg.Wait()

	for _, r := range results {
		summary.Batches = append(summary.Batches, r)
		summary.Inserted += r.Inserted
		summary.Updated += r.Updated
		summary.TotalProcessed += r.Inserted + r.Updated
		if r.Error != "" {
			summary.Errors = append(summary.Errors, model.ImportBatchError{
				Batch:   r.Batch,
				Message: r.Error,
			})
		}
	}
	return summary, nil
}

// processChunk upserts one chunk and classifies its rows. Classification is
// best-effort: a failed prefetch degrades to all-insert reporting rather than
// failing the chunk.
func (h *Herdsync) processChunk(ctx context.Context, req *ImportRequest, batch int, rows []model.Record) model.ImportBatchResult {
	result := model.ImportBatchResult{Batch: batch, Total: len(rows)}

	writeRows := rows
	inserted, updated := len(rows), 0
	if keyColumn, ok := classifiableConflict(req.Table, req.ConflictColumns); ok {
		writeRows = dedupeByKey(rows, keyColumn)
		// Rows suppressed by the dedupe still reach their conflict target
		// through the surviving occurrence, so they count as updates and the
		// batch total keeps covering every received row.
		duplicates := len(rows) - len(writeRows)
		inserted = len(writeRows)
		updated = duplicates

		keys := make([]string, 0, len(writeRows))
		for _, row := range writeRows {
			if key, ok := row[keyColumn].(string); ok && key != "" {
				keys = append(keys, key)
			}
		}
		existing, err := h.datasource.ExistingKeys(ctx, req.Table, "farm_id", req.FarmID, keyColumn, keys)
		if err != nil {
			logrus.Warnf("existing-key prefetch failed for %s batch %d, reporting all rows as inserts: %v", req.Table, batch, err)
		} else {
			for _, key := range keys {
				if existing[key] {
					updated++
				}
			}
			inserted = len(rows) - updated
		}
	}

	if err := h.datasource.UpsertRows(ctx, req.Table, req.ConflictColumns, writeRows); err != nil {
		logrus.Warnf("import batch %d failed for %s: %v", batch, req.Table, err)
		result.Error = err.Error()
		return result
	}
	result.Inserted = inserted
	result.Updated = updated
	return result
}

// classifiableConflict reports whether the conflict key is exactly the farm
// scope plus the table's identity column, the only shape where insert/update
// classification is well defined.
func classifiableConflict(table string, conflictColumns []string) (string, bool) {
	keyColumn := identityColumns[table]
	if len(conflictColumns) != 2 {
		return "", false
	}
	a, b := conflictColumns[0], conflictColumns[1]
	if (a == "farm_id" && b == keyColumn) || (a == keyColumn && b == "farm_id") {
		return keyColumn, true
	}
	return "", false
}

// dedupeByKey keeps the last occurrence of each natural key so a chunk never
// feeds the same conflict target twice in one statement. Rows without a key
// pass through untouched.
func dedupeByKey(rows []model.Record, keyColumn string) []model.Record {
	last := make(map[string]int, len(rows))
	for i, row := range rows {
		if key, ok := row[keyColumn].(string); ok && key != "" {
			last[key] = i
		}
	}
	out := make([]model.Record, 0, len(rows))
	for i, row := range rows {
		if key, ok := row[keyColumn].(string); ok && key != "" {
			if last[key] != i {
				continue
			}
		}
		out = append(out, row)
	}
	return out
}

func chunkRecords(rows []model.Record, size int) [][]model.Record {
	chunks := make([][]model.Record, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}
