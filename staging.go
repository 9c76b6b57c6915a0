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
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/herdsync/herdsync/internal/apierror"
	"github.com/herdsync/herdsync/model"
)

// ownerNameDrift is the allowable Levenshtein distance for fuzzy owner-name
// resolution, as a percentage of the longer name's length.
const ownerNameDrift = 30.0

// StagedRowInput is one uploaded row headed for the staging store: the
// original cells as uploaded plus the normalized payload and any validation
// errors found during mapping.
type StagedRowInput struct {
	Raw    map[string]interface{} `json:"raw"`
	Mapped model.Record           `json:"mapped"`
	Errors []string               `json:"errors,omitempty"`
}

// StageUpload persists an upload into the staging store under a fresh batch
// id. Rows keep their upload order; invalid rows are staged too, flagged, so
// operators can inspect and correct them before promotion.
func (h *Herdsync) StageUpload(ctx context.Context, entity, uploadedBy string, rows []StagedRowInput) (string, error) {
	if h.datasource == nil {
		return "", apierror.NewAPIError(apierror.ErrInternalServer, "datasource is not configured", nil)
	}
	switch entity {
	case model.StagingProfiles, model.StagingFarms, model.StagingFemales:
	default:
		return "", apierror.NewAPIError(apierror.ErrBadRequest, "unknown staging entity "+entity, nil)
	}
	if len(rows) == 0 {
		return "", apierror.NewAPIError(apierror.ErrBadRequest, "upload contains no rows", nil)
	}

	batchID := model.GenerateUUIDWithSuffix("batch")
	staged := make([]*model.StagingRow, 0, len(rows))
	for i, row := range rows {
		staged = append(staged, &model.StagingRow{
			RowID:      model.GenerateUUIDWithSuffix("stg"),
			BatchID:    batchID,
			Entity:     entity,
			UploadedBy: uploadedBy,
			RowNumber:  i + 1,
			Raw:        row.Raw,
			Mapped:     row.Mapped,
			Valid:      len(row.Errors) == 0,
			Errors:     row.Errors,
		})
	}
	if err := h.datasource.InsertStagingRows(ctx, staged); err != nil {
		return "", err
	}
	return batchID, nil
}

// PromoteStaging processes every pending staging row in dependency order:
// profiles first, then the farms that reference them, then the females that
// reference the farms. Each row gets exactly one attempt; it is stamped
// imported whether it succeeded or failed, and failed rows carry their error
// list for manual correction and an explicit reset.
func (h *Herdsync) PromoteStaging(ctx context.Context) (*model.PromotionSummary, error) {
	if h.datasource == nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "datasource is not configured", nil)
	}

	summary := &model.PromotionSummary{}

	profileResult, credentials, err := h.promoteProfiles(ctx)
	if err != nil {
		return nil, err
	}
	summary.Results = append(summary.Results, *profileResult)
	summary.Credentials = credentials

	// Farm raw ids resolved in this run, so females uploaded together with
	// their farm do not need a second lookup.
	farmIDs := make(map[string]string)

	farmResult, err := h.promoteFarms(ctx, farmIDs)
	if err != nil {
		return nil, err
	}
	summary.Results = append(summary.Results, *farmResult)

	femaleResult, err := h.promoteFemales(ctx, farmIDs)
	if err != nil {
		return nil, err
	}
	summary.Results = append(summary.Results, *femaleResult)

	return summary, nil
}

func (h *Herdsync) promoteProfiles(ctx context.Context) (*model.PromotionEntityResult, []model.ProfileCredential, error) {
	result := &model.PromotionEntityResult{Entity: model.StagingProfiles}
	var credentials []model.ProfileCredential

	pending, err := h.datasource.GetPendingStagingRows(ctx, model.StagingProfiles)
	if err != nil {
		return nil, nil, err
	}

	for _, row := range pending {
		email := strings.ToLower(strings.TrimSpace(mappedString(row, "email")))
		name := mappedString(row, "name")

		var rowErrors []string
		switch {
		case email == "":
			rowErrors = append(rowErrors, "profile row has no email")
		default:
			existing, err := h.datasource.GetProfileByEmail(ctx, email)
			if err != nil {
				rowErrors = append(rowErrors, err.Error())
				break
			}
			if existing != nil {
				result.Updated++
				break
			}
			_, err = h.datasource.CreateProfile(ctx, model.Profile{Email: email, Name: name})
			if err != nil {
				rowErrors = append(rowErrors, err.Error())
				break
			}
			credentials = append(credentials, model.ProfileCredential{
				Email:    email,
				Password: generatePassword(),
			})
			result.Inserted++
		}

		if len(rowErrors) > 0 {
			result.Errors++
		}
		if err := h.datasource.MarkStagingRowImported(ctx, row.RowID, rowErrors); err != nil {
			return nil, nil, err
		}
	}
	return result, credentials, nil
}

func (h *Herdsync) promoteFarms(ctx context.Context, farmIDs map[string]string) (*model.PromotionEntityResult, error) {
	result := &model.PromotionEntityResult{Entity: model.StagingFarms}

	pending, err := h.datasource.GetPendingStagingRows(ctx, model.StagingFarms)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return result, nil
	}

	profiles, err := h.datasource.GetAllProfiles(ctx)
	if err != nil {
		return nil, err
	}

	for _, row := range pending {
		name := mappedString(row, "name")
		rawID := mappedString(row, "raw_id")
		ownerEmail := strings.ToLower(strings.TrimSpace(mappedString(row, "owner_email")))
		ownerName := mappedString(row, "owner_name")

		var rowErrors []string
		owner, fallback := resolveOwner(profiles, ownerEmail, ownerName)
		switch {
		case owner == nil:
			rowErrors = append(rowErrors, "no profile available to own farm "+name)
		default:
			if fallback {
				logrus.Warnf("farm %q (raw id %q): owner %q/%q not resolved, assigned to %s",
					name, rawID, ownerEmail, ownerName, owner.Email)
				result.FallbackOwners++
			}
			farm, err := h.lookupFarm(ctx, farmIDs, rawID)
			if err != nil {
				rowErrors = append(rowErrors, err.Error())
				break
			}
			if farm != nil {
				farm.OwnerID = owner.ProfileID
				if name != "" {
					farm.Name = name
				}
				if err := h.datasource.UpdateFarm(ctx, farm); err != nil {
					rowErrors = append(rowErrors, err.Error())
					break
				}
				if rawID != "" {
					farmIDs[rawID] = farm.FarmID
				}
				result.Updated++
				break
			}
			created, err := h.datasource.CreateFarm(ctx, model.Farm{
				OwnerID: owner.ProfileID,
				Name:    name,
				RawID:   rawID,
			})
			if err != nil {
				rowErrors = append(rowErrors, err.Error())
				break
			}
			if rawID != "" {
				farmIDs[rawID] = created.FarmID
			}
			result.Inserted++
		}

		if len(rowErrors) > 0 {
			result.Errors++
		}
		if err := h.datasource.MarkStagingRowImported(ctx, row.RowID, rowErrors); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (h *Herdsync) promoteFemales(ctx context.Context, farmIDs map[string]string) (*model.PromotionEntityResult, error) {
	result := &model.PromotionEntityResult{Entity: model.StagingFemales}

	pending, err := h.datasource.GetPendingStagingRows(ctx, model.StagingFemales)
	if err != nil {
		return nil, err
	}

	for _, row := range pending {
		farmRawID := mappedString(row, "farm_raw_id")
		identifier := mappedString(row, "identifier")

		var rowErrors []string
		switch {
		case identifier == "":
			rowErrors = append(rowErrors, "female row has no identifier")
		case farmRawID == "":
			rowErrors = append(rowErrors, "female row references no farm")
		default:
			farmID, ok := farmIDs[farmRawID]
			if !ok {
				farm, err := h.datasource.GetFarmByRawID(ctx, farmRawID)
				if err != nil {
					rowErrors = append(rowErrors, err.Error())
					break
				}
				if farm == nil {
					rowErrors = append(rowErrors, "farm with raw id "+farmRawID+" not found")
					break
				}
				farmID = farm.FarmID
				farmIDs[farmRawID] = farmID
			}

			record := femaleRecord(row, farmID, identifier)
			existing, err := h.datasource.ExistingKeys(ctx, "females", "farm_id", farmID, "identifier", []string{identifier})
			if err != nil {
				rowErrors = append(rowErrors, err.Error())
				break
			}
			err = h.datasource.UpsertRows(ctx, "females", []string{"farm_id", "identifier"}, []model.Record{record})
			if err != nil {
				rowErrors = append(rowErrors, err.Error())
				break
			}
			if existing[identifier] {
				result.Updated++
			} else {
				result.Inserted++
			}
		}

		if len(rowErrors) > 0 {
			result.Errors++
		}
		if err := h.datasource.MarkStagingRowImported(ctx, row.RowID, rowErrors); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (h *Herdsync) lookupFarm(ctx context.Context, farmIDs map[string]string, rawID string) (*model.Farm, error) {
	if rawID == "" {
		return nil, nil
	}
	if farmID, ok := farmIDs[rawID]; ok {
		return &model.Farm{FarmID: farmID, RawID: rawID}, nil
	}
	return h.datasource.GetFarmByRawID(ctx, rawID)
}

// resolveOwner finds the profile a farm row belongs to: exact email match
// first, then a fuzzy name match, and finally the first available profile.
// The second return value reports whether the fallback was taken.
func resolveOwner(profiles []model.Profile, email, name string) (*model.Profile, bool) {
	if email != "" {
		for i := range profiles {
			if strings.EqualFold(profiles[i].Email, email) {
				return &profiles[i], false
			}
		}
	}
	if name != "" {
		for i := range profiles {
			if nameMatches(profiles[i].Name, name, ownerNameDrift) {
				return &profiles[i], false
			}
		}
	}
	if len(profiles) > 0 {
		return &profiles[0], true
	}
	return nil, false
}

// nameMatches determines whether two names refer to the same person, allowing
// for minor spelling differences within the given drift percentage.
func nameMatches(str1, str2 string, allowableDrift float64) bool {
	str1 = strings.ToLower(strings.TrimSpace(str1))
	str2 = strings.ToLower(strings.TrimSpace(str2))
	if str1 == "" || str2 == "" {
		return false
	}

	// Check if either string contains the other.
	if strings.Contains(str1, str2) || strings.Contains(str2, str1) {
		return true
	}

	distance := levenshtein.DistanceForStrings([]rune(str1), []rune(str2), levenshtein.DefaultOptions)

	maxLength := float64(maxLen(len(str1), len(str2)))
	maxAllowedDistance := int(maxLength * (allowableDrift / 100))

	return distance <= maxAllowedDistance
}

func maxLen(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// femaleRecord shapes a staging row's mapped payload for the females table,
// keeping only whitelisted columns and overriding the tenant scope.
func femaleRecord(row *model.StagingRow, farmID, identifier string) model.Record {
	record := model.Record{}
	for key, value := range row.Mapped {
		record[key] = value
	}
	delete(record, "farm_raw_id")
	record["farm_id"] = farmID
	record["identifier"] = identifier
	record["import_batch_id"] = row.BatchID
	return record
}

func mappedString(row *model.StagingRow, key string) string {
	value, ok := row.Mapped[key]
	if !ok {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// generatePassword returns a random one-time password for a profile created
// during promotion.
func generatePassword() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}
