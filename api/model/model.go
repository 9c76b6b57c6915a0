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

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func (i *ImportRows) ValidateImportRows() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.FarmID, validation.Required),
		validation.Field(&i.Table, validation.Required, validation.In("bulls", "females")),
		validation.Field(&i.Rows, validation.By(rowsArePresent(i))),
	)
}

// rowsArePresent rejects a missing rows key while letting an explicit empty
// array through as a trivially successful import.
func rowsArePresent(i *ImportRows) validation.RuleFunc {
	return func(value interface{}) error {
		if i.Rows == nil {
			return errors.New("rows must be an array")
		}
		return nil
	}
}

func (s *SuggestMapping) ValidateSuggestMapping() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Entity, validation.Required, validation.In("bulls", "females")),
		validation.Field(&s.Headers, validation.Required),
	)
}

func (s *StageUpload) ValidateStageUpload() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Rows, validation.Required),
	)
}
