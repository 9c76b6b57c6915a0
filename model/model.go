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
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateUUIDWithSuffix returns a module-prefixed UUID, e.g. "batch_<uuid>".
func GenerateUUIDWithSuffix(module string) string {
	return fmt.Sprintf("%s_%s", module, uuid.New().String())
}

// Profile is a platform identity that owns farms.
type Profile struct {
	ProfileID string    `json:"profile_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Farm is a tenant unit; herd rows are scoped by farm id.
type Farm struct {
	FarmID    string    `json:"farm_id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	RawID     string    `json:"raw_id,omitempty"` // identifier carried from the staging source system
	CreatedAt time.Time `json:"created_at"`
}
