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

package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"
)

// promoteCommands runs one staging promotion pass from the command line.
func promoteCommands(h *herdsyncInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "promote-staging",
		Short: "promote pending staging rows into production tables",
		Run: func(cmd *cobra.Command, args []string) {
			summary, err := h.herdsync.PromoteStaging(context.Background())
			if err != nil {
				log.Fatalf("promotion failed: %v", err)
			}
			for _, r := range summary.Results {
				log.Printf("%s: %d inserted, %d updated, %d errors (%d fallback owners)",
					r.Entity, r.Inserted, r.Updated, r.Errors, r.FallbackOwners)
			}
			for _, c := range summary.Credentials {
				log.Printf("created profile %s with one-time password %s", c.Email, c.Password)
			}
		},
	}

	return cmd
}
