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
	"fmt"
	"log"
	"os"

	"github.com/herdsync/herdsync"
	"github.com/herdsync/herdsync/config"
	"github.com/herdsync/herdsync/database"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Herdsync represents the CLI application, encapsulating the root Cobra command.
type Herdsync struct {
	cmd *cobra.Command
}

// herdsyncInstance holds the runtime service instance and its configuration,
// shared across subcommands.
type herdsyncInstance struct {
	herdsync *herdsync.Herdsync
	cnf      *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error using Logrus.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun sets up the configuration and initializes the service instance
// before running any command.
func preRun(app *herdsyncInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("herdsync.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newHerdsync, err := setupHerdsync(cnf)
		if err != nil {
			log.Fatal(err)
		}

		app.herdsync = newHerdsync
		app.cnf = cnf

		return nil
	}
}

// setupHerdsync creates and initializes a new service instance based on the
// provided configuration, connecting to the data source in the process.
func setupHerdsync(cfg *config.Configuration) (*herdsync.Herdsync, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newHerdsync, err := herdsync.NewHerdsync(db)
	if err != nil {
		return nil, fmt.Errorf("error creating herdsync: %v", err)
	}
	return newHerdsync, nil
}

// NewCLI creates the command-line interface for the application.
func NewCLI() *Herdsync {
	var configFile string
	h := &herdsyncInstance{}

	var rootCmd = &cobra.Command{
		Use:   "herdsync",
		Short: "Dairy herd import and standardization service",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./herdsync.json", "Configuration file for herdsync")

	rootCmd.PersistentPreRunE = preRun(h)

	rootCmd.AddCommand(serverCommands(h))
	rootCmd.AddCommand(migrateCommands(h))
	rootCmd.AddCommand(promoteCommands(h))

	return &Herdsync{cmd: rootCmd}
}

// executeCLI runs the root command, handling any errors that occur during execution.
func (w Herdsync) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
