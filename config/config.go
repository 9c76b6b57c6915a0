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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5001"

	// Import pipeline defaults. Chunk size and worker count are part of the
	// batching contract; the row ceiling and body cap protect the store from
	// unbounded uploads.
	DEFAULT_IMPORT_CHUNK_SIZE = 500
	DEFAULT_IMPORT_WORKERS    = 3
	DEFAULT_IMPORT_MAX_ROWS   = 10000
	DEFAULT_IMPORT_MAX_BODY   = 20 << 20 // 20 MiB
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"HERDSYNC_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"HERDSYNC_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"HERDSYNC_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"HERDSYNC_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"HERDSYNC_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"HERDSYNC_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"HERDSYNC_DATA_SOURCE_DNS"`
}

type ImportConfig struct {
	ChunkSize    int   `json:"chunk_size" envconfig:"HERDSYNC_IMPORT_CHUNK_SIZE"`
	Workers      int   `json:"workers" envconfig:"HERDSYNC_IMPORT_WORKERS"`
	MaxRows      int   `json:"max_rows" envconfig:"HERDSYNC_IMPORT_MAX_ROWS"`
	MaxBodyBytes int64 `json:"max_body_bytes" envconfig:"HERDSYNC_IMPORT_MAX_BODY_BYTES"`
}

type Configuration struct {
	ProjectName string           `json:"project_name" envconfig:"HERDSYNC_PROJECT_NAME"`
	Server      ServerConfig     `json:"server"`
	DataSource  DataSourceConfig `json:"data_source"`
	Import      ImportConfig     `json:"import"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("herdsync", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called herdsync.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Herdsync Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)

	// Set default value for Port if it's empty
	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Import.ChunkSize <= 0 {
		cnf.Import.ChunkSize = DEFAULT_IMPORT_CHUNK_SIZE
	}
	if cnf.Import.Workers <= 0 {
		cnf.Import.Workers = DEFAULT_IMPORT_WORKERS
	}
	if cnf.Import.MaxRows <= 0 {
		cnf.Import.MaxRows = DEFAULT_IMPORT_MAX_ROWS
	}
	if cnf.Import.MaxBodyBytes <= 0 {
		cnf.Import.MaxBodyBytes = DEFAULT_IMPORT_MAX_BODY
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	if mockConfig.DataSource.Dns == "" {
		mockConfig.DataSource.Dns = "postgres://mock"
	}
	_ = mockConfig.validateAndAddDefaults()
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
