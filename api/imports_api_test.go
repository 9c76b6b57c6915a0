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

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/herdsync/herdsync"
	"github.com/herdsync/herdsync/config"
	"github.com/herdsync/herdsync/database/mocks"
	"github.com/herdsync/herdsync/model"
)

type TestRequest struct {
	Payload io.Reader
	Router  *gin.Engine
	Method  string
	Route   string
	Header  map[string]string
}

func SetUpTestRequest(s TestRequest) *httptest.ResponseRecorder {
	req := httptest.NewRequest(s.Method, s.Route, s.Payload)
	for key, value := range s.Header {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	s.Router.ServeHTTP(resp, req)
	return resp
}

func setupRouter() (*gin.Engine, *mocks.MockDataSource, error) {
	config.MockConfig(&config.Configuration{
		DataSource: config.DataSourceConfig{Dns: "postgres://postgres:@localhost:5432/herdsync?sslmode=disable"},
	})
	datasource := new(mocks.MockDataSource)
	service, err := herdsync.NewHerdsync(datasource)
	if err != nil {
		return nil, nil, err
	}
	router := NewAPI(service).Router()
	return router, datasource, nil
}

func importPayload(rowCount int) []byte {
	rows := make([]map[string]interface{}, 0, rowCount)
	for i := 0; i < rowCount; i++ {
		rows = append(rows, map[string]interface{}{
			"identifier": fmt.Sprintf("BR-%04d", i),
			"name":       gofakeit.FirstName(),
			"tpi":        gofakeit.Float64Range(1500, 3200),
		})
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"farm_id": "frm_1",
		"table":   "females",
		"rows":    rows,
	})
	return payload
}

func TestImportRowsEndpoint(t *testing.T) {
	router, datasource, err := setupRouter()
	assert.NoError(t, err)

	datasource.On("ExistingKeys", mock.Anything, "females", "farm_id", "frm_1", "identifier", mock.Anything).
		Return(map[string]bool{}, nil)
	datasource.On("UpsertRows", mock.Anything, "females", []string{"farm_id", "identifier"}, mock.Anything).
		Return(nil)

	resp := SetUpTestRequest(TestRequest{
		Payload: bytes.NewReader(importPayload(12)),
		Router:  router,
		Method:  http.MethodPost,
		Route:   "/imports",
	})

	assert.Equal(t, http.StatusOK, resp.Code)

	var summary model.ImportSummary
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, 12, summary.TotalReceived)
	assert.Equal(t, 12, summary.Inserted)
	assert.Equal(t, 1, summary.BatchCount)
}

func TestImportRowsEndpointValidation(t *testing.T) {
	router, _, err := setupRouter()
	assert.NoError(t, err)

	payload, _ := json.Marshal(map[string]interface{}{
		"table": "females",
		"rows":  []map[string]interface{}{},
	})

	resp := SetUpTestRequest(TestRequest{
		Payload: bytes.NewReader(payload),
		Router:  router,
		Method:  http.MethodPost,
		Route:   "/imports",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestImportRowsEndpointMissingRows(t *testing.T) {
	router, _, err := setupRouter()
	assert.NoError(t, err)

	payload, _ := json.Marshal(map[string]interface{}{
		"farm_id": "frm_1",
		"table":   "females",
	})

	resp := SetUpTestRequest(TestRequest{
		Payload: bytes.NewReader(payload),
		Router:  router,
		Method:  http.MethodPost,
		Route:   "/imports",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var body map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "rows")
}

func TestImportRowsStreamEndpointBodyCap(t *testing.T) {
	router, _, err := setupRouter()
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/imports/stream", bytes.NewReader(importPayload(1)))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = 21 << 20 // header lies, cap rejects before reading
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
}

func TestImportRowsStreamEndpoint(t *testing.T) {
	router, datasource, err := setupRouter()
	assert.NoError(t, err)

	datasource.On("ExistingKeys", mock.Anything, "females", "farm_id", "frm_1", "identifier", mock.Anything).
		Return(map[string]bool{}, nil)
	datasource.On("UpsertRows", mock.Anything, "females", mock.Anything, mock.Anything).
		Return(nil)

	resp := SetUpTestRequest(TestRequest{
		Payload: bytes.NewReader(importPayload(5)),
		Router:  router,
		Method:  http.MethodPost,
		Route:   "/imports/stream",
	})

	assert.Equal(t, http.StatusOK, resp.Code)

	var summary model.ImportSummary
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, 5, summary.TotalProcessed)
}

func TestSuggestMappingEndpoint(t *testing.T) {
	router, _, err := setupRouter()
	assert.NoError(t, err)

	payload, _ := json.Marshal(map[string]interface{}{
		"entity":  "bulls",
		"headers": []string{"PTA Leite", "xyz"},
		"aliases": []map[string]string{{"alias": "xyz", "canonical": "tpi"}},
	})

	resp := SetUpTestRequest(TestRequest{
		Payload: bytes.NewReader(payload),
		Router:  router,
		Method:  http.MethodPost,
		Route:   "/mappings/suggest",
	})

	assert.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Entity  string             `json:"entity"`
		Mapping []model.MappingRow `json:"mapping"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Mapping, 2)
	assert.Equal(t, "ptam", body.Mapping[0].Canonical)
	assert.Equal(t, "tpi", body.Mapping[1].Canonical)
}

func TestPromoteStagingEndpoint(t *testing.T) {
	router, datasource, err := setupRouter()
	assert.NoError(t, err)

	datasource.On("GetPendingStagingRows", mock.Anything, mock.Anything).
		Return([]*model.StagingRow{}, nil)

	resp := SetUpTestRequest(TestRequest{
		Payload: bytes.NewReader([]byte(`{}`)),
		Router:  router,
		Method:  http.MethodPost,
		Route:   "/staging-promotions",
	})

	assert.Equal(t, http.StatusOK, resp.Code)

	var summary model.PromotionSummary
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Len(t, summary.Results, 3)
}
