package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/herdsync/herdsync"
	model2 "github.com/herdsync/herdsync/api/model"
	"github.com/herdsync/herdsync/config"
	"github.com/herdsync/herdsync/internal/apierror"
	"github.com/herdsync/herdsync/model"
)

// ImportRows handles the JSON bulk-import endpoint. Partial failures come
// back in-band inside the summary with HTTP 200; only payload and
// configuration problems produce error statuses.
func (a Api) ImportRows(c *gin.Context) {
	cnf, err := config.Fetch()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "configuration not loaded"})
		return
	}
	if c.Request.ContentLength > cnf.Import.MaxBodyBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body exceeds the import size limit"})
		return
	}

	var req model2.ImportRows
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.ValidateImportRows(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := a.herdsync.HandleImport(c.Request.Context(), toImportRequest(&req))
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ImportRowsStream is the streaming variant for large uploads: plain
// net/http, body capped at the configured limit by both the Content-Length
// header and MaxBytesReader, JSON decoded straight off the wire.
func (a Api) ImportRowsStream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method != http.MethodPost {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		cnf, err := config.Fetch()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "configuration not loaded")
			return
		}
		if r.ContentLength > cnf.Import.MaxBodyBytes {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body exceeds the import size limit")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, cnf.Import.MaxBodyBytes)

		var req model2.ImportRows
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := req.ValidateImportRows(); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		summary, err := a.herdsync.HandleImport(r.Context(), toImportRequest(&req))
		if err != nil {
			writeJSONError(w, apierror.MapErrorToHTTPStatus(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(summary); err != nil {
			logrus.Error(err)
		}
	}
}

func toImportRequest(req *model2.ImportRows) *herdsync.ImportRequest {
	rows := make([]model.Record, 0, len(req.Rows))
	for _, r := range req.Rows {
		rows = append(rows, model.Record(r))
	}
	conflict := req.ConflictColumns
	if len(conflict) == 0 {
		conflict = defaultConflictColumns(req.Table)
	}
	return &herdsync.ImportRequest{
		FarmID:          req.FarmID,
		Table:           req.Table,
		ConflictColumns: conflict,
		Rows:            rows,
	}
}

func defaultConflictColumns(table string) []string {
	switch table {
	case "bulls":
		return []string{"farm_id", "naab_code"}
	case "females":
		return []string{"farm_id", "identifier"}
	}
	return nil
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		logrus.Error(err)
	}
}
