package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/herdsync/herdsync"
	model2 "github.com/herdsync/herdsync/api/model"
	"github.com/herdsync/herdsync/internal/apierror"
	"github.com/herdsync/herdsync/model"
)

// StageUpload pushes mapped rows into the staging store for later promotion
func (a Api) StageUpload(c *gin.Context) {
	entity := c.Param("entity")

	var req model2.StageUpload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.ValidateStageUpload(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows := make([]herdsync.StagedRowInput, 0, len(req.Rows))
	for _, r := range req.Rows {
		rows = append(rows, herdsync.StagedRowInput{
			Raw:    r.Raw,
			Mapped: model.Record(r.Mapped),
			Errors: r.Errors,
		})
	}

	batchID, err := a.herdsync.StageUpload(c.Request.Context(), entity, req.UploadedBy, rows)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"batch_id": batchID, "staged": len(rows)})
}

// PromoteStaging runs one full promotion pass over all pending staging rows
func (a Api) PromoteStaging(c *gin.Context) {
	summary, err := a.herdsync.PromoteStaging(c.Request.Context())
	if err != nil {
		logrus.Error(err)
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}
