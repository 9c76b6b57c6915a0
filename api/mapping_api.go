package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/herdsync/herdsync"
	model2 "github.com/herdsync/herdsync/api/model"
	"github.com/herdsync/herdsync/internal/tabular"
	"github.com/herdsync/herdsync/model"
)

// SuggestMapping returns one suggestion per uploaded header for review.
// Legend entries in the payload are applied as session aliases before
// suggesting, shadowing the default bank.
func (a Api) SuggestMapping(c *gin.Context) {
	var req model2.SuggestMapping
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.ValidateSuggestMapping(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	registry := model.RegistryFor(req.Entity)
	bank := model.NewAliasBank(registry)
	if len(req.Aliases) > 0 {
		entries := make([]model.AliasEntry, 0, len(req.Aliases))
		for _, pair := range req.Aliases {
			entries = append(entries, model.AliasEntry{Alias: pair.Alias, Canonical: pair.Canonical})
		}
		bank.AddUserEntries(entries)
	}

	mapper := herdsync.NewMapper(registry, bank)
	c.JSON(http.StatusOK, gin.H{
		"entity":  req.Entity,
		"mapping": mapper.SuggestMapping(req.Headers),
	})
}

// Standardize accepts a multipart upload (a data file, a canonical model
// file, optionally a legend file), maps the data columns onto the canonical
// schema and streams back the standardized XLSX workbook.
func (a Api) Standardize(c *gin.Context) {
	entity := c.Param("entity")
	registry := model.RegistryFor(entity)
	if registry == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown entity %q", entity)})
		return
	}

	dataTable, err := formTable(c, "data")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	modelTable, err := formTable(c, "model")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	modelHeaders, err := herdsync.ParseModelHeaders(*modelTable)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bank := model.NewAliasBank(registry)
	if legendTable, err := formTable(c, "legend"); err == nil {
		entries, err := herdsync.ParseLegend(*legendTable, registry)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		bank.AddUserEntries(entries)
	}

	mapper := herdsync.NewMapper(registry, bank)
	mapping := mapper.SuggestMapping(dataTable.Headers)
	for i := range mapping {
		mapping[i].Approved = mapping[i].CanApprove()
	}

	workbook, err := herdsync.BuildStandardizedExport(modelHeaders, *dataTable, mapping, registry)
	if err != nil {
		logrus.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build standardized export"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="standardized.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := workbook.Write(c.Writer); err != nil {
		logrus.Error(err)
	}
}

func formTable(c *gin.Context, field string) (*tabular.Table, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%s file upload failed", field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return tabular.Parse(data, header.Filename)
}
