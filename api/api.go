package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/herdsync/herdsync"
	"github.com/herdsync/herdsync/api/middleware"
	"github.com/herdsync/herdsync/config"
)

type Api struct {
	herdsync *herdsync.Herdsync
	router   *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/mappings/suggest", a.SuggestMapping)
	router.POST("/standardize/:entity", a.Standardize)

	router.POST("/imports", a.ImportRows)
	router.POST("/imports/stream", gin.WrapF(a.ImportRowsStream()))

	router.POST("/staging/:entity", a.StageUpload)
	router.POST("/staging-promotions", a.PromoteStaging)

	return a.router
}

func NewAPI(h *herdsync.Herdsync) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, "server running...")
	})

	return &Api{herdsync: h, router: r}
}
