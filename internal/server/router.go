package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sonahq/sona-backend/internal/handlers"
)

type RouterConfig struct {
	CloneHandler       *handlers.CloneHandler
	SampleHandler      *handlers.SampleHandler
	DNAHandler         *handlers.DNAHandler
	MergeHandler       *handlers.MergeHandler
	ContentHandler     *handlers.ContentHandler
	MethodologyHandler *handlers.MethodologyHandler
	ProviderHandler    *handlers.ProviderHandler
	AllowOrigins       []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Clones
		api.POST("/clones", cfg.CloneHandler.Create)
		api.GET("/clones", cfg.CloneHandler.List)
		api.GET("/clones/deleted", cfg.CloneHandler.ListDeleted)
		api.GET("/clones/:id", cfg.CloneHandler.Get)
		api.PATCH("/clones/:id", cfg.CloneHandler.Update)
		api.DELETE("/clones/:id", cfg.CloneHandler.Delete)
		api.POST("/clones/:id/restore", cfg.CloneHandler.Restore)
		api.GET("/clones/:id/confidence", cfg.CloneHandler.Confidence)

		// Samples
		api.POST("/clones/:id/samples", cfg.SampleHandler.Add)
		api.GET("/clones/:id/samples", cfg.SampleHandler.ListByClone)
		api.DELETE("/samples/:sampleId", cfg.SampleHandler.Delete)

		// Voice DNA
		api.POST("/clones/:id/dna/analyze", cfg.DNAHandler.Analyze)
		api.GET("/clones/:id/dna", cfg.DNAHandler.Current)
		api.GET("/clones/:id/dna/versions", cfg.DNAHandler.ListVersions)
		api.POST("/clones/:id/dna/manual-edit", cfg.DNAHandler.ManualEdit)
		api.POST("/clones/:id/dna/revert", cfg.DNAHandler.Revert)

		// Merge
		api.POST("/clones/merge", cfg.MergeHandler.Merge)
		api.GET("/clones/:id/lineage", cfg.MergeHandler.Lineage)

		// Content
		api.POST("/content/generate", cfg.ContentHandler.Generate)
		api.GET("/content", cfg.ContentHandler.List)
		api.GET("/content/:id", cfg.ContentHandler.Get)
		api.PATCH("/content/:id", cfg.ContentHandler.Update)
		api.DELETE("/content/:id", cfg.ContentHandler.Delete)
		api.GET("/content/:id/versions", cfg.ContentHandler.ListVersions)
		api.POST("/content/:id/restore", cfg.ContentHandler.RestoreVersion)
		api.POST("/content/:id/score", cfg.ContentHandler.Score)

		// Methodology
		api.GET("/methodology/:section", cfg.MethodologyHandler.GetSection)
		api.PUT("/methodology/:section", cfg.MethodologyHandler.UpdateSection)
		api.GET("/methodology/:section/versions", cfg.MethodologyHandler.ListVersions)
		api.POST("/methodology/:section/revert", cfg.MethodologyHandler.Revert)

		// Providers
		api.GET("/providers", cfg.ProviderHandler.List)
		api.POST("/providers/:name/test", cfg.ProviderHandler.TestConnection)
	}

	return router
}
