package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.GET("/health", handler.Health)

		api.POST("/valuations", handler.CreateValuation)
		api.GET("/valuations", handler.ListValuations)
		api.GET("/valuations/:id", handler.GetValuation)

		api.GET("/weights", handler.GetWeights)
		api.PUT("/weights", handler.UpdateWeights)

		api.POST("/guidelines", handler.AddGuideline)
		api.GET("/guidelines", handler.ListGuidelines)
		api.DELETE("/guidelines/:index", handler.RemoveGuideline)

		api.POST("/feedback", handler.RecordFeedback)
		api.POST("/train", handler.TrainWeights)

		api.POST("/candidates", handler.IngestCandidates)
	}
}
