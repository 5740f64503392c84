package router

import (
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/config"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/handler"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/syncer"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, orchestrator *syncer.Orchestrator, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "fundflow-service",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 活动相关路由
		campaignHandler := handler.NewCampaignHandler(db)
		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("", campaignHandler.CreateCampaign)
			campaigns.GET("", campaignHandler.GetCampaigns)
			campaigns.GET("/stats", campaignHandler.GetCampaignStats)
			campaigns.GET("/:id", campaignHandler.GetCampaign)
			campaigns.PUT("/:id", campaignHandler.UpdateCampaign)
			campaigns.GET("/:id/investments", campaignHandler.GetCampaignInvestments)
			campaigns.GET("/:id/milestones", campaignHandler.GetCampaignMilestones)
		}

		// 同步相关路由
		syncHandler := handler.NewSyncHandler(orchestrator, cfg)
		sync := v1.Group("/sync")
		{
			sync.POST("/trigger", syncHandler.TriggerSync)
			sync.GET("/status", syncHandler.GetSyncStatus)
			sync.POST("/reset", syncHandler.ResetSyncStatus)
			sync.POST("/campaigns/:id", syncHandler.SyncCampaign)
			sync.POST("/auto/start", syncHandler.StartAutoSync)
			sync.POST("/auto/stop", syncHandler.StopAutoSync)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
