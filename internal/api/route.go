package api

import (
	"LikeRelay/internal/api/middleware"
	"LikeRelay/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	r.Use(middleware.TraceMiddleware())
	logger.SetupGin(r)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	likeGroup := r.Group("/like")
	{
		likeGroup.POST("", group.LikeHandler.Toggle)
		likeGroup.GET("/count/:postId", group.LikeHandler.GetLikeCount)
		likeGroup.POST("/sync", group.LikeHandler.SyncAll)
		likeGroup.POST("/sync/:postId", group.LikeHandler.SyncPost)
	}

	return r
}
