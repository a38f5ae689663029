package api

import (
	"net/http"

	"evermart/media-service/internal/auth"
	"evermart/media-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	verifier auth.Verifier,
	mediaService service.MediaService,
	logoService service.LogoService,
) {
	mediaHandler := NewMediaHandler(mediaService)
	logoHandler := NewLogoHandler(logoService)

	serviceAuth := ServiceAuthMiddleware(verifier)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	media := router.Group("/media")
	{
		// Public file routes: unauthenticated, browser-facing, open CORS.
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowMethods = []string{"GET", "HEAD", "OPTIONS"}

		public := media.Group("")
		public.Use(cors.New(corsConfig))
		{
			public.GET("/file/:storedName", mediaHandler.GetFile)
			public.GET("/company-logo/file/:companyId", logoHandler.GetFile)
		}

		// Service-to-service routes behind the remote credential check.
		protected := media.Group("")
		protected.Use(serviceAuth)
		{
			protected.POST("/upload", mediaHandler.Upload)
			protected.GET("/entity/:entityId", mediaHandler.ListByEntity)
			protected.DELETE("/:entityId/:position", mediaHandler.Delete)

			protected.POST("/company-logo", logoHandler.Upload)
			protected.GET("/company-logo/:companyId", logoHandler.Get)
		}
	}
}
