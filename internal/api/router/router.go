package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/inkwell/internal/api/handler"
	"github.com/d60-Lab/inkwell/internal/config"
	"github.com/d60-Lab/inkwell/internal/middleware"
)

// Setup 组装全部路由与中间件
func Setup(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.Otel.Enabled {
		r.Use(otelgin.Middleware("inkwell"))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now()})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	secret := cfg.JWT.Secret
	v1 := r.Group("/api/v1")

	// 登录注册单独限流，防爆破
	auth := v1.Group("/auth", middleware.RateLimit(rate.Every(time.Second), 5))
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	// 公开读路径：带可选身份，供可见性闸门判定 viewer
	public := v1.Group("", middleware.AuthOptional(secret))
	{
		public.GET("/blog/:slug", h.GetPostBySlug)
		public.GET("/posts", h.ListPosts)
		public.GET("/posts/search", h.SearchPosts)
		public.GET("/posts/:id/comments", h.ListComments)
		public.GET("/categories", h.ListCategories)
		public.GET("/categories/:slug", h.GetCategory)
	}

	// 写路径一律要求登录
	authed := v1.Group("", middleware.AuthRequired(secret))
	{
		authed.GET("/me", h.Me)
		authed.PUT("/me", h.UpdateProfile)

		authed.POST("/posts", h.CreatePost)
		authed.GET("/posts/:id", h.GetPostForEdit)
		authed.PUT("/posts/:id", h.UpdatePost)
		authed.PATCH("/posts/:id/publish", h.TogglePublished)
		authed.PATCH("/posts/:id/visibility", h.ToggleVisibility)
		authed.DELETE("/posts/:id", h.DeletePost)
		authed.POST("/posts/:id/comments", h.CreateComment)

		authed.GET("/dashboard/posts", h.ListMyPosts)

		authed.POST("/categories", h.CreateCategory)
		authed.PUT("/categories/:id", h.UpdateCategory)
		authed.DELETE("/categories/:id", h.DeleteCategory)
	}

	return r
}
