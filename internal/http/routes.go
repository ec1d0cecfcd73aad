package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskboard/internal/http/handlers"
	"taskboard/internal/http/middleware"
	"taskboard/internal/service"
)

// NewRouter builds the REST API around the task services.
func NewRouter(tasks *service.TaskService, categories *service.CategoryService, version string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())
	RegisterRoutes(r, tasks, categories, version)
	return r
}

func RegisterRoutes(r *gin.Engine, tasks *service.TaskService, categories *service.CategoryService, version string) {
	h := handlers.NewTaskHandler(tasks, categories)
	health := handlers.NewHealthHandler(version)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/health", health.Health)
	api.GET("/categories", h.Categories)

	t := api.Group("/tasks")
	{
		t.GET("", h.List)
		t.POST("", h.Create)
		t.GET("/archive", h.Archive)
		t.GET("/stats", h.Stats)
		t.GET("/due", h.Due)
		t.DELETE("/completed", h.ClearCompleted)

		t.GET("/:id", h.Get)
		t.PATCH("/:id", h.Update)
		t.DELETE("/:id", h.Delete)
		t.POST("/:id/toggle", h.Toggle)
		t.POST("/:id/archive", h.ArchiveTask)
		t.POST("/:id/restore", h.Restore)
	}
}
