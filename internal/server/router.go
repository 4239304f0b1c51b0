package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Tiliavir/worktimer/internal/timer"
)

// NewRouter returns the gin engine for h.
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger(logger))

	r.NoRoute(notFound)

	r.GET("/health", func(c *gin.Context) {
		ok(c, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		t := api.Group("/employees/:id/timer")
		{
			t.GET("", h.GetTimer)
			t.POST("/start", h.transition((*timer.Engine).Start))
			t.POST("/break", h.transition((*timer.Engine).TakeBreak))
			t.POST("/resume", h.transition((*timer.Engine).EndBreak))
			t.POST("/logout", h.transition((*timer.Engine).LogOut))
			t.POST("/submit", h.Submit)
		}

		reports := api.Group("/reports")
		{
			reports.GET("/performance", h.Performance)
			reports.GET("/performance/export", h.ExportPerformance)
		}
	}
	return r
}
