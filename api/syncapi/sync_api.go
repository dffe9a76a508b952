package syncapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"pos.GO/api"
	outboxRepo "pos.GO/model/repository/outbox"
	syncService "pos.GO/service/sync"
)

func init() {
	api.RegisterModule(RegisterSyncRoutes)
}

// RegisterSyncRoutes exposes the worker controls the desktop shell uses:
// manual trigger, credential install, status, and queue inspection.
func RegisterSyncRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/sync")

	// POST /api/sync/run - trigger one cycle now, outside the timer
	g.POST("/run", func(c echo.Context) error {
		w := syncService.Default()
		if w == nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "sync worker not initialized"})
		}
		res := w.RunOnce(c.Request().Context())
		if res.Skipped {
			return c.JSON(http.StatusConflict, echo.Map{"error": "a sync cycle is already running"})
		}
		return c.JSON(http.StatusOK, res)
	})

	// POST /api/sync/token - install or rotate the bearer credential
	g.POST("/token", func(c echo.Context) error {
		w := syncService.Default()
		if w == nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "sync worker not initialized"})
		}
		var body struct {
			Token string `json:"token"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.Token == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
		}
		w.SetToken(body.Token)
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	// GET /api/sync/status - cursor, queue counts, last cycle outcome
	g.GET("/status", func(c echo.Context) error {
		w := syncService.Default()
		if w == nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "sync worker not initialized"})
		}
		return c.JSON(http.StatusOK, w.Status())
	})

	// GET /api/sync/queue - full queue, oldest first
	g.GET("/queue", func(c echo.Context) error {
		items, err := outboxRepo.NewOutboxRepository(db).PeekAll()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
	})

	// GET /api/sync/queue/failed - items past the retry ceiling
	g.GET("/queue/failed", func(c echo.Context) error {
		items, err := outboxRepo.NewOutboxRepository(db).Failed()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
	})

	// POST /api/sync/queue/:id/retry - put a failed item back in play
	g.POST("/queue/:id/retry", func(c echo.Context) error {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid queue item id"})
		}
		if err := outboxRepo.NewOutboxRepository(db).Retry(uint(id)); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
}
