package stock

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"pos.GO/api"
	inventoryEntity "pos.GO/model/entity/inventory"
	syncqEntity "pos.GO/model/entity/syncq"
	inventoryRepo "pos.GO/model/repository/inventory"
	outboxRepo "pos.GO/model/repository/outbox"
)

func init() {
	api.RegisterModule(RegisterStockRoutes)
}

func RegisterStockRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/stock")

	// POST /api/stock/movements - record a signed quantity delta and
	// queue it for sync. Re-submitting the same movement_uuid returns the
	// existing row and queues nothing.
	g.POST("/movements", func(c echo.Context) error {
		var body struct {
			MovementUUID string  `json:"movement_uuid"`
			ProductID    uint    `json:"product_id"`
			LocationCode string  `json:"location_code"`
			QtyDelta     float64 `json:"qty_delta"`
			Reason       string  `json:"reason"`
			Reference    string  `json:"reference"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.ProductID == 0 || body.QtyDelta == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id and a non-zero qty_delta are required"})
		}
		if body.Reason == "" {
			body.Reason = inventoryEntity.ReasonAdjustment
		}
		if body.MovementUUID == "" {
			body.MovementUUID = uuid.NewString()
		}

		movement := &inventoryEntity.StockMovement{
			MovementUUID: body.MovementUUID,
			ProductID:    body.ProductID,
			LocationCode: body.LocationCode,
			QtyDelta:     body.QtyDelta,
			Reason:       body.Reason,
			Reference:    body.Reference,
		}

		deduped := false
		err := db.Transaction(func(tx *gorm.DB) error {
			repo, err := inventoryRepo.NewInventoryRepository(tx)
			if err != nil {
				return err
			}
			stored, existed, err := repo.PushMovement(movement)
			if err != nil {
				return err
			}
			movement = stored
			deduped = existed
			if existed {
				return nil
			}
			_, err = outboxRepo.NewOutboxRepository(tx).Enqueue(
				syncqEntity.EntityStockMovement, stored.MovementUUID, stored)
			return err
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		if deduped {
			return c.JSON(http.StatusOK, movement)
		}
		return c.JSON(http.StatusCreated, movement)
	})

	// GET /api/stock/movements?limit=N - newest first
	g.GET("/movements", func(c echo.Context) error {
		limit, _ := strconv.Atoi(c.QueryParam("limit"))
		repo, err := inventoryRepo.NewInventoryRepository(db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		list, err := repo.List(limit)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"movements": list, "count": len(list)})
	})

	// GET /api/stock/quantity/:productId - on-hand sum of deltas
	g.GET("/quantity/:productId", func(c echo.Context) error {
		id, err := strconv.ParseUint(c.Param("productId"), 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
		}
		repo, err := inventoryRepo.NewInventoryRepository(db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		qty, err := repo.TotalQuantity(uint(id))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"product_id": id, "quantity": qty})
	})
}
