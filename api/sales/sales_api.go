package sales

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"pos.GO/api"
	salesEntity "pos.GO/model/entity/sales"
	syncqEntity "pos.GO/model/entity/syncq"
	outboxRepo "pos.GO/model/repository/outbox"
	salesRepo "pos.GO/model/repository/sales"
)

func init() {
	api.RegisterModule(RegisterSalesRoutes)
}

func RegisterSalesRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/sales")

	// POST /api/sales - record a sale and queue it for sync. The sale row
	// and its queue item commit in one transaction: a sale can never exist
	// without its pending queue entry.
	g.POST("", func(c echo.Context) error {
		var body struct {
			LocalUUID string  `json:"local_uuid"`
			ProductID uint    `json:"product_id"`
			Qty       float64 `json:"qty"`
			UnitPrice float64 `json:"unit_price"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.ProductID == 0 || body.Qty <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id and a positive qty are required"})
		}
		if body.LocalUUID == "" {
			body.LocalUUID = uuid.NewString()
		}

		sale := &salesEntity.LocalSale{
			LocalUUID: body.LocalUUID,
			ProductID: body.ProductID,
			Qty:       body.Qty,
			UnitPrice: body.UnitPrice,
			Total:     body.Qty * body.UnitPrice,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := salesRepo.NewSalesRepository(tx).Create(sale); err != nil {
				return err
			}
			_, err := outboxRepo.NewOutboxRepository(tx).Enqueue(
				syncqEntity.EntitySale, sale.LocalUUID, sale)
			return err
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusCreated, sale)
	})

	// GET /api/sales?limit=N - newest first
	g.GET("", func(c echo.Context) error {
		limit, _ := strconv.Atoi(c.QueryParam("limit"))
		list, err := salesRepo.NewSalesRepository(db).List(limit)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"sales": list, "count": len(list)})
	})

	// GET /api/sales/unsynced/count - local rows still awaiting the server
	g.GET("/unsynced/count", func(c echo.Context) error {
		n, err := salesRepo.NewSalesRepository(db).CountUnsynced()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"unsynced": n})
	})
}
