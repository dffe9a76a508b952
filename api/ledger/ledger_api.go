package ledger

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"pos.GO/api"
	ledgerEntity "pos.GO/model/entity/ledger"
	syncqEntity "pos.GO/model/entity/syncq"
	ledgerRepo "pos.GO/model/repository/ledger"
	outboxRepo "pos.GO/model/repository/outbox"
)

func init() {
	api.RegisterModule(RegisterLedgerRoutes)
}

func RegisterLedgerRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/ledger")

	// POST /api/ledger/adjustments - manual balance adjustment, written
	// and queued in one transaction like a sale.
	g.POST("/adjustments", func(c echo.Context) error {
		var body struct {
			LocalUUID   string  `json:"local_uuid"`
			CustomerID  uint    `json:"customer_id"`
			Amount      float64 `json:"amount"`
			Method      string  `json:"method"`
			Description string  `json:"description"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.Amount == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "a non-zero amount is required"})
		}
		if body.LocalUUID == "" {
			body.LocalUUID = uuid.NewString()
		}

		entry := &ledgerEntity.LedgerEntry{
			LocalUUID:   body.LocalUUID,
			CustomerID:  body.CustomerID,
			Amount:      body.Amount,
			Method:      body.Method,
			EntryType:   ledgerEntity.TypeAdjustment,
			Description: body.Description,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := ledgerRepo.NewLedgerRepository(tx).Create(entry); err != nil {
				return err
			}
			_, err := outboxRepo.NewOutboxRepository(tx).Enqueue(
				syncqEntity.EntityAdjustment, entry.LocalUUID, entry)
			return err
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusCreated, entry)
	})

	// GET /api/ledger/entries?limit=N - newest first
	g.GET("/entries", func(c echo.Context) error {
		limit, _ := strconv.Atoi(c.QueryParam("limit"))
		list, err := ledgerRepo.NewLedgerRepository(db).List(limit)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"entries": list, "count": len(list)})
	})
}
