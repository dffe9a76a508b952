package realtime

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"pos.GO/api"
	"pos.GO/config"
	catalogEntity "pos.GO/model/entity/catalog"
	catalogRepo "pos.GO/model/repository/catalog"
	inventoryRepo "pos.GO/model/repository/inventory"
)

func init() {
	api.RegisterModule(RegisterRealtimeRoutes)
}

// Response for the checkout scan endpoint
type ScanResponse struct {
	SKU     string  `json:"sku"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	OnHand  float64 `json:"on_hand"`
	Offline bool    `json:"offline"`
}

// Singleton repositories (created once per DB)
var (
	catalogRepoInstance   *catalogRepo.ProductRepository
	inventoryRepoInstance *inventoryRepo.InventoryRepository
	repoOnce              sync.Once
	repoErr               error
)

func getRepositories(db *gorm.DB) (*catalogRepo.ProductRepository, *inventoryRepo.InventoryRepository, error) {
	repoOnce.Do(func() {
		catalogRepoInstance = catalogRepo.NewProductRepository(db)
		inventoryRepoInstance, repoErr = inventoryRepo.NewInventoryRepository(db)
	})
	return catalogRepoInstance, inventoryRepoInstance, repoErr
}

// getCryptKey returns the terminal crypt key from env
func getCryptKey() string {
	return config.GetEnv("POS_CRYPT_KEY", "")
}

// verifyTerminalSignature validates HMAC-SHA256 signature using constant-time comparison
func verifyTerminalSignature(terminalID, signature, cryptKey string) bool {
	if cryptKey == "" || terminalID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(cryptKey))
	mac.Write([]byte(terminalID))
	expected := mac.Sum(nil)
	sig, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, sig)
}

// RegisterRealtimeRoutes sets up the hot-path checkout lookup API. It
// reads only the local store, so it answers at full speed with the
// network down.
func RegisterRealtimeRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/realtime")

	// GET /api/realtime/scan?sku=XXX - price and on-hand in one call
	g.GET("/scan", func(c echo.Context) error {
		start := time.Now()

		// Optional terminal signature, enforced only when a key is set
		terminalID := c.Request().Header.Get("X-Terminal-ID")
		terminalSig := c.Request().Header.Get("X-Terminal-Sig")
		cryptKey := getCryptKey()
		if cryptKey != "" && !verifyTerminalSignature(terminalID, terminalSig, cryptKey) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid signature"})
		}

		sku := c.QueryParam("sku")
		if sku == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "sku required"})
		}

		catalogR, inventoryR, err := getRepositories(db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "repository init failed"})
		}

		var (
			product    *catalogEntity.Product
			productErr error
			onHand     float64
		)

		// Catalog and on-hand fetch in parallel
		eg := new(errgroup.Group)
		eg.Go(func() error {
			product, productErr = catalogR.FindBySKU(sku)
			return nil
		})
		eg.Go(func() error {
			onHand, _ = inventoryR.TotalQuantityBySKU(sku)
			return nil
		})
		_ = eg.Wait()

		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))

		if productErr != nil {
			if errors.Is(productErr, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{
					"error":               "product not found",
					"request_duration_ms": duration,
				})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": productErr.Error()})
		}

		return c.JSON(http.StatusOK, ScanResponse{
			SKU:     product.SKU,
			Name:    product.Name,
			Price:   product.Price,
			OnHand:  onHand,
			Offline: true,
		})
	})

	// GET /api/realtime/stock?sku=XXX - on-hand only
	g.GET("/stock", func(c echo.Context) error {
		start := time.Now()

		sku := c.QueryParam("sku")
		if sku == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "sku required"})
		}

		_, inventoryR, err := getRepositories(db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "repository init failed"})
		}

		qty, found := inventoryR.TotalQuantityBySKU(sku)
		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		if !found {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}

		return c.JSON(http.StatusOK, echo.Map{"sku": sku, "stock": qty})
	})
}
