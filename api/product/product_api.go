package product

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"pos.GO/api"
	"pos.GO/config"
	"pos.GO/core/cache"
	catalogEntity "pos.GO/model/entity/catalog"
	catalogRepo "pos.GO/model/repository/catalog"
)

const (
	listCacheKey = "products:list"
	listCacheTTL = 60 // seconds
)

func init() {
	api.RegisterModule(RegisterProductRoutes)
}

func RegisterProductRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/products")

	// GET /api/products - the catalog projection the POS screens render.
	// Served from the in-process cache, then Redis when configured, then
	// the store. Pull applies flush the products tag.
	g.GET("", func(c echo.Context) error {
		if v, ok := cache.GetInstance().Get(listCacheKey); ok {
			if list, isList := v.([]catalogEntity.Product); isList {
				return c.JSON(http.StatusOK, echo.Map{"products": list, "count": len(list), "cached": true})
			}
		}

		if config.RedisClient != nil {
			if raw, err := config.RedisClient.Get(config.RedisCtx(), listCacheKey).Bytes(); err == nil {
				var list []catalogEntity.Product
				if json.Unmarshal(raw, &list) == nil {
					cache.GetInstance().Set(listCacheKey, list, listCacheTTL, []string{cache.TagProducts})
					return c.JSON(http.StatusOK, echo.Map{"products": list, "count": len(list), "cached": true})
				}
			}
		}

		list, err := catalogRepo.NewProductRepository(db).List()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		cache.GetInstance().Set(listCacheKey, list, listCacheTTL, []string{cache.TagProducts})
		if config.RedisClient != nil {
			if raw, err := json.Marshal(list); err == nil {
				config.RedisClient.Set(config.RedisCtx(), listCacheKey, raw, listCacheTTL*time.Second)
			}
		}
		return c.JSON(http.StatusOK, echo.Map{"products": list, "count": len(list)})
	})

	// GET /api/products/:id
	g.GET("/:id", func(c echo.Context) error {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
		}
		p, err := catalogRepo.NewProductRepository(db).FindByID(uint(id))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, p)
	})
}
