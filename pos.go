//go:build !cli
// +build !cli

package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"pos.GO/api"
	graphqlApi "pos.GO/api/graphql"
	_ "pos.GO/api/ledger"
	_ "pos.GO/api/product"
	_ "pos.GO/api/realtime"
	_ "pos.GO/api/sales"
	_ "pos.GO/api/stock"
	_ "pos.GO/api/syncapi"
	"pos.GO/config"
	"pos.GO/core/auth"
	"pos.GO/cron"
	_ "pos.GO/custom"
	syncService "pos.GO/service/sync"
)

func main() {
	config.LoadEnv()
	config.LoadAppConfig()

	// Redis is optional; the terminal runs fine without it
	config.InitRedis()
	redisStatus := "Redis not configured, caching local only."
	if config.RedisClient != nil {
		if err := config.RedisClient.Ping(config.RedisCtx()).Err(); err == nil {
			redisStatus = "Redis connection successful."
		} else {
			config.RedisClient = nil
			redisStatus = "Redis configured but not reachable, caching local only."
		}
	}
	log.Println(redisStatus)

	db, err := config.NewDB()
	if err != nil {
		log.Fatalf("failed to open local store: %v", err)
	}
	sqldb, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get DB instance: %v", err)
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatalf("local store connection failed: %v", err)
	}
	if err := config.MigrateDB(db); err != nil {
		log.Fatalf("local store migration failed: %v", err)
	}
	log.Println("Local store ready.")

	// Sync worker: shared by the cron tick, the API trigger and GraphQL
	syncCfg := syncService.ConfigFromEnv()
	worker := syncService.NewWorker(db, syncCfg)
	if token := os.Getenv("SYNC_TOKEN"); token != "" {
		worker.SetToken(token)
	}
	syncService.SetDefault(worker)
	if syncCfg.OnStart {
		go worker.RunOnce(context.Background())
	}

	c := cron.StartCron()
	defer c.Stop()

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start).Milliseconds()
			c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
			return err
		}
	})

	apiGroup := e.Group("/api")
	apiGroup.Use(auth.Middleware())
	api.ApplyModules(apiGroup, db)

	graphqlApi.RegisterGraphQLRoutes(e, db)
	api.ApplyRoutes(e, db)

	// ASCII banner on start (random font each run)
	fonts := []string{"banner", "big", "block", "slant", "standard", "small", "shadow", "speed", "thick", "univers", "doom", "larry3d", "puffy", "rectangles", "bigchief", "cosmic"}
	fig := figure.NewFigure("GoPOS ->", fonts[rand.Intn(len(fonts))], true)
	fig.Print()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on :%s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
